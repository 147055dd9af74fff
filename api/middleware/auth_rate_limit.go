package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/angelmondragon/shoefinderz-backend/api/responses"
	"github.com/angelmondragon/shoefinderz-backend/internal/users"
	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
	"github.com/angelmondragon/shoefinderz-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/shoefinderz-backend/pkg/redis"
)

// maxAuthBody bounds how much of a login or signup body is read to find the
// identifier.
const maxAuthBody = 64 << 10

// RateLimiterStore counts attempts in a fixed window.
type RateLimiterStore interface {
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
}

// AuthRateLimitPolicy throttles one auth surface per client IP and per
// phone number. A zero limit disables that counter.
type AuthRateLimitPolicy struct {
	name            string
	window          time.Duration
	ipLimit         int
	identifierLimit int
}

func NewAuthRateLimitPolicy(name string, window time.Duration, ipLimit, identifierLimit int) AuthRateLimitPolicy {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "auth"
	}
	return AuthRateLimitPolicy{
		name:            name,
		window:          window,
		ipLimit:         ipLimit,
		identifierLimit: identifierLimit,
	}
}

func (p AuthRateLimitPolicy) enabled() bool {
	return p.window > 0 && (p.ipLimit > 0 || p.identifierLimit > 0)
}

// rateCheck is one counter consulted for a request.
type rateCheck struct {
	scope string
	key   string
	label string
	limit int
}

func (p AuthRateLimitPolicy) checks(ip, identifier string) []rateCheck {
	var out []rateCheck
	if p.ipLimit > 0 && ip != "" {
		out = append(out, rateCheck{scope: "ip", key: pkgredis.Key("rate_limit", p.name, "ip", ip), label: ip, limit: p.ipLimit})
	}
	if p.identifierLimit > 0 && identifier != "" {
		hash := hashValue(identifier)
		out = append(out, rateCheck{scope: "identifier", key: pkgredis.Key("rate_limit", p.name, "identifier", hash), label: hash, limit: p.identifierLimit})
	}
	return out
}

// AuthRateLimit rejects login and signup attempts over the policy limits
// with 429. Phone numbers are normalized and hashed before being used as
// counter keys, so formatting variants share one counter.
func AuthRateLimit(policy AuthRateLimitPolicy, store RateLimiterStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if !policy.enabled() || store == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var identifier string
			if policy.identifierLimit > 0 {
				body, err := io.ReadAll(io.LimitReader(r.Body, maxAuthBody))
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body"))
					return
				}
				r.Body = io.NopCloser(bytes.NewReader(body))
				identifier = normalizeIdentifier(extractIdentifier(body))
			}

			for _, check := range policy.checks(clientIP(r), identifier) {
				count, err := store.IncrWithTTL(ctx, check.key, policy.window)
				if err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rate limiting"))
					return
				}
				if count > int64(check.limit) {
					rejectRateLimited(ctx, logg, w, policy, check, count)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func rejectRateLimited(ctx context.Context, logg *logger.Logger, w http.ResponseWriter, policy AuthRateLimitPolicy, check rateCheck, count int64) {
	seconds := int(policy.window.Seconds())
	if logg != nil {
		field := "ip"
		if check.scope == "identifier" {
			field = "identifier_hash"
		}
		logg.Warn(logg.WithFields(ctx, map[string]any{
			"scope":          check.scope,
			"policy":         policy.name,
			"attempts":       count,
			"limit":          check.limit,
			"window_seconds": seconds,
			field:            check.label,
		}), "auth.rate_limit.blocked")
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeRateLimit, "too many attempts, try again later"))
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// socket peer.
func clientIP(r *http.Request) string {
	if header := r.Header.Get("X-Forwarded-For"); header != "" {
		first, _, _ := strings.Cut(header, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
		return ip
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func extractIdentifier(payload []byte) string {
	var body struct {
		Identifier string `json:"identifier"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return ""
	}
	return body.Identifier
}

func normalizeIdentifier(value string) string {
	if phone, err := users.NormalizeIdentifier(value); err == nil {
		return phone
	}
	return strings.ToLower(strings.TrimSpace(value))
}

func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
