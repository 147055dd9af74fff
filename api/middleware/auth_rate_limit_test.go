package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/shoefinderz-backend/pkg/errors"
)

func attempt(h http.Handler, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.RemoteAddr = "1.2.3.4:5678"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func okHandler(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) }

func TestAuthRateLimitRestoresBody(t *testing.T) {
	_, client := newTestRedis(t)
	policy := NewAuthRateLimitPolicy("login", time.Minute, 2, 2)
	var seen string
	h := AuthRateLimit(policy, client, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		seen = string(raw)
	}))

	body := `{"identifier":"9876543210","password":"secret"}`
	rec := attempt(h, "/api/v1/auth/login", body, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, body, seen)
}

func TestAuthRateLimitCountsNormalizedIdentifier(t *testing.T) {
	mr, client := newTestRedis(t)
	policy := NewAuthRateLimitPolicy("login", time.Minute, 0, 2)
	h := AuthRateLimit(policy, client, nil)(http.HandlerFunc(okHandler))

	// formatting variants of one phone number share a counter
	variants := []string{"+91 98765 43210", "+91-98765-43210", "+919876543210"}
	codes := make([]int, 0, len(variants))
	var last *httptest.ResponseRecorder
	for _, id := range variants {
		last = attempt(h, "/api/v1/auth/login", `{"identifier":"`+id+`","password":"x"}`, nil)
		codes = append(codes, last.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Equal(t, string(pkgerrors.CodeRateLimit), errorCode(t, last))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.True(t, strings.HasPrefix(keys[0], "sfz:rate_limit:login:identifier:"), keys[0])
	assert.NotContains(t, keys[0], "98765", "identifiers are stored hashed")
}

func TestAuthRateLimitPerIP(t *testing.T) {
	mr, client := newTestRedis(t)
	policy := NewAuthRateLimitPolicy("signup", time.Minute, 1, 0)
	h := AuthRateLimit(policy, client, nil)(http.HandlerFunc(okHandler))

	body := `{"identifier":"9876543210","password":"secret"}`
	assert.Equal(t, http.StatusOK, attempt(h, "/api/v1/auth/signup", body, nil).Code)

	blocked := attempt(h, "/api/v1/auth/signup", body, nil)
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.True(t, mr.Exists("sfz:rate_limit:signup:ip:1.2.3.4"))
}

func TestAuthRateLimitWindowExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	policy := NewAuthRateLimitPolicy("login", time.Minute, 1, 0)
	h := AuthRateLimit(policy, client, nil)(http.HandlerFunc(okHandler))

	forwarded := map[string]string{"X-Forwarded-For": "9.9.9.9, 10.0.0.1"}
	assert.Equal(t, http.StatusOK, attempt(h, "/api/v1/auth/login", `{}`, forwarded).Code)
	assert.Equal(t, http.StatusTooManyRequests, attempt(h, "/api/v1/auth/login", `{}`, forwarded).Code)
	assert.True(t, mr.Exists("sfz:rate_limit:login:ip:9.9.9.9"))

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, attempt(h, "/api/v1/auth/login", `{}`, forwarded).Code)
}
