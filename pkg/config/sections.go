package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	TaxPolicyCartMode = "cart_mode"
	TaxPolicyLineMode = "line_mode"
)

type AppConfig struct {
	Env          string `envconfig:"SHOEFINDERZ_APP_ENV" required:"true"`
	Port         string `envconfig:"SHOEFINDERZ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"SHOEFINDERZ_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"SHOEFINDERZ_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"SHOEFINDERZ_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"SHOEFINDERZ_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool  { return strings.EqualFold(a.Env, AppEnvDev) }
func (a AppConfig) IsProd() bool { return strings.EqualFold(a.Env, AppEnvProd) }

// DBConfig takes either a full DSN or the discrete host fields. SQLitePath
// is used only with SHOEFINDERZ_USE_SQLITE.
type DBConfig struct {
	DSN string `envconfig:"SHOEFINDERZ_DB_DSN"`

	Host     string `envconfig:"SHOEFINDERZ_DB_HOST"`
	Port     int    `envconfig:"SHOEFINDERZ_DB_PORT" default:"5432"`
	User     string `envconfig:"SHOEFINDERZ_DB_USER"`
	Password string `envconfig:"SHOEFINDERZ_DB_PASSWORD"`
	Name     string `envconfig:"SHOEFINDERZ_DB_NAME"`
	SSLMode  string `envconfig:"SHOEFINDERZ_DB_SSLMODE" default:"disable"`

	SQLitePath string `envconfig:"SHOEFINDERZ_SQLITE_PATH" default:"shoefinderz.db"`

	MaxOpenConns    int           `envconfig:"SHOEFINDERZ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"SHOEFINDERZ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"SHOEFINDERZ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"SHOEFINDERZ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"SHOEFINDERZ_DB_SLOW_QUERY" default:"200ms"`
}

// RedisConfig prefers URL; Address, Password and DB apply when URL is empty.
type RedisConfig struct {
	URL          string        `envconfig:"SHOEFINDERZ_REDIS_URL"`
	Address      string        `envconfig:"SHOEFINDERZ_REDIS_ADDR"`
	Password     string        `envconfig:"SHOEFINDERZ_REDIS_PASSWORD"`
	DB           int           `envconfig:"SHOEFINDERZ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"SHOEFINDERZ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"SHOEFINDERZ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"SHOEFINDERZ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"SHOEFINDERZ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"SHOEFINDERZ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"SHOEFINDERZ_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"SHOEFINDERZ_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"SHOEFINDERZ_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"SHOEFINDERZ_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL is zero when unset or negative.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	return time.Duration(max(j.RefreshTokenTTLMinutes, 0)) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"SHOEFINDERZ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"SHOEFINDERZ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"SHOEFINDERZ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"SHOEFINDERZ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"SHOEFINDERZ_ARGON_KEY_LEN" default:"32"`
}

// AuthRateLimitConfig bounds login and signup attempts per client IP and per
// phone number inside a fixed window. A zero limit disables that counter.
type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"SHOEFINDERZ_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginIdentifierLimit  int           `envconfig:"SHOEFINDERZ_AUTH_RATE_LIMIT_LOGIN_IDENTIFIER_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"SHOEFINDERZ_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow          time.Duration `envconfig:"SHOEFINDERZ_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupIdentifierLimit int           `envconfig:"SHOEFINDERZ_AUTH_RATE_LIMIT_SIGNUP_IDENTIFIER_LIMIT" default:"3"`
	SignupIPLimit         int           `envconfig:"SHOEFINDERZ_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"SHOEFINDERZ_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"SHOEFINDERZ_AUTO_MIGRATE" default:"false"`
}

// PricingConfig controls how the API recomputes submitted order totals.
type PricingConfig struct {
	TaxPolicy string `envconfig:"SHOEFINDERZ_TAX_POLICY" default:"cart_mode"`
	GST       string `envconfig:"SHOEFINDERZ_GST_RATE" default:"0.12"`
}

func (p PricingConfig) GSTRate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(p.GST))
	switch {
	case err != nil:
		return decimal.Zero, fmt.Errorf("invalid %s %q: %w", EnvGSTRate, p.GST, err)
	case rate.IsNegative():
		return decimal.Zero, fmt.Errorf("%s must not be negative", EnvGSTRate)
	}
	return rate, nil
}

type OrdersConfig struct {
	IdempotencyTTL  time.Duration `envconfig:"SHOEFINDERZ_ORDERS_IDEMPOTENCY_TTL" default:"24h"`
	DefaultPageSize int           `envconfig:"SHOEFINDERZ_ORDERS_PAGE_SIZE" default:"25"`
}

// BootstrapAdminConfig seeds one admin account at API startup.
type BootstrapAdminConfig struct {
	Name       string `envconfig:"SHOEFINDERZ_BOOTSTRAP_ADMIN_NAME" default:"Store Admin"`
	Identifier string `envconfig:"SHOEFINDERZ_BOOTSTRAP_ADMIN_IDENTIFIER"`
	Password   string `envconfig:"SHOEFINDERZ_BOOTSTRAP_ADMIN_PASSWORD"`
}

func (b BootstrapAdminConfig) Enabled() bool {
	return strings.TrimSpace(b.Identifier) != "" && b.Password != ""
}

// TracingConfig selects where spans go. With the none exporter spans are
// still sampled so trace ids reach the logs, but nothing is exported.
type TracingConfig struct {
	Exporter     string  `envconfig:"SHOEFINDERZ_TRACING_EXPORTER" default:"none"`
	SampleRatio  float64 `envconfig:"SHOEFINDERZ_TRACING_SAMPLE_RATIO" default:"1"`
	OTLPEndpoint string  `envconfig:"SHOEFINDERZ_OTLP_ENDPOINT"`
	OTLPInsecure bool    `envconfig:"SHOEFINDERZ_OTLP_INSECURE" default:"false"`
}

func (t *TracingConfig) normalize() error {
	t.Exporter = strings.ToLower(strings.TrimSpace(t.Exporter))
	if t.Exporter == "" {
		t.Exporter = TracingExporterNone
	}
	switch t.Exporter {
	case TracingExporterNone, TracingExporterStdout:
	case TracingExporterOTLP:
		if strings.TrimSpace(t.OTLPEndpoint) == "" {
			return fmt.Errorf("%s is required when %s is %s", EnvOTLPEndpoint, EnvTracingExporter, TracingExporterOTLP)
		}
	default:
		return fmt.Errorf("%s must be %s, %s or %s", EnvTracingExporter, TracingExporterNone, TracingExporterStdout, TracingExporterOTLP)
	}
	if t.SampleRatio < 0 || t.SampleRatio > 1 {
		return fmt.Errorf("%s must be between 0 and 1", EnvTracingSampleRatio)
	}
	return nil
}
