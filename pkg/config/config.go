// Package config loads the API and shop CLI settings from SHOEFINDERZ_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App            AppConfig
	DB             DBConfig
	Redis          RedisConfig
	JWT            JWTConfig
	Password       PasswordConfig
	AuthRateLimit  AuthRateLimitConfig
	FeatureFlags   FeatureFlagsConfig
	Pricing        PricingConfig
	Orders         OrdersConfig
	BootstrapAdmin BootstrapAdminConfig
	Tracing        TracingConfig
}

// Load reads the environment and reports every invalid setting at once.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite && cfg.DB.DSN == "" {
		dsn, err := cfg.DB.composeDSN()
		if err != nil {
			return nil, err
		}
		cfg.DB.DSN = dsn
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs error
	if c.Redis.URL == "" && c.Redis.Address == "" {
		errs = multierr.Append(errs, fmt.Errorf("%s or %s is required", EnvRedisURL, EnvRedisAddr))
	}
	if c.JWT.ExpirationMinutes <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("%s must be positive", EnvJWTExpMins))
	}
	if c.JWT.RefreshTokenTTLMinutes <= c.JWT.ExpirationMinutes {
		errs = multierr.Append(errs, fmt.Errorf("%s must exceed %s", EnvRefreshTokenTTLMinutes, EnvJWTExpMins))
	}
	if _, err := c.Pricing.GSTRate(); err != nil {
		errs = multierr.Append(errs, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Pricing.TaxPolicy)) {
	case "", TaxPolicyCartMode, TaxPolicyLineMode:
	default:
		errs = multierr.Append(errs, fmt.Errorf("%s must be %s or %s", EnvTaxPolicy, TaxPolicyCartMode, TaxPolicyLineMode))
	}
	if c.Orders.IdempotencyTTL <= 0 {
		errs = multierr.Append(errs, errors.New("orders idempotency ttl must be positive"))
	}
	if err := c.Tracing.normalize(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if b := c.BootstrapAdmin; (strings.TrimSpace(b.Identifier) == "") != (b.Password == "") {
		errs = multierr.Append(errs, fmt.Errorf("%s and %s must be set together", EnvBootstrapAdminID, EnvBootstrapAdminPassword))
	}
	return errs
}

// composeDSN builds a postgres URL from the discrete host settings.
func (db DBConfig) composeDSN() (string, error) {
	var missing []string
	for env, value := range map[string]string{EnvDBHost: db.Host, EnvDBUser: db.User, EnvDBName: db.Name} {
		if value == "" {
			missing = append(missing, env)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return "", fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   url.User(db.User),
		Host:   db.Host + ":" + strconv.Itoa(db.Port),
		Path:   db.Name,
	}
	if db.Password != "" {
		u.User = url.UserPassword(db.User, db.Password)
	}
	if db.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {db.SSLMode}}.Encode()
	}
	return u.String(), nil
}
