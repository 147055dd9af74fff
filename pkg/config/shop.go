package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// ShopConfig configures the storefront CLI. It shares no required keys with
// the API so the CLI can run against a remote backend with only a base URL.
type ShopConfig struct {
	APIBaseURL     string        `envconfig:"SHOEFINDERZ_SHOP_API_URL" default:"http://localhost:8080/api/v1"`
	SessionFile    string        `envconfig:"SHOEFINDERZ_SHOP_SESSION_FILE" default:".shoefinderz-session.json"`
	RequestTimeout time.Duration `envconfig:"SHOEFINDERZ_SHOP_REQUEST_TIMEOUT" default:"15s"`
	LogLevel       string        `envconfig:"SHOEFINDERZ_LOG_LEVEL" default:"warn"`
	LogFormat      string        `envconfig:"SHOEFINDERZ_LOG_FORMAT" default:"console"`
	// TaxPolicy shares the API's key; both sides must total carts the same way.
	TaxPolicy string `envconfig:"SHOEFINDERZ_TAX_POLICY" default:"cart_mode"`
	Tracing   TracingConfig
}

func LoadShop() (*ShopConfig, error) {
	var cfg ShopConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing shop config: %w", err)
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%s must be an absolute http(s) URL, got %q", EnvShopAPIBaseURL, cfg.APIBaseURL)
	}
	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	if strings.TrimSpace(cfg.SessionFile) == "" {
		return nil, fmt.Errorf("%s must not be empty", EnvShopSessionFile)
	}
	switch cfg.TaxPolicy = strings.ToLower(strings.TrimSpace(cfg.TaxPolicy)); cfg.TaxPolicy {
	case TaxPolicyCartMode, TaxPolicyLineMode:
	default:
		return nil, fmt.Errorf("%s must be %s or %s", EnvTaxPolicy, TaxPolicyCartMode, TaxPolicyLineMode)
	}
	if err := cfg.Tracing.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
