package config

const (
	EnvPrefix = "SHOEFINDERZ"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv                 = "SHOEFINDERZ_APP_ENV"
	EnvPort                   = "SHOEFINDERZ_APP_PORT"
	EnvLogLevel               = "SHOEFINDERZ_LOG_LEVEL"
	EnvDBDSN                  = "SHOEFINDERZ_DB_DSN"
	EnvDBHost                 = "SHOEFINDERZ_DB_HOST"
	EnvDBUser                 = "SHOEFINDERZ_DB_USER"
	EnvDBName                 = "SHOEFINDERZ_DB_NAME"
	EnvRedisURL               = "SHOEFINDERZ_REDIS_URL"
	EnvRedisAddr              = "SHOEFINDERZ_REDIS_ADDR"
	EnvJWTSecret              = "SHOEFINDERZ_JWT_SECRET"
	EnvJWTIssuer              = "SHOEFINDERZ_JWT_ISSUER"
	EnvJWTExpMins             = "SHOEFINDERZ_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "SHOEFINDERZ_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite              = "SHOEFINDERZ_USE_SQLITE"
	EnvTaxPolicy              = "SHOEFINDERZ_TAX_POLICY"
	EnvGSTRate                = "SHOEFINDERZ_GST_RATE"
	EnvBootstrapAdminID       = "SHOEFINDERZ_BOOTSTRAP_ADMIN_IDENTIFIER"
	EnvBootstrapAdminPassword = "SHOEFINDERZ_BOOTSTRAP_ADMIN_PASSWORD"
	EnvShopAPIBaseURL         = "SHOEFINDERZ_SHOP_API_URL"
	EnvShopSessionFile        = "SHOEFINDERZ_SHOP_SESSION_FILE"
	EnvShopRequestTimeout     = "SHOEFINDERZ_SHOP_REQUEST_TIMEOUT"
	EnvTracingExporter        = "SHOEFINDERZ_TRACING_EXPORTER"
	EnvTracingSampleRatio     = "SHOEFINDERZ_TRACING_SAMPLE_RATIO"
	EnvOTLPEndpoint           = "SHOEFINDERZ_OTLP_ENDPOINT"
)

const (
	TracingExporterNone   = "none"
	TracingExporterStdout = "stdout"
	TracingExporterOTLP   = "otlp"
)
