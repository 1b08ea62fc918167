package config

const (
	EnvPrefix = "MORADORES"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "MORADORES_APP_ENV"
	EnvPort     = "MORADORES_APP_PORT"
	EnvLogLevel = "MORADORES_LOG_LEVEL"

	EnvDBDSN  = "MORADORES_DB_DSN"
	EnvDBHost = "MORADORES_DB_HOST"
	EnvDBUser = "MORADORES_DB_USER"
	EnvDBName = "MORADORES_DB_NAME"

	EnvRedisURL = "MORADORES_REDIS_URL"

	EnvJWTSecret              = "MORADORES_JWT_SECRET"
	EnvJWTIssuer              = "MORADORES_JWT_ISSUER"
	EnvJWTAudience            = "MORADORES_JWT_AUDIENCE"
	EnvJWTExpMins             = "MORADORES_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "MORADORES_REFRESH_TOKEN_TTL_MINUTES"

	EnvPasswordResetTTL = "MORADORES_PASSWORD_RESET_TTL"

	EnvSMTPHost     = "MORADORES_SMTP_HOST"
	EnvFrontendURL  = "MORADORES_FRONTEND_URL"
	EnvGeminiAPIKey = "MORADORES_GEMINI_API_KEY"
	EnvCORSOrigins  = "MORADORES_CORS_ORIGINS"
	EnvUseSQLite    = "MORADORES_USE_SQLITE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
