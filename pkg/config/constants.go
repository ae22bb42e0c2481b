package config

// EnvPrefix namespaces every variable read by Load.
const EnvPrefix = "PROCUREMENT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv       = "PROCUREMENT_APP_ENV"
	EnvPort         = "PROCUREMENT_APP_PORT"
	EnvLogLevel     = "PROCUREMENT_LOG_LEVEL"
	EnvLogWarnStack = "PROCUREMENT_LOG_WARN_STACK"

	EnvDBDSN      = "PROCUREMENT_DB_DSN"
	EnvDBDriver   = "PROCUREMENT_DB_DRIVER"
	EnvDBHost     = "PROCUREMENT_DB_HOST"
	EnvDBPort     = "PROCUREMENT_DB_PORT"
	EnvDBUser     = "PROCUREMENT_DB_USER"
	EnvDBPassword = "PROCUREMENT_DB_PASSWORD"
	EnvDBName     = "PROCUREMENT_DB_NAME"
	EnvDBSSLMode  = "PROCUREMENT_DB_SSLMODE"

	EnvRedisURL = "PROCUREMENT_REDIS_URL"

	EnvJWTSecret              = "PROCUREMENT_JWT_SECRET"
	EnvJWTIssuer              = "PROCUREMENT_JWT_ISSUER"
	EnvJWTExpMins             = "PROCUREMENT_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "PROCUREMENT_REFRESH_TOKEN_TTL_MINUTES"

	EnvLoginWindow  = "PROCUREMENT_AUTH_RATE_LIMIT_LOGIN_WINDOW"
	EnvLoginIPLimit = "PROCUREMENT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT"

	EnvRateLimitWindow   = "PROCUREMENT_RATE_LIMIT_WINDOW"
	EnvRateLimitRequests = "PROCUREMENT_RATE_LIMIT_REQUESTS"

	EnvUploadsDir     = "PROCUREMENT_UPLOADS_DIR"
	EnvCORSOrigins    = "PROCUREMENT_CORS_ALLOWED_ORIGINS"
	EnvAutoMigrate    = "PROCUREMENT_AUTO_MIGRATE"
	defaultSQLiteFile = "procurement.db"
)

// legacyDBEnvVars are the discrete connection variables required when no DSN is set.
var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
