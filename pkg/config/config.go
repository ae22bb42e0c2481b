package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	RateLimit     RateLimitConfig
	Uploads       UploadsConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"PROCUREMENT_APP_ENV" required:"true"`
	Port         string `envconfig:"PROCUREMENT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PROCUREMENT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PROCUREMENT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	env := strings.ToLower(strings.TrimSpace(a.Env))
	return env == AppEnvDev || env == "development" || env == "local"
}

func (a AppConfig) IsProd() bool {
	env := strings.ToLower(strings.TrimSpace(a.Env))
	return env == AppEnvProd || env == "production"
}

type DBConfig struct {
	DSN    string `envconfig:"PROCUREMENT_DB_DSN"`
	Driver string `envconfig:"PROCUREMENT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"PROCUREMENT_DB_HOST"`
	LegacyPort     int    `envconfig:"PROCUREMENT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PROCUREMENT_DB_USER"`
	LegacyPassword string `envconfig:"PROCUREMENT_DB_PASSWORD"`
	LegacyName     string `envconfig:"PROCUREMENT_DB_NAME"`
	LegacySSLMode  string `envconfig:"PROCUREMENT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PROCUREMENT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PROCUREMENT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PROCUREMENT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PROCUREMENT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// IsSQLite reports whether the local file driver is selected.
func (db DBConfig) IsSQLite() bool {
	return strings.EqualFold(strings.TrimSpace(db.Driver), DBDriverSQLite)
}

type RedisConfig struct {
	URL          string        `envconfig:"PROCUREMENT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PROCUREMENT_REDIS_ADDR"`
	Password     string        `envconfig:"PROCUREMENT_REDIS_PASSWORD"`
	DB           int           `envconfig:"PROCUREMENT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PROCUREMENT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PROCUREMENT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PROCUREMENT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PROCUREMENT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PROCUREMENT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"PROCUREMENT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"PROCUREMENT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"PROCUREMENT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"PROCUREMENT_REFRESH_TOKEN_TTL_MINUTES" default:"10080"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"PROCUREMENT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"PROCUREMENT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"PROCUREMENT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"PROCUREMENT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"PROCUREMENT_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow           time.Duration `envconfig:"PROCUREMENT_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"15m"`
	LoginUsernameLimit    int           `envconfig:"PROCUREMENT_AUTH_RATE_LIMIT_LOGIN_USERNAME_LIMIT" default:"5"`
	LoginIPLimit          int           `envconfig:"PROCUREMENT_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"5"`
	RegisterWindow        time.Duration `envconfig:"PROCUREMENT_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterUsernameLimit int           `envconfig:"PROCUREMENT_AUTH_RATE_LIMIT_REGISTER_USERNAME_LIMIT" default:"3"`
	RegisterIPLimit       int           `envconfig:"PROCUREMENT_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// RateLimitConfig is the general per-IP budget applied to every /api route.
type RateLimitConfig struct {
	Window   time.Duration `envconfig:"PROCUREMENT_RATE_LIMIT_WINDOW" default:"1m"`
	Requests int           `envconfig:"PROCUREMENT_RATE_LIMIT_REQUESTS" default:"100"`
}

type UploadsConfig struct {
	Dir        string `envconfig:"PROCUREMENT_UPLOADS_DIR" default:"uploads"`
	MaxFiles   int    `envconfig:"PROCUREMENT_UPLOADS_MAX_FILES" default:"5"`
	MaxFileMB  int    `envconfig:"PROCUREMENT_UPLOADS_MAX_FILE_MB" default:"5"`
	PublicPath string `envconfig:"PROCUREMENT_UPLOADS_PUBLIC_PATH" default:"/uploads"`
}

// MaxFileBytes converts the per-file MB cap into bytes.
func (u UploadsConfig) MaxFileBytes() int64 {
	if u.MaxFileMB <= 0 {
		return 0
	}
	return int64(u.MaxFileMB) << 20
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"PROCUREMENT_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000,http://localhost:5173"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PROCUREMENT_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}
	if db.IsSQLite() {
		db.DSN = defaultSQLiteFile
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
