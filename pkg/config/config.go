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
	PasswordReset PasswordResetConfig
	AuthRateLimit AuthRateLimitConfig
	Mail          MailConfig
	AI            AIConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if !cfg.FeatureFlags.UseSQLite {
		if err := cfg.DB.ensureDSN(); err != nil {
			return nil, err
		}
	}
	if err := cfg.JWT.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"MORADORES_APP_ENV" required:"true"`
	Port         string `envconfig:"MORADORES_APP_PORT" default:"4000"`
	LogLevel     string `envconfig:"MORADORES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"MORADORES_LOG_WARN_STACK" default:"false"`
	TimeZone     string `envconfig:"MORADORES_TZ" default:"America/Sao_Paulo"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// Location resolves TimeZone, falling back to UTC when it is empty or
// unknown to the host.
func (a AppConfig) Location() *time.Location {
	if strings.TrimSpace(a.TimeZone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(a.TimeZone)
	if err != nil {
		return time.UTC
	}
	return loc
}

type DBConfig struct {
	DSN string `envconfig:"MORADORES_DB_DSN"`

	LegacyHost     string `envconfig:"MORADORES_DB_HOST"`
	LegacyPort     int    `envconfig:"MORADORES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"MORADORES_DB_USER"`
	LegacyPassword string `envconfig:"MORADORES_DB_PASSWORD"`
	LegacyName     string `envconfig:"MORADORES_DB_NAME"`
	LegacySSLMode  string `envconfig:"MORADORES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"MORADORES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"MORADORES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"MORADORES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"MORADORES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// RedisConfig is optional: an empty URL and address disables rate limiting,
// idempotency records and the refresh session registry.
type RedisConfig struct {
	URL          string        `envconfig:"MORADORES_REDIS_URL"`
	Address      string        `envconfig:"MORADORES_REDIS_ADDR"`
	Password     string        `envconfig:"MORADORES_REDIS_PASSWORD"`
	DB           int           `envconfig:"MORADORES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"MORADORES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"MORADORES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"MORADORES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"MORADORES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"MORADORES_REDIS_WRITE_TIMEOUT" default:"5s"`
	KeyPrefix    string        `envconfig:"MORADORES_REDIS_KEY_PREFIX" default:"mz"`
}

func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.URL) != "" || strings.TrimSpace(r.Address) != ""
}

type JWTConfig struct {
	Secret                 string `envconfig:"MORADORES_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"MORADORES_JWT_ISSUER" default:"moradores-api"`
	Audience               string `envconfig:"MORADORES_JWT_AUDIENCE" default:"moradores-app"`
	ExpirationMinutes      int    `envconfig:"MORADORES_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"MORADORES_REFRESH_TOKEN_TTL_MINUTES" default:"1440"`
}

// AccessTokenTTL returns the access token TTL configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return 0
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

func (j JWTConfig) validate() error {
	if j.AccessTokenTTL() <= 0 {
		return fmt.Errorf("%s must be positive", EnvJWTExpMins)
	}
	if j.RefreshTokenTTL() <= j.AccessTokenTTL() {
		return fmt.Errorf("%s must exceed %s", EnvRefreshTokenTTLMinutes, EnvJWTExpMins)
	}
	return nil
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"MORADORES_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"MORADORES_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"MORADORES_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"MORADORES_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"MORADORES_ARGON_KEY_LEN" default:"32"`
}

type PasswordResetConfig struct {
	TokenTTL time.Duration `envconfig:"MORADORES_PASSWORD_RESET_TTL" default:"1h"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"MORADORES_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"MORADORES_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"MORADORES_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RecoveryWindow     time.Duration `envconfig:"MORADORES_AUTH_RATE_LIMIT_RECOVERY_WINDOW" default:"15m"`
	RecoveryEmailLimit int           `envconfig:"MORADORES_AUTH_RATE_LIMIT_RECOVERY_EMAIL_LIMIT" default:"3"`
	RecoveryIPLimit    int           `envconfig:"MORADORES_AUTH_RATE_LIMIT_RECOVERY_IP_LIMIT" default:"10"`
}

type MailConfig struct {
	Host        string        `envconfig:"MORADORES_SMTP_HOST" default:"smtp.gmail.com"`
	Port        int           `envconfig:"MORADORES_SMTP_PORT" default:"587"`
	Secure      bool          `envconfig:"MORADORES_SMTP_SECURE" default:"false"`
	User        string        `envconfig:"MORADORES_SMTP_USER"`
	Password    string        `envconfig:"MORADORES_SMTP_PASSWORD"`
	From        string        `envconfig:"MORADORES_SMTP_FROM" default:"Sistema Dona Zulmira <noreply@donazulmira.com.br>"`
	Timeout     time.Duration `envconfig:"MORADORES_SMTP_TIMEOUT" default:"15s"`
	FrontendURL string        `envconfig:"MORADORES_FRONTEND_URL" default:"http://localhost:3000"`
}

type AIConfig struct {
	GeminiAPIKey  string        `envconfig:"MORADORES_GEMINI_API_KEY"`
	Model         string        `envconfig:"MORADORES_GEMINI_MODEL" default:"gemini-1.5-flash"`
	Timeout       time.Duration `envconfig:"MORADORES_GEMINI_TIMEOUT" default:"30s"`
	RatePerMinute float64       `envconfig:"MORADORES_AI_RATE_PER_MINUTE" default:"6"`
	Burst         int           `envconfig:"MORADORES_AI_BURST" default:"3"`
}

// Enabled reports whether an API key was provided.
func (a AIConfig) Enabled() bool {
	return strings.TrimSpace(a.GeminiAPIKey) != ""
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"MORADORES_CORS_ORIGINS" default:"http://localhost:3000,http://localhost:3001"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool   `envconfig:"MORADORES_USE_SQLITE" default:"false"`
	SQLitePath  string `envconfig:"MORADORES_SQLITE_PATH" default:"moradores.db"`
	AutoMigrate bool   `envconfig:"MORADORES_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
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
