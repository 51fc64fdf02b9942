package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App       AppConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	OTP       OTPConfig
	Broadcast BroadcastConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines session authentication parameters.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
}

// OTPConfig defines the external passcode provider and guard behavior.
// VerifyBackend selects how passcode proof is checked: "store" queries the
// local otps table, "provider" delegates to the provider's verify endpoints.
// Callers of the guard cannot tell which is in use.
type OTPConfig struct {
	ProviderBaseURL string
	TimeoutSeconds  int
	CodeTTLMinutes  int
	VerifyBackend   string
	SendLimit       int
	SendWindowMins  int
}

// BroadcastConfig tunes the live activity stream.
type BroadcastConfig struct {
	HeartbeatSeconds int
}

// VerifyBackendStore and VerifyBackendProvider are the accepted
// OTP_VERIFY_BACKEND values.
const (
	VerifyBackendStore    = "store"
	VerifyBackendProvider = "provider"
)

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	backend := getEnv("OTP_VERIFY_BACKEND", VerifyBackendStore)
	if backend != VerifyBackendStore && backend != VerifyBackendProvider {
		return nil, fmt.Errorf("invalid OTP_VERIFY_BACKEND: %q", backend)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "redemption-intake"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			BcryptCost:            getEnvAsInt("AUTH_BCRYPT_COST", 12),
		},
		OTP: OTPConfig{
			ProviderBaseURL: getEnv("OTP_PROVIDER_BASE_URL", "https://mail-steel.vercel.app"),
			TimeoutSeconds:  getEnvAsInt("OTP_PROVIDER_TIMEOUT_SECONDS", 10),
			CodeTTLMinutes:  getEnvAsInt("OTP_CODE_TTL_MINUTES", 60),
			VerifyBackend:   backend,
			SendLimit:       getEnvAsInt("OTP_SEND_LIMIT", 5),
			SendWindowMins:  getEnvAsInt("OTP_SEND_WINDOW_MINUTES", 60),
		},
		Broadcast: BroadcastConfig{
			HeartbeatSeconds: getEnvAsInt("BROADCAST_HEARTBEAT_SECONDS", 30),
		},
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// Timeout returns the provider client timeout duration.
func (o OTPConfig) Timeout() time.Duration {
	if o.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(o.TimeoutSeconds) * time.Second
}

// CodeTTL returns how long an issued passcode stays valid.
func (o OTPConfig) CodeTTL() time.Duration {
	if o.CodeTTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(o.CodeTTLMinutes) * time.Minute
}

// SendWindow returns the rate-limit window for outbound passcode sends.
func (o OTPConfig) SendWindow() time.Duration {
	if o.SendWindowMins <= 0 {
		return time.Hour
	}
	return time.Duration(o.SendWindowMins) * time.Minute
}

// HeartbeatInterval returns the activity heartbeat period.
func (b BroadcastConfig) HeartbeatInterval() time.Duration {
	if b.HeartbeatSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(b.HeartbeatSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
