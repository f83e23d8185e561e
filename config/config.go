package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	Environment  string
	Name         string
	Version      string
	LogLevel     string
	HTTP         HTTPConfig
	Postgres     PostgresConfig
	JWT          JWTConfig
	S3           S3Config
	Redis        RedisConfig
	Availability AvailabilityConfig
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxHeaderMB  int
}

type PostgresConfig struct {
	Host               string
	Port               string
	Username           string
	Password           string
	DBName             string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
	MaxLifetime        time.Duration
}

type JWTConfig struct {
	SigningKey      string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type S3Config struct {
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	UseSSL          bool
	PresignTTL      time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	FeedSize int
}

type AvailabilityConfig struct {
	// Storage is "memory" or "postgres". With postgres every slot mutation is
	// written through and evicted sessions are rebuilt from the table.
	Storage string
	// SessionCacheSize (AVAILABILITY_SESSION_CACHE_SIZE) bounds the providers
	// kept in memory. With memory storage it is also the number of providers
	// whose slots survive: the least recently used one beyond it loses them.
	SessionCacheSize  int
	GridCacheSize     int
	RecurrenceHorizon time.Duration
}

// NewConfig reads the environment, after loading .env from the working
// directory if one exists.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var env envReader

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		Name:        getEnv("APP_NAME", "healthfirst"),
		Version:     getEnv("APP_VERSION", "1.0.0"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTP: HTTPConfig{
			Port:         getEnv("HTTP_PORT", "8080"),
			ReadTimeout:  env.duration("HTTP_READ_TIMEOUT", "10s"),
			WriteTimeout: env.duration("HTTP_WRITE_TIMEOUT", "10s"),
			MaxHeaderMB:  getEnvAsInt("HTTP_MAX_HEADER_MB", 1),
		},
		Postgres: PostgresConfig{
			Host:               getEnv("POSTGRES_HOST", "localhost"),
			Port:               getEnv("POSTGRES_PORT", "5432"),
			Username:           getEnv("POSTGRES_USER", "postgres"),
			Password:           getEnv("POSTGRES_PASSWORD", "postgres"),
			DBName:             getEnv("POSTGRES_DB", "healthfirst"),
			SSLMode:            getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConnections:     getEnvAsInt("POSTGRES_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("POSTGRES_MAX_IDLE_CONNECTIONS", 5),
			MaxLifetime:        env.duration("POSTGRES_MAX_LIFETIME", "5m"),
		},
		JWT: JWTConfig{
			SigningKey:      getEnv("JWT_SIGNING_KEY", "your_secret_key"),
			AccessTokenTTL:  env.duration("JWT_ACCESS_TOKEN_TTL", "15m"),
			RefreshTokenTTL: env.duration("JWT_REFRESH_TOKEN_TTL", "24h"),
		},
		S3: S3Config{
			Endpoint:        getEnv("S3_ENDPOINT", ""),
			Region:          getEnv("S3_REGION", "us-east-1"),
			AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
			Bucket:          getEnv("S3_BUCKET", "healthfirst"),
			UseSSL:          getEnvAsBool("S3_USE_SSL", true),
			PresignTTL:      env.duration("S3_PRESIGN_TTL", "1h"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			FeedSize: getEnvAsInt("NOTIFICATION_FEED_SIZE", 50),
		},
		Availability: AvailabilityConfig{
			Storage:           getEnv("AVAILABILITY_STORAGE", StorageMemory),
			SessionCacheSize:  getEnvAsInt("AVAILABILITY_SESSION_CACHE_SIZE", 1024),
			GridCacheSize:     getEnvAsInt("AVAILABILITY_GRID_CACHE_SIZE", 64),
			RecurrenceHorizon: time.Duration(getEnvAsInt("AVAILABILITY_RECURRENCE_HORIZON_DAYS", 90)) * 24 * time.Hour,
		},
	}
	if env.err != nil {
		return nil, env.err
	}

	if s := cfg.Availability.Storage; s != StorageMemory && s != StoragePostgres {
		return nil, fmt.Errorf("AVAILABILITY_STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, s)
	}

	return cfg, nil
}

// envReader parses typed values and remembers the first failure, so NewConfig
// can read every field before checking.
type envReader struct {
	err error
}

func (r *envReader) duration(key, defaultValue string) time.Duration {
	d, err := time.ParseDuration(getEnv(key, defaultValue))
	if err != nil && r.err == nil {
		r.err = fmt.Errorf("%s: %w", key, err)
	}
	return d
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
