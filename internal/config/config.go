package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me"

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMySQL  = "mysql"
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppName     string
	Environment string
	ServerPort  string

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	StoreDriver   string
	MySQLDSN      string
	SQLitePath    string
	MongoURI      string
	MongoDatabase string

	RedisAddr string
	RedisDB   int
	RedisPass string

	NATSURL string

	JWTSecret        string
	JWTExpiresIn     time.Duration
	RefreshExpiresIn time.Duration

	AuthRateLimitRPS   float64
	AuthRateLimitBurst int
	CORSOrigins        []string

	LogLevel  string
	LogFormat string

	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
// A .env file in the working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppName:     getEnv("APP_NAME", "hotelbooking"),
		Environment: getEnv("APP_ENV", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),

		ReadTimeout:     getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
		WriteTimeout:    getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),

		StoreDriver:   strings.ToLower(getEnv("STORE_DRIVER", StoreMySQL)),
		MySQLDSN:      getEnv("MYSQL_DSN", "user:password@tcp(localhost:3306)/hotels?charset=utf8mb4&parseTime=True&loc=UTC"),
		SQLitePath:    getEnv("SQLITE_PATH", "hotels.db"),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "hotels"),

		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:   getEnvInt("REDIS_DB", 0),
		RedisPass: os.Getenv("REDIS_PASSWORD"),

		NATSURL: os.Getenv("NATS_URL"),

		JWTSecret:        getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiresIn:     getEnvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		RefreshExpiresIn: getEnvDuration("REFRESH_EXPIRES_IN", 7*24*time.Hour),

		AuthRateLimitRPS:   getEnvFloat("AUTH_RATE_LIMIT_RPS", 1),
		AuthRateLimitBurst: getEnvInt("AUTH_RATE_LIMIT_BURST", 10),
		CORSOrigins:        getEnvList("CORS_ORIGINS", []string{"*"}),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),

		SwaggerHost: os.Getenv("SWAGGER_HOST"),
	}
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMySQL:
		if c.MySQLDSN == "" {
			return errors.New("MYSQL_DSN is required when STORE_DRIVER=mysql")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORE_DRIVER=sqlite")
		}
	case StoreMongo:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("MONGO_URI and MONGO_DATABASE are required when STORE_DRIVER=mongo")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.IsProduction() && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in production")
	}
	if c.JWTExpiresIn <= 0 || c.RefreshExpiresIn <= 0 {
		return errors.New("token lifetimes must be positive")
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
