// Package config loads service settings from YAML files and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the resolved service configuration.
type Config struct {
	Port           string `mapstructure:"PORT"`
	Env            string `mapstructure:"APP_ENV"`
	LogLevel       string `mapstructure:"LOG_LEVEL"`
	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags   string `mapstructure:"FEATURE_FLAGS"`

	MongoURI         string        `mapstructure:"MONGODB_URI"`
	MongoDatabase    string        `mapstructure:"MONGODB_DATABASE"`
	DBMaxRetries     int           `mapstructure:"DB_MAX_RETRIES"`
	DBRetryBackoff   time.Duration `mapstructure:"DB_RETRY_BACKOFF"`
	DBConnectTimeout time.Duration `mapstructure:"DB_CONNECT_TIMEOUT"`
	DBSocketTimeout  time.Duration `mapstructure:"DB_SOCKET_TIMEOUT"`

	JWTSecret   string `mapstructure:"JWT_SECRET"`
	JWTIssuer   string `mapstructure:"JWT_ISSUER"`
	JWTAudience string `mapstructure:"JWT_AUDIENCE"`

	RedisURL         string `mapstructure:"REDIS_URL"`
	RateLimitEnabled bool   `mapstructure:"RATE_LIMIT_ENABLED"`

	TracingEnabled      bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter     string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint        string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSamplerRatio float64 `mapstructure:"TRACING_SAMPLER_RATIO"`
}

// ErrMissingMongoURI is returned when no connection string is configured.
var ErrMissingMongoURI = errors.New("MONGODB_URI is required")

const defaultJWTSecret = "your-secret-key-change-in-production"

// defaults are applied before unmarshalling. Every key must appear here so
// AutomaticEnv can bind it.
var defaults = map[string]any{
	"PORT":                  "8080",
	"APP_ENV":               "development",
	"LOG_LEVEL":             "info",
	"ALLOWED_ORIGINS":       "http://localhost:3000,http://127.0.0.1:3000",
	"FEATURE_FLAGS":         "notifications=on,profile_cache=on",
	"MONGODB_URI":           "",
	"MONGODB_DATABASE":      "farm_connect",
	"DB_MAX_RETRIES":        3,
	"DB_RETRY_BACKOFF":      "5s",
	"DB_CONNECT_TIMEOUT":    "30s",
	"DB_SOCKET_TIMEOUT":     "75s",
	"JWT_SECRET":            defaultJWTSecret,
	"JWT_ISSUER":            "",
	"JWT_AUDIENCE":          "",
	"REDIS_URL":             "localhost:6379",
	"TRACING_ENABLED":       false,
	"TRACING_EXPORTER":      "stdout",
	"OTLP_ENDPOINT":         "localhost:4318",
	"TRACING_SAMPLER_RATIO": 1.0,
}

// LoadConfig reads config.yml, merges config.<APP_ENV>.yml over it and lets
// environment variables override both. Outside development the profile file
// is optional, except in production where it must exist.
func LoadConfig() (*Config, error) {
	for _, dir := range []string{".", "..", "../.."} {
		viper.AddConfigPath(dir)
	}
	viper.SetConfigType("yml")
	viper.SetConfigName("config")
	viper.AutomaticEnv()

	// Environment variables alone are a complete configuration.
	_ = viper.ReadInConfig()

	env := strings.ToLower(strings.TrimSpace(viper.GetString("APP_ENV")))
	if env == "" {
		env = "development"
	}
	if err := mergeProfile(env); err != nil {
		return nil, err
	}

	for key, value := range defaults {
		viper.SetDefault(key, value)
	}
	viper.SetDefault("RATE_LIMIT_ENABLED", isProduction(env))

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))
	cfg.MongoURI = strings.TrimSpace(cfg.MongoURI)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func mergeProfile(env string) error {
	if env == "development" {
		return nil
	}
	viper.SetConfigName("config." + env)
	err := viper.MergeInConfig()
	if err == nil {
		slog.Info("merged profile configuration", slog.String("file", "config."+env+".yml"))
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) && !isProduction(env) {
		return nil
	}
	return fmt.Errorf("profile config config.%s.yml: %w", env, err)
}

// Validate checks required values and, in production, secret strength.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return errors.New("PORT is required")
	case c.MongoURI == "":
		return ErrMissingMongoURI
	case !strings.HasPrefix(c.MongoURI, "mongodb://") && !strings.HasPrefix(c.MongoURI, "mongodb+srv://"):
		return errors.New("MONGODB_URI must start with mongodb:// or mongodb+srv://")
	case c.MongoDatabase == "":
		return errors.New("MONGODB_DATABASE is required")
	case c.JWTSecret == "":
		return errors.New("JWT_SECRET is required")
	case c.DBMaxRetries < 1:
		return errors.New("DB_MAX_RETRIES must be at least 1")
	case c.DBRetryBackoff < 0 || c.DBConnectTimeout <= 0 || c.DBSocketTimeout <= 0:
		return errors.New("database timeouts must be positive")
	}

	weakSecret := len(c.JWTSecret) < 32
	if !isProduction(c.Env) {
		if weakSecret {
			slog.Warn("JWT_SECRET is shorter than 32 characters")
		}
		return nil
	}
	if c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET still has its default value")
	}
	if weakSecret {
		return errors.New("JWT_SECRET must be at least 32 characters in production")
	}
	if c.AllowedOrigins == "*" {
		slog.Warn("ALLOWED_ORIGINS allows every origin in production")
	}
	return nil
}

// IsProduction reports whether the config targets a production deployment.
func (c *Config) IsProduction() bool {
	return isProduction(c.Env)
}

func isProduction(env string) bool {
	return env == "production" || env == "prod"
}
