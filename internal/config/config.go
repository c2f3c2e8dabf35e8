package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	DatabaseURL    string        `mapstructure:"database_url"`
	Port           string        `mapstructure:"port"`
	LogLevel       string        `mapstructure:"log_level"`
	CORSOrigins    []string      `mapstructure:"cors_origins"`
	UserCacheTTL   time.Duration `mapstructure:"user_cache_ttl"`
	IdempotencyTTL time.Duration `mapstructure:"idempotency_ttl"`
	JWT            JWTConfig     `mapstructure:"jwt"`
	Redis          RedisConfig   `mapstructure:"redis"`
}

// JWTConfig holds the token verification settings.
type JWTConfig struct {
	Secret   string `mapstructure:"secret"`
	Audience string `mapstructure:"audience"`
	Issuer   string `mapstructure:"issuer"`
}

// RedisConfig enables the shared user cache when Addr is set.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// EnvConfigPath names the variable that points at an explicit config file.
const EnvConfigPath = "PROMPT_VAULT_CONFIG"

var envKeys = map[string]string{
	"database_url":    "DATABASE_URL",
	"port":            "PORT",
	"log_level":       "LOG_LEVEL",
	"cors_origins":    "CORS_ORIGINS",
	"user_cache_ttl":  "USER_CACHE_TTL",
	"idempotency_ttl": "IDEMPOTENCY_TTL",
	"jwt.secret":      "JWT_SECRET",
	"jwt.audience":    "JWT_AUDIENCE",
	"jwt.issuer":      "JWT_ISSUER",
	"redis.addr":      "REDIS_ADDR",
	"redis.password":  "REDIS_PASSWORD",
	"redis.db":        "REDIS_DB",
}

// Load reads config.yaml from path, $PROMPT_VAULT_CONFIG or the working
// directory, in that order, then applies environment overrides. A missing
// config file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("user_cache_ttl", 5*time.Minute)
	v.SetDefault("idempotency_ttl", 24*time.Hour)
	v.SetDefault("jwt.audience", "authenticated")

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.CORSOrigins = splitOrigins(cfg.CORSOrigins)
	return &cfg, nil
}

// Validate reports every missing setting needed to serve.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if err := c.ValidateAuth(); err != nil {
		errs = append(errs, err)
	}
	if c.UserCacheTTL < 0 {
		errs = append(errs, errors.New("USER_CACHE_TTL must not be negative"))
	}
	if c.IdempotencyTTL <= 0 {
		errs = append(errs, errors.New("IDEMPOTENCY_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// ValidateAuth reports missing token settings.
func (c *Config) ValidateAuth() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// splitOrigins accepts both a YAML list and a comma-separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, s := range in {
		for _, o := range strings.Split(s, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
