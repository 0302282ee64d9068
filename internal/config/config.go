package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type AppCfg struct {
	Env          string        `yaml:"env"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	FrontendURL  string        `yaml:"frontend_url"`
}

type JWTCfg struct {
	Secret string        `yaml:"secret"`
	TTL    time.Duration `yaml:"ttl"`
}

type MongoCfg struct {
	URI        string `yaml:"uri"`
	Database   string `yaml:"database"`
	Collection string `yaml:"collection"`
}

type RedisCfg struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type BrevoCfg struct {
	APIKey    string `yaml:"apiKey"`
	FromEmail string `yaml:"fromEmail"`
	FromName  string `yaml:"fromName"`
}

type SecurityCfg struct {
	OtpTTL                 time.Duration `yaml:"otpTTL"`
	OtpRateLimitPerEmailHr int           `yaml:"otpRateLimitPerEmailPerHour"`
	PasswordHashCost       int           `yaml:"passwordHashCost"`
}

type Config struct {
	App      AppCfg      `yaml:"app"`
	JWT      JWTCfg      `yaml:"jwt"`
	Mongo    MongoCfg    `yaml:"mongo"`
	Redis    RedisCfg    `yaml:"redis"`
	Brevo    BrevoCfg    `yaml:"brevo"`
	Security SecurityCfg `yaml:"security"`
}

// IsProduction toggles cookie attributes and error verbosity.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// Load builds the one configuration struct the whole service runs on:
// defaults, then the optional YAML file, then environment overrides.
// Required secrets are validated here so nothing downstream has to
// re-check them per request.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	cfg.App.Env = "development"
	cfg.App.Port = 8000
	cfg.App.ReadTimeout = 15 * time.Second
	cfg.App.WriteTimeout = 15 * time.Second
	cfg.App.IdleTimeout = 60 * time.Second
	cfg.JWT.TTL = 7 * 24 * time.Hour
	cfg.Mongo.Database = "rcr"
	cfg.Mongo.Collection = "users"
	cfg.Security.OtpTTL = 5 * time.Minute
	cfg.Security.OtpRateLimitPerEmailHr = 5
	cfg.Security.PasswordHashCost = 10

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(b, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
			}
		}
	}

	override := func(env string, apply func(string)) {
		if v := os.Getenv(env); v != "" {
			apply(v)
		}
	}

	override("NODE_ENV", func(v string) { cfg.App.Env = v })
	override("APP_ENV", func(v string) { cfg.App.Env = v })
	override("PORT", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.App.Port = n
		}
	})
	override("FRONTEND_URL", func(v string) { cfg.App.FrontendURL = v })
	override("JWT_SECRET", func(v string) { cfg.JWT.Secret = v })
	override("JWT_TTL", func(v string) {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.JWT.TTL = d
		}
	})
	override("MONGODB_URL", func(v string) { cfg.Mongo.URI = v })
	override("MONGO_DB", func(v string) { cfg.Mongo.Database = v })
	override("MONGO_USER_COLLECTION", func(v string) { cfg.Mongo.Collection = v })
	override("REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	override("REDIS_PASSWORD", func(v string) { cfg.Redis.Password = v })
	override("REDIS_DB", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	})
	override("BREVO_API_KEY", func(v string) { cfg.Brevo.APIKey = v })
	override("BREVO_FROM_EMAIL", func(v string) { cfg.Brevo.FromEmail = v })
	override("BREVO_FROM_NAME", func(v string) { cfg.Brevo.FromName = v })
	override("OTP_TTL", func(v string) {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Security.OtpTTL = d
		}
	})
	override("OTP_RATE_LIMIT_PER_EMAIL_PER_HOUR", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.OtpRateLimitPerEmailHr = n
		}
	})
	override("PASSWORD_HASH_COST", func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Security.PasswordHashCost = n
		}
	})

	if cfg.JWT.Secret == "" {
		return nil, errors.New("JWT_SECRET is required (set in .env or config.yaml)")
	}
	if cfg.Mongo.URI == "" {
		return nil, errors.New("MONGODB_URL is required")
	}

	return cfg, nil
}
