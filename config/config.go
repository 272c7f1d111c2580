package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	minLookupTimeout = 100 * time.Millisecond
	maxLookupTimeout = 30 * time.Second
)

// Config stores all configuration for the service.
type Config struct {
	Port      string `mapstructure:"PORT" validate:"required,numeric"`
	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=json console"`

	ModelPath  string `mapstructure:"MODEL_PATH" validate:"required"`
	SchemaPath string `mapstructure:"SCHEMA_PATH" validate:"required"`

	LookupTimeout      time.Duration `mapstructure:"LOOKUP_TIMEOUT"`
	MaxOutboundLookups int           `mapstructure:"MAX_OUTBOUND_LOOKUPS" validate:"min=1"`
	DNSServer          string        `mapstructure:"DNS_SERVER"`
	ASNAPIURL          string        `mapstructure:"ASN_API_URL" validate:"required"`
	HTTPUserAgent      string        `mapstructure:"HTTP_USER_AGENT"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR" validate:"omitempty,hostname_port"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int           `mapstructure:"REDIS_DB" validate:"min=0"`
	WhoisCacheTTL time.Duration `mapstructure:"WHOIS_CACHE_TTL"`
}

var defaults = map[string]any{
	"PORT":                 "8080",
	"LOG_LEVEL":            "info",
	"LOG_FORMAT":           "json",
	"MODEL_PATH":           "model/random_forest.json",
	"SCHEMA_PATH":          "model/feature_names.json",
	"LOOKUP_TIMEOUT":       "5s",
	"MAX_OUTBOUND_LOOKUPS": 256,
	"DNS_SERVER":           "",
	"ASN_API_URL":          "http://ip-api.com/json/%s?fields=status,message,as",
	"HTTP_USER_AGENT":      "phishguard/1.0",
	"REDIS_ADDR":           "",
	"REDIS_PASSWORD":       "",
	"REDIS_DB":             0,
	"WHOIS_CACHE_TTL":      "24h",
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.LookupTimeout < minLookupTimeout {
		return fmt.Errorf("LOOKUP_TIMEOUT too small (%s), must be >=%s", c.LookupTimeout, minLookupTimeout)
	}
	if c.LookupTimeout > maxLookupTimeout {
		return fmt.Errorf("LOOKUP_TIMEOUT too large (%s), must be <=%s", c.LookupTimeout, maxLookupTimeout)
	}
	if c.RedisAddr != "" && c.WhoisCacheTTL <= 0 {
		return fmt.Errorf("WHOIS_CACHE_TTL must be positive when REDIS_ADDR is set")
	}
	return nil
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string { return ":" + c.Port }
