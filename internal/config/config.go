package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName               string        `mapstructure:"app_name"`
	Env                   string        `mapstructure:"app_env"`
	LogLevel              string        `mapstructure:"log_level"`
	APIBaseURL            string        `mapstructure:"api_base_url"`
	RequestTimeoutSeconds int64         `mapstructure:"request_timeout_seconds"`
	RequestTimeout        time.Duration `mapstructure:"-"`
	RoutesFile            string        `mapstructure:"routes_file"`
	NotifiersFile         string        `mapstructure:"notifiers_file"`

	TokenStoreType  string        `mapstructure:"token_store_type"`
	TokenStorePath  string        `mapstructure:"token_store_path"`
	TokenTTLSeconds int64         `mapstructure:"token_ttl_seconds"`
	TokenTTL        time.Duration `mapstructure:"-"`
}

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith reads configuration into the supplied viper instance, letting callers
// bind command line flags before defaults and environment are resolved.
func LoadWith(v *viper.Viper) (*Config, error) {
	_ = godotenv.Load("configs/.env")

	if v == nil {
		v = viper.New()
	}
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "contacts-client")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("api_base_url", "http://localhost:3000")
	v.SetDefault("request_timeout_seconds", 10)
	v.SetDefault("routes_file", "")
	v.SetDefault("notifiers_file", "")
	v.SetDefault("token_store_type", "bbolt")
	v.SetDefault("token_store_path", "./data/session.db")
	v.SetDefault("token_ttl_seconds", 0) // never expires
}

func (cfg *Config) normalize() error {
	cfg.APIBaseURL = strings.TrimRight(strings.TrimSpace(cfg.APIBaseURL), "/")
	if cfg.APIBaseURL == "" {
		return fmt.Errorf("api_base_url is required")
	}
	u, err := url.Parse(cfg.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid api_base_url %q", cfg.APIBaseURL)
	}

	if cfg.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid request_timeout_seconds (must be positive seconds)")
	}
	cfg.RequestTimeout = time.Duration(cfg.RequestTimeoutSeconds) * time.Second

	if cfg.TokenTTLSeconds < 0 {
		return fmt.Errorf("invalid token_ttl_seconds (must be zero or positive seconds)")
	}
	cfg.TokenTTL = time.Duration(cfg.TokenTTLSeconds) * time.Second

	cfg.RoutesFile = strings.TrimSpace(cfg.RoutesFile)
	cfg.NotifiersFile = strings.TrimSpace(cfg.NotifiersFile)
	return nil
}
