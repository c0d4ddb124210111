// Package config loads settings from a YAML file, then from the environment
// (optionally seeded by a .env file). Environment values win.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	LogLevel    string      `yaml:"log_level" env:"LOG_LEVEL"`
	Server      Server      `yaml:"server"`
	HTTP        HTTP        `yaml:"http" envPrefix:"HTTP_"`
	FMP         Vendor      `yaml:"fmp" envPrefix:"FMP_"`
	Cboe        Vendor      `yaml:"cboe" envPrefix:"CBOE_"`
	Tiingo      Vendor      `yaml:"tiingo" envPrefix:"TIINGO_"`
	ECB         Vendor      `yaml:"ecb" envPrefix:"ECB_"`
	Credentials Credentials `yaml:"credentials"`
}

type Server struct {
	Port            string        `yaml:"port" env:"PORT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// HTTP configures the outbound vendor transport.
type HTTP struct {
	Timeout      time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RetryCount   int           `yaml:"retry_count" env:"RETRY_COUNT"`
	RetryWait    time.Duration `yaml:"retry_wait" env:"RETRY_WAIT"`
	RetryMaxWait time.Duration `yaml:"retry_max_wait" env:"RETRY_MAX_WAIT"`
	UserAgent    string        `yaml:"user_agent" env:"USER_AGENT"`
	Debug        bool          `yaml:"debug" env:"DEBUG"`
}

// Vendor holds the per-provider switches and request budget. When
// MaxRequestsPerMinute is set it takes precedence over MinRequestInterval.
// MaxConcurrency caps sub-requests in flight; zero launches them all at once.
type Vendor struct {
	Enabled              bool          `yaml:"enabled" env:"ENABLED"`
	BaseURL              string        `yaml:"base_url" env:"BASE_URL"`
	MaxRequestsPerMinute int           `yaml:"max_requests_per_minute" env:"MAX_RPM"`
	Burst                int           `yaml:"burst" env:"BURST"`
	MinRequestInterval   time.Duration `yaml:"min_request_interval" env:"MIN_REQUEST_INTERVAL"`
	MaxConcurrency       int           `yaml:"max_concurrency" env:"MAX_CONCURRENCY"`
}

// Credentials are secrets; prefer setting them through the environment.
type Credentials struct {
	FMPAPIKey   string `yaml:"fmp_api_key" env:"FMP_API_KEY"`
	TiingoToken string `yaml:"tiingo_token" env:"TIINGO_TOKEN"`
}

func Default() Config {
	return Config{
		LogLevel: "info",
		Server: Server{
			Port:            "8080",
			RequestTimeout:  30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    1 << 20,
		},
		HTTP: HTTP{
			Timeout:      10 * time.Second,
			RetryCount:   2,
			RetryWait:    500 * time.Millisecond,
			RetryMaxWait: 5 * time.Second,
			UserAgent:    "datafeed/1.0",
		},
		FMP:    Vendor{Enabled: true, MaxRequestsPerMinute: 300, Burst: 10},
		Cboe:   Vendor{Enabled: true, MinRequestInterval: 100 * time.Millisecond},
		Tiingo: Vendor{Enabled: true, MaxRequestsPerMinute: 50, Burst: 5},
		ECB:    Vendor{Enabled: true},
	}
}

// Load applies, in order: defaults, the YAML file at path (DefaultPath when
// empty; a missing file is fine), a .env file in the working directory, and
// the process environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	b, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return cfg, fmt.Errorf("load .env: %w", err)
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Server.Port == "" {
		errs = append(errs, errors.New("server.port is empty"))
	}
	if c.HTTP.RetryCount < 0 {
		errs = append(errs, errors.New("http.retry_count is negative"))
	}
	for name, v := range c.Vendors() {
		if v.MaxRequestsPerMinute < 0 || v.Burst < 0 || v.MinRequestInterval < 0 || v.MaxConcurrency < 0 {
			errs = append(errs, fmt.Errorf("%s: limits must not be negative", name))
		}
	}
	return errors.Join(errs...)
}

// Vendors indexes the vendor sections by provider name.
func (c Config) Vendors() map[string]Vendor {
	return map[string]Vendor{
		"fmp":    c.FMP,
		"cboe":   c.Cboe,
		"tiingo": c.Tiingo,
		"ecb":    c.ECB,
	}
}

// ProviderCredentials returns the configured secrets keyed by the credential
// names providers declare. Unset secrets are omitted.
func (c Config) ProviderCredentials() map[string]string {
	out := make(map[string]string, 2)
	if c.Credentials.FMPAPIKey != "" {
		out["fmp_api_key"] = c.Credentials.FMPAPIKey
	}
	if c.Credentials.TiingoToken != "" {
		out["tiingo_token"] = c.Credentials.TiingoToken
	}
	return out
}
