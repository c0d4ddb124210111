// Package platform assembles the provider registry from configuration.
package platform

import (
	"log/slog"

	"datafeed/internal/config"
	"datafeed/internal/httpx"
	"datafeed/internal/httpx/ratelimit"
	"datafeed/internal/provider"
	"datafeed/internal/provider/cboe"
	"datafeed/internal/provider/ecb"
	"datafeed/internal/provider/fmp"
	"datafeed/internal/provider/tiingo"
)

// NewRegistry registers every enabled vendor. Each vendor gets its own
// transport so that its request budget is not shared.
func NewRegistry(cfg config.Config) (*provider.Registry, error) {
	var ps []provider.Provider
	creds := cfg.ProviderCredentials()

	if cfg.FMP.Enabled {
		if creds[fmp.CredentialKey] == "" {
			slog.Warn("fmp enabled but FMP_API_KEY is not set; requests will be rejected")
		}
		ps = append(ps, fmp.New(transport(cfg.HTTP, cfg.FMP), fmp.Config{
			BaseURL:        cfg.FMP.BaseURL,
			MaxConcurrency: cfg.FMP.MaxConcurrency,
		}))
	}
	if cfg.Cboe.Enabled {
		ps = append(ps, cboe.New(transport(cfg.HTTP, cfg.Cboe), cboe.Config{
			BaseURL:        cfg.Cboe.BaseURL,
			MaxConcurrency: cfg.Cboe.MaxConcurrency,
		}))
	}
	if cfg.Tiingo.Enabled {
		if creds[tiingo.CredentialKey] == "" {
			slog.Warn("tiingo enabled but TIINGO_TOKEN is not set; requests will be rejected")
		}
		ps = append(ps, tiingo.New(transport(cfg.HTTP, cfg.Tiingo), tiingo.Config{
			BaseURL:        cfg.Tiingo.BaseURL,
			MaxConcurrency: cfg.Tiingo.MaxConcurrency,
		}))
	}
	if cfg.ECB.Enabled {
		ps = append(ps, ecb.New(transport(cfg.HTTP, cfg.ECB), ecb.Config{
			BaseURL:        cfg.ECB.BaseURL,
			MaxConcurrency: cfg.ECB.MaxConcurrency,
		}))
	}
	return provider.NewRegistry(ps...)
}

// NewExecutor is NewRegistry plus the configured credentials.
func NewExecutor(cfg config.Config) (*provider.Executor, error) {
	reg, err := NewRegistry(cfg)
	if err != nil {
		return nil, err
	}
	return provider.NewExecutor(reg, cfg.ProviderCredentials()), nil
}

func transport(h config.HTTP, v config.Vendor) *httpx.Client {
	var opts []httpx.Option
	if l := Limiter(v); l != nil {
		opts = append(opts, httpx.WithLimiter(l))
	}
	return httpx.New(httpx.Config{
		Timeout:      h.Timeout,
		RetryCount:   h.RetryCount,
		RetryWait:    h.RetryWait,
		RetryMaxWait: h.RetryMaxWait,
		UserAgent:    h.UserAgent,
		Debug:        h.Debug,
	}, opts...)
}

// Limiter prefers a token bucket when a per-minute budget is set, otherwise
// a minimum spacing between requests. It returns nil when neither is set.
func Limiter(v config.Vendor) httpx.Limiter {
	switch {
	case v.MaxRequestsPerMinute > 0:
		return ratelimit.PerMinute(v.MaxRequestsPerMinute, v.Burst)
	case v.MinRequestInterval > 0:
		return &ratelimit.MinInterval{Interval: v.MinRequestInterval}
	}
	return nil
}
