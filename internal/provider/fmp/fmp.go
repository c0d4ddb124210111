// Package fmp implements Financial Modeling Prep datasets.
package fmp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"datafeed/internal/httpx"
	"datafeed/internal/provider"
	"datafeed/internal/standard"
)

const (
	Name           = "fmp"
	CredentialKey  = "fmp_api_key"
	DefaultBaseURL = "https://financialmodelingprep.com/api"
)

type Config struct {
	BaseURL string
	// MaxConcurrency caps per-symbol requests in flight; zero is unlimited.
	MaxConcurrency int
}

// New returns the FMP provider with every dataset it serves.
func New(t provider.Transport, cfg Config) provider.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	c := client{t: t, cfg: cfg}
	return provider.Provider{
		Name:        Name,
		Description: "Financial Modeling Prep: fundamentals, quotes and price performance.",
		Website:     "https://financialmodelingprep.com",
		Credentials: []string{CredentialKey},
		Fetchers: map[string]provider.Fetcher{
			standard.EquityQuote:         &EquityQuoteFetcher{c},
			standard.RecentPerformance:   &PricePerformanceFetcher{c},
			standard.BalanceSheetGrowth:  &BalanceSheetGrowthFetcher{c},
			standard.RevenueBusinessLine: &RevenueBusinessLineFetcher{c},
		},
	}
}

type client struct {
	t   provider.Transport
	cfg Config
}

func (c client) url(version int, endpoint string, q url.Values, apiKey string) string {
	if q == nil {
		q = url.Values{}
	}
	q.Set("apikey", apiKey)
	return fmt.Sprintf("%s/v%d/%s?%s", strings.TrimRight(c.cfg.BaseURL, "/"), version, endpoint, q.Encode())
}

// getMany fetches a list endpoint. FMP reports some failures as a JSON object
// with an "Error Message" key, sometimes with a 200 status.
func (c client) getMany(ctx context.Context, u string) ([]map[string]any, error) {
	body, err := c.t.GetJSON(ctx, u, nil)
	if err != nil {
		var terr *httpx.TransportError
		if errors.As(err, &terr) && (terr.Status == http.StatusUnauthorized || terr.Status == http.StatusForbidden) {
			return nil, &provider.UnauthorizedError{Provider: Name, Msg: terr.Body, Err: err}
		}
		return nil, err
	}
	if m, ok := body.(map[string]any); ok {
		if err := errorMessage(m); err != nil {
			return nil, err
		}
	}
	rows, err := provider.Rows(body)
	if err != nil {
		return nil, fmt.Errorf("fmp: %w", err)
	}
	if len(rows) == 0 {
		return nil, provider.Empty("the request was returned empty")
	}
	return rows, nil
}

var unauthorizedHints = []string{"upgrade", "exclusive endpoint", "subscription", "unauthorized", "invalid api key"}

func errorMessage(m map[string]any) error {
	msg, _ := m["Error Message"].(string)
	if msg == "" {
		msg, _ = m["error"].(string)
	}
	if msg == "" {
		return nil
	}
	lower := strings.ToLower(msg)
	for _, h := range unauthorizedHints {
		if strings.Contains(lower, h) {
			return &provider.UnauthorizedError{Provider: Name, Msg: msg}
		}
	}
	return fmt.Errorf("fmp error message: %s", msg)
}

// camel converts a snake_case field name to FMP's camelCase wire name.
func camel(s string) string {
	var b strings.Builder
	up := false
	for _, r := range s {
		if r == '_' {
			up = true
			continue
		}
		if up {
			r = unicode.ToUpper(r)
			up = false
		}
		b.WriteRune(r)
	}
	return b.String()
}
