// Package tiingo implements Tiingo end-of-day and IEX intraday prices.
package tiingo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"datafeed/internal/combine"
	"datafeed/internal/httpx"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
	"datafeed/internal/standard"
)

const (
	Name           = "tiingo"
	CredentialKey  = "tiingo_token"
	DefaultBaseURL = "https://api.tiingo.com"
)

type Config struct {
	BaseURL        string
	MaxConcurrency int
	Now            func() time.Time
}

func New(t provider.Transport, cfg Config) provider.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return provider.Provider{
		Name:        Name,
		Description: "Tiingo end-of-day and intraday equity prices.",
		Website:     "https://www.tiingo.com",
		Credentials: []string{CredentialKey},
		Fetchers: map[string]provider.Fetcher{
			standard.EquityHistorical: &EquityHistoricalFetcher{t: t, cfg: cfg},
		},
	}
}

// resample maps end-of-day intervals to Tiingo's resampleFreq.
var resample = map[string]string{
	"1d": "daily",
	"1W": "weekly",
	"1M": "monthly",
	"1Y": "annually",
}

var EquityHistoricalQuery = schema.Extend("TiingoEquityHistoricalQueryParams", standard.EquityHistoricalQuery).
	Field(schema.Optional("interval", schema.KindString, schema.TrimSpace,
		schema.OneOf("1m", "5m", "15m", "30m", "90m", "1h", "2h", "4h", "1d", "1W", "1M", "1Y")).WithDefault("1d")).
	MustBuild()

var EquityHistoricalData = schema.Extend("TiingoEquityHistoricalData", standard.EquityHistoricalData).
	Aliases(map[string]string{
		"adj_open":    "adjOpen",
		"adj_high":    "adjHigh",
		"adj_low":     "adjLow",
		"adj_close":   "adjClose",
		"adj_volume":  "adjVolume",
		"split_ratio": "splitFactor",
		"dividend":    "divCash",
	}).
	Field(
		schema.Optional("symbol", schema.KindString),
		schema.Optional("adj_open", schema.KindFloat),
		schema.Optional("adj_high", schema.KindFloat),
		schema.Optional("adj_low", schema.KindFloat),
		schema.Optional("adj_close", schema.KindFloat),
		schema.Optional("adj_volume", schema.KindFloat),
		schema.Optional("split_ratio", schema.KindFloat).Describe("Ratio of the split, if one occurred."),
		schema.Optional("dividend", schema.KindFloat).Describe("Dividend paid, if any."),
	).
	MustBuild()

// EquityHistoricalFetcher requests each symbol separately. A symbol Tiingo
// cannot serve is skipped unless every symbol fails.
type EquityHistoricalFetcher struct {
	t   provider.Transport
	cfg Config
}

// TransformQuery defaults to the year up to today.
func (f *EquityHistoricalFetcher) TransformQuery(params map[string]any) (schema.Record, error) {
	q, err := EquityHistoricalQuery.Validate(params)
	if err != nil {
		return schema.Record{}, err
	}
	_, hasStart := q.Time("start_date")
	_, hasEnd := q.Time("end_date")
	if hasStart && hasEnd {
		return q, nil
	}
	now := f.cfg.Now()
	filled := q.Map()
	if !hasStart {
		filled["start_date"] = now.AddDate(-1, 0, 0)
	}
	if !hasEnd {
		filled["end_date"] = now
	}
	return EquityHistoricalQuery.Validate(filled)
}

func (f *EquityHistoricalFetcher) ExtractData(ctx context.Context, query schema.Record, creds provider.Credentials) ([]map[string]any, error) {
	symbols := combine.SplitSymbols(query.String("symbol"))
	multi := len(symbols) > 1
	token := creds[CredentialKey]

	opts := provider.FanOutOptions{Limit: f.cfg.MaxConcurrency, Policy: provider.SkipFailed}
	return provider.FanOut(ctx, symbols, opts, func(ctx context.Context, symbol string) ([]map[string]any, error) {
		body, err := f.t.GetJSON(ctx, f.pricesURL(symbol, query, token), nil)
		if err != nil {
			var terr *httpx.TransportError
			if errors.As(err, &terr) && (terr.Status == http.StatusUnauthorized || terr.Status == http.StatusForbidden) {
				return nil, &provider.UnauthorizedError{Provider: Name, Msg: terr.Body, Err: err}
			}
			return nil, fmt.Errorf("tiingo %s: %w", symbol, err)
		}
		rows, err := provider.Rows(body)
		if err != nil {
			return nil, fmt.Errorf("tiingo %s: %w", symbol, err)
		}
		if multi {
			for _, r := range rows {
				r["symbol"] = symbol
			}
		}
		return rows, nil
	})
}

func (f *EquityHistoricalFetcher) pricesURL(symbol string, query schema.Record, token string) string {
	interval := query.String("interval")
	start, _ := query.Time("start_date")
	end, _ := query.Time("end_date")

	q := url.Values{}
	q.Set("startDate", start.Format(time.DateOnly))
	q.Set("endDate", end.Format(time.DateOnly))

	base := strings.TrimRight(f.cfg.BaseURL, "/")
	path := base + "/tiingo/daily/" + url.PathEscape(strings.ToLower(symbol)) + "/prices"
	if freq, ok := resample[interval]; ok {
		q.Set("resampleFreq", freq)
	} else {
		path = base + "/iex/" + url.PathEscape(strings.ToLower(symbol)) + "/prices"
		q.Set("resampleFreq", intradayFreq(interval))
		q.Set("columns", "open,high,low,close,volume")
	}
	q.Set("token", token)
	return path + "?" + q.Encode()
}

// intradayFreq turns "5m" into "5min" and "2h" into "2hour".
func intradayFreq(interval string) string {
	switch {
	case strings.HasSuffix(interval, "m"):
		return strings.TrimSuffix(interval, "m") + "min"
	case strings.HasSuffix(interval, "h"):
		return strings.TrimSuffix(interval, "h") + "hour"
	}
	return interval
}

// TransformData groups records by requested symbol, each in date order.
func (f *EquityHistoricalFetcher) TransformData(query schema.Record, data []map[string]any) ([]schema.Record, error) {
	recs, err := provider.ToRecords(EquityHistoricalData, data)
	if err != nil {
		return nil, err
	}
	combine.SortBy(recs, "date")
	if symbols := combine.SplitSymbols(query.String("symbol")); len(symbols) > 1 {
		combine.OrderBySymbols(recs, symbols, "symbol")
	}
	return recs, nil
}
