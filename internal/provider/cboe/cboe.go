// Package cboe implements Cboe delayed index charts. The endpoints are public
// and need no credentials.
package cboe

import (
	"context"
	"fmt"
	"strings"
	"time"

	"datafeed/internal/combine"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
	"datafeed/internal/standard"
)

const (
	Name           = "cboe"
	DefaultBaseURL = "https://cdn.cboe.com/api/global/delayed_quotes/charts"

	// multiSymbolLookback bounds the default history when several indices are
	// requested at once.
	multiSymbolLookback = 720 * 24 * time.Hour
)

var earliest = time.Date(1950, 1, 1, 0, 0, 0, 0, time.UTC)

type Config struct {
	BaseURL        string
	MaxConcurrency int
	// Now is the clock used for default date ranges; time.Now when nil.
	Now func() time.Time
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
		Description: "Cboe delayed index prices.",
		Website:     "https://www.cboe.com",
		Fetchers: map[string]provider.Fetcher{
			standard.IndexHistorical: &IndexHistoricalFetcher{t: t, cfg: cfg},
		},
	}
}

var intervals = map[string]string{"1m": "intraday", "1d": "historical"}

var IndexHistoricalQuery = schema.Extend("CboeIndexHistoricalQueryParams", standard.IndexHistoricalQuery).
	Field(schema.Optional("interval", schema.KindString, schema.TrimSpace, schema.OneOf("1m", "1d")).WithDefault("1d").
		Describe("1m returns the most recent trading day only; 1d excludes it.")).
	MustBuild()

var IndexHistoricalData = schema.Extend("CboeIndexHistoricalData", standard.IndexHistoricalData).
	Alias("volume", "stock_volume").
	Override(
		schema.Optional("open", schema.KindFloat, schema.ZeroToNil),
		schema.Optional("high", schema.KindFloat, schema.ZeroToNil),
		schema.Optional("low", schema.KindFloat, schema.ZeroToNil),
		schema.Optional("close", schema.KindFloat, schema.ZeroToNil),
	).
	Field(
		schema.Optional("symbol", schema.KindString).Describe("Set only when several symbols were requested."),
		schema.Optional("calls_volume", schema.KindFloat).Describe("Calls traded in the period. 1m only."),
		schema.Optional("puts_volume", schema.KindFloat).Describe("Puts traded in the period. 1m only."),
		schema.Optional("total_options_volume", schema.KindFloat).Describe("Options traded in the period. 1m only."),
	).
	MustBuild()

type IndexHistoricalFetcher struct {
	t   provider.Transport
	cfg Config
}

func (f *IndexHistoricalFetcher) RequireCredentials() bool { return false }

// TransformQuery fills the date range: one symbol reaches back to 1950, several
// to 720 days ago. The range ends today.
func (f *IndexHistoricalFetcher) TransformQuery(params map[string]any) (schema.Record, error) {
	q, err := IndexHistoricalQuery.Validate(params)
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
		filled["start_date"] = earliest
		if len(combine.SplitSymbols(q.String("symbol"))) > 1 {
			filled["start_date"] = now.Add(-multiSymbolLookback)
		}
	}
	if !hasEnd {
		filled["end_date"] = now
	}
	return IndexHistoricalQuery.Validate(filled)
}

func (f *IndexHistoricalFetcher) ExtractData(ctx context.Context, query schema.Record, _ provider.Credentials) ([]map[string]any, error) {
	symbols := combine.SplitSymbols(query.String("symbol"))
	interval := query.String("interval")
	multi := len(symbols) > 1

	opts := provider.FanOutOptions{Limit: f.cfg.MaxConcurrency, Policy: provider.FailFast}
	return provider.FanOut(ctx, symbols, opts, func(ctx context.Context, symbol string) ([]map[string]any, error) {
		body, err := f.t.GetJSON(ctx, f.chartURL(symbol, interval), nil)
		if err != nil {
			return nil, fmt.Errorf("cboe %s: %w", symbol, err)
		}
		envelope, _ := body.(map[string]any)
		rows, err := provider.Rows(envelope["data"])
		if err != nil {
			return nil, fmt.Errorf("cboe %s: %w", symbol, err)
		}
		out := make([]map[string]any, 0, len(rows))
		for _, r := range rows {
			row := bar(r, interval)
			if multi {
				row["symbol"] = strings.TrimPrefix(symbol, "^")
			}
			out = append(out, row)
		}
		return out, nil
	})
}

func (f *IndexHistoricalFetcher) chartURL(symbol, interval string) string {
	sym := strings.TrimPrefix(symbol, "^")
	return fmt.Sprintf("%s/%s/_%s.json", strings.TrimRight(f.cfg.BaseURL, "/"), intervals[interval], sym)
}

// bar normalizes one chart point. Daily points carry a "volume" that is
// always zero, so the stock volume is read instead. Intraday points nest
// prices and volumes.
func bar(r map[string]any, interval string) map[string]any {
	if interval == "1d" {
		out := make(map[string]any, len(r))
		for k, v := range r {
			if k == "volume" {
				continue
			}
			out[k] = v
		}
		return out
	}
	out := map[string]any{"date": r["datetime"]}
	if price, ok := r["price"].(map[string]any); ok {
		for k, v := range price {
			out[k] = v
		}
	}
	if volume, ok := r["volume"].(map[string]any); ok {
		for k, v := range volume {
			out[k] = v
		}
	}
	return out
}

// TransformData applies the date range, which the charts ignore, and sorts by
// date then symbol.
func (f *IndexHistoricalFetcher) TransformData(query schema.Record, data []map[string]any) ([]schema.Record, error) {
	recs, err := provider.ToRecords(IndexHistoricalData, data)
	if err != nil {
		return nil, err
	}
	start, _ := query.Time("start_date")
	end, _ := query.Time("end_date")
	end = end.AddDate(0, 0, 1)

	kept := recs[:0]
	for _, r := range recs {
		d, _ := r.Time("date")
		if d.Before(start) || !d.Before(end) {
			continue
		}
		kept = append(kept, r)
	}
	if len(kept) == 0 {
		return nil, provider.Empty("no cboe data between %s and %s", start.Format(time.DateOnly), end.AddDate(0, 0, -1).Format(time.DateOnly))
	}
	combine.SortBy(kept, "date", "symbol")
	return kept, nil
}
