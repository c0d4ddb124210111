package fmp

import (
	"context"
	"log/slog"
	"strings"

	"datafeed/internal/combine"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
	"datafeed/internal/standard"
)

const performanceChunk = 200

var PricePerformanceQuery = schema.Extend("FMPPricePerformanceQueryParams", standard.RecentPerformanceQuery).MustBuild()

// PricePerformanceData reads FMP's percent returns, treating 0 as missing.
var PricePerformanceData = func() *schema.Shape {
	b := schema.Extend("FMPPricePerformanceData", standard.RecentPerformanceData).
		Override(schema.Required("symbol", schema.KindString, schema.Upper)).
		Aliases(map[string]string{
			"one_day":     "1D",
			"one_week":    "5D",
			"one_month":   "1M",
			"three_month": "3M",
			"six_month":   "6M",
			"one_year":    "1Y",
			"three_year":  "3Y",
			"five_year":   "5Y",
			"ten_year":    "10Y",
		})
	for _, p := range standard.PerformancePeriods {
		b.Override(schema.Optional(p, schema.KindFloat, schema.ZeroToNil).Then(schema.PercentToRatio))
	}
	return b.MustBuild()
}()

// PricePerformanceFetcher asks for up to 200 symbols per request.
type PricePerformanceFetcher struct{ client }

func (f *PricePerformanceFetcher) TransformQuery(params map[string]any) (schema.Record, error) {
	return PricePerformanceQuery.Validate(params)
}

func (f *PricePerformanceFetcher) ExtractData(ctx context.Context, query schema.Record, creds provider.Credentials) ([]map[string]any, error) {
	apiKey := creds[CredentialKey]
	symbols := combine.SplitSymbols(query.String("symbol"))
	var chunks []string
	for i := 0; i < len(symbols); i += performanceChunk {
		chunks = append(chunks, strings.Join(symbols[i:min(i+performanceChunk, len(symbols))], ","))
	}
	opts := provider.FanOutOptions{Limit: f.cfg.MaxConcurrency, Policy: provider.FailFast}
	return provider.FanOut(ctx, chunks, opts, func(ctx context.Context, chunk string) ([]map[string]any, error) {
		return f.getMany(ctx, f.url(3, "stock-price-change/"+chunk, nil, apiKey))
	})
}

func (f *PricePerformanceFetcher) TransformData(query schema.Record, data []map[string]any) ([]schema.Record, error) {
	recs, err := provider.ToRecords(PricePerformanceData, data)
	if err != nil {
		return nil, err
	}
	symbols := combine.SplitSymbols(query.String("symbol"))
	if len(recs) != len(symbols) {
		got := make(map[string]bool, len(recs))
		for _, r := range recs {
			got[r.String("symbol")] = true
		}
		var missing []string
		for _, s := range symbols {
			if !got[s] {
				missing = append(missing, s)
			}
		}
		if len(missing) > 0 {
			slog.Warn("missing price performance for symbols", slog.Any("symbols", missing))
		}
	}
	combine.OrderBySymbols(recs, symbols, "symbol")
	return recs, nil
}
