package fmp

import (
	"context"
	"net/url"

	"datafeed/internal/combine"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
	"datafeed/internal/standard"
)

var QuoteQuery = schema.Extend("FMPEquityQuoteQueryParams", standard.EquityQuoteQuery).MustBuild()

var QuoteData = schema.Extend("FMPEquityQuoteData", standard.EquityQuoteData).
	Aliases(map[string]string{
		"price_avg50":           "priceAvg50",
		"price_avg200":          "priceAvg200",
		"last_timestamp":        "timestamp",
		"high":                  "dayHigh",
		"low":                   "dayLow",
		"last_price":            "price",
		"change_percent":        "changesPercentage",
		"prev_close":            "previousClose",
		"year_high":             "yearHigh",
		"year_low":              "yearLow",
		"avg_volume":            "avgVolume",
		"market_cap":            "marketCap",
		"shares_outstanding":    "sharesOutstanding",
		"earnings_announcement": "earningsAnnouncement",
	}).
	Override(
		schema.Optional("last_timestamp", schema.KindDateTime, schema.ZeroToNil),
		schema.Optional("change_percent", schema.KindFloat, schema.ZeroToNil).Then(schema.PercentToRatio),
	).
	Field(
		schema.Optional("price_avg50", schema.KindFloat).Describe("50 day moving average price."),
		schema.Optional("price_avg200", schema.KindFloat).Describe("200 day moving average price."),
		schema.Optional("avg_volume", schema.KindInt, schema.ForceInt),
		schema.Optional("market_cap", schema.KindFloat),
		schema.Optional("shares_outstanding", schema.KindInt, schema.ForceInt),
		schema.Optional("eps", schema.KindFloat),
		schema.Optional("pe", schema.KindFloat),
		schema.Optional("earnings_announcement", schema.KindDateTime, schema.EmptyToNil),
	).
	MustBuild()

// EquityQuoteFetcher requests one quote per symbol, concurrently. Symbols
// with no data are skipped with a warning.
type EquityQuoteFetcher struct{ client }

func (f *EquityQuoteFetcher) TransformQuery(params map[string]any) (schema.Record, error) {
	return QuoteQuery.Validate(params)
}

func (f *EquityQuoteFetcher) ExtractData(ctx context.Context, query schema.Record, creds provider.Credentials) ([]map[string]any, error) {
	apiKey := creds[CredentialKey]
	symbols := combine.SplitSymbols(query.String("symbol"))
	opts := provider.FanOutOptions{Limit: f.cfg.MaxConcurrency, Policy: provider.SkipFailed}
	return provider.FanOut(ctx, symbols, opts, func(ctx context.Context, symbol string) ([]map[string]any, error) {
		return f.getMany(ctx, f.url(3, "quote/"+url.PathEscape(symbol), nil, apiKey))
	})
}

// TransformData returns quotes in the order the symbols were requested.
func (f *EquityQuoteFetcher) TransformData(query schema.Record, data []map[string]any) ([]schema.Record, error) {
	recs, err := provider.ToRecords(QuoteData, data)
	if err != nil {
		return nil, err
	}
	combine.OrderBySymbols(recs, combine.SplitSymbols(query.String("symbol")), "symbol")
	return recs, nil
}
