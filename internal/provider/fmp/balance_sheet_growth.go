package fmp

import (
	"context"
	"net/url"
	"strconv"

	"datafeed/internal/combine"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
	"datafeed/internal/standard"
)

var BalanceSheetGrowthQuery = schema.Extend("FMPBalanceSheetGrowthQueryParams", standard.BalanceSheetGrowthQuery).
	Field(schema.Optional("period", schema.KindString, schema.OneOf("annual", "quarter")).WithDefault("annual")).
	MustBuild()

// BalanceSheetGrowthData treats a growth of exactly 0 as not reported.
var BalanceSheetGrowthData = func() *schema.Shape {
	b := schema.Extend("FMPBalanceSheetGrowthData", standard.BalanceSheetGrowthData).
		Field(schema.Required("symbol", schema.KindString)).
		Alias("period_ending", "date").
		Alias("fiscal_year", "calendarYear").
		Alias("fiscal_period", "period")
	for _, name := range standard.BalanceSheetGrowthItems {
		b.Override(schema.Optional(name, schema.KindFloat, schema.ZeroToNil))
		b.Alias(name, camel(name))
	}
	return b.MustBuild()
}()

type BalanceSheetGrowthFetcher struct{ client }

func (f *BalanceSheetGrowthFetcher) TransformQuery(params map[string]any) (schema.Record, error) {
	return BalanceSheetGrowthQuery.Validate(params)
}

func (f *BalanceSheetGrowthFetcher) ExtractData(ctx context.Context, query schema.Record, creds provider.Credentials) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("period", query.String("period"))
	if limit, ok := query.Int("limit"); ok {
		q.Set("limit", strconv.FormatInt(limit, 10))
	}
	endpoint := "balance-sheet-statement-growth/" + url.PathEscape(query.String("symbol"))
	return f.getMany(ctx, f.url(3, endpoint, q, creds[CredentialKey]))
}

// TransformData returns periods oldest first.
func (f *BalanceSheetGrowthFetcher) TransformData(_ schema.Record, data []map[string]any) ([]schema.Record, error) {
	recs, err := provider.ToRecords(BalanceSheetGrowthData, data)
	if err != nil {
		return nil, err
	}
	combine.SortBy(recs, "period_ending")
	return recs, nil
}
