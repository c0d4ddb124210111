package fmp

import (
	"context"
	"fmt"
	"net/url"
	"sort"

	"golang.org/x/sync/errgroup"

	"datafeed/internal/combine"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
	"datafeed/internal/standard"
)

var RevenueBusinessLineQuery = schema.Extend("FMPRevenueBusinessLineQueryParams", standard.RevenueBusinessLineQuery).
	Field(schema.Optional("period", schema.KindString, schema.OneOf("annual", "quarter")).WithDefault("annual")).
	MustBuild()

var RevenueBusinessLineData = schema.Extend("FMPRevenueBusinessLineData", standard.RevenueBusinessLineData).MustBuild()

// RevenueBusinessLineFetcher joins segment revenue with the filing dates of
// the cash flow statements covering the same period end.
type RevenueBusinessLineFetcher struct{ client }

func (f *RevenueBusinessLineFetcher) TransformQuery(params map[string]any) (schema.Record, error) {
	return RevenueBusinessLineQuery.Validate(params)
}

func (f *RevenueBusinessLineFetcher) ExtractData(ctx context.Context, query schema.Record, creds provider.Credentials) ([]map[string]any, error) {
	apiKey := creds[CredentialKey]
	symbol := query.String("symbol")
	period := query.String("period")

	var filings, segments []map[string]any
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		q := url.Values{}
		q.Set("period", period)
		q.Set("limit", "200")
		rows, err := f.getMany(gctx, f.url(3, "cash-flow-statement/"+url.PathEscape(symbol), q, apiKey))
		if err != nil {
			return fmt.Errorf("cash flow filing dates: %w", err)
		}
		filings = filingDates(rows)
		return nil
	})
	g.Go(func() error {
		q := url.Values{}
		q.Set("symbol", symbol)
		q.Set("period", period)
		q.Set("structure", "flat")
		rows, err := f.getMany(gctx, f.url(4, "revenue-product-segmentation", q, apiKey))
		if err != nil {
			return err
		}
		segments = segmentsByPeriod(rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	joined := combine.InnerJoin(filings, segments, "period_ending")
	if len(joined) == 0 {
		return nil, provider.Empty("no segment revenue matches a filing period for %s", symbol)
	}
	return joined, nil
}

func filingDates(rows []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, map[string]any{
			"period_ending": r["date"],
			"fiscal_year":   r["calendarYear"],
			"fiscal_period": r["period"],
			"filing_date":   r["fillingDate"],
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return combine.KeyString(out[i]["period_ending"]) < combine.KeyString(out[j]["period_ending"])
	})
	return out
}

// segmentsByPeriod unwraps FMP's [{"2023-09-30": {"Mac": 1, ...}}] layout.
func segmentsByPeriod(rows []map[string]any) []map[string]any {
	var out []map[string]any
	for _, r := range rows {
		for date, v := range r {
			out = append(out, map[string]any{"period_ending": date, "business_line": v})
		}
	}
	return out
}

// TransformData emits one record per segment, dropping segments without
// revenue, sorted by period then revenue.
func (f *RevenueBusinessLineFetcher) TransformData(_ schema.Record, data []map[string]any) ([]schema.Record, error) {
	var rows []map[string]any
	for _, d := range data {
		segments, ok := d["business_line"].(map[string]any)
		if !ok {
			continue
		}
		for name, revenue := range segments {
			if revenue == nil {
				continue
			}
			rows = append(rows, map[string]any{
				"period_ending": d["period_ending"],
				"fiscal_year":   d["fiscal_year"],
				"fiscal_period": d["fiscal_period"],
				"filing_date":   d["filing_date"],
				"business_line": name,
				"revenue":       revenue,
			})
		}
	}
	recs, err := provider.ToRecords(RevenueBusinessLineData, rows)
	if err != nil {
		return nil, err
	}
	combine.SortBy(recs, "period_ending", "revenue", "business_line")
	return recs, nil
}
