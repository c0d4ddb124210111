// Package ecb implements European Central Bank statistics. The data portal is
// public and needs no credentials.
package ecb

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"datafeed/internal/combine"
	"datafeed/internal/provider"
	"datafeed/internal/schema"
	"datafeed/internal/standard"
)

const (
	Name           = "ecb"
	DefaultBaseURL = "https://data.ecb.europa.eu/data-detail-api"
)

type Config struct {
	BaseURL        string
	MaxConcurrency int
}

func New(t provider.Transport, cfg Config) provider.Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return provider.Provider{
		Name:        Name,
		Description: "European Central Bank statistical data warehouse.",
		Website:     "https://data.ecb.europa.eu",
		Fetchers: map[string]provider.Fetcher{
			standard.BalanceOfPayments: &BalanceOfPaymentsFetcher{t: t, cfg: cfg},
		},
	}
}

var BalanceOfPaymentsQuery = schema.Extend("ECBBalanceOfPaymentsQueryParams", standard.BalanceOfPaymentsQuery).
	Field(
		schema.Optional("report_type", schema.KindString, schema.TrimSpace, schema.OneOf("main", "summary", "services")).
			WithDefault("main").
			Describe("Level of detail of the report."),
		schema.Optional("frequency", schema.KindString, schema.TrimSpace, schema.OneOf("monthly", "quarterly")).
			WithDefault("monthly").
			Describe("Monthly is valid only for main and summary; other reports are quarterly."),
	).
	MustBuild()

var BalanceOfPaymentsData = schema.Extend("ECBBalanceOfPaymentsData", standard.BalanceOfPaymentsData).
	Override(schema.Required("period", schema.KindDate, PeriodStart)).
	MustBuild()

var (
	monthPeriod   = regexp.MustCompile(`^(\d{4})-?M?(\d{2})$`)
	quarterPeriod = regexp.MustCompile(`^(\d{4})-?Q([1-4])$`)
)

// PeriodStart maps ECB period labels such as "2023-01", "2023M01" or
// "2023-Q2" to the first day of the period.
func PeriodStart(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return v, nil
	}
	s = strings.TrimSpace(s)
	if m := quarterPeriod.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		return time.Date(year, time.Month(3*(q-1)+1), 1, 0, 0, 0, 0, time.UTC), nil
	}
	if m := monthPeriod.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return nil, fmt.Errorf("unrecognized period %q", s)
		}
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return schema.FlexibleDate(s)
}

// BalanceOfPaymentsFetcher downloads every series of the report at once and
// lines them up by period.
type BalanceOfPaymentsFetcher struct {
	t   provider.Transport
	cfg Config
}

func (f *BalanceOfPaymentsFetcher) RequireCredentials() bool { return false }

func (f *BalanceOfPaymentsFetcher) TransformQuery(params map[string]any) (schema.Record, error) {
	return BalanceOfPaymentsQuery.Validate(params)
}

func (f *BalanceOfPaymentsFetcher) ExtractData(ctx context.Context, query schema.Record, _ provider.Credentials) ([]map[string]any, error) {
	list, err := seriesFor(query.String("report_type"), query.String("frequency"))
	if err != nil {
		return nil, err
	}
	opts := provider.FanOutOptions{Limit: f.cfg.MaxConcurrency, Policy: provider.FailFast}
	long, err := provider.FanOut(ctx, list, opts, func(ctx context.Context, s series) ([]map[string]any, error) {
		body, err := f.t.GetJSON(ctx, strings.TrimRight(f.cfg.BaseURL, "/")+"/"+s.ID, nil)
		if err != nil {
			return nil, fmt.Errorf("ecb %s: %w", s.Name, err)
		}
		obs, err := provider.Rows(body)
		if err != nil {
			return nil, fmt.Errorf("ecb %s: %w", s.Name, err)
		}
		out := make([]map[string]any, 0, len(obs))
		for _, o := range obs {
			v := o["OBS_VALUE_AS_IS"]
			if str, ok := v.(string); ok && strings.TrimSpace(str) == "" {
				v = nil
			}
			out = append(out, map[string]any{"period": o["PERIOD"], "series": s.Name, "value": v})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return combine.Pivot(long, "period", "series", "value"), nil
}

func (f *BalanceOfPaymentsFetcher) TransformData(_ schema.Record, data []map[string]any) ([]schema.Record, error) {
	recs, err := provider.ToRecords(BalanceOfPaymentsData, data)
	if err != nil {
		return nil, err
	}
	combine.SortBy(recs, "period")
	return recs, nil
}
