package standard

import "datafeed/internal/schema"

var EquityQuoteQuery = schema.New("EquityQuoteQueryParams").
	Field(schema.Required("symbol", schema.KindString, schema.UpperList)).
	MustBuild()

// EquityQuoteData uses decimal prices; percentages are ratios (0.01 is 1%).
var EquityQuoteData = schema.New("EquityQuoteData").
	Field(
		schema.Required("symbol", schema.KindString, schema.Upper),
		schema.Optional("asset_type", schema.KindString),
		schema.Optional("name", schema.KindString),
		schema.Optional("exchange", schema.KindString),
		schema.Optional("last_price", schema.KindDecimal),
		schema.Optional("last_timestamp", schema.KindDateTime),
		schema.Optional("open", schema.KindDecimal),
		schema.Optional("high", schema.KindDecimal),
		schema.Optional("low", schema.KindDecimal),
		schema.Optional("close", schema.KindDecimal),
		schema.Optional("volume", schema.KindInt, schema.ForceInt),
		schema.Optional("prev_close", schema.KindDecimal),
		schema.Optional("change", schema.KindDecimal),
		schema.Optional("change_percent", schema.KindFloat),
		schema.Optional("year_high", schema.KindDecimal),
		schema.Optional("year_low", schema.KindDecimal),
	).
	MustBuild()

var RecentPerformanceQuery = schema.New("RecentPerformanceQueryParams").
	Field(schema.Required("symbol", schema.KindString, schema.UpperList)).
	MustBuild()

// PerformancePeriods are the return horizons of RecentPerformanceData, in
// declaration order.
var PerformancePeriods = []string{
	"one_day", "wtd", "one_week", "mtd", "one_month", "qtd", "three_month",
	"six_month", "ytd", "one_year", "two_year", "three_year", "four_year",
	"five_year", "ten_year", "max",
}

// RecentPerformanceData holds returns as ratios.
var RecentPerformanceData = func() *schema.Shape {
	b := schema.New("RecentPerformanceData").
		Field(schema.Optional("symbol", schema.KindString))
	for _, p := range PerformancePeriods {
		b.Field(schema.Optional(p, schema.KindFloat))
	}
	return b.MustBuild()
}()
