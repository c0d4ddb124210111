package standard

import "datafeed/internal/schema"

var BalanceSheetGrowthQuery = schema.New("BalanceSheetGrowthQueryParams").
	Field(
		schema.Required("symbol", schema.KindString, schema.Upper),
		schema.Optional("limit", schema.KindInt, schema.ForceInt).WithDefault(10),
	).
	MustBuild()

// BalanceSheetGrowthData reports period-over-period growth as ratios.
var BalanceSheetGrowthData = func() *schema.Shape {
	b := schema.New("BalanceSheetGrowthData").
		Field(
			schema.Required("period_ending", schema.KindDate, schema.FlexibleDate),
			schema.Optional("fiscal_period", schema.KindString),
			schema.Optional("fiscal_year", schema.KindInt, schema.ForceInt),
		)
	for _, name := range BalanceSheetGrowthItems {
		b.Field(schema.Optional(name, schema.KindFloat))
	}
	return b.MustBuild()
}()

// BalanceSheetGrowthItems are the growth fields of BalanceSheetGrowthData.
var BalanceSheetGrowthItems = []string{
	"growth_cash_and_cash_equivalents",
	"growth_short_term_investments",
	"growth_net_receivables",
	"growth_inventory",
	"growth_total_current_assets",
	"growth_property_plant_equipment_net",
	"growth_goodwill",
	"growth_intangible_assets",
	"growth_total_assets",
	"growth_account_payables",
	"growth_short_term_debt",
	"growth_total_current_liabilities",
	"growth_long_term_debt",
	"growth_total_liabilities",
	"growth_retained_earnings",
	"growth_total_stockholders_equity",
	"growth_total_debt",
	"growth_net_debt",
}

var RevenueBusinessLineQuery = schema.New("RevenueBusinessLineQueryParams").
	Field(schema.Required("symbol", schema.KindString, schema.Upper)).
	MustBuild()

var RevenueBusinessLineData = schema.New("RevenueBusinessLineData").
	Field(
		schema.Required("period_ending", schema.KindDate, schema.FlexibleDate),
		schema.Optional("fiscal_period", schema.KindString),
		schema.Optional("fiscal_year", schema.KindInt, schema.ForceInt),
		schema.Optional("filing_date", schema.KindDate, schema.EmptyToNil, schema.FlexibleDate),
		schema.Optional("business_line", schema.KindString, schema.TrimSpace),
		schema.Required("revenue", schema.KindInt, schema.ForceInt),
	).
	MustBuild()
