package standard

import "datafeed/internal/schema"

var BalanceOfPaymentsQuery = schema.New("BalanceOfPaymentsQueryParams").MustBuild()

func periodShape(name string, items []string) *schema.Shape {
	b := schema.New(name).
		Field(schema.Required("period", schema.KindDate, schema.FlexibleDate))
	for _, item := range items {
		b.Field(schema.Optional(item, schema.KindFloat))
	}
	return b.MustBuild()
}

// Report sections of the euro-area balance of payments. Each one is keyed by
// period; BalanceOfPaymentsData is their union.
var (
	MainItems = []string{
		"current_account", "goods", "services", "primary_income",
		"secondary_income", "capital_account", "net_lending_to_rest_of_world",
		"financial_account", "direct_investment", "portfolio_investment",
		"financial_derivatives", "other_investment", "reserve_assets",
		"errors_and_ommissions",
	}
	SummaryItems = []string{
		"current_account_credit", "current_account_debit", "current_account_balance",
		"goods_credit", "goods_debit", "services_credit", "services_debit",
		"primary_income_credit", "primary_income_employee_compensation_credit",
		"primary_income_debit", "primary_income_employee_compensation_debit",
		"secondary_income_credit", "secondary_income_debit",
		"capital_account_credit", "capital_account_debit",
	}
	ServicesItems = []string{
		"services_total_credit", "services_total_debit",
		"transport_credit", "transport_debit", "travel_credit", "travel_debit",
		"financial_services_credit", "financial_services_debit",
		"communications_credit", "communications_debit",
		"other_business_services_credit", "other_business_services_debit",
	}

	BalanceOfPaymentsMain     = periodShape("BalanceOfPaymentsMain", MainItems)
	BalanceOfPaymentsSummary  = periodShape("BalanceOfPaymentsSummary", SummaryItems)
	BalanceOfPaymentsServices = periodShape("BalanceOfPaymentsServices", ServicesItems)

	BalanceOfPaymentsData = schema.Compose("BalanceOfPaymentsData",
		BalanceOfPaymentsMain,
		BalanceOfPaymentsSummary,
		BalanceOfPaymentsServices,
	).MustBuild()
)
