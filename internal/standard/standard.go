// Package standard declares the vendor-neutral shapes of each dataset. Vendor
// packages extend these shapes, so a caller can read any vendor's records by
// the standard field names.
package standard

// Dataset names, used as model names in the provider registry.
const (
	EquityHistorical    = "EquityHistorical"
	IndexHistorical     = "IndexHistorical"
	EquityQuote         = "EquityQuote"
	RecentPerformance   = "RecentPerformance"
	BalanceSheetGrowth  = "BalanceSheetGrowth"
	RevenueBusinessLine = "RevenueBusinessLine"
	BalanceOfPayments   = "BalanceOfPayments"
)
