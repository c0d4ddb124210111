package ecb

import (
	"fmt"
	"sort"
)

// Series keys of the balance of payments statistics (BPS) dataset. %s is the
// frequency code, M or Q.
var (
	mainSeries = map[string]string{
		"current_account":              "BPS.%s.N.I9.W1.S1.S1.T.B.CA._Z._Z._Z.EUR._T._X.N.ALL",
		"goods":                        "BPS.%s.N.I9.W1.S1.S1.T.B.G._Z._Z._Z.EUR._T._X.N.ALL",
		"services":                     "BPS.%s.N.I9.W1.S1.S1.T.B.S._Z._Z._Z.EUR._T._X.N.ALL",
		"primary_income":               "BPS.%s.N.I9.W1.S1.S1.T.B.IN1._Z._Z._Z.EUR._T._X.N.ALL",
		"secondary_income":             "BPS.%s.N.I9.W1.S1.S1.T.B.IN2._Z._Z._Z.EUR._T._X.N.ALL",
		"capital_account":              "BPS.%s.N.I9.W1.S1.S1.T.B.KA._Z._Z._Z.EUR._T._X.N.ALL",
		"net_lending_to_rest_of_world": "BPS.%s.N.I9.W1.S1.S1.T.B.CKA._Z._Z._Z.EUR._T._X.N.ALL",
		"financial_account":            "BPS.%s.N.I9.W1.S1.S1.T.N.FA._T.F._Z.EUR._T._X.N.ALL",
		"direct_investment":            "BPS.%s.N.I9.W1.S1.S1.T.N.FA.D.F._Z.EUR._T._X.N.ALL",
		"portfolio_investment":         "BPS.%s.N.I9.W1.S1.S1.T.N.FA.P.F._Z.EUR._T.M.N.ALL",
		"financial_derivatives":        "BPS.%s.N.I9.W1.S1.S1.T.N.FA.F.F7.T.EUR._T.T.N.ALL",
		"other_investment":             "BPS.%s.N.I9.W1.S1.S1.T.N.FA.O.F._Z.EUR._T._X.N.ALL",
		"reserve_assets":               "BPS.%s.N.I9.W1.S121.S1.T.A.FA.R.F._Z.EUR.X1._X.N.ALL",
		"errors_and_ommissions":        "BPS.%s.N.I9.W1.S1.S1.T.N.EO._Z._Z._Z.EUR._T._X.N.ALL",
	}

	summarySeries = map[string]string{
		"current_account_credit":                      "BPS.%s.N.I9.W1.S1.S1.T.C.CA._Z._Z._Z.EUR._T._X.N.ALL",
		"current_account_debit":                       "BPS.%s.N.I9.W1.S1.S1.T.D.CA._Z._Z._Z.EUR._T._X.N.ALL",
		"current_account_balance":                     "BPS.%s.N.I9.W1.S1.S1.T.B.CA._Z._Z._Z.EUR._T._X.N.ALL",
		"goods_credit":                                "BPS.%s.N.I9.W1.S1.S1.T.C.G._Z._Z._Z.EUR._T._X.N.ALL",
		"goods_debit":                                 "BPS.%s.N.I9.W1.S1.S1.T.D.G._Z._Z._Z.EUR._T._X.N.ALL",
		"services_credit":                             "BPS.%s.N.I9.W1.S1.S1.T.C.S._Z._Z._Z.EUR._T._X.N.ALL",
		"services_debit":                              "BPS.%s.N.I9.W1.S1.S1.T.D.S._Z._Z._Z.EUR._T._X.N.ALL",
		"primary_income_credit":                       "BPS.%s.N.I9.W1.S1.S1.T.C.IN1._Z._Z._Z.EUR._T._X.N.ALL",
		"primary_income_employee_compensation_credit": "BPS.%s.N.I9.W1.S1.S1.T.C.D1._Z._Z._Z.EUR._T._X.N.ALL",
		"primary_income_debit":                        "BPS.%s.N.I9.W1.S1.S1.T.D.IN1._Z._Z._Z.EUR._T._X.N.ALL",
		"primary_income_employee_compensation_debit":  "BPS.%s.N.I9.W1.S1.S1.T.D.D1._Z._Z._Z.EUR._T._X.N.ALL",
		"secondary_income_credit":                     "BPS.%s.N.I9.W1.S1.S1.T.C.IN2._Z._Z._Z.EUR._T._X.N.ALL",
		"secondary_income_debit":                      "BPS.%s.N.I9.W1.S1.S1.T.D.IN2._Z._Z._Z.EUR._T._X.N.ALL",
		"capital_account_credit":                      "BPS.%s.N.I9.W1.S1.S1.T.C.KA._Z._Z._Z.EUR._T._X.N.ALL",
		"capital_account_debit":                       "BPS.%s.N.I9.W1.S1.S1.T.D.KA._Z._Z._Z.EUR._T._X.N.ALL",
	}

	servicesSeries = map[string]string{
		"services_total_credit":          "BPS.%s.N.I9.W1.S1.S1.T.C.S._Z._Z._Z.EUR._T._X.N.ALL",
		"services_total_debit":           "BPS.%s.N.I9.W1.S1.S1.T.D.S._Z._Z._Z.EUR._T._X.N.ALL",
		"transport_credit":               "BPS.%s.N.I9.W1.S1.S1.T.C.SC._Z._Z._Z.EUR._T._X.N.ALL",
		"transport_debit":                "BPS.%s.N.I9.W1.S1.S1.T.D.SC._Z._Z._Z.EUR._T._X.N.ALL",
		"travel_credit":                  "BPS.%s.N.I9.W1.S1.S1.T.C.SD._Z._Z._Z.EUR._T._X.N.ALL",
		"travel_debit":                   "BPS.%s.N.I9.W1.S1.S1.T.D.SD._Z._Z._Z.EUR._T._X.N.ALL",
		"financial_services_credit":      "BPS.%s.N.I9.W1.S1.S1.T.C.SF._Z._Z._Z.EUR._T._X.N.ALL",
		"financial_services_debit":       "BPS.%s.N.I9.W1.S1.S1.T.D.SF._Z._Z._Z.EUR._T._X.N.ALL",
		"communications_credit":          "BPS.%s.N.I9.W1.S1.S1.T.C.SI._Z._Z._Z.EUR._T._X.N.ALL",
		"communications_debit":           "BPS.%s.N.I9.W1.S1.S1.T.D.SI._Z._Z._Z.EUR._T._X.N.ALL",
		"other_business_services_credit": "BPS.%s.N.I9.W1.S1.S1.T.C.SJ._Z._Z._Z.EUR._T._X.N.ALL",
		"other_business_services_debit":  "BPS.%s.N.I9.W1.S1.S1.T.D.SJ._Z._Z._Z.EUR._T._X.N.ALL",
	}
)

var reports = map[string]map[string]string{
	"main":     mainSeries,
	"summary":  summarySeries,
	"services": servicesSeries,
}

var frequencies = map[string]string{"monthly": "M", "quarterly": "Q"}

// series is one named BPS time series.
type series struct {
	Name string
	ID   string
}

// seriesFor lists the series of a report, sorted by name. Only the main and
// summary reports are published monthly; the others are always quarterly.
func seriesFor(report, frequency string) ([]series, error) {
	tmpl, ok := reports[report]
	if !ok {
		return nil, fmt.Errorf("ecb: unknown report type %q", report)
	}
	freq := "Q"
	if report == "main" || report == "summary" {
		f, ok := frequencies[frequency]
		if !ok {
			return nil, fmt.Errorf("ecb: unknown frequency %q", frequency)
		}
		freq = f
	}
	out := make([]series, 0, len(tmpl))
	for name, t := range tmpl {
		out = append(out, series{Name: name, ID: fmt.Sprintf(t, freq)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
