package standard

import "datafeed/internal/schema"

var IndexHistoricalQuery = schema.New("IndexHistoricalQueryParams").
	Field(
		schema.Required("symbol", schema.KindString, schema.UpperList).
			Describe("Symbol to get data for. Multiple comma separated items allowed."),
		schema.Optional("start_date", schema.KindDate, schema.EmptyToNil, schema.FlexibleDate).
			Describe("Start date of the data, in YYYY-MM-DD format."),
		schema.Optional("end_date", schema.KindDate, schema.EmptyToNil, schema.FlexibleDate).
			Describe("End date of the data, in YYYY-MM-DD format."),
	).
	MustBuild()

var IndexHistoricalData = schema.New("IndexHistoricalData").
	Field(
		schema.Required("date", schema.KindDateTime, schema.FlexibleDate),
		schema.Optional("open", schema.KindFloat),
		schema.Optional("high", schema.KindFloat),
		schema.Optional("low", schema.KindFloat),
		schema.Optional("close", schema.KindFloat),
		schema.Optional("volume", schema.KindInt, schema.ForceInt),
	).
	MustBuild()

var EquityHistoricalQuery = schema.New("EquityHistoricalQueryParams").
	Field(
		schema.Required("symbol", schema.KindString, schema.UpperList).
			Describe("Symbol to get data for. Multiple comma separated items allowed."),
		schema.Optional("start_date", schema.KindDate, schema.EmptyToNil, schema.FlexibleDate),
		schema.Optional("end_date", schema.KindDate, schema.EmptyToNil, schema.FlexibleDate),
	).
	MustBuild()

var EquityHistoricalData = schema.New("EquityHistoricalData").
	Field(
		schema.Required("date", schema.KindDateTime, schema.FlexibleDate),
		schema.Required("open", schema.KindFloat),
		schema.Required("high", schema.KindFloat),
		schema.Required("low", schema.KindFloat),
		schema.Required("close", schema.KindFloat),
		schema.Optional("volume", schema.KindInt, schema.ForceInt),
		schema.Optional("vwap", schema.KindFloat).Describe("Volume weighted average price."),
	).
	MustBuild()
