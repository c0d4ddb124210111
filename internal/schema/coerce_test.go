package schema_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"datafeed/internal/schema"
)

func TestCoercionsAreIdempotent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		rule schema.Rule
		in   any
		want any
	}{
		{"upper", schema.Upper, "aapl", "AAPL"},
		{"upper passes non-strings", schema.Upper, 3.0, 3.0},
		{"trim", schema.TrimSpace, "  x ", "x"},
		{"upper list", schema.UpperList, " aapl,msft ,,AAPL", "AAPL,MSFT"},
		{"upper list slice", schema.UpperList, []any{"spy", "qqq"}, "SPY,QQQ"},
		{"flexible date", schema.FlexibleDate, "2024-01-02", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)},
		{"flexible datetime", schema.FlexibleDate, "2024-01-02T09:30:00", time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)},
		{"flexible blank", schema.FlexibleDate, " ", nil},
		{"strict float", schema.StrictFloat, json.Number("1.5"), 1.5},
		{"force int float", schema.ForceInt, 12.9, int64(12)},
		{"force int string", schema.ForceInt, "1200", int64(1200)},
		{"force int number", schema.ForceInt, json.Number("3.0"), int64(3)},
		{"zero to nil", schema.ZeroToNil, 0.0, nil},
		{"zero to nil number", schema.ZeroToNil, json.Number("0"), nil},
		{"zero to nil keeps values", schema.ZeroToNil, 0.3, 0.3},
		{"empty to nil", schema.EmptyToNil, "", nil},
		{"one of", schema.OneOf("1d", "1m"), "1d", "1d"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			once, err := tt.rule(tt.in)
			require.NoError(t, err)
			require.Equal(t, tt.want, once)

			twice, err := tt.rule(once)
			require.NoError(t, err)
			require.Equal(t, once, twice)
		})
	}
}

func TestStrictFloatRejectsIntegers(t *testing.T) {
	t.Parallel()

	for _, in := range []any{1, int64(1), json.Number("1"), "1.5"} {
		_, err := schema.StrictFloat(in)
		require.Error(t, err, "input %#v", in)
	}
}

func TestCoercionErrors(t *testing.T) {
	t.Parallel()

	_, err := schema.ForceInt("abc")
	require.Error(t, err)

	_, err = schema.FlexibleDate("01/02/2024")
	require.Error(t, err)

	_, err = schema.OneOf("annual", "quarter")("monthly")
	require.ErrorContains(t, err, "annual, quarter")

	_, err = schema.UpperList([]any{"a", 1})
	require.Error(t, err)
}

func TestForceIntRejectsOutOfRange(t *testing.T) {
	t.Parallel()

	for _, in := range []any{1e19, -1e19, json.Number("1e19"), "9.3e18", 9.223372036854775807e18} {
		_, err := schema.ForceInt(in)
		require.ErrorContains(t, err, "overflows int64", "input %#v", in)
	}

	got, err := schema.ForceInt(-9.223372036854775808e18)
	require.NoError(t, err)
	require.Equal(t, int64(-9223372036854775808), got)
}

func TestPercentToRatioIsNotIdempotent(t *testing.T) {
	t.Parallel()

	once, err := schema.PercentToRatio(5.0)
	require.NoError(t, err)
	require.InDelta(t, 0.05, once, 1e-12)

	twice, err := schema.PercentToRatio(once)
	require.NoError(t, err)
	require.InDelta(t, 0.0005, twice, 1e-12)
}
