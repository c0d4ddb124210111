package export_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"datafeed/internal/export"
	"datafeed/internal/schema"
)

var bar = schema.New("Bar").
	Field(
		schema.Required("date", schema.KindDate, schema.FlexibleDate),
		schema.Optional("close", schema.KindFloat),
	).
	MustBuild()

func records(t *testing.T) []schema.Record {
	t.Helper()
	recs, err := bar.ValidateAll([]map[string]any{
		{"date": "2024-01-02", "close": 10.5},
		{"date": "2024-01-03", "close": nil, "symbol": "SPX"},
	})
	require.NoError(t, err)
	return recs
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := export.WriteJSON(&buf, export.NewResult("cboe", "IndexHistorical", records(t)))

	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Equal(t, "cboe", got["provider"])
	require.EqualValues(t, 2, got["count"])
	rows := got["results"].([]any)
	require.Equal(t, "2024-01-02", rows[0].(map[string]any)["date"])
}

func TestNewResultNeverNil(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, export.WriteJSON(&buf, export.NewResult("ecb", "BalanceOfPayments", nil)))
	require.Contains(t, buf.String(), `"results":[]`)
}

func TestColumns(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"date", "close", "symbol"}, export.Columns(records(t)))
}

func TestXLSX(t *testing.T) {
	t.Parallel()

	// Act
	b, err := export.XLSX(t.Context(), export.NewResult("cboe", "IndexHistorical", records(t)))

	// Assert
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.Equal(t, []string{"IndexHistorical"}, f.GetSheetList())
	rows, err := f.GetRows("IndexHistorical")
	require.NoError(t, err)
	require.Equal(t, []string{"date", "close", "symbol"}, rows[0])
	require.Equal(t, []string{"2024-01-02", "10.5"}, rows[1])
	require.Equal(t, []string{"2024-01-03", "", "SPX"}, rows[2])
}

func TestXLSXRejectsEmpty(t *testing.T) {
	t.Parallel()

	_, err := export.XLSX(t.Context(), export.NewResult("cboe", "IndexHistorical", nil))

	require.Error(t, err)
}
