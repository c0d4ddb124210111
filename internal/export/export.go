// Package export writes fetched records as JSON or as an Excel workbook.
package export

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"datafeed/internal/logging"
	"datafeed/internal/schema"
)

// Result is the envelope of one fetch.
type Result struct {
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Count    int             `json:"count"`
	Results  []schema.Record `json:"results"`
}

func NewResult(providerName, model string, recs []schema.Record) Result {
	if recs == nil {
		recs = []schema.Record{}
	}
	return Result{Provider: providerName, Model: model, Count: len(recs), Results: recs}
}

func WriteJSON(w io.Writer, res Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(res)
}

// Columns lists the keys of recs in first-seen order: the declared fields of
// the first record's shape, then any extras in key order.
func Columns(recs []schema.Record) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range recs {
		for _, k := range r.Keys() {
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	return out
}

// XLSX renders res as a single-sheet workbook named after the model, with a
// bold header row.
func XLSX(ctx context.Context, res Result) ([]byte, error) {
	rqID := logging.RequestID(ctx)
	if len(res.Results) == 0 {
		return nil, errors.New("export: no records")
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Error("close workbook", slog.String("rqID", rqID), slog.String("err", err.Error()))
		}
	}()

	sheet := res.Model
	if sheet == "" {
		sheet = "data"
	}
	if len(sheet) > 31 {
		sheet = sheet[:31]
	}
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("export: new sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		slog.Warn("delete default sheet", slog.String("rqID", rqID), slog.String("err", err.Error()))
	}

	cols := Columns(res.Results)
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#cfe2f3"}},
	})
	if err != nil {
		return nil, err
	}
	for i, c := range cols {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellStr(sheet, cell, c); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheet, cell, cell, header); err != nil {
			return nil, err
		}
	}

	for row, r := range res.Results {
		for i, c := range cols {
			v, ok := r.Get(c)
			if !ok || v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(i+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return nil, fmt.Errorf("export: %s: %w", cell, err)
			}
		}
	}
	if err := f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: write workbook: %w", err)
	}
	slog.Debug("workbook written", slog.String("rqID", rqID), slog.Int("rows", len(res.Results)))
	return buf.Bytes(), nil
}

func cellValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.RFC3339)
	case decimal.Decimal:
		return x.InexactFloat64()
	case json.Number:
		return x.String()
	case map[string]any, []any:
		b, _ := json.Marshal(x)
		return string(b)
	}
	return v
}
