package forecast

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// Table is a CSV table read from disk, before schema validation.
type Table struct {
	Name   string // File or logical name used in error messages
	Model  string // Model name for forecast and metrics tables
	Header []string
	Rows   [][]string
}

// Canonical column names.
const (
	colDate       = "date"
	colBrand      = "brand"
	colCategory   = "category"
	colBranch     = "branch"
	colTotalSales = "total_sales"
	colPopularity = "online_popularity"
	colPredicted  = "predicted_sales"
	colLower      = "lower_bound"
	colUpper      = "upper_bound"
	colRMSE       = "rmse"
	colMAPE       = "mape"
)

type column struct {
	name     string
	aliases  []string
	required bool
}

var (
	salesColumns = []column{
		{name: colDate, aliases: []string{"ds"}, required: true},
		{name: colBrand, required: true},
		{name: colCategory, required: true},
		{name: colBranch, aliases: []string{"region"}},
		{name: colTotalSales, aliases: []string{"y"}, required: true},
		{name: colPopularity, aliases: []string{"trend_score"}},
	}
	forecastColumns = []column{
		{name: colDate, aliases: []string{"ds"}, required: true},
		{name: colBrand, required: true},
		{name: colPredicted, aliases: []string{"yhat"}, required: true},
		{name: colLower, aliases: []string{"yhat_lower"}},
		{name: colUpper, aliases: []string{"yhat_upper"}},
	}
	metricsColumns = []column{
		{name: colBrand, required: true},
		{name: colRMSE, required: true},
		{name: colMAPE, aliases: []string{"mape_pct"}, required: true},
	}
)

var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// normalizeHeader lowercases a header and collapses any run of non
// alphanumeric characters into a single underscore, so "MAPE (%)" becomes
// "mape" and "Total Sales" becomes "total_sales".
func normalizeHeader(h string) string {
	var b strings.Builder
	sep := false
	for _, r := range strings.ToLower(h) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if sep && b.Len() > 0 {
				b.WriteByte('_')
			}
			sep = false
			b.WriteRune(r)
			continue
		}
		sep = true
	}
	return b.String()
}

// resolveColumns maps canonical column names to header indexes.
func resolveColumns(t Table, cols []column) (map[string]int, error) {
	lookup := make(map[string]string)
	for _, c := range cols {
		lookup[c.name] = c.name
		for _, a := range c.aliases {
			lookup[a] = c.name
		}
	}

	idx := make(map[string]int)
	for i, h := range t.Header {
		name, ok := lookup[normalizeHeader(h)]
		if !ok {
			continue
		}
		if _, dup := idx[name]; !dup {
			idx[name] = i
		}
	}

	var missing []string
	for _, c := range cols {
		if _, ok := idx[c.name]; c.required && !ok {
			missing = append(missing, c.name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Table: t.tableName(), Missing: missing}
	}
	return idx, nil
}

func (t Table) tableName() string {
	if t.Name != "" {
		return t.Name
	}
	if t.Model != "" {
		return t.Model
	}
	return "unnamed"
}

type rowReader struct {
	table string
	idx   map[string]int
	row   []string
	line  int
}

func (r *rowReader) cell(col string) string {
	i, ok := r.idx[col]
	if !ok || i >= len(r.row) {
		return ""
	}
	return strings.TrimSpace(r.row[i])
}

func (r *rowReader) fail(col, value, reason string) error {
	return &SchemaError{Table: r.table, Column: col, Row: r.line, Value: value, Reason: reason}
}

func (r *rowReader) text(col string) (string, error) {
	v := r.cell(col)
	if v == "" {
		return "", r.fail(col, v, "empty value")
	}
	return v, nil
}

func (r *rowReader) date(col string) (time.Time, error) {
	v := r.cell(col)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, r.fail(col, v, "malformed date")
}

func (r *rowReader) number(col string, nonNegative bool) (float64, error) {
	v := r.cell(col)
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, r.fail(col, v, "not a number")
	}
	if nonNegative && f < 0 {
		return 0, r.fail(col, v, "negative value")
	}
	return f, nil
}

func (r *rowReader) optionalNumber(col string) (*float64, error) {
	if _, ok := r.idx[col]; !ok {
		return nil, nil
	}
	v := r.cell(col)
	if v == "" || strings.EqualFold(v, "nan") || strings.EqualFold(v, "na") {
		return nil, nil
	}
	f, err := r.number(col, false)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// DecodeSales validates and decodes the historical sales table.
func DecodeSales(t Table) ([]models.SalesRecord, error) {
	idx, err := resolveColumns(t, salesColumns)
	if err != nil {
		return nil, err
	}
	out := make([]models.SalesRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		r := &rowReader{table: t.tableName(), idx: idx, row: row, line: i + 1}
		rec, err := decodeSalesRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func decodeSalesRow(r *rowReader) (models.SalesRecord, error) {
	var rec models.SalesRecord
	var err error
	if rec.Date, err = r.date(colDate); err != nil {
		return rec, err
	}
	if rec.Brand, err = r.text(colBrand); err != nil {
		return rec, err
	}
	rec.Category = r.cell(colCategory)
	rec.Branch = r.cell(colBranch)
	if rec.TotalSales, err = r.number(colTotalSales, true); err != nil {
		return rec, err
	}
	if rec.Popularity, err = r.optionalNumber(colPopularity); err != nil {
		return rec, err
	}
	return rec, nil
}

// DecodeForecast validates and decodes one model's forecast table.
func DecodeForecast(t Table) ([]models.ForecastRecord, error) {
	idx, err := resolveColumns(t, forecastColumns)
	if err != nil {
		return nil, err
	}
	out := make([]models.ForecastRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		r := &rowReader{table: t.tableName(), idx: idx, row: row, line: i + 1}
		var rec models.ForecastRecord
		if rec.Date, err = r.date(colDate); err != nil {
			return nil, err
		}
		if rec.Brand, err = r.text(colBrand); err != nil {
			return nil, err
		}
		if rec.PredictedSales, err = r.number(colPredicted, false); err != nil {
			return nil, err
		}
		if rec.LowerBound, err = r.optionalNumber(colLower); err != nil {
			return nil, err
		}
		if rec.UpperBound, err = r.optionalNumber(colUpper); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// DecodeMetrics validates and decodes one model's metrics table.
func DecodeMetrics(t Table) ([]models.MetricsRecord, error) {
	if t.Model == "" {
		return nil, &SchemaError{Table: t.tableName(), Reason: "metrics table has no model name"}
	}
	idx, err := resolveColumns(t, metricsColumns)
	if err != nil {
		return nil, err
	}
	out := make([]models.MetricsRecord, 0, len(t.Rows))
	for i, row := range t.Rows {
		r := &rowReader{table: t.tableName(), idx: idx, row: row, line: i + 1}
		rec := models.MetricsRecord{Model: t.Model}
		if rec.Brand, err = r.text(colBrand); err != nil {
			return nil, err
		}
		if rec.RMSE, err = r.number(colRMSE, true); err != nil {
			return nil, err
		}
		if rec.MAPE, err = r.number(colMAPE, true); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// IsSchemaError reports whether err is or wraps a *SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}
