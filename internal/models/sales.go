// Package models defines data structures and domain types.
package models

import (
	"fmt"
	"time"
)

// SalesRecord is one row of the historical sales table.
type SalesRecord struct {
	Date       time.Time
	Brand      string
	Category   string
	Branch     string   // Optional region/branch, empty when the table has none
	TotalSales float64  // Non-negative
	Popularity *float64 // Online popularity score, nil when the column is absent
}

// ForecastRecord is one row of a per-model forecast table.
type ForecastRecord struct {
	Date           time.Time
	Brand          string
	PredictedSales float64
	LowerBound     *float64
	UpperBound     *float64
}

// MetricsRecord holds the accuracy metrics of one model for one brand.
type MetricsRecord struct {
	Brand string
	Model string
	RMSE  float64
	MAPE  float64 // Percentage
}

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses the "2006-01" form produced by String.
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("failed to parse month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// String returns the month as "2006-01".
func (m YearMonth) String() string {
	if m.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label returns a human readable label like "Mar 2024".
func (m YearMonth) Label() string {
	if m.IsZero() {
		return "-"
	}
	return m.Start().Format("Jan 2006")
}

// IsZero reports whether the month is unset.
func (m YearMonth) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Start returns midnight UTC of the first day of the month.
func (m YearMonth) Start() time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Next returns the following calendar month.
func (m YearMonth) Next() YearMonth {
	return MonthOf(m.Start().AddDate(0, 1, 0))
}

// Days returns the number of days in the month.
func (m YearMonth) Days() int {
	return m.Start().AddDate(0, 1, -1).Day()
}

// Before reports whether m is earlier than o.
func (m YearMonth) Before(o YearMonth) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// Contains reports whether t falls within the month.
func (m YearMonth) Contains(t time.Time) bool {
	return t.Year() == m.Year && t.Month() == m.Month
}
