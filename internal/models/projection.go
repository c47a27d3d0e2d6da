// Package models defines data structures and domain types.
package models

import "time"

// Well-known model names written by the upstream forecasting stages.
const (
	ModelProphet = "prophet"
	ModelLSTM    = "lstm"
)

// ModelProjection is one model's next-month projection for a brand.
type ModelProjection struct {
	Model         string
	Value         float64   // Sum of predicted sales inside the target month
	HorizonStart  time.Time // First forecast day after the last actual
	HorizonEnd    time.Time // Last forecast day considered
	HorizonDays   int       // Distinct forecast days inside the window
	DaysInTarget  int       // Distinct window days inside the target month
	LowConfidence bool      // DaysInTarget below the coverage threshold
	Series        []ForecastPoint
}

// ForecastPoint is a single day of a projection window.
type ForecastPoint struct {
	Date      time.Time
	Predicted float64
	Lower     *float64
	Upper     *float64
}

// SameHorizon reports whether two projections cover the same window.
func (p *ModelProjection) SameHorizon(o *ModelProjection) bool {
	if p == nil || o == nil {
		return true
	}
	return p.HorizonStart.Equal(o.HorizonStart) && p.HorizonDays == o.HorizonDays
}

// CoverageStatus tags which models contributed a projection for a brand.
type CoverageStatus string

const (
	CoverageBoth          CoverageStatus = "both"
	CoveragePrimaryOnly   CoverageStatus = "primary_only"
	CoverageSecondaryOnly CoverageStatus = "secondary_only"
	CoverageNone          CoverageStatus = "none"
)

// ConfidenceFlag marks a projection of reduced reliability. Empty means none.
type ConfidenceFlag string

// ConfidenceLow is set when too few horizon days fall in the target month.
const ConfidenceLow ConfidenceFlag = "low_confidence"

// CoverageFlag marks a brand missing from at least one model. Empty means none.
type CoverageFlag string

// CoveragePartial is set when a loaded model has no forecast for the brand.
const CoveragePartial CoverageFlag = "partial_coverage"

// Trend is the direction of the projected change.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendFlat Trend = "flat"
)

// TrendOf maps an absolute growth value to its direction.
func TrendOf(absGrowth float64) Trend {
	switch {
	case absGrowth > 0:
		return TrendUp
	case absGrowth < 0:
		return TrendDown
	default:
		return TrendFlat
	}
}

// Arrow returns a compact glyph for the trend.
func (t Trend) Arrow() string {
	switch t {
	case TrendUp:
		return "▲"
	case TrendDown:
		return "▼"
	default:
		return "■"
	}
}
