package models

import (
	"sort"
	"time"
)

// BrandGrowth is the derived growth summary for one brand.
type BrandGrowth struct {
	Brand              string
	Category           string
	ReferenceMonth     YearMonth
	TargetMonth        YearMonth
	LastActualDate     time.Time
	LastMonthActual    float64
	NextMonthPredicted float64
	AbsoluteGrowth     float64
	GrowthPct          *float64 // nil when LastMonthActual is zero
	Trend              Trend
	ConfidenceFlag     ConfidenceFlag
	CoverageFlag       CoverageFlag
	Coverage           CoverageStatus
	SourceModel        string // Model whose projection drives the growth figures
	Projections        map[string]*ModelProjection
	HorizonMismatch    bool
	Undetermined       bool // New brand, growth percentage cannot be computed
}

// Projection returns the projection of the given model, or nil.
func (g *BrandGrowth) Projection(model string) *ModelProjection {
	if g.Projections == nil {
		return nil
	}
	return g.Projections[model]
}

// LeaderEntry is one brand on a category leaderboard.
type LeaderEntry struct {
	Brand string
	Sales float64
}

// CategoryLeaderboard maps a category to its top brands by last-month sales.
type CategoryLeaderboard map[string][]LeaderEntry

// Categories returns the category names sorted alphabetically.
func (l CategoryLeaderboard) Categories() []string {
	out := make([]string, 0, len(l))
	for c := range l {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// ExclusionReason explains why a brand is missing from the growth summary.
type ExclusionReason string

const (
	ReasonMissingActuals           ExclusionReason = "missing_actuals"
	ReasonIncompleteReferenceMonth ExclusionReason = "incomplete_reference_month"
	ReasonMissingForecast          ExclusionReason = "missing_forecast"
	ReasonNonFiniteTotal           ExclusionReason = "non_finite_total"
)

// Description returns a short human readable form of the reason.
func (r ExclusionReason) Description() string {
	switch r {
	case ReasonMissingActuals:
		return "missing actuals"
	case ReasonIncompleteReferenceMonth:
		return "no complete month of actuals"
	case ReasonMissingForecast:
		return "no forecast from any model"
	case ReasonNonFiniteTotal:
		return "totals overflow"
	default:
		return string(r)
	}
}

// Exclusion records a brand left out of the growth summary.
type Exclusion struct {
	Brand  string
	Reason ExclusionReason
	Detail string
}

// WarningKind classifies a non-fatal data quality issue.
type WarningKind string

const (
	WarnHorizonMismatch     WarningKind = "horizon_mismatch"
	WarnLowConfidence       WarningKind = "low_confidence"
	WarnPartialCoverage     WarningKind = "partial_coverage"
	WarnUndeterminedGrowth  WarningKind = "undetermined_growth"
	WarnHorizonOutsideMonth WarningKind = "horizon_outside_target_month"
	WarnDuplicateForecast   WarningKind = "duplicate_forecast_rows"
	WarnMissingMetrics      WarningKind = "missing_metrics"
	WarnNonFiniteForecast   WarningKind = "non_finite_forecast"
)

// Warning records a per-brand issue that degraded but did not drop an entry.
type Warning struct {
	Brand  string
	Kind   WarningKind
	Model  string
	Detail string
}

// ModelComparison holds accuracy metrics of every model for one brand.
type ModelComparison struct {
	Brand     string
	Metrics   map[string]MetricsRecord
	BestModel string // Lowest RMSE, empty when no metrics
}

// Summary holds the headline figures shown above the tables.
type Summary struct {
	ReferenceMonth      YearMonth
	NextMonth           YearMonth
	ThisMonthRevenue    float64
	NextMonthRevenue    float64
	FastestGrowing      string
	FastestGrowth       float64
	PositiveGrowthCount int
	BrandCount          int
	MostTrending        string
	MostTrendingScore   float64
}

// Report is the full output of one aggregation.
type Report struct {
	RunID        string
	GeneratedAt  time.Time
	PrimaryModel string
	Models       []string
	Growth       []BrandGrowth // Sorted by brand
	TopGrowth    []BrandGrowth // By absolute growth
	TopGrowthPct []BrandGrowth // By growth percentage
	Leaders      CategoryLeaderboard
	Exclusions   []Exclusion
	Warnings     []Warning
	Comparison   []ModelComparison
	Summary      Summary
	Actuals      map[string][]DailySales // Per brand daily history for charts
}

// DailySales is one day of actual sales for a brand.
type DailySales struct {
	Date  time.Time
	Sales float64
}

// IsEmpty reports whether the report holds no brands at all.
func (r *Report) IsEmpty() bool {
	return r == nil || (len(r.Growth) == 0 && len(r.Exclusions) == 0)
}

// Brand returns the growth row of a brand, or nil.
func (r *Report) Brand(name string) *BrandGrowth {
	if r == nil {
		return nil
	}
	i := sort.Search(len(r.Growth), func(i int) bool { return r.Growth[i].Brand >= name })
	if i < len(r.Growth) && r.Growth[i].Brand == name {
		return &r.Growth[i]
	}
	return nil
}

// BrandComparison returns the metrics comparison of a brand, or nil.
func (r *Report) BrandComparison(name string) *ModelComparison {
	if r == nil {
		return nil
	}
	for i := range r.Comparison {
		if r.Comparison[i].Brand == name {
			return &r.Comparison[i]
		}
	}
	return nil
}

// WarningsFor returns all warnings recorded for a brand.
func (r *Report) WarningsFor(brand string) []Warning {
	if r == nil {
		return nil
	}
	var out []Warning
	for _, w := range r.Warnings {
		if w.Brand == brand {
			out = append(out, w)
		}
	}
	return out
}
