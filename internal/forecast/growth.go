package forecast

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// ComputeGrowth derives the growth figures of a projection against the
// reference month. The percentage is nil when actual is zero.
func ComputeGrowth(actual, projected float64) (absolute float64, pct *float64, trend models.Trend) {
	absolute = projected - actual
	if actual > 0 {
		p := absolute / actual * 100
		pct = &p
	}
	return absolute, pct, models.TrendOf(absolute)
}

// isFinite reports whether v is neither NaN nor an infinity.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteGrowth reports whether every derived figure of g is finite.
func finiteGrowth(g models.BrandGrowth) bool {
	if !isFinite(g.AbsoluteGrowth) || !isFinite(g.NextMonthPredicted) {
		return false
	}
	return g.GrowthPct == nil || isFinite(*g.GrowthPct)
}

// mergeBrand combines a brand's actuals with every model projection it has.
// Projections are never averaged: the primary model (or the first available
// model by name when the primary is missing) drives the growth figures and
// every projection is kept for comparison. windows holds every horizon
// computed for the brand, including those that miss the target month.
// loaded lists the models whose forecast tables were present, sorted.
func mergeBrand(a *Actual, projections, windows map[string]*models.ModelProjection, loaded []string, cfg Config) (models.BrandGrowth, []models.Warning) {
	g := models.BrandGrowth{
		Brand:          a.Brand,
		Category:       a.Category,
		ReferenceMonth: a.Month,
		TargetMonth:    a.Month.Next(),
		LastActualDate: a.LastDate,
		Projections:    projections,
	}
	var warnings []models.Warning

	primary := projections[cfg.PrimaryModel]
	secondaries := 0
	missing := make([]string, 0)
	for _, m := range loaded {
		if windows[m] == nil {
			missing = append(missing, m)
		}
		if projections[m] != nil && m != cfg.PrimaryModel {
			secondaries++
		}
	}

	switch {
	case primary != nil && secondaries > 0:
		g.Coverage = models.CoverageBoth
	case primary != nil:
		g.Coverage = models.CoveragePrimaryOnly
	case secondaries > 0:
		g.Coverage = models.CoverageSecondaryOnly
	default:
		g.Coverage = models.CoverageNone
	}

	source := primary
	if source == nil {
		for _, m := range loaded {
			if projections[m] != nil {
				source = projections[m]
				break
			}
		}
	}
	if source == nil {
		return g, warnings
	}
	g.SourceModel = source.Model

	if len(missing) > 0 {
		g.CoverageFlag = models.CoveragePartial
		warnings = append(warnings, models.Warning{
			Brand:  a.Brand,
			Kind:   models.WarnPartialCoverage,
			Model:  strings.Join(missing, ","),
			Detail: fmt.Sprintf("no forecast from %s, using %s", strings.Join(missing, ", "), source.Model),
		})
	}

	if detail, ok := horizonMismatch(windows, loaded); ok {
		g.HorizonMismatch = true
		warnings = append(warnings, models.Warning{
			Brand:  a.Brand,
			Kind:   models.WarnHorizonMismatch,
			Detail: detail,
		})
	}

	for _, m := range loaded {
		p := projections[m]
		if p == nil || !p.LowConfidence {
			continue
		}
		warnings = append(warnings, models.Warning{
			Brand: a.Brand,
			Kind:  models.WarnLowConfidence,
			Model: m,
			Detail: fmt.Sprintf("only %d of %d horizon days fall in %s",
				p.DaysInTarget, p.HorizonDays, g.TargetMonth),
		})
	}
	if source.LowConfidence {
		g.ConfidenceFlag = models.ConfidenceLow
	}

	g.LastMonthActual = a.Total
	g.NextMonthPredicted = source.Value
	g.AbsoluteGrowth, g.GrowthPct, g.Trend = ComputeGrowth(a.Total, source.Value)
	if g.GrowthPct == nil {
		g.Undetermined = true
		warnings = append(warnings, models.Warning{
			Brand:  a.Brand,
			Kind:   models.WarnUndeterminedGrowth,
			Model:  source.Model,
			Detail: fmt.Sprintf("no sales in %s, growth percentage undefined", a.Month),
		})
	}
	return g, warnings
}

// horizonMismatch reports whether the computed horizons disagree on start
// or length, with a description of each window.
func horizonMismatch(windows map[string]*models.ModelProjection, loaded []string) (string, bool) {
	var first *models.ModelProjection
	mismatch := false
	parts := make([]string, 0, len(loaded))
	for _, m := range loaded {
		p := windows[m]
		if p == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %s+%dd", m, p.HorizonStart.Format("2006-01-02"), p.HorizonDays))
		if first == nil {
			first = p
			continue
		}
		if !first.SameHorizon(p) {
			mismatch = true
		}
	}
	if !mismatch {
		return "", false
	}
	return strings.Join(parts, " vs "), true
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
