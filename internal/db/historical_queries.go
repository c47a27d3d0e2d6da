package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

var timeFormats = []string{
	sqlTimeFormat,
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05 -0700 MST",
	"2006-01-02 15:04:05 +0000 UTC",
}

func parseTimeString(s string) (time.Time, bool) {
	for _, format := range timeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// GetBrandHistory returns a brand's growth figures across the newest limit
// runs, oldest first.
func (db *DB) GetBrandHistory(brand string, limit int) ([]models.BrandHistoryPoint, error) {
	query := `
		SELECT g.run_id, r.generated_at, g.reference_month, g.last_month_actual,
			   g.next_month_predicted, g.absolute_growth, g.growth_pct, g.trend
		FROM brand_growth g
		JOIN report_runs r ON r.id = g.run_id
		WHERE g.brand = ?
		ORDER BY r.generated_at DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(context.Background(), query, brand, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query brand history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []models.BrandHistoryPoint
	for rows.Next() {
		var p models.BrandHistoryPoint
		var generatedAt, trend string
		var refMonth sql.NullString
		var pct sql.NullFloat64
		err := rows.Scan(
			&p.RunID,
			&generatedAt,
			&refMonth,
			&p.LastMonthActual,
			&p.NextMonthPredicted,
			&p.AbsoluteGrowth,
			&pct,
			&trend,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan brand history: %w", err)
		}
		if t, ok := parseTimeString(generatedAt); ok {
			p.GeneratedAt = t
		}
		p.ReferenceMonth = parseMonth(refMonth)
		p.Trend = models.Trend(trend)
		if pct.Valid {
			v := pct.Float64
			p.GrowthPct = &v
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Reverse to chronological order for charts
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
	return points, nil
}

// GetRunGrowth returns the brand rows persisted for a run, largest absolute
// growth first.
func (db *DB) GetRunGrowth(runID string) ([]models.BrandGrowth, error) {
	query := `
		SELECT brand, category, reference_month, last_month_actual, next_month_predicted,
			   absolute_growth, growth_pct, trend, confidence_flag, coverage_flag,
			   coverage, source_model, horizon_mismatch
		FROM brand_growth
		WHERE run_id = ?
		ORDER BY absolute_growth DESC, brand ASC
	`

	rows, err := db.QueryContext(context.Background(), query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run growth: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []models.BrandGrowth
	for rows.Next() {
		var g models.BrandGrowth
		var category, refMonth, confidence, coverageFlag, coverage, source sql.NullString
		var pct sql.NullFloat64
		var trend string
		err := rows.Scan(
			&g.Brand, &category, &refMonth, &g.LastMonthActual, &g.NextMonthPredicted,
			&g.AbsoluteGrowth, &pct, &trend, &confidence, &coverageFlag,
			&coverage, &source, &g.HorizonMismatch,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run growth: %w", err)
		}
		g.Category = category.String
		g.ReferenceMonth = parseMonth(refMonth)
		g.Trend = models.Trend(trend)
		g.ConfidenceFlag = models.ConfidenceFlag(confidence.String)
		g.CoverageFlag = models.CoverageFlag(coverageFlag.String)
		g.Coverage = models.CoverageStatus(coverage.String)
		g.SourceModel = source.String
		if pct.Valid {
			v := pct.Float64
			g.GrowthPct = &v
		} else {
			g.Undetermined = true
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GetRunStats aggregates the runs recorded in the time range.
func (db *DB) GetRunStats(timeRange models.TimeRange) (*models.RunStats, error) {
	stats := &models.RunStats{TimeRange: timeRange}

	where := "WHERE 1=1 "
	args := []any{}
	if days := timeRange.Days(); days > 0 {
		where += sqlRunWindowClause
		args = append(args, fmt.Sprintf("-%d days", days))
	}

	query := `
		SELECT COUNT(*), MIN(generated_at), MAX(generated_at),
			   COALESCE(AVG(brand_count), 0), COALESCE(AVG(excluded_count), 0),
			   COALESCE(MAX(next_month_revenue), 0), COUNT(DISTINCT fastest_growing)
		FROM report_runs ` + where

	var first, last sql.NullString
	err := db.QueryRowContext(context.Background(), query, args...).Scan(
		&stats.RunCount,
		&first,
		&last,
		&stats.AvgBrandCount,
		&stats.AvgExcluded,
		&stats.PeakNextRevenue,
		&stats.DistinctLeaders,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query run stats: %w", err)
	}
	if first.Valid {
		stats.FirstRun, _ = parseTimeString(first.String)
	}
	if last.Valid {
		stats.LastRun, _ = parseTimeString(last.String)
	}
	if stats.RunCount == 0 {
		return stats, nil
	}

	topQuery := `
		SELECT fastest_growing, COUNT(*) as hits
		FROM report_runs ` + where + ` AND fastest_growing IS NOT NULL
		GROUP BY fastest_growing
		ORDER BY hits DESC, fastest_growing ASC
		LIMIT 1
	`
	err = db.QueryRowContext(context.Background(), topQuery, args...).Scan(
		&stats.MostFrequentTop,
		&stats.MostFrequentHits,
	)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("failed to query most frequent leader: %w", err)
	}

	return stats, nil
}
