package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// SaveReport stores a run summary with its brand rows and issues in a
// single transaction.
func (db *DB) SaveReport(r *models.Report) error {
	if r == nil || r.RunID == "" {
		return errors.New("failed to save report: missing run id")
	}
	generatedAt := r.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := insertRun(ctx, tx, r, generatedAt); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := insertGrowth(ctx, tx, r); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := insertIssues(ctx, tx, r); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit report: %w", err)
	}
	return nil
}

func insertRun(ctx context.Context, tx *sql.Tx, r *models.Report, generatedAt time.Time) error {
	query := `
		INSERT INTO report_runs (
			id, generated_at, primary_model, models, reference_month, next_month,
			this_month_revenue, next_month_revenue, fastest_growing, fastest_growth,
			brand_count, excluded_count, warning_count, most_trending
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := tx.ExecContext(ctx, query,
		r.RunID,
		generatedAt.UTC().Format(sqlTimeFormat),
		r.PrimaryModel,
		strings.Join(r.Models, ","),
		nullString(r.Summary.ReferenceMonth.String()),
		nullString(r.Summary.NextMonth.String()),
		r.Summary.ThisMonthRevenue,
		r.Summary.NextMonthRevenue,
		nullString(r.Summary.FastestGrowing),
		r.Summary.FastestGrowth,
		len(r.Growth),
		len(r.Exclusions),
		len(r.Warnings),
		nullString(r.Summary.MostTrending),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

func insertGrowth(ctx context.Context, tx *sql.Tx, r *models.Report) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO brand_growth (
			run_id, brand, category, reference_month, last_month_actual,
			next_month_predicted, absolute_growth, growth_pct, trend,
			confidence_flag, coverage_flag, coverage, source_model, horizon_mismatch
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare growth insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, g := range r.Growth {
		_, err := stmt.ExecContext(ctx,
			r.RunID,
			g.Brand,
			g.Category,
			g.ReferenceMonth.String(),
			g.LastMonthActual,
			g.NextMonthPredicted,
			g.AbsoluteGrowth,
			nullFloat(g.GrowthPct),
			string(g.Trend),
			nullString(string(g.ConfidenceFlag)),
			nullString(string(g.CoverageFlag)),
			string(g.Coverage),
			g.SourceModel,
			g.HorizonMismatch,
		)
		if err != nil {
			return fmt.Errorf("failed to insert growth for %s: %w", g.Brand, err)
		}
	}
	return nil
}

func insertIssues(ctx context.Context, tx *sql.Tx, r *models.Report) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO report_issues (run_id, issue_type, brand, reason, model, detail)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare issue insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, e := range r.Exclusions {
		if _, err := stmt.ExecContext(ctx, r.RunID, issueExclusion, e.Brand, string(e.Reason), nil, nullString(e.Detail)); err != nil {
			return fmt.Errorf("failed to insert exclusion: %w", err)
		}
	}
	for _, w := range r.Warnings {
		if _, err := stmt.ExecContext(ctx, r.RunID, issueWarning, nullString(w.Brand), string(w.Kind), nullString(w.Model), nullString(w.Detail)); err != nil {
			return fmt.Errorf("failed to insert warning: %w", err)
		}
	}
	return nil
}

const runColumns = `
	id, generated_at, primary_model, reference_month, next_month,
	this_month_revenue, next_month_revenue, fastest_growing, fastest_growth,
	most_trending, brand_count, excluded_count, warning_count
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner) (models.RunRecord, error) {
	var run models.RunRecord
	var generatedAt string
	var refMonth, nextMonth, fastest, trending sql.NullString
	err := s.Scan(
		&run.ID,
		&generatedAt,
		&run.PrimaryModel,
		&refMonth,
		&nextMonth,
		&run.ThisMonthRevenue,
		&run.NextMonthRevenue,
		&fastest,
		&run.FastestGrowth,
		&trending,
		&run.BrandCount,
		&run.ExcludedCount,
		&run.WarningCount,
	)
	if err != nil {
		return run, err
	}
	if t, ok := parseTimeString(generatedAt); ok {
		run.GeneratedAt = t
	}
	run.ReferenceMonth = parseMonth(refMonth)
	run.NextMonth = parseMonth(nextMonth)
	run.FastestGrowing = fastest.String
	run.MostTrending = trending.String
	return run, nil
}

// GetRuns returns persisted runs in the time range, newest first.
func (db *DB) GetRuns(timeRange models.TimeRange, limit int) ([]models.RunRecord, error) {
	query := "SELECT " + runColumns + " FROM report_runs WHERE 1=1 "
	args := []any{}
	if days := timeRange.Days(); days > 0 {
		query += sqlRunWindowClause
		args = append(args, fmt.Sprintf("-%d days", days))
	}
	query += " ORDER BY generated_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.QueryContext(context.Background(), query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []models.RunRecord
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetLatestRun returns the newest run, or nil when none was recorded.
func (db *DB) GetLatestRun() (*models.RunRecord, error) {
	row := db.QueryRowContext(context.Background(),
		"SELECT "+runColumns+" FROM report_runs ORDER BY generated_at DESC LIMIT 1")
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return &run, nil
}

// GetRunIssues returns the exclusions and warnings recorded for a run.
func (db *DB) GetRunIssues(runID string) ([]models.Exclusion, []models.Warning, error) {
	query := `
		SELECT issue_type, brand, reason, model, detail
		FROM report_issues
		WHERE run_id = ?
		ORDER BY id
	`
	rows, err := db.QueryContext(context.Background(), query, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query run issues: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var exclusions []models.Exclusion
	var warnings []models.Warning
	for rows.Next() {
		var issueType, reason string
		var brand, model, detail sql.NullString
		if err := rows.Scan(&issueType, &brand, &reason, &model, &detail); err != nil {
			return nil, nil, fmt.Errorf("failed to scan issue: %w", err)
		}
		if issueType == issueExclusion {
			exclusions = append(exclusions, models.Exclusion{
				Brand:  brand.String,
				Reason: models.ExclusionReason(reason),
				Detail: detail.String,
			})
			continue
		}
		warnings = append(warnings, models.Warning{
			Brand:  brand.String,
			Kind:   models.WarningKind(reason),
			Model:  model.String,
			Detail: detail.String,
		})
	}
	return exclusions, warnings, rows.Err()
}

// PruneRuns deletes all but the newest keep runs and returns how many runs
// were removed. keep <= 0 disables pruning.
func (db *DB) PruneRuns(keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	ctx := context.Background()
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	const stale = `NOT IN (SELECT id FROM report_runs ORDER BY generated_at DESC LIMIT ?)`
	for _, q := range []string{
		"DELETE FROM brand_growth WHERE run_id " + stale,
		"DELETE FROM report_issues WHERE run_id " + stale,
	} {
		if _, err := tx.ExecContext(ctx, q, keep); err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("failed to prune run details: %w", err)
		}
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM report_runs WHERE id "+stale, keep)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("failed to prune runs: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit prune: %w", err)
	}
	return result.RowsAffected()
}

// nullString returns a sql.NullString from a string.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// nullFloat returns a sql.NullFloat64 from an optional value.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func parseMonth(s sql.NullString) models.YearMonth {
	if !s.Valid || s.String == "" {
		return models.YearMonth{}
	}
	m, err := models.ParseYearMonth(s.String)
	if err != nil {
		return models.YearMonth{}
	}
	return m
}
