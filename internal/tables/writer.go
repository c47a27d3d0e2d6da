package tables

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/j-veylop/brand-forecast-tui/internal/logger"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// Export file names.
const (
	GrowthSummaryFile = "growth_summary.csv"
	LeaderboardFile   = "category_leaders.csv"
	RankingsFile      = "rankings.csv"
	IssuesFile        = "issues.csv"
)

// Money formats a monetary value rounded to cents. NaN and infinities have
// no decimal form and are written as an empty cell.
func Money(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Percent formats a growth percentage, empty when undefined.
func Percent(p *float64) string {
	if p == nil {
		return ""
	}
	return Money(*p)
}

// WriteGrowthSummary writes one row per brand with a projection column for
// every loaded model.
func WriteGrowthSummary(w io.Writer, r *models.Report) error {
	cw := csv.NewWriter(w)
	header := []string{
		"brand", "category", "reference_month",
		"last_month_actual_sales", "next_month_predicted_sales",
		"absolute_growth", "growth_pct", "trend_direction",
		"confidence_flag", "coverage_flag", "coverage", "source_model", "horizon_mismatch",
	}
	for _, m := range r.Models {
		header = append(header, m+"_projection")
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, g := range r.Growth {
		row := []string{
			g.Brand, g.Category, g.ReferenceMonth.String(),
			Money(g.LastMonthActual), Money(g.NextMonthPredicted),
			Money(g.AbsoluteGrowth), Percent(g.GrowthPct), string(g.Trend),
			string(g.ConfidenceFlag), string(g.CoverageFlag), string(g.Coverage), g.SourceModel,
			strconv.FormatBool(g.HorizonMismatch),
		}
		for _, m := range r.Models {
			if p := g.Projection(m); p != nil {
				row = append(row, Money(p.Value))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteLeaderboard writes the category leaderboard, categories in name order.
func WriteLeaderboard(w io.Writer, board models.CategoryLeaderboard) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"category", "rank", "brand", "last_month_actual_sales"}); err != nil {
		return err
	}
	for _, cat := range board.Categories() {
		for i, e := range board[cat] {
			if err := cw.Write([]string{cat, strconv.Itoa(i + 1), e.Brand, Money(e.Sales)}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteRankings writes both ranking views.
func WriteRankings(w io.Writer, r *models.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"view", "rank", "brand", "absolute_growth", "growth_pct"}); err != nil {
		return err
	}
	views := []struct {
		name string
		rows []models.BrandGrowth
	}{
		{"absolute_growth", r.TopGrowth},
		{"growth_pct", r.TopGrowthPct},
	}
	for _, v := range views {
		for i, g := range v.rows {
			row := []string{v.name, strconv.Itoa(i + 1), g.Brand, Money(g.AbsoluteGrowth), Percent(g.GrowthPct)}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteIssues writes exclusions followed by warnings.
func WriteIssues(w io.Writer, r *models.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"type", "brand", "reason", "model", "detail"}); err != nil {
		return err
	}
	for _, e := range r.Exclusions {
		if err := cw.Write([]string{"exclusion", e.Brand, string(e.Reason), "", e.Detail}); err != nil {
			return err
		}
	}
	for _, wn := range r.Warnings {
		if err := cw.Write([]string{"warning", wn.Brand, string(wn.Kind), wn.Model, wn.Detail}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportReport writes every export file into dir and returns their paths.
// Each file is written to a temporary name first and renamed into place.
func ExportReport(dir string, r *models.Report) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	files := []struct {
		name  string
		write func(io.Writer) error
	}{
		{GrowthSummaryFile, func(w io.Writer) error { return WriteGrowthSummary(w, r) }},
		{LeaderboardFile, func(w io.Writer) error { return WriteLeaderboard(w, r.Leaders) }},
		{RankingsFile, func(w io.Writer) error { return WriteRankings(w, r) }},
		{IssuesFile, func(w io.Writer) error { return WriteIssues(w, r) }},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := writeAtomic(path, f.write); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", f.name, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeAtomic(path string, write func(io.Writer) error) error {
	tmpFile := path + ".tmp"
	f, err := os.OpenFile(tmpFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := write(f); err != nil {
		f.Close()
		removeTemp(tmpFile)
		return err
	}
	if err := f.Close(); err != nil {
		removeTemp(tmpFile)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpFile, path); err != nil {
		removeTemp(tmpFile)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

func removeTemp(path string) {
	if err := os.Remove(path); err != nil {
		logger.Error("failed to remove temp file", "error", err)
	}
}
