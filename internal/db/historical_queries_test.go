package db

import (
	"testing"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

func TestParseTimeString(t *testing.T) {
	tests := []struct {
		input string
		ok    bool
	}{
		{"2024-01-15 10:30:00", true},
		{"2024-01-15T10:30:00Z", true},
		{"2024-01-15T10:30:00.123456789Z", true},
		{"2024-01-15T10:30:00", true},
		{"not a time", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := parseTimeString(tt.input)
			if ok != tt.ok {
				t.Fatalf("parseTimeString(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && (got.Year() != 2024 || got.Month() != time.January || got.Day() != 15) {
				t.Errorf("parseTimeString(%q) = %v", tt.input, got)
			}
		})
	}
}

func TestGetBrandHistory(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now()
	for i := 0; i < 4; i++ {
		r := sampleReport(string(rune('a'+i))+"-run", now.Add(time.Duration(i)*time.Hour))
		r.Growth[0].AbsoluteGrowth = float64(100 * (i + 1))
		if err := db.SaveReport(r); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}

	points, err := db.GetBrandHistory("Acme", 3)
	if err != nil {
		t.Fatalf("GetBrandHistory failed: %v", err)
	}
	if len(points) != 3 {
		t.Fatalf("Expected 3 points, got %d", len(points))
	}

	// Newest three runs, oldest first
	for i, want := range []float64{200, 300, 400} {
		if points[i].AbsoluteGrowth != want {
			t.Errorf("Point %d: expected growth %.0f, got %.0f", i, want, points[i].AbsoluteGrowth)
		}
	}
	if !points[0].GeneratedAt.Before(points[2].GeneratedAt) {
		t.Error("Expected chronological order")
	}
	if points[2].GrowthPct == nil || points[2].Trend != models.TrendUp {
		t.Errorf("Unexpected last point: %+v", points[2])
	}
	if points[2].ReferenceMonth.String() != "2024-01" {
		t.Errorf("Expected reference month 2024-01, got %s", points[2].ReferenceMonth)
	}

	undetermined, err := db.GetBrandHistory("Nova", 10)
	if err != nil {
		t.Fatalf("GetBrandHistory failed: %v", err)
	}
	if len(undetermined) != 4 {
		t.Fatalf("Expected 4 Nova points, got %d", len(undetermined))
	}
	if undetermined[0].GrowthPct != nil {
		t.Error("Expected nil growth pct for Nova")
	}

	none, err := db.GetBrandHistory("Unknown", 10)
	if err != nil {
		t.Fatalf("GetBrandHistory failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no points for unknown brand, got %d", len(none))
	}
}

func TestGetRunStats_Empty(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	stats, err := db.GetRunStats(models.TimeRange30Days)
	if err != nil {
		t.Fatalf("GetRunStats failed: %v", err)
	}
	if stats.HasData() {
		t.Error("Expected no data on empty database")
	}
	if stats.TimeRange != models.TimeRange30Days {
		t.Errorf("Expected time range to be echoed, got %v", stats.TimeRange)
	}
}

func TestGetRunStats(t *testing.T) {
	db := newTestDB(t)
	defer db.Close()

	now := time.Now()
	leaders := []string{"Nova", "Acme", "Nova"}
	for i, leader := range leaders {
		r := sampleReport(leader+string(rune('0'+i)), now.Add(time.Duration(i)*time.Minute))
		r.Summary.FastestGrowing = leader
		r.Summary.NextMonthRevenue = float64(1000 * (i + 1))
		if err := db.SaveReport(r); err != nil {
			t.Fatalf("SaveReport failed: %v", err)
		}
	}
	old := sampleReport("old", now.AddDate(0, 0, -60))
	old.Summary.FastestGrowing = "Zed"
	old.Summary.NextMonthRevenue = 99999
	if err := db.SaveReport(old); err != nil {
		t.Fatalf("SaveReport failed: %v", err)
	}

	stats, err := db.GetRunStats(models.TimeRange7Days)
	if err != nil {
		t.Fatalf("GetRunStats failed: %v", err)
	}
	if stats.RunCount != 3 {
		t.Errorf("Expected 3 runs, got %d", stats.RunCount)
	}
	if stats.AvgBrandCount != 2 || stats.AvgExcluded != 1 {
		t.Errorf("Unexpected averages: brands=%.1f excluded=%.1f", stats.AvgBrandCount, stats.AvgExcluded)
	}
	if stats.PeakNextRevenue != 3000 {
		t.Errorf("Expected peak revenue 3000, got %.0f", stats.PeakNextRevenue)
	}
	if stats.DistinctLeaders != 2 {
		t.Errorf("Expected 2 distinct leaders, got %d", stats.DistinctLeaders)
	}
	if stats.MostFrequentTop != "Nova" || stats.MostFrequentHits != 2 {
		t.Errorf("Expected Nova x2, got %s x%d", stats.MostFrequentTop, stats.MostFrequentHits)
	}
	if stats.FirstRun.IsZero() || stats.LastRun.Before(stats.FirstRun) {
		t.Errorf("Unexpected run bounds: %v - %v", stats.FirstRun, stats.LastRun)
	}

	all, err := db.GetRunStats(models.TimeRangeAllTime)
	if err != nil {
		t.Fatalf("GetRunStats failed: %v", err)
	}
	if all.RunCount != 4 || all.PeakNextRevenue != 99999 {
		t.Errorf("Unexpected all time stats: %+v", all)
	}
}
