// Package models defines data structures and domain types.
package models

import "time"

// TimeRange represents the selected history time range.
type TimeRange int

const (
	// TimeRange7Days shows runs from the last 7 days.
	TimeRange7Days TimeRange = iota
	// TimeRange30Days shows runs from the last 30 days.
	TimeRange30Days
	// TimeRange90Days shows runs from the last 90 days.
	TimeRange90Days
	// TimeRangeAllTime shows all persisted runs.
	TimeRangeAllTime
)

// String returns the display name for a time range.
func (t TimeRange) String() string {
	switch t {
	case TimeRange7Days:
		return "7 Days"
	case TimeRange30Days:
		return "30 Days"
	case TimeRange90Days:
		return "90 Days"
	case TimeRangeAllTime:
		return "All Time"
	default:
		return "Unknown"
	}
}

// Days returns the number of days for the time range (0 = unlimited).
func (t TimeRange) Days() int {
	switch t {
	case TimeRange7Days:
		return 7
	case TimeRange30Days:
		return 30
	case TimeRange90Days:
		return 90
	case TimeRangeAllTime:
		return 0
	default:
		return 30
	}
}

// Next cycles to the next time range.
func (t TimeRange) Next() TimeRange {
	return (t + 1) % 4
}

// Since returns the lower bound of the range relative to now (zero = unlimited).
func (t TimeRange) Since(now time.Time) time.Time {
	days := t.Days()
	if days == 0 {
		return time.Time{}
	}
	return now.AddDate(0, 0, -days)
}

// RunRecord is the persisted summary of one aggregation run.
type RunRecord struct {
	ID               string
	GeneratedAt      time.Time
	PrimaryModel     string
	ReferenceMonth   YearMonth
	NextMonth        YearMonth
	ThisMonthRevenue float64
	NextMonthRevenue float64
	FastestGrowing   string
	FastestGrowth    float64
	MostTrending     string
	BrandCount       int
	ExcludedCount    int
	WarningCount     int
}

// BrandHistoryPoint is one brand's growth figures in one persisted run.
type BrandHistoryPoint struct {
	RunID              string
	GeneratedAt        time.Time
	ReferenceMonth     YearMonth
	LastMonthActual    float64
	NextMonthPredicted float64
	AbsoluteGrowth     float64
	GrowthPct          *float64
	Trend              Trend
}

// RunStats aggregates persisted runs over a time range.
type RunStats struct {
	TimeRange        TimeRange
	RunCount         int
	FirstRun         time.Time
	LastRun          time.Time
	AvgBrandCount    float64
	AvgExcluded      float64
	PeakNextRevenue  float64
	DistinctLeaders  int // Distinct fastest growing brands
	MostFrequentTop  string
	MostFrequentHits int
}

// HasData returns true if any run was recorded in the range.
func (s *RunStats) HasData() bool {
	return s != nil && s.RunCount > 0
}
