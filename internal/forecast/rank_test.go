package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

func pct(v float64) *float64 { return &v }

func TestRankByAbsoluteGrowth(t *testing.T) {
	rows := []models.BrandGrowth{
		{Brand: "Parle", AbsoluteGrowth: 50},
		{Brand: "Amul", AbsoluteGrowth: 200},
		{Brand: "Britannia", AbsoluteGrowth: 200},
		{Brand: "Dabur", AbsoluteGrowth: -10},
	}

	got := RankByAbsoluteGrowth(rows, 0)
	require.Len(t, got, 4)
	var names []string
	for _, g := range got {
		names = append(names, g.Brand)
	}
	assert.Equal(t, []string{"Amul", "Britannia", "Parle", "Dabur"}, names)
	assert.Equal(t, "Parle", rows[0].Brand, "input is not reordered")

	assert.Len(t, RankByAbsoluteGrowth(rows, 2), 2)
	assert.Len(t, RankByAbsoluteGrowth(rows, 10), 4)
}

func TestRankByGrowthPct(t *testing.T) {
	rows := []models.BrandGrowth{
		{Brand: "Big", AbsoluteGrowth: 1000, GrowthPct: pct(5)},
		{Brand: "Small", AbsoluteGrowth: 10, GrowthPct: pct(50)},
		{Brand: "New", AbsoluteGrowth: 500},
		{Brand: "Also", AbsoluteGrowth: 20, GrowthPct: pct(50)},
	}

	got := RankByGrowthPct(rows, 0)
	require.Len(t, got, 3)
	assert.Equal(t, "Also", got[0].Brand)
	assert.Equal(t, "Small", got[1].Brand)
	assert.Equal(t, "Big", got[2].Brand)
}

func TestCategoryLeaders(t *testing.T) {
	actuals := []*Actual{
		{Brand: "Amul", Category: "Dairy", Total: 500},
		{Brand: "Nestle", Category: "Dairy", Total: 700},
		{Brand: "Britannia", Category: "Dairy", Total: 500},
		{Brand: "Mother Dairy", Category: "Dairy", Total: 100},
		{Brand: "Pepsi", Category: "Beverages", Total: 900},
		{Brand: "Misc", Category: "", Total: 1},
	}

	board := CategoryLeaders(actuals, 3)

	dairy := board["Dairy"]
	require.Len(t, dairy, 3)
	assert.Equal(t, "Nestle", dairy[0].Brand)
	assert.Equal(t, "Amul", dairy[1].Brand, "ties break by name")
	assert.Equal(t, "Britannia", dairy[2].Brand)
	for i := 1; i < len(dairy); i++ {
		assert.GreaterOrEqual(t, dairy[i-1].Sales, dairy[i].Sales)
	}

	assert.Len(t, board["Beverages"], 1)
	assert.Len(t, board[UncategorizedLabel], 1)
}

func TestMonthlyActual(t *testing.T) {
	var recs []models.SalesRecord
	// Two branches per day across all of February 2024.
	for d := 1; d <= 29; d++ {
		date := time.Date(2024, 2, d, 0, 0, 0, 0, time.UTC)
		recs = append(recs,
			models.SalesRecord{Date: date, Brand: "A", Category: "Old", Branch: "N", TotalSales: 1},
			models.SalesRecord{Date: date, Brand: "A", Category: "Old", Branch: "S", TotalSales: 2},
		)
	}
	recs = append(recs, models.SalesRecord{
		Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Brand: "A", Category: "New", TotalSales: 5,
	})

	a, err := MonthlyActual("A", recs)
	require.NoError(t, err)
	assert.Equal(t, models.YearMonth{Year: 2024, Month: time.February}, a.Month)
	assert.InDelta(t, 87, a.Total, epsilon)
	assert.Equal(t, "New", a.Category, "category comes from the latest row")
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), a.LastDate)
	assert.Len(t, a.Daily, 30)
	assert.InDelta(t, 3, a.Daily[0].Sales, epsilon)
}

func TestMonthlyProjection_Window(t *testing.T) {
	var recs []models.ForecastRecord
	for i := 0; i < 40; i++ {
		recs = append(recs, models.ForecastRecord{
			Date:           time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
			Brand:          "A",
			PredictedSales: 1,
		})
	}
	recs = append(recs, recs[3])

	lastActual := time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC)
	target := models.YearMonth{Year: 2024, Month: time.May}
	p, dups := MonthlyProjection("prophet", recs, lastActual, target, DefaultConfig())

	require.NotNil(t, p)
	assert.Equal(t, 1, dups)
	assert.Equal(t, 30, p.HorizonDays, "horizon is capped")
	assert.Equal(t, 30, p.DaysInTarget)
	assert.InDelta(t, 30, p.Value, epsilon)
	assert.False(t, p.LowConfidence)
	assert.Equal(t, time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC), p.HorizonEnd)

	p, _ = MonthlyProjection("prophet", recs, time.Date(2024, 7, 1, 0, 0, 0, 0, time.UTC), target, DefaultConfig())
	assert.Nil(t, p, "nothing after the last actual")
}

func TestConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero horizon", func(c *Config) { c.HorizonDays = 0 }},
		{"empty primary", func(c *Config) { c.PrimaryModel = "" }},
		{"coverage above horizon", func(c *Config) { c.MinCoverageDays = 31 }},
		{"zero coverage", func(c *Config) { c.MinCoverageDays = 0 }},
		{"zero leaderboard", func(c *Config) { c.LeaderboardSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
