package forecast

import (
	"sort"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// Actual is a brand's reference month and the sales recorded in it.
type Actual struct {
	Brand          string
	Category       string
	Month          models.YearMonth // Reference month
	Total          float64          // Sales summed over the reference month
	LastDate       time.Time        // Latest date with any sales row
	Daily          []models.DailySales
	MeanPopularity *float64
}

// MonthlyActual finds the most recent calendar month with full daily
// coverage for one brand and sums its sales. A month counts as complete
// when its number of distinct dates reaches the number of days in it.
// Rows sharing a date (several branches) are summed into that day.
func MonthlyActual(brand string, records []models.SalesRecord) (*Actual, error) {
	daily := make(map[time.Time]float64)
	days := make(map[models.YearMonth]int)
	sums := make(map[models.YearMonth]float64)

	var (
		lastDate time.Time
		category string
		popSum   float64
		popCount int
	)
	for _, r := range records {
		if _, seen := daily[r.Date]; !seen {
			days[models.MonthOf(r.Date)]++
		}
		daily[r.Date] += r.TotalSales
		sums[models.MonthOf(r.Date)] += r.TotalSales

		switch {
		case r.Date.After(lastDate):
			lastDate = r.Date
			category = r.Category
		case r.Date.Equal(lastDate) && r.Category < category:
			category = r.Category
		}
		if r.Popularity != nil {
			popSum += *r.Popularity
			popCount++
		}
	}

	months := make([]models.YearMonth, 0, len(days))
	for m := range days {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	a := &Actual{
		Brand:    brand,
		Category: category,
		LastDate: lastDate,
		Daily:    dailySeries(daily),
	}
	if popCount > 0 {
		mean := popSum / float64(popCount)
		a.MeanPopularity = &mean
	}

	for i := len(months) - 1; i >= 0; i-- {
		m := months[i]
		if days[m] >= m.Days() {
			a.Month = m
			a.Total = sums[m]
			return a, nil
		}
	}
	return a, &DataGapError{Brand: brand, Months: months}
}

func dailySeries(daily map[time.Time]float64) []models.DailySales {
	out := make([]models.DailySales, 0, len(daily))
	for d, v := range daily {
		out = append(out, models.DailySales{Date: d, Sales: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}
