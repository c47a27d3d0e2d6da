package forecast

import (
	"sort"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// MonthlyProjection computes one model's projection of a brand's target
// month.
//
// The model's horizon starts at its first forecast date after lastActual
// (rows at or before it are in-sample fits) and spans cfg.HorizonDays
// calendar days. Only horizon days inside target are summed. It returns nil
// when the model has no forecast after lastActual, along with the number of
// duplicated dates that were collapsed (the later row wins).
func MonthlyProjection(model string, records []models.ForecastRecord, lastActual time.Time, target models.YearMonth, cfg Config) (*models.ModelProjection, int) {
	byDate := make(map[time.Time]models.ForecastRecord, len(records))
	dups := 0
	for _, r := range records {
		if !r.Date.After(lastActual) {
			continue
		}
		if _, ok := byDate[r.Date]; ok {
			dups++
		}
		byDate[r.Date] = r
	}
	if len(byDate) == 0 {
		return nil, dups
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	p := &models.ModelProjection{
		Model:        model,
		HorizonStart: dates[0],
	}
	last := dates[0].AddDate(0, 0, cfg.HorizonDays-1)
	for _, d := range dates {
		if d.After(last) {
			break
		}
		r := byDate[d]
		p.HorizonEnd = d
		p.HorizonDays++
		p.Series = append(p.Series, models.ForecastPoint{
			Date:      d,
			Predicted: r.PredictedSales,
			Lower:     r.LowerBound,
			Upper:     r.UpperBound,
		})
		if target.Contains(d) {
			p.Value += r.PredictedSales
			p.DaysInTarget++
		}
	}
	p.LowConfidence = p.DaysInTarget < cfg.MinCoverageDays
	return p, dups
}
