package forecast

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// Inputs is a snapshot of every table one aggregation consumes.
type Inputs struct {
	Sales     Table
	Forecasts []Table // One per model, Table.Model set
	Metrics   []Table // One per model, Table.Model set
}

// Records is the decoded form of Inputs.
type Records struct {
	Sales     []models.SalesRecord
	Forecasts map[string][]models.ForecastRecord // By model
	Metrics   map[string][]models.MetricsRecord  // By model
}

// Decode validates every table of the snapshot. Any structural problem
// fails the whole snapshot with a *SchemaError.
func Decode(in Inputs) (*Records, error) {
	sales, err := DecodeSales(in.Sales)
	if err != nil {
		return nil, err
	}
	rec := &Records{
		Sales:     sales,
		Forecasts: make(map[string][]models.ForecastRecord),
		Metrics:   make(map[string][]models.MetricsRecord),
	}
	for _, t := range in.Forecasts {
		if t.Model == "" {
			return nil, &SchemaError{Table: t.tableName(), Reason: "forecast table has no model name"}
		}
		rows, err := DecodeForecast(t)
		if err != nil {
			return nil, err
		}
		rec.Forecasts[t.Model] = append(rec.Forecasts[t.Model], rows...)
	}
	for _, t := range in.Metrics {
		rows, err := DecodeMetrics(t)
		if err != nil {
			return nil, err
		}
		rec.Metrics[t.Model] = append(rec.Metrics[t.Model], rows...)
	}
	return rec, nil
}

// Aggregate decodes the snapshot and builds the growth report.
func Aggregate(cfg Config, in Inputs) (*models.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aggregation config: %w", err)
	}
	rec, err := Decode(in)
	if err != nil {
		return nil, err
	}
	return AggregateRecords(cfg, rec)
}

// AggregateRecords builds the growth report from decoded records. Brands are
// processed independently; a data problem with one brand only excludes or
// flags that brand.
func AggregateRecords(cfg Config, rec *Records) (*models.Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid aggregation config: %w", err)
	}
	if rec == nil {
		rec = &Records{}
	}

	loaded := sortedKeys(rec.Forecasts)
	report := &models.Report{
		PrimaryModel: cfg.PrimaryModel,
		Models:       loaded,
		Actuals:      make(map[string][]models.DailySales),
	}

	salesByBrand := make(map[string][]models.SalesRecord)
	for _, r := range rec.Sales {
		salesByBrand[r.Brand] = append(salesByBrand[r.Brand], r)
	}
	forecastByBrand := make(map[string]map[string][]models.ForecastRecord)
	for model, rows := range rec.Forecasts {
		for _, r := range rows {
			if forecastByBrand[r.Brand] == nil {
				forecastByBrand[r.Brand] = make(map[string][]models.ForecastRecord)
			}
			forecastByBrand[r.Brand][model] = append(forecastByBrand[r.Brand][model], r)
		}
	}

	if len(loaded) > 0 && !contains(loaded, cfg.PrimaryModel) {
		report.Warnings = append(report.Warnings, models.Warning{
			Kind:   models.WarnPartialCoverage,
			Model:  cfg.PrimaryModel,
			Detail: fmt.Sprintf("primary model %s has no forecast table, falling back to %s", cfg.PrimaryModel, loaded[0]),
		})
	}

	brands := unionKeys(salesByBrand, forecastByBrand)
	var actuals []*Actual
	for _, brand := range brands {
		sales := salesByBrand[brand]
		if len(sales) == 0 {
			report.Exclusions = append(report.Exclusions, models.Exclusion{
				Brand:  brand,
				Reason: models.ReasonMissingActuals,
				Detail: "forecast by " + strings.Join(sortedKeys(forecastByBrand[brand]), ", "),
			})
			continue
		}

		a, err := MonthlyActual(brand, sales)
		report.Actuals[brand] = a.Daily
		if err != nil {
			detail := err.Error()
			var gap *DataGapError
			if errors.As(err, &gap) {
				detail = gap.Detail()
			}
			report.Exclusions = append(report.Exclusions, models.Exclusion{
				Brand:  brand,
				Reason: models.ReasonIncompleteReferenceMonth,
				Detail: detail,
			})
			continue
		}
		if !isFinite(a.Total) {
			delete(report.Actuals, brand)
			report.Exclusions = append(report.Exclusions, models.Exclusion{
				Brand:  brand,
				Reason: models.ReasonNonFiniteTotal,
				Detail: fmt.Sprintf("sales in %s sum beyond the float range", a.Month),
			})
			continue
		}
		actuals = append(actuals, a)

		projections, windows, warnings := brandProjections(a, forecastByBrand[brand], loaded, cfg)
		report.Warnings = append(report.Warnings, warnings...)
		if len(projections) == 0 {
			report.Exclusions = append(report.Exclusions, models.Exclusion{
				Brand:  brand,
				Reason: models.ReasonMissingForecast,
				Detail: fmt.Sprintf("no model forecasts %s", a.Month.Next()),
			})
			continue
		}

		g, warnings := mergeBrand(a, projections, windows, loaded, cfg)
		report.Warnings = append(report.Warnings, warnings...)
		if !finiteGrowth(g) {
			report.Exclusions = append(report.Exclusions, models.Exclusion{
				Brand:  brand,
				Reason: models.ReasonNonFiniteTotal,
				Detail: fmt.Sprintf("growth from %s overflows the float range", g.SourceModel),
			})
			continue
		}
		report.Growth = append(report.Growth, g)
	}

	report.TopGrowth = RankByAbsoluteGrowth(report.Growth, cfg.TopN)
	report.TopGrowthPct = RankByGrowthPct(report.Growth, cfg.TopN)
	report.Leaders = CategoryLeaders(actuals, cfg.LeaderboardSize)
	report.Comparison = compareModels(rec.Metrics)
	report.Warnings = append(report.Warnings, missingMetrics(report.Growth, rec.Metrics)...)
	report.Summary = summarize(report.Growth, actuals)

	sort.SliceStable(report.Warnings, func(i, j int) bool {
		a, b := report.Warnings[i], report.Warnings[j]
		if a.Brand != b.Brand {
			return a.Brand < b.Brand
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		return a.Model < b.Model
	})
	return report, nil
}

// brandProjections computes every loaded model's projection for a brand.
// windows holds every computed horizon; projections only those reaching the
// target month with a finite total.
func brandProjections(a *Actual, byModel map[string][]models.ForecastRecord, loaded []string, cfg Config) (projections, windows map[string]*models.ModelProjection, warnings []models.Warning) {
	target := a.Month.Next()
	projections = make(map[string]*models.ModelProjection)
	windows = make(map[string]*models.ModelProjection)
	for _, model := range loaded {
		rows := byModel[model]
		if len(rows) == 0 {
			continue
		}
		p, dups := MonthlyProjection(model, rows, a.LastDate, target, cfg)
		if dups > 0 {
			warnings = append(warnings, models.Warning{
				Brand:  a.Brand,
				Kind:   models.WarnDuplicateForecast,
				Model:  model,
				Detail: fmt.Sprintf("%d duplicated forecast dates, later rows kept", dups),
			})
		}
		if p != nil {
			windows[model] = p
		}
		if p == nil || p.DaysInTarget == 0 {
			detail := fmt.Sprintf("no forecast after %s", a.LastDate.Format("2006-01-02"))
			if p != nil {
				detail = fmt.Sprintf("horizon %s to %s misses %s",
					p.HorizonStart.Format("2006-01-02"), p.HorizonEnd.Format("2006-01-02"), target)
			}
			warnings = append(warnings, models.Warning{
				Brand:  a.Brand,
				Kind:   models.WarnHorizonOutsideMonth,
				Model:  model,
				Detail: detail,
			})
			continue
		}
		if !isFinite(p.Value) {
			warnings = append(warnings, models.Warning{
				Brand:  a.Brand,
				Kind:   models.WarnNonFiniteForecast,
				Model:  model,
				Detail: fmt.Sprintf("predictions for %s sum beyond the float range", target),
			})
			continue
		}
		projections[model] = p
	}
	return projections, windows, warnings
}

// compareModels collects each brand's metrics across models and names the
// model with the lowest RMSE.
func compareModels(metrics map[string][]models.MetricsRecord) []models.ModelComparison {
	byBrand := make(map[string]map[string]models.MetricsRecord)
	for model, rows := range metrics {
		for _, r := range rows {
			if byBrand[r.Brand] == nil {
				byBrand[r.Brand] = make(map[string]models.MetricsRecord)
			}
			byBrand[r.Brand][model] = r
		}
	}

	out := make([]models.ModelComparison, 0, len(byBrand))
	for _, brand := range sortedKeys(byBrand) {
		c := models.ModelComparison{Brand: brand, Metrics: byBrand[brand]}
		for _, model := range sortedKeys(c.Metrics) {
			if c.BestModel == "" || c.Metrics[model].RMSE < c.Metrics[c.BestModel].RMSE {
				c.BestModel = model
			}
		}
		out = append(out, c)
	}
	return out
}

// missingMetrics flags projections from a model whose metrics table was
// loaded but has no row for the brand.
func missingMetrics(growth []models.BrandGrowth, metrics map[string][]models.MetricsRecord) []models.Warning {
	has := make(map[string]map[string]bool)
	for model, rows := range metrics {
		has[model] = make(map[string]bool, len(rows))
		for _, r := range rows {
			has[model][r.Brand] = true
		}
	}

	var warnings []models.Warning
	for _, g := range growth {
		for _, model := range sortedKeys(g.Projections) {
			brands, loaded := has[model]
			if !loaded || brands[g.Brand] {
				continue
			}
			warnings = append(warnings, models.Warning{
				Brand:  g.Brand,
				Kind:   models.WarnMissingMetrics,
				Model:  model,
				Detail: "no accuracy metrics for this model",
			})
		}
	}
	return warnings
}

// summarize computes the headline figures. Revenue totals only count brands
// whose reference month is the latest one, so months are never mixed.
func summarize(growth []models.BrandGrowth, actuals []*Actual) models.Summary {
	s := models.Summary{BrandCount: len(growth)}
	for _, g := range growth {
		if s.ReferenceMonth.Before(g.ReferenceMonth) {
			s.ReferenceMonth = g.ReferenceMonth
		}
		if g.AbsoluteGrowth > 0 {
			s.PositiveGrowthCount++
		}
	}
	if !s.ReferenceMonth.IsZero() {
		s.NextMonth = s.ReferenceMonth.Next()
	}
	for _, g := range growth {
		if g.ReferenceMonth == s.ReferenceMonth {
			s.ThisMonthRevenue += g.LastMonthActual
			s.NextMonthRevenue += g.NextMonthPredicted
		}
	}

	if ranked := RankByAbsoluteGrowth(growth, 1); len(ranked) > 0 {
		s.FastestGrowing = ranked[0].Brand
		s.FastestGrowth = ranked[0].AbsoluteGrowth
	}

	for _, a := range actuals {
		if a.MeanPopularity == nil {
			continue
		}
		score := *a.MeanPopularity
		if s.MostTrending == "" || score > s.MostTrendingScore ||
			(score == s.MostTrendingScore && a.Brand < s.MostTrending) {
			s.MostTrending = a.Brand
			s.MostTrendingScore = score
		}
	}
	return s
}

func unionKeys[A, B any](a map[string]A, b map[string]B) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		seen[k] = struct{}{}
	}
	for k := range b {
		seen[k] = struct{}{}
	}
	return sortedKeys(seen)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
