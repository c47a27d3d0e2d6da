// Package report runs the aggregation over the latest table snapshot and
// records every run.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/j-veylop/brand-forecast-tui/internal/db"
	"github.com/j-veylop/brand-forecast-tui/internal/forecast"
	"github.com/j-veylop/brand-forecast-tui/internal/logger"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/tables"
)

// ErrNoSnapshot is returned when a re-aggregation is requested before any
// snapshot was loaded.
var ErrNoSnapshot = errors.New("no snapshot loaded yet")

// Loader reads a snapshot of the input tables.
type Loader interface {
	Load(ctx context.Context) (forecast.Inputs, error)
}

// Service owns the aggregation config and the last decoded snapshot.
type Service struct {
	mu       sync.RWMutex
	loader   Loader
	db       *db.DB
	cfg      forecast.Config
	keepRuns int

	records *forecast.Records
	latest  *models.Report
	now     func() time.Time
}

// New creates a report service. database may be nil, in which case runs are
// not recorded and history queries return nothing.
func New(loader Loader, database *db.DB, cfg forecast.Config, keepRuns int) *Service {
	return &Service{
		loader:   loader,
		db:       database,
		cfg:      cfg,
		keepRuns: keepRuns,
		now:      time.Now,
	}
}

// Refresh reads the tables, aggregates them and records the run.
func (s *Service) Refresh(ctx context.Context) (*models.Report, error) {
	in, err := s.loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	rec, err := forecast.Decode(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	report, err := s.aggregateLocked(rec, s.cfg)
	if err != nil {
		return nil, err
	}
	s.records = rec
	s.latest = report
	s.persist(report)
	return report, nil
}

// SetPrimaryModel switches the primary model and re-aggregates the cached
// snapshot without reading the tables again. The re-aggregated report is
// not recorded as a new run.
func (s *Service) SetPrimaryModel(model string) (*models.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg := s.cfg.WithPrimaryModel(model)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid primary model: %w", err)
	}
	s.cfg = cfg

	if s.records == nil {
		return nil, ErrNoSnapshot
	}
	report, err := s.aggregateLocked(s.records, cfg)
	if err != nil {
		return nil, err
	}
	s.latest = report
	return report, nil
}

// NextModel returns the loaded model following the current primary model,
// wrapping around. It returns the current primary when fewer than two
// models are loaded.
func (s *Service) NextModel() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest == nil || len(s.latest.Models) < 2 {
		return s.cfg.PrimaryModel
	}
	loaded := s.latest.Models
	for i, m := range loaded {
		if m == s.cfg.PrimaryModel {
			return loaded[(i+1)%len(loaded)]
		}
	}
	return loaded[0]
}

func (s *Service) aggregateLocked(rec *forecast.Records, cfg forecast.Config) (*models.Report, error) {
	report, err := forecast.AggregateRecords(cfg, rec)
	if err != nil {
		return nil, err
	}
	report.RunID = uuid.NewString()
	report.GeneratedAt = s.now()
	return report, nil
}

// persist records the run. Storage failures never fail a refresh.
func (s *Service) persist(report *models.Report) {
	if s.db == nil {
		return
	}
	if err := s.db.SaveReport(report); err != nil {
		logger.Error("failed to save report run", "run", report.RunID, "error", err)
		return
	}
	if removed, err := s.db.PruneRuns(s.keepRuns); err != nil {
		logger.Error("failed to prune report runs", "error", err)
	} else if removed > 0 {
		logger.Debug("pruned report runs", "removed", removed)
	}
}

// Config returns the aggregation config in use.
func (s *Service) Config() forecast.Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg
}

// Latest returns the most recent report, or nil before the first refresh.
func (s *Service) Latest() *models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// Export writes the latest report's CSV files into dir.
func (s *Service) Export(dir string) ([]string, error) {
	latest := s.Latest()
	if latest == nil {
		return nil, ErrNoSnapshot
	}
	return tables.ExportReport(dir, latest)
}

// History returns the recorded runs and their statistics for a time range.
func (s *Service) History(timeRange models.TimeRange, limit int) ([]models.RunRecord, *models.RunStats, error) {
	if s.db == nil {
		return nil, &models.RunStats{TimeRange: timeRange}, nil
	}
	runs, err := s.db.GetRuns(timeRange, limit)
	if err != nil {
		return nil, nil, err
	}
	stats, err := s.db.GetRunStats(timeRange)
	if err != nil {
		return nil, nil, err
	}
	return runs, stats, nil
}

// BrandHistory returns a brand's growth over the newest limit runs.
func (s *Service) BrandHistory(brand string, limit int) ([]models.BrandHistoryPoint, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.GetBrandHistory(brand, limit)
}

// RunIssues returns the exclusions and warnings recorded for a run.
func (s *Service) RunIssues(runID string) ([]models.Exclusion, []models.Warning, error) {
	if s.db == nil {
		return nil, nil, nil
	}
	return s.db.GetRunIssues(runID)
}
