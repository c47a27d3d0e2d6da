package tables

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/j-veylop/brand-forecast-tui/internal/forecast"
	"github.com/j-veylop/brand-forecast-tui/internal/logger"
)

// Upstream file name suffixes.
const (
	forecastSuffix = "_forecast_results.csv"
	metricsSuffix  = "_metrics.csv"
)

// Layout locates the tables of one snapshot on disk.
type Layout struct {
	SalesPath   string
	ForecastDir string
	Models      []string
}

// ForecastPath returns the forecast table path of a model.
func (l Layout) ForecastPath(model string) string {
	return filepath.Join(l.ForecastDir, model+forecastSuffix)
}

// MetricsPath returns the metrics table path of a model.
func (l Layout) MetricsPath(model string) string {
	return filepath.Join(l.ForecastDir, model+metricsSuffix)
}

// Files returns every table path of the layout.
func (l Layout) Files() []string {
	files := []string{l.SalesPath}
	for _, m := range l.Models {
		files = append(files, l.ForecastPath(m), l.MetricsPath(m))
	}
	return files
}

// Loader reads a consistent snapshot of the tables, retrying reads that fail
// while an upstream stage is rewriting a file.
type Loader struct {
	layout   Layout
	retries  uint64
	interval time.Duration
}

// NewLoader creates a loader. retries bounds the extra attempts per table
// and interval is the first backoff delay.
func NewLoader(layout Layout, retries int, interval time.Duration) *Loader {
	if retries < 0 {
		retries = 0
	}
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &Loader{layout: layout, retries: uint64(retries), interval: interval}
}

// Layout returns the loader's table layout.
func (l *Loader) Layout() Layout {
	return l.layout
}

// errOptionalMissing marks an optional table that does not exist.
var errOptionalMissing = errors.New("optional table missing")

// Load reads the sales table and every model's forecast and metrics tables.
// The sales table is required. A missing forecast or metrics table is
// skipped: that model simply did not run yet.
func (l *Loader) Load(ctx context.Context) (forecast.Inputs, error) {
	var in forecast.Inputs

	sales, err := l.read(ctx, l.layout.SalesPath, "", true)
	if err != nil {
		return in, fmt.Errorf("failed to read sales table: %w", err)
	}
	in.Sales = sales

	for _, model := range l.layout.Models {
		t, err := l.read(ctx, l.layout.ForecastPath(model), model, false)
		switch {
		case errors.Is(err, errOptionalMissing):
			logger.Debug("forecast table not found", "model", model)
		case err != nil:
			return in, fmt.Errorf("failed to read %s forecast: %w", model, err)
		default:
			in.Forecasts = append(in.Forecasts, t)
		}

		t, err = l.read(ctx, l.layout.MetricsPath(model), model, false)
		switch {
		case errors.Is(err, errOptionalMissing):
			logger.Debug("metrics table not found", "model", model)
		case err != nil:
			return in, fmt.Errorf("failed to read %s metrics: %w", model, err)
		default:
			in.Metrics = append(in.Metrics, t)
		}
	}
	return in, nil
}

func (l *Loader) read(ctx context.Context, path, model string, required bool) (forecast.Table, error) {
	var table forecast.Table
	op := func() error {
		t, err := ReadFile(path, model)
		if err == nil {
			table = t
			return nil
		}
		if errors.Is(err, fs.ErrNotExist) && !required {
			return backoff.Permanent(errOptionalMissing)
		}
		if !isTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = l.interval
	eb.MaxInterval = 16 * l.interval
	eb.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(eb, l.retries), ctx)

	err := backoff.RetryNotify(op, b, func(err error, wait time.Duration) {
		logger.Warn("table read failed, retrying", "path", path, "error", err, "wait", wait)
	})
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return table, &forecast.SchemaError{Table: filepath.Base(path), Reason: pe.Error()}
		}
		return table, err
	}
	return table, nil
}

// isTransient reports whether a read failure looks like a file caught
// mid-rewrite: absent, empty, truncated, or with a short last row.
func isTransient(err error) bool {
	var pe *csv.ParseError
	switch {
	case errors.Is(err, fs.ErrNotExist),
		errors.Is(err, ErrEmptyTable),
		errors.Is(err, io.ErrUnexpectedEOF),
		errors.As(err, &pe):
		return true
	default:
		return false
	}
}
