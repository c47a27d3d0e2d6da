// Package forecast turns historical sales and per-model forecast tables into
// a ranked brand growth report.
//
// Aggregation is a pure function over an in-memory snapshot of the tables. It
// performs no I/O and keeps no state between calls; retrying reads of tables
// that are being rewritten is the caller's job.
package forecast

import (
	"errors"
	"fmt"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// Default configuration values.
const (
	DefaultHorizonDays     = 30
	DefaultTopN            = 10
	DefaultPrimaryModel    = models.ModelProphet
	DefaultMinCoverageDays = 15
	DefaultLeaderboardSize = 3
)

// Config controls a single aggregation.
type Config struct {
	// HorizonDays is the number of calendar days of each model's horizon considered.
	HorizonDays int
	// TopN is the cutoff of the ranking views. Zero or negative disables it.
	TopN int
	// PrimaryModel drives the growth figures when several models are loaded.
	PrimaryModel string
	// MinCoverageDays is the minimum number of horizon days inside the target
	// month for a projection not to be flagged low-confidence.
	MinCoverageDays int
	// LeaderboardSize is the number of brands kept per category.
	LeaderboardSize int
}

// DefaultConfig returns the default aggregation settings.
func DefaultConfig() Config {
	return Config{
		HorizonDays:     DefaultHorizonDays,
		TopN:            DefaultTopN,
		PrimaryModel:    DefaultPrimaryModel,
		MinCoverageDays: DefaultMinCoverageDays,
		LeaderboardSize: DefaultLeaderboardSize,
	}
}

// Validate checks the configuration for values the aggregation cannot use.
func (c Config) Validate() error {
	var errs []error
	if c.HorizonDays <= 0 {
		errs = append(errs, fmt.Errorf("horizon days must be positive, got %d", c.HorizonDays))
	}
	if c.PrimaryModel == "" {
		errs = append(errs, errors.New("primary model is required"))
	}
	if c.MinCoverageDays < 1 || (c.HorizonDays > 0 && c.MinCoverageDays > c.HorizonDays) {
		errs = append(errs, fmt.Errorf("min coverage days must be within [1, %d], got %d", c.HorizonDays, c.MinCoverageDays))
	}
	if c.LeaderboardSize <= 0 {
		errs = append(errs, fmt.Errorf("leaderboard size must be positive, got %d", c.LeaderboardSize))
	}
	return errors.Join(errs...)
}

// WithPrimaryModel returns a copy of c using the given primary model.
func (c Config) WithPrimaryModel(model string) Config {
	c.PrimaryModel = model
	return c
}
