package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/j-veylop/brand-forecast-tui/internal/forecast"
)

// Settings is the optional YAML file holding the aggregation settings.
// Unset fields keep their defaults; environment variables override it.
type Settings struct {
	Models          []string `yaml:"models,omitempty"`
	PrimaryModel    string   `yaml:"primary_model,omitempty"`
	HorizonDays     int      `yaml:"horizon_days,omitempty"`
	TopN            *int     `yaml:"top_n,omitempty"` // 0 disables the cutoff
	MinCoverageDays int      `yaml:"min_coverage_days,omitempty"`
	LeaderboardSize int      `yaml:"leaderboard_size,omitempty"`
}

// LoadSettings reads the settings file. A missing file yields empty
// settings.
func LoadSettings(path string) (*Settings, error) {
	s := &Settings{}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read settings file '%s': %w", path, err)
	}

	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse settings from YAML: %w", err)
	}
	return s, nil
}

// apply layers the settings over the built-in defaults.
func (s *Settings) apply(cfg *Config) {
	def := forecast.DefaultConfig()

	cfg.Models = defaultModels()
	if len(s.Models) > 0 {
		cfg.Models = append([]string(nil), s.Models...)
	}
	cfg.PrimaryModel = pick(s.PrimaryModel, def.PrimaryModel)
	cfg.HorizonDays = pickInt(s.HorizonDays, def.HorizonDays)
	cfg.TopN = def.TopN
	if s.TopN != nil {
		cfg.TopN = *s.TopN
	}
	cfg.MinCoverageDays = pickInt(s.MinCoverageDays, def.MinCoverageDays)
	cfg.LeaderboardSize = pickInt(s.LeaderboardSize, def.LeaderboardSize)
}

func pick(v, fallback string) string {
	if v != "" {
		return v
	}
	return fallback
}

func pickInt(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}
