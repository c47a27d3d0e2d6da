// Package db persists the history of report runs
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	// Import modernc.org/sqlite as a blank import to register the driver
	_ "modernc.org/sqlite"
)

// DB wraps the SQL database connection with application-specific methods.
type DB struct {
	*sql.DB
	path string
}

// New creates a new database connection and initializes the schema.
func New(path string) (*DB, error) {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.PingContext(context.Background()); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.configure(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	if err := db.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	if err := db.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}

// configure sets up database pragmas for optimal performance.
func (db *DB) configure() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA cache_size=-16000", // 16MB cache
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(context.Background(), pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}

	return nil
}

func (db *DB) createSchema() error {
	if err := db.createReportRunsTable(); err != nil {
		return err
	}
	if err := db.createBrandGrowthTable(); err != nil {
		return err
	}
	return db.createReportIssuesTable()
}

func (db *DB) createReportRunsTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS report_runs (
		id TEXT PRIMARY KEY,
		generated_at DATETIME NOT NULL,
		primary_model TEXT NOT NULL,
		models TEXT,
		reference_month TEXT,
		next_month TEXT,
		this_month_revenue REAL DEFAULT 0,
		next_month_revenue REAL DEFAULT 0,
		fastest_growing TEXT,
		fastest_growth REAL DEFAULT 0,
		most_trending TEXT,
		brand_count INTEGER DEFAULT 0,
		excluded_count INTEGER DEFAULT 0,
		warning_count INTEGER DEFAULT 0,
		year INTEGER GENERATED ALWAYS AS (CAST(strftime('%Y', generated_at) AS INTEGER)) STORED,
		month INTEGER GENERATED ALWAYS AS (CAST(strftime('%m', generated_at) AS INTEGER)) STORED
	);
	CREATE INDEX IF NOT EXISTS idx_runs_generated ON report_runs(generated_at);
	CREATE INDEX IF NOT EXISTS idx_runs_year_month ON report_runs(year, month);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createBrandGrowthTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS brand_growth (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		brand TEXT NOT NULL,
		category TEXT,
		reference_month TEXT,
		last_month_actual REAL DEFAULT 0,
		next_month_predicted REAL DEFAULT 0,
		absolute_growth REAL DEFAULT 0,
		growth_pct REAL,
		trend TEXT NOT NULL,
		confidence_flag TEXT,
		coverage_flag TEXT,
		coverage TEXT,
		source_model TEXT,
		horizon_mismatch INTEGER DEFAULT 0,
		UNIQUE(run_id, brand)
	);
	CREATE INDEX IF NOT EXISTS idx_growth_brand ON brand_growth(brand);
	CREATE INDEX IF NOT EXISTS idx_growth_run ON brand_growth(run_id);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

func (db *DB) createReportIssuesTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS report_issues (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		issue_type TEXT NOT NULL,
		brand TEXT,
		reason TEXT NOT NULL,
		model TEXT,
		detail TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_issues_run ON report_issues(run_id);
	`
	_, err := db.ExecContext(context.Background(), query)
	return err
}

// Close closes the database connection gracefully.
func (db *DB) Close() error {
	// Checkpoint WAL before closing
	_, _ = db.ExecContext(context.Background(), "PRAGMA wal_checkpoint(TRUNCATE)")
	return db.DB.Close()
}
