// Package main is the entry point for the Brand Forecast TUI application.
// It initializes configuration, services, and runs the Bubble Tea program,
// or builds a single report headlessly with the report subcommand.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/brand-forecast-tui/internal/app"
	"github.com/j-veylop/brand-forecast-tui/internal/config"
	"github.com/j-veylop/brand-forecast-tui/internal/forecast"
	"github.com/j-veylop/brand-forecast-tui/internal/logger"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/services"
	"github.com/j-veylop/brand-forecast-tui/internal/tables"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/tabs/brands"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/tabs/dashboard"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/tabs/history"
	"github.com/j-veylop/brand-forecast-tui/internal/ui/tabs/info"
	"github.com/j-veylop/brand-forecast-tui/internal/version"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "-v", "--version":
			fmt.Println(version.Info())
			os.Exit(0)
		case "-h", "--help":
			printUsage()
			os.Exit(0)
		case "report":
			os.Exit(runReport(os.Args[2:], os.Stdout, os.Stderr))
		}
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run starts the dashboard.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logFile, err := logger.InitFile(logPath(cfg), cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logFile.Close()

	svcManager, err := services.NewManager(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	defer func() {
		if closeErr := svcManager.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: error closing services: %v\n", closeErr)
		}
	}()

	model := app.NewModel(svcManager)

	state := model.GetState()
	cmds := model.GetCommands()
	tabs := []app.Tab{
		dashboard.New(state),
		brands.New(state, cmds),
		history.New(state, cmds),
		info.New(state, cfg),
	}
	model.SetTabs(tabs)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	go func() {
		<-sigChan
		p.Send(tea.Quit())
	}()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

// logPath returns the configured log file, or one next to the database.
func logPath(cfg *config.Config) string {
	if cfg.LogPath != "" {
		return cfg.LogPath
	}
	return filepath.Join(filepath.Dir(cfg.DatabasePath), "bft.log")
}

// runReport loads the tables once, prints the rankings and optionally
// exports them. It returns the process exit code.
func runReport(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.SetOutput(stderr)
	primary := fs.String("primary", "", "primary model (default from configuration)")
	top := fs.Int("top", 0, "number of ranked brands, 0 for all (default from configuration)")
	out := fs.String("out", "", "directory to export the report CSV files into")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	topSet := false
	fs.Visit(func(f *flag.Flag) { topSet = topSet || f.Name == "top" })
	if *top < 0 {
		fmt.Fprintf(stderr, "Error: --top must be zero or positive, got %d\n", *top)
		return 2
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "Error: failed to load configuration: %v\n", err)
		return 1
	}
	logger.Init(stderr, cfg.LogLevel)

	if *primary != "" {
		cfg.PrimaryModel = *primary
	}
	if topSet {
		cfg.TopN = *top
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r, err := buildReport(ctx, cfg)
	if err != nil {
		if forecast.IsSchemaError(err) {
			fmt.Fprintf(stderr, "Schema error: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return 1
	}

	if err := printReport(stdout, r); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	if *out != "" {
		files, err := tables.ExportReport(*out, r)
		if err != nil {
			fmt.Fprintf(stderr, "Error: failed to export report: %v\n", err)
			return 1
		}
		for _, f := range files {
			fmt.Fprintf(stderr, "wrote %s\n", f)
		}
	}
	return 0
}

func buildReport(ctx context.Context, cfg *config.Config) (*models.Report, error) {
	layout := cfg.Layout()
	loader := tables.NewLoader(layout, cfg.ReadRetries, cfg.ReadRetryInterval)
	in, err := loader.Load(ctx)
	if err != nil {
		return nil, err
	}
	return forecast.Aggregate(cfg.Forecast(), in)
}

// printReport writes the headline and both ranking tables.
func printReport(w io.Writer, r *models.Report) error {
	s := r.Summary
	fmt.Fprintf(w, "Reference month: %s  primary model: %s  brands: %d  excluded: %d  warnings: %d\n",
		s.ReferenceMonth, r.PrimaryModel, len(r.Growth), len(r.Exclusions), len(r.Warnings))
	if s.FastestGrowing != "" {
		fmt.Fprintf(w, "Fastest growing: %s (%s)\n", s.FastestGrowing, tables.Money(s.FastestGrowth))
	}
	fmt.Fprintln(w)
	return tables.WriteRankings(w, r)
}

// printUsage prints the command-line usage information.
func printUsage() {
	fmt.Println(`Brand Forecast TUI - next-month brand growth from sales forecasts

Usage:
  bft [flags]
  bft report [--primary model] [--top n] [--out dir]

Flags:
  -h, --help      Show this help message
  -v, --version   Show version information

Report flags:
  --primary       Primary model used for growth (default: PRIMARY_MODEL)
  --top           Number of ranked brands, 0 for all (default: TOP_N)
  --out           Export the report CSV files into this directory

Keyboard Shortcuts:
  1-4             Switch between tabs (Overview, Brands, History, Info)
  Tab/Shift+Tab   Navigate between tabs
  j/k, Up/Down    Navigate lists
  /               Filter brands
  s               Toggle ranking by absolute growth or growth %
  m               Switch primary model
  e               Export report CSV files
  r               Reload tables
  t               Toggle history time range
  ?               Toggle help
  q, Ctrl+C       Quit

Environment Variables:
  DATA_DIR                Base data directory (default: data)
  SALES_PATH              Historical sales table
  FORECAST_DIR            Directory with <model>_forecast_results.csv and <model>_metrics.csv
  FORECAST_MODELS         Comma separated model names (default: prophet,lstm)
  PRIMARY_MODEL           Model used for growth (default: prophet)
  HORIZON_DAYS            Forecast horizon in days (default: 30)
  TOP_N                   Ranked brands, 0 for all (default: 10)
  MIN_COVERAGE_DAYS       Days a forecast must cover in the target month
  LEADERBOARD_SIZE        Brands per category leaderboard (default: 3)
  DATABASE_PATH           SQLite database path
  EXPORT_DIR              Export directory (default: data/reports)
  SETTINGS_PATH           YAML settings file
  RELOAD_DEBOUNCE         Delay before reloading changed tables (default: 500ms)
  DESKTOP_NOTIFY          Desktop notifications (default: true)
  TELEGRAM_BOT_TOKEN      Telegram bot token
  TELEGRAM_CHAT_ID        Telegram chat ID
  HISTORY_KEEP_RUNS       Report runs kept in the database (default: 500)
  LOG_LEVEL               debug, info, warn or error (default: info)
  LOG_PATH                Log file (default: next to the database)

Configuration:
  The application looks for .env files in the following locations:
  - Current directory
  - ~/.config/brand-forecast-tui/.env`)
}
