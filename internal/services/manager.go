// Package services provides service orchestration for the TUI.
package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/brand-forecast-tui/internal/config"
	"github.com/j-veylop/brand-forecast-tui/internal/db"
	"github.com/j-veylop/brand-forecast-tui/internal/logger"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/services/notify"
	"github.com/j-veylop/brand-forecast-tui/internal/services/report"
	"github.com/j-veylop/brand-forecast-tui/internal/services/watcher"
	"github.com/j-veylop/brand-forecast-tui/internal/tables"
)

// Refresh triggers
const (
	TriggerStartup = "startup"
	TriggerWatch   = "watch"
	TriggerManual  = "manual"
	TriggerModel   = "model"
)

const notifyTimeout = 30 * time.Second

type (
	// RefreshStartedEvent is emitted when a refresh begins.
	RefreshStartedEvent struct {
		Trigger string
	}

	// ReportUpdatedEvent is emitted when a new report is available.
	ReportUpdatedEvent struct {
		Report  *models.Report
		Trigger string
	}

	// ErrorEvent is emitted when an error occurs in any service.
	ErrorEvent struct {
		Service string
		Error   error
	}
)

// ServiceEvent is the interface implemented by all service events.
type ServiceEvent interface {
	isServiceEvent()
}

func (RefreshStartedEvent) isServiceEvent() {}
func (ReportUpdatedEvent) isServiceEvent()  {}
func (ErrorEvent) isServiceEvent()          {}

// Manager orchestrates services and event routing.
type Manager struct {
	mu          sync.RWMutex
	cfg         *config.Config
	database    *db.DB
	report      *report.Service
	watcher     *watcher.Service
	notifier    notify.Notifier
	stopChan    chan struct{}
	subscribers []chan<- ServiceEvent

	refreshMu    sync.Mutex
	notified     bool
	lastFastest  string
	lastRefMonth models.YearMonth
}

// NewManager creates a new service manager.
func NewManager(cfg *config.Config) (*Manager, error) {
	m := &Manager{
		cfg:      cfg,
		stopChan: make(chan struct{}),
		notifier: buildNotifier(cfg),
	}

	var err error
	m.database, err = db.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	m.seedNotifyState()

	layout := cfg.Layout()
	loader := tables.NewLoader(layout, cfg.ReadRetries, cfg.ReadRetryInterval)
	m.report = report.New(loader, m.database, cfg.Forecast(), cfg.HistoryKeepRuns)

	m.watcher, err = watcher.New(layout.Files(), cfg.ReloadDebounce)
	if err != nil {
		_ = m.database.Close()
		return nil, err
	}

	go m.routeEvents()

	return m, nil
}

// seedNotifyState restores the last headline from the newest recorded run
// so a restart does not repeat an unchanged notification.
func (m *Manager) seedNotifyState() {
	run, err := m.database.GetLatestRun()
	if err != nil {
		logger.Warn("failed to read latest run", "error", err)
		return
	}
	if run == nil {
		return
	}
	m.notified = true
	m.lastFastest = run.FastestGrowing
	m.lastRefMonth = run.ReferenceMonth
}

func buildNotifier(cfg *config.Config) notify.Notifier {
	var multi notify.Multi
	if cfg.DesktopNotify {
		multi = append(multi, notify.Desktop{})
	}
	if cfg.TelegramEnabled() {
		multi = append(multi, notify.NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if len(multi) == 0 {
		return nil
	}
	return multi
}

// routeEvents turns watcher events into refreshes.
func (m *Manager) routeEvents() {
	for {
		select {
		case event, ok := <-m.watcher.Events():
			if !ok {
				return
			}
			m.handleWatcherEvent(event)

		case <-m.stopChan:
			return
		}
	}
}

func (m *Manager) handleWatcherEvent(event watcher.Event) {
	switch event.Type {
	case watcher.EventTablesChanged:
		logger.Info("input tables changed, refreshing", "paths", event.Paths)
		_, _ = m.Refresh(context.Background(), TriggerWatch)

	case watcher.EventError:
		m.broadcast(ErrorEvent{
			Service: "watcher",
			Error:   event.Error,
		})
	}
}

// Refresh reloads the tables and aggregates them. Concurrent refreshes are
// serialized.
func (m *Manager) Refresh(ctx context.Context, trigger string) (*models.Report, error) {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	m.broadcast(RefreshStartedEvent{Trigger: trigger})

	r, err := m.report.Refresh(ctx)
	if err != nil {
		logger.Error("report refresh failed", "trigger", trigger, "error", err)
		m.broadcast(ErrorEvent{Service: "report", Error: err})
		m.notifyFailure(ctx, err)
		return nil, err
	}

	logger.Info("report refreshed",
		"trigger", trigger,
		"run", r.RunID,
		"brands", len(r.Growth),
		"excluded", len(r.Exclusions),
		"warnings", len(r.Warnings),
	)
	m.broadcast(ReportUpdatedEvent{Report: r, Trigger: trigger})
	m.notifySuccess(ctx, r)
	return r, nil
}

// SetPrimaryModel re-aggregates the current snapshot with another primary
// model.
func (m *Manager) SetPrimaryModel(model string) (*models.Report, error) {
	r, err := m.report.SetPrimaryModel(model)
	if err != nil {
		m.broadcast(ErrorEvent{Service: "report", Error: err})
		return nil, err
	}
	m.broadcast(ReportUpdatedEvent{Report: r, Trigger: TriggerModel})
	return r, nil
}

// CyclePrimaryModel switches to the next loaded model.
func (m *Manager) CyclePrimaryModel() (*models.Report, error) {
	return m.SetPrimaryModel(m.report.NextModel())
}

// notifySuccess notifies only when the headline changed: a new reference
// month or a new fastest growing brand.
func (m *Manager) notifySuccess(ctx context.Context, r *models.Report) {
	changed := !m.notified ||
		r.Summary.FastestGrowing != m.lastFastest ||
		r.Summary.ReferenceMonth != m.lastRefMonth
	m.notified = true
	m.lastFastest = r.Summary.FastestGrowing
	m.lastRefMonth = r.Summary.ReferenceMonth
	if !changed {
		return
	}

	title, body := notify.FormatSummary(r)
	m.send(ctx, title, body)
}

func (m *Manager) notifyFailure(ctx context.Context, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	title, body := notify.FormatFailure(err)
	m.send(ctx, title, body)
}

func (m *Manager) send(ctx context.Context, title, body string) {
	if m.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
	defer cancel()
	if err := m.notifier.Notify(ctx, title, body); err != nil {
		logger.Warn("failed to send notification", "error", err)
	}
}

// Export writes the latest report as CSV files into the export directory
// and, when a notifier supports it, delivers the growth summary.
func (m *Manager) Export(ctx context.Context) ([]string, error) {
	files, err := m.report.Export(m.cfg.ExportDir)
	if err != nil {
		return files, fmt.Errorf("failed to export report: %w", err)
	}
	logger.Info("report exported", "dir", m.cfg.ExportDir, "files", len(files))

	if sender, ok := m.notifier.(notify.DocumentSender); ok {
		ctx, cancel := context.WithTimeout(ctx, notifyTimeout)
		defer cancel()
		path := filepath.Join(m.cfg.ExportDir, tables.GrowthSummaryFile)
		if err := sender.SendDocument(ctx, path, "Forecast Report"); err != nil {
			logger.Warn("failed to send exported report", "error", err)
		}
	}
	return files, nil
}

// broadcast sends an event to all subscribers.
func (m *Manager) broadcast(event ServiceEvent) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscribers {
		select {
		case sub <- event:
		default:
			// Subscriber channel full, skip
		}
	}
}

// Subscribe creates a channel for receiving service events.
// Returns a tea.Cmd that can be used in Bubble Tea's Init or Update.
func (m *Manager) Subscribe() (chan ServiceEvent, tea.Cmd) {
	ch := make(chan ServiceEvent, 50)

	m.mu.Lock()
	m.subscribers = append(m.subscribers, ch)
	m.mu.Unlock()

	return ch, waitForEvent(ch)
}

// waitForEvent returns a tea.Cmd that waits for the next event.
func waitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// WaitForEvent returns a tea.Cmd for the next event on a channel.
func WaitForEvent(ch <-chan ServiceEvent) tea.Cmd {
	return waitForEvent(ch)
}

// Unsubscribe removes a subscriber channel.
func (m *Manager) Unsubscribe(ch chan ServiceEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
}

// Latest returns the most recent report, or nil before the first refresh.
func (m *Manager) Latest() *models.Report {
	return m.report.Latest()
}

// PrimaryModel returns the primary model in use.
func (m *Manager) PrimaryModel() string {
	return m.report.Config().PrimaryModel
}

// History returns recorded runs and their statistics for a time range.
func (m *Manager) History(timeRange models.TimeRange, limit int) ([]models.RunRecord, *models.RunStats, error) {
	return m.report.History(timeRange, limit)
}

// BrandHistory returns a brand's growth over the newest limit runs.
func (m *Manager) BrandHistory(brand string, limit int) ([]models.BrandHistoryPoint, error) {
	return m.report.BrandHistory(brand, limit)
}

// Config returns the application configuration.
func (m *Manager) Config() *config.Config {
	return m.cfg
}

// Close closes the manager and all its services.
func (m *Manager) Close() error {
	close(m.stopChan)

	m.mu.Lock()
	for _, sub := range m.subscribers {
		close(sub)
	}
	m.subscribers = nil
	m.mu.Unlock()

	var errs []error

	if err := m.watcher.Close(); err != nil {
		errs = append(errs, err)
	}

	// Wait for an in-flight refresh before closing the database
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	if m.database != nil {
		if err := m.database.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
