package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/config"
	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/tables"
)

type recordingNotifier struct {
	mu     sync.Mutex
	titles []string
	docs   []string
}

func (r *recordingNotifier) Notify(_ context.Context, title, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.titles = append(r.titles, title)
	return nil
}

func (r *recordingNotifier) SendDocument(_ context.Context, path, _ string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.docs = append(r.docs, path)
	return nil
}

func (r *recordingNotifier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.titles)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	tmpDir := t.TempDir()
	return &config.Config{
		DataDir:           tmpDir,
		SalesPath:         filepath.Join(tmpDir, "processed", "processed_sales.csv"),
		ForecastDir:       filepath.Join(tmpDir, "forecast"),
		Models:            []string{models.ModelProphet},
		DatabasePath:      filepath.Join(tmpDir, "test.db"),
		ExportDir:         filepath.Join(tmpDir, "reports"),
		PrimaryModel:      models.ModelProphet,
		HorizonDays:       30,
		TopN:              10,
		MinCoverageDays:   15,
		LeaderboardSize:   3,
		ReloadDebounce:    time.Hour, // keep the watcher out of these tests
		ReadRetries:       0,
		ReadRetryInterval: time.Millisecond,
		LogLevel:          "info",
	}
}

// writeTables writes a full April for the brands and a flat May forecast.
func writeTables(t *testing.T, cfg *config.Config, sales map[string]float64, forecast map[string]float64) {
	t.Helper()
	april := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	var s strings.Builder
	s.WriteString("date,brand,category,total_sales\n")
	var f strings.Builder
	f.WriteString("date,brand,predicted_sales\n")
	for brand, perDay := range sales {
		for i := 0; i < 30; i++ {
			fmt.Fprintf(&s, "%s,%s,Snacks,%g\n", april.AddDate(0, 0, i).Format("2006-01-02"), brand, perDay)
		}
	}
	for brand, perDay := range forecast {
		for i := 0; i < 30; i++ {
			fmt.Fprintf(&f, "%s,%s,%g\n", april.AddDate(0, 1, i).Format("2006-01-02"), brand, perDay)
		}
	}

	layout := cfg.Layout()
	if err := os.MkdirAll(filepath.Dir(layout.SalesPath), 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(layout.ForecastDir, 0o750); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(layout.SalesPath, []byte(s.String()), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(layout.ForecastPath(models.ModelProphet), []byte(f.String()), 0o600); err != nil {
		t.Fatal(err)
	}
}

func newTestManager(t *testing.T) (*Manager, *config.Config, *recordingNotifier) {
	t.Helper()
	cfg := testConfig(t)
	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { _ = mgr.Close() })

	rec := &recordingNotifier{}
	mgr.notifier = rec
	return mgr, cfg, rec
}

func TestNewManager(t *testing.T) {
	mgr, cfg, _ := newTestManager(t)

	if mgr.database == nil {
		t.Error("Database should be initialized")
	}
	if mgr.Config() != cfg {
		t.Error("Config should be returned as given")
	}
	if mgr.Latest() != nil {
		t.Error("Expected no report before first refresh")
	}
	if mgr.PrimaryModel() != models.ModelProphet {
		t.Errorf("PrimaryModel = %s, want prophet", mgr.PrimaryModel())
	}
}

func TestBuildNotifier(t *testing.T) {
	cfg := testConfig(t)
	if n := buildNotifier(cfg); n != nil {
		t.Errorf("expected no notifier, got %T", n)
	}

	cfg.DesktopNotify = true
	cfg.TelegramBotToken = "token"
	cfg.TelegramChatID = "42"
	if n := buildNotifier(cfg); n == nil {
		t.Error("expected a notifier")
	}
}

func TestManager_RefreshNotifiesOnChange(t *testing.T) {
	mgr, cfg, rec := newTestManager(t)
	ch, _ := mgr.Subscribe()

	writeTables(t, cfg, map[string]float64{"Acme": 100}, map[string]float64{"Acme": 110})

	r, err := mgr.Refresh(context.Background(), TriggerManual)
	if err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if r.Summary.FastestGrowing != "Acme" {
		t.Errorf("FastestGrowing = %s, want Acme", r.Summary.FastestGrowing)
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", rec.count())
	}

	started := <-ch
	if ev, ok := started.(RefreshStartedEvent); !ok || ev.Trigger != TriggerManual {
		t.Errorf("expected RefreshStartedEvent, got %#v", started)
	}
	updated := <-ch
	if ev, ok := updated.(ReportUpdatedEvent); !ok || ev.Report != r {
		t.Errorf("expected ReportUpdatedEvent, got %#v", updated)
	}

	// Same headline: no new notification
	if _, err := mgr.Refresh(context.Background(), TriggerManual); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rec.count() != 1 {
		t.Errorf("expected no notification for unchanged headline, got %d", rec.count())
	}

	// New leader
	writeTables(t, cfg,
		map[string]float64{"Acme": 100, "Nova": 50},
		map[string]float64{"Acme": 110, "Nova": 200})
	if _, err := mgr.Refresh(context.Background(), TriggerManual); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rec.count() != 2 {
		t.Errorf("expected notification for new leader, got %d", rec.count())
	}
}

func TestManager_RestartKeepsNotifyState(t *testing.T) {
	cfg := testConfig(t)
	writeTables(t, cfg, map[string]float64{"Acme": 100}, map[string]float64{"Acme": 110})

	mgr, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	rec := &recordingNotifier{}
	mgr.notifier = rec

	if _, err := mgr.Refresh(context.Background(), TriggerManual); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if rec.count() != 1 {
		t.Fatalf("expected 1 notification, got %d", rec.count())
	}
	if err := mgr.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	restarted, err := NewManager(cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	defer func() { _ = restarted.Close() }()
	again := &recordingNotifier{}
	restarted.notifier = again

	if _, err := restarted.Refresh(context.Background(), TriggerStartup); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if again.count() != 0 {
		t.Errorf("unchanged headline after restart should not notify, got %d", again.count())
	}
}

func TestManager_RefreshFailureAlwaysNotifies(t *testing.T) {
	mgr, _, rec := newTestManager(t)
	ch, _ := mgr.Subscribe()

	for i := 0; i < 2; i++ {
		if _, err := mgr.Refresh(context.Background(), TriggerManual); err == nil {
			t.Fatal("expected error without a sales table")
		}
	}
	if rec.count() != 2 {
		t.Errorf("expected 2 failure notifications, got %d", rec.count())
	}

	<-ch // started
	ev, ok := (<-ch).(ErrorEvent)
	if !ok || ev.Service != "report" || ev.Error == nil {
		t.Errorf("expected report ErrorEvent, got %#v", ev)
	}
}

func TestManager_SetPrimaryModel(t *testing.T) {
	mgr, cfg, _ := newTestManager(t)

	if _, err := mgr.SetPrimaryModel(models.ModelLSTM); err == nil {
		t.Error("expected error before first refresh")
	}

	writeTables(t, cfg, map[string]float64{"Acme": 100}, map[string]float64{"Acme": 110})
	if _, err := mgr.Refresh(context.Background(), TriggerStartup); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	// Only prophet is loaded, so it keeps driving the figures
	r, err := mgr.CyclePrimaryModel()
	if err != nil {
		t.Fatalf("CyclePrimaryModel failed: %v", err)
	}
	if r.Growth[0].SourceModel != models.ModelProphet {
		t.Errorf("SourceModel = %s, want prophet", r.Growth[0].SourceModel)
	}
}

func TestManager_ExportAndHistory(t *testing.T) {
	mgr, cfg, rec := newTestManager(t)

	if _, err := mgr.Export(context.Background()); err == nil {
		t.Error("expected export error before first refresh")
	}

	writeTables(t, cfg, map[string]float64{"Acme": 100}, map[string]float64{"Acme": 110})
	if _, err := mgr.Refresh(context.Background(), TriggerManual); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	files, err := mgr.Export(context.Background())
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if len(files) == 0 {
		t.Error("expected exported files")
	}
	if len(rec.docs) != 1 || rec.docs[0] != filepath.Join(cfg.ExportDir, tables.GrowthSummaryFile) {
		t.Errorf("expected growth summary to be sent, got %v", rec.docs)
	}

	runs, stats, err := mgr.History(models.TimeRangeAllTime, 10)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(runs) != 1 || !stats.HasData() {
		t.Errorf("expected one recorded run, got %d", len(runs))
	}

	points, err := mgr.BrandHistory("Acme", 10)
	if err != nil {
		t.Fatalf("BrandHistory failed: %v", err)
	}
	if len(points) != 1 || points[0].AbsoluteGrowth != 300 {
		t.Errorf("unexpected brand history %+v", points)
	}
}

func TestManager_Subscription(t *testing.T) {
	mgr, _, _ := newTestManager(t)

	ch, cmd := mgr.Subscribe()
	if ch == nil {
		t.Error("Subscribe returned nil channel")
	}
	if cmd == nil {
		t.Error("Subscribe returned nil command")
	}

	// Unsubscribe
	mgr.Unsubscribe(ch)

	// Check if channel is closed
	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Channel should be closed")
		}
	default:
		t.Error("Unsubscribe should close the channel")
	}
}

func TestWaitForEvent(t *testing.T) {
	ch := make(chan ServiceEvent, 1)
	ch <- ErrorEvent{Service: "watcher"}

	msg := WaitForEvent(ch)()
	if ev, ok := msg.(ErrorEvent); !ok || ev.Service != "watcher" {
		t.Errorf("unexpected message %#v", msg)
	}
}
