package app

import (
	"errors"
	"testing"
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

func testReport(runID string, brands ...string) *models.Report {
	r := &models.Report{RunID: runID, PrimaryModel: models.ModelProphet}
	for _, b := range brands {
		r.Growth = append(r.Growth, models.BrandGrowth{Brand: b})
	}
	return r
}

func TestNewState(t *testing.T) {
	s := NewState()
	if s == nil {
		t.Fatal("NewState returned nil")
	}
	if s.GetReport() != nil {
		t.Error("Report should be nil")
	}
	if s.Loading.Initial != true {
		t.Error("Initial loading should be true")
	}
}

func TestState_SetLoading(t *testing.T) {
	s := NewState()

	s.SetLoading(ResourceReport, true)
	if !s.Loading.Report {
		t.Error("Report loading should be true")
	}
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true")
	}

	s.SetLoading(ResourceReport, false)
	// Initial is still true
	if !s.AnyLoading() {
		t.Error("AnyLoading should be true (Initial is true)")
	}

	s.SetLoading(ResourceInitial, false)
	if s.AnyLoading() {
		t.Error("AnyLoading should be false")
	}

	resources := s.GetLoadingResources()
	if len(resources) != 0 {
		t.Errorf("GetLoadingResources should be empty, got %v", resources)
	}

	s.SetLoading(ResourceExport, true)
	resources = s.GetLoadingResources()
	if len(resources) != 1 || resources[0] != ResourceExport {
		t.Errorf("GetLoadingResources should contain export, got %v", resources)
	}
}

func TestState_SetReport(t *testing.T) {
	s := NewState()
	s.SetError(errors.New("boom"))

	s.SetReport(testReport("run-1", "Acme", "Nova"))

	if s.GetError() != nil {
		t.Error("SetReport should clear the last error")
	}
	if got := s.GetSelectedBrand(); got != "Acme" {
		t.Errorf("SelectedBrand = %q, want first brand", got)
	}
	if names := s.GetBrandNames(); len(names) != 2 || names[1] != "Nova" {
		t.Errorf("GetBrandNames = %v", names)
	}
	if s.GetLastUpdated().IsZero() {
		t.Error("LastUpdated should be set")
	}

	// Selection survives when the brand is still there
	s.SetSelectedBrand("Nova")
	s.SetReport(testReport("run-2", "Acme", "Nova"))
	if got := s.GetSelectedBrand(); got != "Nova" {
		t.Errorf("SelectedBrand = %q, want Nova", got)
	}

	// and falls back when it disappeared
	s.SetReport(testReport("run-3", "Acme"))
	if got := s.GetSelectedBrand(); got != "Acme" {
		t.Errorf("SelectedBrand = %q, want Acme", got)
	}

	s.SetReport(testReport("run-4"))
	if got := s.GetSelectedBrand(); got != "" {
		t.Errorf("SelectedBrand = %q, want empty", got)
	}
}

func TestState_SetErrorKeepsReport(t *testing.T) {
	s := NewState()
	r := testReport("run-1", "Acme")
	s.SetReport(r)

	s.SetError(errors.New("schema"))
	if s.GetReport() != r {
		t.Error("a failed refresh should keep the previous report")
	}
	if s.GetError() == nil {
		t.Error("GetError should return the error")
	}
}

func TestState_Notifications(t *testing.T) {
	s := NewState()

	id := s.AddNotification(NotificationInfo, "test", time.Minute)
	if id == "" {
		t.Error("AddNotification returned empty ID")
	}

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("GetNotifications len = %d, want 1", len(notifs))
	}
	if notifs[0].Message != "test" {
		t.Errorf("Notification message = %s, want test", notifs[0].Message)
	}

	s.RemoveNotification(id)
	if len(s.GetNotifications()) != 0 {
		t.Error("Notification should be removed")
	}
}

func TestState_NotificationsAreCapped(t *testing.T) {
	s := NewState()
	for i := 0; i < maxNotifications+5; i++ {
		s.AddNotification(NotificationInfo, "n", 0)
	}
	if got := len(s.GetNotifications()); got != maxNotifications {
		t.Errorf("notifications = %d, want %d", got, maxNotifications)
	}

	s.ClearAllNotifications()
	if len(s.GetNotifications()) != 0 {
		t.Error("ClearAllNotifications should remove everything")
	}
}

func TestState_ClearExpiredNotifications(t *testing.T) {
	s := NewState()

	s.notifications = append(s.notifications, Notification{
		ID:        "expired",
		CreatedAt: time.Now().Add(-2 * time.Minute),
		Duration:  time.Minute,
	})
	s.notifications = append(s.notifications, Notification{
		ID:        "active",
		CreatedAt: time.Now(),
		Duration:  time.Minute,
	})

	s.ClearExpiredNotifications()

	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != "active" {
		t.Errorf("Expected active notification, got %s", notifs[0].ID)
	}
}

func TestState_LoadingNotification(t *testing.T) {
	s := NewState()

	s.SetLoadingNotification("loading...")
	notifs := s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification, got %d", len(notifs))
	}
	if notifs[0].ID != LoadingNotificationID {
		t.Errorf("Expected ID %s, got %s", LoadingNotificationID, notifs[0].ID)
	}

	s.SetLoadingNotification("still loading...")
	notifs = s.GetNotifications()
	if len(notifs) != 1 {
		t.Errorf("Expected 1 notification after update")
	}
	if notifs[0].Message != "still loading..." {
		t.Errorf("Expected message still loading..., got %s", notifs[0].Message)
	}

	s.ClearLoadingNotification()
	if len(s.GetNotifications()) != 0 {
		t.Error("Loading notification should be cleared")
	}
}

func TestState_TimeSinceUpdate(t *testing.T) {
	s := NewState()
	if s.TimeSinceUpdate() != 0 {
		t.Error("TimeSinceUpdate should be 0 before any report")
	}

	s.SetReport(testReport("run-1"))
	time.Sleep(time.Millisecond)
	if s.TimeSinceUpdate() == 0 {
		t.Error("TimeSinceUpdate should be > 0")
	}
}

func TestNotificationType_String(t *testing.T) {
	tests := []struct {
		t    NotificationType
		want string
	}{
		{NotificationSuccess, "success"},
		{NotificationError, "error"},
		{NotificationWarning, "warning"},
		{NotificationInfo, "info"},
		{NotificationLoading, "loading"},
		{NotificationType(999), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
