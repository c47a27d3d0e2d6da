package app

import (
	"time"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/services"
)

// TickMsg is sent periodically to trigger state refresh.
type TickMsg struct {
	Time time.Time
}

// StartLoadingMsg signals that a resource is starting to load.
type StartLoadingMsg struct {
	Resource string
}

// StopLoadingMsg signals that a resource has finished loading.
type StopLoadingMsg struct {
	Resource string
}

// ReportLoadedMsg carries the result of a refresh requested by the UI.
type ReportLoadedMsg struct {
	Report  *models.Report
	Trigger string
	Error   error
}

// ReportUpdatedMsg is forwarded to tabs whenever the shared report changes,
// whatever caused the change.
type ReportUpdatedMsg struct {
	Report  *models.Report
	Trigger string
}

// ModelSwitchedMsg contains the result of cycling the primary model.
type ModelSwitchedMsg struct {
	Model  string
	Report *models.Report
	Error  error
}

// ExportResultMsg contains the result of an export operation.
type ExportResultMsg struct {
	Dir   string
	Files []string
	Error error
}

// HistoryLoadedMsg contains persisted runs for a time range.
type HistoryLoadedMsg struct {
	TimeRange models.TimeRange
	Runs      []models.RunRecord
	Stats     *models.RunStats
	Error     error
}

// BrandHistoryLoadedMsg contains one brand's growth over persisted runs.
type BrandHistoryLoadedMsg struct {
	Brand  string
	Points []models.BrandHistoryPoint
	Error  error
}

// SelectedBrandChangedMsg signals that the brand selected in the UI changed.
type SelectedBrandChangedMsg struct {
	Brand string
}

// AddNotificationMsg requests adding a new notification.
type AddNotificationMsg struct {
	Type     NotificationType
	Message  string
	Duration time.Duration
}

// RemoveNotificationMsg requests removal of a notification.
type RemoveNotificationMsg struct {
	ID string
}

// ClearExpiredNotificationsMsg triggers clearing of expired notifications.
type ClearExpiredNotificationsMsg struct{}

// ServiceEventMsg wraps a service event from the service manager.
type ServiceEventMsg struct {
	Event services.ServiceEvent
}

// SubscriptionEventMsg is the callback wrapper for service subscription.
type SubscriptionEventMsg struct {
	Channel chan services.ServiceEvent
}

// ErrorMsg represents a general error.
type ErrorMsg struct {
	Error   error
	Context string
}

// TabSwitchMsg requests switching to a specific tab.
type TabSwitchMsg struct {
	Tab TabID
}

// ToggleHelpMsg toggles the help display.
type ToggleHelpMsg struct{}
