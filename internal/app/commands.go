package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
	"github.com/j-veylop/brand-forecast-tui/internal/services"
)

const (
	// DefaultTickInterval is the default interval between ticks.
	DefaultTickInterval = 2 * time.Second

	// DefaultNotificationDuration is the default duration for notifications.
	DefaultNotificationDuration = 5 * time.Second

	// QuickNotificationDuration is for brief notifications.
	QuickNotificationDuration = 3 * time.Second

	// LongNotificationDuration is for important notifications.
	LongNotificationDuration = 10 * time.Second

	// HistoryLimit bounds how many runs the history views load.
	HistoryLimit = 200
)

// tickCmd returns a command that sends a TickMsg after the specified interval.
func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}

// defaultTickCmd returns a command that sends a TickMsg after the default interval.
func defaultTickCmd() tea.Cmd {
	return tickCmd(DefaultTickInterval)
}

// refreshCmd returns a command that reloads the tables and aggregates them.
func refreshCmd(mgr *services.Manager, trigger string) tea.Cmd {
	return func() tea.Msg {
		r, err := mgr.Refresh(context.Background(), trigger)
		return ReportLoadedMsg{Report: r, Trigger: trigger, Error: err}
	}
}

// cycleModelCmd returns a command that switches to the next primary model.
func cycleModelCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		r, err := mgr.CyclePrimaryModel()
		return ModelSwitchedMsg{Model: mgr.PrimaryModel(), Report: r, Error: err}
	}
}

// exportCmd returns a command that writes the CSV report files.
func exportCmd(mgr *services.Manager) tea.Cmd {
	return func() tea.Msg {
		files, err := mgr.Export(context.Background())
		return ExportResultMsg{Dir: mgr.Config().ExportDir, Files: files, Error: err}
	}
}

// loadHistoryCmd returns a command that loads persisted runs.
func loadHistoryCmd(mgr *services.Manager, timeRange models.TimeRange) tea.Cmd {
	return func() tea.Msg {
		runs, stats, err := mgr.History(timeRange, HistoryLimit)
		return HistoryLoadedMsg{TimeRange: timeRange, Runs: runs, Stats: stats, Error: err}
	}
}

// loadBrandHistoryCmd returns a command that loads one brand's growth over runs.
func loadBrandHistoryCmd(mgr *services.Manager, brand string) tea.Cmd {
	return func() tea.Msg {
		points, err := mgr.BrandHistory(brand, HistoryLimit)
		return BrandHistoryLoadedMsg{Brand: brand, Points: points, Error: err}
	}
}

// subscribeToServicesCmd returns a command that subscribes to service events.
func subscribeToServicesCmd(mgr *services.Manager) tea.Cmd {
	ch, _ := mgr.Subscribe()
	return func() tea.Msg {
		return SubscriptionEventMsg{Channel: ch}
	}
}

// waitForServiceEventCmd returns a command that waits for the next service event.
func waitForServiceEventCmd(ch <-chan services.ServiceEvent) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-ch
		if !ok {
			return nil
		}
		return ServiceEventMsg{Event: event}
	}
}

// clearNotificationCmd returns a command that removes a notification after a delay.
func clearNotificationCmd(id string, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(_ time.Time) tea.Msg {
		return RemoveNotificationMsg{ID: id}
	})
}

// notifySuccessCmd returns a command that adds a success notification.
func notifySuccessCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationSuccess,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyErrorCmd returns a command that adds an error notification.
func notifyErrorCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationError,
			Message:  message,
			Duration: LongNotificationDuration,
		}
	}
}

// notifyWarningCmd returns a command that adds a warning notification.
func notifyWarningCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationWarning,
			Message:  message,
			Duration: DefaultNotificationDuration,
		}
	}
}

// notifyInfoCmd returns a command that adds an info notification.
func notifyInfoCmd(message string) tea.Cmd {
	return func() tea.Msg {
		return AddNotificationMsg{
			Type:     NotificationInfo,
			Message:  message,
			Duration: QuickNotificationDuration,
		}
	}
}

// Commands provides a public interface to the command functions.
type Commands struct {
	manager *services.Manager
}

// NewCommands creates a new Commands instance.
func NewCommands(mgr *services.Manager) *Commands {
	return &Commands{manager: mgr}
}

// Tick returns a tick command with the specified interval.
func (c *Commands) Tick(interval time.Duration) tea.Cmd {
	return tickCmd(interval)
}

// DefaultTick returns a tick command with the default interval.
func (c *Commands) DefaultTick() tea.Cmd {
	return defaultTickCmd()
}

// Refresh returns a command that reloads the report. Nil without a manager.
func (c *Commands) Refresh() tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return refreshCmd(c.manager, services.TriggerManual)
}

// LoadHistory returns a command that loads persisted runs.
func (c *Commands) LoadHistory(timeRange models.TimeRange) tea.Cmd {
	if c.manager == nil {
		return nil
	}
	return loadHistoryCmd(c.manager, timeRange)
}

// LoadBrandHistory returns a command that loads one brand's growth over runs.
func (c *Commands) LoadBrandHistory(brand string) tea.Cmd {
	if c.manager == nil || brand == "" {
		return nil
	}
	return loadBrandHistoryCmd(c.manager, brand)
}

// SelectBrand returns a command announcing a new selected brand.
func (c *Commands) SelectBrand(brand string) tea.Cmd {
	return func() tea.Msg {
		return SelectedBrandChangedMsg{Brand: brand}
	}
}

// NotifySuccess returns a command that adds a success notification.
func (c *Commands) NotifySuccess(message string) tea.Cmd {
	return notifySuccessCmd(message)
}

// NotifyError returns a command that adds an error notification.
func (c *Commands) NotifyError(message string) tea.Cmd {
	return notifyErrorCmd(message)
}

// NotifyWarning returns a command that adds a warning notification.
func (c *Commands) NotifyWarning(message string) tea.Cmd {
	return notifyWarningCmd(message)
}

// NotifyInfo returns a command that adds an info notification.
func (c *Commands) NotifyInfo(message string) tea.Cmd {
	return notifyInfoCmd(message)
}

// ClearNotification returns a command that removes a notification after a delay.
func (c *Commands) ClearNotification(id string, delay time.Duration) tea.Cmd {
	return clearNotificationCmd(id, delay)
}

// Quit returns a command that quits the application.
func (c *Commands) Quit() tea.Cmd {
	return tea.Quit
}

// Batch combines multiple commands into one.
func (c *Commands) Batch(cmds ...tea.Cmd) tea.Cmd {
	return tea.Batch(cmds...)
}
