// Package notify delivers run outcomes to the desktop and to Telegram.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gen2brain/beeep"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// Notifier delivers a short message.
type Notifier interface {
	Notify(ctx context.Context, title, body string) error
}

// DocumentSender can also deliver a file.
type DocumentSender interface {
	SendDocument(ctx context.Context, path, caption string) error
}

// desktopNotify is replaced in tests.
var desktopNotify = func(title, body string) error {
	return beeep.Notify(title, body, "")
}

// Desktop shows a native desktop notification.
type Desktop struct{}

// Notify implements Notifier.
func (Desktop) Notify(_ context.Context, title, body string) error {
	if err := desktopNotify(title, body); err != nil {
		return fmt.Errorf("failed to show desktop notification: %w", err)
	}
	return nil
}

// Multi fans a message out to several notifiers. Every notifier is tried;
// the errors are joined.
type Multi []Notifier

// Notify implements Notifier.
func (m Multi) Notify(ctx context.Context, title, body string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, title, body); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SendDocument delivers the file through every notifier that supports it.
func (m Multi) SendDocument(ctx context.Context, path, caption string) error {
	var errs []error
	for _, n := range m {
		if d, ok := n.(DocumentSender); ok {
			if err := d.SendDocument(ctx, path, caption); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// FormatSummary builds the completion message of a run.
func FormatSummary(r *models.Report) (title, body string) {
	title = "Forecast report ready"
	if r == nil {
		return title, "No report was produced."
	}
	s := r.Summary

	var b strings.Builder
	if s.ReferenceMonth.IsZero() {
		b.WriteString("No brand has a complete month of sales.\n")
	} else {
		fmt.Fprintf(&b, "%s → %s (%s model)\n", s.ReferenceMonth.Label(), s.NextMonth.Label(), r.PrimaryModel)
		fmt.Fprintf(&b, "Revenue: %s → %s\n", money(s.ThisMonthRevenue), money(s.NextMonthRevenue))
	}
	if s.FastestGrowing != "" {
		fmt.Fprintf(&b, "Fastest growing: %s (%s)\n", s.FastestGrowing, signedMoney(s.FastestGrowth))
	}
	fmt.Fprintf(&b, "Growing brands: %d of %d\n", s.PositiveGrowthCount, s.BrandCount)
	if s.MostTrending != "" {
		fmt.Fprintf(&b, "Most trending: %s\n", s.MostTrending)
	}
	if n := len(r.Exclusions); n > 0 {
		fmt.Fprintf(&b, "Excluded brands: %d\n", n)
	}
	if n := len(r.Warnings); n > 0 {
		fmt.Fprintf(&b, "Warnings: %d\n", n)
	}
	return title, strings.TrimRight(b.String(), "\n")
}

// FormatFailure builds the message of a failed run.
func FormatFailure(err error) (title, body string) {
	title = "Forecast pipeline failed"
	if err == nil {
		return title, "Unknown error."
	}
	return title, err.Error()
}

func money(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func signedMoney(v float64) string {
	return fmt.Sprintf("%+.2f", v)
}
