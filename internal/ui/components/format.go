package components

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatAmount renders a sales figure with thousands separators and two decimals.
func FormatAmount(v float64) string {
	return humanize.FormatFloat("#,###.##", v)
}

// FormatSigned renders a growth figure with an explicit sign.
func FormatSigned(v float64) string {
	switch {
	case v > 0:
		return "+" + FormatAmount(v)
	case v < 0:
		return "-" + FormatAmount(math.Abs(v))
	default:
		return FormatAmount(0)
	}
}

// FormatPct renders a growth percentage, or "n/a" when it is undefined.
func FormatPct(p *float64) string {
	if p == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *p)
}

// FormatCompact renders large figures with an SI suffix, e.g. "12.3k".
func FormatCompact(v float64) string {
	if math.Abs(v) < 1000 {
		return humanize.FormatFloat("#.##", v)
	}
	value, prefix := humanize.ComputeSI(v)
	return humanize.FtoaWithDigits(value, 1) + prefix
}

// FormatAgo renders how long ago t was, or "never" for the zero time.
func FormatAgo(t time.Time) string {
	if t.IsZero() {
		return "never"
	}
	return humanize.Time(t)
}
