package forecast

import (
	"fmt"
	"strings"

	"github.com/j-veylop/brand-forecast-tui/internal/models"
)

// SchemaError reports a structural problem with an input table. It aborts
// the whole aggregation.
type SchemaError struct {
	Table   string
	Missing []string // Required columns not found in the header
	Column  string   // Column holding a malformed value
	Row     int      // 1-based data row of the malformed value
	Value   string
	Reason  string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("table %s: missing required columns: %s", e.Table, strings.Join(e.Missing, ", "))
	}
	if e.Column != "" {
		return fmt.Sprintf("table %s: row %d column %s: %s (%q)", e.Table, e.Row, e.Column, e.Reason, e.Value)
	}
	return fmt.Sprintf("table %s: %s", e.Table, e.Reason)
}

// DataGapError reports a brand without a complete reference month. The brand
// is excluded and the run continues.
type DataGapError struct {
	Brand  string
	Months []models.YearMonth // Months seen, none complete
}

func (e *DataGapError) Error() string {
	seen := make([]string, len(e.Months))
	for i, m := range e.Months {
		seen[i] = m.String()
	}
	return fmt.Sprintf("brand %s: no complete month of actuals (seen: %s)", e.Brand, strings.Join(seen, ", "))
}

// Detail returns the part of the message useful next to the brand name.
func (e *DataGapError) Detail() string {
	if len(e.Months) == 0 {
		return "no dated rows"
	}
	return fmt.Sprintf("none of %d observed months has full daily coverage (latest %s)",
		len(e.Months), e.Months[len(e.Months)-1])
}
