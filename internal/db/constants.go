package db

// SQL fragments and formats shared by the run queries
const (
	// sqlTimeFormat is how timestamps are stored so SQLite's date functions
	// can read them.
	sqlTimeFormat = "2006-01-02 15:04:05"

	// sqlRunWindowClause filters runs by a datetime window like "-7 days"
	sqlRunWindowClause = "AND generated_at >= datetime('now', ?)"

	issueExclusion = "exclusion"
	issueWarning   = "warning"
)
