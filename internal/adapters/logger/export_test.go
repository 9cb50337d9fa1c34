package logger

// ErrorEntry exports errorEntry for tests.
type ErrorEntry = errorEntry

// Exported for white-box testing.
var (
	CollectErrorEntries = collectErrorEntries
	FormatErrorEntries  = formatErrorEntries
)
