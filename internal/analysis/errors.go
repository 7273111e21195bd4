package analysis

import "errors"

// Sentinel errors for the pipeline. Callers match them with errors.Is;
// the web layer translates them to status codes. Per-row validation
// failures are never errors — they are returned as InvalidRecord entries.
var (
	// ErrSourceNotFound indicates the source CSV file could not be found.
	ErrSourceNotFound = errors.New("data file not found")

	// ErrSourceFormat indicates the source is empty, lacks required
	// columns, or produced no valid records.
	ErrSourceFormat = errors.New("invalid source data")

	// ErrInvalidThreshold indicates a negative threshold was supplied.
	ErrInvalidThreshold = errors.New("threshold cannot be negative")

	// ErrEmptyInput indicates a ranking operation over no valid records.
	ErrEmptyInput = errors.New("no valid records")
)
