package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
var (
	// ErrNoTarget is returned when no survey id is specified.
	ErrNoTarget = errors.New("no target specified: provide at least one survey id")

	// ErrNoEndpoint is returned when neither --endpoint nor PAPERSTAT_ENDPOINT
	// is set and the run is not offline.
	ErrNoEndpoint = errors.New("no endpoint specified: use --endpoint or set PAPERSTAT_ENDPOINT")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --markdown and --html is specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: use only one of --json, --markdown and --html")

	// ErrInvalidMaxBodySize is returned when the max body size is negative.
	// Use 0 to use the default limit.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidDate is returned when a date filter is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

	// ErrOfflineDateFilter is returned when --offline is combined with a date
	// filter. Snapshots hold unfiltered analyses only.
	ErrOfflineDateFilter = errors.New("date filters cannot be used with --offline: snapshots hold the unfiltered analysis")

	// ErrInvalidDateRange is returned when the end date is before the start date.
	ErrInvalidDateRange = errors.New("invalid date range: end date is before start date")
)
