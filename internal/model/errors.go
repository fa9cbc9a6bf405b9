package model

import "errors"

// Failure classes shared by the loader, aggregator and exporter.
// Packages wrap these with fmt.Errorf("...: %w", err) so callers can use
// errors.Is regardless of which layer produced the failure.
var (
	// ErrNetwork is returned when the backend is unreachable or answers
	// with a non-2xx status.
	ErrNetwork = errors.New("network error")

	// ErrMalformedResponse is returned when the analysis payload is missing
	// expected fields or its shapes disagree (e.g. options vs counts length).
	ErrMalformedResponse = errors.New("malformed response")

	// ErrEmptyDataset is returned when a CSV export has no rows and no
	// explicit header titles.
	ErrEmptyDataset = errors.New("empty dataset")

	// ErrInvalidArgument is returned by keyword search for an empty keyword
	// or an unknown question key.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnsupportedEnvironment is returned when no save strategy could
	// deliver the exported file.
	ErrUnsupportedEnvironment = errors.New("unsupported environment")
)
