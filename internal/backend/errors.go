package backend

import "errors"

// Client construction errors.
var (
	// ErrInvalidEndpoint is returned when the endpoint is not an absolute
	// http or https URL.
	ErrInvalidEndpoint = errors.New("invalid endpoint: expected absolute http(s) URL")

	// ErrInvalidProxyAddress is returned when the proxy address format is invalid.
	// Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")

	// ErrEmptySurveyID is returned when LoadAnalysis is called without an id.
	ErrEmptySurveyID = errors.New("survey id must not be empty")
)
