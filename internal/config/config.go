package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds a single analysis request. The backend computes
	// the analysis on demand, which can take a while for large surveys.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize is the number of surveys loaded concurrently.
	// Kept small so a batch does not hammer the admin API.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "paperstat"

	// DefaultUserAgent identifies paperstat in HTTP requests.
	DefaultUserAgent = "paperstat/1.0"

	// DefaultMaxBodySize limits the analysis body read from the backend.
	// Free-text answers make bodies grow with the number of respondents.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultEncoding is the encoding of exported CSV files.
	DefaultEncoding = "utf-8"

	// DateLayout is the format of DateStart and DateEnd.
	DateLayout = "2006-01-02"
)

// Config holds all configuration options for paperstat.
// It is populated from CLI flags, the environment and the .paperstat file,
// and passed through the application rather than kept in global state.
type Config struct {
	// Endpoint is the base URL of the survey analysis API,
	// e.g. "https://example.com/admin/paper". Surveys are fetched from
	// <Endpoint>/{id}/analysis/.
	Endpoint string

	// Proxy is an optional SOCKS5 proxy in "host:port" format.
	Proxy string

	// Cookie is a raw session cookie sent to the backend.
	// It overrides the cookie from the .paperstat file.
	Cookie string

	// Timeout is the timeout of one analysis request.
	Timeout time.Duration

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// ShowAnswers logs respondent answers and search keywords unmasked.
	// Credentials are masked regardless.
	ShowAnswers bool

	// BatchSize is the number of surveys loaded concurrently.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .paperstat in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Backends holds per-backend settings loaded from the config file.
	Backends *File

	// JSONReport, MarkdownReport and HTMLReport select the report format.
	// At most one may be set; the default is a plain-text table.
	JSONReport     bool
	MarkdownReport bool
	HTMLReport     bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// ExportDir is the directory CSV exports are written to.
	// When empty the current directory is used.
	ExportDir string

	// Encoding is the CSV encoding: "utf-8" (with BOM) or "gb18030".
	Encoding string

	// Targets is the list of survey ids to load.
	Targets []string

	// DBDir is the directory path for storing the SQLite database.
	// Defaults to XDG data directory (~/.local/share/paperstat on Linux).
	DBDir string

	// SaveToDB stores every unfiltered fetched payload as a snapshot.
	SaveToDB bool

	// Offline serves surveys from the latest stored snapshot instead of the backend.
	Offline bool

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes.
	// Set to 0 to use the default (10MB).
	MaxBodySize int64

	// DateStart and DateEnd restrict the analysis to answers submitted in
	// the inclusive range, formatted as YYYY-MM-DD. Empty means unbounded.
	DateStart string
	DateEnd   string

	// Title is the survey title used in reports and as the export file name.
	Title string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		BatchSize:   DefaultBatchSize,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		Encoding:    DefaultEncoding,
	}
}

// XDGDataDir returns the XDG data directory for paperstat.
// On Linux: ~/.local/share/paperstat
// On macOS: ~/Library/Application Support/paperstat
// On Windows: %LOCALAPPDATA%\paperstat
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for paperstat.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for paperstat.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first error found.
//
// Offline runs need no endpoint; they read from the snapshot database.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	if c.Endpoint == "" && !c.Offline {
		return ErrNoEndpoint
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	formats := 0
	for _, on := range []bool{c.JSONReport, c.MarkdownReport, c.HTMLReport} {
		if on {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.Offline && c.HasDateFilter() {
		return ErrOfflineDateFilter
	}

	return c.validateDates()
}

// HasDateFilter reports whether either date bound is set.
func (c *Config) HasDateFilter() bool {
	return c.DateStart != "" || c.DateEnd != ""
}

// validateDates checks the date filter format and order.
func (c *Config) validateDates() error {
	var start, end time.Time
	var err error
	if c.DateStart != "" {
		if start, err = time.Parse(DateLayout, c.DateStart); err != nil {
			return ErrInvalidDate
		}
	}
	if c.DateEnd != "" {
		if end, err = time.Parse(DateLayout, c.DateEnd); err != nil {
			return ErrInvalidDate
		}
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return ErrInvalidDateRange
	}
	return nil
}

// BackendSettings returns the resolved settings for the configured endpoint:
// file defaults, then the endpoint's own entry, then Cookie and Timeout
// from c when set explicitly.
func (c *Config) BackendSettings() BackendConfig {
	var settings BackendConfig
	if c.Backends != nil {
		settings = c.Backends.GetBackendConfig(c.Endpoint)
	}
	if c.Cookie != "" {
		settings.Cookie = c.Cookie
	}
	if settings.Timeout <= 0 {
		settings.Timeout = c.Timeout
	}
	return settings
}

// ApplyFileDefaults fills an empty Endpoint from the loaded config file.
// It runs after ApplyEnv, so flags and the environment take precedence.
func (c *Config) ApplyFileDefaults() {
	if c.Endpoint == "" && c.Backends != nil {
		c.Endpoint = c.Backends.Endpoint
	}
}
