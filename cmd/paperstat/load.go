package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/paperstat/internal/backend"
	"github.com/nao1215/paperstat/internal/config"
	"github.com/nao1215/paperstat/internal/database"
	"github.com/nao1215/paperstat/internal/log"
	"github.com/nao1215/paperstat/internal/model"
	"github.com/nao1215/paperstat/internal/pipeline"
)

// addLoadFlags registers the flags shared by every command that loads surveys.
func addLoadFlags(cmd *cobra.Command) {
	// Backend connection flags
	cmd.Flags().StringP("endpoint", "e", "",
		"Survey admin API base URL (env: "+config.EnvEndpoint+")")
	cmd.Flags().String("cookie", "",
		"Session cookie sent to the backend (env: "+config.EnvCookie+")")
	cmd.Flags().String("proxy", "",
		"SOCKS5 proxy address host:port (env: "+config.EnvProxy+")")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout of one analysis request")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .paperstat in current or home directory)")

	// Analysis filters
	cmd.Flags().String("date-start", "", "Only count answers submitted on or after this date (YYYY-MM-DD)")
	cmd.Flags().String("date-end", "", "Only count answers submitted on or before this date (YYYY-MM-DD)")
	cmd.Flags().String("title", "", "Survey title used in reports and the export file name")

	// Snapshot flags
	cmd.Flags().Bool("offline", false, "Use the latest stored snapshot instead of the backend")
	cmd.Flags().Bool("no-save", false, "Do not store fetched analyses in the snapshot database (date-filtered analyses are never stored)")
	cmd.Flags().String("db-dir", "", "Snapshot database directory (default: XDG data directory)")
}

// getGlobalBool retrieves a boolean root flag from the command or its parent.
func getGlobalBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// buildConfig creates a Config from the flags registered by addLoadFlags.
// Precedence: flags, then the environment, then the config file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	flags := cmd.Flags()

	var err error
	if cfg.Endpoint, err = flags.GetString("endpoint"); err != nil {
		return nil, err
	}
	if cfg.Cookie, err = flags.GetString("cookie"); err != nil {
		return nil, err
	}
	if cfg.Proxy, err = flags.GetString("proxy"); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
		return nil, err
	}
	if cfg.ConfigFilePath, err = flags.GetString("config"); err != nil {
		return nil, err
	}
	if cfg.DateStart, err = flags.GetString("date-start"); err != nil {
		return nil, err
	}
	if cfg.DateEnd, err = flags.GetString("date-end"); err != nil {
		return nil, err
	}
	if cfg.Title, err = flags.GetString("title"); err != nil {
		return nil, err
	}
	if cfg.Offline, err = flags.GetBool("offline"); err != nil {
		return nil, err
	}
	noSave, err := flags.GetBool("no-save")
	if err != nil {
		return nil, err
	}
	// Snapshots hold whole-survey analyses only.
	cfg.SaveToDB = !noSave && !cfg.Offline && !cfg.HasDateFilter()
	if cfg.DBDir, err = flags.GetString("db-dir"); err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}
	cfg.Verbose = getGlobalBool(cmd, "verbose")
	cfg.ShowAnswers = getGlobalBool(cmd, "show-answers")

	// If the user explicitly specified a config file path, error if not found.
	// If no path was given, silently continue without one.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.Backends, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case explicitConfigPath:
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	default:
		cfg.Backends = &config.File{Backends: make(map[string]config.BackendConfig)}
	}

	cfg.ApplyEnv()
	cfg.ApplyFileDefaults()
	cfg.Targets = args

	return cfg, nil
}

// setupLogger creates the secure structured logger for the command.
func setupLogger(w io.Writer, verbose, showAnswers bool) *slog.Logger {
	return log.NewSecureLogger(w, verbose, log.WithAnswers(showAnswers))
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		select {
		case <-sigCh:
			logger.Info("received shutdown signal, cancelling...")
			cancel()
		case <-ctx.Done():
		}
		signal.Stop(sigCh)
	}()

	return ctx, cancel
}

// newBackendClient creates the backend client for cfg.
func newBackendClient(cfg *config.Config, logger *slog.Logger) (*backend.Client, error) {
	settings := cfg.BackendSettings()

	opts := []backend.Option{
		backend.WithTimeout(settings.Timeout),
		backend.WithUserAgent(cfg.UserAgent),
		backend.WithMaxBodySize(cfg.MaxBodySize),
		backend.WithLogger(logger),
	}
	if settings.Cookie != "" {
		opts = append(opts, backend.WithCookie(settings.Cookie))
	}
	if len(settings.Headers) > 0 {
		opts = append(opts, backend.WithHeaders(settings.Headers))
	}
	if cfg.Proxy != "" {
		opts = append(opts, backend.WithProxy(cfg.Proxy))
	}

	client, err := backend.NewClient(cfg.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}
	return client, nil
}

// loader builds pipelines for one command run.
type loader struct {
	cfg    *config.Config
	logger *slog.Logger
	client *backend.Client
	db     *database.SnapshotDB
}

// newLoader opens what the configured pipelines need. Close must be called.
func newLoader(cfg *config.Config, logger *slog.Logger) (*loader, error) {
	l := &loader{cfg: cfg, logger: logger}

	if cfg.Offline || cfg.SaveToDB {
		// Offline runs only read, so a missing database is an error.
		opts := database.DefaultOptions()
		opts.CreateIfNotExists = !cfg.Offline
		db, err := database.Open(cfg.DBDir, opts)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		l.db = db
		logger.Debug("database opened", "path", db.Path())
	}

	if !cfg.Offline {
		client, err := newBackendClient(cfg, logger)
		if err != nil {
			l.Close()
			return nil, err
		}
		l.client = client
	}

	return l, nil
}

// Close releases the database, if open.
func (l *loader) Close() {
	if l.db != nil {
		if err := l.db.Close(); err != nil {
			l.logger.Error("failed to close database", "error", err)
		}
	}
}

// newPipeline creates a fresh pipeline for one survey.
func (l *loader) newPipeline() *pipeline.Pipeline {
	opts := []pipeline.Option{pipeline.WithLogger(l.logger)}
	if l.cfg.Offline {
		return pipeline.OfflinePipeline(l.db, opts...)
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineDateRange(l.cfg.DateStart, l.cfg.DateEnd),
	}
	if l.db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineStore(l.db, l.client.Endpoint()))
	}
	return pipeline.DefaultPipeline(l.client, opts, configOpts...)
}

// Load loads every target. A single target is loaded directly; several are
// loaded concurrently, bounded by the batch size.
func (l *loader) Load(ctx context.Context) ([]*model.SurveyReport, error) {
	if len(l.cfg.Targets) == 1 {
		report := l.newReport(l.cfg.Targets[0])
		err := l.newPipeline().Execute(log.WithRequestID(ctx, uuid.NewString()), report)
		return []*model.SurveyReport{report}, err
	}

	bp := pipeline.NewBatchProcessor(l.newPipeline,
		pipeline.WithConcurrency(l.cfg.BatchSize),
		pipeline.WithBatchLogger(l.logger),
	)
	reports, err := bp.ProcessBatch(ctx, l.cfg.Targets)
	for _, r := range reports {
		if r != nil {
			l.decorate(r)
		}
	}
	if err != nil {
		// Surveys finished before cancellation are still reported.
		return reports, err
	}
	return reports, firstError(reports)
}

func (l *loader) newReport(id string) *model.SurveyReport {
	r := model.NewSurveyReport(id)
	l.decorate(r)
	return r
}

// decorate sets the display metadata supplied on the command line.
func (l *loader) decorate(r *model.SurveyReport) {
	if r.Title == "" {
		r.Title = l.cfg.Title
	}
}

// firstError returns the first error recorded in reports.
func firstError(reports []*model.SurveyReport) error {
	var errs []error
	for _, r := range reports {
		if r != nil && r.Error != nil {
			errs = append(errs, fmt.Errorf("survey %s: %w", r.SurveyID, r.Error))
		}
	}
	return errors.Join(errs...)
}

// openOutput returns the file named path, or stdout when path is empty.
// The returned close function is always safe to call.
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}
	if err := ensureParentDir(path); err != nil {
		return nil, nil, err
	}
	// Reports may contain respondent answers; keep them owner-readable only.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// ensureParentDir creates the parent directory of path if needed.
func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
