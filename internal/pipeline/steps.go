package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/paperstat/internal/backend"
	"github.com/nao1215/paperstat/internal/database"
	"github.com/nao1215/paperstat/internal/model"
	"github.com/nao1215/paperstat/internal/stats"
)

// Fetcher loads the raw analysis of a survey.
// *backend.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, surveyID string, opts backend.LoadOptions) (*backend.Response, error)
}

// SnapshotReader reads stored payloads.
type SnapshotReader interface {
	LatestSnapshot(ctx context.Context, surveyID string) (*database.Snapshot, error)
	SnapshotByID(ctx context.Context, id int64) (*database.Snapshot, error)
}

// SnapshotWriter stores payloads.
type SnapshotWriter interface {
	SaveSnapshot(ctx context.Context, s *database.Snapshot) (int64, bool, error)
}

// FetchStep loads the survey's analysis from the backend.
type FetchStep struct {
	fetcher Fetcher
	opts    backend.LoadOptions
	logger  *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithDateRange restricts the analysis to answers submitted between start
// and end (inclusive, YYYY-MM-DD). Empty bounds are open.
func WithDateRange(start, end string) FetchStepOption {
	return func(s *FetchStep) {
		s.opts.DateStart = start
		s.opts.DateEnd = end
	}
}

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a step that fetches from f.
func NewFetchStep(f Fetcher, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{fetcher: f}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, report *model.SurveyReport) error {
	resp, err := s.fetcher.Fetch(ctx, report.SurveyID, s.opts)
	if err != nil {
		return fmt.Errorf("failed to load survey %s: %w", report.SurveyID, err)
	}

	report.Payload = resp.Payload
	report.RawPayload = resp.Body
	report.Respondents = resp.Payload.Sum
	report.DateLoaded = resp.FetchedAt
	report.FromSnapshot = false

	s.logger.DebugContext(ctx, "analysis loaded",
		"survey_id", report.SurveyID,
		"request_id", resp.RequestID,
		"questions", len(resp.Payload.Result),
		"respondents", resp.Payload.Sum,
	)
	return nil
}

// SnapshotLoadStep loads the survey's analysis from the snapshot database.
// Without a snapshot id, the latest snapshot of the survey is used.
type SnapshotLoadStep struct {
	store      SnapshotReader
	snapshotID int64
	logger     *slog.Logger
}

// SnapshotLoadStepOption configures a SnapshotLoadStep.
type SnapshotLoadStepOption func(*SnapshotLoadStep)

// WithSnapshotID loads the snapshot with the given id instead of the latest.
func WithSnapshotID(id int64) SnapshotLoadStepOption {
	return func(s *SnapshotLoadStep) {
		s.snapshotID = id
	}
}

// WithSnapshotLogger sets a custom logger for the snapshot load step.
func WithSnapshotLogger(logger *slog.Logger) SnapshotLoadStepOption {
	return func(s *SnapshotLoadStep) {
		s.logger = logger
	}
}

// NewSnapshotLoadStep creates a step that reads from store.
func NewSnapshotLoadStep(store SnapshotReader, opts ...SnapshotLoadStepOption) *SnapshotLoadStep {
	s := &SnapshotLoadStep{store: store}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Name returns the step name.
func (s *SnapshotLoadStep) Name() string {
	return "snapshot"
}

// Do executes the snapshot load step.
func (s *SnapshotLoadStep) Do(ctx context.Context, report *model.SurveyReport) error {
	var (
		snap *database.Snapshot
		err  error
	)
	if s.snapshotID > 0 {
		snap, err = s.store.SnapshotByID(ctx, s.snapshotID)
	} else {
		snap, err = s.store.LatestSnapshot(ctx, report.SurveyID)
	}
	if err != nil {
		return fmt.Errorf("failed to read snapshot of survey %s: %w", report.SurveyID, err)
	}
	if snap.SurveyID != report.SurveyID {
		return fmt.Errorf("%w: snapshot %d belongs to survey %s, not %s",
			model.ErrInvalidArgument, snap.ID, snap.SurveyID, report.SurveyID)
	}

	payload, err := snap.Decode()
	if err != nil {
		return fmt.Errorf("snapshot %d: %w", snap.ID, err)
	}

	report.Payload = payload
	report.RawPayload = snap.Payload
	report.Respondents = payload.Sum
	report.DateLoaded = snap.FetchedAt
	report.FromSnapshot = true

	s.logger.DebugContext(ctx, "snapshot loaded",
		"survey_id", report.SurveyID,
		"snapshot_id", snap.ID,
		"fetched_at", snap.FetchedAt,
	)
	return nil
}

// PersistStep saves the fetched payload as a snapshot.
// Reports loaded from a snapshot are not stored again. A store failure is
// logged as a warning; the loaded statistics stay usable.
type PersistStep struct {
	store    SnapshotWriter
	endpoint string
	logger   *slog.Logger
}

// NewPersistStep creates a step that writes to store. endpoint is recorded
// with each snapshot.
func NewPersistStep(store SnapshotWriter, endpoint string, logger *slog.Logger) *PersistStep {
	if logger == nil {
		logger = slog.Default()
	}
	return &PersistStep{store: store, endpoint: endpoint, logger: logger}
}

// Name returns the step name.
func (s *PersistStep) Name() string {
	return "persist"
}

// Do executes the persist step.
func (s *PersistStep) Do(ctx context.Context, report *model.SurveyReport) error {
	if report.FromSnapshot {
		return nil
	}
	if report.Payload == nil || len(report.RawPayload) == 0 {
		return fmt.Errorf("%w: nothing to persist for survey %s", model.ErrInvalidArgument, report.SurveyID)
	}

	fetchedAt := report.DateLoaded
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	id, saved, err := s.store.SaveSnapshot(ctx, &database.Snapshot{
		SurveyID:    report.SurveyID,
		Endpoint:    s.endpoint,
		FetchedAt:   fetchedAt,
		Payload:     report.RawPayload,
		Respondents: report.Payload.Sum,
		Questions:   len(report.Payload.Result),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to save snapshot",
			"survey_id", report.SurveyID,
			"error", err,
		)
		return nil
	}

	if saved {
		s.logger.InfoContext(ctx, "snapshot saved", "survey_id", report.SurveyID, "snapshot_id", id)
	} else {
		s.logger.DebugContext(ctx, "snapshot unchanged", "survey_id", report.SurveyID, "snapshot_id", id)
	}
	return nil
}

// AggregateStep computes the statistics rows, chart series and answer index.
type AggregateStep struct{}

// NewAggregateStep creates an aggregation step.
func NewAggregateStep() *AggregateStep {
	return &AggregateStep{}
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do executes the aggregation step.
func (s *AggregateStep) Do(_ context.Context, report *model.SurveyReport) error {
	if report.Payload == nil {
		return fmt.Errorf("%w: survey %s has no payload to aggregate", model.ErrInvalidArgument, report.SurveyID)
	}

	res, err := stats.AggregatePayload(report.Payload)
	if err != nil {
		return err
	}
	res.Apply(report)
	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// DateStart and DateEnd bound the answers the analysis is computed from.
	DateStart string
	DateEnd   string

	// Store, when set, receives every unfiltered fetched payload.
	Store SnapshotWriter

	// Endpoint is recorded with stored snapshots.
	Endpoint string
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineDateRange sets the answer date bounds.
func WithPipelineDateRange(start, end string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.DateStart = start
		c.DateEnd = end
	}
}

// WithPipelineStore stores fetched payloads in store.
func WithPipelineStore(store SnapshotWriter, endpoint string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Store = store
		c.Endpoint = endpoint
	}
}

// DefaultPipeline creates the online pipeline: fetch, aggregate, then
// persist when a store is set and no date range restricts the analysis.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineStore, etc).
func DefaultPipeline(f Fetcher, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{}
	for _, opt := range configOpts {
		opt(cfg)
	}

	p.AddStep(NewFetchStep(f,
		WithDateRange(cfg.DateStart, cfg.DateEnd),
		WithFetchLogger(p.logger),
	))
	p.AddStep(NewAggregateStep())
	switch {
	case cfg.Store == nil:
	case cfg.DateStart != "" || cfg.DateEnd != "":
		p.logger.Debug("date-filtered analysis is not stored",
			"date_start", cfg.DateStart,
			"date_end", cfg.DateEnd,
		)
	default:
		p.AddStep(NewPersistStep(cfg.Store, cfg.Endpoint, p.logger))
	}

	return p
}

// OfflinePipeline creates a pipeline that aggregates the latest snapshot.
func OfflinePipeline(store SnapshotReader, pipelineOpts ...Option) *Pipeline {
	p := New(pipelineOpts...)
	p.AddSteps(
		NewSnapshotLoadStep(store, WithSnapshotLogger(p.logger)),
		NewAggregateStep(),
	)
	return p
}

// IsNotFound reports whether err means no snapshot exists.
func IsNotFound(err error) bool {
	return errors.Is(err, database.ErrSnapshotNotFound)
}
