package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/paperstat/internal/log"
	"github.com/nao1215/paperstat/internal/model"
)

// BatchProcessor loads several surveys concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each survey.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent loads.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed reports.
	// Access is synchronized via mutex.
	results []*model.SurveyReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent loads.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each survey so that no
// pipeline state is shared between loads.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.SurveyReport, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch loads multiple surveys concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Returns one report per survey id, in input order, even for surveys that
// failed; their reports carry the error. The error return is set only when
// the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, surveyIDs []string) ([]*model.SurveyReport, error) {
	bp.logger.InfoContext(ctx, "starting batch processing",
		"total_surveys", len(surveyIDs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.SurveyReport, len(surveyIDs))

	err := bp.run(ctx, surveyIDs, func(report *model.SurveyReport, index int) {
		bp.mu.Lock()
		bp.results[index] = report
		bp.mu.Unlock()
	})

	bp.logger.InfoContext(ctx, "batch processing complete",
		"total_surveys", len(surveyIDs),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

func (bp *BatchProcessor) run(
	ctx context.Context,
	surveyIDs []string,
	done func(report *model.SurveyReport, index int),
) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, id := range surveyIDs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			loadCtx := log.WithRequestID(ctx, uuid.NewString())
			bp.logger.InfoContext(loadCtx, "loading survey",
				"survey_id", id,
				"index", i+1,
				"total", len(surveyIDs),
			)

			report := model.NewSurveyReport(id)
			if err := bp.pipelineFactory().Execute(loadCtx, report); err != nil {
				// Recorded in the report; other surveys keep loading.
				bp.logger.WarnContext(loadCtx, "survey failed",
					"survey_id", id,
					"error", err,
				)
			}

			done(report, i)
			return nil
		})
	}

	return g.Wait()
}
