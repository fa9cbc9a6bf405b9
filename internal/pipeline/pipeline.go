package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/paperstat/internal/model"
)

// Step is one stage of loading a survey. It reads and fills the report.
type Step interface {
	// Do runs the step. A returned error is recorded in the report.
	Do(ctx context.Context, report *model.SurveyReport) error

	// Name identifies the step in logs and in SurveyReport.PerformedSteps.
	Name() string
}

// StepError is returned by Execute when a step fails.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s step: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Pipeline runs steps in the order they were added.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps running later steps after a failure.
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError makes a failed step non-fatal. The failure is still
// recorded in the report and later steps run.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates an empty pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends steps in order.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps against report.
//
// The context is checked before each step. Cancellation, or a step failing
// with context.DeadlineExceeded, marks the report TimedOut. Unless
// WithContinueOnError is set the first failure stops the run and is returned
// as a *StepError; report.Error and report.ErrorMessage hold the step's own
// error either way.
func (p *Pipeline) Execute(ctx context.Context, report *model.SurveyReport) error {
	p.logger.DebugContext(ctx, "running pipeline",
		"survey_id", report.SurveyID,
		"steps", p.StepNames(),
	)
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.WarnContext(ctx, "load cancelled",
				"survey_id", report.SurveyID,
				"next_step", step.Name(),
				"reason", err,
			)
			report.TimedOut = true
			return err
		}

		err := p.runStep(ctx, step, report)
		report.PerformedSteps = append(report.PerformedSteps, step.Name())
		if err == nil {
			continue
		}

		report.Error = err
		report.ErrorMessage = err.Error()
		if errors.Is(err, context.DeadlineExceeded) {
			report.TimedOut = true
		}
		if !p.continueOnError {
			return &StepError{Step: step.Name(), Err: err}
		}
	}
	return nil
}

// runStep runs one step and logs its outcome.
func (p *Pipeline) runStep(ctx context.Context, step Step, report *model.SurveyReport) error {
	logger := p.logger.With("step", step.Name(), "survey_id", report.SurveyID)
	logger.InfoContext(ctx, "running step")

	start := time.Now()
	err := step.Do(ctx, report)
	elapsed := time.Since(start)

	if err != nil {
		logger.ErrorContext(ctx, "step failed", "error", err, "elapsed", elapsed)
		return err
	}
	logger.DebugContext(ctx, "step done", "elapsed", elapsed)
	return nil
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, 0, len(p.steps))
	for _, step := range p.steps {
		names = append(names, step.Name())
	}
	return names
}
