package pipeline

import (
	"context"
	"log/slog"
	"time"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, each receiving the Run filled in by the
// steps before it.
type Step interface {
	// Do executes the pipeline step.
	// It returns an error if the step fails; partial results should still
	// be recorded in the run.
	Do(ctx context.Context, run *Run) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution
// even when a step fails. The last error is recorded in the run.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.logger == nil {
		p.logger = slog.Default()
	}

	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
//
// Cancellation is checked before each step; a running step handles its own
// cancellation. Returns the first error encountered if continueOnError is
// false, or nil once all steps ran (errors are recorded in the run).
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	run.StartedAt = time.Now()
	defer func() { run.FinishedAt = time.Now() }()

	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline canceled",
				"step", step.Name(),
				"run", run.ID,
				"reason", ctx.Err(),
			)
			run.Canceled = true
			run.Error = ctx.Err()
			run.ErrorMessage = ctx.Err().Error()
			return ctx.Err()
		default:
		}

		p.logger.Info("executing step",
			"step", step.Name(),
			"run", run.ID,
		)

		run.PerformedSteps = append(run.PerformedSteps, step.Name())

		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed",
				"step", step.Name(),
				"run", run.ID,
				"error", err,
			)

			run.Error = err
			run.ErrorMessage = err.Error()

			if !p.continueOnError {
				return err
			}
			continue
		}

		p.logger.Debug("step completed",
			"step", step.Name(),
			"run", run.ID,
		)
	}

	return nil
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
