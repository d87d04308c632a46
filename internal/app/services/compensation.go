package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/yigit/uniportal/internal/pkg/metrics"
	"go.uber.org/multierr"
)

const compensationTimeout = 10 * time.Second

type undoStep struct {
	name string
	fn   func(ctx context.Context) error
}

// Compensator collects undo steps for entities created by one request.
// Steps run in reverse order of registration and are best-effort.
type Compensator struct {
	steps   []undoStep
	logger  zerolog.Logger
	metrics *metrics.Metrics
}

// NewCompensator creates an empty compensator
func NewCompensator(logger zerolog.Logger, m *metrics.Metrics) *Compensator {
	return &Compensator{logger: logger, metrics: m}
}

// Add registers the undo step for an entity that was just created
func (c *Compensator) Add(name string, fn func(ctx context.Context) error) {
	c.steps = append(c.steps, undoStep{name: name, fn: fn})
}

// Len returns the number of pending undo steps
func (c *Compensator) Len() int {
	return len(c.steps)
}

// Run undoes every registered step, newest first, and returns cause unchanged.
// Undo errors are logged and counted but never replace cause.
func (c *Compensator) Run(ctx context.Context, cause error) error {
	if len(c.steps) == 0 {
		return cause
	}

	// Undo must still run when the request context is already done
	undoCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), compensationTimeout)
	defer cancel()

	var undoErrs error
	for i := len(c.steps) - 1; i >= 0; i-- {
		step := c.steps[i]
		err := step.fn(undoCtx)
		c.metrics.ObserveCompensation(step.name, err)
		if err != nil {
			undoErrs = multierr.Append(undoErrs, err)
			c.logger.Error().Err(err).Str("step", step.name).Msg("Compensation step failed")
			continue
		}
		c.logger.Debug().Str("step", step.name).Msg("Compensation step completed")
	}
	c.steps = nil

	if undoErrs != nil {
		c.logger.Error().
			Err(undoErrs).
			AnErr("cause", cause).
			Int("failedSteps", len(multierr.Errors(undoErrs))).
			Msg("Compensation incomplete, manual cleanup may be required")
	}
	return cause
}
