// Package lifecycle sequences the install and remove hooks as ordered,
// individually reversible steps. A fatal step failure compensates the
// already-completed steps in reverse order before surfacing the error;
// non-fatal failures are reported and skipped so one broken collaborator
// does not strand the whole transaction.
package lifecycle

import (
	"github.com/rs/zerolog"

	"github.com/nocturne-theme/nocturne-hook/pkg/logging"
)

// Step is one unit of lifecycle work.
type Step struct {
	Name string

	// Fatal failures abort the sequence and unwind completed steps.
	// Non-fatal failures are logged and the sequence continues.
	Fatal bool

	// Retryable steps get one additional attempt before counting as failed.
	Retryable bool

	Run func() error

	// Compensate undoes a completed Run during unwind. Optional.
	Compensate func() error
}

// Report collects the per-step outcome of one Execute call.
type Report struct {
	Completed []string
	Skipped   []string
	Unwound   []string
}

// Runner executes step sequences.
type Runner struct {
	dryRun bool
	logger zerolog.Logger
}

// NewRunner creates a Runner. In dry-run mode steps are announced but never
// executed.
func NewRunner(dryRun bool) *Runner {
	return &Runner{
		dryRun: dryRun,
		logger: logging.GetLogger("lifecycle"),
	}
}

// Execute runs the steps strictly in order. It returns the first fatal
// error after unwinding, or nil.
func (r *Runner) Execute(steps []Step) (*Report, error) {
	report := &Report{}

	for _, step := range steps {
		if r.dryRun {
			r.logger.Info().Str("step", step.Name).Msg("Dry run, step skipped")
			report.Skipped = append(report.Skipped, step.Name)
			continue
		}

		err := r.runStep(step)
		if err == nil {
			report.Completed = append(report.Completed, step.Name)
			continue
		}

		if !step.Fatal {
			r.logger.Warn().Err(err).Str("step", step.Name).Msg("Step failed, continuing")
			report.Skipped = append(report.Skipped, step.Name)
			continue
		}

		r.logger.Error().Err(err).Str("step", step.Name).Msg("Fatal step failure, unwinding")
		r.unwind(steps, report)
		return report, err
	}

	return report, nil
}

func (r *Runner) runStep(step Step) error {
	done := logging.LogOperationStart(r.logger, step.Name)
	defer done()

	err := step.Run()
	if err != nil && step.Retryable {
		r.logger.Warn().Err(err).Str("step", step.Name).Msg("Step failed, retrying once")
		err = step.Run()
	}
	return err
}

// unwind compensates completed steps in reverse order. Compensation is
// best-effort: a failing compensator is logged and the unwind moves on.
func (r *Runner) unwind(steps []Step, report *Report) {
	completed := make(map[string]bool, len(report.Completed))
	for _, name := range report.Completed {
		completed[name] = true
	}

	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if !completed[step.Name] || step.Compensate == nil {
			continue
		}
		if err := step.Compensate(); err != nil {
			r.logger.Warn().Err(err).Str("step", step.Name).Msg("Compensation failed")
			continue
		}
		report.Unwound = append(report.Unwound, step.Name)
	}
}
