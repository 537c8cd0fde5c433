package lifecycle

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecuteRunsInOrder(t *testing.T) {
	var order []string
	step := func(name string) Step {
		return Step{Name: name, Run: func() error {
			order = append(order, name)
			return nil
		}}
	}

	report, err := NewRunner(false).Execute([]Step{step("one"), step("two"), step("three")})
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two", "three"}, order)
	assert.Equal(t, []string{"one", "two", "three"}, report.Completed)
}

func TestExecuteNonFatalFailureContinues(t *testing.T) {
	var order []string
	steps := []Step{
		{Name: "ok", Run: func() error { order = append(order, "ok"); return nil }},
		{Name: "broken", Run: func() error { return fmt.Errorf("collaborator down") }},
		{Name: "after", Run: func() error { order = append(order, "after"); return nil }},
	}

	report, err := NewRunner(false).Execute(steps)
	require.NoError(t, err, "non-fatal failures are not surfaced as errors")
	assert.Equal(t, []string{"ok", "after"}, order)
	assert.Equal(t, []string{"broken"}, report.Skipped)
}

func TestExecuteFatalFailureUnwindsReverse(t *testing.T) {
	var unwound []string
	compensated := func(name string) Step {
		return Step{
			Name:       name,
			Run:        func() error { return nil },
			Compensate: func() error { unwound = append(unwound, name); return nil },
		}
	}

	steps := []Step{
		compensated("first"),
		compensated("second"),
		{Name: "fatal", Fatal: true, Run: func() error { return fmt.Errorf("boom") }},
		{Name: "never", Run: func() error { t.Fatal("step after fatal must not run"); return nil }},
	}

	report, err := NewRunner(false).Execute(steps)
	require.Error(t, err)
	assert.Equal(t, []string{"second", "first"}, unwound, "compensation runs in reverse completion order")
	assert.Equal(t, []string{"second", "first"}, report.Unwound)
}

func TestExecuteUnwindSkipsFailedCompensation(t *testing.T) {
	var unwound []string
	steps := []Step{
		{
			Name:       "first",
			Run:        func() error { return nil },
			Compensate: func() error { unwound = append(unwound, "first"); return nil },
		},
		{
			Name:       "second",
			Run:        func() error { return nil },
			Compensate: func() error { return fmt.Errorf("cannot undo") },
		},
		{Name: "fatal", Fatal: true, Run: func() error { return fmt.Errorf("boom") }},
	}

	report, err := NewRunner(false).Execute(steps)
	require.Error(t, err)
	// the failing compensator does not stop the unwind
	assert.Equal(t, []string{"first"}, unwound)
	assert.Equal(t, []string{"first"}, report.Unwound)
}

func TestExecuteRetryable(t *testing.T) {
	attempts := 0
	steps := []Step{{
		Name:      "flaky",
		Retryable: true,
		Fatal:     true,
		Run: func() error {
			attempts++
			if attempts < 2 {
				return fmt.Errorf("transient")
			}
			return nil
		},
	}}

	report, err := NewRunner(false).Execute(steps)
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []string{"flaky"}, report.Completed)
}

func TestExecuteRetryableGivesUpAfterSecondFailure(t *testing.T) {
	attempts := 0
	steps := []Step{{
		Name:      "flaky",
		Retryable: true,
		Fatal:     true,
		Run: func() error {
			attempts++
			return fmt.Errorf("still broken")
		},
	}}

	_, err := NewRunner(false).Execute(steps)
	require.Error(t, err)
	assert.Equal(t, 2, attempts, "exactly one retry")
}

func TestExecuteDryRun(t *testing.T) {
	steps := []Step{{
		Name: "mutating",
		Run:  func() error { t.Fatal("dry run must not execute steps"); return nil },
	}}

	report, err := NewRunner(true).Execute(steps)
	require.NoError(t, err)
	assert.Empty(t, report.Completed)
	assert.Equal(t, []string{"mutating"}, report.Skipped)
}
