package engine

import (
	"errors"
	"fmt"

	"github.com/san-kum/fieldsim/internal/stability"
)

var (
	// ErrInvalidConfig indicates a parameter outside its valid range.
	ErrInvalidConfig = errors.New("engine: invalid configuration")

	// ErrShapeMismatch indicates an initial field whose length does not match the grid.
	ErrShapeMismatch = errors.New("engine: field shape mismatch")

	// ErrHalted is returned by Step once a blow-up has been observed.
	ErrHalted = errors.New("engine: stepping halted after blow-up")

	// ErrBlownUp marks a run stopped by the stability monitor.
	ErrBlownUp = errors.New("engine: field blew up")
)

// BlowUpError carries the context of the first failed stability check.
type BlowUpError struct {
	Step    int
	Time    float64
	Verdict stability.Verdict
}

func (e *BlowUpError) Error() string {
	return fmt.Sprintf("%v at step %d (t=%.6g): %s", ErrBlownUp, e.Step, e.Time, e.Verdict.Reason)
}

func (e *BlowUpError) Unwrap() error { return ErrBlownUp }

// LastGoodStep is the final step whose state passed the stability check.
func (e *BlowUpError) LastGoodStep() int {
	if e.Step == 0 {
		return 0
	}
	return e.Step - 1
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidConfig}, args...)...)
}
