package learning

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// ErrNotFinite is returned when the objective stays non-finite after every
// retry.
var ErrNotFinite = errors.New("learning: objective is not finite")

// ErrStepperPanic wraps a panic raised inside a stepper.
var ErrStepperPanic = errors.New("learning: stepper panicked")

// ErrLineSearch is returned when the line search cannot make progress.
var ErrLineSearch = errors.New("learning: line search failed")

// Status is the outcome of one step.
type Status byte

const (
	// Continue asks for the objective at the updated parameters.
	Continue Status = iota
	// Converged means the parameters satisfy the convergence test.
	Converged
)

func (s Status) String() string {
	if s == Converged {
		return "converged"
	}
	return "continue"
}

// Stepper minimizes an objective by reverse communication: the caller
// evaluates, the stepper proposes.
type Stepper interface {
	// Step consumes the objective value f and gradient grad at params and
	// overwrites params with the next point to evaluate.
	Step(params []float64, f float64, grad []float64) (Status, error)
}

func finite(f float64, grad []float64) bool {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return false
	}
	for _, g := range grad {
		if math.IsNaN(g) || math.IsInf(g, 0) {
			return false
		}
	}
	return true
}

// scale returns max(|x|, 1).
func scale(x []float64) float64 {
	return math.Max(floats.Norm(x, 2), 1)
}

// SafeStep calls s.Step, converting a panic into ErrStepperPanic.
func SafeStep(s Stepper, params []float64, f float64, grad []float64) (status Status, err error) {
	defer recovered(&err)
	return s.Step(params, f, grad)
}

// recovered converts a panic into ErrStepperPanic.
func recovered(err *error) {
	if r := recover(); r != nil {
		*err = errors.Wrapf(ErrStepperPanic, "%v", r)
	}
}
