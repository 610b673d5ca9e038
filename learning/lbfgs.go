package learning

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/optimize"
)

// LBFGS is a limited memory quasi-Newton stepper. Directions come from
// gonum's L-BFGS two-loop recursion and step lengths from a More-Thuente line
// search satisfying the strong Wolfe conditions.
type LBFGS struct {
	h *HyperParameters

	method *optimize.LBFGS
	search *optimize.MoreThuente

	started bool
	x       []float64 // last accepted point
	f       float64
	g       []float64
	dir     []float64
	step    float64
	d0      float64 // directional derivative at x
	retries int

	Iterations int // accepted points
}

// NewLBFGS returns an L-BFGS stepper configured by h.
func NewLBFGS(h *HyperParameters) *LBFGS {
	if h == nil {
		h = new(HyperParameters)
	}
	h.defaults()
	return &LBFGS{
		h:      h,
		method: &optimize.LBFGS{Store: h.Corrections},
		search: &optimize.MoreThuente{},
	}
}

// Solution returns the last accepted point.
func (l *LBFGS) Solution() []float64 {
	return l.x
}

// Step implements Stepper.
func (l *LBFGS) Step(params []float64, f float64, grad []float64) (status Status, err error) {
	defer recovered(&err)

	if !l.started {
		if !finite(f, grad) {
			return Continue, errors.Wrap(ErrNotFinite, "at the starting point")
		}
		l.started = true
		return l.accept(params, f, grad, true)
	}

	if !finite(f, grad) {
		if l.retries >= l.h.Retries {
			return Continue, errors.Wrapf(ErrNotFinite, "after %d retries", l.retries)
		}
		l.retries++
		l.step /= 2
		l.h.Logger().Printf("objective not finite, retrying with step %g", l.step)
		l.search.Init(l.f, l.d0, l.step)
		l.trial(params)
		return Continue, nil
	}
	l.retries = 0

	op, step, err := l.search.Iterate(f, floats.Dot(grad, l.dir))
	if err != nil {
		return Continue, errors.Wrap(ErrLineSearch, err.Error())
	}
	if op&optimize.MajorIteration != 0 {
		return l.accept(params, f, grad, false)
	}
	l.step = step
	l.trial(params)
	return Continue, nil
}

// accept moves to params, tests convergence and starts the next line search.
func (l *LBFGS) accept(params []float64, f float64, grad []float64, first bool) (Status, error) {
	var dx = l.h.StepTolerance + 1
	if !first {
		dx = floats.Distance(params, l.x, 2)
		l.Iterations++
	}
	l.x = append(l.x[:0], params...)
	l.g = append(l.g[:0], grad...)
	l.f = f
	if len(l.dir) != len(params) {
		l.dir = make([]float64, len(params))
	}

	var s = scale(l.x)
	if floats.Norm(l.g, 2) <= l.h.GradientThreshold*s || dx <= l.h.StepTolerance*s {
		return Converged, nil
	}

	loc := &optimize.Location{X: l.x, F: l.f, Gradient: l.g}
	if first {
		l.step = l.method.InitDirection(loc, l.dir)
	} else {
		l.step = l.method.NextDirection(loc, l.dir)
	}
	l.d0 = floats.Dot(l.g, l.dir)
	if l.d0 >= 0 {
		// curvature history no longer gives descent, restart from steepest descent
		l.h.Logger().Printf("resetting L-BFGS history")
		l.step = l.method.InitDirection(loc, l.dir)
		l.d0 = floats.Dot(l.g, l.dir)
		if l.d0 >= 0 {
			return Converged, nil
		}
	}
	l.search.Init(l.f, l.d0, l.step)
	l.trial(params)
	return Continue, nil
}

// trial writes x + step*dir into params.
func (l *LBFGS) trial(params []float64) {
	floats.AddScaledTo(params, l.x, l.step, l.dir)
}
