package learning

import (
	"io"
	"log"
	"math"
	"testing"

	"github.com/pkg/errors"
)

func quiet() *HyperParameters {
	h := new(HyperParameters)
	h.SetLoggerTo(log.New(io.Discard, "", 0))
	return h
}

func minimize(s Stepper, x []float64, fg func([]float64) (float64, []float64), max int) (Status, int, error) {
	for i := 0; i < max; i++ {
		f, g := fg(x)
		status, err := s.Step(x, f, g)
		if err != nil || status == Converged {
			return status, i + 1, err
		}
	}
	return Continue, max, nil
}

// rosenbrock in two dimensions, minimum at (1, 1)
func rosenbrock(x []float64) (float64, []float64) {
	a, b := 1-x[0], x[1]-x[0]*x[0]
	return a*a + 100*b*b, []float64{-2*a - 400*x[0]*b, 200 * b}
}

func TestMachineEpsilon(t *testing.T) {
	eps := MachineEpsilon()
	if eps != math.Nextafter(1, 2)-1 {
		t.Errorf("MachineEpsilon() = %g", eps)
	}
}

func TestLBFGSQuadratic(t *testing.T) {
	target := []float64{3, -1, 0.5, 8}
	quadratic := func(x []float64) (float64, []float64) {
		var f float64
		g := make([]float64, len(x))
		for i := range x {
			d := x[i] - target[i]
			f += float64(i+1) * d * d
			g[i] = 2 * float64(i+1) * d
		}
		return f, g
	}
	s := NewLBFGS(quiet())
	x := make([]float64, 4)
	status, n, err := minimize(s, x, quadratic, 200)
	if err != nil || status != Converged {
		t.Fatalf("status %v after %d steps: %v", status, n, err)
	}
	for i, v := range s.Solution() {
		if math.Abs(v-target[i]) > 1e-4 {
			t.Errorf("x[%d] = %g, want %g", i, v, target[i])
		}
	}
}

func TestLBFGSRosenbrock(t *testing.T) {
	s := NewLBFGS(quiet())
	x := []float64{-1.2, 1}
	status, n, err := minimize(s, x, rosenbrock, 2000)
	if err != nil || status != Converged {
		t.Fatalf("status %v after %d steps: %v", status, n, err)
	}
	sol := s.Solution()
	if math.Abs(sol[0]-1) > 1e-3 || math.Abs(sol[1]-1) > 1e-3 {
		t.Errorf("solution %v", sol)
	}
	if s.Iterations == 0 || s.Iterations > n {
		t.Errorf("%d iterations in %d steps", s.Iterations, n)
	}
}

func TestLBFGSNotFiniteStart(t *testing.T) {
	s := NewLBFGS(quiet())
	if _, err := s.Step([]float64{0}, math.NaN(), []float64{1}); !errors.Is(err, ErrNotFinite) {
		t.Errorf("NaN start: %v", err)
	}
}

func TestLBFGSRetriesNotFinite(t *testing.T) {
	// steep wall beyond 5 the line search has to back away from
	walled := func(x []float64) (float64, []float64) {
		if x[0] > 5 {
			return math.Inf(1), []float64{math.Inf(1)}
		}
		d := x[0] - 4
		return d * d, []float64{2 * d}
	}
	s := NewLBFGS(quiet())
	x := []float64{-100}
	status, n, err := minimize(s, x, walled, 500)
	if err != nil || status != Converged {
		t.Fatalf("status %v after %d steps: %v", status, n, err)
	}
	if math.Abs(s.Solution()[0]-4) > 1e-3 {
		t.Errorf("solution %v", s.Solution())
	}
}

func TestLBFGSRecoversPanic(t *testing.T) {
	s := NewLBFGS(quiet())
	_, err := s.Step([]float64{1, 2, 3}, 1, []float64{1, 2})
	if !errors.Is(err, ErrStepperPanic) {
		t.Errorf("mismatched gradient: %v", err)
	}
}

func TestSGA(t *testing.T) {
	h := quiet()
	h.LearningRate = 0.1
	s := NewSGA(h)
	x := []float64{5}
	status, _, err := minimize(s, x, func(x []float64) (float64, []float64) {
		return x[0] * x[0], []float64{2 * x[0]}
	}, 1000)
	if err != nil || status != Converged {
		t.Fatalf("status %v: %v", status, err)
	}
	if math.Abs(s.Solution()[0]) > 1e-3 {
		t.Errorf("solution %v", s.Solution())
	}
}

func TestSGABacksOff(t *testing.T) {
	h := quiet()
	s := NewSGA(h)
	x := []float64{1}
	s.Step(x, 1, []float64{2})
	x[0] = 7
	if _, err := s.Step(x, math.Inf(1), []float64{0}); err != nil {
		t.Fatal(err)
	}
	if x[0] != 1 || h.LearningRate != 0.0005 {
		t.Errorf("after backoff x = %v, rate %g", x, h.LearningRate)
	}
}

func TestDefaults(t *testing.T) {
	h := new(HyperParameters)
	h.defaults()
	if h.Corrections != 6 || h.GradientThreshold != 1e-4 || h.StepTolerance != MachineEpsilon() || h.LearningRate != 0.001 {
		t.Errorf("defaults %+v", h)
	}
	if h.Logger() == nil {
		t.Errorf("nil default logger")
	}
}
