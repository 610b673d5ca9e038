package trainer

import (
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurlang/logformula/datasets"
	"github.com/neurlang/logformula/formula"
	"github.com/neurlang/logformula/learning"
	"github.com/pkg/errors"
)

var quiet = log.New(io.Discard, "", 0)

// pairs returns the objective -log(w0w1 + w1w2 + w0w2) + (λ/2)|w|² with
// λ = 2/3, minimized at w = (1, 1, 1) with value 1 - log 3.
func pairs() (*formula.Model, Objective) {
	m := formula.NewModelSize(3)
	examples := datasets.Memory{
		formula.NewProduct(m.Lookup(0), m.Lookup(1)),
		formula.NewProduct(m.Lookup(1), m.Lookup(2)),
		formula.NewProduct(m.Lookup(0), m.Lookup(2)),
	}
	root := formula.NewRoot(formula.AggregateSum, examples)
	objective := formula.NewSum(formula.NewNegate(formula.NewLog(root)), formula.L2(m, 2.0/3))
	return m, NewObjectiveFunc(m, objective)
}

var optimum = 1 - math.Log(3)

func stepper() learning.Stepper {
	h := new(learning.HyperParameters)
	h.SetLoggerTo(quiet)
	return learning.NewLBFGS(h)
}

func checkOptimum(t *testing.T, res Result) {
	t.Helper()
	if math.Abs(res.Value-optimum) > 1e-3 {
		t.Errorf("objective %g, want %g", res.Value, optimum)
	}
	for i, p := range res.Params {
		if math.Abs(p-1) > 1e-3 {
			t.Errorf("w%d = %g, want 1", i, p)
		}
	}
}

func TestObjectiveFunc(t *testing.T) {
	_, f := pairs()
	value, grad, err := f([]float64{1, 1, 1})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(value-optimum) > 1e-12 {
		t.Errorf("objective at the optimum = %g", value)
	}
	for i, g := range grad {
		if math.Abs(g) > 1e-12 {
			t.Errorf("gradient[%d] at the optimum = %g", i, g)
		}
	}
	value, grad, _ = f([]float64{0.5, 0.5, 0.5})
	if math.Abs(value-(-math.Log(0.75)+0.25)) > 1e-12 || math.Abs(grad[0]+1) > 1e-12 {
		t.Errorf("objective at 0.5 = %g, gradient %v", value, grad)
	}
	if _, _, err := f([]float64{1}); err == nil {
		t.Errorf("short parameter vector accepted")
	}
}

func TestEndToEnd(t *testing.T) {
	_, f := pairs()
	prefix := filepath.Join(t.TempDir(), "model")
	c, err := NewCheckpointer(prefix)
	if err != nil {
		t.Fatal(err)
	}
	res, err := Train(f, stepper(), []float64{0.5, 0.5, 0.5}, c, Settings{SaveEveryK: 2, Logger: quiet})
	if err != nil || res.StepperErr != nil {
		t.Fatalf("Train: %v, %v", err, res.StepperErr)
	}
	if res.Status != learning.Converged {
		t.Errorf("status %v after %d iterations", res.Status, res.Iterations)
	}
	checkOptimum(t, res)

	iteration, path, err := c.Latest()
	if err != nil || iteration != res.Iterations {
		t.Fatalf("Latest() = %d, %s, %v", iteration, path, err)
	}
	saved, err := ReadCheckpoint(path)
	if err != nil {
		t.Fatal(err)
	}
	for i := range saved {
		if saved[i] != res.Params[i] {
			t.Errorf("checkpoint %v, result %v", saved, res.Params)
		}
	}
	if res.Iterations >= 2 {
		if _, err := os.Stat(c.Path(2)); err != nil {
			t.Errorf("periodic checkpoint: %v", err)
		}
	}
}

func TestResumeDeterminism(t *testing.T) {
	_, f := pairs()
	whole, err := Train(f, stepper(), []float64{0.5, 0.5, 0.5}, nil, Settings{Logger: quiet})
	if err != nil {
		t.Fatal(err)
	}

	prefix := filepath.Join(t.TempDir(), "model")
	c, err := NewCheckpointer(prefix)
	if err != nil {
		t.Fatal(err)
	}
	_, f = pairs()
	first, err := Train(f, stepper(), []float64{0.5, 0.5, 0.5}, c, Settings{MaxIterations: 3, SaveEveryK: 2, Logger: quiet})
	if err != nil || first.Iterations != 3 {
		t.Fatalf("interrupted run: %d iterations, %v", first.Iterations, err)
	}

	c, err = NewCheckpointer(prefix)
	if err != nil {
		t.Fatal(err)
	}
	iteration, params, err := Resume(c)
	if err != nil || iteration != 3 || len(params) != 3 {
		t.Fatalf("Resume() = %d, %v, %v", iteration, params, err)
	}
	_, f = pairs()
	resumed, err := Train(f, stepper(), params, c, Settings{StartIteration: iteration, Logger: quiet})
	if err != nil || resumed.StepperErr != nil {
		t.Fatalf("resumed run: %v, %v", err, resumed.StepperErr)
	}
	if resumed.Iterations <= 3 {
		t.Errorf("resumed run numbered from %d", resumed.Iterations)
	}
	if math.Abs(resumed.Value-whole.Value) > 1e-6 {
		t.Errorf("resumed objective %g, uninterrupted %g", resumed.Value, whole.Value)
	}
	checkOptimum(t, resumed)
}

func TestUnwritableDestination(t *testing.T) {
	if _, err := NewCheckpointer(filepath.Join(t.TempDir(), "missing", "model")); err == nil {
		t.Errorf("checkpointer into a missing directory")
	}
	if _, err := NewCheckpointer(t.TempDir() + string(filepath.Separator)); err == nil {
		t.Errorf("checkpointer with a directory prefix")
	}
}

// failing steps downhill and fails on call n, by panicking when panics is
// set.
type failing struct {
	n      int
	calls  int
	panics bool
	counts map[int]int
}

func (s *failing) Step(params []float64, f float64, grad []float64) (learning.Status, error) {
	s.calls++
	if s.calls == s.n {
		if s.panics {
			s.counts[s.calls]++
		}
		return learning.Continue, errors.New("solver blew up")
	}
	for i := range params {
		params[i] -= 0.1 * grad[i]
	}
	return learning.Continue, nil
}

func TestStepperErrorKeepsBest(t *testing.T) {
	_, f := pairs()
	c, err := NewCheckpointer(filepath.Join(t.TempDir(), "model"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Train(f, &failing{n: 3}, []float64{0.5, 0.5, 0.5}, c, Settings{Logger: quiet})
	if err != nil {
		t.Fatalf("stepper failure escalated: %v", err)
	}
	if res.StepperErr == nil || res.Iterations != 3 {
		t.Errorf("StepperErr %v at iteration %d", res.StepperErr, res.Iterations)
	}
	saved, err := ReadCheckpoint(c.Path(3))
	if err != nil {
		t.Fatalf("final checkpoint: %v", err)
	}
	if saved[0] <= 0.5 || saved[0] != res.Params[0] {
		t.Errorf("final checkpoint %v, best %v", saved, res.Params)
	}
}

func TestStepperPanicKeepsBest(t *testing.T) {
	_, f := pairs()
	c, err := NewCheckpointer(filepath.Join(t.TempDir(), "model"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Train(f, &failing{n: 2, panics: true}, []float64{0.5, 0.5, 0.5}, c, Settings{Logger: quiet})
	if err != nil {
		t.Fatalf("stepper panic escalated: %v", err)
	}
	if !errors.Is(res.StepperErr, learning.ErrStepperPanic) || res.Iterations != 2 {
		t.Errorf("StepperErr %v at iteration %d", res.StepperErr, res.Iterations)
	}
	saved, err := ReadCheckpoint(c.Path(2))
	if err != nil {
		t.Fatalf("final checkpoint: %v", err)
	}
	if saved[0] <= 0.5 || saved[0] != res.Params[0] {
		t.Errorf("final checkpoint %v, best %v", saved, res.Params)
	}
}

func TestObjectiveErrorCheckpoints(t *testing.T) {
	_, good := pairs()
	calls := 0
	f := func(params []float64) (float64, []float64, error) {
		calls++
		if calls == 2 {
			return 0, nil, formula.ErrNondeterministicProvider
		}
		return good(params)
	}
	c, err := NewCheckpointer(filepath.Join(t.TempDir(), "model"))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Train(f, stepper(), []float64{0.5, 0.5, 0.5}, c, Settings{Logger: quiet})
	if !errors.Is(err, formula.ErrNondeterministicProvider) {
		t.Errorf("Train: %v", err)
	}
	if _, err := ReadCheckpoint(c.Path(res.Iterations)); err != nil || res.Iterations != 1 {
		t.Errorf("final checkpoint at %d: %v", res.Iterations, err)
	}
}

func TestCheckpointNeverOverwrites(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "model")
	c, err := NewCheckpointer(prefix)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := c.Write(3, []float64{1, 2.5, -1e-300}); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Write(3, []float64{9}); err != nil {
		t.Errorf("repeated write of the same iteration: %v", err)
	}
	other, _ := NewCheckpointer(prefix)
	if _, err := other.Write(3, []float64{9}); !errors.Is(err, ErrCheckpointExists) {
		t.Errorf("overwrite: %v", err)
	}
	params, err := ReadCheckpoint(c.Path(3))
	if err != nil || len(params) != 3 || params[1] != 2.5 || params[2] != -1e-300 {
		t.Errorf("ReadCheckpoint = %v, %v", params, err)
	}
	if filepath.Base(c.Path(3)) != "model_00003" {
		t.Errorf("Path(3) = %s", c.Path(3))
	}
}

func TestLatest(t *testing.T) {
	prefix := filepath.Join(t.TempDir(), "model")
	c, _ := NewCheckpointer(prefix)
	if _, _, err := Resume(c); !errors.Is(err, ErrNoCheckpoint) {
		t.Errorf("Resume without checkpoints: %v", err)
	}
	for _, it := range []int{10, 120000, 30} {
		c.Write(it, []float64{float64(it)})
	}
	os.WriteFile(prefix+"_00999.tmp123", []byte("1\n"), 0644)
	iteration, params, err := Resume(c)
	if err != nil || iteration != 120000 || params[0] != 120000 {
		t.Errorf("Resume() = %d, %v, %v", iteration, params, err)
	}
}
