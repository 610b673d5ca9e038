package trainer

import (
	"log"
	"math"
	"os"
	"time"

	"github.com/neurlang/logformula/learning"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Settings bound the training loop. Zero fields take the defaults noted
// beside them.
type Settings struct {
	MaxIterations  int // cap on the iteration number, 2000
	SaveEveryK     int // checkpoint period in iterations, 10
	StartIteration int // iteration of the checkpoint being resumed, 0

	Logger *log.Logger // standard error
}

func (s *Settings) defaults() {
	if s.MaxIterations <= 0 {
		s.MaxIterations = 2000
	}
	if s.SaveEveryK <= 0 {
		s.SaveEveryK = 10
	}
	if s.Logger == nil {
		s.Logger = log.New(os.Stderr, "", log.LstdFlags)
	}
}

// Result is the outcome of a training run.
type Result struct {
	Params     []float64 // lowest objective parameters evaluated
	Value      float64   // objective at Params
	Iterations int       // number of the last iteration
	Status     learning.Status

	// StepperErr is the stepper failure that ended training, if any.
	StepperErr error
}

// Train minimizes objective starting from params. Each iteration evaluates
// the objective once and hands it to the stepper. Every SaveEveryK iterations
// the best parameters so far are checkpointed, and a final checkpoint is
// written however the loop ends. checkpoints may be nil.
//
// Stepper failures, panics included, stop training and are reported in Result.StepperErr.
// Objective and checkpoint failures are returned as errors, after the final
// checkpoint attempt.
func Train(objective Objective, stepper learning.Stepper, params []float64, checkpoints *Checkpointer, settings Settings) (res Result, err error) {
	settings.defaults()
	l := settings.Logger

	var current = append([]float64(nil), params...)
	res.Params = append([]float64(nil), params...)
	res.Value = math.Inf(1)
	res.Iterations = settings.StartIteration

	defer func() {
		if checkpoints == nil {
			return
		}
		path, cerr := checkpoints.Write(res.Iterations, res.Params)
		if cerr != nil {
			l.Printf("final checkpoint: %v", cerr)
			if err == nil {
				err = errors.Wrap(cerr, "final checkpoint")
			}
			return
		}
		l.Printf("final checkpoint %s", path)
	}()

	for res.Iterations < settings.MaxIterations {
		start := time.Now()
		f, grad, oerr := objective(current)
		if oerr != nil {
			return res, errors.Wrapf(oerr, "iteration %d", res.Iterations+1)
		}
		res.Iterations++
		if f < res.Value {
			res.Value = f
			copy(res.Params, current)
		}
		l.Printf("iteration %d objective %g gradient norm %g (%v)", res.Iterations, f, floats.Norm(grad, 2), time.Since(start))

		status, serr := learning.SafeStep(stepper, current, f, grad)
		if serr != nil {
			l.Printf("stepper failed at iteration %d, keeping the best parameters: %v", res.Iterations, serr)
			res.StepperErr = serr
			return res, nil
		}
		res.Status = status
		if status == learning.Converged {
			l.Printf("converged at iteration %d", res.Iterations)
			return res, nil
		}
		if checkpoints != nil && res.Iterations%settings.SaveEveryK == 0 {
			path, cerr := checkpoints.Write(res.Iterations, res.Params)
			if cerr != nil {
				return res, errors.Wrapf(cerr, "checkpoint at iteration %d", res.Iterations)
			}
			l.Printf("checkpoint %s", path)
		}
	}
	l.Printf("reached %d iterations", res.Iterations)
	return res, nil
}
