// Package learning implements the steppers that turn an objective value and
// gradient into the next parameter vector to evaluate.
package learning

import (
	"log"
	"os"
)

// SetLogger appends progress lines to filename instead of standard error.
func (h *HyperParameters) SetLogger(filename string) error {
	outfile, err := os.OpenFile(filename, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	h.l = log.New(outfile, "", log.LstdFlags)
	return nil
}

// SetLoggerTo replaces the logger.
func (h *HyperParameters) SetLoggerTo(l *log.Logger) {
	h.l = l
}

// Logger returns the progress logger.
func (h *HyperParameters) Logger() *log.Logger {
	if h.l == nil {
		h.l = log.New(os.Stderr, "", log.LstdFlags)
	}
	return h.l
}

// HyperParameters configure the steppers. Zero fields take the defaults
// noted beside them.
type HyperParameters struct {
	Corrections int // L-BFGS correction pairs kept, 6

	GradientThreshold float64 // converged once |g| <= GradientThreshold*max(|x|, 1), 1e-4
	StepTolerance     float64 // converged once |dx| <= StepTolerance*max(|x|, 1), machine epsilon

	LearningRate float64 // SGA step size, 0.001

	Retries int // step halvings tried after a non-finite objective, 8

	l *log.Logger
}

func (h *HyperParameters) defaults() {
	if h.Corrections <= 0 {
		h.Corrections = 6
	}
	if h.GradientThreshold <= 0 {
		h.GradientThreshold = 1e-4
	}
	if h.StepTolerance <= 0 {
		h.StepTolerance = MachineEpsilon()
	}
	if h.LearningRate <= 0 {
		h.LearningRate = 0.001
	}
	if h.Retries <= 0 {
		h.Retries = 8
	}
}
