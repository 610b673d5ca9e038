package learning

import "gonum.org/v1/gonum/floats"

// SGA takes fixed size steps against the gradient of the minimized objective,
// which is gradient ascent on the log-likelihood it negates.
type SGA struct {
	h *HyperParameters

	best  []float64
	bestF float64
}

// NewSGA returns a fixed rate stepper configured by h.
func NewSGA(h *HyperParameters) *SGA {
	if h == nil {
		h = new(HyperParameters)
	}
	h.defaults()
	return &SGA{h: h}
}

// Solution returns the parameters with the lowest objective seen.
func (s *SGA) Solution() []float64 {
	return s.best
}

// Step implements Stepper.
func (s *SGA) Step(params []float64, f float64, grad []float64) (status Status, err error) {
	defer recovered(&err)
	if !finite(f, grad) {
		if s.best == nil {
			return Continue, ErrNotFinite
		}
		// back off to the best point with a smaller rate
		s.h.LearningRate /= 2
		s.h.Logger().Printf("objective not finite, learning rate now %g", s.h.LearningRate)
		copy(params, s.best)
		return Continue, nil
	}
	if s.best == nil || f < s.bestF {
		s.best = append(s.best[:0], params...)
		s.bestF = f
	}
	if floats.Norm(grad, 2) <= s.h.GradientThreshold*scale(params) {
		return Converged, nil
	}
	floats.AddScaled(params, -s.h.LearningRate, grad)
	return Continue, nil
}
