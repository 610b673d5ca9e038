package trainer

import "github.com/pkg/errors"

import "github.com/neurlang/logformula/formula"
import "github.com/neurlang/logformula/logmath"

// Objective returns the objective value and its gradient at params. The
// returned gradient slice is reused by the next call.
type Objective func(params []float64) (float64, []float64, error)

// NewObjectiveFunc returns the objective computed by one evaluation and one
// backprop pass of node over model m. Log-domain adjoints are converted to
// real gradient components.
func NewObjectiveFunc(m *formula.Model, node formula.Node) Objective {
	var grad []float64
	return func(params []float64) (float64, []float64, error) {
		if len(params) != m.Len() {
			return 0, nil, errors.Errorf("trainer: %d parameters for a model of %d", len(params), m.Len())
		}
		m.SetWeights(params)
		m.BeginPass()
		value, err := m.Evaluate(node)
		if err != nil {
			return 0, nil, errors.Wrap(err, "evaluate")
		}
		if err := m.Backprop(node, logmath.One()); err != nil {
			return 0, nil, errors.Wrap(err, "backprop")
		}
		grad = m.RealGradient(grad)
		return value.Exp(), grad, nil
	}
}
