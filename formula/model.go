package formula

import (
	"github.com/neurlang/logformula/logmath"
	"github.com/neurlang/logformula/paramindex"
	"github.com/pkg/errors"
)

// ErrUnknownParameter is returned when a lookup reads past the weights.
var ErrUnknownParameter = errors.New("formula: unknown parameter")

// ErrUnknownFeature is returned when a frozen model resolves an unseen name.
var ErrUnknownFeature = errors.New("formula: unknown feature")

// Model is the trainer context: the parameter vector, its gradient
// accumulator and the index naming the parameters. A Model supports one
// in-flight evaluation and backprop pair at a time, and a graph must not be
// shared between models. Create models with NewModel or NewModelSize.
type Model struct {
	Weights  []float64
	Gradient []logmath.Scalar
	Index    *paramindex.Index

	lookups []*Lookup
	pass    uint64
	walk    uint64
	frozen  bool
}

// NewModel returns a model with one zero weight per name in index.
func NewModel(index *paramindex.Index) *Model {
	m := &Model{Index: index, pass: 1}
	m.Grow()
	return m
}

// NewModelSize returns an unnamed model with n zero weights.
func NewModelSize(n int) *Model {
	m := &Model{pass: 1}
	m.resize(n)
	return m
}

func (m *Model) resize(n int) {
	for len(m.Weights) < n {
		m.Weights = append(m.Weights, 0)
		m.Gradient = append(m.Gradient, logmath.Zero())
	}
}

// Grow extends the weights and gradient to cover every name in the index.
func (m *Model) Grow() {
	if m.Index != nil {
		m.resize(m.Index.Len())
	}
}

// Len returns the number of parameters.
func (m *Model) Len() int {
	return len(m.Weights)
}

// Freeze stops Resolve from adding names.
func (m *Model) Freeze() {
	m.frozen = true
}

// Lookup returns the shared leaf reading parameter i.
func (m *Model) Lookup(i int) *Lookup {
	for len(m.lookups) <= i {
		m.lookups = append(m.lookups, &Lookup{Index: len(m.lookups)})
	}
	return m.lookups[i]
}

// Resolve returns the leaf for a named feature, adding the name to the index
// unless the model is frozen.
func (m *Model) Resolve(name string) (Node, error) {
	if m.Index == nil {
		return nil, errors.Wrapf(ErrUnknownFeature, "%q: model has no index", name)
	}
	if id, ok := m.Index.Get(name); ok {
		return m.Lookup(id), nil
	}
	if m.frozen {
		return nil, errors.Wrapf(ErrUnknownFeature, "%q", name)
	}
	id := m.Index.GetOrCreate(name)
	m.Grow()
	return m.Lookup(id), nil
}

// ResolveID returns the leaf for parameter id.
func (m *Model) ResolveID(id int) (Node, error) {
	if id < 0 || (m.frozen && id >= len(m.Weights)) {
		return nil, errors.Wrapf(ErrUnknownParameter, "@%d", id)
	}
	m.resize(id + 1)
	return m.Lookup(id), nil
}

// Name returns the feature name of parameter id, if the model has an index.
func (m *Model) Name(id int) (string, bool) {
	if m.Index == nil {
		return "", false
	}
	return m.Index.Lookup(id)
}

// SetWeights copies params into the weights.
func (m *Model) SetWeights(params []float64) {
	m.resize(len(params))
	copy(m.Weights, params)
}

// BeginPass invalidates every memoized value and zeroes the gradient.
func (m *Model) BeginPass() {
	m.pass++
	for i := range m.Gradient {
		m.Gradient[i].SetZero()
	}
}

// RealGradient writes the gradient converted out of the log domain into dst,
// allocating it if too short.
func (m *Model) RealGradient(dst []float64) []float64 {
	if len(dst) < len(m.Gradient) {
		dst = make([]float64, len(m.Gradient))
	}
	for i, g := range m.Gradient {
		dst[i] = g.Exp()
	}
	return dst[:len(m.Gradient)]
}
