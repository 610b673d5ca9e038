package formula

import (
	"math"

	"github.com/neurlang/logformula/logmath"
	"github.com/pkg/errors"
)

// ErrUnknownNode is returned for a node of no known kind, including nil.
var ErrUnknownNode = errors.New("formula: unknown node kind")

// Evaluate returns the value of n at the current weights. Values are memoized
// until the next BeginPass.
func (m *Model) Evaluate(n Node) (logmath.Scalar, error) {
	return m.eval(n)
}

func (m *Model) eval(n Node) (logmath.Scalar, error) {
	if n == nil {
		return logmath.Zero(), ErrUnknownNode
	}
	b := n.base()
	if b.stamp == m.pass {
		return b.value, nil
	}
	var value logmath.Scalar
	switch n := n.(type) {
	case *Constant:
		value = n.Value
	case *Lookup:
		if n.Index < 0 || n.Index >= len(m.Weights) {
			return logmath.Zero(), errors.Wrapf(ErrUnknownParameter, "@%d of %d", n.Index, len(m.Weights))
		}
		value = logmath.FromReal(m.Weights[n.Index])
	case *Sum:
		value = logmath.Zero()
		for _, c := range n.Children {
			v, err := m.eval(c)
			if err != nil {
				return value, err
			}
			value.SetPlus(value, v)
		}
	case *Product:
		value = logmath.One()
		for _, c := range n.Children {
			v, err := m.eval(c)
			if err != nil {
				return value, err
			}
			value.SetTimes(value, v)
		}
	case *Exp:
		v, err := m.eval(n.X)
		if err != nil {
			return v, err
		}
		value = logmath.FromLog(v.Exp())
	case *Log:
		v, err := m.eval(n.X)
		if err != nil {
			return v, err
		}
		if v.Negative && !v.IsZero() {
			value = logmath.Scalar{Log: math.NaN()}
		} else {
			value = logmath.FromReal(v.Log)
		}
	case *Negate:
		v, err := m.eval(n.X)
		if err != nil {
			return v, err
		}
		value = logmath.Negate(v)
	case *Divide:
		a, err := m.eval(n.A)
		if err != nil {
			return a, err
		}
		d, err := m.eval(n.B)
		if err != nil {
			return d, err
		}
		if err := value.SetDivide(a, d); err != nil {
			return value, errors.Wrap(err, "divide node")
		}
	case *Power:
		x, err := m.eval(n.X)
		if err != nil {
			return x, err
		}
		y, err := m.eval(n.Y)
		if err != nil {
			return y, err
		}
		if value, err = power(x, y.Exp()); err != nil {
			return value, errors.Wrap(err, "power node")
		}
	case *Root:
		var err error
		value, err = m.forward(n)
		if err != nil {
			return value, err
		}
	default:
		return logmath.Zero(), errors.Wrapf(ErrUnknownNode, "%T", n)
	}
	b.value = value
	b.stamp = m.pass
	return value, nil
}

// power returns x^y. Zero to a negative power is a division by zero.
func power(x logmath.Scalar, y float64) (logmath.Scalar, error) {
	if x.IsZero() {
		switch {
		case y > 0:
			return logmath.Zero(), nil
		case y == 0:
			return logmath.One(), nil
		}
		return logmath.Zero(), logmath.ErrDivideByZero
	}
	p := logmath.Scalar{Log: y * x.Log}
	if x.Negative {
		if y != math.Trunc(y) {
			return logmath.Scalar{Log: math.NaN()}, nil
		}
		p.Negative = math.Mod(y, 2) != 0
	}
	return p, nil
}
