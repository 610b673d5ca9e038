package formula

import (
	"math"

	"github.com/neurlang/logformula/logmath"
	"github.com/pkg/errors"
)

// Backprop propagates adjoint from n down to the parameter lookups,
// accumulating into the model gradient. n must have been evaluated in the
// current pass.
//
// A node reached through several parents accumulates the adjoints of all its
// in-edges before propagating once. Examples streamed by a Root may share
// leaves with the rest of the graph but not interior nodes.
func (m *Model) Backprop(n Node, adjoint logmath.Scalar) error {
	if n == nil {
		return ErrUnknownNode
	}
	if n.base().stamp != m.pass {
		return errors.New("formula: backprop of a node not evaluated in this pass")
	}
	m.count(n)
	return m.send(n, adjoint)
}

// count sets pending on every node below n to its number of in-edges reachable
// from n, and the pending of n itself to 1.
func (m *Model) count(n Node) {
	m.walk++
	m.countNode(n)
}

func (m *Model) countNode(n Node) {
	b := n.base()
	if b.walk == m.walk {
		b.pending++
		return
	}
	b.walk = m.walk
	b.pending = 1
	b.adjoint = logmath.Zero()
	for _, c := range children(n) {
		m.countNode(c)
	}
}

// send delivers one in-edge worth of adjoint to n.
func (m *Model) send(n Node, adjoint logmath.Scalar) error {
	b := n.base()
	if l, ok := n.(*Lookup); ok {
		if l.Index < 0 || l.Index >= len(m.Gradient) {
			return errors.Wrapf(ErrUnknownParameter, "@%d", l.Index)
		}
		m.Gradient[l.Index].SetPlus(m.Gradient[l.Index], adjoint)
		return nil
	}
	b.adjoint.SetPlus(b.adjoint, adjoint)
	b.pending--
	if b.pending > 0 {
		return nil
	}
	adjoint = b.adjoint
	b.adjoint = logmath.Zero()
	return m.propagate(n, adjoint)
}

func (m *Model) propagate(n Node, adjoint logmath.Scalar) error {
	value := n.base().value
	switch n := n.(type) {
	case *Constant:
	case *Sum:
		for _, c := range n.Children {
			if err := m.send(c, adjoint); err != nil {
				return err
			}
		}
	case *Product:
		for _, c := range n.Children {
			if err := m.send(c, productAdjoint(value, c.base().value, adjoint)); err != nil {
				return err
			}
		}
	case *Exp:
		return m.send(n.X, logmath.Times(adjoint, value))
	case *Log:
		d, err := logmath.Divide(adjoint, n.X.base().value)
		if err != nil {
			return errors.Wrap(err, "log node at zero")
		}
		return m.send(n.X, d)
	case *Negate:
		return m.send(n.X, logmath.Negate(adjoint))
	case *Divide:
		b := n.B.base().value
		da, err := logmath.Divide(adjoint, b)
		if err != nil {
			return errors.Wrap(err, "divide node")
		}
		if err := m.send(n.A, da); err != nil {
			return err
		}
		db, _ := logmath.Divide(logmath.Times(adjoint, value), b)
		return m.send(n.B, logmath.Negate(db))
	case *Power:
		dx, dy, err := powerAdjoints(n.X.base().value, n.Y.base().value.Exp(), value, adjoint)
		if err != nil {
			return errors.Wrap(err, "power node")
		}
		if err := m.send(n.X, dx); err != nil {
			return err
		}
		return m.send(n.Y, dy)
	case *Root:
		return m.backward(n, adjoint)
	default:
		return errors.Wrapf(ErrUnknownNode, "%T", n)
	}
	return nil
}

// productAdjoint is the adjoint of a factor with value child in a product
// with value total. A zero product gives every factor the zero adjoint.
func productAdjoint(total, child, adjoint logmath.Scalar) logmath.Scalar {
	switch e := total.Element().(type) {
	case logmath.ZeroElement:
		return logmath.Zero()
	case logmath.NonZeroElement:
		q, err := logmath.Divide(e.Value, child)
		if err != nil {
			return logmath.Zero()
		}
		return logmath.Times(adjoint, q)
	}
	return logmath.Zero()
}

// powerAdjoints returns the adjoints of base x and exponent y of the power
// with value p: adjoint·y·x^(y-1) and adjoint·x^y·log x. The exponent gets
// the zero adjoint when x is zero, and a NaN one when x is negative.
func powerAdjoints(x logmath.Scalar, y float64, p, adjoint logmath.Scalar) (dx, dy logmath.Scalar, err error) {
	if x.IsZero() {
		switch {
		case y == 1:
			return adjoint, logmath.Zero(), nil
		case y > 1:
			return logmath.Zero(), logmath.Zero(), nil
		}
		return logmath.Zero(), logmath.Zero(), logmath.ErrDivideByZero
	}
	q, err := logmath.Divide(p, x)
	if err != nil {
		return dx, dy, err
	}
	dx = logmath.Times(adjoint, logmath.Times(logmath.FromReal(y), q))
	var logx = logmath.FromReal(x.Log)
	if x.Negative {
		logx = logmath.Scalar{Log: math.NaN()}
	}
	dy = logmath.Times(adjoint, logmath.Times(p, logx))
	return dx, dy, nil
}
