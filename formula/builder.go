package formula

import (
	"github.com/neurlang/logformula/logmath"
	"github.com/neurlang/logformula/semiring"
)

// builder is the semiring whose operations build graph nodes instead of
// computing values. Combining into a Sum or Product of the matching kind that
// has no parent appends to it in place, so folding N terms pairwise yields one
// flat node with N children rather than a chain of N-1 binary nodes.
type builder struct {
	product bool
}

// Plus returns the ⊕ operation building Sum nodes.
func Plus() semiring.Operation[Node] {
	return builder{}
}

// Times returns the ⊗ operation building Product nodes.
func Times() semiring.Operation[Node] {
	return builder{product: true}
}

// Builder returns the node building semiring.
func Builder() semiring.Semiring[Node] {
	return semiring.Semiring[Node]{Plus: Plus(), Times: Times()}
}

func (o builder) Identity() Node {
	if o.product {
		return ConstScalar(logmath.One())
	}
	return ConstScalar(logmath.Zero())
}

func (o builder) Zero() (Node, bool) {
	if o.product {
		return ConstScalar(logmath.Zero()), true
	}
	return nil, false
}

func (o builder) Fold(operands []Node) Node {
	return semiring.Fold[Node](o, operands)
}

func isConst(n Node, value logmath.Scalar) bool {
	c, ok := n.(*Constant)
	return ok && logmath.Compare(c.Value, value) == 0
}

func (o builder) Combine(a, b Node) Node {
	var identity = logmath.Zero()
	if o.product {
		identity = logmath.One()
		if isConst(a, logmath.Zero()) {
			return a
		}
		if isConst(b, logmath.Zero()) {
			return b
		}
	}
	if isConst(b, identity) {
		return a
	}
	if isConst(a, identity) {
		return b
	}
	if a == b {
		// adopting a node into itself would make a cycle
		if o.product {
			return NewProduct(a, b)
		}
		return NewSum(a, b)
	}
	if o.product {
		if p, ok := a.(*Product); ok && p.parents == 0 {
			adopt(b)
			p.Children = append(p.Children, b)
			return p
		}
		if p, ok := b.(*Product); ok && p.parents == 0 {
			adopt(a)
			p.Children = append(p.Children, a)
			return p
		}
		return NewProduct(a, b)
	}
	if s, ok := a.(*Sum); ok && s.parents == 0 {
		adopt(b)
		s.Children = append(s.Children, b)
		return s
	}
	if s, ok := b.(*Sum); ok && s.parents == 0 {
		adopt(a)
		s.Children = append(s.Children, a)
		return s
	}
	return NewSum(a, b)
}

// L2 returns the regularization penalty (lambda/2)·Σ w_i² over every
// parameter of m.
func L2(m *Model, lambda float64) Node {
	var plus = Plus()
	var acc = plus.Identity()
	var half = Const(lambda / 2)
	for i := 0; i < m.Len(); i++ {
		acc = plus.Combine(acc, NewProduct(half, m.Lookup(i), m.Lookup(i)))
	}
	return acc
}
