// Package formula implements expression graphs over log-domain scalars with
// memoized evaluation and reverse mode differentiation.
//
// Graphs are built from parameter lookups, constants, n-ary sums and products
// and a few unary operations. A Root node aggregates per-example
// sub-expressions streamed from a Provider, so a training objective over a
// huge corpus never holds all examples in memory. All evaluation state lives
// in the nodes and in a Model, the explicit trainer context holding weights
// and gradients.
package formula

import "github.com/neurlang/logformula/logmath"

// Node is one vertex of an expression graph. The concrete kinds are
// *Constant, *Lookup, *Sum, *Product, *Exp, *Log, *Negate, *Divide, *Power
// and *Root.
type Node interface {
	base() *node
}

// node is the memo and adjoint state shared by every kind.
type node struct {
	value logmath.Scalar
	stamp uint64 // pass of value

	fp     uint32
	fstamp uint64 // pass of fp

	adjoint logmath.Scalar
	pending int
	walk    uint64 // backprop walk that last counted this node

	parents int
}

func (n *node) base() *node {
	return n
}

// Constant is a fixed value.
type Constant struct {
	node
	Value logmath.Scalar
}

// Lookup reads parameter Index of the model.
type Lookup struct {
	node
	Index int
}

// Sum is the ⊕ of its children.
type Sum struct {
	node
	Children []Node
}

// Product is the ⊗ of its children.
type Product struct {
	node
	Children []Node
}

// Exp is e raised to its child.
type Exp struct {
	node
	X Node
}

// Log is the natural log of its child. The log of a negative value has a NaN
// magnitude.
type Log struct {
	node
	X Node
}

// Negate flips the sign of its child.
type Negate struct {
	node
	X Node
}

// Divide is A ⊘ B.
type Divide struct {
	node
	A, B Node
}

// Power is X raised to the real exponent Y. A negative base needs an integer
// exponent, otherwise the magnitude is NaN.
type Power struct {
	node
	X, Y Node
}

func adopt(children ...Node) {
	for _, c := range children {
		if c != nil {
			c.base().parents++
		}
	}
}

// Const returns a constant holding x.
func Const(x float64) *Constant {
	return &Constant{Value: logmath.FromReal(x)}
}

// ConstScalar returns a constant holding s.
func ConstScalar(s logmath.Scalar) *Constant {
	return &Constant{Value: s}
}

// NewSum returns the sum of children.
func NewSum(children ...Node) *Sum {
	adopt(children...)
	return &Sum{Children: children}
}

// NewProduct returns the product of children.
func NewProduct(children ...Node) *Product {
	adopt(children...)
	return &Product{Children: children}
}

// NewExp returns e^x.
func NewExp(x Node) *Exp {
	adopt(x)
	return &Exp{X: x}
}

// NewLog returns log(x).
func NewLog(x Node) *Log {
	adopt(x)
	return &Log{X: x}
}

// NewNegate returns -x.
func NewNegate(x Node) *Negate {
	adopt(x)
	return &Negate{X: x}
}

// NewDivide returns a / b.
func NewDivide(a, b Node) *Divide {
	adopt(a, b)
	return &Divide{A: a, B: b}
}

// NewPower returns x^y.
func NewPower(x, y Node) *Power {
	adopt(x, y)
	return &Power{X: x, Y: y}
}

// Parents returns how many nodes were built with n as a child. Roots do not
// count as parents of the examples they stream.
func Parents(n Node) int {
	return n.base().parents
}

// children lists the materialized children of n.
func children(n Node) []Node {
	switch n := n.(type) {
	case *Sum:
		return n.Children
	case *Product:
		return n.Children
	case *Exp:
		return []Node{n.X}
	case *Log:
		return []Node{n.X}
	case *Negate:
		return []Node{n.X}
	case *Divide:
		return []Node{n.A, n.B}
	case *Power:
		return []Node{n.X, n.Y}
	}
	return nil
}
