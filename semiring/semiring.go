// Package semiring implements pairwise and n-ary combinators with identity
// elements, and the semirings built from them.
//
// A Semiring bundles two operations, Plus (⊕) and Times (⊗). The same graph
// shape evaluated under different semirings yields a total probability
// (Log), a best derivation score (MaxTimes, MaxPlus) or the best derivation
// itself (MaxPathSemiring).
package semiring

// Operation is an associative binary operation with an identity element.
type Operation[V any] interface {
	// Combine returns a op b.
	Combine(a, b V) V

	// Fold combines all operands, starting from the identity.
	Fold(operands []V) V

	// Identity returns e such that Combine(a, e) == a for all a.
	Identity() V

	// Zero returns the absorbing element, if the operation has one.
	Zero() (V, bool)
}

// Semiring pairs an additive and a multiplicative operation.
type Semiring[V any] struct {
	Plus  Operation[V]
	Times Operation[V]
}

// Add returns a ⊕ b.
func (s Semiring[V]) Add(a, b V) V {
	return s.Plus.Combine(a, b)
}

// Mul returns a ⊗ b.
func (s Semiring[V]) Mul(a, b V) V {
	return s.Times.Combine(a, b)
}

// ZeroElement returns the ⊕ identity. Over the values the semiring is meant
// for it is also the ⊗ annihilator; infinities outside that range, such as
// +Inf under MaxPlus, are not annihilated.
func (s Semiring[V]) ZeroElement() V {
	return s.Plus.Identity()
}

// OneElement returns the ⊗ identity.
func (s Semiring[V]) OneElement() V {
	return s.Times.Identity()
}

// Fold combines operands left to right with op, starting from its identity.
func Fold[V any](op Operation[V], operands []V) V {
	return FoldFrom(op, op.Identity(), operands)
}

// FoldFrom combines operands left to right onto acc.
func FoldFrom[V any](op Operation[V], acc V, operands []V) V {
	for _, v := range operands {
		acc = op.Combine(acc, v)
	}
	return acc
}

// binary adapts a plain function and constants into an Operation.
type binary[V any] struct {
	combine  func(a, b V) V
	identity V
	zero     V
	hasZero  bool
}

func (o binary[V]) Combine(a, b V) V {
	return o.combine(a, b)
}

func (o binary[V]) Fold(operands []V) V {
	return Fold[V](o, operands)
}

func (o binary[V]) Identity() V {
	return o.identity
}

func (o binary[V]) Zero() (V, bool) {
	return o.zero, o.hasZero
}

// NewOperation builds an Operation from a combining function and its identity.
func NewOperation[V any](combine func(a, b V) V, identity V) Operation[V] {
	return binary[V]{combine: combine, identity: identity}
}

// NewOperationWithZero is NewOperation with an absorbing element.
func NewOperationWithZero[V any](combine func(a, b V) V, identity, zero V) Operation[V] {
	return binary[V]{combine: combine, identity: identity, zero: zero, hasZero: true}
}
