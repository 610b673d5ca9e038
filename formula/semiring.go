package formula

import (
	"io"

	"github.com/neurlang/logformula/semiring"
	"github.com/pkg/errors"
)

// EvaluateIn evaluates the shape of n under another semiring: sums fold with
// ⊕, products and product roots with ⊗, sum roots with ⊕. Every other node is
// handed to leaf. Shared nodes are evaluated once, except that each streamed
// example is evaluated separately.
func EvaluateIn[V any](n Node, s semiring.Semiring[V], leaf func(Node) (V, error)) (V, error) {
	e := evaluator[V]{s: s, leaf: leaf, memo: make(map[Node]V)}
	return e.eval(n)
}

type evaluator[V any] struct {
	s    semiring.Semiring[V]
	leaf func(Node) (V, error)
	memo map[Node]V
}

func (e *evaluator[V]) fold(op semiring.Operation[V], cs []Node) (V, error) {
	acc := op.Identity()
	for _, c := range cs {
		v, err := e.eval(c)
		if err != nil {
			return acc, err
		}
		acc = op.Combine(acc, v)
	}
	return acc, nil
}

func (e *evaluator[V]) eval(n Node) (v V, err error) {
	if v, ok := e.memo[n]; ok {
		return v, nil
	}
	switch n := n.(type) {
	case *Sum:
		v, err = e.fold(e.s.Plus, n.Children)
	case *Product:
		v, err = e.fold(e.s.Times, n.Children)
	case *Root:
		v, err = e.root(n)
	default:
		v, err = e.leaf(n)
	}
	if err != nil {
		return v, err
	}
	e.memo[n] = v
	return v, nil
}

func (e *evaluator[V]) root(r *Root) (acc V, err error) {
	op := e.s.Plus
	if r.Op == AggregateProduct {
		op = e.s.Times
	}
	cursor, err := r.Provider.Open()
	if err != nil {
		return acc, errors.Wrap(err, "open provider")
	}
	defer cursor.Close()
	acc = op.Identity()
	for {
		example, err := cursor.Next()
		if err == io.EOF {
			return acc, nil
		}
		if err != nil {
			return acc, err
		}
		inner := evaluator[V]{s: e.s, leaf: e.leaf, memo: make(map[Node]V)}
		v, err := inner.eval(example)
		if err != nil {
			return acc, err
		}
		acc = op.Combine(acc, v)
	}
}
