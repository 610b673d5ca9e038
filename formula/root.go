package formula

import (
	"io"
	"math"

	"github.com/neurlang/logformula/hash"
	"github.com/neurlang/logformula/logmath"
	"github.com/pkg/errors"
)

// ErrNondeterministicProvider is returned when a provider streams a different
// sequence of examples on the backward traversal than on the forward one.
var ErrNondeterministicProvider = errors.New("formula: provider is not deterministic")

// Cursor streams examples. Next returns io.EOF after the last example.
type Cursor interface {
	Next() (Node, error)
	Close() error
}

// Provider is a restartable example sequence. Every cursor it opens must
// yield structurally identical examples in the same order.
type Provider interface {
	Open() (Cursor, error)
}

// Aggregate selects how a Root combines its examples.
type Aggregate byte

const (
	// AggregateSum combines examples with ⊕.
	AggregateSum Aggregate = iota
	// AggregateProduct combines examples with ⊗.
	AggregateProduct
)

// Root aggregates the examples of a provider without retaining them. The
// provider is streamed once by Evaluate and once more by Backprop.
type Root struct {
	node
	Op       Aggregate
	Provider Provider

	count  uint64
	digest [32]byte
}

// NewRoot returns a root aggregating the examples of provider with op.
func NewRoot(op Aggregate, provider Provider) *Root {
	return &Root{Op: op, Provider: provider}
}

// Count returns the number of examples seen by the last evaluation.
func (r *Root) Count() uint64 {
	return r.count
}

func (m *Model) forward(r *Root) (value logmath.Scalar, err error) {
	cursor, err := r.Provider.Open()
	if err != nil {
		return value, errors.Wrap(err, "open provider")
	}
	defer func() {
		if cerr := cursor.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close provider")
		}
	}()
	value = logmath.Zero()
	if r.Op == AggregateProduct {
		value = logmath.One()
	}
	var digest = hash.NewDigest()
	for {
		example, err := cursor.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return value, errors.Wrapf(err, "example %d", digest.Len())
		}
		v, err := m.eval(example)
		if err != nil {
			return value, errors.Wrapf(err, "example %d", digest.Len())
		}
		if r.Op == AggregateProduct {
			value.SetTimes(value, v)
		} else {
			value.SetPlus(value, v)
		}
		digest.PutUint32(m.fingerprint(example))
	}
	r.count = digest.Len()
	r.digest = digest.Sum()
	return value, nil
}

func (m *Model) backward(r *Root, adjoint logmath.Scalar) (err error) {
	cursor, err := r.Provider.Open()
	if err != nil {
		return errors.Wrap(err, "reopen provider")
	}
	defer func() {
		if cerr := cursor.Close(); err == nil && cerr != nil {
			err = errors.Wrap(cerr, "close provider")
		}
	}()
	var total = r.value
	var digest = hash.NewDigest()
	for {
		example, err := cursor.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrapf(err, "example %d", digest.Len())
		}
		if digest.Len() == r.count {
			return errors.Wrapf(ErrNondeterministicProvider, "more than %d examples on the backward pass", r.count)
		}
		v, err := m.eval(example)
		if err != nil {
			return errors.Wrapf(err, "example %d", digest.Len())
		}
		digest.PutUint32(m.fingerprint(example))

		var childAdjoint = adjoint
		if r.Op == AggregateProduct {
			childAdjoint = productAdjoint(total, v, adjoint)
		}
		m.count(example)
		if err := m.send(example, childAdjoint); err != nil {
			return errors.Wrapf(err, "example %d", digest.Len()-1)
		}
	}
	if digest.Len() != r.count {
		return errors.Wrapf(ErrNondeterministicProvider, "%d examples forward, %d backward", r.count, digest.Len())
	}
	if digest.Sum() != r.digest {
		return errors.Wrap(ErrNondeterministicProvider, "examples differ between passes")
	}
	return nil
}

// fingerprint hashes the structure of n: kinds, constants, parameter ids and
// child order. It is memoized per pass.
func (m *Model) fingerprint(n Node) uint32 {
	b := n.base()
	if b.fstamp == m.pass {
		return b.fp
	}
	var h uint32
	switch n := n.(type) {
	case *Constant:
		bits := math.Float64bits(n.Value.Log)
		h = hash.Mix(hash.Mix(1, uint32(bits)), uint32(bits>>32))
		if n.Value.Negative {
			h = hash.Mix(h, 2)
		}
	case *Lookup:
		h = hash.Mix(3, uint32(n.Index))
	case *Sum:
		h = 4
	case *Product:
		h = 5
	case *Exp:
		h = 6
	case *Log:
		h = 7
	case *Negate:
		h = 8
	case *Divide:
		h = 9
	case *Power:
		h = 11
	case *Root:
		h = hash.Mix(10, uint32(n.Op))
	}
	for _, c := range children(n) {
		h = hash.Mix(h, m.fingerprint(c))
	}
	b.fp = h
	b.fstamp = m.pass
	return h
}
