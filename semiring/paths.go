package semiring

import "strings"

// Path is a derivation: the labels of the steps that produced a value.
type Path []string

// Concat returns a fresh path with q appended to p.
func (p Path) Concat(q Path) Path {
	out := make(Path, 0, len(p)+len(q))
	out = append(out, p...)
	return append(out, q...)
}

// String joins the labels with spaces.
func (p Path) String() string {
	return strings.Join(p, " ")
}

// Scored is a value together with the derivation achieving it.
type Scored struct {
	Score float64
	Path  Path
}

func (s Scored) key() string {
	return s.Path.String()
}

// MaxPath returns the ⊕ of the best-derivation semiring: the operand with the
// larger score wins, ties keep the left operand.
func MaxPath(inner Operation[float64]) Operation[Scored] {
	return NewOperation(func(a, b Scored) Scored {
		if b.Score > a.Score {
			return b
		}
		return a
	}, Scored{Score: inner.Identity()})
}

// PathProduct returns the ⊗ of the best-derivation semiring: scores are
// combined by inner and paths concatenated.
func PathProduct(inner Operation[float64]) Operation[Scored] {
	return NewOperation(func(a, b Scored) Scored {
		return Scored{Score: inner.Combine(a.Score, b.Score), Path: a.Path.Concat(b.Path)}
	}, Scored{Score: inner.Identity()})
}

// MaxPathSemiring augments a max-based semiring with the argmax derivation.
func MaxPathSemiring(base Semiring[float64]) Semiring[Scored] {
	return Semiring[Scored]{Plus: MaxPath(base.Plus), Times: PathProduct(base.Times)}
}

// PathsUnion is ⊕ over sets of derivations: set union, keyed by path.
// When the same path occurs in both operands the first score is kept.
func PathsUnion() Operation[[]Scored] {
	return NewOperation(func(a, b []Scored) []Scored {
		seen := make(map[string]struct{}, len(a)+len(b))
		out := make([]Scored, 0, len(a)+len(b))
		for _, set := range [2][]Scored{a, b} {
			for _, s := range set {
				k := s.key()
				if _, ok := seen[k]; ok {
					continue
				}
				seen[k] = struct{}{}
				out = append(out, s)
			}
		}
		return out
	}, []Scored{})
}

// PathsProduct is ⊗ over sets of derivations: the cartesian product, scores
// combined by inner and paths concatenated. The empty set is absorbing.
func PathsProduct(inner Operation[float64]) Operation[[]Scored] {
	return NewOperationWithZero(func(a, b []Scored) []Scored {
		out := make([]Scored, 0, len(a)*len(b))
		for _, x := range a {
			for _, y := range b {
				out = append(out, Scored{Score: inner.Combine(x.Score, y.Score), Path: x.Path.Concat(y.Path)})
			}
		}
		return out
	}, []Scored{{Score: inner.Identity()}}, []Scored{})
}

// PathSetSemiring keeps every derivation with its score.
func PathSetSemiring(base Semiring[float64]) Semiring[[]Scored] {
	return Semiring[[]Scored]{Plus: PathsUnion(), Times: PathsProduct(base.Times)}
}
