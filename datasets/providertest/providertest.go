// Package providertest checks that example providers honour the restartable,
// order deterministic contract training relies on.
package providertest

import (
	"io"
	"testing"

	"github.com/neurlang/logformula/formula"
	"github.com/neurlang/logformula/logmath"
)

// Drain opens p and returns every example formatted, in order.
func Drain(t testing.TB, p formula.Provider) []string {
	t.Helper()
	cursor, err := p.Open()
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	var out []string
	for {
		n, err := cursor.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("Next after %d examples: %v", len(out), err)
		}
		out = append(out, formula.Format(n, nil))
	}
	if _, err := cursor.Next(); err != io.EOF {
		t.Errorf("Next after the end = %v, want io.EOF", err)
	}
	if err := cursor.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	return out
}

// Conformance checks p against the provider contract: want lists the
// expected examples in the syntax of formula.Format without names. m must
// resolve every parameter of p; its weights are set to 0.75 to run one
// evaluation and backprop over a root streaming p.
func Conformance(t *testing.T, p formula.Provider, m *formula.Model, want []string) {
	t.Helper()
	first := Drain(t, p)
	second := Drain(t, p)
	if len(first) != len(want) {
		t.Fatalf("first traversal yielded %d examples, want %d", len(first), len(want))
	}
	if len(second) != len(first) {
		t.Fatalf("traversals yielded %d and %d examples", len(first), len(second))
	}
	for i := range want {
		if first[i] != want[i] {
			t.Errorf("example %d = %s, want %s", i, first[i], want[i])
		}
		if second[i] != first[i] {
			t.Errorf("example %d differs between traversals: %s, %s", i, first[i], second[i])
		}
	}

	// two cursors open at once must not interfere
	a, err := p.Open()
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Open()
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(want); i++ {
		x, errx := a.Next()
		y, erry := b.Next()
		if errx != nil || erry != nil {
			t.Fatalf("interleaved Next %d: %v, %v", i, errx, erry)
		}
		if formula.Format(x, nil) != formula.Format(y, nil) {
			t.Errorf("interleaved example %d differs", i)
		}
	}
	a.Close()
	b.Close()

	root := formula.NewRoot(formula.AggregateSum, p)
	for i := range m.Weights {
		m.Weights[i] = 0.75
	}
	m.BeginPass()
	if _, err := m.Evaluate(root); err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if root.Count() != uint64(len(want)) {
		t.Errorf("root counted %d examples, want %d", root.Count(), len(want))
	}
	if err := m.Backprop(root, logmath.One()); err != nil {
		t.Errorf("Backprop: %v", err)
	}
}
