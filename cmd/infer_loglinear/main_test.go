package main

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/neurlang/logformula/datasets"
	"github.com/neurlang/logformula/formula"
	"github.com/neurlang/logformula/paramindex"
)

func TestScore(t *testing.T) {
	index := paramindex.New(4)
	for _, name := range []string{"a", "b", "c"} {
		index.GetOrCreate(name)
	}
	m := formula.NewModel(index)
	m.SetWeights([]float64{0.5, 2, 0})
	m.Freeze()
	resolver := pruned{m: m, support: index.Support(m.Weights)}

	var out bytes.Buffer
	total, err := score(m, datasets.Sources{Resolver: resolver, Lines: []string{
		"(+ (* $a $b) $c)",
		"(* $a $unseen)",
		"(+ (* $b $b) (* $a $a))",
	}}, &out)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(total.Exp()-(1+0+4.25)) > 1e-12 {
		t.Errorf("total %v", total)
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("output %q", out.String())
	}
	want := []struct {
		value float64
		path  string
	}{{1, "$a $b"}, {0, "$a 0"}, {4.25, "$b $b"}}
	for i, line := range lines {
		fields := strings.Split(line, "\t")
		if len(fields) != 3 || fields[0] != strconv.Itoa(i) {
			t.Fatalf("line %q", line)
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil || math.Abs(value-want[i].value) > 1e-12 || fields[2] != want[i].path {
			t.Errorf("line %q, want value %g path %q", line, want[i].value, want[i].path)
		}
	}
}
