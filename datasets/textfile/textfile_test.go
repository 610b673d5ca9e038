package textfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/neurlang/logformula/datasets/providertest"
	"github.com/neurlang/logformula/formula"
	"github.com/neurlang/logformula/paramindex"
)

var corpus = []string{
	"(* $w=a $w=b)",
	"; a comment",
	"(* $w=b $w=c $w=a)",
	"",
	"(log (+ $w=a $w=c))",
}

var want = []string{"(* @0 @1)", "(* @1 @2 @0)", "(log (+ @0 @2))"}

func TestPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt")
	if err := Write(path, corpus); err != nil {
		t.Fatal(err)
	}
	m := formula.NewModel(paramindex.New(4))
	f := New(path, m)
	if f.Compressed {
		t.Errorf("plain file marked compressed")
	}
	providertest.Conformance(t, f, m, want)
}

func TestCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.txt"+Suffix)
	if err := Write(path, corpus); err != nil {
		t.Fatal(err)
	}
	m := formula.NewModel(paramindex.New(4))
	f := New(path, m)
	if !f.Compressed {
		t.Errorf("%s not marked compressed", path)
	}
	providertest.Conformance(t, f, m, want)

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(raw[:3]) == "(* " {
		t.Errorf("compressed corpus stored as plain text")
	}
}

func TestMissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "none"), formula.NewModelSize(0)).Open(); err == nil {
		t.Errorf("opening a missing corpus succeeded")
	}
}
