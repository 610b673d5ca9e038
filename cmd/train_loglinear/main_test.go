package main

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurlang/logformula/datasets/sqlstore"
	"github.com/neurlang/logformula/datasets/textfile"
	"github.com/neurlang/logformula/learning"
)

func TestResumeDoesNotReimport(t *testing.T) {
	dir := t.TempDir()
	corpus := filepath.Join(dir, "corpus.txt.lzw")
	if err := textfile.Write(corpus, []string{"(* $a $b)", "(* $b $c)", "(* $a $c)"}); err != nil {
		t.Fatal(err)
	}
	var h learning.HyperParameters
	h.SetLoggerTo(log.New(io.Discard, "", 0))
	o := options{
		examples: filepath.Join(dir, "examples.db"),
		corpus:   corpus,
		alphabet: filepath.Join(dir, "alphabet.txt"),
		dstmodel: filepath.Join(dir, "model"),
		maxiter:  2,
		savek:    1,
		lambda:   1,
		initial:  0.5,
		stepper:  "sga",
	}
	if err := train(&h, o); err != nil {
		t.Fatalf("first run: %v", err)
	}
	o.resume = true
	o.maxiter = 4
	if err := train(&h, o); err != nil {
		t.Fatalf("resumed run: %v", err)
	}

	store, err := sqlstore.New(o.examples, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if n, err := store.Count(); err != nil || n != 3 {
		t.Errorf("store holds %d examples after two runs, %v", n, err)
	}
	for _, name := range []string{"model_00004", "model.support"} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s: %v", name, err)
		}
	}
}

func TestMissingInput(t *testing.T) {
	var h learning.HyperParameters
	h.SetLoggerTo(log.New(io.Discard, "", 0))
	dir := t.TempDir()
	err := train(&h, options{alphabet: filepath.Join(dir, "alphabet.txt"), dstmodel: filepath.Join(dir, "model")})
	if err == nil {
		t.Errorf("training without examples succeeded")
	}
}
