// Package textfile streams training examples from a text corpus with one
// expression per line, optionally lzw compressed.
package textfile

import "bufio"
import "compress/lzw"
import "io"
import "os"
import "strings"

import "github.com/neurlang/logformula/datasets"
import "github.com/neurlang/logformula/formula"

// Suffix marks compressed corpora.
const Suffix = ".lzw"

// File is a provider over a corpus file.
type File struct {
	Path       string
	Compressed bool
	Resolver   formula.Resolver
}

// New returns a provider for path, compressed if the name ends in Suffix.
func New(path string, resolver formula.Resolver) *File {
	return &File{Path: path, Compressed: strings.HasSuffix(path, Suffix), Resolver: resolver}
}

type closers []io.Closer

func (c closers) Close() (err error) {
	for _, closer := range c {
		if cerr := closer.Close(); err == nil {
			err = cerr
		}
	}
	return
}

// Open starts a new traversal from the beginning of the file.
func (f *File) Open() (formula.Cursor, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, err
	}
	if !f.Compressed {
		return datasets.NewLineCursor(file, file, f.Resolver), nil
	}
	lr := lzw.NewReader(bufio.NewReader(file), lzw.LSB, 8)
	return datasets.NewLineCursor(lr, closers{lr, file}, f.Resolver), nil
}

// Write stores exprs at path, one per line, compressing if the name ends in
// Suffix.
func Write(path string, exprs []string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	var w io.WriteCloser = nopCloser{file}
	if strings.HasSuffix(path, Suffix) {
		w = lzw.NewWriter(file, lzw.LSB, 8)
	}
	for _, expr := range exprs {
		if _, err = w.Write([]byte(expr + "\n")); err != nil {
			break
		}
	}
	if cerr := w.Close(); err == nil {
		err = cerr
	}
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
