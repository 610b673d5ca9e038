package paramindex

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// ErrNewline is returned when writing a name that would not survive the one
// name per line format.
var ErrNewline = errors.New("paramindex: name contains a newline")

// ErrDuplicate is returned when a stored alphabet repeats a name.
var ErrDuplicate = errors.New("paramindex: duplicate name")

// WriteTo writes the names in id order, one per line.
func (x *Index) WriteTo(w io.Writer) (n int64, err error) {
	bw := bufio.NewWriter(w)
	for id := range x.ends {
		name := x.name(id)
		if strings.IndexByte(string(name), '\n') >= 0 {
			return n, errors.Wrapf(ErrNewline, "id %d", id)
		}
		k, err := bw.Write(name)
		n += int64(k)
		if err != nil {
			return n, err
		}
		if err = bw.WriteByte('\n'); err != nil {
			return n, err
		}
		n++
	}
	return n, bw.Flush()
}

// ReadFrom appends the names read from r, one per line. Each line must be a
// new name so that ids in the file are preserved.
func (x *Index) ReadFrom(r io.Reader) (n int64, err error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		n += int64(len(line)) + 1
		before := x.Len()
		if id := x.GetOrCreate(line); id != before {
			return n, errors.Wrapf(ErrDuplicate, "%q at line %d", line, before+1)
		}
	}
	return n, scanner.Err()
}

// Load reads an alphabet file.
func Load(filename string) (*Index, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	x := New(1024)
	if _, err := x.ReadFrom(file); err != nil {
		return nil, errors.Wrap(err, filename)
	}
	return x, nil
}

// Save writes an alphabet file.
func (x *Index) Save(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := x.WriteTo(file); err != nil {
		file.Close()
		return errors.Wrap(err, filename)
	}
	return file.Close()
}
