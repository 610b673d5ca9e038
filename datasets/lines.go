package datasets

import (
	"bufio"
	"io"
	"strings"

	"github.com/neurlang/logformula/formula"
	"github.com/pkg/errors"
)

// Sources is a provider over expressions kept as text, parsed afresh by every
// cursor.
type Sources struct {
	Lines    []string
	Resolver formula.Resolver
}

// Open starts a new traversal.
func (s Sources) Open() (formula.Cursor, error) {
	return NewLineCursor(strings.NewReader(strings.Join(s.Lines, "\n")), nil, s.Resolver), nil
}

// LineCursor parses one expression per line of a reader. Blank lines and
// lines starting with ';' are skipped.
type LineCursor struct {
	scanner  *bufio.Scanner
	closer   io.Closer
	resolver formula.Resolver
	line     int
}

// NewLineCursor returns a cursor over r. closer, if not nil, is closed with the
// cursor.
func NewLineCursor(r io.Reader, closer io.Closer, resolver formula.Resolver) *LineCursor {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	return &LineCursor{scanner: scanner, closer: closer, resolver: resolver}
}

// Next parses the next expression.
func (c *LineCursor) Next() (formula.Node, error) {
	for c.scanner.Scan() {
		c.line++
		text := strings.TrimSpace(c.scanner.Text())
		if text == "" || text[0] == ';' {
			continue
		}
		n, err := formula.Parse(text, c.resolver)
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", c.line)
		}
		return n, nil
	}
	if err := c.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// Close releases the underlying reader.
func (c *LineCursor) Close() error {
	if c.closer == nil {
		return nil
	}
	err := c.closer.Close()
	c.closer = nil
	return err
}
