// Package datasets implements restartable example providers for training
// objectives.
package datasets

import "io"

import "github.com/neurlang/logformula/formula"

// Memory is a provider over examples already built in memory. Every cursor
// yields the same node objects in slice order.
type Memory []formula.Node

// Get returns example n.
func (d Memory) Get(n int) formula.Node {
	return d[n]
}

// Len returns the number of examples.
func (d Memory) Len() int {
	return len(d)
}

// Open starts a new traversal.
func (d Memory) Open() (formula.Cursor, error) {
	return &memoryCursor{examples: d}, nil
}

type memoryCursor struct {
	examples Memory
	pos      int
}

func (c *memoryCursor) Next() (formula.Node, error) {
	if c.pos >= len(c.examples) {
		return nil, io.EOF
	}
	c.pos++
	return c.examples[c.pos-1], nil
}

func (c *memoryCursor) Close() error {
	return nil
}
