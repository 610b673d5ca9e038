// Package sqlstore keeps training examples in an SQLite database and streams
// them back in insertion order.
package sqlstore

import (
	"database/sql"
	"io"

	"github.com/neurlang/logformula/formula"
	"github.com/pkg/errors"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS examples (
	id   INTEGER PRIMARY KEY AUTOINCREMENT,
	expr TEXT NOT NULL
)`

// Store is a disk backed example provider.
type Store struct {
	db       *sql.DB
	resolver formula.Resolver
}

// New opens or creates the database at path. Examples are parsed with
// resolver when streamed.
func New(path string, resolver formula.Resolver) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, path)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, path)
	}
	return &Store{db: db, resolver: resolver}, nil
}

// SetResolver changes the resolver used by cursors opened later.
func (s *Store) SetResolver(resolver formula.Resolver) {
	s.resolver = resolver
}

// Append stores exprs after the existing examples in one transaction. Each
// expression is checked to parse before anything is written.
func (s *Store) Append(exprs ...string) error {
	for i, expr := range exprs {
		if _, err := formula.Parse(expr, syntaxOnly{}); err != nil {
			return errors.Wrapf(err, "example %d", i)
		}
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT INTO examples (expr) VALUES (?)`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, expr := range exprs {
		if _, err := stmt.Exec(expr); err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// Count returns the number of stored examples.
func (s *Store) Count() (n int, err error) {
	err = s.db.QueryRow(`SELECT COUNT(*) FROM examples`).Scan(&n)
	return
}

// Open starts a new traversal in id order.
func (s *Store) Open() (formula.Cursor, error) {
	rows, err := s.db.Query(`SELECT id, expr FROM examples ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "query examples")
	}
	return &cursor{rows: rows, resolver: s.resolver}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

type cursor struct {
	rows     *sql.Rows
	resolver formula.Resolver
}

func (c *cursor) Next() (formula.Node, error) {
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	var id int64
	var expr string
	if err := c.rows.Scan(&id, &expr); err != nil {
		return nil, err
	}
	n, err := formula.Parse(expr, c.resolver)
	if err != nil {
		return nil, errors.Wrapf(err, "example id %d", id)
	}
	return n, nil
}

func (c *cursor) Close() error {
	return c.rows.Close()
}

// syntaxOnly resolves every reference to a throwaway leaf.
type syntaxOnly struct{}

func (syntaxOnly) Resolve(string) (formula.Node, error) {
	return &formula.Lookup{}, nil
}

func (syntaxOnly) ResolveID(id int) (formula.Node, error) {
	return &formula.Lookup{Index: id}, nil
}
