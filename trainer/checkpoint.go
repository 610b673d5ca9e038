package trainer

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoCheckpoint is returned when resuming without any checkpoint on disk.
var ErrNoCheckpoint = errors.New("trainer: no checkpoint found")

// ErrCheckpointExists is returned instead of overwriting a checkpoint.
var ErrCheckpointExists = errors.New("trainer: checkpoint already exists")

// Checkpointer writes parameter snapshots named prefix_%05d, one value per
// line. Snapshots are written to a temporary file and renamed into place, and
// are never rewritten.
type Checkpointer struct {
	Prefix string

	last int
}

// NewCheckpointer checks that files can be created next to prefix.
func NewCheckpointer(prefix string) (*Checkpointer, error) {
	dir, base := filepath.Split(prefix)
	if base == "" {
		return nil, errors.Errorf("trainer: checkpoint prefix %q names a directory", prefix)
	}
	if dir == "" {
		dir = "."
	}
	probe, err := os.CreateTemp(dir, base+".probe*")
	if err != nil {
		return nil, errors.Wrap(err, "checkpoint destination not writable")
	}
	probe.Close()
	if err := os.Remove(probe.Name()); err != nil {
		return nil, errors.Wrap(err, "checkpoint destination")
	}
	return &Checkpointer{Prefix: prefix, last: -1}, nil
}

// Path returns the file name of the checkpoint at iteration.
func (c *Checkpointer) Path(iteration int) string {
	return fmt.Sprintf("%s_%05d", c.Prefix, iteration)
}

// Write stores params as the checkpoint of iteration. Writing the same
// iteration twice in a row is a no-op.
func (c *Checkpointer) Write(iteration int, params []float64) (string, error) {
	path := c.Path(iteration)
	if iteration == c.last {
		return path, nil
	}
	if _, err := os.Stat(path); err == nil {
		return path, errors.Wrap(ErrCheckpointExists, path)
	}
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, base+".tmp*")
	if err != nil {
		return path, err
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	var buf []byte
	for _, p := range params {
		buf = strconv.AppendFloat(buf[:0], p, 'g', -1, 64)
		buf = append(buf, '\n')
		if _, err := w.Write(buf); err != nil {
			tmp.Close()
			return path, err
		}
	}
	if err := w.Flush(); err != nil {
		tmp.Close()
		return path, err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return path, err
	}
	if err := tmp.Close(); err != nil {
		return path, err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return path, err
	}
	c.last = iteration
	return path, nil
}

// Latest returns the highest numbered checkpoint.
func (c *Checkpointer) Latest() (iteration int, path string, err error) {
	matches, err := filepath.Glob(c.Prefix + "_*")
	if err != nil {
		return 0, "", err
	}
	iteration = -1
	for _, m := range matches {
		suffix := strings.TrimPrefix(m, c.Prefix+"_")
		n, err := strconv.Atoi(suffix)
		if err != nil || n < 0 || strings.HasPrefix(suffix, "+") {
			continue
		}
		if n > iteration {
			iteration, path = n, m
		}
	}
	if iteration < 0 {
		return 0, "", errors.Wrap(ErrNoCheckpoint, c.Prefix)
	}
	return iteration, path, nil
}

// ReadCheckpoint reads a parameter file written by Write.
func ReadCheckpoint(path string) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	var params []float64
	scanner := bufio.NewScanner(file)
	for line := 1; scanner.Scan(); line++ {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		p, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "%s:%d", path, line)
		}
		params = append(params, p)
	}
	return params, scanner.Err()
}
