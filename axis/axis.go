// Package axis implements the axis-coupled collections of an annotated
// matrix: AxisArrays, which binds a group of same-shaped entries to a
// shared row or column count, and ElemCollection, the same structure
// without that invariant (used for free-form metadata).
package axis

import (
	"fmt"
	"sync"
)

// Axis names which dimension of an AxisArrays entry is coupled to the
// shared counter.
type Axis int

const (
	// Row couples an entry's first dimension (data.nrow == n), used by
	// obsm.
	Row Axis = iota
	// Column couples an entry's second dimension (data.ncol == n), used
	// by varm.
	Column
	// Both requires a square (n, n) entry, used by obsp/varp.
	Both
)

func (a Axis) String() string {
	switch a {
	case Row:
		return "Row"
	case Column:
		return "Column"
	case Both:
		return "Both"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// Counter is a mutex-guarded entity count shared between an AnnData and
// every AxisArrays keyed off the same axis (n_obs or n_vars).
type Counter struct {
	mu sync.Mutex
	n  int
}

// NewCounter returns a Counter initialized to n.
func NewCounter(n int) *Counter { return &Counter{n: n} }

// Get returns the current count.
func (c *Counter) Get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}

// Set replaces the current count.
func (c *Counter) Set(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n = n
}
