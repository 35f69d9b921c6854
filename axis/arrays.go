package axis

import (
	"sort"
	"sync"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/value"
)

// AxisArrays holds a named collection of matrix-shaped entries all
// coupled to the same shared counter along axis: obsm/varm
// couple a single dimension, obsp/varp require a square entry matching
// both.
type AxisArrays struct {
	axis    Axis
	counter *Counter
	group   backend.Group

	mu   sync.Mutex
	data map[string]*elem.RawMatrixElem
}

// NewAxisArrays returns an empty collection backed by an already-created
// (and empty) group.
func NewAxisArrays(g backend.Group, axis Axis, counter *Counter) *AxisArrays {
	return &AxisArrays{axis: axis, counter: counter, group: g, data: make(map[string]*elem.RawMatrixElem)}
}

// OpenAxisArrays reconstructs a collection from a group's existing
// children.
func OpenAxisArrays(g backend.Group, axis Axis, counter *Counter) (*AxisArrays, error) {
	const op = "axis.OpenAxisArrays"
	names, err := g.List()
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	a := NewAxisArrays(g, axis, counter)
	for _, name := range names {
		c, err := backend.Open(g, name)
		if err != nil {
			return nil, err
		}
		re, err := elem.NewRawMatrixElem(c)
		if err != nil {
			return nil, err
		}
		a.data[name] = re
	}
	return a, nil
}

func dims(op string, v value.Value) (nrows, ncols int, err error) {
	switch d := v.(type) {
	case value.DynArray:
		switch len(d.Shape) {
		case 0:
			return 0, 0, backend.Errorf(backend.ShapeMismatch, op, "a scalar has no row/column dimension")
		case 1:
			return d.Shape[0], d.Shape[0], nil
		default:
			return d.Shape[0], d.Shape[1], nil
		}
	case value.Csr:
		return d.NRows, d.NCols, nil
	case value.Csc:
		return d.NRows, d.NCols, nil
	default:
		return 0, 0, backend.Errorf(backend.DTypeMismatch, op, "%T is not a matrix-shaped value", v)
	}
}

// Insert validates data's shape against the shared counter (fixing it if
// this is the first entry), then writes data under key.
func (a *AxisArrays) Insert(key string, data value.Value) error {
	const op = "AxisArrays.Insert"
	nrows, ncols, err := dims(op, data)
	if err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	n := a.counter.Get()
	switch a.axis {
	case Row:
		if n != 0 && nrows != n {
			return backend.Errorf(backend.AxisMismatch, op, "key %q: expected %d rows, found %d", key, n, nrows)
		}
		if n == 0 {
			a.counter.Set(nrows)
		}
	case Column:
		if n != 0 && ncols != n {
			return backend.Errorf(backend.AxisMismatch, op, "key %q: expected %d columns, found %d", key, n, ncols)
		}
		if n == 0 {
			a.counter.Set(ncols)
		}
	case Both:
		if nrows != ncols {
			return backend.Errorf(backend.AxisMismatch, op, "key %q: expected a square entry, found %d x %d", key, nrows, ncols)
		}
		if n != 0 && nrows != n {
			return backend.Errorf(backend.AxisMismatch, op, "key %q: expected %d x %d, found %d x %d", key, n, n, nrows, ncols)
		}
		if n == 0 {
			a.counter.Set(nrows)
		}
	}

	if _, ok := a.data[key]; ok {
		if err := a.group.Delete(key); err != nil {
			return backend.Wrap(backend.BackendIo, op, err)
		}
	}
	c, err := data.Write(a.group, key)
	if err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	re, err := elem.NewRawMatrixElem(c)
	if err != nil {
		return err
	}
	a.data[key] = re
	return nil
}

// Get returns the entry named key.
func (a *AxisArrays) Get(key string) (*elem.RawMatrixElem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	re, ok := a.data[key]
	if !ok {
		return nil, backend.Errorf(backend.NotFound, "AxisArrays.Get", "no entry named %q", key)
	}
	return re, nil
}

// Delete removes the entry named key, both from the backing group and
// from the in-memory collection.
func (a *AxisArrays) Delete(key string) error {
	const op = "AxisArrays.Delete"
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.data[key]; !ok {
		return backend.Errorf(backend.NotFound, op, "no entry named %q", key)
	}
	if err := a.group.Delete(key); err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	delete(a.data, key)
	return nil
}

// Keys returns the entry names in lexicographic order.
func (a *AxisArrays) Keys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.sortedKeysLocked()
}

func (a *AxisArrays) sortedKeysLocked() []string {
	keys := make([]string, 0, len(a.data))
	for k := range a.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns every entry, ordered by Keys.
func (a *AxisArrays) List() []*elem.RawMatrixElem {
	a.mu.Lock()
	defer a.mu.Unlock()
	keys := a.sortedKeysLocked()
	out := make([]*elem.RawMatrixElem, len(keys))
	for i, k := range keys {
		out[i] = a.data[k]
	}
	return out
}

// Subset rewrites every entry in place to the given index along this
// collection's axis (Row/Column subset one axis, Both subsets both with
// the same index). The shared counter is left to the caller to update.
func (a *AxisArrays) Subset(idx []int) error {
	const op = "AxisArrays.Subset"
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, key := range a.sortedKeysLocked() {
		re := a.data[key]
		var err error
		switch a.axis {
		case Row:
			err = re.SubsetRows(idx)
		case Column:
			err = re.SubsetCols(idx)
		case Both:
			err = re.Subset(idx, idx)
		}
		if err != nil {
			return backend.Wrap(backend.BackendIo, op, err)
		}
	}
	return nil
}
