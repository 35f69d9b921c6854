// Package elem implements lazy element wrappers over the dynamic value
// layer: RawElem caches a single read of an arbitrary
// value, RawMatrixElem adds row/column/partial reads and subset-in-place
// rewriting for 2-D values, and DataFrameElem does the same for data
// frames. Chunked iteration walks a RawMatrixElem's row axis in fixed-
// size, non-restartable batches.
package elem

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/value"
)

// RawElem is a lazy handle onto a single dynamic value stored at a
// backend container: read_elem is only ever materialized on demand, and
// is kept in memory afterward only if caching has been enabled.
type RawElem struct {
	DType     dtype.DataType
	container backend.DataContainer

	cacheEnabled bool
	cached       value.Value
}

// NewRawElem wraps an already-open container, reading its encoding-type
// tag but not its data.
func NewRawElem(c backend.DataContainer) (*RawElem, error) {
	dt, err := c.EncodingType()
	if err != nil {
		return nil, err
	}
	return &RawElem{DType: dt, container: c}, nil
}

// EnableCache turns on caching for future ReadElem calls.
func (e *RawElem) EnableCache() { e.cacheEnabled = true }

// DisableCache drops any cached value and turns caching off.
func (e *RawElem) DisableCache() {
	e.cached = nil
	e.cacheEnabled = false
}

// ReadElem returns the wrapped value, from cache if present and enabled,
// otherwise reading it from the backend and caching it if caching is on.
func (e *RawElem) ReadElem() (value.Value, error) {
	if e.cached != nil {
		return e.cached, nil
	}
	v, err := value.ReadValue(e.container)
	if err != nil {
		return nil, err
	}
	if e.cacheEnabled {
		e.cached = v
	}
	return v, nil
}

// WriteElem writes the element's current value (cached if present,
// otherwise freshly read) to a new location.
func (e *RawElem) WriteElem(g backend.Group, name string) error {
	v, err := e.ReadElem()
	if err != nil {
		return err
	}
	_, err = v.Write(g, name)
	return err
}

// As reads the element and type-asserts it to T, failing with a
// DTypeMismatch if the stored value is a different concrete kind.
func As[T value.Value](e *RawElem) (T, error) {
	var zero T
	v, err := e.ReadElem()
	if err != nil {
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		return zero, backend.Errorf(backend.DTypeMismatch, "elem.As", "stored value is %T, not %T", v, zero)
	}
	return t, nil
}
