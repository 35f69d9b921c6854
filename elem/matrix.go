package elem

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
	"github.com/scverse-go/anndata/value"
)

// RawMatrixElem is a lazy handle onto a 2-D value (a dense DynArray or a
// Csr/Csc sparse matrix), adding row/column/partial partial-reads and
// subset-in-place rewriting of the backing container on top of RawElem.
type RawMatrixElem struct {
	NRows int
	NCols int
	inner *RawElem
}

// NewRawMatrixElem wraps an already-open 2-D container.
func NewRawMatrixElem(c backend.DataContainer) (*RawMatrixElem, error) {
	inner, err := NewRawElem(c)
	if err != nil {
		return nil, err
	}
	nrows, ncols, err := matrixDims(c, inner.DType)
	if err != nil {
		return nil, err
	}
	return &RawMatrixElem{NRows: nrows, NCols: ncols, inner: inner}, nil
}

func matrixDims(c backend.DataContainer, dt dtype.DataType) (int, int, error) {
	const op = "elem.matrixDims"
	switch dt.Kind {
	case dtype.KindArray:
		ds, err := c.AsDataset()
		if err != nil {
			return 0, 0, err
		}
		sh := ds.Shape()
		if sh.NDim() != 2 {
			return 0, 0, backend.Errorf(backend.ShapeMismatch, op, "expected a 2-D array, found shape %v", sh)
		}
		return sh[0], sh[1], nil
	case dtype.KindCsrMatrix, dtype.KindCscMatrix:
		g, err := c.AsGroup()
		if err != nil {
			return 0, 0, err
		}
		attr, err := g.GetArrayAttr("shape")
		if err != nil {
			return 0, 0, backend.Wrap(backend.BackendIo, op, err)
		}
		dims, ok := attr.Data.([]uint64)
		if !ok || len(dims) != 2 {
			return 0, 0, backend.Errorf(backend.ShapeMismatch, op, "malformed shape attribute")
		}
		return int(dims[0]), int(dims[1]), nil
	default:
		return 0, 0, backend.Errorf(backend.DTypeMismatch, op, "%s is not a matrix-shaped value", dt)
	}
}

// EnableCache / DisableCache behave as on RawElem.
func (m *RawMatrixElem) EnableCache()  { m.inner.EnableCache() }
func (m *RawMatrixElem) DisableCache() { m.inner.DisableCache() }

// DType returns the element's DataType tag.
func (m *RawMatrixElem) DType() dtype.DataType { return m.inner.DType }

func (m *RawMatrixElem) checkRows(idx []int) error {
	const op = "RawMatrixElem.checkRows"
	for _, i := range idx {
		if i < 0 || i >= m.NRows {
			return backend.Errorf(backend.Bounds, op, "row %d out of range (nrows %d)", i, m.NRows)
		}
	}
	return nil
}

func (m *RawMatrixElem) checkCols(idx []int) error {
	const op = "RawMatrixElem.checkCols"
	for _, j := range idx {
		if j < 0 || j >= m.NCols {
			return backend.Errorf(backend.Bounds, op, "column %d out of range (ncols %d)", j, m.NCols)
		}
	}
	return nil
}

// ReadRows materializes the sub-matrix holding exactly the given row
// indices (order and duplicates preserved), reading from cache if
// present, otherwise via the most direct partial-read path its stored
// kind supports.
func (m *RawMatrixElem) ReadRows(idx []int) (value.Value, error) {
	if err := m.checkRows(idx); err != nil {
		return nil, err
	}
	if m.inner.cached != nil {
		return selectRowsOf(m.inner.cached, idx)
	}
	switch m.inner.DType.Kind {
	case dtype.KindArray:
		ds, err := m.inner.container.AsDataset()
		if err != nil {
			return nil, err
		}
		sel := shape.Select{shape.Index(toIndices(idx)), shape.Full()}
		raw, err := ds.ReadSlice(sel)
		if err != nil {
			return nil, err
		}
		return value.FromRaw(raw), nil
	case dtype.KindCsrMatrix:
		full, err := value.ReadCsr(m.inner.container)
		if err != nil {
			return nil, err
		}
		return full.SelectRows(idx)
	default:
		full, err := m.inner.ReadElem()
		if err != nil {
			return nil, err
		}
		return selectRowsOf(full, idx)
	}
}

// ReadColumns is the column-axis twin of ReadRows.
func (m *RawMatrixElem) ReadColumns(idx []int) (value.Value, error) {
	if err := m.checkCols(idx); err != nil {
		return nil, err
	}
	if m.inner.cached != nil {
		return selectColsOf(m.inner.cached, idx)
	}
	switch m.inner.DType.Kind {
	case dtype.KindArray:
		ds, err := m.inner.container.AsDataset()
		if err != nil {
			return nil, err
		}
		sel := shape.Select{shape.Full(), shape.Index(toIndices(idx))}
		raw, err := ds.ReadSlice(sel)
		if err != nil {
			return nil, err
		}
		return value.FromRaw(raw), nil
	case dtype.KindCscMatrix:
		full, err := value.ReadCsc(m.inner.container)
		if err != nil {
			return nil, err
		}
		return full.SelectCols(idx)
	default:
		full, err := m.inner.ReadElem()
		if err != nil {
			return nil, err
		}
		return selectColsOf(full, idx)
	}
}

// ReadPartial selects both axes at once: rows first (the efficient axis
// for a CSR matrix), then a column post-filter.
func (m *RawMatrixElem) ReadPartial(ridx, cidx []int) (value.Value, error) {
	if err := m.checkRows(ridx); err != nil {
		return nil, err
	}
	if err := m.checkCols(cidx); err != nil {
		return nil, err
	}
	rows, err := m.ReadRows(ridx)
	if err != nil {
		return nil, err
	}
	return selectColsOf(rows, cidx)
}

// ReadElem reads the whole value (delegated to the inner RawElem).
func (m *RawMatrixElem) ReadElem() (value.Value, error) { return m.inner.ReadElem() }

// WriteElem writes the element's current value to a new location.
func (m *RawMatrixElem) WriteElem(g backend.Group, name string) error {
	return m.inner.WriteElem(g, name)
}

// SubsetRows rewrites the backing container in place to hold only the
// given rows.
func (m *RawMatrixElem) SubsetRows(idx []int) error {
	data, err := m.ReadRows(idx)
	if err != nil {
		return err
	}
	if err := m.replaceLocked(data); err != nil {
		return err
	}
	m.NRows = len(idx)
	return nil
}

// SubsetCols rewrites the backing container in place to hold only the
// given columns.
func (m *RawMatrixElem) SubsetCols(idx []int) error {
	data, err := m.ReadColumns(idx)
	if err != nil {
		return err
	}
	if err := m.replaceLocked(data); err != nil {
		return err
	}
	m.NCols = len(idx)
	return nil
}

// Subset rewrites the backing container in place to hold only the given
// row/column selection.
func (m *RawMatrixElem) Subset(ridx, cidx []int) error {
	data, err := m.ReadPartial(ridx, cidx)
	if err != nil {
		return err
	}
	if err := m.replaceLocked(data); err != nil {
		return err
	}
	m.NRows = len(ridx)
	m.NCols = len(cidx)
	return nil
}

// Update replaces the element's backing content with data and refreshes
// NRows/NCols to data's dimensions.
func (m *RawMatrixElem) Update(data value.Value) error {
	const op = "RawMatrixElem.Update"
	var nrows, ncols int
	switch d := data.(type) {
	case value.DynArray:
		if len(d.Shape) != 2 {
			return backend.Errorf(backend.ShapeMismatch, op, "expected a 2-D array, found shape %v", d.Shape)
		}
		nrows, ncols = d.Shape[0], d.Shape[1]
	case value.Csr:
		nrows, ncols = d.NRows, d.NCols
	case value.Csc:
		nrows, ncols = d.NRows, d.NCols
	default:
		return backend.Errorf(backend.DTypeMismatch, op, "%T is not a matrix-shaped value", data)
	}
	if err := m.replaceLocked(data); err != nil {
		return err
	}
	m.NRows = nrows
	m.NCols = ncols
	return nil
}

// replaceLocked rewrites this element's backing container to hold data,
// under the name it already occupies, then refreshes the cache (if
// enabled) to match.
func (m *RawMatrixElem) replaceLocked(data value.Value) error {
	return replaceContainer(m.inner, data)
}

func toIndices(idx []int) []int { out := make([]int, len(idx)); copy(out, idx); return out }

func selectRowsOf(v value.Value, idx []int) (value.Value, error) {
	switch d := v.(type) {
	case value.DynArray:
		return d.Select(shape.Select{shape.Index(idx), shape.Full()})
	case value.Csr:
		return d.SelectRows(idx)
	case value.Csc:
		dense, err := d.ToDense()
		if err != nil {
			return nil, err
		}
		return dense.Select(shape.Select{shape.Index(idx), shape.Full()})
	default:
		return nil, backend.Errorf(backend.DTypeMismatch, "elem.selectRowsOf", "%T does not support row selection", v)
	}
}

func selectColsOf(v value.Value, idx []int) (value.Value, error) {
	switch d := v.(type) {
	case value.DynArray:
		return d.Select(shape.Select{shape.Full(), shape.Index(idx)})
	case value.Csc:
		return d.SelectCols(idx)
	case value.Csr:
		dense, err := d.ToDense()
		if err != nil {
			return nil, err
		}
		return dense.Select(shape.Select{shape.Full(), shape.Index(idx)})
	default:
		return nil, backend.Errorf(backend.DTypeMismatch, "elem.selectColsOf", "%T does not support column selection", v)
	}
}
