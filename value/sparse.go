package value

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// Csr is a compressed-sparse-row matrix: three equal-format component
// arrays (data, indices, indptr) plus the dense shape they describe.
type Csr struct {
	DType   dtype.ScalarType
	NRows   int
	NCols   int
	Data    any     // len == Indptr[last]
	Indices []int32 // column index per nonzero, len == len(Data)
	Indptr  []int32 // len == NRows+1
}

// Csc is the column-major twin of Csr: Indices holds row indices and
// Indptr is indexed by column.
type Csc struct {
	DType   dtype.ScalarType
	NRows   int
	NCols   int
	Data    any
	Indices []int32
	Indptr  []int32
}

func (m Csr) DataType() dtype.DataType { return dtype.CsrMatrix(m.DType) }
func (m Csc) DataType() dtype.DataType { return dtype.CscMatrix(m.DType) }

func (m Csr) Write(g backend.Group, name string) (backend.DataContainer, error) {
	return writeSparse(g, name, "csr_matrix", m.NRows, m.NCols, m.DType, m.Data, m.Indices, m.Indptr)
}

func (m Csc) Write(g backend.Group, name string) (backend.DataContainer, error) {
	return writeSparse(g, name, "csc_matrix", m.NRows, m.NCols, m.DType, m.Data, m.Indices, m.Indptr)
}

// writeSparse creates the group and its three component datasets; on any
// failure it deletes whatever siblings were already created, so a failed
// write never leaves a partial group behind.
func writeSparse(g backend.Group, name, encoding string, nrow, ncol int, dt dtype.ScalarType, data any, indices, indptr []int32) (backend.DataContainer, error) {
	const op = "value.writeSparse"
	grp, err := g.NewGroup(name)
	if err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	cleanup := func(failed error) (backend.DataContainer, error) {
		_ = g.Delete(name)
		return backend.DataContainer{}, failed
	}

	dataRaw := backend.RawArray{DType: dt, Shape: shape.New(lenOfTyped(data)), Data: data}
	if _, err := backend.NewArrayDataset(grp, "data", dataRaw, backend.DefaultWriteConfig()); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	idxRaw := backend.RawArray{DType: dtype.I32, Shape: shape.New(len(indices)), Data: indices}
	if _, err := backend.NewArrayDataset(grp, "indices", idxRaw, backend.DefaultWriteConfig()); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	ptrRaw := backend.RawArray{DType: dtype.I32, Shape: shape.New(len(indptr)), Data: indptr}
	if _, err := backend.NewArrayDataset(grp, "indptr", ptrRaw, backend.DefaultWriteConfig()); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewArrayAttr("shape", backend.RawArray{DType: dtype.U64, Shape: shape.New(2), Data: []uint64{uint64(nrow), uint64(ncol)}}); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewStrAttr(backend.EncodingTypeAttr, encoding); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewStrAttr(backend.EncodingVersionAttr, backend.EncodingVersion); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	return backend.FromGroup(grp), nil
}

func lenOfTyped(data any) int {
	switch d := data.(type) {
	case []int8:
		return len(d)
	case []int16:
		return len(d)
	case []int32:
		return len(d)
	case []int64:
		return len(d)
	case []uint8:
		return len(d)
	case []uint16:
		return len(d)
	case []uint32:
		return len(d)
	case []uint64:
		return len(d)
	case []float32:
		return len(d)
	case []float64:
		return len(d)
	case []bool:
		return len(d)
	case []string:
		return len(d)
	default:
		return 0
	}
}

func readSparseGroup(c backend.DataContainer) (dt dtype.ScalarType, nrow, ncol int, data any, indices, indptr []int32, err error) {
	const op = "value.readSparseGroup"
	g, err := c.AsGroup()
	if err != nil {
		return 0, 0, 0, nil, nil, nil, err
	}
	shapeAttr, err := g.GetArrayAttr("shape")
	if err != nil {
		return 0, 0, 0, nil, nil, nil, backend.Wrap(backend.BackendIo, op, err)
	}
	dims, ok := shapeAttr.Data.([]uint64)
	if !ok || len(dims) != 2 {
		return 0, 0, 0, nil, nil, nil, backend.Errorf(backend.ShapeMismatch, op, "malformed shape attribute")
	}
	dataDs, err := g.OpenDataset("data")
	if err != nil {
		return 0, 0, 0, nil, nil, nil, backend.Wrap(backend.BackendIo, op, err)
	}
	dt, err = dataDs.DType()
	if err != nil {
		return 0, 0, 0, nil, nil, nil, backend.Wrap(backend.BackendIo, op, err)
	}
	dataRaw, err := backend.ReadArray(dataDs)
	if err != nil {
		return 0, 0, 0, nil, nil, nil, err
	}
	idxDs, err := g.OpenDataset("indices")
	if err != nil {
		return 0, 0, 0, nil, nil, nil, backend.Wrap(backend.BackendIo, op, err)
	}
	idxRaw, err := backend.ReadArray(idxDs)
	if err != nil {
		return 0, 0, 0, nil, nil, nil, err
	}
	ptrDs, err := g.OpenDataset("indptr")
	if err != nil {
		return 0, 0, 0, nil, nil, nil, backend.Wrap(backend.BackendIo, op, err)
	}
	ptrRaw, err := backend.ReadArray(ptrDs)
	if err != nil {
		return 0, 0, 0, nil, nil, nil, err
	}
	return dt, int(dims[0]), int(dims[1]), dataRaw.Data, idxRaw.Data.([]int32), ptrRaw.Data.([]int32), nil
}

// ReadCsr reads a Csr matrix back from a DataContainer written by Csr.Write.
func ReadCsr(c backend.DataContainer) (Csr, error) {
	dt, nrow, ncol, data, indices, indptr, err := readSparseGroup(c)
	if err != nil {
		return Csr{}, err
	}
	return Csr{DType: dt, NRows: nrow, NCols: ncol, Data: data, Indices: indices, Indptr: indptr}, nil
}

// ReadCsc reads a Csc matrix back from a DataContainer written by Csc.Write.
func ReadCsc(c backend.DataContainer) (Csc, error) {
	dt, nrow, ncol, data, indices, indptr, err := readSparseGroup(c)
	if err != nil {
		return Csc{}, err
	}
	return Csc{DType: dt, NRows: nrow, NCols: ncol, Data: data, Indices: indices, Indptr: indptr}, nil
}

// ToDense expands m into a row-major DynArray of shape (NRows, NCols).
func (m Csr) ToDense() (DynArray, error) {
	n := m.NRows * m.NCols
	out := zeroTyped(m.DType, n)
	for row := 0; row < m.NRows; row++ {
		start, end := m.Indptr[row], m.Indptr[row+1]
		for k := start; k < end; k++ {
			col := int(m.Indices[k])
			v, err := elemAt(m.Data, int(k))
			if err != nil {
				return DynArray{}, err
			}
			if err := setElemAny(out, row*m.NCols+col, v); err != nil {
				return DynArray{}, err
			}
		}
	}
	return DynArray{DType: m.DType, Shape: shape.New(m.NRows, m.NCols), Data: out}, nil
}

// ToDense expands m into a row-major DynArray of shape (NRows, NCols).
func (m Csc) ToDense() (DynArray, error) {
	n := m.NRows * m.NCols
	out := zeroTyped(m.DType, n)
	for col := 0; col < m.NCols; col++ {
		start, end := m.Indptr[col], m.Indptr[col+1]
		for k := start; k < end; k++ {
			row := int(m.Indices[k])
			v, err := elemAt(m.Data, int(k))
			if err != nil {
				return DynArray{}, err
			}
			if err := setElemAny(out, row*m.NCols+col, v); err != nil {
				return DynArray{}, err
			}
		}
	}
	return DynArray{DType: m.DType, Shape: shape.New(m.NRows, m.NCols), Data: out}, nil
}

// SelectRows returns the sub-matrix containing exactly the given row
// indices (possibly repeated or reordered), gathering each row's
// indptr segment and rebuilding indptr by running sum.
func (m Csr) SelectRows(rows []int) (Csr, error) {
	const op = "Csr.SelectRows"
	newIndptr := []int32{0}
	var newIndices []int32
	var total int32
	for _, r := range rows {
		if r < 0 || r >= m.NRows {
			return Csr{}, backend.Errorf(backend.Bounds, op, "row %d out of range", r)
		}
		start, end := m.Indptr[r], m.Indptr[r+1]
		newIndices = append(newIndices, m.Indices[start:end]...)
		total += end - start
		newIndptr = append(newIndptr, total)
	}
	newData := zeroTyped(m.DType, int(total))
	offset := 0
	for _, r := range rows {
		start, end := m.Indptr[r], m.Indptr[r+1]
		offset += copyTyped(newData, offset, sliceTyped(m.Data, int(start), int(end)))
	}
	return Csr{DType: m.DType, NRows: len(rows), NCols: m.NCols, Data: newData, Indices: newIndices, Indptr: newIndptr}, nil
}

// SelectCols returns the sub-matrix containing exactly the given column
// indices (possibly repeated or reordered), the column-major twin of
// Csr.SelectRows.
func (m Csc) SelectCols(cols []int) (Csc, error) {
	const op = "Csc.SelectCols"
	newIndptr := []int32{0}
	var newIndices []int32
	var total int32
	for _, c := range cols {
		if c < 0 || c >= m.NCols {
			return Csc{}, backend.Errorf(backend.Bounds, op, "column %d out of range", c)
		}
		start, end := m.Indptr[c], m.Indptr[c+1]
		newIndices = append(newIndices, m.Indices[start:end]...)
		total += end - start
		newIndptr = append(newIndptr, total)
	}
	newData := zeroTyped(m.DType, int(total))
	offset := 0
	for _, c := range cols {
		start, end := m.Indptr[c], m.Indptr[c+1]
		offset += copyTyped(newData, offset, sliceTyped(m.Data, int(start), int(end)))
	}
	return Csc{DType: m.DType, NRows: m.NRows, NCols: len(cols), Data: newData, Indices: newIndices, Indptr: newIndptr}, nil
}

func setElemAny(data any, i int, v any) error {
	switch d := data.(type) {
	case []int8:
		d[i] = v.(int8)
	case []int16:
		d[i] = v.(int16)
	case []int32:
		d[i] = v.(int32)
	case []int64:
		d[i] = v.(int64)
	case []uint8:
		d[i] = v.(uint8)
	case []uint16:
		d[i] = v.(uint16)
	case []uint32:
		d[i] = v.(uint32)
	case []uint64:
		d[i] = v.(uint64)
	case []float32:
		d[i] = v.(float32)
	case []float64:
		d[i] = v.(float64)
	case []bool:
		d[i] = v.(bool)
	case []string:
		d[i] = v.(string)
	default:
		return backend.Errorf(backend.Cast, "value.setElemAny", "unsupported element type %T", data)
	}
	return nil
}

func sliceTyped(data any, start, end int) any {
	switch d := data.(type) {
	case []int8:
		return d[start:end]
	case []int16:
		return d[start:end]
	case []int32:
		return d[start:end]
	case []int64:
		return d[start:end]
	case []uint8:
		return d[start:end]
	case []uint16:
		return d[start:end]
	case []uint32:
		return d[start:end]
	case []uint64:
		return d[start:end]
	case []float32:
		return d[start:end]
	case []float64:
		return d[start:end]
	case []bool:
		return d[start:end]
	case []string:
		return d[start:end]
	default:
		return nil
	}
}
