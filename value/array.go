package value

import (
	"fmt"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// DynArray is a dynamically typed, N-dimensional, row-major dense array:
// the array analogue of DynScalar.
type DynArray struct {
	DType dtype.ScalarType
	Shape shape.Shape
	Data  any
}

func (a DynArray) DataType() dtype.DataType { return dtype.Array(a.DType) }

// Raw views a as the backend-level RawArray it wraps.
func (a DynArray) Raw() backend.RawArray {
	return backend.RawArray{DType: a.DType, Shape: a.Shape, Data: a.Data}
}

// FromRaw wraps a backend RawArray as a DynArray.
func FromRaw(r backend.RawArray) DynArray {
	return DynArray{DType: r.DType, Shape: r.Shape, Data: r.Data}
}

// Clone returns a deep copy of a.
func (a DynArray) Clone() DynArray {
	return DynArray{DType: a.DType, Shape: a.Shape.Clone(), Data: cloneTyped(a.Data)}
}

// Get returns the scalar at index.
func (a DynArray) Get(index []int) (DynScalar, error) {
	const op = "DynArray.Get"
	if len(index) != a.Shape.NDim() {
		return DynScalar{}, backend.Errorf(backend.ShapeMismatch, op, "index has %d axes, array has %d", len(index), a.Shape.NDim())
	}
	strides := shape.Strides(a.Shape)
	flat := 0
	for i, ix := range index {
		if ix < 0 || ix >= a.Shape[i] {
			return DynScalar{}, backend.Errorf(backend.Bounds, op, "index %d out of range for axis %d (len %d)", ix, i, a.Shape[i])
		}
		flat += ix * strides[i]
	}
	v, err := elemAt(a.Data, flat)
	if err != nil {
		return DynScalar{}, backend.Wrap(backend.DTypeMismatch, op, err)
	}
	return DynScalar{DType: a.DType, Value: v}, nil
}

// Select returns a new DynArray holding the elements sel addresses, per
// the composable selection algebra of shape.Select.
func (a DynArray) Select(sel shape.Select) (DynArray, error) {
	out, err := backend.GatherRaw(a.Raw(), sel)
	if err != nil {
		return DynArray{}, err
	}
	return FromRaw(out), nil
}

// Write stores a as a dataset under name, tagged "array" or
// "string-array", using the default block-size/compression policy.
func (a DynArray) Write(g backend.Group, name string) (backend.DataContainer, error) {
	const op = "DynArray.Write"
	ds, err := backend.NewArrayDataset(g, name, a.Raw(), backend.DefaultWriteConfig())
	if err != nil {
		return backend.DataContainer{}, err
	}
	enc := "array"
	if a.DType == dtype.String {
		enc = "string-array"
	}
	if err := ds.NewStrAttr(backend.EncodingTypeAttr, enc); err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	if err := ds.NewStrAttr(backend.EncodingVersionAttr, backend.EncodingVersion); err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	return backend.FromDataset(ds), nil
}

// ReadDynArray reads a whole DynArray back from a DataContainer written by
// DynArray.Write.
func ReadDynArray(c backend.DataContainer) (DynArray, error) {
	ds, err := c.AsDataset()
	if err != nil {
		return DynArray{}, err
	}
	raw, err := backend.ReadArray(ds)
	if err != nil {
		return DynArray{}, err
	}
	return FromRaw(raw), nil
}

// VStack concatenates arrays along axis 0. All inputs must share a dtype
// and a trailing shape (every axis but the first).
func VStack(arrays []DynArray) (DynArray, error) {
	const op = "value.VStack"
	if len(arrays) == 0 {
		return DynArray{}, backend.Errorf(backend.ShapeMismatch, op, "no arrays to stack")
	}
	dt := arrays[0].DType
	tail := arrays[0].Shape[1:]
	total := 0
	for _, a := range arrays {
		if a.DType != dt {
			return DynArray{}, backend.Errorf(backend.DTypeMismatch, op, "mixed dtypes %s and %s", dt, a.DType)
		}
		if !shape.Shape(a.Shape[1:]).Equal(tail) {
			return DynArray{}, backend.Errorf(backend.ShapeMismatch, op, "mismatched trailing shape %v vs %v", a.Shape[1:], tail)
		}
		total += a.Shape[0]
	}
	outShape := append(shape.Shape{total}, tail...)
	out := zeroTyped(dt, outShape.Size())
	offset := 0
	for _, a := range arrays {
		offset += copyTyped(out, offset, a.Data)
	}
	return DynArray{DType: dt, Shape: outShape, Data: out}, nil
}

func elemAt(data any, i int) (any, error) {
	switch d := data.(type) {
	case []int8:
		return d[i], nil
	case []int16:
		return d[i], nil
	case []int32:
		return d[i], nil
	case []int64:
		return d[i], nil
	case []uint8:
		return d[i], nil
	case []uint16:
		return d[i], nil
	case []uint32:
		return d[i], nil
	case []uint64:
		return d[i], nil
	case []float32:
		return d[i], nil
	case []float64:
		return d[i], nil
	case []bool:
		return d[i], nil
	case []string:
		return d[i], nil
	default:
		return nil, fmt.Errorf("value: unsupported element type %T", data)
	}
}

func cloneTyped(data any) any {
	switch d := data.(type) {
	case []int8:
		return append([]int8(nil), d...)
	case []int16:
		return append([]int16(nil), d...)
	case []int32:
		return append([]int32(nil), d...)
	case []int64:
		return append([]int64(nil), d...)
	case []uint8:
		return append([]uint8(nil), d...)
	case []uint16:
		return append([]uint16(nil), d...)
	case []uint32:
		return append([]uint32(nil), d...)
	case []uint64:
		return append([]uint64(nil), d...)
	case []float32:
		return append([]float32(nil), d...)
	case []float64:
		return append([]float64(nil), d...)
	case []bool:
		return append([]bool(nil), d...)
	case []string:
		return append([]string(nil), d...)
	default:
		return data
	}
}

func zeroTyped(dt dtype.ScalarType, n int) any {
	switch dt {
	case dtype.I8:
		return make([]int8, n)
	case dtype.I16:
		return make([]int16, n)
	case dtype.I32:
		return make([]int32, n)
	case dtype.I64:
		return make([]int64, n)
	case dtype.U8:
		return make([]uint8, n)
	case dtype.U16:
		return make([]uint16, n)
	case dtype.U32:
		return make([]uint32, n)
	case dtype.U64:
		return make([]uint64, n)
	case dtype.F32:
		return make([]float32, n)
	case dtype.F64:
		return make([]float64, n)
	case dtype.Bool:
		return make([]bool, n)
	case dtype.String:
		return make([]string, n)
	default:
		return nil
	}
}

// copyTyped copies src into dst starting at element offset, returning the
// number of elements copied.
func copyTyped(dst any, offset int, src any) int {
	switch d := src.(type) {
	case []int8:
		return copy(dst.([]int8)[offset:], d)
	case []int16:
		return copy(dst.([]int16)[offset:], d)
	case []int32:
		return copy(dst.([]int32)[offset:], d)
	case []int64:
		return copy(dst.([]int64)[offset:], d)
	case []uint8:
		return copy(dst.([]uint8)[offset:], d)
	case []uint16:
		return copy(dst.([]uint16)[offset:], d)
	case []uint32:
		return copy(dst.([]uint32)[offset:], d)
	case []uint64:
		return copy(dst.([]uint64)[offset:], d)
	case []float32:
		return copy(dst.([]float32)[offset:], d)
	case []float64:
		return copy(dst.([]float64)[offset:], d)
	case []bool:
		return copy(dst.([]bool)[offset:], d)
	case []string:
		return copy(dst.([]string)[offset:], d)
	default:
		return 0
	}
}
