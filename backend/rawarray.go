package backend

import (
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// GatherRaw applies sel to arr, dispatching on arr.DType to the matching
// Go slice type.
func GatherRaw(arr RawArray, sel shape.Select) (RawArray, error) {
	const op = "backend.GatherRaw"
	switch d := arr.Data.(type) {
	case []int8:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []int16:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []int32:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []int64:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []uint8:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []uint16:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []uint32:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []uint64:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []float32:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []float64:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []bool:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	case []string:
		out, sh, err := shape.Gather(d, arr.Shape, sel)
		return mkRaw(op, arr.DType, out, sh, err)
	default:
		return RawArray{}, Errorf(DTypeMismatch, op, "unsupported raw array element type %T", arr.Data)
	}
}

// ScatterRaw writes src (in selection order) into a copy of dst at the
// positions selected by sel, dispatching on dst.DType.
func ScatterRaw(dst RawArray, sel shape.Select, src RawArray) (RawArray, error) {
	const op = "backend.ScatterRaw"
	if dst.DType != src.DType {
		return RawArray{}, Errorf(DTypeMismatch, op, "selection target is %s, value is %s", dst.DType, src.DType)
	}
	switch d := dst.Data.(type) {
	case []int8:
		v, ok := src.Data.([]int8)
		return scatterInto(op, dst, sel, d, v, ok)
	case []int16:
		v, ok := src.Data.([]int16)
		return scatterInto(op, dst, sel, d, v, ok)
	case []int32:
		v, ok := src.Data.([]int32)
		return scatterInto(op, dst, sel, d, v, ok)
	case []int64:
		v, ok := src.Data.([]int64)
		return scatterInto(op, dst, sel, d, v, ok)
	case []uint8:
		v, ok := src.Data.([]uint8)
		return scatterInto(op, dst, sel, d, v, ok)
	case []uint16:
		v, ok := src.Data.([]uint16)
		return scatterInto(op, dst, sel, d, v, ok)
	case []uint32:
		v, ok := src.Data.([]uint32)
		return scatterInto(op, dst, sel, d, v, ok)
	case []uint64:
		v, ok := src.Data.([]uint64)
		return scatterInto(op, dst, sel, d, v, ok)
	case []float32:
		v, ok := src.Data.([]float32)
		return scatterInto(op, dst, sel, d, v, ok)
	case []float64:
		v, ok := src.Data.([]float64)
		return scatterInto(op, dst, sel, d, v, ok)
	case []bool:
		v, ok := src.Data.([]bool)
		return scatterInto(op, dst, sel, d, v, ok)
	case []string:
		v, ok := src.Data.([]string)
		return scatterInto(op, dst, sel, d, v, ok)
	default:
		return RawArray{}, Errorf(DTypeMismatch, op, "unsupported raw array element type %T", dst.Data)
	}
}

func scatterInto[T any](op string, dst RawArray, sel shape.Select, data, values []T, ok bool) (RawArray, error) {
	if !ok {
		return RawArray{}, Errorf(DTypeMismatch, op, "value element type does not match target dataset")
	}
	cp := make([]T, len(data))
	copy(cp, data)
	if err := shape.Scatter(cp, dst.Shape, sel, values); err != nil {
		return RawArray{}, Errorf(ShapeMismatch, op, "%v", err)
	}
	return RawArray{DType: dst.DType, Shape: dst.Shape, Data: cp}, nil
}

func mkRaw[T any](op string, dt dtype.ScalarType, data []T, sh shape.Shape, err error) (RawArray, error) {
	if err != nil {
		return RawArray{}, Errorf(ShapeMismatch, op, "%v", err)
	}
	return RawArray{DType: dt, Shape: sh, Data: data}, nil
}
