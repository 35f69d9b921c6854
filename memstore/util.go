package memstore

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
)

func zeroSlice(dt dtype.ScalarType, n int) any {
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

func resizeSlice(dt dtype.ScalarType, data any, n int) any {
	switch d := data.(type) {
	case []int8:
		return resize(d, n)
	case []int16:
		return resize(d, n)
	case []int32:
		return resize(d, n)
	case []int64:
		return resize(d, n)
	case []uint8:
		return resize(d, n)
	case []uint16:
		return resize(d, n)
	case []uint32:
		return resize(d, n)
	case []uint64:
		return resize(d, n)
	case []float32:
		return resize(d, n)
	case []float64:
		return resize(d, n)
	case []bool:
		return resize(d, n)
	case []string:
		return resize(d, n)
	default:
		return zeroSlice(dt, n)
	}
}

func resize[T any](s []T, n int) []T {
	out := make([]T, n)
	copy(out, s)
	return out
}

func cloneRaw(arr backend.RawArray) backend.RawArray {
	return backend.RawArray{DType: arr.DType, Shape: arr.Shape.Clone(), Data: cloneData(arr.Data)}
}

func cloneData(data any) any {
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

func scalarRaw(dt dtype.ScalarType, value any) backend.RawArray {
	var data any
	switch dt {
	case dtype.I8:
		data = []int8{value.(int8)}
	case dtype.I16:
		data = []int16{value.(int16)}
	case dtype.I32:
		data = []int32{value.(int32)}
	case dtype.I64:
		data = []int64{value.(int64)}
	case dtype.U8:
		data = []uint8{value.(uint8)}
	case dtype.U16:
		data = []uint16{value.(uint16)}
	case dtype.U32:
		data = []uint32{value.(uint32)}
	case dtype.U64:
		data = []uint64{value.(uint64)}
	case dtype.F32:
		data = []float32{value.(float32)}
	case dtype.F64:
		data = []float64{value.(float64)}
	case dtype.Bool:
		data = []bool{value.(bool)}
	case dtype.String:
		data = []string{value.(string)}
	}
	return backend.RawArray{DType: dt, Shape: nil, Data: data}
}
