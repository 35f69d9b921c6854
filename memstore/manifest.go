package memstore

import (
	"fmt"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// rawToStruct encodes a RawArray as a structpb.Struct so it can be
// persisted via proto.Marshal. Numeric elements are carried as float64,
// protobuf's Value JSON-number representation; this loses precision
// above 2^53 for I64/U64 attributes, an accepted limitation for a
// reference backend whose attributes are shapes, compression levels, and
// tags rather than bulk data.
func rawToStruct(arr backend.RawArray) (*structpb.Struct, error) {
	shapeVals := make([]any, len(arr.Shape))
	for i, d := range arr.Shape {
		shapeVals[i] = float64(d)
	}
	dataVals, err := dataToValues(arr.Data)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(map[string]any{
		"dtype": arr.DType.String(),
		"shape": shapeVals,
		"data":  dataVals,
	})
}

func structToRaw(s *structpb.Struct) (backend.RawArray, error) {
	fields := s.GetFields()
	dtStr, ok := fields["dtype"]
	if !ok {
		return backend.RawArray{}, fmt.Errorf("memstore: attribute manifest missing dtype")
	}
	dt, err := dtype.ParseScalarType(dtStr.GetStringValue())
	if err != nil {
		return backend.RawArray{}, err
	}
	shapeList := fields["shape"].GetListValue().GetValues()
	sh := make(shape.Shape, len(shapeList))
	for i, v := range shapeList {
		sh[i] = int(v.GetNumberValue())
	}
	dataList := fields["data"].GetListValue().GetValues()
	data, err := valuesToData(dt, dataList)
	if err != nil {
		return backend.RawArray{}, err
	}
	return backend.RawArray{DType: dt, Shape: sh, Data: data}, nil
}

func dataToValues(data any) ([]any, error) {
	switch d := data.(type) {
	case []int8:
		return numToValues(d)
	case []int16:
		return numToValues(d)
	case []int32:
		return numToValues(d)
	case []int64:
		return numToValues(d)
	case []uint8:
		return numToValues(d)
	case []uint16:
		return numToValues(d)
	case []uint32:
		return numToValues(d)
	case []uint64:
		return numToValues(d)
	case []float32:
		return numToValues(d)
	case []float64:
		return numToValues(d)
	case []bool:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out, nil
	case []string:
		out := make([]any, len(d))
		for i, v := range d {
			out[i] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("memstore: unsupported attribute element type %T", data)
	}
}

type numeric interface {
	~int8 | ~int16 | ~int32 | ~int64 | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~float32 | ~float64
}

func numToValues[T numeric](d []T) ([]any, error) {
	out := make([]any, len(d))
	for i, v := range d {
		out[i] = float64(v)
	}
	return out, nil
}

func valuesToData(dt dtype.ScalarType, vals []*structpb.Value) (any, error) {
	n := len(vals)
	switch dt {
	case dtype.I8:
		return mapNum[int8](vals), nil
	case dtype.I16:
		return mapNum[int16](vals), nil
	case dtype.I32:
		return mapNum[int32](vals), nil
	case dtype.I64:
		return mapNum[int64](vals), nil
	case dtype.U8:
		return mapNum[uint8](vals), nil
	case dtype.U16:
		return mapNum[uint16](vals), nil
	case dtype.U32:
		return mapNum[uint32](vals), nil
	case dtype.U64:
		return mapNum[uint64](vals), nil
	case dtype.F32:
		return mapNum[float32](vals), nil
	case dtype.F64:
		return mapNum[float64](vals), nil
	case dtype.Bool:
		out := make([]bool, n)
		for i, v := range vals {
			out[i] = v.GetBoolValue()
		}
		return out, nil
	case dtype.String:
		out := make([]string, n)
		for i, v := range vals {
			out[i] = v.GetStringValue()
		}
		return out, nil
	default:
		return nil, fmt.Errorf("memstore: unsupported attribute dtype %s", dt)
	}
}

func mapNum[T numeric](vals []*structpb.Value) []T {
	out := make([]T, len(vals))
	for i, v := range vals {
		out[i] = T(v.GetNumberValue())
	}
	return out
}
