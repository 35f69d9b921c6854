package value

import (
	"github.com/scverse-go/anndata/backend"
)

// CastUsize converts v to a non-negative Go int. Unsigned integers always
// convert; signed integers convert via a checked conversion that fails on
// negative values. Every other source type is a Cast error.
func CastUsize(v any) (int, error) {
	const op = "value.CastUsize"
	switch n := v.(type) {
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case int8:
		return checkedUsize(int64(n), op)
	case int16:
		return checkedUsize(int64(n), op)
	case int32:
		return checkedUsize(int64(n), op)
	case int64:
		return checkedUsize(n, op)
	default:
		return 0, backend.Errorf(backend.Cast, op, "cannot cast %T to usize", v)
	}
}

func checkedUsize(n int64, op string) (int, error) {
	if n < 0 {
		return 0, backend.Errorf(backend.Cast, op, "cannot cast negative value %d to usize", n)
	}
	return int(n), nil
}

// CastF64 converts v to float64. Integers up to 32 bits and bool convert
// (true as 1, false as 0); 64-bit integers, strings, and everything else
// are a Cast error.
func CastF64(v any) (float64, error) {
	const op = "value.CastF64"
	switch n := v.(type) {
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, backend.Errorf(backend.Cast, op, "cannot cast %T to f64", v)
	}
}
