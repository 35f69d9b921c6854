// Package dtype defines the closed set of scalar element types and the
// tagged DataType describing a stored entity.
package dtype

import "fmt"

// ScalarType is the closed set of element types a DynScalar/DynArray may
// hold.
type ScalarType int

const (
	I8 ScalarType = iota
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	Bool
	String
)

func (t ScalarType) String() string {
	switch t {
	case I8:
		return "i8"
	case I16:
		return "i16"
	case I32:
		return "i32"
	case I64:
		return "i64"
	case U8:
		return "u8"
	case U16:
		return "u16"
	case U32:
		return "u32"
	case U64:
		return "u64"
	case F32:
		return "f32"
	case F64:
		return "f64"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return fmt.Sprintf("ScalarType(%d)", int(t))
	}
}

// ParseScalarType parses the String() form of a ScalarType back into its
// value; used by backends that persist the tag as text (e.g. memstore's
// file-backed attribute manifest).
func ParseScalarType(s string) (ScalarType, error) {
	switch s {
	case "i8":
		return I8, nil
	case "i16":
		return I16, nil
	case "i32":
		return I32, nil
	case "i64":
		return I64, nil
	case "u8":
		return U8, nil
	case "u16":
		return U16, nil
	case "u32":
		return U32, nil
	case "u64":
		return U64, nil
	case "f32":
		return F32, nil
	case "f64":
		return F64, nil
	case "bool":
		return Bool, nil
	case "string":
		return String, nil
	default:
		return 0, fmt.Errorf("dtype: unknown scalar type %q", s)
	}
}

// IsInteger reports whether t is one of the signed or unsigned integer
// types.
func (t ScalarType) IsInteger() bool {
	switch t {
	case I8, I16, I32, I64, U8, U16, U32, U64:
		return true
	default:
		return false
	}
}

// IsSigned reports whether t is one of the signed integer types.
func (t ScalarType) IsSigned() bool {
	switch t {
	case I8, I16, I32, I64:
		return true
	default:
		return false
	}
}

// IsFloat reports whether t is F32 or F64.
func (t ScalarType) IsFloat() bool {
	return t == F32 || t == F64
}

// Kind tags the shape of data a DataType describes.
type Kind int

const (
	KindScalar Kind = iota
	KindArray
	KindCsrMatrix
	KindCscMatrix
	KindCategorical
	KindDataFrame
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindArray:
		return "array"
	case KindCsrMatrix:
		return "csr_matrix"
	case KindCscMatrix:
		return "csc_matrix"
	case KindCategorical:
		return "categorical"
	case KindDataFrame:
		return "dataframe"
	case KindMapping:
		return "mapping"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// DataType tags a stored entity's shape and, where relevant, its element
// ScalarType. Categorical, DataFrame, and Mapping carry no ScalarType.
type DataType struct {
	Kind   Kind
	Scalar ScalarType // meaningful for KindScalar, KindArray, KindCsrMatrix, KindCscMatrix
}

func Scalar(t ScalarType) DataType    { return DataType{Kind: KindScalar, Scalar: t} }
func Array(t ScalarType) DataType     { return DataType{Kind: KindArray, Scalar: t} }
func CsrMatrix(t ScalarType) DataType { return DataType{Kind: KindCsrMatrix, Scalar: t} }
func CscMatrix(t ScalarType) DataType { return DataType{Kind: KindCscMatrix, Scalar: t} }

var (
	Categorical = DataType{Kind: KindCategorical}
	DataFrame   = DataType{Kind: KindDataFrame}
	Mapping     = DataType{Kind: KindMapping}
)

func (d DataType) String() string {
	switch d.Kind {
	case KindScalar, KindArray, KindCsrMatrix, KindCscMatrix:
		return fmt.Sprintf("%s(%s)", d.Kind, d.Scalar)
	default:
		return d.Kind.String()
	}
}

// Equal reports whether d and other describe the same tagged shape.
func (d DataType) Equal(other DataType) bool {
	if d.Kind != other.Kind {
		return false
	}
	switch d.Kind {
	case KindScalar, KindArray, KindCsrMatrix, KindCscMatrix:
		return d.Scalar == other.Scalar
	default:
		return true
	}
}
