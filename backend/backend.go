// Package backend defines the surface a hierarchical file store must
// provide: Store/Group/Dataset objects with typed attributes and
// chunked, optionally-compressed, selection-addressable datasets. It
// also defines DataContainer, the encoding-type-driven dispatch used by
// the dynamic value layer.
//
// This package has no concrete implementation of its own; see memstore
// for a reference backend exercising these interfaces.
package backend

import (
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// RawArray is the concrete, self-describing value a Dataset reads and
// writes: a flat, row-major slice of one of the closed ScalarType Go
// representations, tagged with its element type and shape.
//
// Data holds exactly one of: []int8, []int16, []int32, []int64, []uint8,
// []uint16, []uint32, []uint64, []float32, []float64, []bool, []string.
// len(Data) == Shape.Size().
type RawArray struct {
	DType dtype.ScalarType
	Shape shape.Shape
	Data  any
}

// WriteConfig configures a dataset write.
type WriteConfig struct {
	// Compression is a level in 0..=9; nil means "use the default policy".
	Compression *int
	// BlockSize is the chunk shape; nil means "use the default policy".
	BlockSize shape.Shape
}

// DefaultWriteConfig returns the default WriteConfig: compression level
// 1, block size computed from the data shape at write time.
func DefaultWriteConfig() WriteConfig {
	lvl := 1
	return WriteConfig{Compression: &lvl}
}

// DefaultBlockSize computes the convenience block-size policy: for a
// 1-D shape, min(len, 10_000); for N-D, each axis min(len_i, 100).
func DefaultBlockSize(sh shape.Shape) shape.Shape {
	if len(sh) == 1 {
		return shape.New(min(sh[0], 10_000))
	}
	out := make(shape.Shape, len(sh))
	for i, d := range sh {
		out[i] = min(d, 100)
	}
	return out
}

// ShouldCompress reports whether a value of the given flattened length
// should be compressed under cfg: compression is suppressed for arrays
// of length <= 100.
func ShouldCompress(length int, cfg WriteConfig) bool {
	return cfg.Compression != nil && length > 100
}

// AttributeOp is the typed-attribute surface shared by Group and
// Dataset.
type AttributeOp interface {
	// Path returns the location's path relative to the store root.
	Path() string
	// Store returns the owning Store.
	Store() (Store, error)

	NewArrayAttr(name string, value RawArray) error
	NewScalarAttr(name string, dt dtype.ScalarType, value any) error
	NewStrAttr(name string, value string) error

	GetArrayAttr(name string) (RawArray, error)
	GetScalarAttr(name string) (any, error)
	GetStrAttr(name string) (string, error)
}

// GroupOps is the object-tree surface shared by Store and Group.
type GroupOps interface {
	List() ([]string, error)
	NewGroup(name string) (Group, error)
	OpenGroup(name string) (Group, error)
	NewEmptyDataset(name string, sh shape.Shape, dt dtype.ScalarType, cfg WriteConfig) (Dataset, error)
	OpenDataset(name string) (Dataset, error)
	Delete(name string) error
	Exists(name string) (bool, error)
}

// Store is the root handle onto a hierarchical container.
type Store interface {
	GroupOps
	Filename() string
	Close() error
}

// Group works like a directory: it can contain groups or datasets, and
// carries typed attributes.
type Group interface {
	GroupOps
	AttributeOp
}

// Dataset stores a multi-dimensional array of one ScalarType, and carries
// typed attributes.
type Dataset interface {
	AttributeOp

	DType() (dtype.ScalarType, error)
	Shape() shape.Shape
	Reshape(newShape shape.Shape) error

	ReadSlice(sel shape.Select) (RawArray, error)
	WriteSlice(data RawArray, sel shape.Select) error
}

// ReadArray reads the whole dataset, equivalent to ReadSlice with a
// full-axis selection on every dimension.
func ReadArray(d Dataset) (RawArray, error) {
	return d.ReadSlice(shape.FullSlice(d.Shape().NDim()))
}

// ReadScalar reads a 0-d dataset's single value.
func ReadScalar(d Dataset) (any, error) {
	arr, err := ReadArray(d)
	if err != nil {
		return nil, err
	}
	return firstElem(arr)
}

// WriteArray writes data to the whole dataset, equivalent to WriteSlice
// with a full-axis selection on every dimension.
func WriteArray(d Dataset, data RawArray) error {
	return d.WriteSlice(data, shape.FullSlice(len(data.Shape)))
}

// NewArrayDataset creates a dataset sized to data's shape, applies the
// convenience WriteConfig policy, and writes data into it.
func NewArrayDataset(g Group, name string, data RawArray, cfg WriteConfig) (Dataset, error) {
	const op = "backend.NewArrayDataset"
	effective := cfg
	if effective.BlockSize == nil {
		effective.BlockSize = DefaultWriteConfig().BlockSize
	}
	if effective.BlockSize == nil {
		effective.BlockSize = DefaultBlockSize(data.Shape)
	}
	if cfg.Compression == nil {
		lvl := 1
		effective.Compression = &lvl
	}
	if !ShouldCompress(data.Shape.Size(), effective) {
		effective.Compression = nil
	}
	ds, err := g.NewEmptyDataset(name, data.Shape, data.DType, effective)
	if err != nil {
		return nil, Wrap(BackendIo, op, err)
	}
	if err := WriteArray(ds, data); err != nil {
		_ = g.Delete(name)
		return nil, err
	}
	return ds, nil
}

// NewScalarDataset creates a 0-d dataset holding a single value.
func NewScalarDataset(g Group, name string, dt dtype.ScalarType, value any) (Dataset, error) {
	return NewArrayDataset(g, name, RawArray{DType: dt, Shape: shape.Shape{}, Data: wrapScalar(dt, value)}, DefaultWriteConfig())
}

func firstElem(arr RawArray) (any, error) {
	const op = "backend.ReadScalar"
	switch d := arr.Data.(type) {
	case []int8:
		return first(d, op)
	case []int16:
		return first(d, op)
	case []int32:
		return first(d, op)
	case []int64:
		return first(d, op)
	case []uint8:
		return first(d, op)
	case []uint16:
		return first(d, op)
	case []uint32:
		return first(d, op)
	case []uint64:
		return first(d, op)
	case []float32:
		return first(d, op)
	case []float64:
		return first(d, op)
	case []bool:
		return first(d, op)
	case []string:
		return first(d, op)
	default:
		return nil, Errorf(DTypeMismatch, op, "unsupported raw array element type %T", arr.Data)
	}
}

func first[T any](s []T, op string) (any, error) {
	if len(s) != 1 {
		return nil, Errorf(ShapeMismatch, op, "expected a single element, found %d", len(s))
	}
	return s[0], nil
}

func wrapScalar(dt dtype.ScalarType, value any) any {
	switch dt {
	case dtype.I8:
		return []int8{value.(int8)}
	case dtype.I16:
		return []int16{value.(int16)}
	case dtype.I32:
		return []int32{value.(int32)}
	case dtype.I64:
		return []int64{value.(int64)}
	case dtype.U8:
		return []uint8{value.(uint8)}
	case dtype.U16:
		return []uint16{value.(uint16)}
	case dtype.U32:
		return []uint32{value.(uint32)}
	case dtype.U64:
		return []uint64{value.(uint64)}
	case dtype.F32:
		return []float32{value.(float32)}
	case dtype.F64:
		return []float64{value.(float64)}
	case dtype.Bool:
		return []bool{value.(bool)}
	case dtype.String:
		return []string{value.(string)}
	default:
		return nil
	}
}
