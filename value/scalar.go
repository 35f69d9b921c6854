package value

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
)

// DynScalar is a single value tagged with its ScalarType, the element
// type DynArray generalizes to N dimensions.
type DynScalar struct {
	DType dtype.ScalarType
	Value any
}

func (s DynScalar) DataType() dtype.DataType { return dtype.Scalar(s.DType) }

// Write stores s as a 0-d dataset under name, tagged with the
// encoding-type the container dispatch table expects: "string" for a
// string scalar, "numeric-scalar" otherwise.
func (s DynScalar) Write(g backend.Group, name string) (backend.DataContainer, error) {
	const op = "DynScalar.Write"
	ds, err := backend.NewScalarDataset(g, name, s.DType, s.Value)
	if err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	enc := "numeric-scalar"
	if s.DType == dtype.String {
		enc = "string"
	}
	if err := ds.NewStrAttr(backend.EncodingTypeAttr, enc); err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	if err := ds.NewStrAttr(backend.EncodingVersionAttr, backend.EncodingVersion); err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	return backend.FromDataset(ds), nil
}

// ReadScalar reads a DynScalar back from a DataContainer written by
// DynScalar.Write (or by any of the scalar-producing Write methods in this
// package).
func ReadScalar(c backend.DataContainer) (DynScalar, error) {
	const op = "value.ReadScalar"
	ds, err := c.AsDataset()
	if err != nil {
		return DynScalar{}, err
	}
	dt, err := ds.DType()
	if err != nil {
		return DynScalar{}, backend.Wrap(backend.BackendIo, op, err)
	}
	v, err := backend.ReadScalar(ds)
	if err != nil {
		return DynScalar{}, err
	}
	return DynScalar{DType: dt, Value: v}, nil
}
