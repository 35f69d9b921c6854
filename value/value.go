// Package value implements the dynamic-typed value layer:
// scalars, dense arrays, copy-on-write array views, sparse CSR/CSC
// matrices, categorical vectors, and data frames, each closed over the
// scalar types in dtype and able to round-trip through a backend.Group
// via the container conventions of backend.DataContainer.
package value

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
)

// Value is implemented by every dynamic value kind in this package.
type Value interface {
	DataType() dtype.DataType
	Write(g backend.Group, name string) (backend.DataContainer, error)
}
