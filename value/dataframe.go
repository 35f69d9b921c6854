package value

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// DataFrame is a group of equal-length named columns, each either a
// DynArray or a Categorical, with one designated index column.
type DataFrame struct {
	IndexName   string
	ColumnOrder []string // excludes IndexName only if it is not itself a data column
	Columns     map[string]Value
}

func (f DataFrame) DataType() dtype.DataType { return dtype.DataFrame }

// Height returns the number of rows, taken from the index column's
// length; zero if the data frame has no columns.
func (f DataFrame) Height() int {
	idx, ok := f.Columns[f.IndexName]
	if !ok {
		return 0
	}
	switch v := idx.(type) {
	case DynArray:
		return v.Shape.Size()
	case Categorical:
		return len(v.Codes)
	default:
		return 0
	}
}

func (f DataFrame) Write(g backend.Group, name string) (backend.DataContainer, error) {
	const op = "DataFrame.Write"
	grp, err := g.NewGroup(name)
	if err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	cleanup := func(failed error) (backend.DataContainer, error) {
		_ = g.Delete(name)
		return backend.DataContainer{}, failed
	}
	for _, col := range f.ColumnOrder {
		v, ok := f.Columns[col]
		if !ok {
			return cleanup(backend.Errorf(backend.NotFound, op, "column-order names %q, which has no column data", col))
		}
		if _, err := v.Write(grp, col); err != nil {
			return cleanup(err)
		}
	}
	order := make([]string, len(f.ColumnOrder))
	copy(order, f.ColumnOrder)
	orderRaw := backend.RawArray{DType: dtype.String, Shape: shape.New(len(order)), Data: order}
	if err := grp.NewArrayAttr("column-order", orderRaw); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewStrAttr("_index", f.IndexName); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewStrAttr(backend.EncodingTypeAttr, "dataframe"); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewStrAttr(backend.EncodingVersionAttr, backend.EncodingVersion); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	return backend.FromGroup(grp), nil
}

// ReadDataFrame reads a DataFrame back from a DataContainer written by
// DataFrame.Write.
func ReadDataFrame(c backend.DataContainer) (DataFrame, error) {
	const op = "value.ReadDataFrame"
	g, err := c.AsGroup()
	if err != nil {
		return DataFrame{}, err
	}
	indexName, err := g.GetStrAttr("_index")
	if err != nil {
		return DataFrame{}, backend.Wrap(backend.BackendIo, op, err)
	}
	orderRaw, err := g.GetArrayAttr("column-order")
	if err != nil {
		return DataFrame{}, backend.Wrap(backend.BackendIo, op, err)
	}
	order, ok := orderRaw.Data.([]string)
	if !ok {
		return DataFrame{}, backend.Errorf(backend.DTypeMismatch, op, "column-order attribute is not a string array")
	}
	cols := make(map[string]Value, len(order))
	for _, name := range order {
		child, err := backend.Open(g, name)
		if err != nil {
			return DataFrame{}, backend.Wrap(backend.BackendIo, op, err)
		}
		v, err := ReadValue(child)
		if err != nil {
			return DataFrame{}, err
		}
		cols[name] = v
	}
	return DataFrame{IndexName: indexName, ColumnOrder: order, Columns: cols}, nil
}

// ReadValue dispatches on c's encoding-type (backend.DataContainer.EncodingType)
// and reads back the matching dynamic value kind.
func ReadValue(c backend.DataContainer) (Value, error) {
	const op = "value.ReadValue"
	dt, err := c.EncodingType()
	if err != nil {
		return nil, err
	}
	switch dt.Kind {
	case dtype.KindScalar:
		return ReadScalar(c)
	case dtype.KindArray:
		return ReadDynArray(c)
	case dtype.KindCategorical:
		return ReadCategorical(c)
	case dtype.KindDataFrame:
		return ReadDataFrame(c)
	case dtype.KindCsrMatrix:
		return ReadCsr(c)
	case dtype.KindCscMatrix:
		return ReadCsc(c)
	case dtype.KindMapping:
		return ReadMapping(c)
	default:
		return nil, backend.Errorf(backend.EncodingUnsupported, op, "encoding-type %s is not a readable element value", dt)
	}
}
