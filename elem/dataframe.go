package elem

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/value"
)

// DataFrameElem is a lazy handle onto a DataFrame value, adding row
// subsetting (by index row, not by column) on top of RawElem.
type DataFrameElem struct {
	NRows int
	inner *RawElem
}

// NewDataFrameElem wraps an already-open data-frame container.
func NewDataFrameElem(c backend.DataContainer) (*DataFrameElem, error) {
	inner, err := NewRawElem(c)
	if err != nil {
		return nil, err
	}
	df, err := value.ReadDataFrame(c)
	if err != nil {
		return nil, err
	}
	return &DataFrameElem{NRows: df.Height(), inner: inner}, nil
}

func (e *DataFrameElem) EnableCache()  { e.inner.EnableCache() }
func (e *DataFrameElem) DisableCache() { e.inner.DisableCache() }

// ReadElem reads the whole data frame.
func (e *DataFrameElem) ReadElem() (value.DataFrame, error) { return As[value.DataFrame](e.inner) }

// WriteElem writes the element's current value to a new location.
func (e *DataFrameElem) WriteElem(g backend.Group, name string) error {
	return e.inner.WriteElem(g, name)
}

// SubsetRows rewrites the backing container in place to hold only the
// given rows, in the order given.
func (e *DataFrameElem) SubsetRows(idx []int) error {
	const op = "DataFrameElem.SubsetRows"
	for _, i := range idx {
		if i < 0 || i >= e.NRows {
			return backend.Errorf(backend.Bounds, op, "row %d out of range (nrows %d)", i, e.NRows)
		}
	}
	df, err := e.ReadElem()
	if err != nil {
		return err
	}
	subset := value.DataFrame{IndexName: df.IndexName, ColumnOrder: df.ColumnOrder, Columns: make(map[string]value.Value, len(df.Columns))}
	for name, col := range df.Columns {
		switch c := col.(type) {
		case value.DynArray:
			s, err := c.Select(indexSelect(idx))
			if err != nil {
				return err
			}
			subset.Columns[name] = s
		case value.Categorical:
			s, err := c.Subset(idx)
			if err != nil {
				return err
			}
			subset.Columns[name] = s
		default:
			return backend.Errorf(backend.DTypeMismatch, op, "column %q has unsupported type %T for row subsetting", name, col)
		}
	}
	if err := replaceContainer(e.inner, subset); err != nil {
		return err
	}
	e.NRows = len(idx)
	return nil
}

func replaceContainer(r *RawElem, v value.Value) error {
	const op = "elem.replaceContainer"
	store, err := storeOf(r.container)
	if err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	parentName, childName := splitPath(r.container.Path())
	parent, err := openParent(store, parentName)
	if err != nil {
		return err
	}
	if err := parent.Delete(childName); err != nil && !parentHasNoSuchChild(err) {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	c, err := v.Write(parent, childName)
	if err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	r.container = c
	if r.cacheEnabled {
		r.cached = v
	}
	return nil
}
