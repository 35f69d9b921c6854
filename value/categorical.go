package value

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// Categorical is a factor-encoded string vector: Codes index into
// Categories, with -1 denoting a missing value. Ordered marks
// the categories as carrying a meaningful order; it defaults to false
// and is persisted as an optional scalar attribute.
type Categorical struct {
	Categories []string
	Codes      []int32
	Ordered    bool
}

func (c Categorical) DataType() dtype.DataType { return dtype.Categorical }

func (c Categorical) Write(g backend.Group, name string) (backend.DataContainer, error) {
	const op = "Categorical.Write"
	grp, err := g.NewGroup(name)
	if err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	cleanup := func(failed error) (backend.DataContainer, error) {
		_ = g.Delete(name)
		return backend.DataContainer{}, failed
	}
	catsRaw := backend.RawArray{DType: dtype.String, Shape: shape.New(len(c.Categories)), Data: c.Categories}
	if _, err := backend.NewArrayDataset(grp, "categories", catsRaw, backend.DefaultWriteConfig()); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	codesRaw := backend.RawArray{DType: dtype.I32, Shape: shape.New(len(c.Codes)), Data: c.Codes}
	if _, err := backend.NewArrayDataset(grp, "codes", codesRaw, backend.DefaultWriteConfig()); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewScalarAttr("ordered", dtype.Bool, c.Ordered); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewStrAttr(backend.EncodingTypeAttr, "categorical"); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewStrAttr(backend.EncodingVersionAttr, backend.EncodingVersion); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	return backend.FromGroup(grp), nil
}

// ReadCategorical reads a Categorical back from a DataContainer written by
// Categorical.Write.
func ReadCategorical(c backend.DataContainer) (Categorical, error) {
	const op = "value.ReadCategorical"
	g, err := c.AsGroup()
	if err != nil {
		return Categorical{}, err
	}
	catsDs, err := g.OpenDataset("categories")
	if err != nil {
		return Categorical{}, backend.Wrap(backend.BackendIo, op, err)
	}
	catsRaw, err := backend.ReadArray(catsDs)
	if err != nil {
		return Categorical{}, err
	}
	codesDs, err := g.OpenDataset("codes")
	if err != nil {
		return Categorical{}, backend.Wrap(backend.BackendIo, op, err)
	}
	codesRaw, err := backend.ReadArray(codesDs)
	if err != nil {
		return Categorical{}, err
	}
	cats, ok := catsRaw.Data.([]string)
	if !ok {
		return Categorical{}, backend.Errorf(backend.DTypeMismatch, op, "categories dataset is not string-typed")
	}
	codes, ok := codesRaw.Data.([]int32)
	if !ok {
		return Categorical{}, backend.Errorf(backend.DTypeMismatch, op, "codes dataset is not i32-typed")
	}
	ordered := false
	if v, err := g.GetScalarAttr("ordered"); err == nil {
		if b, ok := v.(bool); ok {
			ordered = b
		}
	}
	return Categorical{Categories: cats, Codes: codes, Ordered: ordered}, nil
}

// Strings materializes the categorical as a plain string slice,
// translating missing codes (-1) to "".
func (c Categorical) Strings() []string {
	out := make([]string, len(c.Codes))
	for i, code := range c.Codes {
		if code < 0 || int(code) >= len(c.Categories) {
			out[i] = ""
			continue
		}
		out[i] = c.Categories[code]
	}
	return out
}

// Subset returns the categorical restricted to indices (order preserved;
// duplicates and reordering permitted).
func (c Categorical) Subset(indices []int) (Categorical, error) {
	const op = "Categorical.Subset"
	codes := make([]int32, len(indices))
	for i, idx := range indices {
		if idx < 0 || idx >= len(c.Codes) {
			return Categorical{}, backend.Errorf(backend.Bounds, op, "index %d out of range (len %d)", idx, len(c.Codes))
		}
		codes[i] = c.Codes[idx]
	}
	return Categorical{Categories: c.Categories, Codes: codes, Ordered: c.Ordered}, nil
}
