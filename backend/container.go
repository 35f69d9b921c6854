package backend

import (
	"strings"

	"github.com/scverse-go/anndata/dtype"
)

// Encoding attribute names and the single supported encoding-version
// value.
const (
	EncodingTypeAttr    = "encoding-type"
	EncodingVersionAttr = "encoding-version"
	EncodingVersion     = "0.2.0"
)

// ContainerKind tags which backend object kind a DataContainer wraps.
type ContainerKind int

const (
	GroupContainer ContainerKind = iota
	DatasetContainer
)

// DataContainer is either a Group or a Dataset as returned by a backend;
// it always has a Path.
type DataContainer struct {
	kind    ContainerKind
	group   Group
	dataset Dataset
}

// FromGroup wraps a Group as a DataContainer.
func FromGroup(g Group) DataContainer { return DataContainer{kind: GroupContainer, group: g} }

// FromDataset wraps a Dataset as a DataContainer.
func FromDataset(d Dataset) DataContainer { return DataContainer{kind: DatasetContainer, dataset: d} }

// Path returns the container's path relative to the store root.
func (c DataContainer) Path() string {
	if c.kind == GroupContainer {
		return c.group.Path()
	}
	return c.dataset.Path()
}

// Store returns the Store owning c.
func (c DataContainer) Store() (Store, error) { return attrOp(c).Store() }

// AsGroup narrows c to a Group, failing if c wraps a Dataset.
func (c DataContainer) AsGroup() (Group, error) {
	if c.kind != GroupContainer {
		return nil, Errorf(DTypeMismatch, "DataContainer.AsGroup", "expecting Group, found Dataset at %q", c.Path())
	}
	return c.group, nil
}

// AsDataset narrows c to a Dataset, failing if c wraps a Group.
func (c DataContainer) AsDataset() (Dataset, error) {
	if c.kind != DatasetContainer {
		return nil, Errorf(DTypeMismatch, "DataContainer.AsDataset", "expecting Dataset, found Group at %q", c.Path())
	}
	return c.dataset, nil
}

// Open opens the child named name under group, preferring a dataset and
// falling back to a group.
func Open(group Group, name string) (DataContainer, error) {
	const op = "backend.Open"
	exists, err := group.Exists(name)
	if err != nil {
		return DataContainer{}, Wrap(BackendIo, op, err)
	}
	if !exists {
		return DataContainer{}, Errorf(NotFound, op, "no group or dataset named %q", name)
	}
	if ds, err := group.OpenDataset(name); err == nil {
		return FromDataset(ds), nil
	}
	g, err := group.OpenGroup(name)
	if err != nil {
		return DataContainer{}, Wrap(BackendIo, op, err)
	}
	return FromGroup(g), nil
}

// Delete removes the container from its owning store, walking down from
// the root to the container's parent group first.
func Delete(c DataContainer) error {
	const op = "backend.Delete"
	store, err := attrOp(c).Store()
	if err != nil {
		return Wrap(BackendIo, op, err)
	}
	segs := strings.Split(strings.TrimPrefix(c.Path(), "/"), "/")
	var g GroupOps = store
	for _, seg := range segs[:len(segs)-1] {
		grp, err := g.OpenGroup(seg)
		if err != nil {
			return Wrap(BackendIo, op, err)
		}
		g = grp
	}
	return g.Delete(segs[len(segs)-1])
}

func attrOp(c DataContainer) AttributeOp {
	if c.kind == GroupContainer {
		return c.group
	}
	return c.dataset
}

// EncodingType reads the encoding-type attribute (defaulting to
// "mapping" for a Group and "numeric-scalar" for a Dataset) and maps it
// to a DataType.
func (c DataContainer) EncodingType() (dtype.DataType, error) {
	const op = "backend.EncodingType"
	var enc string
	str, err := attrOp(c).GetStrAttr(EncodingTypeAttr)
	if err != nil {
		if c.kind == GroupContainer {
			enc = "mapping"
		} else {
			enc = "numeric-scalar"
		}
	} else {
		enc = str
	}

	switch enc {
	case "string":
		return dtype.Scalar(dtype.String), nil
	case "numeric-scalar":
		ds, err := c.AsDataset()
		if err != nil {
			return dtype.DataType{}, err
		}
		t, err := ds.DType()
		if err != nil {
			return dtype.DataType{}, Wrap(BackendIo, op, err)
		}
		return dtype.Scalar(t), nil
	case "string-array":
		return dtype.Array(dtype.String), nil
	case "array":
		ds, err := c.AsDataset()
		if err != nil {
			return dtype.DataType{}, err
		}
		t, err := ds.DType()
		if err != nil {
			return dtype.DataType{}, Wrap(BackendIo, op, err)
		}
		return dtype.Array(t), nil
	case "csr_matrix", "csc_matrix":
		g, err := c.AsGroup()
		if err != nil {
			return dtype.DataType{}, err
		}
		data, err := g.OpenDataset("data")
		if err != nil {
			return dtype.DataType{}, Wrap(BackendIo, op, err)
		}
		t, err := data.DType()
		if err != nil {
			return dtype.DataType{}, Wrap(BackendIo, op, err)
		}
		if enc == "csr_matrix" {
			return dtype.CsrMatrix(t), nil
		}
		return dtype.CscMatrix(t), nil
	case "categorical":
		return dtype.Categorical, nil
	case "dataframe":
		return dtype.DataFrame, nil
	case "mapping", "dict":
		return dtype.Mapping, nil
	default:
		return dtype.DataType{}, Errorf(EncodingUnsupported, op, "unsupported encoding-type %q", enc)
	}
}
