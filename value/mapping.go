package value

import (
	"sort"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
)

// Mapping is a free-form name-to-value dictionary persisted as a group
// whose children are the entries, each written through its own Value
// kind. Groups with no encoding-type attribute read back as a Mapping.
type Mapping struct {
	Entries map[string]Value
}

func (m Mapping) DataType() dtype.DataType { return dtype.Mapping }

// Keys returns the entry names in lexicographic order.
func (m Mapping) Keys() []string {
	keys := make([]string, 0, len(m.Entries))
	for k := range m.Entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m Mapping) Write(g backend.Group, name string) (backend.DataContainer, error) {
	const op = "Mapping.Write"
	grp, err := g.NewGroup(name)
	if err != nil {
		return backend.DataContainer{}, backend.Wrap(backend.BackendIo, op, err)
	}
	cleanup := func(failed error) (backend.DataContainer, error) {
		_ = g.Delete(name)
		return backend.DataContainer{}, failed
	}
	for _, key := range m.Keys() {
		if _, err := m.Entries[key].Write(grp, key); err != nil {
			return cleanup(err)
		}
	}
	if err := grp.NewStrAttr(backend.EncodingTypeAttr, "mapping"); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	if err := grp.NewStrAttr(backend.EncodingVersionAttr, backend.EncodingVersion); err != nil {
		return cleanup(backend.Wrap(backend.BackendIo, op, err))
	}
	return backend.FromGroup(grp), nil
}

// ReadMapping reads a Mapping back from a group container, dispatching
// each child through ReadValue.
func ReadMapping(c backend.DataContainer) (Mapping, error) {
	const op = "value.ReadMapping"
	g, err := c.AsGroup()
	if err != nil {
		return Mapping{}, err
	}
	names, err := g.List()
	if err != nil {
		return Mapping{}, backend.Wrap(backend.BackendIo, op, err)
	}
	entries := make(map[string]Value, len(names))
	for _, name := range names {
		child, err := backend.Open(g, name)
		if err != nil {
			return Mapping{}, backend.Wrap(backend.BackendIo, op, err)
		}
		v, err := ReadValue(child)
		if err != nil {
			return Mapping{}, err
		}
		entries[name] = v
	}
	return Mapping{Entries: entries}, nil
}
