package axis

import (
	"sort"
	"sync"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/value"
)

// ElemCollection is an AxisArrays without the shared-axis-length
// invariant: a plain name-to-value mapping backed by a group. Used for
// uns.
type ElemCollection struct {
	group backend.Group

	mu   sync.Mutex
	data map[string]*elem.RawElem
}

// NewElemCollection returns an empty collection backed by an
// already-created (and empty) group.
func NewElemCollection(g backend.Group) *ElemCollection {
	return &ElemCollection{group: g, data: make(map[string]*elem.RawElem)}
}

// OpenElemCollection reconstructs a collection from a group's existing
// children.
func OpenElemCollection(g backend.Group) (*ElemCollection, error) {
	const op = "axis.OpenElemCollection"
	names, err := g.List()
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	c := NewElemCollection(g)
	for _, name := range names {
		container, err := backend.Open(g, name)
		if err != nil {
			return nil, err
		}
		re, err := elem.NewRawElem(container)
		if err != nil {
			return nil, err
		}
		c.data[name] = re
	}
	return c, nil
}

// Insert writes data under key, replacing any prior entry of that name.
func (c *ElemCollection) Insert(key string, data value.Value) error {
	const op = "ElemCollection.Insert"
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; ok {
		if err := c.group.Delete(key); err != nil {
			return backend.Wrap(backend.BackendIo, op, err)
		}
	}
	container, err := data.Write(c.group, key)
	if err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	re, err := elem.NewRawElem(container)
	if err != nil {
		return err
	}
	c.data[key] = re
	return nil
}

// Get returns the entry named key.
func (c *ElemCollection) Get(key string) (*elem.RawElem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	re, ok := c.data[key]
	if !ok {
		return nil, backend.Errorf(backend.NotFound, "ElemCollection.Get", "no entry named %q", key)
	}
	return re, nil
}

// Delete removes the entry named key.
func (c *ElemCollection) Delete(key string) error {
	const op = "ElemCollection.Delete"
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.data[key]; !ok {
		return backend.Errorf(backend.NotFound, op, "no entry named %q", key)
	}
	if err := c.group.Delete(key); err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	delete(c.data, key)
	return nil
}

// Keys returns the entry names in lexicographic order.
func (c *ElemCollection) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.data))
	for k := range c.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// List returns every entry, ordered by Keys.
func (c *ElemCollection) List() []*elem.RawElem {
	keys := c.Keys()
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*elem.RawElem, len(keys))
	for i, k := range keys {
		out[i] = c.data[k]
	}
	return out
}
