// Package memstore implements a reference backend against which the
// rest of this module is exercised: a small, swappable concrete backing
// store behind the backend interfaces, provided in both an in-memory
// and a file-backed flavor. Production deployments are expected to
// swap in a driver for a real hierarchical container format.
package memstore

import (
	"fmt"
	"sort"
	"sync"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// Store is an in-memory, heap-resident implementation of backend.Store.
// It never touches disk; Filename returns a synthetic name.
type Store struct {
	root     *Group
	filename string
	mu       sync.Mutex
	closed   bool
}

// New creates a new in-memory store. name is cosmetic and returned by
// Filename; it has no filesystem meaning.
func New(name string) *Store {
	s := &Store{filename: name}
	s.root = &Group{store: s, path: "/", children: map[string]node{}}
	return s
}

func (s *Store) checkOpen(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return backend.Errorf(backend.BackendClosed, op, "store %q is closed", s.filename)
	}
	return nil
}

func (s *Store) Filename() string { return s.filename }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) List() ([]string, error)    { return s.root.List() }
func (s *Store) NewGroup(n string) (backend.Group, error) { return s.root.NewGroup(n) }
func (s *Store) OpenGroup(n string) (backend.Group, error) { return s.root.OpenGroup(n) }
func (s *Store) NewEmptyDataset(n string, sh shape.Shape, dt dtype.ScalarType, cfg backend.WriteConfig) (backend.Dataset, error) {
	return s.root.NewEmptyDataset(n, sh, dt, cfg)
}
func (s *Store) OpenDataset(n string) (backend.Dataset, error) { return s.root.OpenDataset(n) }
func (s *Store) Delete(n string) error                        { return s.root.Delete(n) }
func (s *Store) Exists(n string) (bool, error)                 { return s.root.Exists(n) }

// node is either a *Group or a *Dataset.
type node interface {
	nodeName() string
}

// Group is an in-memory group: a named, ordered set of children plus
// string-keyed attributes.
type Group struct {
	store    *Store
	path     string
	name     string
	mu       sync.Mutex
	children map[string]node
	order    []string
	attrs    map[string]backend.RawArray
}

func (g *Group) nodeName() string { return g.name }

func (g *Group) Path() string { return g.path }

func (g *Group) Store() (backend.Store, error) { return g.store, nil }

func (g *Group) childPath(name string) string {
	if g.path == "/" {
		return "/" + name
	}
	return g.path + "/" + name
}

func (g *Group) List() ([]string, error) {
	if err := g.store.checkOpen("Group.List"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]string, len(g.order))
	copy(out, g.order)
	sort.Strings(out)
	return out, nil
}

func (g *Group) NewGroup(name string) (backend.Group, error) {
	const op = "Group.NewGroup"
	if err := g.store.checkOpen(op); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.children[name]; ok {
		return nil, backend.Errorf(backend.BackendIo, op, "child %q already exists", name)
	}
	child := &Group{store: g.store, path: g.childPath(name), name: name, children: map[string]node{}}
	g.children[name] = child
	g.order = append(g.order, name)
	return child, nil
}

func (g *Group) OpenGroup(name string) (backend.Group, error) {
	const op = "Group.OpenGroup"
	if err := g.store.checkOpen(op); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	child, ok := g.children[name]
	if !ok {
		return nil, backend.Errorf(backend.NotFound, op, "no child named %q", name)
	}
	grp, ok := child.(*Group)
	if !ok {
		return nil, backend.Errorf(backend.DTypeMismatch, op, "child %q is a dataset, not a group", name)
	}
	return grp, nil
}

func (g *Group) NewEmptyDataset(name string, sh shape.Shape, dt dtype.ScalarType, cfg backend.WriteConfig) (backend.Dataset, error) {
	const op = "Group.NewEmptyDataset"
	if err := g.store.checkOpen(op); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.children[name]; ok {
		return nil, backend.Errorf(backend.BackendIo, op, "child %q already exists", name)
	}
	ds := &Dataset{
		store: g.store,
		path:  g.childPath(name),
		name:  name,
		dtype: dt,
		shape: sh.Clone(),
		cfg:   cfg,
		data:  zeroSlice(dt, sh.Size()),
		attrs: map[string]backend.RawArray{},
	}
	g.children[name] = ds
	g.order = append(g.order, name)
	return ds, nil
}

func (g *Group) OpenDataset(name string) (backend.Dataset, error) {
	const op = "Group.OpenDataset"
	if err := g.store.checkOpen(op); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	child, ok := g.children[name]
	if !ok {
		return nil, backend.Errorf(backend.NotFound, op, "no child named %q", name)
	}
	ds, ok := child.(*Dataset)
	if !ok {
		return nil, backend.Errorf(backend.DTypeMismatch, op, "child %q is a group, not a dataset", name)
	}
	return ds, nil
}

func (g *Group) Delete(name string) error {
	const op = "Group.Delete"
	if err := g.store.checkOpen(op); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.children[name]; !ok {
		return backend.Errorf(backend.NotFound, op, "no child named %q", name)
	}
	delete(g.children, name)
	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return nil
}

func (g *Group) Exists(name string) (bool, error) {
	if err := g.store.checkOpen("Group.Exists"); err != nil {
		return false, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.children[name]
	return ok, nil
}

func (g *Group) NewArrayAttr(name string, value backend.RawArray) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.attrs == nil {
		g.attrs = map[string]backend.RawArray{}
	}
	g.attrs[name] = cloneRaw(value)
	return nil
}

func (g *Group) NewScalarAttr(name string, dt dtype.ScalarType, value any) error {
	return g.NewArrayAttr(name, scalarRaw(dt, value))
}

func (g *Group) NewStrAttr(name string, value string) error {
	return g.NewScalarAttr(name, dtype.String, value)
}

func (g *Group) GetArrayAttr(name string) (backend.RawArray, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	v, ok := g.attrs[name]
	if !ok {
		return backend.RawArray{}, backend.Errorf(backend.NotFound, "Group.GetArrayAttr", "no attribute named %q", name)
	}
	return cloneRaw(v), nil
}

func (g *Group) GetScalarAttr(name string) (any, error) {
	arr, err := g.GetArrayAttr(name)
	if err != nil {
		return nil, err
	}
	return firstOf(arr.Data)
}

func (g *Group) GetStrAttr(name string) (string, error) {
	v, err := g.GetScalarAttr(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", backend.Errorf(backend.DTypeMismatch, "Group.GetStrAttr", "attribute %q is not a string", name)
	}
	return s, nil
}

func firstOf(data any) (any, error) {
	switch d := data.(type) {
	case []int8:
		return at(d)
	case []int16:
		return at(d)
	case []int32:
		return at(d)
	case []int64:
		return at(d)
	case []uint8:
		return at(d)
	case []uint16:
		return at(d)
	case []uint32:
		return at(d)
	case []uint64:
		return at(d)
	case []float32:
		return at(d)
	case []float64:
		return at(d)
	case []bool:
		return at(d)
	case []string:
		return at(d)
	default:
		return nil, fmt.Errorf("memstore: unsupported attribute element type %T", data)
	}
}

func at[T any](s []T) (any, error) {
	if len(s) != 1 {
		return nil, fmt.Errorf("memstore: expected scalar attribute, found %d elements", len(s))
	}
	return s[0], nil
}
