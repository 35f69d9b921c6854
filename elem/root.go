package elem

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// RootGroup adapts a Store to the backend.Group interface so that a
// top-level element (X lives directly at the store root) can be written
// and subsetted in place the same way any other element is. Store has no attributes of its own, so the
// AttributeOp methods here are never expected to be called in practice:
// every Write implementation that receives this as its target group only
// ever sets attributes on a child it just created, never on the group
// argument itself.
type rootGroup struct{ store backend.Store }

// RootGroup wraps store as a Group standing in for the store root.
func RootGroup(store backend.Store) backend.Group { return rootGroup{store: store} }

func (r rootGroup) Path() string                  { return "" }
func (r rootGroup) Store() (backend.Store, error) { return r.store, nil }

func (r rootGroup) List() ([]string, error)    { return r.store.List() }
func (r rootGroup) Exists(n string) (bool, error) { return r.store.Exists(n) }
func (r rootGroup) Delete(n string) error       { return r.store.Delete(n) }

func (r rootGroup) NewGroup(n string) (backend.Group, error) { return r.store.NewGroup(n) }
func (r rootGroup) OpenGroup(n string) (backend.Group, error) { return r.store.OpenGroup(n) }

func (r rootGroup) NewEmptyDataset(n string, sh shape.Shape, dt dtype.ScalarType, cfg backend.WriteConfig) (backend.Dataset, error) {
	return r.store.NewEmptyDataset(n, sh, dt, cfg)
}
func (r rootGroup) OpenDataset(n string) (backend.Dataset, error) { return r.store.OpenDataset(n) }

func (r rootGroup) NewArrayAttr(name string, value backend.RawArray) error {
	return backend.Errorf(backend.BackendIo, "elem.RootGroup", "the store root carries no attributes of its own")
}
func (r rootGroup) NewScalarAttr(name string, dt dtype.ScalarType, value any) error {
	return backend.Errorf(backend.BackendIo, "elem.RootGroup", "the store root carries no attributes of its own")
}
func (r rootGroup) NewStrAttr(name string, value string) error {
	return backend.Errorf(backend.BackendIo, "elem.RootGroup", "the store root carries no attributes of its own")
}
func (r rootGroup) GetArrayAttr(name string) (backend.RawArray, error) {
	return backend.RawArray{}, backend.Errorf(backend.NotFound, "elem.RootGroup", "the store root carries no attributes of its own")
}
func (r rootGroup) GetScalarAttr(name string) (any, error) {
	return nil, backend.Errorf(backend.NotFound, "elem.RootGroup", "the store root carries no attributes of its own")
}
func (r rootGroup) GetStrAttr(name string) (string, error) {
	return "", backend.Errorf(backend.NotFound, "elem.RootGroup", "the store root carries no attributes of its own")
}
