package memstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// FileStore is a directory-backed implementation of backend.Store. Each
// group is a directory holding a .group.manifest (order + attributes) and
// one entry per child; each dataset is a single <name>.dataset manifest
// file holding dtype, shape, data, and attributes, all protobuf-encoded
// via structpb (manifest.go, file_manifest.go). Writes are atomic
// (temp file + rename, file_manifest.go's atomicWrite) and a .lock file
// held with flock (lock_unix.go / lock_other.go) enforces a single
// writer per directory.
//
// FileStore keeps a full in-memory mirror (the same Group/Dataset types
// memstore.Store uses) built eagerly on Open and kept in sync on every
// mutating call; reads never touch disk.
type FileStore struct {
	dir      string
	lockFile *os.File
	readonly bool

	mu     sync.Mutex
	closed bool

	mem  *Store
	root *FileGroup
}

// CreateFile creates a new, empty directory-backed store at dir, which
// must not already exist.
func CreateFile(dir string) (*FileStore, error) {
	const op = "CreateFile"
	if _, err := os.Stat(dir); err == nil {
		return nil, backend.Errorf(backend.BackendIo, op, "%s already exists", dir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	lock, err := flock(filepath.Join(dir, lockFileName))
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	mem := New(filepath.Base(dir))
	fs := &FileStore{dir: dir, lockFile: lock, mem: mem}
	fs.root = &FileGroup{store: fs, inner: mem.root, diskPath: dir, children: map[string]any{}}
	if err := fs.root.persistSelf(); err != nil {
		unflock(lock)
		return nil, err
	}
	return fs, nil
}

// OpenFile opens an existing directory-backed store for mutation,
// taking the single-writer lock and eagerly loading the full tree into
// memory.
func OpenFile(dir string) (*FileStore, error) {
	return openFile(dir, false)
}

// OpenFileReadOnly opens an existing directory-backed store without
// taking the writer lock; every mutating operation fails.
func OpenFileReadOnly(dir string) (*FileStore, error) {
	return openFile(dir, true)
}

func openFile(dir string, readonly bool) (*FileStore, error) {
	const op = "OpenFile"
	if _, err := os.Stat(dir); err != nil {
		return nil, backend.Errorf(backend.NotFound, op, "%s: %v", dir, err)
	}
	var lock *os.File
	if !readonly {
		var err error
		lock, err = flock(filepath.Join(dir, lockFileName))
		if err != nil {
			return nil, backend.Wrap(backend.BackendIo, op, err)
		}
	}
	mem := New(filepath.Base(dir))
	fs := &FileStore{dir: dir, lockFile: lock, readonly: readonly, mem: mem}
	fs.root = &FileGroup{store: fs, inner: mem.root, diskPath: dir, children: map[string]any{}}
	if err := fs.root.load(); err != nil {
		unflock(lock)
		return nil, err
	}
	return fs, nil
}

func (fs *FileStore) checkOpen(op string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return backend.Errorf(backend.BackendClosed, op, "store %q is closed", fs.dir)
	}
	return nil
}

func (fs *FileStore) checkWritable(op string) error {
	if err := fs.checkOpen(op); err != nil {
		return err
	}
	if fs.readonly {
		return backend.Errorf(backend.BackendIo, op, "store %q is opened read-only", fs.dir)
	}
	return nil
}

func (fs *FileStore) Filename() string { return fs.dir }

func (fs *FileStore) Close() error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if fs.closed {
		return nil
	}
	fs.closed = true
	// Close the in-memory mirror too, so dataset handles handed out
	// earlier fail with BackendClosed instead of serving stale reads.
	_ = fs.mem.Close()
	return unflock(fs.lockFile)
}

func (fs *FileStore) List() ([]string, error)  { return fs.root.List() }
func (fs *FileStore) Exists(n string) (bool, error) { return fs.root.Exists(n) }
func (fs *FileStore) Delete(n string) error    { return fs.root.Delete(n) }
func (fs *FileStore) NewGroup(n string) (backend.Group, error) { return fs.root.NewGroup(n) }
func (fs *FileStore) OpenGroup(n string) (backend.Group, error) { return fs.root.OpenGroup(n) }
func (fs *FileStore) NewEmptyDataset(n string, sh shape.Shape, dt dtype.ScalarType, cfg backend.WriteConfig) (backend.Dataset, error) {
	return fs.root.NewEmptyDataset(n, sh, dt, cfg)
}
func (fs *FileStore) OpenDataset(n string) (backend.Dataset, error) { return fs.root.OpenDataset(n) }

// FileGroup wraps an in-memory *Group, persisting its manifest to disk
// after every mutation and mirroring its children as FileGroup/FileDataset
// wrappers so repeated opens of the same child return a consistently
// persist-aware handle.
type FileGroup struct {
	store    *FileStore
	inner    *Group
	diskPath string

	mu       sync.Mutex
	children map[string]any // name -> *FileGroup | *FileDataset
}

func (g *FileGroup) nodeName() string { return g.inner.name }

func (g *FileGroup) manifestPath() string { return filepath.Join(g.diskPath, groupManifestName) }

func (g *FileGroup) persistSelf() error {
	g.inner.mu.Lock()
	order := append([]string(nil), g.inner.order...)
	attrs := g.inner.attrs
	g.inner.mu.Unlock()
	if err := os.MkdirAll(g.diskPath, 0o755); err != nil {
		return backend.Wrap(backend.BackendIo, "FileGroup.persist", err)
	}
	if err := writeGroupManifest(g.manifestPath(), order, attrs); err != nil {
		return backend.Wrap(backend.BackendIo, "FileGroup.persist", err)
	}
	return nil
}

// load populates g.inner and g.children from disk, recursing into
// subdirectories and dataset manifest files found there.
func (g *FileGroup) load() error {
	order, attrs, err := readGroupManifest(g.manifestPath())
	if err != nil {
		return backend.Wrap(backend.BackendIo, "FileGroup.load", err)
	}
	g.inner.mu.Lock()
	g.inner.order = order
	g.inner.attrs = attrs
	g.inner.mu.Unlock()

	for _, name := range order {
		childDir := filepath.Join(g.diskPath, name)
		if fi, statErr := os.Stat(childDir); statErr == nil && fi.IsDir() {
			childInner := &Group{store: g.inner.store, path: g.inner.childPath(name), name: name, children: map[string]node{}}
			g.inner.children[name] = childInner
			childFG := &FileGroup{store: g.store, inner: childInner, diskPath: childDir, children: map[string]any{}}
			if err := childFG.load(); err != nil {
				return err
			}
			g.children[name] = childFG
			continue
		}
		dsPath := filepath.Join(g.diskPath, name+datasetSuffix)
		dt, sh, data, dsAttrs, err := readDatasetManifest(dsPath)
		if err != nil {
			return backend.Wrap(backend.BackendIo, "FileGroup.load", fmt.Errorf("child %q: %w", name, err))
		}
		childInner := &Dataset{
			store: g.inner.store,
			path:  g.inner.childPath(name),
			name:  name,
			dtype: dt,
			shape: sh,
			cfg:   backend.DefaultWriteConfig(),
			data:  data,
			attrs: dsAttrs,
		}
		g.inner.children[name] = childInner
		g.children[name] = &FileDataset{store: g.store, inner: childInner, diskPath: dsPath}
	}
	return nil
}

func (g *FileGroup) Path() string                  { return g.inner.Path() }
func (g *FileGroup) Store() (backend.Store, error) { return g.store, nil }
func (g *FileGroup) List() ([]string, error)       { return g.inner.List() }
func (g *FileGroup) Exists(name string) (bool, error) { return g.inner.Exists(name) }

func (g *FileGroup) NewGroup(name string) (backend.Group, error) {
	if err := g.store.checkWritable("FileGroup.NewGroup"); err != nil {
		return nil, err
	}
	if _, err := g.inner.NewGroup(name); err != nil {
		return nil, err
	}
	g.mu.Lock()
	childInner := g.inner.children[name].(*Group)
	childFG := &FileGroup{store: g.store, inner: childInner, diskPath: filepath.Join(g.diskPath, name), children: map[string]any{}}
	g.children[name] = childFG
	g.mu.Unlock()
	if err := childFG.persistSelf(); err != nil {
		return nil, err
	}
	return childFG, g.persistSelf()
}

func (g *FileGroup) OpenGroup(name string) (backend.Group, error) {
	if err := g.store.checkOpen("FileGroup.OpenGroup"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	child, ok := g.children[name]
	if !ok {
		return nil, backend.Errorf(backend.NotFound, "FileGroup.OpenGroup", "no child named %q", name)
	}
	fg, ok := child.(*FileGroup)
	if !ok {
		return nil, backend.Errorf(backend.DTypeMismatch, "FileGroup.OpenGroup", "child %q is a dataset, not a group", name)
	}
	return fg, nil
}

func (g *FileGroup) NewEmptyDataset(name string, sh shape.Shape, dt dtype.ScalarType, cfg backend.WriteConfig) (backend.Dataset, error) {
	if err := g.store.checkWritable("FileGroup.NewEmptyDataset"); err != nil {
		return nil, err
	}
	if _, err := g.inner.NewEmptyDataset(name, sh, dt, cfg); err != nil {
		return nil, err
	}
	g.mu.Lock()
	childInner := g.inner.children[name].(*Dataset)
	childFD := &FileDataset{store: g.store, inner: childInner, diskPath: filepath.Join(g.diskPath, name+datasetSuffix)}
	g.children[name] = childFD
	g.mu.Unlock()
	if err := childFD.persist(); err != nil {
		return nil, err
	}
	return childFD, g.persistSelf()
}

func (g *FileGroup) OpenDataset(name string) (backend.Dataset, error) {
	if err := g.store.checkOpen("FileGroup.OpenDataset"); err != nil {
		return nil, err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	child, ok := g.children[name]
	if !ok {
		return nil, backend.Errorf(backend.NotFound, "FileGroup.OpenDataset", "no child named %q", name)
	}
	fd, ok := child.(*FileDataset)
	if !ok {
		return nil, backend.Errorf(backend.DTypeMismatch, "FileGroup.OpenDataset", "child %q is a group, not a dataset", name)
	}
	return fd, nil
}

func (g *FileGroup) Delete(name string) error {
	if err := g.store.checkWritable("FileGroup.Delete"); err != nil {
		return err
	}
	if err := g.inner.Delete(name); err != nil {
		return err
	}
	g.mu.Lock()
	delete(g.children, name)
	g.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(g.diskPath, name)); err != nil {
		return backend.Wrap(backend.BackendIo, "FileGroup.Delete", err)
	}
	if err := os.Remove(filepath.Join(g.diskPath, name+datasetSuffix)); err != nil && !os.IsNotExist(err) {
		return backend.Wrap(backend.BackendIo, "FileGroup.Delete", err)
	}
	return g.persistSelf()
}

func (g *FileGroup) NewArrayAttr(name string, value backend.RawArray) error {
	if err := g.store.checkWritable("FileGroup.NewArrayAttr"); err != nil {
		return err
	}
	if err := g.inner.NewArrayAttr(name, value); err != nil {
		return err
	}
	return g.persistSelf()
}

func (g *FileGroup) NewScalarAttr(name string, dt dtype.ScalarType, value any) error {
	if err := g.store.checkWritable("FileGroup.NewScalarAttr"); err != nil {
		return err
	}
	if err := g.inner.NewScalarAttr(name, dt, value); err != nil {
		return err
	}
	return g.persistSelf()
}

func (g *FileGroup) NewStrAttr(name string, value string) error {
	if err := g.store.checkWritable("FileGroup.NewStrAttr"); err != nil {
		return err
	}
	if err := g.inner.NewStrAttr(name, value); err != nil {
		return err
	}
	return g.persistSelf()
}

func (g *FileGroup) GetArrayAttr(name string) (backend.RawArray, error)  { return g.inner.GetArrayAttr(name) }
func (g *FileGroup) GetScalarAttr(name string) (any, error)              { return g.inner.GetScalarAttr(name) }
func (g *FileGroup) GetStrAttr(name string) (string, error)              { return g.inner.GetStrAttr(name) }

// FileDataset wraps an in-memory *Dataset, persisting its manifest after
// every mutation.
type FileDataset struct {
	store    *FileStore
	inner    *Dataset
	diskPath string
}

func (d *FileDataset) nodeName() string { return d.inner.name }

func (d *FileDataset) persist() error {
	d.inner.mu.Lock()
	data, err := d.inner.decodedLocked()
	sh := d.inner.shape.Clone()
	dt := d.inner.dtype
	attrs := d.inner.attrs
	d.inner.mu.Unlock()
	if err != nil {
		return err
	}
	if err := writeDatasetManifest(d.diskPath, dt, sh, data, attrs); err != nil {
		return backend.Wrap(backend.BackendIo, "FileDataset.persist", err)
	}
	return nil
}

func (d *FileDataset) Path() string                  { return d.inner.Path() }
func (d *FileDataset) Store() (backend.Store, error) { return d.store, nil }
func (d *FileDataset) DType() (dtype.ScalarType, error) { return d.inner.DType() }
func (d *FileDataset) Shape() shape.Shape               { return d.inner.Shape() }

func (d *FileDataset) Reshape(newShape shape.Shape) error {
	if err := d.store.checkWritable("FileDataset.Reshape"); err != nil {
		return err
	}
	if err := d.inner.Reshape(newShape); err != nil {
		return err
	}
	return d.persist()
}

func (d *FileDataset) ReadSlice(sel shape.Select) (backend.RawArray, error) {
	return d.inner.ReadSlice(sel)
}

func (d *FileDataset) WriteSlice(data backend.RawArray, sel shape.Select) error {
	if err := d.store.checkWritable("FileDataset.WriteSlice"); err != nil {
		return err
	}
	if err := d.inner.WriteSlice(data, sel); err != nil {
		return err
	}
	return d.persist()
}

func (d *FileDataset) NewArrayAttr(name string, value backend.RawArray) error {
	if err := d.store.checkWritable("FileDataset.NewArrayAttr"); err != nil {
		return err
	}
	if err := d.inner.NewArrayAttr(name, value); err != nil {
		return err
	}
	return d.persist()
}

func (d *FileDataset) NewScalarAttr(name string, dt dtype.ScalarType, value any) error {
	if err := d.store.checkWritable("FileDataset.NewScalarAttr"); err != nil {
		return err
	}
	if err := d.inner.NewScalarAttr(name, dt, value); err != nil {
		return err
	}
	return d.persist()
}

func (d *FileDataset) NewStrAttr(name string, value string) error {
	if err := d.store.checkWritable("FileDataset.NewStrAttr"); err != nil {
		return err
	}
	if err := d.inner.NewStrAttr(name, value); err != nil {
		return err
	}
	return d.persist()
}

func (d *FileDataset) GetArrayAttr(name string) (backend.RawArray, error) { return d.inner.GetArrayAttr(name) }
func (d *FileDataset) GetScalarAttr(name string) (any, error)             { return d.inner.GetScalarAttr(name) }
func (d *FileDataset) GetStrAttr(name string) (string, error)             { return d.inner.GetStrAttr(name) }
