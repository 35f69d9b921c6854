package memstore

import (
	"sync"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

// Dataset is an in-memory, heap-resident implementation of
// backend.Dataset. When cfg.Compression is set and the data is longer
// than the 100-element suppression threshold, the payload is kept
// compressed between writes and decompressed on demand, via the codec
// package, the same way a real chunked backend keeps pages compressed
// on disk.
type Dataset struct {
	store *Store
	path  string
	name  string

	mu    sync.Mutex
	dtype dtype.ScalarType
	shape shape.Shape
	cfg   backend.WriteConfig

	data       any    // decompressed payload; nil when compressed is non-nil
	compressed []byte // compressed payload; nil when data is authoritative

	attrs map[string]backend.RawArray
}

func (d *Dataset) nodeName() string { return d.name }

func (d *Dataset) Path() string                     { return d.path }
func (d *Dataset) Store() (backend.Store, error)    { return d.store, nil }

func (d *Dataset) DType() (dtype.ScalarType, error) {
	if err := d.store.checkOpen("Dataset.DType"); err != nil {
		return 0, err
	}
	return d.dtype, nil
}

func (d *Dataset) Shape() shape.Shape {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.shape.Clone()
}

func (d *Dataset) Reshape(newShape shape.Shape) error {
	const op = "Dataset.Reshape"
	if err := d.store.checkOpen(op); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	full, err := d.decodedLocked()
	if err != nil {
		return err
	}
	resized := resizeSlice(d.dtype, full, newShape.Size())
	d.shape = newShape.Clone()
	d.setPayloadLocked(resized)
	return nil
}

func (d *Dataset) ReadSlice(sel shape.Select) (backend.RawArray, error) {
	const op = "Dataset.ReadSlice"
	if err := d.store.checkOpen(op); err != nil {
		return backend.RawArray{}, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	full, err := d.decodedLocked()
	if err != nil {
		return backend.RawArray{}, err
	}
	arr := backend.RawArray{DType: d.dtype, Shape: d.shape.Clone(), Data: full}
	out, err := backend.GatherRaw(arr, sel)
	if err != nil {
		return backend.RawArray{}, err
	}
	return out, nil
}

func (d *Dataset) WriteSlice(data backend.RawArray, sel shape.Select) error {
	const op = "Dataset.WriteSlice"
	if err := d.store.checkOpen(op); err != nil {
		return err
	}
	if data.DType != d.dtype {
		return backend.Errorf(backend.DTypeMismatch, op, "dataset holds %s, value is %s", d.dtype, data.DType)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	full, err := d.decodedLocked()
	if err != nil {
		return err
	}
	dst := backend.RawArray{DType: d.dtype, Shape: d.shape.Clone(), Data: full}
	updated, err := backend.ScatterRaw(dst, sel, data)
	if err != nil {
		return err
	}
	d.setPayloadLocked(updated.Data)
	return nil
}

func (d *Dataset) NewArrayAttr(name string, value backend.RawArray) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.attrs == nil {
		d.attrs = map[string]backend.RawArray{}
	}
	d.attrs[name] = cloneRaw(value)
	return nil
}

func (d *Dataset) NewScalarAttr(name string, dt dtype.ScalarType, value any) error {
	return d.NewArrayAttr(name, scalarRaw(dt, value))
}

func (d *Dataset) NewStrAttr(name string, value string) error {
	return d.NewScalarAttr(name, dtype.String, value)
}

func (d *Dataset) GetArrayAttr(name string) (backend.RawArray, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.attrs[name]
	if !ok {
		return backend.RawArray{}, backend.Errorf(backend.NotFound, "Dataset.GetArrayAttr", "no attribute named %q", name)
	}
	return cloneRaw(v), nil
}

func (d *Dataset) GetScalarAttr(name string) (any, error) {
	arr, err := d.GetArrayAttr(name)
	if err != nil {
		return nil, err
	}
	return firstOf(arr.Data)
}

func (d *Dataset) GetStrAttr(name string) (string, error) {
	v, err := d.GetScalarAttr(name)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", backend.Errorf(backend.DTypeMismatch, "Dataset.GetStrAttr", "attribute %q is not a string", name)
	}
	return s, nil
}

// decodedLocked returns the dataset's payload as a live Go slice,
// decompressing it first if it is currently stored compressed. Caller
// must hold d.mu.
func (d *Dataset) decodedLocked() (any, error) {
	if d.data != nil {
		return d.data, nil
	}
	return decodeCompressed(d.dtype, d.shape.Size(), d.compressed)
}

// setPayloadLocked stores newData as the dataset's payload, compressing
// it if the WriteConfig and the size threshold call for it. Caller must
// hold d.mu.
func (d *Dataset) setPayloadLocked(newData any) {
	if backend.ShouldCompress(d.shape.Size(), d.cfg) {
		level := 1
		if d.cfg.Compression != nil {
			level = *d.cfg.Compression
		}
		if enc, err := encodeCompressed(d.dtype, newData, level); err == nil {
			d.compressed = enc
			d.data = nil
			return
		}
	}
	d.data = newData
	d.compressed = nil
}
