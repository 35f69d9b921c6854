package backend_test

import (
	"reflect"
	"testing"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/memstore"
	"github.com/scverse-go/anndata/shape"
)

func TestShouldCompressThreshold(t *testing.T) {
	cfg := backend.DefaultWriteConfig()
	if backend.ShouldCompress(100, cfg) {
		t.Errorf("ShouldCompress(100) = true, want false (threshold is exclusive)")
	}
	if !backend.ShouldCompress(101, cfg) {
		t.Errorf("ShouldCompress(101) = false, want true")
	}
	if backend.ShouldCompress(1000, backend.WriteConfig{}) {
		t.Errorf("ShouldCompress with nil Compression = true, want false")
	}
}

func TestDefaultBlockSize(t *testing.T) {
	if got := backend.DefaultBlockSize(shape.New(5)); !got.Equal(shape.New(5)) {
		t.Errorf("DefaultBlockSize(5) = %v, want (5)", got)
	}
	if got := backend.DefaultBlockSize(shape.New(20000)); !got.Equal(shape.New(10000)) {
		t.Errorf("DefaultBlockSize(20000) = %v, want (10000)", got)
	}
	if got := backend.DefaultBlockSize(shape.New(5, 200)); !got.Equal(shape.New(5, 100)) {
		t.Errorf("DefaultBlockSize(5,200) = %v, want (5,100)", got)
	}
}

func TestReadWriteArray(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	data := backend.RawArray{DType: dtype.I32, Shape: shape.New(4), Data: []int32{1, 2, 3, 4}}
	ds, err := backend.NewArrayDataset(root, "nums", data, backend.DefaultWriteConfig())
	if err != nil {
		t.Fatalf("NewArrayDataset: %v", err)
	}
	got, err := backend.ReadArray(ds)
	if err != nil {
		t.Fatalf("ReadArray: %v", err)
	}
	if !reflect.DeepEqual(got.Data, data.Data) {
		t.Errorf("ReadArray = %v, want %v", got.Data, data.Data)
	}
}

func TestNewScalarDatasetRoundTrip(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	ds, err := backend.NewScalarDataset(root, "flag", dtype.Bool, true)
	if err != nil {
		t.Fatalf("NewScalarDataset: %v", err)
	}
	got, err := backend.ReadScalar(ds)
	if err != nil {
		t.Fatalf("ReadScalar: %v", err)
	}
	if got != true {
		t.Errorf("ReadScalar = %v, want true", got)
	}
}

func TestNewArrayDatasetRollsBackOnFailure(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	if _, err := root.NewGroup("taken"); err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	data := backend.RawArray{DType: dtype.I32, Shape: shape.New(0), Data: []int32{}}
	_, err := backend.NewArrayDataset(root, "taken", data, backend.DefaultWriteConfig())
	if err == nil {
		t.Fatalf("NewArrayDataset into an existing name = nil error, want error")
	}
	exists, err := root.Exists("taken")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !exists {
		t.Fatalf("the pre-existing group named %q must survive a failed write to the same name", "taken")
	}
}

func TestErrorWrapAndIs(t *testing.T) {
	base := backend.Errorf(backend.NotFound, "op", "missing %s", "x")
	wrapped := backend.Wrap(backend.BackendIo, "outer", base)
	if !backend.Is(wrapped, backend.BackendIo) {
		t.Errorf("wrapped error should match its own Kind")
	}
	if backend.Is(wrapped, backend.NotFound) {
		t.Errorf("Wrap should re-tag the Kind, not preserve the inner one")
	}
}
