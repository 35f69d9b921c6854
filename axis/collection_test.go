package axis_test

import (
	"reflect"
	"testing"

	"github.com/scverse-go/anndata/axis"
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/memstore"
	"github.com/scverse-go/anndata/shape"
	"github.com/scverse-go/anndata/value"
)

func TestElemCollectionInsertGetDelete(t *testing.T) {
	store := memstore.New("t")
	g, err := store.NewGroup("uns")
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	coll := axis.NewElemCollection(g)

	scalar := value.DynScalar{DType: dtype.I32, Value: int32(42)}
	if err := coll.Insert("meta", scalar); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	entry, err := coll.Get("meta")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, err := entry.ReadElem()
	if err != nil {
		t.Fatalf("ReadElem: %v", err)
	}
	if got.(value.DynScalar).Value != int32(42) {
		t.Errorf("read back = %v, want 42", got.(value.DynScalar).Value)
	}

	if err := coll.Delete("meta"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := coll.Get("meta"); !backend.Is(err, backend.NotFound) {
		t.Errorf("Get after Delete: err = %v, want NotFound", err)
	}
}

// ElemCollection has no axis invariant: entries of unrelated shapes can
// coexist, unlike AxisArrays.
func TestElemCollectionNoAxisInvariant(t *testing.T) {
	store := memstore.New("t")
	g, err := store.NewGroup("uns")
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	coll := axis.NewElemCollection(g)

	a := value.DynArray{DType: dtype.F64, Shape: shape.New(3), Data: []float64{1, 2, 3}}
	b := value.DynArray{DType: dtype.F64, Shape: shape.New(7), Data: make([]float64, 7)}
	if err := coll.Insert("a", a); err != nil {
		t.Fatalf("Insert a: %v", err)
	}
	if err := coll.Insert("b", b); err != nil {
		t.Fatalf("Insert b: %v", err)
	}
	if got := coll.Keys(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Keys = %v, want [a b]", got)
	}
}

func TestOpenElemCollectionRehydrates(t *testing.T) {
	store := memstore.New("t")
	g, err := store.NewGroup("uns")
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	coll := axis.NewElemCollection(g)
	if err := coll.Insert("x", value.DynScalar{DType: dtype.I32, Value: int32(1)}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	reopened, err := axis.OpenElemCollection(g)
	if err != nil {
		t.Fatalf("OpenElemCollection: %v", err)
	}
	if got := reopened.Keys(); !reflect.DeepEqual(got, []string{"x"}) {
		t.Errorf("reopened Keys = %v, want [x]", got)
	}
}
