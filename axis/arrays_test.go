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

func newGroup(t *testing.T) backend.Group {
	t.Helper()
	store := memstore.New("t")
	g, err := store.NewGroup("obsm")
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	return g
}

func TestAxisArraysInsertFixesCounterOnFirstEntry(t *testing.T) {
	g := newGroup(t)
	counter := axis.NewCounter(0)
	arrays := axis.NewAxisArrays(g, axis.Row, counter)

	data := value.DynArray{DType: dtype.F64, Shape: shape.New(5, 2), Data: make([]float64, 10)}
	if err := arrays.Insert("pca", data); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if counter.Get() != 5 {
		t.Errorf("counter after first Insert = %d, want 5", counter.Get())
	}
}

func TestAxisArraysInsertRejectsMismatch(t *testing.T) {
	g := newGroup(t)
	counter := axis.NewCounter(5)
	arrays := axis.NewAxisArrays(g, axis.Row, counter)

	bad := value.DynArray{DType: dtype.F64, Shape: shape.New(4, 2), Data: make([]float64, 8)}
	err := arrays.Insert("pca", bad)
	if !backend.Is(err, backend.AxisMismatch) {
		t.Errorf("Insert with wrong row count: err = %v, want AxisMismatch", err)
	}
}

func TestAxisArraysBothRequiresSquare(t *testing.T) {
	g := newGroup(t)
	counter := axis.NewCounter(3)
	arrays := axis.NewAxisArrays(g, axis.Both, counter)

	notSquare := value.DynArray{DType: dtype.F64, Shape: shape.New(3, 4), Data: make([]float64, 12)}
	if err := arrays.Insert("conn", notSquare); !backend.Is(err, backend.AxisMismatch) {
		t.Errorf("Insert non-square into Both axis: err = %v, want AxisMismatch", err)
	}

	square := value.DynArray{DType: dtype.F64, Shape: shape.New(3, 3), Data: make([]float64, 9)}
	if err := arrays.Insert("conn", square); err != nil {
		t.Fatalf("Insert square: %v", err)
	}
}

func TestAxisArraysSubsetRow(t *testing.T) {
	g := newGroup(t)
	counter := axis.NewCounter(0)
	arrays := axis.NewAxisArrays(g, axis.Row, counter)
	data := value.DynArray{DType: dtype.F64, Shape: shape.New(3, 2), Data: []float64{1, 2, 3, 4, 5, 6}}
	if err := arrays.Insert("pca", data); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := arrays.Subset([]int{2, 0}); err != nil {
		t.Fatalf("Subset: %v", err)
	}
	entry, err := arrays.Get("pca")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	got, err := entry.ReadElem()
	if err != nil {
		t.Fatalf("ReadElem: %v", err)
	}
	want := []float64{5, 6, 1, 2}
	if !reflect.DeepEqual(got.(value.DynArray).Data, want) {
		t.Errorf("after Subset([2,0]) = %v, want %v", got.(value.DynArray).Data, want)
	}
}

func TestAxisArraysKeysSortedAndDelete(t *testing.T) {
	g := newGroup(t)
	counter := axis.NewCounter(0)
	arrays := axis.NewAxisArrays(g, axis.Row, counter)
	data := value.DynArray{DType: dtype.F64, Shape: shape.New(1, 1), Data: []float64{1}}
	for _, k := range []string{"zeta", "alpha", "mid"} {
		if err := arrays.Insert(k, data); err != nil {
			t.Fatalf("Insert(%q): %v", k, err)
		}
	}
	if got := arrays.Keys(); !reflect.DeepEqual(got, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("Keys = %v, want sorted", got)
	}
	if err := arrays.Delete("mid"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := arrays.Get("mid"); !backend.Is(err, backend.NotFound) {
		t.Errorf("Get after Delete: err = %v, want NotFound", err)
	}
}

func TestOpenAxisArraysRehydrates(t *testing.T) {
	store := memstore.New("t")
	g, err := store.NewGroup("obsm")
	if err != nil {
		t.Fatalf("NewGroup: %v", err)
	}
	counter := axis.NewCounter(0)
	arrays := axis.NewAxisArrays(g, axis.Row, counter)
	data := value.DynArray{DType: dtype.F64, Shape: shape.New(2, 2), Data: []float64{1, 2, 3, 4}}
	if err := arrays.Insert("pca", data); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	reopened, err := axis.OpenAxisArrays(g, axis.Row, counter)
	if err != nil {
		t.Fatalf("OpenAxisArrays: %v", err)
	}
	if got := reopened.Keys(); !reflect.DeepEqual(got, []string{"pca"}) {
		t.Errorf("reopened Keys = %v, want [pca]", got)
	}
}
