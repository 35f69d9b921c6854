package anndata_test

import (
	"math/rand"
	"reflect"
	"testing"

	"github.com/scverse-go/anndata"
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/memstore"
	"github.com/scverse-go/anndata/shape"
	"github.com/scverse-go/anndata/value"
)

func zerosF64(n int) []float64 { return make([]float64, n) }

func TestNewSetXUpdatesCounters(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := value.DynArray{DType: dtype.I32, Shape: shape.New(10, 20), Data: make([]int32, 200)}
	if err := a.SetX(x); err != nil {
		t.Fatalf("SetX: %v", err)
	}
	if a.NObs() != 10 || a.NVars() != 20 {
		t.Errorf("NObs/NVars = %d/%d, want 10/20", a.NObs(), a.NVars())
	}
}

// A mismatched obsm insert must fail without disturbing the counters.
func TestSetXThenMismatchedObsmFails(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := value.DynArray{DType: dtype.I32, Shape: shape.New(10, 20), Data: make([]int32, 200)}
	if err := a.SetX(x); err != nil {
		t.Fatalf("SetX: %v", err)
	}
	bad := value.DynArray{DType: dtype.I32, Shape: shape.New(9, 5), Data: make([]int32, 45)}
	err = a.SetObsm("bad", bad)
	if !backend.Is(err, backend.AxisMismatch) {
		t.Errorf("SetObsm with mismatched rows: err = %v, want AxisMismatch", err)
	}
	if a.NObs() != 10 || a.NVars() != 20 {
		t.Errorf("after failed SetObsm NObs/NVars = %d/%d, want 10/20", a.NObs(), a.NVars())
	}
}

// SetX / read back / DelX round trip.
func TestSetXReadXDelX(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := value.DynArray{DType: dtype.F64, Shape: shape.New(3, 2), Data: []float64{1, 2, 3, 4, 5, 6}}
	if err := a.SetX(x); err != nil {
		t.Fatalf("SetX: %v", err)
	}
	xe, err := a.X()
	if err != nil {
		t.Fatalf("X: %v", err)
	}
	got, err := xe.ReadElem()
	if err != nil {
		t.Fatalf("ReadElem: %v", err)
	}
	da, ok := got.(value.DynArray)
	if !ok {
		t.Fatalf("ReadElem returned %T, want value.DynArray", got)
	}
	if !reflect.DeepEqual(da.Data, x.Data) {
		t.Errorf("read back X = %v, want %v", da.Data, x.Data)
	}

	if err := a.DelX(); err != nil {
		t.Fatalf("DelX: %v", err)
	}
	if _, err := a.X(); !backend.Is(err, backend.NotFound) {
		t.Errorf("X() after DelX: err = %v, want NotFound", err)
	}
}

// Generated shapes and values, each case a fresh store, seeded for
// reproducibility.
func TestSetXGeneratedRoundTrips(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 999; i++ {
		nrows := rng.Intn(8)
		ncols := rng.Intn(8)
		data := make([]float64, nrows*ncols)
		for j := range data {
			data[j] = rng.NormFloat64()
		}
		x := value.DynArray{DType: dtype.F64, Shape: shape.New(nrows, ncols), Data: data}

		store := memstore.New("t")
		a, err := anndata.New(store, 0, 0)
		if err != nil {
			t.Fatalf("case %d: New: %v", i, err)
		}
		if err := a.SetX(x); err != nil {
			t.Fatalf("case %d: SetX(%dx%d): %v", i, nrows, ncols, err)
		}
		xe, err := a.X()
		if err != nil {
			t.Fatalf("case %d: X: %v", i, err)
		}
		got, err := xe.ReadElem()
		if err != nil {
			t.Fatalf("case %d: ReadElem: %v", i, err)
		}
		if !reflect.DeepEqual(got.(value.DynArray).Data, x.Data) {
			t.Fatalf("case %d: round trip mismatch for shape %dx%d", i, nrows, ncols)
		}
		if err := a.DelX(); err != nil {
			t.Fatalf("case %d: DelX: %v", i, err)
		}
		if _, err := a.X(); !backend.Is(err, backend.NotFound) {
			t.Fatalf("case %d: X() after DelX: err = %v, want NotFound", i, err)
		}
	}
}

// Boundary behaviour: writing a 0x0 array as X succeeds and leaves the
// counters at zero.
func TestSetXZeroByZero(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := value.DynArray{DType: dtype.F64, Shape: shape.New(0, 0), Data: zerosF64(0)}
	if err := a.SetX(x); err != nil {
		t.Fatalf("SetX(0x0): %v", err)
	}
	if a.NObs() != 0 || a.NVars() != 0 {
		t.Errorf("NObs/NVars after 0x0 SetX = %d/%d, want 0/0", a.NObs(), a.NVars())
	}
}

func frame(index []string, x []int32) value.DataFrame {
	return value.DataFrame{
		IndexName:   "_index",
		ColumnOrder: []string{"_index", "x"},
		Columns: map[string]value.Value{
			"_index": value.DynArray{DType: dtype.String, Shape: shape.New(len(index)), Data: index},
			"x":      value.DynArray{DType: dtype.I32, Shape: shape.New(len(x)), Data: x},
		},
	}
}

// SubsetObs reorders and truncates every obs column, index included.
func TestSubsetObsReordersFrame(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	df := frame([]string{"a", "b", "c"}, []int32{1, 2, 3})
	if err := a.SetObs(df); err != nil {
		t.Fatalf("SetObs: %v", err)
	}
	if err := a.SubsetObs([]int{2, 0}); err != nil {
		t.Fatalf("SubsetObs: %v", err)
	}
	if a.NObs() != 2 {
		t.Errorf("NObs after SubsetObs = %d, want 2", a.NObs())
	}
	obs, err := a.Obs()
	if err != nil {
		t.Fatalf("Obs: %v", err)
	}
	got, err := obs.ReadElem()
	if err != nil {
		t.Fatalf("ReadElem: %v", err)
	}
	gotIdx := got.Columns["_index"].(value.DynArray).Data.([]string)
	gotX := got.Columns["x"].(value.DynArray).Data.([]int32)
	if !reflect.DeepEqual(gotIdx, []string{"c", "a"}) {
		t.Errorf("_index after subset = %v, want [c a]", gotIdx)
	}
	if !reflect.DeepEqual(gotX, []int32{3, 1}) {
		t.Errorf("x after subset = %v, want [3 1]", gotX)
	}
}

// Subsetting with the full identity index changes nothing.
func TestSubsetObsIdentity(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := value.DynArray{DType: dtype.F64, Shape: shape.New(4, 2), Data: []float64{1, 2, 3, 4, 5, 6, 7, 8}}
	if err := a.SetX(x); err != nil {
		t.Fatalf("SetX: %v", err)
	}
	if err := a.SubsetObs([]int{0, 1, 2, 3}); err != nil {
		t.Fatalf("SubsetObs identity: %v", err)
	}
	xe, err := a.X()
	if err != nil {
		t.Fatalf("X: %v", err)
	}
	got, err := xe.ReadElem()
	if err != nil {
		t.Fatalf("ReadElem: %v", err)
	}
	if !reflect.DeepEqual(got.(value.DynArray).Data, x.Data) {
		t.Errorf("X after identity SubsetObs changed: got %v, want %v", got.(value.DynArray).Data, x.Data)
	}
}

func TestSubsetObsOutOfRangeIsBoundsError(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := value.DynArray{DType: dtype.F64, Shape: shape.New(2, 2), Data: []float64{1, 2, 3, 4}}
	if err := a.SetX(x); err != nil {
		t.Fatalf("SetX: %v", err)
	}
	if err := a.SubsetObs([]int{5}); !backend.Is(err, backend.Bounds) {
		t.Errorf("SubsetObs([5]) on n_obs=2: err = %v, want Bounds", err)
	}
}

func TestCloseThenMutateIsBackendClosed(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	x := value.DynArray{DType: dtype.F64, Shape: shape.New(1, 1), Data: []float64{1}}
	if err := a.SetX(x); !backend.Is(err, backend.BackendClosed) {
		t.Errorf("SetX after Close: err = %v, want BackendClosed", err)
	}
}

func TestOpenRehydratesElements(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 0, 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	x := value.DynArray{DType: dtype.F64, Shape: shape.New(3, 2), Data: []float64{1, 2, 3, 4, 5, 6}}
	if err := a.SetX(x); err != nil {
		t.Fatalf("SetX: %v", err)
	}
	if err := a.SetObsm("emb", value.DynArray{DType: dtype.F64, Shape: shape.New(3, 1), Data: []float64{1, 2, 3}}); err != nil {
		t.Fatalf("SetObsm: %v", err)
	}

	reopened, err := anndata.Open(store, true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.NObs() != 3 || reopened.NVars() != 2 {
		t.Errorf("reopened NObs/NVars = %d/%d, want 3/2", reopened.NObs(), reopened.NVars())
	}
	obsm, err := reopened.Obsm()
	if err != nil {
		t.Fatalf("Obsm: %v", err)
	}
	if got := obsm.Keys(); !reflect.DeepEqual(got, []string{"emb"}) {
		t.Errorf("reopened obsm keys = %v, want [emb]", got)
	}
}

func TestDescribeIncludesCounters(t *testing.T) {
	store := memstore.New("t")
	a, err := anndata.New(store, 5, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s := a.Describe()
	if s == "" {
		t.Fatal("Describe returned an empty string")
	}
}
