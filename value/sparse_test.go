package value_test

import (
	"reflect"
	"testing"

	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/memstore"
	"github.com/scverse-go/anndata/value"
)

// denseCsr is [[1,0,2],[0,0,0],[0,3,4]] as CSR components.
func denseCsr() value.Csr {
	return value.Csr{
		DType:   dtype.F64,
		NRows:   3,
		NCols:   3,
		Data:    []float64{1, 2, 3, 4},
		Indices: []int32{0, 2, 1, 2},
		Indptr:  []int32{0, 2, 2, 4},
	}
}

func TestCsrToDense(t *testing.T) {
	m := denseCsr()
	dense, err := m.ToDense()
	if err != nil {
		t.Fatalf("ToDense: %v", err)
	}
	want := []float64{1, 0, 2, 0, 0, 0, 0, 3, 4}
	if !reflect.DeepEqual(dense.Data, want) {
		t.Errorf("ToDense = %v, want %v", dense.Data, want)
	}
}

func TestCsrWriteReadRoundTrip(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	m := denseCsr()
	c, err := m.Write(root, "X")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := value.ReadCsr(c)
	if err != nil {
		t.Fatalf("ReadCsr: %v", err)
	}
	if got.NRows != m.NRows || got.NCols != m.NCols {
		t.Fatalf("shape mismatch: got (%d,%d), want (%d,%d)", got.NRows, got.NCols, m.NRows, m.NCols)
	}
	if !reflect.DeepEqual(got.Data, m.Data) || !reflect.DeepEqual(got.Indices, m.Indices) || !reflect.DeepEqual(got.Indptr, m.Indptr) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, m)
	}
}

func TestCsrSelectRows(t *testing.T) {
	m := denseCsr()
	sub, err := m.SelectRows([]int{2, 0})
	if err != nil {
		t.Fatalf("SelectRows: %v", err)
	}
	dense, err := sub.ToDense()
	if err != nil {
		t.Fatalf("ToDense: %v", err)
	}
	want := []float64{0, 3, 4, 1, 0, 2}
	if !reflect.DeepEqual(dense.Data, want) {
		t.Errorf("SelectRows([2,0]) dense = %v, want %v", dense.Data, want)
	}
}

func TestCsrSelectRowsOutOfRange(t *testing.T) {
	m := denseCsr()
	if _, err := m.SelectRows([]int{3}); err == nil {
		t.Errorf("SelectRows with out-of-range row = nil error, want error")
	}
}

func TestCscSelectColsMirrorsCsrSelectRows(t *testing.T) {
	// The column-major transpose of denseCsr's matrix: csc[col] lists
	// (row, value) pairs for that column.
	csc := value.Csc{
		DType:   dtype.F64,
		NRows:   3,
		NCols:   3,
		Data:    []float64{1, 3, 2, 4},
		Indices: []int32{0, 2, 0, 2},
		Indptr:  []int32{0, 1, 2, 4},
	}
	sub, err := csc.SelectCols([]int{2, 0})
	if err != nil {
		t.Fatalf("SelectCols: %v", err)
	}
	dense, err := sub.ToDense()
	if err != nil {
		t.Fatalf("ToDense: %v", err)
	}
	// Column 2 is [2,0,4], column 0 is [1,0,0]; selecting [2,0] yields a
	// 3x2 matrix with those as its columns.
	want := []float64{2, 1, 0, 0, 4, 0}
	if !reflect.DeepEqual(dense.Data, want) {
		t.Errorf("SelectCols([2,0]) dense = %v, want %v", dense.Data, want)
	}
}

func TestCsrWriteReadAsDense(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	m := value.Csr{
		DType:   dtype.F64,
		NRows:   2,
		NCols:   3,
		Data:    []float64{1, 2, 3},
		Indices: []int32{0, 2, 1},
		Indptr:  []int32{0, 2, 3},
	}
	c, err := m.Write(root, "X")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := value.ReadCsr(c)
	if err != nil {
		t.Fatalf("ReadCsr: %v", err)
	}
	dense, err := got.ToDense()
	if err != nil {
		t.Fatalf("ToDense: %v", err)
	}
	want := []float64{1, 0, 2, 0, 3, 0}
	if !reflect.DeepEqual(dense.Data, want) {
		t.Errorf("dense = %v, want [[1 0 2] [0 3 0]]", dense.Data)
	}
}

func TestCscWriteReadRoundTrip(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	m := value.Csc{DType: dtype.I32, NRows: 2, NCols: 2, Data: []int32{1, 2}, Indices: []int32{0, 1}, Indptr: []int32{0, 1, 2}}
	c, err := m.Write(root, "X")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := value.ReadCsc(c)
	if err != nil {
		t.Fatalf("ReadCsc: %v", err)
	}
	if !reflect.DeepEqual(got.Data, m.Data) {
		t.Errorf("round trip = %+v, want %+v", got, m)
	}
}
