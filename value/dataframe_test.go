package value_test

import (
	"reflect"
	"testing"

	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/memstore"
	"github.com/scverse-go/anndata/shape"
	"github.com/scverse-go/anndata/value"
)

func sampleDataFrame() value.DataFrame {
	return value.DataFrame{
		IndexName:   "_index",
		ColumnOrder: []string{"_index", "n_counts"},
		Columns: map[string]value.Value{
			"_index":   value.DynArray{DType: dtype.String, Shape: shape.New(3), Data: []string{"c1", "c2", "c3"}},
			"n_counts": value.DynArray{DType: dtype.F64, Shape: shape.New(3), Data: []float64{10, 20, 30}},
		},
	}
}

func TestDataFrameHeight(t *testing.T) {
	df := sampleDataFrame()
	if got := df.Height(); got != 3 {
		t.Errorf("Height() = %d, want 3", got)
	}
}

func TestDataFrameWriteReadRoundTrip(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	df := sampleDataFrame()
	c, err := df.Write(root, "obs")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := value.ReadDataFrame(c)
	if err != nil {
		t.Fatalf("ReadDataFrame: %v", err)
	}
	if got.IndexName != df.IndexName {
		t.Errorf("IndexName = %q, want %q", got.IndexName, df.IndexName)
	}
	if !reflect.DeepEqual(got.ColumnOrder, df.ColumnOrder) {
		t.Errorf("ColumnOrder = %v, want %v", got.ColumnOrder, df.ColumnOrder)
	}
	idxCol, ok := got.Columns["_index"].(value.DynArray)
	if !ok {
		t.Fatalf("_index column is %T, want value.DynArray", got.Columns["_index"])
	}
	if !reflect.DeepEqual(idxCol.Data, []string{"c1", "c2", "c3"}) {
		t.Errorf("_index data = %v, want [c1 c2 c3]", idxCol.Data)
	}
	if got.Height() != 3 {
		t.Errorf("round-tripped Height() = %d, want 3", got.Height())
	}
}

func TestReadValueDispatchesByEncodingType(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)

	scalar := value.DynScalar{DType: dtype.I32, Value: int32(7)}
	c, err := scalar.Write(root, "s")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err := value.ReadValue(c)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if _, ok := v.(value.DynScalar); !ok {
		t.Errorf("ReadValue on a scalar container returned %T, want value.DynScalar", v)
	}

	df := sampleDataFrame()
	c2, err := df.Write(root, "frame")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	v2, err := value.ReadValue(c2)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if _, ok := v2.(value.DataFrame); !ok {
		t.Errorf("ReadValue on a data-frame container returned %T, want value.DataFrame", v2)
	}
}
