package value_test

import (
	"testing"

	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/memstore"
	"github.com/scverse-go/anndata/value"
)

func TestDynScalarWriteReadRoundTrip(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)

	s := value.DynScalar{DType: dtype.F64, Value: 3.5}
	c, err := s.Write(root, "x")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := value.ReadScalar(c)
	if err != nil {
		t.Fatalf("ReadScalar: %v", err)
	}
	if got.DType != dtype.F64 || got.Value != 3.5 {
		t.Errorf("ReadScalar = %+v, want {F64 3.5}", got)
	}
}

func TestDynScalarStringEncodingType(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	s := value.DynScalar{DType: dtype.String, Value: "hello"}
	c, err := s.Write(root, "name")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	et, err := c.EncodingType()
	if err != nil {
		t.Fatalf("EncodingType: %v", err)
	}
	want := dtype.Scalar(dtype.String)
	if !et.Equal(want) {
		t.Errorf("EncodingType = %v, want %v", et, want)
	}
}
