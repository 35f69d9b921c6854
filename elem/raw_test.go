package elem_test

import (
	"testing"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/memstore"
	"github.com/scverse-go/anndata/value"
)

func TestRawElemReadElem(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	s := value.DynScalar{DType: dtype.I32, Value: int32(42)}
	c, err := s.Write(root, "n")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	re, err := elem.NewRawElem(c)
	if err != nil {
		t.Fatalf("NewRawElem: %v", err)
	}
	got, err := re.ReadElem()
	if err != nil {
		t.Fatalf("ReadElem: %v", err)
	}
	sc, ok := got.(value.DynScalar)
	if !ok || sc.Value.(int32) != 42 {
		t.Errorf("ReadElem = %#v, want DynScalar{Value: 42}", got)
	}
}

func TestRawElemCaching(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	s := value.DynScalar{DType: dtype.I32, Value: int32(1)}
	c, err := s.Write(root, "n")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	re, err := elem.NewRawElem(c)
	if err != nil {
		t.Fatalf("NewRawElem: %v", err)
	}
	re.EnableCache()
	if _, err := re.ReadElem(); err != nil {
		t.Fatalf("ReadElem: %v", err)
	}
	re.DisableCache()
	if _, err := re.ReadElem(); err != nil {
		t.Fatalf("ReadElem after DisableCache: %v", err)
	}
}

func TestAsTypeMismatch(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	s := value.DynScalar{DType: dtype.I32, Value: int32(1)}
	c, err := s.Write(root, "n")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	re, err := elem.NewRawElem(c)
	if err != nil {
		t.Fatalf("NewRawElem: %v", err)
	}
	_, err = elem.As[value.DataFrame](re)
	if err == nil {
		t.Fatalf("As[DataFrame] on a scalar element = nil error, want error")
	}
	if !backend.Is(err, backend.DTypeMismatch) {
		t.Errorf("As[DataFrame] error = %v, want DTypeMismatch", err)
	}
}
