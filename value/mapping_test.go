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

func TestMappingWriteReadRoundTrip(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	m := value.Mapping{Entries: map[string]value.Value{
		"version": value.DynScalar{DType: dtype.String, Value: "1.0"},
		"weights": value.DynArray{DType: dtype.F64, Shape: shape.New(3), Data: []float64{0.1, 0.2, 0.7}},
		"nested": value.Mapping{Entries: map[string]value.Value{
			"seed": value.DynScalar{DType: dtype.I64, Value: int64(7)},
		}},
	}}
	c, err := m.Write(root, "params")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := value.ReadMapping(c)
	if err != nil {
		t.Fatalf("ReadMapping: %v", err)
	}
	if !reflect.DeepEqual(got.Keys(), []string{"nested", "version", "weights"}) {
		t.Fatalf("Keys = %v, want [nested version weights]", got.Keys())
	}
	ver, ok := got.Entries["version"].(value.DynScalar)
	if !ok || ver.Value != "1.0" {
		t.Errorf("version entry = %#v, want DynScalar{Value: \"1.0\"}", got.Entries["version"])
	}
	nested, ok := got.Entries["nested"].(value.Mapping)
	if !ok {
		t.Fatalf("nested entry = %T, want value.Mapping", got.Entries["nested"])
	}
	seed, ok := nested.Entries["seed"].(value.DynScalar)
	if !ok || seed.Value != int64(7) {
		t.Errorf("nested seed = %#v, want DynScalar{Value: 7}", nested.Entries["seed"])
	}
}

func TestReadValueDispatchesMapping(t *testing.T) {
	store := memstore.New("t")
	root := elem.RootGroup(store)
	m := value.Mapping{Entries: map[string]value.Value{
		"n": value.DynScalar{DType: dtype.I32, Value: int32(3)},
	}}
	c, err := m.Write(root, "uns_entry")
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	v, err := value.ReadValue(c)
	if err != nil {
		t.Fatalf("ReadValue: %v", err)
	}
	if _, ok := v.(value.Mapping); !ok {
		t.Errorf("ReadValue on a mapping container returned %T, want value.Mapping", v)
	}
}
