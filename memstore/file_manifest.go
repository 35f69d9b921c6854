package memstore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/dtype"
	"github.com/scverse-go/anndata/shape"
)

const (
	groupManifestName = ".group.manifest"
	datasetSuffix      = ".dataset"
	lockFileName       = ".lock"
)

// atomicWrite writes data to path by writing to a uuid-named temp file in
// the same directory and renaming it into place, so a reader never
// observes a partially written manifest.
func atomicWrite(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp := filepath.Join(dir, "."+uuid.NewString()+".tmp")
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("memstore: write temp manifest: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("memstore: rename manifest into place: %w", err)
	}
	return nil
}

func attrsToMap(attrs map[string]backend.RawArray) (map[string]any, error) {
	out := make(map[string]any, len(attrs))
	for name, arr := range attrs {
		s, err := rawToStruct(arr)
		if err != nil {
			return nil, err
		}
		out[name] = s.AsMap()
	}
	return out, nil
}

func mapToAttrs(v *structpb.Value) (map[string]backend.RawArray, error) {
	out := map[string]backend.RawArray{}
	if v == nil {
		return out, nil
	}
	for name, field := range v.GetStructValue().GetFields() {
		arr, err := structToRaw(field.GetStructValue())
		if err != nil {
			return nil, fmt.Errorf("memstore: decode attribute %q: %w", name, err)
		}
		out[name] = arr
	}
	return out, nil
}

func writeGroupManifest(path string, order []string, attrs map[string]backend.RawArray) error {
	orderVals := make([]any, len(order))
	for i, n := range order {
		orderVals[i] = n
	}
	attrVals, err := attrsToMap(attrs)
	if err != nil {
		return err
	}
	s, err := structpb.NewStruct(map[string]any{
		"order": orderVals,
		"attrs": attrVals,
	})
	if err != nil {
		return err
	}
	raw, err := proto.Marshal(s)
	if err != nil {
		return err
	}
	return atomicWrite(path, raw)
}

func readGroupManifest(path string) ([]string, map[string]backend.RawArray, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, map[string]backend.RawArray{}, nil
		}
		return nil, nil, err
	}
	s := &structpb.Struct{}
	if err := proto.Unmarshal(raw, s); err != nil {
		return nil, nil, fmt.Errorf("memstore: decode group manifest %s: %w", path, err)
	}
	fields := s.GetFields()
	orderList := fields["order"].GetListValue().GetValues()
	order := make([]string, len(orderList))
	for i, v := range orderList {
		order[i] = v.GetStringValue()
	}
	attrs, err := mapToAttrs(fields["attrs"])
	if err != nil {
		return nil, nil, err
	}
	return order, attrs, nil
}

func writeDatasetManifest(path string, dt dtype.ScalarType, sh shape.Shape, data any, attrs map[string]backend.RawArray) error {
	base, err := rawToStruct(backend.RawArray{DType: dt, Shape: sh, Data: data})
	if err != nil {
		return err
	}
	attrVals, err := attrsToMap(attrs)
	if err != nil {
		return err
	}
	fields := base.AsMap()
	fields["attrs"] = attrVals
	s, err := structpb.NewStruct(fields)
	if err != nil {
		return err
	}
	raw, err := proto.Marshal(s)
	if err != nil {
		return err
	}
	return atomicWrite(path, raw)
}

func readDatasetManifest(path string) (dtype.ScalarType, shape.Shape, any, map[string]backend.RawArray, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	s := &structpb.Struct{}
	if err := proto.Unmarshal(raw, s); err != nil {
		return 0, nil, nil, nil, fmt.Errorf("memstore: decode dataset manifest %s: %w", path, err)
	}
	arr, err := structToRaw(s)
	if err != nil {
		return 0, nil, nil, nil, err
	}
	attrs, err := mapToAttrs(s.GetFields()["attrs"])
	if err != nil {
		return 0, nil, nil, nil, err
	}
	return arr.DType, arr.Shape, arr.Data, attrs, nil
}
