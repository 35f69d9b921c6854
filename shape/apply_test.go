package shape

import (
	"reflect"
	"testing"
)

func TestGatherRows(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	full := New(4, 3)
	sel := Select{Index([]int{2, 0}), Full()}
	out, outShape, err := Gather(data, full, sel)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if !outShape.Equal(New(2, 3)) {
		t.Fatalf("outShape = %v, want (2,3)", outShape)
	}
	want := []int{7, 8, 9, 1, 2, 3}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("Gather rows [2,0] = %v, want %v", out, want)
	}
}

func TestGatherScalarDropsAxis(t *testing.T) {
	data := []int{1, 2, 3, 4, 5, 6}
	full := New(2, 3)
	sel := Select{Scalar(1), Full()}
	out, outShape, err := Gather(data, full, sel)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if !outShape.Equal(New(3)) {
		t.Errorf("outShape = %v, want (3)", outShape)
	}
	want := []int{4, 5, 6}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("Gather row 1 = %v, want %v", out, want)
	}
}

func TestScatterRoundTrip(t *testing.T) {
	data := make([]int, 12)
	full := New(4, 3)
	sel := Select{Index([]int{1, 3}), Full()}
	values := []int{10, 20, 30, 40, 50, 60}
	if err := Scatter(data, full, sel, values); err != nil {
		t.Fatalf("Scatter: %v", err)
	}
	out, _, err := Gather(data, full, sel)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if !reflect.DeepEqual(out, values) {
		t.Errorf("round trip: got %v, want %v", out, values)
	}
	for _, i := range []int{0, 2} {
		for j := 0; j < 3; j++ {
			if data[i*3+j] != 0 {
				t.Errorf("row %d untouched expected to stay zero, got %d", i, data[i*3+j])
			}
		}
	}
}

func TestScatterLengthMismatch(t *testing.T) {
	data := make([]int, 6)
	full := New(2, 3)
	sel := FullSlice(2)
	if err := Scatter(data, full, sel, []int{1, 2, 3}); err == nil {
		t.Fatalf("Scatter with mismatched value length = nil error, want error")
	}
}
