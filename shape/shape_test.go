package shape

import "testing"

func TestShapeSizeAndNDim(t *testing.T) {
	tests := []struct {
		s        Shape
		wantSize int
		wantNDim int
	}{
		{New(), 1, 0},
		{New(3), 3, 1},
		{New(2, 3), 6, 2},
		{New(2, 3, 4), 24, 3},
		{New(0, 5), 0, 2},
	}
	for _, tt := range tests {
		if got := tt.s.Size(); got != tt.wantSize {
			t.Errorf("Size(%v) = %d, want %d", tt.s, got, tt.wantSize)
		}
		if got := tt.s.NDim(); got != tt.wantNDim {
			t.Errorf("NDim(%v) = %d, want %d", tt.s, got, tt.wantNDim)
		}
	}
}

func TestShapeEqualAndClone(t *testing.T) {
	a := New(2, 3)
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatalf("clone not equal to original")
	}
	b[0] = 9
	if a[0] == 9 {
		t.Fatalf("Clone shares backing array with original")
	}
	if a.Equal(New(2, 4)) {
		t.Fatalf("shapes of different extent compared equal")
	}
	if a.Equal(New(2, 3, 1)) {
		t.Fatalf("shapes of different rank compared equal")
	}
}

func TestElemOutLenAndValidate(t *testing.T) {
	full := Full()
	if got, err := full.OutLen(10); err != nil || got != 10 {
		t.Errorf("Full().OutLen(10) = %d, %v, want 10, nil", got, err)
	}
	rng := MustRange(2, 5, 1)
	if got, err := rng.OutLen(10); err != nil || got != 3 {
		t.Errorf("Range(2,5,1).OutLen(10) = %d, %v, want 3, nil", got, err)
	}
	idx := Index([]int{0, 2, 4})
	if got, err := idx.OutLen(10); err != nil || got != 3 {
		t.Errorf("Index.OutLen(10) = %d, %v, want 3, nil", got, err)
	}
	scalar := Scalar(3)
	if got, err := scalar.OutLen(10); err != nil || got != 1 {
		t.Errorf("Scalar.OutLen(10) = %d, %v, want 1, nil", got, err)
	}

	if err := rng.Validate(10); err != nil {
		t.Errorf("Range(2,5,1).Validate(10) = %v, want nil", err)
	}
	if err := Index([]int{9, 10}).Validate(10); err == nil {
		t.Errorf("Index([9,10]).Validate(10) = nil, want bounds error")
	}
}

func TestSelectOutShape(t *testing.T) {
	sel := Select{Index([]int{0, 1}), Full()}
	out, err := sel.OutShape(New(4, 3))
	if err != nil {
		t.Fatalf("OutShape: %v", err)
	}
	want := New(2, 3)
	if !out.Equal(want) {
		t.Errorf("OutShape = %v, want %v", out, want)
	}
}

func TestComposeElemRangeRangeStaysRange(t *testing.T) {
	outer := MustRange(2, 10, 2) // selects 2,4,6,8
	inner := MustRange(1, 4, 1)  // picks positions 1..3 of that
	got, err := ComposeElem(outer, inner, 12)
	if err != nil {
		t.Fatalf("ComposeElem: %v", err)
	}
	if got.Kind != KindRange {
		t.Fatalf("Range∘Range kind = %v, want KindRange", got.Kind)
	}
	resolved, err := got.Resolve(12)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []int{4, 6, 8}
	if len(resolved) != len(want) {
		t.Fatalf("composed selection = %v, want %v", resolved, want)
	}
	for i := range want {
		if resolved[i] != want[i] {
			t.Errorf("composed[%d] = %d, want %d", i, resolved[i], want[i])
		}
	}
}

func TestComposeElemDemotesToIndex(t *testing.T) {
	outer := Index([]int{5, 1, 3})
	inner := MustRange(0, 2, 1)
	got, err := ComposeElem(outer, inner, 6)
	if err != nil {
		t.Fatalf("ComposeElem: %v", err)
	}
	if got.Kind != KindIndex {
		t.Fatalf("Index∘Range kind = %v, want KindIndex", got.Kind)
	}
	want := []int{5, 1}
	if len(got.Indices) != len(want) || got.Indices[0] != want[0] || got.Indices[1] != want[1] {
		t.Errorf("composed indices = %v, want %v", got.Indices, want)
	}
}

func TestComposeElemScalarDropsIntoOuter(t *testing.T) {
	outer := MustRange(2, 10, 2)
	got, err := ComposeElem(outer, Scalar(2), 12)
	if err != nil {
		t.Fatalf("ComposeElem: %v", err)
	}
	if got.Kind != KindScalar || got.Scalar != 6 {
		t.Errorf("composed scalar = %+v, want Scalar(6)", got)
	}
}

func TestMaskSelectsTruePositions(t *testing.T) {
	m := Mask([]bool{true, false, true, true, false})
	if m.Kind != KindIndex {
		t.Fatalf("Mask kind = %v, want KindIndex", m.Kind)
	}
	want := []int{0, 2, 3}
	if len(m.Indices) != len(want) {
		t.Fatalf("Mask indices = %v, want %v", m.Indices, want)
	}
	for i := range want {
		if m.Indices[i] != want[i] {
			t.Errorf("Mask indices[%d] = %d, want %d", i, m.Indices[i], want[i])
		}
	}
	if got, err := m.OutLen(5); err != nil || got != 3 {
		t.Errorf("Mask.OutLen(5) = %d, %v, want 3, nil", got, err)
	}
}

func TestSelectFullSlice(t *testing.T) {
	sel := FullSlice(3)
	if len(sel) != 3 {
		t.Fatalf("FullSlice(3) has len %d, want 3", len(sel))
	}
	for _, e := range sel {
		if e.Kind != KindFull {
			t.Errorf("FullSlice element kind = %v, want KindFull", e.Kind)
		}
	}
}
