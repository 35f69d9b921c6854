package shape

import "fmt"

// Kind tags the variant held by an Elem.
type Kind int

const (
	// KindFull selects the whole axis.
	KindFull Kind = iota
	// KindRange selects a python-style start:end:step slice of the axis.
	KindRange
	// KindIndex selects an explicit, possibly duplicated, possibly
	// unordered list of indices.
	KindIndex
	// KindScalar selects a single index and drops the axis from the result.
	KindScalar
)

func (k Kind) String() string {
	switch k {
	case KindFull:
		return "Full"
	case KindRange:
		return "Range"
	case KindIndex:
		return "Index"
	case KindScalar:
		return "Scalar"
	default:
		return "Unknown"
	}
}

// Elem is a per-axis selection primitive.
type Elem struct {
	Kind Kind

	// Range fields. Step must be non-zero; when Step > 0, Start <= End.
	Start, End, Step int

	// Index field. Duplicates and non-monotonic order are permitted.
	Indices []int

	// Scalar field.
	Scalar int
}

// Full returns a selection of the whole axis.
func Full() Elem { return Elem{Kind: KindFull} }

// Range returns a start:end:step selection. Step must be non-zero; when
// Step > 0, Start must be <= End.
func Range(start, end, step int) (Elem, error) {
	if step == 0 {
		return Elem{}, fmt.Errorf("shape: range step must be non-zero")
	}
	if step > 0 && start > end {
		return Elem{}, fmt.Errorf("shape: range start %d > end %d with positive step", start, end)
	}
	return Elem{Kind: KindRange, Start: start, End: end, Step: step}, nil
}

// MustRange is like Range but panics on error; intended for literal,
// compile-time-known ranges.
func MustRange(start, end, step int) Elem {
	e, err := Range(start, end, step)
	if err != nil {
		panic(err)
	}
	return e
}

// Index returns a selection of the given indices, in the order given.
func Index(idx []int) Elem {
	cp := make([]int, len(idx))
	copy(cp, idx)
	return Elem{Kind: KindIndex, Indices: cp}
}

// Scalar returns a selection of a single index; the axis is dropped from
// the selection's output shape.
func Scalar(i int) Elem { return Elem{Kind: KindScalar, Scalar: i} }

// Mask returns an Index selection of the positions where mask is true.
// The mask's length is not checked against the axis: a true position at
// or past the axis length surfaces as a bounds error at resolve time, but
// a shorter mask, or false entries past the end, pass unnoticed.
func Mask(mask []bool) Elem {
	var idx []int
	for i, b := range mask {
		if b {
			idx = append(idx, i)
		}
	}
	return Elem{Kind: KindIndex, Indices: idx}
}

// OutLen returns the length of the result of applying e to an axis of
// length l. A KindScalar selection
// drops the axis, so its "length" is not meaningful; callers must check
// Kind == KindScalar before calling OutLen if they need to special-case it.
func (e Elem) OutLen(l int) (int, error) {
	switch e.Kind {
	case KindFull:
		return l, nil
	case KindRange:
		return rangeLen(e.Start, e.End, e.Step), nil
	case KindIndex:
		return len(e.Indices), nil
	case KindScalar:
		return 1, nil
	default:
		return 0, fmt.Errorf("shape: unknown selection kind %v", e.Kind)
	}
}

func rangeLen(start, end, step int) int {
	if step > 0 {
		if end <= start {
			return 0
		}
		return (end - start + step - 1) / step
	}
	if start <= end {
		return 0
	}
	return (start - end + (-step) - 1) / (-step)
}

// Validate checks e against an axis of length l: Index entries and
// Scalar must be non-negative and < l.
func (e Elem) Validate(l int) error {
	switch e.Kind {
	case KindFull:
		return nil
	case KindRange:
		if e.Step == 0 {
			return fmt.Errorf("shape: range step must be non-zero")
		}
		return nil
	case KindIndex:
		for _, i := range e.Indices {
			if i < 0 || i >= l {
				return fmt.Errorf("shape: index %d out of bounds for axis of length %d", i, l)
			}
		}
		return nil
	case KindScalar:
		if e.Scalar < 0 || e.Scalar >= l {
			return fmt.Errorf("shape: scalar index %d out of bounds for axis of length %d", e.Scalar, l)
		}
		return nil
	default:
		return fmt.Errorf("shape: unknown selection kind %v", e.Kind)
	}
}

// Resolve expands e into the concrete list of indices it selects out of an
// axis of length l, in selection order. This is the reference semantics
// used by in-memory selection reads and by composition.
func (e Elem) Resolve(l int) ([]int, error) {
	if err := e.Validate(l); err != nil {
		return nil, err
	}
	switch e.Kind {
	case KindFull:
		out := make([]int, l)
		for i := range out {
			out[i] = i
		}
		return out, nil
	case KindRange:
		n, _ := e.OutLen(l)
		out := make([]int, n)
		v := e.Start
		for i := 0; i < n; i++ {
			out[i] = v
			v += e.Step
		}
		return out, nil
	case KindIndex:
		out := make([]int, len(e.Indices))
		copy(out, e.Indices)
		return out, nil
	case KindScalar:
		return []int{e.Scalar}, nil
	default:
		return nil, fmt.Errorf("shape: unknown selection kind %v", e.Kind)
	}
}

// Select is an ordered sequence of per-axis selections whose length must
// equal the target shape's NDim.
type Select []Elem

// FullSlice returns a Select of n Full elements, one per axis.
func FullSlice(n int) Select {
	out := make(Select, n)
	for i := range out {
		out[i] = Full()
	}
	return out
}

// OutShape returns the shape produced by applying sel to sh, omitting any
// axis selected with a KindScalar element.
func (sel Select) OutShape(sh Shape) (Shape, error) {
	if len(sel) != len(sh) {
		return nil, fmt.Errorf("shape: selection has %d axes, shape has %d", len(sel), len(sh))
	}
	out := make(Shape, 0, len(sh))
	for i, e := range sel {
		if err := e.Validate(sh[i]); err != nil {
			return nil, err
		}
		if e.Kind == KindScalar {
			continue
		}
		n, err := e.OutLen(sh[i])
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// ComposeElem composes two per-axis selections applied in sequence over an
// axis of length l: first outer, then inner (inner indexes into outer's
// result). Range over Range collapses to a single Range when the steps
// combine cleanly; otherwise the result is demoted to an Index.
func ComposeElem(outer, inner Elem, l int) (Elem, error) {
	if outer.Kind == KindScalar {
		return Elem{}, fmt.Errorf("shape: cannot compose a selection onto a dropped (Scalar) axis")
	}
	outerIdx, err := outer.Resolve(l)
	if err != nil {
		return Elem{}, err
	}
	if inner.Kind == KindScalar {
		if inner.Scalar < 0 || inner.Scalar >= len(outerIdx) {
			return Elem{}, fmt.Errorf("shape: scalar index %d out of bounds for composed axis of length %d", inner.Scalar, len(outerIdx))
		}
		return Scalar(outerIdx[inner.Scalar]), nil
	}

	if outer.Kind == KindRange && inner.Kind == KindFull {
		return outer, nil
	}
	if outer.Kind == KindRange && inner.Kind == KindRange {
		newStart := outer.Start + inner.Start*outer.Step
		newStep := outer.Step * inner.Step
		n, err := inner.OutLen(len(outerIdx))
		if err != nil {
			return Elem{}, err
		}
		newEnd := newStart + newStep*n
		return Range(minMax(newStart, newEnd, newStep))
	}

	innerIdx, err := inner.Resolve(len(outerIdx))
	if err != nil {
		return Elem{}, err
	}
	composed := make([]int, len(innerIdx))
	for i, j := range innerIdx {
		composed[i] = outerIdx[j]
	}
	return Index(composed), nil
}

// minMax normalizes a (start, end, step) triple so Range's start<=end
// invariant holds for positive steps.
func minMax(start, end, step int) (int, int, int) {
	if step > 0 && start > end {
		return start, start, step
	}
	if step < 0 && start < end {
		return start, start, step
	}
	return start, end, step
}

// Compose composes two whole selections axis-by-axis; outer and inner must
// describe the same number of (surviving) axes as produced by applying
// outer to sh.
func Compose(outer Select, sh Shape, inner Select) (Select, error) {
	outShape, err := outer.OutShape(sh)
	if err != nil {
		return nil, err
	}
	if len(inner) != len(outShape) {
		return nil, fmt.Errorf("shape: inner selection has %d axes, outer result has %d", len(inner), len(outShape))
	}
	out := make(Select, 0, len(outer))
	innerPos := 0
	for i, e := range outer {
		if e.Kind == KindScalar {
			out = append(out, e)
			continue
		}
		composed, err := ComposeElem(e, inner[innerPos], sh[i])
		if err != nil {
			return nil, err
		}
		innerPos++
		out = append(out, composed)
	}
	return out, nil
}
