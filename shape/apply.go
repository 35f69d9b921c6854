package shape

import "fmt"

// Strides returns the row-major stride of each axis of sh: the number of
// flat elements to skip to advance that axis by one.
func Strides(sh Shape) []int { return stridesOf(sh) }

func stridesOf(sh Shape) []int {
	strides := make([]int, len(sh))
	acc := 1
	for i := len(sh) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= sh[i]
	}
	return strides
}

// resolveSelection resolves every axis of sel against full, returning the
// per-axis index lists and the output shape (scalar axes dropped).
func resolveSelection(full Shape, sel Select) (resolved [][]int, outShape Shape, err error) {
	if len(sel) != len(full) {
		return nil, nil, fmt.Errorf("shape: selection has %d axes, shape has %d", len(sel), len(full))
	}
	resolved = make([][]int, len(full))
	outShape = make(Shape, 0, len(full))
	for i, e := range sel {
		idx, err := e.Resolve(full[i])
		if err != nil {
			return nil, nil, err
		}
		resolved[i] = idx
		if e.Kind != KindScalar {
			outShape = append(outShape, len(idx))
		}
	}
	return resolved, outShape, nil
}

// Gather reads the elements of data (row-major, shaped full) selected by
// sel, returning them flattened in selection order together with the
// resulting shape.
func Gather[T any](data []T, full Shape, sel Select) ([]T, Shape, error) {
	resolved, outShape, err := resolveSelection(full, sel)
	if err != nil {
		return nil, nil, err
	}
	strides := stridesOf(full)
	counts := make([]int, len(full))
	total := 1
	for i, r := range resolved {
		counts[i] = len(r)
		total *= len(r)
	}
	out := make([]T, total)
	coord := make([]int, len(full))
	for n := 0; n < total; n++ {
		flat := 0
		for i := range coord {
			flat += resolved[i][coord[i]] * strides[i]
		}
		out[n] = data[flat]
		for i := len(coord) - 1; i >= 0; i-- {
			coord[i]++
			if coord[i] < counts[i] {
				break
			}
			coord[i] = 0
		}
	}
	return out, outShape, nil
}

// Scatter writes values (flattened in selection order) into data
// (row-major, shaped full) at the positions selected by sel. The caller
// must ensure len(values) matches the selection's output size.
func Scatter[T any](data []T, full Shape, sel Select, values []T) error {
	resolved, outShape, err := resolveSelection(full, sel)
	if err != nil {
		return err
	}
	if outShape.Size() != len(values) {
		return fmt.Errorf("shape: selection produces %d elements, value has %d", outShape.Size(), len(values))
	}
	strides := stridesOf(full)
	counts := make([]int, len(full))
	total := 1
	for i, r := range resolved {
		counts[i] = len(r)
		total *= len(r)
	}
	coord := make([]int, len(full))
	for n := 0; n < total; n++ {
		flat := 0
		for i := range coord {
			flat += resolved[i][coord[i]] * strides[i]
		}
		data[flat] = values[n]
		for i := len(coord) - 1; i >= 0; i-- {
			coord[i]++
			if coord[i] < counts[i] {
				break
			}
			coord[i] = 0
		}
	}
	return nil
}
