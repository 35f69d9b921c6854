package elem

import "github.com/scverse-go/anndata/shape"

// indexSelect builds a single-axis Index selection, for subsetting a 1-D
// data-frame column by row.
func indexSelect(idx []int) shape.Select {
	return shape.Select{shape.Index(idx)}
}
