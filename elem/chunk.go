package elem

import (
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/value"
)

// RowRange is a half-open [Start, End) range of row indices a chunk was
// read from.
type RowRange struct {
	Start, End int
}

// ChunkedRowIterator walks a RawMatrixElem's row axis in fixed-size
// batches, finite and non-restartable: once exhausted it always reports
// done, and it cannot be rewound.
type ChunkedRowIterator struct {
	elem      *RawMatrixElem
	chunkSize int
	pos       int
}

// Chunked returns an iterator over m's rows in batches of chunkSize (the
// final batch may be shorter).
func Chunked(m *RawMatrixElem, chunkSize int) *ChunkedRowIterator {
	return &ChunkedRowIterator{elem: m, chunkSize: chunkSize}
}

// Next returns the next chunk and its source row range, or ok=false once
// every row has been yielded.
func (it *ChunkedRowIterator) Next() (value.Value, RowRange, bool, error) {
	if it.pos >= it.elem.NRows {
		return nil, RowRange{}, false, nil
	}
	start := it.pos
	end := start + it.chunkSize
	if end > it.elem.NRows {
		end = it.elem.NRows
	}
	idx := make([]int, end-start)
	for i := range idx {
		idx[i] = start + i
	}
	chunk, err := it.elem.ReadRows(idx)
	if err != nil {
		return nil, RowRange{}, false, backend.Wrap(backend.BackendIo, "ChunkedRowIterator.Next", err)
	}
	it.pos = end
	return chunk, RowRange{Start: start, End: end}, true, nil
}
