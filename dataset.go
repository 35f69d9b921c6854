package anndata

import (
	"fmt"
	"sort"

	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"

	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/value"
)

// AnnDataSet is a lazily stacked view over several backing AnnData stores
// that share a var axis, yielding a combined obs axis without copying X.
// Membership is fixed at construction; nothing written
// through the set after NewAnnDataSet is reflected back onto the members.
type AnnDataSet struct {
	keys    []string
	members []*AnnData
	offsets []int // offsets[i] is the row offset of members[i] in the stacked obs axis
	nObs    int
	nVars   int
	opts    datasetOptions
}

// NewAnnDataSet builds an AnnDataSet out of named AnnData stores. Every
// member's var data frame must be present and must agree, row for row, on
// the configured id column (default "_index"); mismatches fail with
// AxisMismatch carrying a unified diff of the two columns.
func NewAnnDataSet(inputs map[string]*AnnData, opts ...Option) (*AnnDataSet, error) {
	const op = "anndata.NewAnnDataSet"
	o := defaultDatasetOptions()
	for _, opt := range opts {
		opt(&o)
	}

	keys := make([]string, 0, len(inputs))
	for k := range inputs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return nil, backend.Errorf(backend.ShapeMismatch, op, "at least one input is required")
	}

	members := make([]*AnnData, len(keys))
	for i, k := range keys {
		members[i] = inputs[k]
	}

	refVar, err := members[0].Var()
	if err != nil {
		return nil, backend.Wrap(backend.ShapeMismatch, op, err)
	}
	refDF, err := refVar.ReadElem()
	if err != nil {
		return nil, err
	}
	refIDs, err := idColumnStrings(refDF, o.varIndexName)
	if err != nil {
		return nil, err
	}

	offsets := make([]int, len(members))
	nObs := 0
	for i, m := range members {
		if i > 0 {
			vDF, err := m.Var()
			if err != nil {
				return nil, backend.Wrap(backend.ShapeMismatch, op, err)
			}
			df, err := vDF.ReadElem()
			if err != nil {
				return nil, err
			}
			ids, err := idColumnStrings(df, o.varIndexName)
			if err != nil {
				return nil, err
			}
			if !equalStrings(refIDs, ids) {
				diff := diffIDColumns(keys[0], keys[i], refIDs, ids)
				return nil, backend.Errorf(backend.AxisMismatch, op,
					"var axis of %q does not match %q on column %q:\n%s", keys[i], keys[0], o.varIndexName, diff)
			}
		}
		offsets[i] = nObs
		nObs += m.NObs()
	}

	return &AnnDataSet{
		keys:    keys,
		members: members,
		offsets: offsets,
		nObs:    nObs,
		nVars:   len(refIDs),
		opts:    o,
	}, nil
}

// NObs returns the combined observation count across every member.
func (s *AnnDataSet) NObs() int { return s.nObs }

// NVars returns the shared variable count.
func (s *AnnDataSet) NVars() int { return s.nVars }

// Keys returns the sorted member names the set was constructed with.
func (s *AnnDataSet) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// ObsmKeys returns the obsm keys present in every member, sorted: a key
// missing from any one member is dropped from the stacked view.
func (s *AnnDataSet) ObsmKeys() []string {
	counts := make(map[string]int)
	for _, m := range s.members {
		for _, k := range m.obsmKeys() {
			counts[k]++
		}
	}
	out := make([]string, 0, len(counts))
	for k, c := range counts {
		if c == len(s.members) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// ObsColumns returns the obs column names present in every member,
// sorted; columns missing from any one member are dropped from the
// stacked view. A member with no obs frame at all yields an empty
// intersection.
func (s *AnnDataSet) ObsColumns() ([]string, error) {
	counts := make(map[string]int)
	for _, m := range s.members {
		obs, err := m.Obs()
		if err != nil {
			if backend.Is(err, backend.NotFound) {
				return nil, nil
			}
			return nil, err
		}
		df, err := obs.ReadElem()
		if err != nil {
			return nil, err
		}
		for _, c := range df.ColumnOrder {
			counts[c]++
		}
	}
	out := make([]string, 0, len(counts))
	for k, c := range counts {
		if c == len(s.members) {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out, nil
}

// ChunkedX returns an iterator over the stacked X matrix in row batches
// of chunkSize, reading through each member's own RawMatrixElem in turn.
// Chunk boundaries are never realigned across a member transition, so a
// batch can be shorter than chunkSize at every store seam, not only at
// the very end.
func (s *AnnDataSet) ChunkedX(chunkSize int) *ChunkedXIterator {
	return &ChunkedXIterator{set: s, chunkSize: chunkSize}
}

// ChunkedXIterator walks an AnnDataSet's stacked X axis member by member.
type ChunkedXIterator struct {
	set       *AnnDataSet
	chunkSize int
	memberIdx int
	cur       *elem.ChunkedRowIterator
}

// Next returns the next chunk of X and its row range in the combined obs
// axis, or ok=false once every member is exhausted.
func (it *ChunkedXIterator) Next() (value.Value, RowRange, bool, error) {
	const op = "ChunkedXIterator.Next"
	for {
		if it.memberIdx >= len(it.set.members) {
			return nil, RowRange{}, false, nil
		}
		if it.cur == nil {
			m := it.set.members[it.memberIdx]
			x, err := m.X()
			if err != nil {
				return nil, RowRange{}, false, backend.Wrap(backend.BackendIo, op, err)
			}
			it.cur = elem.Chunked(x, it.chunkSize)
		}
		v, rng, ok, err := it.cur.Next()
		if err != nil {
			return nil, RowRange{}, false, err
		}
		if !ok {
			it.cur = nil
			it.memberIdx++
			continue
		}
		base := it.set.offsets[it.memberIdx]
		return v, RowRange{Start: base + rng.Start, End: base + rng.End}, true, nil
	}
}

// RowRange is re-exported here so callers iterating ChunkedX need not
// import elem directly.
type RowRange = elem.RowRange

func idColumnStrings(df value.DataFrame, column string) ([]string, error) {
	const op = "anndata.idColumnStrings"
	col, ok := df.Columns[column]
	if !ok {
		return nil, backend.Errorf(backend.NotFound, op, "var has no column %q", column)
	}
	switch v := col.(type) {
	case value.Categorical:
		return v.Strings(), nil
	case value.DynArray:
		strs, ok := v.Data.([]string)
		if !ok {
			return nil, backend.Errorf(backend.DTypeMismatch, op, "column %q is not string-typed", column)
		}
		return strs, nil
	default:
		return nil, backend.Errorf(backend.DTypeMismatch, op, "column %q has unsupported type %T", column, col)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func diffIDColumns(nameA, nameB string, a, b []string) string {
	before := joinLines(a)
	after := joinLines(b)
	edits := myers.ComputeEdits(span.URIFromPath(nameA), before, after)
	return fmt.Sprint(gotextdiff.ToUnified(nameA, nameB, before, edits))
}

func joinLines(ss []string) string {
	out := make([]byte, 0, len(ss)*8)
	for _, s := range ss {
		out = append(out, s...)
		out = append(out, '\n')
	}
	return string(out)
}
