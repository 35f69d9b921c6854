// Package anndata implements the top-level annotated-matrix object:
// AnnData wires a primary observation-by-variable matrix X, the obs/var
// data frames, the obsm/obsp/varm/varp axis-coupled collections, and
// the free-form uns mapping to a single backend store, enforcing the
// cross-element shared-counter invariants on every mutation.
package anndata

import (
	"sync"

	"github.com/scverse-go/anndata/axis"
	"github.com/scverse-go/anndata/backend"
	"github.com/scverse-go/anndata/elem"
	"github.com/scverse-go/anndata/value"
)

// standardGroups are created eagerly by New and, where present, wired by
// Open.
var standardGroups = []string{"obsm", "obsp", "varm", "varp", "uns"}

// AnnData is a backend store plus the shared n_obs/n_vars counters and
// the elements hung off them. Elements hold no ownership over the
// store; AnnData does, arena-style: one store, many elements.
type AnnData struct {
	store backend.Store
	rw    bool

	mu     sync.Mutex
	closed bool

	nObs  *axis.Counter
	nVars *axis.Counter

	x   *elem.RawMatrixElem
	obs *elem.DataFrameElem
	vrt *elem.DataFrameElem

	obsm *axis.AxisArrays
	obsp *axis.AxisArrays
	varm *axis.AxisArrays
	varp *axis.AxisArrays
	uns  *axis.ElemCollection
}

// New creates the five standard groups on an empty store, initializes
// the shared counters to nObs/nVars, and leaves X, obs, and var unset.
func New(store backend.Store, nObs, nVars int) (*AnnData, error) {
	const op = "anndata.New"
	a := &AnnData{store: store, rw: true, nObs: axis.NewCounter(nObs), nVars: axis.NewCounter(nVars)}

	obsmG, err := store.NewGroup("obsm")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	obspG, err := store.NewGroup("obsp")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	varmG, err := store.NewGroup("varm")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	varpG, err := store.NewGroup("varp")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	unsG, err := store.NewGroup("uns")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	a.obsm = axis.NewAxisArrays(obsmG, axis.Row, a.nObs)
	a.obsp = axis.NewAxisArrays(obspG, axis.Both, a.nObs)
	a.varm = axis.NewAxisArrays(varmG, axis.Column, a.nVars)
	a.varp = axis.NewAxisArrays(varpG, axis.Both, a.nVars)
	a.uns = axis.NewElemCollection(unsG)
	return a, nil
}

// Open inspects an existing store's top-level groups and wires elements
// for whichever of X/obs/var/obsm/obsp/varm/varp/uns are present; the
// rest are created lazily on first write. rw marks whether
// the handle is permitted to mutate the store; it does not change how
// the backend itself was opened.
func Open(store backend.Store, rw bool) (*AnnData, error) {
	const op = "anndata.Open"
	a := &AnnData{store: store, rw: rw, nObs: axis.NewCounter(0), nVars: axis.NewCounter(0)}

	names, err := store.List()
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	if present["X"] {
		c, err := backend.Open(elem.RootGroup(store), "X")
		if err != nil {
			return nil, err
		}
		x, err := elem.NewRawMatrixElem(c)
		if err != nil {
			return nil, err
		}
		a.x = x
		a.nObs.Set(x.NRows)
		a.nVars.Set(x.NCols)
	}
	if present["obs"] {
		c, err := backend.Open(elem.RootGroup(store), "obs")
		if err != nil {
			return nil, err
		}
		df, err := elem.NewDataFrameElem(c)
		if err != nil {
			return nil, err
		}
		a.obs = df
		if a.nObs.Get() == 0 {
			a.nObs.Set(df.NRows)
		}
	}
	if present["var"] {
		c, err := backend.Open(elem.RootGroup(store), "var")
		if err != nil {
			return nil, err
		}
		df, err := elem.NewDataFrameElem(c)
		if err != nil {
			return nil, err
		}
		a.vrt = df
		if a.nVars.Get() == 0 {
			a.nVars.Set(df.NRows)
		}
	}
	if present["obsm"] {
		g, err := store.OpenGroup("obsm")
		if err != nil {
			return nil, backend.Wrap(backend.BackendIo, op, err)
		}
		a.obsm, err = axis.OpenAxisArrays(g, axis.Row, a.nObs)
		if err != nil {
			return nil, err
		}
	}
	if present["obsp"] {
		g, err := store.OpenGroup("obsp")
		if err != nil {
			return nil, backend.Wrap(backend.BackendIo, op, err)
		}
		a.obsp, err = axis.OpenAxisArrays(g, axis.Both, a.nObs)
		if err != nil {
			return nil, err
		}
	}
	if present["varm"] {
		g, err := store.OpenGroup("varm")
		if err != nil {
			return nil, backend.Wrap(backend.BackendIo, op, err)
		}
		a.varm, err = axis.OpenAxisArrays(g, axis.Column, a.nVars)
		if err != nil {
			return nil, err
		}
	}
	if present["varp"] {
		g, err := store.OpenGroup("varp")
		if err != nil {
			return nil, backend.Wrap(backend.BackendIo, op, err)
		}
		a.varp, err = axis.OpenAxisArrays(g, axis.Both, a.nVars)
		if err != nil {
			return nil, err
		}
	}
	if present["uns"] {
		g, err := store.OpenGroup("uns")
		if err != nil {
			return nil, backend.Wrap(backend.BackendIo, op, err)
		}
		a.uns, err = axis.OpenElemCollection(g)
		if err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Close releases the underlying backend handle. Elements created by this
// AnnData become invalid; using them after Close is a programmer error
// surfaced as BackendClosed on next use.
func (a *AnnData) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return nil
	}
	a.closed = true
	return a.store.Close()
}

func (a *AnnData) checkOpen(op string) error {
	if a.closed {
		return backend.Errorf(backend.BackendClosed, op, "AnnData's store is already closed")
	}
	if !a.rw {
		return backend.Errorf(backend.BackendIo, op, "AnnData was opened read-only")
	}
	return nil
}

// NObs returns the current shared observation count.
func (a *AnnData) NObs() int { return a.nObs.Get() }

// NVars returns the current shared variable count.
func (a *AnnData) NVars() int { return a.nVars.Get() }

// Filename returns the backing store's filename.
func (a *AnnData) Filename() string { return a.store.Filename() }

func matrixDims(op string, v value.Value) (nrows, ncols int, err error) {
	switch d := v.(type) {
	case value.DynArray:
		switch len(d.Shape) {
		case 0:
			return 0, 0, backend.Errorf(backend.ShapeMismatch, op, "a scalar cannot be used as a matrix")
		case 1:
			return d.Shape[0], 1, nil
		default:
			return d.Shape[0], d.Shape[1], nil
		}
	case value.Csr:
		return d.NRows, d.NCols, nil
	case value.Csc:
		return d.NRows, d.NCols, nil
	default:
		return 0, 0, backend.Errorf(backend.DTypeMismatch, op, "%T is not a matrix-shaped value", v)
	}
}

func unlinkRoot(store backend.Store, name string) error {
	const op = "anndata.unlinkRoot"
	exists, err := store.Exists(name)
	if err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	if !exists {
		return nil
	}
	if err := store.Delete(name); err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	return nil
}

// X returns the primary matrix element, failing with NotFound if unset.
func (a *AnnData) X() (*elem.RawMatrixElem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.x == nil {
		return nil, backend.Errorf(backend.NotFound, "AnnData.X", "X is not set")
	}
	return a.x, nil
}

// SetX validates data's shape against the shared counters (a zero
// counter accepts any size), unlinks any prior X, writes data as the
// new X, and updates the counters.
func (a *AnnData) SetX(data value.Value) error {
	const op = "AnnData.SetX"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	nrows, ncols, err := matrixDims(op, data)
	if err != nil {
		return err
	}
	if n := a.nObs.Get(); n != 0 && nrows != n {
		return backend.Errorf(backend.ShapeMismatch, op, "X has %d rows, n_obs is %d", nrows, n)
	}
	if n := a.nVars.Get(); n != 0 && ncols != n {
		return backend.Errorf(backend.ShapeMismatch, op, "X has %d cols, n_vars is %d", ncols, n)
	}
	if err := unlinkRoot(a.store, "X"); err != nil {
		return err
	}
	container, err := data.Write(elem.RootGroup(a.store), "X")
	if err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	x, err := elem.NewRawMatrixElem(container)
	if err != nil {
		return err
	}
	a.x = x
	a.nObs.Set(nrows)
	a.nVars.Set(ncols)
	return nil
}

// DelX unlinks X, leaving it unset. The shared counters are left as-is:
// obs/var and the axis collections may still depend on them.
func (a *AnnData) DelX() error {
	const op = "AnnData.DelX"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	if a.x == nil {
		return nil
	}
	if err := unlinkRoot(a.store, "X"); err != nil {
		return err
	}
	a.x = nil
	return nil
}

// Obs returns the obs data-frame element, failing with NotFound if unset.
func (a *AnnData) Obs() (*elem.DataFrameElem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.obs == nil {
		return nil, backend.Errorf(backend.NotFound, "AnnData.Obs", "obs is not set")
	}
	return a.obs, nil
}

// Var returns the var data-frame element, failing with NotFound if unset.
func (a *AnnData) Var() (*elem.DataFrameElem, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.vrt == nil {
		return nil, backend.Errorf(backend.NotFound, "AnnData.Var", "var is not set")
	}
	return a.vrt, nil
}

// SetObs validates df.Height() against n_obs (or fixes n_obs if unset),
// unlinks any prior obs, and rewrites it.
func (a *AnnData) SetObs(df value.DataFrame) error {
	const op = "AnnData.SetObs"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	height := df.Height()
	if n := a.nObs.Get(); n != 0 && height != n {
		return backend.Errorf(backend.ShapeMismatch, op, "obs has %d rows, n_obs is %d", height, n)
	}
	if err := unlinkRoot(a.store, "obs"); err != nil {
		return err
	}
	container, err := df.Write(elem.RootGroup(a.store), "obs")
	if err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	e, err := elem.NewDataFrameElem(container)
	if err != nil {
		return err
	}
	a.obs = e
	a.nObs.Set(height)
	return nil
}

// SetVar is the var-axis twin of SetObs.
func (a *AnnData) SetVar(df value.DataFrame) error {
	const op = "AnnData.SetVar"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	height := df.Height()
	if n := a.nVars.Get(); n != 0 && height != n {
		return backend.Errorf(backend.ShapeMismatch, op, "var has %d rows, n_vars is %d", height, n)
	}
	if err := unlinkRoot(a.store, "var"); err != nil {
		return err
	}
	container, err := df.Write(elem.RootGroup(a.store), "var")
	if err != nil {
		return backend.Wrap(backend.BackendIo, op, err)
	}
	e, err := elem.NewDataFrameElem(container)
	if err != nil {
		return err
	}
	a.vrt = e
	a.nVars.Set(height)
	return nil
}

func (a *AnnData) ensureObsm() (*axis.AxisArrays, error) {
	if a.obsm != nil {
		return a.obsm, nil
	}
	g, err := a.store.NewGroup("obsm")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, "AnnData.ensureObsm", err)
	}
	a.obsm = axis.NewAxisArrays(g, axis.Row, a.nObs)
	return a.obsm, nil
}

func (a *AnnData) ensureObsp() (*axis.AxisArrays, error) {
	if a.obsp != nil {
		return a.obsp, nil
	}
	g, err := a.store.NewGroup("obsp")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, "AnnData.ensureObsp", err)
	}
	a.obsp = axis.NewAxisArrays(g, axis.Both, a.nObs)
	return a.obsp, nil
}

func (a *AnnData) ensureVarm() (*axis.AxisArrays, error) {
	if a.varm != nil {
		return a.varm, nil
	}
	g, err := a.store.NewGroup("varm")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, "AnnData.ensureVarm", err)
	}
	a.varm = axis.NewAxisArrays(g, axis.Column, a.nVars)
	return a.varm, nil
}

func (a *AnnData) ensureVarp() (*axis.AxisArrays, error) {
	if a.varp != nil {
		return a.varp, nil
	}
	g, err := a.store.NewGroup("varp")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, "AnnData.ensureVarp", err)
	}
	a.varp = axis.NewAxisArrays(g, axis.Both, a.nVars)
	return a.varp, nil
}

func (a *AnnData) ensureUns() (*axis.ElemCollection, error) {
	if a.uns != nil {
		return a.uns, nil
	}
	g, err := a.store.NewGroup("uns")
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, "AnnData.ensureUns", err)
	}
	a.uns = axis.NewElemCollection(g)
	return a.uns, nil
}

// SetObsm inserts data under key in the obsm collection, creating the
// group lazily on first use.
func (a *AnnData) SetObsm(key string, data value.Value) error {
	const op = "AnnData.SetObsm"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	obsm, err := a.ensureObsm()
	if err != nil {
		return err
	}
	return obsm.Insert(key, data)
}

// SetObsp is the obsp twin of SetObsm.
func (a *AnnData) SetObsp(key string, data value.Value) error {
	const op = "AnnData.SetObsp"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	obsp, err := a.ensureObsp()
	if err != nil {
		return err
	}
	return obsp.Insert(key, data)
}

// SetVarm is the var-axis twin of SetObsm.
func (a *AnnData) SetVarm(key string, data value.Value) error {
	const op = "AnnData.SetVarm"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	varm, err := a.ensureVarm()
	if err != nil {
		return err
	}
	return varm.Insert(key, data)
}

// SetVarp is the var-axis twin of SetObsp.
func (a *AnnData) SetVarp(key string, data value.Value) error {
	const op = "AnnData.SetVarp"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	varp, err := a.ensureVarp()
	if err != nil {
		return err
	}
	return varp.Insert(key, data)
}

// SetUns inserts data under key in the free-form uns collection.
func (a *AnnData) SetUns(key string, data value.Value) error {
	const op = "AnnData.SetUns"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	uns, err := a.ensureUns()
	if err != nil {
		return err
	}
	return uns.Insert(key, data)
}

// Obsm returns the obsm collection, creating it lazily if absent.
func (a *AnnData) Obsm() (*axis.AxisArrays, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureObsm()
}

// Obsp returns the obsp collection, creating it lazily if absent.
func (a *AnnData) Obsp() (*axis.AxisArrays, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureObsp()
}

// Varm returns the varm collection, creating it lazily if absent.
func (a *AnnData) Varm() (*axis.AxisArrays, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureVarm()
}

// Varp returns the varp collection, creating it lazily if absent.
func (a *AnnData) Varp() (*axis.AxisArrays, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureVarp()
}

// Uns returns the free-form uns collection, creating it lazily if absent.
func (a *AnnData) Uns() (*axis.ElemCollection, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ensureUns()
}

// obsmKeys returns the obsm collection's keys, or nil if obsm has never
// been created.
func (a *AnnData) obsmKeys() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.obsm == nil {
		return nil
	}
	return a.obsm.Keys()
}

// SubsetObs validates idx against n_obs, subsets X (rows), obs (rows),
// every obsm entry (rows) and every obsp entry (both axes), then
// advances n_obs to len(idx).
func (a *AnnData) SubsetObs(idx []int) error {
	const op = "AnnData.SubsetObs"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	nObs := a.nObs.Get()
	for _, i := range idx {
		if i < 0 || i >= nObs {
			return backend.Errorf(backend.Bounds, op, "index %d out of range (n_obs %d)", i, nObs)
		}
	}
	if a.x != nil {
		if err := a.x.SubsetRows(idx); err != nil {
			return err
		}
	}
	if a.obs != nil {
		if err := a.obs.SubsetRows(idx); err != nil {
			return err
		}
	}
	if a.obsm != nil {
		if err := a.obsm.Subset(idx); err != nil {
			return err
		}
	}
	if a.obsp != nil {
		if err := a.obsp.Subset(idx); err != nil {
			return err
		}
	}
	a.nObs.Set(len(idx))
	return nil
}

// SubsetVar is the var-axis twin of SubsetObs.
func (a *AnnData) SubsetVar(idx []int) error {
	const op = "AnnData.SubsetVar"
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := a.checkOpen(op); err != nil {
		return err
	}
	nVars := a.nVars.Get()
	for _, i := range idx {
		if i < 0 || i >= nVars {
			return backend.Errorf(backend.Bounds, op, "index %d out of range (n_vars %d)", i, nVars)
		}
	}
	if a.x != nil {
		if err := a.x.SubsetCols(idx); err != nil {
			return err
		}
	}
	if a.vrt != nil {
		if err := a.vrt.SubsetRows(idx); err != nil {
			return err
		}
	}
	if a.varm != nil {
		if err := a.varm.Subset(idx); err != nil {
			return err
		}
	}
	if a.varp != nil {
		if err := a.varp.Subset(idx); err != nil {
			return err
		}
	}
	a.nVars.Set(len(idx))
	return nil
}

// Subset composes SubsetObs and SubsetVar over the same AnnData.
func (a *AnnData) Subset(ridx, cidx []int) error {
	if err := a.SubsetObs(ridx); err != nil {
		return err
	}
	return a.SubsetVar(cidx)
}
