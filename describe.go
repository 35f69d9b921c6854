package anndata

import (
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/scverse-go/anndata/axis"
)

// Describe renders a short human-readable summary of a's shape and the
// keys present in each collection: n_obs/n_vars, whether X/obs/var are
// set, and the obsm/obsp/varm/varp/uns keys. It is meant for debugging
// and REPL use, not as a stable machine-readable format.
func (a *AnnData) Describe() string {
	var b strings.Builder
	table := tablewriter.NewWriter(&b)
	table.Header("field", "value")

	a.mu.Lock()
	nObs := a.nObs.Get()
	nVars := a.nVars.Get()
	hasX := a.x != nil
	hasObs := a.obs != nil
	hasVar := a.vrt != nil
	obsmKeys := keysOf(a.obsm)
	obspKeys := keysOf(a.obsp)
	varmKeys := keysOf(a.varm)
	varpKeys := keysOf(a.varp)
	unsKeys := unsKeysOf(a.uns)
	a.mu.Unlock()

	table.Append([]string{"n_obs", strconv.Itoa(nObs)})
	table.Append([]string{"n_vars", strconv.Itoa(nVars)})
	table.Append([]string{"X", strconv.FormatBool(hasX)})
	table.Append([]string{"obs", strconv.FormatBool(hasObs)})
	table.Append([]string{"var", strconv.FormatBool(hasVar)})
	table.Append([]string{"obsm", strings.Join(obsmKeys, ", ")})
	table.Append([]string{"obsp", strings.Join(obspKeys, ", ")})
	table.Append([]string{"varm", strings.Join(varmKeys, ", ")})
	table.Append([]string{"varp", strings.Join(varpKeys, ", ")})
	table.Append([]string{"uns", strings.Join(unsKeys, ", ")})
	table.Render()
	return b.String()
}

// String implements fmt.Stringer via Describe.
func (a *AnnData) String() string {
	return a.Describe()
}

func keysOf(aa *axis.AxisArrays) []string {
	if aa == nil {
		return nil
	}
	return aa.Keys()
}

func unsKeysOf(ec *axis.ElemCollection) []string {
	if ec == nil {
		return nil
	}
	return ec.Keys()
}
