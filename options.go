package anndata

// Option configures an AnnDataSet constructed by NewAnnDataSet.
type Option func(*datasetOptions)

type datasetOptions struct {
	varIndexName string
}

func defaultDatasetOptions() datasetOptions {
	return datasetOptions{varIndexName: "_index"}
}

// WithVarIndexName overrides the column name used to test var-axis
// equality across backing stores when concatenating into an
// AnnDataSet. The default is "_index".
func WithVarIndexName(name string) Option {
	return func(o *datasetOptions) {
		o.varIndexName = name
	}
}
