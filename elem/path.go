package elem

import (
	"strings"

	"github.com/scverse-go/anndata/backend"
)

func storeOf(c backend.DataContainer) (backend.Store, error) { return c.Store() }

// splitPath splits a container path ("/obsm/pca") into its parent group
// path ("obsm") and leaf name ("pca").
func splitPath(path string) (parent, name string) {
	trimmed := strings.TrimPrefix(path, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return "", trimmed
	}
	return trimmed[:idx], trimmed[idx+1:]
}

// openParent walks store's group tree to the group at parentPath. An
// empty parentPath means the element (X) lives directly at the store
// root, which RootGroup stands in for.
func openParent(store backend.Store, parentPath string) (backend.Group, error) {
	const op = "elem.openParent"
	if parentPath == "" {
		return RootGroup(store), nil
	}
	segments := strings.Split(parentPath, "/")
	g, err := store.OpenGroup(segments[0])
	if err != nil {
		return nil, backend.Wrap(backend.BackendIo, op, err)
	}
	for _, seg := range segments[1:] {
		g, err = g.OpenGroup(seg)
		if err != nil {
			return nil, backend.Wrap(backend.BackendIo, op, err)
		}
	}
	return g, nil
}

func parentHasNoSuchChild(err error) bool {
	return backend.Is(err, backend.NotFound)
}
