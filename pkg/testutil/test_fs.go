package testutil

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/templatepig/pkg/filesystem"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// NewTestFS creates a new in-memory filesystem for testing.
func NewTestFS() types.FS {
	return filesystem.NewAferoFS(afero.NewMemMapFs())
}

// WriteTree creates files below root. Keys are slash-separated relative
// paths; a key ending in "/" creates an empty directory.
func WriteTree(t *testing.T, fsys types.FS, root string, tree map[string]string) {
	t.Helper()

	require.NoError(t, fsys.MkdirAll(root, 0755))
	for rel, content := range tree {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if strings.HasSuffix(rel, "/") {
			require.NoError(t, fsys.MkdirAll(path, 0755), "mkdir %s", rel)
			continue
		}
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0755), "mkdir parent of %s", rel)
		require.NoError(t, fsys.WriteFile(path, []byte(content), 0644), "write %s", rel)
	}
}

// ReadTree returns every file below root keyed by slash-separated relative
// path. Empty directories appear with a trailing "/" like WriteTree expects.
// A missing root gives an empty map.
func ReadTree(t *testing.T, fsys types.FS, root string) map[string]string {
	t.Helper()

	tree := map[string]string{}
	if _, err := fsys.Stat(root); err != nil {
		return tree
	}
	var visit func(dir string)
	visit = func(dir string) {
		children, err := fsys.ReadDir(dir)
		require.NoError(t, err)
		if len(children) == 0 && dir != root {
			rel, _ := filepath.Rel(root, dir)
			tree[filepath.ToSlash(rel)+"/"] = ""
		}
		for _, child := range children {
			path := filepath.Join(dir, child.Name())
			if child.IsDir() {
				visit(path)
				continue
			}
			data, err := fsys.ReadFile(path)
			require.NoError(t, err)
			rel, _ := filepath.Rel(root, path)
			tree[filepath.ToSlash(rel)] = string(data)
		}
	}
	visit(root)
	return tree
}

// SortedKeys returns the keys of a tree in lexical order
func SortedKeys(tree map[string]string) []string {
	keys := make([]string, 0, len(tree))
	for k := range tree {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
