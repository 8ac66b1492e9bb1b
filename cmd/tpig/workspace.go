package tpig

import (
	"path/filepath"

	"github.com/arthur-debert/templatepig/pkg/types"
)

// findWorkspace walks up from start to the nearest folder holding one of
// markers. It returns "" when no ancestor has one.
func findWorkspace(fsys types.FS, start string, markers []string) string {
	dir := filepath.Clean(start)
	for {
		for _, marker := range markers {
			if _, err := fsys.Stat(filepath.Join(dir, marker)); err == nil {
				return dir
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// resolveWorkspace picks the workspace root: the explicit flag, the nearest
// marked ancestor of cwd, or cwd itself
func resolveWorkspace(fsys types.FS, explicit, cwd string, markers []string) string {
	if explicit != "" {
		if filepath.IsAbs(explicit) {
			return filepath.Clean(explicit)
		}
		return filepath.Join(cwd, explicit)
	}
	if found := findWorkspace(fsys, cwd, markers); found != "" {
		return found
	}
	return filepath.Clean(cwd)
}
