package types

import (
	"os"
	"path/filepath"
	"strings"
)

// Paths is the (workspace root, operation target root) pair threaded
// unchanged through every pipeline phase and extension point call.
type Paths struct {
	WorkspaceRoot string
	TargetRoot    string
}

// IsWorkspaceRelative reports whether a destination returned by a template
// is anchored at the workspace root rather than at the target root.
func IsWorkspaceRelative(destination string) bool {
	return strings.HasPrefix(destination, "/") ||
		strings.HasPrefix(destination, string(os.PathSeparator))
}

// Resolve turns a template-supplied destination into an absolute path.
// A leading separator anchors the destination at the workspace root, any
// other value is resolved against the target root.
func (p Paths) Resolve(destination string) string {
	base := p.TargetRoot
	if IsWorkspaceRelative(destination) {
		base = p.WorkspaceRoot
	}
	return filepath.Join(base, filepath.FromSlash(destination))
}
