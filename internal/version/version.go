// Package version carries build information.
package version

// Build information set by ldflags, e.g.
// -X github.com/arthur-debert/templatepig/internal/version.Version={{.Version}}
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)
