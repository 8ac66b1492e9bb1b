// Package filesystem provides filesystem implementations for templatepig.
//
// This package contains implementations of the types.FS interface: the
// real OS filesystem used by the CLI and an afero-backed one used by tests
// and dry runs.
package filesystem
