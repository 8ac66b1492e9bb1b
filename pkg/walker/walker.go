// Package walker enumerates the entries of a template folder.
//
// Control files (the setup script and the ignore markers) are never yielded
// and never make a directory count as non-empty. A directory with no
// qualifying descendants is yielded once as a bare directory entry so empty
// folders survive into the output tree; any other directory is represented
// only by its contents.
package walker

import (
	"iter"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/types"
)

const (
	// SetupScriptName is the setup script inside a template folder
	SetupScriptName = ".pig.js"
)

// controlFiles are matched against the lowercased file name
var controlFiles = map[string]bool{
	SetupScriptName: true,
	".pigignore":    true,
	".pignore":      true,
}

// IsControlFile reports whether name is one of the template control files
func IsControlFile(name string) bool {
	return controlFiles[strings.ToLower(name)]
}

// Walk returns a lazy sequence of the entries below root. Each range over
// the sequence starts a fresh walk; entries are produced in ReadDir order.
// File content is not read until Entry.Content is called.
//
// A missing root yields a single error and nothing else. Any later read
// failure is yielded as an error and ends the walk.
func Walk(fsys types.FS, root string) iter.Seq2[*types.Entry, error] {
	return func(yield func(*types.Entry, error) bool) {
		logger := logging.GetLogger("walker")

		info, err := fsys.Stat(root)
		if err != nil {
			yield(nil, errors.Wrapf(err, errors.ErrNotFound, "template folder %s does not exist", root).
				WithDetail("path", root))
			return
		}
		if !info.IsDir() {
			yield(nil, errors.Newf(errors.ErrInvalidInput, "template location %s is not a directory", root).
				WithDetail("path", root))
			return
		}

		logger.Trace().Str("root", root).Msg("Walking template folder")
		w := &walk{fsys: fsys, root: root, yield: yield}
		w.dir(root)
	}
}

type walk struct {
	fsys    types.FS
	root    string
	yield   func(*types.Entry, error) bool
	stopped bool
}

// dir walks one directory and returns how many entries it produced,
// including bare directory entries for empty subfolders.
func (w *walk) dir(path string) int {
	children, err := w.fsys.ReadDir(path)
	if err != nil {
		w.fail(errors.Wrapf(err, errors.ErrFileAccess, "failed to read directory %s", path).
			WithDetail("path", path))
		return 0
	}

	produced := 0
	for _, child := range children {
		if w.stopped {
			return produced
		}
		location := filepath.Join(path, child.Name())

		if child.IsDir() {
			produced += w.dir(location)
			continue
		}
		if IsControlFile(child.Name()) {
			continue
		}
		if w.emit(w.fileEntry(location)) {
			produced++
		}
	}

	if produced == 0 && !w.stopped {
		if w.emit(w.entry(types.NewDirEntry(path))) {
			produced++
		}
	}
	return produced
}

func (w *walk) fileEntry(location string) *types.Entry {
	fsys := w.fsys
	return w.entry(types.NewFileEntry(location, func() (string, error) {
		data, err := fsys.ReadFile(location)
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", location).
				WithDetail("path", location)
		}
		return string(data), nil
	}))
}

// entry fills in the source path relative to the walk root
func (w *walk) entry(e *types.Entry) *types.Entry {
	e.SourcePath = SourcePath(w.root, e.Location)
	return e
}

func (w *walk) emit(e *types.Entry) bool {
	if w.stopped {
		return false
	}
	if !w.yield(e, nil) {
		w.stopped = true
	}
	return true
}

func (w *walk) fail(err error) {
	if w.stopped {
		return
	}
	w.yield(nil, err)
	w.stopped = true
}

// SourcePath returns location relative to root using forward slashes. The
// root itself maps to "".
func SourcePath(root, location string) string {
	rel, err := filepath.Rel(root, location)
	if err != nil || rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}

// Collect drains a walk into a slice, stopping at the first error
func Collect(fsys types.FS, root string) ([]*types.Entry, error) {
	var entries []*types.Entry
	for entry, err := range Walk(fsys, root) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
