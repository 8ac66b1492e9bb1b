package types

import (
	"fmt"
	"path/filepath"
)

// EntryKind distinguishes file entries from bare directory entries
type EntryKind int

const (
	// EntryFile is a regular file inside a template
	EntryFile EntryKind = iota
	// EntryDir is a directory that has no qualifying descendants
	EntryDir
)

// String returns the JSON-friendly name of the kind
func (k EntryKind) String() string {
	if k == EntryDir {
		return "dir"
	}
	return "file"
}

// EntryState tracks how far an entry has progressed through the pipeline
type EntryState string

const (
	StateDiscovered   EntryState = "discovered"
	StateResolved     EntryState = "path-resolved"
	StateSkipped      EntryState = "skipped"
	StateRendered     EntryState = "rendered"
	StateMaterialized EntryState = "materialized"
)

// Entry is one file or directory discovered while walking a template.
// Fields are filled in phase by phase; once an entry is materialized it is
// not modified again.
type Entry struct {
	Kind EntryKind

	// Location is the absolute path of the entry inside the template
	Location string

	// SourcePath is the slash-separated path relative to the template root
	SourcePath string

	// DestinationPath is the value returned by getDestinationPath
	DestinationPath string

	// AbsoluteDestination is DestinationPath resolved against the paths bundle
	AbsoluteDestination string

	// Rendered holds the evaluated file body (files only)
	Rendered string

	State EntryState

	content func() (string, error)
}

// NewFileEntry creates a file entry whose content is produced by read on
// every call to Content.
func NewFileEntry(location string, read func() (string, error)) *Entry {
	return &Entry{
		Kind:     EntryFile,
		Location: location,
		State:    StateDiscovered,
		content:  read,
	}
}

// NewDirEntry creates a bare directory entry. Directory entries carry no
// content.
func NewDirEntry(location string) *Entry {
	return &Entry{
		Kind:     EntryDir,
		Location: location,
		State:    StateDiscovered,
	}
}

// IsDir reports whether the entry is a bare directory entry
func (e *Entry) IsDir() bool {
	return e.Kind == EntryDir
}

// Skipped reports whether the entry was excluded by getDestinationPath
func (e *Entry) Skipped() bool {
	return e.State == StateSkipped
}

// HasContent reports whether the entry can produce content
func (e *Entry) HasContent() bool {
	return e.content != nil
}

// Content reads the entry's raw content. Nothing is cached: every call goes
// back to storage.
func (e *Entry) Content() (string, error) {
	if e.content == nil {
		return "", fmt.Errorf("entry %s has no content", e.Location)
	}
	return e.content()
}

// Slim returns the read-only projection handed to template extension points
func (e *Entry) Slim() SlimEntry {
	return SlimEntry{
		SourcePath:  e.SourcePath,
		Name:        filepath.Base(e.Location),
		IsDirectory: e.IsDir(),
		Location:    e.Location,
	}
}

// SlimEntry is the projection of an Entry that author code gets to see.
// It is a value: changing it cannot affect the entry it came from.
type SlimEntry struct {
	SourcePath  string `json:"sourcePath"`
	Name        string `json:"name"`
	IsDirectory bool   `json:"isDirectory"`
	Location    string `json:"location"`
}
