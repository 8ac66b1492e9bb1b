package templates

import (
	"context"

	"github.com/dop251/goja"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/sandbox"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// Binding calls the per-entry extension points of one run with a fixed
// answer-set and paths bundle
type Binding struct {
	template *Template
	answers  goja.Value
	paths    goja.Value
}

// DestinationPath calls pig.getDestinationPath. ok is false when the result
// is falsy and the entry must be skipped.
func (b *Binding) DestinationPath(ctx context.Context, entry types.SlimEntry) (destination string, ok bool, err error) {
	t := b.template
	if !t.member("getDestinationPath") {
		return entry.SourcePath, entry.SourcePath != "", nil
	}
	v, err := t.sb.CallMethod(ctx, t.pig, "getDestinationPath", b.slim(entry), b.answers, b.paths)
	if err != nil {
		return "", false, t.wrap(err, errors.ErrTemplateRouting, ActivityDestination(entry.SourcePath), entry.SourcePath)
	}
	if !sandbox.Truthy(v) {
		return "", false, nil
	}
	return v.String(), true, nil
}

// ShouldOpenDocument calls pig.shouldOpenDocument
func (b *Binding) ShouldOpenDocument(ctx context.Context, entry types.SlimEntry) (bool, error) {
	t := b.template
	if !t.member("shouldOpenDocument") {
		return true, nil
	}
	v, err := t.sb.CallMethod(ctx, t.pig, "shouldOpenDocument", b.slim(entry), b.answers, b.paths)
	if err != nil {
		return false, t.wrap(err, errors.ErrScript, ActivityShouldOpen(entry.SourcePath), entry.SourcePath)
	}
	return sandbox.Truthy(v), nil
}

// slim builds the frozen entry object author code receives
func (b *Binding) slim(entry types.SlimEntry) goja.Value {
	sb := b.template.sb
	rt := sb.Runtime()

	dirent := rt.NewObject()
	_ = dirent.Set("name", entry.Name)
	_ = dirent.Set("isDirectory", entry.IsDirectory)
	_ = dirent.Set("isFile", !entry.IsDirectory)

	obj := rt.NewObject()
	_ = obj.Set("sourcePath", entry.SourcePath)
	_ = obj.Set("name", entry.Name)
	_ = obj.Set("isDirectory", entry.IsDirectory)
	_ = obj.Set("location", entry.Location)
	_ = obj.Set("dirent", sb.Freeze(dirent))
	return sb.Freeze(obj)
}
