// Package render evaluates template file bodies.
//
// A body is the inside of one JavaScript template literal, so ${expr}
// interpolates anything in scope. It may be preceded by a <pig>...</pig>
// script block whose bindings are visible to the body:
//
//	<pig>
//	const fileName = kebabCase(name)
//	</pig>
//	export * from './${fileName}'
//
// Each file renders in a fresh sandbox holding the helper set and a copy of
// the answer-set's top-level keys as globals.
package render

import (
	"context"
	"strings"

	"github.com/dop251/goja"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/sandbox"
	"github.com/arthur-debert/templatepig/pkg/types"
)

const (
	OpenTag  = "<pig>"
	CloseTag = "</pig>"

	// MetadataKey names the setup-only namespace render sandboxes never see
	MetadataKey = "pig"
)

// Source is a file body split into its optional script block and the
// literal body
type Source struct {
	Script    string
	HasScript bool
	Body      string
}

// Parse splits raw file content. The script block must be the first
// non-whitespace text; one line break after the closing tag belongs to the
// block.
func Parse(content string) (Source, error) {
	trimmed := strings.TrimLeft(content, " \t\r\n")
	if !strings.HasPrefix(trimmed, OpenTag) {
		return Source{Body: content}, nil
	}

	rest := trimmed[len(OpenTag):]
	end := strings.Index(rest, CloseTag)
	if end < 0 {
		return Source{}, errors.New(errors.ErrTemplateRender, "unterminated <pig> block")
	}

	body := rest[end+len(CloseTag):]
	if strings.HasPrefix(body, "\r\n") {
		body = body[2:]
	} else if strings.HasPrefix(body, "\n") {
		body = body[1:]
	}
	return Source{Script: rest[:end], HasScript: true, Body: body}, nil
}

// Code returns the program that evaluates the source. With a script block
// the program is an async arrow so the block may await prompts.
func (s Source) Code() string {
	if !s.HasScript {
		return "(() => `" + s.Body + "`)()"
	}
	return "(async () => {\n" + s.Script + "\nreturn `" + s.Body + "`\n})()"
}

// Render evaluates content for one file. answers is the transformed
// answer-set snapshot; name identifies the file in traces.
func Render(ctx context.Context, factory *sandbox.Factory, name, content string, answers types.Answers) (string, error) {
	logger := logging.GetLogger("render")

	source, err := Parse(content)
	if err != nil {
		return "", err
	}

	sb, err := NewSandbox(factory, answers)
	if err != nil {
		return "", err
	}

	v, err := sb.RunScript(ctx, name, source.Code())
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrTemplateRender, "failed to render %s", name).
			WithDetail("source", name)
	}

	logger.Trace().Str("source", name).Bool("script", source.HasScript).Msg("Rendered file")
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return "", nil
	}
	return v.String(), nil
}

// NewSandbox builds a render sandbox whose globals are the top-level keys
// of answers, minus the metadata namespace. Each call parses its own copy.
func NewSandbox(factory *sandbox.Factory, answers types.Answers) (*sandbox.Sandbox, error) {
	sb, err := factory.CreateContext(nil)
	if err != nil {
		return nil, err
	}

	value, err := sb.Import(answers)
	if err != nil {
		return nil, err
	}
	obj, ok := value.(*goja.Object)
	if !ok || obj.ClassName() != "Object" {
		return sb, nil
	}
	for _, key := range obj.Keys() {
		if key == MetadataKey {
			continue
		}
		if err := sb.Set(key, obj.Get(key)); err != nil {
			return nil, err
		}
	}
	return sb, nil
}
