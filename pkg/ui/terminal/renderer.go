// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/style"
	"github.com/arthur-debert/templatepig/pkg/ui/display"
)

// Renderer provides rich terminal output using markup and styling
type Renderer struct {
	output io.Writer
	markup *style.MarkupParser
	// Width wraps long descriptions; 0 lets glamour decide
	Width int
}

// New creates a new terminal renderer
func New(w io.Writer) (*Renderer, error) {
	return &Renderer{
		output: w,
		markup: style.NewMarkupParser(),
	}, nil
}

// RenderResult renders any result type with rich terminal formatting
func (r *Renderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *display.TemplateList:
		var describe func(string) string
		if v.Long {
			describe = r.markdown
		}
		return r.println(r.markup.Render(v.Markup(describe)))
	case *display.RunSummary:
		return r.println(r.markup.Render(v.Markup()))
	default:
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}
}

// markdown renders template descriptions, falling back to the plain text
func (r *Renderer) markdown(content string) string {
	options := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if r.Width > 0 {
		options = append(options, glamour.WithWordWrap(r.Width))
	}
	renderer, err := glamour.NewTermRenderer(options...)
	if err != nil {
		return style.Indent(content, 2)
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return style.Indent(content, 2)
	}
	return strings.TrimRight(rendered, "\n")
}

// RenderError renders an error with its code when it has one
func (r *Renderer) RenderError(err error) error {
	prefix := pterm.Error.Prefix.Style.Sprint(" " + pterm.Error.Prefix.Text + " ")
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		return r.println(fmt.Sprintf("%s [%s] %s", prefix, code, pterm.Error.MessageStyle.Sprint(err.Error())))
	}
	return r.println(prefix + " " + pterm.Error.MessageStyle.Sprint(err.Error()))
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	return r.println(pterm.Info.MessageStyle.Sprint(msg))
}

func (r *Renderer) println(s string) error {
	_, err := fmt.Fprintln(r.output, s)
	return err
}
