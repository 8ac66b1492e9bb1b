// Package host connects the pipeline to a terminal: notices, exception
// reports and the template output channel.
package host

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/materialize"
	"github.com/arthur-debert/templatepig/pkg/style"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// NoticePrefix starts every notification
const NoticePrefix = "Template Pig » "

const (
	actionOpenFormat = "Open file %s"
	actionCopyStack  = "Copy stack trace"
)

// TerminalHost implements types.Host on a terminal
type TerminalHost struct {
	types.Prompter

	mu     sync.Mutex
	out    io.Writer
	errOut io.Writer
	opener materialize.Opener
	copy   func(string) error
	logger zerolog.Logger
}

// Option configures a TerminalHost
type Option func(*TerminalHost)

// WithOutput sets where notices and channel lines go
func WithOutput(out, errOut io.Writer) Option {
	return func(h *TerminalHost) {
		h.out = out
		h.errOut = errOut
	}
}

// WithOpener sets how a failing file is shown
func WithOpener(opener materialize.Opener) Option {
	return func(h *TerminalHost) { h.opener = opener }
}

// WithClipboard replaces the system clipboard
func WithClipboard(copy func(string) error) Option {
	return func(h *TerminalHost) { h.copy = copy }
}

// New creates a terminal host asking questions through prompter
func New(prompter types.Prompter, opts ...Option) *TerminalHost {
	h := &TerminalHost{
		Prompter: prompter,
		out:      os.Stdout,
		errOut:   os.Stderr,
		opener:   materialize.NopOpener{},
		copy:     clipboard.WriteAll,
		logger:   logging.GetLogger("ui.host"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func prefixed(printer pterm.PrefixPrinter) string {
	return printer.Prefix.Style.Sprint(" " + printer.Prefix.Text + " ")
}

func (h *TerminalHost) println(w io.Writer, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, err := fmt.Fprintln(w, line); err != nil {
		h.logger.Debug().Err(err).Msg("Failed to write notice")
	}
}

// Info shows an informational notice
func (h *TerminalHost) Info(message string) {
	h.println(h.out, prefixed(pterm.Info)+" "+pterm.Info.MessageStyle.Sprint(NoticePrefix+message))
}

// Error shows an error notice
func (h *TerminalHost) Error(message string) {
	h.println(h.errOut, prefixed(pterm.Error)+" "+pterm.Error.MessageStyle.Sprint(NoticePrefix+message))
}

// Exception shows a failure in template code and offers to open the file
// or copy the stack trace
func (h *TerminalHost) Exception(report types.ExceptionReport) {
	h.logger.Error().
		Str("template", report.TemplateName).
		Str("activity", report.Activity).
		Str("location", report.Location).
		Str("message", report.Message).
		Msg("Template code failed")

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", prefixed(pterm.Error),
		pterm.Error.MessageStyle.Sprintf("%s » Uncaught exception while %s:", report.TemplateName, report.Activity))
	b.WriteString(style.Indent(report.Message, 1))
	if report.Stack != "" {
		b.WriteString("\n" + style.MutedStyle.Render(style.Indent(report.Stack, 1)))
	}
	h.println(h.errOut, b.String())

	h.offerActions(report)
}

func (h *TerminalHost) offerActions(report types.ExceptionReport) {
	var (
		items   []types.QuickPickItem
		actions []func(context.Context) error
	)
	if report.Location != "" {
		items = append(items, types.QuickPickItem{Label: fmt.Sprintf(actionOpenFormat, filepath.Base(report.Location))})
		actions = append(actions, func(ctx context.Context) error {
			return h.opener.Open(ctx, []string{report.Location})
		})
	}
	if report.Stack != "" {
		items = append(items, types.QuickPickItem{Label: actionCopyStack})
		actions = append(actions, func(context.Context) error {
			return h.copy(report.Stack)
		})
	}
	if len(items) == 0 || h.Prompter == nil {
		return
	}

	ctx := context.Background()
	picked, ok, err := h.QuickPick(ctx, items, types.QuickPickOptions{PlaceHolder: "What now?"})
	if err != nil {
		h.logger.Debug().Err(err).Msg("Exception actions not offered")
		return
	}
	if !ok || len(picked) == 0 || picked[0] < 0 || picked[0] >= len(actions) {
		return
	}
	if err := actions[picked[0]](ctx); err != nil {
		h.logger.Warn().Err(err).Str("action", items[picked[0]].Label).Msg("Exception action failed")
	}
}

// Log appends a line to a named output channel
func (h *TerminalHost) Log(channel, line string) {
	h.println(h.out, style.ChannelStyle.Render("["+channel+"]")+" "+line)
}
