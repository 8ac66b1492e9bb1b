package host

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/templatepig/pkg/testutil"
	"github.com/arthur-debert/templatepig/pkg/types"
)

type recordingOpener struct {
	opened []string
}

func (o *recordingOpener) Open(_ context.Context, paths []string) error {
	o.opened = append(o.opened, paths...)
	return nil
}

type fixture struct {
	host    *TerminalHost
	prompts *testutil.FakeHost
	out     *bytes.Buffer
	errOut  *bytes.Buffer
	opener  *recordingOpener
	copied  []string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	pterm.DisableColor()
	t.Cleanup(pterm.EnableColor)

	f := &fixture{
		prompts: testutil.NewFakeHost(),
		out:     &bytes.Buffer{},
		errOut:  &bytes.Buffer{},
		opener:  &recordingOpener{},
	}
	f.host = New(f.prompts,
		WithOutput(f.out, f.errOut),
		WithOpener(f.opener),
		WithClipboard(func(s string) error {
			f.copied = append(f.copied, s)
			return nil
		}),
	)
	return f
}

func TestNotices(t *testing.T) {
	f := newFixture(t)
	f.host.Info("Aborted")
	f.host.Error("No templates found!")

	assert.Contains(t, f.out.String(), "Template Pig » Aborted")
	assert.Contains(t, f.errOut.String(), "Template Pig » No templates found!")
	assert.NotContains(t, f.out.String(), "No templates")
}

func TestLog(t *testing.T) {
	f := newFixture(t)
	f.host.Log("Component", "hello")
	assert.Equal(t, "[Component] hello\n", stripANSI(f.out.String()))
}

var report = types.ExceptionReport{
	TemplateName: "Component",
	Activity:     "calling executeAsync(…)",
	Location:     "/ws/.templates/component/.pig.js",
	Message:      "Error: boom",
	Stack:        "Error: boom\n\tat executeAsync (.pig.js:3:9)",
}

func TestException(t *testing.T) {
	t.Run("shows the failure and offers actions", func(t *testing.T) {
		f := newFixture(t)
		f.host.Exception(report)

		out := f.errOut.String()
		assert.Contains(t, out, "Component » Uncaught exception while calling executeAsync(…):")
		assert.Contains(t, out, "  Error: boom")
		assert.Contains(t, out, "at executeAsync (.pig.js:3:9)")

		require.Len(t, f.prompts.PickCalls, 1)
		items := f.prompts.PickCalls[0].Items
		require.Len(t, items, 2)
		assert.Equal(t, "Open file .pig.js", items[0].Label)
		assert.Equal(t, "Copy stack trace", items[1].Label)
		assert.Empty(t, f.opener.opened)
		assert.Empty(t, f.copied)
	})

	t.Run("open file", func(t *testing.T) {
		f := newFixture(t)
		f.prompts.QueuePick(0)
		f.host.Exception(report)
		assert.Equal(t, []string{report.Location}, f.opener.opened)
	})

	t.Run("copy stack trace", func(t *testing.T) {
		f := newFixture(t)
		f.prompts.QueuePick(1)
		f.host.Exception(report)
		assert.Equal(t, []string{report.Stack}, f.copied)
	})

	t.Run("no stack offers only the file", func(t *testing.T) {
		f := newFixture(t)
		r := report
		r.Stack = ""
		f.host.Exception(r)
		require.Len(t, f.prompts.PickCalls, 1)
		assert.Len(t, f.prompts.PickCalls[0].Items, 1)
	})

	t.Run("nothing to offer", func(t *testing.T) {
		f := newFixture(t)
		f.host.Exception(types.ExceptionReport{TemplateName: "T", Activity: "x", Message: "m"})
		assert.Empty(t, f.prompts.PickCalls)
	})
}

func stripANSI(s string) string {
	var b strings.Builder
	inEscape := false
	for _, r := range s {
		switch {
		case r == '\x1b':
			inEscape = true
		case inEscape && (r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'):
			inEscape = false
		case !inEscape:
			b.WriteRune(r)
		}
	}
	return b.String()
}
