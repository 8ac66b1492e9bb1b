package tpig

import (
	"io"
	"os"

	"github.com/arthur-debert/templatepig/pkg/config"
	"github.com/arthur-debert/templatepig/pkg/filesystem"
	"github.com/arthur-debert/templatepig/pkg/materialize"
	"github.com/arthur-debert/templatepig/pkg/session"
	"github.com/arthur-debert/templatepig/pkg/types"
	"github.com/arthur-debert/templatepig/pkg/ui/host"
	"github.com/arthur-debert/templatepig/pkg/ui/prompt"
)

// Env is the outside world the commands run against
type Env struct {
	FS     types.FS
	Out    io.Writer
	Err    io.Writer
	Getwd  func() (string, error)
	Getenv func(string) string
	// NewHost builds the host for a run; nil uses the terminal
	NewHost func(cfg *config.Config, out, errOut io.Writer) types.Host
	// Session is shared by every run of the process
	Session *session.Session
}

// DefaultEnv is the process environment
func DefaultEnv() *Env {
	return &Env{
		FS:      filesystem.NewOS(),
		Out:     os.Stdout,
		Err:     os.Stderr,
		Getwd:   os.Getwd,
		Getenv:  os.Getenv,
		Session: session.New(),
	}
}

func (e *Env) host(cfg *config.Config) types.Host {
	if e.NewHost != nil {
		return e.NewHost(cfg, e.Out, e.Err)
	}
	return host.New(prompt.NewHuhPrompter(),
		host.WithOutput(e.Out, e.Err),
		host.WithOpener(materialize.NewEditorOpener(cfg.EditorCommand())),
	)
}
