package materialize

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
)

// Opener shows written documents to the user
type Opener interface {
	Open(ctx context.Context, paths []string) error
}

// NopOpener opens nothing
type NopOpener struct{}

func (NopOpener) Open(context.Context, []string) error { return nil }

// EditorOpener launches an editor command with the documents as arguments.
// The command may carry its own arguments, e.g. "code --wait".
type EditorOpener struct {
	Command string
}

// NewEditorOpener creates an opener for command. An empty command opens
// nothing.
func NewEditorOpener(command string) *EditorOpener {
	return &EditorOpener{Command: command}
}

func (o *EditorOpener) Open(ctx context.Context, paths []string) error {
	logger := logging.GetLogger("materialize.opener")

	fields := strings.Fields(o.Command)
	if len(fields) == 0 || len(paths) == 0 {
		logger.Debug().Msg("No editor configured, not opening documents")
		return nil
	}

	args := append(fields[1:len(fields):len(fields)], paths...)
	logger.Info().Str("editor", fields[0]).Strs("paths", paths).Msg("Opening documents")

	cmd := exec.CommandContext(ctx, fields[0], args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "editor %s failed", fields[0]).
			WithDetail("editor", o.Command)
	}
	return nil
}
