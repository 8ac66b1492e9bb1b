// Package materialize writes the entries of a finished run to disk.
//
// Directory entries are created recursively. File entries get their parent
// folders created and are then created or have their whole content
// replaced, so materializing the same run twice gives the same tree. The
// writes run as a synthfs operation pipeline. After the last write the
// template decides, per file, whether the document is opened in the
// editor.
package materialize

import (
	"context"
	stderrors "errors"
	"fmt"
	"path/filepath"

	"github.com/arthur-debert/synthfs/pkg/synthfs"
	sfsfs "github.com/arthur-debert/synthfs/pkg/synthfs/filesystem"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/types"
)

const (
	dirPerm  = 0755
	filePerm = 0644
)

// DocumentPolicy decides whether a written file stays open in the editor
type DocumentPolicy interface {
	ShouldOpenDocument(ctx context.Context, entry types.SlimEntry) (bool, error)
}

// Materializer applies a run's entries to the workspace
type Materializer interface {
	Materialize(ctx context.Context, entries []*types.Entry, policy DocumentPolicy) (*Result, error)
}

// Result lists what a materialization did, or would do on a dry run
type Result struct {
	Directories []string `json:"directories,omitempty" yaml:"directories,omitempty"`
	Created     []string `json:"created,omitempty" yaml:"created,omitempty"`
	Replaced    []string `json:"replaced,omitempty" yaml:"replaced,omitempty"`
	Opened      []string `json:"opened,omitempty" yaml:"opened,omitempty"`
	DryRun      bool     `json:"dryRun" yaml:"dryRun"`
}

// Empty reports whether nothing was written
func (r *Result) Empty() bool {
	return len(r.Directories) == 0 && len(r.Created) == 0 && len(r.Replaced) == 0
}

// FSMaterializer writes entries through a types.FS
type FSMaterializer struct {
	fs            types.FS
	opener        Opener
	dryRun        bool
	openDocuments bool
	logger        zerolog.Logger

	// pipelineFS is handed to synthfs; the steps themselves write through fs
	pipelineFS sfsfs.FullFileSystem
}

// Option configures an FSMaterializer
type Option func(*FSMaterializer)

// WithOpener sets the opener used for documents the template keeps open
func WithOpener(opener Opener) Option {
	return func(m *FSMaterializer) { m.opener = opener }
}

// WithDryRun reports the plan without touching the filesystem
func WithDryRun(dryRun bool) Option {
	return func(m *FSMaterializer) { m.dryRun = dryRun }
}

// WithOpenDocuments turns opening documents on or off
func WithOpenDocuments(open bool) Option {
	return func(m *FSMaterializer) { m.openDocuments = open }
}

// New creates a materializer. Documents are opened by default, with a
// NopOpener until WithOpener says otherwise.
func New(fsys types.FS, opts ...Option) *FSMaterializer {
	m := &FSMaterializer{
		fs:            fsys,
		opener:        NopOpener{},
		openDocuments: true,
		logger:        logging.GetLogger("materialize"),
		pipelineFS:    synthfs.NewPathAwareFileSystem(sfsfs.NewOSFileSystem("/"), "/").WithAbsolutePaths(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Materialize writes entries in order. Skipped entries are ignored. The
// writes are planned first, so a destination problem found while planning
// fails the run before anything is touched. The plan then runs as one
// synthfs pipeline; a failing step stops it and the error is returned with
// what was done so far.
func (m *FSMaterializer) Materialize(ctx context.Context, entries []*types.Entry, policy DocumentPolicy) (*Result, error) {
	result := &Result{DryRun: m.dryRun}

	steps, err := m.plan(entries)
	if err != nil {
		return result, err
	}

	if m.dryRun {
		for _, st := range steps {
			m.logger.Debug().Str("path", st.target).Str("step", string(st.kind)).Msg("Dry run: would apply")
			st.record(result)
		}
	} else if err := m.run(ctx, steps, result); err != nil {
		return result, err
	}

	var written []*types.Entry
	for _, st := range steps {
		if st.kind != stepMkdir {
			written = append(written, st.entry)
		}
	}
	if m.openDocuments && policy != nil {
		result.Opened = m.documentsToOpen(ctx, written, policy)
		if len(result.Opened) > 0 && !m.dryRun {
			if err := m.opener.Open(ctx, result.Opened); err != nil {
				m.logger.Warn().Err(err).Strs("paths", result.Opened).Msg("Failed to open documents")
			}
		}
	}

	m.logger.Info().
		Int("directories", len(result.Directories)).
		Int("created", len(result.Created)).
		Int("replaced", len(result.Replaced)).
		Int("opened", len(result.Opened)).
		Bool("dryRun", m.dryRun).
		Msg("Materialized entries")
	return result, nil
}

type stepKind string

const (
	stepMkdir   stepKind = "mkdir"
	stepCreate  stepKind = "create"
	stepReplace stepKind = "replace"
)

// step is one planned write
type step struct {
	kind   stepKind
	target string
	entry  *types.Entry
}

func (st step) record(result *Result) {
	switch st.kind {
	case stepMkdir:
		result.Directories = append(result.Directories, st.target)
	case stepCreate:
		result.Created = append(result.Created, st.target)
	case stepReplace:
		result.Replaced = append(result.Replaced, st.target)
	}
	st.entry.State = types.StateMaterialized
}

// plan turns entries into steps. A file is a replace when it exists
// already or an earlier step of the same run writes it.
func (m *FSMaterializer) plan(entries []*types.Entry) ([]step, error) {
	var steps []step
	planned := map[string]bool{}

	for _, entry := range entries {
		if entry.Skipped() {
			continue
		}
		target := entry.AbsoluteDestination
		if target == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "entry %s has no destination", entry.SourcePath).
				WithDetail("source", entry.SourcePath)
		}

		if entry.IsDir() {
			steps = append(steps, step{kind: stepMkdir, target: target, entry: entry})
			continue
		}

		kind := stepCreate
		if planned[target] {
			kind = stepReplace
		} else if info, err := m.fs.Stat(target); err == nil {
			if info.IsDir() {
				return nil, errors.Newf(errors.ErrFileWrite, "cannot write %s: a directory is in the way", target).
					WithDetail("path", target)
			}
			kind = stepReplace
		}
		planned[target] = true
		steps = append(steps, step{kind: kind, target: target, entry: entry})
	}
	return steps, nil
}

// run executes the plan. Each step writes through the materializer's
// filesystem and records itself once done.
func (m *FSMaterializer) run(ctx context.Context, steps []step, result *Result) error {
	if len(steps) == 0 {
		return nil
	}

	sfs := synthfs.New()
	ops := make([]synthfs.Operation, 0, len(steps))
	for i, st := range steps {
		id := fmt.Sprintf("%s_%03d_%s", st.kind, i, filepath.Base(st.target))
		ops = append(ops, sfs.CustomOperationWithID(id, func(ctx context.Context, _ sfsfs.FileSystem) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := m.apply(st); err != nil {
				return err
			}
			st.record(result)
			return nil
		}))
	}

	m.logger.Debug().Int("operationCount", len(ops)).Msg("Executing synthfs operations")
	if _, err := synthfs.RunWithOptions(ctx, m.pipelineFS, synthfs.DefaultPipelineOptions(), ops...); err != nil {
		var pe *errors.PigError
		if stderrors.As(err, &pe) {
			return pe
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return errors.Wrap(err, errors.ErrFileWrite, "failed to apply template output")
	}
	return nil
}

func (m *FSMaterializer) apply(st step) error {
	if st.kind == stepMkdir {
		return m.mkdir(st.target)
	}
	if err := m.mkdir(filepath.Dir(st.target)); err != nil {
		return err
	}
	if err := m.fs.WriteFile(st.target, []byte(st.entry.Rendered), filePerm); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", st.target).
			WithDetail("path", st.target)
	}
	return nil
}

func (m *FSMaterializer) mkdir(path string) error {
	if err := m.fs.MkdirAll(path, dirPerm); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create directory %s", path).
			WithDetail("path", path)
	}
	return nil
}

// documentsToOpen asks the policy about every written file. A policy that
// throws leaves the document open.
func (m *FSMaterializer) documentsToOpen(ctx context.Context, written []*types.Entry, policy DocumentPolicy) []string {
	var open []string
	for _, entry := range written {
		keep, err := policy.ShouldOpenDocument(ctx, entry.Slim())
		if err != nil {
			m.logger.Warn().Err(err).Str("source", entry.SourcePath).Msg("shouldOpenDocument failed, opening anyway")
			keep = true
		}
		if keep {
			open = append(open, entry.AbsoluteDestination)
		}
	}
	return open
}
