package pipeline

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/templatepig/pkg/config"
	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/filesystem"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/materialize"
	"github.com/arthur-debert/templatepig/pkg/render"
	"github.com/arthur-debert/templatepig/pkg/session"
	"github.com/arthur-debert/templatepig/pkg/templates"
	"github.com/arthur-debert/templatepig/pkg/types"
	"github.com/arthur-debert/templatepig/pkg/walker"
)

// CurrentSentinel as the invocation target means "the folder holding the
// active file"
const CurrentSentinel = "__current"

// Invocation is how a run was requested
type Invocation struct {
	// Target is a location relative to the workspace root (absolute paths
	// are taken as-is), CurrentSentinel, or "" to ask the user.
	Target string
	// ActiveFile backs CurrentSentinel
	ActiveFile string
}

// Outcome is the terminal state of a run
type Outcome string

const (
	OutcomeDone          Outcome = "done"
	OutcomeAborted       Outcome = "aborted"
	OutcomeErrorReported Outcome = "error-reported"
)

// Report is everything a run produced
type Report struct {
	Outcome  Outcome
	Template *templates.Template
	Paths    types.Paths
	// Entries are all walked entries with their final state
	Entries []*types.Entry
	Result  *materialize.Result
	// Err is set when the run ended on an error; reported script failures
	// and environment outcomes were already shown to the user.
	Err error
}

// Options configures an Orchestrator
type Options struct {
	// Workspace is the workspace root; "" means none was found
	Workspace  string
	Config     *config.Config
	FileSystem types.FS
	Host       types.Host
	// Session is the last-run cache; nil gives each Orchestrator its own
	Session      *session.Session
	Materializer materialize.Materializer
}

// Orchestrator runs the pipeline
type Orchestrator struct {
	workspace    string
	config       *config.Config
	fs           types.FS
	host         types.Host
	session      *session.Session
	registry     *templates.Registry
	materializer materialize.Materializer
	logger       zerolog.Logger
}

// New creates an orchestrator
func New(opts Options) *Orchestrator {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	sess := opts.Session
	if sess == nil {
		sess = session.New()
	}
	mat := opts.Materializer
	if mat == nil {
		mat = materialize.New(opts.FileSystem)
	}
	return &Orchestrator{
		workspace:    opts.Workspace,
		config:       cfg,
		fs:           opts.FileSystem,
		host:         opts.Host,
		session:      sess,
		registry:     templates.NewRegistry(opts.FileSystem, opts.Host),
		materializer: mat,
		logger:       logging.GetLogger("pipeline"),
	}
}

// Session returns the last-run cache this orchestrator reads and writes
func (o *Orchestrator) Session() *session.Session {
	return o.session
}

// Run executes one invocation and returns its terminal state
func (o *Orchestrator) Run(ctx context.Context, inv Invocation) Outcome {
	return o.Execute(ctx, inv).Outcome
}

// Execute runs one invocation and reports what happened. Nothing escapes:
// panics and unexpected errors are logged and end the run.
func (o *Orchestrator) Execute(ctx context.Context, inv Invocation) (report *Report) {
	report = &Report{Outcome: OutcomeDone}
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error().Interface("panic", r).Msg("Uncaught templatepig exception")
			report.Outcome = OutcomeErrorReported
			report.Err = errors.Newf(errors.ErrInternal, "uncaught exception: %v", r)
		}
	}()

	o.logger.Debug().
		Str("target", inv.Target).
		Str("activeFile", inv.ActiveFile).
		Str("workspace", o.workspace).
		Msg("Running template pipeline")

	err := o.run(ctx, inv, report)
	if err == nil {
		return report
	}
	report.Err = err

	switch {
	case errors.IsErrorCode(err, errors.ErrNoWorkspace):
		o.host.Error(MsgNoWorkspace)
		report.Outcome = OutcomeErrorReported
	case errors.IsErrorCode(err, errors.ErrNoTemplates):
		o.host.Error(MsgNoTemplates)
		report.Outcome = OutcomeErrorReported
	case errors.IsErrorCode(err, errors.ErrNoSelection):
		o.host.Info(MsgNoSelection)
		report.Outcome = OutcomeAborted
	case errors.IsErrorCode(err, errors.ErrAborted):
		o.host.Info(MsgAborted)
		report.Outcome = OutcomeAborted
	case isReported(err):
		report.Outcome = OutcomeErrorReported
	default:
		o.logger.Error().Err(err).Msg("Uncaught templatepig exception")
		report.Outcome = OutcomeErrorReported
	}
	return report
}

func (o *Orchestrator) run(ctx context.Context, inv Invocation, report *Report) error {
	// 1. locations
	paths, err := o.resolvePaths(ctx, inv)
	if err != nil {
		return err
	}
	report.Paths = paths

	// 2. templates
	found, err := o.discover(ctx)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return errors.New(errors.ErrNoTemplates, "no templates found")
	}

	// 3. selection
	tmpl, err := o.selectTemplate(ctx, found)
	if err != nil {
		return err
	}
	report.Template = tmpl
	logger := o.logger.With().Str("template", tmpl.DisplayName()).Logger()

	// 4. answers
	answers, err := o.answers(ctx, tmpl, paths)
	if err != nil {
		return err
	}

	// 5. cache, then transform
	o.session.Remember(tmpl, answers)
	transformed, err := tmpl.Transform(ctx, answers)
	if err != nil {
		return o.reported(tmpl, templates.ActivityTransform, tmpl.ScriptPath, err)
	}
	logger.Debug().Str("answers", transformed.String()).Msg("Answers ready")

	// 6. destinations
	binding, err := tmpl.Bind(transformed, paths)
	if err != nil {
		return err
	}
	entries, err := o.resolveEntries(ctx, tmpl, binding, paths)
	report.Entries = entries
	if err != nil {
		return err
	}

	// 7. render
	if err := o.renderEntries(ctx, tmpl, entries, transformed); err != nil {
		return err
	}

	// 8. materialize
	var kept []*types.Entry
	for _, entry := range entries {
		if !entry.Skipped() {
			kept = append(kept, entry)
		}
	}
	result, err := o.materializer.Materialize(ctx, kept, binding)
	report.Result = result
	if err != nil {
		return err
	}
	logger.Info().Int("entries", len(kept)).Msg("Template applied")
	return nil
}

// resolvePaths works out the workspace and target roots
func (o *Orchestrator) resolvePaths(ctx context.Context, inv Invocation) (types.Paths, error) {
	if o.workspace == "" {
		return types.Paths{}, errors.New(errors.ErrNoWorkspace, "no workspace")
	}
	workspace := filepath.Clean(o.workspace)
	paths := types.Paths{WorkspaceRoot: workspace}

	switch {
	case inv.Target == CurrentSentinel:
		if inv.ActiveFile == "" {
			o.host.Error(MsgNoActiveFile)
			return paths, reportedError{errors.New(errors.ErrInvalidInput, "no active file")}
		}
		active := inv.ActiveFile
		if !filepath.IsAbs(active) {
			active = filepath.Join(workspace, active)
		}
		paths.TargetRoot = filepath.Dir(active)

	case inv.Target != "":
		paths.TargetRoot = joinTarget(workspace, inv.Target)

	default:
		target, ok, err := o.host.InputBox(ctx, types.InputBoxOptions{PlaceHolder: MsgTargetPrompt})
		if err != nil {
			return paths, errors.Wrap(err, errors.ErrPrompt, "failed to ask for the target")
		}
		if !ok {
			return paths, errors.New(errors.ErrAborted, "target prompt dismissed")
		}
		paths.TargetRoot = joinTarget(workspace, target)
	}

	o.logger.Debug().Str("workspace", paths.WorkspaceRoot).Str("target", paths.TargetRoot).Msg("Resolved locations")
	return paths, nil
}

func joinTarget(workspace, target string) string {
	if filepath.IsAbs(target) {
		return filepath.Clean(target)
	}
	return filepath.Join(workspace, target)
}

// discover queries the local and global roots that exist
func (o *Orchestrator) discover(ctx context.Context) ([]*templates.Template, error) {
	var roots []string
	for _, root := range o.config.TemplateRoots(o.workspace) {
		if filesystem.IsExistingDirectory(o.fs, root) {
			roots = append(roots, root)
			continue
		}
		o.logger.Debug().Str("root", root).Msg("Templates root does not exist")
	}
	return o.registry.DiscoverAll(ctx, roots)
}

// selectTemplate picks a template, offering the rerun choice first when the
// session remembers one. The remembered template is reloaded before it is
// offered.
func (o *Orchestrator) selectTemplate(ctx context.Context, found []*templates.Template) (*templates.Template, error) {
	last, _, hasLast := o.session.Last()
	if len(found) == 1 && !hasLast {
		return found[0], nil
	}

	var (
		items   []types.QuickPickItem
		choices []*templates.Template
	)
	if hasLast {
		if err := last.Reload(ctx); err != nil {
			templates.Report(o.host, last.DisplayName(), templates.ActivityLoad, last.ScriptPath, err)
		} else {
			items = append(items, types.QuickPickItem{
				Label:  fmt.Sprintf(MsgRerunLabelFormat, last.DisplayName()),
				Detail: MsgRerunDetail,
			})
			choices = append(choices, last)
		}
	}
	for _, t := range found {
		items = append(items, types.QuickPickItem{
			Label:       t.DisplayName(),
			Detail:      t.Detail(),
			Description: t.Description(),
		})
		choices = append(choices, t)
	}

	picked, ok, err := o.host.QuickPick(ctx, items, types.QuickPickOptions{
		Title:       MsgPickTitle,
		PlaceHolder: MsgPickPlaceHolder,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrPrompt, "failed to pick a template")
	}
	if !ok || len(picked) == 0 || picked[0] < 0 || picked[0] >= len(choices) {
		return nil, errors.New(errors.ErrNoSelection, "no template selected")
	}
	return choices[picked[0]], nil
}

// answers reuses the session's answers for the remembered template and
// asks the template otherwise
func (o *Orchestrator) answers(ctx context.Context, tmpl *templates.Template, paths types.Paths) (types.Answers, error) {
	if o.session.IsLast(tmpl) {
		_, cached, _ := o.session.Last()
		o.logger.Debug().Str("template", tmpl.DisplayName()).Msg("Reusing answers from the last run")
		return cached, nil
	}

	answers, ok, err := tmpl.Execute(ctx, paths)
	if err != nil {
		return nil, o.reported(tmpl, templates.ActivityExecute, tmpl.ScriptPath, err)
	}
	if !ok {
		return nil, errors.New(errors.ErrAborted, "setup returned no answers")
	}
	return answers, nil
}

// resolveEntries walks the template and fixes each entry's destination or
// skip state. It stops at the first failure.
func (o *Orchestrator) resolveEntries(ctx context.Context, tmpl *templates.Template, binding *templates.Binding, paths types.Paths) ([]*types.Entry, error) {
	var entries []*types.Entry
	for entry, err := range walker.Walk(o.fs, tmpl.Path) {
		if err != nil {
			return entries, err
		}
		entries = append(entries, entry)

		destination, ok, err := binding.DestinationPath(ctx, entry.Slim())
		if err != nil {
			return entries, o.reported(tmpl, templates.ActivityDestination(entry.SourcePath), tmpl.ScriptPath, err)
		}
		if !ok {
			entry.State = types.StateSkipped
			o.logger.Trace().Str("source", entry.SourcePath).Msg("Entry skipped")
			continue
		}
		entry.DestinationPath = destination
		entry.AbsoluteDestination = paths.Resolve(destination)
		entry.State = types.StateResolved
	}
	return entries, nil
}

// renderEntries renders every kept file, each in a fresh sandbox
func (o *Orchestrator) renderEntries(ctx context.Context, tmpl *templates.Template, entries []*types.Entry, answers types.Answers) error {
	defer logging.LogOperationStart(o.logger, "render")()
	for _, entry := range entries {
		if entry.Skipped() || entry.IsDir() {
			continue
		}
		content, err := entry.Content()
		if err != nil {
			return err
		}
		rendered, err := render.Render(ctx, tmpl.Factory(), entry.SourcePath, content, answers)
		if err != nil {
			return o.reported(tmpl, templates.ActivityRender(entry.SourcePath), entry.Location, err)
		}
		entry.Rendered = rendered
		entry.State = types.StateRendered
	}
	return nil
}

// reported shows a failure in author code and marks it as handled
func (o *Orchestrator) reported(tmpl *templates.Template, activity, location string, err error) error {
	templates.Report(o.host, tmpl.DisplayName(), activity, location, err)
	return reportedError{err}
}

// reportedError wraps a failure the user has already been shown
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

func isReported(err error) bool {
	_, ok := err.(reportedError)
	return ok
}
