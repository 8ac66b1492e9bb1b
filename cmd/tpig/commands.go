package tpig

import (
	"embed"
	stderrors "errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/templatepig/internal/version"
	"github.com/arthur-debert/templatepig/pkg/cobrax/topics"
	"github.com/arthur-debert/templatepig/pkg/config"
	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/filesystem"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/materialize"
	"github.com/arthur-debert/templatepig/pkg/pipeline"
	"github.com/arthur-debert/templatepig/pkg/sandbox"
	"github.com/arthur-debert/templatepig/pkg/templates"
	"github.com/arthur-debert/templatepig/pkg/types"
	"github.com/arthur-debert/templatepig/pkg/ui"
	"github.com/arthur-debert/templatepig/pkg/ui/display"
	"github.com/arthur-debert/templatepig/pkg/walker"
)

var (
	//go:embed topics/*.md
	topicFiles embed.FS

	//go:embed starter/pig.js
	starterScript string

	//go:embed starter/example.md
	starterExample string
)

// ErrRunFailed is returned when a run ended on an error the user was
// already shown
var ErrRunFailed = stderrors.New(MsgErrRun)

type globalOptions struct {
	verbosity int
	dryRun    bool
	workspace string
	templates string
	output    string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithEnv(DefaultEnv())
}

// NewRootCmdWithEnv creates the root command bound to env
func NewRootCmdWithEnv(env *Env) *cobra.Command {
	initTemplateFormatting()
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:     "tpig",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(opts.verbosity)
			format, err := ui.ParseFormat(opts.output)
			if err != nil {
				return err
			}
			configureColor(format)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return fmt.Errorf("no command specified")
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.SetOut(env.Out)
	rootCmd.SetErr(env.Err)

	rootCmd.PersistentFlags().CountVarP(&opts.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&opts.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVarP(&opts.workspace, "workspace", "w", "", MsgFlagWorkspace)
	rootCmd.PersistentFlags().StringVarP(&opts.templates, "templates-path", "t", "", MsgFlagTemplates)
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "auto", MsgFlagOutput)

	rootCmd.AddGroup(&cobra.Group{ID: "core", Title: "COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newUseCmd(env, opts))
	rootCmd.AddCommand(newSessionCmd(env, opts))
	rootCmd.AddCommand(newListCmd(env, opts))
	rootCmd.AddCommand(newNewCmd(env, opts))
	rootCmd.AddCommand(newConfigCmd(env, opts))
	rootCmd.AddCommand(newVersionCmd())

	if sub, err := fs.Sub(topicFiles, "topics"); err == nil {
		if err := topics.InitializeWithOptions(rootCmd, sub, topics.Options{
			Extensions: []string{".md"},
			Renderer:   topics.NewGlamourRenderer(),
		}); err != nil {
			log.Debug().Err(err).Msg("Help topics unavailable")
		}
	}

	return rootCmd
}

// app is everything a command needs once flags are parsed
type app struct {
	env       *Env
	opts      *globalOptions
	cfg       *config.Config
	workspace string
	format    ui.Format
}

func (o *globalOptions) app(env *Env) (*app, error) {
	cwd, err := env.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to get the working directory")
	}
	// markers may come from the user config or the environment
	overrides := map[string]interface{}{"templates_path": o.templates}
	base, err := config.LoadWithOverrides("", overrides)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	workspace := resolveWorkspace(env.FS, o.workspace, cwd, base.WorkspaceMarkers)
	cfg, err := config.LoadWithOverrides(workspace, overrides)
	if err != nil {
		return nil, fmt.Errorf(MsgErrLoadConfig, err)
	}
	format, err := ui.ParseFormat(o.output)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("workspace", workspace).
		Strs("roots", cfg.TemplateRoots(workspace)).
		Msg("Workspace resolved")
	return &app{env: env, opts: o, cfg: cfg, workspace: workspace, format: format}, nil
}

func (a *app) renderer() (ui.Renderer, error) {
	return ui.NewRenderer(a.format, a.env.Out)
}

func (a *app) structured() bool {
	return a.format == ui.FormatJSON || a.format == ui.FormatYAML
}

func (a *app) orchestrator(h types.Host, openDocuments bool) *pipeline.Orchestrator {
	mat := materialize.New(a.env.FS,
		materialize.WithDryRun(a.opts.dryRun),
		materialize.WithOpenDocuments(openDocuments && a.cfg.OpenDocuments),
		materialize.WithOpener(materialize.NewEditorOpener(a.cfg.EditorCommand())),
	)
	return pipeline.New(pipeline.Options{
		Workspace:    a.workspace,
		Config:       a.cfg,
		FileSystem:   a.env.FS,
		Host:         h,
		Session:      a.env.Session,
		Materializer: mat,
	})
}

// finish shows a run's outcome. Errors were already reported by the host,
// so rich output only summarises successful runs.
func (a *app) finish(report *pipeline.Report) error {
	renderer, err := a.renderer()
	if err != nil {
		return err
	}
	if a.structured() || report.Outcome == pipeline.OutcomeDone {
		if err := renderer.RenderResult(display.NewRunSummary(report)); err != nil {
			return err
		}
	}
	if report.Outcome == pipeline.OutcomeDone && a.opts.dryRun && !a.structured() {
		if err := renderer.RenderMessage(MsgDryRunNotice); err != nil {
			return err
		}
	}
	if report.Outcome == pipeline.OutcomeErrorReported {
		return ErrRunFailed
	}
	return nil
}

func invocation(env *Env, args []string, activeFile string) pipeline.Invocation {
	inv := pipeline.Invocation{ActiveFile: activeFile}
	if inv.ActiveFile == "" {
		inv.ActiveFile = env.Getenv(EnvActiveFile)
	}
	if len(args) > 0 {
		inv.Target = args[0]
	}
	return inv
}

func newUseCmd(env *Env, opts *globalOptions) *cobra.Command {
	var (
		activeFile string
		noOpen     bool
	)
	cmd := &cobra.Command{
		Use:     "use [target]",
		Short:   MsgUseShort,
		Long:    MsgUseLong,
		Example: MsgUseExample,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(env)
			if err != nil {
				return err
			}
			report := a.orchestrator(env.host(a.cfg), !noOpen).Execute(cmd.Context(), invocation(env, args, activeFile))
			return a.finish(report)
		},
	}
	cmd.Flags().StringVar(&activeFile, "active-file", "", MsgFlagActiveFile)
	cmd.Flags().BoolVar(&noOpen, "no-open", false, MsgFlagNoOpen)
	return cmd
}

func newSessionCmd(env *Env, opts *globalOptions) *cobra.Command {
	var activeFile string
	cmd := &cobra.Command{
		Use:     "session [target]",
		Short:   MsgSessionShort,
		Long:    MsgSessionLong,
		GroupID: "core",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(env)
			if err != nil {
				return err
			}
			h := env.host(a.cfg)
			orch := a.orchestrator(h, true)
			for {
				report := orch.Execute(cmd.Context(), invocation(env, args, activeFile))
				if err := a.finish(report); err != nil && !stderrors.Is(err, ErrRunFailed) {
					return err
				}
				picked, ok, err := h.QuickPick(cmd.Context(),
					[]types.QuickPickItem{{Label: "Yes"}, {Label: "No"}},
					types.QuickPickOptions{Title: MsgSessionAgain})
				if err != nil {
					return err
				}
				if !ok || len(picked) == 0 || picked[0] != 0 {
					return nil
				}
			}
		},
	}
	cmd.Flags().StringVar(&activeFile, "active-file", "", MsgFlagActiveFile)
	return cmd
}

func newListCmd(env *Env, opts *globalOptions) *cobra.Command {
	var long bool
	cmd := &cobra.Command{
		Use:     "list",
		Short:   MsgListShort,
		Long:    MsgListLong,
		Example: MsgListExample,
		GroupID: "core",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(env)
			if err != nil {
				return err
			}
			var roots []string
			for _, root := range a.cfg.TemplateRoots(a.workspace) {
				if filesystem.IsExistingDirectory(env.FS, root) {
					roots = append(roots, root)
				}
			}
			found, err := templates.NewRegistry(env.FS, env.host(a.cfg)).DiscoverAll(cmd.Context(), roots)
			if err != nil {
				return err
			}

			list := &display.TemplateList{Workspace: a.workspace, Roots: roots, Long: long}
			for _, t := range found {
				list.Templates = append(list.Templates, t.Info())
			}
			renderer, err := a.renderer()
			if err != nil {
				return err
			}
			return renderer.RenderResult(list)
		},
	}
	cmd.Flags().BoolVarP(&long, "long", "l", false, MsgFlagLong)
	return cmd
}

func newNewCmd(env *Env, opts *globalOptions) *cobra.Command {
	var global bool
	cmd := &cobra.Command{
		Use:     "new <name>",
		Short:   MsgNewShort,
		Long:    MsgNewLong,
		GroupID: "core",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(env)
			if err != nil {
				return err
			}
			root := a.cfg.LocalTemplatesRoot(a.workspace)
			if global {
				root = a.cfg.GlobalTemplatesRoot()
				if root == "" {
					return errors.New(errors.ErrInvalidInput, MsgNoGlobalTemplates)
				}
			}
			dir, err := createTemplate(env.FS, root, args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(env.Out, MsgTemplateCreated, args[0], dir)
			return err
		},
	}
	cmd.Flags().BoolVarP(&global, "global", "g", false, MsgFlagGlobal)
	return cmd
}

// createTemplate writes a starter template folder named name under root
func createTemplate(fsys types.FS, root, name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", errors.Newf(errors.ErrInvalidInput, "invalid template name %q", name)
	}
	dir := filepath.Join(root, name)
	if _, err := fsys.Stat(dir); err == nil {
		return "", errors.Newf(errors.ErrInvalidInput, MsgTemplateExists, name, root)
	}
	if err := fsys.MkdirAll(dir, 0755); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", dir)
	}

	title := sandbox.SentenceCase(name)
	files := map[string]string{
		walker.SetupScriptName: strings.ReplaceAll(starterScript, "{{NAME}}", title),
		"__name__.md":          strings.ReplaceAll(starterExample, "{{NAME}}", title),
	}
	for file, content := range files {
		path := filepath.Join(dir, file)
		if err := fsys.WriteFile(path, []byte(content), 0644); err != nil {
			return "", errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", path)
		}
	}
	return dir, nil
}

func newConfigCmd(env *Env, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.app(env)
			if err != nil {
				return err
			}
			content, err := a.cfg.ToTOML()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(env.Out, content)
			return err
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), MsgVersionFormat, version.Version, version.Commit, version.Date)
		},
	}
}
