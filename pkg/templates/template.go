package templates

import (
	"context"
	"path/filepath"

	"github.com/dop251/goja"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/sandbox"
	"github.com/arthur-debert/templatepig/pkg/types"
	"github.com/arthur-debert/templatepig/pkg/walker"
)

// MetadataKey is the global holding template metadata and extension points
const MetadataKey = "pig"

const defaultPigSource = `(function (name) {
	return {
		name: name,
		detail: null,
		description: null,
		executeAsync: async function (paths) { return {} },
		getDestinationPath: function (entry, context, paths) { return entry.sourcePath },
		transformContext: function (context) { return context },
		shouldOpenDocument: function (entry, context, paths) { return true },
	}
})`

// Template is one discovered template folder with its loaded setup sandbox
type Template struct {
	// Name is the folder name
	Name string
	// Path is the template folder
	Path string
	// ScriptPath is where the setup script lives, whether or not it exists
	ScriptPath string
	// Root is the templates root the folder was found under
	Root string

	fs      types.FS
	host    types.Host
	factory *sandbox.Factory
	sb      *sandbox.Sandbox
	pig     *goja.Object
}

func newTemplate(fsys types.FS, host types.Host, root, name string) *Template {
	path := filepath.Join(root, name)
	return &Template{
		Name:       name,
		Path:       path,
		ScriptPath: filepath.Join(path, walker.SetupScriptName),
		Root:       root,
		fs:         fsys,
		host:       host,
	}
}

// load builds a fresh template sandbox and runs the setup script in it.
// The template's previous sandbox is kept when loading fails.
func (t *Template) load(ctx context.Context) error {
	logger := logging.GetLogger("templates.load").With().Str("template", t.Name).Logger()

	factory := sandbox.NewFactory(t.fs, t.host, sandbox.SentenceCase(t.Name))
	sb, err := factory.CreateContext(sandbox.Bindings{
		MetadataKey: sandbox.Binder(func(rt *goja.Runtime) (goja.Value, error) {
			build, err := rt.RunString(defaultPigSource)
			if err != nil {
				return nil, err
			}
			fn, _ := goja.AssertFunction(build)
			return fn(goja.Undefined(), rt.ToValue(sandbox.SentenceCase(t.Name)))
		}),
	})
	if err != nil {
		return err
	}
	sb.ShareRules()

	script, err := t.readScript()
	if err != nil {
		return err
	}
	if script != "" {
		if _, err := sb.RunScript(ctx, t.ScriptPath, script); err != nil {
			return errors.Wrapf(err, errors.ErrTemplateDiscovery, "failed to load template %s", t.Name).
				WithDetail("template", t.Name).
				WithDetail("path", t.ScriptPath)
		}
		logger.Debug().Str("script", t.ScriptPath).Msg("Ran setup script")
	}

	pig, ok := sb.Get(MetadataKey).(*goja.Object)
	if !ok {
		return errors.Newf(errors.ErrTemplateDiscovery, "template %s replaced pig with a non-object", t.Name).
			WithDetail("template", t.Name).
			WithDetail("path", t.ScriptPath)
	}

	t.factory, t.sb, t.pig = factory, sb, pig
	factory.SetChannel(t.DisplayName())
	return nil
}

// readScript returns the setup script, or "" when there is none
func (t *Template) readScript() (string, error) {
	info, err := t.fs.Stat(t.ScriptPath)
	if err != nil || info.IsDir() {
		return "", nil
	}
	data, err := t.fs.ReadFile(t.ScriptPath)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileAccess, "failed to read %s", t.ScriptPath).
			WithDetail("path", t.ScriptPath)
	}
	return string(data), nil
}

// Reload rebuilds the template sandbox from the current setup script
func (t *Template) Reload(ctx context.Context) error {
	return t.load(ctx)
}

// Factory creates render sandboxes sharing this template's helper setup
func (t *Template) Factory() *sandbox.Factory {
	return t.factory
}

// HasScript reports whether the template folder holds a setup script
func (t *Template) HasScript() bool {
	info, err := t.fs.Stat(t.ScriptPath)
	return err == nil && !info.IsDir()
}

// DisplayName is pig.name, falling back to the sentence-cased folder name
func (t *Template) DisplayName() string {
	if name := t.metaString("name"); name != "" {
		return name
	}
	return sandbox.SentenceCase(t.Name)
}

// Detail is pig.detail, or ""
func (t *Template) Detail() string {
	return t.metaString("detail")
}

// Description is pig.description, or ""
func (t *Template) Description() string {
	return t.metaString("description")
}

func (t *Template) metaString(key string) string {
	if t.pig == nil {
		return ""
	}
	v := t.pig.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}

// member returns pig[name] when it is callable
func (t *Template) member(name string) bool {
	if t.pig == nil {
		return false
	}
	_, ok := goja.AssertFunction(t.pig.Get(name))
	return ok
}

// Execute runs pig.executeAsync(paths). ok is false when the result is
// falsy, meaning the user backed out. Templates written for the older
// synchronous API may define pig.execute instead.
func (t *Template) Execute(ctx context.Context, paths types.Paths) (answers types.Answers, ok bool, err error) {
	method := "executeAsync"
	if !t.member(method) && t.member("execute") {
		method = "execute"
	}
	if !t.member(method) {
		return types.Answers("{}"), true, nil
	}

	v, err := t.sb.CallMethod(ctx, t.pig, method, t.pathsValue(paths))
	if err != nil {
		return nil, false, t.wrap(err, errors.ErrTemplateSetup, ActivityExecute, "")
	}
	if !sandbox.Truthy(v) {
		return nil, false, nil
	}
	answers, err = t.sb.Export(v)
	if err != nil {
		return nil, false, t.wrap(err, errors.ErrTemplateSetup, ActivityExecute, "")
	}
	return answers, true, nil
}

// Transform runs pig.transformContext on a copy of answers
func (t *Template) Transform(ctx context.Context, answers types.Answers) (types.Answers, error) {
	if !t.member("transformContext") {
		return answers.Clone(), nil
	}
	value, err := t.sb.Import(answers)
	if err != nil {
		return nil, err
	}
	v, err := t.sb.CallMethod(ctx, t.pig, "transformContext", value)
	if err != nil {
		return nil, t.wrap(err, errors.ErrTemplateSetup, ActivityTransform, "")
	}
	out, err := t.sb.Export(v)
	if err != nil {
		return nil, t.wrap(err, errors.ErrTemplateSetup, ActivityTransform, "")
	}
	return out, nil
}

// Bind prepares the per-entry extension points for one run. The answers
// are loaded into the template sandbox once and shared by every call, as
// is the frozen paths object.
func (t *Template) Bind(answers types.Answers, paths types.Paths) (*Binding, error) {
	value, err := t.sb.Import(answers)
	if err != nil {
		return nil, err
	}
	return &Binding{template: t, answers: value, paths: t.pathsValue(paths)}, nil
}

func (t *Template) wrap(err error, code errors.ErrorCode, activity, source string) error {
	wrapped := errors.Wrapf(err, code, "%s %s", t.DisplayName(), activity).
		WithDetail("template", t.DisplayName()).
		WithDetail("activity", activity).
		WithDetail("path", t.ScriptPath)
	if source != "" {
		wrapped = wrapped.WithDetail("source", source)
	}
	return wrapped
}

// pathsValue exposes the paths bundle. The *Uri aliases are {fsPath, path}
// objects so scripts written against editor URIs keep working.
func (t *Template) pathsValue(paths types.Paths) goja.Value {
	rt := t.sb.Runtime()
	uri := func(p string) *goja.Object {
		obj := rt.NewObject()
		_ = obj.Set("fsPath", p)
		_ = obj.Set("path", filepath.ToSlash(p))
		_ = obj.Set("toString", func(goja.FunctionCall) goja.Value { return rt.ToValue(p) })
		return t.sb.Freeze(obj)
	}
	obj := rt.NewObject()
	_ = obj.Set("workspaceRoot", paths.WorkspaceRoot)
	_ = obj.Set("targetRoot", paths.TargetRoot)
	_ = obj.Set("workspaceUri", uri(paths.WorkspaceRoot))
	_ = obj.Set("targetUri", uri(paths.TargetRoot))
	return t.sb.Freeze(obj)
}

// Info is the serialisable description of a template
type Info struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Detail      string `json:"detail,omitempty" yaml:"detail,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Path        string `json:"path" yaml:"path"`
	Root        string `json:"root" yaml:"root"`
	HasScript   bool   `json:"hasScript" yaml:"hasScript"`
}

// Info describes the template
func (t *Template) Info() Info {
	return Info{
		Name:        t.Name,
		DisplayName: t.DisplayName(),
		Detail:      t.Detail(),
		Description: t.Description(),
		Path:        t.Path,
		Root:        t.Root,
		HasScript:   t.HasScript(),
	}
}
