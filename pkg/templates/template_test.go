package templates

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/testutil"
	"github.com/arthur-debert/templatepig/pkg/types"
)

var testPaths = types.Paths{WorkspaceRoot: "/ws", TargetRoot: "/ws/app"}

func loadOne(t *testing.T, script string, host *testutil.FakeHost) *Template {
	t.Helper()
	fsys := testutil.NewTestFS()
	tree := map[string]string{"/tpl/demo/file.txt": "x"}
	if script != "" {
		tree["/tpl/demo/.pig.js"] = script
	}
	testutil.WriteTree(t, fsys, "/", tree)
	if host == nil {
		host = testutil.NewFakeHost()
	}
	found, err := NewRegistry(fsys, host).Discover(context.Background(), "/tpl")
	require.NoError(t, err)
	require.Len(t, found, 1, "exceptions: %+v", host.Exceptions)
	return found[0]
}

func slim(source string) types.SlimEntry {
	return types.SlimEntry{SourcePath: source, Name: source, Location: "/tpl/demo/" + source}
}

func TestTemplate_Defaults(t *testing.T) {
	tmpl := loadOne(t, "", nil)
	ctx := context.Background()

	answers, ok, err := tmpl.Execute(ctx, testPaths)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{}`, answers.String())

	transformed, err := tmpl.Transform(ctx, types.Answers(`{"a":1}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, transformed.String())

	binding, err := tmpl.Bind(transformed, testPaths)
	require.NoError(t, err)

	dest, ok, err := binding.DestinationPath(ctx, slim("src/x.ts"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "src/x.ts", dest)

	open, err := binding.ShouldOpenDocument(ctx, slim("src/x.ts"))
	require.NoError(t, err)
	assert.True(t, open)
}

func TestTemplate_ExecuteReceivesPaths(t *testing.T) {
	host := testutil.NewFakeHost().QueueInput("Button")
	tmpl := loadOne(t, `
		pig.executeAsync = async (paths) => {
			const name = await showInputBox({ prompt: "Name" })
			if (!name) return null
			return { name, where: paths.targetRoot, ws: paths.workspaceUri.fsPath, wsAlias: String(paths.workspaceUri) }
		}
	`, host)

	answers, ok, err := tmpl.Execute(context.Background(), testPaths)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"name":"Button","where":"/ws/app","ws":"/ws","wsAlias":"/ws"}`, answers.String())

	// script exhausted: the prompt is dismissed and the template backs out
	answers, ok, err = tmpl.Execute(context.Background(), testPaths)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, answers)
}

func TestTemplate_ExecuteFalsyValues(t *testing.T) {
	for _, value := range []string{"null", "undefined", "false", "0", "''"} {
		t.Run(value, func(t *testing.T) {
			tmpl := loadOne(t, "pig.executeAsync = () => "+value, nil)
			_, ok, err := tmpl.Execute(context.Background(), testPaths)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestTemplate_LegacyExecute(t *testing.T) {
	tmpl := loadOne(t, `delete pig.executeAsync; pig.execute = (paths) => ({ legacy: true })`, nil)
	answers, ok, err := tmpl.Execute(context.Background(), testPaths)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"legacy":true}`, answers.String())
}

func TestTemplate_ExecuteThrows(t *testing.T) {
	tmpl := loadOne(t, `pig.executeAsync = async () => { throw new Error("no answers") }`, nil)
	_, _, err := tmpl.Execute(context.Background(), testPaths)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateSetup))
	scriptErr, ok := errors.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, "Error: no answers", scriptErr.Message)
	assert.Equal(t, ActivityExecute, errors.GetErrorDetails(err)["activity"])
}

func TestTemplate_TransformAndRouting(t *testing.T) {
	tmpl := loadOne(t, `
		pig.transformContext = (ctx) => Object.assign({}, ctx, { fileName: kebabCase(ctx.name) })
		pig.getDestinationPath = (entry, ctx, paths) => {
			if (entry.sourcePath === "skip-null") return null
			if (entry.sourcePath === "skip-empty") return ""
			if (entry.sourcePath === "skip-undefined") return undefined
			if (entry.sourcePath === "boom") throw new Error("bad route")
			if (entry.sourcePath === "shared") return "/shared/" + ctx.fileName + ".ts"
			entry.sourcePath = "mutated"
			return "src/" + ctx.fileName + "/" + entry.sourcePath
		}
		pig.shouldOpenDocument = (entry) => entry.name.endsWith(".ts")
	`, nil)
	ctx := context.Background()

	transformed, err := tmpl.Transform(ctx, types.Answers(`{"name":"MyButton"}`))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"MyButton","fileName":"my-button"}`, transformed.String())

	binding, err := tmpl.Bind(transformed, testPaths)
	require.NoError(t, err)

	for _, source := range []string{"skip-null", "skip-empty", "skip-undefined"} {
		_, ok, err := binding.DestinationPath(ctx, slim(source))
		require.NoError(t, err)
		assert.False(t, ok, source)
	}

	dest, ok, err := binding.DestinationPath(ctx, slim("shared"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/shared/my-button.ts", dest)

	dest, _, err = binding.DestinationPath(ctx, slim("index.ts"))
	require.NoError(t, err)
	assert.Equal(t, "src/my-button/index.ts", dest, "slim entries are frozen")

	_, _, err = binding.DestinationPath(ctx, slim("boom"))
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateRouting))
	assert.Equal(t, "boom", errors.GetErrorDetails(err)["source"])

	open, err := binding.ShouldOpenDocument(ctx, slim("index.ts"))
	require.NoError(t, err)
	assert.True(t, open)
	open, err = binding.ShouldOpenDocument(ctx, slim("README.md"))
	require.NoError(t, err)
	assert.False(t, open)
}

func TestTemplate_ReloadPicksUpScriptChanges(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/tpl", map[string]string{"demo/.pig.js": `pig.name = "Before"`})
	found, err := NewRegistry(fsys, testutil.NewFakeHost()).Discover(context.Background(), "/tpl")
	require.NoError(t, err)
	require.Len(t, found, 1)
	tmpl := found[0]

	assert.Equal(t, "Before", tmpl.DisplayName())
	require.NoError(t, fsys.WriteFile("/tpl/demo/.pig.js", []byte(`pig.name = "After"`), 0644))
	require.NoError(t, tmpl.Reload(context.Background()))
	assert.Equal(t, "After", tmpl.DisplayName())

	require.NoError(t, fsys.WriteFile("/tpl/demo/.pig.js", []byte(`throw new Error("x")`), 0644))
	assert.Error(t, tmpl.Reload(context.Background()))
	assert.Equal(t, "After", tmpl.DisplayName(), "failed reload keeps the previous sandbox")
}

func TestReport(t *testing.T) {
	host := testutil.NewFakeHost()
	Report(host, "Demo", ActivityRender("a.ts"), "/tpl/demo/a.ts", errors.New(errors.ErrInternal, "plain"))
	require.Len(t, host.Exceptions, 1)
	assert.Equal(t, types.ExceptionReport{
		TemplateName: "Demo",
		Activity:     "rendering template a.ts",
		Location:     "/tpl/demo/a.ts",
		Message:      "[INTERNAL] plain",
	}, host.Exceptions[0])

	assert.Equal(t, `calling getDestinationPath("a\"b", …)`, ActivityDestination(`a"b`))
}
