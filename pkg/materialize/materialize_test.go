package materialize

import (
	"context"
	"fmt"
	"io/fs"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/testutil"
	"github.com/arthur-debert/templatepig/pkg/types"
)

type recordingOpener struct {
	calls [][]string
}

func (o *recordingOpener) Open(_ context.Context, paths []string) error {
	o.calls = append(o.calls, paths)
	return nil
}

type policyFunc func(types.SlimEntry) (bool, error)

func (f policyFunc) ShouldOpenDocument(_ context.Context, entry types.SlimEntry) (bool, error) {
	return f(entry)
}

func file(source, dest, content string) *types.Entry {
	e := types.NewFileEntry("/tpl/"+source, func() (string, error) { return content, nil })
	e.SourcePath = source
	e.AbsoluteDestination = dest
	e.Rendered = content
	e.State = types.StateRendered
	return e
}

func dir(source, dest string) *types.Entry {
	e := types.NewDirEntry("/tpl/" + source)
	e.SourcePath = source
	e.AbsoluteDestination = dest
	e.State = types.StateResolved
	return e
}

func TestMaterialize_CreatesAndReplaces(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/ws", map[string]string{"app/existing.ts": "old"})
	opener := &recordingOpener{}

	skipped := file("skipped.ts", "/ws/app/skipped.ts", "nope")
	skipped.State = types.StateSkipped
	entries := []*types.Entry{
		file("index.ts", "/ws/app/src/index.ts", "new file"),
		file("existing.ts", "/ws/app/existing.ts", "replaced"),
		dir("assets", "/ws/app/assets"),
		skipped,
	}

	result, err := New(fsys, WithOpener(opener)).Materialize(context.Background(), entries, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/ws/app/src/index.ts"}, result.Created)
	assert.Equal(t, []string{"/ws/app/existing.ts"}, result.Replaced)
	assert.Equal(t, []string{"/ws/app/assets"}, result.Directories)
	assert.False(t, result.Empty())

	assert.Equal(t, map[string]string{
		"app/src/index.ts": "new file",
		"app/existing.ts":  "replaced",
		"app/assets/":      "",
	}, testutil.ReadTree(t, fsys, "/ws"))

	for _, e := range entries[:3] {
		assert.Equal(t, types.StateMaterialized, e.State)
	}
	assert.Equal(t, types.StateSkipped, skipped.State)
	assert.Empty(t, opener.calls, "no policy, no documents")
}

func TestMaterialize_Idempotent(t *testing.T) {
	fsys := testutil.NewTestFS()
	m := New(fsys)
	entries := func() []*types.Entry {
		return []*types.Entry{file("a", "/ws/a.txt", "A"), dir("d", "/ws/d")}
	}

	_, err := m.Materialize(context.Background(), entries(), nil)
	require.NoError(t, err)
	first := testutil.ReadTree(t, fsys, "/ws")

	result, err := m.Materialize(context.Background(), entries(), nil)
	require.NoError(t, err)
	assert.Equal(t, first, testutil.ReadTree(t, fsys, "/ws"))
	assert.Equal(t, []string{"/ws/a.txt"}, result.Replaced)
}

func TestMaterialize_DocumentPolicy(t *testing.T) {
	fsys := testutil.NewTestFS()
	opener := &recordingOpener{}
	policy := policyFunc(func(e types.SlimEntry) (bool, error) {
		switch e.SourcePath {
		case "a.ts":
			return true, nil
		case "b.md":
			return false, nil
		}
		return false, fmt.Errorf("policy exploded")
	})

	entries := []*types.Entry{
		file("a.ts", "/ws/a.ts", ""),
		file("b.md", "/ws/b.md", ""),
		file("c.go", "/ws/c.go", ""),
		dir("d", "/ws/d"),
	}
	result, err := New(fsys, WithOpener(opener)).Materialize(context.Background(), entries, policy)
	require.NoError(t, err)

	assert.Equal(t, []string{"/ws/a.ts", "/ws/c.go"}, result.Opened, "a failing policy opens the document")
	assert.Equal(t, [][]string{{"/ws/a.ts", "/ws/c.go"}}, opener.calls)
}

func TestMaterialize_OpenDocumentsDisabled(t *testing.T) {
	opener := &recordingOpener{}
	always := policyFunc(func(types.SlimEntry) (bool, error) { return true, nil })

	result, err := New(testutil.NewTestFS(), WithOpener(opener), WithOpenDocuments(false)).
		Materialize(context.Background(), []*types.Entry{file("a", "/ws/a", "")}, always)
	require.NoError(t, err)
	assert.Empty(t, result.Opened)
	assert.Empty(t, opener.calls)
}

func TestMaterialize_DryRun(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/ws", map[string]string{"keep.txt": "untouched"})
	opener := &recordingOpener{}
	always := policyFunc(func(types.SlimEntry) (bool, error) { return true, nil })

	result, err := New(fsys, WithDryRun(true), WithOpener(opener)).Materialize(context.Background(), []*types.Entry{
		file("keep.txt", "/ws/keep.txt", "changed"),
		file("new.txt", "/ws/sub/new.txt", "new"),
		dir("d", "/ws/d"),
	}, always)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Equal(t, []string{"/ws/keep.txt"}, result.Replaced)
	assert.Equal(t, []string{"/ws/sub/new.txt"}, result.Created)
	assert.Equal(t, []string{"/ws/d"}, result.Directories)
	assert.Equal(t, []string{"/ws/keep.txt", "/ws/sub/new.txt"}, result.Opened)
	assert.Empty(t, opener.calls, "dry runs open nothing")
	assert.Equal(t, map[string]string{"keep.txt": "untouched"}, testutil.ReadTree(t, fsys, "/ws"))
}

func TestMaterialize_DirectoryInTheWay(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/ws", map[string]string{"taken/": ""})

	_, err := New(fsys).Materialize(context.Background(), []*types.Entry{file("taken", "/ws/taken", "x")}, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
}

func TestMaterialize_PlanFailsBeforeWriting(t *testing.T) {
	fsys := testutil.NewTestFS()
	testutil.WriteTree(t, fsys, "/ws", map[string]string{"taken/": ""})

	result, err := New(fsys).Materialize(context.Background(), []*types.Entry{
		file("first", "/ws/first.txt", "x"),
		file("taken", "/ws/taken", "x"),
	}, nil)
	require.Error(t, err)
	assert.True(t, result.Empty())
	assert.Equal(t, map[string]string{"taken/": ""}, testutil.ReadTree(t, fsys, "/ws"))
}

func TestMaterialize_SameDestinationTwice(t *testing.T) {
	fsys := testutil.NewTestFS()

	result, err := New(fsys).Materialize(context.Background(), []*types.Entry{
		file("a", "/ws/out.txt", "first"),
		file("b", "/ws/out.txt", "second"),
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/ws/out.txt"}, result.Created)
	assert.Equal(t, []string{"/ws/out.txt"}, result.Replaced)
	assert.Equal(t, map[string]string{"out.txt": "second"}, testutil.ReadTree(t, fsys, "/ws"))
}

// failingWrites fails WriteFile for one path
type failingWrites struct {
	types.FS
	path string
}

func (f failingWrites) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if name == f.path {
		return fs.ErrPermission
	}
	return f.FS.WriteFile(name, data, perm)
}

func TestMaterialize_WriteFailureStopsTheRun(t *testing.T) {
	base := testutil.NewTestFS()
	fsys := failingWrites{FS: base, path: "/ws/b.txt"}

	result, err := New(fsys).Materialize(context.Background(), []*types.Entry{
		file("a", "/ws/a.txt", "A"),
		file("b", "/ws/b.txt", "B"),
		file("c", "/ws/c.txt", "C"),
	}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileWrite))
	assert.Equal(t, []string{"/ws/a.txt"}, result.Created)
	assert.Equal(t, map[string]string{"a.txt": "A"}, testutil.ReadTree(t, base, "/ws"))
}

func TestMaterialize_MissingDestination(t *testing.T) {
	_, err := New(testutil.NewTestFS()).Materialize(context.Background(), []*types.Entry{file("a", "", "x")}, nil)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

func TestEditorOpener(t *testing.T) {
	assert.NoError(t, NewEditorOpener("").Open(context.Background(), []string{"/x"}))
	assert.NoError(t, NopOpener{}.Open(context.Background(), []string{"/x"}))

	if runtime.GOOS == "windows" {
		t.Skip("relies on POSIX true/false")
	}
	assert.NoError(t, NewEditorOpener("true --flag").Open(context.Background(), []string{"/x"}))
	assert.Error(t, NewEditorOpener("false").Open(context.Background(), []string{"/x"}))
}
