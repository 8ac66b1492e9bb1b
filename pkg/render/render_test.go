package render

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/sandbox"
	"github.com/arthur-debert/templatepig/pkg/testutil"
	"github.com/arthur-debert/templatepig/pkg/types"
)

func newFactory() *sandbox.Factory {
	return sandbox.NewFactory(testutil.NewTestFS(), testutil.NewFakeHost(), "Test")
}

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		expected Source
	}{
		{
			name:     "plain body",
			content:  "Hello, ${name}!",
			expected: Source{Body: "Hello, ${name}!"},
		},
		{
			name:     "script block",
			content:  "<pig>const x = 1</pig>\nvalue ${x}\n",
			expected: Source{Script: "const x = 1", HasScript: true, Body: "value ${x}\n"},
		},
		{
			name:     "leading whitespace before block",
			content:  "\n  <pig>\nconst x = 1\n</pig>\r\nbody",
			expected: Source{Script: "\nconst x = 1\n", HasScript: true, Body: "body"},
		},
		{
			name:     "tag later in the file is body text",
			content:  "text <pig>not a script</pig>",
			expected: Source{Body: "text <pig>not a script</pig>"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.content)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParse_Unterminated(t *testing.T) {
	_, err := Parse("<pig>const x = 1\nbody")
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateRender))
}

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		answers  string
		expected string
	}{
		{
			name:     "interpolation",
			content:  "Hello, ${name}!",
			answers:  `{"name":"Ada"}`,
			expected: "Hello, Ada!",
		},
		{
			name:     "script block binds a derived variable",
			content:  "<pig>\nconst fileName = kebabCase(name)\n</pig>\nexport * from './${fileName}'\n",
			answers:  `{"name":"MyButton"}`,
			expected: "export * from './my-button'\n",
		},
		{
			name:     "helpers and nested answers",
			content:  "${plural(model.name)} in ${constantCase(model.table)}",
			answers:  `{"model":{"name":"invoice","table":"lineItems"}}`,
			expected: "invoices in LINE_ITEMS",
		},
		{
			name:     "no answers at all",
			content:  "static text",
			answers:  `{}`,
			expected: "static text",
		},
		{
			name:     "plain bodies are still literals",
			content:  `C:\dir\file`,
			answers:  `{}`,
			expected: "C:dir\file",
		},
		{
			name:     "metadata namespace is not bound",
			content:  "${typeof pig}",
			answers:  `{"pig":{"name":"x"},"a":1}`,
			expected: "undefined",
		},
		{
			name:     "array answer-set binds nothing",
			content:  "${typeof length}",
			answers:  `[1,2]`,
			expected: "undefined",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(context.Background(), newFactory(), tt.name, tt.content, types.Answers(tt.answers))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRender_Errors(t *testing.T) {
	_, err := Render(context.Background(), newFactory(), "src/a.ts", "${missing.value}", types.Answers(`{}`))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrTemplateRender))
	scriptErr, ok := errors.AsScriptError(err)
	require.True(t, ok)
	assert.Contains(t, scriptErr.Message, "ReferenceError")

	_, err = Render(context.Background(), newFactory(), "src/b.ts", "<pig>throw new Error('bad')</pig>x", types.Answers(`{}`))
	scriptErr, ok = errors.AsScriptError(err)
	require.True(t, ok)
	assert.Equal(t, "Error: bad", scriptErr.Message)
}

func TestRender_MutationDoesNotLeak(t *testing.T) {
	factory := newFactory()
	answers := types.Answers(`{"shared":{"value":"original"},"list":[1]}`)

	first, err := Render(context.Background(), factory, "one",
		"<pig>shared.value = 'mutated'; list.push(2)</pig>${shared.value}/${list.length}", answers)
	require.NoError(t, err)
	assert.Equal(t, "mutated/2", first)

	second, err := Render(context.Background(), factory, "two", "${shared.value}/${list.length}", answers)
	require.NoError(t, err)
	assert.Equal(t, "original/1", second)
	assert.JSONEq(t, `{"shared":{"value":"original"},"list":[1]}`, answers.String())
}
