package ui_test

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/templatepig/pkg/materialize"
	"github.com/arthur-debert/templatepig/pkg/templates"
	"github.com/arthur-debert/templatepig/pkg/ui"
	"github.com/arthur-debert/templatepig/pkg/ui/display"
)

func sampleList() *display.TemplateList {
	return &display.TemplateList{
		Workspace: "/ws",
		Roots:     []string{"/ws/.templates"},
		Templates: []templates.Info{
			{
				Name:        "component",
				DisplayName: "React component",
				Detail:      "A component with tests",
				Description: "Creates **three** files",
				Path:        "/ws/.templates/component",
				Root:        "/ws/.templates",
				HasScript:   true,
			},
			{Name: "readme", DisplayName: "Readme", Path: "/shared/readme", Root: "/shared"},
		},
	}
}

func sampleSummary() *display.RunSummary {
	return &display.RunSummary{
		Template:  "React component",
		Outcome:   "done",
		Workspace: "/ws",
		Target:    "/ws/src",
		Skipped:   1,
		Result: &materialize.Result{
			Directories: []string{"/ws/src/assets"},
			Created:     []string{"/ws/src/button.ts"},
			Replaced:    []string{"/ws/src/index.ts"},
		},
	}
}

func TestNewRenderer(t *testing.T) {
	tests := []struct {
		name        string
		format      ui.Format
		expectError bool
	}{
		{name: "terminal", format: ui.FormatTerminal},
		{name: "text", format: ui.FormatText},
		{name: "json", format: ui.FormatJSON},
		{name: "yaml", format: ui.FormatYAML},
		{name: "auto with buffer", format: ui.FormatAuto},
		{name: "invalid", format: ui.Format(999), expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderer, err := ui.NewRenderer(tt.format, &bytes.Buffer{})
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, renderer)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, renderer)
		})
	}
}

func TestTextRenderer_TemplateList(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatText, buf)
	require.NoError(t, err)

	require.NoError(t, renderer.RenderResult(sampleList()))
	out := buf.String()
	assert.Contains(t, out, "Templates\n")
	assert.Contains(t, out, "React component (component)\n  A component with tests\n  .templates/component\n")
	assert.Contains(t, out, "Readme\n  /shared/readme")
	assert.NotContains(t, out, "three", "descriptions need --long")
	assert.NotContains(t, out, "[")

	buf.Reset()
	list := sampleList()
	list.Long = true
	require.NoError(t, renderer.RenderResult(list))
	assert.Contains(t, buf.String(), "    Creates **three** files")
}

func TestTextRenderer_EmptyList(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatText, buf)
	require.NoError(t, err)
	require.NoError(t, renderer.RenderResult(&display.TemplateList{}))
	assert.Equal(t, "No templates found\n", buf.String())
}

func TestTextRenderer_RunSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatText, buf)
	require.NoError(t, err)

	require.NoError(t, renderer.RenderResult(sampleSummary()))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		"Applied React component to src",
		"  dir      src/assets",
		"  created  src/button.ts",
		"  replaced src/index.ts",
		"  1 skipped",
	}, lines)
}

func TestTextRenderer_RunSummaryOutcomes(t *testing.T) {
	tests := []struct {
		name     string
		summary  *display.RunSummary
		expected string
	}{
		{name: "aborted", summary: &display.RunSummary{Outcome: "aborted"}, expected: "Aborted\n"},
		{name: "failed", summary: &display.RunSummary{Outcome: "error-reported", Error: "boom"}, expected: "Failed boom\n"},
		{
			name: "dry run at the workspace root",
			summary: &display.RunSummary{
				Template: "Readme", Outcome: "done", Workspace: "/ws", Target: "/ws",
				Result: &materialize.Result{DryRun: true},
			},
			expected: "Would apply Readme to .\n  nothing to write\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			renderer, err := ui.NewRenderer(ui.FormatText, buf)
			require.NoError(t, err)
			require.NoError(t, renderer.RenderResult(tt.summary))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestTerminalRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatTerminal, buf)
	require.NoError(t, err)

	list := sampleList()
	list.Long = true
	require.NoError(t, renderer.RenderResult(list))
	require.NoError(t, renderer.RenderResult(sampleSummary()))
	require.NoError(t, renderer.RenderMessage("hello"))

	out := buf.String()
	assert.Contains(t, out, "React component")
	assert.Contains(t, out, "three")
	assert.Contains(t, out, "button.ts")
	assert.Contains(t, out, "hello")
	assert.NotContains(t, out, "[created]")
}

func TestJSONRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatJSON, buf)
	require.NoError(t, err)

	require.NoError(t, renderer.RenderResult(sampleList()))
	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "/ws", decoded["workspace"])
	templatesOut := decoded["templates"].([]interface{})
	require.Len(t, templatesOut, 2)
	first := templatesOut[0].(map[string]interface{})
	assert.Equal(t, "component", first["name"])
	assert.Equal(t, true, first["hasScript"])
	assert.NotContains(t, templatesOut[1], "detail")

	buf.Reset()
	require.NoError(t, renderer.RenderError(assert.AnError))
	assert.JSONEq(t, `{"error":"`+assert.AnError.Error()+`"}`, buf.String())
}

func TestYAMLRenderer(t *testing.T) {
	buf := &bytes.Buffer{}
	renderer, err := ui.NewRenderer(ui.FormatYAML, buf)
	require.NoError(t, err)

	require.NoError(t, renderer.RenderResult(sampleSummary()))
	var decoded struct {
		Template string `yaml:"template"`
		Outcome  string `yaml:"outcome"`
		Skipped  int    `yaml:"skipped"`
		Result   struct {
			Created []string `yaml:"created"`
		} `yaml:"result"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "React component", decoded.Template)
	assert.Equal(t, "done", decoded.Outcome)
	assert.Equal(t, 1, decoded.Skipped)
	assert.Equal(t, []string{"/ws/src/button.ts"}, decoded.Result.Created)

	buf.Reset()
	require.NoError(t, renderer.RenderMessage("hi"))
	assert.Equal(t, "message: hi\n", buf.String())
}
