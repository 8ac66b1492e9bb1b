// Package display holds the view models shared by every output format.
package display

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/templatepig/pkg/materialize"
	"github.com/arthur-debert/templatepig/pkg/pipeline"
	"github.com/arthur-debert/templatepig/pkg/templates"
)

// TemplateList is the result of listing the available templates
type TemplateList struct {
	Workspace string           `json:"workspace" yaml:"workspace"`
	Roots     []string         `json:"roots" yaml:"roots"`
	Templates []templates.Info `json:"templates" yaml:"templates"`
	// Long asks the rich renderers for descriptions too
	Long bool `json:"-" yaml:"-"`
}

// RunSummary is the result of one pipeline run
type RunSummary struct {
	Template  string              `json:"template,omitempty" yaml:"template,omitempty"`
	Outcome   string              `json:"outcome" yaml:"outcome"`
	Workspace string              `json:"workspace,omitempty" yaml:"workspace,omitempty"`
	Target    string              `json:"target,omitempty" yaml:"target,omitempty"`
	Skipped   int                 `json:"skipped" yaml:"skipped"`
	Result    *materialize.Result `json:"result,omitempty" yaml:"result,omitempty"`
	Error     string              `json:"error,omitempty" yaml:"error,omitempty"`
}

// NewRunSummary builds the view of a pipeline report
func NewRunSummary(report *pipeline.Report) *RunSummary {
	summary := &RunSummary{
		Outcome:   string(report.Outcome),
		Workspace: report.Paths.WorkspaceRoot,
		Target:    report.Paths.TargetRoot,
		Result:    report.Result,
	}
	if report.Template != nil {
		summary.Template = report.Template.DisplayName()
	}
	for _, entry := range report.Entries {
		if entry.Skipped() {
			summary.Skipped++
		}
	}
	if report.Err != nil {
		summary.Error = report.Err.Error()
	}
	return summary
}

// Markup renders the list with style tags. describe formats long
// descriptions; nil leaves them out.
func (l *TemplateList) Markup(describe func(string) string) string {
	if len(l.Templates) == 0 {
		return "[muted]No templates found[/muted]"
	}

	var b strings.Builder
	b.WriteString("[title]Templates[/title]\n")
	for _, info := range l.Templates {
		b.WriteString("\n[bold]" + info.DisplayName + "[/bold]")
		if info.Name != info.DisplayName {
			b.WriteString(" [muted](" + info.Name + ")[/muted]")
		}
		b.WriteString("\n")
		if info.Detail != "" {
			b.WriteString("  " + info.Detail + "\n")
		}
		b.WriteString("  [path]" + l.relative(info.Path) + "[/path]\n")
		if describe != nil && info.Description != "" {
			b.WriteString(describe(info.Description) + "\n")
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (l *TemplateList) relative(path string) string {
	return relativeTo(l.Workspace, path)
}

// Markup renders the summary with style tags
func (s *RunSummary) Markup() string {
	switch s.Outcome {
	case string(pipeline.OutcomeAborted):
		return "[muted]Aborted[/muted]"
	case string(pipeline.OutcomeErrorReported):
		if s.Error != "" {
			return "[error]Failed[/error] " + s.Error
		}
		return "[error]Failed[/error]"
	}

	var b strings.Builder
	verb := "Applied"
	if s.Result != nil && s.Result.DryRun {
		verb = "Would apply"
	}
	fmt.Fprintf(&b, "[success]%s[/success] [bold]%s[/bold] to [path]%s[/path]\n", verb, s.Template, s.display(s.Target))
	if s.Result != nil {
		for _, dir := range s.Result.Directories {
			b.WriteString("  [directory]dir[/directory]      " + s.display(dir) + "\n")
		}
		for _, file := range s.Result.Created {
			b.WriteString("  [created]created[/created]  " + s.display(file) + "\n")
		}
		for _, file := range s.Result.Replaced {
			b.WriteString("  [replaced]replaced[/replaced] " + s.display(file) + "\n")
		}
		if s.Result.Empty() {
			b.WriteString("  [muted]nothing to write[/muted]\n")
		}
	}
	if s.Skipped > 0 {
		fmt.Fprintf(&b, "  [muted]%d skipped[/muted]\n", s.Skipped)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (s *RunSummary) display(path string) string {
	rel := relativeTo(s.Workspace, path)
	if rel == "" {
		return "."
	}
	return rel
}

// relativeTo shortens path to the workspace when it lives inside it
func relativeTo(workspace, path string) string {
	if workspace == "" {
		return path
	}
	rel, err := filepath.Rel(workspace, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	if rel == "." {
		return ""
	}
	return filepath.ToSlash(rel)
}
