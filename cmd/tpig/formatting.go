package tpig

import (
	"os"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/templatepig/pkg/ui"
)

func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// formatBold returns the string formatted as bold on a terminal
func formatBold(s string) string {
	if !stdoutIsTerminal() {
		return s
	}
	return pterm.Bold.Sprint(s)
}

// formatBoldUpper returns the string in uppercase and bold
func formatBoldUpper(s string) string {
	return formatBold(strings.ToUpper(s))
}

// initTemplateFormatting adds custom formatting functions to Cobra templates
func initTemplateFormatting() {
	cobra.AddTemplateFuncs(template.FuncMap{
		"bold":      formatBold,
		"boldUpper": formatBoldUpper,
	})
}

// configureColor turns styling off for plain and machine readable output
func configureColor(format ui.Format) {
	if format == ui.FormatTerminal {
		return
	}
	if format == ui.FormatAuto && ui.DetectFormat(os.Stdout) == ui.FormatTerminal {
		return
	}
	pterm.DisableColor()
	lipgloss.SetColorProfile(termenv.Ascii)
}
