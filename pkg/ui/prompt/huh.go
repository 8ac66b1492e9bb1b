// Package prompt asks template questions on the terminal.
package prompt

import (
	"context"
	stderrors "errors"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// HuhPrompter implements types.Prompter with charmbracelet/huh forms. Forms
// run one at a time.
type HuhPrompter struct {
	mu         sync.Mutex
	isTerminal func() bool
	run        func(ctx context.Context, form *huh.Form) error
}

// NewHuhPrompter creates a prompter bound to the process terminal
func NewHuhPrompter() *HuhPrompter {
	return &HuhPrompter{
		isTerminal: stdinIsTerminal,
		run:        func(ctx context.Context, form *huh.Form) error { return form.RunWithContext(ctx) },
	}
}

func stdinIsTerminal() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runForm runs form and maps a user abort to a dismissed prompt
func (p *HuhPrompter) runForm(ctx context.Context, form *huh.Form) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.isTerminal() {
		return false, errors.New(errors.ErrPrompt, "prompts need an interactive terminal")
	}
	err := p.run(ctx, form)
	switch {
	case err == nil:
		return true, nil
	case stderrors.Is(err, huh.ErrUserAborted):
		logger := logging.GetLogger("ui.prompt")
		logger.Debug().Msg("Prompt dismissed")
		return false, nil
	case ctx.Err() != nil:
		return false, ctx.Err()
	default:
		return false, errors.Wrap(err, errors.ErrPrompt, "prompt failed")
	}
}

// QuickPick asks for one item, or several when opts.CanPickMany is set
func (p *HuhPrompter) QuickPick(ctx context.Context, items []types.QuickPickItem, opts types.QuickPickOptions) ([]int, bool, error) {
	if len(items) == 0 {
		return nil, false, nil
	}
	options := PickOptions(items)
	title, description := pickTitles(opts)

	if opts.CanPickMany {
		var picked []int
		for i, item := range items {
			if item.Picked {
				picked = append(picked, i)
			}
		}
		field := huh.NewMultiSelect[int]().
			Title(title).
			Description(description).
			Options(options...).
			Value(&picked)
		ok, err := p.runForm(ctx, huh.NewForm(huh.NewGroup(field)))
		if !ok || err != nil {
			return nil, false, err
		}
		return picked, true, nil
	}

	var picked int
	field := huh.NewSelect[int]().
		Title(title).
		Description(description).
		Options(options...).
		Value(&picked)
	ok, err := p.runForm(ctx, huh.NewForm(huh.NewGroup(field)))
	if !ok || err != nil {
		return nil, false, err
	}
	return []int{picked}, true, nil
}

// InputBox asks for free text. An empty answer is still an answer.
func (p *HuhPrompter) InputBox(ctx context.Context, opts types.InputBoxOptions) (string, bool, error) {
	value := opts.Value
	title := opts.Title
	if title == "" {
		title = opts.Prompt
	}
	if title == "" {
		title = opts.PlaceHolder
	}
	field := huh.NewInput().
		Title(title).
		Placeholder(opts.PlaceHolder).
		Value(&value)
	if opts.Prompt != "" && opts.Prompt != title {
		field = field.Description(opts.Prompt)
	}
	if opts.Password {
		field = field.EchoMode(huh.EchoModePassword)
	}
	ok, err := p.runForm(ctx, huh.NewForm(huh.NewGroup(field)))
	if !ok || err != nil {
		return "", false, err
	}
	return value, true, nil
}

// PickOptions turns quick pick items into select options keyed by index.
// Details and descriptions follow the label on the same line.
func PickOptions(items []types.QuickPickItem) []huh.Option[int] {
	options := make([]huh.Option[int], len(items))
	for i, item := range items {
		key := item.Label
		var extra []string
		if item.Description != "" {
			extra = append(extra, item.Description)
		}
		if item.Detail != "" {
			extra = append(extra, item.Detail)
		}
		if len(extra) > 0 {
			key += " · " + strings.Join(extra, " · ")
		}
		options[i] = huh.NewOption(key, i).Selected(item.Picked)
	}
	return options
}

func pickTitles(opts types.QuickPickOptions) (title, description string) {
	title = opts.Title
	if title == "" {
		return opts.PlaceHolder, ""
	}
	return title, opts.PlaceHolder
}
