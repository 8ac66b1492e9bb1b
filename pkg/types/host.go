package types

import "context"

// QuickPickItem is one choice offered by a single- or multi-choice prompt
type QuickPickItem struct {
	Label       string
	Description string
	Detail      string
	Picked      bool
}

// QuickPickOptions configures a choice prompt
type QuickPickOptions struct {
	Title       string
	PlaceHolder string
	CanPickMany bool
}

// InputBoxOptions configures a free-text prompt
type InputBoxOptions struct {
	Title       string
	Prompt      string
	PlaceHolder string
	Value       string
	Password    bool
}

// Prompter asks the user questions. A dismissed prompt returns ok=false
// with a nil error.
type Prompter interface {
	// QuickPick returns the indexes of the chosen items
	QuickPick(ctx context.Context, items []QuickPickItem, opts QuickPickOptions) (picked []int, ok bool, err error)
	InputBox(ctx context.Context, opts InputBoxOptions) (value string, ok bool, err error)
}

// ExceptionReport describes a failure in author-supplied code
type ExceptionReport struct {
	TemplateName string
	// Activity is a human readable description of the failing phase,
	// e.g. `calling executeAsync(…)`
	Activity string
	// Location is the file the user should open to fix the problem
	Location string
	Message  string
	Stack    string
}

// Host is everything the pipeline needs from the surrounding application:
// prompts, notices, exception reports and the template output channel.
type Host interface {
	Prompter

	Info(message string)
	Error(message string)
	Exception(report ExceptionReport)

	// Log appends a line to the named output channel
	Log(channel, line string)
}
