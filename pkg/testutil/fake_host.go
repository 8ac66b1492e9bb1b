package testutil

import (
	"context"
	"sync"

	"github.com/arthur-debert/templatepig/pkg/types"
)

// PickAnswer is a scripted reply to one QuickPick call. Dismissed wins over
// Indexes.
type PickAnswer struct {
	Indexes   []int
	Dismissed bool
}

// InputAnswer is a scripted reply to one InputBox call
type InputAnswer struct {
	Value     string
	Dismissed bool
}

// PickCall records one QuickPick invocation
type PickCall struct {
	Items   []types.QuickPickItem
	Options types.QuickPickOptions
}

// LogLine records one Log invocation
type LogLine struct {
	Channel string
	Line    string
}

// FakeHost implements types.Host for tests. Prompts consume the scripted
// answers in order; an exhausted script behaves like a dismissed prompt.
type FakeHost struct {
	mu sync.Mutex

	Picks  []PickAnswer
	Inputs []InputAnswer

	PickCalls  []PickCall
	InputCalls []types.InputBoxOptions
	Infos      []string
	Errors     []string
	Exceptions []types.ExceptionReport
	Logs       []LogLine
}

// NewFakeHost creates a host with no scripted answers
func NewFakeHost() *FakeHost {
	return &FakeHost{}
}

// QueuePick appends scripted QuickPick answers
func (h *FakeHost) QueuePick(indexes ...int) *FakeHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Picks = append(h.Picks, PickAnswer{Indexes: indexes})
	return h
}

// QueueInput appends a scripted InputBox answer
func (h *FakeHost) QueueInput(value string) *FakeHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Inputs = append(h.Inputs, InputAnswer{Value: value})
	return h
}

// QueueDismissInput appends a dismissed InputBox answer
func (h *FakeHost) QueueDismissInput() *FakeHost {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Inputs = append(h.Inputs, InputAnswer{Dismissed: true})
	return h
}

func (h *FakeHost) QuickPick(_ context.Context, items []types.QuickPickItem, opts types.QuickPickOptions) ([]int, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.PickCalls = append(h.PickCalls, PickCall{Items: append([]types.QuickPickItem(nil), items...), Options: opts})
	if len(h.Picks) == 0 {
		return nil, false, nil
	}
	answer := h.Picks[0]
	h.Picks = h.Picks[1:]
	if answer.Dismissed {
		return nil, false, nil
	}
	return answer.Indexes, true, nil
}

func (h *FakeHost) InputBox(_ context.Context, opts types.InputBoxOptions) (string, bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.InputCalls = append(h.InputCalls, opts)
	if len(h.Inputs) == 0 {
		return "", false, nil
	}
	answer := h.Inputs[0]
	h.Inputs = h.Inputs[1:]
	if answer.Dismissed {
		return "", false, nil
	}
	return answer.Value, true, nil
}

func (h *FakeHost) Info(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Infos = append(h.Infos, message)
}

func (h *FakeHost) Error(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Errors = append(h.Errors, message)
}

func (h *FakeHost) Exception(report types.ExceptionReport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Exceptions = append(h.Exceptions, report)
}

func (h *FakeHost) Log(channel, line string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Logs = append(h.Logs, LogLine{Channel: channel, Line: line})
}

// LogLines returns the lines logged to a channel
func (h *FakeHost) LogLines(channel string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var lines []string
	for _, l := range h.Logs {
		if l.Channel == channel {
			lines = append(lines, l.Line)
		}
	}
	return lines
}
