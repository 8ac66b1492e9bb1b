// Package session holds the last-run cache: the template used by the most
// recent successful setup and the raw answers it produced. A Session lives
// as long as the process that created it and is only touched from the main
// flow, so it carries no locking.
package session

import (
	"github.com/arthur-debert/templatepig/pkg/templates"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// Session is the last-run cache
type Session struct {
	template *templates.Template
	answers  types.Answers
}

// New creates an empty session
func New() *Session {
	return &Session{}
}

// Last returns the cached template and a copy of its answers. ok is false
// when nothing was cached yet.
func (s *Session) Last() (template *templates.Template, answers types.Answers, ok bool) {
	if s == nil || s.template == nil {
		return nil, nil, false
	}
	return s.template, s.answers.Clone(), true
}

// Remember records a run's template and raw answers
func (s *Session) Remember(template *templates.Template, answers types.Answers) {
	s.template = template
	s.answers = answers.Clone()
}

// IsLast reports whether template is the cached template instance
func (s *Session) IsLast(template *templates.Template) bool {
	return s != nil && s.template != nil && s.template == template
}

// Clear forgets the cached run
func (s *Session) Clear() {
	s.template = nil
	s.answers = nil
}
