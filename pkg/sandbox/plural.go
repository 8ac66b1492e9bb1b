package sandbox

import (
	"github.com/dop251/goja"
	"github.com/gertd/go-pluralize"

	"github.com/arthur-debert/templatepig/pkg/errors"
)

type ruleKind int

const (
	rulePlural ruleKind = iota
	ruleSingular
	ruleIrregular
	ruleUncountable
)

// pluralRule is one add*Rule call, kept so it can be replayed on the
// client of every later sandbox
type pluralRule struct {
	kind        ruleKind
	rule        string
	replacement string
}

func (r pluralRule) apply(c *pluralize.Client) {
	switch r.kind {
	case rulePlural:
		c.AddPluralRule(r.rule, r.replacement)
	case ruleSingular:
		c.AddSingularRule(r.rule, r.replacement)
	case ruleIrregular:
		c.AddIrregularRule(r.rule, r.replacement)
	case ruleUncountable:
		c.AddUncountableRule(r.rule)
	}
}

// pluralClient returns a client with the published rules replayed in order
func (f *Factory) pluralClient() *pluralize.Client {
	c := pluralize.NewClient()
	for _, r := range f.rules {
		r.apply(c)
	}
	return c
}

func (s *Sandbox) addRule(r pluralRule) {
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				s.throw(errors.Newf(errors.ErrInvalidInput, "invalid rule %q: %v", r.rule, rec))
			}
		}()
		r.apply(s.plural)
	}()
	if s.shareRules {
		s.factory.rules = append(s.factory.rules, r)
	}
}

func (s *Sandbox) ruleFunc(kind ruleKind) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		r := pluralRule{kind: kind, rule: ruleSource(call.Argument(0))}
		if kind != ruleUncountable {
			r.replacement = argString(call, 1)
		}
		s.addRule(r)
		return goja.Undefined()
	}
}

func (s *Sandbox) pluralize(call goja.FunctionCall) goja.Value {
	word := argString(call, 0)
	if goja.IsUndefined(call.Argument(1)) {
		return s.rt.ToValue(s.plural.Plural(word))
	}
	count := int(call.Argument(1).ToInteger())
	inclusive := call.Argument(2).ToBoolean()
	return s.rt.ToValue(s.plural.Pluralize(word, count, inclusive))
}

// ruleSource accepts a string or a RegExp. A RegExp is turned into a
// parenthesised Go expression, which is how the pluralize client tells
// expressions from plain words; the i flag is kept.
func ruleSource(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok && obj.ClassName() == "RegExp" {
		source := obj.Get("source").String()
		if ignoreCase := obj.Get("ignoreCase"); ignoreCase != nil && ignoreCase.ToBoolean() {
			return "(?i)" + source
		}
		return "(?:" + source + ")"
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}
