package sandbox

import (
	"github.com/dop251/goja"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// Prompt proxies resolve to promises so author code can await them or
// chain .then. They settle before returning because the host answers
// synchronously.

// showQuickPick(items, options) resolves to the chosen item, an array of
// items with canPickMany, or undefined when dismissed.
func (s *Sandbox) showQuickPick(call goja.FunctionCall) goja.Value {
	values := s.arrayValues(call.Argument(0))
	items := make([]types.QuickPickItem, len(values))
	for i, v := range values {
		items[i] = quickPickItem(v)
	}

	opts := types.QuickPickOptions{}
	if obj, ok := call.Argument(1).(*goja.Object); ok {
		opts.Title = optString(obj, "title")
		opts.PlaceHolder = optString(obj, "placeHolder")
		opts.CanPickMany = obj.Get("canPickMany") != nil && obj.Get("canPickMany").ToBoolean()
	}

	picked, ok, err := s.prompter().QuickPick(s.context(), items, opts)
	if err != nil {
		s.throw(errors.Wrap(err, errors.ErrPrompt, "quick pick failed"))
	}
	if !ok {
		return s.resolved(goja.Undefined())
	}

	if opts.CanPickMany {
		chosen := make([]interface{}, 0, len(picked))
		for _, i := range picked {
			if i >= 0 && i < len(values) {
				chosen = append(chosen, values[i])
			}
		}
		return s.resolved(s.rt.NewArray(chosen...))
	}
	if len(picked) == 0 || picked[0] < 0 || picked[0] >= len(values) {
		return s.resolved(goja.Undefined())
	}
	return s.resolved(values[picked[0]])
}

// showInputBox(options) resolves to the entered text, or undefined when
// dismissed.
func (s *Sandbox) showInputBox(call goja.FunctionCall) goja.Value {
	opts := types.InputBoxOptions{}
	if obj, ok := call.Argument(0).(*goja.Object); ok {
		opts.Title = optString(obj, "title")
		opts.Prompt = optString(obj, "prompt")
		opts.PlaceHolder = optString(obj, "placeHolder")
		opts.Value = optString(obj, "value")
		opts.Password = obj.Get("password") != nil && obj.Get("password").ToBoolean()
	}

	value, ok, err := s.prompter().InputBox(s.context(), opts)
	if err != nil {
		s.throw(errors.Wrap(err, errors.ErrPrompt, "input box failed"))
	}
	if !ok {
		return s.resolved(goja.Undefined())
	}
	return s.resolved(s.rt.ToValue(value))
}

func (s *Sandbox) resolved(v goja.Value) goja.Value {
	promise, resolve, _ := s.rt.NewPromise()
	if err := resolve(v); err != nil {
		s.throw(err)
	}
	return s.rt.ToValue(promise)
}

func (s *Sandbox) prompter() types.Prompter {
	if s.factory.host == nil {
		s.throw(errors.New(errors.ErrPrompt, "prompts are not available here"))
	}
	return s.factory.host
}

// quickPickItem accepts plain strings or {label, description, detail, picked}
func quickPickItem(v goja.Value) types.QuickPickItem {
	obj, ok := v.(*goja.Object)
	if !ok {
		if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
			return types.QuickPickItem{}
		}
		return types.QuickPickItem{Label: v.String()}
	}
	item := types.QuickPickItem{
		Label:       optString(obj, "label"),
		Description: optString(obj, "description"),
		Detail:      optString(obj, "detail"),
	}
	if picked := obj.Get("picked"); picked != nil {
		item.Picked = picked.ToBoolean()
	}
	return item
}

func optString(obj *goja.Object, key string) string {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}
