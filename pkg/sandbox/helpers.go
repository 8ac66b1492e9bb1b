package sandbox

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/arthur-debert/templatepig/pkg/filesystem"
	"github.com/arthur-debert/templatepig/pkg/logging"
)

// helpers returns the global bindings every sandbox starts with
func (s *Sandbox) helpers() map[string]interface{} {
	h := map[string]interface{}{}

	for name, fn := range caseHelpers {
		h[name] = s.stringFunc(fn)
	}

	// pluralisation
	p := s.plural
	h["plural"] = s.stringFunc(p.Plural)
	h["singular"] = s.stringFunc(p.Singular)
	h["isPlural"] = func(call goja.FunctionCall) goja.Value { return s.rt.ToValue(p.IsPlural(argString(call, 0))) }
	h["isSingular"] = func(call goja.FunctionCall) goja.Value { return s.rt.ToValue(p.IsSingular(argString(call, 0))) }
	h["pluralize"] = s.pluralize
	h["addPluralRule"] = s.ruleFunc(rulePlural)
	h["addSingularRule"] = s.ruleFunc(ruleSingular)
	h["addIrregularRule"] = s.ruleFunc(ruleIrregular)
	h["addUncountableRule"] = s.ruleFunc(ruleUncountable)

	// prompts
	h["showQuickPick"] = s.showQuickPick
	h["showInputBox"] = s.showInputBox
	h["option"] = s.option(false)
	h["prepicked"] = s.option(true)
	h["toPickedKeys"] = s.toPickedKeys

	// filesystem and paths
	h["getFileContent"] = s.getFileContent
	h["readDirectory"] = s.readDirectory
	h["isExistingDirectory"] = func(call goja.FunctionCall) goja.Value {
		return s.rt.ToValue(filesystem.IsExistingDirectory(s.factory.fs, argString(call, 0)))
	}
	h["getRelativePath"] = func(call goja.FunctionCall) goja.Value {
		return s.rt.ToValue(RelativePath(argString(call, 0), argString(call, 1)))
	}
	h["joinPath"] = func(call goja.FunctionCall) goja.Value {
		parts := make([]string, len(call.Arguments))
		for i := range call.Arguments {
			parts[i] = argString(call, i)
		}
		return s.rt.ToValue(filepath.Join(parts...))
	}
	h["dirname"] = s.stringFunc(filepath.Dir)
	h["basename"] = s.stringFunc(filepath.Base)
	h["extname"] = s.stringFunc(filepath.Ext)

	h["log"] = s.log
	return h
}

// argString reads argument i as a string; null and undefined become "".
// Uri-like objects ({fsPath}) are read through their fsPath.
func argString(call goja.FunctionCall, i int) string {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	if obj, ok := v.(*goja.Object); ok {
		if fsPath := obj.Get("fsPath"); fsPath != nil && !goja.IsUndefined(fsPath) && !goja.IsNull(fsPath) {
			return fsPath.String()
		}
	}
	return v.String()
}

func (s *Sandbox) stringFunc(fn func(string) string) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		return s.rt.ToValue(fn(argString(call, 0)))
	}
}

func (s *Sandbox) option(picked bool) func(goja.FunctionCall) goja.Value {
	return func(call goja.FunctionCall) goja.Value {
		label := argString(call, 0)
		obj := s.rt.NewObject()
		_ = obj.Set("label", label)
		_ = obj.Set("key", PascalCase(label))
		if picked {
			_ = obj.Set("picked", true)
		}
		return obj
	}
}

// toPickedKeys turns picked items into {key: true}, preferring key over label
func (s *Sandbox) toPickedKeys(call goja.FunctionCall) goja.Value {
	result := s.rt.NewObject()
	for _, item := range s.arrayValues(call.Argument(0)) {
		obj, ok := item.(*goja.Object)
		if !ok {
			if !goja.IsUndefined(item) && !goja.IsNull(item) {
				_ = result.Set(item.String(), true)
			}
			continue
		}
		key := obj.Get("key")
		if key == nil || goja.IsUndefined(key) || goja.IsNull(key) {
			key = obj.Get("label")
		}
		if key != nil && !goja.IsUndefined(key) {
			_ = result.Set(key.String(), true)
		}
	}
	return result
}

// arrayValues lists the elements of an array-like value; anything else is
// empty
func (s *Sandbox) arrayValues(v goja.Value) []goja.Value {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil
	}
	length := obj.Get("length")
	if length == nil || goja.IsUndefined(length) {
		return nil
	}
	n := int(length.ToInteger())
	values := make([]goja.Value, 0, n)
	for i := 0; i < n; i++ {
		values = append(values, obj.Get(strconv.Itoa(i)))
	}
	return values
}

func (s *Sandbox) getFileContent(call goja.FunctionCall) goja.Value {
	data, err := s.factory.fs.ReadFile(argString(call, 0))
	if err != nil {
		return goja.Null()
	}
	return s.rt.ToValue(string(data))
}

func (s *Sandbox) readDirectory(call goja.FunctionCall) goja.Value {
	children, err := s.factory.fs.ReadDir(argString(call, 0))
	if err != nil {
		return goja.Null()
	}
	items := make([]interface{}, 0, len(children))
	for _, child := range children {
		obj := s.rt.NewObject()
		_ = obj.Set("name", child.Name())
		_ = obj.Set("isDirectory", child.IsDir())
		_ = obj.Set("isFile", child.Type().IsRegular())
		items = append(items, obj)
	}
	return s.rt.NewArray(items...)
}

// RelativePath strips ancestor plus one separator from descendant. A path
// outside ancestor comes back unchanged.
func RelativePath(ancestor, descendant string) string {
	ancestor = strings.TrimRight(ancestor, `/\`)
	if ancestor == "" {
		return descendant
	}
	for _, sep := range []string{"/", `\`} {
		if strings.HasPrefix(descendant, ancestor+sep) {
			return descendant[len(ancestor)+1:]
		}
	}
	return descendant
}

func (s *Sandbox) log(call goja.FunctionCall) goja.Value {
	parts := make([]string, 0, len(call.Arguments))
	for _, arg := range call.Arguments {
		parts = append(parts, s.describe(arg))
	}
	line := strings.Join(parts, " ")
	channel := s.factory.channel

	logger := logging.TemplateLogger(channel)
	logger.Info().Msg(line)
	if s.factory.host != nil {
		s.factory.host.Log(channel, line)
	}
	return goja.Undefined()
}

// describe renders a value for log output: strings as-is, objects as JSON
func (s *Sandbox) describe(v goja.Value) string {
	if obj, ok := v.(*goja.Object); ok {
		if _, isFn := goja.AssertFunction(obj); !isFn && obj.ClassName() != "Error" {
			if out, err := s.Export(obj); err == nil {
				return out.String()
			}
		}
	}
	if v == nil {
		return "undefined"
	}
	return v.String()
}
