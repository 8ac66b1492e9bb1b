package sandbox

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/dop251/goja"
	"github.com/gertd/go-pluralize"

	"github.com/arthur-debert/templatepig/pkg/errors"
	"github.com/arthur-debert/templatepig/pkg/logging"
	"github.com/arthur-debert/templatepig/pkg/types"
)

// Binder produces a binding value inside the target runtime. Use it for
// values that must be built per runtime, such as objects with methods.
type Binder func(rt *goja.Runtime) (goja.Value, error)

// Bindings are extra globals for a new sandbox. Values may be a Binder,
// types.Answers (parsed as JSON in the new runtime) or any Go value goja
// can convert.
type Bindings map[string]interface{}

// Factory creates sandboxes sharing one helper configuration: the
// filesystem and host the helpers talk to, the output channel log writes
// to, and the pluralisation rules published by a sharing sandbox.
type Factory struct {
	fs      types.FS
	host    types.Host
	channel string
	rules   []pluralRule
}

// NewFactory creates a factory whose log helper writes to channel
func NewFactory(fsys types.FS, host types.Host, channel string) *Factory {
	return &Factory{
		fs:      fsys,
		host:    host,
		channel: channel,
	}
}

// SetChannel renames the output channel used by log. Templates call it
// once the setup script has settled the display name.
func (f *Factory) SetChannel(channel string) {
	f.channel = channel
}

// Channel returns the current output channel name
func (f *Factory) Channel() string {
	return f.channel
}

// CreateContext returns a new sandbox with the helper set installed,
// followed by extra. Extra bindings win on name collisions. The sandbox
// starts from the rules published so far; rules it adds stay private
// unless ShareRules is called.
func (f *Factory) CreateContext(extra Bindings) (*Sandbox, error) {
	rt := goja.New()
	s := &Sandbox{rt: rt, factory: f, ctx: context.Background(), plural: f.pluralClient()}

	for name, value := range s.helpers() {
		if err := rt.Set(name, value); err != nil {
			return nil, errors.Wrapf(err, errors.ErrInternal, "failed to install helper %s", name)
		}
	}
	for name, value := range extra {
		if err := s.Set(name, value); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Sandbox is one isolated execution context
type Sandbox struct {
	rt      *goja.Runtime
	factory *Factory
	plural  *pluralize.Client

	// shareRules publishes added pluralisation rules to the factory
	shareRules bool

	// ctx is the context of the call currently running, used by prompts
	ctx context.Context
}

// ShareRules makes pluralisation rules added from now on visible to every
// sandbox the factory creates afterwards
func (s *Sandbox) ShareRules() {
	s.shareRules = true
}

// Runtime exposes the underlying runtime for building values
func (s *Sandbox) Runtime() *goja.Runtime {
	return s.rt
}

// Set defines a global binding
func (s *Sandbox) Set(name string, value interface{}) error {
	v, err := s.value(value)
	if err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to bind %s", name).WithDetail("binding", name)
	}
	if err := s.rt.Set(name, v); err != nil {
		return errors.Wrapf(err, errors.ErrInternal, "failed to bind %s", name).WithDetail("binding", name)
	}
	return nil
}

// Get returns a global binding, or undefined
func (s *Sandbox) Get(name string) goja.Value {
	v := s.rt.Get(name)
	if v == nil {
		return goja.Undefined()
	}
	return v
}

func (s *Sandbox) value(value interface{}) (goja.Value, error) {
	switch v := value.(type) {
	case Binder:
		return v(s.rt)
	case func(*goja.Runtime) (goja.Value, error):
		return v(s.rt)
	case types.Answers:
		return s.Import(v)
	case goja.Value:
		return v, nil
	default:
		return s.rt.ToValue(value), nil
	}
}

// RunScript evaluates src and settles the result if it is a promise.
// Compile errors carry no stack.
func (s *Sandbox) RunScript(ctx context.Context, name, src string) (goja.Value, error) {
	program, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, errors.Wrap(&errors.ScriptError{Message: err.Error()}, errors.ErrScript, "script does not compile")
	}
	defer s.enter(ctx)()
	v, err := s.rt.RunProgram(program)
	if err != nil {
		return nil, s.scriptError(ctx, err)
	}
	return s.settle(v)
}

// Call invokes fn with an undefined receiver. See CallMethod.
func (s *Sandbox) Call(ctx context.Context, fn goja.Value, args ...goja.Value) (goja.Value, error) {
	return s.call(ctx, goja.Undefined(), fn, args)
}

// CallMethod invokes obj[name] with obj as receiver. A returned promise is
// settled: fulfilled gives its value, rejected gives a script error and a
// promise still pending after the job queue drained is an error too.
func (s *Sandbox) CallMethod(ctx context.Context, obj *goja.Object, name string, args ...goja.Value) (goja.Value, error) {
	return s.call(ctx, obj, obj.Get(name), args)
}

func (s *Sandbox) call(ctx context.Context, this, fn goja.Value, args []goja.Value) (goja.Value, error) {
	callable, ok := goja.AssertFunction(fn)
	if !ok {
		return nil, errors.New(errors.ErrScript, "value is not a function")
	}
	defer s.enter(ctx)()
	v, err := callable(this, args...)
	if err != nil {
		return nil, s.scriptError(ctx, err)
	}
	return s.settle(v)
}

// enter arms interruption for the duration of one call into the runtime
func (s *Sandbox) enter(ctx context.Context) func() {
	if ctx == nil {
		ctx = context.Background()
	}
	previous := s.ctx
	s.ctx = ctx
	stop := context.AfterFunc(ctx, func() {
		s.rt.Interrupt(ctx.Err())
	})
	return func() {
		stop()
		s.rt.ClearInterrupt()
		s.ctx = previous
	}
}

func (s *Sandbox) settle(v goja.Value) (goja.Value, error) {
	if v == nil {
		return goja.Undefined(), nil
	}
	promise, ok := v.Export().(*goja.Promise)
	if !ok {
		return v, nil
	}
	switch promise.State() {
	case goja.PromiseStateFulfilled:
		return promise.Result(), nil
	case goja.PromiseStateRejected:
		return nil, errors.Wrap(s.rejection(promise.Result()), errors.ErrScript, "promise rejected")
	default:
		return nil, errors.New(errors.ErrScript, "promise never settled: only host prompts may be awaited")
	}
}

func (s *Sandbox) rejection(reason goja.Value) *errors.ScriptError {
	if reason == nil || goja.IsUndefined(reason) {
		return &errors.ScriptError{Message: "undefined"}
	}
	scriptErr := &errors.ScriptError{Message: reason.String()}
	if obj, ok := reason.(*goja.Object); ok {
		if stack := obj.Get("stack"); stack != nil && !goja.IsUndefined(stack) {
			scriptErr.Stack = stackOrEmpty(scriptErr.Message, stack.String())
		}
	}
	return scriptErr
}

func (s *Sandbox) scriptError(ctx context.Context, err error) error {
	var interrupted *goja.InterruptedError
	if stderrors.As(err, &interrupted) {
		cause := ctx.Err()
		if cause == nil {
			cause = err
		}
		return errors.Wrap(cause, errors.ErrScript, "script interrupted")
	}

	var exception *goja.Exception
	if stderrors.As(err, &exception) {
		message := exception.Error()
		if value := exception.Value(); value != nil {
			message = value.String()
		}
		return errors.Wrap(&errors.ScriptError{
			Message: message,
			Stack:   stackOrEmpty(message, exception.String()),
		}, errors.ErrScript, "script threw")
	}
	return errors.Wrap(&errors.ScriptError{Message: err.Error()}, errors.ErrScript, "script failed")
}

// stackOrEmpty drops traces that carry no frames
func stackOrEmpty(message, stack string) string {
	stack = strings.TrimSpace(stack)
	if stack == "" || stack == strings.TrimSpace(message) || !strings.Contains(stack, "\n") {
		return ""
	}
	return stack
}

// Export snapshots a value as JSON. Top-level keys named in omit are left
// out of object snapshots. Values JSON cannot represent snapshot as null.
func (s *Sandbox) Export(value goja.Value, omit ...string) (types.Answers, error) {
	if value == nil || goja.IsUndefined(value) || goja.IsNull(value) {
		return types.Answers("null"), nil
	}

	if obj, ok := value.(*goja.Object); ok && len(omit) > 0 && obj.ClassName() == "Object" {
		skip := make(map[string]bool, len(omit))
		for _, key := range omit {
			skip[key] = true
		}
		stripped := s.rt.NewObject()
		for _, key := range obj.Keys() {
			if skip[key] {
				continue
			}
			if err := stripped.Set(key, obj.Get(key)); err != nil {
				return nil, errors.Wrapf(err, errors.ErrInternal, "failed to copy %s", key)
			}
		}
		value = stripped
	}

	stringify, ok := goja.AssertFunction(s.rt.Get("JSON").ToObject(s.rt).Get("stringify"))
	if !ok {
		return nil, errors.New(errors.ErrInternal, "JSON.stringify is unavailable")
	}
	out, err := stringify(goja.Undefined(), value)
	if err != nil {
		return nil, errors.Wrap(s.scriptError(context.Background(), err), errors.ErrScript, "answers are not serialisable")
	}
	if out == nil || goja.IsUndefined(out) {
		return types.Answers("null"), nil
	}
	return types.Answers(out.String()), nil
}

// Import parses a snapshot into a fresh value owned by this sandbox
func (s *Sandbox) Import(answers types.Answers) (goja.Value, error) {
	if answers.IsZero() {
		return goja.Null(), nil
	}
	parse, ok := goja.AssertFunction(s.rt.Get("JSON").ToObject(s.rt).Get("parse"))
	if !ok {
		return nil, errors.New(errors.ErrInternal, "JSON.parse is unavailable")
	}
	v, err := parse(goja.Undefined(), s.rt.ToValue(answers.String()))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load answers")
	}
	return v, nil
}

// Freeze makes obj immutable for author code
func (s *Sandbox) Freeze(obj *goja.Object) *goja.Object {
	freeze, ok := goja.AssertFunction(s.rt.Get("Object").ToObject(s.rt).Get("freeze"))
	if ok {
		_, _ = freeze(goja.Undefined(), obj)
	}
	return obj
}

// Truthy applies JavaScript truthiness; a nil value is falsy
func Truthy(v goja.Value) bool {
	return v != nil && v.ToBoolean()
}

func (s *Sandbox) context() context.Context {
	if s.ctx == nil {
		return context.Background()
	}
	return s.ctx
}

func (s *Sandbox) throw(err error) {
	logger := logging.GetLogger("sandbox")
	logger.Debug().Err(err).Msg("Helper failed")
	panic(s.rt.NewGoError(err))
}
