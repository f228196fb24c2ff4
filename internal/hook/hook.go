// Package hook runs user-supplied JavaScript that can rewrite the generated
// caption and hashtags before they are used.
//
// A hook file may define either or both of:
//
//	function transformCaption(caption, theme) { return caption }
//	function transformHashtags(tags, theme) { return tags }
//
// transformHashtags receives an array of strings and may return an array or a
// space-separated string. A global log(msg) function writes to the run log.
package hook

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dop251/goja"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every call into the script.
const DefaultTimeout = time.Second

var errTimeout = errors.New("hook timed out")

// Script is a loaded hook file. It is not safe for concurrent use.
type Script struct {
	path     string
	vm       *goja.Runtime
	caption  goja.Callable
	hashtags goja.Callable
	timeout  time.Duration
}

// Load evaluates the file at path and looks up its transform functions.
func Load(path string, log zerolog.Logger) (*Script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hook: %w", err)
	}
	return Compile(path, string(src), log)
}

// Compile evaluates src as a hook named name.
func Compile(name, src string, log zerolog.Logger) (*Script, error) {
	prog, err := goja.Compile(name, src, false)
	if err != nil {
		return nil, fmt.Errorf("compile hook %s: %w", name, err)
	}
	vm := goja.New()
	if err := vm.Set("log", func(msg string) { log.Info().Str("hook", name).Msg(msg) }); err != nil {
		return nil, fmt.Errorf("bind log: %w", err)
	}
	s := &Script{path: name, vm: vm, timeout: DefaultTimeout}
	if _, err := s.guard(func() (goja.Value, error) { return vm.RunProgram(prog) }); err != nil {
		return nil, fmt.Errorf("run hook %s: %w", name, err)
	}
	s.caption, _ = goja.AssertFunction(vm.Get("transformCaption"))
	s.hashtags, _ = goja.AssertFunction(vm.Get("transformHashtags"))
	return s, nil
}

// HasCaption reports whether the script defines transformCaption.
func (s *Script) HasCaption() bool { return s != nil && s.caption != nil }

// HasHashtags reports whether the script defines transformHashtags.
func (s *Script) HasHashtags() bool { return s != nil && s.hashtags != nil }

// TransformCaption returns caption unchanged when the function is absent.
func (s *Script) TransformCaption(caption, theme string) (string, error) {
	if !s.HasCaption() {
		return caption, nil
	}
	v, err := s.guard(func() (goja.Value, error) {
		return s.caption(goja.Undefined(), s.vm.ToValue(caption), s.vm.ToValue(theme))
	})
	if err != nil {
		return "", fmt.Errorf("transformCaption: %w", err)
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return caption, nil
	}
	return v.String(), nil
}

// TransformHashtags returns tags unchanged when the function is absent.
func (s *Script) TransformHashtags(tags []string, theme string) ([]string, error) {
	if !s.HasHashtags() {
		return tags, nil
	}
	arr := make([]any, len(tags))
	for i, t := range tags {
		arr[i] = t
	}
	v, err := s.guard(func() (goja.Value, error) {
		return s.hashtags(goja.Undefined(), s.vm.NewArray(arr...), s.vm.ToValue(theme))
	})
	if err != nil {
		return nil, fmt.Errorf("transformHashtags: %w", err)
	}
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return tags, nil
	}
	switch out := v.Export().(type) {
	case []any:
		res := make([]string, 0, len(out))
		for _, e := range out {
			res = append(res, fmt.Sprint(e))
		}
		return res, nil
	case string:
		return strings.Fields(out), nil
	default:
		return nil, fmt.Errorf("transformHashtags: unsupported return type %T", out)
	}
}

// guard runs fn with the timeout armed and converts panics and interrupts
// into errors.
func (s *Script) guard(fn func() (goja.Value, error)) (v goja.Value, err error) {
	timer := time.AfterFunc(s.timeout, func() { s.vm.Interrupt(errTimeout) })
	defer func() {
		timer.Stop()
		s.vm.ClearInterrupt()
		if r := recover(); r != nil {
			v, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()
	v, err = fn()
	var ie *goja.InterruptedError
	if errors.As(err, &ie) && ie.Value() == errTimeout {
		return nil, fmt.Errorf("%w after %s", errTimeout, s.timeout)
	}
	return v, err
}
