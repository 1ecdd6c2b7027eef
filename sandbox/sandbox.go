// Package sandbox runs compiled akore output in an isolated JavaScript VM.
//
// The VM is ECMAScript 5 only, so code must be compiled with the synchronous
// entry function and lowered to ES5 (see [compiler.WrapSync] and
// [compiler.FormatOptions]). Globals that evaluate code or reach outside the
// VM are removed, console output is captured, and require resolves only the
// modules registered with [WithModule].
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/robertkrimen/otto"

	"github.com/ardnew/akore/lang"
	"github.com/ardnew/akore/log"
)

// Predefined errors (sentinel values).
var (
	ErrSetup       = lang.NewError("failed to prepare sandbox")
	ErrRun         = lang.NewError("script failed")
	ErrInterrupted = lang.NewError("script interrupted")
)

// DefaultTimeout bounds the run time of a script.
const DefaultTimeout = 5 * time.Second

//nolint:gochecknoglobals
var removed = []string{
	"eval",
	"Function",
	"XMLHttpRequest",
	"importScripts",
	"process",
	"globalThis",
	"global",
	"window",
	"document",
}

// Line is one call to a console method.
type Line struct {
	Level string `json:"level" yaml:"level"`
	Text  string `json:"text"  yaml:"text"`
}

func (l Line) String() string { return l.Text }

// Result is the outcome of a run.
type Result struct {
	// Console holds console output in call order.
	Console []Line
	// Exports holds the properties assigned to exports.
	Exports map[string]any
	// Value is the completion value of the script.
	Value string
}

type config struct {
	timeout time.Duration
	modules map[string]any
	logger  log.Logger
}

// Option configures a run.
type Option func(*config)

// WithTimeout bounds the run time of the script. A zero timeout disables
// the bound, leaving only the context.
func WithTimeout(timeout time.Duration) Option {
	return func(c *config) { c.timeout = timeout }
}

// WithModule makes value available to require(name).
func WithModule(name string, value any) Option {
	return func(c *config) {
		if c.modules == nil {
			c.modules = make(map[string]any)
		}

		c.modules[name] = value
	}
}

// WithLogger sets the logger that receives console output at debug level.
func WithLogger(logger log.Logger) Option {
	return func(c *config) { c.logger = logger }
}

var errHalt = errors.New("halt")

// Run executes code in a new VM.
func Run(ctx context.Context, code string, opts ...Option) (result Result, err error) {
	cfg := config{timeout: DefaultTimeout}

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, ErrInterrupted.Wrap(context.Cause(ctx))
	}

	if cfg.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	vm := otto.New()

	exports, err := prepare(vm, &cfg, &result)
	if err != nil {
		return Result{}, ErrSetup.Wrap(err)
	}

	vm.Interrupt = make(chan func(), 1)

	done := make(chan struct{})
	defer close(done)

	go func() {
		select {
		case <-ctx.Done():
			vm.Interrupt <- func() { panic(errHalt) }
		case <-done:
		}
	}()

	defer func() {
		if caught := recover(); caught != nil {
			if caught != errHalt { //nolint:errorlint
				panic(caught)
			}

			err = ErrInterrupted.Wrap(context.Cause(ctx))
		}
	}()

	value, err := vm.Run(code)
	if err != nil {
		return result, ErrRun.Wrap(err)
	}

	result.Value = value.String()

	if exported, err := exports.Value().Export(); err == nil {
		if m, ok := exported.(map[string]any); ok && len(m) > 0 {
			result.Exports = m
		}
	}

	return result, nil
}

func prepare(vm *otto.Otto, cfg *config, result *Result) (*otto.Object, error) {
	for _, name := range removed {
		if err := vm.Set(name, nil); err != nil {
			return nil, err
		}
	}

	console, err := vm.Object(`console = {}`)
	if err != nil {
		return nil, err
	}

	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		err := console.Set(level, func(call otto.FunctionCall) otto.Value {
			line := Line{Level: level, Text: format(call.ArgumentList)}
			result.Console = append(result.Console, line)

			cfg.logger.Debug("console",
				slog.String("level", line.Level),
				slog.String("text", line.Text),
			)

			return otto.UndefinedValue()
		})
		if err != nil {
			return nil, err
		}
	}

	exports, err := vm.Object(`exports = {}`)
	if err != nil {
		return nil, err
	}

	err = vm.Set("require", func(call otto.FunctionCall) otto.Value {
		name := call.Argument(0).String()

		module, ok := cfg.modules[name]
		if !ok {
			panic(call.Otto.MakeCustomError("Error", "cannot find module '"+name+"'"))
		}

		value, err := call.Otto.ToValue(module)
		if err != nil {
			panic(call.Otto.MakeCustomError("Error", err.Error()))
		}

		return value
	})
	if err != nil {
		return nil, err
	}

	return exports, nil
}

// format joins console arguments with spaces. Objects are rendered as JSON.
func format(args []otto.Value) string {
	parts := make([]string, len(args))

	for i, arg := range args {
		parts[i] = arg.String()

		if !arg.IsObject() || arg.Class() == "Function" {
			continue
		}

		exported, err := arg.Export()
		if err != nil {
			continue
		}

		if data, err := json.Marshal(exported); err == nil {
			parts[i] = string(data)
		}
	}

	return strings.Join(parts, " ")
}
