package compiler

import (
	"log/slog"
	"strconv"

	"github.com/ardnew/akore/lang"
)

// Predefined errors (sentinel values).
var (
	ErrBusy        = lang.NewError("compiler is busy")
	ErrArity       = lang.NewError("too few arguments")
	ErrFormat      = lang.NewError("format failed")
	ErrManifest    = lang.NewError("invalid instruction manifest")
	ErrExprCompile = lang.NewError("expression compilation failed")
	ErrExprEval    = lang.NewError("expression evaluation failed")
	ErrTask        = lang.NewError("task failed")
)

// ArgumentError reports an instruction invoked with fewer arguments than it
// requires. It matches [ErrArity] with errors.Is.
type ArgumentError struct {
	Instruction string
	Min         int
	Got         int
}

func (e *ArgumentError) Error() string {
	return e.Instruction + " requires at least " + strconv.Itoa(e.Min) +
		" arguments but receives " + strconv.Itoa(e.Got) + " instead"
}

// Is reports whether target is [ErrArity].
func (e *ArgumentError) Is(target error) bool {
	return target == ErrArity
}

// LogValue implements slog.LogValuer.
func (e *ArgumentError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", ErrArity.Error()),
		slog.String("instruction", e.Instruction),
		slog.Int("min", e.Min),
		slog.Int("got", e.Got),
	)
}
