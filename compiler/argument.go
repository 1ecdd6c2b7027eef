package compiler

import (
	"context"
	"strings"

	"github.com/ardnew/akore/lang"
)

// ArgumentType selects the primitive [Validate] applies to an argument.
type ArgumentType int

const (
	Any ArgumentType = iota
	Text
	Number
	RegExp
	Object
	Array
	Condition
	None
	Boolean
)

//nolint:gochecknoglobals
var argumentTypeName = [...]string{
	Any:       "any",
	Text:      "text",
	Number:    "number",
	RegExp:    "regexp",
	Object:    "object",
	Array:     "array",
	Condition: "condition",
	None:      "none",
	Boolean:   "boolean",
}

func (t ArgumentType) String() string {
	if t >= 0 && int(t) < len(argumentTypeName) {
		return argumentTypeName[t]
	}

	return "unknown"
}

// ParseArgumentType returns the type named s.
func ParseArgumentType(s string) (ArgumentType, bool) {
	s = strings.ToLower(strings.TrimSpace(s))

	for i, name := range argumentTypeName {
		if name == s {
			return ArgumentType(i), true
		}
	}

	return Any, false
}

// Argument is one argument slot of a [Task].
//
// Value starts as the raw argument text and is replaced by each primitive
// applied to it. Primitives return a new Argument, so the token it was
// built from is never modified. The primitives also track where the raw
// text of each nested task sits in Value; replacing Value by other means
// leaves those tasks unresolved.
type Argument struct {
	Token  *lang.Argument
	Value  string
	Nested []*Task

	slots []slot
}

// slot is the span of a nested task's raw text within an argument value.
type slot struct {
	start, end int
	task       *Task
}

// within returns the slots lying entirely in [from, to), rebased to from.
func within(slots []slot, from, to int) []slot {
	var out []slot

	for _, s := range slots {
		if s.start >= from && s.end <= to {
			out = append(out, slot{start: s.start - from, end: s.end - from, task: s.task})
		}
	}

	return out
}

// shifted returns slots moved right by n bytes.
func shifted(slots []slot, n int) []slot {
	out := make([]slot, len(slots))

	for i, s := range slots {
		out[i] = slot{start: s.start + n, end: s.end + n, task: s.task}
	}

	return out
}

// Values returns the current value of each argument.
func Values(args []Argument) []string {
	values := make([]string, len(args))

	for i, arg := range args {
		values[i] = arg.Value
	}

	return values
}

// Arg returns the value of args[i], or the empty string when the slot does
// not exist.
func Arg(args []Argument, i int) string {
	if i < 0 || i >= len(args) {
		return ""
	}

	return args[i].Value
}

// Validate checks that task has at least min arguments and returns its
// arguments with the primitive for each position applied. Positions beyond
// types are string-built.
func Validate(task *Task, min int, types ...ArgumentType) ([]Argument, error) {
	args := task.Args()

	if len(args) < min {
		return args, &ArgumentError{
			Instruction: task.Instruction.Name(),
			Min:         min,
			Got:         len(args),
		}
	}

	for i := range args {
		kind := Any
		if i < len(types) {
			kind = types[i]
		}

		args[i] = Build(kind, args[i])
	}

	return args, nil
}

// Build applies the primitive for kind to arg.
func Build(kind ArgumentType, arg Argument) Argument {
	switch kind {
	case Number:
		return BuildNumber(arg)
	case Condition:
		return BuildCondition(arg)
	case Boolean:
		return BuildBoolean(arg)
	case None:
		return arg
	default:
		return BuildString(arg)
	}
}

// ResolveNested compiles every task nested in arg, in order, and replaces
// the raw text of each one in the current value with its output. Text that
// only looks like an invocation, because it is escaped or names no enabled
// instruction, is left alone.
func ResolveNested(ctx context.Context, arg Argument) (Argument, error) {
	value := arg.Value
	outputs := make([]string, len(arg.slots))

	for i, s := range arg.slots {
		out, err := s.task.Compile(ctx)
		if err != nil {
			return arg, err
		}

		outputs[i] = out
	}

	for i := len(arg.slots) - 1; i >= 0; i-- {
		s := arg.slots[i]
		if s.end > len(value) || value[s.start:s.end] != s.task.Token.Total {
			continue
		}

		value = value[:s.start] + outputs[i] + value[s.end:]
	}

	arg.Value = value
	arg.slots = nil

	return arg, nil
}

// ResolveAll applies [ResolveNested] to each argument in order.
func ResolveAll(ctx context.Context, args []Argument) ([]Argument, error) {
	out := make([]Argument, len(args))

	for i, arg := range args {
		resolved, err := ResolveNested(ctx, arg)
		if err != nil {
			return nil, err
		}

		out[i] = resolved
	}

	return out, nil
}
