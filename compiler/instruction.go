package compiler

import "context"

// Instruction compiles invocations of one kind into JavaScript.
//
// An invocation resolves to the first enabled instruction whose Name or ID
// equals the invocation's name.
type Instruction interface {
	Name() string
	ID() string
	Compile(ctx context.Context, task *Task) (string, error)
}

// Factory constructs an [Instruction] bound to a [Compiler].
type Factory func(*Compiler) Instruction

// Base carries the name and ID of an instruction. Embed it to satisfy the
// naming half of [Instruction].
type Base struct {
	name string
	id   string
}

// MakeBase returns a Base with the given name and ID.
func MakeBase(name, id string) Base {
	return Base{name: name, id: id}
}

// Name returns the invocation name, such as $print.
func (b Base) Name() string { return b.name }

// ID returns the stable identifier, such as $akorePrint.
func (b Base) ID() string { return b.id }

// Matches reports whether name refers to the instruction.
func (b Base) Matches(name string) bool {
	return name == b.name || name == b.id
}

// Func adapts a function to an [Instruction].
type Func struct {
	Base

	fn func(context.Context, *Task) (string, error)
}

// NewFunc returns an instruction that compiles with fn.
func NewFunc(
	name, id string,
	fn func(context.Context, *Task) (string, error),
) *Func {
	return &Func{Base: MakeBase(name, id), fn: fn}
}

// Compile implements [Instruction].
func (f *Func) Compile(ctx context.Context, task *Task) (string, error) {
	return f.fn(ctx, task)
}

// Status reports whether an instruction participates in compilation.
type Status int

const (
	Enabled Status = iota
	Disabled
)

func (s Status) String() string {
	if s == Disabled {
		return "DISABLED"
	}

	return "ENABLED"
}

func matches(inst Instruction, name string) bool {
	return inst.Name() == name || inst.ID() == name
}
