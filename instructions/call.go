package instructions

import (
	"context"
	"strings"

	"github.com/ardnew/akore/compiler"
)

// Call compiles $call[fn;args...] into a function call. Each argument after
// the function is condition-built.
type Call struct{ compiler.Base }

// NewCall returns the $call instruction.
func NewCall(*compiler.Compiler) compiler.Instruction {
	return &Call{compiler.MakeBase("$call", "$akoreCall")}
}

// Compile implements [compiler.Instruction].
func (i *Call) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	name, args, err := invocation(ctx, task)
	if err != nil {
		return "", err
	}

	return name + "(" + strings.Join(args, ", ") + ")", nil
}

// New compiles $new[Type;args...] into a constructor call.
type New struct{ compiler.Base }

// NewNew returns the $new instruction.
func NewNew(*compiler.Compiler) compiler.Instruction {
	return &New{compiler.MakeBase("$new", "$akoreNew")}
}

// Compile implements [compiler.Instruction].
func (i *New) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	name, args, err := invocation(ctx, task)
	if err != nil {
		return "", err
	}

	return "new " + name + "(" + strings.Join(args, ",") + ")", nil
}

func invocation(ctx context.Context, task *compiler.Task) (string, []string, error) {
	args, err := compiler.Validate(task, 1,
		typesAfter(len(task.Arguments), compiler.None, compiler.Condition)...)
	if err != nil {
		return "", nil, err
	}

	args, err = compiler.ResolveAll(ctx, args)
	if err != nil {
		return "", nil, err
	}

	values := compiler.Values(args)

	return strings.TrimSpace(values[0]), values[1:], nil
}

// Get compiles $get[a;b;...] into the member expression a.b. Each part is
// sanitized into an identifier.
type Get struct{ compiler.Base }

// NewGet returns the $get instruction.
func NewGet(*compiler.Compiler) compiler.Instruction {
	return &Get{compiler.MakeBase("$get", "$akoreGet")}
}

// Compile implements [compiler.Instruction].
func (i *Get) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	args, err := compiler.ResolveAll(ctx, task.Args())
	if err != nil {
		return "", err
	}

	parts := compiler.Values(args)
	for j, part := range parts {
		parts[j] = compiler.SanitizeIdentifier(part)
	}

	return strings.Join(parts, "."), nil
}
