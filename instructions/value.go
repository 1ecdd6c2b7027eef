package instructions

import (
	"context"
	"strings"

	"github.com/ardnew/akore/compiler"
)

// Print compiles $print[values...] into a console.log call.
type Print struct{ compiler.Base }

// NewPrint returns the $print instruction.
func NewPrint(*compiler.Compiler) compiler.Instruction {
	return &Print{compiler.MakeBase("$print", "$akorePrint")}
}

// Compile implements [compiler.Instruction].
func (i *Print) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	values, err := stringArgs(ctx, task)
	if err != nil {
		return "", err
	}

	return "console.log(" + strings.Join(values, ",") + ")", nil
}

// Sum compiles $sum[values...] into an addition.
type Sum struct{ compiler.Base }

// NewSum returns the $sum instruction.
func NewSum(*compiler.Compiler) compiler.Instruction {
	return &Sum{compiler.MakeBase("$sum", "$akoreSum")}
}

// Compile implements [compiler.Instruction].
func (i *Sum) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	values, err := stringArgs(ctx, task)
	if err != nil {
		return "", err
	}

	return strings.Join(values, "+"), nil
}

// stringArgs string-builds and resolves every argument of task.
func stringArgs(ctx context.Context, task *compiler.Task) ([]string, error) {
	args, err := compiler.Validate(task, 0)
	if err != nil {
		return nil, err
	}

	args, err = compiler.ResolveAll(ctx, args)
	if err != nil {
		return nil, err
	}

	return compiler.Values(args), nil
}

// Var compiles $var[key;value] into an assignment, or $var[key] into a
// reference. The root of a dotted key is declared as a variable.
type Var struct{ compiler.Base }

// NewVar returns the $var instruction.
func NewVar(*compiler.Compiler) compiler.Instruction {
	return &Var{compiler.MakeBase("$var", "$akoreVar")}
}

// Compile implements [compiler.Instruction].
func (i *Var) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	args, err := compiler.Validate(task, 1, compiler.None, compiler.Text)
	if err != nil {
		return "", err
	}

	args, err = compiler.ResolveAll(ctx, args)
	if err != nil {
		return "", err
	}

	parts := strings.Split(compiler.Arg(args, 0), ".")
	for j, part := range parts {
		parts[j] = compiler.SanitizeIdentifier(part)
	}

	task.SetVariable(parts[0])

	key := strings.Join(parts, ".")

	if value := compiler.Arg(args, 1); value != "" {
		return key + " = " + value, nil
	}

	return key, nil
}

// Escape compiles $escape[text] into the raw text between its brackets,
// which is never interpreted.
type Escape struct{ compiler.Base }

// NewEscape returns the $escape instruction.
func NewEscape(*compiler.Compiler) compiler.Instruction {
	return &Escape{compiler.MakeBase("$escape", "$akoreEscape")}
}

// Compile implements [compiler.Instruction].
func (i *Escape) Compile(_ context.Context, task *compiler.Task) (string, error) {
	total := task.Token.Total

	open := strings.IndexByte(total, '[')
	if open < 0 || !strings.HasSuffix(total, "]") {
		return "", nil
	}

	return total[open+1 : len(total)-1], nil
}
