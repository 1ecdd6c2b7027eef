package instructions

import (
	"context"

	"github.com/ardnew/akore/compiler"
)

// If compiles $if[condition;then;else] into an if statement. The else branch
// is optional.
type If struct{ compiler.Base }

// NewIf returns the $if instruction.
func NewIf(*compiler.Compiler) compiler.Instruction {
	return &If{compiler.MakeBase("$if", "$akoreIf")}
}

// Compile implements [compiler.Instruction].
func (i *If) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	args, err := compiler.Validate(task, 2,
		compiler.Condition, compiler.None, compiler.None)
	if err != nil {
		return "", err
	}

	args, err = compiler.ResolveAll(ctx, args)
	if err != nil {
		return "", err
	}

	cond := indent(compiler.Arg(args, 0))
	then := indent(compiler.Arg(args, 1))
	out := "if (" + cond + ") {\n\t" + then + "\n}"

	if otherwise := indent(compiler.Arg(args, 2)); otherwise != "" {
		out += " else {\n\t" + otherwise + "\n}"
	}

	return out, nil
}

// For compiles $for[init;condition;step;body] into a for loop.
type For struct{ compiler.Base }

// NewFor returns the $for instruction.
func NewFor(*compiler.Compiler) compiler.Instruction {
	return &For{compiler.MakeBase("$for", "$akoreFor")}
}

// Compile implements [compiler.Instruction].
func (i *For) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	args, err := compiler.Validate(task, 0,
		compiler.None, compiler.Condition, compiler.None, compiler.None)
	if err != nil {
		return "", err
	}

	args, err = compiler.ResolveAll(ctx, args)
	if err != nil {
		return "", err
	}

	return "for (" + compiler.Arg(args, 0) + ";" + compiler.Arg(args, 1) + ";" +
		compiler.Arg(args, 2) + ") {" + compiler.Arg(args, 3) + "}", nil
}

// While compiles $while[condition;body] into a while loop.
type While struct{ compiler.Base }

// NewWhile returns the $while instruction.
func NewWhile(*compiler.Compiler) compiler.Instruction {
	return &While{compiler.MakeBase("$while", "$akoreWhile")}
}

// Compile implements [compiler.Instruction].
func (i *While) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	args, err := compiler.Validate(task, 0, compiler.Condition, compiler.None)
	if err != nil {
		return "", err
	}

	args, err = compiler.ResolveAll(ctx, args)
	if err != nil {
		return "", err
	}

	return "while (" + compiler.Arg(args, 0) + ") {" + compiler.Arg(args, 1) + "}", nil
}
