package instructions

import (
	"context"
	"strings"

	"github.com/ardnew/akore/compiler"
)

// Export compiles $export[name;value] into an assignment to exports, or to
// exports.name when name is given.
type Export struct{ compiler.Base }

// NewExport returns the $export instruction.
func NewExport(*compiler.Compiler) compiler.Instruction {
	return &Export{compiler.MakeBase("$export", "$akoreExport")}
}

// Compile implements [compiler.Instruction].
func (i *Export) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	args, err := compiler.ResolveAll(ctx, task.Args())
	if err != nil {
		return "", err
	}

	target := "exports"
	if name := strings.TrimSpace(compiler.Arg(args, 0)); name != "" {
		target += "." + name
	}

	return target + " = " + compiler.Arg(args, 1), nil
}

// Import compiles $import[module] into a reference to the module, which is
// required under an identifier derived from its name.
//
// $import[module;a, b as c] instead assigns the listed keys of the module
// to variables, binding b to c, and compiles to nothing.
type Import struct{ compiler.Base }

// NewImport returns the $import instruction.
func NewImport(*compiler.Compiler) compiler.Instruction {
	return &Import{compiler.MakeBase("$import", "$akoreImport")}
}

// Compile implements [compiler.Instruction].
func (i *Import) Compile(ctx context.Context, task *compiler.Task) (string, error) {
	args, err := compiler.Validate(task, 1, compiler.None, compiler.None)
	if err != nil {
		return "", err
	}

	args, err = compiler.ResolveAll(ctx, args)
	if err != nil {
		return "", err
	}

	module := strings.TrimSpace(compiler.Arg(args, 0))

	key := strings.TrimSpace(compiler.Arg(args, 1))
	if key == "" || key == module {
		task.SetImport(module)

		return compiler.SanitizeIdentifier(module), nil
	}

	var keys []string

	for k := range strings.SplitSeq(key, ",") {
		if strings.TrimSpace(k) != "" {
			keys = append(keys, k)
		}
	}

	task.SetImport(module, keys...)

	return "", nil
}
