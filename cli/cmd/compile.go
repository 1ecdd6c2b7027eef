package cmd

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"

	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/instructions"
	"github.com/ardnew/akore/log"
)

// compileFlags are the flags shared by the commands that compile source.
type compileFlags struct {
	Instructions []string `default:"${instructions}" help:"Directories of instruction manifests" placeholder:"DIR" type:"path"`
	Disable      []string `                          help:"Disable instructions by name or id"  placeholder:"NAME" short:"d"`
	Strict       bool     `default:"true"            help:"Abort when an instruction receives too few arguments" negatable:""`
}

// registry returns a registry holding the built-in instructions followed by
// those loaded from the manifest directories, with the disabled instructions
// switched off. Missing manifest directories are skipped.
func (f compileFlags) registry(
	ctx context.Context,
	logger log.Logger,
) (*compiler.Registry, error) {
	reg := compiler.NewRegistry(compiler.WithRegistryLogger(logger))

	// Builtin factories register into reg through a throwaway compiler.
	compiler.New(
		compiler.WithLogger(logger),
		compiler.WithRegistry(reg),
		compiler.WithInstructions(instructions.Builtin()...),
	)

	for _, dir := range f.Instructions {
		found, err := reg.LoadDir(ctx, dir)
		if errors.Is(err, fs.ErrNotExist) {
			logger.DebugContext(ctx, "instruction directory missing",
				slog.String("dir", dir),
			)

			continue
		}

		if err != nil {
			return nil, ErrInstructions.Wrap(err).With(slog.String("dir", dir))
		}

		logger.DebugContext(ctx, "instruction directory",
			slog.String("dir", dir),
			slog.Bool("found", found),
		)
	}

	if n := reg.Disable(f.Disable...); n < len(f.Disable) {
		logger.WarnContext(ctx, "unknown instructions not disabled",
			slog.Any("names", f.Disable),
			slog.Int("disabled", n),
		)
	}

	return reg, nil
}

// compiler returns a compiler reading from reg with the shared flags
// applied ahead of opts.
func (f compileFlags) compiler(
	reg *compiler.Registry,
	logger log.Logger,
	opts ...compiler.Option,
) *compiler.Compiler {
	return compiler.New(append([]compiler.Option{
		compiler.WithLogger(logger),
		compiler.WithRegistry(reg),
		compiler.WithStrict(f.Strict),
	}, opts...)...)
}
