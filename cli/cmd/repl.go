package cmd

import (
	"context"

	"github.com/ardnew/akore/cli/cmd/repl"
	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/log"
	"github.com/ardnew/akore/pkg"
)

// Repl starts an interactive session.
type Repl struct {
	Compile compileFlags `embed:""`

	Minify bool `help:"Minify the output"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) error {
	logger := log.Default()

	reg, err := r.Compile.registry(ctx, logger)
	if err != nil {
		return err
	}

	return repl.Run(ctx, reg, kongVar(ctx, CacheIdentifier, pkg.CacheDir()), logger,
		compiler.WithStrict(r.Compile.Strict),
		compiler.WithFormatOptions(compiler.FormatOptions{Minify: r.Minify}),
	)
}
