package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/log"
	"github.com/ardnew/akore/sandbox"
)

// sandboxTarget is the newest syntax the sandbox VM executes.
const sandboxTarget = "es5"

// Run compiles a source file and executes it in a sandbox.
type Run struct {
	Compile compileFlags `embed:""`

	Timeout time.Duration `default:"5s" help:"Maximum run time of the script (0 disables the limit)"`
	Exports bool          `             help:"Print the exported values as YAML after the console output"`
	Script  bool          `             help:"Print the compiled script before running it"`

	File string `arg:"" default:"-" help:"Source file or '-' for stdin" name:"file" optional:""`
}

// Run executes the run command.
func (r *Run) Run(ctx context.Context) error {
	return r.run(ctx, os.Stdin, os.Stdout, os.Stderr)
}

func (r *Run) run(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	sources, err := readSources([]string{r.File}, stdin)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		return ErrNoSource
	}

	reg, err := r.Compile.registry(ctx, logger)
	if err != nil {
		return err
	}

	c := r.Compile.compiler(reg, logger,
		compiler.WithWrapper(compiler.WrapSync),
		compiler.WithFormatOptions(compiler.FormatOptions{Target: sandboxTarget}),
	)

	code, err := c.CompileString(ctx, sources[0].Text)
	if err != nil {
		return ErrCompile.Wrap(err).With(slog.String("source", sources[0].Path))
	}

	if r.Script {
		if _, err := io.WriteString(stdout, code); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	result, err := sandbox.Run(ctx, code,
		sandbox.WithTimeout(r.Timeout),
		sandbox.WithLogger(logger),
	)

	// Console output written before a failure is still shown.
	if werr := writeConsole(result.Console, stdout, stderr); werr != nil {
		return werr
	}

	if err != nil {
		return ErrRun.Wrap(err).With(slog.String("source", sources[0].Path))
	}

	if r.Exports && len(result.Exports) > 0 {
		out, err := yaml.Marshal(result.Exports)
		if err != nil {
			return ErrMarshal.Wrap(err)
		}

		if _, err := stdout.Write(out); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}

// writeConsole writes warnings and errors to stderr and everything else to
// stdout, one line per console call.
func writeConsole(lines []sandbox.Line, stdout, stderr io.Writer) error {
	for _, line := range lines {
		w := stdout
		if line.Level == "warn" || line.Level == "error" {
			w = stderr
		}

		if _, err := io.WriteString(w, line.Text+"\n"); err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}
