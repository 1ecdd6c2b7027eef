package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ardnew/akore/cache"
	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/log"
	"github.com/ardnew/akore/pkg"
)

const (
	outputExt     = ".js"
	outputDirMode = 0o755
	outputMode    = 0o644
)

// Build compiles source files to JavaScript.
type Build struct {
	Compile compileFlags `embed:""`

	Output  string `                  help:"Output file, or directory when compiling several files" short:"o"`
	Minify  bool   `                  help:"Minify the output"`
	Sync    bool   `                  help:"Wrap statements in a plain function instead of an async one"`
	Target  string `default:"esnext"  enum:"esnext,es5,es2015,es2016,es2017,es2018,es2019,es2020,es2021,es2022" help:"ECMAScript version to lower syntax to"`
	Charset string `default:"utf8"    enum:"utf8,ascii"                                                          help:"Keep or escape non-ASCII characters"`
	Cache   bool   `                  help:"Reuse cached output of unchanged sources"                            negatable:""`

	Files []string `arg:"" default:"-" help:"Source files or '-' for stdin" name:"file" optional:""`
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context) error {
	return b.run(ctx, os.Stdin, os.Stdout)
}

func (b *Build) run(ctx context.Context, stdin io.Reader, stdout io.Writer) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	logger := log.Default()

	sources, err := readSources(b.Files, stdin)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		return ErrNoSource
	}

	var names []string

	if b.Output != "" && b.outputIsDir(len(sources)) {
		if names, err = outputNames(sources); err != nil {
			return err
		}
	}

	reg, err := b.Compile.registry(ctx, logger)
	if err != nil {
		return err
	}

	var store *cache.Cache
	if b.Cache {
		dir := filepath.Join(kongVar(ctx, CacheIdentifier, pkg.CacheDir()), "build")
		store = cache.New(dir, cache.WithLogger(logger))
	}

	fingerprint := b.fingerprint(reg.View())
	outputs := make([]string, len(sources))

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(runtime.GOMAXPROCS(0))

	for i, src := range sources {
		grp.Go(func() error {
			out, err := b.compile(gctx, reg, store, src, fingerprint, logger)
			if err != nil {
				return err
			}

			outputs[i] = out

			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return err
	}

	return b.write(sources, names, outputs, stdout)
}

// compile compiles one source with its own compiler reading from reg.
func (b *Build) compile(
	ctx context.Context,
	reg *compiler.Registry,
	store *cache.Cache,
	src Source,
	fingerprint []string,
	logger log.Logger,
) (string, error) {
	logger = logger.With(slog.String("source", src.Path))

	var key string

	if store != nil {
		key = cache.Key(src.Text, fingerprint...)

		entry, ok, err := store.Get(key)
		if err != nil {
			logger.WarnContext(ctx, "ignoring cache entry", slog.Any("error", err))
		}

		if ok {
			return entry.Output, nil
		}
	}

	wrapper := compiler.WrapAsync
	if b.Sync {
		wrapper = compiler.WrapSync
	}

	c := b.Compile.compiler(reg, logger,
		compiler.WithWrapper(wrapper),
		compiler.WithFormatOptions(compiler.FormatOptions{
			Minify:  b.Minify,
			Charset: b.Charset,
			Target:  b.Target,
		}),
	)

	out, err := c.CompileString(ctx, src.Text)
	if err != nil {
		return "", ErrCompile.Wrap(err).With(slog.String("source", src.Path))
	}

	if store != nil {
		if err := store.Put(key, cache.Entry{Output: out}); err != nil {
			logger.WarnContext(ctx, "cache entry not written", slog.Any("error", err))
		}
	}

	return out, nil
}

// fingerprint describes everything besides the source text that affects
// compiled output.
func (b *Build) fingerprint(view compiler.View) []string {
	fp := []string{
		"strict=" + strconv.FormatBool(b.Compile.Strict),
		"minify=" + strconv.FormatBool(b.Minify),
		"sync=" + strconv.FormatBool(b.Sync),
		"target=" + b.Target,
		"charset=" + b.Charset,
	}

	for _, name := range view.Names() {
		inst, _ := view.Lookup(name)

		desc := inst.Name() + "=" + inst.ID()
		if m, ok := inst.(*compiler.ManifestInstruction); ok {
			desc += fmt.Sprintf("%+v", m.Manifest())
		}

		fp = append(fp, desc)
	}

	return fp
}

// write writes outputs to stdout, to the output file, or to the named files
// in the output directory.
func (b *Build) write(sources []Source, names, outputs []string, stdout io.Writer) error {
	if b.Output == "" {
		for i, out := range outputs {
			if _, err := io.WriteString(stdout, out); err != nil {
				return ErrWriteOutput.Wrap(err).With(slog.String("source", sources[i].Path))
			}
		}

		return nil
	}

	if names == nil {
		return writeOutput(b.Output, outputs[0])
	}

	if err := os.MkdirAll(b.Output, outputDirMode); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("path", b.Output))
	}

	for i, name := range names {
		if err := writeOutput(filepath.Join(b.Output, name), outputs[i]); err != nil {
			return err
		}
	}

	return nil
}

func (b *Build) outputIsDir(count int) bool {
	if count > 1 || strings.HasSuffix(b.Output, string(filepath.Separator)) {
		return true
	}

	info, err := os.Stat(b.Output)

	return err == nil && info.IsDir()
}

// outputNames returns the output file name of each source, failing when two
// sources would write the same file.
func outputNames(sources []Source) ([]string, error) {
	names := make([]string, len(sources))
	seen := make(map[string]string, len(sources))

	for i, src := range sources {
		name := outputName(src.Path)

		if prev, ok := seen[name]; ok {
			return nil, ErrOutputConflict.With(
				slog.String("output", name),
				slog.String("source", prev),
				slog.String("conflict", src.Path),
			)
		}

		seen[name] = src.Path
		names[i] = name
	}

	return names, nil
}

// outputName returns the file name of the script compiled from path.
func outputName(path string) string {
	if path == stdinSource {
		return "stdin" + outputExt
	}

	base := filepath.Base(path)

	return strings.TrimSuffix(base, filepath.Ext(base)) + outputExt
}

func writeOutput(path, output string) error {
	if err := os.WriteFile(path, []byte(output), outputMode); err != nil {
		return ErrWriteOutput.Wrap(err).With(slog.String("path", path))
	}

	return nil
}
