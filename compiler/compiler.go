package compiler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/ardnew/akore/lang"
	"github.com/ardnew/akore/log"
	"github.com/ardnew/akore/pkg"
)

// Compiler translates source text into JavaScript.
//
// A Compiler runs one compilation at a time. Calls made while a compilation
// is in progress are dropped with [ErrBusy] rather than queued. All state of
// a compilation is local to that run, so separate Compilers may run
// concurrently and share a [Registry].
type Compiler struct {
	busy atomic.Bool

	mu    sync.Mutex
	input string

	registry   *Registry
	factories  []Factory
	logger     log.Logger
	formatter  Formatter
	formatOpts FormatOptions
	header     string
	wrapper    Wrapper
	strict     bool
}

// Option configures a [Compiler].
type Option func(*Compiler)

// WithLogger sets the logger of the compiler and the lexer it runs.
func WithLogger(logger log.Logger) Option {
	return func(c *Compiler) { c.logger = logger }
}

// WithRegistry sets the registry the compiler resolves instructions from.
func WithRegistry(registry *Registry) Option {
	return func(c *Compiler) {
		if registry != nil {
			c.registry = registry
		}
	}
}

// WithInstructions constructs an instruction with each factory and adds it
// to the compiler's registry.
func WithInstructions(factories ...Factory) Option {
	return func(c *Compiler) { c.factories = append(c.factories, factories...) }
}

// WithFormatter sets the formatter applied to compiled output. A nil
// formatter leaves output unformatted.
func WithFormatter(formatter Formatter) Option {
	return func(c *Compiler) {
		if formatter == nil {
			formatter = Identity
		}

		c.formatter = formatter
	}
}

// WithFormatOptions sets the options passed to the formatter.
func WithFormatOptions(opts FormatOptions) Option {
	return func(c *Compiler) { c.formatOpts = opts }
}

// WithHeader sets the text prepended to formatted output.
func WithHeader(header string) Option {
	return func(c *Compiler) { c.header = header }
}

// WithWrapper sets the entry function wrapped around compiled statements.
func WithWrapper(wrapper Wrapper) Option {
	return func(c *Compiler) {
		if wrapper != nil {
			c.wrapper = wrapper
		}
	}
}

// WithStrict sets whether an instruction invoked with too few arguments
// aborts the compilation. When disabled, the statement is omitted like any
// other failing statement. Strict is enabled by default.
func WithStrict(strict bool) Option {
	return func(c *Compiler) { c.strict = strict }
}

// New returns a Compiler configured with opts.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		formatter: ESBuild{},
		header:    pkg.Header(),
		wrapper:   WrapAsync,
		strict:    true,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.registry == nil {
		c.registry = NewRegistry(WithRegistryLogger(c.logger))
	}

	for _, factory := range c.factories {
		c.registry.Add(factory(c))
	}

	c.factories = nil

	return c
}

// Registry returns the registry the compiler resolves instructions from.
func (c *Compiler) Registry() *Registry { return c.registry }

// Logger returns the compiler's logger.
func (c *Compiler) Logger() log.Logger { return c.logger }

// AddInstruction adds instructions to the compiler's registry.
func (c *Compiler) AddInstruction(insts ...Instruction) {
	c.registry.Add(insts...)
}

// EnableInstructions enables the named instructions and returns the number
// found.
func (c *Compiler) EnableInstructions(names ...string) int {
	return c.registry.Enable(names...)
}

// DisableInstructions disables the named instructions and returns the
// number found.
func (c *Compiler) DisableInstructions(names ...string) int {
	return c.registry.Disable(names...)
}

// LoadDir loads instruction manifests from dir into the compiler's registry
// and reports whether any instruction was added.
func (c *Compiler) LoadDir(ctx context.Context, dir string) (bool, error) {
	return c.registry.LoadDir(ctx, dir)
}

// Busy reports whether a compilation is in progress.
func (c *Compiler) Busy() bool { return c.busy.Load() }

// Input returns the source text of the next compilation.
func (c *Compiler) Input() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.input
}

// SetInput sets the source text of the next compilation. It has no effect
// while a compilation is in progress.
func (c *Compiler) SetInput(input string) error {
	if c.busy.Load() {
		c.logger.Warn("input ignored while compiling")

		return ErrBusy
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.input = input

	return nil
}

// Compile compiles the current input.
//
// A statement that fails to compile is logged and omitted from the output.
// Compile returns an error only when the input cannot be lexed, an
// instruction receives too few arguments in strict mode, ctx is done, or
// formatting fails.
func (c *Compiler) Compile(ctx context.Context) (string, error) {
	if !c.busy.CompareAndSwap(false, true) {
		c.logger.WarnContext(ctx, "compile ignored while compiling")

		return "", ErrBusy
	}
	defer c.busy.Store(false)

	return c.compile(ctx, c.Input())
}

// CompileString sets the input to source and compiles it.
func (c *Compiler) CompileString(ctx context.Context, source string) (string, error) {
	if !c.busy.CompareAndSwap(false, true) {
		c.logger.WarnContext(ctx, "compile ignored while compiling")

		return "", ErrBusy
	}
	defer c.busy.Store(false)

	c.mu.Lock()
	c.input = source
	c.mu.Unlock()

	return c.compile(ctx, source)
}

func (c *Compiler) compile(ctx context.Context, input string) (string, error) {
	began := time.Now()
	logger := c.logger.With(slog.String("run", uuid.NewString()))

	tokens, err := lang.Tokenize(ctx, input, lang.WithLogger(logger))
	if err != nil {
		logger.ErrorContext(ctx, "lex failed", slog.Any("error", err))

		return "", err
	}

	unit := NewUnit()
	view := c.registry.View()

	tasks := make([]*Task, 0, len(tokens))
	for i := range tokens {
		if task := newTask(view, &tokens[i], unit, logger); task != nil {
			tasks = append(tasks, task)
		}
	}

	for i, task := range tasks {
		out, err := task.Compile(ctx)

		switch {
		case err == nil:
			unit.Append(out)

		case ctx.Err() != nil:
			return "", context.Cause(ctx)

		case c.strict && errors.Is(err, ErrArity):
			logger.ErrorContext(ctx, "compile aborted",
				slog.Int("task", i),
				slog.String("token", task.Token.Total),
				slog.Any("error", err),
			)

			return "", err

		default:
			logger.ErrorContext(ctx, "task failed",
				slog.Int("task", i),
				slog.String("token", task.Token.Total),
				slog.Any("error", err),
			)
		}
	}

	out, err := c.formatter.Format(ctx, c.wrapper(unit.Render()), c.formatOpts)
	if err != nil {
		logger.ErrorContext(ctx, "format failed", slog.Any("error", err))

		return "", err
	}

	logger.DebugContext(ctx, "compiled",
		slog.Int("tokens", len(tokens)),
		slog.Int("tasks", len(tasks)),
		slog.Duration("elapsed", time.Since(began)),
	)

	return c.header + out, nil
}
