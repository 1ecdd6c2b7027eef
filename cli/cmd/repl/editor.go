package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/log"
	"github.com/ardnew/akore/pkg"
)

const (
	defaultEditor = "vi"
	editPattern   = pkg.Name + "-repl-*.ak"
	editMode      = 0o600
)

// editCommand implements [tea.ExecCommand] for the edit-compile-retry loop.
// It writes the session source to a temp file, opens the user's editor, and
// compiles the result. On a compile error the user is asked whether to edit
// again; declining returns [ErrEditDeclined].
type editCommand struct {
	source   string
	compiler *compiler.Compiler
	ctxFunc  func() context.Context
	logger   log.Logger

	// Set by Run when the edit succeeds.
	edited string
	output string

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit, leaving
// edited empty.
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), editPattern)
	if err != nil {
		return err
	}

	path := f.Name()
	f.Close()

	defer os.Remove(path)

	content := c.source

	for {
		if err := os.WriteFile(path, []byte(content), editMode); err != nil {
			return err
		}

		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		content = string(data)
		if strings.TrimSpace(content) == "" {
			return nil
		}

		output, compileErr := c.compiler.CompileString(ctx, content)

		c.logger.TraceContext(ctx, "editor compile attempt",
			slog.Int("content_length", len(content)),
			slog.Bool("success", compileErr == nil),
		)

		if compileErr == nil {
			c.edited, c.output = content, output

			return nil
		}

		fmt.Fprintf(c.stderr, "\nCompile error: %s\n", compileErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor opens path in $EDITOR and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout, stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
