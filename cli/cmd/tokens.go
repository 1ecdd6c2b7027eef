package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/akore/lang"
	"github.com/ardnew/akore/log"
)

const tokenIndent = 2

// Tokens prints the token tree of a source file.
type Tokens struct {
	Format string `default:"yaml" enum:"yaml,json,tree" help:"Output format" short:"f"`

	File string `arg:"" default:"-" help:"Source file or '-' for stdin" name:"file" optional:""`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	return t.run(ctx, os.Stdin, os.Stdout)
}

func (t *Tokens) run(ctx context.Context, stdin io.Reader, stdout io.Writer) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	sources, err := readSources([]string{t.File}, stdin)
	if err != nil {
		return err
	}

	if len(sources) == 0 {
		return ErrNoSource
	}

	tokens, err := lang.Tokenize(ctx, sources[0].Text, lang.WithLogger(log.Default()))
	if err != nil {
		return err
	}

	out, err := marshalTokens(tokens, t.Format)
	if err != nil {
		return err
	}

	if _, err := stdout.Write(out); err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

// marshalTokens encodes tokens in the named format.
func marshalTokens(tokens []lang.Token, format string) ([]byte, error) {
	if tokens == nil {
		tokens = []lang.Token{}
	}

	switch format {
	case "yaml":
		out, err := yaml.MarshalWithOptions(tokens, yaml.Indent(tokenIndent))
		if err != nil {
			return nil, ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

		return out, nil

	case "json":
		out, err := json.MarshalIndent(tokens, "", strings.Repeat(" ", tokenIndent))
		if err != nil {
			return nil, ErrMarshal.Wrap(err).With(slog.String("format", format))
		}

		return append(out, '\n'), nil

	case "tree":
		var sb strings.Builder

		for depth, tok := range lang.Walk(tokens) {
			fmt.Fprintf(&sb, "%s%s %q\n",
				strings.Repeat(" ", depth*tokenIndent), tok.Name, tok.Total)
		}

		return []byte(sb.String()), nil

	default:
		return nil, ErrTokenFormat.With(slog.String("format", format))
	}
}
