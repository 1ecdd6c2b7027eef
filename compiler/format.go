package compiler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// FormatOptions controls the final formatting pass.
type FormatOptions struct {
	// Minify removes whitespace, shortens local identifiers, and rewrites
	// syntax into a more compact form.
	Minify bool
	// Charset is "utf8" to keep non-ASCII characters or "ascii" to escape
	// them. The default is utf8.
	Charset string
	// Target is the ECMAScript version to lower syntax to, such as "es5" or
	// "es2017". The default is esnext.
	Target string
}

// Formatter formats compiled JavaScript.
type Formatter interface {
	Format(ctx context.Context, raw string, opts FormatOptions) (string, error)
}

// FormatterFunc adapts a function to a [Formatter].
type FormatterFunc func(context.Context, string, FormatOptions) (string, error)

// Format implements [Formatter].
func (f FormatterFunc) Format(
	ctx context.Context,
	raw string,
	opts FormatOptions,
) (string, error) {
	return f(ctx, raw, opts)
}

// Identity is a [Formatter] that returns its input unchanged.
//
//nolint:gochecknoglobals
var Identity Formatter = FormatterFunc(
	func(_ context.Context, raw string, _ FormatOptions) (string, error) {
		return raw, nil
	},
)

// ESBuild is a [Formatter] that prints and optionally minifies its input
// with esbuild.
type ESBuild struct{}

//nolint:gochecknoglobals
var targets = map[string]api.Target{
	"":       api.ESNext,
	"esnext": api.ESNext,
	"es5":    api.ES5,
	"es2015": api.ES2015,
	"es2016": api.ES2016,
	"es2017": api.ES2017,
	"es2018": api.ES2018,
	"es2019": api.ES2019,
	"es2020": api.ES2020,
	"es2021": api.ES2021,
	"es2022": api.ES2022,
}

// Format implements [Formatter].
func (ESBuild) Format(
	ctx context.Context,
	raw string,
	opts FormatOptions,
) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", context.Cause(ctx)
	}

	target, ok := targets[strings.ToLower(strings.TrimSpace(opts.Target))]
	if !ok {
		return "", ErrFormat.Wrap(errors.New("unknown target " + strconv.Quote(opts.Target))).
			With(slog.String("target", opts.Target))
	}

	charset := api.CharsetUTF8
	if strings.EqualFold(opts.Charset, "ascii") {
		charset = api.CharsetASCII
	}

	result := api.Transform(raw, api.TransformOptions{
		Loader:            api.LoaderJS,
		Charset:           charset,
		Target:            target,
		MinifyWhitespace:  opts.Minify,
		MinifyIdentifiers: opts.Minify,
		MinifySyntax:      opts.Minify,
		LegalComments:     api.LegalCommentsNone,
	})

	if len(result.Errors) > 0 {
		msgs := make([]string, len(result.Errors))
		for i, msg := range result.Errors {
			msgs[i] = messageText(msg)
		}

		return "", ErrFormat.Wrap(errors.New(strings.Join(msgs, "; "))).
			With(slog.Int("errors", len(result.Errors)))
	}

	return string(result.Code), nil
}

// messageText renders an esbuild message as "line:column: text", with a
// 1-based column.
func messageText(msg api.Message) string {
	if msg.Location == nil {
		return msg.Text
	}

	return strconv.Itoa(msg.Location.Line) + ":" +
		strconv.Itoa(msg.Location.Column+1) + ": " + msg.Text
}

// Wrapper encloses the rendered body of a compile run in an entry function.
type Wrapper func(body string) string

// WrapAsync wraps body in an async entry function that is invoked
// immediately.
func WrapAsync(body string) string {
	return wrap("async function Main()", body)
}

// WrapSync wraps body in a plain entry function that is invoked immediately.
func WrapSync(body string) string {
	return wrap("function Main()", body)
}

func wrap(signature, body string) string {
	body = strings.ReplaceAll(strings.TrimRight(body, "\n"), "\n", "\n\t")

	return "\"use strict\";\n" + signature + " {\n\t" + body + "\n}\n\nMain(this);\n"
}
