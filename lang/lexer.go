package lang

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/akore/log"
)

// Lexer splits source text into instruction tokens.
//
// A Lexer is restartable: [Lexer.SetInput] replaces the input and rewinds
// the scan so that [Lexer.Tokenize] can be called again.
type Lexer struct {
	input  string
	pos    int
	logger log.Logger
}

// Option configures a [Lexer].
type Option func(*Lexer)

// WithLogger sets the logger used for trace output.
func WithLogger(logger log.Logger) Option {
	return func(l *Lexer) { l.logger = logger }
}

// NewLexer returns a Lexer over input.
func NewLexer(input string, opts ...Option) *Lexer {
	l := &Lexer{input: input}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Tokenize lexes input with a new [Lexer].
func Tokenize(ctx context.Context, input string, opts ...Option) ([]Token, error) {
	return NewLexer(input, opts...).Tokenize(ctx)
}

// TokenizeReader lexes all of r with a new [Lexer].
func TokenizeReader(
	ctx context.Context,
	r io.Reader,
	opts ...Option,
) ([]Token, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err)
	}

	return Tokenize(ctx, string(data), opts...)
}

// SetInput replaces the input and rewinds the scan.
func (l *Lexer) SetInput(input string) {
	l.input = input
	l.pos = 0
}

// Input returns the current input.
func (l *Lexer) Input() string { return l.input }

// Tokenize scans the whole input and returns its top-level tokens.
//
// An invocation whose brackets never close is a fatal error: Tokenize
// returns the tokens lexed so far together with an error matching
// [ErrUnclosed].
func (l *Lexer) Tokenize(ctx context.Context) ([]Token, error) {
	l.pos = 0

	var tokens []Token

	for !l.eof() {
		if l.peek() != Marker || l.previous() == Escape {
			l.pos++

			continue
		}

		if err := ctx.Err(); err != nil {
			return tokens, context.Cause(ctx)
		}

		tok, err := l.invocation(ctx)
		if err != nil {
			return tokens, err
		}

		l.logger.TraceContext(ctx, "token",
			slog.String("name", tok.Name),
			slog.Int("start", tok.Start),
			slog.Int("end", tok.End),
			slog.Int("arguments", len(tok.Arguments)),
		)

		tokens = append(tokens, tok)
	}

	return tokens, nil
}

// invocation lexes the token starting at the marker under the cursor.
func (l *Lexer) invocation(ctx context.Context) (Token, error) {
	start := l.pos
	end := start + 1

	for end < len(l.input) && isNameByte(l.input[end]) {
		end++
	}

	name := l.input[start:end]

	for end < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[end:])
		if !unicode.IsSpace(r) {
			break
		}

		end += size
	}

	if end >= len(l.input) || l.input[end] != '[' {
		l.pos = end

		return Token{
			Name:  name,
			Total: strings.TrimSpace(l.input[start:end]),
			Start: start,
			End:   end,
		}, nil
	}

	open := end

	closing, ok := matchBracket(l.input, open)
	if !ok {
		l.pos = len(l.input)

		return Token{}, ErrUnclosed.
			WithPosition(l.position(start)).
			With(slog.String("instruction", name))
	}

	args, err := splitArguments(ctx, l.input[open+1:closing], l.logger)
	if err != nil {
		return Token{}, err
	}

	l.pos = closing + 1

	return Token{
		Name:      name,
		Total:     strings.TrimSpace(l.input[start:l.pos]),
		Start:     start,
		End:       l.pos,
		Arguments: args,
	}, nil
}

// matchBracket returns the index of the bracket closing the one at open.
// A backslash consumes the following byte.
func matchBracket(s string, open int) (int, bool) {
	depth := 0

	for i := open; i < len(s); i++ {
		switch s[i] {
		case Escape:
			i++

		case '[':
			depth++

		case ']':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}

	return -1, false
}

// splitArguments splits the text between an invocation's brackets at
// semicolons outside nested brackets. Escapes are kept verbatim.
func splitArguments(ctx context.Context, s string, logger log.Logger) ([]Argument, error) {
	var (
		args  []string
		depth int
		from  int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case Escape:
			i++

		case '[':
			depth++

		case ']':
			depth--

		case ';':
			if depth == 0 {
				args = append(args, s[from:i])
				from = i + 1
			}
		}
	}

	// Only the final slot is dropped when blank. Interior blank slots keep
	// their index.
	if last := s[from:]; strings.TrimSpace(last) != "" {
		args = append(args, last)
	}

	if len(args) == 0 {
		return nil, nil
	}

	out := make([]Argument, len(args))

	for i, value := range args {
		out[i].Value = value

		if strings.IndexByte(value, Marker) < 0 {
			continue
		}

		nested, err := NewLexer(value, WithLogger(logger)).Tokenize(ctx)
		if err != nil {
			return nil, err
		}

		out[i].Nested = nested
	}

	return out, nil
}

func (l *Lexer) eof() bool { return l.pos >= len(l.input) }

func (l *Lexer) peek() byte {
	if l.eof() {
		return 0
	}

	return l.input[l.pos]
}

func (l *Lexer) previous() byte {
	if l.pos == 0 {
		return 0
	}

	return l.input[l.pos-1]
}

// position converts a byte offset into a line and column.
func (l *Lexer) position(offset int) Position {
	before := l.input[:offset]
	line := strings.Count(before, "\n") + 1
	col := utf8.RuneCountInString(before[strings.LastIndexByte(before, '\n')+1:]) + 1

	return Position{Offset: offset, Line: line, Column: col}
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
