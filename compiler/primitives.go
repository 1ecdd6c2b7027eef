package compiler

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ardnew/akore/lang"
)

//nolint:gochecknoglobals
var (
	booleanWords = map[string]string{
		"false": "false",
		"no":    "false",
		"true":  "true",
		"yes":   "true",
	}

	falsy = map[string]struct{}{
		"False": {}, "false": {}, "No": {}, "no": {}, "0": {},
		"''": {}, "``": {}, `""`: {},
	}

	// operators are matched longest first.
	operators = []string{
		"!==", "!=", "===", "&&", "||", "==", ">=", "<=", "<", ">", "(", ")", "!",
	}

	decimal = regexp.MustCompile(
		`^[+-]?(Infinity|(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?)$`,
	)
	radix = regexp.MustCompile(`^0([xX][0-9a-fA-F]+|[bB][01]+|[oO][0-7]+)$`)

	identifierInvalid = regexp.MustCompile(`[^a-zA-Z0-9_]`)
)

// IsNumeric reports whether s converts to a number in JavaScript.
// Surrounding whitespace is ignored and blank text converts to zero.
func IsNumeric(s string) bool {
	s = strings.TrimFunc(s, unicode.IsSpace)

	return s == "" || decimal.MatchString(s) || radix.MatchString(s)
}

// SanitizeIdentifier turns s into a valid JavaScript identifier by replacing
// every character outside [a-zA-Z0-9_] with an underscore and prefixing a
// leading digit with an underscore.
func SanitizeIdentifier(s string) string {
	s = identifierInvalid.ReplaceAllString(strings.TrimSpace(s), "_")

	if s != "" && s[0] >= '0' && s[0] <= '9' {
		s = "_" + s
	}

	return s
}

// BuildString returns arg with its value built as a string literal by
// [BuildStringValue].
func BuildString(arg Argument) Argument {
	arg.Value, arg.slots = buildString(arg.Value, arg.slots)

	return arg
}

// BuildStringValue builds input, which is arg's value or a part of it, as a
// JavaScript expression:
//
//   - blank text is empty
//   - true, false, yes, and no are boolean literals
//   - numeric text is returned trimmed
//   - the raw text of exactly one nested task is returned unchanged so that
//     it can be substituted later
//
// Any other text becomes a string literal. Each nested task becomes the
// placeholder ${<raw text>}, escapes in the text are consumed, and
// characters significant to JavaScript are escaped. Text already enclosed in
// single or double quotes, or containing a placeholder, becomes a template
// literal, and anything else a double-quoted string.
//
// Nested tasks are found in the first occurrence of input within arg's
// value.
func BuildStringValue(arg Argument, input string) string {
	var slots []slot

	if from := strings.Index(arg.Value, input); from >= 0 {
		slots = within(arg.slots, from, from+len(input))
	}

	built, _ := buildString(input, slots)

	return built
}

// buildString implements [BuildStringValue] for input containing the given
// slots, and returns the slots of the built text.
func buildString(input string, slots []slot) (string, []slot) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}

	if b, ok := booleanWords[input]; ok {
		return b, nil
	}

	if IsNumeric(input) {
		return strings.TrimSpace(input), nil
	}

	if len(slots) == 1 && slots[0].start == 0 && slots[0].end == len(input) {
		return input, slots
	}

	body, quoted := unquote(input)
	if quoted {
		slots = within(slots, 1, len(input)-1)
	}

	q := byte('"')
	if quoted || len(slots) > 0 {
		q = '`'
	}

	var (
		sb  strings.Builder
		out []slot
	)

	sb.Grow(len(body) + 2)
	sb.WriteByte(q)

	for i := 0; i < len(body); {
		if len(slots) > 0 && slots[0].start == i {
			sb.WriteString("${")

			start := sb.Len()
			sb.WriteString(body[slots[0].start:slots[0].end])
			out = append(out, slot{start: start, end: sb.Len(), task: slots[0].task})

			sb.WriteString("}")

			i = slots[0].end
			slots = slots[1:]

			continue
		}

		if body[i] == lang.Escape && i+1 < len(body) {
			i++
		}

		r, size := utf8.DecodeRuneInString(body[i:])
		writeLiteral(&sb, q, r, literalBraceFollows(body, i+size))
		i += size
	}

	sb.WriteByte(q)

	return sb.String(), out
}

// BuildCondition returns arg with its value split into operands and
// operators. Operands outside brackets are built with [BuildStringValue].
func BuildCondition(arg Argument) Argument {
	var (
		cond  condition
		depth int
		from  int
	)

	value := arg.Value

	for i := 0; i < len(value); {
		if depth == 0 {
			if op := operatorAt(value, i); op != "" {
				cond.operand(value, from, i, arg.slots)
				cond.WriteString(" " + op)

				i += len(op)
				from = i

				continue
			}
		}

		switch c := value[i]; {
		case c == '[':
			depth++

		case c == ']' && depth > 0:
			depth--

		case c == lang.Escape:
			if i+1 == len(value) {
				// A trailing escape escapes nothing and is dropped.
				cond.operand(value, from, i, arg.slots)
				from = len(value)
				i++

				continue
			}

			// Keep the escape for the string builder to consume.
			_, size := utf8.DecodeRuneInString(value[i+1:])
			i += 1 + size

			continue
		}

		i++
	}

	cond.operand(value, from, len(value), arg.slots)

	built := cond.String()
	trimmed := strings.TrimLeft(built, " ")

	arg.Value = strings.TrimSpace(trimmed)
	arg.slots = shifted(cond.slots, len(trimmed)-len(built))

	return arg
}

// condition accumulates a built condition and the slots within it.
type condition struct {
	strings.Builder

	slots []slot
}

// operand writes value[from:to] string-built and preceded by a space, unless
// it is blank.
func (c *condition) operand(value string, from, to int, slots []slot) {
	if from >= to {
		return
	}

	raw := value[from:to]
	trimmed := strings.TrimLeftFunc(raw, unicode.IsSpace)
	from += len(raw) - len(trimmed)
	trimmed = strings.TrimRightFunc(trimmed, unicode.IsSpace)

	built, inner := buildString(trimmed, within(slots, from, from+len(trimmed)))
	if built == "" {
		return
	}

	c.WriteString(" ")
	c.slots = append(c.slots, shifted(inner, c.Len())...)
	c.WriteString(built)
}

// BuildNumber returns arg unchanged if its value is numeric, or with the
// value NaN otherwise.
func BuildNumber(arg Argument) Argument {
	if !IsNumeric(arg.Value) {
		arg.Value = "NaN"
		arg.slots = nil
	}

	return arg
}

// BuildBoolean returns arg with its value replaced by false for one of the
// falsy spellings, or true otherwise.
func BuildBoolean(arg Argument) Argument {
	if _, ok := falsy[arg.Value]; ok {
		arg.Value = "false"
	} else {
		arg.Value = "true"
	}

	arg.slots = nil

	return arg
}

func operatorAt(s string, i int) string {
	for _, op := range operators {
		if strings.HasPrefix(s[i:], op) {
			return op
		}
	}

	return ""
}

func unquote(s string) (string, bool) {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first == last && (first == '\'' || first == '"') {
			return s[1 : len(s)-1], true
		}
	}

	return s, false
}

// literalBraceFollows reports whether the literal character at s[i] is an
// opening brace, looking through an escape.
func literalBraceFollows(s string, i int) bool {
	if i < len(s) && s[i] == lang.Escape {
		i++
	}

	return i < len(s) && s[i] == '{'
}

// writeLiteral writes r escaped for a string literal delimited by q.
func writeLiteral(sb *strings.Builder, q byte, r rune, braceNext bool) {
	switch {
	case r == '\\':
		sb.WriteString(`\\`)

	case q == '`' && r == '`':
		sb.WriteString("\\`")

	case q == '`' && r == '$' && braceNext:
		sb.WriteString(`\$`)

	case q == '"' && r == '"':
		sb.WriteString(`\"`)

	case q == '"' && r == '\n':
		sb.WriteString(`\n`)

	case q == '"' && r == '\r':
		sb.WriteString(`\r`)

	default:
		sb.WriteRune(r)
	}
}
