package repl

import (
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/lang"
)

// builtinParams names the arguments of the built-in instructions by id.
// A leading "..." marks a parameter that repeats.
var builtinParams = map[string][]string{
	"$akoreCall":   {"function", "...arguments"},
	"$akoreGet":    {"object", "...properties"},
	"$akoreIf":     {"condition", "then", "else"},
	"$akoreEscape": {"text"},
	"$akoreFor":    {"init", "condition", "step", "body"},
	"$akoreWhile":  {"condition", "body"},
	"$akoreSum":    {"...values"},
	"$akoreExport": {"name", "value"},
	"$akoreImport": {"module", "keys"},
	"$akoreNew":    {"type", "...arguments"},
	"$akorePrint":  {"...values"},
	"$akoreVar":    {"name", "value"},
}

var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
)

// invocation is the instruction invocation enclosing the cursor.
type invocation struct {
	name     string // instruction name including the marker
	argIndex int    // 0-based index of the argument holding the cursor
	inCall   bool   // whether the cursor is inside an argument list
}

// detectInvocation finds the innermost unclosed argument list before the
// cursor and the argument index the cursor is in. Escaped brackets and
// separators are ignored.
func detectInvocation(input string, cursor int) invocation {
	cursor = min(max(cursor, 0), len(input))

	// Stack of open bracket offsets and the argument index within each.
	type frame struct{ open, arg int }

	var stack []frame

	for i := 0; i < cursor; i++ {
		switch input[i] {
		case lang.Escape:
			i++

		case '[':
			stack = append(stack, frame{open: i})

		case ']':
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}

		case ';':
			if len(stack) > 0 {
				stack[len(stack)-1].arg++
			}
		}
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if name := nameBefore(input, top.open); name != "" {
			return invocation{name: name, argIndex: top.arg, inCall: true}
		}

		// A bracket that does not open an argument list is plain text.
		stack = stack[:len(stack)-1]
	}

	return invocation{}
}

// nameBefore returns the instruction name ending just before offset, allowing
// whitespace between the name and its argument list, or "" if there is none.
func nameBefore(input string, offset int) string {
	end := len(strings.TrimRight(input[:offset], " \t\r\n"))
	start := end

	for start > 0 && isWordRune(rune(input[start-1])) && input[start-1] != lang.Marker {
		start--
	}

	if start == end || start == 0 || input[start-1] != lang.Marker {
		return ""
	}

	if start > 1 && input[start-2] == lang.Escape {
		return ""
	}

	return input[start-1 : end]
}

// signature returns the parameter names of the first registered instruction
// called name. Manifest instructions name their parameters by argument type.
func signature(reg *compiler.Registry, name string) ([]string, bool) {
	for _, inst := range reg.Instructions() {
		if inst.Name() != name {
			continue
		}

		if m, ok := inst.(*compiler.ManifestInstruction); ok {
			return slices.Clone(m.Manifest().Arguments), true
		}

		params, ok := builtinParams[inst.ID()]

		return params, ok
	}

	return nil, false
}

// renderSignatureHint renders name[param; ...] with the parameter holding the
// cursor highlighted.
func renderSignatureHint(name string, params []string, argIndex int) string {
	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(name))
	b.WriteString(signatureStyle.Render("["))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureStyle.Render("; "))
		}

		repeats := strings.HasPrefix(param, "...")

		if argIndex == i || (repeats && argIndex > i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render("]"))

	return b.String()
}
