package repl

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/lang"
)

// ctrlCommands are the available control-mode commands.
var ctrlCommands = []string{
	"help", "list", "enable", "disable", "source", "edit", "reset", "clear", "quit",
}

// isWordRune reports whether r can appear in an instruction name, including
// its leading marker.
func isWordRune(r rune) bool {
	return r == lang.Marker || r == '_' ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// wordBounds returns the word at the cursor position and its byte
// boundaries within input. A word is a run of name characters and markers.
// Returns an empty word when the cursor is not touching a word.
func wordBounds(input string, cursor int) (word string, start, end int) {
	cursor = min(max(cursor, 0), len(input))

	start = cursor

	for start > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:start])
		if !isWordRune(r) {
			break
		}

		start -= size

		// A marker begins the word.
		if r == lang.Marker {
			break
		}
	}

	end = cursor

	for end < len(input) {
		r, size := utf8.DecodeRuneInString(input[end:])
		if !isWordRune(r) || r == lang.Marker {
			break
		}

		end += size
	}

	return input[start:end], start, end
}

// instructionNames returns the distinct names of every registered
// instruction, enabled or not, in registration order.
func instructionNames(reg *compiler.Registry) []string {
	var names []string

	for _, inst := range reg.Instructions() {
		if !slices.Contains(names, inst.Name()) {
			names = append(names, inst.Name())
		}
	}

	return names
}

// commandArgsStart reports whether the word starting at wordStart is an
// argument of an enable or disable command.
func commandArgsStart(input string, wordStart int) bool {
	fields := strings.Fields(input[:wordStart])

	return len(fields) > 0 && (fields[0] == "enable" || fields[0] == "disable")
}

// computeMatches returns the fuzzy matches for the word at the cursor, best
// first, and the word boundaries.
//
// In source mode only words starting with the marker are completed; a lone
// marker lists every instruction. In control mode the first word completes
// command names and the arguments of enable and disable complete
// instruction names.
func (m model) computeMatches() (matches fuzzy.Matches, wordStart, wordEnd int) {
	input := m.input.Value()

	word, wordStart, wordEnd := wordBounds(input, m.input.Position())

	var candidates []string

	switch {
	case m.mode == modeCtrl && strings.TrimSpace(input[:wordStart]) == "":
		if word == "" {
			return nil, wordStart, wordEnd
		}

		candidates = ctrlCommands

	case m.mode == modeCtrl && commandArgsStart(input, wordStart),
		m.mode == modeSource && strings.HasPrefix(word, string(lang.Marker)):
		candidates = instructionNames(m.registry)

		if word == "" || word == string(lang.Marker) {
			matches = make(fuzzy.Matches, len(candidates))
			for i, c := range candidates {
				matches[i] = fuzzy.Match{Str: c, Index: i}
			}

			return matches, wordStart, wordEnd
		}

	default:
		return nil, wordStart, wordEnd
	}

	return fuzzy.Find(word, candidates), wordStart, wordEnd
}

// renderCandidateBar builds the single-line completion bar, ellipsized to fit
// within the given terminal width. Matched characters are highlighted and
// disabled instructions are dimmed.
func renderCandidateBar(
	matches fuzzy.Matches,
	suggIdx int,
	tabActive bool,
	width int,
	disabled func(string) bool,
) string {
	if len(matches) == 0 || width <= 0 {
		return ""
	}

	const sep = "  "

	sepWidth := lipgloss.Width(sep)
	ellipsis := hintStyle.Render("...")
	ellipsisWidth := lipgloss.Width(ellipsis)

	var b strings.Builder

	used := 0

	for i, match := range matches {
		rendered := renderCandidate(match, tabActive && i == suggIdx, disabled(match.Str))

		entryWidth := lipgloss.Width(rendered)
		if i > 0 {
			entryWidth += sepWidth
		}

		if i > 0 && used+entryWidth+ellipsisWidth > width {
			b.WriteString(sep)
			b.WriteString(ellipsis)

			break
		}

		if i > 0 {
			b.WriteString(sep)
		}

		b.WriteString(rendered)

		used += entryWidth
	}

	return b.String()
}

// renderCandidate renders a single candidate with matched characters
// highlighted.
func renderCandidate(match fuzzy.Match, selected, disabled bool) string {
	base := suggestionStyle
	highlight := base.Bold(true)

	switch {
	case selected:
		base = selectedStyle
		highlight = selectedStyle.Bold(true)

	case disabled:
		base = hintStyle
		highlight = hintStyle.Bold(true)
	}

	matched := make(map[int]bool, len(match.MatchedIndexes))
	for _, idx := range match.MatchedIndexes {
		matched[idx] = true
	}

	var b strings.Builder

	for i, r := range match.Str {
		if matched[i] {
			b.WriteString(highlight.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}

	return b.String()
}
