package repl

import (
	"slices"
	"testing"

	"github.com/sahilm/fuzzy"
)

func TestWordBounds(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		cursor    int
		wantWord  string
		wantStart int
		wantEnd   int
	}{
		{"simple", "$pr", 3, "$pr", 0, 3},
		{"mid_word", "$print", 2, "$print", 0, 6},
		{"surrounded", "a $pr b", 4, "$pr", 2, 5},
		{"in_arguments", "$var[$pr", 8, "$pr", 5, 8},
		{"after_separator", "$print[a;$g", 11, "$g", 9, 11},
		// Each marker begins a new word.
		{"adjacent_second", "$a$b", 4, "$b", 2, 4},
		{"adjacent_first", "$a$b", 2, "$a", 0, 2},
		{"lone_marker", "x $", 3, "$", 2, 3},
		{"plain_word", "hello world", 5, "hello", 0, 5},
		{"empty_at_boundary", "x;", 2, "", 2, 2},
		{"cursor_clamped", "$pr", 10, "$pr", 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			word, start, end := wordBounds(tt.input, tt.cursor)
			if word != tt.wantWord || start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("wordBounds(%q, %d) = (%q, %d, %d), want (%q, %d, %d)",
					tt.input, tt.cursor, word, start, end,
					tt.wantWord, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestCommandArgsStart(t *testing.T) {
	tests := []struct {
		input     string
		wordStart int
		want      bool
	}{
		{"disable $p", 8, true},
		{"enable $a $b", 10, true},
		{"dis", 0, false},
		{"list $p", 5, false},
	}

	for _, tt := range tests {
		if got := commandArgsStart(tt.input, tt.wordStart); got != tt.want {
			t.Errorf("commandArgsStart(%q, %d) = %v, want %v",
				tt.input, tt.wordStart, got, tt.want)
		}
	}
}

func matchStrings(matches fuzzy.Matches) []string {
	strs := make([]string, len(matches))
	for i, m := range matches {
		strs[i] = m.Str
	}

	return strs
}

func TestComputeMatches(t *testing.T) {
	tests := []struct {
		name    string
		mode    inputMode
		input   string
		want    []string // must all be present
		exclude []string // must all be absent
		none    bool
	}{
		{
			name:    "instruction_prefix",
			mode:    modeSource,
			input:   "$pr",
			want:    []string{"$print"},
			exclude: []string{"$var", "$sum"},
		},
		{
			name:  "nested_argument",
			mode:  modeSource,
			input: "$print[$va",
			want:  []string{"$var"},
		},
		{
			name:  "plain_text",
			mode:  modeSource,
			input: "pri",
			none:  true,
		},
		{
			name:    "command_name",
			mode:    modeCtrl,
			input:   "dis",
			want:    []string{"disable"},
			exclude: []string{"quit"},
		},
		{
			name:  "command_argument",
			mode:  modeCtrl,
			input: "disable $v",
			want:  []string{"$var"},
		},
		{
			name:  "other_command_argument",
			mode:  modeCtrl,
			input: "list $v",
			none:  true,
		},
		{
			name:  "empty_command",
			mode:  modeCtrl,
			input: "",
			none:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(t)
			m.mode = tt.mode
			setInput(&m, tt.input)

			matches, _, _ := m.computeMatches()
			got := matchStrings(matches)

			if tt.none {
				if len(got) != 0 {
					t.Errorf("expected no matches, got %v", got)
				}

				return
			}

			for _, w := range tt.want {
				if !slices.Contains(got, w) {
					t.Errorf("expected %q in matches %v", w, got)
				}
			}

			for _, x := range tt.exclude {
				if slices.Contains(got, x) {
					t.Errorf("unexpected %q in matches %v", x, got)
				}
			}
		})
	}
}

func TestComputeMatches_LoneMarker(t *testing.T) {
	m := newTestModel(t)
	setInput(&m, "$")

	matches, start, end := m.computeMatches()

	if start != 0 || end != 1 {
		t.Errorf("bounds = (%d, %d), want (0, 1)", start, end)
	}

	want := instructionNames(m.registry)
	if got := matchStrings(matches); !slices.Equal(got, want) {
		t.Errorf("matches = %v, want %v", got, want)
	}
}

func TestInstructionNames_Distinct(t *testing.T) {
	m := newTestModel(t)

	names := instructionNames(m.registry)
	if len(names) != m.registry.Len() {
		t.Fatalf("expected %d names, got %d", m.registry.Len(), len(names))
	}

	if names[0] != "$call" {
		t.Errorf("expected registration order, got %v", names)
	}
}

func TestRenderCandidateBar_Ellipsis(t *testing.T) {
	matches := fuzzy.Matches{
		{Str: "$call"}, {Str: "$get"}, {Str: "$if"}, {Str: "$escape"},
	}

	never := func(string) bool { return false }

	if got := renderCandidateBar(matches, -1, false, 0, never); got != "" {
		t.Errorf("expected empty bar for zero width, got %q", got)
	}

	full := renderCandidateBar(matches, -1, false, 200, never)
	for _, m := range matches {
		if !containsPlain(full, m.Str) {
			t.Errorf("expected %q in bar %q", m.Str, full)
		}
	}

	narrow := renderCandidateBar(matches, -1, false, 14, never)
	if !containsPlain(narrow, "...") {
		t.Errorf("expected ellipsis in narrow bar %q", narrow)
	}

	if containsPlain(narrow, "$escape") {
		t.Errorf("expected $escape to be elided from %q", narrow)
	}
}
