package repl

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func historyLines(t *testing.T, h *History) []HistoryEntry {
	t.Helper()

	entries := make([]HistoryEntry, h.Len())
	for i := range entries {
		e, err := h.Entry(i)
		if err != nil {
			t.Fatalf("entry %d: %v", i, err)
		}

		entries[i] = e
	}

	return entries
}

func TestHistory_AddPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)
	for _, e := range []HistoryEntry{
		{"$print[a]", modeSource},
		{"list", modeCtrl},
		{"$print[a]", modeSource}, // moves to the end
		{"$print[a]", modeSource}, // repeated, ignored
		{"  ", modeSource},        // blank, ignored
		{"list", modeSource},      // same text, other mode
	} {
		if err := h.Add(e.Line, e.Mode); err != nil {
			t.Fatalf("add %q: %v", e.Line, err)
		}
	}

	want := []HistoryEntry{
		{"list", modeCtrl},
		{"$print[a]", modeSource},
		{"list", modeSource},
	}

	if diff := cmp.Diff(want, historyLines(t, h)); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff("C:list\nS:$print[a]\nS:list\n", string(data)); diff != "" {
		t.Errorf("file mismatch (-want +got):\n%s", diff)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if diff := cmp.Diff(want, historyLines(t, reloaded)); diff != "" {
		t.Errorf("reloaded mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing", baseHistory))
	if err := h.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("expected empty history, got %d entries", h.Len())
	}
}

func TestHistory_LoadUnprefixed(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	if err := os.WriteFile(path, []byte("$var[a]\n\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load: %v", err)
	}

	want := []HistoryEntry{{"$var[a]", modeSource}, {"quit", modeCtrl}}
	if diff := cmp.Diff(want, historyLines(t, h)); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_Max(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)
	h := NewHistory(path)

	for i := range historyMax + 5 {
		if err := h.Add(fmt.Sprintf("$print[%d]", i), modeSource); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != historyMax {
		t.Fatalf("expected %d entries, got %d", historyMax, h.Len())
	}

	first, _ := h.Entry(0)
	if first.Line != "$print[5]" {
		t.Errorf("expected oldest entries dropped, first is %q", first.Line)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if reloaded.Len() != historyMax {
		t.Errorf("expected %d persisted entries, got %d", historyMax, reloaded.Len())
	}
}

func TestHistory_EntryOutOfBounds(t *testing.T) {
	h := NewHistory("")

	for _, i := range []int{-1, 0, 1} {
		if _, err := h.Entry(i); !errors.Is(err, ErrOutOfBounds) {
			t.Errorf("Entry(%d): expected ErrOutOfBounds, got %v", i, err)
		}
	}
}
