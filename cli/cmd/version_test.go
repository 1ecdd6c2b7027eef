package cmd

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/ardnew/akore/pkg"
)

func TestVersion(t *testing.T) {
	var stdout bytes.Buffer

	if err := (&Version{}).run(t.Context(), &stdout); err != nil {
		t.Fatal(err)
	}

	if got, want := stdout.String(), pkg.Version+"\n"; got != want {
		t.Errorf("version = %q, want %q", got, want)
	}

	stdout.Reset()

	if err := (&Version{Verbose: true}).run(t.Context(), &stdout); err != nil {
		t.Fatal(err)
	}

	want := pkg.Name + " " + pkg.Version + " (" + runtime.Version()
	if !strings.HasPrefix(stdout.String(), want) {
		t.Errorf("verbose version = %q, want prefix %q", stdout.String(), want)
	}
}
