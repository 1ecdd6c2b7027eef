package pkg

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"testing"
)

func TestName(t *testing.T) {
	if Name != "akore" {
		t.Errorf("expected Name to be %q, got %q", "akore", Name)
	}
}

func TestVersion(t *testing.T) {
	buf, err := os.ReadFile("VERSION")
	if err != nil {
		t.Fatalf("failed to read VERSION file: %v", err)
	}

	if content := strings.TrimSpace(string(buf)); Version != content {
		t.Errorf("expected Version to be %q, got %q", content, Version)
	}
}

func TestHeader(t *testing.T) {
	want := "// Generated by akore v" + Version + " //\n"
	if got := Header(); got != want {
		t.Errorf("expected header %q, got %q", want, got)
	}
}

func TestAuthor(t *testing.T) {
	for i, author := range Author {
		if author.Name == "" && author.Email == "" {
			t.Errorf("Author[%d] must define at least Name or Email", i)
		}
	}
}

func TestError_Chain(t *testing.T) {
	err := ErrConfig.Wrap(fs.ErrNotExist)

	if !errors.Is(err, ErrConfig[0]) {
		t.Error("expected chain to contain the sentinel cause")
	}

	if !errors.Is(err, fs.ErrNotExist) {
		t.Error("expected chain to contain the wrapped error")
	}

	want := "invalid configuration: file does not exist"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}

	if len(ErrConfig) != 1 {
		t.Errorf("expected sentinel to stay unmodified, got %d entries", len(ErrConfig))
	}
}
