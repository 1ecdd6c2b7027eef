package cache

import (
	"errors"
	"os"
	"testing"
	"time"
)

func TestKey(t *testing.T) {
	a := Key("$print[a]", "minify=false")

	if len(a) != 32 {
		t.Errorf("expected 128-bit hex key, got %q", a)
	}

	if a != Key("$print[a]", "minify=false") {
		t.Error("expected key to be stable")
	}

	for _, other := range []string{
		Key("$print[b]", "minify=false"),
		Key("$print[a]", "minify=true"),
		Key("$print[a]"),
		Key("$print[a]minify=false"),
	} {
		if other == a {
			t.Errorf("expected distinct key, got %q", other)
		}
	}
}

func TestCache_PutGet(t *testing.T) {
	c := New(t.TempDir(), WithVersion("1.2.3"))
	key := Key("$print[a]")

	if _, ok, err := c.Get(key); ok || err != nil {
		t.Fatalf("expected miss, got ok=%v err=%v", ok, err)
	}

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	if err := c.Put(key, Entry{Output: "console.log(\"a\");", Created: created}); err != nil {
		t.Fatalf("put error: %v", err)
	}

	e, ok, err := c.Get(key)
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}

	if e.Output != "console.log(\"a\");" {
		t.Errorf("unexpected output %q", e.Output)
	}

	if e.Version != "1.2.3" {
		t.Errorf("expected version to be stamped, got %q", e.Version)
	}

	if !e.Created.Equal(created) {
		t.Errorf("expected created %v, got %v", created, e.Created)
	}
}

func TestCache_VersionMismatch(t *testing.T) {
	dir := t.TempDir()
	key := Key("source")

	if err := New(dir, WithVersion("1.0.0")).Put(key, Entry{Output: "old"}); err != nil {
		t.Fatalf("put error: %v", err)
	}

	if _, ok, err := New(dir, WithVersion("2.0.0")).Get(key); ok || err != nil {
		t.Errorf("expected miss across versions, got ok=%v err=%v", ok, err)
	}
}

func TestCache_Corrupt(t *testing.T) {
	c := New(t.TempDir())
	key := Key("source")

	if err := c.Put(key, Entry{Output: "x"}); err != nil {
		t.Fatalf("put error: %v", err)
	}

	if err := os.WriteFile(c.path(key), []byte{0xc1}, 0o600); err != nil {
		t.Fatal(err)
	}

	if _, _, err := c.Get(key); !errors.Is(err, ErrRead) {
		t.Errorf("expected ErrRead, got %v", err)
	}
}

func TestCache_Clear(t *testing.T) {
	c := New(t.TempDir())
	key := Key("source")

	if err := c.Put(key, Entry{Output: "x"}); err != nil {
		t.Fatalf("put error: %v", err)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("clear error: %v", err)
	}

	if _, ok, _ := c.Get(key); ok {
		t.Error("expected miss after clear")
	}
}
