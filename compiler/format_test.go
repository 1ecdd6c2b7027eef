package compiler

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestWrapAsync(t *testing.T) {
	got := WrapAsync("var a;\na = 1;\n")
	want := "\"use strict\";\nasync function Main() {\n\tvar a;\n\ta = 1;\n}\n\nMain(this);\n"

	if got != want {
		t.Errorf("wrap mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestWrapSync(t *testing.T) {
	got := WrapSync("a();\n")
	want := "\"use strict\";\nfunction Main() {\n\ta();\n}\n\nMain(this);\n"

	if got != want {
		t.Errorf("wrap mismatch:\n got: %q\nwant: %q", got, want)
	}
}

func TestIdentity(t *testing.T) {
	out, err := Identity.Format(t.Context(), "a  =  1", FormatOptions{Minify: true})
	if err != nil || out != "a  =  1" {
		t.Errorf("expected input unchanged, got %q (%v)", out, err)
	}
}

func TestESBuild_Format(t *testing.T) {
	raw := WrapAsync("var msg;\nmsg = \"Mi mamá me mima.\";\nconsole.log(`hi ${msg}`);\n")

	out, err := ESBuild{}.Format(t.Context(), raw, FormatOptions{})
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	for _, want := range []string{
		"\"use strict\";\n",
		"async function Main() {\n",
		"  msg = \"Mi mamá me mima.\";\n",
		"  console.log(`hi ${msg}`);\n",
		"Main(this);\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestESBuild_Minify(t *testing.T) {
	raw := WrapAsync("var message;\nmessage = 1 + 2;\nconsole.log(message);\n")

	out, err := ESBuild{}.Format(t.Context(), raw, FormatOptions{Minify: true})
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	if strings.Contains(out, "\n  ") {
		t.Errorf("expected minified output, got:\n%s", out)
	}

	if !strings.Contains(out, "console.log(") {
		t.Errorf("expected call to survive minification, got:\n%s", out)
	}

	if len(out) >= len(raw) {
		t.Errorf("expected minified output to be shorter than input")
	}
}

func TestESBuild_Lower(t *testing.T) {
	raw := WrapSync("var a;\na = `x${1}`;\n")

	out, err := ESBuild{}.Format(t.Context(), raw, FormatOptions{Target: "es5"})
	if err != nil {
		t.Fatalf("format error: %v", err)
	}

	if strings.Contains(out, "`") {
		t.Errorf("expected template literal to be lowered, got:\n%s", out)
	}
}

func TestESBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		opts FormatOptions
		want string
	}{
		{"syntax", "a = ;", FormatOptions{}, "Unexpected"},
		{"unknown target", "a = 1;", FormatOptions{Target: "es1999"}, `unknown target "es1999"`},
		{
			"unsupported lowering",
			"({ a } = b);",
			FormatOptions{Target: "es5"},
			"destructuring",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ESBuild{}.Format(t.Context(), tt.raw, tt.opts)
			if !errors.Is(err, ErrFormat) {
				t.Fatalf("expected ErrFormat, got %v", err)
			}

			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected message to contain %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestESBuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := (ESBuild{}).Format(ctx, "a = 1;", FormatOptions{}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
