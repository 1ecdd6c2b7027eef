package repl

import (
	"slices"
	"testing"

	"github.com/ardnew/akore/compiler"
)

func TestDetectInvocation(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		cursor int
		want   invocation
	}{
		{"first_argument", "$print[a", 8, invocation{"$print", 0, true}},
		{"second_argument", "$print[a;b", 10, invocation{"$print", 1, true}},
		{"closed", "$print[a]", 9, invocation{}},
		{"nested", "$if[$var[x", 10, invocation{"$var", 0, true}},
		{"after_nested", "$if[$var[x];", 12, invocation{"$if", 1, true}},
		{"escaped_separator", `$print[a\;b`, 11, invocation{"$print", 0, true}},
		{"escaped_bracket", `$print\[a`, 9, invocation{}},
		{"plain_bracket", "x[1", 3, invocation{}},
		{"plain_inside_call", "$print[x[1", 10, invocation{"$print", 0, true}},
		{"space_before_bracket", "$print [a", 9, invocation{"$print", 0, true}},
		{"cursor_before_call", "$print[a", 3, invocation{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := detectInvocation(tt.input, tt.cursor); got != tt.want {
				t.Errorf("detectInvocation(%q, %d) = %+v, want %+v",
					tt.input, tt.cursor, got, tt.want)
			}
		})
	}
}

func TestNameBefore(t *testing.T) {
	tests := []struct {
		input  string
		offset int
		want   string
	}{
		{"$var[", 4, "$var"},
		{"$var  [", 6, "$var"},
		{"var[", 3, ""},
		{"$[", 1, ""},
		{`\$var[`, 5, ""},
		{"a$b[", 3, "$b"},
	}

	for _, tt := range tests {
		if got := nameBefore(tt.input, tt.offset); got != tt.want {
			t.Errorf("nameBefore(%q, %d) = %q, want %q", tt.input, tt.offset, got, tt.want)
		}
	}
}

func TestSignature(t *testing.T) {
	m := newTestModel(t)

	params, ok := signature(m.registry, "$var")
	if !ok || !slices.Equal(params, []string{"name", "value"}) {
		t.Errorf("signature($var) = %v, %v", params, ok)
	}

	if _, ok := signature(m.registry, "$nope"); ok {
		t.Error("expected no signature for unknown instruction")
	}

	inst, err := compiler.NewManifestInstruction(compiler.Manifest{
		Name:      "$alert",
		ID:        "$akoreAlert",
		Arguments: []string{"text", "number"},
		Emit:      `"alert(" + join(args, ", ") + ")"`,
	})
	if err != nil {
		t.Fatalf("manifest error: %v", err)
	}

	m.registry.Add(inst)

	params, ok = signature(m.registry, "$alert")
	if !ok || !slices.Equal(params, []string{"text", "number"}) {
		t.Errorf("signature($alert) = %v, %v", params, ok)
	}

	// The manifest must not share its argument list.
	params[0] = "changed"

	if inst.Manifest().Arguments[0] != "text" {
		t.Error("expected signature to return a copy")
	}
}

func TestRenderSignatureHint(t *testing.T) {
	tests := []struct {
		name     string
		params   []string
		argIndex int
		want     string
	}{
		{"fixed", []string{"name", "value"}, 1, "$x[name; value]"},
		{"repeating", []string{"function", "...arguments"}, 4, "$x[function; ...arguments]"},
		{"none", nil, 0, "$x[]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := renderSignatureHint("$x", tt.params, tt.argIndex)
			if !containsPlain(got, tt.want) {
				t.Errorf("renderSignatureHint = %q, want %q", got, tt.want)
			}
		})
	}
}
