package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/goccy/go-yaml"
	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/akore/lang"
)

const tokenSource = "say $print[a;$var[b]] and $sum[1;2]"

func TestTokens_Tree(t *testing.T) {
	var stdout bytes.Buffer

	tok := &Tokens{Format: "tree", File: stdinSource}
	if err := tok.run(t.Context(), strings.NewReader(tokenSource), &stdout); err != nil {
		t.Fatalf("tokens error: %v", err)
	}

	want := `$print "$print[a;$var[b]]"
  $var "$var[b]"
$sum "$sum[1;2]"
`

	if diff := cmp.Diff(want, stdout.String()); diff != "" {
		t.Errorf("tree mismatch (-want +got):\n%s", diff)
	}
}

func TestTokens_Structured(t *testing.T) {
	want, err := lang.Tokenize(t.Context(), tokenSource)
	if err != nil {
		t.Fatal(err)
	}

	decoders := map[string]func([]byte, any) error{
		"json": json.Unmarshal,
		"yaml": func(data []byte, v any) error { return yaml.Unmarshal(data, v) },
	}

	for format, decode := range decoders {
		t.Run(format, func(t *testing.T) {
			var stdout bytes.Buffer

			tok := &Tokens{Format: format, File: stdinSource}
			if err := tok.run(t.Context(), strings.NewReader(tokenSource), &stdout); err != nil {
				t.Fatalf("tokens error: %v", err)
			}

			var got []lang.Token
			if err := decode(stdout.Bytes(), &got); err != nil {
				t.Fatalf("decode error: %v\n%s", err, stdout.String())
			}

			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestMarshalTokens_Empty(t *testing.T) {
	out, err := marshalTokens(nil, "json")
	if err != nil {
		t.Fatal(err)
	}

	if string(out) != "[]\n" {
		t.Errorf("expected empty JSON array, got %q", out)
	}

	out, err = marshalTokens(nil, "tree")
	if err != nil {
		t.Fatal(err)
	}

	if len(out) != 0 {
		t.Errorf("expected empty tree, got %q", out)
	}
}

func TestMarshalTokens_UnknownFormat(t *testing.T) {
	if _, err := marshalTokens(nil, "xml"); !errors.Is(err, ErrTokenFormat) {
		t.Errorf("expected ErrTokenFormat, got %v", err)
	}
}
