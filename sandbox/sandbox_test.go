package sandbox_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/instructions"
	"github.com/ardnew/akore/sandbox"
)

func TestRun_Console(t *testing.T) {
	result, err := sandbox.Run(t.Context(), `
		console.log("a", 1, true);
		console.warn({name: "x"});
		console.error("oops");
	`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	want := []sandbox.Line{
		{Level: "log", Text: "a 1 true"},
		{Level: "warn", Text: `{"name":"x"}`},
		{Level: "error", Text: "oops"},
	}

	if diff := cmp.Diff(want, result.Console); diff != "" {
		t.Errorf("console mismatch (-want +got):\n%s", diff)
	}
}

func TestRun_Value(t *testing.T) {
	result, err := sandbox.Run(t.Context(), "var a = 2; a * 21")
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if result.Value != "42" {
		t.Errorf("expected 42, got %q", result.Value)
	}
}

func TestRun_Exports(t *testing.T) {
	result, err := sandbox.Run(t.Context(), `exports.greeting = "hi";`)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if got := result.Exports["greeting"]; got != "hi" {
		t.Errorf("expected exported greeting, got %v", got)
	}
}

func TestRun_Require(t *testing.T) {
	result, err := sandbox.Run(t.Context(),
		`var m = require("answer"); console.log(m.value);`,
		sandbox.WithModule("answer", map[string]any{"value": "forty-two"}),
	)
	if err != nil {
		t.Fatalf("run error: %v", err)
	}

	if len(result.Console) != 1 || result.Console[0].Text != "forty-two" {
		t.Errorf("unexpected console output %v", result.Console)
	}

	_, err = sandbox.Run(t.Context(), `require("fs");`)
	if !errors.Is(err, sandbox.ErrRun) {
		t.Errorf("expected ErrRun for unknown module, got %v", err)
	}
}

func TestRun_RemovedGlobals(t *testing.T) {
	for _, code := range []string{
		`eval("1 + 1")`,
		`new Function("return 1")()`,
		`process.exit(1)`,
	} {
		t.Run(code, func(t *testing.T) {
			if _, err := sandbox.Run(t.Context(), code); !errors.Is(err, sandbox.ErrRun) {
				t.Errorf("expected ErrRun, got %v", err)
			}
		})
	}
}

func TestRun_Timeout(t *testing.T) {
	result, err := sandbox.Run(t.Context(),
		`console.log("start"); while (true) {}`,
		sandbox.WithTimeout(50*time.Millisecond),
	)
	if !errors.Is(err, sandbox.ErrInterrupted) {
		t.Fatalf("expected ErrInterrupted, got %v", err)
	}

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline cause, got %v", err)
	}

	if len(result.Console) != 1 {
		t.Errorf("expected console output before interruption, got %v", result.Console)
	}
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	if _, err := sandbox.Run(ctx, "1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_CompiledOutput(t *testing.T) {
	c := compiler.New(
		compiler.WithInstructions(instructions.Builtin()...),
		compiler.WithWrapper(compiler.WrapSync),
		compiler.WithFormatOptions(compiler.FormatOptions{Target: "es5"}),
	)

	code, err := c.CompileString(t.Context(),
		"$var[msg;Mi mamá me mima.]\n"+
			"$print[USER_MESSAGE_IS: $var[msg]]\n"+
			"$if[$var[msg];$export[done;true]]\n")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	result, err := sandbox.Run(t.Context(), code)
	if err != nil {
		t.Fatalf("run error: %v\n%s", err, code)
	}

	want := []sandbox.Line{{Level: "log", Text: "USER_MESSAGE_IS: Mi mamá me mima."}}
	if diff := cmp.Diff(want, result.Console); diff != "" {
		t.Errorf("console mismatch (-want +got):\n%s", diff)
	}

	if result.Exports["done"] != true {
		t.Errorf("expected done to be exported, got %v", result.Exports)
	}
}

func TestRun_CompiledImports(t *testing.T) {
	c := compiler.New(
		compiler.WithInstructions(instructions.Builtin()...),
		compiler.WithWrapper(compiler.WrapSync),
		compiler.WithFormatOptions(compiler.FormatOptions{Target: "es5"}),
	)

	code, err := c.CompileString(t.Context(),
		"$import[greetings;hello as hi, name]\n"+
			"$print[$var[hi] $var[name]]\n")
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}

	result, err := sandbox.Run(t.Context(), code,
		sandbox.WithModule("greetings", map[string]any{"hello": "hey", "name": "you"}),
	)
	if err != nil {
		t.Fatalf("run error: %v\n%s", err, code)
	}

	want := []sandbox.Line{{Level: "log", Text: "hey you"}}
	if diff := cmp.Diff(want, result.Console); diff != "" {
		t.Errorf("console mismatch (-want +got):\n%s", diff)
	}
}
