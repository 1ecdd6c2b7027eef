package compiler

import (
	"context"
	"strings"
	"testing"

	"github.com/ardnew/akore/lang"
	"github.com/ardnew/akore/log"
)

// echo returns an instruction that compiles to its resolved raw arguments
// joined by commas.
func echo(name, id string) Instruction {
	return NewFunc(name, id, func(ctx context.Context, task *Task) (string, error) {
		args, err := ResolveAll(ctx, task.Args())
		if err != nil {
			return "", err
		}

		return strings.Join(Values(args), ","), nil
	})
}

// constant returns an instruction that always compiles to out.
func constant(name, id, out string) Instruction {
	return NewFunc(name, id, func(context.Context, *Task) (string, error) {
		return out, nil
	})
}

func testView(t *testing.T, insts ...Instruction) View {
	t.Helper()

	r := NewRegistry()
	r.Add(insts...)

	return r.View()
}

func mustTask(t *testing.T, view View, source string) *Task {
	t.Helper()

	tokens, err := lang.Tokenize(t.Context(), source)
	if err != nil {
		t.Fatalf("tokenize error: %v", err)
	}

	if len(tokens) != 1 {
		t.Fatalf("expected 1 token, got %d", len(tokens))
	}

	task := newTask(view, &tokens[0], NewUnit(), log.Logger{})
	if task == nil {
		t.Fatalf("no instruction for %q", tokens[0].Name)
	}

	return task
}
