package instructions_test

import (
	"errors"
	"testing"

	"github.com/ardnew/akore/compiler"
	"github.com/ardnew/akore/instructions"
)

func newCompiler() *compiler.Compiler {
	return compiler.New(
		compiler.WithInstructions(instructions.Builtin()...),
		compiler.WithFormatter(compiler.Identity),
		compiler.WithWrapper(func(body string) string { return body }),
		compiler.WithHeader(""),
	)
}

func TestBuiltin(t *testing.T) {
	c := newCompiler()

	want := map[string]string{
		"$call":   "$akoreCall",
		"$get":    "$akoreGet",
		"$if":     "$akoreIf",
		"$escape": "$akoreEscape",
		"$for":    "$akoreFor",
		"$while":  "$akoreWhile",
		"$sum":    "$akoreSum",
		"$export": "$akoreExport",
		"$import": "$akoreImport",
		"$new":    "$akoreNew",
		"$print":  "$akorePrint",
		"$var":    "$akoreVar",
	}

	insts := c.Registry().Instructions()
	if len(insts) != len(want) {
		t.Fatalf("expected %d instructions, got %d", len(want), len(insts))
	}

	for _, inst := range insts {
		if id, ok := want[inst.Name()]; !ok || id != inst.ID() {
			t.Errorf("unexpected instruction %s (%s)", inst.Name(), inst.ID())
		}
	}
}

func TestInstructions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "print",
			source: "$print[hello;42;true]",
			want:   "console.log(\"hello\",42,true);\n",
		},
		{
			name:   "print without arguments",
			source: "$print",
			want:   "console.log();\n",
		},
		{
			name:   "print escaped delimiter",
			source: `$print[a\;b]`,
			want:   "console.log(\"a;b\");\n",
		},
		{
			name:   "sum",
			source: "$sum[1;2;x]",
			want:   "1+2+\"x\";\n",
		},
		{
			name:   "var reference",
			source: "$var[x]",
			want:   "var x;\nx;\n",
		},
		{
			name:   "var dotted key",
			source: "$var[obj.count;5]",
			want:   "var obj;\nobj.count = 5;\n",
		},
		{
			name:   "var sanitized key",
			source: "$var[my-var;'hi']",
			want:   "var my_var;\nmy_var = `hi`;\n",
		},
		{
			name:   "get",
			source: "$get[console;log]",
			want:   "console.log;\n",
		},
		{
			name:   "get sanitized",
			source: "$get[my-obj;a b]",
			want:   "my_obj.a_b;\n",
		},
		{
			name:   "call",
			source: "$call[check;x == 1;ok]",
			want:   "check(\"x\" == 1, \"ok\");\n",
		},
		{
			name:   "call nested",
			source: "$call[$get[console;log];hi]",
			want:   "console.log(\"hi\");\n",
		},
		{
			name:   "new",
			source: "$new[Date;2024;1]",
			want:   "new Date(2024,1);\n",
		},
		{
			name:   "if",
			source: "$if[$var[a] == 1;$print[yes]]",
			want:   "var a;\nif (a == 1) {\n\tconsole.log(\"yes\")\n};\n",
		},
		{
			name:   "if else",
			source: "$if[no;$print[a];$print[b]]",
			want:   "if (false) {\n\tconsole.log(\"a\")\n} else {\n\tconsole.log(\"b\")\n};\n",
		},
		{
			name:   "while",
			source: "$while[$var[i] < 3;$var[i;$sum[$var[i];1]]]",
			want:   "var i;\nwhile (i < 3) {i = i+1};\n",
		},
		{
			name:   "for",
			source: "$for[$var[i;0];$var[i] < 2;$var[i;$sum[$var[i];1]];$print[$var[i]]]",
			want:   "var i;\nfor (i = 0;i < 2;i = i+1) {console.log(i)};\n",
		},
		{
			name:   "export",
			source: "$export[answer;42]",
			want:   "exports.answer = 42;\n",
		},
		{
			name:   "export default",
			source: "$export[;$get[api]]",
			want:   "exports = api;\n",
		},
		{
			name:   "escape",
			source: "$escape[$print[not compiled]; a[1]]",
			want:   "$print[not compiled]; a[1];\n",
		},
		{
			name:   "import bare",
			source: "$import[node:fs]",
			want:   "node_fs = require(\"node:fs\");\nvar node_fs;\nnode_fs;\n",
		},
		{
			name:   "import keys",
			source: "$import[path;join, resolve as res]",
			want: "join = require(\"path\").join, res = require(\"path\").resolve;\n" +
				"var join, res;\n",
		},
		{
			name:   "import single key",
			source: "$import[events;EventEmitter]",
			want:   "EventEmitter = require(\"events\").EventEmitter;\nvar EventEmitter;\n",
		},
		{
			name:   "import empty alias",
			source: "$import[path;sep as ]",
			want:   "sep = require(\"path\").sep;\nvar sep;\n",
		},
		{
			name:   "print escaped invocation",
			source: `$print[\$get[x] is $get[x]]`,
			want:   "console.log(`$get[x] is ${x}`);\n",
		},
		{
			name:   "print unknown invocation",
			source: "$print[$nosuch[a] tail;cost: $5]",
			want:   "console.log(\"$nosuch[a] tail\",\"cost: $5\");\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := newCompiler().CompileString(t.Context(), tt.source)
			if err != nil {
				t.Fatalf("compile error: %v", err)
			}

			if got != tt.want {
				t.Errorf("output mismatch:\n got: %q\nwant: %q", got, tt.want)
			}
		})
	}
}

func TestInstructions_Arity(t *testing.T) {
	for _, source := range []string{
		"$call",
		"$new",
		"$if[a]",
		"$var",
		"$import",
	} {
		t.Run(source, func(t *testing.T) {
			_, err := newCompiler().CompileString(t.Context(), source)
			if !errors.Is(err, compiler.ErrArity) {
				t.Errorf("expected ErrArity, got %v", err)
			}
		})
	}
}
