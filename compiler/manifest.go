package compiler

import (
	"context"
	_ "embed"
	"log/slog"
	"reflect"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/goccy/go-yaml"
	"github.com/qri-io/jsonschema"
)

//go:embed manifest.schema.json
var manifestSchemaJSON []byte

//nolint:gochecknoglobals
var manifestSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	schema := &jsonschema.Schema{}
	if err := schema.UnmarshalJSON(manifestSchemaJSON); err != nil {
		return nil, err
	}

	return schema, nil
})

// Manifest declares an instruction in YAML.
//
// Emit and each of Variables are expressions evaluated with the variables
// args (the resolved argument values), name (the invocation name), and raw
// (the raw invocation text), plus the function ident, which sanitizes a
// string into an identifier. Emit produces the compiled statement and each
// of Variables the name of a variable to declare.
type Manifest struct {
	Name        string           `json:"name"                  yaml:"name"`
	ID          string           `json:"id"                    yaml:"id"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
	Min         int              `json:"min,omitempty"         yaml:"min,omitempty"`
	Arguments   []string         `json:"arguments,omitempty"   yaml:"arguments,omitempty"`
	Emit        string           `json:"emit"                  yaml:"emit"`
	Variables   []string         `json:"variables,omitempty"   yaml:"variables,omitempty"`
	Imports     []ManifestImport `json:"imports,omitempty"     yaml:"imports,omitempty"`
}

// ManifestImport is a module required by a manifest instruction.
type ManifestImport struct {
	Module string   `json:"module"         yaml:"module"`
	Keys   []string `json:"keys,omitempty" yaml:"keys,omitempty"`
}

// exprEnv is the environment of manifest expressions.
type exprEnv struct {
	Args []string `expr:"args"`
	Name string   `expr:"name"`
	Raw  string   `expr:"raw"`
}

// ManifestInstruction is an [Instruction] declared by a [Manifest].
type ManifestInstruction struct {
	Base

	manifest  Manifest
	types     []ArgumentType
	emit      *vm.Program
	variables []*vm.Program
}

// ParseManifest validates a YAML manifest and compiles its expressions.
func ParseManifest(ctx context.Context, data []byte) (*ManifestInstruction, error) {
	doc, err := yaml.YAMLToJSON(data)
	if err != nil {
		return nil, ErrManifest.Wrap(err)
	}

	schema, err := manifestSchema()
	if err != nil {
		return nil, ErrManifest.Wrap(err)
	}

	keyErrs, err := schema.ValidateBytes(ctx, doc)
	if err != nil {
		return nil, ErrManifest.Wrap(err)
	}

	if len(keyErrs) > 0 {
		msgs := make([]string, len(keyErrs))
		for i, ke := range keyErrs {
			msgs[i] = ke.Error()
		}

		return nil, ErrManifest.With(slog.String("violations", strings.Join(msgs, "; ")))
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, ErrManifest.Wrap(err)
	}

	return NewManifestInstruction(m)
}

// NewManifestInstruction compiles the expressions of m.
func NewManifestInstruction(m Manifest) (*ManifestInstruction, error) {
	inst := &ManifestInstruction{
		Base:     MakeBase(m.Name, m.ID),
		manifest: m,
		types:    make([]ArgumentType, len(m.Arguments)),
	}

	for i, name := range m.Arguments {
		kind, ok := ParseArgumentType(name)
		if !ok {
			return nil, ErrManifest.With(slog.String("argument", name))
		}

		inst.types[i] = kind
	}

	var err error

	inst.emit, err = compileExpr(m.Emit)
	if err != nil {
		return nil, err
	}

	for _, source := range m.Variables {
		program, err := compileExpr(source)
		if err != nil {
			return nil, err
		}

		inst.variables = append(inst.variables, program)
	}

	return inst, nil
}

func compileExpr(source string) (*vm.Program, error) {
	program, err := expr.Compile(source,
		expr.Env(exprEnv{}),
		expr.AsKind(reflect.String),
		expr.Function("ident",
			func(params ...any) (any, error) {
				s, _ := params[0].(string)

				return SanitizeIdentifier(s), nil
			},
			new(func(string) string),
		),
	)
	if err != nil {
		return nil, ErrExprCompile.Wrap(err).With(slog.String("source", source))
	}

	return program, nil
}

// Manifest returns the manifest the instruction was declared with.
func (m *ManifestInstruction) Manifest() Manifest { return m.manifest }

// Compile implements [Instruction].
func (m *ManifestInstruction) Compile(ctx context.Context, task *Task) (string, error) {
	args, err := Validate(task, m.manifest.Min, m.types...)
	if err != nil {
		return "", err
	}

	args, err = ResolveAll(ctx, args)
	if err != nil {
		return "", err
	}

	env := exprEnv{Args: Values(args), Name: task.Name(), Raw: task.Token.Total}

	names := make([]string, len(m.variables))

	for i, program := range m.variables {
		names[i], err = runExpr(program, env, m.manifest.Variables[i])
		if err != nil {
			return "", err
		}
	}

	out, err := runExpr(m.emit, env, m.manifest.Emit)
	if err != nil {
		return "", err
	}

	// Declarations are recorded only once every expression has succeeded.
	for _, imp := range m.manifest.Imports {
		task.SetImport(imp.Module, imp.Keys...)
	}

	for _, name := range names {
		task.SetVariable(name)
	}

	return out, nil
}

func runExpr(program *vm.Program, env exprEnv, source string) (string, error) {
	result, err := vm.Run(program, env)
	if err != nil {
		return "", ErrExprEval.Wrap(err).With(slog.String("source", source))
	}

	s, _ := result.(string)

	return s, nil
}
