package compiler

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/ardnew/akore/lang"
	"github.com/ardnew/akore/log"
)

// Task binds a token to the instruction that compiles it. Each argument
// holds the tasks built from the invocations nested in it.
type Task struct {
	Token       *lang.Token
	Instruction Instruction
	Arguments   []Argument

	unit   *Unit
	logger log.Logger
}

// newTask returns the task for tok, or nil when no enabled instruction in
// view matches its name. Nested tokens without an instruction are dropped
// from the argument they belong to and stay in its value as plain text.
func newTask(view View, tok *lang.Token, unit *Unit, logger log.Logger) *Task {
	inst, ok := view.Lookup(tok.Name)
	if !ok {
		logger.Debug("instruction not found",
			slog.String("name", tok.Name),
			slog.Int("offset", tok.Start),
		)

		return nil
	}

	task := &Task{
		Token:       tok,
		Instruction: inst,
		Arguments:   make([]Argument, len(tok.Arguments)),
		unit:        unit,
		logger:      logger,
	}

	for i := range tok.Arguments {
		arg := &tok.Arguments[i]

		task.Arguments[i] = Argument{Token: arg, Value: arg.Value}

		for j := range arg.Nested {
			tok := &arg.Nested[j]

			nested := newTask(view, tok, unit, logger)
			if nested == nil {
				continue
			}

			task.Arguments[i].Nested = append(task.Arguments[i].Nested, nested)
			task.Arguments[i].slots = append(task.Arguments[i].slots, slot{
				start: tok.Start,
				end:   tok.Start + len(tok.Total),
				task:  nested,
			})
		}
	}

	return task
}

// Compile compiles the task with its instruction.
func (t *Task) Compile(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", context.Cause(ctx)
	}

	out, err := t.Instruction.Compile(ctx, t)
	if err != nil {
		return "", err
	}

	t.logger.TraceContext(ctx, "task compiled",
		slog.String("name", t.Token.Name),
		slog.String("output", out),
	)

	return out, nil
}

// Args returns a copy of the task's arguments.
func (t *Task) Args() []Argument { return slices.Clone(t.Arguments) }

// Name returns the name the task was invoked with.
func (t *Task) Name() string { return t.Token.Name }

// Logger returns the logger of the compile run.
func (t *Task) Logger() log.Logger { return t.logger }

// SetVariable declares a variable in the compile run. The name is sanitized
// and declared at most once.
func (t *Task) SetVariable(name string) {
	if t.unit != nil {
		t.unit.SetVariable(name)
	}
}

// SetImport records that the compile run requires module and declares the
// variables it is bound to. With no keys the module is bound to an
// identifier derived from its name, otherwise each key of the form
// "name" or "name as alias" is bound to its own variable.
func (t *Task) SetImport(module string, keys ...string) {
	if t.unit != nil {
		t.unit.SetImport(module, keys...)
	}
}

// Unit is the state of a single compile run: declared variables, required
// imports, and compiled statements, each in insertion order.
type Unit struct {
	variables  []string
	imports    []*Import
	statements []string
}

// Import is one module required by a compile run.
type Import struct {
	Module   string
	Bare     bool
	Bindings []Binding
}

// Binding assigns the export Key of a module to the variable Name.
type Binding struct {
	Key  string
	Name string
}

// ParseBinding parses "name" or "name as alias" into a [Binding]. Both parts
// are sanitized and an empty alias binds the key to its own name.
func ParseBinding(s string) Binding {
	fields := strings.Fields(s)

	var key, alias string

	switch n := len(fields); {
	case n > 2 && fields[n-2] == "as":
		key, alias = strings.Join(fields[:n-2], " "), fields[n-1]
	case n > 1 && fields[n-1] == "as":
		key = strings.Join(fields[:n-1], " ")
	default:
		key = strings.Join(fields, " ")
	}

	b := Binding{Key: SanitizeIdentifier(key), Name: SanitizeIdentifier(alias)}
	if b.Name == "" {
		b.Name = b.Key
	}

	return b
}

// Render returns the import statement for the module. Each binding is a
// member assignment, read from the bare binding when there is one.
func (m *Import) Render() string {
	source := "require(" + strconv.Quote(m.Module) + ")"

	var parts []string

	if m.Bare {
		id := SanitizeIdentifier(m.Module)
		parts = append(parts, id+" = "+source)
		source = id
	}

	for _, b := range m.Bindings {
		parts = append(parts, b.Name+" = "+source+"."+b.Key)
	}

	if len(parts) == 0 {
		return ""
	}

	return strings.Join(parts, ", ") + ";\n"
}

// NewUnit returns an empty Unit.
func NewUnit() *Unit { return &Unit{} }

// SetVariable declares the sanitized name unless it is already declared.
func (u *Unit) SetVariable(name string) {
	name = SanitizeIdentifier(name)
	if name == "" || slices.Contains(u.variables, name) {
		return
	}

	u.variables = append(u.variables, name)
}

// SetImport records module as required and declares each variable it is
// bound to. See [Task.SetImport].
func (u *Unit) SetImport(module string, keys ...string) {
	module = strings.TrimSpace(module)
	if module == "" {
		return
	}

	i := slices.IndexFunc(u.imports, func(m *Import) bool {
		return m.Module == module
	})
	if i < 0 {
		u.imports = append(u.imports, &Import{Module: module})
		i = len(u.imports) - 1
	}

	m := u.imports[i]

	if len(keys) == 0 {
		m.Bare = true
		u.SetVariable(module)

		return
	}

	for _, key := range keys {
		b := ParseBinding(key)
		if b.Key == "" {
			continue
		}

		if !slices.Contains(m.Bindings, b) {
			m.Bindings = append(m.Bindings, b)
		}

		u.SetVariable(b.Name)
	}
}

// Variables returns the declared variables.
func (u *Unit) Variables() []string { return slices.Clone(u.variables) }

// Imports returns the required modules.
func (u *Unit) Imports() []Import {
	imports := make([]Import, len(u.imports))
	for i, m := range u.imports {
		imports[i] = Import{Module: m.Module, Bare: m.Bare, Bindings: slices.Clone(m.Bindings)}
	}

	return imports
}

// Append adds a compiled statement unless it is blank.
func (u *Unit) Append(statement string) {
	if strings.TrimSpace(statement) == "" {
		return
	}

	u.statements = append(u.statements, statement)
}

// Render returns the imports, the variable declaration, and the statements
// of the unit.
func (u *Unit) Render() string {
	var sb strings.Builder

	for _, m := range u.imports {
		sb.WriteString(m.Render())
	}

	if len(u.variables) > 0 {
		sb.WriteString("var " + strings.Join(u.variables, ", ") + ";\n")
	}

	for _, s := range u.statements {
		sb.WriteString(s + ";\n")
	}

	return sb.String()
}
