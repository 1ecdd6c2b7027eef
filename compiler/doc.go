// Package compiler translates akore source text into JavaScript.
//
// # Pipeline
//
// A [Compiler] lexes its input with package lang, binds each top-level
// token to the first enabled [Instruction] whose name or ID matches, and
// compiles the resulting [Task] tree depth-first. Tokens without a matching
// instruction are dropped. The statements, declared variables, and required
// modules of a run accumulate in a [Unit], which renders
//
//	m = require("m"), a = m.a;           one per required module
//	c = require("n").b;                  keys of a module without a bare import
//	var x, y;                            declared variables
//	statement;                           compiled statements
//
// The rendering is wrapped in an entry function ([WrapAsync] by default),
// passed to a [Formatter] ([ESBuild] by default), and prefixed with a header
// comment naming the akore version.
//
// # Argument primitives
//
// Instructions shape their arguments with pure functions that return a new
// [Argument]: [BuildString], [BuildCondition], [BuildNumber], and
// [BuildBoolean]. [Validate] applies them by position and enforces a minimum
// argument count. [ResolveNested] and [ResolveAll] then compile the nested
// tasks of an argument and substitute their output for their raw text, so a
// primitive that must recognize nested invocations runs first.
//
// # Errors
//
// Lex errors and, in strict mode, arity errors abort the run and are
// returned by [Compiler.Compile]. Any other error from a top-level task is
// logged and the statement is omitted. [ErrBusy] is returned when a
// compilation is already in progress.
//
// # Manifests
//
// [Registry.LoadDir] loads instructions declared in YAML:
//
//	name: $alert
//	id: $myAlert
//	min: 1
//	arguments: [text]
//	emit: '"alert(" + join(args, ", ") + ")"'
//
// Manifests are validated against a JSON schema and their expressions are
// compiled with expr once, at load time.
package compiler
