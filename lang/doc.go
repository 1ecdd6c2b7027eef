// Package lang implements the lexer for the akore instruction language.
//
// # Grammar
//
// Informal EBNF:
//
//	invocation → '$' name (WS* arglist)?
//	name       → [A-Za-z_]+
//	arglist    → '[' argument (';' argument)* ']'
//	argument   → <any text with balanced '[' ']'>
//
// A backslash escapes the character that follows it. An escaped marker
// (\$) never starts an invocation, and escaped brackets and semicolons are
// never treated as delimiters. The lexer keeps escapes verbatim in argument
// text; they are consumed once, when the compiler builds string literals.
//
// Arguments that contain the marker are lexed again, so a [Token] forms a
// tree through [Argument.Nested]:
//
//	$print[Hello, $get[user;name]!]
//
// lexes into a $print token with one argument whose nested tokens contain a
// single $get token with the arguments "user" and "name".
//
// # Errors
//
// An invocation whose opening bracket is never matched is fatal to the scan.
// [Lexer.Tokenize] reports it as an [*Error] matching [ErrUnclosed] that
// carries the [Position] of the invocation:
//
//	_, err := lang.Tokenize(ctx, "$if[cond")
//	errors.Is(err, lang.ErrUnclosed) // true
package lang
