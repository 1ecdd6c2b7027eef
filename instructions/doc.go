// Package instructions provides the built-in akore instructions.
//
// Each instruction is a thin consumer of the argument-building primitives in
// package compiler:
//
//	$print[a;b]              console.log(a,b)
//	$var[key;value]          key = value, declaring key
//	$get[a;b]                a.b
//	$call[fn;a;b]            fn(a, b)
//	$new[Type;a;b]           new Type(a,b)
//	$if[cond;then;else]      if (cond) { then } else { else }
//	$for[init;cond;step;body] for (init;cond;step) {body}
//	$while[cond;body]        while (cond) {body}
//	$sum[a;b]                a+b
//	$export[name;value]      exports.name = value
//	$import[module;keys]     module = require("module")
//	$escape[text]            text, verbatim
//
// [Builtin] returns their factories for use with [compiler.WithInstructions].
package instructions
