package instructions

import (
	"strings"

	"github.com/ardnew/akore/compiler"
)

// Builtin returns the factories of every built-in instruction in
// registration order.
func Builtin() []compiler.Factory {
	return []compiler.Factory{
		NewCall,
		NewGet,
		NewIf,
		NewEscape,
		NewFor,
		NewWhile,
		NewSum,
		NewExport,
		NewImport,
		NewNew,
		NewPrint,
		NewVar,
	}
}

// typesAfter returns argument types with first for the leading argument and
// rest for the following n-1 arguments.
func typesAfter(n int, first, rest compiler.ArgumentType) []compiler.ArgumentType {
	types := make([]compiler.ArgumentType, max(n, 1))
	for i := range types {
		types[i] = rest
	}

	types[0] = first

	return types
}

// indent trims s and indents its continuation lines by one tab.
func indent(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "\n\t")
}
