package lang

import "iter"

// Marker starts an instruction invocation unless preceded by [Escape].
const Marker = '$'

// Escape makes the following character literal.
const Escape = '\\'

// Token is one instruction invocation, such as $print[hello].
//
// Name includes the marker. Total is the trimmed raw text of the invocation,
// and Start and End are byte offsets delimiting the untrimmed span in the
// input that was lexed. Offsets of nested tokens are relative to the
// argument text they were lexed from.
type Token struct {
	Name      string     `json:"name"                yaml:"name"`
	Total     string     `json:"total"               yaml:"total"`
	Start     int        `json:"start"               yaml:"start"`
	End       int        `json:"end"                 yaml:"end"`
	Arguments []Argument `json:"arguments,omitempty" yaml:"arguments,omitempty"`
}

// Argument is the raw text of one argument slot of a [Token].
//
// Nested holds the invocations found in Value and is only populated when
// Value contains the marker.
type Argument struct {
	Value  string  `json:"value"            yaml:"value"`
	Nested []Token `json:"nested,omitempty" yaml:"nested,omitempty"`
}

// Walk returns an iterator over tokens and all of their nested tokens in
// depth-first order, paired with the nesting depth of each token.
func Walk(tokens []Token) iter.Seq2[int, *Token] {
	return func(yield func(int, *Token) bool) {
		walk(tokens, 0, yield)
	}
}

func walk(tokens []Token, depth int, yield func(int, *Token) bool) bool {
	for i := range tokens {
		if !yield(depth, &tokens[i]) {
			return false
		}

		for _, arg := range tokens[i].Arguments {
			if !walk(arg.Nested, depth+1, yield) {
				return false
			}
		}
	}

	return true
}
