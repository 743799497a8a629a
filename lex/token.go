// Package lex implements component E of the toolkit: a recognizer-driven
// scanner with the lexical-disambiguation sequence (finish short-circuit,
// most-specific kind, longest match, preference, dynamic callback; terminal
// priority is not consulted) plus a layout sub-scan and a
// custom-recognition hook (spec.md §4.E).
package lex

// Token is one scanned lexeme.
type Token struct {
	Terminal string
	Text     string

	// Pos is the byte offset in the original input where Text begins
	// (after any skipped layout).
	Pos       int
	Line, Col int

	// LayoutBefore is the span of layout consumed immediately before this
	// token: what the LAYOUT nonterminal's terminals matched, or the
	// implicit whitespace skipped when the grammar declares no LAYOUT
	// (spec.md §4.E step 1).
	LayoutBefore string
}

// Match is one candidate recognition at a given scan position, before
// disambiguation has picked a winner.
type Match struct {
	Terminal string
	Text     string
}
