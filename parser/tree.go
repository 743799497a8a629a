package parser

import "github.com/dekarrin/gparse/grammar"

// Node is a parse tree node: either a terminal leaf (Production == nil) or
// a nonterminal interior node with children (spec.md §3, "Tree node").
type Node struct {
	Symbol string

	// Production is nil for a terminal (NodeTerm); set for a nonterminal
	// (NodeNonTerm), identifying which alternative produced Children.
	Production *grammar.Production
	Children   []*Node

	// Text is the matched source text; set only for terminals.
	Text string

	Start, End int
	Layout     string

	// Value holds the semantic value computed for this node when actions
	// ran during the parse (or during a later call_actions walk).
	Value any
}

// IsTerm reports whether this is a terminal leaf.
func (n *Node) IsTerm() bool {
	return n.Production == nil
}
