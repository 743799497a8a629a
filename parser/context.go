package parser

import "github.com/dekarrin/gparse/grammar"

// Context is passed to every semantic action: the parser, the symbol and
// production being reduced, the matched span, the preceding layout, a
// user-mutable Extra slot, and (in tree-build mode with actions called
// during the walk) the partially-built tree node (spec.md §4.F point 3).
type Context struct {
	Parser *Parser

	Symbol     string
	Production *grammar.Production

	Start, End int
	Layout     string

	// Tree is the node currently being reduced, set only when
	// build_tree && call_actions_during_tree_build.
	Tree *Node

	// Extra is a user-owned slot actions may read and mutate freely
	// (spec.md §9, "Context object with dynamic extras").
	Extra any
}
