// Package grammar implements grammar normalization (spec.md §4.B): it
// desugars multiplicity, unifies symbols declared multiple times, resolves
// every RHS reference to a concrete symbol, and produces the canonical,
// numbered production list an analyzer/table builder consumes.
package grammar

import (
	"sort"

	"github.com/dekarrin/gparse/symbol"
)

// Grammar is a frozen, normalized grammar: every symbol reference has been
// resolved, multiplicity has been desugared, and the start production has
// been augmented (spec.md §3, "Lifecycle"). Grammar values are immutable
// after Builder.Build returns one.
type Grammar struct {
	symbols     map[string]*symbol.Symbol
	symbolOrder []string // insertion order, for deterministic iteration

	productions   []*Production
	byNonTerminal map[string][]*Production

	start    string
	augStart string
}

// Symbol returns the named symbol, or nil if undeclared.
func (g *Grammar) Symbol(name string) *symbol.Symbol {
	return g.symbols[name]
}

// Terminals returns the names of every terminal symbol, in declaration
// order.
func (g *Grammar) Terminals() []string {
	var out []string
	for _, name := range g.symbolOrder {
		if g.symbols[name].IsTerminal() {
			out = append(out, name)
		}
	}
	return out
}

// NonTerminals returns the names of every non-terminal symbol, in
// declaration order (the augmented start symbol is included last).
func (g *Grammar) NonTerminals() []string {
	var out []string
	for _, name := range g.symbolOrder {
		if !g.symbols[name].IsTerminal() {
			out = append(out, name)
		}
	}
	return out
}

// IsTerminal reports whether name is a declared terminal symbol.
func (g *Grammar) IsTerminal(name string) bool {
	s := g.symbols[name]
	return s != nil && s.IsTerminal()
}

// StartSymbol returns the grammar's declared start nonterminal.
func (g *Grammar) StartSymbol() string {
	return g.start
}

// AugmentedStart returns the name of the synthesized S' symbol, whose sole
// production is `S' -> <start> STOP` (spec.md §3, "Reserved symbols").
func (g *Grammar) AugmentedStart() string {
	return g.augStart
}

// Productions returns every production in the grammar, ordered by their
// global ID (insertion order), including the augmented start production.
func (g *Grammar) Productions() []*Production {
	return g.productions
}

// ProductionsFor returns, in alternative order, the productions whose
// left-hand side is nonTerminal.
func (g *Grammar) ProductionsFor(nonTerminal string) []*Production {
	return g.byNonTerminal[nonTerminal]
}

// Production looks up a production by its global ID.
func (g *Grammar) Production(id int) *Production {
	for _, p := range g.productions {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// HasLayout reports whether the grammar declares a LAYOUT nonterminal
// (spec.md §4.E step 1).
func (g *Grammar) HasLayout() bool {
	s := g.symbols[symbol.NameLayout]
	return s != nil && !s.IsTerminal()
}

// symbolNames returns every declared symbol name sorted alphabetically.
func (g *Grammar) symbolNames() []string {
	names := make([]string, 0, len(g.symbols))
	for name := range g.symbols {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
