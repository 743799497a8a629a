package analyze

import (
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/symbol"
)

// Closure0 computes the LR(0) closure of an item set: while any item
// [A -> α . B β] is in the set and B is a nonterminal, add [B -> . γ] for
// each production of B (spec.md §4.C).
func Closure0(g *grammar.Grammar, items *ItemSet) *ItemSet {
	closed := NewItemSet(items.Items()...)

	worklist := append([]Item{}, items.Items()...)
	for len(worklist) > 0 {
		it := worklist[0]
		worklist = worklist[1:]

		sym, ok := it.AtDot(g)
		if !ok || g.IsTerminal(sym) {
			continue
		}
		for _, p := range g.ProductionsFor(sym) {
			newItem := Item{ProdID: p.ID, Dot: 0}
			if closed.Add(newItem) {
				worklist = append(worklist, newItem)
			}
		}
	}
	return closed
}

// Goto0 returns the closure of every item [A -> α X . β] whose predecessor
// [A -> α . X β] is in items, i.e. GOTO(I, X) for the LR(0) automaton
// (spec.md §4.C).
func Goto0(g *grammar.Grammar, items *ItemSet, x string) *ItemSet {
	kernel := NewItemSet()
	for _, it := range items.Items() {
		sym, ok := it.AtDot(g)
		if ok && sym == x {
			kernel.Add(it.Advance())
		}
	}
	if kernel.Len() == 0 {
		return kernel
	}
	return Closure0(g, kernel)
}

// Closure1 computes the LR(1) closure: as Closure0, but each added item
// [B -> . γ] is given lookahead set FIRST(βa) for every item
// [A -> α . B β, a] that triggered it (the classical algorithm, spec.md
// §4.C, "LR(1) / LALR handled by ...").
func Closure1(g *grammar.Grammar, sets *Sets, items *ItemSet) *ItemSet {
	closed := NewItemSet(items.Items()...)

	worklist := append([]Item{}, items.Items()...)
	for len(worklist) > 0 {
		it := worklist[0]
		worklist = worklist[1:]

		sym, ok := it.AtDot(g)
		if !ok || g.IsTerminal(sym) {
			continue
		}
		p := g.Production(it.ProdID)
		beta := p.Symbols[it.Dot+1:]

		lookaheads := sets.FirstOfSeq(append(append([]string{}, beta...), it.Lookahead))
		for _, prod := range g.ProductionsFor(sym) {
			for _, la := range lookaheads.Elements() {
				if la == symbol.NameEmpty {
					continue
				}
				newItem := Item{ProdID: prod.ID, Dot: 0, Lookahead: la}
				if closed.Add(newItem) {
					worklist = append(worklist, newItem)
				}
			}
		}
	}
	return closed
}

// Goto1 is the LR(1) analog of Goto0.
func Goto1(g *grammar.Grammar, sets *Sets, items *ItemSet, x string) *ItemSet {
	kernel := NewItemSet()
	for _, it := range items.Items() {
		sym, ok := it.AtDot(g)
		if ok && sym == x {
			kernel.Add(it.Advance())
		}
	}
	if kernel.Len() == 0 {
		return kernel
	}
	return Closure1(g, sets, kernel)
}
