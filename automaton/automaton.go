// Package automaton builds the canonical collection of LR item sets and the
// transition graph over them (spec.md §4.C, "LR automaton construction").
// It produces the state graph that package table turns into action/goto
// tables; it does not itself decide shift/reduce or reduce/reduce
// conflicts, since that depends on the table-construction mode (SLR vs
// LALR) and precedence options.
package automaton

import (
	"github.com/dekarrin/gparse/analyze"
	"github.com/dekarrin/gparse/grammar"
)

// State is one node of the automaton: a closed item set together with its
// outgoing transitions, keyed by grammar symbol.
type State struct {
	Num   int
	Items *analyze.ItemSet

	// Transitions maps a grammar symbol to the State.Num reached by GOTO on
	// that symbol.
	Transitions map[string]int
}

// Automaton is the canonical collection of LR states plus their transition
// graph, rooted at the augmented start item.
type Automaton struct {
	States  []*State
	Initial int
}

// State looks up a state by number.
func (a *Automaton) State(num int) *State {
	if num < 0 || num >= len(a.States) {
		return nil
	}
	return a.States[num]
}

// BuildLR0 constructs the canonical LR(0) collection, used for SLR table
// construction (spec.md §4.C/§4.D, "tables: SLR").
func BuildLR0(g *grammar.Grammar) *Automaton {
	aug := g.Production(0) // augmented production always gets ID 0 (grammar.Builder)
	start := analyze.NewItemSet(analyze.Item{ProdID: aug.ID, Dot: 0})
	initial := analyze.Closure0(g, start)

	a := &Automaton{}
	index := map[string]int{}

	addState := func(items *analyze.ItemSet) (int, bool) {
		k := items.Key()
		if n, ok := index[k]; ok {
			return n, false
		}
		n := len(a.States)
		index[k] = n
		a.States = append(a.States, &State{Num: n, Items: items, Transitions: map[string]int{}})
		return n, true
	}

	n0, _ := addState(initial)
	a.Initial = n0

	worklist := []int{n0}
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		st := a.States[cur]

		for _, x := range outgoingSymbols(g, st.Items) {
			next := analyze.Goto0(g, st.Items, x)
			if next.Len() == 0 {
				continue
			}
			n, isNew := addState(next)
			st.Transitions[x] = n
			if isNew {
				worklist = append(worklist, n)
			}
		}
	}
	return a
}

// BuildLR1 constructs the canonical LR(1) collection (every kernel item
// carries an explicit lookahead terminal). This is the starting point for
// both CLR(1) tables and the LALR merge pass (spec.md §4.C).
func BuildLR1(g *grammar.Grammar, sets *analyze.Sets) *Automaton {
	aug := g.Production(0)
	start := analyze.NewItemSet(analyze.Item{ProdID: aug.ID, Dot: 0, Lookahead: eofSymbol})
	initial := analyze.Closure1(g, sets, start)

	a := &Automaton{}
	index := map[string]int{}

	addState := func(items *analyze.ItemSet) (int, bool) {
		k := items.Key()
		if n, ok := index[k]; ok {
			return n, false
		}
		n := len(a.States)
		index[k] = n
		a.States = append(a.States, &State{Num: n, Items: items, Transitions: map[string]int{}})
		return n, true
	}

	n0, _ := addState(initial)
	a.Initial = n0

	worklist := []int{n0}
	for len(worklist) > 0 {
		cur := worklist[0]
		worklist = worklist[1:]
		st := a.States[cur]

		for _, x := range outgoingSymbols(g, st.Items) {
			next := analyze.Goto1(g, sets, st.Items, x)
			if next.Len() == 0 {
				continue
			}
			n, isNew := addState(next)
			st.Transitions[x] = n
			if isNew {
				worklist = append(worklist, n)
			}
		}
	}
	return a
}

const eofSymbol = "EOF"

// outgoingSymbols returns, in a deterministic order, every grammar symbol
// that appears immediately after some item's dot in items.
func outgoingSymbols(g *grammar.Grammar, items *analyze.ItemSet) []string {
	seen := map[string]bool{}
	var order []string
	for _, it := range items.Items() {
		sym, ok := it.AtDot(g)
		if !ok {
			continue
		}
		if !seen[sym] {
			seen[sym] = true
			order = append(order, sym)
		}
	}
	return order
}
