package glr

import (
	"github.com/dekarrin/gparse/analyze"
	"github.com/dekarrin/gparse/automaton"
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/table"
)

// glrTable is an action/goto table shaped for GLR exploration: unlike
// table.Table, a cell can hold every action enabled there rather than one
// conflict-resolution winner. It is built directly off the canonical LR(1)
// collection (never merged to LALR), so it carries the full per-item
// lookahead precision and never introduces a reduce/reduce conflict the
// merge pass would have.
type glrTable struct {
	Initial int

	// Action[state][terminal] lists every Shift/Reduce/Accept action
	// enabled in that state on that terminal.
	Action []map[string][]table.Action
	Goto   []map[string]int

	// Expected[state] lists every terminal with at least one action in
	// that state, in grammar declaration order.
	Expected [][]string

	Finish []map[string]bool
}

func (t *glrTable) numStates() int { return len(t.Action) }

// buildGLRTable constructs a glrTable for g, keeping every action the
// canonical LR(1) automaton enables instead of collapsing conflicts to a
// single winner the way table.Build does.
func buildGLRTable(g *grammar.Grammar, sets *analyze.Sets) *glrTable {
	lr1 := automaton.BuildLR1(g, sets)

	t := &glrTable{
		Initial:  lr1.Initial,
		Action:   make([]map[string][]table.Action, len(lr1.States)),
		Goto:     make([]map[string]int, len(lr1.States)),
		Expected: make([][]string, len(lr1.States)),
		Finish:   make([]map[string]bool, len(lr1.States)),
	}

	for _, st := range lr1.States {
		actionMap := map[string][]table.Action{}
		gotoMap := map[string]int{}

		for _, it := range st.Items.Items() {
			sym, atDot := it.AtDot(g)
			if atDot {
				target := st.Transitions[sym]
				if g.IsTerminal(sym) {
					addAction(actionMap, sym, table.Action{Type: table.Shift, State: target})
				} else {
					gotoMap[sym] = target
				}
				continue
			}

			p := g.Production(it.ProdID)
			if p.NonTerminal == g.AugmentedStart() {
				if it.Lookahead != "" {
					addAction(actionMap, it.Lookahead, table.Action{Type: table.Accept})
				}
				continue
			}
			if it.Lookahead != "" {
				addAction(actionMap, it.Lookahead, table.Action{Type: table.Reduce, Prod: p.ID})
			}
		}

		t.Action[st.Num] = actionMap
		t.Goto[st.Num] = gotoMap
		t.Expected[st.Num] = expectedTerminals(g, actionMap)
		t.Finish[st.Num] = computeFinish(g, actionMap, t.Expected[st.Num])
	}

	return t
}

// addAction appends candidate to the cell, skipping an exact duplicate
// (the same state/terminal pair can be reached by more than one LR(1) item
// sharing a core).
func addAction(actionMap map[string][]table.Action, terminal string, candidate table.Action) {
	for _, existing := range actionMap[terminal] {
		if existing == candidate {
			return
		}
	}
	actionMap[terminal] = append(actionMap[terminal], candidate)
}

func expectedTerminals(g *grammar.Grammar, actionMap map[string][]table.Action) []string {
	var out []string
	for _, name := range g.Terminals() {
		if _, ok := actionMap[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// computeFinish marks a terminal finish in this state if it's the only
// expected terminal there, or the grammar flags it finish unconditionally,
// matching the deterministic table's rule.
func computeFinish(g *grammar.Grammar, actionMap map[string][]table.Action, expected []string) map[string]bool {
	out := map[string]bool{}
	sole := len(expected) == 1
	for term := range actionMap {
		s := g.Symbol(term)
		if s != nil && s.Finish {
			out[term] = true
			continue
		}
		if sole {
			out[term] = true
		}
	}
	return out
}
