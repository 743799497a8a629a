// Package table builds the LR action/goto tables from a grammar and an
// automaton's state graph, resolving shift/reduce and reduce/reduce
// conflicts per the disambiguation order in spec.md §4.D, and exposes the
// per-state expected-terminal lists the scanner filters against.
package table

import (
	"fmt"

	"github.com/dekarrin/gparse/grammar"
)

// ActionType distinguishes the four action kinds a table cell may hold.
type ActionType int

const (
	Error ActionType = iota
	Shift
	Reduce
	Accept
)

func (a ActionType) String() string {
	switch a {
	case Shift:
		return "shift"
	case Reduce:
		return "reduce"
	case Accept:
		return "accept"
	default:
		return "error"
	}
}

// Action is a single action-table cell.
type Action struct {
	Type  ActionType
	State int // target state for Shift
	Prod  int // production ID for Reduce
}

// Table is the action/goto table for one state machine, plus per-state
// bookkeeping the scanner and driver need (spec.md §4.D).
type Table struct {
	Mode string // "SLR" or "LALR", recorded in the cache record (MarshalBinary)

	Initial int

	// Action[state][terminal] -> Action.
	Action []map[string]Action
	// Goto[state][nonterminal] -> state.
	Goto []map[string]int

	// Expected[state] lists every terminal with a non-Error action in that
	// state, in grammar declaration order; the scanner restricts
	// recognition to this set (spec.md §4.D, "expected-terminals list").
	Expected [][]string

	// Finish[state] records which terminals are "finish" in that state:
	// either flagged so in the grammar, or the sole expected terminal
	// there (spec.md §4.D, "Finish/prefer flags").
	Finish []map[string]bool

	AcceptState int
}

// NumStates returns the number of states in the table.
func (t *Table) NumStates() int {
	return len(t.Action)
}

// ExpectedTerminals returns the terminals with an action in the given
// state.
func (t *Table) ExpectedTerminals(state int) []string {
	if state < 0 || state >= len(t.Expected) {
		return nil
	}
	return t.Expected[state]
}

// String renders a one-line summary (mode, state count, initial state); see
// Pretty for the full per-state table.
func (t *Table) String() string {
	s := fmt.Sprintf("Table(mode=%s, states=%d, initial=%d)\n", t.Mode, len(t.Action), t.Initial)
	return s
}

// grammarProdByID looks up a production of g by its global ID.
func grammarProdByID(g *grammar.Grammar, id int) *grammar.Production {
	return g.Production(id)
}
