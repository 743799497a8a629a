package automaton

import (
	"testing"

	"github.com/dekarrin/gparse/analyze"
	"github.com/dekarrin/gparse/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exprGrammar builds the textbook unambiguous expression grammar:
//
//	E -> E + T | T
//	T -> T * F | F
//	F -> ( E ) | id
func exprGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	b := grammar.NewBuilder()
	b.AddTerminal("PLUS", grammar.TerminalDef{Kind: grammar.TString, Value: "+"})
	b.AddTerminal("STAR", grammar.TerminalDef{Kind: grammar.TString, Value: "*"})
	b.AddTerminal("LPAREN", grammar.TerminalDef{Kind: grammar.TString, Value: "("})
	b.AddTerminal("RPAREN", grammar.TerminalDef{Kind: grammar.TString, Value: ")"})
	b.AddTerminal("ID", grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[a-z]+"})

	b.AddProduction("E",
		grammar.Alt{Refs: []grammar.Ref{{Name: "E"}, {Name: "PLUS"}, {Name: "T"}}},
		grammar.Alt{Refs: []grammar.Ref{{Name: "T"}}},
	)
	b.AddProduction("T",
		grammar.Alt{Refs: []grammar.Ref{{Name: "T"}, {Name: "STAR"}, {Name: "F"}}},
		grammar.Alt{Refs: []grammar.Ref{{Name: "F"}}},
	)
	b.AddProduction("F",
		grammar.Alt{Refs: []grammar.Ref{{Name: "LPAREN"}, {Name: "E"}, {Name: "RPAREN"}}},
		grammar.Alt{Refs: []grammar.Ref{{Name: "ID"}}},
	)
	b.WithStart("E")

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func Test_BuildLR0_reachesAcceptableStateCount(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)

	a := BuildLR0(g)

	assert.NotEmpty(a.States)
	initial := a.State(a.Initial)
	assert.NotNil(initial)
	assert.Greater(initial.Items.Len(), 0)
}

func Test_BuildLR0_transitionsAreDeterministic(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)

	a := BuildLR0(g)
	for _, st := range a.States {
		for sym, target := range st.Transitions {
			assert.GreaterOrEqual(target, 0)
			assert.Less(target, len(a.States))
			assert.NotEmpty(sym)
		}
	}
}

func Test_BuildLR1_kernelsCarryLookaheads(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	sets := analyze.Compute(g)

	a := BuildLR1(g, sets)

	initial := a.State(a.Initial)
	found := false
	for _, it := range initial.Items.Items() {
		if it.Lookahead != "" {
			found = true
			break
		}
	}
	assert.True(found, "LR(1) items should carry explicit lookaheads")
}

func Test_MergeLALR_reducesOrPreservesStateCount(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	sets := analyze.Compute(g)

	lr1 := BuildLR1(g, sets)
	lalr, conflicts := MergeLALR(g, lr1)

	assert.Empty(conflicts, "this grammar is LALR-mergeable without new conflicts")
	assert.LessOrEqual(len(lalr.States), len(lr1.States))
	assert.NotEmpty(lalr.States)
}

func Test_MergeLALR_initialStateRemapped(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	sets := analyze.Compute(g)

	lr1 := BuildLR1(g, sets)
	lalr, _ := MergeLALR(g, lr1)

	assert.GreaterOrEqual(lalr.Initial, 0)
	assert.Less(lalr.Initial, len(lalr.States))
}
