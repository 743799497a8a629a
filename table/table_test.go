package table

import (
	"testing"

	"github.com/dekarrin/gparse/analyze"
	"github.com/dekarrin/gparse/grammar"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// exprGrammar mirrors automaton's textbook expression grammar.
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

// ambiguousExprGrammar is the classically-ambiguous `E -> E + E | E * E | id`
// shape with explicit rule priorities below the terminals' default
// priority, so the operator-precedence conflict-resolution rule (spec.md
// §4.D point 1) settles every shift/reduce conflict by comparing
// priorities alone.
func ambiguousExprGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	b := grammar.NewBuilder()
	b.AddTerminal("PLUS", grammar.TerminalDef{Kind: grammar.TString, Value: "+"})
	b.AddTerminal("STAR", grammar.TerminalDef{Kind: grammar.TString, Value: "*"})
	b.AddTerminal("ID", grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[a-z]+"})

	b.AddProduction("E",
		grammar.Alt{Refs: []grammar.Ref{{Name: "E"}, {Name: "PLUS"}, {Name: "E"}}, Assoc: "left", Priority: 1},
		grammar.Alt{Refs: []grammar.Ref{{Name: "E"}, {Name: "STAR"}, {Name: "E"}}, Assoc: "left", Priority: 2},
		grammar.Alt{Refs: []grammar.Ref{{Name: "ID"}}},
	)
	b.WithStart("E")

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func Test_Build_LALR_noResidualConflicts(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	sets := analyze.Compute(g)

	tbl, err := Build(g, sets, Options{Mode: ModeLALR, PreferShifts: true, PreferShiftsOverEmpty: true})
	assert.NoError(err)
	assert.NotNil(tbl)
	assert.GreaterOrEqual(tbl.AcceptState, 0)
}

func Test_Build_SLR_noResidualConflicts(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	sets := analyze.Compute(g)

	tbl, err := Build(g, sets, Options{Mode: ModeSLR, PreferShifts: true, PreferShiftsOverEmpty: true})
	assert.NoError(err)
	assert.NotNil(tbl)
	assert.GreaterOrEqual(tbl.AcceptState, 0)
}

func Test_Build_operatorPrecedenceResolvesAmbiguity(t *testing.T) {
	assert := assert.New(t)
	g := ambiguousExprGrammar(t)
	sets := analyze.Compute(g)

	tbl, err := Build(g, sets, Options{Mode: ModeLALR})
	assert.NoError(err, "priority/associativity should resolve every shift/reduce conflict")
	assert.NotNil(tbl)
}

func Test_Build_expectedTerminalsNonEmptyForEveryState(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	sets := analyze.Compute(g)

	tbl, err := Build(g, sets, Options{Mode: ModeLALR, PreferShifts: true, PreferShiftsOverEmpty: true})
	require.NoError(t, err)

	for s := 0; s < tbl.NumStates(); s++ {
		assert.NotEmpty(tbl.Expected[s], "state %d should expect at least one terminal", s)
	}
}

func Test_Build_unknownModeErrors(t *testing.T) {
	assert := assert.New(t)
	g := exprGrammar(t)
	sets := analyze.Compute(g)

	_, err := Build(g, sets, Options{Mode: "bogus"})
	assert.Error(err)
}
