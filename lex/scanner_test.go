package lex

import (
	"testing"

	"github.com/dekarrin/gparse/analyze"
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/symbol"
	"github.com/dekarrin/gparse/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// keywordGrammar declares a keyword "if" alongside a general identifier
// regex, exercising the KEYWORD hook and the most-specific disambiguation
// rule (spec.md §4.A, §4.E step 4.b): "if" must win over ID even though
// both can match the text "if".
func keywordGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	b := grammar.NewBuilder()
	b.AddTerminal(symbol.NameKeywordHook, grammar.TerminalDef{Kind: grammar.TRegexp, Value: `[a-zA-Z_][a-zA-Z0-9_]*`})
	b.AddTerminal("IF", grammar.TerminalDef{Kind: grammar.TString, Value: "if"})
	b.AddTerminal("ID", grammar.TerminalDef{Kind: grammar.TRegexp, Value: `[a-zA-Z_][a-zA-Z0-9_]*`})
	b.AddTerminal("WS", grammar.TerminalDef{Kind: grammar.TRegexp, Value: `[ \t\n]+`})

	b.AddProduction("LAYOUT",
		grammar.Alt{Refs: []grammar.Ref{{Name: "WS"}}},
	)
	b.AddProduction("S",
		grammar.Alt{Refs: []grammar.Ref{{Name: "IF"}}},
		grammar.Alt{Refs: []grammar.Ref{{Name: "ID"}}},
	)
	b.WithStart("S")

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func buildTable(t *testing.T, g *grammar.Grammar) *table.Table {
	t.Helper()
	sets := analyze.Compute(g)
	tbl, err := table.Build(g, sets, table.Options{Mode: table.ModeLALR, PreferShifts: true, PreferShiftsOverEmpty: true})
	require.NoError(t, err)
	return tbl
}

func Test_Scanner_keywordWinsOverIdentifier(t *testing.T) {
	assert := assert.New(t)
	g := keywordGrammar(t)
	tbl := buildTable(t, g)
	s := NewScanner(g, tbl)

	tok, err := s.Next("if", 0, tbl.Initial)
	require.NoError(t, err)
	assert.Equal("IF", tok.Terminal)
	assert.Equal("if", tok.Text)
}

func Test_Scanner_identifierNotMistakenForKeyword(t *testing.T) {
	assert := assert.New(t)
	g := keywordGrammar(t)
	tbl := buildTable(t, g)
	s := NewScanner(g, tbl)

	tok, err := s.Next("ifx", 0, tbl.Initial)
	require.NoError(t, err)
	assert.Equal("ID", tok.Terminal)
	assert.Equal("ifx", tok.Text)
}

func Test_Scanner_skipsLeadingLayout(t *testing.T) {
	assert := assert.New(t)
	g := keywordGrammar(t)
	tbl := buildTable(t, g)
	s := NewScanner(g, tbl)

	tok, err := s.Next("   ifx", 0, tbl.Initial)
	require.NoError(t, err)
	assert.Equal("ID", tok.Terminal)
	assert.Equal("ifx", tok.Text)
	assert.Equal("   ", tok.LayoutBefore)
	assert.Equal(3, tok.Pos)
}

func Test_Scanner_noMatchReportsParseError(t *testing.T) {
	assert := assert.New(t)
	g := keywordGrammar(t)
	tbl := buildTable(t, g)
	s := NewScanner(g, tbl)

	_, err := s.Next("123", 0, tbl.Initial)
	assert.Error(err)
}
