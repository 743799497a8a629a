package parser

import (
	"testing"

	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/symbol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// calcGrammar is a small arithmetic grammar whose ambiguity is resolved by
// the operator-precedence rule: its terminals keep the default priority
// (symbol.DefaultPriority), which exceeds both rule priorities, so every
// shift/reduce conflict resolves to shift and "4 + 2 * 3" parses to 10,
// never 18.
func calcGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	b := grammar.NewBuilder()
	b.AddTerminal("PLUS", grammar.TerminalDef{Kind: grammar.TString, Value: "+"})
	b.AddTerminal("STAR", grammar.TerminalDef{Kind: grammar.TString, Value: "*"})
	b.AddTerminal("NUM", grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[0-9]+"})
	b.AddTerminal("WS", grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[ \\t]+"})

	b.AddProduction("E",
		grammar.Alt{Refs: []grammar.Ref{{Name: "E"}, {Name: "PLUS"}, {Name: "E"}}, Assoc: "left", Priority: 1},
		grammar.Alt{Refs: []grammar.Ref{{Name: "E"}, {Name: "STAR"}, {Name: "E"}}, Assoc: "left", Priority: 2},
		grammar.Alt{Refs: []grammar.Ref{{Name: "NUM"}}},
	)
	b.AddProduction("LAYOUT",
		grammar.Alt{Refs: []grammar.Ref{{Name: "WS"}}},
	)
	b.WithStart("E")

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func sum(ctx *Context, children []any) (any, error) {
	return children[0].(int) + children[2].(int), nil
}

func product(ctx *Context, children []any) (any, error) {
	return children[0].(int) * children[2].(int), nil
}

func num(ctx *Context, children []any) (any, error) {
	n := 0
	for _, c := range children[0].(string) {
		n = n*10 + int(c-'0')
	}
	return n, nil
}

func Test_Parser_operatorPrecedenceEvaluatesCorrectly(t *testing.T) {
	assert := assert.New(t)
	g := calcGrammar(t)

	p, err := New(g, Options{
		PreferShifts: true,
		Actions: map[string]any{
			"E": []ActionFunc{sum, product, num},
		},
	})
	require.NoError(t, err)

	_, value, err := p.Parse("4 + 2 * 3")
	assert.NoError(err)
	assert.Equal(10, value)
}

func Test_Parser_buildTreeRetainsSpanAndLayout(t *testing.T) {
	assert := assert.New(t)
	g := calcGrammar(t)

	p, err := New(g, Options{
		BuildTree: true,
		Actions: map[string]any{
			"E": []ActionFunc{sum, product, num},
		},
	})
	require.NoError(t, err)

	tree, value, err := p.Parse("4 + 2 * 3")
	assert.NoError(err)
	assert.Nil(value)
	require.NotNil(t, tree)
	assert.Equal(0, tree.Start)
	assert.Equal(9, tree.End)
	require.Len(t, tree.Children, 3)
	assert.Equal("PLUS", tree.Children[1].Symbol)
	assert.Equal(" ", tree.Children[1].Layout)
}

func Test_Parser_callActionsDuringSeparateTreeWalk(t *testing.T) {
	assert := assert.New(t)
	g := calcGrammar(t)

	p, err := New(g, Options{
		BuildTree:                  true,
		CallActionsDuringTreeBuild: false,
		Actions: map[string]any{
			"E": []ActionFunc{sum, product, num},
		},
	})
	require.NoError(t, err)

	tree, value, err := p.Parse("4 + 2 * 3")
	assert.NoError(err)
	assert.Nil(value)
	require.NotNil(t, tree)

	walked, err := p.CallActions(tree)
	assert.NoError(err)
	assert.Equal(10, walked)
}

// keywordGrammar declares a string terminal "IF" alongside a regex
// identifier terminal, exercising the keyword-vs-identifier scanner
// boundary end to end through a full parse.
func keywordGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	b := grammar.NewBuilder()
	b.AddTerminal(symbol.NameKeywordHook, grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[a-z][a-z0-9]*"})
	b.AddTerminal("IF", grammar.TerminalDef{Kind: grammar.TString, Value: "if"})
	b.AddTerminal("ID", grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[a-z][a-z0-9]*"})
	b.AddTerminal("WS", grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[ \\t]+"})

	b.AddProduction("S",
		grammar.Alt{Refs: []grammar.Ref{{Name: "IF"}, {Name: "ID"}}},
		grammar.Alt{Refs: []grammar.Ref{{Name: "ID"}}},
	)
	b.AddProduction("LAYOUT",
		grammar.Alt{Refs: []grammar.Ref{{Name: "WS"}}},
	)
	b.WithStart("S")

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func Test_Parser_keywordNotMistakenForIdentifier(t *testing.T) {
	assert := assert.New(t)
	g := keywordGrammar(t)

	p, err := New(g, Options{})
	require.NoError(t, err)

	_, _, err = p.Parse("if ifx")
	assert.NoError(err)
}

func Test_Parser_identifierThatLooksLikeKeywordPrefix(t *testing.T) {
	assert := assert.New(t)
	g := keywordGrammar(t)

	p, err := New(g, Options{})
	require.NoError(t, err)

	_, _, err = p.Parse("ifx")
	assert.NoError(err)
}

func Test_Parser_rejectsTrailingGarbage(t *testing.T) {
	assert := assert.New(t)
	g := calcGrammar(t)

	p, err := New(g, Options{
		Actions: map[string]any{"E": []ActionFunc{sum, product, num}},
	})
	require.NoError(t, err)

	_, _, err = p.Parse("4 +")
	assert.Error(err)
}

func Test_Parser_prebuiltTableIsReused(t *testing.T) {
	assert := assert.New(t)
	g := calcGrammar(t)

	first, err := New(g, Options{Actions: map[string]any{"E": []ActionFunc{sum, product, num}}})
	require.NoError(t, err)

	second, err := New(g, Options{
		PrebuiltTable: first.Table,
		Actions:       map[string]any{"E": []ActionFunc{sum, product, num}},
	})
	require.NoError(t, err)
	assert.Same(first.Table, second.Table)

	_, value, err := second.Parse("4 + 2 * 3")
	assert.NoError(err)
	assert.Equal(10, value)
}
