package glr

import (
	"strconv"
	"testing"

	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ambiguousExprGrammar is the classic `E -> E + E | E * E | num` shape
// with no precedence declared at all, so "4 + 2 * 3" is genuinely
// ambiguous: both left-to-right groupings are valid derivations.
func ambiguousExprGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	b := grammar.NewBuilder()
	b.AddTerminal("PLUS", grammar.TerminalDef{Kind: grammar.TString, Value: "+"})
	b.AddTerminal("STAR", grammar.TerminalDef{Kind: grammar.TString, Value: "*"})
	b.AddTerminal("NUM", grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[0-9]+"})
	b.AddTerminal("WS", grammar.TerminalDef{Kind: grammar.TRegexp, Value: "[ \\t]+"})

	b.AddProduction("E",
		grammar.Alt{Refs: []grammar.Ref{{Name: "E"}, {Name: "PLUS"}, {Name: "E"}}},
		grammar.Alt{Refs: []grammar.Ref{{Name: "E"}, {Name: "STAR"}, {Name: "E"}}},
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

func Test_GLR_ambiguousExpressionYieldsBothInterpretations(t *testing.T) {
	assert := assert.New(t)
	g := ambiguousExprGrammar(t)

	p, err := New(g, Options{})
	require.NoError(t, err)

	result, err := p.Parse("4 + 2 * 3")
	require.NoError(t, err)
	require.Len(t, result.Roots, 1)

	root := result.Roots[0]
	assert.True(root.IsAmbiguous(), "top-level E node should carry both derivations")

	trees, truncated := root.Trees(10)
	assert.False(truncated)

	values := map[int]bool{}
	for _, tr := range trees {
		values[evalNumeric(tr)] = true
	}
	assert.True(values[10], "4+(2*3)=10 should be one of the two interpretations")
	assert.True(values[18], "(4+2)*3=18 should be the other")
	assert.Len(values, 2)
}

// evalNumeric evaluates a parser.Node tree rooted at a binary E node: a
// leaf NUM node is its own integer value; an interior node applies PLUS or
// STAR to its two E children, identified by the middle child's symbol.
func evalNumeric(n *parser.Node) int {
	if n.IsTerm() {
		v, _ := strconv.Atoi(n.Text)
		return v
	}
	if len(n.Children) == 1 {
		return evalNumeric(n.Children[0])
	}
	left := evalNumeric(n.Children[0])
	right := evalNumeric(n.Children[2])
	if n.Children[1].Symbol == "PLUS" {
		return left + right
	}
	return left * right
}

// palindromeGrammar is `S -> '1' S '1' | '0' S '0' | ε`.
func palindromeGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()

	b := grammar.NewBuilder()
	b.AddTerminal("ONE", grammar.TerminalDef{Kind: grammar.TString, Value: "1"})
	b.AddTerminal("ZERO", grammar.TerminalDef{Kind: grammar.TString, Value: "0"})

	b.AddProduction("S",
		grammar.Alt{Refs: []grammar.Ref{{Name: "ONE"}, {Name: "S"}, {Name: "ONE"}}},
		grammar.Alt{Refs: []grammar.Ref{{Name: "ZERO"}, {Name: "S"}, {Name: "ZERO"}}},
		grammar.Alt{Refs: nil},
	)
	b.WithStart("S")

	g, err := b.Build()
	require.NoError(t, err)
	return g
}

func Test_GLR_palindromeLanguageAcceptsWithExactlyOneParse(t *testing.T) {
	assert := assert.New(t)
	g := palindromeGrammar(t)

	p, err := New(g, Options{})
	require.NoError(t, err)

	result, err := p.Parse("0101000110001010")
	require.NoError(t, err)
	require.Len(t, result.Roots, 1)

	trees, truncated := result.Roots[0].Trees(10)
	assert.False(truncated)
	assert.Len(t, trees, 1)
}

func Test_GLR_nonPalindromeIsRejected(t *testing.T) {
	assert := assert.New(t)
	g := palindromeGrammar(t)

	p, err := New(g, Options{})
	require.NoError(t, err)

	_, err = p.Parse("0110000001")
	assert.Error(err)
}
