package lex

import (
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/symbol"
)

// DefaultWS is the set of characters treated as implicit whitespace when a
// grammar declares no LAYOUT nonterminal and no narrower set is configured.
const DefaultWS = " \t\n\r"

// SkipLayout consumes the longest prefix at pos derivable from the LAYOUT
// nonterminal, when the grammar declares one. LAYOUT is treated as a flat
// alternation of terminals (whitespace, comment delimiters) rather than a
// full recursive sub-grammar: each round tries every terminal reachable
// from one of LAYOUT's productions and greedily consumes the longest
// match, repeating until none match. This covers the common shapes (runs
// of whitespace, single-line and delimited comments) without requiring a
// nested LR sub-parse.
//
// When the grammar has no LAYOUT nonterminal at all, ws supplies a flat set
// of implicit-whitespace characters to skip instead (empty to disable).
// Exported so the GLR driver, which scans without a Scanner value, can
// reuse it directly.
func SkipLayout(g *grammar.Grammar, input string, pos int, ws string) (consumed string, newPos int) {
	if !g.HasLayout() {
		return skipWS(input, pos, ws)
	}

	layoutTerms := layoutTerminals(g)
	if len(layoutTerms) == 0 {
		return skipWS(input, pos, ws)
	}

	start := pos
	for {
		best := ""
		for _, term := range layoutTerms {
			sym := g.Symbol(term)
			if sym == nil || sym.Recognizer == nil {
				continue
			}
			if matched, ok := sym.Recognizer.Recognize(input, pos); ok && len(matched) > len(best) {
				best = matched
			}
		}
		if best == "" {
			break
		}
		pos += len(best)
	}
	return input[start:pos], pos
}

// skipWS consumes the longest run of characters in ws starting at pos.
func skipWS(input string, pos int, ws string) (string, int) {
	if ws == "" {
		return "", pos
	}
	start := pos
	for pos < len(input) && isWSByte(input[pos], ws) {
		pos++
	}
	return input[start:pos], pos
}

func isWSByte(b byte, ws string) bool {
	for i := 0; i < len(ws); i++ {
		if ws[i] == b {
			return true
		}
	}
	return false
}

// layoutTerminals collects every terminal symbol referenced anywhere in
// LAYOUT's productions.
func layoutTerminals(g *grammar.Grammar) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range g.ProductionsFor(symbol.NameLayout) {
		for _, s := range p.Symbols {
			if g.IsTerminal(s) && !seen[s] {
				seen[s] = true
				out = append(out, s)
			}
		}
	}
	return out
}
