package lex

import (
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/perr"
	"github.com/dekarrin/gparse/symbol"
	"github.com/dekarrin/gparse/table"
)

// CustomRecognitionFunc lets a caller fall back to or augment default
// recognition; it receives the position to scan at and a closure that
// performs the built-in recognition-and-disambiguation sequence
// (spec.md §4.E step 2).
type CustomRecognitionFunc func(input string, pos int, state int, next func() (Token, error)) (Token, error)

// DynamicDisambiguator breaks a tie between terminals flagged dynamic when
// every other disambiguation rule still leaves more than one candidate
// (spec.md §4.E step 4.e).
type DynamicDisambiguator func(candidates []Match) (chosen string, err error)

// Scanner recognizes one token at a time against a grammar's terminal
// recognizers, filtered to what the parse table expects in the current
// state (spec.md §4.E).
type Scanner struct {
	Grammar *grammar.Grammar
	Table   *table.Table

	// Ws is the implicit-whitespace character set used when Grammar has
	// no LAYOUT nonterminal; empty disables implicit skipping. Defaults to
	// DefaultWS.
	Ws string

	CustomTokenRecognition CustomRecognitionFunc
	DynamicDisambiguation  DynamicDisambiguator
}

// NewScanner builds a Scanner over g, filtering recognition per-state
// using tbl's expected-terminal lists.
func NewScanner(g *grammar.Grammar, tbl *table.Table) *Scanner {
	return &Scanner{Grammar: g, Table: tbl, Ws: DefaultWS}
}

// Next scans one token from input at pos, in automaton state, per the
// sequence in spec.md §4.E: skip layout, try the custom hook, default
// recognition, then disambiguation.
func (s *Scanner) Next(input string, pos int, state int) (Token, error) {
	layout, afterLayout := SkipLayout(s.Grammar, input, pos, s.Ws)

	next := func() (Token, error) {
		return s.defaultRecognize(input, afterLayout, state, layout)
	}

	if s.CustomTokenRecognition != nil {
		return s.CustomTokenRecognition(input, afterLayout, state, next)
	}
	return next()
}

func (s *Scanner) defaultRecognize(input string, pos int, state int, layout string) (Token, error) {
	expected := s.Table.ExpectedTerminals(state)
	finish := s.Table.Finish[state]

	matches := RecognizeAll(s.Grammar, input, pos, expected)
	if len(matches) == 0 {
		parseErr := perr.NewParseError(pos, expected, layout, "no terminal recognized at this position")
		parseErr.Line = lineOf(input, pos)
		parseErr.Column = colOf(input, pos)
		return Token{}, parseErr
	}

	chosen, err := s.disambiguate(matches, finish, pos, len(input))
	if err != nil {
		return Token{}, err
	}

	return Token{
		Terminal:     chosen.Terminal,
		Text:         chosen.Text,
		Pos:          pos,
		Line:         lineOf(input, pos),
		Col:          colOf(input, pos),
		LayoutBefore: layout,
	}, nil
}

// RecognizeAll matches every terminal named in expected against input at
// pos, independent of any particular table representation; both the
// deterministic scanner and the GLR driver's multi-state recognition
// build on this.
func RecognizeAll(g *grammar.Grammar, input string, pos int, expected []string) []Match {
	var matches []Match
	for _, term := range expected {
		sym := g.Symbol(term)
		if sym == nil || sym.Recognizer == nil {
			continue
		}
		if text, ok := sym.Recognizer.Recognize(input, pos); ok {
			matches = append(matches, Match{Terminal: term, Text: text})
		}
	}
	return matches
}

// disambiguate applies the ordered rules from spec.md §4.E step 4.
func (s *Scanner) disambiguate(matches []Match, finish map[string]bool, pos, inputLen int) (Match, error) {
	return DisambiguateMatches(s.Grammar, matches, finish, pos, inputLen, s.DynamicDisambiguation)
}

// DisambiguateMatches is the free-function form of the disambiguation
// sequence, usable anywhere a set of Matches needs narrowing without a
// Scanner instance at hand (the GLR driver's lexical_disambiguation
// option, specifically).
func DisambiguateMatches(g *grammar.Grammar, matches []Match, finish map[string]bool, pos, inputLen int, dyn DynamicDisambiguator) (Match, error) {
	// a. An exact match to the full remaining relevant span whose terminal
	// is finish wins immediately. "Full remaining relevant span" is taken
	// to mean the match consumes to the end of input, matching how
	// `finish` terminals are meant to short-circuit trailing ambiguity.
	for _, m := range matches {
		if finish[m.Terminal] && pos+len(m.Text) == inputLen {
			return m, nil
		}
	}

	// b. Prefer string/keyword (most specific) matches over regex/custom.
	var specific []Match
	for _, m := range matches {
		sym := g.Symbol(m.Terminal)
		if isMostSpecific(sym) {
			specific = append(specific, m)
		}
	}
	if len(specific) > 0 {
		matches = specific
	}

	// c. Keep only the longest matches.
	matches = longestOnly(matches)
	if len(matches) == 1 {
		return matches[0], nil
	}

	// d. Restrict to terminals marked prefer, if any.
	var preferred []Match
	for _, m := range matches {
		sym := g.Symbol(m.Terminal)
		if sym != nil && sym.Prefer {
			preferred = append(preferred, m)
		}
	}
	if len(preferred) > 0 {
		matches = preferred
	}
	if len(matches) == 1 {
		return matches[0], nil
	}

	// e. Consult the dynamic-disambiguation callback if any remaining
	// terminal is marked dynamic.
	anyDynamic := false
	for _, m := range matches {
		sym := g.Symbol(m.Terminal)
		if sym != nil && sym.Dynamic {
			anyDynamic = true
			break
		}
	}
	if anyDynamic && dyn != nil {
		chosen, err := dyn(matches)
		if err != nil {
			return Match{}, err
		}
		for _, m := range matches {
			if m.Terminal == chosen {
				return m, nil
			}
		}
	}

	// f. Still ambiguous.
	if len(matches) > 1 {
		cands := map[string]string{}
		for _, m := range matches {
			cands[m.Terminal] = m.Text
		}
		return Match{}, perr.NewDisambiguationError(pos, cands)
	}

	return matches[0], nil
}

func isMostSpecific(sym *symbol.Symbol) bool {
	if sym == nil || sym.Recognizer == nil {
		return false
	}
	if sym.Keyword {
		return true
	}
	return sym.Recognizer.Kind() == symbol.RecognizerString
}

func longestOnly(matches []Match) []Match {
	if len(matches) == 0 {
		return matches
	}
	maxLen := 0
	for _, m := range matches {
		if len(m.Text) > maxLen {
			maxLen = len(m.Text)
		}
	}
	var out []Match
	for _, m := range matches {
		if len(m.Text) == maxLen {
			out = append(out, m)
		}
	}
	return out
}

func lineOf(input string, pos int) int {
	line := 1
	for i := 0; i < pos && i < len(input); i++ {
		if input[i] == '\n' {
			line++
		}
	}
	return line
}

func colOf(input string, pos int) int {
	col := 1
	for i := 0; i < pos && i < len(input); i++ {
		if input[i] == '\n' {
			col = 1
		} else {
			col++
		}
	}
	return col
}
