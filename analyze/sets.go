// Package analyze implements component C of the toolkit: FIRST, FOLLOW, and
// NULLABLE over a normalized grammar, plus the LR(0)/LR(1) item closures and
// GOTO function the table builder runs the subset/kernel construction over
// (spec.md §4.C).
package analyze

import (
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/internal/util"
	"github.com/dekarrin/gparse/symbol"
)

// Sets holds the fixed-point NULLABLE/FIRST/FOLLOW computation for a
// grammar.
type Sets struct {
	g        *grammar.Grammar
	nullable map[string]bool
	first    map[string]util.StringSet
	follow   map[string]util.StringSet
}

// Compute runs the standard worklist fixed-point algorithm for NULLABLE,
// FIRST, and FOLLOW (spec.md §4.C).
func Compute(g *grammar.Grammar) *Sets {
	s := &Sets{
		g:        g,
		nullable: map[string]bool{},
		first:    map[string]util.StringSet{},
		follow:   map[string]util.StringSet{},
	}

	for _, name := range allSymbolNames(g) {
		s.first[name] = util.NewStringSet()
		s.follow[name] = util.NewStringSet()
	}

	// Terminals are trivially their own FIRST set and never nullable
	// (EMPTY is the sole exception: it matches the empty string by
	// definition, spec.md §3).
	for _, t := range g.Terminals() {
		s.first[t].Add(t)
	}
	s.nullable[symbol.NameEmpty] = true
	s.first[symbol.NameEmpty].Add(symbol.NameEmpty)

	s.follow[g.StartSymbol()].Add(symbol.NameEOF)
	s.follow[g.AugmentedStart()].Add(symbol.NameEOF)

	changed := true
	for changed {
		changed = false

		for _, p := range g.Productions() {
			// NULLABLE(A) |= all of rhs is nullable (or rhs is empty)
			if !s.nullable[p.NonTerminal] && allNullable(s, p.Symbols) {
				s.nullable[p.NonTerminal] = true
				changed = true
			}

			// FIRST(A) |= FIRST of the nullable-prefix of rhs
			prefixFirst := s.firstOfSeqLocked(p.Symbols)
			before := s.first[p.NonTerminal].Len()
			s.first[p.NonTerminal].AddAll(prefixFirst)
			if s.first[p.NonTerminal].Len() != before {
				changed = true
			}

			// FOLLOW propagation: for each B in rhs, FOLLOW(B) gains
			// FIRST(rest-of-rhs-after-B); if that's nullable, also gains
			// FOLLOW(A).
			for i, sym := range p.Symbols {
				if g.IsTerminal(sym) {
					continue
				}
				rest := p.Symbols[i+1:]
				firstRest := s.firstOfSeqLocked(rest)
				beforeLen := s.follow[sym].Len()
				for _, t := range firstRest.Elements() {
					if t != symbol.NameEmpty {
						s.follow[sym].Add(t)
					}
				}
				if allNullable(s, rest) {
					s.follow[sym].AddAll(s.follow[p.NonTerminal])
				}
				if s.follow[sym].Len() != beforeLen {
					changed = true
				}
			}
		}
	}

	return s
}

func allSymbolNames(g *grammar.Grammar) []string {
	names := append([]string{}, g.Terminals()...)
	names = append(names, g.NonTerminals()...)
	return names
}

func allNullable(s *Sets, seq []string) bool {
	for _, sym := range seq {
		if !s.nullable[sym] {
			return false
		}
	}
	return true
}

// Nullable reports whether X ⇒* ε.
func (s *Sets) Nullable(x string) bool {
	return s.nullable[x]
}

// First returns FIRST(X) for a single symbol. The returned set includes the
// sentinel symbol.NameEmpty when X is nullable (spec.md §8,
// "first(X) contains ε ⇔ nullable(X)").
func (s *Sets) First(x string) util.StringSet {
	out := util.NewStringSet()
	out.AddAll(s.first[x])
	if s.nullable[x] {
		out.Add(symbol.NameEmpty)
	}
	return out
}

// FirstOfSeq computes FIRST(α) for a RHS sequence: the union of FIRST of
// each prefix symbol up to the first non-nullable one (spec.md §4.C).
func (s *Sets) FirstOfSeq(seq []string) util.StringSet {
	out := s.firstOfSeqLocked(seq)
	if allNullable(s, seq) {
		out.Add(symbol.NameEmpty)
	}
	return out
}

func (s *Sets) firstOfSeqLocked(seq []string) util.StringSet {
	out := util.NewStringSet()
	for _, sym := range seq {
		for _, t := range s.first[sym].Elements() {
			if t != symbol.NameEmpty {
				out.Add(t)
			}
		}
		if !s.nullable[sym] {
			break
		}
	}
	return out
}

// Follow returns FOLLOW(X).
func (s *Sets) Follow(x string) util.StringSet {
	return s.follow[x]
}
