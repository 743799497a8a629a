package grammar

import (
	"strings"

	"github.com/dekarrin/gparse/symbol"
)

// Production is a single grammar rule: a left-hand nonterminal producing an
// ordered right-hand side of symbol names (spec.md §3, "Production").
// Productions are globally numbered in insertion order (ID) and additionally
// track their zero-based alternative index within their LHS (Alt).
type Production struct {
	ID  int
	Alt int

	NonTerminal string
	Symbols     []string // RHS, in order; empty means an epsilon production

	Assoc    symbol.Assoc
	Priority int

	// Nops disables prefer-shift behavior for this production when it is
	// the reducing side of a shift/reduce conflict (GLR hint, spec.md §3).
	Nops bool
	// Nopse disables prefer-shift-over-empty behavior specifically when
	// this production is an epsilon alternative (GLR hint, spec.md §3).
	Nopse bool
}

// IsEpsilon reports whether the production has an empty right-hand side.
func (p Production) IsEpsilon() bool {
	return len(p.Symbols) == 0
}

// String renders the production as "LHS -> a b c" ("LHS -> ε" if empty).
func (p Production) String() string {
	rhs := "ε"
	if len(p.Symbols) > 0 {
		rhs = strings.Join(p.Symbols, " ")
	}
	return p.NonTerminal + " -> " + rhs
}

// Equal reports whether p and o have the same LHS and RHS sequence. IDs and
// metadata are not compared; this mirrors how the teacher's Production.Equal
// treats only the symbol sequence as the identity of a rule.
func (p Production) Equal(o any) bool {
	other, ok := o.(Production)
	if !ok {
		return false
	}
	if p.NonTerminal != other.NonTerminal {
		return false
	}
	if len(p.Symbols) != len(other.Symbols) {
		return false
	}
	for i := range p.Symbols {
		if p.Symbols[i] != other.Symbols[i] {
			return false
		}
	}
	return true
}
