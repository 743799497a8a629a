package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dekarrin/gparse/grammar"
)

// Item is an LR(1) item: a production, a dot position, and a lookahead set
// represented as a single terminal per item (the classical LR(1)
// representation; a kernel with several lookaheads for the same core is
// several Items sharing the same ProdID/Dot). SLR/LR(0) analysis uses the
// same struct with Lookahead left blank and ignored (spec.md §3, "LR item").
type Item struct {
	ProdID    int
	Dot       int
	Lookahead string // empty for an LR(0) item
}

// Key returns a string uniquely identifying the item for use as a set
// element / map key.
func (it Item) Key() string {
	if it.Lookahead == "" {
		return fmt.Sprintf("%d.%d", it.ProdID, it.Dot)
	}
	return fmt.Sprintf("%d.%d,%s", it.ProdID, it.Dot, it.Lookahead)
}

// Core returns the LR(0) core of the item (production + dot, no
// lookahead), used for LALR state-merging by kernel identity (spec.md §4.C).
func (it Item) Core() Item {
	return Item{ProdID: it.ProdID, Dot: it.Dot}
}

// String renders "LHS -> α . β" (", lookahead" appended for LR(1) items),
// resolving symbol names via g.
func (it Item) String(g *grammar.Grammar) string {
	p := g.Production(it.ProdID)
	left := strings.Join(p.Symbols[:it.Dot], " ")
	right := strings.Join(p.Symbols[it.Dot:], " ")
	s := fmt.Sprintf("%s -> %s . %s", p.NonTerminal, left, right)
	if it.Lookahead != "" {
		s += ", " + it.Lookahead
	}
	return strings.TrimSpace(s)
}

// AtDot returns the symbol immediately after the dot, and whether one
// exists (false at the end of the production).
func (it Item) AtDot(g *grammar.Grammar) (string, bool) {
	p := g.Production(it.ProdID)
	if it.Dot >= len(p.Symbols) {
		return "", false
	}
	return p.Symbols[it.Dot], true
}

// Advance returns the item with the dot moved one position to the right.
func (it Item) Advance() Item {
	return Item{ProdID: it.ProdID, Dot: it.Dot + 1, Lookahead: it.Lookahead}
}

// ItemSet is an ordered, deduplicated collection of items (a parser state's
// closure or kernel).
type ItemSet struct {
	order []Item
	index map[string]int
}

// NewItemSet builds an ItemSet from the given items, deduplicating by Key.
func NewItemSet(items ...Item) *ItemSet {
	s := &ItemSet{index: map[string]int{}}
	for _, it := range items {
		s.Add(it)
	}
	return s
}

// Add inserts it if not already present.
func (s *ItemSet) Add(it Item) bool {
	k := it.Key()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = len(s.order)
	s.order = append(s.order, it)
	return true
}

// Items returns the items in insertion order.
func (s *ItemSet) Items() []Item {
	return s.order
}

// Len returns the number of items.
func (s *ItemSet) Len() int {
	return len(s.order)
}

// Key returns a canonical, order-independent string identity for the set,
// used as a state's identity when building the canonical collection.
func (s *ItemSet) Key() string {
	keys := make([]string, len(s.order))
	for i, it := range s.order {
		keys[i] = it.Key()
	}
	sort.Strings(keys)
	return strings.Join(keys, "|")
}
