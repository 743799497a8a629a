// Package glr implements a graph-structured-stack generalized LR driver:
// it explores every viable derivation in parallel over a possibly
// ambiguous grammar, producing a shared packed parse forest rather than
// committing to one parse.
package glr

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gparse/analyze"
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/lex"
	"github.com/dekarrin/gparse/table"
	"github.com/emirpasic/gods/v2/sets/hashset"
)

// Options configures a Parser.
type Options struct {
	// LexicalDisambiguation re-applies the ordinary scanner disambiguation
	// rules to narrow the viable-token set at each position, instead of
	// exploring every token every matching terminal recognizer produces.
	LexicalDisambiguation bool

	DynamicDisambiguation lex.DynamicDisambiguator

	// Ws is the implicit-whitespace character set used when Grammar has no
	// LAYOUT nonterminal; empty disables implicit skipping. Defaults to
	// lex.DefaultWS.
	Ws *string
}

func (o Options) ws() string {
	if o.Ws != nil {
		return *o.Ws
	}
	return lex.DefaultWS
}

// Parser drives a grammar's multi-valued action table over a
// graph-structured stack.
type Parser struct {
	Grammar *grammar.Grammar
	table   *glrTable
	Opts    Options
}

// New builds the GLR table needed to drive g. Unlike the deterministic
// parser, a shift/reduce or reduce/reduce conflict in the table is not an
// error here — GLR's entire purpose is exploring every head a conflict
// would otherwise force a choice between.
func New(g *grammar.Grammar, opts Options) (*Parser, error) {
	sets := analyze.Compute(g)
	tbl := buildGLRTable(g, sets)

	return &Parser{
		Grammar: g,
		table:   tbl,
		Opts:    opts,
	}, nil
}

// Result is the outcome of a GLR parse: the start symbol's forest node
// under every accepting head, each spanning the full input. More than one
// root means the grammar is genuinely ambiguous on this input.
type Result struct {
	Roots []*Node
}

// reductionKey identifies one (vertex, production) reduce application, so
// the fixed-point loop below never re-applies the same reduction to the
// same vertex twice. Since a vertex is itself keyed by (state, position),
// this is what keeps an epsilon production from re-entering the same
// state at the same position forever: the second attempt at (v, prod) is
// refused outright rather than merely rate-limited.
type reductionKey struct {
	v    vertexID
	prod int
}

// Parse runs the multi-head GLR algorithm over input, returning every
// accepting root.
func (p *Parser) Parse(input string) (*Result, error) {
	stacks := newGSS()
	forest := newForestCache()
	root, _ := stacks.vertexFor(p.table.Initial, 0)

	buckets := map[int]map[vertexID]bool{0: {root: true}}
	seenReductions := hashset.New[reductionKey]()

	var result Result
	var lastErr error

	for len(buckets) > 0 {
		pos := minKey(buckets)
		frontier := buckets[pos]
		delete(buckets, pos)

		toks, err := p.scanAll(input, pos, frontier, stacks)
		if err != nil {
			lastErr = err
		}

		p.reduceToFixedPoint(stacks, forest, frontier, pos, toks, seenReductions)

		for v := range frontier {
			st := stacks.vertices[v].state
			for _, tok := range toks {
				for _, action := range p.table.Action[st][tok.Terminal] {
					switch action.Type {
					case table.Shift:
						newPos := tok.Pos + len(tok.Text)
						nv, _ := stacks.vertexFor(action.State, newPos)
						node := &Node{Symbol: tok.Terminal, Terminal: true, Text: tok.Text, Start: tok.Pos, End: newPos, Layout: tok.LayoutBefore}
						stacks.addEdge(nv, v, node)
						if buckets[newPos] == nil {
							buckets[newPos] = map[vertexID]bool{}
						}
						buckets[newPos][nv] = true
					case table.Accept:
						if rootNode := topNodeInto(stacks, v); rootNode != nil {
							result.Roots = append(result.Roots, rootNode)
						}
					}
				}
			}
		}
	}

	if len(result.Roots) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("glr: no derivation reached an accept state")
	}
	return &result, nil
}

// scanAll recognizes every token viable at pos across every state in the
// frontier: the union of each state's expected-terminal list, fed through
// the same recognition primitives the deterministic scanner uses. When
// LexicalDisambiguation is set, the ordinary narrowing rules are applied
// per state so only the winning terminal(s) for that state's expectations
// survive; otherwise every terminal any live recognizer matches is kept,
// letting divergent heads each pick their own viable token.
func (p *Parser) scanAll(input string, pos int, frontier map[vertexID]bool, stacks *gss) ([]lex.Token, error) {
	layout, afterLayout := lex.SkipLayout(p.Grammar, input, pos, p.Opts.ws())

	seenTerm := map[string]string{} // terminal -> matched text, deduplicated across states
	var lastErr error

	for v := range frontier {
		st := stacks.vertices[v].state
		expected := p.table.Expected[st]
		matches := lex.RecognizeAll(p.Grammar, input, afterLayout, expected)
		if len(matches) == 0 {
			continue
		}

		if p.Opts.LexicalDisambiguation {
			chosen, err := lex.DisambiguateMatches(p.Grammar, matches, p.table.Finish[st], afterLayout, len(input), p.Opts.DynamicDisambiguation)
			if err != nil {
				lastErr = err
				continue
			}
			seenTerm[chosen.Terminal] = chosen.Text
		} else {
			for _, m := range matches {
				seenTerm[m.Terminal] = m.Text
			}
		}
	}

	if len(seenTerm) == 0 {
		if lastErr != nil {
			return nil, lastErr
		}
		return nil, fmt.Errorf("glr: no terminal recognized at position %d", pos)
	}

	toks := make([]lex.Token, 0, len(seenTerm))
	for term, text := range seenTerm {
		toks = append(toks, lex.Token{Terminal: term, Text: text, Pos: afterLayout, LayoutBefore: layout})
	}
	return toks, nil
}

// reduceToFixedPoint applies every enabled reduce action at pos,
// repeatedly, until a full pass adds no new vertex or edge: every possible
// reduction is performed, to fixed point, before any shift is attempted at
// this position.
func (p *Parser) reduceToFixedPoint(stacks *gss, forest *forestCache, frontier map[vertexID]bool, pos int, toks []lex.Token, seen *hashset.Set[reductionKey]) {
	changed := true
	for changed {
		changed = false
		snapshot := make([]vertexID, 0, len(frontier))
		for v := range frontier {
			snapshot = append(snapshot, v)
		}

		for _, v := range snapshot {
			st := stacks.vertices[v].state
			for _, tok := range toks {
				for _, action := range p.table.Action[st][tok.Terminal] {
					if action.Type != table.Reduce {
						continue
					}
					key := reductionKey{v: v, prod: action.Prod}
					if seen.Contains(key) {
						continue
					}
					seen.Add(key)

					prod := p.Grammar.Production(action.Prod)
					n := len(prod.Symbols)

					for _, pth := range stacks.pathsOfLength(v, n) {
						landingState := stacks.vertices[pth.landing].state
						gotoState, ok := p.table.Goto[landingState][prod.NonTerminal]
						if !ok {
							continue
						}

						children := make([]*Node, n)
						for i, node := range pth.nodes {
							children[n-1-i] = node
						}
						start, end := pos, pos
						if n > 0 {
							start, end = children[0].Start, children[n-1].End
						}

						nt := forest.nonTerm(prod.NonTerminal, start, end)
						nt.addPacking(&Packing{Production: prod, Children: children})

						nv, created := stacks.vertexFor(gotoState, pos)
						stacks.addEdge(nv, pth.landing, nt)
						if created || !frontier[nv] {
							frontier[nv] = true
							changed = true
						}
					}
				}
			}
		}
	}
}

// topNodeInto returns the start symbol's forest node under the accepting
// vertex v. v is reached by shifting the zero-width STOP token of
// S' -> S STOP, so the start symbol's node is carried on the first edge
// one step further down. It returns nil if either edge is missing.
func topNodeInto(stacks *gss, v vertexID) *Node {
	edges := stacks.outEdges[v]
	if len(edges) == 0 {
		return nil
	}
	below := stacks.outEdges[edges[0].to]
	if len(below) == 0 {
		return nil
	}
	return below[0].node
}

func minKey(m map[int]map[vertexID]bool) int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys[0]
}
