package glr

import (
	"fmt"

	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/parser"
)

// Packing is one derivation of a Node: the production that produced it and
// the child nodes for its right-hand side, in left-to-right order.
type Packing struct {
	Production *grammar.Production
	Children   []*Node
}

// Node is one shared packed forest node. A terminal node is a leaf
// (Alts is empty); a nonterminal node for a given span is unique in the
// forest, and if more than one derivation reaches that span it carries
// one Packing per derivation under Alts.
type Node struct {
	Symbol     string
	Terminal   bool
	Text       string
	Start, End int
	Layout     string

	Alts []*Packing
}

// IsAmbiguous reports whether this node has more than one derivation.
func (n *Node) IsAmbiguous() bool {
	return len(n.Alts) > 1
}

func (n *Node) addPacking(p *Packing) {
	for _, existing := range n.Alts {
		if existing.Production == p.Production && sameChildren(existing.Children, p.Children) {
			return
		}
	}
	n.Alts = append(n.Alts, p)
}

func sameChildren(a, b []*Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Trees enumerates up to max distinct derivation trees rooted at n,
// expressed as ordinary parser.Node values so callers get the same tree
// shape the deterministic driver produces. The second return reports
// whether enumeration stopped early because the cap was hit; a caller
// that cares about dropped derivations should surface that rather than
// silently treating the cap as "all of them".
func (n *Node) Trees(max int) ([]*parser.Node, bool) {
	trees, truncated := collectTrees(n, max)
	if len(trees) > max {
		trees = trees[:max]
		truncated = true
	}
	return trees, truncated
}

func collectTrees(n *Node, max int) ([]*parser.Node, bool) {
	if n.Terminal {
		return []*parser.Node{{Symbol: n.Symbol, Text: n.Text, Start: n.Start, End: n.End, Layout: n.Layout}}, false
	}

	var out []*parser.Node
	truncated := false
	for _, alt := range n.Alts {
		childOptions := make([][]*parser.Node, len(alt.Children))
		for i, c := range alt.Children {
			opts, trunc := collectTrees(c, max)
			childOptions[i] = opts
			truncated = truncated || trunc
		}
		for _, combo := range cartesian(childOptions) {
			if len(out) >= max {
				return out, true
			}
			out = append(out, &parser.Node{
				Symbol:     n.Symbol,
				Production: alt.Production,
				Children:   combo,
				Start:      n.Start,
				End:        n.End,
			})
		}
	}
	return out, truncated
}

func cartesian(lists [][]*parser.Node) [][]*parser.Node {
	result := [][]*parser.Node{{}}
	for _, list := range lists {
		if len(list) == 0 {
			return nil
		}
		var next [][]*parser.Node
		for _, prefix := range result {
			for _, item := range list {
				combo := make([]*parser.Node, len(prefix)+1)
				copy(combo, prefix)
				combo[len(prefix)] = item
				next = append(next, combo)
			}
		}
		result = next
	}
	return result
}

// forestCache deduplicates nonterminal nodes by (symbol, start, end) so
// every derivation reaching the same span for the same symbol lands on
// the one shared Node, accumulating packings instead of diverging.
type forestCache struct {
	byKey map[string]*Node
}

func newForestCache() *forestCache {
	return &forestCache{byKey: map[string]*Node{}}
}

func (c *forestCache) nonTerm(symbol string, start, end int) *Node {
	key := fmt.Sprintf("%s:%d:%d", symbol, start, end)
	if n, ok := c.byKey[key]; ok {
		return n
	}
	n := &Node{Symbol: symbol, Start: start, End: end}
	c.byKey[key] = n
	return n
}
