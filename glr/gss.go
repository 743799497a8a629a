package glr

import "github.com/google/uuid"

// vertexID names one GSS vertex. Vertices are created with a fresh uuid
// rather than a dense integer so merged/abandoned vertices never alias a
// live one, regardless of how many reduce/shift rounds have run.
type vertexID = uuid.UUID

type vertex struct {
	id    vertexID
	state int
	pos   int
}

// edge runs from a vertex down to one of its predecessors, carrying the
// forest node for the symbol consumed along that link (a shifted token or
// a reduced nonterminal).
type edge struct {
	to   vertexID
	node *Node
}

// gss is the graph-structured stack: a DAG of vertices where a vertex is
// uniquely identified by its (state, position) pair. Two stacks that reach
// the same state at the same input position are the same vertex with
// multiple incoming edges, which is what lets parallel GLR heads share
// stack prefixes instead of duplicating them.
type gss struct {
	vertices map[vertexID]*vertex
	outEdges map[vertexID][]edge
	byStateP map[[2]int]vertexID
}

func newGSS() *gss {
	return &gss{
		vertices: map[vertexID]*vertex{},
		outEdges: map[vertexID][]edge{},
		byStateP: map[[2]int]vertexID{},
	}
}

// vertexFor returns the vertex for (state, pos), creating it if this is
// the first stack to reach that pair.
func (g *gss) vertexFor(state, pos int) (vertexID, bool) {
	key := [2]int{state, pos}
	if id, ok := g.byStateP[key]; ok {
		return id, false
	}
	id := uuid.New()
	g.vertices[id] = &vertex{id: id, state: state, pos: pos}
	g.byStateP[key] = id
	return id, true
}

// addEdge records that from can reach to, carrying node. Adding an edge
// that already exists between the same pair for the same node is a no-op
// refusal, since that merge path is already represented.
func (g *gss) addEdge(from, to vertexID, node *Node) {
	for _, e := range g.outEdges[from] {
		if e.to == to && e.node == node {
			return
		}
	}
	g.outEdges[from] = append(g.outEdges[from], edge{to: to, node: node})
}

// path is one way of popping exactly n edges from a starting vertex: the
// vertex landed on, and the popped nodes in right-to-left (most recently
// pushed first) order.
type path struct {
	landing vertexID
	nodes   []*Node
}

// pathsOfLength enumerates every way to pop n edges starting at v. A
// production with multiple derivations sharing a GSS prefix surfaces here
// as multiple paths, each becoming its own packed alternative.
func (g *gss) pathsOfLength(v vertexID, n int) []path {
	if n == 0 {
		return []path{{landing: v}}
	}
	var out []path
	for _, e := range g.outEdges[v] {
		for _, sub := range g.pathsOfLength(e.to, n-1) {
			nodes := make([]*Node, 0, n)
			nodes = append(nodes, e.node)
			nodes = append(nodes, sub.nodes...)
			out = append(out, path{landing: sub.landing, nodes: nodes})
		}
	}
	return out
}
