package parser

import (
	"fmt"

	"github.com/dekarrin/gparse/table"
)

// frame is one stack slot: the state reached, and whatever payload that
// state's incoming edge carried (a shifted token's text or a reduced
// nonterminal's computed value, plus the tree node when build_tree is on)
// (spec.md §4.F, "State: a stack of (state_id, tree_node | semantic_value,
// start_pos, end_pos) frames").
type frame struct {
	state      int
	node       *Node
	value      any
	start, end int
}

// Parse runs the deterministic shift/reduce loop over input and returns
// the root tree node (nil unless build_tree is set) and the accepted
// semantic value (spec.md §4.F).
func (p *Parser) Parse(input string) (*Node, any, error) {
	stack := []frame{{state: p.Table.Initial}}
	pos := 0

	// seenEmptyShift guards against an infinite loop shifting a zero-width
	// token from the same (state, position) repeatedly (spec.md §4.E,
	// "Empty matches", and §9 open question on this exact hazard).
	seenEmptyShift := map[[2]int]bool{}

	// layoutAt records the layout scanned before the token starting at each
	// position, so a reduced span can report the layout preceding it.
	layoutAt := map[int]string{}

	for {
		top := stack[len(stack)-1]

		tok, err := p.Scanner.Next(input, pos, top.state)
		if err != nil {
			return nil, nil, err
		}

		action, ok := p.Table.Action[top.state][tok.Terminal]
		if !ok {
			return nil, nil, fmt.Errorf("parser: state %d has no action for terminal %q (scanner and table disagree)", top.state, tok.Terminal)
		}

		switch action.Type {
		case table.Shift:
			if len(tok.Text) == 0 {
				key := [2]int{top.state, pos}
				if seenEmptyShift[key] {
					return nil, nil, fmt.Errorf("parser: repeated empty shift at state %d, position %d (cycle in empty-token handling)", top.state, pos)
				}
				seenEmptyShift[key] = true
			}

			tokStart := tok.Pos
			newPos := tokStart + len(tok.Text)
			layoutAt[tokStart] = tok.LayoutBefore

			var node *Node
			if p.Opts.BuildTree {
				node = &Node{Symbol: tok.Terminal, Text: tok.Text, Start: tokStart, End: newPos, Layout: tok.LayoutBefore}
			}
			stack = append(stack, frame{state: action.State, node: node, value: tok.Text, start: tokStart, end: newPos})
			pos = newPos

		case table.Reduce:
			prod := p.Grammar.Production(action.Prod)
			n := len(prod.Symbols)

			popped := stack[len(stack)-n:]
			stack = stack[:len(stack)-n]
			prevState := stack[len(stack)-1].state

			gotoState, ok := p.Table.Goto[prevState][prod.NonTerminal]
			if !ok {
				return nil, nil, fmt.Errorf("parser: no goto from state %d on %q (malformed table)", prevState, prod.NonTerminal)
			}

			start, end := pos, pos
			if n > 0 {
				start, end = popped[0].start, popped[n-1].end
			}
			layout := layoutAt[start]

			childValues := make([]any, n)
			var childNodes []*Node
			if p.Opts.BuildTree {
				childNodes = make([]*Node, n)
			}
			for i, f := range popped {
				childValues[i] = f.value
				if p.Opts.BuildTree {
					childNodes[i] = f.node
				}
			}

			var value any
			if !p.Opts.BuildTree || p.Opts.CallActionsDuringTreeBuild {
				var treeNode *Node
				if p.Opts.BuildTree {
					treeNode = &Node{Symbol: prod.NonTerminal, Production: prod, Children: childNodes, Start: start, End: end, Layout: layout}
				}
				ctx := &Context{Parser: p, Symbol: prod.NonTerminal, Production: prod, Start: start, End: end, Layout: layout, Tree: treeNode}
				if fn, ok := p.Actions.Resolve(p.Grammar, prod); ok {
					value, err = fn(ctx, childValues)
					if err != nil {
						return nil, nil, err
					}
				}
			}

			var node *Node
			if p.Opts.BuildTree {
				node = &Node{Symbol: prod.NonTerminal, Production: prod, Children: childNodes, Start: start, End: end, Layout: layout, Value: value}
			}
			stack = append(stack, frame{state: gotoState, node: node, value: value, start: start, end: end})

		case table.Accept:
			// Accept fires after the zero-width STOP token of S' -> S STOP has
			// been shifted; the start symbol's frame sits just below it.
			final := stack[len(stack)-2]
			return final.node, final.value, nil

		default:
			return nil, nil, fmt.Errorf("parser: error action at state %d on terminal %q", top.state, tok.Terminal)
		}
	}
}

// CallActions walks tree depth-first, invoking the same action resolution
// Parse uses inline, restoring each node's recorded position/layout into
// the Context (spec.md §4.F point 4, "build_tree mode ... after a
// successful parse, call_actions(tree, context) walks the tree"). It is
// the mechanism for build_tree=true, call_actions_during_tree_build=false.
func (p *Parser) CallActions(tree *Node) (any, error) {
	if tree.IsTerm() {
		return tree.Text, nil
	}

	children := make([]any, len(tree.Children))
	for i, c := range tree.Children {
		v, err := p.CallActions(c)
		if err != nil {
			return nil, err
		}
		children[i] = v
	}

	ctx := &Context{Parser: p, Symbol: tree.Symbol, Production: tree.Production, Start: tree.Start, End: tree.End, Layout: tree.Layout, Tree: tree}
	if fn, ok := p.Actions.Resolve(p.Grammar, tree.Production); ok {
		value, err := fn(ctx, children)
		if err != nil {
			return nil, err
		}
		tree.Value = value
		return value, nil
	}
	return nil, nil
}
