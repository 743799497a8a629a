package table

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gparse/analyze"
	"github.com/dekarrin/gparse/automaton"
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/perr"
	"github.com/dekarrin/gparse/symbol"
)

// Options controls conflict resolution during table construction
// (spec.md §4.D, §6 "parser options").
type Options struct {
	// Mode selects SLR or LALR table construction; "" defaults to LALR.
	Mode string

	PreferShifts          bool
	PreferShiftsOverEmpty bool
}

const (
	ModeSLR  = "SLR"
	ModeLALR = "LALR"
)

// Build constructs the action/goto table for g under opts. Residual
// shift/reduce conflicts are returned as a *perr.SRConflicts error
// alongside the table; residual reduce/reduce conflicts (including those an
// LALR merge would introduce) are returned as a *perr.RRConflicts error with
// a nil table.
func Build(g *grammar.Grammar, sets *analyze.Sets, opts Options) (*Table, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeLALR
	}

	var states []*automaton.State
	var initial int
	lookaheadsOf := func(it analyze.Item, p *grammar.Production) []string { return nil }

	switch mode {
	case ModeSLR:
		a := automaton.BuildLR0(g)
		states, initial = a.States, a.Initial
		lookaheadsOf = func(it analyze.Item, p *grammar.Production) []string {
			return sortedElements(sets.Follow(p.NonTerminal))
		}
	case ModeLALR:
		lr1 := automaton.BuildLR1(g, sets)
		lalr, mergeConflicts := automaton.MergeLALR(g, lr1)
		if len(mergeConflicts) > 0 {
			return nil, &perr.RRConflicts{Conflicts: mergeConflicts}
		}
		states, initial = lalr.States, lalr.Initial
		lookaheadsOf = func(it analyze.Item, p *grammar.Production) []string {
			if it.Lookahead == "" {
				return nil
			}
			return []string{it.Lookahead}
		}
	default:
		return nil, fmt.Errorf("table: unknown mode %q (want %q or %q)", mode, ModeSLR, ModeLALR)
	}

	t := &Table{
		Mode:        mode,
		Initial:     initial,
		Action:      make([]map[string]Action, len(states)),
		Goto:        make([]map[string]int, len(states)),
		Expected:    make([][]string, len(states)),
		Finish:      make([]map[string]bool, len(states)),
		AcceptState: -1,
	}

	var srConflicts []perr.Conflict
	var rrConflicts []perr.Conflict

	for _, st := range states {
		actionMap := map[string]Action{}
		gotoMap := map[string]int{}

		for _, it := range st.Items.Items() {
			sym, atDot := it.AtDot(g)
			if atDot {
				target := st.Transitions[sym]
				if g.IsTerminal(sym) {
					candidate := Action{Type: Shift, State: target}
					sr := proposeAction(actionMap, g, sym, candidate, nil, opts)
					if sr != nil {
						sr.State = st.Num
						srConflicts = append(srConflicts, *sr)
					}
				} else {
					gotoMap[sym] = target
				}
				continue
			}

			p := g.Production(it.ProdID)
			las := lookaheadsOf(it, p)

			if p.NonTerminal == g.AugmentedStart() {
				for _, la := range las {
					actionMap[la] = Action{Type: Accept}
					t.AcceptState = st.Num
				}
				continue
			}

			for _, la := range las {
				candidate := Action{Type: Reduce, Prod: p.ID}
				if existing, ok := actionMap[la]; ok && existing.Type == Reduce && existing.Prod != p.ID {
					rrConflicts = append(rrConflicts, perr.Conflict{
						State:     st.Num,
						Terminal:  la,
						Message:   fmt.Sprintf("reduce/reduce conflict between production %d and %d", existing.Prod, p.ID),
						IsReduceR: true,
					})
					continue
				}
				sr := proposeAction(actionMap, g, la, candidate, p, opts)
				if sr != nil {
					sr.State = st.Num
					srConflicts = append(srConflicts, *sr)
				}
			}
		}

		t.Action[st.Num] = actionMap
		t.Goto[st.Num] = gotoMap
		t.Expected[st.Num] = expectedTerminals(g, actionMap)
		t.Finish[st.Num] = computeFinish(g, actionMap, t.Expected[st.Num])
	}

	if len(rrConflicts) > 0 {
		return nil, &perr.RRConflicts{Conflicts: rrConflicts}
	}
	if len(srConflicts) > 0 {
		return t, &perr.SRConflicts{Conflicts: srConflicts}
	}
	return t, nil
}

// proposeAction inserts candidate into actionMap under terminal, applying
// the conflict-resolution order from spec.md §4.D: operator precedence,
// then prefer_shifts, then prefer_shifts_over_empty, then residual
// conflict. prod is nil for a Shift candidate (shift candidates carry no
// production of their own to compare priority against; the reduce side
// supplies that).
func proposeAction(actionMap map[string]Action, g *grammar.Grammar, terminal string, candidate Action, prod *grammar.Production, opts Options) *perr.Conflict {
	existing, had := actionMap[terminal]
	if !had {
		actionMap[terminal] = candidate
		return nil
	}
	if existing == candidate {
		return nil
	}

	shiftAction, reduceAction, reduceProd, ok := orderShiftReduce(g, existing, candidate, prod)
	if !ok {
		// Both candidates are reduces (reduce/reduce handled by caller) or
		// both shifts (impossible: GOTO is a function), nothing to do here.
		actionMap[terminal] = candidate
		return nil
	}

	// 1. Operator precedence.
	termSym := g.Symbol(terminal)
	if termSym != nil && reduceProd != nil {
		switch {
		case termSym.Priority > reduceProd.Priority:
			actionMap[terminal] = shiftAction
			return nil
		case termSym.Priority < reduceProd.Priority:
			actionMap[terminal] = reduceAction
			return nil
		default:
			switch reduceProd.Assoc {
			case symbol.AssocLeft:
				actionMap[terminal] = reduceAction
				return nil
			case symbol.AssocRight:
				actionMap[terminal] = shiftAction
				return nil
			}
		}
	}

	// 2. prefer_shifts.
	if opts.PreferShifts && reduceProd != nil && !reduceProd.Nops {
		actionMap[terminal] = shiftAction
		return nil
	}

	// 3. prefer_shifts_over_empty.
	if opts.PreferShiftsOverEmpty && reduceProd != nil && reduceProd.IsEpsilon() && !reduceProd.Nopse {
		actionMap[terminal] = shiftAction
		return nil
	}

	// 4. Residual: keep the first-seen action, report the conflict. State
	// is filled in by the caller, which knows the automaton state number.
	return &perr.Conflict{
		Terminal:  terminal,
		Message:   fmt.Sprintf("shift/reduce conflict on %q", terminal),
		IsReduceR: false,
	}
}

// orderShiftReduce identifies which of existing/candidate is the shift and
// which is the reduce, returning ok=false if they're not one of each.
func orderShiftReduce(g *grammar.Grammar, existing, candidate Action, candidateProd *grammar.Production) (shift, reduce Action, reduceProd *grammar.Production, ok bool) {
	if existing.Type == Shift && candidate.Type == Reduce {
		return existing, candidate, candidateProd, true
	}
	if existing.Type == Reduce && candidate.Type == Shift {
		return candidate, existing, g.Production(existing.Prod), true
	}
	return Action{}, Action{}, nil, false
}

func expectedTerminals(g *grammar.Grammar, actionMap map[string]Action) []string {
	var out []string
	for _, name := range g.Terminals() {
		if _, ok := actionMap[name]; ok {
			out = append(out, name)
		}
	}
	return out
}

// computeFinish marks a terminal finish in this state if it's the only
// expected terminal here, or the grammar flags it finish unconditionally
// (spec.md §4.D, "Finish/prefer flags").
func computeFinish(g *grammar.Grammar, actionMap map[string]Action, expected []string) map[string]bool {
	out := map[string]bool{}
	sole := len(expected) == 1
	for term := range actionMap {
		s := g.Symbol(term)
		if s != nil && s.Finish {
			out[term] = true
			continue
		}
		if sole {
			out[term] = true
		}
	}
	return out
}

func sortedElements(s interface{ Elements() []string }) []string {
	out := append([]string{}, s.Elements()...)
	sort.Strings(out)
	return out
}
