package parser

import (
	"fmt"
	"strings"

	"github.com/dekarrin/gparse/grammar"
)

// ActionFunc computes a nonterminal's semantic value from its children's
// already-computed values.
type ActionFunc func(ctx *Context, children []any) (any, error)

// None is the sentinel value an `optional` action returns for its epsilon
// alternative (spec.md §4.B point 3, "returns value or a sentinel 'none'").
type None struct{}

// Registry binds semantic actions to grammar symbols, resolved per
// spec.md §4.B point 7 / §9's "preserve it exactly" mandate: fully
// qualified symbol name, then fully qualified action name, then bare
// symbol name, then bare action name, then the built-in table.
//
// A bound value is either a single ActionFunc (used for every alternative
// of that nonterminal) or a []ActionFunc indexed by the production's
// zero-based alternative id (spec.md §3, "Invariants": a list action's
// length must equal the nonterminal's alternative count; validated in
// NewRegistry).
type Registry struct {
	byName map[string]any
}

// NewRegistry builds a Registry from a name -> (ActionFunc | []ActionFunc)
// map, validating list-action lengths against g (spec.md §3). Actions are
// bound here rather than by grammar.Builder, so this check runs when the
// registry is built, not at grammar-construction time.
func NewRegistry(g *grammar.Grammar, actions map[string]any) (*Registry, error) {
	r := &Registry{byName: map[string]any{}}
	for name, v := range actions {
		switch fn := v.(type) {
		case ActionFunc:
			r.byName[name] = fn
		case []ActionFunc:
			sym := g.Symbol(bareName(name))
			if sym != nil && sym.IsTerminal() {
				return nil, fmt.Errorf("action list given to terminal %q: terminals cannot have list actions", name)
			}
			if sym != nil {
				want := len(g.ProductionsFor(sym.Name))
				if want > 0 && len(fn) != want {
					return nil, fmt.Errorf("action list for %q has %d entries, want %d (one per alternative)", name, len(fn), want)
				}
			}
			r.byName[name] = fn
		default:
			return nil, fmt.Errorf("action %q must be an ActionFunc or []ActionFunc, got %T", name, v)
		}
	}
	return r, nil
}

// Resolve returns the action bound to the production's nonterminal, or a
// built-in fallback keyed by the symbol's synthesized Action hint.
func (r *Registry) Resolve(g *grammar.Grammar, p *grammar.Production) (ActionFunc, bool) {
	sym := g.Symbol(p.NonTerminal)

	candidates := []string{sym.Name}
	if sym.Action != "" {
		candidates = append(candidates, sym.Action)
	}
	candidates = append(candidates, bareName(sym.Name))
	if sym.Action != "" {
		candidates = append(candidates, bareName(sym.Action))
	}

	for _, name := range candidates {
		if v, ok := r.byName[name]; ok {
			if fn, ok := resolveEntry(v, p.Alt); ok {
				return fn, true
			}
		}
	}

	if fn, ok := builtins[sym.Action]; ok {
		return fn, true
	}
	return nil, false
}

func resolveEntry(v any, alt int) (ActionFunc, bool) {
	switch fn := v.(type) {
	case ActionFunc:
		return fn, true
	case []ActionFunc:
		if alt >= 0 && alt < len(fn) {
			return fn[alt], true
		}
	}
	return nil, false
}

func bareName(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}

// builtins implements the fixed set named in spec.md §4.B point 7, each
// grounded in how grammar.Builder's desugaring assigns alternative ids:
// the recursive alternative of a collect production is always alt 0, the
// base case alt 1; an optional wrapper's value alternative is alt 0, its
// epsilon alternative alt 1.
var builtins = map[string]ActionFunc{
	"collect":              collect(false, false),
	"collect_sep":          collect(true, false),
	"collect_right":        collect(false, true),
	"collect_sep_right":    collect(true, true),
	"collect_optional":     collectOptional(),
	"collect_sep_optional": collectOptional(),
	"optional":             optionalAction,
	"pass_single":          passSingle,
	"pass_inner":           passInner,
	"pass_none":            passNone,
}

func collect(sep, rightAssoc bool) ActionFunc {
	return func(ctx *Context, children []any) (any, error) {
		if ctx.Production.Alt == 1 {
			return []any{children[0]}, nil
		}
		var prevList []any
		var elem any
		if sep {
			prevList, _ = children[0].([]any)
			elem = children[2]
		} else {
			prevList, _ = children[0].([]any)
			elem = children[1]
		}
		if rightAssoc {
			return append([]any{elem}, prevList...), nil
		}
		return append(append([]any{}, prevList...), elem), nil
	}
}

// collectOptional backs the X_0 -> X_1 | ε wrapper a zero_or_more
// reference desugars to: pass the accumulated list through, or an empty
// list for the epsilon alternative. The wrapped list's separator (if any)
// was already resolved by the X_1 collect action, so this step doesn't
// need to know about it.
func collectOptional() ActionFunc {
	return func(ctx *Context, children []any) (any, error) {
		if ctx.Production.Alt == 1 {
			return []any{}, nil
		}
		if list, ok := children[0].([]any); ok {
			return list, nil
		}
		return []any{children[0]}, nil
	}
}

func optionalAction(ctx *Context, children []any) (any, error) {
	if ctx.Production.Alt == 1 {
		return None{}, nil
	}
	return children[0], nil
}

func passSingle(_ *Context, children []any) (any, error) {
	if len(children) != 1 {
		return nil, fmt.Errorf("pass_single: expected exactly 1 child, got %d", len(children))
	}
	return children[0], nil
}

// passInner returns the middle child's value, the common shape for a
// delimiter-wrapped production (e.g. `( E )`).
func passInner(_ *Context, children []any) (any, error) {
	if len(children) == 0 {
		return nil, fmt.Errorf("pass_inner: production has no children")
	}
	return children[len(children)/2], nil
}

func passNone(_ *Context, _ []any) (any, error) {
	return nil, nil
}
