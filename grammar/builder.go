package grammar

import (
	"fmt"
	"sort"

	"github.com/dekarrin/gparse/perr"
	"github.com/dekarrin/gparse/symbol"
	"github.com/dlclark/regexp2"
)

// TerminalKind selects which of the three recognizer shapes a declared
// terminal uses (spec.md §6, "terminals: mapping terminal_name ->
// (kind, value)").
type TerminalKind int

const (
	TString TerminalKind = iota
	TRegexp
	TExternal
)

// TerminalDef is how a terminal is declared to the Builder before
// normalization.
type TerminalDef struct {
	Kind       TerminalKind
	Value      string // literal for TString, pattern source for TRegexp, ignored for TExternal
	IgnoreCase bool
	Priority   int
	Finish     bool
	Prefer     bool
	Dynamic    bool
	Keyword    bool
	Meta       map[string]any
}

// Options configures grammar construction (spec.md §6, "Grammar
// construction (programmatic)").
type Options struct {
	ReFlags    regexp2.RegexOptions
	IgnoreCase bool
	Debug      bool
	// Recognizers supplies the callable backing every TExternal terminal,
	// keyed by terminal name.
	Recognizers map[string]symbol.Recognizer
}

// Builder accumulates a production list and terminal set, then normalizes
// them into an immutable Grammar via Build (spec.md §4.B).
type Builder struct {
	order       []string // nonterminal declaration order
	productions map[string][]Alt
	termOrder   []string
	terminals   map[string]TerminalDef
	start       string
	opts        Options
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{
		productions: map[string][]Alt{},
		terminals:   map[string]TerminalDef{},
	}
}

// AddProduction declares (or appends to) the alternatives for nonTerminal.
func (b *Builder) AddProduction(nonTerminal string, alts ...Alt) *Builder {
	if _, ok := b.productions[nonTerminal]; !ok {
		b.order = append(b.order, nonTerminal)
	}
	b.productions[nonTerminal] = append(b.productions[nonTerminal], alts...)
	return b
}

// AddTerminal declares a terminal symbol.
func (b *Builder) AddTerminal(name string, def TerminalDef) *Builder {
	if _, ok := b.terminals[name]; !ok {
		b.termOrder = append(b.termOrder, name)
	}
	b.terminals[name] = def
	return b
}

// WithStart sets the grammar's start nonterminal, allowing the same
// production set to be re-bound to a different start symbol (spec.md
// SPEC_FULL §4, "Multiple start symbols per grammar object").
func (b *Builder) WithStart(name string) *Builder {
	b.start = name
	return b
}

// WithOptions sets construction options.
func (b *Builder) WithOptions(o Options) *Builder {
	b.opts = o
	return b
}

type desugarState struct {
	symbols     map[string]*symbol.Symbol
	symbolOrder []string
	nextSuffix  map[string]int
	newProds    []pendingProd // synthesized productions, in creation order
}

type pendingProd struct {
	nonTerminal string
	refs        []Ref
	assoc       symbol.Assoc
	priority    int
	nops        bool
	nopse       bool
}

func (d *desugarState) declareSymbol(name string, kind symbol.Kind) *symbol.Symbol {
	if s, ok := d.symbols[name]; ok {
		return s
	}
	s := &symbol.Symbol{Name: name, Kind: kind, Priority: symbol.DefaultPriority}
	d.symbols[name] = s
	d.symbolOrder = append(d.symbolOrder, name)
	return s
}

// Build runs the full normalization pipeline and returns an immutable
// Grammar, or the first GrammarError encountered.
func (b *Builder) Build() (*Grammar, error) {
	if b.start == "" {
		return nil, perr.NewGrammarError("", "no start symbol set")
	}
	if _, ok := b.productions[b.start]; !ok {
		return nil, perr.NewGrammarError(b.start, "start symbol has no productions")
	}

	d := &desugarState{
		symbols:    map[string]*symbol.Symbol{},
		nextSuffix: map[string]int{},
	}

	// 1. Collect nonterminals, forbidding reserved names and kind clashes.
	for _, nt := range b.order {
		if symbol.Reserved(nt) {
			return nil, perr.NewGrammarError(nt, "reserved name may not be user-declared")
		}
		d.declareSymbol(nt, symbol.NonTerminal)
	}

	// Terminals: build their Symbol + Recognizer.
	stringLiterals := map[string]string{} // literal value -> first terminal that declared it
	var keywordHookTerm *symbol.Symbol
	var keywordHookRe *symbol.RegexRecognizer

	for _, name := range b.termOrder {
		if symbol.Reserved(name) {
			return nil, perr.NewGrammarError(name, "reserved name may not be user-declared")
		}
		if existing, ok := d.symbols[name]; ok && !existing.IsTerminal() {
			return nil, perr.NewGrammarError(name, "terminal name clashes with a nonterminal of the same name")
		}
		def := b.terminals[name]
		sym := d.declareSymbol(name, symbol.Terminal)
		sym.Priority = def.Priority
		if sym.Priority == 0 {
			sym.Priority = symbol.DefaultPriority
		}
		sym.Finish = def.Finish
		sym.Prefer = def.Prefer
		sym.Dynamic = def.Dynamic
		sym.Keyword = def.Keyword
		sym.Meta = def.Meta

		ignoreCase := def.IgnoreCase || b.opts.IgnoreCase

		switch def.Kind {
		case TString:
			if other, dup := stringLiterals[def.Value]; dup {
				return nil, perr.NewGrammarError(name, fmt.Sprintf("duplicate string recognizer %q (already used by %q)", def.Value, other))
			}
			stringLiterals[def.Value] = name
			sym.Recognizer = symbol.NewStringRecognizer(def.Value, ignoreCase)
		case TRegexp:
			re, err := symbol.NewRegexRecognizer(def.Value, b.opts.ReFlags)
			if err != nil {
				return nil, perr.NewGrammarError(name, fmt.Sprintf("invalid regex recognizer: %s", err.Error()))
			}
			sym.Recognizer = re
			if name == symbol.NameKeywordHook {
				keywordHookTerm = sym
				keywordHookRe = re
			}
		case TExternal:
			rec, ok := b.opts.Recognizers[name]
			if !ok {
				return nil, perr.NewGrammarError(name, "external terminal has no recognizer supplied in options.Recognizers")
			}
			sym.Recognizer = rec
		}
	}
	for name, rec := range b.opts.Recognizers {
		s, ok := d.symbols[name]
		if !ok || !s.IsTerminal() {
			return nil, perr.NewGrammarError(name, "recognizer supplied for a missing terminal")
		}
		_ = rec
	}

	// KEYWORD hook (spec.md §4.A): rewrite every string-recognizer terminal
	// whose literal is itself a full match of the KEYWORD pattern into a
	// word-boundary regex recognizer.
	if keywordHookTerm != nil {
		for _, name := range b.termOrder {
			sym := d.symbols[name]
			sr, isStr := sym.Recognizer.(*symbol.StringRecognizer)
			if !isStr {
				continue
			}
			if matched, ok := keywordHookRe.Recognize(sr.Literal, 0); ok && matched == sr.Literal {
				boundaryRe, err := symbol.NewRegexRecognizer(symbol.KeywordBoundaryPattern(sr.Literal), b.opts.ReFlags)
				if err != nil {
					return nil, perr.NewGrammarError(name, fmt.Sprintf("could not build keyword-boundary recognizer: %s", err.Error()))
				}
				sym.Recognizer = boundaryRe
				sym.Keyword = true
			}
		}
	}

	// 3. Desugar multiplicity into synthesized productions (pass 1), while
	// building the pending production list (user + synthesized).
	var pending []pendingProd
	for _, nt := range b.order {
		for altIdx, alt := range b.productions[nt] {
			refs, err := d.desugarAlt(nt, altIdx, alt.Refs)
			if err != nil {
				return nil, err
			}
			pending = append(pending, pendingProd{
				nonTerminal: nt,
				refs:        refs,
				assoc:       parseAssoc(alt.Assoc),
				priority:    alt.Priority,
				nops:        alt.Nops,
				nopse:       alt.Nopse,
			})
		}
	}
	pending = append(pending, d.newProds...)

	// 5. Prepend the augmented production S' -> start STOP.
	d.declareSymbol(symbol.NameAugStart, symbol.NonTerminal)
	stopSym := d.declareSymbol(symbol.NameStop, symbol.Terminal)
	stopSym.Recognizer = symbol.CustomRecognizerFunc(func(input string, pos int) (string, bool) {
		if pos >= len(input) {
			return "", true
		}
		return "", false
	})
	d.declareSymbol(symbol.NameEmpty, symbol.Terminal)
	eofSym := d.declareSymbol(symbol.NameEOF, symbol.Terminal)
	// EOF is only ever "scanned" as a zero-width token at the true end of
	// input, mirroring STOP; this lets the driver reach the accept action
	// (keyed by EOF in the distinguished accept state) through the same
	// scan-and-look-up-action path used for every other token, instead of
	// special-casing end-of-input in the driver (spec.md §4.D, "accept").
	eofSym.Recognizer = symbol.CustomRecognizerFunc(func(input string, pos int) (string, bool) {
		if pos >= len(input) {
			return "", true
		}
		return "", false
	})

	augProd := pendingProd{
		nonTerminal: symbol.NameAugStart,
		refs:        []Ref{{Name: b.start}, {Name: symbol.NameStop}},
	}
	pending = append([]pendingProd{augProd}, pending...)

	// 4 / second pass: resolve every reference to a declared symbol.
	for _, pp := range pending {
		for _, r := range pp.refs {
			if _, ok := d.symbols[r.Name]; !ok {
				return nil, perr.NewGrammarError(r.Name, fmt.Sprintf("unresolved reference from production of %q", pp.nonTerminal))
			}
		}
	}

	// 6. Assign global IDs (insertion order) and per-LHS alternative IDs.
	altCounters := map[string]int{}
	productions := make([]*Production, 0, len(pending))
	byNonTerminal := map[string][]*Production{}
	for i, pp := range pending {
		alt := altCounters[pp.nonTerminal]
		altCounters[pp.nonTerminal] = alt + 1
		names := make([]string, len(pp.refs))
		for j, r := range pp.refs {
			names[j] = r.Name
		}
		p := &Production{
			ID:          i,
			Alt:         alt,
			NonTerminal: pp.nonTerminal,
			Symbols:     names,
			Assoc:       pp.assoc,
			Priority:    pp.priority,
			Nops:        pp.nops,
			Nopse:       pp.nopse,
		}
		productions = append(productions, p)
		byNonTerminal[pp.nonTerminal] = append(byNonTerminal[pp.nonTerminal], p)
	}

	g := &Grammar{
		symbols:       d.symbols,
		symbolOrder:   d.symbolOrder,
		productions:   productions,
		byNonTerminal: byNonTerminal,
		start:         b.start,
		augStart:      symbol.NameAugStart,
	}

	if err := validateReachability(g); err != nil {
		return nil, err
	}

	return g, nil
}

func parseAssoc(s string) symbol.Assoc {
	switch s {
	case "left":
		return symbol.AssocLeft
	case "right":
		return symbol.AssocRight
	default:
		return symbol.AssocNone
	}
}

// desugarAlt resolves the multiplicity of each ref in a single alternative,
// synthesizing new nonterminals/productions into d.newProds as needed, and
// returns the (possibly rewritten) flat ref list for the enclosing
// production (spec.md §4.B point 3).
func (d *desugarState) desugarAlt(owner string, altIdx int, refs []Ref) ([]Ref, error) {
	out := make([]Ref, 0, len(refs))
	for _, r := range refs {
		switch r.Mult {
		case One:
			out = append(out, r)
		case Optional:
			if r.Sep != "" {
				return nil, perr.NewGrammarError(r.Name, "repetition modifier '?' may not be combined with a separator")
			}
			optName := d.synth(r.Name + "_opt")
			d.declareSymbol(optName, symbol.NonTerminal)
			d.symbols[optName].Action = "optional"
			d.newProds = append(d.newProds,
				pendingProd{nonTerminal: optName, refs: []Ref{{Name: r.Name}}},
				pendingProd{nonTerminal: optName, refs: nil, nops: true},
			)
			out = append(out, Ref{Name: optName})
		case OneOrMore:
			name1 := d.oneOrMore(r.Name, r.Sep)
			out = append(out, Ref{Name: name1})
		case ZeroOrMore:
			name1 := d.oneOrMore(r.Name, r.Sep)
			name0 := d.synth(r.Name + "_0")
			d.declareSymbol(name0, symbol.NonTerminal)
			d.symbols[name0].Action = "collect_optional"
			if r.Sep != "" {
				d.symbols[name0].Action = "collect_sep_optional"
			}
			d.newProds = append(d.newProds,
				pendingProd{nonTerminal: name0, refs: []Ref{{Name: name1}}},
				pendingProd{nonTerminal: name0, refs: nil, nops: true},
			)
			out = append(out, Ref{Name: name0})
		}
	}
	return out, nil
}

// oneOrMore synthesizes (if not already synthesized for this name+sep pair)
// the `X_1[_S] -> X_1[_S] [S] X | X` production pair and returns the
// synthesized nonterminal's name.
func (d *desugarState) oneOrMore(elem, sep string) string {
	suffix := "_1"
	action := "collect"
	if sep != "" {
		suffix = "_1_" + sep
		action = "collect_sep"
	}
	name := elem + suffix
	if _, ok := d.symbols[name]; ok {
		return name
	}
	d.declareSymbol(name, symbol.NonTerminal)
	d.symbols[name].Action = action

	recursive := []Ref{{Name: name}}
	if sep != "" {
		recursive = append(recursive, Ref{Name: sep})
	}
	recursive = append(recursive, Ref{Name: elem})

	d.newProds = append(d.newProds,
		pendingProd{nonTerminal: name, refs: recursive},
		pendingProd{nonTerminal: name, refs: []Ref{{Name: elem}}},
	)
	return name
}

func (d *desugarState) synth(base string) string {
	n := d.nextSuffix[base]
	d.nextSuffix[base] = n + 1
	if n == 0 {
		return base
	}
	return fmt.Sprintf("%s$%d", base, n)
}

// validateReachability rejects a nonterminal with zero alternatives and any
// nonterminal other than LAYOUT that is not reachable from the start symbol
// (spec.md §3 "Invariants"). It does not check FIRST-set emptiness.
func validateReachability(g *Grammar) error {
	for _, nt := range g.NonTerminals() {
		if nt == symbol.NameAugStart {
			continue
		}
		if len(g.byNonTerminal[nt]) == 0 {
			return perr.NewGrammarError(nt, "nonterminal has no productions")
		}
	}
	reachable := map[string]bool{g.start: true, symbol.NameAugStart: true}
	queue := []string{g.start}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, p := range g.byNonTerminal[cur] {
			for _, s := range p.Symbols {
				sym := g.symbols[s]
				if sym == nil || sym.IsTerminal() {
					continue
				}
				if !reachable[s] {
					reachable[s] = true
					queue = append(queue, s)
				}
			}
		}
	}
	var unreachable []string
	for _, nt := range g.NonTerminals() {
		if nt == symbol.NameAugStart || nt == symbol.NameLayout {
			continue
		}
		if !reachable[nt] {
			unreachable = append(unreachable, nt)
		}
	}
	if len(unreachable) > 0 {
		sort.Strings(unreachable)
		return perr.NewGrammarError(unreachable[0], "nonterminal is not reachable from the start symbol")
	}
	return nil
}
