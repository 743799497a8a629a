// Package parser drives a grammar's action/goto table over scanned
// tokens, optionally building a parse tree and invoking bound semantic
// actions either inline during reduction or in a separate tree walk.
package parser

import (
	"fmt"

	"github.com/dekarrin/gparse/analyze"
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/lex"
	"github.com/dekarrin/gparse/table"
)

// Options configures a Parser at construction time.
type Options struct {
	// Mode selects table.ModeSLR or table.ModeLALR; "" defaults to LALR.
	Mode string

	PreferShifts          bool
	PreferShiftsOverEmpty bool

	// BuildTree retains the full parse tree alongside (or instead of) the
	// computed semantic value.
	BuildTree bool

	// CallActionsDuringTreeBuild runs each bound action inline as its
	// node is reduced rather than in a later, separate tree walk; only
	// meaningful when BuildTree is set. When BuildTree is false, actions
	// always run inline.
	CallActionsDuringTreeBuild bool

	// Actions binds semantic actions by symbol, action, or bare name to
	// either a single ActionFunc or a []ActionFunc indexed by alternative.
	Actions map[string]any

	CustomTokenRecognition lex.CustomRecognitionFunc
	DynamicDisambiguation  lex.DynamicDisambiguator

	// Ws is the implicit-whitespace character set the scanner falls back
	// to when Grammar declares no LAYOUT nonterminal; nil defaults to
	// lex.DefaultWS, empty string disables implicit skipping.
	Ws *string

	// PrebuiltTable reuses a previously constructed table (e.g. loaded
	// from a cache via table.Table.UnmarshalBinary) instead of building
	// one from scratch.
	PrebuiltTable *table.Table
}

// Parser ties together a normalized grammar, its action/goto table, a
// token scanner and a semantic action registry into a single entry point.
type Parser struct {
	Grammar *grammar.Grammar
	Table   *table.Table
	Scanner *lex.Scanner
	Actions *Registry
	Opts    Options
}

// New builds the analysis sets, the action/goto table (unless one was
// supplied via Options.PrebuiltTable), the scanner and the action
// registry, and returns a ready-to-use Parser.
func New(g *grammar.Grammar, opts Options) (*Parser, error) {
	tbl := opts.PrebuiltTable
	if tbl == nil {
		sets := analyze.Compute(g)
		built, err := table.Build(g, sets, table.Options{
			Mode:                  opts.Mode,
			PreferShifts:          opts.PreferShifts,
			PreferShiftsOverEmpty: opts.PreferShiftsOverEmpty,
		})
		if err != nil {
			return nil, fmt.Errorf("parser: building table: %w", err)
		}
		tbl = built
	}

	registry, err := NewRegistry(g, opts.Actions)
	if err != nil {
		return nil, fmt.Errorf("parser: binding actions: %w", err)
	}

	scanner := lex.NewScanner(g, tbl)
	scanner.CustomTokenRecognition = opts.CustomTokenRecognition
	scanner.DynamicDisambiguation = opts.DynamicDisambiguation
	if opts.Ws != nil {
		scanner.Ws = *opts.Ws
	}

	return &Parser{
		Grammar: g,
		Table:   tbl,
		Scanner: scanner,
		Actions: registry,
		Opts:    opts,
	}, nil
}
