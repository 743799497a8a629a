// Package symbol defines the value types for grammar symbols and the
// recognizers that back terminal symbols, corresponding to component A of
// the parser-construction toolkit (symbols & recognizers).
package symbol

// Kind distinguishes terminal from non-terminal symbols.
type Kind int

const (
	// NonTerminal marks a symbol produced by one or more productions.
	NonTerminal Kind = iota
	// Terminal marks a symbol recognized directly from input text.
	Terminal
)

func (k Kind) String() string {
	if k == Terminal {
		return "terminal"
	}
	return "nonterminal"
}

// Assoc is the associativity a production or terminal priority group
// declares, used to break shift/reduce ties of equal priority.
type Assoc int

const (
	// AssocNone leaves a tie at equal priority an unresolved conflict.
	AssocNone Assoc = iota
	// AssocLeft resolves an equal-priority shift/reduce tie by reducing.
	AssocLeft
	// AssocRight resolves an equal-priority shift/reduce tie by shifting.
	AssocRight
)

func (a Assoc) String() string {
	switch a {
	case AssocLeft:
		return "left"
	case AssocRight:
		return "right"
	default:
		return "none"
	}
}

// DefaultPriority is the priority assigned to a symbol that does not
// explicitly declare one (spec.md §3, "Symbol").
const DefaultPriority = 10

// Special symbol names. EMPTY, EOF, STOP and __start are reserved and may
// not be user-declared (spec.md §3, "Reserved symbols"); KEYWORD and LAYOUT
// are names a grammar declares itself to enable the keyword hook and the
// layout sub-scan.
const (
	NameEmpty       = "EMPTY"
	NameEOF         = "EOF"
	NameStop        = "STOP"
	NameAugStart    = "__start"
	NameKeywordHook = "KEYWORD"
	NameLayout      = "LAYOUT"
)

// Reserved reports whether name is one of the grammar's reserved symbol
// names and therefore may not be declared by a user grammar.
func Reserved(name string) bool {
	switch name {
	case NameEmpty, NameEOF, NameStop, NameAugStart:
		return true
	}
	return false
}

// Symbol is a single grammar symbol: a terminal or a non-terminal. Symbols
// are created during grammar load, frozen after normalization, and immutable
// thereafter (spec.md §3, "Lifecycle").
type Symbol struct {
	// Name is unique within the grammar's namespace. It may carry a dotted
	// qualification (e.g. "Expr.number") when disambiguating an
	// action/symbol name collision during resolution.
	Name string

	Kind Kind

	// Priority governs shift/reduce precedence resolution (spec.md §4.D).
	Priority int

	// Action names the semantic action bound to this symbol, if any. Empty
	// means no explicit binding; resolution falls back through the order
	// described in spec.md §4.B point 7.
	Action string

	// Recognizer is set only for terminal symbols.
	Recognizer Recognizer

	// Finish short-circuits scanning: if this terminal's match spans the
	// entire remaining relevant input, it is chosen immediately without
	// further disambiguation (spec.md §4.E step 4a).
	Finish bool

	// Prefer breaks a scanning tie among longest matches in this
	// terminal's favor (spec.md §4.E step 4d).
	Prefer bool

	// Dynamic delegates a remaining scanning tie to a user-supplied
	// disambiguation callback (spec.md §4.E step 4e).
	Dynamic bool

	// Keyword forces word-boundary matching. Set explicitly, or
	// automatically by the KEYWORD hook (spec.md §4.A) during
	// normalization.
	Keyword bool

	// Meta is a user-defined side-table of arbitrary symbol attributes,
	// the "duck-typed" attribute bag of the original implementation
	// replaced with an explicit map (spec.md §9).
	Meta map[string]any
}

// IsTerminal reports whether the symbol is a terminal.
func (s Symbol) IsTerminal() bool {
	return s.Kind == Terminal
}

// String returns the symbol's name.
func (s Symbol) String() string {
	return s.Name
}
