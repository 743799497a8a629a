package grammar

// Multiplicity describes how many times a referenced symbol may occur in
// the position it's referenced from, and is desugared away during
// normalization (spec.md §4.B point 3).
type Multiplicity int

const (
	// One is the default: the symbol occurs exactly once, no
	// transformation needed.
	One Multiplicity = iota
	// Optional desugars to `X_opt -> X | ε`.
	Optional
	// OneOrMore desugars to `X_1 -> X_1 X | X` (or the separated form).
	OneOrMore
	// ZeroOrMore first materializes the OneOrMore form, then adds
	// `X_0 -> X_1 | ε`.
	ZeroOrMore
)

// Ref is one element of a production's right-hand side before
// normalization: a symbol name plus an optional multiplicity and separator.
type Ref struct {
	Name string
	Mult Multiplicity
	// Sep, if non-empty, names the terminal or nonterminal interleaved
	// between repetitions of a OneOrMore/ZeroOrMore reference.
	Sep string
}

// Alt is one alternative (one production body) for a nonterminal, as given
// to the grammar builder before normalization.
type Alt struct {
	Refs     []Ref
	Assoc    string // "", "left", "right", "none"
	Priority int
	Nops     bool
	Nopse    bool
}
