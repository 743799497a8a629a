// Package perr collects the error taxonomy surfaced by the toolkit
// (spec.md §6 "Error taxonomy (surface)" and §7 "Error handling design").
// It generalizes the teacher's icterrors convention
// (NewSyntaxErrorFromToken(...).FullMessage(), a Location carried alongside
// a plain message) to the full set of construction, parse, and
// disambiguation errors the spec calls for.
package perr

import (
	"fmt"
	"strings"

	"github.com/dekarrin/rosed"
)

// Location identifies where in a grammar source an error originates. It is
// optional: programmatically-built grammars (spec.md §6, "Grammar
// construction (programmatic)") often have no backing file.
type Location struct {
	File   string
	Line   int
	Column int
}

func (l Location) String() string {
	if l.File == "" && l.Line == 0 {
		return ""
	}
	if l.File == "" {
		return fmt.Sprintf("line %d, col %d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// located is embedded by every error type that may optionally carry a
// source Location.
type located struct {
	Loc Location
}

func (l located) locPrefix() string {
	s := l.Loc.String()
	if s == "" {
		return ""
	}
	return s + ": "
}

// wrap wraps msg to a reasonable terminal width using the teacher's own
// text-editing library, the same one parse/slr.go uses to lay out LR
// tables.
func wrap(msg string) string {
	return rosed.Edit(msg).Wrap(100).String()
}

// GrammarError reports a problem detected while normalizing a grammar:
// reserved name use, terminal/nonterminal name clash, unresolved
// reference, duplicate string recognizer, repetition modifier combined
// with '?', or a recognizer supplied for a missing terminal (spec.md §4.B,
// "Error conditions"). Action-list errors (length mismatch, list given to a
// terminal) are reported by parser.NewRegistry as plain errors instead.
type GrammarError struct {
	located
	Symbol  string
	Message string
}

func (e *GrammarError) Error() string {
	prefix := e.locPrefix()
	if e.Symbol != "" {
		return wrap(fmt.Sprintf("%sgrammar error on symbol %q: %s", prefix, e.Symbol, e.Message))
	}
	return wrap(fmt.Sprintf("%sgrammar error: %s", prefix, e.Message))
}

// NewGrammarError builds a GrammarError with no Location.
func NewGrammarError(sym, msg string) *GrammarError {
	return &GrammarError{Symbol: sym, Message: msg}
}

// NewGrammarErrorAt builds a GrammarError carrying a Location.
func NewGrammarErrorAt(loc Location, sym, msg string) *GrammarError {
	return &GrammarError{located: located{Loc: loc}, Symbol: sym, Message: msg}
}

// ParserInitError reports a problem detected while binding a grammar, a
// built table, a scanner, and a driver together into a usable parser (e.g.
// an action name that resolves to nothing, an unsupported table kind).
type ParserInitError struct {
	located
	Message string
}

func (e *ParserInitError) Error() string {
	return wrap(fmt.Sprintf("%sparser init error: %s", e.locPrefix(), e.Message))
}

func NewParserInitError(msg string) *ParserInitError {
	return &ParserInitError{Message: msg}
}

// ParseError is raised by a driver when no table-driven shift/reduce/accept
// sequence can continue: position, the layout content preceding the
// failure, and the set of terminals the state expected are all carried so
// callers can build a useful message (spec.md §6, §7).
type ParseError struct {
	located
	Position int
	Line     int
	Column   int
	Layout   string
	Expected []string
	Message  string
}

func (e *ParseError) Error() string {
	expected := ""
	if len(e.Expected) > 0 {
		expected = "; expected " + oneOf(e.Expected)
	}
	at := fmt.Sprintf("position %d", e.Position)
	if e.Line > 0 {
		at = fmt.Sprintf("line %d, col %d", e.Line, e.Column)
	}
	msg := e.Message
	if msg == "" {
		msg = "unexpected input"
	}
	return wrap(fmt.Sprintf("%sparse error at %s: %s%s", e.locPrefix(), at, msg, expected))
}

func oneOf(items []string) string {
	if len(items) == 1 {
		return items[0]
	}
	if len(items) == 2 {
		return items[0] + " or " + items[1]
	}
	return strings.Join(items[:len(items)-1], ", ") + ", or " + items[len(items)-1]
}

// NewParseError builds a ParseError.
func NewParseError(pos int, expected []string, layout, msg string) *ParseError {
	return &ParseError{Position: pos, Expected: expected, Layout: layout, Message: msg}
}

// DisambiguationError is raised by the scanner when more than one terminal
// remains a candidate after all disambiguation rules have been applied
// (spec.md §4.E step 4f). Candidates carries each tied terminal's name and
// the exact text it matched, so users can add priorities or a custom
// recognition callback.
type DisambiguationError struct {
	located
	Position   int
	Candidates map[string]string // terminal name -> matched text
}

func (e *DisambiguationError) Error() string {
	names := make([]string, 0, len(e.Candidates))
	for name, text := range e.Candidates {
		names = append(names, fmt.Sprintf("%s (%q)", name, text))
	}
	return wrap(fmt.Sprintf("%sambiguous match at position %d between %s", e.locPrefix(), e.Position, strings.Join(names, ", ")))
}

func NewDisambiguationError(pos int, candidates map[string]string) *DisambiguationError {
	return &DisambiguationError{Position: pos, Candidates: candidates}
}

// Conflict is one shift/reduce or reduce/reduce conflict detected while
// building an LR table (spec.md §4.D, "Conflict detection and
// disambiguation").
type Conflict struct {
	State     int
	Terminal  string
	Message   string
	IsReduceR bool // true if this is a reduce/reduce conflict
}

func (c Conflict) String() string {
	kind := "shift/reduce"
	if c.IsReduceR {
		kind = "reduce/reduce"
	}
	return fmt.Sprintf("state %d, terminal %q: %s conflict (%s)", c.State, c.Terminal, kind, c.Message)
}

// SRConflicts aggregates every shift/reduce conflict left unresolved after
// operator precedence and prefer_shifts/prefer_shifts_over_empty have been
// applied. Conflicts are never silently dropped; they are reported as one
// exception carrying the full list (spec.md §7).
type SRConflicts struct {
	Conflicts []Conflict
}

func (e *SRConflicts) Error() string {
	lines := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		lines[i] = c.String()
	}
	return fmt.Sprintf("%d shift/reduce conflict(s):\n%s", len(e.Conflicts), strings.Join(lines, "\n"))
}

// RRConflicts aggregates every residual reduce/reduce conflict.
type RRConflicts struct {
	Conflicts []Conflict
}

func (e *RRConflicts) Error() string {
	lines := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		lines[i] = c.String()
	}
	return fmt.Sprintf("%d reduce/reduce conflict(s):\n%s", len(e.Conflicts), strings.Join(lines, "\n"))
}
