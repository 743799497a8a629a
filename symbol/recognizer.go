package symbol

import (
	"github.com/dlclark/regexp2"
	"golang.org/x/text/cases"
)

// RecognizerKind identifies which of the three built-in recognizer shapes
// (spec.md §4.A) a Recognizer was constructed from. External recognizers
// (user callables) report RecognizerCustom.
type RecognizerKind int

const (
	RecognizerString RecognizerKind = iota
	RecognizerRegex
	RecognizerCustom
)

// Recognizer is a callable (input, position) -> matched slice | none. It is
// never consulted outside the scanner; given the full input and a position,
// it returns the exact string it consumed starting at that position, for
// downstream offset arithmetic (spec.md §4.A).
type Recognizer interface {
	Kind() RecognizerKind
	// Value is the recognizer's defining string: the literal for a string
	// recognizer, the pattern source for a regex recognizer, empty for a
	// custom one. Used to detect duplicate string recognizers (spec.md §3).
	Value() string
	// Recognize attempts to match starting exactly at pos. ok is false if
	// there is no match at that position.
	Recognize(input string, pos int) (matched string, ok bool)
}

// StringRecognizer matches only if the literal appears starting at pos.
type StringRecognizer struct {
	Literal    string
	IgnoreCase bool

	folder cases.Caser
}

// NewStringRecognizer builds a string recognizer. When ignoreCase is true,
// matching folds Unicode case using golang.org/x/text/cases rather than a
// byte-wise ASCII comparison, so that e.g. Turkish dotless-i and German
// eszett still compare correctly.
func NewStringRecognizer(literal string, ignoreCase bool) *StringRecognizer {
	r := &StringRecognizer{Literal: literal, IgnoreCase: ignoreCase}
	if ignoreCase {
		r.folder = cases.Fold()
	}
	return r
}

func (r *StringRecognizer) Kind() RecognizerKind { return RecognizerString }
func (r *StringRecognizer) Value() string        { return r.Literal }

func (r *StringRecognizer) Recognize(input string, pos int) (string, bool) {
	if pos < 0 || pos > len(input) {
		return "", false
	}
	n := len(r.Literal)
	if pos+n > len(input) {
		return "", false
	}
	candidate := input[pos : pos+n]
	if !r.IgnoreCase {
		if candidate == r.Literal {
			return candidate, true
		}
		return "", false
	}
	if r.folder.String(candidate) == r.folder.String(r.Literal) {
		return candidate, true
	}
	return "", false
}

// RegexRecognizer matches a compiled regular expression, anchored at pos.
// It uses dlclark/regexp2 rather than the standard library's regexp (RE2)
// because grammars occasionally rely on lookahead/lookaround to separate
// otherwise-ambiguous terminals (e.g. a number terminal that must not be
// immediately followed by an identifier character), which RE2 cannot
// express.
type RegexRecognizer struct {
	Source string
	re     *regexp2.Regexp
}

// NewRegexRecognizer compiles pattern with the given regexp2 options
// (multiline semantics per spec.md §4.A; pass regexp2.Multiline | ... as
// needed via opts).
func NewRegexRecognizer(pattern string, opts regexp2.RegexOptions) (*RegexRecognizer, error) {
	re, err := regexp2.Compile(pattern, opts)
	if err != nil {
		return nil, err
	}
	return &RegexRecognizer{Source: pattern, re: re}, nil
}

func (r *RegexRecognizer) Kind() RecognizerKind { return RecognizerRegex }
func (r *RegexRecognizer) Value() string        { return r.Source }

// Recognize returns the match anchored exactly at pos. It searches the full
// input starting at pos (so \b and lookbehind see the preceding text) and
// rejects a match that begins after pos. The match is the one regexp2's
// backtracking engine finds first, which is not necessarily the longest.
func (r *RegexRecognizer) Recognize(input string, pos int) (string, bool) {
	if pos < 0 || pos > len(input) {
		return "", false
	}
	m, err := r.re.FindStringMatchStartingAt(input, pos)
	if err != nil || m == nil {
		return "", false
	}
	if m.Index != pos {
		return "", false
	}
	return m.String(), true
}

// CustomRecognizerFunc adapts a user callable to the Recognizer interface.
type CustomRecognizerFunc func(input string, pos int) (string, bool)

func (f CustomRecognizerFunc) Kind() RecognizerKind { return RecognizerCustom }
func (f CustomRecognizerFunc) Value() string        { return "" }
func (f CustomRecognizerFunc) Recognize(input string, pos int) (string, bool) {
	return f(input, pos)
}

// KeywordBoundaryPattern builds the `\b<literal>\b`-style regex source used
// to rewrite a string-recognizer terminal into a regex recognizer when the
// KEYWORD hook applies (spec.md §4.A).
func KeywordBoundaryPattern(literal string) string {
	return `\b` + regexp2QuoteMeta(literal) + `\b`
}

// regexp2QuoteMeta escapes regex metacharacters in s. regexp2 does not
// export a QuoteMeta helper the way the standard regexp package does, so
// this mirrors the standard library's character class.
func regexp2QuoteMeta(s string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]byte, 0, len(s)*2)
	for i := 0; i < len(s); i++ {
		c := s[i]
		for _, sc := range []byte(special) {
			if c == sc {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, c)
	}
	return string(out)
}
