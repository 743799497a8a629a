// Package config loads parser-option defaults from an optional TOML
// document, the same way the teacher's tqw package decodes its on-disk
// TOML state (github.com/BurntSushi/toml). Unlike that game-state decode,
// this is a layered-defaults loader: a value only fills a caller's
// programmatic option when the document actually defines that key and the
// option is still at its zero value. An option explicitly set to its zero
// value (false, "", 0) cannot be told apart from an unset one and is filled
// in as well.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/dekarrin/gparse/glr"
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/gparse/parser"
	"github.com/dekarrin/gparse/table"
	"github.com/dlclark/regexp2"
)

// Document is the decoded shape of a parser-options TOML file:
//
//	tables = "LALR"
//	prefer_shifts = true
//	prefer_shifts_over_empty = false
//	ws = " \t\n\r"
//	lexical_disambiguation = true
//	re_flags = "im"
//	ignore_case = false
type Document struct {
	Tables                string `toml:"tables"`
	PreferShifts          bool   `toml:"prefer_shifts"`
	PreferShiftsOverEmpty bool   `toml:"prefer_shifts_over_empty"`
	Ws                    string `toml:"ws"`
	LexicalDisambiguation bool   `toml:"lexical_disambiguation"`
	ReFlags               string `toml:"re_flags"`
	IgnoreCase            bool   `toml:"ignore_case"`

	meta toml.MetaData
}

// defined reports whether key was actually present in the decoded
// document, as opposed to holding its Go zero value by default.
func (d *Document) defined(key string) bool {
	return d.meta.IsDefined(key)
}

// Load decodes path as a parser-options TOML document. A missing or empty
// file is not an error: Load returns a Document with nothing defined, and
// every Apply* method becomes a no-op, so callers can unconditionally
// layer config.Load over their own defaults.
func Load(path string) (*Document, error) {
	var doc Document
	meta, err := toml.DecodeFile(path, &doc)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Document{}, nil
		}
		return nil, fmt.Errorf("config: loading %s: %w", path, err)
	}
	doc.meta = meta
	return &doc, nil
}

// ApplyToParser fills in opts fields left at their zero value with this
// document's values, wherever the document defines the corresponding key.
// A field the caller already set to a non-zero value is left untouched.
func (d *Document) ApplyToParser(opts *parser.Options) {
	if d.defined("tables") && opts.Mode == "" {
		opts.Mode = d.Tables
	}
	if d.defined("prefer_shifts") && !opts.PreferShifts {
		opts.PreferShifts = d.PreferShifts
	}
	if d.defined("prefer_shifts_over_empty") && !opts.PreferShiftsOverEmpty {
		opts.PreferShiftsOverEmpty = d.PreferShiftsOverEmpty
	}
	if d.defined("ws") && opts.Ws == nil {
		ws := d.Ws
		opts.Ws = &ws
	}
}

// ApplyToGLR is ApplyToParser's equivalent for the generalized driver's
// options.
func (d *Document) ApplyToGLR(opts *glr.Options) {
	if d.defined("lexical_disambiguation") && !opts.LexicalDisambiguation {
		opts.LexicalDisambiguation = d.LexicalDisambiguation
	}
	if d.defined("ws") && opts.Ws == nil {
		ws := d.Ws
		opts.Ws = &ws
	}
}

// ApplyToTable is ApplyToParser's equivalent for the table builder's own
// options, used when a caller builds a table directly instead of going
// through parser.New.
func (d *Document) ApplyToTable(opts *table.Options) {
	if d.defined("tables") && opts.Mode == "" {
		opts.Mode = d.Tables
	}
	if d.defined("prefer_shifts") && !opts.PreferShifts {
		opts.PreferShifts = d.PreferShifts
	}
	if d.defined("prefer_shifts_over_empty") && !opts.PreferShiftsOverEmpty {
		opts.PreferShiftsOverEmpty = d.PreferShiftsOverEmpty
	}
}

// ApplyToGrammar is ApplyToParser's equivalent for grammar construction
// options: the regex engine flags and default case-sensitivity every
// string/regex terminal recognizer is built with.
func (d *Document) ApplyToGrammar(opts *grammar.Options) error {
	if d.defined("re_flags") && opts.ReFlags == 0 {
		flags, err := parseReFlags(d.ReFlags)
		if err != nil {
			return fmt.Errorf("config: re_flags: %w", err)
		}
		opts.ReFlags = flags
	}
	if d.defined("ignore_case") && !opts.IgnoreCase {
		opts.IgnoreCase = d.IgnoreCase
	}
	return nil
}

// parseReFlags maps single-letter regex flags (.NET-style, as regexp2
// itself uses) to a regexp2.RegexOptions bitmask: i=ignore-case,
// m=multiline, s=singleline (dot matches newline), x=ignore pattern
// whitespace, n=explicit capture only, e=ECMAScript mode.
func parseReFlags(flags string) (regexp2.RegexOptions, error) {
	var opts regexp2.RegexOptions
	for _, r := range flags {
		switch r {
		case 'i':
			opts |= regexp2.IgnoreCase
		case 'm':
			opts |= regexp2.Multiline
		case 's':
			opts |= regexp2.Singleline
		case 'x':
			opts |= regexp2.IgnorePatternWhitespace
		case 'n':
			opts |= regexp2.ExplicitCapture
		case 'e':
			opts |= regexp2.ECMAScript
		default:
			return 0, fmt.Errorf("unrecognized re_flags character %q", r)
		}
	}
	return opts, nil
}
