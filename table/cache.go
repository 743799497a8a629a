package table

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cnf/structhash"
	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/rezi"
)

const cacheMagic = "GPTB"
const cacheVersion = 1

// Fingerprint is a stable hash of a normalized grammar's production list,
// terminal recognizer signatures, and the table-construction options used
// to build it. Two fingerprints are equal iff rebuilding the table from
// scratch would produce an identical result (spec.md §6, "Persisted
// state"); the cache is invalidated on mismatch.
func Fingerprint(g *grammar.Grammar, opts Options) string {
	type fpTerminal struct {
		Name            string
		RecognizerKind  int
		RecognizerValue string
		Priority        int
		Finish   bool
		Prefer   bool
		Dynamic  bool
		Keyword  bool
	}
	type fpProduction struct {
		NonTerminal string
		Symbols     []string
		Assoc       int
		Priority    int
	}
	type fpGrammar struct {
		Terminals   []fpTerminal
		Productions []fpProduction
		Start       string
		Mode        string
		Prefer      bool
		PreferEmpty bool
	}

	fp := fpGrammar{Start: g.StartSymbol(), Mode: opts.Mode, Prefer: opts.PreferShifts, PreferEmpty: opts.PreferShiftsOverEmpty}
	for _, name := range g.Terminals() {
		s := g.Symbol(name)
		term := fpTerminal{
			Name: name, Priority: s.Priority, Finish: s.Finish, Prefer: s.Prefer, Dynamic: s.Dynamic, Keyword: s.Keyword,
		}
		if s.Recognizer != nil {
			term.RecognizerKind = int(s.Recognizer.Kind())
			term.RecognizerValue = s.Recognizer.Value()
		}
		fp.Terminals = append(fp.Terminals, term)
	}
	for _, p := range g.Productions() {
		fp.Productions = append(fp.Productions, fpProduction{
			NonTerminal: p.NonTerminal, Symbols: p.Symbols, Assoc: int(p.Assoc), Priority: p.Priority,
		})
	}

	hash, err := structhash.Hash(fp, 1)
	if err != nil {
		// structhash.Hash only errors on unsupported reflect kinds; fp is
		// built entirely from strings, ints, bools, and slices of those.
		panic(err)
	}
	return hash
}

// MarshalBinary encodes the table as a versioned, self-describing record:
// a magic/version header, the mode, the accept state, then per-state
// {actions, gotos}, REZI-encoded (spec.md §6, "Persisted state").
func (t *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(cacheMagic)
	writeUvarint(&buf, cacheVersion)

	buf.Write(rezi.EncBinary(t.Mode))
	writeUvarint(&buf, uint64(t.Initial))
	writeUvarint(&buf, uint64(t.AcceptState))
	writeUvarint(&buf, uint64(len(t.Action)))

	for i := range t.Action {
		buf.Write(rezi.EncBinary(encodeActions(t.Action[i])))
		buf.Write(rezi.EncBinary(t.Goto[i]))
		buf.Write(rezi.EncBinary(t.Expected[i]))
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary decodes a record written by MarshalBinary. Finish is a
// derived convenience, not part of the persisted identity of the table, so
// it is left empty here; call RecomputeFinish to rebuild it.
func (t *Table) UnmarshalBinary(data []byte) error {
	if len(data) < len(cacheMagic) || string(data[:len(cacheMagic)]) != cacheMagic {
		return fmt.Errorf("table cache: bad magic header")
	}
	r := bytes.NewReader(data[len(cacheMagic):])

	version, err := binary.ReadUvarint(r)
	if err != nil {
		return fmt.Errorf("table cache: reading version: %w", err)
	}
	if version != cacheVersion {
		return fmt.Errorf("table cache: unsupported version %d (want %d)", version, cacheVersion)
	}

	rest := make([]byte, r.Len())
	if _, err := io.ReadFull(r, rest); err != nil {
		return fmt.Errorf("table cache: reading body: %w", err)
	}

	var mode string
	n, err := rezi.DecBinary(rest, &mode)
	if err != nil {
		return fmt.Errorf("table cache: decoding mode: %w", err)
	}
	t.Mode = mode
	rest = rest[n:]

	initial, n2 := decodeUvarint(rest)
	t.Initial = int(initial)
	rest = rest[n2:]

	accept, n3 := decodeUvarint(rest)
	t.AcceptState = int(accept)
	rest = rest[n3:]

	count, n4 := decodeUvarint(rest)
	rest = rest[n4:]

	t.Action = make([]map[string]Action, count)
	t.Goto = make([]map[string]int, count)
	t.Expected = make([][]string, count)
	t.Finish = make([]map[string]bool, count)

	for i := 0; i < int(count); i++ {
		var flat map[string]flatAction
		n, err = rezi.DecBinary(rest, &flat)
		if err != nil {
			return fmt.Errorf("table cache: decoding actions for state %d: %w", i, err)
		}
		rest = rest[n:]
		t.Action[i] = decodeActions(flat)

		var gotoMap map[string]int
		n, err = rezi.DecBinary(rest, &gotoMap)
		if err != nil {
			return fmt.Errorf("table cache: decoding gotos for state %d: %w", i, err)
		}
		rest = rest[n:]
		t.Goto[i] = gotoMap

		var expected []string
		n, err = rezi.DecBinary(rest, &expected)
		if err != nil {
			return fmt.Errorf("table cache: decoding expected terminals for state %d: %w", i, err)
		}
		rest = rest[n:]
		t.Expected[i] = expected
		t.Finish[i] = map[string]bool{} // recomputed by the caller via RecomputeFinish
	}

	return nil
}

// flatAction is Action's REZI wire shape (Action itself is fine to encode
// directly, but a separate type with exported fields keeps the cache format independent
// of internal struct layout changes).
type flatAction struct {
	Type  int
	State int
	Prod  int
}

func encodeActions(m map[string]Action) map[string]flatAction {
	out := make(map[string]flatAction, len(m))
	for k, v := range m {
		out[k] = flatAction{Type: int(v.Type), State: v.State, Prod: v.Prod}
	}
	return out
}

func decodeActions(m map[string]flatAction) map[string]Action {
	out := make(map[string]Action, len(m))
	for k, v := range m {
		out[k] = Action{Type: ActionType(v.Type), State: v.State, Prod: v.Prod}
	}
	return out
}

func writeUvarint(buf *bytes.Buffer, v uint64) {
	tmp := make([]byte, binary.MaxVarintLen64)
	n := binary.PutUvarint(tmp, v)
	buf.Write(tmp[:n])
}

func decodeUvarint(data []byte) (uint64, int) {
	v, n := binary.Uvarint(data)
	return v, n
}

// RecomputeFinish rebuilds the Finish table after a cache load, since
// Finish is a derived view over Expected and is not itself persisted.
func (t *Table) RecomputeFinish(g *grammar.Grammar) {
	for s := range t.Action {
		t.Finish[s] = computeFinish(g, t.Action[s], t.Expected[s])
	}
}
