package table

import (
	"fmt"

	"github.com/dekarrin/gparse/grammar"
	"github.com/dekarrin/rosed"
)

// Pretty renders the action/goto table as a bordered text table, one row
// per state, terminal columns followed by a separator column followed by
// nonterminal goto columns.
func (t *Table) Pretty(g *grammar.Grammar) string {
	terms := g.Terminals()
	nonTerms := g.NonTerminals()

	header := []string{"state"}
	header = append(header, terms...)
	header = append(header, "|")
	header = append(header, nonTerms...)

	data := [][]string{header}
	for s := 0; s < len(t.Action); s++ {
		row := []string{fmt.Sprintf("%d", s)}
		for _, term := range terms {
			row = append(row, cellFor(t.Action[s][term]))
		}
		row = append(row, "|")
		for _, nt := range nonTerms {
			cell := ""
			if target, ok := t.Goto[s][nt]; ok {
				cell = fmt.Sprintf("%d", target)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}

	return rosed.
		Edit("").
		InsertTableOpts(0, data, 10, rosed.Options{
			TableHeaders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
}

func cellFor(a Action) string {
	switch a.Type {
	case Shift:
		return fmt.Sprintf("s%d", a.State)
	case Reduce:
		return fmt.Sprintf("r%d", a.Prod)
	case Accept:
		return "acc"
	default:
		return ""
	}
}
