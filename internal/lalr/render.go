// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lalr

import (
	"fmt"
	"sort"

	"github.com/dekarrin/rosed"

	"github.com/mdhender/guanabana/internal/grammar"
)

// String renders the ACTION/GOTO table as an aligned text table: one row
// per state, "A:<terminal>" columns for ACTION and "G:<nonterminal>"
// columns for GOTO, state 0 (the automaton's start state) listed first.
//
// Grounded in dekarrin-tunaq/internal/ictiobus's lalr1Table.String(),
// which builds the same row/column shape from its own ACTION/GOTO
// accessors and hands the result to rosed for alignment; this adapts
// that layout to *Table's map-per-state representation instead of a
// lalr1Table's Action/Goto method pair.
func (t *Table) String() string {
	terms, nonterms := t.symbolColumns()

	headers := []string{"S", "|"}
	for _, term := range terms {
		headers = append(headers, "A:"+term.Name)
	}
	headers = append(headers, "|")
	for _, nt := range nonterms {
		headers = append(headers, "G:"+nt.Name)
	}

	data := [][]string{headers}
	for state := range t.Action {
		row := []string{fmt.Sprintf("%d", state), "|"}
		for _, term := range terms {
			row = append(row, actionCell(t.Action[state][term]))
		}
		row = append(row, "|")
		for _, nt := range nonterms {
			cell := ""
			if target, ok := t.Goto[state][nt]; ok {
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

func actionCell(entry ActionEntry) string {
	switch entry.Kind {
	case ActionAccept:
		return "acc"
	case ActionShift:
		return fmt.Sprintf("s%d", entry.Target)
	case ActionReduce:
		return fmt.Sprintf("r%d", entry.Prod.Number)
	default:
		return ""
	}
}

// symbolColumns collects every terminal (plus $end) and every
// nonterminal appearing anywhere in the table, each sorted by name so
// String's output is deterministic across runs.
func (t *Table) symbolColumns() (terms, nonterms []*grammar.Symbol) {
	termSeen := map[*grammar.Symbol]bool{}
	ntSeen := map[*grammar.Symbol]bool{}
	for _, row := range t.Action {
		for sym := range row {
			if !termSeen[sym] {
				termSeen[sym] = true
				terms = append(terms, sym)
			}
		}
	}
	for _, row := range t.Goto {
		for sym := range row {
			if !ntSeen[sym] {
				ntSeen[sym] = true
				nonterms = append(nonterms, sym)
			}
		}
	}
	sort.Slice(terms, func(i, j int) bool { return terms[i].Name < terms[j].Name })
	sort.Slice(nonterms, func(i, j int) bool { return nonterms[i].Name < nonterms[j].Name })
	return terms, nonterms
}
