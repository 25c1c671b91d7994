// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package lalr builds an LALR(1) ACTION/GOTO table from a *grammar.Grammar:
// an LR(0) canonical collection (item.go, automaton.go), a lookahead
// propagation pass (lookahead.go), and a table builder with
// precedence-based conflict resolution (table.go).
package lalr

import (
	"sort"
	"strconv"
	"strings"

	"github.com/mdhender/guanabana/internal/grammar"
)

// Item is an LR(0) item: a production with a dot position marking how
// much of its RHS has been recognized.
type Item struct {
	Prod *grammar.Production
	Dot  int
}

// AtEnd reports whether the dot has reached the end of the RHS (a
// reduce item).
func (it Item) AtEnd() bool { return it.Dot >= len(it.Prod.RHS) }

// NextSymbol returns the symbol immediately after the dot, or nil if the
// item is at the end.
func (it Item) NextSymbol() *grammar.Symbol {
	if it.AtEnd() {
		return nil
	}
	return it.Prod.RHS[it.Dot].Sym
}

// Advance returns the item with the dot moved one position to the right.
func (it Item) Advance() Item { return Item{Prod: it.Prod, Dot: it.Dot + 1} }

func (it Item) String() string {
	s := it.Prod.LHS.Name + " ->"
	for i, r := range it.Prod.RHS {
		if i == it.Dot {
			s += " ."
		}
		s += " " + r.Sym.Name
	}
	if it.Dot >= len(it.Prod.RHS) {
		s += " ."
	}
	return s
}

// productionsByLHS indexes a grammar's productions by LHS symbol for fast
// closure expansion. Production 0 (the augmented start, LHS == nil) is
// never a closure expansion target and is excluded.
func productionsByLHS(g *grammar.Grammar) map[*grammar.Symbol][]*grammar.Production {
	idx := map[*grammar.Symbol][]*grammar.Production{}
	for _, p := range g.Productions {
		if p.LHS == nil {
			continue
		}
		idx[p.LHS] = append(idx[p.LHS], p)
	}
	return idx
}

// closure computes the LR(0) closure of a kernel item set.
func closure(kernel []Item, byLHS map[*grammar.Symbol][]*grammar.Production) []Item {
	seen := map[Item]bool{}
	var out []Item
	var queue []Item

	add := func(it Item) {
		if !seen[it] {
			seen[it] = true
			out = append(out, it)
			queue = append(queue, it)
		}
	}
	for _, it := range kernel {
		add(it)
	}

	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]

		sym := it.NextSymbol()
		if sym == nil || sym.Kind != grammar.SymNonterminal {
			continue
		}
		for _, p := range byLHS[sym] {
			add(Item{Prod: p, Dot: 0})
		}
	}
	return out
}


// itemSetKey returns a canonical, order-independent key for a closed item
// set, used to dedupe states in the canonical collection. Items are
// compared by (production number, dot), which uniquely identifies an item
// regardless of slice order.
func itemSetKey(items []Item) string {
	keys := make([]int, 0, len(items))
	for _, it := range items {
		keys = append(keys, it.Prod.Number*1024+it.Dot)
	}
	sort.Ints(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.Itoa(k)
	}
	return strings.Join(parts, ",")
}
