// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lalr

import "github.com/mdhender/guanabana/internal/grammar"

// State is one node of the canonical LR(0) collection: its closed item
// set, and the kernel items it was built from (needed later to seed
// lookahead propagation).
type State struct {
	ID     int
	Items  []Item
	Kernel []Item

	// Goto maps a symbol to the state reached by shifting/going to it.
	Goto map[*grammar.Symbol]int
}

// Automaton is the canonical LR(0) collection plus its GOTO graph.
type Automaton struct {
	States []*State
	byLHS  map[*grammar.Symbol][]*grammar.Production
}

// Build constructs the canonical LR(0) collection for g. g must already
// be Finalize()-d (Productions populated, production 0 the augmented
// start).
func Build(g *grammar.Grammar) *Automaton {
	byLHS := productionsByLHS(g)
	a := &Automaton{byLHS: byLHS}

	if len(g.Productions) == 0 {
		return a
	}
	start := g.Productions[0] // S' -> Start $end
	kernel0 := []Item{{Prod: start, Dot: 0}}
	items0 := closure(kernel0, byLHS)

	seen := map[string]int{}
	s0 := &State{ID: 0, Items: items0, Kernel: kernel0, Goto: map[*grammar.Symbol]int{}}
	a.States = append(a.States, s0)
	seen[itemSetKey(items0)] = 0

	worklist := []int{0}
	for len(worklist) > 0 {
		id := worklist[0]
		worklist = worklist[1:]
		s := a.States[id]

		// Every symbol that appears after a dot in this state's items is
		// a candidate transition.
		symbols := uniqueNextSymbols(s.Items)
		for _, sym := range symbols {
			kernel := gotoKernel(s.Items, sym)
			if len(kernel) == 0 {
				continue
			}
			items := closure(kernel, byLHS)
			key := itemSetKey(items)
			if existing, ok := seen[key]; ok {
				s.Goto[sym] = existing
				continue
			}
			newID := len(a.States)
			ns := &State{ID: newID, Items: items, Kernel: kernel, Goto: map[*grammar.Symbol]int{}}
			a.States = append(a.States, ns)
			seen[key] = newID
			s.Goto[sym] = newID
			worklist = append(worklist, newID)
		}
	}

	return a
}

func gotoKernel(items []Item, sym *grammar.Symbol) []Item {
	var kernel []Item
	for _, it := range items {
		if it.NextSymbol() == sym {
			kernel = append(kernel, it.Advance())
		}
	}
	return kernel
}

func uniqueNextSymbols(items []Item) []*grammar.Symbol {
	seen := map[*grammar.Symbol]bool{}
	var out []*grammar.Symbol
	for _, it := range items {
		sym := it.NextSymbol()
		if sym == nil || seen[sym] {
			continue
		}
		seen[sym] = true
		out = append(out, sym)
	}
	return out
}
