// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lalr

import "github.com/mdhender/guanabana/internal/grammar"

// dummyLookahead is the "#" marker from Algorithm 4.62 (Aho/Sethi/Ullman):
// a lookahead symbol on an item in a dummy LR(1) closure that means "this
// item's lookahead is determined by whatever the kernel item it came from
// ends up with", as opposed to a real terminal generated spontaneously by
// the closure itself. It is a private sentinel, never interned into any
// Grammar's symbol table, so pointer identity alone distinguishes it from
// every real symbol.
var dummyLookahead = &grammar.Symbol{Name: "#"}

// laSet is a lookahead set: a set of terminal symbols (and, transiently,
// the dummyLookahead marker).
type laSet map[*grammar.Symbol]bool

func (s laSet) addAll(other laSet) (changed bool) {
	for t := range other {
		if !s[t] {
			s[t] = true
			changed = true
		}
	}
	return changed
}

// closureLA computes the LR(1)-style closure of a seed set of (item,
// lookaheads) pairs, merging lookahead sets when the same item is reached
// by more than one path. It is used twice: once per kernel item with the
// dummy marker as the only seed lookahead (to discover spontaneous
// lookaheads and propagation targets), and once per state with each
// kernel item's final, fully-propagated lookahead set (to read off
// lookaheads for every item in the state, including ones the LR(0)
// closure added that never appear in any kernel).
func closureLA(seed map[Item]laSet, byLHS map[*grammar.Symbol][]*grammar.Production, first *firstSets) map[Item]laSet {
	result := map[Item]laSet{}
	for it, las := range seed {
		cp := laSet{}
		cp.addAll(las)
		result[it] = cp
	}

	changed := true
	for changed {
		changed = false
		for it, las := range result {
			sym := it.NextSymbol()
			if sym == nil || sym.Kind != grammar.SymNonterminal {
				continue
			}
			beta := it.Prod.RHS[it.Dot+1:]
			var betaSyms []*grammar.Symbol
			for _, ref := range beta {
				betaSyms = append(betaSyms, ref.Sym)
			}
			betaFirst, betaNullable := first.firstOfSeq(betaSyms)

			for _, p := range byLHS[sym] {
				newItem := Item{Prod: p, Dot: 0}
				toAdd := laSet{}
				toAdd.addAll(betaFirst)
				if betaNullable {
					toAdd.addAll(las)
				}
				existing, ok := result[newItem]
				if !ok {
					existing = laSet{}
					result[newItem] = existing
				}
				if existing.addAll(toAdd) {
					changed = true
				}
			}
		}
	}
	return result
}

// propagationEdge records that whatever terminals end up in the
// lookahead set of (fromState, fromItem) must also be added to the
// lookahead set of (toState, toItem).
type propagationEdge struct {
	fromState, toState int
	fromItem, toItem   Item
}

// Lookaheads holds the final LALR(1) lookahead set for every item in
// every state, keyed by state ID then by item.
type Lookaheads struct {
	perState []map[Item]laSet
}

// For returns the lookahead terminals for item in state stateID. A nil or
// empty result means the item has no computed reduce lookaheads (e.g. a
// shift item, which doesn't need any).
func (la *Lookaheads) For(stateID int, it Item) laSet {
	if stateID < 0 || stateID >= len(la.perState) {
		return nil
	}
	return la.perState[stateID][it]
}

// ComputeLookaheads runs the DeRemer-Pennello spontaneous-generation and
// propagation algorithm over a, then does one more real closure pass per
// state (seeded with the final kernel lookaheads, no dummy marker
// involved) to recover lookaheads for every item the LR(0) closure added,
// not just the kernel items the propagation pass tracks directly.
func ComputeLookaheads(g *grammar.Grammar, a *Automaton) *Lookaheads {
	first := computeFirstSets(g)

	kernelLA := make([]map[Item]laSet, len(a.States))
	for i := range kernelLA {
		kernelLA[i] = map[Item]laSet{}
	}

	var edges []propagationEdge

	if len(a.States) > 0 && len(g.Productions) > 0 {
		start := g.Productions[0]
		seedItem := Item{Prod: start, Dot: 0}
		if g.EndSym != nil {
			kernelLA[0][seedItem] = laSet{g.EndSym: true}
		}
	}

	// Phase 1: for every kernel item in every state, compute its dummy
	// closure and classify each resulting lookahead as spontaneous (a
	// real terminal, added immediately) or propagated (the dummy marker,
	// recorded as an edge to be resolved by fixed-point iteration).
	for _, s := range a.States {
		for _, kit := range s.Kernel {
			seed := map[Item]laSet{kit: {dummyLookahead: true}}
			closed := closureLA(seed, a.byLHS, first)

			for jit, las := range closed {
				sym := jit.NextSymbol()
				if sym == nil {
					continue
				}
				toStateID, ok := s.Goto[sym]
				if !ok {
					continue
				}
				toItem := jit.Advance()

				spontaneous := laSet{}
				propagates := false
				for t := range las {
					if t == dummyLookahead {
						propagates = true
					} else {
						spontaneous[t] = true
					}
				}
				if len(spontaneous) > 0 {
					dst, ok := kernelLA[toStateID][toItem]
					if !ok {
						dst = laSet{}
						kernelLA[toStateID][toItem] = dst
					}
					dst.addAll(spontaneous)
				}
				if propagates {
					edges = append(edges, propagationEdge{
						fromState: s.ID, fromItem: kit,
						toState: toStateID, toItem: toItem,
					})
				}
			}
		}
	}

	// Phase 2: propagate along the recorded edges until nothing changes.
	changed := true
	for changed {
		changed = false
		for _, e := range edges {
			src, ok := kernelLA[e.fromState][e.fromItem]
			if !ok || len(src) == 0 {
				continue
			}
			dst, ok := kernelLA[e.toState][e.toItem]
			if !ok {
				dst = laSet{}
				kernelLA[e.toState][e.toItem] = dst
			}
			if dst.addAll(src) {
				changed = true
			}
		}
	}

	// Phase 3: per state, do one real LR(1) closure seeded with the final
	// kernel lookaheads so every item (kernel or closure-added) has its
	// complete reduce lookahead set.
	final := &Lookaheads{perState: make([]map[Item]laSet, len(a.States))}
	for _, s := range a.States {
		seed := map[Item]laSet{}
		for _, kit := range s.Kernel {
			seed[kit] = kernelLA[s.ID][kit]
		}
		final.perState[s.ID] = closureLA(seed, a.byLHS, first)
	}
	return final
}
