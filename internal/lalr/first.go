// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lalr

import "github.com/mdhender/guanabana/internal/grammar"

// firstSets holds FIRST(X) for every symbol and the nullable set, computed
// once per grammar and shared by every closure call during lookahead
// propagation.
type firstSets struct {
	first    map[*grammar.Symbol]map[*grammar.Symbol]bool
	nullable map[*grammar.Symbol]bool
}

func computeFirstSets(g *grammar.Grammar) *firstSets {
	fs := &firstSets{
		first:    map[*grammar.Symbol]map[*grammar.Symbol]bool{},
		nullable: map[*grammar.Symbol]bool{},
	}

	for _, sym := range g.Symbols {
		if sym.IsTerminalLike() {
			fs.first[sym] = map[*grammar.Symbol]bool{sym: true}
		} else {
			fs.first[sym] = map[*grammar.Symbol]bool{}
		}
	}
	if g.EndSym != nil {
		fs.first[g.EndSym] = map[*grammar.Symbol]bool{g.EndSym: true}
	}

	changed := true
	for changed {
		changed = false
		for _, p := range g.Productions {
			if p.LHS == nil {
				continue // synthetic augmented start, not a real rule
			}
			if len(p.RHS) == 0 {
				if !fs.nullable[p.LHS] {
					fs.nullable[p.LHS] = true
					changed = true
				}
				continue
			}

			allNullableSoFar := true
			for _, ref := range p.RHS {
				sym := ref.Sym
				for t := range fs.first[sym] {
					if !fs.first[p.LHS][t] {
						fs.first[p.LHS][t] = true
						changed = true
					}
				}
				if !fs.nullable[sym] {
					allNullableSoFar = false
					break
				}
			}
			if allNullableSoFar && !fs.nullable[p.LHS] {
				fs.nullable[p.LHS] = true
				changed = true
			}
		}
	}
	return fs
}

// firstOfSeq computes FIRST of a symbol sequence: the union of FIRST(Xi)
// for the nullable prefix plus FIRST(X_k) of the first non-nullable
// symbol, and reports whether the entire sequence is nullable.
func (fs *firstSets) firstOfSeq(seq []*grammar.Symbol) (map[*grammar.Symbol]bool, bool) {
	out := map[*grammar.Symbol]bool{}
	for _, sym := range seq {
		for t := range fs.first[sym] {
			out[t] = true
		}
		if !fs.nullable[sym] {
			return out, false
		}
	}
	return out, true
}
