// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package grammar

import "github.com/mdhender/guanabana/internal/diag"

// Finalize performs semantic validation, numbers the productions, and
// emits diagnostics. It does not panic; it records errors/warnings and
// returns the grammar anyway. Call this after the grammar-file parser has
// finished emitting events (or after a programmatic Builder session).
func (b *Builder) Finalize() *Grammar {
	if b == nil || b.g == nil {
		return nil
	}

	g := b.g

	// ---- 1) Basic existence checks ----

	if len(g.Rules) == 0 {
		b.error(diag.NoTokensList, nil, "grammar has no rules")
		return g
	}

	if g.Start == nil {
		b.error(diag.Generic, nil, "start symbol is not set and could not be inferred")
	} else if g.Start.Kind != SymNonterminal {
		b.error(diag.ReservedName, g.Start.DeclaredAt, "start symbol %q must be a nonterminal", g.Start.Name)
	}

	// ---- 2) Build indices used by validation ----

	lhsHasRule := make(map[*Symbol]bool, len(g.Rules))
	for _, r := range g.Rules {
		if r == nil || r.LHS == nil {
			b.error(diag.BadProductionSyntax, nil, "rule has nil LHS")
			continue
		}
		if r.LHS.Kind != SymNonterminal {
			b.error(diag.ReservedName, r.At, "rule LHS %q must be a nonterminal", r.LHS.Name)
		}
		lhsHasRule[r.LHS] = true
	}

	used := make(map[*Symbol]int, len(g.Symbols))

	// Edges among nonterminals for reachability: A -> B if some alternative
	// of A references B on its RHS.
	edges := make(map[*Symbol]map[*Symbol]bool)

	// Infinite-recursion detection: A "derives a terminal string" once at
	// least one alternative of A is epsilon, consists solely of
	// terminal-like symbols, or references only nonterminals that
	// themselves derive a terminal string. We compute this as a fixed
	// point below.
	derivesFinite := make(map[*Symbol]bool)

	// ---- 3) Validate productions ----

	for _, r := range g.Rules {
		if r == nil || r.LHS == nil {
			continue
		}

		if _, ok := edges[r.LHS]; !ok {
			edges[r.LHS] = map[*Symbol]bool{}
		}

		if len(r.Alternatives) == 0 {
			b.warn(diag.UnusedRule, r.At, "rule %q has no alternatives", r.LHS.Name)
			continue
		}

		for _, alt := range r.Alternatives {
			if alt == nil {
				b.error(diag.BadProductionSyntax, r.At, "rule %q has a nil alternative", r.LHS.Name)
				continue
			}

			for pos, sr := range alt.RHS {
				if sr == nil || sr.Sym == nil {
					b.error(diag.BadProductionSyntax, alt.At, "rule %q has nil rhs symbol at position %d", r.LHS.Name, pos)
					continue
				}

				used[sr.Sym]++

				if sr.Sym.Kind == SymNonterminal {
					edges[r.LHS][sr.Sym] = true
				}
			}

			if alt.PrecSym != nil {
				if !alt.PrecSym.IsTerminalLike() {
					b.error(diag.BadPrecedenceForm, alt.At, "precedence override symbol %q must be a terminal", alt.PrecSym.Name)
				} else if alt.PrecSym.Precedence == 0 {
					b.warn(diag.PrecedenceForUnknownSymbol, alt.At, "precedence override uses %q, but it has no precedence (missing %%left/%%right/%%nonassoc?)", alt.PrecSym.Name)
				}
				used[alt.PrecSym]++
			}

			if alt.Action != nil && alt.Action.Fn != nil && alt.Action.Arity != len(alt.RHS) {
				b.error(diag.BadActionArity, alt.At, "action for %q expects %d argument(s) but alternative has %d rhs symbol(s)",
					r.LHS.Name, alt.Action.Arity, len(alt.RHS))
			}
		}
	}

	// ---- 4) Undefined nonterminals (referenced but no rule) ----

	for sym, n := range used {
		if n == 0 || sym == nil {
			continue
		}
		if sym.Kind == SymNonterminal && !lhsHasRule[sym] {
			b.error(diag.UndefinedSymbol, sym.DeclaredAt, "nonterminal %q is used but has no rule", sym.Name)
		}
	}

	// ---- 5) Reachability from start symbol ----

	reachable := map[*Symbol]bool{}
	if g.Start != nil && g.Start.Kind == SymNonterminal {
		stack := []*Symbol{g.Start}
		reachable[g.Start] = true

		for len(stack) > 0 {
			nt := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			for next := range edges[nt] {
				if next == nil || next.Kind != SymNonterminal {
					continue
				}
				if !reachable[next] {
					reachable[next] = true
					stack = append(stack, next)
				}
			}
		}

		for nt := range lhsHasRule {
			if nt == nil {
				continue
			}
			if !reachable[nt] {
				b.warn(diag.UnreachableSymbol, nt.DeclaredAt, "nonterminal %q has rules but is unreachable from start symbol %q", nt.Name, g.Start.Name)
			}
		}
	}

	// ---- 6) Unused symbol warnings ----

	for _, sym := range g.Symbols {
		if sym == nil {
			continue
		}
		if sym.Name == "<invalid>" || sym.Name == ErrorSymbol || sym.Name == EndSymbol {
			continue
		}
		if used[sym] == 0 {
			switch sym.Kind {
			case SymTerminal, SymLiteral:
				b.warn(diag.UnusedToken, sym.DeclaredAt, "terminal %q is declared but never used", sym.Name)
			case SymNonterminal:
				if lhsHasRule[sym] {
					b.warn(diag.UnreachableSymbol, sym.DeclaredAt, "nonterminal %q has rules but is never referenced (except as LHS)", sym.Name)
				} else {
					b.warn(diag.UndefinedSymbol, sym.DeclaredAt, "nonterminal %q is declared but never used and has no rules", sym.Name)
				}
			}
		}
	}

	// ---- 7) Infinite-recursion detection ----
	//
	// A nonterminal "derives a finite string" if at least one of its
	// alternatives consists only of terminal-like symbols and/or
	// nonterminals that themselves derive a finite string (computed as a
	// monotone fixed point over the rule set). A nonterminal reachable
	// from start that never reaches this fixed point can only be expanded
	// forever, so parsing any input containing it cannot terminate.
	changed := true
	for changed {
		changed = false
		for _, r := range g.Rules {
			if r == nil || r.LHS == nil || derivesFinite[r.LHS] {
				continue
			}
			for _, alt := range r.Alternatives {
				if alt == nil {
					continue
				}
				ok := true
				for _, sr := range alt.RHS {
					if sr == nil || sr.Sym == nil {
						ok = false
						break
					}
					if sr.Sym.Kind == SymNonterminal && !derivesFinite[sr.Sym] {
						ok = false
						break
					}
				}
				if ok {
					derivesFinite[r.LHS] = true
					changed = true
					break
				}
			}
		}
	}

	for nt := range lhsHasRule {
		if nt == nil || !reachable[nt] {
			continue
		}
		if !derivesFinite[nt] {
			b.error(diag.InfiniteRecursion, nt.DeclaredAt, "nonterminal %q cannot derive any finite string; every alternative recurses", nt.Name)
		}
	}

	// ---- 8) Production numbering & augmentation ----
	//
	// Production 0 is the synthetic augmented start S' -> Start $end. User
	// productions are then numbered in rule/alternative source order
	// starting at 1.
	g.Productions = g.Productions[:0]
	if g.Start != nil {
		g.Productions = append(g.Productions, &Production{
			Number: 0,
			LHS:    nil, // augmented start has no real LHS symbol of its own
			RHS: []*SymbolRef{
				{Sym: g.Start},
				{Sym: g.EndSym},
			},
		})
	}

	num := 1
	for _, r := range g.Rules {
		if r == nil || r.LHS == nil {
			continue
		}
		for _, alt := range r.Alternatives {
			if alt == nil {
				continue
			}
			prec := alt.PrecSym
			if prec == nil {
				// Infer from the rightmost terminal-like symbol that
				// carries precedence.
				for i := len(alt.RHS) - 1; i >= 0; i-- {
					sr := alt.RHS[i]
					if sr == nil || sr.Sym == nil {
						continue
					}
					if sr.Sym.IsTerminalLike() && sr.Sym.Precedence != 0 {
						prec = sr.Sym
						break
					}
				}
			}
			g.Productions = append(g.Productions, &Production{
				Number: num,
				LHS:    r.LHS,
				RHS:    alt.RHS,
				Prec:   prec,
				Action: alt.Action,
			})
			num++
		}
	}

	return g
}
