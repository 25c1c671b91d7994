// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lalr

import (
	"fmt"

	"github.com/mdhender/guanabana/internal/diag"
	"github.com/mdhender/guanabana/internal/grammar"
)

// ActionKind distinguishes the four things an ACTION table cell can hold.
type ActionKind uint8

const (
	ActionError ActionKind = iota
	ActionShift
	ActionReduce
	ActionAccept
)

// ActionEntry is one ACTION[state, terminal] cell.
type ActionEntry struct {
	Kind    ActionKind
	Target  int                 // next state, for Shift
	Prod    *grammar.Production // reducing production, for Reduce
}

// Table is the full ACTION/GOTO table for a grammar's automaton.
type Table struct {
	Automaton *Automaton

	// Action[stateID][terminal] is the parser action for that state and
	// lookahead terminal.
	Action []map[*grammar.Symbol]ActionEntry

	// Goto[stateID][nonterminal] is the state to go to after reducing to
	// that nonterminal.
	Goto []map[*grammar.Symbol]int

	// Conflicts counts every shift/reduce and reduce/reduce conflict
	// encountered, whether or not it was auto-resolved by precedence.
	Conflicts int
}

// BuildTable constructs the ACTION/GOTO table for g, resolving
// shift/reduce and reduce/reduce conflicts by precedence and
// associativity where declared, and by the standard fallback rules
// otherwise (prefer shift; prefer the lower-numbered production on a
// reduce/reduce tie). Every conflict, resolved or not, is reported as a
// diag.Warn-level diagnostic so a grammar author can see where ambiguity
// was papered over.
func BuildTable(g *grammar.Grammar) (*Table, []diag.Diagnostic) {
	var diags []diag.Diagnostic
	a := Build(g)
	la := ComputeLookaheads(g, a)

	t := &Table{
		Automaton: a,
		Action:    make([]map[*grammar.Symbol]ActionEntry, len(a.States)),
		Goto:      make([]map[*grammar.Symbol]int, len(a.States)),
	}

	for _, s := range a.States {
		t.Action[s.ID] = map[*grammar.Symbol]ActionEntry{}
		t.Goto[s.ID] = map[*grammar.Symbol]int{}

		// Shifts and gotos, straight from the GOTO graph.
		for sym, target := range s.Goto {
			if sym.Kind == grammar.SymNonterminal {
				t.Goto[s.ID][sym] = target
				continue
			}
			t.Action[s.ID][sym] = ActionEntry{Kind: ActionShift, Target: target}
		}

		// Reduces (and accept), from every item at end-of-production in
		// this state's closed item set, against its computed lookaheads.
		for _, it := range s.Items {
			if !it.AtEnd() {
				continue
			}
			lookaheads := la.For(s.ID, it)

			if it.Prod.Number == 0 {
				// S' -> Start . $end   — accept on $end.
				if g.EndSym != nil {
					mergeAction(t, s.ID, g.EndSym, ActionEntry{Kind: ActionAccept}, &diags)
				}
				continue
			}
			for term := range lookaheads {
				mergeAction(t, s.ID, term, ActionEntry{Kind: ActionReduce, Prod: it.Prod}, &diags)
			}
		}
	}

	t.Conflicts = len(diags)
	return t, diags
}

// mergeAction installs entry into ACTION[state][term], resolving a
// collision against whatever is already there by precedence/associativity
// when possible, and by the standard default (prefer shift; prefer the
// lower production number on reduce/reduce) otherwise. Every collision is
// recorded as a diagnostic.
func mergeAction(t *Table, stateID int, term *grammar.Symbol, entry ActionEntry, diags *[]diag.Diagnostic) {
	existing, ok := t.Action[stateID][term]
	if !ok {
		t.Action[stateID][term] = entry
		return
	}
	if existing == entry {
		return
	}

	// A %nonassoc error already pinned this cell by an earlier conflict;
	// that conflict's diagnostic already explains why, so a further
	// colliding shift or reduce just confirms the cell stays an error
	// rather than reopening it.
	if existing.Kind == ActionError {
		return
	}

	switch {
	case existing.Kind == ActionShift && entry.Kind == ActionReduce:
		resolved, msg := resolveShiftReduce(term, entry.Prod)
		*diags = append(*diags, diag.Diagnostic{
			Level: diag.Warning, Kind: diag.ShiftReduceConflict,
			Msg: fmt.Sprintf("state %d, lookahead %q: shift/reduce conflict with production %s; %s", stateID, term.Name, entry.Prod, msg),
		})
		switch resolved {
		case ActionReduce:
			t.Action[stateID][term] = entry
		case ActionError:
			t.Action[stateID][term] = ActionEntry{Kind: ActionError}
		}
		// resolved == ActionShift: keep existing, do nothing.

	case existing.Kind == ActionReduce && entry.Kind == ActionShift:
		resolved, msg := resolveShiftReduce(term, existing.Prod)
		*diags = append(*diags, diag.Diagnostic{
			Level: diag.Warning, Kind: diag.ShiftReduceConflict,
			Msg: fmt.Sprintf("state %d, lookahead %q: shift/reduce conflict with production %s; %s", stateID, term.Name, existing.Prod, msg),
		})
		switch resolved {
		case ActionShift:
			t.Action[stateID][term] = entry
		case ActionError:
			t.Action[stateID][term] = ActionEntry{Kind: ActionError}
		}
		// resolved == ActionReduce: keep existing, do nothing.

	case existing.Kind == ActionReduce && entry.Kind == ActionReduce:
		*diags = append(*diags, diag.Diagnostic{
			Level: diag.Warning, Kind: diag.ReduceReduceConflict,
			Msg: fmt.Sprintf("state %d, lookahead %q: reduce/reduce conflict between productions %s and %s; keeping the lower-numbered production", stateID, term.Name, existing.Prod, entry.Prod),
		})
		if entry.Prod.Number < existing.Prod.Number {
			t.Action[stateID][term] = entry
		}

	default:
		// Two identical actions reaching the same cell by different
		// derivations (e.g. two items reducing the same production with
		// overlapping lookaheads); nothing to resolve.
	}
}

// resolveShiftReduce decides a shift/reduce conflict using the production's
// declared precedence/associativity (inherited from its rightmost
// terminal, or an explicit %prec override) against the shifted terminal's
// own precedence. Returns which action wins, and an explanatory message
// for the diagnostic. Without precedence information on both sides, shift
// wins — the conventional yacc/bison default.
func resolveShiftReduce(term *grammar.Symbol, prod *grammar.Production) (ActionKind, string) {
	if prod.Prec == nil || prod.Prec.Precedence == 0 || term.Precedence == 0 {
		return ActionShift, "no precedence declared for one or both sides, defaulting to shift"
	}
	switch {
	case term.Precedence > prod.Prec.Precedence:
		return ActionShift, fmt.Sprintf("%q binds tighter than production's %q, shifting", term.Name, prod.Prec.Name)
	case term.Precedence < prod.Prec.Precedence:
		return ActionReduce, fmt.Sprintf("production's %q binds tighter than %q, reducing", prod.Prec.Name, term.Name)
	default:
		switch term.Assoc {
		case grammar.AssocLeft:
			return ActionReduce, fmt.Sprintf("%q is left-associative, reducing", term.Name)
		case grammar.AssocRight:
			return ActionShift, fmt.Sprintf("%q is right-associative, shifting", term.Name)
		default:
			return ActionError, fmt.Sprintf("%q is declared %%nonassoc, this is a syntax error at parse time", term.Name)
		}
	}
}
