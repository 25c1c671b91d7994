// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package runtime

import (
	"fmt"

	"github.com/mdhender/guanabana/internal/grammar"
	"github.com/mdhender/guanabana/internal/lalr"
)

// ErrorHook is the user's "error" rule. It receives the offending token
// (a Token with Kind == "" at EOF) and may return a token to
// splice back into the stream as the next lookahead instead of letting
// the driver discard it during recovery.
type ErrorHook func(offending Token) (inject *Token, err error)

// ParseError reports a syntax error the driver could not recover from
// (the state stack emptied while popping toward a state that shifts the
// error symbol).
type ParseError struct {
	Offending Token
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %s: no recovery state on the stack", e.Offending)
}

// Parser drives a *lalr.Table over a token Source: shift, reduce, goto,
// accept, and panic-mode recovery through the grammar's "error" symbol,
// exactly as spec.md §4.7 describes.
type Parser struct {
	g     *grammar.Grammar
	table *lalr.Table
}

// New builds a Parser for g's compiled table.
func New(g *grammar.Grammar, table *lalr.Table) *Parser {
	return &Parser{g: g, table: table}
}

type frame struct {
	sym   *grammar.Symbol
	state int
	value any
}

// Parse runs one parse to completion, returning the accepted sentence's
// semantic value (args[0] of the final reduction) or the first
// unrecoverable error. onError may be nil (recovery still proceeds with
// no user notification).
func (p *Parser) Parse(src Source, onError ErrorHook) (any, error) {
	stack := []frame{{state: 0}}

	la, err := src.Next()
	if err != nil {
		return nil, err
	}

	// inRecovery suppresses a second error report when no token has been
	// consumed since the last one (spec.md §8's idempotent-recovery
	// invariant): two adjacent syntax errors with nothing shifted
	// between them are really the same error.
	inRecovery := false

	for {
		top := stack[len(stack)-1]
		sym := p.resolveLookahead(la)

		entry, ok := p.table.Action[top.state][sym]
		if !ok {
			entry = lalr.ActionEntry{Kind: lalr.ActionError}
		}

		switch entry.Kind {
		case lalr.ActionShift:
			stack = append(stack, frame{sym: sym, state: entry.Target, value: la.Value})
			inRecovery = false
			if la, err = src.Next(); err != nil {
				return nil, err
			}

		case lalr.ActionReduce:
			n := len(entry.Prod.RHS)
			args := make([]any, n)
			for i := 0; i < n; i++ {
				args[i] = stack[len(stack)-n+i].value
			}

			var result any
			var aerr error
			if entry.Prod.Action != nil && entry.Prod.Action.Fn != nil {
				result, aerr = entry.Prod.Action.Fn(args)
			} else if n > 0 {
				result = args[0]
			}
			if aerr != nil {
				return nil, aerr
			}

			stack = stack[:len(stack)-n]
			from := stack[len(stack)-1]
			next, ok := p.table.Goto[from.state][entry.Prod.LHS]
			if !ok {
				return nil, fmt.Errorf("runtime: no goto from state %d on %s", from.state, entry.Prod.LHS.Name)
			}
			stack = append(stack, frame{sym: entry.Prod.LHS, state: next, value: result})

		case lalr.ActionAccept:
			// Top of stack is the just-shifted $end frame (no semantic
			// value of its own); the accepted sentence's value is on the
			// frame beneath it, left there by the reduction to the start
			// symbol.
			return stack[len(stack)-2].value, nil

		default: // lalr.ActionError
			if !inRecovery && onError != nil {
				inject, herr := onError(la)
				if herr != nil {
					return nil, herr
				}
				if inject != nil {
					la = *inject
					continue
				}
			}

			var ok bool
			stack, ok = p.popToErrorShift(stack)
			if !ok {
				return nil, &ParseError{Offending: la}
			}
			errState := stack[len(stack)-1].state
			errEntry := p.table.Action[errState][p.g.ErrorSym]
			// The shifted error symbol carries the offending token as its
			// semantic value.
			stack = append(stack, frame{sym: p.g.ErrorSym, state: errEntry.Target, value: la})

			for {
				sym := p.resolveLookahead(la)
				if _, ok := p.table.Action[stack[len(stack)-1].state][sym]; ok {
					break
				}
				if la.Kind == "" {
					break // EOF, nothing left to discard
				}
				if la, err = src.Next(); err != nil {
					return nil, err
				}
			}
			inRecovery = true
		}
	}
}

// popToErrorShift pops frames until the top of the stack has a shift
// action on the error symbol, or the stack is exhausted.
func (p *Parser) popToErrorShift(stack []frame) ([]frame, bool) {
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if entry, ok := p.table.Action[top.state][p.g.ErrorSym]; ok && entry.Kind == lalr.ActionShift {
			return stack, true
		}
		stack = stack[:len(stack)-1]
	}
	return nil, false
}

// resolveLookahead maps a Token's Kind to a grammar symbol. An empty
// Kind (EOF) resolves to $end; an unknown Kind resolves to nil, which
// never matches any ACTION entry and so always drives the driver into
// recovery — the correct behavior for a token the grammar never declared.
func (p *Parser) resolveLookahead(t Token) *grammar.Symbol {
	if t.Kind == "" {
		return p.g.EndSym
	}
	return p.g.SymbolsByName[t.Kind]
}
