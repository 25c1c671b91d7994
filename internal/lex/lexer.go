// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lex

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Lexer scans an input buffer into Tokens using a compiled Tables. It is
// single-owner and not safe for concurrent use; Tables themselves are
// immutable and may be shared across many Lexers.
type Lexer struct {
	tables *Tables
	file   string
	input  string
	pos    int
	line   int
	col    int

	// stack holds the state stack; stack[len(stack)-1] is current. Begin
	// replaces the top, PushState/PopState grow/shrink it, so nested
	// exclusive states (e.g. a comment inside a string interpolation)
	// round-trip correctly.
	stack []string
}

// New creates a Lexer over src, starting in InitialState.
func New(tables *Tables, file string, src string) *Lexer {
	return &Lexer{tables: tables, file: file, input: src, line: 1, col: 1, stack: []string{InitialState}}
}

// State returns the current (top-of-stack) lexer state name.
func (lx *Lexer) State() string { return lx.stack[len(lx.stack)-1] }

// Begin replaces the current state in place (ply's lexer.begin(state)).
func (lx *Lexer) Begin(state string) {
	lx.stack[len(lx.stack)-1] = state
}

// PushState saves the current state and switches to state.
func (lx *Lexer) PushState(state string) {
	lx.stack = append(lx.stack, state)
}

// PopState restores the previously pushed state. Popping past INITIAL is
// a no-op, matching ply's defensive behavior for unbalanced pop_state().
func (lx *Lexer) PopState() {
	if len(lx.stack) > 1 {
		lx.stack = lx.stack[:len(lx.stack)-1]
	}
}

// Pos returns the current byte offset into the input.
func (lx *Lexer) Pos() int { return lx.pos }

// Remaining returns the unconsumed suffix of the input.
func (lx *Lexer) Remaining() string { return lx.input[lx.pos:] }

// Skip advances the scan position by n bytes without producing a token,
// updating line/column bookkeeping (ply's lexer.skip(n)).
func (lx *Lexer) Skip(n int) {
	lx.advance(lx.input[lx.pos : lx.pos+n])
}

func (lx *Lexer) advance(consumed string) {
	for _, r := range consumed {
		if r == '\n' {
			lx.line++
			lx.col = 1
		} else {
			lx.col++
		}
	}
	lx.pos += len(consumed)
}

// Next scans and returns the next Token. Once the input is exhausted it
// returns an EOFKind token forever.
//
// The scan loop, per state, at each position:
//  1. Skip any leading characters in the state's ignore set.
//  2. If the input is exhausted, return the EOF token.
//  3. Try every function rule, in declaration order, and take the first
//     one that matches. Only if none match, try every string rule
//     (longest pattern first) and take the longest match. A function
//     rule always wins over a string rule at the same position, even if
//     the string rule's match is longer.
//  4. If nothing matched, run the state's error action, or (with none
//     configured) emit a one-rune ErrorKind token and advance past it.
//  5. Run the matching rule's Action. A skip result discards the token
//     and resumes scanning at step 1; otherwise the Action's returned
//     kind becomes Token.Kind and the matched text becomes Token.Value.
func (lx *Lexer) Next() (Token, error) {
	for {
		cs, ok := lx.tables.states[lx.State()]
		if !ok {
			return Token{}, fmt.Errorf("lex: unknown state %q", lx.State())
		}

		lx.skipIgnored(cs)

		if lx.pos >= len(lx.input) {
			return Token{Kind: EOFKind, Line: lx.line, Column: lx.col}, nil
		}

		startLine, startCol := lx.line, lx.col
		cr, match := lx.longestMatch(cs)
		if cr == nil {
			return lx.handleNoMatch(cs, startLine, startCol)
		}

		lx.advance(match)

		if cr.rule.Action == nil {
			return Token{Kind: cr.rule.Name, Value: match, Line: startLine, Column: startCol}, nil
		}

		kind, skip, err := cr.rule.Action(lx, match)
		if err != nil {
			return Token{}, fmt.Errorf("lex: rule %q action at %s:%d:%d: %w", cr.rule.Name, lx.file, startLine, startCol, err)
		}
		if skip {
			continue
		}
		if kind == "" {
			kind = cr.rule.Name
		}
		return Token{Kind: kind, Value: match, Line: startLine, Column: startCol}, nil
	}
}

func (lx *Lexer) skipIgnored(cs *compiledState) {
	if cs.ignore == "" {
		return
	}
	for lx.pos < len(lx.input) && strings.ContainsRune(cs.ignore, rune(lx.input[lx.pos])) {
		lx.advance(lx.input[lx.pos : lx.pos+1])
	}
}

// longestMatch tries cs's function rules, in declaration order, and takes
// the first one that matches — ply's semantics, where function rules
// form the front of the master alternation and win by position, not
// match length. Only when no function rule matches does it fall back to
// the string rules, where the longest match wins (compile.go already
// sorts stringRules by decreasing pattern length, so the first match
// there is also the longest).
func (lx *Lexer) longestMatch(cs *compiledState) (*compiledRule, string) {
	rest := lx.input[lx.pos:]

	for _, cr := range cs.functionRules {
		if loc := cr.re.FindStringIndex(rest); loc != nil {
			return cr, rest[loc[0]:loc[1]]
		}
	}

	var best *compiledRule
	var bestMatch string
	for _, cr := range cs.stringRules {
		loc := cr.re.FindStringIndex(rest)
		if loc == nil {
			continue
		}
		m := rest[loc[0]:loc[1]]
		if len(m) > len(bestMatch) {
			best, bestMatch = cr, m
		}
	}
	return best, bestMatch
}

func (lx *Lexer) handleNoMatch(cs *compiledState, line, col int) (Token, error) {
	if cs.errorAction != nil {
		rest := lx.input[lx.pos:]
		bad := rest
		if len(bad) > 0 {
			_, size := utf8.DecodeRuneInString(bad)
			bad = bad[:size]
		}
		kind, skip, err := cs.errorAction(lx, bad)
		if err != nil {
			return Token{}, fmt.Errorf("lex: error action at %s:%d:%d: %w", lx.file, line, col, err)
		}
		if skip {
			lx.advance(bad)
			return lx.Next()
		}
		if kind == "" {
			kind = ErrorKind
		}
		lx.advance(bad)
		return Token{Kind: kind, Value: bad, Line: line, Column: col}, nil
	}

	rest := lx.input[lx.pos:]
	bad := rest
	if len(bad) > 0 {
		_, size := utf8.DecodeRuneInString(bad)
		bad = bad[:size]
	}
	lx.advance(bad)
	return Token{Kind: ErrorKind, Value: bad, Line: line, Column: col}, nil
}

// All scans the remaining input to completion, returning every token
// including the trailing EOF. Useful in tests.
func (lx *Lexer) All() ([]Token, error) {
	var toks []Token
	for {
		tok, err := lx.Next()
		if err != nil {
			return toks, err
		}
		toks = append(toks, tok)
		if tok.IsEOF() {
			return toks, nil
		}
	}
}
