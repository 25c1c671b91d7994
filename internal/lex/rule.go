// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lex

import "github.com/mdhender/guanabana/internal/diag"

// Action runs when a rule's pattern matches. value is the matched text.
// Returning skip=true discards the match and resumes scanning (used for
// whitespace/comments); otherwise kind becomes the emitted Token.Kind.
// Action may call Lexer.Begin/PushState/PopState to switch states.
type Action func(lx *Lexer, value string) (kind string, skip bool, err error)

// Rule is one named lexical rule: a name (the token kind it produces),
// a regular-expression pattern, and an optional Action.
//
// IsFunction marks a rule defined with an explicit Action (the Builder's
// analog of ply's `def t_NAME(t):` function rules); such rules are tried,
// in declaration order, before any plain string rule in the same state,
// regardless of pattern length. Plain string rules (IsFunction == false)
// are tried after, sorted by decreasing pattern length so the longest
// literal wins ties the longest-match rule alone cannot resolve.
type Rule struct {
	Name       string
	Pattern    string
	Action     Action
	IsFunction bool
	At         *diag.Span
}

// State is a named lexer state (the INITIAL state, or one declared with
// AddState). Exclusive states only run their own rules; inclusive states
// also run every INITIAL rule.
type State struct {
	Name      string
	Exclusive bool
	Rules     []*Rule

	// Ignore lists characters skipped before each match attempt, the way
	// ply's per-state `t_ignore` string does.
	Ignore string

	// ErrorAction runs when no rule matches; if nil, the Lexer emits an
	// ErrorKind token for the offending rune and advances one rune.
	ErrorAction Action

	At *diag.Span
}

// InitialState is the name of the lexer's always-present starting state.
const InitialState = "INITIAL"
