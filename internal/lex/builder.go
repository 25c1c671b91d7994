// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lex

import (
	"strings"

	"github.com/mdhender/guanabana/internal/diag"
)

// Builder accumulates lexer states and rules, then Compile validates and
// turns them into a ready-to-run Lexer factory (Tables).
type Builder struct {
	states   map[string]*State
	order    []string // state declaration order, INITIAL first
	diags    diag.Bag
}

// NewBuilder creates a Builder with the INITIAL state already declared.
func NewBuilder() *Builder {
	b := &Builder{states: map[string]*State{}}
	b.states[InitialState] = &State{Name: InitialState}
	b.order = append(b.order, InitialState)
	return b
}

// Diagnostics returns all diagnostics recorded so far.
func (b *Builder) Diagnostics() []diag.Diagnostic { return b.diags.All() }

// HasErrors reports whether any error-level diagnostic was recorded.
func (b *Builder) HasErrors() bool { return b.diags.HasErrors() }

// AddState declares a new lexer state. exclusive=false makes it inclusive
// (it also runs every INITIAL rule); exclusive=true makes it run only its
// own rules.
func (b *Builder) AddState(name string, exclusive bool, at *diag.Span) {
	name = strings.TrimSpace(name)
	if name == "" || name == InitialState {
		b.diags.Error(diag.BadStateSpec, at, "state name %q is invalid", name)
		return
	}
	if _, exists := b.states[name]; exists {
		b.diags.Error(diag.DuplicateState, at, "state %q already declared", name)
		return
	}
	b.states[name] = &State{Name: name, Exclusive: exclusive, At: at}
	b.order = append(b.order, name)
}

// SetIgnore sets the set of characters skipped before each match attempt
// in the named state ("" means INITIAL).
func (b *Builder) SetIgnore(state, chars string, at *diag.Span) {
	st := b.mustState(state, at)
	if st == nil {
		return
	}
	if strings.Contains(chars, `\`) {
		b.diags.Warn(diag.IgnoreContainsBackslash, at, "ignore string for state %q contains a backslash; did you mean a regex escape? ignore strings match characters literally", st.Name)
	}
	st.Ignore = chars
}

// SetErrorAction installs a custom no-match handler for the named state.
func (b *Builder) SetErrorAction(state string, action Action, at *diag.Span) {
	st := b.mustState(state, at)
	if st == nil {
		return
	}
	if action == nil {
		b.diags.Error(diag.BadErrorForm, at, "error action for state %q is nil", st.Name)
		return
	}
	st.ErrorAction = action
}

// AddRule adds a named rule to the given state ("" means INITIAL). name
// becomes the emitted Token.Kind; pattern is a Go regexp (RE2) pattern
// matched only at the current scan position. A nil action makes the rule
// emit the matched text verbatim as its Token.Value.
func (b *Builder) AddRule(state, name, pattern string, action Action, at *diag.Span) *Rule {
	st := b.mustState(state, at)
	if st == nil {
		return nil
	}
	name = strings.TrimSpace(name)
	if name == "" {
		b.diags.Error(diag.BadTokenName, at, "rule token name is empty")
		return nil
	}
	if pattern == "" {
		b.diags.Error(diag.NoPattern, at, "rule %q has no pattern", name)
		return nil
	}
	for _, r := range st.Rules {
		if r.Name == name {
			b.diags.Error(diag.DuplicateRule, at, "rule %q already declared in state %q", name, st.Name)
			return nil
		}
	}

	r := &Rule{Name: name, Pattern: pattern, Action: action, IsFunction: action != nil, At: at}
	st.Rules = append(st.Rules, r)
	return r
}

func (b *Builder) mustState(name string, at *diag.Span) *State {
	if strings.TrimSpace(name) == "" {
		name = InitialState
	}
	st, ok := b.states[name]
	if !ok {
		b.diags.Error(diag.BadStateSpec, at, "unknown state %q", name)
		return nil
	}
	return st
}
