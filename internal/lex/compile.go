// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lex

import (
	"regexp"
	"sort"

	"github.com/mdhender/guanabana/internal/diag"
)

// compiledRule pairs a Rule with its anchored regexp. Patterns are
// compiled with a leading \A so FindStringIndex only ever reports a match
// starting at the beginning of the slice handed to it — Go's regexp
// package (RE2) has no equivalent of Python's re.match, so every pattern
// is wrapped this way to get "match here, or not at all" semantics.
type compiledRule struct {
	rule *Rule
	re   *regexp.Regexp
}

// compiledState is one state's ready-to-scan rule set: function rules
// (those with an explicit Action) in declaration order, then string rules
// sorted by decreasing pattern length. Go's regexp alternation is
// leftmost-first, not longest-match, so the Lexer tries the rules here
// itself (see Lexer.longestMatch): the first function rule that matches
// wins, and otherwise the longest string-rule match.
type compiledState struct {
	name        string
	functionRules []*compiledRule
	stringRules   []*compiledRule
	ignore        string
	errorAction   Action
}

// Tables is the compiled, immutable output of Compile. It is safe to
// share across goroutines running independent Lexers.
type Tables struct {
	states map[string]*compiledState
}

// Compile validates the Builder's accumulated states/rules and compiles
// every pattern. It never panics; validation failures are returned as
// diagnostics and Compile returns (nil, diags) only when errors exist.
func Compile(b *Builder) (*Tables, []diag.Diagnostic) {
	if b == nil {
		return nil, nil
	}

	total := 0
	for _, name := range b.order {
		total += len(b.states[name].Rules)
	}
	if total == 0 {
		b.diags.Error(diag.NoTokens, nil, "lexer has no rules in any state")
		return nil, b.Diagnostics()
	}

	tables := &Tables{states: map[string]*compiledState{}}

	for _, name := range b.order {
		st := b.states[name]
		rules := st.Rules

		if name != InitialState && st.Exclusive == false {
			// Inclusive state: also runs every INITIAL rule, appended
			// after its own so state-specific rules win function-vs-
			// function and length ties.
			rules = append(append([]*Rule(nil), rules...), b.states[InitialState].Rules...)
		}

		if len(rules) == 0 {
			b.diags.Warn(diag.NoRulesForState, st.At, "state %q has no rules", name)
		}

		cs := &compiledState{name: name, ignore: st.Ignore, errorAction: st.ErrorAction}

		for _, r := range rules {
			re, err := regexp.Compile(`\A(?:` + r.Pattern + `)`)
			if err != nil {
				b.diags.Error(diag.BadRegex, r.At, "rule %q: bad pattern %q: %s", r.Name, r.Pattern, err)
				continue
			}
			if loc := re.FindStringIndex(""); loc != nil {
				b.diags.Error(diag.EmptyMatch, r.At, "rule %q can match the empty string; this would loop forever (if you meant a comment-to-end-of-line rule, anchor it so it consumes at least one character, e.g. \"#.*\" requires the leading '#')", r.Name)
				continue
			}
			cr := &compiledRule{rule: r, re: re}
			if r.IsFunction {
				cs.functionRules = append(cs.functionRules, cr)
			} else {
				cs.stringRules = append(cs.stringRules, cr)
			}
		}

		sort.SliceStable(cs.stringRules, func(i, j int) bool {
			return len(cs.stringRules[i].rule.Pattern) > len(cs.stringRules[j].rule.Pattern)
		})

		if st.ErrorAction == nil {
			if st.Exclusive {
				b.diags.Warn(diag.NoErrorRuleForExclusiveState, st.At, "exclusive state %q has no error action; unmatched input will emit error tokens one rune at a time", name)
			} else if name == InitialState {
				b.diags.Warn(diag.NoErrorRule, st.At, "state %q has no error action; unmatched input will emit error tokens one rune at a time", name)
			}
		}

		tables.states[name] = cs
	}

	if b.HasErrors() {
		return nil, b.Diagnostics()
	}
	return tables, b.Diagnostics()
}
