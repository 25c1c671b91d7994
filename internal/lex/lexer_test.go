// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lex

import (
	"testing"

	"github.com/mdhender/guanabana/internal/diag"
)

func mustCompile(t *testing.T, b *Builder) *Tables {
	t.Helper()
	tables, diags := Compile(b)
	for _, d := range diags {
		if d.Level == diag.Error {
			t.Fatalf("unexpected error: %s", d.Error())
		}
	}
	if tables == nil {
		t.Fatalf("Compile returned nil tables with no errors")
	}
	return tables
}

func TestLexer_LongestMatchAcrossStringRules(t *testing.T) {
	b := NewBuilder()
	b.AddRule("", "EQEQ", `==`, nil, nil)
	b.AddRule("", "EQ", `=`, nil, nil)
	tables := mustCompile(t, b)

	lx := New(tables, "<test>", "===")
	tok, err := lx.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Kind != "EQEQ" || tok.Value != "==" {
		t.Fatalf("want EQEQ(\"==\"), got %v", tok)
	}
	tok, _ = lx.Next()
	if tok.Kind != "EQ" || tok.Value != "=" {
		t.Fatalf("want EQ(\"=\"), got %v", tok)
	}
}

// TestLexer_FunctionRuleWinsOverLongerStringRule covers spec.md §8's
// testable property that a function-form rule always wins over a
// string-form rule at the same position, even when the string rule's
// own match is longer: DOT (a function rule matching `.`) must win over
// ELLIPSIS (a string rule matching `...`) on input "...".
func TestLexer_FunctionRuleWinsOverLongerStringRule(t *testing.T) {
	b := NewBuilder()
	passthrough := func(lx *Lexer, v string) (string, bool, error) { return "", false, nil }
	b.AddRule("", "DOT", `\.`, passthrough, nil)
	b.AddRule("", "ELLIPSIS", `\.\.\.`, nil, nil)
	tables := mustCompile(t, b)

	lx := New(tables, "<test>", "...")
	tok, err := lx.Next()
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if tok.Kind != "DOT" || tok.Value != "." {
		t.Fatalf("want DOT(\".\"), got %v", tok)
	}
}

func TestLexer_IgnoreWhitespace(t *testing.T) {
	b := NewBuilder()
	b.SetIgnore("", " \t\n", nil)
	b.AddRule("", "NUM", `[0-9]+`, nil, nil)
	tables := mustCompile(t, b)

	lx := New(tables, "<test>", "  12   34")
	toks, err := lx.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(toks) != 3 || toks[0].Value != "12" || toks[1].Value != "34" || !toks[2].IsEOF() {
		t.Fatalf("unexpected tokens: %v", toks)
	}
}

func TestLexer_StateSwitchIntoStringAndBack(t *testing.T) {
	b := NewBuilder()
	b.AddState("STRING", true, nil)
	b.SetIgnore("", " ", nil)

	b.AddRule("", "QUOTE", `"`, func(lx *Lexer, v string) (string, bool, error) {
		lx.PushState("STRING")
		return "", true, nil
	}, nil)
	b.AddRule("STRING", "STREND", `"`, func(lx *Lexer, v string) (string, bool, error) {
		lx.PopState()
		return "", true, nil
	}, nil)
	b.AddRule("STRING", "CHARS", `[^"]+`, nil, nil)
	b.AddRule("", "ID", `[a-zA-Z]+`, nil, nil)

	tables := mustCompile(t, b)
	lx := New(tables, "<test>", `x "hello" y`)
	toks, err := lx.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	var kinds []string
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	want := []string{"ID", "CHARS", "ID", EOFKind}
	if len(kinds) != len(want) {
		t.Fatalf("got kinds %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("got kinds %v, want %v", kinds, want)
		}
	}
}

func TestCompile_EmptyMatchRejected(t *testing.T) {
	b := NewBuilder()
	b.AddRule("", "BAD", `a*`, nil, nil)
	_, diags := Compile(b)
	found := false
	for _, d := range diags {
		if d.Kind == diag.EmptyMatch {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected EmptyMatch diagnostic, got %v", diags)
	}
}

func TestCompile_BadRegexRejected(t *testing.T) {
	b := NewBuilder()
	b.AddRule("", "BAD", `(`, nil, nil)
	_, diags := Compile(b)
	found := false
	for _, d := range diags {
		if d.Kind == diag.BadRegex {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected BadRegex diagnostic, got %v", diags)
	}
}

func TestCompile_NoRulesAtAll(t *testing.T) {
	b := NewBuilder()
	_, diags := Compile(b)
	found := false
	for _, d := range diags {
		if d.Kind == diag.NoTokens {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected NoTokens diagnostic, got %v", diags)
	}
}

func TestLexer_NoMatchEmitsErrorTokenAndAdvances(t *testing.T) {
	b := NewBuilder()
	b.AddRule("", "NUM", `[0-9]+`, nil, nil)
	tables := mustCompile(t, b)

	lx := New(tables, "<test>", "1@2")
	toks, err := lx.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(toks) != 4 {
		t.Fatalf("want 4 tokens (NUM, error, NUM, EOF), got %v", toks)
	}
	if toks[1].Kind != ErrorKind || toks[1].Value != "@" {
		t.Fatalf("want error token for '@', got %v", toks[1])
	}
}

// TestS4_CommentStateSwitch implements spec scenario S4: an inclusive
// INITIAL rule opens an exclusive "comment" state on "/*", the comment
// body is discarded (no token), and a closing "*/" returns to INITIAL.
// "1 /* x */ 2" must yield NUM(1) NUM(2) $end.
func TestS4_CommentStateSwitch(t *testing.T) {
	b := NewBuilder()
	b.AddState("comment", true, nil)
	b.SetIgnore("", " \t\n", nil)

	b.AddRule("", "NUM", `[0-9]+`, nil, nil)
	b.AddRule("", "OPEN", `/\*`, func(lx *Lexer, v string) (string, bool, error) {
		lx.PushState("comment")
		return "", true, nil
	}, nil)
	b.AddRule("comment", "CLOSE", `\*+/`, func(lx *Lexer, v string) (string, bool, error) {
		lx.PopState()
		return "", true, nil
	}, nil)
	b.AddRule("comment", "BODY", `[^*]+|\*+[^*/]`, func(lx *Lexer, v string) (string, bool, error) {
		return "", true, nil
	}, nil)

	tables := mustCompile(t, b)
	lx := New(tables, "<test>", "1 /* x */ 2")
	toks, err := lx.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	want := []string{"NUM", "NUM", EOFKind}
	if len(toks) != len(want) {
		t.Fatalf("got %v, want kinds %v", toks, want)
	}
	for i, k := range want {
		if toks[i].Kind != k {
			t.Fatalf("got %v, want kinds %v", toks, want)
		}
	}
	if toks[0].Value != "1" || toks[1].Value != "2" {
		t.Fatalf("got %v, want NUM values 1 and 2", toks)
	}
}
