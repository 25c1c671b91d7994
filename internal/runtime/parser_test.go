// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package runtime

import (
	"testing"

	"github.com/mdhender/guanabana/internal/grammar"
	"github.com/mdhender/guanabana/internal/lalr"
)

func sp() *grammar.Span { return &grammar.Span{File: "test.y", Line: 1, Column: 1} }

// sliceSource replays a fixed token list, then EOF (Kind "") forever.
type sliceSource struct {
	toks []Token
	pos  int
}

func (s *sliceSource) Next() (Token, error) {
	if s.pos >= len(s.toks) {
		return Token{}, nil
	}
	t := s.toks[s.pos]
	s.pos++
	return t, nil
}

func buildAndRun(t *testing.T, g *grammar.Grammar, toks []Token, onError ErrorHook) (any, error) {
	t.Helper()
	table, diags := lalr.BuildTable(g)
	for _, d := range diags {
		t.Logf("table diagnostic: %s", d.Error())
	}
	p := New(g, table)
	return p.Parse(&sliceSource{toks: toks}, onError)
}

// TestS1_Calculator implements spec scenario S1 with E as the start
// symbol (no separate S -> E rule) and named terminals for the literals:
// E -> E PLUS T | T; T -> T STAR F | F; F -> NUM | LPAREN E RPAREN.
// "3 + 4 * 5" must evaluate to 23.
func TestS1_Calculator(t *testing.T) {
	b := grammar.NewBuilder("s1.y")

	e := b.EnsureNonterminal("E", sp())
	tt := b.EnsureNonterminal("T", sp())
	f := b.EnsureNonterminal("F", sp())
	plus := b.EnsureTerminal("PLUS", sp())
	star := b.EnsureTerminal("STAR", sp())
	lparen := b.EnsureTerminal("LPAREN", sp())
	rparen := b.EnsureTerminal("RPAREN", sp())
	num := b.EnsureTerminal("NUM", sp())
	b.SetStart(e, sp())

	add := func(args []any) (any, error) { return args[0].(int) + args[2].(int), nil }
	mul := func(args []any) (any, error) { return args[0].(int) * args[2].(int), nil }
	identity := func(args []any) (any, error) { return args[0], nil }
	paren := func(args []any) (any, error) { return args[1], nil }

	re := b.BeginRule(e, sp())
	re.Alt([]*grammar.SymbolRef{b.NewRef(e, "", sp()), b.NewRef(plus, "", sp()), b.NewRef(tt, "", sp())}, b.NewAction(add, 3, sp()), nil, sp())
	re.Alt([]*grammar.SymbolRef{b.NewRef(tt, "", sp())}, b.NewAction(identity, 1, sp()), nil, sp())
	re.End()

	rt := b.BeginRule(tt, sp())
	rt.Alt([]*grammar.SymbolRef{b.NewRef(tt, "", sp()), b.NewRef(star, "", sp()), b.NewRef(f, "", sp())}, b.NewAction(mul, 3, sp()), nil, sp())
	rt.Alt([]*grammar.SymbolRef{b.NewRef(f, "", sp())}, b.NewAction(identity, 1, sp()), nil, sp())
	rt.End()

	rf := b.BeginRule(f, sp())
	rf.Alt([]*grammar.SymbolRef{b.NewRef(num, "", sp())}, b.NewAction(identity, 1, sp()), nil, sp())
	rf.Alt([]*grammar.SymbolRef{b.NewRef(lparen, "", sp()), b.NewRef(e, "", sp()), b.NewRef(rparen, "", sp())}, b.NewAction(paren, 3, sp()), nil, sp())
	rf.End()

	g := b.Finalize()
	if b.HasErrors() {
		t.Fatalf("unexpected grammar errors: %v", b.Diagnostics())
	}

	toks := []Token{
		{Kind: "NUM", Value: 3}, {Kind: "PLUS"}, {Kind: "NUM", Value: 4}, {Kind: "STAR"}, {Kind: "NUM", Value: 5},
	}
	result, err := buildAndRun(t, g, toks, nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.(int) != 23 {
		t.Fatalf("want 23, got %v", result)
	}
}

// TestS2_PrecedenceResolvesAmbiguity implements spec scenario S2:
// E -> E '+' E | E '*' E | NUM with left-associative '+' then '*'
// (ascending precedence). "1 + 2 * 3" must evaluate to 7.
func TestS2_PrecedenceResolvesAmbiguity(t *testing.T) {
	b := grammar.NewBuilder("s2.y")

	e := b.EnsureNonterminal("E", sp())
	plus := b.EnsureTerminal("PLUS", sp())
	star := b.EnsureTerminal("STAR", sp())
	num := b.EnsureTerminal("NUM", sp())
	b.SetStart(e, sp())
	b.DefinePrecedenceGroup(grammar.AssocLeft, []*grammar.Symbol{plus}, sp())
	b.DefinePrecedenceGroup(grammar.AssocLeft, []*grammar.Symbol{star}, sp())

	add := func(args []any) (any, error) { return args[0].(int) + args[2].(int), nil }
	mul := func(args []any) (any, error) { return args[0].(int) * args[2].(int), nil }
	identity := func(args []any) (any, error) { return args[0], nil }

	re := b.BeginRule(e, sp())
	re.Alt([]*grammar.SymbolRef{b.NewRef(e, "", sp()), b.NewRef(plus, "", sp()), b.NewRef(e, "", sp())}, b.NewAction(add, 3, sp()), nil, sp())
	re.Alt([]*grammar.SymbolRef{b.NewRef(e, "", sp()), b.NewRef(star, "", sp()), b.NewRef(e, "", sp())}, b.NewAction(mul, 3, sp()), nil, sp())
	re.Alt([]*grammar.SymbolRef{b.NewRef(num, "", sp())}, b.NewAction(identity, 1, sp()), nil, sp())
	re.End()

	g := b.Finalize()
	if b.HasErrors() {
		t.Fatalf("unexpected grammar errors: %v", b.Diagnostics())
	}

	toks := []Token{{Kind: "NUM", Value: 1}, {Kind: "PLUS"}, {Kind: "NUM", Value: 2}, {Kind: "STAR"}, {Kind: "NUM", Value: 3}}
	result, err := buildAndRun(t, g, toks, nil)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if result.(int) != 7 {
		t.Fatalf("want 7, got %v", result)
	}
}

// TestS3_ErrorRecovery exercises panic-mode recovery per spec.md §4.7:
// a malformed statement is discarded up to the next ';', the error
// callback fires exactly once, and the parser resumes to accept the
// rest of the input. The grammar adds an "error ';' S" continuation
// alternative (the literal scenario's "error ';'" alone can only ever be
// the last statement, which would make the trailing "d ;" unparsable) so
// recovery can be followed by further statements, while still exercising
// the exact pop/shift/discard/resume mechanics spec.md describes.
func TestS3_ErrorRecovery(t *testing.T) {
	b := grammar.NewBuilder("s3.y")

	s := b.EnsureNonterminal("S", sp())
	stmt := b.EnsureNonterminal("stmt", sp())
	ident := b.EnsureTerminal("IDENT", sp())
	semi := b.EnsureTerminal("SEMI", sp())
	errSym := b.EnsureTerminal(grammar.ErrorSymbol, sp())
	b.SetStart(s, sp())

	identity := func(args []any) (any, error) { return args[0], nil }

	rs := b.BeginRule(s, sp())
	rs.Alt([]*grammar.SymbolRef{b.NewRef(stmt, "", sp()), b.NewRef(semi, "", sp()), b.NewRef(s, "", sp())}, b.NewAction(identity, 3, sp()), nil, sp())
	rs.Alt([]*grammar.SymbolRef{b.NewRef(stmt, "", sp()), b.NewRef(semi, "", sp())}, b.NewAction(identity, 2, sp()), nil, sp())
	rs.Alt([]*grammar.SymbolRef{b.NewRef(errSym, "", sp()), b.NewRef(semi, "", sp()), b.NewRef(s, "", sp())}, b.NewAction(identity, 3, sp()), nil, sp())
	rs.Alt([]*grammar.SymbolRef{b.NewRef(errSym, "", sp()), b.NewRef(semi, "", sp())}, b.NewAction(identity, 2, sp()), nil, sp())
	rs.End()

	rstmt := b.BeginRule(stmt, sp())
	rstmt.Alt([]*grammar.SymbolRef{b.NewRef(ident, "", sp())}, b.NewAction(identity, 1, sp()), nil, sp())
	rstmt.End()

	g := b.Finalize()
	if b.HasErrors() {
		t.Fatalf("unexpected grammar errors: %v", b.Diagnostics())
	}

	// "a b c ; d ;" — "a" starts a stmt, but "b" where ';' was expected
	// triggers recovery; "b c" are discarded up to the ';'; "d ;" then
	// parses normally to completion.
	toks := []Token{
		{Kind: "IDENT", Value: "a"}, {Kind: "IDENT", Value: "b"}, {Kind: "IDENT", Value: "c"}, {Kind: "SEMI"},
		{Kind: "IDENT", Value: "d"}, {Kind: "SEMI"},
	}

	errorCalls := 0
	onError := func(offending Token) (*Token, error) {
		errorCalls++
		return nil, nil
	}

	result, err := buildAndRun(t, g, toks, onError)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if errorCalls != 1 {
		t.Fatalf("want exactly 1 error callback, got %d", errorCalls)
	}
	if result == nil {
		t.Fatalf("expected a non-nil accepted value")
	}
}
