// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package gfile

import (
	"testing"

	"github.com/mdhender/guanabana/internal/diag"
)

const sampleGrammar = `
%start_symbol expr.
%left PLUS MINUS.
%left STAR SLASH.

expr ::= expr PLUS expr.
expr ::= expr MINUS expr.
expr ::= expr STAR expr.
expr ::= expr SLASH expr.
expr ::= NUM.
`

func TestParse_SimpleExprGrammar(t *testing.T) {
	g, diags := Parse("expr.y", []byte(sampleGrammar))
	for _, d := range diags {
		if d.Level == diag.Error {
			t.Fatalf("unexpected error: %s", d.Error())
		}
	}
	if g.Start == nil || g.Start.Name != "expr" {
		t.Fatalf("expected start symbol expr, got %v", g.Start)
	}
	if len(g.Productions) != 6 {
		t.Fatalf("want 6 productions (augmented + 5 alts), got %d", len(g.Productions))
	}
	plus, ok := g.SymbolsByName["PLUS"]
	if !ok || plus.Precedence == 0 {
		t.Fatalf("expected PLUS to carry precedence from %%left")
	}
}

func TestParse_UndefinedNonterminalReported(t *testing.T) {
	src := `
%start_symbol expr.
expr ::= stmt.
`
	_, diags := Parse("bad.y", []byte(src))
	found := false
	for _, d := range diags {
		if d.Kind == diag.UndefinedSymbol {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected UndefinedSymbol diagnostic, got %v", diags)
	}
}

func TestParse_LiteralTokens(t *testing.T) {
	src := `
%start_symbol expr.
%left "+".
expr ::= expr "+" expr.
expr ::= NUM.
`
	g, diags := Parse("lit.y", []byte(src))
	for _, d := range diags {
		if d.Level == diag.Error {
			t.Fatalf("unexpected error: %s", d.Error())
		}
	}
	plus, ok := g.SymbolsByName["+"]
	if !ok || plus.Kind.String() != "literal" {
		t.Fatalf("expected '+' interned as a literal symbol, got %v", plus)
	}
}

// TestParse_GenericDirectiveKeepsItsName covers a directive this format
// gives no structural meaning to (every %word besides %left/%right/
// %nonassoc/%start_symbol/%type/%token_type scans as the same generic
// Directive token): its literal name must still show up in
// Grammar.Directives, not just a shared "Directive" label.
func TestParse_GenericDirectiveKeepsItsName(t *testing.T) {
	src := `
%start_symbol expr.
%include extras.
expr ::= NUM.
`
	g, diags := Parse("generic.y", []byte(src))
	for _, d := range diags {
		if d.Level == diag.Error {
			t.Fatalf("unexpected error: %s", d.Error())
		}
	}
	if v, ok := g.Directives["include"]; !ok || v != "extras" {
		t.Fatalf("expected Directives[\"include\"], got %v", g.Directives)
	}
}
