// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package tablecache

import (
	"path/filepath"
	"testing"

	"github.com/mdhender/guanabana/internal/grammar"
	"github.com/mdhender/guanabana/internal/lalr"
)

func sp() *grammar.Span { return &grammar.Span{File: "cache.y", Line: 1, Column: 1} }

func buildSmallGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	b := grammar.NewBuilder("cache.y")
	expr := b.EnsureNonterminal("expr", sp())
	plus := b.EnsureTerminal("PLUS", sp())
	num := b.EnsureTerminal("NUM", sp())
	b.SetStart(expr, sp())
	b.DefinePrecedenceGroup(grammar.AssocLeft, []*grammar.Symbol{plus}, sp())

	rb := b.BeginRule(expr, sp())
	rb.Alt([]*grammar.SymbolRef{b.NewRef(expr, "", sp()), b.NewRef(plus, "", sp()), b.NewRef(expr, "", sp())}, nil, nil, sp())
	rb.Alt([]*grammar.SymbolRef{b.NewRef(num, "", sp())}, nil, nil, sp())
	rb.End()

	g := b.Finalize()
	if b.HasErrors() {
		t.Fatalf("unexpected errors: %v", b.Diagnostics())
	}
	return g
}

func TestBuild_RoundTripsThroughSaveAndLoad(t *testing.T) {
	g := buildSmallGrammar(t)
	table, _ := lalr.BuildTable(g)

	source := []byte("expr : expr PLUS expr | NUM ;")
	tc := Build(g, table, source)

	if len(tc.Action) != len(table.Action) {
		t.Fatalf("want %d action rows, got %d", len(table.Action), len(tc.Action))
	}
	if len(tc.Productions) != len(g.Productions) {
		t.Fatalf("want %d productions, got %d", len(g.Productions), len(tc.Productions))
	}

	path := filepath.Join(t.TempDir(), "cache.gob")
	if err := Save(path, tc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !loaded.Matches(source) {
		t.Fatalf("loaded cache should match its own source")
	}
	if loaded.Signature != tc.Signature {
		t.Fatalf("signature mismatch after round-trip: %s != %s", loaded.Signature, tc.Signature)
	}
	if len(loaded.Productions) != len(tc.Productions) {
		t.Fatalf("production count mismatch after round-trip")
	}
}

func TestMatches_RejectsChangedSource(t *testing.T) {
	g := buildSmallGrammar(t)
	table, _ := lalr.BuildTable(g)

	tc := Build(g, table, []byte("original source"))
	if tc.Matches([]byte("different source")) {
		t.Fatalf("Matches should reject a different source")
	}
}

func TestMatches_RejectsOldVersion(t *testing.T) {
	g := buildSmallGrammar(t)
	table, _ := lalr.BuildTable(g)

	source := []byte("some source")
	tc := Build(g, table, source)
	tc.Version = Version - 1
	if tc.Matches(source) {
		t.Fatalf("Matches should reject a stale version even with a matching signature")
	}
}
