// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package tablecache persists a compiled ACTION/GOTO table to disk so a
// repeat build of the same grammar+lexicon source can skip LALR
// construction entirely. The on-disk record is content-addressed: its
// Signature is a sha256 of the source bytes it was built from, so a
// stale cache is detected and discarded rather than trusted blindly.
//
// encoding/gob (stdlib) is used for the wire format rather than an
// ecosystem binary codec. This is a deliberate deviation from "prefer a
// third-party library": the one binary codec anywhere in the example
// pack (rezi, under dekarrin-tunaq) lives in that module's internal/
// package tree and cannot be imported from here, and nothing else in
// the pack does binary serialization at all. gob is also the natural
// fit for a private, same-process cache format that never needs to be
// read by another language or tool.
package tablecache

import (
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/mdhender/guanabana/internal/grammar"
	"github.com/mdhender/guanabana/internal/lalr"
)

// Version is bumped whenever the on-disk record shape changes
// incompatibly; Load rejects a cache whose Version doesn't match.
const Version = 1

// ActionRecord is one ACTION[state, terminal] cell in serializable form:
// symbols are named, not pointers, so the record survives a process
// restart.
type ActionRecord struct {
	Kind   lalr.ActionKind
	Target int
	Prod   int // production number; meaningful only when Kind == ActionReduce
}

// ProductionRecord is one grammar production in serializable form.
type ProductionRecord struct {
	Number int
	LHS    string
	RHS    []string
	Prec   string // terminal name, or "" if none
}

// PrecedenceRecord is one terminal's declared precedence/associativity.
type PrecedenceRecord struct {
	Level int
	Assoc grammar.Assoc
}

// TableCache is the full persisted record: a versioned, signed snapshot
// of a compiled ACTION/GOTO table plus enough of the grammar to drive a
// runtime.Parser without re-running LALR construction.
type TableCache struct {
	Version      int
	Signature    string // hex-encoded sha256 of the source this was built from
	Action       []map[string]ActionRecord
	Goto         []map[string]int
	Productions  []ProductionRecord
	Terminals    []string
	Nonterminals []string
	Precedence   map[string]PrecedenceRecord
}

// Signature hashes source (a grammar+lexicon file's bytes) into the hex
// string used to invalidate stale caches.
func Signature(source []byte) string {
	sum := sha256.Sum256(source)
	return hex.EncodeToString(sum[:])
}

// Build converts a compiled grammar and table into a TableCache signed
// against source.
func Build(g *grammar.Grammar, table *lalr.Table, source []byte) *TableCache {
	tc := &TableCache{
		Version:    Version,
		Signature:  Signature(source),
		Precedence: map[string]PrecedenceRecord{},
	}

	for _, sym := range g.Symbols {
		switch sym.Kind {
		case grammar.SymTerminal, grammar.SymLiteral:
			tc.Terminals = append(tc.Terminals, sym.Name)
		case grammar.SymNonterminal:
			tc.Nonterminals = append(tc.Nonterminals, sym.Name)
		}
		if sym.Precedence != 0 {
			tc.Precedence[sym.Name] = PrecedenceRecord{Level: sym.Precedence, Assoc: sym.Assoc}
		}
	}

	for _, p := range g.Productions {
		rec := ProductionRecord{Number: p.Number}
		if p.LHS != nil {
			rec.LHS = p.LHS.Name
		}
		for _, ref := range p.RHS {
			rec.RHS = append(rec.RHS, ref.Sym.Name)
		}
		if p.Prec != nil {
			rec.Prec = p.Prec.Name
		}
		tc.Productions = append(tc.Productions, rec)
	}

	tc.Action = make([]map[string]ActionRecord, len(table.Action))
	for i, row := range table.Action {
		m := make(map[string]ActionRecord, len(row))
		for sym, entry := range row {
			rec := ActionRecord{Kind: entry.Kind, Target: entry.Target}
			if entry.Prod != nil {
				rec.Prod = entry.Prod.Number
			}
			m[sym.Name] = rec
		}
		tc.Action[i] = m
	}

	tc.Goto = make([]map[string]int, len(table.Goto))
	for i, row := range table.Goto {
		m := make(map[string]int, len(row))
		for sym, target := range row {
			m[sym.Name] = target
		}
		tc.Goto[i] = m
	}

	return tc
}

// Matches reports whether tc was built from exactly source (and is the
// current on-disk version) — the gate a loader must pass before trusting
// a cache instead of rebuilding.
func (tc *TableCache) Matches(source []byte) bool {
	return tc.Version == Version && tc.Signature == Signature(source)
}

// Rehydrate reconstructs a *lalr.Table against g's live symbols and
// productions from a cache record, skipping LALR construction entirely.
// The caller is expected to have checked tc.Matches(source) against the
// exact source g was built from. Every symbol name in tc is looked up in
// g.SymbolsByName and every reduce production number in g.Productions;
// one that does not resolve makes Rehydrate return an error. The Automaton
// field of the returned Table is left nil — the cache never carried the
// canonical collection, only the table it produced — so callers that
// report state counts must do so from the source build, not a rehydrated
// one.
func Rehydrate(g *grammar.Grammar, tc *TableCache) (*lalr.Table, error) {
	prodByNumber := make(map[int]*grammar.Production, len(g.Productions))
	for _, p := range g.Productions {
		prodByNumber[p.Number] = p
	}

	action := make([]map[*grammar.Symbol]lalr.ActionEntry, len(tc.Action))
	for i, row := range tc.Action {
		m := make(map[*grammar.Symbol]lalr.ActionEntry, len(row))
		for name, rec := range row {
			sym, ok := g.SymbolsByName[name]
			if !ok {
				return nil, fmt.Errorf("tablecache: symbol %q not found in grammar", name)
			}
			entry := lalr.ActionEntry{Kind: rec.Kind, Target: rec.Target}
			if rec.Kind == lalr.ActionReduce {
				prod, ok := prodByNumber[rec.Prod]
				if !ok {
					return nil, fmt.Errorf("tablecache: production %d not found in grammar", rec.Prod)
				}
				entry.Prod = prod
			}
			m[sym] = entry
		}
		action[i] = m
	}

	gotoTable := make([]map[*grammar.Symbol]int, len(tc.Goto))
	for i, row := range tc.Goto {
		m := make(map[*grammar.Symbol]int, len(row))
		for name, target := range row {
			sym, ok := g.SymbolsByName[name]
			if !ok {
				return nil, fmt.Errorf("tablecache: symbol %q not found in grammar", name)
			}
			m[sym] = target
		}
		gotoTable[i] = m
	}

	return &lalr.Table{Action: action, Goto: gotoTable}, nil
}

// Save gob-encodes tc to path, truncating any existing file.
func Save(path string, tc *TableCache) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("tablecache: create %s: %w", path, err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(tc); err != nil {
		return fmt.Errorf("tablecache: encode %s: %w", path, err)
	}
	return nil
}

// Load decodes a TableCache previously written by Save.
func Load(path string) (*TableCache, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("tablecache: open %s: %w", path, err)
	}
	defer f.Close()
	return decode(f)
}

func decode(r io.Reader) (*TableCache, error) {
	var tc TableCache
	if err := gob.NewDecoder(r).Decode(&tc); err != nil {
		return nil, fmt.Errorf("tablecache: decode: %w", err)
	}
	return &tc, nil
}
