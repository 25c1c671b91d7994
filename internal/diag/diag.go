// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package diag defines the structured diagnostic taxonomy shared by the
// grammar, lex, and lalr packages so that callers can switch on a
// diagnostic's Kind rather than matching message text.
package diag

import "fmt"

// Level classifies the severity of a Diagnostic.
type Level uint8

const (
	Error Level = iota + 1
	Warning
)

func (l Level) String() string {
	switch l {
	case Error:
		return "error"
	case Warning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind identifies the specific failure or warning condition, per the
// taxonomy in SPEC_FULL.md section 7.
type Kind string

const (
	// Declaration errors (lex build).
	NoTokens               Kind = "NoTokens"
	BadTokenName           Kind = "BadTokenName"
	BadSymbol              Kind = "BadSymbol"
	BadLiteral             Kind = "BadLiteral"
	NoPattern              Kind = "NoPattern"
	BadRegex               Kind = "BadRegex"
	EmptyMatch             Kind = "EmptyMatch"
	BadRuleArity           Kind = "BadRuleArity"
	BadIgnoreForm          Kind = "BadIgnoreForm"
	BadErrorForm           Kind = "BadErrorForm"
	DuplicateRule          Kind = "DuplicateRule"
	UnknownTokenKindAtBuild Kind = "UnknownTokenKindAtBuild"
	BadStateSpec           Kind = "BadStateSpec"
	DuplicateState         Kind = "DuplicateState"
	NoRulesForState        Kind = "NoRulesForState"

	// Grammar errors (parser build).
	NoTokensList        Kind = "NoTokensList"
	UndefinedSymbol     Kind = "UndefinedSymbol"
	ReservedName        Kind = "ReservedName"
	BadActionArity      Kind = "BadActionArity"
	BadProductionSyntax Kind = "BadProductionSyntax"
	MisplacedAlternation Kind = "MisplacedAlternation"
	UnknownPrecTerm     Kind = "UnknownPrecTerm"
	EmptyPrecMarker     Kind = "EmptyPrecMarker"
	BadPrecedenceForm   Kind = "BadPrecedenceForm"
	DuplicatePrecedence Kind = "DuplicatePrecedence"
	InfiniteRecursion   Kind = "InfiniteRecursion"

	// Warnings (build continues).
	UnusedToken                  Kind = "UnusedToken"
	UnusedRule                   Kind = "UnusedRule"
	UnreachableSymbol            Kind = "UnreachableSymbol"
	DuplicateToken                Kind = "DuplicateToken"
	NoErrorRule                  Kind = "NoErrorRule"
	NoErrorRuleForExclusiveState Kind = "NoErrorRuleForExclusiveState"
	IgnoreContainsBackslash      Kind = "IgnoreContainsBackslash"
	ShiftReduceConflict          Kind = "ShiftReduceConflict"
	ReduceReduceConflict         Kind = "ReduceReduceConflict"
	PrecedenceForUnknownSymbol   Kind = "PrecedenceForUnknownSymbol"

	// Generic / unclassified.
	Generic Kind = "Generic"
)

// Span identifies a location in a source file for diagnostics.
type Span struct {
	File      string
	Line      int
	Column    int
	EndLine   int
	EndColumn int
}

// Diagnostic is a structured error or warning produced during building or
// validating a lexer or grammar.
type Diagnostic struct {
	Level Level
	Kind  Kind
	Msg   string
	At    *Span
}

func (d Diagnostic) Error() string {
	if d.At == nil {
		return fmt.Sprintf("%s[%s]: %s", d.Level, d.Kind, d.Msg)
	}
	return fmt.Sprintf("%s:%d:%d: %s[%s]: %s", d.At.File, d.At.Line, d.At.Column, d.Level, d.Kind, d.Msg)
}

// Bag accumulates diagnostics and answers whether any are fatal.
type Bag struct {
	items []Diagnostic
}

func (b *Bag) Error(kind Kind, at *Span, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Level: Error, Kind: kind, Msg: fmt.Sprintf(format, args...), At: at})
}

func (b *Bag) Warn(kind Kind, at *Span, format string, args ...any) {
	b.items = append(b.items, Diagnostic{Level: Warning, Kind: kind, Msg: fmt.Sprintf(format, args...), At: at})
}

func (b *Bag) Add(d Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) HasErrors() bool {
	for _, d := range b.items {
		if d.Level == Error {
			return true
		}
	}
	return false
}

func (b *Bag) All() []Diagnostic { return append([]Diagnostic(nil), b.items...) }

func (b *Bag) Errors() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Level == Error {
			out = append(out, d)
		}
	}
	return out
}

func (b *Bag) Warnings() []Diagnostic {
	var out []Diagnostic
	for _, d := range b.items {
		if d.Level == Warning {
			out = append(out, d)
		}
	}
	return out
}
