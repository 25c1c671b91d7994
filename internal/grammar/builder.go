// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package grammar

import (
	"regexp"
	"strings"

	"github.com/mdhender/guanabana/internal/diag"
)

// identRE matches a valid terminal/nonterminal identifier: a letter or
// underscore followed by letters, digits, or underscores.
var identRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Builder builds a Grammar incrementally, collecting diagnostics instead of
// failing hard. This is what a grammar-file parser (see internal/gfile)
// talks to, either directly or through the Sink/BuilderSink adapter.
type Builder struct {
	g *Grammar

	// precedenceCounter increments each time we see a precedence directive
	// group, giving each group a strictly increasing level starting at 1.
	precedenceCounter int

	diags diag.Bag
}

// NewBuilder creates a new Builder with an empty Grammar. The reserved
// terminals "error" and "$end" are pre-interned.
func NewBuilder(fileLabel string) *Builder {
	g := &Grammar{
		Name:          fileLabel,
		Start:         nil,
		Symbols:       nil,
		SymbolsByName: map[string]*Symbol{},
		Rules:         nil,
		Directives:    map[string]string{},
	}
	b := &Builder{g: g}
	g.ErrorSym = b.intern(ErrorSymbol, SymTerminal, nil)
	g.EndSym = b.intern(EndSymbol, SymTerminal, nil)
	return b
}

// Grammar returns the built grammar (even if there are diagnostics).
func (b *Builder) Grammar() *Grammar { return b.g }

// Diagnostics returns all diagnostics collected so far.
func (b *Builder) Diagnostics() []diag.Diagnostic { return b.diags.All() }

// HasErrors reports whether any error-level diagnostics exist.
func (b *Builder) HasErrors() bool { return b.diags.HasErrors() }

// Lookup returns a *Symbol, true if `name` already exists in the symbol
// table. Otherwise, returns nil, false.
func (b *Builder) Lookup(name string) (*Symbol, bool) {
	name = strings.TrimSpace(name)
	symbol, ok := b.g.SymbolsByName[name]
	return symbol, ok
}

func (b *Builder) error(kind diag.Kind, at *Span, msg string, args ...any) {
	b.diags.Error(kind, at, msg, args...)
}

func (b *Builder) warn(kind diag.Kind, at *Span, msg string, args ...any) {
	b.diags.Warn(kind, at, msg, args...)
}

// ---------------------------
// Symbol interning & metadata
// ---------------------------

// intern gets or creates a symbol with the given name and kind, with no
// validation. Used internally, including for the reserved symbols.
func (b *Builder) intern(name string, kind SymbolKind, at *Span) *Symbol {
	if sym, ok := b.g.SymbolsByName[name]; ok {
		return sym
	}
	sym := &Symbol{
		ID:         SymbolID(len(b.g.Symbols)),
		Name:       name,
		Kind:       kind,
		DeclaredAt: at,
	}
	b.g.Symbols = append(b.g.Symbols, sym)
	b.g.SymbolsByName[name] = sym
	return sym
}

// Intern gets or creates a symbol with the given name and kind.
// If the symbol already exists with a different kind, we keep the original
// and record an error.
func (b *Builder) Intern(name string, kind SymbolKind, at *Span) *Symbol {
	name = strings.TrimSpace(name)
	if name == "" {
		b.error(diag.BadSymbol, at, "symbol name is empty")
		return b.internDummy(at)
	}
	if kind != SymLiteral && !identRE.MatchString(name) {
		b.error(diag.BadSymbol, at, "%q is not a valid identifier", name)
		return b.internDummy(at)
	}

	if sym, ok := b.g.SymbolsByName[name]; ok {
		if sym.Kind != kind {
			b.error(diag.BadSymbol, at, "symbol %q previously declared as %s, cannot redeclare as %s",
				name, sym.Kind, kind)
		}
		return sym
	}

	return b.intern(name, kind, at)
}

// EnsureTerminal is a convenience for grammar parsers that see a token name.
func (b *Builder) EnsureTerminal(name string, at *Span) *Symbol {
	return b.Intern(name, SymTerminal, at)
}

// EnsureNonterminal is a convenience for grammar parsers that see an LHS
// name.
func (b *Builder) EnsureNonterminal(name string, at *Span) *Symbol {
	return b.Intern(name, SymNonterminal, at)
}

// DeclareLiteral interns a single-character literal token, e.g. '+' or '('.
// The literal doubles as a terminal whose kind is the character itself.
func (b *Builder) DeclareLiteral(ch string, at *Span) *Symbol {
	if len([]rune(ch)) != 1 {
		b.error(diag.BadLiteral, at, "literal %q must be exactly one character", ch)
		return b.internDummy(at)
	}
	if sym, ok := b.g.SymbolsByName[ch]; ok {
		if sym.Kind != SymLiteral {
			b.error(diag.BadLiteral, at, "symbol %q previously declared as %s, cannot redeclare as literal", ch, sym.Kind)
		}
		return sym
	}
	return b.intern(ch, SymLiteral, at)
}

// SetTypeTag sets the type tag for a symbol (via %type / %token directives).
// If conflicting tags are applied, an error is recorded and the first wins.
func (b *Builder) SetTypeTag(sym *Symbol, typeTag string, at *Span) {
	if sym == nil {
		return
	}
	typeTag = strings.TrimSpace(typeTag)
	if typeTag == "" {
		return
	}
	if sym.TypeTag != "" && sym.TypeTag != typeTag {
		b.error(diag.BadSymbol, at, "symbol %q already has type %q; cannot set to %q", sym.Name, sym.TypeTag, typeTag)
		return
	}
	sym.TypeTag = typeTag
}

// SetStart sets the grammar start symbol.
func (b *Builder) SetStart(sym *Symbol, at *Span) {
	if sym == nil {
		return
	}
	if sym.Kind != SymNonterminal {
		b.error(diag.ReservedName, at, "start symbol %q must be a nonterminal", sym.Name)
		return
	}
	if b.g.Start != nil && b.g.Start != sym {
		b.warn(diag.Generic, at, "start symbol changed from %q to %q", b.g.Start.Name, sym.Name)
	}
	b.g.Start = sym
}

// ---------------------------
// Precedence directives
// ---------------------------

// DefinePrecedenceGroup applies a precedence/associativity to a list of
// terminals. Call this when your parser reads something like:
//
//	%left PLUS MINUS
//	%right POW
//
// Groups are assigned strictly increasing levels in declaration order, so
// later groups bind tighter, per the grammar's precedence semantics.
func (b *Builder) DefinePrecedenceGroup(assoc Assoc, terminals []*Symbol, at *Span) {
	if assoc == AssocNone {
		b.error(diag.BadPrecedenceForm, at, "precedence group must have associativity (left/right/nonassoc)")
		return
	}
	b.precedenceCounter++
	level := b.precedenceCounter

	for _, t := range terminals {
		if t == nil {
			continue
		}
		if !t.IsTerminalLike() {
			b.error(diag.BadPrecedenceForm, at, "precedence can only be assigned to terminals; %q is %s", t.Name, t.Kind)
			continue
		}
		if t.Precedence != 0 {
			b.warn(diag.DuplicatePrecedence, at, "terminal %q already has precedence %d; ignoring new precedence %d", t.Name, t.Precedence, level)
			continue
		}
		t.Precedence = level
		t.Assoc = assoc
	}
}

// ---------------------------
// Rules & productions
// ---------------------------

// RuleBuilder helps construct one Rule with multiple alternatives.
// Typical usage:
//
//	rb := b.BeginRule(lhs, at)
//	rb.Alt([]*SymbolRef{...}, action, prec, at)
//	rb.Alt(...)
//	rb.End()
type RuleBuilder struct {
	b    *Builder
	rule *Rule
	done bool
}

// BeginRule starts a new rule for the given LHS.
func (b *Builder) BeginRule(lhs *Symbol, at *Span) *RuleBuilder {
	if lhs == nil {
		lhs = b.internDummy(at)
	}
	if lhs.Kind != SymNonterminal {
		b.error(diag.ReservedName, at, "rule LHS %q must be a nonterminal", lhs.Name)
	}

	r := &Rule{LHS: lhs, Alternatives: nil, At: at}
	b.g.Rules = append(b.g.Rules, r)

	// If no explicit start symbol yet, infer from first rule.
	if b.g.Start == nil && lhs.Kind == SymNonterminal {
		b.g.Start = lhs
	}

	return &RuleBuilder{b: b, rule: r}
}

// Alt adds an alternative to the current rule.
func (rb *RuleBuilder) Alt(rhs []*SymbolRef, action *Action, prec *Symbol, at *Span) {
	if rb == nil || rb.done || rb.rule == nil {
		return
	}

	for i, sr := range rhs {
		if sr == nil || sr.Sym == nil {
			rb.b.error(diag.BadProductionSyntax, at, "rhs symbol at position %d is nil", i)
		}
	}

	if action != nil && action.Fn != nil && action.Arity != len(rhs) {
		rb.b.error(diag.BadActionArity, at, "action for %q expects %d argument(s) but rule has %d rhs symbol(s)",
			rb.rule.LHS.Name, action.Arity, len(rhs))
	}

	if prec != nil && !prec.IsTerminalLike() {
		rb.b.error(diag.BadPrecedenceForm, at, "precedence override symbol %q must be a terminal", prec.Name)
		prec = nil
	}

	rb.rule.Alternatives = append(rb.rule.Alternatives, &Alternative{
		RHS:     rhs,
		Action:  action,
		PrecSym: prec,
		At:      at,
	})
}

// End marks the rule builder as finished (optional but helps prevent misuse).
func (rb *RuleBuilder) End() {
	if rb == nil {
		return
	}
	rb.done = true
}

// NewRef creates an RHS reference (with optional label).
func (b *Builder) NewRef(sym *Symbol, label string, at *Span) *SymbolRef {
	if sym == nil {
		sym = b.internDummy(at)
	}
	label = strings.TrimSpace(label)
	return &SymbolRef{Sym: sym, Label: label, At: at}
}

// NewAction creates an action wrapper around a Go callback. arity must
// equal the number of rhs symbols of the alternative it is attached to; a
// mismatch is reported as BadActionArity when the alternative is added.
func (b *Builder) NewAction(fn func(args []any) (any, error), arity int, at *Span) *Action {
	if fn == nil {
		return nil
	}
	return &Action{Fn: fn, Arity: arity, At: at}
}

// ---------------------------
// Generic directives passthrough
// ---------------------------

// SetDirective stores a directive key/value pair for later stages.
func (b *Builder) SetDirective(key, value string, at *Span) {
	key = strings.TrimSpace(key)
	if key == "" {
		b.error(diag.Generic, at, "directive key is empty")
		return
	}
	if _, exists := b.g.Directives[key]; exists {
		b.warn(diag.Generic, at, "directive %q overwritten", key)
	}
	b.g.Directives[key] = value
}

// ---------------------------
// Helpers
// ---------------------------

func (b *Builder) internDummy(at *Span) *Symbol {
	const name = "<invalid>"
	if sym, ok := b.g.SymbolsByName[name]; ok {
		return sym
	}
	return b.intern(name, SymNonterminal, at)
}
