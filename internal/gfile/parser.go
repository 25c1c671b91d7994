// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package gfile

import (
	"strings"

	"github.com/mdhender/guanabana/internal/diag"
	"github.com/mdhender/guanabana/internal/grammar"
)

// Parse reads a grammar-definition file and returns the Grammar it
// describes, plus every diagnostic recorded along the way. Syntax errors
// in the file itself are reported through the Sink's ParserError and do
// not stop the parse; Parse recovers at the next '.' and keeps going so a
// single file reports as many problems as possible in one pass.
func Parse(filename string, src []byte) (*grammar.Grammar, []diag.Diagnostic) {
	toks, err := Tokenize(filename, src)
	b := grammar.NewBuilder(filename)
	sink := grammar.NewBuilderSink(b)

	p := &parser{toks: toks, sink: sink, file: filename}
	if err != nil {
		sink.ParserError(p.spanAt(0), err.Error())
	}
	p.run()

	g := b.Finalize()
	return g, b.Diagnostics()
}

type parser struct {
	toks []Token
	pos  int
	sink *grammar.BuilderSink
	file string
}

func (p *parser) cur() Token {
	if p.pos >= len(p.toks) {
		return Token{Type: EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() Token {
	t := p.cur()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return t
}

func (p *parser) span(t Token) *grammar.Span {
	return &grammar.Span{File: p.file, Line: t.Pos.Line, Column: t.Pos.Column}
}

func (p *parser) spanAt(idx int) *grammar.Span {
	if idx < 0 || idx >= len(p.toks) {
		return &grammar.Span{File: p.file}
	}
	return p.span(p.toks[idx])
}

// run consumes the whole token stream, dispatching directives and rules.
func (p *parser) run() {
	for {
		t := p.cur()
		switch {
		case t.Type == EOF:
			return
		case t.Type == NonTerminal:
			p.parseRule()
		case isDirectiveToken(t.Type):
			p.parseDirective()
		default:
			p.sink.ParserError(p.span(t), "unexpected token "+TokenString(t.Type)+" "+quote(t.Text))
			p.recover()
		}
	}
}

// recover skips to just past the next '.' so one bad construct does not
// stop the rest of the file from being checked.
func (p *parser) recover() {
	for {
		t := p.advance()
		if t.Type == EOF || t.Type == Period {
			return
		}
	}
}

func isDirectiveToken(t rune) bool {
	switch t {
	case Left, Right, NonAssoc, StartSymbol, Type, TokenType, Directive:
		return true
	}
	return false
}

// ---------------------------
// Directives
// ---------------------------

func (p *parser) parseDirective() {
	kw := p.advance()
	switch kw.Type {
	case Left, Right, NonAssoc:
		p.parsePrecedenceDirective(kw)
	case StartSymbol:
		p.parseStartSymbolDirective(kw)
	case Type:
		p.parseTypeDirective(kw)
	case TokenType:
		p.parseTokenTypeDirective(kw)
	default:
		// %name, %code, %include, %token_prefix, and every other directive
		// this format doesn't act on structurally: record it verbatim and
		// skip to '.'.
		p.parseGenericDirective(kw)
	}
}

func (p *parser) parsePrecedenceDirective(kw Token) {
	dirKind := grammar.DirLeft
	switch kw.Type {
	case Right:
		dirKind = grammar.DirRight
	case NonAssoc:
		dirKind = grammar.DirNonassoc
	}

	var list []grammar.SymRef
	for {
		t := p.cur()
		if t.Type == Terminal || t.Type == String {
			list = append(list, grammar.SymRef{Name: literalName(t), At: p.span(t), Literal: t.Type == String})
			p.advance()
			continue
		}
		break
	}
	p.expectPeriod(kw)
	p.sink.Directive(grammar.Directive{Kind: dirKind, At: p.span(kw), List: list})
}

func (p *parser) parseStartSymbolDirective(kw Token) {
	name := p.cur()
	if name.Type != NonTerminal {
		p.sink.ParserError(p.span(name), "%start_symbol requires a nonterminal name")
		p.recover()
		return
	}
	p.advance()
	p.expectPeriod(kw)
	p.sink.Directive(grammar.Directive{Kind: grammar.DirStartSymbol, At: p.span(kw), Value: name.Text})
}

func (p *parser) parseTypeDirective(kw Token) {
	name := p.cur()
	if name.Type != NonTerminal {
		p.sink.ParserError(p.span(name), "%type requires a nonterminal name")
		p.recover()
		return
	}
	p.advance()
	action := p.cur()
	typeTag := ""
	if action.Type == Action {
		typeTag = strings.TrimSpace(strings.Trim(action.Text, "{}"))
		p.advance()
	}
	p.expectPeriod(kw)
	p.sink.Directive(grammar.Directive{
		Kind:  grammar.DirType,
		At:    p.span(kw),
		Value: typeTag,
		List:  []grammar.SymRef{{Name: name.Text, At: p.span(name)}},
	})
}

func (p *parser) parseTokenTypeDirective(kw Token) {
	action := p.cur()
	value := ""
	if action.Type == Action {
		value = strings.TrimSpace(strings.Trim(action.Text, "{}"))
		p.advance()
	}
	p.expectPeriod(kw)
	p.sink.Directive(grammar.Directive{Kind: grammar.DirTokenType, At: p.span(kw), Value: value})
}

func (p *parser) parseGenericDirective(kw Token) {
	var b strings.Builder
	for {
		t := p.cur()
		if t.Type == EOF || t.Type == Period {
			break
		}
		b.WriteString(t.Text)
		b.WriteByte(' ')
		p.advance()
	}
	p.expectPeriod(kw)
	p.sink.Directive(grammar.Directive{
		Kind:  grammar.DirUnknown,
		At:    p.span(kw),
		Key:   strings.TrimPrefix(kw.Text, "%"),
		Value: strings.TrimSpace(b.String()),
	})
}

// ---------------------------
// Rules
// ---------------------------

func (p *parser) parseRule() {
	lhs := p.advance()
	lhsRef := grammar.SymRef{Name: lhs.Text, At: p.span(lhs)}

	// Optional label on the LHS: nonterm(L) ::= ...
	if p.cur().Type == '(' {
		p.advance()
		if p.cur().Type != NonTerminal && p.cur().Type != Terminal {
			p.sink.ParserError(p.span(p.cur()), "expected label after '('")
		} else {
			lhsRef.Label = p.cur().Text
			p.advance()
		}
		p.expect(')', lhs)
	}

	if p.cur().Type != Is {
		p.sink.ParserError(p.span(p.cur()), "expected '::=' after "+quote(lhs.Text))
		p.recover()
		return
	}
	p.advance() // consume '::='

	p.sink.BeginRule(lhsRef)
	for {
		p.parseAlternative(lhs)
		if p.cur().Type == '|' {
			p.advance()
			continue
		}
		break
	}
	p.expectPeriod(lhs)
	p.sink.EndRule(p.span(lhs))
}

func (p *parser) parseAlternative(ruleTok Token) {
	at := p.span(p.cur())
	var rhs []grammar.SymRef

	for {
		t := p.cur()
		if t.Type == Terminal || t.Type == NonTerminal || t.Type == String {
			ref := grammar.SymRef{Name: literalName(t), At: p.span(t), Literal: t.Type == String}
			p.advance()
			if p.cur().Type == '(' {
				p.advance()
				if p.cur().Type == NonTerminal || p.cur().Type == Terminal {
					ref.Label = p.cur().Text
					p.advance()
				}
				p.expect(')', t)
			}
			rhs = append(rhs, ref)
			continue
		}
		break
	}

	var prec *grammar.SymRef
	if p.cur().Type == '[' {
		p.advance()
		pt := p.cur()
		if pt.Type == Terminal {
			prec = &grammar.SymRef{Name: pt.Text, At: p.span(pt)}
			p.advance()
		} else {
			p.sink.ParserError(p.span(pt), "expected terminal in %prec override")
		}
		p.expect(']', ruleTok)
	}

	var action *grammar.Action
	if p.cur().Type == Action {
		actionTok := p.advance()
		action = defaultPassthroughAction(len(rhs), p.span(actionTok))
	}

	p.sink.Alternative(grammar.Alt{At: at, RHS: rhs, Action: action, Prec: prec})
}

// defaultPassthroughAction builds a structural placeholder for a file-level
// action block. The grammar file format only declares *that* an action
// exists and how many symbols it consumes (needed for arity validation);
// real semantic behavior is wired by embedding the grammar as Go code via
// grammar.Builder directly and supplying a real Action.Fn.
func defaultPassthroughAction(arity int, at *grammar.Span) *grammar.Action {
	return &grammar.Action{
		Fn: func(args []any) (any, error) {
			if len(args) == 0 {
				return nil, nil
			}
			return args[0], nil
		},
		Arity: arity,
		At:    at,
	}
}

func (p *parser) expect(tok rune, context Token) {
	if p.cur().Type != tok {
		p.sink.ParserError(p.span(p.cur()), "expected "+TokenString(tok)+" near "+quote(context.Text))
		return
	}
	p.advance()
}

func (p *parser) expectPeriod(context Token) {
	if p.cur().Type != Period {
		p.sink.ParserError(p.span(p.cur()), "expected '.' to terminate "+quote(context.Text))
		p.recover()
		return
	}
	p.advance()
}

// literalName turns a quoted-string token into the bare literal character
// grammar.Builder expects (e.g. `"+"` -> `+`), and passes identifiers
// through unchanged.
func literalName(t Token) string {
	if t.Type == String {
		return strings.Trim(t.Text, `"`)
	}
	return t.Text
}

func quote(s string) string {
	if s == "" {
		return "<empty>"
	}
	return "`" + s + "`"
}
