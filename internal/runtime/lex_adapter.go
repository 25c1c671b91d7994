// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package runtime

import "github.com/mdhender/guanabana/internal/lex"

// LexSource adapts an *lex.Lexer into a Source, optionally converting a
// token's matched text into a richer semantic value (e.g. NUM's text
// "42" into the int 42) before it is pushed onto the parse stack. The
// lexer's end-of-input token is passed on with an empty Kind, the
// driver's form for EOF.
//
// Grounded in psvnlsaikumar-cockroach's pkg/sql/parser/lexer.go, which
// plays the same role: a thin Lex(lval) adapter translating a
// hand-rolled scanner's tokens into whatever shape the table-driven
// parser expects, with no buffering beyond what the scanner itself
// holds.
type LexSource struct {
	lx      *lex.Lexer
	Convert map[string]func(text string) (any, error)
}

// NewLexSource wraps lx. convert may be nil; entries missing from it
// fall back to the token's raw matched text as the semantic value.
func NewLexSource(lx *lex.Lexer, convert map[string]func(text string) (any, error)) *LexSource {
	return &LexSource{lx: lx, Convert: convert}
}

func (s *LexSource) Next() (Token, error) {
	tok, err := s.lx.Next()
	if err != nil {
		return Token{}, err
	}
	if tok.IsEOF() {
		return Token{Line: tok.Line, Column: tok.Column}, nil
	}

	var value any = tok.Value
	if conv, ok := s.Convert[tok.Kind]; ok {
		v, cerr := conv(tok.Value)
		if cerr != nil {
			return Token{}, cerr
		}
		value = v
	}
	return Token{Kind: tok.Kind, Value: value, Line: tok.Line, Column: tok.Column}, nil
}
