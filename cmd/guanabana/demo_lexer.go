// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package main

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mdhender/guanabana/internal/diag"
	"github.com/mdhender/guanabana/internal/grammar"
	"github.com/mdhender/guanabana/internal/lex"
	"github.com/mdhender/guanabana/internal/runtime"
)

// buildDemoLexer turns a grammar's own declared terminals into a working
// lex.Builder by guessing a pattern from each terminal's name. The
// grammar-file text format (see DESIGN.md) carries no executable lex
// actions of its own, so `guanabana parse` has nothing else to scan an
// input file with; this is a CLI-only convenience for trying a grammar
// end to end, not part of the lex or runtime package APIs.
//
// The heuristics, in order of preference:
//   - a SymLiteral symbol matches its own text verbatim ('+' matches "+")
//   - a name containing NUM or INT scans a run of digits
//   - a name containing IDENT or NAME scans a C-style identifier
//   - a name containing STR scans a double-quoted string body
//   - anything else is treated as a keyword and matches its own name,
//     case-insensitively (IF matches "if", "IF", "If", ...)
//
// Rules are added in declaration order and the Lexer tries function
// rules before string rules and, among string rules, longest pattern
// first, so a keyword never shadows a more specific NUM/IDENT rule
// declared earlier only by accident of iteration order: keyword rules
// are always added last.
func buildDemoLexer(g *grammar.Grammar) (*lex.Tables, map[string]func(string) (any, error), []diag.Diagnostic) {
	b := lex.NewBuilder()
	b.SetIgnore(lex.InitialState, " \t\r\n", nil)

	convert := map[string]func(string) (any, error){}
	var keywords []*grammar.Symbol

	for _, sym := range g.Symbols {
		if sym == g.ErrorSym || sym == g.EndSym {
			continue
		}
		switch sym.Kind {
		case grammar.SymLiteral:
			b.AddRule(lex.InitialState, sym.Name, regexp.QuoteMeta(sym.Name), nil, nil)
		case grammar.SymTerminal:
			upper := strings.ToUpper(sym.Name)
			switch {
			case strings.Contains(upper, "NUM") || strings.Contains(upper, "INT"):
				b.AddRule(lex.InitialState, sym.Name, `[0-9]+`, nil, nil)
				convert[sym.Name] = func(text string) (any, error) { return strconv.Atoi(text) }
			case strings.Contains(upper, "IDENT") || strings.Contains(upper, "NAME"):
				b.AddRule(lex.InitialState, sym.Name, `[A-Za-z_][A-Za-z0-9_]*`, nil, nil)
			case strings.Contains(upper, "STR"):
				b.AddRule(lex.InitialState, sym.Name, `"[^"]*"`, nil, nil)
			default:
				keywords = append(keywords, sym)
			}
		}
	}

	// Keyword rules go last so they never outrank NUM/IDENT/STR rules on
	// the same input by virtue of being declared first.
	for _, sym := range keywords {
		b.AddRule(lex.InitialState, sym.Name, `(?i)`+regexp.QuoteMeta(sym.Name), nil, nil)
	}

	tables, diags := lex.Compile(b)
	return tables, convert, diags
}

// newDemoSource builds a runtime.Source over src using the heuristic demo
// lexer for g.
func newDemoSource(g *grammar.Grammar, filename, src string) (runtime.Source, []diag.Diagnostic, error) {
	tables, convert, diags := buildDemoLexer(g)
	if tables == nil {
		return nil, diags, nil
	}
	lx := lex.New(tables, filename, src)
	return runtime.NewLexSource(lx, convert), diags, nil
}
