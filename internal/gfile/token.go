// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package gfile

import "fmt"

// Token is a single lexical unit from a grammar-definition file, produced
// by wrapping the underlying Scanner's rune-based token stream with the
// source text and position the parser actually needs.
type Token struct {
	Type rune // one of the Scanner token constants, or a literal rune
	Text string
	Pos  Position
}

func (t Token) String() string {
	return fmt.Sprintf("%s %q@%s", TokenString(t.Type), t.Text, t.Pos)
}
