// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package gfile

import (
	"bytes"
	"fmt"
)

// Tokenize scans the full source and returns every token including a
// final EOF token. The filename is only used for Token.Pos.
func Tokenize(filename string, src []byte) ([]Token, error) {
	r := bytes.NewReader(src)
	s := &Scanner{Mode: ScanIdents | ScanStrings | ScanComments | SkipComments}
	if _, err := s.Init(r); err != nil {
		return nil, err
	}
	s.Filename = filename

	var toks []Token
	for {
		tok := s.Scan()
		pos := s.Pos()
		text := s.TokenText()
		toks = append(toks, Token{Type: tok, Text: text, Pos: pos})
		if tok == EOF {
			break
		}
	}
	if s.ErrorCount > 0 {
		return toks, fmt.Errorf("gfile: %d scan error(s): %s", s.ErrorCount, s.ErrorLog.String())
	}
	return toks, nil
}
