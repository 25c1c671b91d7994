// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package lalr

import (
	"strings"
	"testing"
)

func TestTable_StringRendersHeadersAndAccept(t *testing.T) {
	g := buildExprGrammar(t)
	table, _ := BuildTable(g)

	out := table.String()
	if !strings.Contains(out, "A:NUM") {
		t.Fatalf("expected an A:NUM column, got:\n%s", out)
	}
	if !strings.Contains(out, "G:expr") {
		t.Fatalf("expected a G:expr column, got:\n%s", out)
	}
	if !strings.Contains(out, "acc") {
		t.Fatalf("expected an accept cell somewhere, got:\n%s", out)
	}
}
