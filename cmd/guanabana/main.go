// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Command guanabana compiles a yacc-style grammar file into LALR(1)
// parser tables, reports diagnostics, and can run a test parse over an
// input file using a heuristic demo lexer built from the grammar's own
// declared terminals.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// options holds the flags shared by every subcommand, mapped 1:1 onto
// the fields of the teacher's original Parser struct that still make
// sense for an LALR(1) table generator (see DESIGN.md for the flags
// dropped along the way: -m/makeheaders, -S/SQL stats, %include
// preprocessing, and the rest of the C-code-emission-specific surface).
type options struct {
	outdir string
	stats  bool
	debug  bool
	trace  bool
	quiet  bool
	cache  string
}

func main() {
	opts := &options{}
	root := newRootCmd(opts)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *options) *cobra.Command {
	root := &cobra.Command{
		Use:   "guanabana",
		Short: "Guanabana LALR(1) parser-table generator",
		Long:  "Guanabana reads a yacc-style grammar file and builds LALR(1) ACTION/GOTO tables, reporting diagnostics as it goes.",
	}

	root.PersistentFlags().StringVarP(&opts.outdir, "outdir", "d", "", "directory for generated reports and cache files")
	root.PersistentFlags().BoolVarP(&opts.stats, "stats", "s", false, "print table-construction statistics")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable verbose diagnostic logging")
	root.PersistentFlags().BoolVar(&opts.trace, "trace", false, "log the grammar, input and state count at debug level when a parse starts; individual shift/reduce/goto steps are not logged")
	root.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "suppress non-error output")

	root.AddCommand(newBuildCmd(opts))
	root.AddCommand(newParseCmd(opts))
	return root
}

func newLogger(opts *options) *logger { return newLeveledLogger(opts.debug, opts.quiet) }

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
