// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mdhender/guanabana/internal/gfile"
	"github.com/mdhender/guanabana/internal/lalr"
	"github.com/mdhender/guanabana/internal/tablecache"
)

func newBuildCmd(opts *options) *cobra.Command {
	var cachePath string
	var dumpTable bool

	cmd := &cobra.Command{
		Use:   "build <grammar-file>",
		Short: "compile a grammar file into LALR(1) tables and report diagnostics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(opts)
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			g, diags := gfile.Parse(args[0], source)
			if log.Report(diags) {
				return fmt.Errorf("%s: grammar has errors, build aborted", args[0])
			}

			table, tdiags := lalr.BuildTable(g)
			if log.Report(tdiags) {
				return fmt.Errorf("%s: table construction has errors, build aborted", args[0])
			}

			if opts.stats {
				fmt.Printf("states: %d\n", len(table.Automaton.States))
				fmt.Printf("productions: %d\n", len(g.Productions))
				fmt.Printf("conflicts: %d\n", table.Conflicts)
			}
			if dumpTable {
				fmt.Println(table.String())
			}

			if cachePath != "" {
				path := cachePath
				if opts.outdir != "" {
					path = filepath.Join(opts.outdir, cachePath)
				}
				tc := tablecache.Build(g, table, source)
				if err := tablecache.Save(path, tc); err != nil {
					return err
				}
				if !opts.quiet {
					fmt.Printf("wrote table cache to %s\n", path)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cachePath, "cache", "", "write a TableCache to this path after a successful build")
	cmd.Flags().BoolVar(&dumpTable, "dump-table", false, "print the ACTION/GOTO table as an aligned text table")
	return cmd
}
