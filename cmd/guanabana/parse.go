// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mdhender/guanabana/internal/gfile"
	"github.com/mdhender/guanabana/internal/grammar"
	"github.com/mdhender/guanabana/internal/lalr"
	"github.com/mdhender/guanabana/internal/runtime"
	"github.com/mdhender/guanabana/internal/tablecache"
)

func newParseCmd(opts *options) *cobra.Command {
	var cachePath string

	cmd := &cobra.Command{
		Use:   "parse <grammar-file> <input-file>",
		Short: "build (or load) a table and run one parse over an input file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := newLogger(opts)
			grammarPath, inputPath := args[0], args[1]

			source, err := os.ReadFile(grammarPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", grammarPath, err)
			}
			g, diags := gfile.Parse(grammarPath, source)
			if log.Report(diags) {
				return fmt.Errorf("%s: grammar has errors", grammarPath)
			}

			table, err := loadOrBuildTable(g, source, cachePath, log)
			if err != nil {
				return err
			}

			input, err := os.ReadFile(inputPath)
			if err != nil {
				return fmt.Errorf("reading %s: %w", inputPath, err)
			}

			src, lexDiags, err := newDemoSource(g, inputPath, string(input))
			if err != nil {
				return err
			}
			if log.Report(lexDiags) {
				return fmt.Errorf("%s: demo lexer could not be built from this grammar's terminals", grammarPath)
			}

			var errCount int
			onError := func(tok runtime.Token) (*runtime.Token, error) {
				errCount++
				log.Error("syntax error", "token", tok.String())
				return nil, nil
			}

			p := runtime.New(g, table)
			if opts.trace {
				attrs := []any{"grammar", grammarPath, "input", inputPath}
				if table.Automaton != nil {
					attrs = append(attrs, "states", len(table.Automaton.States))
				}
				log.Debug("starting parse", attrs...)
			}

			result, err := p.Parse(src, onError)
			if err != nil {
				return err
			}
			if errCount > 0 {
				return fmt.Errorf("%s: %d syntax error(s), recovered", inputPath, errCount)
			}
			if !opts.quiet {
				fmt.Printf("%v\n", result)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cachePath, "cache", "", "load a TableCache from this path if it matches the grammar source, else build and ignore")
	return cmd
}

// loadOrBuildTable tries cachePath first: if it loads and its signature
// matches source, the table is rehydrated against g's live symbols and
// productions and LALR construction is skipped entirely. Any miss (no
// path given, file missing, stale signature, or a name that no longer
// resolves against g) falls back to a full BuildTable.
func loadOrBuildTable(g *grammar.Grammar, source []byte, cachePath string, log *logger) (*lalr.Table, error) {
	if cachePath != "" {
		if tc, err := tablecache.Load(cachePath); err == nil && tc.Matches(source) {
			if table, rerr := tablecache.Rehydrate(g, tc); rerr == nil {
				if !log.quiet {
					log.Info("using cached table", "path", cachePath)
				}
				return table, nil
			}
		}
	}
	table, diags := lalr.BuildTable(g)
	if log.Report(diags) {
		return nil, fmt.Errorf("table construction has errors")
	}
	return table, nil
}
