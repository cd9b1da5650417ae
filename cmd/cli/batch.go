
package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"markup-tokens/internal/ioformats"
)

func newBatchCmd(g *globalFlags) *cobra.Command {
	var (
		input       string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "batch --input sources.csv",
		Short: "Convert every file or URL listed in a CSV or NDJSON file",
		Long: `Batch reads sources from a CSV file with a source, url or path column, or
from NDJSON (one source or {"url": ...} object per line), converts them with
bounded concurrency and writes one NDJSON record per source, in input order.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return errors.New("missing --input")
			}
			e, err := g.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("concurrency") {
				e.cfg.Concurrency = concurrency
				if err := e.cfg.Validate(); err != nil {
					return err
				}
			}

			sources, err := ioformats.ReadSources(input)
			if err != nil {
				return fmt.Errorf("read input: %w", err)
			}
			e.log.Debugf("read %d sources from %s", len(sources), input)

			start := time.Now()
			records := e.converter.Batch(cmd.Context(), sources, e.cfg.Concurrency, e.request)

			var failed, size int
			for _, r := range records {
				if r.Error != "" {
					failed++
					e.log.Warnf("%s: %s", r.Source, r.Error)
					continue
				}
				size += r.Result.Bytes
			}
			e.log.Infof("converted %s/%s sources (%s) in %s, %d failed",
				humanize.Comma(int64(len(records)-failed)), humanize.Comma(int64(len(records))),
				humanize.Bytes(uint64(size)), time.Since(start).Round(time.Millisecond), failed)

			w, closeOut, err := g.openOutput(cmd)
			if err != nil {
				return err
			}
			if err := ioformats.WriteNDJSON(w, records); err != nil {
				_ = closeOut()
				return err
			}
			return closeOut()
		},
	}
	cmd.Flags().StringVarP(&input, "input", "i", "", "input file (csv with a source/url/path column, or ndjson)")
	cmd.Flags().IntVarP(&concurrency, "concurrency", "c", 10, "worker concurrency (overrides config)")
	return cmd
}
