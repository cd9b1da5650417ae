
package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/davecgh/go-spew/spew"
	"github.com/dustin/go-humanize"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"markup-tokens/internal/models"
)

const (
	outputJSON = "json"
	outputYAML = "yaml"
	outputDump = "dump"
)

func newConvertCmd(g *globalFlags) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "convert [file|url|-]",
		Short: "Convert one document and print its token tree",
		Long: `Convert reads a document from a file, a URL or standard input ("-", the
default) and prints the normalized token tree.

Examples:
  markup-tokens convert page.html
  markup-tokens convert notes.enex --format yaml
  markup-tokens convert https://example.com --selector article --summary
  cat fragment.html | markup-tokens convert --format dump`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case outputJSON, outputYAML, outputDump:
			default:
				return fmt.Errorf("unknown --format %q (want json, yaml or dump)", format)
			}
			e, err := g.resolve(cmd.Flags())
			if err != nil {
				return err
			}

			src := "-"
			if len(args) == 1 {
				src = args[0]
			}
			var result *models.ConvertResult
			if src == "-" {
				result, err = e.converter.Reader(cmd.InOrStdin(), src, e.request)
			} else {
				result, err = e.converter.Source(cmd.Context(), src, e.request)
			}
			if err != nil {
				return fmt.Errorf("convert %s: %w", src, err)
			}
			e.log.Infof("converted %s (%s) in %dms", src, humanize.Bytes(uint64(result.Bytes)), result.ParseMs)

			w, closeOut, err := g.openOutput(cmd)
			if err != nil {
				return err
			}
			var v any = result.Document
			if g.summary {
				v = result
			}
			if err := render(w, format, v); err != nil {
				_ = closeOut()
				return err
			}
			return closeOut()
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", outputJSON, "output format: json, yaml or dump")
	return cmd
}

func render(w io.Writer, format string, v any) error {
	switch format {
	case outputYAML:
		out, err := yaml.Marshal(v)
		if err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		_, err = w.Write(out)
		return err
	case outputDump:
		spew.Fdump(w, v)
		return nil
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
}
