
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"markup-tokens/internal/config"
	"markup-tokens/internal/convert"
	"markup-tokens/internal/crawler"
	"markup-tokens/internal/models"
	"markup-tokens/pkg/logger"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath  string
	logLevel    string
	evernote    bool
	selector    string
	inputFormat string
	summary     bool
	output      string
}

func (g *globalFlags) bind(fs *pflag.FlagSet) {
	fs.StringVar(&g.configPath, "config", "", "YAML config file")
	fs.StringVar(&g.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
	fs.BoolVar(&g.evernote, "evernote", false, "recognize the Evernote dialect (note, en-media, en-todo)")
	fs.StringVar(&g.selector, "selector", "", "convert only the first element matching this CSS selector")
	fs.StringVar(&g.inputFormat, "input-format", "auto", "auto, html or markdown")
	fs.BoolVar(&g.summary, "summary", false, "include token counts and topics")
	fs.StringVarP(&g.output, "output", "o", "", "output file (default stdout)")
}

// env is what a subcommand needs once flags and config are resolved.
type env struct {
	cfg       *config.Config
	log       *logger.Logger
	converter *convert.Converter
	request   convert.Request
}

// resolve loads the config and lets explicitly set flags override it.
func (g *globalFlags) resolve(fs *pflag.FlagSet) (*env, error) {
	cfg := config.Default()
	if g.configPath != "" {
		loaded, err := config.Load(g.configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if fs.Changed("evernote") {
		cfg.Evernote = g.evernote
	}
	if fs.Changed("selector") {
		cfg.Selector = g.selector
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = g.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	format, err := convert.ParseInputFormat(g.inputFormat)
	if err != nil {
		return nil, err
	}
	lvl, _ := logger.ParseLevel(cfg.LogLevel)

	return &env{
		cfg:       cfg,
		log:       logger.New().WithLevel(lvl),
		converter: convert.New(crawler.NewHTTPClient(cfg.Fetch), nil),
		request: convert.Request{
			Options: models.Options{Evernote: cfg.Evernote, Selector: cfg.Selector},
			Format:  format,
			Summary: g.summary,
		},
	}, nil
}

// openOutput returns the writer for --output, falling back to the command's
// standard output.
func (g *globalFlags) openOutput(cmd *cobra.Command) (io.Writer, func() error, error) {
	if g.output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(g.output)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:   "markup-tokens",
		Short: "markup-tokens converts HTML and Evernote markup into a semantic token tree",
		Long: `markup-tokens parses loosely structured markup (HTML fragments, Evernote
ENEX exports, Markdown) into a normalized tree of formatting tokens and prints
it as JSON, YAML or a Go value dump.

Usage:
  markup-tokens convert [file|url|-] [flags]
  markup-tokens batch --input sources.csv [flags]`,
		SilenceUsage: true,
	}
	g.bind(root.PersistentFlags())

	root.AddCommand(newConvertCmd(g), newBatchCmd(g), newConfigCmd(g))
	return root
}

func newConfigCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.resolve(cmd.Flags())
			if err != nil {
				return err
			}
			out, err := e.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}
