// Command rxmark tests a regular expression against a subject text, listing
// every match with its group spans and highlighting the matches in place.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dl/rxmark/internal/annotate"
	"github.com/dl/rxmark/internal/cli"
)

func main() {
	os.Exit(execute())
}

func execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code := cli.ExitError
	cmd := newRootCmd(func(cfg cli.Config) {
		code = cli.Run(ctx, cfg)
	})
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "rxmark:", err)
		return cli.ExitError
	}
	return code
}

func newRootCmd(run func(cli.Config)) *cobra.Command {
	cfg := cli.DefaultConfig()
	var (
		configPath string
		color      string
		offsets    string
		locator    string
	)

	cmd := &cobra.Command{
		Use:   "rxmark [flags] PATTERN [FILE]",
		Short: "Test a regular expression and highlight its matches",
		Long: `rxmark runs PATTERN over the subject text and prints every match with the
offsets of the full match and each capture group. The subject is read from
FILE, from --text, or from stdin. With --watch the output is recomputed each
time FILE changes.`,
		Args:          cobra.RangeArgs(0, 2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				cfg.Pattern = args[0]
			}
			if len(args) > 1 {
				cfg.Path = args[1]
			}
			cfg.HasText = cmd.Flags().Changed("text")

			if !cmd.Flags().Changed("config") {
				configPath = cli.ConfigPath()
			}
			fc, err := cli.LoadFile(configPath)
			if err != nil {
				return err
			}
			if err := fc.Apply(&cfg, cmd.Flags().Changed); err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("color") {
				if cfg.Color, err = cli.ParseColorMode(color); err != nil {
					return err
				}
			}
			if flags.Changed("offsets") {
				if cfg.Offsets, err = annotate.ParseOffsetUnit(offsets); err != nil {
					return err
				}
			}
			if flags.Changed("locator") {
				if cfg.Locator, err = annotate.ParseLocator(locator); err != nil {
					return err
				}
			}

			if len(args) == 0 && !cfg.Demo {
				return fmt.Errorf("no pattern given (use --demo for an example)")
			}
			run(cfg)
			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&cfg.Global, "global", "g", cfg.Global, "find all matches instead of the first")
	f.BoolVarP(&cfg.IgnoreCase, "ignore-case", "i", cfg.IgnoreCase, "case-insensitive matching")
	f.BoolVarP(&cfg.Multiline, "multiline", "m", cfg.Multiline, "^ and $ match at line boundaries")
	f.StringVarP(&cfg.Engine, "engine", "e", cfg.Engine, "regex engine: re2 or pcre")
	f.StringVarP(&cfg.Format, "format", "f", cfg.Format, "output format: report, json, html or terminal")
	f.StringVar(&color, "color", cfg.Color.String(), "color mode: auto, always or never")
	f.StringVar(&offsets, "offsets", cfg.Offsets.String(), "offset unit: utf16, runes or bytes")
	f.StringVar(&locator, "locator", cfg.Locator.String(), "group offsets: exact or scan")
	f.BoolVar(&cfg.EscapeHTML, "escape-html", cfg.EscapeHTML, "escape the subject text in html output")
	f.StringVarP(&cfg.Text, "text", "t", "", "subject text (instead of FILE or stdin)")
	f.BoolVarP(&cfg.Watch, "watch", "w", false, "re-render whenever FILE changes")
	f.BoolVar(&cfg.Demo, "demo", false, "run the built-in example")
	f.BoolVarP(&cfg.Verbose, "verbose", "v", false, "debug logging on stderr")
	f.StringVar(&configPath, "config", "", "defaults file (default $RXMARK_CONFIG_PATH or ~/.rxmark.yaml)")

	return cmd
}
