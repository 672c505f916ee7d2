package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/niladic/csvexec/core"
	"github.com/niladic/csvexec/core/config"
)

var errorColor = color.New(color.FgRed, color.Bold)

// NewRootCommand builds the csvexec command. The filesystem and executor
// are injected so tests can run against an in-memory filesystem or a fake
// process launcher.
func NewRootCommand(fs afero.Fs, exec core.Executor) *cobra.Command {
	cfg := &config.Config{}
	var cfgPath string

	rootCmd := &cobra.Command{
		Use:   "csvexec [flags] [COMMAND]",
		Short: "Execute a command on each record of a CSV.",
		Long: `Execute a command on each record of a CSV and append its output
as a new column.

Placeholders in the command arguments reference record fields by 0-based
position, e.g.:

  csvexec 'echo $1/$0' < input.csv

runs echo once per record with $0 and $1 replaced by the first and second
field. The command may also be given with --exec. Out-of-range or
malformed placeholders are replaced with the empty string.`,
		Version: "0.1.0",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			if len(args) == 1 && !cmd.Flags().Changed("exec") {
				cfg.Exec = args[0]
			}

			if cfgPath != "" {
				defaults, err := config.Load(fs, cfgPath)
				if err != nil {
					return err
				}
				applyDefaults(cfg, defaults, cmd.Flags())
			}

			pipeline, err := core.NewPipeline(cfg, exec)
			if err != nil {
				return err
			}

			in := cmd.InOrStdin()
			if cfg.Input != "" {
				fd, err := fs.Open(cfg.Input)
				if err != nil {
					return fmt.Errorf("failed to open %s: %w", cfg.Input, err)
				}
				defer fd.Close()
				in = fd
			}

			out := cmd.OutOrStdout()
			if cfg.Output != "" {
				fd, err := fs.Create(cfg.Output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", cfg.Output, err)
				}
				defer fd.Close()
				out = fd
			}

			return pipeline.Run(in, out)
		},
	}
	rootCmd.SilenceErrors = true

	flags := rootCmd.Flags()
	flags.StringVarP(&cfg.Input, "input", "i", "", "input CSV file [stdin by default]")
	flags.StringVarP(&cfg.Output, "output", "o", "", "output CSV file [stdout by default]")
	flags.StringVarP(&cfg.Exec, "exec", "e", "", "the command to execute")
	flags.BoolVarP(&cfg.NoHeader, "no-header", "n", false, "do not read the first line as a header line")
	flags.StringVarP(&cfg.Delimiter, "delimiter", "d", config.DefaultDelimiter, `CSV delimiter (\t for tabs)`)
	flags.StringVar(&cfg.Quote, "quote", config.DefaultQuote, "CSV quote")
	flags.StringVar(&cfg.ArgRegex, "arg-regex", config.DefaultArgRegex, "regex used to parse the column position in the command args")
	flags.StringVar(&cfg.NewColumnName, "new-column-name", config.DefaultNewColumnName, "name of the new column which contains the results")
	flags.StringVar(&cfgPath, "config", "", "YAML file with default settings, overridden by flags")

	return rootCmd
}

// applyDefaults fills cfg from a loaded configuration file. A field from the
// file only applies when the matching flag wasn't set on the command line.
func applyDefaults(cfg, defaults *config.Config, flags *pflag.FlagSet) {
	if cfg.Input == "" && defaults.Input != "" {
		cfg.Input = defaults.Input
	}
	if cfg.Output == "" && defaults.Output != "" {
		cfg.Output = defaults.Output
	}
	if cfg.Exec == "" && defaults.Exec != "" {
		cfg.Exec = defaults.Exec
	}
	if !flags.Changed("no-header") && defaults.NoHeader {
		cfg.NoHeader = true
	}
	if !flags.Changed("delimiter") && defaults.Delimiter != "" {
		cfg.Delimiter = defaults.Delimiter
	}
	if !flags.Changed("quote") && defaults.Quote != "" {
		cfg.Quote = defaults.Quote
	}
	if !flags.Changed("arg-regex") && defaults.ArgRegex != "" {
		cfg.ArgRegex = defaults.ArgRegex
	}
	if !flags.Changed("new-column-name") && defaults.NewColumnName != "" {
		cfg.NewColumnName = defaults.NewColumnName
	}
}

// Execute runs the root command against the host OS.
// This is called by main.main().
func Execute() {
	root := NewRootCommand(afero.NewOsFs(), core.SystemExecutor{})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprintf("csvexec: %v", err))
		os.Exit(1)
	}
}
