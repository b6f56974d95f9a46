package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags and the loaded config for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	Config Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the linkgraph CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "linkgraph",
		Short: "Resolve what every target of a project graph links, embeds and searches",
		Long: `linkgraph loads a dependency graph snapshot (YAML or CUE) and answers
build-setting questions for each target: which products it links, which
frameworks it embeds, which search paths it needs and which platforms
external targets must be built for.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output (debug logs and metrics on stderr)")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", DefaultConfigPath, "path to a TOML config file")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewSummaryCommand(opts))
	cmd.AddCommand(NewLintCommand(opts))
	cmd.AddCommand(NewFingerprintCommand(opts))
	cmd.AddCommand(NewDiffCommand(opts))
	cmd.AddCommand(NewRunsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// setup loads the config, lets explicit flags win over it and installs the
// logger.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()

	cfg, err := LoadConfig(o.ConfigPath, flags.Changed("config"))
	if err != nil {
		return WrapExitError(ExitCommandError, ErrCodeConfig+": invalid config", err)
	}
	o.Config = cfg

	if !flags.Changed("format") && cfg.Format != "" {
		o.Format = cfg.Format
	}
	if !isValidFormat(o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	o.Logger = newLogger(cmd.ErrOrStderr(), o.Verbose)
	slog.SetDefault(o.Logger)
	return nil
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
