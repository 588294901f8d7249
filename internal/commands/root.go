package commands

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spendsync/spendsync/internal/buildinfo"
	"github.com/spendsync/spendsync/internal/config"
	"github.com/spendsync/spendsync/internal/logging"
)

type rootOptions struct {
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "spendsync",
		Short:   "Turn bank alert emails into a transaction ledger",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn or error (default from config)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newParseCommand(opts))
	rootCmd.AddCommand(newIngestCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newLogCommand())

	return rootCmd
}

// logger writes to stderr so command output on stdout stays machine-readable.
func (o *rootOptions) logger(cmd *cobra.Command, cfg *config.Config) *log.Logger {
	level := cfg.Log.Level
	if o.logLevel != "" {
		level = o.logLevel
	}
	return logging.New(cmd.ErrOrStderr(), level)
}
