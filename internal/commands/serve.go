package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/spendsync/spendsync/internal/config"
	"github.com/spendsync/spendsync/internal/parser"
	"github.com/spendsync/spendsync/internal/server"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var repoDir string
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the parser over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadRepo(repoDir)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			logger := opts.logger(cmd, cfg)
			p, err := cfg.NewParser(parser.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("building parser: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.ListenAndServe(ctx, cfg.Server.Addr, server.NewRouter(p, logger), logger)
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory to read config from")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	return cmd
}
