package commands

import (
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/spendsync/spendsync/internal/config"
	"github.com/spendsync/spendsync/internal/gitops"
	"github.com/spendsync/spendsync/internal/inbox"
	"github.com/spendsync/spendsync/internal/ingest"
	"github.com/spendsync/spendsync/internal/parser"
)

func newIngestCommand(opts *rootOptions) *cobra.Command {
	var dryRun bool
	var repoDir string
	var workers int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Parse inbox emails into the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			cfg, err := config.LoadRepo(absDir)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Ingest.Workers = workers
			}

			logger := opts.logger(cmd, cfg)
			p, err := cfg.NewParser(parser.WithLogger(logger))
			if err != nil {
				return fmt.Errorf("building parser: %w", err)
			}

			files, err := inbox.Scan(absDir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No emails in inbox")
				return nil
			}

			results, err := ingest.NewPipeline(p, cfg.Ingest.Workers, logger).Run(cmd.Context(), files)
			if err != nil {
				return err
			}

			if dryRun {
				printDryRun(cmd.OutOrStdout(), results)
				return nil
			}
			return recordIngest(cmd.OutOrStdout(), absDir, cfg, results, logger)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "parse and print without writing anything")
	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")
	cmd.Flags().IntVar(&workers, "workers", 0, "number of emails parsed concurrently (default from config)")

	return cmd
}

func printDryRun(out io.Writer, results []ingest.Result) {
	for _, r := range results {
		switch {
		case r.Err != nil:
			fmt.Fprintf(out, "%s: error: %v\n", r.File.Name, r.Err)
		case r.Txn == nil:
			fmt.Fprintf(out, "%s: no match\n", r.File.Name)
		default:
			fmt.Fprintf(out, "%s: %s\n", r.File.Name, r.Txn)
		}
	}
}

func recordIngest(out io.Writer, repoRoot string, cfg *config.Config, results []ingest.Result, logger *log.Logger) error {
	// Emails move to processed/ first and go back when recording fails; the ledger is
	// written last. Unreadable emails never leave the inbox.
	var moved []string
	restore := func() {
		for _, name := range moved {
			if err := inbox.Restore(repoRoot, name); err != nil {
				logger.Error("failed to restore email", "file", name, "err", err)
			}
		}
	}
	for _, r := range results {
		if r.Err != nil {
			continue
		}
		if err := inbox.MarkProcessed(repoRoot, r.File.Name); err != nil {
			restore()
			return err
		}
		moved = append(moved, r.File.Name)
	}

	sum, err := ingest.Record(repoRoot, results, time.Now())
	if err != nil {
		restore()
		return err
	}

	for _, rec := range sum.Records {
		fmt.Fprintf(out, "%s  %s  %-4s  %s %s  %s\n",
			rec.ID, rec.Date.Format("2006-01-02"), rec.Bank, rec.Currency, rec.Amount.StringFixed(2), rec.Merchant)
	}
	fmt.Fprintf(out, "Ingested %d transactions (%d no match, %d failed)\n", sum.Matched, sum.NoMatch, sum.Failed)

	if !cfg.Git.AutoCommit || !gitops.IsRepo(repoRoot) {
		return nil
	}
	changed, err := gitops.HasChanges(repoRoot)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(repoRoot, fmt.Sprintf("ingest: %d transactions", sum.Matched), author)
	if err != nil {
		return fmt.Errorf("committing ingest: %w", err)
	}
	logger.Info("committed ingest", "commit", hash)
	return nil
}
