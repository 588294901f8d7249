package commands

import (
	"fmt"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spendsync/spendsync/internal/parselog"
)

func newLogCommand() *cobra.Command {
	var repoDir string
	var outcome string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the parse log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			absDir, err := filepath.Abs(repoDir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			entries, err := parselog.Read(absDir)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tFILE\tOUTCOME\tBANK\tTXN\tDETAILS")
			for _, e := range entries {
				if outcome != "" && string(e.Outcome) != outcome {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.Format("2006-01-02 15:04"), e.File, e.Outcome, e.Bank, e.TxnID, e.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory")
	cmd.Flags().StringVar(&outcome, "outcome", "", "only show entries with this outcome (matched, no-match, error)")

	return cmd
}
