package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spendsync/spendsync/internal/config"
	"github.com/spendsync/spendsync/internal/mailfile"
	"github.com/spendsync/spendsync/internal/model"
	"github.com/spendsync/spendsync/internal/parser"
	"github.com/spendsync/spendsync/internal/server"
)

type parseOutput struct {
	File        string                      `json:"file"`
	MessageID   string                      `json:"message_id"`
	Transaction *server.TransactionResponse `json:"transaction"`
}

func newParseCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool
	var repoDir string

	cmd := &cobra.Command{
		Use:   "parse <file.eml>...",
		Short: "Parse email files and print the extracted transactions",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadRepo(repoDir)
			if err != nil {
				return err
			}
			p, err := cfg.NewParser(parser.WithLogger(opts.logger(cmd, cfg)))
			if err != nil {
				return fmt.Errorf("building parser: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, path := range args {
				msg, txn, err := parseFile(p, path)
				if err != nil {
					return err
				}
				name := filepath.Base(path)

				if asJSON {
					out := parseOutput{File: name, MessageID: msg.MessageID}
					if txn != nil {
						resp := server.NewTransactionResponse(txn)
						out.Transaction = &resp
					}
					if err := enc.Encode(out); err != nil {
						return fmt.Errorf("encoding output: %w", err)
					}
					continue
				}

				if txn == nil {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: no match\n", name)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", name, txn)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per file")
	cmd.Flags().StringVar(&repoDir, "repo", ".", "workspace directory to read config from")

	return cmd
}

func parseFile(p *parser.Parser, path string) (*mailfile.Message, *model.ParsedTransaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	msg, err := mailfile.Read(f)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	date := msg.Date
	if date.IsZero() {
		info, err := f.Stat()
		if err != nil {
			return nil, nil, fmt.Errorf("stat %s: %w", path, err)
		}
		date = info.ModTime()
	}

	return msg, p.Parse(msg.Subject, msg.Body, date), nil
}
