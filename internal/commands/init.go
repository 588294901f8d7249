package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/spendsync/spendsync/internal/config"
	"github.com/spendsync/spendsync/internal/gitops"
	"github.com/spendsync/spendsync/internal/inbox"
)

func newInitCommand() *cobra.Command {
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new spendsync workspace",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd.OutOrStdout(), absDir, noGit)
		},
	}

	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not initialize a git repository")

	return cmd
}

func runInit(out io.Writer, dir string, noGit bool) error {
	cfgPath := filepath.Join(dir, config.FileName)
	if _, err := os.Stat(cfgPath); err == nil {
		return fmt.Errorf("%s already exists", cfgPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("checking %s: %w", cfgPath, err)
	}

	// Create directory structure.
	for _, d := range []string{inbox.Dir, inbox.ProcessedDir, "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	if noGit {
		cfg.Git.AutoCommit = false
	}
	if err := config.Save(cfgPath, cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Raw emails can carry card digits; only the derived ledger is versioned.
	gitignore := ".env\ninbox/*.eml\ninbox/processed/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	if err := os.WriteFile(filepath.Join(dir, inbox.Dir, ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	if noGit {
		fmt.Fprintf(out, "Initialized spendsync workspace at %s\n", dir)
		return nil
	}

	if err := gitops.Init(dir); err != nil {
		return fmt.Errorf("git init: %w", err)
	}

	author := gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail}
	hash, err := gitops.CommitAll(dir, "init: initialize spendsync workspace", author)
	if err != nil {
		return fmt.Errorf("initial commit: %w", err)
	}

	fmt.Fprintf(out, "Initialized spendsync workspace at %s (%s)\n", dir, hash)
	return nil
}
