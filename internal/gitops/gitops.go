package gitops

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Author identifies who commits workspace changes.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Init initializes a new git repository at dir.
func Init(dir string) error {
	if out, err := git(dir, "init"); err != nil {
		return fmt.Errorf("git init: %s: %w", out, err)
	}
	return nil
}

// HasChanges reports whether the work tree at dir has uncommitted or untracked files.
func HasChanges(dir string) (bool, error) {
	out, err := git(dir, "status", "--porcelain")
	if err != nil {
		return false, fmt.Errorf("git status: %s: %w", out, err)
	}
	return strings.TrimSpace(out) != "", nil
}

// CommitAll stages all files and creates a commit. Returns the short commit hash.
func CommitAll(dir, message string, author Author) (string, error) {
	if out, err := git(dir, "add", "-A"); err != nil {
		return "", fmt.Errorf("git add: %s: %w", out, err)
	}

	// Committer identity comes from the environment so commits work on machines
	// without a global git config.
	commit := exec.Command("git", "commit", "-m", message, "--author", author.String())
	commit.Dir = dir
	commit.Env = append(os.Environ(),
		"GIT_COMMITTER_NAME="+author.Name,
		"GIT_COMMITTER_EMAIL="+author.Email,
	)
	if out, err := commit.CombinedOutput(); err != nil {
		return "", fmt.Errorf("git commit: %s: %w", out, err)
	}

	out, err := git(dir, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", fmt.Errorf("git rev-parse: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

func git(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	return string(out), err
}
