package gitops

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAuthor = Author{Name: "Test Author", Email: "test@example.com"}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping")
	}
}

func TestAuthor_String(t *testing.T) {
	assert.Equal(t, "Test Author <test@example.com>", testAuthor.String())
}

func TestIsRepo(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	assert.False(t, IsRepo(dir), "empty dir should not be a repo")

	require.NoError(t, Init(dir))
	assert.True(t, IsRepo(dir), "initialized dir should be a repo")
}

func TestHasChanges(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	changed, err := HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	changed, err = HasChanges(dir)
	require.NoError(t, err)
	assert.True(t, changed)

	_, err = CommitAll(dir, "add a", testAuthor)
	require.NoError(t, err)
	changed, err = HasChanges(dir)
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestCommitAll(t *testing.T) {
	requireGit(t)
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "test.txt"), []byte("hello"), 0o644))

	hash, err := CommitAll(dir, "ingest: 1 transactions", testAuthor)
	require.NoError(t, err)
	assert.NotEmpty(t, hash)

	log := exec.Command("git", "log", "--format=%s|%an <%ae>", "-1")
	log.Dir = dir
	out, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(out), "ingest: 1 transactions|Test Author <test@example.com>")
}
