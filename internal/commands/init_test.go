package commands_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spendsync/spendsync/internal/config"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build the binary once for all tests.
	tmpDir, err := os.MkdirTemp("", "spendsync-test-*")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(tmpDir)

	binaryPath = filepath.Join(tmpDir, "spendsync")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/spendsync")
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic("failed to build binary: " + err.Error())
	}

	os.Exit(m.Run())
}

func runSpendsync(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available, skipping git test")
	}
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := t.TempDir()
	out, err := runSpendsync(t, "init", dir, "--no-git")
	require.NoError(t, err, out)
	assert.Contains(t, out, "Initialized spendsync workspace")

	for _, d := range []string{"inbox", filepath.Join("inbox", "processed"), "logs"} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}

	_, err = os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err), "--no-git should not create .git")
}

func TestInit_Config(t *testing.T) {
	dir := t.TempDir()
	_, err := runSpendsync(t, "init", dir, "--no-git")
	require.NoError(t, err)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "[TEST]", cfg.TestOverride.Marker)
	assert.Equal(t, 4, cfg.Ingest.Workers)
	assert.False(t, cfg.Git.AutoCommit, "--no-git disables auto commit")
}

func TestInit_Gitignore(t *testing.T) {
	dir := t.TempDir()
	_, err := runSpendsync(t, "init", dir, "--no-git")
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, ".gitignore"))
	require.NoError(t, err)
	contents := string(data)

	for _, pattern := range []string{".env", "inbox/*.eml", "inbox/processed/"} {
		assert.Contains(t, contents, pattern, ".gitignore should contain %s", pattern)
	}
}

func TestInit_GitRepo(t *testing.T) {
	requireGit(t)

	dir := t.TempDir()
	out, err := runSpendsync(t, "init", dir)
	require.NoError(t, err, out)

	_, err = os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err, ".git should exist")

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	logOut, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(logOut), "init:")

	authorLog := exec.Command("git", "log", "--format=%an <%ae>", "-1")
	authorLog.Dir = dir
	logOut, err = authorLog.Output()
	require.NoError(t, err)
	assert.Contains(t, string(logOut), "spendsync <spendsync@localhost>")
}

func TestInit_RefusesExistingWorkspace(t *testing.T) {
	dir := t.TempDir()
	_, err := runSpendsync(t, "init", dir, "--no-git")
	require.NoError(t, err)

	out, err := runSpendsync(t, "init", dir, "--no-git")
	require.Error(t, err, "second init should fail")
	assert.Contains(t, out, "already exists")
}
