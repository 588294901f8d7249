// Package inbox manages the directory of saved notification emails awaiting ingest.
package inbox

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	// Dir is the workspace subdirectory holding .eml files to ingest.
	Dir = "inbox"
	// ProcessedDir receives files once they have been ingested.
	ProcessedDir = "inbox/processed"
)

// FileInfo describes an email file in the inbox.
type FileInfo struct {
	Name    string
	Path    string
	Size    int64
	ModTime time.Time
}

// Scan returns .eml files in <repoRoot>/inbox/, sorted by name.
func Scan(repoRoot string) ([]FileInfo, error) {
	dir := filepath.Join(repoRoot, Dir)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading inbox dir: %w", err)
	}

	var files []FileInfo
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".eml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, FileInfo{
			Name:    e.Name(),
			Path:    filepath.Join(dir, e.Name()),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// MarkProcessed moves a file from inbox/ to inbox/processed/.
func MarkProcessed(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, Dir, fileName)
	dstDir := filepath.Join(repoRoot, ProcessedDir)

	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}

	dst := filepath.Join(dstDir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("moving %s to processed: %w", fileName, err)
	}
	return nil
}

// Restore moves a file from inbox/processed/ back to inbox/.
func Restore(repoRoot, fileName string) error {
	src := filepath.Join(repoRoot, ProcessedDir, fileName)
	dst := filepath.Join(repoRoot, Dir, fileName)
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("restoring %s to inbox: %w", fileName, err)
	}
	return nil
}
