// internal/repo/status.go
package repo

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"strata/internal/errors"
	"strata/internal/storage"
	"strata/shared/types"
	"strata/shared/utils"
)

// Status reports every working-tree path that differs from the head commit
// or carries a staged entry: staged, modified, untracked, or deleted,
// sorted by path. Unchanged tracked files are omitted.
func (r *Repository) Status() ([]shared.StatusEntry, error) {
	tracked, err := r.headFiles()
	if err != nil {
		return nil, err
	}

	staged := make(map[string]string)
	for _, e := range r.Index.Snapshot() {
		staged[e.Path] = e.Hash
	}

	byPath := make(map[string]shared.StatusEntry)
	seen := make(map[string]bool)

	walkErr := filepath.WalkDir(r.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, relErr := filepath.Rel(r.Root, path)
		if relErr != nil {
			r.Logger.Warn("skipping path", zap.String("path", path), zap.Error(relErr))
			return nil
		}
		rel = filepath.ToSlash(rel)

		if d.IsDir() {
			if rel != "." && r.shouldIgnore(rel) {
				return filepath.SkipDir
			}
			return nil
		}
		if r.shouldIgnore(rel) {
			return nil
		}

		content, readErr := os.ReadFile(path)
		if readErr != nil {
			r.Logger.Warn("skipping unreadable file", zap.String("path", rel), zap.Error(readErr))
			return nil
		}
		hash := utils.HashContent(content)
		seen[rel] = true

		switch {
		case staged[rel] != "":
			state := shared.StateStaged
			if staged[rel] != hash {
				// Staged, then changed again on disk.
				state = shared.StateModified
			}
			byPath[rel] = shared.StatusEntry{Path: rel, State: state}
		case tracked[rel] != "":
			if tracked[rel] != hash {
				byPath[rel] = shared.StatusEntry{Path: rel, State: shared.StateModified}
			}
		default:
			byPath[rel] = shared.StatusEntry{Path: rel, State: shared.StateUntracked}
		}
		return nil
	})
	if walkErr != nil {
		return nil, errors.IOFailure(walkErr, "walking working tree")
	}

	// Staged or tracked paths that no longer exist on disk.
	for path := range staged {
		if !seen[path] {
			byPath[path] = shared.StatusEntry{Path: path, State: shared.StateDeleted}
		}
	}
	for path := range tracked {
		if !seen[path] && byPath[path].State == "" {
			byPath[path] = shared.StatusEntry{Path: path, State: shared.StateDeleted}
		}
	}

	entries := utils.MapToSlice(byPath)
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// headFiles returns the head commit's file list as a path to hash map, the
// last entry winning per path.
func (r *Repository) headFiles() (map[string]string, error) {
	head, err := r.Chain.Head()
	if err != nil {
		return nil, err
	}

	files := make(map[string]string)
	if head == "" {
		return files, nil
	}

	commit, err := r.Chain.Get(head)
	if err != nil {
		return nil, err
	}
	for _, e := range commit.Files {
		files[e.Path] = e.Hash
	}
	return files, nil
}

// shouldIgnore filters repository internals, hidden files, and
// conventional build directories out of working-tree walks.
func (r *Repository) shouldIgnore(path string) bool {
	if path == "" {
		return true
	}

	for i, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
		switch part {
		case "node_modules", "vendor", "dist", "build":
			return true
		}
		// Repository state lives at the top level only.
		if i == 0 {
			switch part {
			case storage.ObjectsDir, storage.HeadFile, storage.IndexFile, storage.BadgerDir:
				return true
			}
		}
	}
	return false
}
