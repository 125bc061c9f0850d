// internal/repo/repo.go
package repo

import (
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"strata/internal/config"
	"strata/internal/diff"
	"strata/internal/errors"
	"strata/internal/history"
	"strata/internal/lock"
	"strata/internal/logging"
	"strata/internal/object"
	"strata/internal/staging"
	"strata/internal/storage"
	"strata/shared/types"
)

// Repository wires the storage backend, object store, staging index,
// commit chain, and diff engine over one working tree.
type Repository struct {
	Root    string
	Config  config.Config
	Backend storage.Backend
	Objects *object.Store
	Index   *staging.Index
	Chain   *history.Chain
	Engine  *diff.Engine
	Logger  *logging.Logger
}

// Init creates the repository layout for the named backend at root and
// writes the default config file. An existing repository reports
// AlreadyInitialized.
func Init(root, backendName string) error {
	backend, err := newBackend(root, backendName)
	if err != nil {
		return err
	}
	defer backend.Close()

	if err := backend.Init(); err != nil {
		return err
	}
	return config.WriteDefault(root, backendName)
}

// Open loads the repository at root. A root without an initialized layout
// is NotFound.
func Open(root string, cfg config.Config, logger *logging.Logger) (*Repository, error) {
	backend, err := newBackend(root, cfg.Storage.Backend)
	if err != nil {
		return nil, err
	}

	initialized, err := backend.Initialized()
	if err != nil {
		backend.Close()
		return nil, err
	}
	if !initialized {
		backend.Close()
		return nil, errors.NotFound(`no repository found in %s (run "strata init")`, root)
	}

	objects, err := object.New(backend, object.Options{CacheSize: cfg.Storage.CacheSize})
	if err != nil {
		backend.Close()
		return nil, err
	}

	index, err := staging.Load(backend, cfg.Staging.Dedupe)
	if err != nil {
		backend.Close()
		return nil, err
	}

	return &Repository{
		Root:    root,
		Config:  cfg,
		Backend: backend,
		Objects: objects,
		Index:   index,
		Chain:   history.New(backend, objects),
		Engine:  diff.NewEngine(),
		Logger:  logger,
	}, nil
}

func newBackend(root, name string) (storage.Backend, error) {
	switch name {
	case config.BackendFiles:
		return storage.NewFileBackend(root), nil
	case config.BackendBadger:
		return storage.OpenBadgerBackend(root)
	default:
		return nil, errors.IOFailure(nil, "unknown storage backend %q", name)
	}
}

// Close releases the backend.
func (r *Repository) Close() error {
	return r.Backend.Close()
}

// Add stages the files at paths for the next commit. Staging is
// all-or-nothing: every path is read and its blob stored before the index
// changes, so a failing path leaves the staging state as it was, with the
// blobs already written remaining as unreferenced objects. If persisting
// the index fails, the new entries stay staged in memory for the next
// save. Paths are taken relative to the working tree root and must stay
// inside it.
func (r *Repository) Add(paths []string) ([]shared.Entry, error) {
	guard, err := r.lock()
	if err != nil {
		return nil, err
	}
	defer guard.Release()

	staged := make([]shared.Entry, 0, len(paths))
	for _, path := range paths {
		rel, err := r.relPath(path)
		if err != nil {
			return nil, err
		}

		content, err := os.ReadFile(filepath.Join(r.Root, rel))
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.NotFound("no such file: %s", rel)
			}
			return nil, errors.IOFailure(err, "reading %s", rel)
		}

		hash, err := r.Objects.Put(content)
		if err != nil {
			return nil, err
		}
		staged = append(staged, shared.Entry{Path: rel, Hash: hash})
	}

	for _, e := range staged {
		r.Index.Add(e.Path, e.Hash)
		r.Logger.Debug("staged file", zap.String("path", e.Path), zap.String("hash", e.Hash))
	}

	if err := r.Index.Save(); err != nil {
		return nil, err
	}
	return staged, nil
}

// relPath normalizes path to a slash-separated path relative to the
// repository root.
func (r *Repository) relPath(path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.Root, path)
	}
	abs = filepath.Clean(abs)

	rel, err := filepath.Rel(r.Root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.IOFailure(err, "path %s is outside the working tree", path)
	}
	return filepath.ToSlash(rel), nil
}

// Commit snapshots the staging index into a new commit and clears it.
func (r *Repository) Commit(message string) (string, error) {
	guard, err := r.lock()
	if err != nil {
		return "", err
	}
	defer guard.Release()

	hash, err := r.Chain.Commit(message, r.Index.Snapshot())
	if err != nil {
		return "", err
	}
	r.Index.Clear()

	r.Logger.Info("created commit", zap.String("hash", hash))
	return hash, nil
}

// Log starts a newest-first walk over the commit chain.
func (r *Repository) Log() *history.Walker {
	return r.Chain.Walk()
}

// ShowDiff resolves the commit at hash against its parent, file by file.
// Files of a root commit are reported as initial; files without a match in
// the parent list as added; matched files carry the line diff between the
// parent's blob and theirs.
func (r *Repository) ShowDiff(hash string) (*diff.CommitDiff, error) {
	commit, err := r.Chain.Get(hash)
	if err != nil {
		return nil, err
	}

	var parent *shared.Commit
	if commit.Parent != "" {
		parent, err = r.Chain.Get(commit.Parent)
		if err != nil {
			return nil, err
		}
	}

	cd := &diff.CommitDiff{Hash: hash, Commit: commit}
	for _, entry := range commit.Files {
		newContent, err := r.Objects.Get(entry.Hash)
		if err != nil {
			return nil, err
		}

		fd := diff.FileDiff{Path: entry.Path}
		switch {
		case parent == nil:
			fd.Status = diff.FileInitial
		default:
			old, ok := lastMatch(parent.Files, entry.Path)
			if !ok {
				fd.Status = diff.FileAdded
				break
			}
			oldContent, err := r.Objects.Get(old.Hash)
			if err != nil {
				return nil, err
			}
			fd.Status = diff.FileModified
			fd.Segments = r.Engine.Compare(string(oldContent), string(newContent))
		}
		cd.Files = append(cd.Files, fd)
	}

	return cd, nil
}

// lastMatch returns the last entry for path. File lists may carry
// duplicate paths; the newest entry wins everywhere one is resolved.
func lastMatch(entries []shared.Entry, path string) (shared.Entry, bool) {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Path == path {
			return entries[i], true
		}
	}
	return shared.Entry{}, false
}

// lock takes the advisory repository lock for a mutating operation. The
// badger backend brings its own directory lock, so only the files backend
// needs it.
func (r *Repository) lock() (*lock.Guard, error) {
	if !r.Config.Locking.Enabled || r.Config.Storage.Backend != config.BackendFiles {
		return nil, nil
	}
	return lock.Acquire(r.Root)
}

// FindRoot walks from startDir upward to the nearest repository root.
func FindRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", errors.IOFailure(err, "resolving %s", startDir)
	}

	for {
		if isRepoRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.NotFound(`no repository found in %s or any parent (run "strata init")`, startDir)
}

func isRepoRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return true
	}
	info, err := os.Stat(filepath.Join(dir, storage.ObjectsDir))
	if err != nil || !info.IsDir() {
		return false
	}
	_, err = os.Stat(filepath.Join(dir, storage.HeadFile))
	return err == nil
}
