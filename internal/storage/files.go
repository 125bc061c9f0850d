// internal/storage/files.go
package storage

import (
	"os"
	"path/filepath"
	"strings"

	"strata/internal/errors"
)

// On-disk layout at the repository root.
const (
	ObjectsDir = "objects"
	HeadFile   = "HEAD"
	IndexFile  = "index"
)

// FileBackend stores repository state as plain files: one file per object
// under objects/, the head hash in HEAD, and the staging index record in
// index. Every write replaces a whole record atomically.
type FileBackend struct {
	root string
}

func NewFileBackend(root string) *FileBackend {
	return &FileBackend{root: root}
}

func (b *FileBackend) Init() error {
	ok, err := b.Initialized()
	if err != nil {
		return err
	}
	if ok {
		return errors.AlreadyInitialized("repository already initialized in %s", b.root)
	}
	if err := os.MkdirAll(filepath.Join(b.root, ObjectsDir), 0755); err != nil {
		return errors.IOFailure(err, "creating objects directory")
	}
	if err := writeAtomic(filepath.Join(b.root, HeadFile), nil, 0644); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(b.root, IndexFile), nil, 0644)
}

func (b *FileBackend) Initialized() (bool, error) {
	info, err := os.Stat(filepath.Join(b.root, ObjectsDir))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.IOFailure(err, "checking repository layout")
	}
	return info.IsDir(), nil
}

func (b *FileBackend) objectPath(hash string) string {
	return filepath.Join(b.root, ObjectsDir, hash)
}

func (b *FileBackend) PutObject(hash string, content []byte) error {
	path := b.objectPath(hash)
	if _, err := os.Stat(path); err == nil {
		return nil // objects are immutable, first write wins
	} else if !os.IsNotExist(err) {
		return errors.IOFailure(err, "checking object %s", hash)
	}
	return writeAtomic(path, content, 0644)
}

func (b *FileBackend) GetObject(hash string) ([]byte, error) {
	content, err := os.ReadFile(b.objectPath(hash))
	if os.IsNotExist(err) {
		return nil, errors.NotFound("no such object: %s", hash)
	}
	if err != nil {
		return nil, errors.IOFailure(err, "reading object %s", hash)
	}
	return content, nil
}

func (b *FileBackend) HasObject(hash string) (bool, error) {
	_, err := os.Stat(b.objectPath(hash))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.IOFailure(err, "checking object %s", hash)
	}
	return true, nil
}

func (b *FileBackend) ListObjects() ([]string, error) {
	dirents, err := os.ReadDir(filepath.Join(b.root, ObjectsDir))
	if err != nil {
		return nil, errors.IOFailure(err, "listing objects")
	}
	hashes := make([]string, 0, len(dirents))
	for _, d := range dirents {
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			continue // leftover temp files are not objects
		}
		hashes = append(hashes, d.Name())
	}
	return hashes, nil
}

func (b *FileBackend) ReadHead() (string, error) {
	data, err := os.ReadFile(filepath.Join(b.root, HeadFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", errors.IOFailure(err, "reading head")
	}
	return strings.TrimSpace(string(data)), nil
}

func (b *FileBackend) ReadIndex() ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(b.root, IndexFile))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.IOFailure(err, "reading staging index")
	}
	return data, nil
}

func (b *FileBackend) WriteIndex(data []byte) error {
	return writeAtomic(filepath.Join(b.root, IndexFile), data, 0644)
}

// CommitState clears the index before advancing the head. The two renames
// cannot be joined on a plain filesystem; with this ordering a crash in
// between leaves an empty index under the old head, which loses staged
// entries but never attributes them to a later commit.
func (b *FileBackend) CommitState(head string) error {
	if err := b.WriteIndex(nil); err != nil {
		return err
	}
	return writeAtomic(filepath.Join(b.root, HeadFile), []byte(head+"\n"), 0644)
}

func (b *FileBackend) Close() error {
	return nil
}

// writeAtomic writes data to path as tempfile -> fsync -> rename. The temp
// file lives in the target directory so the rename stays on one filesystem.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return errors.IOFailure(err, "creating temp file in %s", dir)
	}
	tmp := f.Name()

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.IOFailure(err, "writing %s", path)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.IOFailure(err, "syncing %s", path)
	}
	if err := f.Chmod(perm); err != nil {
		f.Close()
		os.Remove(tmp)
		return errors.IOFailure(err, "setting mode on %s", path)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return errors.IOFailure(err, "closing temp for %s", path)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.IOFailure(err, "replacing %s", path)
	}
	return nil
}
