// internal/lock/lock.go
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"strata/internal/errors"
)

// FileName is the advisory lock file, created next to the repository
// config.
const FileName = ".strata.lock"

// Guard is a held advisory repository lock. Mutating operations take it
// for their whole run so two concurrent invocations cannot interleave
// writes to the head and index.
type Guard struct {
	path  string
	owner string
}

// Acquire takes the repository lock for root. Creation is exclusive: if
// the file already exists another invocation holds the lock, or a crashed
// one left it behind, and the caller gets an IOFailure naming the holder.
func Acquire(root string) (*Guard, error) {
	path := filepath.Join(root, FileName)
	owner := uuid.New().String()

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if os.IsExist(err) {
			holder := "unknown"
			if data, readErr := os.ReadFile(path); readErr == nil {
				holder = strings.TrimSpace(string(data))
			}
			return nil, errors.IOFailure(nil, "repository is locked by %s (remove %s if no other process is running)", holder, FileName)
		}
		return nil, errors.IOFailure(err, "acquiring repository lock")
	}

	if _, err := fmt.Fprintf(f, "%s %d\n", owner, os.Getpid()); err != nil {
		f.Close()
		os.Remove(path)
		return nil, errors.IOFailure(err, "writing repository lock")
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return nil, errors.IOFailure(err, "writing repository lock")
	}

	return &Guard{path: path, owner: owner}, nil
}

// Release removes the lock file. Releasing a nil or already released
// guard is a no-op.
func (g *Guard) Release() error {
	if g == nil || g.path == "" {
		return nil
	}
	path := g.path
	g.path = ""

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.IOFailure(err, "releasing repository lock")
	}
	return nil
}
