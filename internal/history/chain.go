// internal/history/chain.go
package history

import (
	"strata/internal/errors"
	"strata/internal/object"
	"strata/internal/storage"
	"strata/shared/types"
	"strata/shared/utils"
)

// Chain owns the linear commit history: building new commits, resolving
// stored ones, and the head pointer. Commits are regular objects in the
// store; the chain adds the record schema and the parent links on top.
type Chain struct {
	backend storage.Backend
	objects *object.Store
}

func New(backend storage.Backend, objects *object.Store) *Chain {
	return &Chain{backend: backend, objects: objects}
}

// Head returns the hash of the newest commit, or "" while no commit
// exists.
func (c *Chain) Head() (string, error) {
	head, err := c.backend.ReadHead()
	if err != nil {
		return "", err
	}
	if head == "" {
		return "", nil
	}
	if !utils.IsHash(head) {
		return "", errors.CorruptObject("head %q is not a valid object hash", head)
	}
	return head, nil
}

// Get resolves hash to a commit.
func (c *Chain) Get(hash string) (*shared.Commit, error) {
	data, err := c.objects.Get(hash)
	if err != nil {
		return nil, err
	}
	return DecodeCommit(data)
}

// Commit snapshots files into a new commit whose parent is the current
// head, stores it, then advances the head and clears the persisted staging
// index in one state transition. An empty files list is a valid commit.
//
// The commit object is durable before the head moves; a failure in between
// leaves an orphan object, never a dangling head.
func (c *Chain) Commit(message string, files []shared.Entry) (string, error) {
	head, err := c.Head()
	if err != nil {
		return "", err
	}

	commit := &shared.Commit{
		Timestamp: utils.Timestamp(),
		Message:   message,
		Files:     files,
		Parent:    head,
	}

	data, err := EncodeCommit(commit)
	if err != nil {
		return "", err
	}

	hash, err := c.objects.Put(data)
	if err != nil {
		return "", err
	}

	if err := c.backend.CommitState(hash); err != nil {
		return "", err
	}

	return hash, nil
}
