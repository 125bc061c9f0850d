// internal/history/walker.go
package history

import (
	"strata/internal/errors"
	"strata/shared/types"
)

// Walker iterates the commit chain newest-first, loading one commit per
// step:
//
//	w := chain.Walk()
//	for w.Next() {
//		entry := w.Entry()
//	}
//	if err := w.Err(); err != nil { ... }
//
// The seen set guards against tampered parent links that form a cycle; an
// honest chain can never revisit a hash.
type Walker struct {
	chain   *Chain
	next    string
	seen    map[string]bool
	entry   shared.LogEntry
	commit  *shared.Commit
	err     error
	started bool
}

// Walk starts a fresh traversal from the current head.
func (c *Chain) Walk() *Walker {
	return &Walker{chain: c, seen: make(map[string]bool)}
}

// Next advances to the next (older) commit. It returns false once the root
// commit has been yielded or an error stopped the walk.
func (w *Walker) Next() bool {
	if w.err != nil {
		return false
	}
	if !w.started {
		w.started = true
		head, err := w.chain.Head()
		if err != nil {
			w.err = err
			return false
		}
		w.next = head
	}
	if w.next == "" {
		return false
	}
	if w.seen[w.next] {
		w.err = errors.CorruptObject("commit parent chain loops back to %s", w.next)
		return false
	}
	w.seen[w.next] = true

	commit, err := w.chain.Get(w.next)
	if err != nil {
		w.err = err
		return false
	}

	w.commit = commit
	w.entry = shared.LogEntry{
		Hash:      w.next,
		Timestamp: commit.Timestamp,
		Message:   commit.Message,
		Parent:    commit.Parent,
	}
	w.next = commit.Parent
	return true
}

// Entry returns the metadata of the commit Next stopped on.
func (w *Walker) Entry() shared.LogEntry {
	return w.entry
}

// Commit returns the full record of the commit Next stopped on, including
// its file list.
func (w *Walker) Commit() *shared.Commit {
	return w.commit
}

// Err returns the error that stopped the walk, if any.
func (w *Walker) Err() error {
	return w.err
}
