// internal/staging/index.go
package staging

import (
	"bytes"
	"encoding/json"

	"strata/internal/errors"
	"strata/internal/storage"
	"strata/shared/types"
	"strata/shared/utils"
)

// indexVersion is the schema version of the persisted index record.
const indexVersion = 1

// indexRecord is the versioned wire form of the staging index.
type indexRecord struct {
	V       int            `json:"v"`
	Entries []shared.Entry `json:"entries"`
}

// Index is the ordered list of entries staged for the next commit. The
// in-memory list is authoritative between Load and Save; persistence
// replaces the whole record.
type Index struct {
	backend storage.Backend
	entries []shared.Entry
	dedupe  bool
}

// Load reads the staged entries from backend. A zero-length record means an
// empty index; anything else must decode as the current schema.
func Load(backend storage.Backend, dedupe bool) (*Index, error) {
	raw, err := backend.ReadIndex()
	if err != nil {
		return nil, err
	}
	entries, err := decode(raw)
	if err != nil {
		return nil, err
	}
	return &Index{backend: backend, entries: entries, dedupe: dedupe}, nil
}

// Add stages hash for path. With dedupe on, a path already staged keeps its
// position and takes the new hash; otherwise entries append in call order.
// A record written in append mode may carry duplicate paths, and everything
// resolving them treats the last entry as current, so the replacement
// scans backwards to land on that entry.
func (ix *Index) Add(path, hash string) {
	if ix.dedupe {
		for i := len(ix.entries) - 1; i >= 0; i-- {
			if ix.entries[i].Path == path {
				ix.entries[i].Hash = hash
				return
			}
		}
	}
	ix.entries = append(ix.entries, shared.Entry{Path: path, Hash: hash})
}

// Snapshot returns a copy of the staged entries in order.
func (ix *Index) Snapshot() []shared.Entry {
	out := make([]shared.Entry, len(ix.entries))
	copy(out, ix.entries)
	return out
}

// Len returns the number of staged entries.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Clear drops all staged entries in memory. It does not touch the backend:
// commits clear persisted state through CommitState, everything else goes
// through Save.
func (ix *Index) Clear() {
	ix.entries = nil
}

// Save replaces the persisted record with the in-memory entries.
func (ix *Index) Save() error {
	data, err := encode(ix.entries)
	if err != nil {
		return err
	}
	return ix.backend.WriteIndex(data)
}

func encode(entries []shared.Entry) ([]byte, error) {
	rec := indexRecord{V: indexVersion, Entries: entries}
	if rec.Entries == nil {
		rec.Entries = []shared.Entry{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.IOFailure(err, "encoding staging index")
	}
	return data, nil
}

func decode(raw []byte) ([]shared.Entry, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()

	var rec indexRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.CorruptObject("decoding staging index: %v", err)
	}
	if dec.More() {
		return nil, errors.CorruptObject("staging index has trailing data")
	}
	if rec.V != indexVersion {
		return nil, errors.CorruptObject("unsupported staging index version %d", rec.V)
	}
	for i, e := range rec.Entries {
		if e.Path == "" {
			return nil, errors.CorruptObject("staging index entry %d has an empty path", i)
		}
		if !utils.IsHash(e.Hash) {
			return nil, errors.CorruptObject("staging index entry %q has malformed hash %q", e.Path, e.Hash)
		}
	}
	return rec.Entries, nil
}
