// internal/history/record.go
package history

import (
	"bytes"
	"encoding/json"

	"strata/internal/errors"
	"strata/shared/types"
	"strata/shared/utils"
)

// commitVersion is the schema version of persisted commit records.
const commitVersion = 1

// commitRecord is the versioned wire form of a commit. Struct field order
// fixes the serialized byte order, which makes the encoding, and therefore
// the commit hash, a pure function of the logical content.
type commitRecord struct {
	V         int            `json:"v"`
	Timestamp string         `json:"timestamp"`
	Message   string         `json:"message"`
	Files     []shared.Entry `json:"files"`
	Parent    string         `json:"parent"`
}

// EncodeCommit renders c in the canonical byte form used for both storage
// and identity.
func EncodeCommit(c *shared.Commit) ([]byte, error) {
	rec := commitRecord{
		V:         commitVersion,
		Timestamp: c.Timestamp,
		Message:   c.Message,
		Files:     c.Files,
		Parent:    c.Parent,
	}
	if rec.Files == nil {
		rec.Files = []shared.Entry{}
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.IOFailure(err, "encoding commit record")
	}
	return data, nil
}

// DecodeCommit parses and validates a stored commit record.
func DecodeCommit(data []byte) (*shared.Commit, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var rec commitRecord
	if err := dec.Decode(&rec); err != nil {
		return nil, errors.CorruptObject("decoding commit record: %v", err)
	}
	if dec.More() {
		return nil, errors.CorruptObject("commit record has trailing data")
	}
	if rec.V != commitVersion {
		return nil, errors.CorruptObject("unsupported commit version %d", rec.V)
	}
	if rec.Parent != "" && !utils.IsHash(rec.Parent) {
		return nil, errors.CorruptObject("commit parent %q is not a valid object hash", rec.Parent)
	}
	for i, e := range rec.Files {
		if e.Path == "" {
			return nil, errors.CorruptObject("commit file entry %d has an empty path", i)
		}
		if !utils.IsHash(e.Hash) {
			return nil, errors.CorruptObject("commit file %q has malformed hash %q", e.Path, e.Hash)
		}
	}

	return &shared.Commit{
		Timestamp: rec.Timestamp,
		Message:   rec.Message,
		Files:     rec.Files,
		Parent:    rec.Parent,
	}, nil
}
