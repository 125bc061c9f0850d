package history

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/errors"
	"strata/shared/types"
	"strata/shared/utils"
)

func TestEncodeCommitDeterministic(t *testing.T) {
	commit := &shared.Commit{
		Timestamp: "2024-05-01T10:00:00Z",
		Message:   "pinned",
		Files: []shared.Entry{
			{Path: "a.txt", Hash: "86f7e437faa5a7fce15d1ddcb9eaeaea377667b8"},
		},
	}

	data, err := EncodeCommit(commit)
	require.NoError(t, err)

	// The exact byte form is load-bearing: it is what gets hashed, so any
	// drift here silently changes every commit identity.
	want := `{"v":1,"timestamp":"2024-05-01T10:00:00Z","message":"pinned",` +
		`"files":[{"path":"a.txt","hash":"86f7e437faa5a7fce15d1ddcb9eaeaea377667b8"}],"parent":""}`
	assert.Equal(t, want, string(data))

	again, err := EncodeCommit(commit)
	require.NoError(t, err)
	assert.Equal(t, data, again)

	decoded, err := DecodeCommit(data)
	require.NoError(t, err)
	assert.Equal(t, commit.Timestamp, decoded.Timestamp)
	assert.Equal(t, commit.Message, decoded.Message)
	assert.Equal(t, commit.Files, decoded.Files)
	assert.Equal(t, commit.Parent, decoded.Parent)
}

func TestEncodeCommitContentChangesBytes(t *testing.T) {
	base := &shared.Commit{Timestamp: "2024-05-01T10:00:00Z", Message: "msg"}

	baseData, err := EncodeCommit(base)
	require.NoError(t, err)

	variants := []*shared.Commit{
		{Timestamp: "2024-05-01T10:00:01Z", Message: "msg"},
		{Timestamp: "2024-05-01T10:00:00Z", Message: "other"},
		{Timestamp: "2024-05-01T10:00:00Z", Message: "msg", Parent: strings.Repeat("b", utils.HashLength)},
		{Timestamp: "2024-05-01T10:00:00Z", Message: "msg", Files: []shared.Entry{
			{Path: "a.txt", Hash: strings.Repeat("c", utils.HashLength)},
		}},
	}
	for _, v := range variants {
		data, err := EncodeCommit(v)
		require.NoError(t, err)
		assert.NotEqual(t, string(baseData), string(data))
	}
}

func TestEncodeCommitNilFiles(t *testing.T) {
	data, err := EncodeCommit(&shared.Commit{Timestamp: "2024-05-01T10:00:00Z"})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"files":[]`)

	decoded, err := DecodeCommit(data)
	require.NoError(t, err)
	assert.NotNil(t, decoded.Files)
	assert.Empty(t, decoded.Files)
}

func TestDecodeCommitCorrupt(t *testing.T) {
	valid := strings.Repeat("d", utils.HashLength)

	cases := []struct {
		name string
		data string
	}{
		{"garbage", "not json at all"},
		{"empty", ""},
		{"wrong version", `{"v":2,"timestamp":"t","message":"m","files":[],"parent":""}`},
		{"unknown field", `{"v":1,"timestamp":"t","message":"m","files":[],"parent":"","extra":true}`},
		{"malformed parent", `{"v":1,"timestamp":"t","message":"m","files":[],"parent":"xyz"}`},
		{"empty file path", `{"v":1,"timestamp":"t","message":"m","files":[{"path":"","hash":"` + valid + `"}],"parent":""}`},
		{"malformed file hash", `{"v":1,"timestamp":"t","message":"m","files":[{"path":"a","hash":"nope"}],"parent":""}`},
		{"trailing data", `{"v":1,"timestamp":"t","message":"m","files":[],"parent":""}{"v":1}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeCommit([]byte(tc.data))
			assert.True(t, errors.IsCorruptObject(err), "got %v", err)
		})
	}
}
