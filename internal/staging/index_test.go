package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/errors"
	"strata/internal/storage"
	"strata/shared/types"
	"strata/shared/utils"
)

func newBackend(t *testing.T) *storage.MemoryBackend {
	t.Helper()

	b := storage.NewMemoryBackend()
	require.NoError(t, b.Init())
	return b
}

func TestIndexAddAndSnapshot(t *testing.T) {
	ix, err := Load(newBackend(t), true)
	require.NoError(t, err)

	hashA := utils.HashContent([]byte("a"))
	hashB := utils.HashContent([]byte("b"))

	ix.Add("a.txt", hashA)
	ix.Add("b.txt", hashB)

	snap := ix.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, shared.Entry{Path: "a.txt", Hash: hashA}, snap[0])
	assert.Equal(t, shared.Entry{Path: "b.txt", Hash: hashB}, snap[1])

	// Mutating the snapshot must not reach the index.
	snap[0].Path = "mutated"
	assert.Equal(t, "a.txt", ix.Snapshot()[0].Path)
}

func TestIndexDedupeReplacesInPlace(t *testing.T) {
	ix, err := Load(newBackend(t), true)
	require.NoError(t, err)

	first := utils.HashContent([]byte("v1"))
	second := utils.HashContent([]byte("v2"))

	ix.Add("a.txt", first)
	ix.Add("b.txt", utils.HashContent([]byte("b")))
	ix.Add("a.txt", second)

	snap := ix.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a.txt", snap[0].Path, "restaged path keeps its position")
	assert.Equal(t, second, snap[0].Hash, "restaged path takes the newest hash")
}

func TestIndexAppendMode(t *testing.T) {
	ix, err := Load(newBackend(t), false)
	require.NoError(t, err)

	ix.Add("a.txt", utils.HashContent([]byte("v1")))
	ix.Add("a.txt", utils.HashContent([]byte("v2")))

	assert.Equal(t, 2, ix.Len(), "append mode keeps duplicate entries")
}

func TestIndexDedupeUpdatesNewestDuplicate(t *testing.T) {
	backend := newBackend(t)

	v1 := utils.HashContent([]byte("v1"))
	v2 := utils.HashContent([]byte("v2"))
	v3 := utils.HashContent([]byte("v3"))
	v4 := utils.HashContent([]byte("v4"))

	// Duplicates written in append mode survive the reload.
	appended, err := Load(backend, false)
	require.NoError(t, err)
	appended.Add("a.txt", v1)
	appended.Add("b.txt", v2)
	appended.Add("a.txt", v3)
	require.NoError(t, appended.Save())

	ix, err := Load(backend, true)
	require.NoError(t, err)
	require.Equal(t, 3, ix.Len())

	ix.Add("a.txt", v4)

	// The last entry per path is the one commits and diffs resolve, so the
	// restage must land there, not on the shadowed first entry.
	snap := ix.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, shared.Entry{Path: "a.txt", Hash: v1}, snap[0])
	assert.Equal(t, shared.Entry{Path: "a.txt", Hash: v4}, snap[2], "freshly staged hash lands on the newest duplicate")
}

func TestIndexSaveLoadRoundTrip(t *testing.T) {
	backend := newBackend(t)

	ix, err := Load(backend, true)
	require.NoError(t, err)

	ix.Add("dir/file.txt", utils.HashContent([]byte("content")))
	require.NoError(t, ix.Save())

	reloaded, err := Load(backend, true)
	require.NoError(t, err)
	assert.Equal(t, ix.Snapshot(), reloaded.Snapshot())
}

func TestIndexEmptyRecord(t *testing.T) {
	backend := newBackend(t)

	ix, err := Load(backend, true)
	require.NoError(t, err)
	assert.Zero(t, ix.Len())

	// Saving an empty index writes the versioned record, which still loads
	// as empty.
	require.NoError(t, ix.Save())

	raw, err := backend.ReadIndex()
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":1,"entries":[]}`, string(raw))

	reloaded, err := Load(backend, true)
	require.NoError(t, err)
	assert.Zero(t, reloaded.Len())
}

func TestIndexClearIsInMemory(t *testing.T) {
	backend := newBackend(t)

	ix, err := Load(backend, true)
	require.NoError(t, err)

	ix.Add("a.txt", utils.HashContent([]byte("a")))
	require.NoError(t, ix.Save())

	ix.Clear()
	assert.Zero(t, ix.Len())

	// The persisted record is untouched until Save or CommitState.
	reloaded, err := Load(backend, true)
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

func TestIndexCorruptRecords(t *testing.T) {
	valid := utils.HashContent([]byte("x"))

	cases := map[string]string{
		"garbage":        "not json at all",
		"wrong version":  `{"v":2,"entries":[]}`,
		"unknown field":  `{"v":1,"entries":[],"extra":true}`,
		"empty path":     `{"v":1,"entries":[{"path":"","hash":"` + valid + `"}]}`,
		"malformed hash": `{"v":1,"entries":[{"path":"a.txt","hash":"nope"}]}`,
		"trailing data":  `{"v":1,"entries":[]}{"v":1}`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			backend := newBackend(t)
			require.NoError(t, backend.WriteIndex([]byte(raw)))

			_, err := Load(backend, true)
			require.Error(t, err)
			assert.True(t, errors.IsCorruptObject(err))
		})
	}
}
