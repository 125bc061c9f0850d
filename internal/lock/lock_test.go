package lock

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strata/internal/errors"
)

func TestAcquireRelease(t *testing.T) {
	root := t.TempDir()

	guard, err := Acquire(root)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(root, FileName))
	require.NoError(t, err)
	assert.NotEmpty(t, data)

	require.NoError(t, guard.Release())
	_, err = os.Stat(filepath.Join(root, FileName))
	assert.True(t, os.IsNotExist(err))
}

func TestAcquireHeldLock(t *testing.T) {
	root := t.TempDir()

	guard, err := Acquire(root)
	require.NoError(t, err)
	defer guard.Release()

	_, err = Acquire(root)
	require.Error(t, err)
	assert.True(t, errors.IsIOFailure(err))
	assert.Contains(t, err.Error(), "locked by")
}

func TestReacquireAfterRelease(t *testing.T) {
	root := t.TempDir()

	guard, err := Acquire(root)
	require.NoError(t, err)
	require.NoError(t, guard.Release())

	again, err := Acquire(root)
	require.NoError(t, err)
	assert.NoError(t, again.Release())
}

func TestReleaseIsIdempotent(t *testing.T) {
	root := t.TempDir()

	guard, err := Acquire(root)
	require.NoError(t, err)

	require.NoError(t, guard.Release())
	assert.NoError(t, guard.Release())

	var nilGuard *Guard
	assert.NoError(t, nilGuard.Release())
}

func TestAcquireReportsStaleHolder(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, FileName), []byte("deadbeef 12345\n"), 0644))

	_, err := Acquire(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "deadbeef 12345")
}
