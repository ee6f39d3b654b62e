package cache

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statsEntry struct {
	Commits int    `json:"commits"`
	Owner   string `json:"owner"`
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)

	store, err := Open(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := openTestStore(t)

	store.PutFileStats("head1", "a.go", statsEntry{Commits: 7, Owner: "alice"})

	var got statsEntry
	require.True(t, store.GetFileStats("head1", "a.go", &got))
	assert.Equal(t, 7, got.Commits)
	assert.Equal(t, "alice", got.Owner)
}

func TestGetMiss(t *testing.T) {
	store := openTestStore(t)

	var got statsEntry
	assert.False(t, store.GetFileStats("head1", "missing.go", &got))
}

func TestKeyedByHead(t *testing.T) {
	store := openTestStore(t)

	store.PutFileStats("head1", "a.go", statsEntry{Commits: 1})

	var got statsEntry
	assert.False(t, store.GetFileStats("head2", "a.go", &got),
		"entries from an old HEAD must not be served for a new HEAD")
}

func TestInvalidateBefore(t *testing.T) {
	store := openTestStore(t)

	store.PutFileStats("old", "a.go", statsEntry{Commits: 1})
	store.PutFileStats("new", "a.go", statsEntry{Commits: 2})

	store.InvalidateBefore("new")

	var got statsEntry
	assert.False(t, store.GetFileStats("old", "a.go", &got))
	require.True(t, store.GetFileStats("new", "a.go", &got))
	assert.Equal(t, 2, got.Commits)
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *Store

	var got statsEntry
	assert.False(t, store.GetFileStats("h", "a.go", &got))
	store.PutFileStats("h", "a.go", got) // must not panic
	store.InvalidateBefore("h")
	assert.NoError(t, store.Close())
}
