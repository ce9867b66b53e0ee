package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func populate(t *testing.T, db Database) {
	t.Helper()
	require.NoError(t, db.Put([]byte("rewards/b"), []byte("2")))
	require.NoError(t, db.Put([]byte("rewards/a"), []byte("1")))
	require.NoError(t, db.Put([]byte("receipts/x"), []byte("9")))
}

func testDatabase(t *testing.T, db Database) {
	t.Helper()
	populate(t, db)

	value, err := db.Get([]byte("rewards/a"))
	require.NoError(t, err)
	require.Equal(t, []byte("1"), value)

	_, err = db.Get([]byte("rewards/missing"))
	require.ErrorIs(t, err, ErrKeyNotFound)

	var keys []string
	require.NoError(t, db.Iterate([]byte("rewards/"), func(key, _ []byte) bool {
		keys = append(keys, string(key))
		return true
	}))
	require.Equal(t, []string{"rewards/a", "rewards/b"}, keys)

	// Early termination.
	count := 0
	require.NoError(t, db.Iterate([]byte("rewards/"), func(_, _ []byte) bool {
		count++
		return false
	}))
	require.Equal(t, 1, count)

	require.NoError(t, db.Delete([]byte("rewards/a")))
	_, err = db.Get([]byte("rewards/a"))
	require.ErrorIs(t, err, ErrKeyNotFound)
}

func TestMemDB(t *testing.T) {
	db := NewMemDB()
	defer db.Close()
	testDatabase(t, db)
}

func TestLevelDB(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	testDatabase(t, db)
}
