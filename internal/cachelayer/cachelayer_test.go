package cachelayer

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sbvh/collegematch/internal/db"
	"github.com/sbvh/collegematch/internal/llmconsensus"
)

type fakeVersionSource struct{ hash string }

func (f fakeVersionSource) VersionHash() (string, error) { return f.hash, nil }

func newTestConn(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	require.NoError(t, db.Migrate(conn, nil))
	return conn
}

func TestCheckAndInvalidateFirstRunRecordsHash(t *testing.T) {
	conn, err := db.Open(":memory:", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.Migrate(conn, nil))

	cl := New(conn, fakeVersionSource{hash: "v1"}, llmconsensus.NewCache(conn, "v1", nil), nil)
	result, err := cl.CheckAndInvalidate()
	require.NoError(t, err)
	require.True(t, result.Changed)
	require.Equal(t, "", result.OldHash)
	require.Equal(t, "v1", result.NewHash)
}

func TestCheckAndInvalidateNoChangeWhenHashStable(t *testing.T) {
	conn, err := db.Open(":memory:", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.Migrate(conn, nil))

	cl := New(conn, fakeVersionSource{hash: "v1"}, llmconsensus.NewCache(conn, "v1", nil), nil)
	_, err = cl.CheckAndInvalidate()
	require.NoError(t, err)

	result, err := cl.CheckAndInvalidate()
	require.NoError(t, err)
	require.False(t, result.Changed)
}

func TestClearWipesReviewQueueRegardlessOfHash(t *testing.T) {
	conn := newTestConn(t)
	_, err := conn.Exec(`INSERT INTO review_queue (group_key, top_candidates) VALUES ('g1', '[]')`)
	require.NoError(t, err)

	cl := New(conn, fakeVersionSource{hash: "v1"}, llmconsensus.NewCache(conn, "v1", nil), nil)
	require.NoError(t, cl.Clear())

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM review_queue`).Scan(&count))
	require.Equal(t, 0, count)
}

func TestCheckAndInvalidateClearsReviewQueueOnChange(t *testing.T) {
	conn, err := db.Open(":memory:", nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, db.Migrate(conn, nil))

	_, err = conn.Exec(`INSERT INTO review_queue (group_key, top_candidates) VALUES ('g1', '[]')`)
	require.NoError(t, err)

	cl := New(conn, fakeVersionSource{hash: "v1"}, llmconsensus.NewCache(conn, "v0", nil), nil)
	_, err = cl.CheckAndInvalidate()
	require.NoError(t, err)

	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM review_queue`).Scan(&count))
	require.Equal(t, 0, count)
}
