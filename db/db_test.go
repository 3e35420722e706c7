package db

import (
	"sync"
	"testing"
	"time"

	"github.com/deemkeen/tusk/util"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	passwordCost = bcrypt.MinCost
}

var testEpoch = time.Date(2025, 3, 1, 9, 0, 0, 0, util.KST)

// testClock advances one second on every call so that rows created in
// sequence never share a timestamp.
type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(time.Second)
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// setupTestDB opens a migrated database in a temp directory.
func setupTestDB(t *testing.T) (*DB, *testClock) {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	clock := &testClock{t: testEpoch}
	db.SetClock(clock.Now)
	require.NoError(t, db.RunMigrations())
	return db, clock
}

func mustCreateUser(t *testing.T, db *DB, username string) string {
	t.Helper()
	id, err := db.CreateUser(username, "secret", "")
	require.NoError(t, err)
	return id
}

func mustCreatePost(t *testing.T, db *DB, authorId, content string) string {
	t.Helper()
	id, err := db.CreatePost(authorId, content, "")
	require.NoError(t, err)
	return id
}
