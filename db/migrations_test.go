package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunMigrationsCreatesEveryTable(t *testing.T) {
	db, _ := setupTestDB(t)
	for _, table := range Tables {
		_, err := os.Stat(filepath.Join(db.Dir(), table.fileName()))
		assert.NoError(t, err, table.Name)
	}
}

func TestRunMigrationsExtendsOldUserTable(t *testing.T) {
	dir := t.TempDir()
	old := "user_id,username,password_hash,display_name,created_at,legacy\nu_0001,alice,hash,Alice,2025-01-01T00:00:00.000000+09:00,kept\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "users.csv"), []byte(old), 0644))

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	require.NoError(t, db.RunMigrations())

	rows, err := db.store.Read(usersTable)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "kept", rows[0]["legacy"])
	assert.Equal(t, "", rows[0]["bio"])

	user, err := db.ReadUserById("u_0001")
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name())
	assert.Equal(t, "", user.AvatarPath)
}
