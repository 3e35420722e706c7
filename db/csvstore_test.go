package db

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testTable = Table{Name: "things", Columns: []string{"id", "name"}}

func TestStoreReadMissingFileIsEmpty(t *testing.T) {
	s := NewStore(t.TempDir())
	rows, err := s.Read(testTable)
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestStoreWriteAndRead(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Write(testTable, []Row{
		{"id": "1", "name": "comma, inside"},
		{"id": "2", "name": "line\nbreak \"quoted\""},
	}))

	rows, err := s.Read(testTable)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "comma, inside", rows[0]["name"])
	assert.Equal(t, "line\nbreak \"quoted\"", rows[1]["name"])
}

func TestStoreWriteKeepsUnknownColumns(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Write(testTable, []Row{{"id": "1", "name": "a", "zeta": "z", "alpha": "x"}}))

	buf, err := os.ReadFile(filepath.Join(s.Dir(), "things.csv"))
	require.NoError(t, err)
	header := strings.SplitN(string(buf), "\n", 2)[0]
	assert.Equal(t, "id,name,alpha,zeta", header)

	rows, err := s.Read(testTable)
	require.NoError(t, err)
	assert.Equal(t, "z", rows[0]["zeta"])
}

func TestStoreWriteLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	require.NoError(t, s.Write(testTable, []Row{{"id": "1"}}))
	require.NoError(t, s.Append(testTable, Row{"id": "2"}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "things.csv", entries[0].Name())
}

func TestStoreShortRecordsArePadded(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "things.csv"), []byte("id,name\n1\n"), 0644))

	rows, err := NewStore(dir).Read(testTable)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "", rows[0]["name"])
}

func TestStoreUpdateErrorLeavesTableUntouched(t *testing.T) {
	s := NewStore(t.TempDir())
	require.NoError(t, s.Append(testTable, Row{"id": "1"}))

	err := s.Update(testTable, func(rows []Row) ([]Row, error) {
		return nil, assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	rows, err := s.Read(testTable)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestStoreConcurrentAppendsLoseNothing(t *testing.T) {
	s := NewStore(t.TempDir())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Append(testTable, Row{"id": "x"}))
		}()
	}
	wg.Wait()

	rows, err := s.Read(testTable)
	require.NoError(t, err)
	assert.Len(t, rows, 20)
}
