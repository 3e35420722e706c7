package myposts

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/feed"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func drain(m Model, cmd tea.Cmd) Model {
	for i := 0; cmd != nil && i < 10; i++ {
		m, cmd = m.Update(cmd())
	}
	return m
}

func TestDeleteAndRestore(t *testing.T) {
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	alice, err := database.CreateUser("alice", "secret", "")
	require.NoError(t, err)
	postId, err := database.CreatePost(alice, "keep or toss", "")
	require.NoError(t, err)

	m := NewPager(common.Session{DB: database, Feed: feed.NewAssembler(database, 0), UserId: alice}, 80, 40)
	m = drain(m, m.Init())
	require.Len(t, m.Posts, 1)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	m = drain(m, cmd)
	assert.Equal(t, "deleted "+postId, m.Status.Text)
	require.Len(t, m.Posts, 1)
	assert.True(t, m.Posts[0].IsDeleted)
	assert.Contains(t, m.View(), "deleted")

	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = drain(m, cmd)
	assert.Equal(t, "restored "+postId, m.Status.Text)
	assert.False(t, m.Posts[0].IsDeleted)
	assert.Equal(t, "keep or toss", m.Posts[0].Content)
}

func TestEmptyList(t *testing.T) {
	m := NewPager(common.Session{}, 80, 40)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.Nil(t, cmd)
	assert.Contains(t, m.View(), "No posts yet.")
}
