package writepost

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/feed"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSavePost(t *testing.T) {
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	alice, err := database.CreateUser("alice", "secret", "")
	require.NoError(t, err)

	m := InitialPost(common.Session{DB: database, Feed: feed.NewAssembler(database, 0), UserId: alice}, 120)
	assert.Equal(t, domain.MaxPostLength, m.Textarea.CharLimit)

	m.Textarea.SetValue("  hello #tusk  ")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	require.NotNil(t, cmd)
	m, cmd = m.Update(cmd())
	require.NoError(t, m.Status.Err)
	assert.Equal(t, "posted p_0001", m.Status.Text)
	assert.Empty(t, m.Textarea.Value())
	require.NotNil(t, cmd)
	assert.Equal(t, common.RefreshViews, cmd())

	posts, err := database.ReadPostsByAuthor(alice)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello #tusk", posts[0].Content)
	ids, err := database.ReadPostIdsByHashtag("tusk")
	require.NoError(t, err)
	assert.Equal(t, []string{"p_0001"}, ids)
}

func TestSaveEmptyPostKeepsText(t *testing.T) {
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())

	m := InitialPost(common.Session{DB: database, UserId: "u_0001"}, 120)
	m.Textarea.SetValue("   ")
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m, cmd = m.Update(cmd())
	assert.Nil(t, cmd)
	assert.ErrorIs(t, m.Status.Err, domain.ErrValidation)
	assert.Contains(t, m.View(), "new post")
}
