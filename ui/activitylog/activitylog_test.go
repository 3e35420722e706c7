package activitylog

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatEntry(t *testing.T) {
	line := FormatEntry(domain.ActivityLogEntry{
		Id:         "l_0001",
		EventType:  domain.EventUserFollowed,
		ActorId:    "u_0001",
		TargetType: domain.TargetUser,
		TargetId:   "u_0002",
		Metadata:   map[string]any{},
		CreatedAt:  time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	})
	assert.Contains(t, line, "USER_FOLLOWED")
	assert.Contains(t, line, "u_0001")
	assert.Contains(t, line, "User/u_0002 {}")
}

func TestOnlyMineToggle(t *testing.T) {
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	alice, err := database.CreateUser("alice", "secret", "")
	require.NoError(t, err)
	bob, err := database.CreateUser("bob", "secret", "")
	require.NoError(t, err)
	_, err = database.CreatePost(alice, "from alice", "")
	require.NoError(t, err)
	_, err = database.Follow(bob, alice)
	require.NoError(t, err)

	m := InitialModel(common.Session{DB: database, UserId: alice})
	m, _ = m.Update(m.Init()())
	assert.Len(t, m.Entries, 2)
	assert.Contains(t, m.View(), "everyone")

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("m")})
	require.NotNil(t, cmd)
	m, _ = m.Update(cmd())
	assert.True(t, m.OnlyMine)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, domain.EventPostCreated, m.Entries[0].EventType)
}
