package middleware

import (
	"testing"

	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*db.DB, *util.AppConfig) {
	t.Helper()
	database, err := db.Open(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations())
	return database, &util.AppConfig{}
}

func TestAuthenticateRegistersUnknownUser(t *testing.T) {
	database, conf := setup(t)

	user, err := Authenticate(database, conf, "alice", "secret")
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "u_0001", user.Id)
	assert.Equal(t, "alice", user.DisplayName)

	again, err := Authenticate(database, conf, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.Id, again.Id)
}

func TestAuthenticateWrongPassword(t *testing.T) {
	database, conf := setup(t)
	_, err := database.CreateUser("alice", "secret", "")
	require.NoError(t, err)

	_, err = Authenticate(database, conf, "alice", "nope")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthenticateClosedRegistration(t *testing.T) {
	database, conf := setup(t)
	conf.Conf.Closed = true

	_, err := Authenticate(database, conf, "mallory", "secret")
	assert.ErrorIs(t, err, domain.ErrPermission)

	users, err := database.ReadAllUsers()
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestAuthenticateInvalidUsername(t *testing.T) {
	database, conf := setup(t)
	_, err := Authenticate(database, conf, "has space", "secret")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
