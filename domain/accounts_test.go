package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserToString(t *testing.T) {
	u := &User{
		Id:          "u_0001",
		Username:    "testuser",
		DisplayName: "Test User",
		CreatedAt:   time.Now(),
	}

	result := u.ToString()

	assert.NotEmpty(t, result)
	assert.Contains(t, result, "testuser")
	assert.Contains(t, result, "u_0001")
}

func TestUserName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"display name wins", User{Id: "u_0001", Username: "alice", DisplayName: "Alice"}, "Alice"},
		{"falls back to username", User{Id: "u_0001", Username: "alice"}, "alice"},
		{"falls back to id", User{Id: "u_0001"}, "u_0001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.Name())
		})
	}
}
