package domain

import (
	"fmt"
	"time"
)

// User is a local account. Optional profile columns that older tables may
// lack are always present here and default to "".
type User struct {
	Id           string
	Username     string
	PasswordHash string
	DisplayName  string
	CreatedAt    time.Time
	Bio          string
	AvatarPath   string
}

// Name returns the display name, falling back to the username and then the id.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if u.Username != "" {
		return u.Username
	}
	return u.Id
}

func (u *User) ToString() string {
	return fmt.Sprintf("\n\tId: %s \n\tUsername: %s \n\tDisplayName: %s \n\tCREATED_AT: %s)", u.Id, u.Username, u.DisplayName, u.CreatedAt)
}

// ProfileUpdate carries the profile fields to change; nil fields are left as is.
type ProfileUpdate struct {
	DisplayName *string
	Bio         *string
	AvatarPath  *string
}
