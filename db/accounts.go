package db

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
	"golang.org/x/crypto/bcrypt"
)

const maxUsernameLength = 100

var passwordCost = bcrypt.DefaultCost

// CreateUser registers a new account and returns its id. Usernames are unique
// regardless of case. An empty display name defaults to the username.
func (db *DB) CreateUser(username, password, displayName string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", fmt.Errorf("%w: username and password are required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(username) > maxUsernameLength || strings.ContainsAny(username, " \t\r\n") {
		return "", fmt.Errorf("%w: invalid username %q", domain.ErrValidation, username)
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		displayName = username
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	var id string
	err = db.wrapTransaction(func() error {
		rows, err := db.store.Read(usersTable)
		if err != nil {
			return err
		}
		if findUserRow(rows, username) != nil {
			return fmt.Errorf("%w: username %q is already taken", domain.ErrValidation, username)
		}

		id, err = db.counters.Next(KindUser)
		if err != nil {
			return err
		}
		return db.store.Append(usersTable, Row{
			"user_id":       id,
			"username":      username,
			"password_hash": string(hash),
			"display_name":  displayName,
			"created_at":    db.timestamp(),
			"bio":           "",
			"avatar_path":   "",
		})
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Login checks the credentials and returns the matching user.
func (db *DB) Login(username, password string) (*domain.User, error) {
	user, err := db.ReadUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrInvalidCredentials
	}
	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return nil, domain.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("compare password: %w", err)
	}
	return user, nil
}

func (db *DB) ReadUserById(id string) (*domain.User, error) {
	rows, err := db.store.Read(usersTable)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r["user_id"] == id {
			return rowToUser(r), nil
		}
	}
	return nil, nil
}

// ReadUserByUsername looks the user up case-insensitively.
func (db *DB) ReadUserByUsername(username string) (*domain.User, error) {
	rows, err := db.store.Read(usersTable)
	if err != nil {
		return nil, err
	}
	if r := findUserRow(rows, username); r != nil {
		return rowToUser(r), nil
	}
	return nil, nil
}

func (db *DB) ReadAllUsers() ([]domain.User, error) {
	rows, err := db.store.Read(usersTable)
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, *rowToUser(r))
	}
	return users, nil
}

// UpdateProfile changes the non-nil fields of update.
func (db *DB) UpdateProfile(userId string, update domain.ProfileUpdate) error {
	return db.wrapTransaction(func() error {
		return db.store.Update(usersTable, func(rows []Row) ([]Row, error) {
			for _, r := range rows {
				if r["user_id"] != userId {
					continue
				}
				if update.DisplayName != nil {
					name := strings.TrimSpace(*update.DisplayName)
					if name == "" {
						name = r["username"]
					}
					r["display_name"] = name
				}
				if update.Bio != nil {
					r["bio"] = util.NormalizeInput(*update.Bio)
				}
				if update.AvatarPath != nil {
					r["avatar_path"] = strings.TrimSpace(*update.AvatarPath)
				}
				return rows, nil
			}
			return nil, fmt.Errorf("%w: user %s", domain.ErrNotFound, userId)
		})
	})
}

func findUserRow(rows []Row, username string) Row {
	name := strings.ToLower(strings.TrimSpace(username))
	if name == "" {
		return nil
	}
	for _, r := range rows {
		if strings.ToLower(r["username"]) == name {
			return r
		}
	}
	return nil
}

func rowToUser(r Row) *domain.User {
	return &domain.User{
		Id:           r["user_id"],
		Username:     r["username"],
		PasswordHash: r["password_hash"],
		DisplayName:  r["display_name"],
		CreatedAt:    util.ParseTimestamp(r["created_at"]),
		Bio:          r["bio"],
		AvatarPath:   r["avatar_path"],
	}
}
