package middleware

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/util"
)

type contextKey string

const userKey contextKey = "tusk-user"

// Authenticate checks the credentials of an SSH login. Unknown usernames are
// registered on the spot unless registration is closed.
func Authenticate(database *db.DB, conf *util.AppConfig, username, password string) (*domain.User, error) {
	user, err := database.ReadUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return database.Login(username, password)
	}

	if conf.Conf.Closed {
		return nil, fmt.Errorf("%w: registration is closed", domain.ErrPermission)
	}
	id, err := database.CreateUser(username, password, "")
	if err != nil {
		return nil, err
	}
	log.Info("registered new user over ssh", "id", id, "username", username)
	return database.ReadUserById(id)
}

// PasswordHandler authenticates SSH logins and stores the user in the
// connection context.
func PasswordHandler(database *db.DB, conf *util.AppConfig) ssh.PasswordHandler {
	return func(ctx ssh.Context, password string) bool {
		user, err := Authenticate(database, conf, ctx.User(), password)
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidCredentials) {
				log.Warn("ssh login rejected", "user", ctx.User(), "remote", ctx.RemoteAddr(), "err", err)
			}
			return false
		}
		ctx.SetValue(userKey, user)
		return true
	}
}

// UserFromContext returns the user stored by PasswordHandler, or nil.
func UserFromContext(ctx ssh.Context) *domain.User {
	user, _ := ctx.Value(userKey).(*domain.User)
	return user
}

func AuthMiddleware() wish.Middleware {
	return func(h ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			if UserFromContext(s.Context()) == nil {
				wish.Fatalln(s, "not authenticated")
				return
			}
			util.LogSession(s)
			h(s)
		}
	}
}
