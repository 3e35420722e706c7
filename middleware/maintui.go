package middleware

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/deemkeen/tusk/db"
	"github.com/deemkeen/tusk/feed"
	"github.com/deemkeen/tusk/ui"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/muesli/termenv"
)

func MainTui(database *db.DB, assembler *feed.Assembler) wish.Middleware {
	teaHandler := func(s ssh.Session) *tea.Program {

		pty, _, active := s.Pty()
		if !active {
			wish.Println(s, "no active terminal, skipping")
			return nil
		}

		user := UserFromContext(s.Context())
		if user == nil {
			log.Printf("No user in session context for %s", s.User())
			return nil
		}

		session := common.Session{DB: database, Feed: assembler, UserId: user.Id}
		m := ui.NewModel(session, *user, pty.Window.Width, pty.Window.Height)
		return tea.NewProgram(m, tea.WithInput(s), tea.WithOutput(s), tea.WithAltScreen())
	}
	return bm.MiddlewareWithProgramHandler(teaHandler, termenv.ANSI256)
}
