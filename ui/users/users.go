package users

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/deemkeen/tusk/util"
)

var (
	userStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			MarginBottom(0)

	selectedStyle = userStyle.
			Foreground(lipgloss.Color(common.COLOR_GREEN)).
			Bold(true)
)

// Model lists every other user with the follow state in both directions.
type Model struct {
	Users     []domain.User
	Following map[string]bool
	Followers map[string]bool
	Selected  int
	Status    common.StatusMsg
	session   common.Session
}

func InitialModel(session common.Session) Model {
	return Model{
		Users:     []domain.User{},
		Following: map[string]bool{},
		Followers: map[string]bool{},
		session:   session,
	}
}

type usersLoadedMsg struct {
	users     []domain.User
	following map[string]bool
	followers map[string]bool
}

type toggledMsg struct {
	status common.StatusMsg
}

type clearStatusMsg struct{}

func (m Model) Init() tea.Cmd {
	return loadUsers(m.session)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case usersLoadedMsg:
		m.Users = msg.users
		m.Following = msg.following
		m.Followers = msg.followers
		if m.Selected >= len(m.Users) {
			m.Selected = max(len(m.Users)-1, 0)
		}
		return m, nil

	case toggledMsg:
		m.Status = msg.status
		if msg.status.Err != nil {
			return m, nil
		}
		return m, tea.Batch(
			func() tea.Msg { return common.RefreshViews },
			clearStatusAfter(2*time.Second),
		)

	case clearStatusMsg:
		m.Status = common.StatusMsg{}
		return m, nil

	case common.SessionState:
		if msg == common.RefreshViews {
			return m, loadUsers(m.session)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
			}
		case "down", "j":
			if m.Selected < len(m.Users)-1 {
				m.Selected++
			}
		case "enter", "f":
			if m.Selected < len(m.Users) {
				user := m.Users[m.Selected]
				return m, toggleFollowCmd(m.session, user, m.Following[user.Id])
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("users (%d)", len(m.Users))))
	s.WriteString("\n\n")

	if len(m.Users) == 0 {
		s.WriteString(common.EmptyStyle.Render("No other users yet."))
	}
	for i, user := range m.Users {
		var marks []string
		if m.Following[user.Id] {
			marks = append(marks, "following")
		}
		if m.Followers[user.Id] {
			marks = append(marks, "follows you")
		}
		userText := fmt.Sprintf("@%s · %s", user.Username, user.Name())
		if len(marks) > 0 {
			userText += " [" + strings.Join(marks, ", ") + "]"
		}
		if user.Bio != "" {
			userText += "\n  " + util.Truncate(user.Bio, 60)
		}

		if i == m.Selected {
			s.WriteString("→ " + selectedStyle.Render(userText))
		} else {
			s.WriteString("  " + userStyle.Render(userText))
		}
		s.WriteString("\n")
	}

	if status := common.RenderStatus(m.Status); status != "" {
		s.WriteString("\n" + status + "\n")
	}
	return s.String()
}

func loadUsers(session common.Session) tea.Cmd {
	return func() tea.Msg {
		msg := usersLoadedMsg{
			users:     []domain.User{},
			following: map[string]bool{},
			followers: map[string]bool{},
		}
		all, err := session.DB.ReadAllUsers()
		if err != nil {
			log.Printf("Failed to load users: %v", err)
			return msg
		}
		for _, u := range all {
			if u.Id != session.UserId {
				msg.users = append(msg.users, u)
			}
		}

		following, err := session.DB.ReadFollowing(session.UserId)
		if err != nil {
			log.Printf("Failed to load following: %v", err)
		}
		for _, id := range following {
			msg.following[id] = true
		}
		followers, err := session.DB.ReadFollowers(session.UserId)
		if err != nil {
			log.Printf("Failed to load followers: %v", err)
		}
		for _, id := range followers {
			msg.followers[id] = true
		}
		return msg
	}
}

func toggleFollowCmd(session common.Session, user domain.User, following bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		text := fmt.Sprintf("Following @%s", user.Username)
		if following {
			_, err = session.DB.Unfollow(session.UserId, user.Id)
			text = fmt.Sprintf("Unfollowed @%s", user.Username)
		} else {
			_, err = session.DB.Follow(session.UserId, user.Id)
		}
		if err != nil {
			log.Printf("Follow toggle failed: %v", err)
			return toggledMsg{status: common.StatusMsg{Err: err}}
		}
		return toggledMsg{status: common.StatusMsg{Text: text}}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
