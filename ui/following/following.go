package following

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/ui/common"
)

var (
	itemStyle = lipgloss.NewStyle().
			PaddingLeft(2).
			MarginBottom(0)

	selectedStyle = itemStyle.
			Foreground(lipgloss.Color("86")).
			Bold(true)
)

type Model struct {
	Following []domain.Follow
	Names     map[string]string
	Selected  int
	Width     int
	Height    int
	Status    common.StatusMsg
	session   common.Session
}

func InitialModel(session common.Session, width, height int) Model {
	return Model{
		Following: []domain.Follow{},
		Names:     map[string]string{},
		Width:     width,
		Height:    height,
		session:   session,
	}
}

type followingLoadedMsg struct {
	following []domain.Follow
	names     map[string]string
}

type unfollowedMsg struct {
	status common.StatusMsg
}

type clearStatusMsg struct{}

func (m Model) Init() tea.Cmd {
	return loadFollowing(m.session)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case followingLoadedMsg:
		m.Following = msg.following
		m.Names = msg.names
		if m.Selected >= len(m.Following) {
			m.Selected = max(len(m.Following)-1, 0)
		}
		return m, nil

	case unfollowedMsg:
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
			return m, loadFollowing(m.session)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
			}
		case "down", "j":
			if m.Selected < len(m.Following)-1 {
				m.Selected++
			}
		case "u", "enter":
			if m.Selected < len(m.Following) {
				target := m.Following[m.Selected].FolloweeId
				return m, unfollowCmd(m.session, target, m.name(target))
			}
		}
	}
	return m, nil
}

func (m Model) name(userId string) string {
	if n, ok := m.Names[userId]; ok {
		return n
	}
	return userId
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("following (%d)", len(m.Following))))
	s.WriteString("\n\n")

	if len(m.Following) == 0 {
		s.WriteString(common.EmptyStyle.Render("You're not following anyone yet.\nPress f on a timeline post to follow its author!"))
	} else {
		displayCount := min(len(m.Following), 10)
		for i := 0; i < displayCount; i++ {
			follow := m.Following[i]
			userText := fmt.Sprintf("• %s (since %s)", m.name(follow.FolloweeId), common.FormatTime(follow.CreatedAt))
			if i == m.Selected {
				s.WriteString("→ " + selectedStyle.Render(userText))
			} else {
				s.WriteString("  " + itemStyle.Render(userText))
			}
			s.WriteString("\n")
		}

		if len(m.Following) > 10 {
			s.WriteString(itemStyle.Render(fmt.Sprintf("... and %d more", len(m.Following)-10)))
			s.WriteString("\n")
		}
	}

	s.WriteString("\n")
	if status := common.RenderStatus(m.Status); status != "" {
		s.WriteString(status)
		s.WriteString("\n\n")
	}
	return s.String()
}

func loadFollowing(session common.Session) tea.Cmd {
	return func() tea.Msg {
		follows, err := session.DB.ReadFollows(session.UserId)
		if err != nil {
			log.Printf("Failed to load following: %v", err)
			follows = []domain.Follow{}
		}
		names := map[string]string{}
		users, err := session.DB.ReadAllUsers()
		if err != nil {
			log.Printf("Failed to load users: %v", err)
		}
		for _, u := range users {
			names[u.Id] = u.Name()
		}
		return followingLoadedMsg{following: follows, names: names}
	}
}

func unfollowCmd(session common.Session, userId, name string) tea.Cmd {
	return func() tea.Msg {
		if _, err := session.DB.Unfollow(session.UserId, userId); err != nil {
			log.Printf("Unfollow failed: %v", err)
			return unfollowedMsg{status: common.StatusMsg{Err: err}}
		}
		return unfollowedMsg{status: common.StatusMsg{Text: fmt.Sprintf("Unfollowed %s", name)}}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
