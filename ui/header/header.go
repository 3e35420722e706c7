package header

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/deemkeen/tusk/util"
)

type Model struct {
	Width     int
	User      *domain.User
	Followers int
	Following int
	session   common.Session
}

func New(session common.Session, user *domain.User, width int) Model {
	return Model{Width: width, User: user, session: session}
}

type countsLoadedMsg struct {
	followers int
	following int
}

func (m Model) Init() tea.Cmd {
	return loadCounts(m.session)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case countsLoadedMsg:
		m.Followers = msg.followers
		m.Following = msg.following
	case common.SessionState:
		if msg == common.RefreshViews {
			return m, loadCounts(m.session)
		}
	}
	return m, nil
}

func (m Model) View() string {
	return GetHeaderStyle(m.User, m.Followers, m.Following, m.Width)
}

func loadCounts(session common.Session) tea.Cmd {
	return func() tea.Msg {
		followers, following, err := session.DB.ReadFollowCounts(session.UserId)
		if err != nil {
			log.Error("could not load follow counts", "user", session.UserId, "err", err)
		}
		return countsLoadedMsg{followers: followers, following: following}
	}
}

func GetHeaderStyle(user *domain.User, followers, following, width int) string {
	// four boxes, each adding padding and a top/bottom border
	overhead := 16
	availableWidth := width - overhead

	if availableWidth < 40 {
		availableWidth = 40
	}

	usernameWidth := availableWidth / 6
	atWidth := 1
	versionWidth := availableWidth / 3
	countsWidth := availableWidth - usernameWidth - atWidth - versionWidth

	box := func(s string, w int, bg lipgloss.TerminalColor) string {
		return lipgloss.
			NewStyle().
			SetString(s).
			Align(lipgloss.Left).
			Background(bg).
			Padding(1).
			Height(2).
			Width(w).
			Border(lipgloss.NormalBorder(), true, false, true, false).
			BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
			String()
	}

	at := lipgloss.
		NewStyle().
		SetString("@").
		Foreground(lipgloss.Color(common.COLOR_MAGENTA)).
		Padding(1).
		Height(2).
		Width(atWidth).
		Border(lipgloss.NormalBorder(), true, false, true, false).
		BorderForeground(lipgloss.Color(common.COLOR_MAGENTA)).
		String()

	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		box(user.Username, usernameWidth, lipgloss.Color(common.COLOR_PURPLE)),
		at,
		box(util.GetNameAndVersion(), versionWidth, lipgloss.Color(common.COLOR_GREY)),
		box(fmt.Sprintf("%d followers · %d following · since %s",
			followers, following, user.CreatedAt.Format(util.DateTimeFormat())),
			countsWidth, lipgloss.Color(common.COLOR_MAGENTA)),
	)
}
