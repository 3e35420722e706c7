package activitylog

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/deemkeen/tusk/util"
)

const (
	loadLimit    = 100
	itemsPerPage = 15
)

var eventStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(common.COLOR_MAGENTA)).Bold(true)

type Model struct {
	Entries []domain.ActivityLogEntry
	// OnlyMine limits the log to the session user's own actions.
	OnlyMine bool
	Offset   int
	session  common.Session
}

func InitialModel(session common.Session) Model {
	return Model{Entries: []domain.ActivityLogEntry{}, session: session}
}

type entriesLoadedMsg struct {
	entries []domain.ActivityLogEntry
}

func (m Model) Init() tea.Cmd {
	return loadEntries(m.session, m.OnlyMine)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case entriesLoadedMsg:
		m.Entries = msg.entries
		m.Offset = 0
	case common.SessionState:
		if msg == common.RefreshViews {
			return m, loadEntries(m.session, m.OnlyMine)
		}
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Offset > 0 {
				m.Offset--
			}
		case "down", "j":
			if m.Offset < len(m.Entries)-1 {
				m.Offset++
			}
		case "m":
			m.OnlyMine = !m.OnlyMine
			return m, loadEntries(m.session, m.OnlyMine)
		}
	}
	return m, nil
}

func (m Model) View() string {
	var s strings.Builder

	who := "everyone"
	if m.OnlyMine {
		who = "mine"
	}
	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("activity log (%d entries, %s)", len(m.Entries), who)))
	s.WriteString("\n\n")

	if len(m.Entries) == 0 {
		s.WriteString(common.EmptyStyle.Render("Nothing happened yet."))
		return s.String()
	}

	end := min(m.Offset+itemsPerPage, len(m.Entries))
	for _, e := range m.Entries[m.Offset:end] {
		s.WriteString(FormatEntry(e))
		s.WriteString("\n")
	}
	return s.String()
}

// FormatEntry renders one log line: time, event, actor, target and metadata.
func FormatEntry(e domain.ActivityLogEntry) string {
	return fmt.Sprintf("%s %s %s → %s/%s %s",
		common.TimeStyle.Render(e.CreatedAt.Format(util.DateTimeFormat())),
		eventStyle.Render(e.EventType.String()),
		e.ActorId,
		e.TargetType,
		e.TargetId,
		util.FormatMetadata(e.Metadata),
	)
}

func loadEntries(session common.Session, onlyMine bool) tea.Cmd {
	return func() tea.Msg {
		var entries []domain.ActivityLogEntry
		var err error
		if onlyMine {
			entries, err = session.DB.ReadActivityByActor(session.UserId, loadLimit)
		} else {
			entries, err = session.DB.ReadRecentActivity(loadLimit)
		}
		if err != nil {
			log.Error("failed to load activity", "err", err)
			entries = []domain.ActivityLogEntry{}
		}
		return entriesLoadedMsg{entries: entries}
	}
}
