package myposts

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

const itemsPerPage = 10

var (
	contentStyle = lipgloss.NewStyle().
			Align(lipgloss.Left)

	deletedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(common.COLOR_GREY)).
			Strikethrough(true)
)

type Model struct {
	Posts    []domain.Post
	Selected int
	Status   common.StatusMsg
	width    int
	height   int
	session  common.Session
}

func NewPager(session common.Session, width int, height int) Model {
	return Model{
		Posts:   []domain.Post{},
		width:   width,
		height:  height,
		session: session,
	}
}

type postsLoadedMsg struct {
	posts []domain.Post
}

type toggledMsg struct {
	status common.StatusMsg
}

func (m Model) Init() tea.Cmd {
	return loadPosts(m.session)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case postsLoadedMsg:
		m.Posts = msg.posts
		if m.Selected >= len(m.Posts) {
			m.Selected = max(len(m.Posts)-1, 0)
		}
		return m, nil

	case toggledMsg:
		m.Status = msg.status
		if msg.status.Err != nil {
			return m, nil
		}
		return m, func() tea.Msg { return common.RefreshViews }

	case common.SessionState:
		if msg == common.RefreshViews {
			return m, loadPosts(m.session)
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.Selected > 0 {
				m.Selected--
			}
		case "down", "j":
			if m.Selected < len(m.Posts)-1 {
				m.Selected++
			}
		case "d":
			if p, ok := m.selected(); ok {
				return m, setDeletedCmd(m.session, p.Id, true)
			}
		case "r":
			if p, ok := m.selected(); ok {
				return m, setDeletedCmd(m.session, p.Id, false)
			}
		}
	}
	return m, nil
}

func (m Model) selected() (domain.Post, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Posts) {
		return domain.Post{}, false
	}
	return m.Posts[m.Selected], true
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(common.CaptionStyle.Render(fmt.Sprintf("my posts (%d posts)", len(m.Posts))))
	s.WriteString("\n\n")

	if len(m.Posts) == 0 {
		s.WriteString(common.EmptyStyle.Render("No posts yet.\nCreate your first post!"))
	} else {
		start := 0
		if m.Selected >= itemsPerPage {
			start = m.Selected - itemsPerPage + 1
		}
		end := min(start+itemsPerPage, len(m.Posts))

		for i := start; i < end; i++ {
			s.WriteString(renderPost(m.Posts[i], i == m.Selected))
			s.WriteString("\n\n")
		}
	}

	if status := common.RenderStatus(m.Status); status != "" {
		s.WriteString(status)
	}
	return s.String()
}

func renderPost(p domain.Post, selected bool) string {
	marker := "  "
	if selected {
		marker = common.SelectedMark.Render("→ ")
	}
	meta := common.FormatTime(p.CreatedAt) + " · " + p.Id
	if p.IsRepost() {
		meta += " · repost of " + p.OriginalPostId
	}
	body := contentStyle.Render(util.Truncate(p.Content, 150))
	if p.IsDeleted {
		meta += " · deleted"
		body = deletedStyle.Render(util.Truncate(p.Content, 150))
	}
	return marker + lipgloss.JoinVertical(lipgloss.Left, common.TimeStyle.Render(meta), body)
}

func loadPosts(session common.Session) tea.Cmd {
	return func() tea.Msg {
		posts, err := session.DB.ReadPostsByAuthor(session.UserId)
		if err != nil {
			log.Printf("Failed to load posts: %v", err)
			return postsLoadedMsg{posts: []domain.Post{}}
		}
		return postsLoadedMsg{posts: posts}
	}
}

func setDeletedCmd(session common.Session, postId string, deleted bool) tea.Cmd {
	return func() tea.Msg {
		var err error
		verb := "deleted"
		if deleted {
			err = session.DB.SoftDeletePost(postId, session.UserId)
		} else {
			verb = "restored"
			err = session.DB.RestorePost(postId, session.UserId)
		}
		if err != nil {
			return toggledMsg{status: common.StatusMsg{Err: err}}
		}
		return toggledMsg{status: common.StatusMsg{Text: fmt.Sprintf("%s %s", verb, postId)}}
	}
}
