package timeline

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/feed"
	"github.com/deemkeen/tusk/ui/common"
)

const pageSize = 5

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("63")).
			MarginBottom(1)

	postStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	selectedPostStyle = postStyle.
				BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE))

	contentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	placeholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color(common.COLOR_RED)).
				Italic(true)

	replyStyle = lipgloss.NewStyle().PaddingLeft(4)
)

var errInteractionsDisabled = errors.New("interactions are disabled for this post")

type Model struct {
	Items    []feed.Item
	Selected int
	Query    feed.Query
	// Threads holds the comments of OpenPost.
	OpenPost string
	Threads  []feed.CommentThread
	Status   common.StatusMsg
	Width    int
	Height   int
	session  common.Session
	names    map[string]string
}

func InitialModel(session common.Session, width, height int) Model {
	return Model{
		Items:   []feed.Item{},
		Query:   feed.Query{Scope: feed.ScopeAll, Window: feed.WindowNone, Sort: feed.SortRecency},
		Width:   width,
		Height:  height,
		session: session,
		names:   map[string]string{},
	}
}

type itemsLoadedMsg struct {
	items []feed.Item
	names map[string]string
}

type commentsLoadedMsg struct {
	postId  string
	threads []feed.CommentThread
}

type actionMsg struct {
	status common.StatusMsg
}

func (m Model) Init() tea.Cmd {
	return loadItems(m.session, m.Query)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case itemsLoadedMsg:
		m.Items = msg.items
		m.names = msg.names
		if m.Selected >= len(m.Items) {
			m.Selected = max(len(m.Items)-1, 0)
		}
		if m.OpenPost != "" {
			return m, loadComments(m.session, m.OpenPost)
		}
		return m, nil

	case commentsLoadedMsg:
		if msg.postId == m.OpenPost {
			m.Threads = msg.threads
		}
		return m, nil

	case actionMsg:
		m.Status = msg.status
		if msg.status.Err != nil {
			return m, nil
		}
		return m, func() tea.Msg { return common.RefreshViews }

	case common.SessionState:
		if msg == common.RefreshViews {
			return m, loadItems(m.session, m.Query)
		}

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil
	case "down", "j":
		if m.Selected < len(m.Items)-1 {
			m.Selected++
		}
		return m, nil
	case "s":
		if m.Query.Scope == feed.ScopeFollowing {
			m.Query.Scope = feed.ScopeAll
		} else {
			m.Query.Scope = feed.ScopeFollowing
		}
		return m.reload()
	case "o":
		m.Query.Sort = nextSort(m.Query.Sort)
		return m.reload()
	case "w":
		m.Query.Window = nextWindow(m.Query.Window)
		return m.reload()
	}

	item, ok := m.selected()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case "l":
		if !item.InteractionsEnabled {
			m.Status = common.StatusMsg{Err: errInteractionsDisabled}
			return m, nil
		}
		return m, likeCmd(m.session, item.Post.Id)
	case "r":
		if !item.InteractionsEnabled {
			m.Status = common.StatusMsg{Err: errInteractionsDisabled}
			return m, nil
		}
		return m, repostCmd(m.session, item.Post.Id)
	case "f":
		return m, followCmd(m.session, item.AuthorId, m.names[item.AuthorId])
	case "c", "enter":
		if m.OpenPost == item.Post.Id {
			m.OpenPost = ""
			m.Threads = nil
			return m, nil
		}
		m.OpenPost = item.Post.Id
		m.Threads = nil
		return m, loadComments(m.session, item.Post.Id)
	}
	return m, nil
}

func (m Model) reload() (Model, tea.Cmd) {
	m.Selected = 0
	m.OpenPost = ""
	m.Threads = nil
	return m, loadItems(m.session, m.Query)
}

func (m Model) selected() (feed.Item, bool) {
	if m.Selected < 0 || m.Selected >= len(m.Items) {
		return feed.Item{}, false
	}
	return m.Items[m.Selected], true
}

func (m Model) View() string {
	var s strings.Builder

	s.WriteString(headerStyle.Render(fmt.Sprintf("timeline (%d posts) · %s · %s · %s",
		len(m.Items), m.Query.Scope, m.Query.Sort, m.Query.Window)))
	s.WriteString("\n")

	if len(m.Items) == 0 {
		s.WriteString(common.EmptyStyle.Render("No posts yet.\nWrite the first one!"))
		s.WriteString("\n")
	} else {
		start := 0
		if m.Selected >= pageSize {
			start = m.Selected - pageSize + 1
		}
		end := min(start+pageSize, len(m.Items))
		for i := start; i < end; i++ {
			style := postStyle
			if i == m.Selected {
				style = selectedPostStyle
			}
			s.WriteString(style.Render(m.renderItem(m.Items[i])))
			s.WriteString("\n")
			if m.Items[i].Post.Id == m.OpenPost {
				s.WriteString(m.renderThreads())
			}
		}
		if rest := len(m.Items) - end; rest > 0 {
			s.WriteString(common.EmptyStyle.Render(fmt.Sprintf("... and %d more posts", rest)))
			s.WriteString("\n")
		}
	}

	if status := common.RenderStatus(m.Status); status != "" {
		s.WriteString("\n" + status + "\n")
	}
	return s.String()
}

func (m Model) renderItem(item feed.Item) string {
	var lines []string
	if item.Post.IsRepost() {
		lines = append(lines, common.TimeStyle.Render(fmt.Sprintf("🔁 %s reposted · %s", item.ReposterName, common.FormatTime(item.Post.CreatedAt))))
	} else {
		lines = append(lines, common.TimeStyle.Render(common.FormatTime(item.Post.CreatedAt)))
	}

	if item.IsPlaceholder() {
		lines = append(lines, placeholderStyle.Render("Deleted post"))
	} else {
		lines = append(lines, common.AuthorStyle.Render(item.AuthorName))
		lines = append(lines, contentStyle.Render(item.Content))
		if len(item.Tags) > 0 {
			lines = append(lines, common.HelpStyle.UnsetPadding().Render("#"+strings.Join(item.Tags, " #")))
		}
	}

	like := "♡"
	if item.LikedByViewer {
		like = "♥"
	}
	lines = append(lines, fmt.Sprintf("%s %d  💬 %d", like, item.Likes, item.CommentCount))
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) renderThreads() string {
	if len(m.Threads) == 0 {
		return replyStyle.Render(common.EmptyStyle.Render("no comments")) + "\n"
	}
	name := func(id string) string {
		if n, ok := m.names[id]; ok {
			return n
		}
		return id
	}
	var s strings.Builder
	for _, thread := range m.Threads {
		s.WriteString(replyStyle.Render(fmt.Sprintf("%s: %s", common.AuthorStyle.Render(name(thread.Root.AuthorId)), thread.Root.Content)))
		s.WriteString("\n")
		for _, reply := range thread.Replies {
			s.WriteString(replyStyle.PaddingLeft(8).Render(fmt.Sprintf("↳ %s: %s", common.AuthorStyle.Render(name(reply.AuthorId)), reply.Content)))
			s.WriteString("\n")
		}
	}
	return s.String()
}

func nextSort(s feed.Sort) feed.Sort {
	switch s {
	case feed.SortRecency:
		return feed.SortLikes
	case feed.SortLikes:
		return feed.SortComments
	}
	return feed.SortRecency
}

func nextWindow(w feed.Window) feed.Window {
	switch w {
	case feed.WindowNone:
		return feed.WindowDay
	case feed.WindowDay:
		return feed.WindowWeek
	case feed.WindowWeek:
		return feed.WindowMonth
	}
	return feed.WindowNone
}

func loadItems(session common.Session, q feed.Query) tea.Cmd {
	return func() tea.Msg {
		items, err := session.Feed.Feed(session.Viewer(), q)
		if err != nil {
			log.Error("failed to load timeline", "err", err)
			items = []feed.Item{}
		}
		return itemsLoadedMsg{items: items, names: loadNames(session)}
	}
}

func loadNames(session common.Session) map[string]string {
	names := map[string]string{}
	users, err := session.DB.ReadAllUsers()
	if err != nil {
		log.Error("failed to load users", "err", err)
		return names
	}
	for _, u := range users {
		names[u.Id] = u.Name()
	}
	return names
}

func loadComments(session common.Session, postId string) tea.Cmd {
	return func() tea.Msg {
		comments, err := session.DB.ReadCommentsByPostId(postId)
		if err != nil {
			log.Error("failed to load comments", "post", postId, "err", err)
			comments = []domain.Comment{}
		}
		return commentsLoadedMsg{postId: postId, threads: feed.Thread(comments)}
	}
}

func likeCmd(session common.Session, postId string) tea.Cmd {
	return func() tea.Msg {
		liked, count, err := session.DB.ToggleLike(postId, session.UserId)
		if err != nil {
			return actionMsg{status: common.StatusMsg{Err: err}}
		}
		verb := "unliked"
		if liked {
			verb = "liked"
		}
		return actionMsg{status: common.StatusMsg{Text: fmt.Sprintf("%s %s (%d likes)", verb, postId, count)}}
	}
}

func repostCmd(session common.Session, postId string) tea.Cmd {
	return func() tea.Msg {
		id, err := session.DB.CreatePost(session.UserId, "", postId)
		if err != nil {
			return actionMsg{status: common.StatusMsg{Err: err}}
		}
		return actionMsg{status: common.StatusMsg{Text: fmt.Sprintf("reposted as %s", id)}}
	}
}

func followCmd(session common.Session, userId, name string) tea.Cmd {
	return func() tea.Msg {
		if userId == session.UserId {
			return actionMsg{status: common.StatusMsg{Err: fmt.Errorf("%w: you cannot follow yourself", domain.ErrValidation)}}
		}
		created, err := session.DB.Follow(session.UserId, userId)
		if err != nil {
			return actionMsg{status: common.StatusMsg{Err: err}}
		}
		if !created {
			return actionMsg{status: common.StatusMsg{Text: fmt.Sprintf("already following %s", name)}}
		}
		return actionMsg{status: common.StatusMsg{Text: fmt.Sprintf("now following %s", name)}}
	}
}
