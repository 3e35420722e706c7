package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/ui/activitylog"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/deemkeen/tusk/ui/following"
	"github.com/deemkeen/tusk/ui/header"
	"github.com/deemkeen/tusk/ui/myposts"
	"github.com/deemkeen/tusk/ui/timeline"
	"github.com/deemkeen/tusk/ui/users"
	"github.com/deemkeen/tusk/ui/writepost"
)

var (
	modelStyle = lipgloss.NewStyle().
			Align(lipgloss.Top, lipgloss.Top).
			BorderStyle(lipgloss.HiddenBorder()).MarginLeft(1)
	focusedModelStyle = lipgloss.NewStyle().
				Align(lipgloss.Top, lipgloss.Top).
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color(common.COLOR_LIGHTBLUE)).MarginLeft(1)
)

// viewOrder is the tab cycle.
var viewOrder = []common.SessionState{
	common.WritePostView,
	common.TimelineView,
	common.MyPostsView,
	common.FollowingView,
	common.UsersView,
	common.ActivityLogView,
}

type MainModel struct {
	width          int
	height         int
	user           domain.User
	state          common.SessionState
	headerModel    header.Model
	writeModel     writepost.Model
	timelineModel  timeline.Model
	myPostsModel   myposts.Model
	followingModel following.Model
	usersModel     users.Model
	activityModel  activitylog.Model
}

func NewModel(session common.Session, user domain.User, width int, height int) MainModel {
	width = common.DefaultWindowWidth(width)
	height = common.DefaultWindowHeight(height)

	m := MainModel{state: common.WritePostView}
	m.user = user
	m.width = width
	m.height = height
	m.headerModel = header.New(session, &m.user, width)
	m.writeModel = writepost.InitialPost(session, width)
	m.timelineModel = timeline.InitialModel(session, width, height)
	m.myPostsModel = myposts.NewPager(session, width, height)
	m.followingModel = following.InitialModel(session, width, height)
	m.usersModel = users.InitialModel(session)
	m.activityModel = activitylog.InitialModel(session)
	return m
}

func (m MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.headerModel.Init(),
		m.writeModel.Init(),
		m.timelineModel.Init(),
		m.myPostsModel.Init(),
	)
}

func (m MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.headerModel.Width = msg.Width
		return m, nil

	case common.SessionState:
		if msg != common.RefreshViews {
			m.state = msg
			return m, m.viewInitCmd()
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.state = m.step(1)
			return m, m.viewInitCmd()
		case "shift+tab":
			m.state = m.step(-1)
			return m, m.viewInitCmd()
		}
	}

	// data messages reach every view, keys only the focused one
	if _, isKeyMsg := msg.(tea.KeyMsg); !isKeyMsg {
		m.headerModel, cmd = m.headerModel.Update(msg)
		cmds = append(cmds, cmd)
		m.writeModel, cmd = m.writeModel.Update(msg)
		cmds = append(cmds, cmd)
		m.timelineModel, cmd = m.timelineModel.Update(msg)
		cmds = append(cmds, cmd)
		m.myPostsModel, cmd = m.myPostsModel.Update(msg)
		cmds = append(cmds, cmd)
		m.followingModel, cmd = m.followingModel.Update(msg)
		cmds = append(cmds, cmd)
		m.usersModel, cmd = m.usersModel.Update(msg)
		cmds = append(cmds, cmd)
		m.activityModel, cmd = m.activityModel.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}

	switch m.state {
	case common.WritePostView:
		m.writeModel, cmd = m.writeModel.Update(msg)
	case common.TimelineView:
		m.timelineModel, cmd = m.timelineModel.Update(msg)
	case common.MyPostsView:
		m.myPostsModel, cmd = m.myPostsModel.Update(msg)
	case common.FollowingView:
		m.followingModel, cmd = m.followingModel.Update(msg)
	case common.UsersView:
		m.usersModel, cmd = m.usersModel.Update(msg)
	case common.ActivityLogView:
		m.activityModel, cmd = m.activityModel.Update(msg)
	}
	return m, cmd
}

func (m MainModel) step(delta int) common.SessionState {
	for i, state := range viewOrder {
		if state == m.state {
			return viewOrder[(i+delta+len(viewOrder))%len(viewOrder)]
		}
	}
	return common.WritePostView
}

// viewInitCmd reloads the data of the focused view.
func (m *MainModel) viewInitCmd() tea.Cmd {
	switch m.state {
	case common.TimelineView:
		return m.timelineModel.Init()
	case common.MyPostsView:
		return m.myPostsModel.Init()
	case common.FollowingView:
		return m.followingModel.Init()
	case common.UsersView:
		return m.usersModel.Init()
	case common.ActivityLogView:
		return m.activityModel.Init()
	}
	return nil
}

func (m MainModel) View() string {
	availableHeight := m.height - 10
	leftPanelWidth := m.width / 3
	rightPanelWidth := m.width - leftPanelWidth - 6

	left := lipgloss.NewStyle().
		MaxHeight(availableHeight).
		Height(availableHeight).
		Width(leftPanelWidth).
		MaxWidth(leftPanelWidth).
		Render(m.writeModel.View())

	rightContent := m.myPostsModel.View()
	switch m.state {
	case common.TimelineView:
		rightContent = m.timelineModel.View()
	case common.FollowingView:
		rightContent = m.followingModel.View()
	case common.UsersView:
		rightContent = m.usersModel.View()
	case common.ActivityLogView:
		rightContent = m.activityModel.View()
	}
	right := lipgloss.NewStyle().
		MaxHeight(availableHeight).
		Height(availableHeight).
		Width(rightPanelWidth).
		MaxWidth(rightPanelWidth).
		Margin(1).
		Render(rightContent)

	s := m.headerModel.View() + "\n"
	if m.state == common.WritePostView {
		s += lipgloss.JoinHorizontal(lipgloss.Top, focusedModelStyle.Render(left), modelStyle.Render(right))
	} else {
		s += lipgloss.JoinHorizontal(lipgloss.Top, modelStyle.Render(left), focusedModelStyle.Render(right))
	}

	s += common.HelpStyle.Render(fmt.Sprintf(
		"focused > %s\t\tkeys > tab: next • shift+tab: prev • %s • ctrl-c: exit",
		m.focusedName(), m.viewCommands()))
	return s
}

func (m MainModel) focusedName() string {
	switch m.state {
	case common.TimelineView:
		return "timeline"
	case common.MyPostsView:
		return "my posts"
	case common.FollowingView:
		return "following"
	case common.UsersView:
		return "users"
	case common.ActivityLogView:
		return "activity log"
	}
	return "new post"
}

func (m MainModel) viewCommands() string {
	switch m.state {
	case common.TimelineView:
		return "↑/↓: select • l: like • r: repost • f: follow • c: comments • s: scope • o: sort • w: window"
	case common.MyPostsView:
		return "↑/↓: select • d: delete • r: restore"
	case common.FollowingView:
		return "↑/↓: select • u/enter: unfollow"
	case common.UsersView:
		return "↑/↓: select • f/enter: toggle follow"
	case common.ActivityLogView:
		return "↑/↓: scroll • m: only mine"
	}
	return "ctrl+s: post"
}
