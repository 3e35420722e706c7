package writepost

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/deemkeen/tusk/domain"
	"github.com/deemkeen/tusk/ui/common"
	"github.com/deemkeen/tusk/util"
)

type Model struct {
	Textarea    textarea.Model
	Status      common.StatusMsg
	session     common.Session
	lettersLeft int
	width       int
}

func InitialPost(session common.Session, contentWidth int) Model {
	ti := textarea.New()
	ti.Placeholder = "what's happening? #hashtags welcome"
	ti.CharLimit = domain.MaxPostLength
	ti.ShowLineNumbers = false
	ti.SetWidth(30)

	return Model{
		Textarea:    ti,
		session:     session,
		lettersLeft: domain.MaxPostLength,
		width:       common.DefaultCreateNoteWidth(contentWidth),
	}
}

type savedMsg struct {
	status common.StatusMsg
}

func createPostCmd(session common.Session, content string) tea.Cmd {
	return func() tea.Msg {
		id, err := session.DB.CreatePost(session.UserId, content, "")
		if err != nil {
			log.Warn("post could not be saved", "user", session.UserId, "err", err)
			return savedMsg{status: common.StatusMsg{Err: err}}
		}
		return savedMsg{status: common.StatusMsg{Text: fmt.Sprintf("posted %s", id)}}
	}
}

func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlA:
			if m.Textarea.Focused() {
				m.Textarea.Blur()
			}
		case tea.KeyCtrlS:
			return m, createPostCmd(m.session, util.NormalizeInput(m.Textarea.Value()))
		case tea.KeyCtrlC:
			return m, tea.Quit
		default:
			if !m.Textarea.Focused() {
				cmd = m.Textarea.Focus()
				cmds = append(cmds, cmd)
			}
		}

	case savedMsg:
		m.Status = msg.status
		if msg.status.Err != nil {
			return m, nil
		}
		m.Textarea.SetValue("")
		m.lettersLeft = m.CharCount()
		return m, func() tea.Msg { return common.RefreshViews }
	}

	m.Textarea, cmd = m.Textarea.Update(msg)
	m.lettersLeft = m.CharCount()
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m Model) CharCount() int {
	return m.Textarea.CharLimit - m.Textarea.Length() + m.Textarea.LineCount() - 1
}

func (m Model) View() string {
	styledTextarea := lipgloss.NewStyle().PaddingLeft(5).PaddingRight(5).Margin(2).Render(m.Textarea.View())
	charsLeft := common.HelpStyle.PaddingLeft(7).Render(fmt.Sprintf("characters left: %d\n\npost message: ctrl+s",
		m.lettersLeft))
	caption := common.CaptionStyle.PaddingLeft(7).Render("new post")

	s := fmt.Sprintf("%s\n\n%s\n\n%s", caption, styledTextarea, charsLeft)
	if status := common.RenderStatus(m.Status); status != "" {
		s += "\n\n" + lipgloss.NewStyle().PaddingLeft(7).Render(status)
	}
	return s
}
