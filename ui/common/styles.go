package common

import "github.com/charmbracelet/lipgloss"

const (
	COLOR_GREY      = "241"
	COLOR_MAGENTA   = "170"
	COLOR_LIGHTBLUE = "69"
	COLOR_PURPLE    = "#7D56F4"
	COLOR_GREEN     = "42"
	COLOR_RED       = "196"
)

var (
	HelpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GREY)).Padding(0, 2)
	CaptionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_MAGENTA)).Padding(2)
	EmptyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GREY)).Italic(true)
	StatusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_GREEN))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_RED))
	TimeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_PURPLE))
	AuthorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color(COLOR_LIGHTBLUE)).Bold(true)
	SelectedMark = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
)

func DefaultWindowWidth(width int) int {
	return width - 10
}

func DefaultWindowHeight(heigth int) int {
	return heigth - 10
}

func DefaultCreateNoteWidth(width int) int {
	return width / 4
}

// RenderStatus renders a StatusMsg, or "" for the zero value.
func RenderStatus(msg StatusMsg) string {
	switch {
	case msg.Err != nil:
		return ErrorStyle.Render(msg.Err.Error())
	case msg.Text != "":
		return StatusStyle.Render(msg.Text)
	}
	return ""
}
