package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/GhostDeck/internal/api"
)

func StatusStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241")).
		Background(lipgloss.Color("235")).
		Padding(0, 1).
		Width(width)
}

func TabStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Padding(0, 2)
}

func ActiveTabStyle() lipgloss.Style {
	return TabStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Underline(true)
}

func HeaderStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("141")).
		Bold(true).
		Padding(0, 2)
}

func LabelStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Width(18).
		PaddingLeft(2)
}

func SelectedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("39")).
		Border(lipgloss.NormalBorder(), false, false, false, true).
		BorderForeground(lipgloss.Color("39")).
		Padding(0, 1).
		MarginLeft(1)
}

func RowStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Padding(0, 1).
		MarginLeft(2)
}

func MutedStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("241"))
}

func ErrorStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")).
		Bold(true)
}

// StateStyle colours a stack state label.
func StateStyle(state api.StackState) lipgloss.Style {
	color := "245"
	switch state {
	case api.StackRunning:
		color = "72"
	case api.StackStopped:
		color = "196"
	case api.StackRestarting:
		color = "214"
	case api.StackPaused:
		color = "39"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

func ModalStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("214")).
		Padding(1, 2).
		Width(width)
}

func ModalTitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color("214")).
		Bold(true)
}
