package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/GhostDeck/internal/models"
	"github.com/Rorical/GhostDeck/ui/styles"
)

func RenderTabs(active models.View) string {
	tabs := make([]string, 0, len(models.Views))
	for i, v := range models.Views {
		label := fmt.Sprintf("%d %s", i+1, v)
		if v == active {
			tabs = append(tabs, styles.ActiveTabStyle().Render(label))
		} else {
			tabs = append(tabs, styles.TabStyle().Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...) + "\n\n"
}

// RenderHelp lists the keys valid in the active tab.
func RenderHelp(active models.View) string {
	help := "tab switch view · r refresh · q quit"
	if active == models.ViewStacks {
		help = "↑/↓ select · s start · x stop · R restart · " + help
	}
	return styles.MutedStyle().PaddingLeft(2).Render(help)
}
