package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/ui/styles"
)

func RenderStacks(stacks []api.Stack, selected int) string {
	if len(stacks) == 0 {
		return styles.MutedStyle().PaddingLeft(2).Render("No stacks.") + "\n"
	}

	var b strings.Builder
	for i, s := range stacks {
		line := fmt.Sprintf("%-32s %s", s.Name, styles.StateStyle(s.State).Render(s.State.Label()))
		if i == selected {
			b.WriteString(styles.SelectedStyle().Render(line) + "\n")
		} else {
			b.WriteString(styles.RowStyle().Render(line) + "\n")
		}
	}
	return b.String()
}
