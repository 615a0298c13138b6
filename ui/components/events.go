package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/ui/styles"
)

// RenderEvents shows the newest events first, at most limit of them.
func RenderEvents(events []api.StackEvent, limit int) string {
	if len(events) == 0 {
		return styles.MutedStyle().PaddingLeft(2).Render("Waiting for events...") + "\n"
	}

	var b strings.Builder
	shown := 0
	for i := len(events) - 1; i >= 0; i-- {
		if limit > 0 && shown == limit {
			break
		}
		ev := events[i]
		line := fmt.Sprintf("%-10s %-20s %-28s %s", ev.Action, ev.StackName, ev.ContainerName, ev.ImageFrom)
		b.WriteString(styles.RowStyle().Render(line) + "\n")
		shown++
	}
	return b.String()
}
