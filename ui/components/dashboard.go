package components

import (
	"fmt"
	"strings"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/ui/styles"
)

func RenderDashboard(d *api.Dashboard) string {
	if d == nil {
		return styles.MutedStyle().PaddingLeft(2).Render("No data yet.") + "\n"
	}

	var b strings.Builder
	row := func(label, value string) {
		b.WriteString(styles.LabelStyle().Render(label) + value + "\n")
	}
	row("Version", d.Version)
	row("Docker", d.DockerVersion)
	row("Stacks", fmt.Sprint(d.StackCount))
	row("Containers", fmt.Sprint(len(d.Containers)))
	b.WriteString("\n")

	if len(d.Containers) == 0 {
		b.WriteString(styles.MutedStyle().PaddingLeft(2).Render("No running containers.") + "\n")
		return b.String()
	}
	b.WriteString(styles.HeaderStyle().Render("Running containers") + "\n")
	for _, c := range d.Containers {
		line := fmt.Sprintf("%-28s %-14s %-24s %s", c.Name, c.Service, c.Image, c.State)
		b.WriteString(styles.RowStyle().Render(line) + "\n")
	}
	return b.String()
}
