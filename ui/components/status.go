package components

import (
	"strings"

	"github.com/Rorical/GhostDeck/ui/styles"
)

func RenderStatus(status string, loading, streaming bool, loadingDots int, width int) string {
	statusStyle := styles.StatusStyle(width)

	statusContent := status
	if loading {
		statusContent += strings.Repeat(".", loadingDots)
	}
	feed := "feed: offline"
	if streaming {
		feed = "feed: live"
	}
	if pad := width - 2 - len(statusContent) - len(feed); pad > 0 {
		statusContent += strings.Repeat(" ", pad) + feed
	} else {
		statusContent += "  " + feed
	}

	return statusStyle.Render(statusContent)
}
