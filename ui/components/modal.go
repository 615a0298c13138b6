package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/GhostDeck/internal/modal"
	"github.com/Rorical/GhostDeck/ui/styles"
)

const networkErrorBody = "The backend could not be reached or failed to answer.\n" +
	"Check that the service is running and the active profile points at it."

// RenderModal draws the dialog held in snap, or "" when there is none to
// show. A draining dialog is drawn muted until its payload is discarded.
func RenderModal(snap modal.Snapshot, width int) string {
	if snap.Request == nil {
		return ""
	}
	req := snap.Request

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle().Render(req.Title) + "\n\n")
	if req.Message != "" {
		b.WriteString(req.Message + "\n")
	}
	if req.Component == modal.ComponentNetworkError {
		b.WriteString("\n" + styles.ErrorStyle().Render(networkErrorBody) + "\n")
	}
	b.WriteString("\n")
	if req.Callback != nil {
		b.WriteString(styles.MutedStyle().Render("[enter] continue   [esc] cancel"))
	} else {
		b.WriteString(styles.MutedStyle().Render("[enter] ok   [esc] dismiss"))
	}

	boxWidth := min(max(width-8, 20), 72)
	box := styles.ModalStyle(boxWidth)
	if snap.Draining() {
		box = box.BorderForeground(lipgloss.Color("241")).Foreground(lipgloss.Color("241"))
	}
	return box.Render(b.String())
}
