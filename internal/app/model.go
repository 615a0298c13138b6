package app

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Rorical/GhostDeck/internal/models"
	"github.com/Rorical/GhostDeck/internal/update"
	"github.com/Rorical/GhostDeck/ui/components"
)

func (m *AppModel) Init() tea.Cmd {
	return tea.Batch(
		update.TickCmd(),
		m.dispatcher.ListenForUIEvents(),
	)
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	// Handle core events and continue listening
	if coreEvent, ok := msg.(update.CoreEventMsg); ok {
		cmd := update.HandleCoreEvent(&m.appModel, coreEvent)
		return m, tea.Batch(cmd, m.dispatcher.ListenForUIEvents())
	}

	if _, ok := msg.(update.TickMsg); ok && m.modals != nil {
		m.appModel.Modal = m.modals.Snapshot()
	}

	cmd := update.HandleUpdateWithEventBus(&m.appModel, msg, m.dispatcher.GetEventBus())
	return m, cmd
}

func (m *AppModel) View() string {
	am := &m.appModel
	bodyHeight := max(am.Height-6, 3)

	var body string
	if dialog := components.RenderModal(am.Modal, am.Width); dialog != "" {
		body = lipgloss.Place(am.Width, bodyHeight, lipgloss.Center, lipgloss.Center, dialog)
	} else {
		switch am.View {
		case models.ViewStacks:
			body = components.RenderStacks(am.Stacks, am.SelectedStack)
		case models.ViewEvents:
			body = components.RenderEvents(am.Events, bodyHeight)
		default:
			body = components.RenderDashboard(am.Dashboard)
		}
		body = lipgloss.NewStyle().Height(bodyHeight).Render(body)
	}

	var b strings.Builder
	b.WriteString(components.RenderTabs(am.View))
	b.WriteString(body)
	b.WriteString("\n")
	b.WriteString(components.RenderHelp(am.View))
	b.WriteString("\n")
	b.WriteString(components.RenderStatus(am.Status, am.Loading, am.Streaming, am.LoadingDots, am.Width))

	return b.String()
}
