package update

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/internal/eventbus"
	"github.com/Rorical/GhostDeck/internal/models"
)

// stackKeys maps keys in the stacks tab to action names.
var stackKeys = map[string]api.StackAction{
	"s": api.ActionStart,
	"x": api.ActionStop,
	"R": api.ActionRestart,
}

// HandleKeyMsgWithEventBus handles keyboard input using event bus
func HandleKeyMsgWithEventBus(appModel *models.AppModel, keyMsg tea.KeyMsg, eb *eventbus.EventBus) tea.Cmd {
	key := keyMsg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}

	// The dialog captures input while it is open.
	if appModel.ModalOpen() {
		switch key {
		case "enter", "y":
			send(appModel, eb, eventbus.ModalResolveEvent{Confirm: true})
		case "esc", "n":
			send(appModel, eb, eventbus.ModalResolveEvent{Confirm: false})
		}
		return nil
	}

	switch key {
	case "q":
		return tea.Quit
	case "tab", "right", "l":
		appModel.View = models.Views[(int(appModel.View)+1)%len(models.Views)]
	case "shift+tab", "left", "h":
		appModel.View = models.Views[(int(appModel.View)+len(models.Views)-1)%len(models.Views)]
	case "1", "2", "3":
		appModel.View = models.Views[int(key[0]-'1')]
	case "r":
		send(appModel, eb, eventbus.RefreshEvent{})
	case "up", "k":
		if appModel.View == models.ViewStacks && appModel.SelectedStack > 0 {
			appModel.SelectedStack--
		}
	case "down", "j":
		if appModel.View == models.ViewStacks && appModel.SelectedStack < len(appModel.Stacks)-1 {
			appModel.SelectedStack++
		}
	default:
		action, ok := stackKeys[key]
		if !ok || appModel.View != models.ViewStacks {
			return nil
		}
		stack, ok := appModel.CurrentStack()
		if !ok {
			appModel.Status = "No stack selected"
			return nil
		}
		send(appModel, eb, eventbus.StackActionEvent{Action: string(action), Stack: stack.Name})
	}
	return nil
}

func send(appModel *models.AppModel, eb *eventbus.EventBus, event eventbus.UIEvent) {
	if err := eb.SendToCore(event); err != nil {
		appModel.Status = "Error sending event: " + err.Error()
	}
}

// CoreEventMsg wraps core events for Bubble Tea
type CoreEventMsg struct {
	Event eventbus.CoreEvent
}

// HandleCoreEvent processes events from the core
func HandleCoreEvent(appModel *models.AppModel, coreEventMsg CoreEventMsg) tea.Cmd {
	switch event := coreEventMsg.Event.(type) {
	case eventbus.StateUpdateEvent:
		appModel.Dashboard = event.Dashboard
		appModel.Stacks = event.Stacks
		appModel.Events = event.Events
		appModel.Loading = event.Loading
		appModel.Streaming = event.Streaming
		if appModel.SelectedStack >= len(appModel.Stacks) {
			appModel.SelectedStack = max(len(appModel.Stacks)-1, 0)
		}

		switch {
		case event.Error != nil:
			appModel.Status = "Error: " + event.Error.Error()
		case event.Loading:
			appModel.Status = "Loading"
		case event.Notice != "":
			appModel.Status = event.Notice
		default:
			appModel.Status = "Ready"
		}
	case eventbus.ModalStateEvent:
		appModel.Modal = event.Snapshot
	}

	return nil
}

type TickMsg time.Time

func TickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func HandleWindowSizeMsg(appModel *models.AppModel, sizeMsg tea.WindowSizeMsg) {
	appModel.Width = sizeMsg.Width
	appModel.Height = sizeMsg.Height
}

func HandleTickMsg(appModel *models.AppModel) tea.Cmd {
	// Only handle UI animations - loading dots
	if appModel.Loading {
		appModel.LoadingDots = (appModel.LoadingDots + 1) % 4
	}
	return TickCmd()
}
