package app

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/internal/config"
	"github.com/Rorical/GhostDeck/internal/dispatcher"
	"github.com/Rorical/GhostDeck/internal/eventbus"
	"github.com/Rorical/GhostDeck/internal/logging"
	"github.com/Rorical/GhostDeck/internal/metrics"
	"github.com/Rorical/GhostDeck/internal/modal"
	"github.com/Rorical/GhostDeck/internal/update"
)

func newModel(t *testing.T) (*AppModel, *eventbus.EventBus) {
	t.Helper()
	eb := eventbus.NewEventBus()
	disp := dispatcher.NewEventDispatcher(eb)
	t.Cleanup(disp.Stop)
	return &AppModel{dispatcher: disp}, eb
}

func TestViewFollowsCoreEvents(t *testing.T) {
	m, _ := newModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(update.CoreEventMsg{Event: eventbus.StateUpdateEvent{
		Dashboard: &api.Dashboard{Version: "0.1.0", DockerVersion: "24.0.7"},
		Stacks:    []api.Stack{{Name: "demo", State: api.StackRunning}},
	}})

	view := m.View()
	assert.Contains(t, view, "24.0.7")
	assert.Contains(t, view, "Ready")

	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("2")})
	assert.Contains(t, m.View(), "demo")
}

func TestViewShowsDialogOverBody(t *testing.T) {
	m, eb := newModel(t)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m.Update(update.CoreEventMsg{Event: eventbus.ModalStateEvent{Snapshot: modal.Snapshot{
		State:   modal.Open,
		Request: &modal.Request{Title: "Do you want to continue?", Component: modal.ComponentNetworkError},
	}}})

	assert.Contains(t, m.View(), "Do you want to continue?")

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.Len(t, eb.UIToCore(), 1)
	assert.Equal(t, eventbus.ModalResolveEvent{Confirm: false}, <-eb.UIToCore())
}

func TestConnectUsesActiveProfile(t *testing.T) {
	t.Setenv("GHOSTDECK_HOME", t.TempDir())
	cfg, err := config.LoadConfig()
	require.NoError(t, err)

	backend := Connect(cfg, logging.NewNop(), modal.NewStore(), metrics.NewTransport(nil))
	defer backend.Close()
	assert.Equal(t, config.DefaultHTTPURL, backend.unary.Endpoint())
	assert.Equal(t, config.DefaultWSURL, backend.stream.Endpoint())
	assert.NotNil(t, backend.Client)
}

func TestTickRecoversDroppedDialogUpdate(t *testing.T) {
	m, eb := newModel(t)
	store := modal.NewStore(modal.WithLogger(logging.NewNop()))
	m.modals = store
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})

	// The store opens but its notification never reaches the UI.
	store.Open(modal.Request{Title: "Do you want to continue?", Component: modal.ComponentNetworkError})
	assert.NotContains(t, m.View(), "Do you want to continue?")

	m.Update(update.TickMsg(time.Now()))
	assert.Contains(t, m.View(), "Do you want to continue?")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	require.Len(t, eb.UIToCore(), 1)
	assert.Equal(t, eventbus.ModalResolveEvent{Confirm: true}, <-eb.UIToCore())
}
