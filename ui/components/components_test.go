package components

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/internal/modal"
	"github.com/Rorical/GhostDeck/internal/models"
)

func TestRenderModal(t *testing.T) {
	assert.Empty(t, RenderModal(modal.Snapshot{}, 80))

	out := RenderModal(modal.Snapshot{State: modal.Open, Request: &modal.Request{
		Title:     "Do you want to continue?",
		Message:   "You are about to close a ticket.",
		Component: modal.ComponentNetworkError,
	}}, 80)
	assert.Contains(t, out, "Do you want to continue?")
	assert.Contains(t, out, "could not be reached")
	assert.Contains(t, out, "dismiss")

	out = RenderModal(modal.Snapshot{State: modal.Open, Request: &modal.Request{
		Title:    "stop stack",
		Callback: func(any) {},
	}}, 80)
	assert.Contains(t, out, "continue")
	assert.NotContains(t, out, "could not be reached")
}

func TestRenderEventsNewestFirst(t *testing.T) {
	out := RenderEvents([]api.StackEvent{{Action: "create"}, {Action: "start"}, {Action: "die"}}, 2)
	assert.Contains(t, out, "die")
	assert.Contains(t, out, "start")
	assert.NotContains(t, out, "create")
	assert.Less(t, strings.Index(out, "die"), strings.Index(out, "start"))
}

func TestRenderStacksAndDashboard(t *testing.T) {
	out := RenderStacks([]api.Stack{{Name: "demo", State: api.StackPaused}}, 0)
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "Paused")

	assert.Contains(t, RenderDashboard(nil), "No data yet")
	out = RenderDashboard(&api.Dashboard{Version: "0.1.0", Containers: []api.Container{{Name: "demo_odoo"}}})
	assert.Contains(t, out, "demo_odoo")
	assert.Contains(t, RenderHelp(models.ViewStacks), "restart")
}
