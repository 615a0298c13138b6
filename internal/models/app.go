package models

import (
	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/internal/modal"
)

// View is one tab of the console.
type View int

const (
	ViewDashboard View = iota
	ViewStacks
	ViewEvents
)

// Views lists the tabs in display order.
var Views = []View{ViewDashboard, ViewStacks, ViewEvents}

func (v View) String() string {
	switch v {
	case ViewStacks:
		return "Stacks"
	case ViewEvents:
		return "Events"
	default:
		return "Dashboard"
	}
}

// AppModel represents the UI state - only local UI concerns
type AppModel struct {
	View          View             // Active tab
	Dashboard     *api.Dashboard   // Last dashboard pushed by core
	Stacks        []api.Stack      // Last stack list pushed by core
	Events        []api.StackEvent // Event log, oldest first
	SelectedStack int              // Cursor in the stacks tab
	Status        string           // Status bar text
	Loading       bool             // Loading state from core
	Streaming     bool             // Whether the event feed is live
	LoadingDots   int              // Animation counter for loading dots
	Width         int              // Terminal width
	Height        int              // Terminal height
	Modal         modal.Snapshot   // Dialog slot as last reported by the store
}

// CurrentStack is the stack under the cursor, if any.
func (m *AppModel) CurrentStack() (api.Stack, bool) {
	if m.SelectedStack < 0 || m.SelectedStack >= len(m.Stacks) {
		return api.Stack{}, false
	}
	return m.Stacks[m.SelectedStack], true
}

// ModalOpen reports whether key presses belong to the dialog.
func (m *AppModel) ModalOpen() bool {
	return m.Modal.State == modal.Open
}
