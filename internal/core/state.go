package core

import (
	"sync"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/internal/eventbus"
)

// MaxEvents bounds the live event log.
const MaxEvents = 200

// ConsoleState is the single source of truth for what the UI shows.
type ConsoleState struct {
	mu        sync.RWMutex
	dashboard *api.Dashboard
	stacks    []api.Stack
	events    []api.StackEvent // oldest first
	maxEvents int
	loading   bool
	streaming bool
	notice    string
	lastError error
}

func NewConsoleState() *ConsoleState {
	return &ConsoleState{
		events:    make([]api.StackEvent, 0, MaxEvents),
		maxEvents: MaxEvents,
	}
}

func (cs *ConsoleState) StartLoading() {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.loading = true
}

// FinishLoading stores the result of a refresh. A failed refresh keeps the
// previous data on screen.
func (cs *ConsoleState) FinishLoading(dashboard *api.Dashboard, stacks []api.Stack, err error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.loading = false
	cs.lastError = err
	if err != nil {
		return
	}
	cs.dashboard = dashboard
	cs.stacks = stacks
}

// AddEvent appends ev, dropping the oldest entry once the log is full.
func (cs *ConsoleState) AddEvent(ev api.StackEvent) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	if len(cs.events) >= cs.maxEvents {
		n := copy(cs.events, cs.events[len(cs.events)-cs.maxEvents+1:])
		cs.events = cs.events[:n]
	}
	cs.events = append(cs.events, ev)
}

func (cs *ConsoleState) Events() []api.StackEvent {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	result := make([]api.StackEvent, len(cs.events))
	copy(result, cs.events)
	return result
}

func (cs *ConsoleState) SetStreaming(streaming bool) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.streaming = streaming
}

func (cs *ConsoleState) SetNotice(notice string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.notice = notice
	cs.lastError = nil
}

func (cs *ConsoleState) SetError(err error) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.lastError = err
}

func (cs *ConsoleState) GetLastError() error {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.lastError
}

// Snapshot copies the state into the event pushed to the UI.
func (cs *ConsoleState) Snapshot() eventbus.StateUpdateEvent {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	ev := eventbus.StateUpdateEvent{
		Loading:   cs.loading,
		Streaming: cs.streaming,
		Notice:    cs.notice,
		Error:     cs.lastError,
		Events:    make([]api.StackEvent, len(cs.events)),
	}
	copy(ev.Events, cs.events)
	if cs.dashboard != nil {
		d := *cs.dashboard
		d.Containers = append([]api.Container(nil), cs.dashboard.Containers...)
		ev.Dashboard = &d
	}
	if cs.stacks != nil {
		ev.Stacks = append([]api.Stack(nil), cs.stacks...)
	}
	return ev
}
