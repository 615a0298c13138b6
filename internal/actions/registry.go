// Package actions holds the named stack actions the console can run.
package actions

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Rorical/GhostDeck/internal/api"
)

// Action is a named operation applied to a single stack.
type Action interface {
	Name() string
	Description() string
	// Confirm reports whether the user must confirm before Execute runs.
	Confirm() bool
	Execute(ctx context.Context, stack string) error
}

// Call asks for one action on one stack.
type Call struct {
	ID    string
	Name  string
	Stack string
}

// Result is delivered once per Call.
type Result struct {
	CallID string
	Name   string
	Stack  string
	Err    error
}

// Registry manages available actions
type Registry struct {
	actions map[string]Action
	mu      sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]Action),
	}
}

// Register adds an action, replacing any with the same name.
func (r *Registry) Register(action Action) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[action.Name()] = action
}

func (r *Registry) Get(name string) (Action, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	action, exists := r.actions[name]
	return action, exists
}

// List returns all registered actions sorted by name.
func (r *Registry) List() []Action {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Action, 0, len(r.actions))
	for _, action := range r.actions {
		list = append(list, action)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name() < list[j].Name() })
	return list
}

// ExecuteAsync runs call in its own goroutine, sends exactly one Result on
// resultChan and closes it.
func (r *Registry) ExecuteAsync(ctx context.Context, call Call, resultChan chan<- Result) {
	go func() {
		defer close(resultChan)

		result := Result{CallID: call.ID, Name: call.Name, Stack: call.Stack}
		action, exists := r.Get(call.Name)
		if !exists {
			result.Err = fmt.Errorf("action %q not found", call.Name)
			resultChan <- result
			return
		}

		result.Err = action.Execute(ctx, call.Stack)
		resultChan <- result
	}()
}

// Runner is the part of api.Client stack actions need.
type Runner interface {
	RunStackAction(ctx context.Context, action api.StackAction, name string) error
}

type stackAction struct {
	action      api.StackAction
	description string
	confirm     bool
	runner      Runner
}

func (a *stackAction) Name() string        { return string(a.action) }
func (a *stackAction) Description() string { return a.description }
func (a *stackAction) Confirm() bool       { return a.confirm }

func (a *stackAction) Execute(ctx context.Context, stack string) error {
	if stack == "" {
		return fmt.Errorf("%s: stack name is required", a.action)
	}
	return a.runner.RunStackAction(ctx, a.action, stack)
}

// NewBuiltin returns a registry holding start, stop and restart.
func NewBuiltin(runner Runner) *Registry {
	r := NewRegistry()
	r.Register(&stackAction{action: api.ActionStart, description: "Start all services of a stack", runner: runner})
	r.Register(&stackAction{action: api.ActionStop, description: "Stop all services of a stack", confirm: true, runner: runner})
	r.Register(&stackAction{action: api.ActionRestart, description: "Restart all services of a stack", confirm: true, runner: runner})
	return r
}
