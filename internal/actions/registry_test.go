package actions

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/GhostDeck/internal/api"
)

type fakeRunner struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (f *fakeRunner) RunStackAction(_ context.Context, action api.StackAction, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, string(action)+":"+name)
	return f.err
}

func run(t *testing.T, r *Registry, call Call) Result {
	t.Helper()
	ch := make(chan Result, 1)
	r.ExecuteAsync(context.Background(), call, ch)
	res, ok := <-ch
	require.True(t, ok)
	_, ok = <-ch
	assert.False(t, ok, "result channel should be closed after one result")
	return res
}

func TestBuiltinList(t *testing.T) {
	r := NewBuiltin(&fakeRunner{})
	var names []string
	for _, a := range r.List() {
		names = append(names, a.Name())
	}
	assert.Equal(t, []string{"restart", "start", "stop"}, names)

	start, ok := r.Get("start")
	require.True(t, ok)
	assert.False(t, start.Confirm())
	stop, _ := r.Get("stop")
	assert.True(t, stop.Confirm())
}

func TestExecuteAsync(t *testing.T) {
	runner := &fakeRunner{}
	r := NewBuiltin(runner)

	res := run(t, r, Call{ID: "1", Name: "restart", Stack: "demo"})
	assert.NoError(t, res.Err)
	assert.Equal(t, "1", res.CallID)
	assert.Equal(t, "demo", res.Stack)
	assert.Equal(t, []string{"restart:demo"}, runner.calls)
}

func TestExecuteAsyncErrors(t *testing.T) {
	runner := &fakeRunner{err: &api.StackActionError{Action: api.ActionStop, Stack: "demo", Message: "busy"}}
	r := NewBuiltin(runner)

	res := run(t, r, Call{ID: "2", Name: "stop", Stack: "demo"})
	var actionErr *api.StackActionError
	require.True(t, errors.As(res.Err, &actionErr))
	assert.Equal(t, "busy", actionErr.Message)

	res = run(t, r, Call{ID: "3", Name: "pause", Stack: "demo"})
	assert.ErrorContains(t, res.Err, "not found")

	res = run(t, r, Call{ID: "4", Name: "start"})
	assert.ErrorContains(t, res.Err, "stack name is required")
	assert.Len(t, runner.calls, 1)
}
