package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/GhostDeck/internal/graphql"
	"github.com/Rorical/GhostDeck/internal/logging"
	"github.com/Rorical/GhostDeck/internal/modal"
	"github.com/Rorical/GhostDeck/internal/transport"
)

// fakeBackend answers each operation name with a canned response body.
type fakeBackend struct {
	t         *testing.T
	responses map[string]string
	mu        sync.Mutex
	seen      []graphql.Request
}

func (b *fakeBackend) requests() []graphql.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]graphql.Request(nil), b.seen...)
}

func (b *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	require.NoError(b.t, err)
	var req graphql.Request
	require.NoError(b.t, json.Unmarshal(body, &req))
	b.mu.Lock()
	b.seen = append(b.seen, req)
	b.mu.Unlock()

	resp, ok := b.responses[req.OperationName]
	if !ok {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(resp))
}

func newClient(t *testing.T, responses map[string]string, streamURL string) (*Client, *fakeBackend) {
	t.Helper()
	backend := &fakeBackend{t: t, responses: responses}
	r := chi.NewRouter()
	r.Post("/graphql", backend.handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	nop := logging.NewNop()
	router := transport.NewRouter(
		transport.NewHTTPChannel(srv.URL+"/graphql"),
		transport.NewStreamChannel(streamURL, transport.WithStreamLogger(nop)),
		modal.NewStore(modal.WithLogger(nop)),
		transport.WithLogger(nop),
	)
	return NewClient(router, nop), backend
}

func TestDashboard(t *testing.T) {
	client, _ := newClient(t, map[string]string{
		"getDashboard": `{"data":{"version":"0.1.0","dockerVersion":"24.0.7","stackCount":3,
			"containers":[{"id":"abc","name":"demo_odoo","image":"odoo:17","service":"odoo","state":"running"}]}}`,
	}, "ws://127.0.0.1:1")

	d, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "24.0.7", d.DockerVersion)
	assert.Equal(t, 3, d.StackCount)
	require.Len(t, d.Containers, 1)
	assert.Equal(t, "odoo", d.Containers[0].Service)
}

func TestStacksAndStack(t *testing.T) {
	client, backend := newClient(t, map[string]string{
		"getStacks": `{"data":{"stacks":[{"name":"a","state":"RUNNING"},{"name":"b","state":"PAUSED"}]}}`,
		"getStack":  `{"data":{"stack":{"name":"a","state":"RUNNING"}}}`,
	}, "ws://127.0.0.1:1")

	stacks, err := client.Stacks(context.Background())
	require.NoError(t, err)
	require.Len(t, stacks, 2)
	assert.Equal(t, StackPaused, stacks[1].State)

	s, err := client.Stack(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "Running", s.State.Label())
	assert.Equal(t, "a", backend.requests()[1].Variables["name"])
}

func TestStackNotFoundIsApplicationError(t *testing.T) {
	client, _ := newClient(t, map[string]string{
		"getStack": `{"data":null,"errors":[{"message":"Stack missing does not exist"}]}`,
	}, "ws://127.0.0.1:1")

	_, err := client.Stack(context.Background(), "missing")
	var gqlErrs graphql.Errors
	require.ErrorAs(t, err, &gqlErrs)
	assert.Contains(t, err.Error(), "does not exist")
}

func TestStackActions(t *testing.T) {
	client, backend := newClient(t, map[string]string{
		"startStack":   `{"data":{"startStack":{"__typename":"StartStackSuccess","name":"demo"}}}`,
		"stopStack":    `{"data":{"stopStack":{"__typename":"StopStackError","message":"already stopped"}}}`,
		"restartStack": `{"data":{"restartStack":{"__typename":"RestartStackSuccess","name":"demo"}}}`,
	}, "ws://127.0.0.1:1")
	ctx := context.Background()

	require.NoError(t, client.StartStack(ctx, "demo"))
	require.NoError(t, client.RestartStack(ctx, "demo"))

	err := client.StopStack(ctx, "demo")
	var actionErr *StackActionError
	require.ErrorAs(t, err, &actionErr)
	assert.Equal(t, ActionStop, actionErr.Action)
	assert.Equal(t, "already stopped", actionErr.Message)

	assert.Error(t, client.RunStackAction(ctx, StackAction("pause"), "demo"))
	assert.Len(t, backend.requests(), 3)
}

func TestStackStateLabel(t *testing.T) {
	assert.Equal(t, "Restarting", StackRestarting.Label())
	assert.Equal(t, "Stopped", StackStopped.Label())
	assert.Equal(t, "Unknown", StackState("").Label())
	assert.Equal(t, "Dead", StackState("DEAD").Label())
}

func TestSubscribeEvents(t *testing.T) {
	conns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{Subprotocols: []string{transport.Subprotocol}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var init map[string]any
		if ws.ReadJSON(&init) != nil {
			return
		}
		_ = ws.WriteJSON(map[string]string{"type": "connection_ack"})
		conns <- ws
	}))
	t.Cleanup(srv.Close)

	client, _ := newClient(t, nil, "ws"+strings.TrimPrefix(srv.URL, "http"))
	stream, err := client.SubscribeEvents(context.Background())
	require.NoError(t, err)

	var server *websocket.Conn
	select {
	case server = <-conns:
		defer server.Close()
	case <-time.After(2 * time.Second):
		t.Fatal("no streaming connection")
	}

	var start struct {
		ID   string `json:"id"`
		Type string `json:"type"`
	}
	require.NoError(t, server.ReadJSON(&start))
	require.Equal(t, "subscribe", start.Type)

	require.NoError(t, server.WriteJSON(map[string]any{
		"id":   start.ID,
		"type": "next",
		"payload": map[string]any{"data": map[string]any{"events": map[string]any{
			"id": "e1", "action": "start", "containerName": "demo_odoo", "stackName": "demo",
		}}},
	}))

	select {
	case ev := <-stream.C():
		assert.Equal(t, "e1", ev.ID)
		assert.Equal(t, "demo", ev.StackName)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	stream.Unsubscribe()
	select {
	case _, ok := <-stream.C():
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("stream not closed after unsubscribe")
	}
	assert.NoError(t, stream.Err())
}
