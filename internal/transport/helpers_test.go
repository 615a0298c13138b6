package transport

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"github.com/Rorical/GhostDeck/internal/graphql"
	"github.com/Rorical/GhostDeck/internal/logging"
	"github.com/Rorical/GhostDeck/internal/modal"
)

type recordingNotifier struct {
	mu   sync.Mutex
	reqs []modal.Request
}

func (n *recordingNotifier) Open(req modal.Request) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reqs = append(n.reqs, req)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reqs)
}

func (n *recordingNotifier) last() modal.Request {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.reqs[len(n.reqs)-1]
}

// newGraphQLServer serves handler on POST /graphql.
func newGraphQLServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/graphql", handler)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func replyJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

// newStreamServer accepts graphql-ws connections, acknowledges them and hands
// the server side of each to the test.
func newStreamServer(t *testing.T) (*httptest.Server, <-chan *websocket.Conn) {
	t.Helper()
	conns := make(chan *websocket.Conn, 4)
	upgrader := websocket.Upgrader{Subprotocols: []string{Subprotocol}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		var init wsMessage
		if err := ws.ReadJSON(&init); err != nil || init.Type != msgConnectionInit {
			ws.Close()
			return
		}
		if err := ws.WriteJSON(wsMessage{Type: msgConnectionAck}); err != nil {
			ws.Close()
			return
		}
		conns <- ws
	}))
	t.Cleanup(srv.Close)
	return srv, conns
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func acceptConn(t *testing.T, conns <-chan *websocket.Conn) *websocket.Conn {
	t.Helper()
	select {
	case ws := <-conns:
		t.Cleanup(func() { ws.Close() })
		return ws
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for streaming connection")
		return nil
	}
}

func readMessage(t *testing.T, ws *websocket.Conn) wsMessage {
	t.Helper()
	require.NoError(t, ws.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg wsMessage
	require.NoError(t, ws.ReadJSON(&msg))
	return msg
}

func pushNext(t *testing.T, ws *websocket.Conn, id, data string) {
	t.Helper()
	payload, err := json.Marshal(map[string]json.RawMessage{"data": json.RawMessage(data)})
	require.NoError(t, err)
	require.NoError(t, ws.WriteJSON(wsMessage{ID: id, Type: msgNext, Payload: payload}))
}

func receive(t *testing.T, sub *Subscription) *graphql.Response {
	t.Helper()
	select {
	case v, ok := <-sub.C():
		require.True(t, ok, "subscription ended early")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a pushed value")
		return nil
	}
}

func waitDone(t *testing.T, sub *Subscription) {
	t.Helper()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for subscription to end")
	}
}

func newTestRouter(unaryURL, streamURL string, notifier Notifier, opts ...RouterOption) *Router {
	nop := logging.NewNop()
	opts = append([]RouterOption{WithLogger(nop)}, opts...)
	return NewRouter(
		NewHTTPChannel(unaryURL),
		NewStreamChannel(streamURL, WithStreamLogger(nop)),
		notifier,
		opts...,
	)
}
