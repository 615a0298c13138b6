package transport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idleTestConn(t *testing.T, ids ...string) *streamConn {
	t.Helper()
	c := &streamConn{subs: make(map[string]*Subscription), done: make(chan struct{})}
	for _, id := range ids {
		require.True(t, c.add(&Subscription{id: id}))
	}
	return c
}

func TestLastUnsubscribeRefusesNewSubscriptions(t *testing.T) {
	c := idleTestConn(t, "a")

	live, idle := c.detach(&Subscription{id: "a"})
	assert.True(t, live)
	require.True(t, idle)

	// Until shutdown runs, a new subscription must go to a fresh connection
	// instead of being drained with a nil error.
	assert.False(t, c.add(&Subscription{id: "b"}))
}

func TestLastServerCompleteRefusesNewSubscriptions(t *testing.T) {
	c := idleTestConn(t, "a")

	sub, idle := c.take("a")
	require.NotNil(t, sub)
	require.True(t, idle)
	assert.False(t, c.add(&Subscription{id: "b"}))
}

func TestDetachWithOthersLeftKeepsConnection(t *testing.T) {
	c := idleTestConn(t, "a", "b")

	_, idle := c.take("a")
	assert.False(t, idle)
	live, idle := c.detach(&Subscription{id: "b"})
	assert.True(t, live)
	assert.True(t, idle)

	_, idle = c.take("missing")
	assert.False(t, idle, "an idle connection is only handed to shutdown once")
}
