package modal

import (
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietStore(opts ...Option) *Store {
	opts = append([]Option{WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))}, opts...)
	return NewStore(opts...)
}

func TestStoreStartsClosed(t *testing.T) {
	s := quietStore()
	snap := s.Snapshot()
	assert.Equal(t, Closed, snap.State)
	assert.Nil(t, snap.Request)
	assert.False(t, s.IsOpen())
}

func TestOpenOverwritesLiveRequest(t *testing.T) {
	s := quietStore()
	var aCalls atomic.Int32

	s.Open(Request{Title: "A", Callback: func(any) { aCalls.Add(1) }})
	s.Open(Request{Title: "B"})

	snap := s.Snapshot()
	require.Equal(t, Open, snap.State)
	require.NotNil(t, snap.Request)
	assert.Equal(t, "B", snap.Request.Title)

	require.NoError(t, s.RunCallback(nil))
	assert.Zero(t, aCalls.Load())
}

func TestRunCallbackInvokesOnceThenCloses(t *testing.T) {
	s := quietStore(WithGrace(time.Hour))
	var got []any
	s.Open(Request{Title: "t", Callback: func(arg any) { got = append(got, arg) }})

	require.NoError(t, s.RunCallback("x"))
	assert.Equal(t, []any{"x"}, got)
	assert.Equal(t, Closed, s.Snapshot().State)

	err := s.RunCallback("again")
	assert.ErrorIs(t, err, ErrNoLiveRequest)
	assert.Len(t, got, 1)
}

func TestRunCallbackWithoutArgument(t *testing.T) {
	s := quietStore()
	called := false
	s.Open(Request{Callback: func(arg any) {
		called = true
		assert.Nil(t, arg)
	}})
	require.NoError(t, s.RunCallback(nil))
	assert.True(t, called)
}

func TestRunCallbackWithNilCallbackJustCloses(t *testing.T) {
	s := quietStore()
	s.Open(Request{Title: "informational", Component: ComponentNetworkError})
	require.NoError(t, s.RunCallback(nil))
	assert.False(t, s.IsOpen())
}

func TestRunCallbackOnEmptyStoreIsNoop(t *testing.T) {
	s := quietStore()
	assert.ErrorIs(t, s.RunCallback(nil), ErrNoLiveRequest)
	assert.Equal(t, Closed, s.Snapshot().State)
}

func TestCloseRetainsPayloadForGrace(t *testing.T) {
	s := quietStore(WithGrace(30 * time.Millisecond))
	s.Open(Request{Title: "title", Message: "message"})
	s.Close()

	snap := s.Snapshot()
	assert.Equal(t, Closed, snap.State)
	require.NotNil(t, snap.Request)
	assert.True(t, snap.Draining())
	assert.Equal(t, "message", snap.Request.Message)

	require.Eventually(t, func() bool {
		return s.Snapshot().Request == nil
	}, time.Second, 5*time.Millisecond)
}

func TestZeroGraceDiscardsImmediately(t *testing.T) {
	s := quietStore(WithGrace(0))
	s.Open(Request{Title: "t"})
	s.Close()
	assert.Nil(t, s.Snapshot().Request)
}

func TestOpenDuringGraceCancelsDiscard(t *testing.T) {
	s := quietStore(WithGrace(20 * time.Millisecond))
	s.Open(Request{Title: "first"})
	s.Close()
	s.Open(Request{Title: "second"})

	time.Sleep(60 * time.Millisecond)

	snap := s.Snapshot()
	assert.Equal(t, Open, snap.State)
	require.NotNil(t, snap.Request)
	assert.Equal(t, "second", snap.Request.Title)
}

func TestCloseWhenClosedIsNoop(t *testing.T) {
	var notified atomic.Int32
	s := quietStore(WithNotify(func(Snapshot) { notified.Add(1) }))
	s.Close()
	assert.Zero(t, notified.Load())
}

func TestNotifyReceivesTransitions(t *testing.T) {
	var mu sync.Mutex
	var states []State
	s := quietStore(WithGrace(0), WithNotify(func(snap Snapshot) {
		mu.Lock()
		states = append(states, snap.State)
		mu.Unlock()
	}))

	s.Open(Request{Title: "t"})
	s.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []State{Open, Closed}, states)
}

func TestConcurrentRunCallbackFiresOnce(t *testing.T) {
	s := quietStore()
	var calls atomic.Int32
	s.Open(Request{Callback: func(any) { calls.Add(1) }})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.RunCallback(nil)
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestSnapshotIsACopy(t *testing.T) {
	s := quietStore()
	s.Open(Request{Title: "t"})
	snap := s.Snapshot()
	snap.Request.Title = "mutated"
	assert.Equal(t, "t", s.Snapshot().Request.Title)
}

// lastNotified records the most recent snapshot handed to notify.
type lastNotified struct {
	mu   sync.Mutex
	snap Snapshot
	n    int
}

func (l *lastNotified) record(snap Snapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.snap = snap
	l.n++
}

func (l *lastNotified) get() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

func TestCallbackReopeningLeavesNewDialogVisible(t *testing.T) {
	var last lastNotified
	s := quietStore(WithGrace(time.Hour), WithNotify(last.record))

	s.Open(Request{Title: "A", Callback: func(any) {
		s.Open(Request{Title: "B"})
	}})
	require.NoError(t, s.RunCallback(nil))

	require.True(t, s.IsOpen())
	got := last.get()
	assert.Equal(t, Open, got.State)
	require.NotNil(t, got.Request)
	assert.Equal(t, "B", got.Request.Title)
}

func TestNotifyEndsOnLiveStateUnderConcurrency(t *testing.T) {
	var last lastNotified
	s := quietStore(WithGrace(time.Millisecond), WithNotify(last.record))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				s.Open(Request{Title: "t"})
				s.Close()
			}
		}()
	}
	wg.Wait()
	s.Open(Request{Title: "final"})

	// Give any pending grace timers a chance to fire; they must not
	// deliver a closed snapshot after the final open.
	time.Sleep(20 * time.Millisecond)

	got := last.get()
	assert.Equal(t, Open, got.State)
	require.NotNil(t, got.Request)
	assert.Equal(t, "final", got.Request.Title)
	assert.Equal(t, s.Snapshot(), got)
}
