// Package modal holds the console's single confirmation dialog slot.
//
// At most one Request is live at a time. Open replaces whatever was live
// without running its callback. Close hides the dialog at once but keeps the
// payload readable for a grace interval so exit transitions can still render
// it; after that the payload is discarded.
package modal

import (
	"errors"
	"log/slog"
	"sync"
	"time"
)

// DefaultGrace is how long a closed dialog's payload stays readable.
const DefaultGrace = time.Second

// ComponentNetworkError tags the dialog body shown for transport failures.
const ComponentNetworkError = "network-error"

// ErrNoLiveRequest is returned by RunCallback when no dialog is open.
var ErrNoLiveRequest = errors.New("modal: no live request")

// Callback resolves a dialog. arg is nil when the resolver passed nothing.
type Callback func(arg any)

// Request is the payload behind one dialog.
type Request struct {
	Title     string
	Message   string
	Callback  Callback
	Component string
}

// State is the dialog lifecycle as seen by renderers.
type State int

const (
	Closed State = iota
	Open
)

func (s State) String() string {
	if s == Open {
		return "open"
	}
	return "closed"
}

// Snapshot is the (state, request) pair a renderer reads. Request is nil
// once the grace interval after closing has elapsed.
type Snapshot struct {
	State   State
	Request *Request
}

// Draining reports a closed dialog whose payload is still retained.
func (s Snapshot) Draining() bool {
	return s.State == Closed && s.Request != nil
}

type Option func(*Store)

// WithGrace overrides DefaultGrace. Zero discards the payload on close.
func WithGrace(d time.Duration) Option {
	return func(s *Store) {
		if d >= 0 {
			s.grace = d
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithNotify registers fn to receive every snapshot change. fn is called
// without the store lock held, one call at a time, and always with the
// store's current snapshot, so the last call seen reflects the live state.
// fn must not call back into the store.
func WithNotify(fn func(Snapshot)) Option {
	return func(s *Store) {
		s.notify = fn
	}
}

// Store is safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	emitMu sync.Mutex
	grace  time.Duration
	logger *slog.Logger
	notify func(Snapshot)

	state State
	req   *Request
	gen   uint64
	timer *time.Timer
}

func NewStore(opts ...Option) *Store {
	s := &Store{
		grace:  DefaultGrace,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	defaultOnce  sync.Once
	defaultStore *Store
)

// Init creates the process-wide store. Only the first call's options apply.
func Init(opts ...Option) *Store {
	defaultOnce.Do(func() {
		defaultStore = NewStore(opts...)
	})
	return defaultStore
}

// Default returns the store created by Init, creating one with defaults if
// Init was never called.
func Default() *Store {
	return Init()
}

// Open installs req as the live request.
func (s *Store) Open(req Request) {
	s.mu.Lock()
	s.stopTimerLocked()
	if s.state == Open && s.req != nil {
		s.logger.Debug("Replacing live confirmation", "previous", s.req.Title, "next", req.Title)
	}
	s.gen++
	s.req = &req
	s.state = Open
	s.mu.Unlock()

	s.publish()
}

// Close hides the dialog and schedules the payload to be discarded.
func (s *Store) Close() {
	s.mu.Lock()
	if !s.closeLocked() {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.publish()
}

// RunCallback resolves the live request: the store closes and publishes
// first, so a second call can never reach the same callback, then the
// callback runs with arg. A callback may open a new dialog.
func (s *Store) RunCallback(arg any) error {
	s.mu.Lock()
	if s.state != Open || s.req == nil {
		s.mu.Unlock()
		s.logger.Warn("Confirmation callback requested with no live dialog")
		return ErrNoLiveRequest
	}
	cb := s.req.Callback
	s.closeLocked()
	s.mu.Unlock()

	s.publish()
	if cb != nil {
		cb(arg)
	}
	return nil
}

// Snapshot returns the current state and a copy of the retained request.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Open
}

// closeLocked reports whether anything changed.
func (s *Store) closeLocked() bool {
	if s.state == Closed {
		return false
	}
	s.state = Closed

	if s.grace == 0 {
		s.req = nil
		return true
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.grace, func() {
		s.mu.Lock()
		if s.gen != gen || s.state != Closed {
			s.mu.Unlock()
			return
		}
		s.req = nil
		s.timer = nil
		s.mu.Unlock()

		s.publish()
	})
	return true
}

func (s *Store) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{State: s.state}
	if s.req != nil {
		req := *s.req
		snap.Request = &req
	}
	return snap
}

// publish hands the current snapshot to notify. Snapshots are read under
// emitMu so a slow caller can never deliver an older state after a newer one.
func (s *Store) publish() {
	if s.notify == nil {
		return
	}
	s.emitMu.Lock()
	defer s.emitMu.Unlock()
	s.notify(s.Snapshot())
}
