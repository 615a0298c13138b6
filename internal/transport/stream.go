package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/Rorical/GhostDeck/internal/graphql"
)

// Subprotocol is the graphql-ws wire protocol spoken on the streaming channel.
const Subprotocol = "graphql-transport-ws"

const (
	msgConnectionInit = "connection_init"
	msgConnectionAck  = "connection_ack"
	msgPing           = "ping"
	msgPong           = "pong"
	msgSubscribe      = "subscribe"
	msgNext           = "next"
	msgError          = "error"
	msgComplete       = "complete"
)

// ErrChannelClosed ends subscriptions still open when the channel is closed.
var ErrChannelClosed = errors.New("transport: streaming channel closed")

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// StreamChannel is the streaming channel. It dials lazily on the first
// subscription, multiplexes every subscription over one connection and hangs
// up once the last one ends.
type StreamChannel struct {
	endpoint string
	dialer   *websocket.Dialer
	header   http.Header
	logger   *slog.Logger

	mu        sync.Mutex
	conn      *streamConn
	onFailure func(*Error)
}

type StreamOption func(*StreamChannel)

func WithDialer(d *websocket.Dialer) StreamOption {
	return func(c *StreamChannel) {
		c.dialer = d
	}
}

func WithStreamHeader(key, value string) StreamOption {
	return func(c *StreamChannel) {
		c.header.Set(key, value)
	}
}

func WithStreamLogger(logger *slog.Logger) StreamOption {
	return func(c *StreamChannel) {
		c.logger = logger
	}
}

func NewStreamChannel(endpoint string, opts ...StreamOption) *StreamChannel {
	c := &StreamChannel{
		endpoint: endpoint,
		dialer:   websocket.DefaultDialer,
		header:   http.Header{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *StreamChannel) Endpoint() string {
	return c.endpoint
}

// SetFailureHandler registers fn to be called once each time an established
// connection fails, however many subscriptions it was carrying.
func (c *StreamChannel) SetFailureHandler(fn func(*Error)) {
	c.mu.Lock()
	c.onFailure = fn
	c.mu.Unlock()
}

// Subscribe starts op on the shared connection, dialing it first if needed.
func (c *StreamChannel) Subscribe(ctx context.Context, op graphql.Operation) (*Subscription, error) {
	payload, err := json.Marshal(op.Request())
	if err != nil {
		return nil, err
	}

	sub := newSubscription(uuid.NewString())

	c.mu.Lock()
	conn := c.conn
	if conn == nil || !conn.add(sub) {
		conn, err = c.dial(ctx)
		if err != nil {
			c.mu.Unlock()
			sub.finish(err)
			return nil, err
		}
		c.conn = conn
		conn.add(sub)
	}
	c.mu.Unlock()

	if err := conn.write(wsMessage{ID: sub.id, Type: msgSubscribe, Payload: payload}); err != nil {
		te, first := conn.fail(err)
		if !first {
			te = &Error{Channel: graphql.Streaming, Message: te.Message, Err: te.Err, reported: true}
		}
		return nil, te
	}

	c.logger.Debug("Subscription started", "id", sub.id, "operation", op.Name)
	return sub, nil
}

// Close hangs up the current connection. Open subscriptions end with
// ErrChannelClosed.
func (c *StreamChannel) Close() {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		conn.hangUp(ErrChannelClosed)
	}
}

func (c *StreamChannel) dial(ctx context.Context) (*streamConn, error) {
	dialer := *c.dialer
	dialer.Subprotocols = []string{Subprotocol}

	ws, resp, err := dialer.DialContext(ctx, c.endpoint, c.header)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		te := &Error{Channel: graphql.Streaming, Message: err.Error(), Err: err}
		// A non-upgrade reply below 400 carries no failure status of its own.
		if resp != nil && resp.StatusCode >= http.StatusBadRequest {
			te.StatusCode = resp.StatusCode
			te.Message = http.StatusText(resp.StatusCode)
		} else if resp != nil {
			te.Message = "handshake refused with " + resp.Status
		}
		return nil, te
	}

	if err := c.handshake(ctx, ws); err != nil {
		ws.Close()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Channel: graphql.Streaming, Message: "connection init failed: " + err.Error(), Err: err}
	}

	conn := &streamConn{
		ws:      ws,
		subs:    make(map[string]*Subscription),
		done:    make(chan struct{}),
		logger:  c.logger,
		release: c.release,
		report:  c.report,
	}
	go conn.readLoop()
	c.logger.Debug("Streaming connection established", "endpoint", c.endpoint)
	return conn, nil
}

func (c *StreamChannel) handshake(ctx context.Context, ws *websocket.Conn) error {
	stop := context.AfterFunc(ctx, func() {
		ws.Close()
	})
	defer stop()

	if err := ws.WriteJSON(wsMessage{Type: msgConnectionInit, Payload: json.RawMessage("{}")}); err != nil {
		return err
	}
	for {
		var msg wsMessage
		if err := ws.ReadJSON(&msg); err != nil {
			return err
		}
		switch msg.Type {
		case msgConnectionAck:
			return nil
		case msgPing:
			if err := ws.WriteJSON(wsMessage{Type: msgPong}); err != nil {
				return err
			}
		default:
			return errors.New("unexpected message " + msg.Type + " before connection_ack")
		}
	}
}

// release forgets conn once it has no subscriptions left or has failed.
func (c *StreamChannel) release(conn *streamConn) {
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
}

func (c *StreamChannel) report(te *Error) {
	c.mu.Lock()
	fn := c.onFailure
	c.mu.Unlock()

	if fn != nil {
		fn(te)
	}
}

type streamConn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
	logger  *slog.Logger
	release func(*streamConn)
	report  func(*Error)

	mu      sync.Mutex
	subs    map[string]*Subscription
	done    chan struct{}
	failed  bool
	closing bool
}

func (c *streamConn) isDone() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// add attaches sub unless the connection is already going away.
func (c *streamConn) add(sub *Subscription) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed || c.closing {
		return false
	}
	sub.conn = c
	c.subs[sub.id] = sub
	return true
}

// take detaches a subscription the server ended. The second result reports
// whether the connection is now idle, in which case it is already marked
// closing and the caller must call shutdown.
func (c *streamConn) take(id string) (*Subscription, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	sub := c.subs[id]
	if sub == nil {
		return nil, false
	}
	delete(c.subs, id)
	return sub, c.markIdleLocked()
}

// detach drops a subscription the consumer ended. live reports whether it
// was still attached; idle has the same meaning as for take.
func (c *streamConn) detach(sub *Subscription) (live, idle bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, live = c.subs[sub.id]
	delete(c.subs, sub.id)
	return live, c.markIdleLocked()
}

// markIdleLocked marks a connection with no subscriptions left as closing,
// so add refuses it from here on.
func (c *streamConn) markIdleLocked() bool {
	if len(c.subs) > 0 || c.failed || c.closing {
		return false
	}
	c.closing = true
	return true
}

func (c *streamConn) lookup(id string) *Subscription {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.subs[id]
}

func (c *streamConn) write(msg wsMessage) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteJSON(msg)
}

// forget drops a subscription the consumer ended and hangs up when it was
// the last one.
func (c *streamConn) forget(sub *Subscription) {
	live, idle := c.detach(sub)

	if live && !c.isDone() {
		if err := c.write(wsMessage{ID: sub.id, Type: msgComplete}); err != nil {
			c.logger.Debug("Failed to send complete", "id", sub.id, "error", err)
		}
	}
	if idle {
		c.shutdown(nil, nil)
	}
}

// hangUp closes the connection on purpose. It never counts as a failure.
func (c *streamConn) hangUp(reason error) {
	c.mu.Lock()
	if c.failed || c.closing {
		c.mu.Unlock()
		return
	}
	c.closing = true
	subs := c.drainLocked()
	c.mu.Unlock()

	c.shutdown(subs, reason)
}

// shutdown ends subs with reason and closes a connection already marked
// closing.
func (c *streamConn) shutdown(subs []*Subscription, reason error) {
	c.release(c)
	for _, sub := range subs {
		sub.finish(reason)
	}

	c.writeMu.Lock()
	_ = c.ws.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.writeMu.Unlock()
	c.ws.Close()
}

// fail tears the connection down after an unexpected error. first is false
// when the failure was already handled by someone else.
func (c *streamConn) fail(cause error) (te *Error, first bool) {
	te = &Error{Channel: graphql.Streaming, Message: "connection lost: " + cause.Error(), Err: cause}

	c.mu.Lock()
	if c.failed || c.closing {
		c.mu.Unlock()
		return te, false
	}
	c.failed = true
	subs := c.drainLocked()
	c.mu.Unlock()

	c.release(c)
	c.ws.Close()
	for _, sub := range subs {
		sub.finish(te)
	}
	return te, true
}

func (c *streamConn) drainLocked() []*Subscription {
	subs := make([]*Subscription, 0, len(c.subs))
	for id, sub := range c.subs {
		subs = append(subs, sub)
		delete(c.subs, id)
	}
	return subs
}

func (c *streamConn) readLoop() {
	defer close(c.done)

	for {
		var msg wsMessage
		if err := c.ws.ReadJSON(&msg); err != nil {
			if te, first := c.fail(err); first {
				c.logger.Warn("Streaming connection failed", "error", err)
				c.report(te)
			}
			return
		}

		switch msg.Type {
		case msgNext:
			sub := c.lookup(msg.ID)
			if sub == nil {
				continue
			}
			var resp graphql.Response
			if err := json.Unmarshal(msg.Payload, &resp); err != nil {
				c.logger.Warn("Dropping malformed payload", "id", msg.ID, "error", err)
				continue
			}
			sub.push(&resp)
		case msgError:
			sub, idle := c.take(msg.ID)
			if sub == nil {
				continue
			}
			var errs graphql.Errors
			if err := json.Unmarshal(msg.Payload, &errs); err != nil || len(errs) == 0 {
				errs = graphql.Errors{{Message: "subscription rejected"}}
			}
			sub.finish(errs)
			if idle {
				c.shutdown(nil, nil)
			}
		case msgComplete:
			sub, idle := c.take(msg.ID)
			if sub == nil {
				continue
			}
			sub.finish(nil)
			if idle {
				c.shutdown(nil, nil)
			}
		case msgPing:
			if err := c.write(wsMessage{Type: msgPong}); err != nil {
				c.logger.Debug("Failed to answer ping", "error", err)
			}
		}
	}
}

// Subscription is one running subscription. Values arrive on C until the
// server completes it, the connection fails or Unsubscribe is called. After
// Unsubscribe returns no further value is delivered.
type Subscription struct {
	id   string
	conn *streamConn

	c      chan *graphql.Response
	wake   chan struct{}
	done   chan struct{}
	ended  chan struct{}
	unsubs sync.Once

	mu       sync.Mutex
	queue    []*graphql.Response
	finished bool
	err      error
}

func newSubscription(id string) *Subscription {
	s := &Subscription{
		id:    id,
		c:     make(chan *graphql.Response),
		wake:  make(chan struct{}, 1),
		done:  make(chan struct{}),
		ended: make(chan struct{}),
	}
	go s.pump()
	return s
}

func (s *Subscription) ID() string {
	return s.id
}

// C delivers pushed payloads. It is closed when the subscription ends.
func (s *Subscription) C() <-chan *graphql.Response {
	return s.c
}

// Done is closed once C has been closed.
func (s *Subscription) Done() <-chan struct{} {
	return s.ended
}

// Err is the reason the subscription ended: nil for a server completion or
// Unsubscribe, graphql.Errors for a rejected operation, *Error for a
// connection failure.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Unsubscribe stops delivery and tells the server to complete the operation.
func (s *Subscription) Unsubscribe() {
	s.unsubs.Do(func() {
		close(s.done)
		if s.conn != nil {
			s.conn.forget(s)
		}
	})
}

func (s *Subscription) push(v *graphql.Response) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.signal()
}

// finish ends the subscription from the server or connection side. Values
// already queued are still delivered.
func (s *Subscription) finish(err error) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.finished = true
	s.err = err
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pump() {
	defer close(s.ended)
	defer close(s.c)

	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			finished := s.finished
			s.mu.Unlock()
			if finished {
				return
			}
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		v := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case <-s.done:
			return
		default:
		}
		select {
		case s.c <- v:
		case <-s.done:
			return
		}
	}
}
