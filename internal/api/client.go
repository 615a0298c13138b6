// Package api is the typed client the console uses on top of the transport
// router: one method per backend document.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/Rorical/GhostDeck/internal/graphql"
	"github.com/Rorical/GhostDeck/internal/transport"
)

// Router is the part of transport.Router the client needs.
type Router interface {
	Execute(ctx context.Context, op graphql.Operation) (*graphql.Response, error)
	Subscribe(ctx context.Context, op graphql.Operation) (*transport.Subscription, error)
}

type Client struct {
	router Router
	logger *slog.Logger
}

func NewClient(router Router, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{router: router, logger: logger}
}

// execute runs op and decodes its data into out. Application errors come
// back as graphql.Errors.
func (c *Client) execute(ctx context.Context, op graphql.Operation, out any) error {
	resp, err := c.router.Execute(ctx, op)
	if err != nil {
		return err
	}
	if resp.HasErrors() {
		return resp.Errors
	}
	if err := resp.Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", op.Name, err)
	}
	return nil
}

func (c *Client) Dashboard(ctx context.Context) (*Dashboard, error) {
	var out Dashboard
	if err := c.execute(ctx, QueryDashboard, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Stacks(ctx context.Context) ([]Stack, error) {
	var out struct {
		Stacks []Stack `json:"stacks"`
	}
	if err := c.execute(ctx, QueryStacks, &out); err != nil {
		return nil, err
	}
	return out.Stacks, nil
}

func (c *Client) Stack(ctx context.Context, name string) (*Stack, error) {
	var out struct {
		Stack *Stack `json:"stack"`
	}
	op := QueryStack.WithVariables(map[string]any{"name": name})
	if err := c.execute(ctx, op, &out); err != nil {
		return nil, err
	}
	if out.Stack == nil {
		return nil, fmt.Errorf("stack %q not found", name)
	}
	return out.Stack, nil
}

func (c *Client) StartStack(ctx context.Context, name string) error {
	return c.RunStackAction(ctx, ActionStart, name)
}

func (c *Client) StopStack(ctx context.Context, name string) error {
	return c.RunStackAction(ctx, ActionStop, name)
}

func (c *Client) RestartStack(ctx context.Context, name string) error {
	return c.RunStackAction(ctx, ActionRestart, name)
}

// RunStackAction sends the mutation for action. A refusal by the backend is
// returned as *StackActionError.
func (c *Client) RunStackAction(ctx context.Context, action StackAction, name string) error {
	var (
		op    graphql.Operation
		field string
	)
	switch action {
	case ActionStart:
		op, field = MutationStartStack, "startStack"
	case ActionStop:
		op, field = MutationStopStack, "stopStack"
	case ActionRestart:
		op, field = MutationRestartStack, "restartStack"
	default:
		return fmt.Errorf("unknown stack action %q", action)
	}

	var out map[string]stackActionResult
	if err := c.execute(ctx, op.WithVariables(map[string]any{"name": name}), &out); err != nil {
		return err
	}
	res, ok := out[field]
	if !ok {
		return fmt.Errorf("%s: missing %s in response", op.Name, field)
	}
	if res.failed() {
		return &StackActionError{Action: action, Stack: name, Message: res.Message}
	}
	c.logger.Info("Stack action applied", "action", action, "stack", name)
	return nil
}

// SubscribeEvents opens the container event feed.
func (c *Client) SubscribeEvents(ctx context.Context) (*EventStream, error) {
	sub, err := c.router.Subscribe(ctx, SubscriptionEvents)
	if err != nil {
		return nil, err
	}
	s := &EventStream{
		sub:    sub,
		c:      make(chan StackEvent),
		stop:   make(chan struct{}),
		logger: c.logger,
	}
	go s.run()
	return s, nil
}

// EventStream decodes the events subscription. C is closed when the
// underlying subscription ends.
type EventStream struct {
	sub    *transport.Subscription
	c      chan StackEvent
	stop   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

func (s *EventStream) C() <-chan StackEvent {
	return s.c
}

// Err reports why the stream ended; see transport.Subscription.Err.
func (s *EventStream) Err() error {
	return s.sub.Err()
}

func (s *EventStream) Unsubscribe() {
	s.once.Do(func() {
		close(s.stop)
		s.sub.Unsubscribe()
	})
}

func (s *EventStream) run() {
	defer close(s.c)

	for resp := range s.sub.C() {
		if resp.HasErrors() {
			s.logger.Warn("Event payload carried errors", "error", resp.Errors)
			continue
		}
		var out struct {
			Events StackEvent `json:"events"`
		}
		if err := resp.Decode(&out); err != nil {
			s.logger.Warn("Dropping undecodable event", "error", err)
			continue
		}

		select {
		case <-s.stop:
			return
		default:
		}
		select {
		case s.c <- out.Events:
		case <-s.stop:
			return
		}
	}
}
