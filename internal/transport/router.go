package transport

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Rorical/GhostDeck/internal/graphql"
	"github.com/Rorical/GhostDeck/internal/metrics"
	"github.com/Rorical/GhostDeck/internal/modal"
)

// Title and message of the dialog opened for an escalated failure.
const (
	EscalationTitle   = "Do you want to continue?"
	EscalationMessage = "You are about to close a ticket. It cannot be reopened."
)

// ErrWrongChannel is returned by Execute for subscriptions and by Subscribe
// for anything else.
var ErrWrongChannel = errors.New("transport: operation routed to the wrong channel")

// UnaryChannel sends one request and returns one response.
type UnaryChannel interface {
	Do(ctx context.Context, op graphql.Operation) (*graphql.Response, error)
}

// Streamer starts subscriptions over a kept-open connection.
type Streamer interface {
	Subscribe(ctx context.Context, op graphql.Operation) (*Subscription, error)
	SetFailureHandler(fn func(*Error))
}

// Notifier receives the dialog for an escalated failure. *modal.Store
// satisfies it.
type Notifier interface {
	Open(req modal.Request)
}

// Result is what Dispatch hands back: a Response for the unary channel or a
// Subscription for the streaming one.
type Result struct {
	Channel      graphql.Channel
	Response     *graphql.Response
	Subscription *Subscription
}

// Router is the single entry point for outgoing operations.
type Router struct {
	unary    UnaryChannel
	stream   Streamer
	notifier Notifier
	metrics  *metrics.Transport
	logger   *slog.Logger
}

type RouterOption func(*Router)

func WithMetrics(m *metrics.Transport) RouterOption {
	return func(r *Router) {
		r.metrics = m
	}
}

func WithLogger(logger *slog.Logger) RouterOption {
	return func(r *Router) {
		r.logger = logger
	}
}

// NewRouter wires both channels and the notifier together. The router
// installs itself as the streaming channel's failure handler.
func NewRouter(unary UnaryChannel, stream Streamer, notifier Notifier, opts ...RouterOption) *Router {
	r := &Router{
		unary:    unary,
		stream:   stream,
		notifier: notifier,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.metrics == nil {
		r.metrics = metrics.NewTransport(nil)
	}
	stream.SetFailureHandler(func(te *Error) {
		r.fail(graphql.Operation{Kind: graphql.Subscription}, te)
	})
	return r
}

// Dispatch classifies op and runs it on the matching channel. Failures are
// returned exactly once; escalating ones also open the dialog exactly once.
func (r *Router) Dispatch(ctx context.Context, op graphql.Operation) (*Result, error) {
	channel := graphql.Classify(op)
	r.metrics.Operations.WithLabelValues(channel.String(), string(op.Kind)).Inc()
	r.logger.Debug("Dispatching operation", "operation", op.Name, "kind", op.Kind, "channel", channel)

	switch channel {
	case graphql.Streaming:
		sub, err := r.stream.Subscribe(ctx, op)
		if err != nil {
			r.fail(op, err)
			return nil, err
		}
		return &Result{Channel: channel, Subscription: sub}, nil
	default:
		resp, err := r.unary.Do(ctx, op)
		if err != nil {
			r.fail(op, err)
			return nil, err
		}
		return &Result{Channel: channel, Response: resp}, nil
	}
}

// Execute dispatches a query or mutation.
func (r *Router) Execute(ctx context.Context, op graphql.Operation) (*graphql.Response, error) {
	if graphql.Classify(op) != graphql.Unary {
		return nil, fmt.Errorf("%w: %s %q", ErrWrongChannel, op.Kind, op.Name)
	}
	res, err := r.Dispatch(ctx, op)
	if err != nil {
		return nil, err
	}
	return res.Response, nil
}

// Subscribe dispatches a subscription.
func (r *Router) Subscribe(ctx context.Context, op graphql.Operation) (*Subscription, error) {
	if graphql.Classify(op) != graphql.Streaming {
		return nil, fmt.Errorf("%w: %s %q", ErrWrongChannel, op.Kind, op.Name)
	}
	res, err := r.Dispatch(ctx, op)
	if err != nil {
		return nil, err
	}
	return res.Subscription, nil
}

func (r *Router) fail(op graphql.Operation, err error) {
	var te *Error
	if !errors.As(err, &te) {
		r.logger.Debug("Operation abandoned", "operation", op.Name, "error", err)
		return
	}

	if te.reported {
		return
	}
	r.metrics.Failures.WithLabelValues(te.Channel.String(), metrics.StatusClass(te.StatusCode)).Inc()
	if !te.Escalates() {
		r.logger.Info("Transport failure left to caller", "operation", op.Name, "status", te.StatusCode, "error", te)
		return
	}

	r.logger.Warn("Transport failure escalated", "operation", op.Name, "status", te.StatusCode, "error", te)
	r.metrics.Escalations.Inc()
	r.notifier.Open(modal.Request{
		Title:     EscalationTitle,
		Message:   EscalationMessage,
		Component: modal.ComponentNetworkError,
	})
}
