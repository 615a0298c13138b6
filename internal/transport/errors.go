// Package transport routes GraphQL operations to the unary HTTP channel or the
// streaming WebSocket channel and turns transport failures into a
// confirmation dialog.
package transport

import (
	"errors"
	"fmt"

	"github.com/Rorical/GhostDeck/internal/graphql"
)

// Error is a failure below the GraphQL layer: the connection failed or the
// server answered with a non-2xx status. Application errors embedded in a
// successful response are never wrapped in an Error.
type Error struct {
	Channel graphql.Channel
	// StatusCode is zero when no response was received.
	StatusCode int
	Message    string
	// Body is the raw response body, if any.
	Body []byte
	// GraphQLErrors holds the errors list of a structured error body.
	GraphQLErrors graphql.Errors
	Err           error

	// reported marks a failure the streaming channel already handed to its
	// failure handler.
	reported bool
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s transport: status %d: %s", e.Channel, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s transport: %s", e.Channel, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasStatus reports whether a response was received.
func (e *Error) HasStatus() bool {
	return e.StatusCode > 0
}

// Escalates is the escalation predicate: no status at all, or a server
// side status. Client errors (4xx) are left to the caller.
func (e *Error) Escalates() bool {
	return !e.HasStatus() || e.StatusCode >= 500
}

// ShouldEscalate applies the escalation predicate to any error. Errors that
// are not transport errors never escalate.
func ShouldEscalate(err error) bool {
	var te *Error
	if !errors.As(err, &te) {
		return false
	}
	return te.Escalates()
}

// StatusCode extracts the status of a transport error, or zero.
func StatusCode(err error) int {
	var te *Error
	if errors.As(err, &te) {
		return te.StatusCode
	}
	return 0
}
