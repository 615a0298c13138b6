// Package graphql holds the descriptors the console sends to the backend and
// the wire shapes it gets back.
package graphql

import (
	"errors"
	"fmt"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
)

// Kind is the operation type of a GraphQL document.
type Kind string

const (
	Query        Kind = "query"
	Mutation     Kind = "mutation"
	Subscription Kind = "subscription"
)

// Channel names the transport an operation travels over.
type Channel int

const (
	Unary Channel = iota
	Streaming
)

func (c Channel) String() string {
	switch c {
	case Streaming:
		return "streaming"
	default:
		return "unary"
	}
}

// Operation describes one outgoing GraphQL call. It is built once by the
// caller and never mutated afterwards.
type Operation struct {
	Kind      Kind
	Name      string
	Document  string
	Variables map[string]any
}

// Classify picks the channel for op. Subscriptions need a kept-open
// connection for server pushes; every other kind is a single round trip.
func Classify(op Operation) Channel {
	if op.Kind == Subscription {
		return Streaming
	}
	return Unary
}

var ErrNoOperation = errors.New("graphql: document has no operation definition")

// Parse builds an Operation from a document, taking the kind and name from
// its first operation definition.
func Parse(document string, variables map[string]any) (Operation, error) {
	doc, err := parser.ParseQuery(&ast.Source{Name: "document", Input: document})
	if err != nil {
		return Operation{}, fmt.Errorf("graphql: parse document: %w", err)
	}
	if len(doc.Operations) == 0 {
		return Operation{}, ErrNoOperation
	}

	def := doc.Operations[0]
	kind := Query
	switch def.Operation {
	case ast.Mutation:
		kind = Mutation
	case ast.Subscription:
		kind = Subscription
	}

	return Operation{
		Kind:      kind,
		Name:      def.Name,
		Document:  document,
		Variables: variables,
	}, nil
}

// MustParse is Parse for package-level document declarations.
func MustParse(document string) Operation {
	op, err := Parse(document, nil)
	if err != nil {
		panic(err)
	}
	return op
}

// WithVariables returns a copy of op bound to vars.
func (op Operation) WithVariables(vars map[string]any) Operation {
	op.Variables = vars
	return op
}

// Request is the JSON body for both channels.
func (op Operation) Request() Request {
	return Request{
		Query:         op.Document,
		Variables:     op.Variables,
		OperationName: op.Name,
	}
}
