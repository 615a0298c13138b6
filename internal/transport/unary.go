package transport

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/Rorical/GhostDeck/internal/graphql"
)

// HTTPChannel is the unary channel: one POST, one response.
type HTTPChannel struct {
	endpoint string
	client   *resty.Client
	headers  map[string]string
}

type HTTPOption func(*HTTPChannel)

// WithHTTPClient makes the channel send through hc.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *HTTPChannel) {
		c.client = resty.NewWithClient(hc)
	}
}

// WithHeader adds a header to every request.
func WithHeader(key, value string) HTTPOption {
	return func(c *HTTPChannel) {
		c.headers[key] = value
	}
}

func NewHTTPChannel(endpoint string, opts ...HTTPOption) *HTTPChannel {
	c := &HTTPChannel{
		endpoint: endpoint,
		client:   resty.New(),
		headers:  map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.client.
		SetHeaders(c.headers).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	return c
}

func (c *HTTPChannel) Endpoint() string {
	return c.endpoint
}

// Do sends op and decodes the response. A non-2xx status or a connection
// failure yields an *Error. Cancellation of ctx is returned as ctx.Err().
func (c *HTTPChannel) Do(ctx context.Context, op graphql.Operation) (*graphql.Response, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(op.Request()).
		Post(c.endpoint)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &Error{Channel: graphql.Unary, Message: err.Error(), Err: err}
	}

	body := resp.Body()
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		te := &Error{
			Channel:    graphql.Unary,
			StatusCode: resp.StatusCode(),
			Message:    http.StatusText(resp.StatusCode()),
			Body:       body,
		}
		var structured graphql.Response
		if json.Unmarshal(body, &structured) == nil && len(structured.Errors) > 0 {
			te.GraphQLErrors = structured.Errors
			te.Message = structured.Errors.Error()
		}
		return nil, te
	}

	var out graphql.Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, &Error{
			Channel:    graphql.Unary,
			StatusCode: resp.StatusCode(),
			Message:    "malformed response body",
			Body:       body,
			Err:        err,
		}
	}
	return &out, nil
}

// Close releases idle connections.
func (c *HTTPChannel) Close() {
	c.client.GetClient().CloseIdleConnections()
}
