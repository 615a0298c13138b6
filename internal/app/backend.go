package app

import (
	"log/slog"

	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/internal/config"
	"github.com/Rorical/GhostDeck/internal/metrics"
	"github.com/Rorical/GhostDeck/internal/transport"
)

// Backend is the transport stack for one profile: both channels, the
// router in front of them and the typed client on top.
type Backend struct {
	Client *api.Client
	Router *transport.Router
	unary  *transport.HTTPChannel
	stream *transport.StreamChannel
}

// Connect builds the transport stack for the active profile of cfg.
// Escalated failures open a dialog on notifier.
func Connect(cfg *config.Config, logger *slog.Logger, notifier transport.Notifier, m *metrics.Transport) *Backend {
	unary := transport.NewHTTPChannel(cfg.HTTPURL())
	stream := transport.NewStreamChannel(cfg.WSURL(), transport.WithStreamLogger(logger))
	router := transport.NewRouter(unary, stream, notifier,
		transport.WithLogger(logger),
		transport.WithMetrics(m),
	)
	logger.Info("Backend configured", "profile", cfg.ActiveProfile, "http", unary.Endpoint(), "ws", stream.Endpoint())

	return &Backend{
		Client: api.NewClient(router, logger),
		Router: router,
		unary:  unary,
		stream: stream,
	}
}

// Close hangs up the streaming connection and idle HTTP connections.
func (b *Backend) Close() {
	b.stream.Close()
	b.unary.Close()
}
