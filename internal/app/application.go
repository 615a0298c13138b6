package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Rorical/GhostDeck/internal/actions"
	"github.com/Rorical/GhostDeck/internal/config"
	"github.com/Rorical/GhostDeck/internal/core"
	"github.com/Rorical/GhostDeck/internal/dispatcher"
	"github.com/Rorical/GhostDeck/internal/eventbus"
	"github.com/Rorical/GhostDeck/internal/logging"
	"github.com/Rorical/GhostDeck/internal/metrics"
	"github.com/Rorical/GhostDeck/internal/modal"
	"github.com/Rorical/GhostDeck/internal/models"
)

const LogFile = "ghostdeck.log"

// Options tune the console beyond what the config file holds.
type Options struct {
	// MetricsAddr, when set, serves Prometheus metrics on /metrics.
	MetricsAddr string
}

// Application manages the complete application lifecycle
type Application struct {
	config     *config.Config
	logger     *slog.Logger
	logCloser  io.Closer
	eventBus   *eventbus.EventBus
	dispatcher *dispatcher.EventDispatcher
	store      *modal.Store
	backend    *Backend
	service    *core.ConsoleService
	metricsSrv *http.Server
	model      *AppModel
}

type AppModel struct {
	appModel   models.AppModel
	dispatcher *dispatcher.EventDispatcher
	// modals is re-read on every tick in case a transition was dropped by
	// the event bus.
	modals interface{ Snapshot() modal.Snapshot }
}

func NewApplication(opts Options) (*Application, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}
	logger, logCloser, err := logging.NewFile(filepath.Join(dir, LogFile), cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(logger)

	eb := eventbus.NewEventBus()
	eb.SetErrorCallback(func(e eventbus.EventBusError) {
		logger.Warn("Event bus error", "operation", e.Operation, "error", e.Err)
	})

	store := modal.Init(
		modal.WithGrace(cfg.ModalGrace),
		modal.WithLogger(logger),
		modal.WithNotify(func(snap modal.Snapshot) {
			if err := eb.SendToUI(eventbus.ModalStateEvent{Snapshot: snap}); err != nil {
				logger.Debug("Dialog update deferred to next tick", "state", snap.State, "error", err)
			}
		}),
	)

	reg := prometheus.NewRegistry()
	backend := Connect(cfg, logger, store, metrics.NewTransport(reg))

	service := core.NewConsoleService(
		core.FromClient(backend.Client),
		actions.NewBuiltin(backend.Client),
		store,
		eb,
		core.WithLogger(logger),
	)

	disp := dispatcher.NewEventDispatcher(eb)
	application := &Application{
		config:     cfg,
		logger:     logger,
		logCloser:  logCloser,
		eventBus:   eb,
		dispatcher: disp,
		store:      store,
		backend:    backend,
		service:    service,
		model: &AppModel{
			appModel:   models.AppModel{Status: "Connecting"},
			dispatcher: disp,
			modals:     store,
		},
	}
	if opts.MetricsAddr != "" {
		application.metricsSrv = newMetricsServer(opts.MetricsAddr, reg)
	}
	return application, nil
}

func newMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	r := chi.NewRouter()
	r.Handle("/metrics", metrics.Handler(reg))
	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func (app *Application) Start() error {
	if app.metricsSrv != nil {
		go func() {
			if err := app.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				app.logger.Error("Metrics server stopped", "error", err)
			}
		}()
	}
	app.service.Start()

	p := tea.NewProgram(app.model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (app *Application) Stop() {
	if app.metricsSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = app.metricsSrv.Shutdown(ctx)
	}
	app.service.Stop()
	app.dispatcher.Stop()
	app.backend.Close()
	app.eventBus.Close()
	app.logCloser.Close()
}
