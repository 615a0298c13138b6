package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/Rorical/GhostDeck/internal/actions"
	"github.com/Rorical/GhostDeck/internal/api"
	"github.com/Rorical/GhostDeck/internal/eventbus"
	"github.com/Rorical/GhostDeck/internal/modal"
)

// EventFeed is a live stream of stack events; *api.EventStream satisfies it.
type EventFeed interface {
	C() <-chan api.StackEvent
	Err() error
	Unsubscribe()
}

// Backend is what the console reads from.
type Backend interface {
	Dashboard(ctx context.Context) (*api.Dashboard, error)
	Stacks(ctx context.Context) ([]api.Stack, error)
	SubscribeEvents(ctx context.Context) (EventFeed, error)
}

// Confirmer is the dialog slot; *modal.Store satisfies it.
type Confirmer interface {
	Open(req modal.Request)
	Close()
	RunCallback(arg any) error
}

type clientBackend struct {
	*api.Client
}

func (b clientBackend) SubscribeEvents(ctx context.Context) (EventFeed, error) {
	stream, err := b.Client.SubscribeEvents(ctx)
	if err != nil {
		return nil, err
	}
	return stream, nil
}

// FromClient adapts an api.Client to Backend.
func FromClient(c *api.Client) Backend {
	return clientBackend{Client: c}
}

type ConsoleService struct {
	backend    Backend
	actions    *actions.Registry
	confirm    Confirmer
	state      *ConsoleState
	eventBus   *eventbus.EventBus
	logger     *slog.Logger
	newBackOff func() backoff.BackOff
	ctx        context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
}

type Option func(*ConsoleService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *ConsoleService) {
		s.logger = logger
	}
}

// WithBackOff sets the policy used between resubscribe attempts.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(s *ConsoleService) {
		s.newBackOff = fn
	}
}

func NewConsoleService(backend Backend, registry *actions.Registry, confirm Confirmer, eb *eventbus.EventBus, opts ...Option) *ConsoleService {
	ctx, cancel := context.WithCancel(context.Background())
	s := &ConsoleService{
		backend:    backend,
		actions:    registry,
		confirm:    confirm,
		state:      NewConsoleState(),
		eventBus:   eb,
		logger:     slog.Default(),
		newBackOff: defaultBackOff,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxInterval = 30 * time.Second
	b.MaxElapsedTime = 0
	return b
}

// Start pushes the initial state, loads data and begins consuming UI events
// and the backend event feed.
func (s *ConsoleService) Start() {
	s.pushStateToUI()
	s.wg.Add(3)
	go s.eventLoop()
	go s.watchEvents()
	go func() {
		defer s.wg.Done()
		s.refresh()
	}()
}

// Stop cancels in-flight work and waits for the service goroutines.
func (s *ConsoleService) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *ConsoleService) State() *ConsoleState {
	return s.state
}

func (s *ConsoleService) eventLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.ctx.Done():
			return
		case event, ok := <-s.eventBus.UIToCore():
			if !ok {
				return
			}
			s.handleUIEvent(event)
		}
	}
}

func (s *ConsoleService) handleUIEvent(event eventbus.UIEvent) {
	switch e := event.(type) {
	case eventbus.RefreshEvent:
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.refresh()
		}()
	case eventbus.StackActionEvent:
		s.requestAction(e.Action, e.Stack)
	case eventbus.ModalResolveEvent:
		s.resolveModal(e.Confirm)
	}
}

func (s *ConsoleService) refresh() {
	s.state.StartLoading()
	s.pushStateToUI()

	dashboard, err := s.backend.Dashboard(s.ctx)
	if err != nil {
		s.finishRefresh(nil, nil, fmt.Errorf("load dashboard: %w", err))
		return
	}
	stacks, err := s.backend.Stacks(s.ctx)
	if err != nil {
		s.finishRefresh(nil, nil, fmt.Errorf("load stacks: %w", err))
		return
	}
	s.finishRefresh(dashboard, stacks, nil)
}

func (s *ConsoleService) finishRefresh(dashboard *api.Dashboard, stacks []api.Stack, err error) {
	if err != nil && s.ctx.Err() != nil {
		return
	}
	if err != nil {
		s.logger.Warn("Refresh failed", "error", err)
	}
	s.state.FinishLoading(dashboard, stacks, err)
	s.pushStateToUI()
}

// requestAction runs the named action, asking for confirmation first when
// the action requires it.
func (s *ConsoleService) requestAction(name, stack string) {
	action, ok := s.actions.Get(name)
	if !ok {
		s.state.SetError(fmt.Errorf("unknown action %q", name))
		s.pushStateToUI()
		return
	}

	call := actions.Call{ID: uuid.NewString(), Name: name, Stack: stack}
	if !action.Confirm() {
		s.execute(call)
		return
	}
	s.confirm.Open(modal.Request{
		Title:   fmt.Sprintf("%s stack %q?", name, stack),
		Message: action.Description() + ". Running containers will be interrupted.",
		Callback: func(any) {
			s.execute(call)
		},
	})
}

func (s *ConsoleService) resolveModal(confirm bool) {
	if !confirm {
		s.confirm.Close()
		return
	}
	if err := s.confirm.RunCallback(nil); err != nil {
		s.logger.Debug("Nothing to confirm", "error", err)
	}
}

func (s *ConsoleService) execute(call actions.Call) {
	s.logger.Info("Running stack action", "action", call.Name, "stack", call.Stack, "call_id", call.ID)
	s.state.SetNotice(fmt.Sprintf("%s %s...", call.Name, call.Stack))
	s.pushStateToUI()

	resultChan := make(chan actions.Result, 1)
	s.actions.ExecuteAsync(s.ctx, call, resultChan)

	s.wg.Add(1)
	go s.handleActionResult(resultChan)
}

func (s *ConsoleService) handleActionResult(resultChan <-chan actions.Result) {
	defer s.wg.Done()

	result := <-resultChan
	if result.Err != nil {
		if s.ctx.Err() != nil {
			return
		}
		s.logger.Warn("Stack action failed", "action", result.Name, "stack", result.Stack, "error", result.Err)
		s.state.SetError(result.Err)
		s.pushStateToUI()
		return
	}

	s.state.SetNotice(fmt.Sprintf("%s %s: done", result.Name, result.Stack))
	s.refresh()
}

func (s *ConsoleService) pushStateToUI() {
	if err := s.eventBus.SendToUI(s.state.Snapshot()); err != nil {
		if errors.Is(err, eventbus.ErrBusClosed) {
			s.logger.Debug("State dropped after shutdown")
			return
		}
		s.logger.Warn("Error sending state to UI", "error", err)
	}
}
