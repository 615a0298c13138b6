package core

import (
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

var errFeedEnded = errors.New("event feed ended")

// watchEvents keeps the event subscription alive for the life of the
// service, resubscribing with backoff whenever it ends.
func (s *ConsoleService) watchEvents() {
	defer s.wg.Done()

	b := backoff.WithContext(s.newBackOff(), s.ctx)
	err := backoff.RetryNotify(func() error {
		return s.consumeEvents(b)
	}, b, func(err error, wait time.Duration) {
		s.logger.Warn("Event feed lost, resubscribing", "error", err, "wait", wait)
	})
	if err != nil && s.ctx.Err() == nil {
		s.logger.Error("Gave up on event feed", "error", err)
		s.state.SetError(err)
		s.pushStateToUI()
	}
}

func (s *ConsoleService) consumeEvents(b backoff.BackOff) error {
	feed, err := s.backend.SubscribeEvents(s.ctx)
	if err != nil {
		if s.ctx.Err() != nil {
			return backoff.Permanent(s.ctx.Err())
		}
		return err
	}
	defer feed.Unsubscribe()

	s.state.SetStreaming(true)
	s.pushStateToUI()
	defer func() {
		s.state.SetStreaming(false)
		s.pushStateToUI()
	}()

	for {
		select {
		case <-s.ctx.Done():
			return backoff.Permanent(s.ctx.Err())
		case ev, ok := <-feed.C():
			if !ok {
				if err := feed.Err(); err != nil {
					return err
				}
				return errFeedEnded
			}
			b.Reset()
			s.state.AddEvent(ev)
			s.pushStateToUI()
		}
	}
}
