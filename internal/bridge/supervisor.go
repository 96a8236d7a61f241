// Package bridge drives the event loop: pull frames from the LIRC
// socket, debounce them, forward accepted keys to Home Assistant, and
// recover from failures on either side independently.
package bridge

import (
	"context"
	"errors"
	"time"

	"github.com/crowbarz/lirc2hass/internal/backoff"
	"github.com/crowbarz/lirc2hass/internal/debounce"
	"github.com/crowbarz/lirc2hass/internal/hass"
	"github.com/crowbarz/lirc2hass/internal/lirc"
	"github.com/crowbarz/lirc2hass/internal/logging"
)

// Supervisor owns the two reconnect state machines. The LIRC socket
// and the upstream API fail independently: a hub outage must not drop
// the socket connection, and a socket outage must not reset upstream
// backoff. Debounce state survives reconnects on both sides. All state
// is driven from the single goroutine running Run; a second goroutine
// only ever closes the source and transport to unblock reads on
// shutdown.
type Supervisor struct {
	source    lirc.Source
	transport hass.Transport
	debouncer *debounce.Debouncer

	// maximum reconnect delay in seconds for both failure domains
	maxReconnectDelay int

	// test seams, defaulting to backoff.Delay and a timer sleep
	delayFn func(retryCount, ceiling int) time.Duration
	sleep   func(ctx context.Context, d time.Duration) bool
	now     func() time.Time
}

func New(source lirc.Source, transport hass.Transport, debouncer *debounce.Debouncer, maxReconnectDelay int) *Supervisor {
	return &Supervisor{
		source:            source,
		transport:         transport,
		debouncer:         debouncer,
		maxReconnectDelay: maxReconnectDelay,
		delayFn:           backoff.Delay,
		sleep:             ctxSleep,
		now:               time.Now,
	}
}

// Run is the main loop. It returns nil on context cancellation after
// releasing the socket and any upstream session, or the first fatal
// (non-recoverable) error encountered.
func (s *Supervisor) Run(ctx context.Context) error {
	// Unblock any pending socket read or response wait when the
	// context is cancelled.
	unblocked := make(chan struct{})
	defer close(unblocked)
	go func() {
		select {
		case <-ctx.Done():
			s.source.Disconnect()
			s.transport.Close()
		case <-unblocked:
		}
	}()
	defer func() {
		s.source.Disconnect()
		s.transport.Close()
	}()

	connected := false
	sourceRetry := 0
	apiRetry := 0
	// The upstream retry counter resets on the first failure after a
	// successful send, not when a retry eventually succeeds. This
	// keeps backoff pacing intact across intermittent upstream blips.
	sendOK := false

	for {
		if ctx.Err() != nil {
			return nil
		}

		if !connected {
			if err := s.source.Connect(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				// First failure at error level, the rest at debug, so
				// a down lircd does not flood the log.
				if sourceRetry == 0 {
					logging.Errorf("could not connect to LIRC: %v, retrying", err)
				} else {
					logging.Debugf("LIRC connect retry #%d failed: %v", sourceRetry, err)
				}
				delay := s.delayFn(sourceRetry, s.maxReconnectDelay)
				logging.Debugf("waiting %v before retrying LIRC", delay)
				if !s.sleep(ctx, delay) {
					return nil
				}
				sourceRetry++
				continue
			}
			logging.Infof("connected to LIRC socket")
			connected = true
			sourceRetry = 0
		}

		frame, err := s.source.NextEvent()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, lirc.ErrDisconnected) {
				logging.Errorf("lost LIRC connection: %v, reconnecting", err)
				s.source.Disconnect()
				// A session-based transport drops its session here so
				// it does not sit on a half-dead connection while the
				// socket recovers.
				s.transport.Close()
				connected = false
				continue
			}
			return err
		}

		ev, ok := s.debouncer.Accept(frame, s.now())
		if !ok {
			logging.Debugf("ignoring repeated key: %s", frame.Key)
			continue
		}

		logging.Infof("firing event: %s (+%dms)", ev.Key, ev.Elapsed.Milliseconds())
		if err := s.transport.SendKeyEvent(ctx, ev.Key); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, hass.ErrUpstream) {
				if sendOK {
					apiRetry = 0
					sendOK = false
				}
				if apiRetry == 0 {
					logging.Errorf("could not send key to Home Assistant: %v", err)
				} else {
					logging.Debugf("Home Assistant send retry #%d failed: %v", apiRetry, err)
				}
				delay := s.delayFn(apiRetry, s.maxReconnectDelay)
				logging.Debugf("waiting %v before next send", delay)
				if !s.sleep(ctx, delay) {
					return nil
				}
				apiRetry++
				continue
			}
			return err
		}
		sendOK = true
	}
}

// ctxSleep waits for d or until ctx is cancelled. It reports whether
// the full duration elapsed.
func ctxSleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
