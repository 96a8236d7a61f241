// Package hass delivers key events to a Home Assistant instance over
// either the REST event API or the authenticated WebSocket API.
package hass

import (
	"context"
	"errors"
	"fmt"
)

// EventType is the Home Assistant event bus type fired for each key.
const EventType = "ir_command_received"

// ErrUpstream marks any failure to deliver an event: unreachable API,
// rejected request, protocol violation, or response timeout. The
// supervisor treats these as recoverable and retries with backoff
// without touching the LIRC socket.
var ErrUpstream = errors.New("upstream send failed")

// Transport delivers one key event per call. Implementations never
// retry internally; retry policy belongs to the supervisor. Close
// releases any session state and is safe to call at any time,
// including concurrently with a blocked SendKeyEvent, which it
// unblocks. A session-based transport reconnects on the next send
// after Close.
type Transport interface {
	SendKeyEvent(ctx context.Context, key string) error
	Close() error
}

// upstreamErrf wraps a failure so errors.Is(err, ErrUpstream) holds.
func upstreamErrf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUpstream, fmt.Sprintf(format, args...))
}
