// Package debounce suppresses autorepeat key frames that arrive faster
// than a configured minimum interval.
package debounce

import (
	"time"

	"github.com/crowbarz/lirc2hass/internal/lirc"
)

// KeyEvent is an accepted key press, ready to forward upstream.
type KeyEvent struct {
	Key     string
	Elapsed time.Duration // since the previously accepted event
	Repeat  bool
}

// Debouncer tracks the timestamp of the last accepted event. The state
// deliberately survives socket and upstream reconnects: it models how
// fast a human presses buttons, not connection epochs, so a repeat
// arriving just after a reconnect is still measured against the real
// last accepted press.
type Debouncer struct {
	minRepeatTime time.Duration
	lastAccepted  time.Time
}

func New(minRepeatTime time.Duration) *Debouncer {
	return &Debouncer{minRepeatTime: minRepeatTime}
}

// Accept classifies a frame at time now. It returns the derived
// KeyEvent and true when the frame should be forwarded, or a zero
// event and false when it is a suppressed repeat. Suppression never
// touches the stored timestamp.
func (d *Debouncer) Accept(f lirc.Frame, now time.Time) (KeyEvent, bool) {
	if d.lastAccepted.IsZero() {
		// First event of the process: always accepted.
		d.lastAccepted = now
		return KeyEvent{Key: f.Key, Repeat: f.Repeat}, true
	}
	elapsed := now.Sub(d.lastAccepted)
	if f.Repeat && elapsed < d.minRepeatTime {
		return KeyEvent{}, false
	}
	d.lastAccepted = now
	return KeyEvent{Key: f.Key, Elapsed: elapsed, Repeat: f.Repeat}, true
}
