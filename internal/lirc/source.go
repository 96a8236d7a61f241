// Package lirc reads key events from a local lircd Unix socket.
package lirc

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/crowbarz/lirc2hass/internal/logging"
)

// ErrDisconnected signals that the lircd socket is down, whether from a
// read error or a clean close by the peer. The two cases are collapsed
// into one error because the recovery action is the same: reconnect.
var ErrDisconnected = errors.New("lirc socket disconnected")

// DefaultSocketPath is where lircd creates its event socket.
const DefaultSocketPath = "/var/run/lirc/lircd"

// Source is the EventSource interface the supervisor drives. Socket
// and MockSource both implement it.
type Source interface {
	Connect() error
	Disconnect()
	// NextEvent blocks until a frame arrives. It returns an error
	// wrapping ErrDisconnected when the socket goes away.
	NextEvent() (Frame, error)
}

// Socket reads newline-delimited key event frames from the lircd
// socket. A single goroutine drives Connect/NextEvent; Disconnect may
// additionally be called from a shutdown goroutine to unblock a
// pending read, hence the mutex around the connection handle.
type Socket struct {
	path string

	mu   sync.Mutex
	conn net.Conn
	r    *bufio.Reader
}

func NewSocket(path string) *Socket {
	return &Socket{path: path}
}

// Connect opens the socket. Calling it while already connected logs a
// warning and leaves the existing connection in place.
func (s *Socket) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		logging.Warnf("LIRC socket %s already connected", s.path)
		return nil
	}
	conn, err := net.Dial("unix", s.path)
	if err != nil {
		return err
	}
	s.conn = conn
	s.r = bufio.NewReader(conn)
	return nil
}

// Disconnect closes the socket if open. Safe to call repeatedly and
// safe to call concurrently with a blocked NextEvent, which it
// unblocks.
func (s *Socket) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
		s.r = nil
	}
}

// NextEvent blocks until one frame line arrives. Empty lines are
// skipped. Read errors and EOF both surface as ErrDisconnected.
func (s *Socket) NextEvent() (Frame, error) {
	s.mu.Lock()
	r := s.r
	s.mu.Unlock()
	if r == nil {
		return Frame{}, fmt.Errorf("%w: not connected", ErrDisconnected)
	}
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			// EOF means the peer closed; anything else is a socket
			// error. Either way the connection is gone.
			return Frame{}, fmt.Errorf("%w: %v", ErrDisconnected, err)
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			continue
		}
		logging.Debugf("received LIRC event: %q", line)
		return ParseFrame(line)
	}
}
