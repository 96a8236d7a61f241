package hass

import (
	"context"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/crowbarz/lirc2hass/internal/logging"
)

const (
	msgAuthRequired = "auth_required"
	msgAuth         = "auth"
	msgAuthOK       = "auth_ok"
	msgFireEvent    = "fire_event"
	msgResult       = "result"

	handshakeTimeout = 10 * time.Second
	responseTimeout  = 5 * time.Second
)

// wsMessage is the inbound half of the Home Assistant WebSocket
// protocol: every message carries a type, command replies additionally
// carry the id of the command they answer.
type wsMessage struct {
	Type    string `json:"type"`
	ID      int    `json:"id,omitempty"`
	Success *bool  `json:"success,omitempty"`
	Message string `json:"message,omitempty"`
}

type authMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token"`
}

type fireEventMessage struct {
	Type      string    `json:"type"`
	ID        int       `json:"id"`
	EventType string    `json:"event_type"`
	EventData eventData `json:"event_data"`
}

type eventData struct {
	ButtonName string `json:"button_name"`
}

// WSClient fires events over a persistent authenticated WebSocket
// session. The session is opened lazily on the first send and
// destroyed on any transport error; the next send reconnects and
// re-authenticates. Command ids are monotonic from 1 within one
// session.
type WSClient struct {
	url    string
	token  string
	dialer *websocket.Dialer

	// bounded waits for the auth handshake and for correlated replies
	handshakeTimeout time.Duration
	responseTimeout  time.Duration

	mu     sync.Mutex // guards conn against Close from the shutdown goroutine
	conn   *websocket.Conn
	nextID int
}

// NewWSClient creates a client for <base>/api/websocket. The base URL
// uses the http or https scheme, matching the REST transport's
// configuration.
func NewWSClient(baseURL, token string) (*WSClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/api/websocket"
	return &WSClient{
		url:              u.String(),
		token:            token,
		dialer:           websocket.DefaultDialer,
		handshakeTimeout: handshakeTimeout,
		responseTimeout:  responseTimeout,
	}, nil
}

// connect dials and runs the auth handshake: wait for auth_required,
// send the token, require auth_ok. Any other reply fails the session
// before it reaches steady state.
func (c *WSClient) connect(ctx context.Context) (*websocket.Conn, error) {
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return nil, upstreamErrf("dial %s: %v", c.url, err)
	}

	conn.SetReadDeadline(time.Now().Add(c.handshakeTimeout))
	var msg wsMessage
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return nil, upstreamErrf("handshake: %v", err)
	}
	if msg.Type != msgAuthRequired {
		conn.Close()
		return nil, upstreamErrf("handshake: expected %q, got %q", msgAuthRequired, msg.Type)
	}
	if err := conn.WriteJSON(authMessage{Type: msgAuth, AccessToken: c.token}); err != nil {
		conn.Close()
		return nil, upstreamErrf("sending auth: %v", err)
	}
	if err := conn.ReadJSON(&msg); err != nil {
		conn.Close()
		return nil, upstreamErrf("waiting for auth result: %v", err)
	}
	if msg.Type != msgAuthOK {
		conn.Close()
		if msg.Message != "" {
			return nil, upstreamErrf("authentication failed: %s (%s)", msg.Type, msg.Message)
		}
		return nil, upstreamErrf("authentication failed: %s", msg.Type)
	}
	conn.SetReadDeadline(time.Time{})

	c.mu.Lock()
	c.conn = conn
	c.nextID = 0
	c.mu.Unlock()
	logging.Infof("websocket session to %s authenticated", c.url)
	return conn, nil
}

// SendKeyEvent sends one fire_event command and blocks until its
// correlated result arrives. The stream may interleave server-pushed
// messages and stale replies with the one we wait for; anything that
// is not a result carrying our id is discarded. The wait is bounded by
// the response timeout.
func (c *WSClient) SendKeyEvent(ctx context.Context, key string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		var err error
		if conn, err = c.connect(ctx); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.mu.Unlock()

	cmd := fireEventMessage{
		Type:      msgFireEvent,
		ID:        id,
		EventType: EventType,
		EventData: eventData{ButtonName: key},
	}
	if err := conn.WriteJSON(cmd); err != nil {
		c.drop(conn)
		return upstreamErrf("sending fire_event %d: %v", id, err)
	}

	conn.SetReadDeadline(time.Now().Add(c.responseTimeout))
	for {
		var reply wsMessage
		if err := conn.ReadJSON(&reply); err != nil {
			c.drop(conn)
			return upstreamErrf("waiting for result %d: %v", id, err)
		}
		if reply.Type != msgResult || reply.ID != id {
			logging.Debugf("discarding message type %q id %d while waiting for result %d", reply.Type, reply.ID, id)
			continue
		}
		conn.SetReadDeadline(time.Time{})
		if reply.Success != nil && !*reply.Success {
			// The server answered but refused the command; the session
			// itself is still good.
			return upstreamErrf("fire_event %d rejected: %s", id, reply.Message)
		}
		return nil
	}
}

// drop destroys the session after a transport error, but only if a
// concurrent Close has not already replaced it.
func (c *WSClient) drop(conn *websocket.Conn) {
	conn.Close()
	c.mu.Lock()
	if c.conn == conn {
		c.conn = nil
	}
	c.mu.Unlock()
}

// Close destroys the current session, unblocking any pending read. The
// next SendKeyEvent opens a fresh session.
func (c *WSClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	return nil
}
