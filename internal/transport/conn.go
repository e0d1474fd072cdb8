package transport

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/protocol"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. deck_updated carries the
	// whole configuration.
	maxMessageSize = 1 << 20

	handshakeTimeout = 10 * time.Second

	// DashboardPath is the socket endpoint on the server.
	DashboardPath = "/ws/dashboard"
)

var (
	// ErrClosed is returned when writing to a closed connection.
	ErrClosed = errors.New("socket closed")
	// ErrLocalIntent is returned when a local-only intent is emitted.
	ErrLocalIntent = errors.New("intent is local and cannot be sent")
)

// DashboardURL derives the socket URL from the server's HTTP base URL.
func DashboardURL(serverURL string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL %q: %w", serverURL, err)
	}
	switch u.Scheme {
	case "http", "ws":
		u.Scheme = "ws"
	case "https", "wss":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("invalid server URL %q: unsupported scheme %q", serverURL, u.Scheme)
	}
	u.Path = strings.TrimRight(u.Path, "/") + DashboardPath
	u.RawQuery = ""
	return u.String(), nil
}

// SessionHeader returns the handshake header carrying the session cookie.
func SessionHeader(session string) http.Header {
	h := http.Header{}
	if session != "" {
		h.Set("Cookie", (&http.Cookie{Name: "session", Value: session}).String())
	}
	return h
}

// Conn is a connected dashboard socket.
type Conn struct {
	ws  *websocket.Conn
	url string

	writeMu sync.Mutex

	events    chan protocol.Envelope
	done      chan struct{}
	closeOnce sync.Once

	errMu sync.Mutex
	err   error
}

// Dial opens the dashboard socket at rawURL.
func Dial(ctx context.Context, rawURL string, header http.Header) (*Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: handshakeTimeout,
	}

	ws, resp, err := dialer.DialContext(ctx, rawURL, header)
	if err != nil {
		if resp != nil {
			_ = resp.Body.Close()
			return nil, &HandshakeError{StatusCode: resp.StatusCode, Err: err}
		}
		return nil, fmt.Errorf("failed to dial %s: %w", rawURL, err)
	}
	logging.LogConnection(rawURL, "socket_connected")

	c := &Conn{
		ws:     ws,
		url:    rawURL,
		events: make(chan protocol.Envelope, 64),
		done:   make(chan struct{}),
	}

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.readLoop()
	go c.pingLoop()
	return c, nil
}

// HandshakeError is returned when the server rejects the socket upgrade.
type HandshakeError struct {
	StatusCode int
	Err        error
}

func (e *HandshakeError) Error() string {
	return fmt.Sprintf("socket handshake rejected (HTTP %d): %v", e.StatusCode, e.Err)
}

func (e *HandshakeError) Unwrap() error { return e.Err }

// Unauthorized reports whether the session was rejected.
func (e *HandshakeError) Unauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// URL returns the socket URL.
func (c *Conn) URL() string { return c.url }

// Events delivers inbound envelopes in arrival order. It is closed when the
// connection ends.
func (c *Conn) Events() <-chan protocol.Envelope { return c.events }

// Done is closed when the connection ends.
func (c *Conn) Done() <-chan struct{} { return c.done }

// Err returns why the connection ended, or nil while it is open or after a
// clean Close.
func (c *Conn) Err() error {
	c.errMu.Lock()
	defer c.errMu.Unlock()
	return c.err
}

// Connected reports whether the socket is still open.
func (c *Conn) Connected() bool {
	select {
	case <-c.done:
		return false
	default:
		return true
	}
}

// Emit sends an intent. Local intents are rejected.
func (c *Conn) Emit(intent protocol.Intent) error {
	if intent.Local() {
		return ErrLocalIntent
	}
	frame, err := protocol.Encode(intent.Event, intent.Data)
	if err != nil {
		return err
	}
	if err := c.write(websocket.TextMessage, frame); err != nil {
		return fmt.Errorf("failed to send %s: %w", intent.Event, err)
	}
	logging.LogSocketEvent("sent", intent.Event, frame)
	return nil
}

// Reconnect asks the server to reconnect to an upstream service.
func (c *Conn) Reconnect(s protocol.Service) error {
	return c.Emit(protocol.Reconnect(s))
}

// RequestSnapshots asks for fresh scene, audio input and avatar hotkey
// lists. It is sent on every connect.
func (c *Conn) RequestSnapshots() error {
	if err := c.Emit(protocol.RequestSceneDetails()); err != nil {
		return err
	}
	return c.Emit(protocol.RequestAvatarData())
}

// Close sends a close frame and tears the connection down.
func (c *Conn) Close() error {
	_ = c.write(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	c.shutdown(nil)
	return nil
}

func (c *Conn) write(messageType int, data []byte) error {
	if !c.Connected() {
		return ErrClosed
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(messageType, data)
}

func (c *Conn) shutdown(err error) {
	c.closeOnce.Do(func() {
		c.errMu.Lock()
		c.err = err
		c.errMu.Unlock()
		close(c.done)
		_ = c.ws.Close()
		if err != nil {
			logging.Warn("Socket connection lost", zap.String("url", c.url), zap.Error(err))
		} else {
			logging.LogConnection(c.url, "socket_closed")
		}
	})
}

func (c *Conn) readLoop() {
	defer close(c.events)
	for {
		messageType, data, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || !c.Connected() {
				c.shutdown(nil)
			} else {
				c.shutdown(err)
			}
			return
		}
		if messageType != websocket.TextMessage {
			logging.Debug("Ignoring non-text socket frame", zap.Int("type", messageType))
			continue
		}

		env, err := protocol.Decode(data)
		if err != nil {
			logging.Warn("Dropping malformed socket frame", zap.Error(err))
			continue
		}
		logging.LogSocketEvent("received", env.Event, data)

		select {
		case c.events <- env:
		case <-c.done:
			return
		}
	}
}

func (c *Conn) pingLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
			c.writeMu.Unlock()
			if err != nil {
				c.shutdown(fmt.Errorf("ping failed: %w", err))
				return
			}
		case <-c.done:
			return
		}
	}
}
