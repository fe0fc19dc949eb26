package gateway

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soyeahso/agentdesk/internal/logging"
)

// DefaultOutboxSize bounds the queued session events per client.
const DefaultOutboxSize = 256

// writeTimeout bounds a single frame write so one stalled socket cannot
// hold the client lock indefinitely.
const writeTimeout = 10 * time.Second

// Client represents an authenticated WebSocket connection.
type Client struct {
	ConnID      string
	Info        ClientInfo
	Socket      *websocket.Conn
	AuthResult  AuthResult
	ConnectedAt time.Time

	// outbox carries pushed event frames to writeLoop so that session
	// subscribers never block on a slow socket.
	outbox chan Frame
	done   chan struct{}

	mu     sync.Mutex
	closed bool
	subs   map[string]func() // sessionID → unsubscribe
	log    *logging.Logger
}

// NewClient creates a Client for a newly authenticated WebSocket connection.
func NewClient(conn *websocket.Conn, info ClientInfo, authResult AuthResult, log *logging.Logger) *Client {
	return &Client{
		ConnID:      uuid.New().String(),
		Info:        info,
		Socket:      conn,
		AuthResult:  authResult,
		ConnectedAt: time.Now(),
		outbox:      make(chan Frame, DefaultOutboxSize),
		done:        make(chan struct{}),
		subs:        make(map[string]func()),
		log:         log,
	}
}

// Send writes a frame to the socket. Safe for concurrent use.
func (c *Client) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClientClosed
	}
	c.Socket.SetWriteDeadline(time.Now().Add(writeTimeout))
	return c.Socket.WriteJSON(frame)
}

// Enqueue queues a frame for writeLoop without blocking. A client whose
// outbox is full is disconnected; it can resync with session.get.
func (c *Client) Enqueue(frame Frame) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.outbox <- frame:
		return true
	default:
		c.log.Warn().Str("connId", c.ConnID).Msg("client outbox full, disconnecting")
		go c.Close()
		return false
	}
}

// writeLoop sends queued frames until the client is closed.
func (c *Client) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case f := <-c.outbox:
			if err := c.Send(f); err != nil {
				c.log.Debug().Err(err).Str("connId", c.ConnID).Msg("event write failed")
				return
			}
		}
	}
}

// Respond sends a success response for the given request ID.
func (c *Client) Respond(reqID string, payload any) error {
	f, err := NewResponse(reqID, payload)
	if err != nil {
		return err
	}
	return c.Send(f)
}

// RespondError sends an error response for the given request ID.
func (c *Client) RespondError(reqID string, errShape ErrorShape) error {
	return c.Send(NewErrorResponse(reqID, errShape))
}

// ReadFrame reads the next frame from the WebSocket.
func (c *Client) ReadFrame() (Frame, error) {
	var f Frame
	err := c.Socket.ReadJSON(&f)
	return f, err
}

// track records the unsubscribe function for a session. It reports false,
// leaving the existing subscription in place, if one is already tracked.
func (c *Client) track(sessionID string, cancel func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.subs[sessionID]; ok || c.closed {
		return false
	}
	c.subs[sessionID] = cancel
	return true
}

// untrack cancels the subscription to a session, if any.
func (c *Client) untrack(sessionID string) bool {
	c.mu.Lock()
	cancel, ok := c.subs[sessionID]
	delete(c.subs, sessionID)
	c.mu.Unlock()
	if ok {
		cancel()
	}
	return ok
}

// Subscriptions returns the number of sessions the client follows.
func (c *Client) Subscriptions() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

// Close cancels every subscription and closes the WebSocket connection.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.done)
	subs := c.subs
	c.subs = make(map[string]func())
	c.mu.Unlock()

	for _, cancel := range subs {
		cancel()
	}
	if c.Socket == nil {
		return nil
	}
	return c.Socket.Close()
}

// ClientRegistry manages connected clients.
type ClientRegistry struct {
	mu      sync.RWMutex
	clients map[string]*Client // connID → Client
	log     *logging.Logger
}

// NewClientRegistry creates an empty client registry.
func NewClientRegistry(log *logging.Logger) *ClientRegistry {
	return &ClientRegistry{
		clients: make(map[string]*Client),
		log:     log,
	}
}

// Add registers a connected client.
func (r *ClientRegistry) Add(c *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.ConnID] = c
	r.log.Info().Str("connId", c.ConnID).Str("client", c.Info.ID).Msg("client connected")
}

// Remove unregisters a client by connection ID.
func (r *ClientRegistry) Remove(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, connID)
	r.log.Info().Str("connId", connID).Msg("client disconnected")
}

// Get returns a client by connection ID.
func (r *ClientRegistry) Get(connID string) (*Client, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[connID]
	return c, ok
}

// Count returns the number of connected clients.
func (r *ClientRegistry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// CloseAll closes all connected clients.
func (r *ClientRegistry) CloseAll() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[string]*Client)
	r.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
