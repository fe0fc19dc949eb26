package gateway

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/hooks"
	"github.com/soyeahso/agentdesk/internal/logging"
	"github.com/soyeahso/agentdesk/internal/session"
	"github.com/soyeahso/agentdesk/internal/version"
)

var ErrClientClosed = errors.New("client connection closed")

const (
	maxPayloadBytes  = 4 * 1024 * 1024
	handshakeTimeout = 10 * time.Second
)

// AgentLister exposes the selectable agents.
type AgentLister interface {
	List() []domain.Agent
}

// Server is the agentdesk gateway HTTP + WebSocket server. It is a thin
// selector and renderer surface over a session.Manager.
type Server struct {
	cfg      config.Config
	auth     ResolvedAuth
	log      *logging.Logger
	sessions *session.Manager
	agents   AgentLister
	clients  *ClientRegistry
	handlers map[string]RequestHandler
	version  string
	eventSeq atomic.Int64

	// hooks is nil unless WithHooks is given.
	hooks *hooks.Manager

	mu          sync.Mutex
	startedAt   time.Time
	httpServer  *http.Server
	listenAddr  string
	upgrader    websocket.Upgrader
	authLimiter *authRateLimiter
}

// ServerOption configures the gateway server.
type ServerOption func(*Server)

// WithHooks sets the hook manager for lifecycle events.
func WithHooks(hm *hooks.Manager) ServerOption {
	return func(s *Server) {
		s.hooks = hm
	}
}

// New creates a new gateway server.
func New(cfg config.Config, sessions *session.Manager, agents AgentLister, log *logging.Logger, opts ...ServerOption) *Server {
	allowedOrigins := cfg.Gateway.ControlUI.AllowedOrigins
	s := &Server{
		cfg:         cfg,
		auth:        ResolveAuth(cfg.Gateway.Auth),
		log:         log.Sub("gateway"),
		sessions:    sessions,
		agents:      agents,
		clients:     NewClientRegistry(log.Sub("clients")),
		handlers:    make(map[string]RequestHandler),
		version:     version.Version,
		startedAt:   time.Now(),
		authLimiter: newAuthRateLimiter(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     checkWebSocketOrigin(allowedOrigins),
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	s.registerRPCHandlers()
	return s
}

// checkWebSocketOrigin returns a function that validates WebSocket Origin headers.
// If no origins are configured, only same-origin (no Origin header) or non-browser
// clients are allowed. If origins are configured, the Origin must match one of them.
func checkWebSocketOrigin(allowed []string) func(*http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		return originAllowed(origin, allowed)
	}
}

// Handle registers an RPC method handler.
func (s *Server) Handle(method string, handler RequestHandler) {
	s.handlers[method] = handler
}

// Methods returns the registered RPC method names in sorted order.
func (s *Server) Methods() []string {
	methods := make([]string, 0, len(s.handlers))
	for m := range s.handlers {
		methods = append(methods, m)
	}
	sort.Strings(methods)
	return methods
}

// Handler returns the routed HTTP handler wrapped in the middleware chain.
func (s *Server) Handler() http.Handler {
	return withMiddleware(s.router(), s.log, s.cfg.Gateway.ControlUI.AllowedOrigins)
}

// ResolveBindAddr computes the listen address from config.
func ResolveBindAddr(cfg config.GatewayConfig) string {
	switch cfg.Bind {
	case "loopback":
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	case "lan", "auto":
		return fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	case "custom":
		host := cfg.CustomBindHost
		if host == "" {
			host = "0.0.0.0"
		}
		return net.JoinHostPort(host, fmt.Sprint(cfg.Port))
	default:
		return fmt.Sprintf("127.0.0.1:%d", cfg.Port)
	}
}

// Start begins listening for HTTP and WebSocket connections.
// It blocks until the context is cancelled or an error occurs.
func (s *Server) Start(ctx context.Context) error {
	addr := ResolveBindAddr(s.cfg.Gateway)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve runs the gateway on an existing listener until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	if s.cfg.Gateway.TLS.Enabled {
		cert, err := tls.LoadX509KeyPair(s.cfg.Gateway.TLS.CertPath, s.cfg.Gateway.TLS.KeyPath)
		if err != nil {
			ln.Close()
			return fmt.Errorf("loading TLS certificate: %w", err)
		}
		ln = tls.NewListener(ln, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		s.log.Info().Msg("TLS enabled")
	} else if s.cfg.Gateway.Bind != "loopback" {
		s.log.Warn().Msg("TLS is not enabled; credentials will be transmitted in cleartext")
	}

	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	s.mu.Lock()
	s.httpServer = srv
	s.listenAddr = ln.Addr().String()
	s.startedAt = time.Now()
	s.mu.Unlock()

	limiterCtx, stopLimiter := context.WithCancel(ctx)
	defer stopLimiter()
	go s.authLimiter.run(limiterCtx)

	s.log.Info().
		Str("addr", ln.Addr().String()).
		Str("bind", s.cfg.Gateway.Bind).
		Str("auth", s.auth.Mode).
		Int("methods", len(s.handlers)).
		Msg("gateway server ready")

	if s.hooks != nil {
		s.hooks.Emit(ctx, hooks.EventGatewayStart, map[string]any{
			"addr": ln.Addr().String(),
		})
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		s.log.Info().Msg("shutting down gateway server")
		if s.hooks != nil {
			s.hooks.Emit(context.Background(), hooks.EventGatewayStop, nil)
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.clients.CloseAll()
		srv.Shutdown(shutdownCtx)
	}()

	err := srv.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}

// Addr returns the bound listen address, or empty string if not started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listenAddr
}

func (s *Server) uptime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.startedAt)
}

// handleWebSocket upgrades HTTP to WebSocket and runs the connection loop.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if !s.authLimiter.allow(r.RemoteAddr) {
		s.log.Warn().Str("remote", r.RemoteAddr).Msg("rate limited: too many failed auth attempts")
		http.Error(w, "too many requests", http.StatusTooManyRequests)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	conn.SetReadLimit(maxPayloadBytes)

	s.log.Debug().Str("remote", r.RemoteAddr).Msg("new websocket connection")

	client, err := s.handshake(conn)
	if err != nil {
		s.log.Warn().Err(err).Msg("handshake failed")
		s.authLimiter.recordFailure(r.RemoteAddr)
		conn.Close()
		return
	}

	s.clients.Add(client)
	go client.writeLoop()
	defer func() {
		s.clients.Remove(client.ConnID)
		client.Close()
	}()

	s.readLoop(client)
}

// handshake performs the WebSocket authentication handshake.
// Flow: server sends challenge → client sends connect → server validates → sends hello-ok.
func (s *Server) handshake(conn *websocket.Conn) (*Client, error) {
	conn.SetReadDeadline(time.Now().Add(handshakeTimeout))

	nonce := uuid.New().String()
	challenge, err := NewEvent(EventConnectChallenge, map[string]any{
		"nonce": nonce,
		"ts":    time.Now().UnixMilli(),
	}, 0)
	if err != nil {
		return nil, fmt.Errorf("creating challenge: %w", err)
	}
	if err := conn.WriteJSON(challenge); err != nil {
		return nil, fmt.Errorf("sending challenge: %w", err)
	}

	_, msg, err := conn.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("reading connect: %w", err)
	}

	var frame Frame
	if err := json.Unmarshal(msg, &frame); err != nil {
		return nil, fmt.Errorf("parsing connect frame: %w", err)
	}

	if frame.checkRequest() != nil || frame.Method != "connect" {
		sendErrorAndClose(conn, frame.ID, CodeProtocolError, "expected connect request")
		return nil, fmt.Errorf("expected connect request, got type=%s method=%s", frame.Type, frame.Method)
	}

	var params ConnectParams
	if err := json.Unmarshal(frame.Params, &params); err != nil {
		sendErrorAndClose(conn, frame.ID, CodeInvalidParams, "invalid connect params")
		return nil, fmt.Errorf("parsing connect params: %w", err)
	}
	proto, err := params.negotiate()
	if err != nil {
		sendErrorAndClose(conn, frame.ID, CodeProtocolError, "unsupported protocol version")
		return nil, err
	}

	authResult := Authorize(s.auth, params.Auth)
	if !authResult.OK {
		sendErrorAndClose(conn, frame.ID, CodeUnauthorized, authResult.Reason)
		return nil, fmt.Errorf("auth failed: %s", authResult.Reason)
	}

	conn.SetReadDeadline(time.Time{})

	client := NewClient(conn, params.Client, authResult, s.log.Sub("ws"))

	hello := HelloOK{
		Protocol: proto,
		Server: ServerInfo{
			Version: s.version,
			Commit:  version.Current().Commit,
			ConnID:  client.ConnID,
		},
		Features: Features{
			Methods: s.Methods(),
			Events:  []string{EventConnectChallenge, EventSession},
		},
		Policy: ServerPolicy{
			MaxPayloadBytes: maxPayloadBytes,
			MaxOutbox:       DefaultOutboxSize,
		},
	}

	resp, err := NewResponse(frame.ID, hello)
	if err != nil {
		return nil, fmt.Errorf("creating hello response: %w", err)
	}
	if err := conn.WriteJSON(resp); err != nil {
		return nil, fmt.Errorf("sending hello: %w", err)
	}

	s.log.Info().
		Str("connId", client.ConnID).
		Str("clientId", params.Client.ID).
		Str("clientVersion", params.Client.Version).
		Str("authMethod", authResult.Method).
		Msg("client authenticated")

	return client, nil
}

// readLoop processes incoming frames from an authenticated client.
func (s *Server) readLoop(client *Client) {
	for {
		frame, err := client.ReadFrame()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Str("connId", client.ConnID).Msg("client closed connection")
			} else {
				s.log.Debug().Err(err).Str("connId", client.ConnID).Msg("read loop ended")
			}
			return
		}

		if err := frame.checkRequest(); err != nil {
			if frame.Type == FrameTypeRequest {
				client.RespondError(frame.ID, ErrorShape{Code: CodeProtocolError, Message: err.Error()})
			} else {
				s.log.Debug().Str("type", frame.Type).Msg("ignoring non-request frame")
			}
			continue
		}

		s.dispatch(client, frame)
	}
}

// dispatch routes a request frame to the appropriate handler.
func (s *Server) dispatch(client *Client, frame Frame) {
	handler, ok := s.handlers[frame.Method]
	if !ok {
		client.RespondError(frame.ID, ErrorShape{
			Code:    CodeMethodNotFound,
			Message: "unknown method: " + frame.Method,
		})
		return
	}

	handler(&RequestContext{
		Client: client,
		Frame:  frame,
		Server: s,
	})
}

// sendErrorAndClose sends an error response and closes the connection.
func sendErrorAndClose(conn *websocket.Conn, reqID, code, message string) {
	conn.WriteJSON(NewErrorResponse(reqID, ErrorShape{
		Code:    code,
		Message: message,
	}))
	conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, message))
}
