// Package hooks dispatches agentdesk session and gateway lifecycle events
// to registered handlers, including shell commands from the config file.
package hooks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/soyeahso/agentdesk/internal/logging"
)

// Event names for the hook system.
const (
	EventSessionStart     = "session_start"
	EventSessionEnd       = "session_end"
	EventFilesAttached    = "files_attached"
	EventMessageSubmitted = "message_submitted"
	EventResponseReady    = "response_ready"
	EventResponseFailed   = "response_failed"
	EventGatewayStart     = "gateway_start"
	EventGatewayStop      = "gateway_stop"
)

// EventAny subscribes a handler to every event.
const EventAny = "*"

// AllEvents lists all known hook event names.
var AllEvents = []string{
	EventSessionStart,
	EventSessionEnd,
	EventFilesAttached,
	EventMessageSubmitted,
	EventResponseReady,
	EventResponseFailed,
	EventGatewayStart,
	EventGatewayStop,
}

// Payload carries event data to hook handlers. SessionID is lifted from
// Data["sessionId"] and is empty for gateway events.
type Payload struct {
	Event     string         `json:"event"`
	SessionID string         `json:"sessionId,omitempty"`
	Time      time.Time      `json:"time"`
	Data      map[string]any `json:"data,omitempty"`
}

// Handler handles a hook event. Returning an error logs the failure but
// does not stop the remaining handlers.
type Handler func(ctx context.Context, p Payload) error

// Manager keeps hook registrations and dispatches events.
type Manager struct {
	mu       sync.RWMutex
	handlers map[string][]namedHandler
	log      *logging.Logger
	now      func() time.Time

	// background tracks handlers started through Background.
	background sync.WaitGroup
}

type namedHandler struct {
	name    string
	handler Handler
}

// NewManager creates a hook manager.
func NewManager(log *logging.Logger) *Manager {
	return &Manager{
		handlers: make(map[string][]namedHandler),
		log:      log.Sub("hooks"),
		now:      time.Now,
	}
}

// On registers a handler for event, or for every event when event is
// EventAny. The name identifies the handler in logs and for Off.
func (m *Manager) On(event, name string, handler Handler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[event] = append(m.handlers[event], namedHandler{name: name, handler: handler})
	m.log.Debug().Str("event", event).Str("handler", name).Msg("hook registered")
}

// Off removes all handlers with the given name from the event.
func (m *Manager) Off(event, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var kept []namedHandler
	for _, h := range m.handlers[event] {
		if h.name != name {
			kept = append(kept, h)
		}
	}
	if len(kept) == 0 {
		delete(m.handlers, event)
		return
	}
	m.handlers[event] = kept
}

// Emit calls the handlers for event in registration order, then the
// EventAny handlers. It returns once every handler has returned; use
// Background for handlers that may be slow.
func (m *Manager) Emit(ctx context.Context, event string, data map[string]any) {
	m.mu.RLock()
	handlers := make([]namedHandler, 0, len(m.handlers[event])+len(m.handlers[EventAny]))
	handlers = append(handlers, m.handlers[event]...)
	handlers = append(handlers, m.handlers[EventAny]...)
	m.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	p := Payload{Event: event, Time: m.now(), Data: data}
	if id, ok := data["sessionId"].(string); ok {
		p.SessionID = id
	}

	for _, h := range handlers {
		if err := h.handler(ctx, p); err != nil {
			m.log.Warn().
				Err(err).
				Str("event", event).
				Str("handler", h.name).
				Str("sessionId", p.SessionID).
				Msg("hook handler error")
		}
	}
}

// Background wraps h so each call runs on its own goroutine and Emit does
// not wait for it. The call keeps the emitter's values but not its
// cancellation. Errors are logged. Wait blocks until all calls are done.
func (m *Manager) Background(name string, h Handler) Handler {
	return func(ctx context.Context, p Payload) error {
		m.background.Add(1)
		go func() {
			defer m.background.Done()
			if err := h(context.WithoutCancel(ctx), p); err != nil {
				m.log.Warn().
					Err(err).
					Str("event", p.Event).
					Str("handler", name).
					Str("sessionId", p.SessionID).
					Msg("background hook error")
			}
		}()
		return nil
	}
}

// Wait blocks until every handler started through Background has returned.
func (m *Manager) Wait() {
	m.background.Wait()
}

// Count returns the number of handlers registered for an event.
func (m *Manager) Count(event string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers[event])
}

// Events returns the events that have at least one handler, sorted.
func (m *Manager) Events() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	events := make([]string, 0, len(m.handlers))
	for event, handlers := range m.handlers {
		if len(handlers) > 0 {
			events = append(events, event)
		}
	}
	sort.Strings(events)
	return events
}

// LogHandler writes every event it sees to log at debug level.
func LogHandler(log *logging.Logger) Handler {
	log = log.Sub("hooks")
	return func(_ context.Context, p Payload) error {
		ev := log.Debug().Str("event", p.Event)
		if p.SessionID != "" {
			ev = ev.Str("sessionId", p.SessionID)
		}
		ev.Msg("lifecycle event")
		return nil
	}
}
