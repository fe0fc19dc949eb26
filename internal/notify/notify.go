// Package notify delivers presentation-only session notifications such as
// "Files attached" to the log, hooks and NATS.
package notify

import (
	"context"

	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/hooks"
	"github.com/soyeahso/agentdesk/internal/logging"
)

// Notifier is fire-and-forget: delivery problems are logged by the
// implementation and never reported to the caller.
type Notifier interface {
	Notify(ctx context.Context, sessionID string, n domain.Notification)
}

// Func adapts a function to the Notifier interface.
type Func func(ctx context.Context, sessionID string, n domain.Notification)

func (f Func) Notify(ctx context.Context, sessionID string, n domain.Notification) {
	f(ctx, sessionID, n)
}

// Multi fans a notification out to every notifier in order.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, sessionID string, n domain.Notification) {
	for _, nt := range m {
		if nt != nil {
			nt.Notify(ctx, sessionID, n)
		}
	}
}

// LogNotifier writes notifications to the log.
type LogNotifier struct {
	log *logging.Logger
}

// NewLogNotifier creates a notifier that logs at info level.
func NewLogNotifier(log *logging.Logger) *LogNotifier {
	return &LogNotifier{log: log.Sub("notify")}
}

func (l *LogNotifier) Notify(_ context.Context, sessionID string, n domain.Notification) {
	l.log.Info().
		Str("sessionId", sessionID).
		Str("title", n.Title).
		Msg(n.Description)
}

// HookNotifier turns notifications into files_attached hook events.
type HookNotifier struct {
	hooks *hooks.Manager
}

// NewHookNotifier creates a notifier that emits through m.
func NewHookNotifier(m *hooks.Manager) *HookNotifier {
	return &HookNotifier{hooks: m}
}

func (h *HookNotifier) Notify(ctx context.Context, sessionID string, n domain.Notification) {
	h.hooks.Emit(ctx, hooks.EventFilesAttached, map[string]any{
		"sessionId":   sessionID,
		"title":       n.Title,
		"description": n.Description,
	})
}
