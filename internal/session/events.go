package session

import "github.com/soyeahso/agentdesk/internal/domain"

// EventType names a controller state change.
type EventType string

const (
	EventMessageAppended EventType = "message_appended"
	EventStagingChanged  EventType = "staging_changed"
	EventPhaseChanged    EventType = "phase_changed"
	EventClosed          EventType = "closed"
)

// Event is delivered to subscribers after each mutation. Snapshot is the
// session state once the whole mutation has been applied and must be
// treated as read-only.
type Event struct {
	Type      EventType       `json:"type"`
	SessionID string          `json:"sessionId"`
	Message   *domain.Message `json:"message,omitempty"`
	Snapshot  domain.Snapshot `json:"snapshot"`
}

type subscriber struct {
	id int
	fn func(Event)
}

func messageEvent(m domain.Message) Event {
	return Event{Type: EventMessageAppended, Message: &m}
}
