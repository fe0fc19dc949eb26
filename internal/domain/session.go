package domain

import "time"

// Phase is the state of a session's response cycle.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseAwaitingResponse Phase = "awaiting_response"
	PhaseClosed           Phase = "closed"
)

// Snapshot is a read-only copy of a session's state for renderers.
type Snapshot struct {
	SessionID string          `json:"sessionId"`
	Agent     Agent           `json:"agent"`
	Phase     Phase           `json:"phase"`
	Timeline  []Message       `json:"timeline"`
	Staged    []AttachmentRef `json:"staged"`
	StartedAt time.Time       `json:"startedAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Last returns the most recently appended message, if any.
func (s Snapshot) Last() (Message, bool) {
	if len(s.Timeline) == 0 {
		return Message{}, false
	}
	return s.Timeline[len(s.Timeline)-1], true
}
