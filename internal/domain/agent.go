package domain

// AgentStatus reports whether an agent can take new sessions.
type AgentStatus string

const (
	AgentAvailable AgentStatus = "available"
	AgentBusy      AgentStatus = "busy"
	AgentTraining  AgentStatus = "training"
)

// Valid reports whether s is one of the known statuses.
func (s AgentStatus) Valid() bool {
	switch s {
	case AgentAvailable, AgentBusy, AgentTraining:
		return true
	}
	return false
}

// Agent describes one selectable role-specialised assistant.
// Agents are owned by the catalog and handed to sessions by value.
type Agent struct {
	ID           string      `json:"id"`
	Name         string      `json:"name"`
	Role         string      `json:"role"`
	Description  string      `json:"description,omitempty"`
	ColorToken   string      `json:"colorToken,omitempty"`
	Icon         string      `json:"icon,omitempty"`
	Capabilities []string    `json:"capabilities,omitempty"`
	Status       AgentStatus `json:"status"`
}

// Clone returns a copy that shares no slices with a.
func (a Agent) Clone() Agent {
	if a.Capabilities != nil {
		caps := make([]string, len(a.Capabilities))
		copy(caps, a.Capabilities)
		a.Capabilities = caps
	}
	return a
}
