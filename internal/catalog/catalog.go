// Package catalog holds the set of selectable assistant agents.
package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/logging"
)

// ErrUnknownAgent is returned when an agent id is not in the catalog.
var ErrUnknownAgent = errors.New("unknown agent")

// Catalog is an ordered, read-only set of agent descriptors.
// Callers always receive copies; the catalog is never mutated after construction.
type Catalog struct {
	mu     sync.RWMutex
	order  []string
	agents map[string]domain.Agent
}

// New creates a catalog holding agents in the given order.
// A later agent with a duplicate id replaces the earlier one in place.
func New(agents ...domain.Agent) *Catalog {
	c := &Catalog{agents: make(map[string]domain.Agent, len(agents))}
	for _, a := range agents {
		c.put(a)
	}
	return c
}

func (c *Catalog) put(a domain.Agent) {
	if a.Status == "" {
		a.Status = domain.AgentAvailable
	}
	if _, exists := c.agents[a.ID]; !exists {
		c.order = append(c.order, a.ID)
	}
	c.agents[a.ID] = a.Clone()
}

// Default returns the four built-in agents.
func Default() *Catalog {
	return New(builtins()...)
}

// FromConfig overlays configured entries on base. Entries with a known id
// override only the fields they set; unknown ids are appended.
func FromConfig(entries []config.AgentEntry, base *Catalog, log *logging.Logger) *Catalog {
	if base == nil {
		base = New()
	}
	log = log.Sub("catalog")

	merged := New(base.List()...)
	for _, e := range entries {
		a, exists := merged.agents[e.ID]
		if !exists {
			a = domain.Agent{ID: e.ID}
		}
		if e.Name != "" {
			a.Name = e.Name
		}
		if e.Role != "" {
			a.Role = e.Role
		}
		if e.Description != "" {
			a.Description = e.Description
		}
		if e.ColorToken != "" {
			a.ColorToken = e.ColorToken
		}
		if e.Icon != "" {
			a.Icon = e.Icon
		}
		if len(e.Capabilities) > 0 {
			a.Capabilities = e.Capabilities
		}
		if e.Status != "" {
			a.Status = domain.AgentStatus(e.Status)
		}
		if a.Name == "" {
			a.Name = a.ID
		}
		if a.Role == "" {
			a.Role = a.Name
		}
		if a.ColorToken == "" {
			a.ColorToken = "bg-" + string(VariantOf(a.Role))
		}
		merged.put(a)

		if exists {
			log.Debug().Str("agent", e.ID).Msg("agent overridden from config")
		} else {
			log.Info().Str("agent", e.ID).Msg("agent added from config")
		}
	}
	return merged
}

// Get returns a copy of the agent with the given id.
func (c *Catalog) Get(id string) (domain.Agent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	a, ok := c.agents[id]
	if !ok {
		return domain.Agent{}, false
	}
	return a.Clone(), true
}

// Lookup is Get with an error suitable for returning to callers.
func (c *Catalog) Lookup(id string) (domain.Agent, error) {
	a, ok := c.Get(id)
	if !ok {
		return domain.Agent{}, fmt.Errorf("%w: %q", ErrUnknownAgent, id)
	}
	return a, nil
}

// List returns copies of all agents in catalog order.
func (c *Catalog) List() []domain.Agent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Agent, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.agents[id].Clone())
	}
	return out
}

// Count returns the number of agents.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// CapabilityPreview returns at most n leading capabilities and how many
// were left out, for compact agent cards.
func CapabilityPreview(a domain.Agent, n int) (shown []string, more int) {
	if n < 0 {
		n = 0
	}
	if len(a.Capabilities) <= n {
		return append([]string(nil), a.Capabilities...), 0
	}
	return append([]string(nil), a.Capabilities[:n]...), len(a.Capabilities) - n
}

func builtins() []domain.Agent {
	return []domain.Agent{
		{
			ID:          "product-owner",
			Name:        "ProductOwner AI",
			Role:        "Product Owner",
			Description: "Expert in drafting epics, user stories, and requirement analysis. Integrates with Jira for seamless project management and leverages historical data for informed decisions.",
			ColorToken:  "bg-product-owner",
			Icon:        "User",
			Capabilities: []string{
				"Epic Creation",
				"User Story Drafting",
				"Requirement Analysis",
				"Sprint Planning",
				"Jira Integration",
				"Historical Data Analysis",
			},
			Status: domain.AgentAvailable,
		},
		{
			ID:          "developer",
			Name:        "Developer AI",
			Role:        "Developer",
			Description: "Specialized in breaking down user stories into technical tasks, creating development workflows, and providing code architecture guidance with Jira integration.",
			ColorToken:  "bg-developer",
			Icon:        "Code",
			Capabilities: []string{
				"Task Breakdown",
				"Technical Analysis",
				"Code Architecture",
				"Workflow Design",
				"Jira Task Creation",
				"Development Planning",
			},
			Status: domain.AgentAvailable,
		},
		{
			ID:          "scrum-master",
			Name:        "ScrumMaster AI",
			Role:        "Scrum Master",
			Description: "Facilitates agile processes, creates Jira boards, manages sprint planning, and optimizes team workflows based on historical performance data.",
			ColorToken:  "bg-scrum-master",
			Icon:        "Settings",
			Capabilities: []string{
				"Board Creation",
				"Sprint Planning",
				"Process Optimization",
				"Team Analytics",
				"Workflow Management",
				"Performance Tracking",
			},
			Status: domain.AgentAvailable,
		},
		{
			ID:          "tester",
			Name:        "Tester AI",
			Role:        "Tester",
			Description: "Creates comprehensive test cases, maps testing scenarios to user stories, and maintains quality assurance standards with full Jira integration.",
			ColorToken:  "bg-tester",
			Icon:        "TestTube",
			Capabilities: []string{
				"Test Case Creation",
				"Scenario Mapping",
				"Quality Assurance",
				"Test Planning",
				"Bug Tracking",
				"Coverage Analysis",
			},
			Status: domain.AgentAvailable,
		},
	}
}
