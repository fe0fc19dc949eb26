package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/domain"
	"github.com/soyeahso/agentdesk/internal/logging"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, 4, c.Count())

	ids := make([]string, 0, 4)
	for _, a := range c.List() {
		ids = append(ids, a.ID)
		assert.Len(t, a.Capabilities, 6, a.ID)
		assert.Equal(t, domain.AgentAvailable, a.Status, a.ID)
		assert.Equal(t, "bg-"+a.ID, a.ColorToken)
		assert.Equal(t, Variant(a.ID), VariantOf(a.Role))
	}
	assert.Equal(t, []string{"product-owner", "developer", "scrum-master", "tester"}, ids)
}

func TestGet(t *testing.T) {
	c := Default()

	a, ok := c.Get("scrum-master")
	require.True(t, ok)
	assert.Equal(t, "ScrumMaster AI", a.Name)
	assert.Equal(t, "Scrum Master", a.Role)
	assert.Equal(t, "Settings", a.Icon)

	_, ok = c.Get("architect")
	assert.False(t, ok)
}

func TestLookup_Unknown(t *testing.T) {
	_, err := Default().Lookup("nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownAgent))
}

func TestListReturnsCopies(t *testing.T) {
	c := Default()
	list := c.List()
	list[0].Name = "mutated"
	list[0].Capabilities[0] = "mutated"

	a, _ := c.Get("product-owner")
	assert.Equal(t, "ProductOwner AI", a.Name)
	assert.Equal(t, "Epic Creation", a.Capabilities[0])
}

func TestNew_DuplicateReplacesInPlace(t *testing.T) {
	c := New(
		domain.Agent{ID: "a", Name: "first"},
		domain.Agent{ID: "b", Name: "B"},
		domain.Agent{ID: "a", Name: "second"},
	)
	list := c.List()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].Name)
	assert.Equal(t, domain.AgentAvailable, list[0].Status)
}

func TestFromConfig(t *testing.T) {
	entries := []config.AgentEntry{
		{ID: "developer", Status: "busy"},
		{ID: "architect", Name: "Architect AI", Role: "Architect", Capabilities: []string{"Diagrams"}},
		{ID: "qa", Role: "tester"},
	}

	c := FromConfig(entries, Default(), logging.Nop())
	require.Equal(t, 6, c.Count())

	dev, _ := c.Get("developer")
	assert.Equal(t, domain.AgentBusy, dev.Status)
	assert.Equal(t, "Developer AI", dev.Name, "unset fields keep the built-in value")
	assert.Len(t, dev.Capabilities, 6)

	arch, _ := c.Get("architect")
	assert.Equal(t, "Architect AI", arch.Name)
	assert.Equal(t, "bg-default", arch.ColorToken)
	assert.Equal(t, domain.AgentAvailable, arch.Status)

	qa, _ := c.Get("qa")
	assert.Equal(t, "qa", qa.Name)
	assert.Equal(t, "bg-tester", qa.ColorToken)

	// base is untouched
	base := Default()
	d, _ := base.Get("developer")
	assert.Equal(t, domain.AgentAvailable, d.Status)
}

func TestFromConfig_NilBase(t *testing.T) {
	c := FromConfig([]config.AgentEntry{{ID: "solo"}}, nil, logging.Nop())
	assert.Equal(t, 1, c.Count())
}

func TestCapabilityPreview(t *testing.T) {
	a, _ := Default().Get("tester")

	shown, more := CapabilityPreview(a, 3)
	assert.Equal(t, []string{"Test Case Creation", "Scenario Mapping", "Quality Assurance"}, shown)
	assert.Equal(t, 3, more)

	shown, more = CapabilityPreview(a, 10)
	assert.Len(t, shown, 6)
	assert.Zero(t, more)

	shown, more = CapabilityPreview(a, -1)
	assert.Empty(t, shown)
	assert.Equal(t, 6, more)
}
