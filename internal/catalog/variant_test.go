package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soyeahso/agentdesk/internal/domain"
)

func TestVariantOf(t *testing.T) {
	tests := []struct {
		role string
		want Variant
	}{
		{"Product Owner", VariantProductOwner},
		{"product owner", VariantProductOwner},
		{"Developer", VariantDeveloper},
		{"DEVELOPER", VariantDeveloper},
		{"Scrum Master", VariantScrumMaster},
		{"  Tester ", VariantTester},
		{"Architect", VariantDefault},
		{"", VariantDefault},
		{"product-owner", VariantDefault},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			assert.Equal(t, tt.want, VariantOf(tt.role))
		})
	}
}

func TestStatusTone(t *testing.T) {
	assert.Equal(t, ToneAccent, StatusTone(domain.AgentAvailable))
	assert.Equal(t, ToneDestructive, StatusTone(domain.AgentBusy))
	assert.Equal(t, ToneSecondary, StatusTone(domain.AgentTraining))
	assert.Equal(t, ToneMuted, StatusTone("offline"))
	assert.Equal(t, ToneMuted, StatusTone(""))
}

func TestVariantsCoversDefault(t *testing.T) {
	assert.Len(t, Variants, 5)
	assert.Equal(t, VariantDefault, Variants[len(Variants)-1])
}
