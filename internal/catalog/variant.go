package catalog

import (
	"strings"

	"github.com/soyeahso/agentdesk/internal/domain"
)

// Variant is the presentation family an agent role belongs to.
type Variant string

const (
	VariantProductOwner Variant = "product-owner"
	VariantDeveloper    Variant = "developer"
	VariantScrumMaster  Variant = "scrum-master"
	VariantTester       Variant = "tester"
	VariantDefault      Variant = "default"
)

// Variants lists every variant, default last.
var Variants = []Variant{
	VariantProductOwner,
	VariantDeveloper,
	VariantScrumMaster,
	VariantTester,
	VariantDefault,
}

// Tone is the semantic colour used for an agent status indicator.
type Tone string

const (
	ToneAccent      Tone = "accent"
	ToneDestructive Tone = "destructive"
	ToneSecondary   Tone = "secondary"
	ToneMuted       Tone = "muted"
)

var variantByRole = map[string]Variant{
	"product owner": VariantProductOwner,
	"developer":     VariantDeveloper,
	"scrum master":  VariantScrumMaster,
	"tester":        VariantTester,
}

var toneByStatus = map[domain.AgentStatus]Tone{
	domain.AgentAvailable: ToneAccent,
	domain.AgentBusy:      ToneDestructive,
	domain.AgentTraining:  ToneSecondary,
}

// VariantOf maps a role label to its variant. Matching ignores case and
// surrounding space; unknown roles map to VariantDefault.
func VariantOf(role string) Variant {
	if v, ok := variantByRole[strings.ToLower(strings.TrimSpace(role))]; ok {
		return v
	}
	return VariantDefault
}

// StatusTone maps an agent status to its indicator tone.
func StatusTone(status domain.AgentStatus) Tone {
	if t, ok := toneByStatus[status]; ok {
		return t
	}
	return ToneMuted
}
