package session

import (
	"context"
	"fmt"
	"strings"

	"github.com/soyeahso/agentdesk/internal/domain"
)

// Request is the input to one response generation.
type Request struct {
	SessionID string
	Agent     domain.Agent
	Message   domain.Message   // the user message that triggered generation
	History   []domain.Message // timeline up to and including Message
}

// Reply is the content of the agent message a Responder produces.
type Reply struct {
	Content   string
	Artifacts []domain.Artifact
}

// Responder produces the agent's answer to a submitted message.
// Implementations must return promptly once ctx is done.
type Responder interface {
	Respond(ctx context.Context, req Request) (Reply, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, req Request) (Reply, error)

func (f ResponderFunc) Respond(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// DraftPlaceholder is the content of the draft artifact produced by TemplateResponder.
const DraftPlaceholder = "This would contain the AI-generated content based on your requirements..."

// TemplateResponder answers every message with a fixed role-specific reply
// carrying one draft artifact.
type TemplateResponder struct{}

func (TemplateResponder) Respond(ctx context.Context, req Request) (Reply, error) {
	if err := ctx.Err(); err != nil {
		return Reply{}, err
	}
	role := req.Agent.Role
	return Reply{
		Content: fmt.Sprintf(
			"I understand you need assistance with %s tasks. Based on your input, I'll help you create the necessary documentation and Jira tickets. Let me analyze the requirements and provide you with structured deliverables.",
			strings.ToLower(role),
		),
		Artifacts: []domain.Artifact{{
			Kind:    domain.ArtifactDraft,
			Title:   role + " Deliverable Draft",
			Content: DraftPlaceholder,
		}},
	}, nil
}

// Greeting is the agent message that opens every session.
func Greeting(agent domain.Agent) string {
	return fmt.Sprintf(
		"Hello! I'm %s, your AI assistant for %s tasks. I can help you with drafting user stories, creating Jira tickets, analyzing requirements, and leveraging historical project data. How can I assist you today?",
		agent.Name, strings.ToLower(agent.Role),
	)
}

// failureContent is shown in place of a reply when generation fails.
const failureContent = "Sorry, I wasn't able to prepare a response. Please try sending your message again."

// Error codes carried on error-marked agent messages.
const (
	CodeTimeout        = "timeout"
	CodeResponderError = "responder_error"
	CodeResponderPanic = "responder_panic"
)

// respondSafely calls r and converts a panic into an error.
func respondSafely(ctx context.Context, r Responder, req Request) (reply Reply, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p}
		}
	}()
	return r.Respond(ctx, req)
}

type panicError struct{ value any }

func (e *panicError) Error() string { return fmt.Sprintf("responder panicked: %v", e.value) }
