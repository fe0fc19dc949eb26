package domain

import "time"

// Role identifies who authored a timeline message.
type Role string

const (
	RoleUser  Role = "user"
	RoleAgent Role = "agent"
)

// MessageID is a per-session token that strictly increases in insertion order.
type MessageID uint64

// ArtifactKind tags the type of deliverable carried by an Artifact.
type ArtifactKind string

const (
	ArtifactDraft ArtifactKind = "draft"
)

// AttachmentRef is the metadata kept for a staged or submitted file.
// File content is never retained.
type AttachmentRef struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
}

// Artifact is a structured deliverable attached to an agent message.
type Artifact struct {
	Kind    ArtifactKind `json:"kind"`
	Title   string       `json:"title"`
	Content string       `json:"content"`
}

// MessageError marks an agent message produced by a failed response generation.
type MessageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Message is a single immutable entry in a session timeline.
type Message struct {
	ID          MessageID       `json:"id"`
	Role        Role            `json:"role"`
	Content     string          `json:"content"`
	Timestamp   time.Time       `json:"timestamp"`
	Attachments []AttachmentRef `json:"attachments,omitempty"`
	Artifacts   []Artifact      `json:"artifacts,omitempty"`
	Error       *MessageError   `json:"error,omitempty"`
}

// Shape is a bit set describing which parts of a Message are populated.
type Shape uint8

const (
	ShapeText Shape = 1 << iota
	ShapeAttachments
	ShapeArtifacts
	ShapeError
)

// Has reports whether every bit in part is set.
func (s Shape) Has(part Shape) bool { return s&part == part }

// Shape lets renderers switch over message parts without probing nil slices.
func (m Message) Shape() Shape {
	var s Shape
	if m.Content != "" {
		s |= ShapeText
	}
	if len(m.Attachments) > 0 {
		s |= ShapeAttachments
	}
	if len(m.Artifacts) > 0 {
		s |= ShapeArtifacts
	}
	if m.Error != nil {
		s |= ShapeError
	}
	return s
}

// Clone returns a deep copy of m.
func (m Message) Clone() Message {
	if m.Attachments != nil {
		m.Attachments = append([]AttachmentRef(nil), m.Attachments...)
	}
	if m.Artifacts != nil {
		m.Artifacts = append([]Artifact(nil), m.Artifacts...)
	}
	if m.Error != nil {
		e := *m.Error
		m.Error = &e
	}
	return m
}

// Notification is a fire-and-forget, presentation-only event such as
// "Files attached". It is never part of session state.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}
