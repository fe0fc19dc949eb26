package session

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionClosed is returned by mutating calls after Back.
	ErrSessionClosed = errors.New("session closed")

	// ErrUnsupportedAttachment is the rejection reason for a file type outside the allow-list.
	ErrUnsupportedAttachment = errors.New("unsupported attachment type")

	// ErrAttachmentTooLarge is the rejection reason for a file over the size limit.
	ErrAttachmentTooLarge = errors.New("attachment too large")

	// ErrSessionNotFound is returned by the Manager for unknown session ids.
	ErrSessionNotFound = errors.New("session not found")
)

// AttachmentError reports why a file was refused by the staging area.
type AttachmentError struct {
	Name   string
	Reason error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment %q: %v", e.Name, e.Reason)
}

func (e *AttachmentError) Unwrap() error { return e.Reason }
