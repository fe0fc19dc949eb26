package session

import (
	"mime"
	"path/filepath"
	"slices"
	"strings"

	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/domain"
)

// Policy decides which files the staging area accepts.
// The zero Policy accepts everything.
type Policy struct {
	AllowedExtensions []string // lower-case with leading dot; empty allows any
	MaxBytes          int64    // 0 = unlimited
}

// DefaultPolicy accepts the standard document types with no size limit.
func DefaultPolicy() Policy {
	return PolicyFromConfig(config.AttachmentsConfig{AllowedExtensions: config.DefaultExtensions})
}

// PolicyFromConfig builds a Policy from the attachments config section.
func PolicyFromConfig(cfg config.AttachmentsConfig) Policy {
	exts := make([]string, 0, len(cfg.AllowedExtensions))
	for _, e := range cfg.AllowedExtensions {
		exts = append(exts, strings.ToLower(e))
	}
	return Policy{AllowedExtensions: exts, MaxBytes: cfg.MaxBytes}
}

// Check returns an *AttachmentError if ref is not acceptable.
func (p Policy) Check(ref domain.AttachmentRef) error {
	if len(p.AllowedExtensions) > 0 {
		ext := strings.ToLower(filepath.Ext(ref.Name))
		if !slices.Contains(p.AllowedExtensions, ext) {
			return &AttachmentError{Name: ref.Name, Reason: ErrUnsupportedAttachment}
		}
	}
	if p.MaxBytes > 0 && ref.Size > p.MaxBytes {
		return &AttachmentError{Name: ref.Name, Reason: ErrAttachmentTooLarge}
	}
	return nil
}

var knownMimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	".txt":  "text/plain",
	".md":   "text/markdown",
}

// MimeTypeOf guesses a MIME type from a file name.
func MimeTypeOf(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if t, ok := knownMimeTypes[ext]; ok {
		return t
	}
	if t := mime.TypeByExtension(ext); t != "" {
		return t
	}
	return "application/octet-stream"
}

// staging is the ordered pre-submit holding area. It is not safe for
// concurrent use; the Controller guards it.
type staging struct {
	items []domain.AttachmentRef
}

func (s *staging) addAll(refs []domain.AttachmentRef) int {
	s.items = append(s.items, refs...)
	return len(s.items)
}

// remove drops the entry at i. Out-of-range indexes are ignored.
func (s *staging) remove(i int) bool {
	if i < 0 || i >= len(s.items) {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// drain returns every staged item and empties the area.
func (s *staging) drain() []domain.AttachmentRef {
	out := s.items
	s.items = nil
	return out
}

func (s *staging) list() []domain.AttachmentRef {
	return append([]domain.AttachmentRef(nil), s.items...)
}

func (s *staging) len() int { return len(s.items) }
