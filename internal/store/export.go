package store

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/soyeahso/agentdesk/internal/domain"
)

// Format selects the transcript export encoding.
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts "markdown", "md" or "json" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown export format %q (expected markdown or json)", s)
}

// Export writes snap to w in the given format.
func Export(w io.Writer, snap domain.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	case FormatMarkdown, "":
		_, err := io.WriteString(w, Markdown(snap))
		return err
	}
	return fmt.Errorf("unknown export format %q", format)
}

// Markdown renders a transcript as a markdown document.
func Markdown(snap domain.Snapshot) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s (%s)\n\n", snap.Agent.Name, snap.Agent.Role)
	fmt.Fprintf(&b, "- Session: `%s`\n", snap.SessionID)
	if !snap.StartedAt.IsZero() {
		fmt.Fprintf(&b, "- Started: %s\n", snap.StartedAt.UTC().Format(time.RFC3339))
	}
	if !snap.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "- Ended: %s\n", snap.UpdatedAt.UTC().Format(time.RFC3339))
	}
	fmt.Fprintf(&b, "- Messages: %d\n", len(snap.Timeline))

	for _, m := range snap.Timeline {
		fmt.Fprintf(&b, "\n## %s · %s\n\n", speaker(snap.Agent, m.Role), m.Timestamp.UTC().Format("15:04:05"))
		shape := m.Shape()
		if shape.Has(domain.ShapeText) {
			b.WriteString(m.Content)
			b.WriteString("\n")
		}
		if shape.Has(domain.ShapeError) {
			fmt.Fprintf(&b, "\n> error `%s`: %s\n", m.Error.Code, m.Error.Message)
		}
		if shape.Has(domain.ShapeAttachments) {
			b.WriteString("\nAttachments:\n\n")
			for _, a := range m.Attachments {
				fmt.Fprintf(&b, "- %s", a.Name)
				if a.Size > 0 {
					fmt.Fprintf(&b, " (%s)", FormatSize(a.Size))
				}
				b.WriteString("\n")
			}
		}
		for _, art := range m.Artifacts {
			fmt.Fprintf(&b, "\n### %s\n\n%s\n", art.Title, art.Content)
		}
	}
	return b.String()
}

func speaker(agent domain.Agent, role domain.Role) string {
	if role == domain.RoleUser {
		return "You"
	}
	return agent.Name
}

// FormatSize renders a byte count with a binary unit, e.g. "1.5 KB".
func FormatSize(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
