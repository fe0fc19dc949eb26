package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/soyeahso/agentdesk/internal/config"
)

// DefaultCommandTimeout bounds a shell hook when its entry sets no timeout.
const DefaultCommandTimeout = 5 * time.Second

// CommandHandler returns a Handler that runs command through `sh -c` with
// the JSON-encoded payload on stdin. Event name and session id are also
// exported as AGENTDESK_EVENT and AGENTDESK_SESSION_ID.
func CommandHandler(command string, timeout time.Duration) Handler {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return func(ctx context.Context, p Payload) error {
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encoding payload: %w", err)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		cmd := exec.CommandContext(ctx, "sh", "-c", command)
		cmd.Stdin = bytes.NewReader(body)
		cmd.Env = append(cmd.Environ(), "AGENTDESK_EVENT="+p.Event)
		if p.SessionID != "" {
			cmd.Env = append(cmd.Env, "AGENTDESK_SESSION_ID="+p.SessionID)
		}

		var stderr bytes.Buffer
		cmd.Stderr = &stderr

		if err := cmd.Run(); err != nil {
			if exitErr, ok := err.(*exec.ExitError); ok {
				return fmt.Errorf("hook %q exited %d: %s", command, exitErr.ExitCode(), strings.TrimSpace(stderr.String()))
			}
			return fmt.Errorf("hook %q: %w", command, err)
		}
		return nil
	}
}

// RegisterConfig registers one CommandHandler per configured hook entry and
// returns how many were registered. Commands run in the background, so a
// slow hook never delays a session.
func RegisterConfig(m *Manager, cfg config.HooksConfig) int {
	byEvent := map[string][]config.HookEntry{
		EventSessionStart:     cfg.SessionStart,
		EventSessionEnd:       cfg.SessionEnd,
		EventFilesAttached:    cfg.FilesAttached,
		EventMessageSubmitted: cfg.MessageSubmitted,
		EventResponseReady:    cfg.ResponseReady,
		EventResponseFailed:   cfg.ResponseFailed,
		EventGatewayStart:     cfg.GatewayStart,
		EventGatewayStop:      cfg.GatewayStop,
	}

	n := 0
	for _, event := range AllEvents {
		for i, entry := range byEvent[event] {
			if strings.TrimSpace(entry.Command) == "" {
				continue
			}
			name := fmt.Sprintf("config:%s:%d", event, i)
			h := CommandHandler(entry.Command, time.Duration(entry.Timeout)*time.Millisecond)
			m.On(event, name, m.Background(name, h))
			n++
		}
	}
	return n
}
