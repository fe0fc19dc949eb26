package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentdesk/internal/config"
)

func TestCommandHandler_ReceivesPayloadOnStdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "payload.json")
	h := CommandHandler("cat > "+out, time.Second)

	err := h(context.Background(), Payload{
		Event: EventSessionStart,
		Data:  map[string]any{"sessionId": "abc"},
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var got Payload
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, EventSessionStart, got.Event)
	assert.Equal(t, "abc", got.Data["sessionId"])
}

func TestCommandHandler_Env(t *testing.T) {
	out := filepath.Join(t.TempDir(), "env.txt")
	h := CommandHandler(`printf "%s/%s" "$AGENTDESK_EVENT" "$AGENTDESK_SESSION_ID" > `+out, time.Second)

	require.NoError(t, h(context.Background(), Payload{
		Event:     EventSessionEnd,
		SessionID: "s-9",
	}))

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "session_end/s-9", string(raw))
}

func TestCommandHandler_NonZeroExit(t *testing.T) {
	h := CommandHandler("echo boom >&2; exit 3", time.Second)

	err := h(context.Background(), Payload{Event: EventGatewayStart})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exited 3")
	assert.Contains(t, err.Error(), "boom")
}

func TestCommandHandler_Timeout(t *testing.T) {
	h := CommandHandler("sleep 5", 50*time.Millisecond)

	start := time.Now()
	err := h(context.Background(), Payload{Event: EventGatewayStart})
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRegisterConfig(t *testing.T) {
	m := testManager()

	n := RegisterConfig(m, config.HooksConfig{
		SessionStart:  []config.HookEntry{{Command: "true"}, {Command: "  "}},
		ResponseReady: []config.HookEntry{{Command: "true", Timeout: 100}},
		GatewayStop:   []config.HookEntry{{Command: "true"}},
	})

	assert.Equal(t, 3, n)
	assert.Equal(t, 1, m.Count(EventSessionStart))
	assert.Equal(t, 1, m.Count(EventResponseReady))
	assert.Equal(t, 1, m.Count(EventGatewayStop))
	assert.Equal(t, 0, m.Count(EventSessionEnd))
}

func TestRegisterConfig_RunsInBackground(t *testing.T) {
	m := testManager()
	out := filepath.Join(t.TempDir(), "ended.json")
	RegisterConfig(m, config.HooksConfig{
		SessionEnd: []config.HookEntry{{Command: "sleep 0.1; cat > " + out}},
	})

	start := time.Now()
	m.Emit(context.Background(), EventSessionEnd, map[string]any{"sessionId": "s-3"})
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	m.Wait()
	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var got Payload
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "s-3", got.SessionID)
}
