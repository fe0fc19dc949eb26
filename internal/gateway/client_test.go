package gateway

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/agentdesk/internal/config"
	"github.com/soyeahso/agentdesk/internal/logging"
)

func testLog() *logging.Logger {
	return logging.New(nil, "silent")
}

func detachedClient(id string) *Client {
	c := NewClient(nil, ClientInfo{ID: "client-" + id}, AuthResult{OK: true}, testLog())
	c.ConnID = id
	return c
}

// --- ClientRegistry ---

func TestClientRegistry(t *testing.T) {
	reg := NewClientRegistry(testLog())
	assert.Equal(t, 0, reg.Count())

	for i := 0; i < 3; i++ {
		reg.Add(detachedClient(fmt.Sprintf("conn-%d", i)))
	}
	assert.Equal(t, 3, reg.Count())

	got, ok := reg.Get("conn-1")
	require.True(t, ok)
	assert.Equal(t, "client-conn-1", got.Info.ID)

	reg.Remove("conn-1")
	reg.Remove("nonexistent")
	assert.Equal(t, 2, reg.Count())
	_, ok = reg.Get("conn-1")
	assert.False(t, ok)
}

func TestClientRegistryCloseAll(t *testing.T) {
	reg := NewClientRegistry(testLog())
	a, b := detachedClient("a"), detachedClient("b")
	reg.Add(a)
	reg.Add(b)

	reg.CloseAll()
	assert.Equal(t, 0, reg.Count())
	assert.ErrorIs(t, a.Send(Frame{}), ErrClientClosed)
	assert.ErrorIs(t, b.Send(Frame{}), ErrClientClosed)
}

// --- Client subscriptions and outbox ---

func TestClient_TrackAndUntrack(t *testing.T) {
	c := detachedClient("c")
	cancelled := 0
	cancel := func() { cancelled++ }

	assert.True(t, c.track("s-1", cancel))
	assert.False(t, c.track("s-1", cancel), "second subscription to the same session is refused")
	assert.Equal(t, 1, c.Subscriptions())

	assert.True(t, c.untrack("s-1"))
	assert.False(t, c.untrack("s-1"))
	assert.Equal(t, 1, cancelled)
	assert.Zero(t, c.Subscriptions())
}

func TestClient_CloseCancelsSubscriptions(t *testing.T) {
	c := detachedClient("c")
	cancelled := map[string]bool{}
	c.track("s-1", func() { cancelled["s-1"] = true })
	c.track("s-2", func() { cancelled["s-2"] = true })

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
	assert.Equal(t, map[string]bool{"s-1": true, "s-2": true}, cancelled)
	assert.False(t, c.track("s-3", func() {}), "closed clients take no new subscriptions")
}

func TestClient_EnqueueAfterClose(t *testing.T) {
	c := detachedClient("c")
	require.NoError(t, c.Close())
	assert.False(t, c.Enqueue(Frame{Type: FrameTypeEvent}))
}

func TestClient_EnqueueOverflowDisconnects(t *testing.T) {
	c := detachedClient("c")
	for i := 0; i < DefaultOutboxSize; i++ {
		require.True(t, c.Enqueue(Frame{Type: FrameTypeEvent}))
	}

	assert.False(t, c.Enqueue(Frame{Type: FrameTypeEvent}))
	assert.Eventually(t, func() bool {
		select {
		case <-c.done:
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

// --- ResolveBindAddr ---

func TestResolveBindAddr(t *testing.T) {
	tests := []struct {
		name string
		bind string
		port int
		host string
		want string
	}{
		{"loopback", "loopback", 18790, "", "127.0.0.1:18790"},
		{"lan", "lan", 9999, "", "0.0.0.0:9999"},
		{"auto", "auto", 8080, "", "0.0.0.0:8080"},
		{"custom default host", "custom", 3000, "", "0.0.0.0:3000"},
		{"custom host", "custom", 3000, "10.0.0.1", "10.0.0.1:3000"},
		{"custom ipv6", "custom", 3000, "::1", "[::1]:3000"},
		{"unknown falls back", "whatever", 5000, "", "127.0.0.1:5000"},
		{"empty falls back", "", 5000, "", "127.0.0.1:5000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.GatewayConfig{Bind: tt.bind, Port: tt.port, CustomBindHost: tt.host}
			assert.Equal(t, tt.want, ResolveBindAddr(cfg))
		})
	}
}
