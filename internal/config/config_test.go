package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 18790, cfg.Gateway.Port)
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
	assert.Equal(t, "token", cfg.Gateway.Auth.Mode)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 30, cfg.Session.IdleMinutes)
	assert.Equal(t, 2000, cfg.Session.ResponseDelayMs)
	assert.Equal(t, 30000, cfg.Session.ResponseTimeoutMs)
	assert.Equal(t, "sqlite", cfg.Session.Archive)
	assert.Equal(t, []string{".pdf", ".doc", ".docx", ".txt", ".md"}, cfg.Attachments.AllowedExtensions)
	assert.Zero(t, cfg.Attachments.MaxBytes)
	assert.Nil(t, cfg.Notify.NATS)
}

func TestDefaults_ExtensionsNotShared(t *testing.T) {
	cfg := Defaults()
	cfg.Attachments.AllowedExtensions[0] = ".exe"
	assert.Equal(t, ".pdf", DefaultExtensions[0])
}

func TestSessionDurations(t *testing.T) {
	s := SessionConfig{IdleMinutes: 5, ResponseDelayMs: 250, ResponseTimeoutMs: 1500}
	assert.Equal(t, 5*time.Minute, s.IdleTimeout())
	assert.Equal(t, 250*time.Millisecond, s.ResponseDelay())
	assert.Equal(t, 1500*time.Millisecond, s.ResponseTimeout())
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	require.NoError(t, err)
	// Should return defaults
	assert.Equal(t, 18790, cfg.Gateway.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadValidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	yaml := `
gateway:
  port: 9999
  bind: lan
  auth:
    mode: password
    password: secret123
logging:
  level: debug
  consoleStyle: json
session:
  idleMinutes: 60
  responseDelayMs: 500
attachments:
  allowedExtensions: [".md", ".txt"]
  maxBytes: 1048576
agents:
  list:
    - id: developer
      status: busy
    - id: architect
      name: Architect AI
      role: Architect
notify:
  nats:
    url: nats://127.0.0.1:4222
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Gateway.Port)
	assert.Equal(t, "lan", cfg.Gateway.Bind)
	assert.Equal(t, "password", cfg.Gateway.Auth.Mode)
	assert.Equal(t, "secret123", cfg.Gateway.Auth.Password)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.ConsoleStyle)
	assert.Equal(t, 60, cfg.Session.IdleMinutes)
	assert.Equal(t, 500, cfg.Session.ResponseDelayMs)
	assert.Equal(t, 30000, cfg.Session.ResponseTimeoutMs, "unset fields keep defaults")
	assert.Equal(t, []string{".md", ".txt"}, cfg.Attachments.AllowedExtensions)
	assert.Equal(t, int64(1048576), cfg.Attachments.MaxBytes)

	require.Len(t, cfg.Agents.List, 2)
	assert.Equal(t, "busy", cfg.Agents.List[0].Status)
	assert.Equal(t, "Architect AI", cfg.Agents.List[1].Name)

	require.NotNil(t, cfg.Notify.NATS)
	assert.Equal(t, "nats://127.0.0.1:4222", cfg.Notify.NATS.URL)
	assert.Equal(t, DefaultNATSSubject, cfg.Notify.NATS.Subject)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway: [unclosed"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	var ce *ConfigError
	assert.ErrorAs(t, err, &ce)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("AGENTDESK_GATEWAY_PORT", "12345")
	t.Setenv("AGENTDESK_GATEWAY_BIND", "lan")
	t.Setenv("AGENTDESK_LOG_LEVEL", "DEBUG")
	t.Setenv("AGENTDESK_RESPONSE_DELAY_MS", "10")

	cfg, err := Load("/nonexistent/config.yaml")
	require.NoError(t, err)
	assert.Equal(t, 12345, cfg.Gateway.Port)
	assert.Equal(t, "lan", cfg.Gateway.Bind)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Session.ResponseDelayMs)
}

func TestLoadEnvOverrides_NATSAndArchive(t *testing.T) {
	t.Setenv("AGENTDESK_NATS_URL", "nats://bus:4222")
	t.Setenv("AGENTDESK_ARCHIVE", "none")
	t.Setenv("AGENTDESK_GATEWAY_PORT", "not-a-port")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg.Notify.NATS)
	assert.Equal(t, "nats://bus:4222", cfg.Notify.NATS.URL)
	assert.Equal(t, DefaultNATSSubject, cfg.Notify.NATS.Subject)
	assert.Equal(t, "none", cfg.Session.Archive)
	assert.Equal(t, DefaultPort, cfg.Gateway.Port)
}

func TestLoad_ZeroedFieldsRefilled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gateway:\n  bind: \"\"\nsession:\n  idleMinutes: 0\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "loopback", cfg.Gateway.Bind)
	assert.Equal(t, DefaultIdleMinutes, cfg.Session.IdleMinutes)
}

func TestLoadExpandsSecrets(t *testing.T) {
	t.Setenv("DESK_TOKEN", "from-env")
	t.Setenv("DESK_NATS", "nats://nats:4222")

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
gateway:
  auth:
    token: ${DESK_TOKEN}
notify:
  nats:
    url: ${DESK_NATS}
    subject: desk.events
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Gateway.Auth.Token)
	assert.Equal(t, "nats://nats:4222", cfg.Notify.NATS.URL)
	assert.Equal(t, "desk.events", cfg.Notify.NATS.Subject)
}

func TestExpandEnvVars_UnsetLeftAlone(t *testing.T) {
	assert.Equal(t, "${DEFINITELY_NOT_SET_123}", expandEnvVars("${DEFINITELY_NOT_SET_123}"))
}

func TestLoadRawAndSaveRaw(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	raw := map[string]any{
		"session": map[string]any{"idleMinutes": 15},
	}
	require.NoError(t, SaveRaw(path, raw))

	loaded, err := LoadRaw(path)
	require.NoError(t, err)
	val, ok := GetValueAtPath(loaded, []string{"session", "idleMinutes"})
	require.True(t, ok)
	assert.Equal(t, 15, val)
}

func TestLoadRaw_MissingFile(t *testing.T) {
	raw, err := LoadRaw(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, raw)
}

func TestLoadRaw_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	raw, err := LoadRaw(path)
	require.NoError(t, err)
	assert.NotNil(t, raw)
}
