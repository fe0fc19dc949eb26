package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		path   string
	}{
		{"port too high", func(c *Config) { c.Gateway.Port = 70000 }, "gateway.port"},
		{"negative port", func(c *Config) { c.Gateway.Port = -1 }, "gateway.port"},
		{"bad bind", func(c *Config) { c.Gateway.Bind = "tailnet" }, "gateway.bind"},
		{"bad auth mode", func(c *Config) { c.Gateway.Auth.Mode = "oauth" }, "gateway.auth.mode"},
		{"tls without cert", func(c *Config) { c.Gateway.TLS.Enabled = true }, "gateway.tls"},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, "logging.level"},
		{"bad console style", func(c *Config) { c.Logging.ConsoleStyle = "fancy" }, "logging.consoleStyle"},
		{"negative idle", func(c *Config) { c.Session.IdleMinutes = -1 }, "session.idleMinutes"},
		{"negative delay", func(c *Config) { c.Session.ResponseDelayMs = -5 }, "session.responseDelayMs"},
		{"negative timeout", func(c *Config) { c.Session.ResponseTimeoutMs = -5 }, "session.responseTimeoutMs"},
		{"bad archive", func(c *Config) { c.Session.Archive = "redis" }, "session.archive"},
		{"extension without dot", func(c *Config) { c.Attachments.AllowedExtensions = []string{"pdf"} }, "attachments.allowedExtensions[0]"},
		{"negative max bytes", func(c *Config) { c.Attachments.MaxBytes = -1 }, "attachments.maxBytes"},
		{"agent without id", func(c *Config) { c.Agents.List = []AgentEntry{{Name: "x"}} }, "agents.list[0].id"},
		{"agent bad status", func(c *Config) { c.Agents.List = []AgentEntry{{ID: "x", Status: "asleep"}} }, "agents.list[0].status"},
		{"nats without url", func(c *Config) { c.Notify.NATS = &NATSConfig{} }, "notify.nats.url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			issues := Validate(&cfg)
			require.Len(t, issues, 1)
			assert.Equal(t, tt.path, issues[0].Path)
		})
	}
}

func TestValidate_DuplicateAgentIDs(t *testing.T) {
	cfg := Defaults()
	cfg.Agents.List = []AgentEntry{{ID: "tester"}, {ID: "tester"}}

	issues := Validate(&cfg)
	require.Len(t, issues, 1)
	assert.Equal(t, "agents.list[1].id", issues[0].Path)
	assert.Contains(t, issues[0].Message, "duplicate")
}

func TestValidate_ValidBinds(t *testing.T) {
	for _, bind := range []string{"auto", "lan", "loopback", "custom"} {
		cfg := Defaults()
		cfg.Gateway.Bind = bind
		assert.Empty(t, Validate(&cfg), "bind %q should be valid", bind)
	}
}

func TestValidate_MultipleIssues(t *testing.T) {
	cfg := Defaults()
	cfg.Gateway.Port = 99999
	cfg.Logging.Level = "loud"
	cfg.Session.Archive = "s3"

	issues := Validate(&cfg)
	assert.Len(t, issues, 3)
}

func TestValidationIssueString(t *testing.T) {
	issue := ValidationIssue{Path: "session.archive", Message: "bad value"}
	assert.Equal(t, "session.archive: bad value", issue.String())
}
