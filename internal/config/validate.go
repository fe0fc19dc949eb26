package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/soyeahso/agentdesk/internal/logging"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	// Gateway validation
	if cfg.Gateway.Port < 0 || cfg.Gateway.Port > 65535 {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.port",
			Message: fmt.Sprintf("port must be 0-65535, got %d", cfg.Gateway.Port),
		})
	}

	validBinds := []string{"auto", "lan", "loopback", "custom"}
	if cfg.Gateway.Bind != "" && !slices.Contains(validBinds, cfg.Gateway.Bind) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.bind",
			Message: fmt.Sprintf("must be one of %v, got %q", validBinds, cfg.Gateway.Bind),
		})
	}

	validAuthModes := []string{"token", "password"}
	if cfg.Gateway.Auth.Mode != "" && !slices.Contains(validAuthModes, cfg.Gateway.Auth.Mode) {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.auth.mode",
			Message: fmt.Sprintf("must be one of %v, got %q", validAuthModes, cfg.Gateway.Auth.Mode),
		})
	}

	if cfg.Gateway.TLS.Enabled && (cfg.Gateway.TLS.CertPath == "" || cfg.Gateway.TLS.KeyPath == "") {
		issues = append(issues, ValidationIssue{
			Path:    "gateway.tls",
			Message: "certPath and keyPath are required when TLS is enabled",
		})
	}

	// Logging validation
	if cfg.Logging.Level != "" && !slices.Contains(logging.Levels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", logging.Levels, cfg.Logging.Level),
		})
	}

	validConsoleStyles := []string{logging.StylePretty, logging.StyleCompact, logging.StyleJSON, logging.StyleNone}
	if cfg.Logging.ConsoleStyle != "" && !slices.Contains(validConsoleStyles, cfg.Logging.ConsoleStyle) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.consoleStyle",
			Message: fmt.Sprintf("must be one of %v, got %q", validConsoleStyles, cfg.Logging.ConsoleStyle),
		})
	}

	// Session validation
	if cfg.Session.IdleMinutes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.idleMinutes",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Session.IdleMinutes),
		})
	}
	if cfg.Session.ResponseDelayMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.responseDelayMs",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Session.ResponseDelayMs),
		})
	}
	if cfg.Session.ResponseTimeoutMs < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "session.responseTimeoutMs",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Session.ResponseTimeoutMs),
		})
	}
	validArchives := []string{"sqlite", "none"}
	if cfg.Session.Archive != "" && !slices.Contains(validArchives, cfg.Session.Archive) {
		issues = append(issues, ValidationIssue{
			Path:    "session.archive",
			Message: fmt.Sprintf("must be one of %v, got %q", validArchives, cfg.Session.Archive),
		})
	}

	// Attachment validation
	for i, ext := range cfg.Attachments.AllowedExtensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			issues = append(issues, ValidationIssue{
				Path:    fmt.Sprintf("attachments.allowedExtensions[%d]", i),
				Message: fmt.Sprintf("extension must start with a dot, got %q", ext),
			})
		}
	}
	if cfg.Attachments.MaxBytes < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "attachments.maxBytes",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Attachments.MaxBytes),
		})
	}

	// Agent catalog validation
	seen := make(map[string]bool)
	validStatuses := []string{"available", "busy", "training"}
	for i, a := range cfg.Agents.List {
		path := fmt.Sprintf("agents.list[%d]", i)
		if a.ID == "" {
			issues = append(issues, ValidationIssue{Path: path + ".id", Message: "id is required"})
			continue
		}
		if seen[a.ID] {
			issues = append(issues, ValidationIssue{Path: path + ".id", Message: "duplicate agent id " + a.ID})
		}
		seen[a.ID] = true
		if a.Status != "" && !slices.Contains(validStatuses, a.Status) {
			issues = append(issues, ValidationIssue{
				Path:    path + ".status",
				Message: fmt.Sprintf("must be one of %v, got %q", validStatuses, a.Status),
			})
		}
	}

	// Notify validation
	if cfg.Notify.NATS != nil && cfg.Notify.NATS.URL == "" {
		issues = append(issues, ValidationIssue{
			Path:    "notify.nats.url",
			Message: "url is required",
		})
	}

	return issues
}
