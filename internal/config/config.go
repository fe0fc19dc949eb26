package config

import (
	"fmt"
	"time"
)

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultPort              = 18790
	DefaultIdleMinutes       = 30
	DefaultResponseDelayMs   = 2000
	DefaultResponseTimeoutMs = 30000
	DefaultNATSSubject       = "agentdesk.notifications"
)

// DefaultExtensions are the document types accepted for staging.
var DefaultExtensions = []string{".pdf", ".doc", ".docx", ".txt", ".md"}

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		Gateway: GatewayConfig{
			Port: DefaultPort,
			Bind: "loopback",
			Auth: GatewayAuth{
				Mode: "token",
			},
		},
		Session: SessionConfig{
			IdleMinutes:       DefaultIdleMinutes,
			ResponseDelayMs:   DefaultResponseDelayMs,
			ResponseTimeoutMs: DefaultResponseTimeoutMs,
			Archive:           "sqlite",
		},
		Attachments: AttachmentsConfig{
			AllowedExtensions: append([]string(nil), DefaultExtensions...),
		},
		Logging: LoggingConfig{
			Level:        "info",
			ConsoleStyle: "pretty",
		},
	}
}

// ResponseDelay is the simulated latency of the response generator.
func (c SessionConfig) ResponseDelay() time.Duration {
	return time.Duration(c.ResponseDelayMs) * time.Millisecond
}

// ResponseTimeout bounds a single response generation.
func (c SessionConfig) ResponseTimeout() time.Duration {
	return time.Duration(c.ResponseTimeoutMs) * time.Millisecond
}

// IdleTimeout is how long a session may sit untouched before it is reaped.
func (c SessionConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleMinutes) * time.Minute
}
