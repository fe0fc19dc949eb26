package config

// Config is the root configuration for agentdesk.
type Config struct {
	Gateway     GatewayConfig     `yaml:"gateway,omitempty"`
	Session     SessionConfig     `yaml:"session,omitempty"`
	Attachments AttachmentsConfig `yaml:"attachments,omitempty"`
	Agents      AgentsConfig      `yaml:"agents,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Hooks       HooksConfig       `yaml:"hooks,omitempty"`
	Notify      NotifyConfig      `yaml:"notify,omitempty"`
}

// GatewayConfig controls the gateway HTTP/WebSocket server.
type GatewayConfig struct {
	Port           int              `yaml:"port,omitempty"`
	Bind           string           `yaml:"bind,omitempty"` // "auto" | "lan" | "loopback" | "custom"
	CustomBindHost string           `yaml:"customBindHost,omitempty"`
	Auth           GatewayAuth      `yaml:"auth,omitempty"`
	TLS            GatewayTLS       `yaml:"tls,omitempty"`
	ControlUI      GatewayControlUI `yaml:"controlUi,omitempty"`
}

// GatewayAuth configures gateway authentication.
type GatewayAuth struct {
	Mode     string `yaml:"mode,omitempty"` // "token" | "password"
	Token    string `yaml:"token,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// GatewayTLS configures TLS for the gateway.
type GatewayTLS struct {
	Enabled  bool   `yaml:"enabled,omitempty"`
	CertPath string `yaml:"certPath,omitempty"`
	KeyPath  string `yaml:"keyPath,omitempty"`
}

// GatewayControlUI configures browser access to the gateway.
type GatewayControlUI struct {
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty"`
}

// SessionConfig defines chat session behavior.
type SessionConfig struct {
	IdleMinutes       int    `yaml:"idleMinutes,omitempty"`
	ResponseDelayMs   int    `yaml:"responseDelayMs,omitempty"`
	ResponseTimeoutMs int    `yaml:"responseTimeoutMs,omitempty"`
	Archive           string `yaml:"archive,omitempty"` // "sqlite" | "none"
}

// AttachmentsConfig controls what stageAttachment accepts.
type AttachmentsConfig struct {
	AllowedExtensions []string `yaml:"allowedExtensions,omitempty"`
	MaxBytes          int64    `yaml:"maxBytes,omitempty"` // 0 = unlimited
}

// AgentsConfig overrides or extends the built-in agent catalog.
type AgentsConfig struct {
	List []AgentEntry `yaml:"list,omitempty"`
}

// AgentEntry defines a single catalog agent. Empty fields keep the
// built-in value when ID matches a built-in agent.
type AgentEntry struct {
	ID           string   `yaml:"id"`
	Name         string   `yaml:"name,omitempty"`
	Role         string   `yaml:"role,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	ColorToken   string   `yaml:"colorToken,omitempty"`
	Icon         string   `yaml:"icon,omitempty"`
	Capabilities []string `yaml:"capabilities,omitempty"`
	Status       string   `yaml:"status,omitempty"` // "available" | "busy" | "training"
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level,omitempty"` // "silent" | "fatal" | "error" | "warn" | "info" | "debug" | "trace"
	File         string `yaml:"file,omitempty"`
	ConsoleStyle string `yaml:"consoleStyle,omitempty"` // "pretty" | "compact" | "json" | "none"
}

// HooksConfig defines shell commands run on session lifecycle events.
type HooksConfig struct {
	SessionStart     []HookEntry `yaml:"sessionStart,omitempty"`
	SessionEnd       []HookEntry `yaml:"sessionEnd,omitempty"`
	FilesAttached    []HookEntry `yaml:"filesAttached,omitempty"`
	MessageSubmitted []HookEntry `yaml:"messageSubmitted,omitempty"`
	ResponseReady    []HookEntry `yaml:"responseReady,omitempty"`
	ResponseFailed   []HookEntry `yaml:"responseFailed,omitempty"`
	GatewayStart     []HookEntry `yaml:"gatewayStart,omitempty"`
	GatewayStop      []HookEntry `yaml:"gatewayStop,omitempty"`
}

// HookEntry defines a single hook action.
type HookEntry struct {
	Command string `yaml:"command"`
	Timeout int    `yaml:"timeout,omitempty"` // milliseconds
}

// NotifyConfig configures where notifications are delivered besides the log.
type NotifyConfig struct {
	NATS *NATSConfig `yaml:"nats,omitempty"`
}

// NATSConfig enables publishing notifications to a NATS subject.
type NATSConfig struct {
	URL     string `yaml:"url"`
	Subject string `yaml:"subject,omitempty"`
	Token   string `yaml:"token,omitempty"`
}
