package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// envRef matches ${NAME} references inside secret fields.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars substitutes ${NAME} references. Unset names stay literal.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(ref string) string {
		if val, ok := os.LookupEnv(ref[2 : len(ref)-1]); ok {
			return val
		}
		return ref
	})
}

// secretFields are the values that may hold ${NAME} references, so
// credentials can stay out of the config file.
func secretFields(cfg *Config) []*string {
	fields := []*string{&cfg.Gateway.Auth.Token, &cfg.Gateway.Auth.Password}
	if nc := cfg.Notify.NATS; nc != nil {
		fields = append(fields, &nc.URL, &nc.Token)
	}
	return fields
}

// envOverride maps one AGENTDESK_* variable onto the config. Malformed
// numeric values are ignored.
type envOverride struct {
	name  string
	apply func(cfg *Config, v string)
}

var envOverrides = []envOverride{
	{"AGENTDESK_GATEWAY_PORT", func(cfg *Config, v string) { setInt(&cfg.Gateway.Port, v) }},
	{"AGENTDESK_GATEWAY_BIND", func(cfg *Config, v string) { cfg.Gateway.Bind = v }},
	{"AGENTDESK_LOG_LEVEL", func(cfg *Config, v string) { cfg.Logging.Level = strings.ToLower(v) }},
	{"AGENTDESK_RESPONSE_DELAY_MS", func(cfg *Config, v string) { setInt(&cfg.Session.ResponseDelayMs, v) }},
	{"AGENTDESK_ARCHIVE", func(cfg *Config, v string) { cfg.Session.Archive = v }},
	{"AGENTDESK_NATS_URL", func(cfg *Config, v string) {
		if cfg.Notify.NATS == nil {
			cfg.Notify.NATS = &NATSConfig{}
		}
		cfg.Notify.NATS.URL = v
	}},
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func applyEnvOverrides(cfg *Config) {
	for _, o := range envOverrides {
		if v := os.Getenv(o.name); v != "" {
			o.apply(cfg, v)
		}
	}
}

// Load reads the YAML config at path over the defaults, then applies
// AGENTDESK_* overrides and ${NAME} expansion. A missing file is not an
// error.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return cfg, err
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ConfigError{Message: fmt.Sprintf("failed to parse %s: %v", path, err)}
		}
	}

	applyEnvOverrides(&cfg)
	for _, f := range secretFields(&cfg) {
		*f = expandEnvVars(*f)
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// applyDefaults refills fields a config file explicitly zeroed.
func applyDefaults(cfg *Config) {
	def := Defaults()
	fillString(&cfg.Gateway.Bind, def.Gateway.Bind)
	fillString(&cfg.Gateway.Auth.Mode, def.Gateway.Auth.Mode)
	fillString(&cfg.Logging.Level, def.Logging.Level)
	fillString(&cfg.Logging.ConsoleStyle, def.Logging.ConsoleStyle)
	fillString(&cfg.Session.Archive, def.Session.Archive)
	fillInt(&cfg.Gateway.Port, def.Gateway.Port)
	fillInt(&cfg.Session.IdleMinutes, def.Session.IdleMinutes)
	fillInt(&cfg.Session.ResponseDelayMs, def.Session.ResponseDelayMs)
	fillInt(&cfg.Session.ResponseTimeoutMs, def.Session.ResponseTimeoutMs)
	if len(cfg.Attachments.AllowedExtensions) == 0 {
		cfg.Attachments.AllowedExtensions = def.Attachments.AllowedExtensions
	}
	if nc := cfg.Notify.NATS; nc != nil {
		fillString(&nc.Subject, DefaultNATSSubject)
	}
}

func fillString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func fillInt(dst *int, def int) {
	if *dst == 0 {
		*dst = def
	}
}

// LoadRaw reads the config file as a generic map for dot-path editing.
// A missing or empty file yields an empty map.
func LoadRaw(path string) (map[string]any, error) {
	raw := map[string]any{}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return raw, nil
	}
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: fmt.Sprintf("failed to parse %s: %v", path, err)}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes raw back as YAML, creating the directory if needed. The
// file may hold credentials, so it is private to the user.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
