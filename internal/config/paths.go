package config

import (
	"os"
	"path/filepath"
)

const defaultBaseDir = ".agentdesk"

// Paths holds resolved filesystem paths for agentdesk data.
type Paths struct {
	Base    string // ~/.agentdesk
	Config  string // ~/.agentdesk/config.yaml
	Logs    string // ~/.agentdesk/logs
	Data    string // ~/.agentdesk/data
	Archive string // ~/.agentdesk/data/transcripts.db
	Exports string // ~/.agentdesk/exports
}

// ResolvePaths computes all standard paths from the home directory.
// If AGENTDESK_HOME is set, it overrides the default base directory.
func ResolvePaths() (Paths, error) {
	base := os.Getenv("AGENTDESK_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Paths{}, err
		}
		base = filepath.Join(home, defaultBaseDir)
	}

	data := filepath.Join(base, "data")
	return Paths{
		Base:    base,
		Config:  filepath.Join(base, "config.yaml"),
		Logs:    filepath.Join(base, "logs"),
		Data:    data,
		Archive: filepath.Join(data, "transcripts.db"),
		Exports: filepath.Join(base, "exports"),
	}, nil
}

// EnsureDirs creates all standard directories if they don't exist.
func (p Paths) EnsureDirs() error {
	dirs := []string{p.Base, p.Logs, p.Data, p.Exports}
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o700); err != nil {
			return err
		}
	}
	return nil
}
