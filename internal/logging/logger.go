// Package logging provides subsystem-scoped zerolog loggers.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// LevelSilent disables output entirely.
const LevelSilent = "silent"

// Levels lists the accepted level names, most verbose first.
var Levels = []string{"trace", "debug", "info", "warn", "error", "fatal", LevelSilent}

// Console styles for Options.Style. StyleNone writes nothing to the
// console, for when a full-screen UI owns the terminal.
const (
	StylePretty  = "pretty"
	StyleCompact = "compact"
	StyleJSON    = "json"
	StyleNone    = "none"
)

// Logger is a zerolog logger that hands out tagged children.
type Logger struct {
	zl zerolog.Logger
}

// Options selects where and how a root logger writes.
type Options struct {
	Level string
	Style string
	File  string // optional; entries are appended as JSON lines

	// Console defaults to stderr.
	Console io.Writer
}

// New creates a root logger writing to w at level. A nil w means pretty
// output on stderr.
func New(w io.Writer, level string) *Logger {
	if w == nil {
		w = consoleWriter(os.Stderr, StylePretty)
	}
	zl := zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
	return &Logger{zl: zl}
}

// NewWithOptions builds a root logger from opts. When opts.File is set the
// file is opened for append and the returned closer must be called on
// shutdown; otherwise the closer is a no-op.
func NewWithOptions(opts Options) (*Logger, io.Closer, error) {
	out := opts.Console
	if out == nil {
		out = os.Stderr
	}

	var writers []io.Writer
	if opts.Style != StyleNone {
		writers = append(writers, consoleWriter(out, opts.Style))
	}
	var closer io.Closer = nopCloser{}
	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return nil, nil, err
		}
		writers = append(writers, f)
		closer = f
	}

	switch len(writers) {
	case 0:
		return Nop(), closer, nil
	case 1:
		return New(writers[0], opts.Level), closer, nil
	default:
		return New(zerolog.MultiLevelWriter(writers...), opts.Level), closer, nil
	}
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, nil
}

func consoleWriter(out io.Writer, style string) io.Writer {
	switch style {
	case StyleJSON:
		return out
	case StyleCompact:
		return zerolog.ConsoleWriter{Out: out, NoColor: true, TimeFormat: time.Kitchen}
	default:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Sub returns a child logger tagged with a subsystem name.
func (l *Logger) Sub(subsystem string) *Logger {
	return l.With("subsystem", subsystem)
}

// With returns a child logger carrying an extra string field.
func (l *Logger) With(key, value string) *Logger {
	return &Logger{zl: l.zl.With().Str(key, value).Logger()}
}

func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }

// Nop returns a logger that discards everything.
func Nop() *Logger { return &Logger{zl: zerolog.Nop()} }

// parseLevel maps a level name to zerolog. Unknown names mean info.
func parseLevel(s string) zerolog.Level {
	if s == LevelSilent {
		return zerolog.Disabled
	}
	lvl, err := zerolog.ParseLevel(s)
	if err != nil || lvl == zerolog.NoLevel || lvl == zerolog.PanicLevel || lvl == zerolog.Disabled {
		return zerolog.InfoLevel
	}
	return lvl
}
