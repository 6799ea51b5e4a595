package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"
)

const (
	maxFileSize    = 10 << 20
	maxFileBackups = 3
)

// Options configure New.
type Options struct {
	// Level is one of trace, debug, info, warn, error. Blank means warn.
	Level string
	// File, when set, receives JSON entries instead of the console.
	File string
	// Console receives human-readable entries when File is blank.
	// Defaults to os.Stderr.
	Console io.Writer
}

// New builds the process logger. The returned closer flushes and closes the
// log file; it is a no-op for console output.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}

	if strings.TrimSpace(opts.File) != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o700); err != nil {
			return nil, nil, fmt.Errorf("create log dir: %w", err)
		}
		writer := &log.FileWriter{
			Filename:     opts.File,
			FileMode:     0o600,
			MaxSize:      maxFileSize,
			MaxBackups:   maxFileBackups,
			EnsureFolder: true,
			LocalTime:    true,
		}
		logger := &log.Logger{
			Level:      level,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			Writer:     writer,
		}
		return logger, writer, nil
	}

	console := opts.Console
	if console == nil {
		console = os.Stderr
	}
	color := false
	if f, ok := console.(*os.File); ok {
		color = log.IsTerminal(f.Fd())
	}
	logger := &log.Logger{
		Level: level,
		Writer: &log.ConsoleWriter{
			ColorOutput:    color,
			QuoteString:    true,
			EndWithMessage: true,
			Writer:         console,
		},
	}
	return logger, nopCloser{}, nil
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: log.IOWriter{Writer: io.Discard}}
}

// ParseLevel accepts the usual level names, ignoring case.
func ParseLevel(value string) (log.Level, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "trace":
		return log.TraceLevel, nil
	case "debug":
		return log.DebugLevel, nil
	case "info":
		return log.InfoLevel, nil
	case "", "warn", "warning":
		return log.WarnLevel, nil
	case "error":
		return log.ErrorLevel, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", value)
	}
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
