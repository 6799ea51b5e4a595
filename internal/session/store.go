package session

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/phuslu/log"

	"github.com/five82/tiffin/internal/config"
	"github.com/five82/tiffin/internal/creds"
)

// Store persists a single credential set across invocations.
//
// Load never fails: a missing, unreadable or corrupt store yields an empty
// set and a logged warning. Save fully overwrites. Clear removes everything
// and treats an already-missing store as success.
type Store interface {
	Load(ctx context.Context) creds.Set
	Save(ctx context.Context, set creds.Set) error
	Clear(ctx context.Context) error
}

var (
	_ Store = (*FileStore)(nil)
	_ Store = (*BadgerStore)(nil)
)

// New builds the backend selected in cfg.
func New(cfg config.SessionConfig, logger *log.Logger) (Store, error) {
	path := strings.TrimSpace(cfg.Path)
	switch cfg.Backend {
	case "", config.BackendFile:
		return NewFileStore(path, logger), nil
	case config.BackendBadger:
		return NewBadgerStore(path, logger), nil
	default:
		return nil, fmt.Errorf("unknown session backend %q", cfg.Backend)
	}
}

// ensureDir creates the directory holding credentials with owner-only access.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	return nil
}

func discardLogger() *log.Logger {
	return &log.Logger{Level: log.ErrorLevel, Writer: log.IOWriter{Writer: io.Discard}}
}

func parentDir(path string) string {
	return filepath.Dir(filepath.Clean(path))
}
