package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/phuslu/log"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/tiffin/internal/creds"
)

// FileStore keeps the credential set in a TOML file:
//
//	bearer_token = "..."
//
//	[aux_ids]
//	device_id = "..."
//
//	[cookies]
//	__SW = "..."
type FileStore struct {
	path   string
	logger *log.Logger
}

// NewFileStore returns a store backed by path. A nil logger discards output.
func NewFileStore(path string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = discardLogger()
	}
	return &FileStore{path: path, logger: logger}
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads the session file. Any problem degrades to an empty set.
func (s *FileStore) Load(_ context.Context) creds.Set {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("session file unreadable; starting without credentials")
		}
		return creds.Set{}
	}

	var set creds.Set
	if err := toml.Unmarshal(data, &set); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("session file corrupt; starting without credentials")
		return creds.Set{}
	}
	return set.Clone()
}

// Save overwrites the session file. The write goes through a temporary
// file in the same directory so a crash never leaves a truncated session.
func (s *FileStore) Save(_ context.Context, set creds.Set) error {
	if s.path == "" {
		return fmt.Errorf("session path is empty")
	}
	dir := parentDir(s.path)
	if err := ensureDir(dir); err != nil {
		return err
	}

	data, err := toml.Marshal(set.Clone())
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.logger.Debug().Str("path", s.path).Msg("session saved")
	return nil
}

// Clear deletes the session file.
func (s *FileStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
