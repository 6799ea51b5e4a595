package state

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/phuslu/log"

	"github.com/five82/tiffin/internal/creds"
	"github.com/five82/tiffin/internal/session"
)

// Snapshot is a point-in-time copy of the live session.
type Snapshot struct {
	Credentials creds.Set
	LastSaved   time.Time
	LastError   error
	Saves       int
}

// LoggedIn reports whether any credential material is present.
func (s Snapshot) LoggedIn() bool {
	return !s.Credentials.IsEmpty()
}

// Store is the single owner of the in-memory credential set. Every read,
// merge and save goes through its mutex, so a credential refresh observed
// mid-poll cannot race a concurrent command.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
	backend  session.Store
	logger   *log.Logger
}

// New loads the current credentials from backend.
func New(ctx context.Context, backend session.Store, logger *log.Logger) *Store {
	s := &Store{backend: backend, logger: logger}
	if backend != nil {
		s.snapshot.Credentials = backend.Load(ctx)
	}
	return s
}

// Credentials returns a copy of the current set.
func (s *Store) Credentials() creds.Set {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot.Credentials.Clone()
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Credentials = s.snapshot.Credentials.Clone()
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

// Commit merges next into the live set and persists the result when it
// differs from what is held. A failed save keeps the merged set in memory,
// records the error and logs a warning; the caller's request already
// succeeded and should not fail because of it.
func (s *Store) Commit(ctx context.Context, next creds.Set) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged, changed := s.snapshot.Credentials.Merge(next)
	if !changed {
		return false
	}
	s.snapshot.Credentials = merged
	s.persistLocked(ctx)
	return true
}

// Replace swaps the live set wholesale, as login does, and persists it.
func (s *Store) Replace(ctx context.Context, next creds.Set) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Credentials = next.Clone()
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Save(ctx, s.snapshot.Credentials); err != nil {
		s.snapshot.LastError = err
		return err
	}
	s.markSavedLocked()
	return nil
}

// Clear drops every credential from memory and storage.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Credentials = creds.Set{}
	if s.backend == nil {
		return nil
	}
	if err := s.backend.Clear(ctx); err != nil {
		s.snapshot.LastError = err
		return err
	}
	s.snapshot.LastError = nil
	return nil
}

func (s *Store) persistLocked(ctx context.Context) {
	if s.backend == nil {
		return
	}
	if err := s.backend.Save(ctx, s.snapshot.Credentials); err != nil {
		s.snapshot.LastError = err
		if s.logger != nil {
			s.logger.Warn().Err(err).Msg("could not persist refreshed credentials")
		}
		return
	}
	s.markSavedLocked()
	if s.logger != nil {
		s.logger.Debug().Int("saves", s.snapshot.Saves).Msg("credentials refreshed")
	}
}

func (s *Store) markSavedLocked() {
	s.snapshot.LastSaved = time.Now()
	s.snapshot.LastError = nil
	s.snapshot.Saves++
}
