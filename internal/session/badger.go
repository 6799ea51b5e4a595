package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/phuslu/log"
	"github.com/timshannon/badgerhold/v4"

	"github.com/five82/tiffin/internal/creds"
)

const badgerKey = "session"

// record is the stored form of a credential set. Pairs are kept as sorted
// slices so the encoded value does not depend on map iteration order.
type record struct {
	BearerToken string
	Cookies     []pair
	AuxIDs      []pair
}

type pair struct {
	Name  string
	Value string
}

func toRecord(set creds.Set) record {
	return record{
		BearerToken: set.BearerToken,
		Cookies:     toPairs(set.Cookies),
		AuxIDs:      toPairs(set.AuxIDs),
	}
}

func (r record) set() creds.Set {
	return creds.Set{
		BearerToken: r.BearerToken,
		Cookies:     fromPairs(r.Cookies),
		AuxIDs:      fromPairs(r.AuxIDs),
	}
}

func toPairs(m map[string]string) []pair {
	if len(m) == 0 {
		return nil
	}
	out := make([]pair, 0, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		out = append(out, pair{Name: k, Value: m[k]})
	}
	return out
}

func fromPairs(pairs []pair) map[string]string {
	if len(pairs) == 0 {
		return nil
	}
	out := make(map[string]string, len(pairs))
	for _, p := range pairs {
		out[p.Name] = p.Value
	}
	return out
}

// BadgerStore keeps the credential set in a badgerhold database. The
// database is opened per operation so concurrent tiffin processes only
// contend for the directory lock while a call is in progress.
type BadgerStore struct {
	dir    string
	logger *log.Logger
	mu     sync.Mutex
}

// NewBadgerStore returns a store rooted at dir. A nil logger discards output.
func NewBadgerStore(dir string, logger *log.Logger) *BadgerStore {
	if logger == nil {
		logger = discardLogger()
	}
	return &BadgerStore{dir: dir, logger: logger}
}

func (s *BadgerStore) open() (*badgerhold.Store, error) {
	if err := ensureDir(s.dir); err != nil {
		return nil, err
	}
	options := badgerhold.DefaultOptions
	options.Dir = s.dir
	options.ValueDir = s.dir
	options.Logger = nil
	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	return store, nil
}

// Load reads the stored set. Any problem degrades to an empty set.
func (s *BadgerStore) Load(_ context.Context) creds.Set {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.dir); errors.Is(err, os.ErrNotExist) {
		return creds.Set{}
	}

	store, err := s.open()
	if err != nil {
		s.logger.Warn().Err(err).Str("path", s.dir).Msg("session db unavailable; starting without credentials")
		return creds.Set{}
	}
	defer func() { _ = store.Close() }()

	var rec record
	if err := store.Get(badgerKey, &rec); err != nil {
		if !errors.Is(err, badgerhold.ErrNotFound) {
			s.logger.Warn().Err(err).Str("path", s.dir).Msg("session record corrupt; starting without credentials")
		}
		return creds.Set{}
	}
	return rec.set()
}

// Save overwrites the stored set.
func (s *BadgerStore) Save(_ context.Context, set creds.Set) error {
	if s.dir == "" {
		return fmt.Errorf("session path is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	store, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	rec := toRecord(set)
	if err := store.Upsert(badgerKey, &rec); err != nil {
		return fmt.Errorf("write session: %w", err)
	}
	s.logger.Debug().Str("path", s.dir).Msg("session saved")
	return nil
}

// Clear deletes the stored set.
func (s *BadgerStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.dir); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	store, err := s.open()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.Delete(badgerKey, &record{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
