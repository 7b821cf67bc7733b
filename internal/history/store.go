// Package history keeps the most recent search queries.
//
// The list is most-recent-first, holds at most MaxEntries non-blank queries
// without duplicates, and is persisted through an injected Storage after
// every change. Storage failures are logged and never returned: losing
// history must not break searching.
package history

import (
	"encoding/json"
	"log/slog"
	"strings"
	"sync"

	scouterrors "github.com/Aman-CERP/scout/internal/errors"
)

// MaxEntries is the history capacity. Older entries are evicted.
const MaxEntries = 5

// Store is the recent-query list. It is safe for concurrent use.
type Store struct {
	storage Storage
	logger  *slog.Logger

	mu      sync.Mutex
	entries []string
}

// New creates a Store over storage and loads what it holds.
// A nil storage keeps history in memory; a nil logger uses slog.Default().
func New(storage Storage, logger *slog.Logger) *Store {
	if storage == nil {
		storage = NewMemoryStorage(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{storage: storage, logger: logger}
	s.Load()
	return s
}

// Load re-reads the persisted list, replacing the in-memory one.
// Missing or malformed data yields an empty list.
func (s *Store) Load() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil

	data, err := s.storage.Load()
	if err != nil {
		s.logger.Warn("history unavailable", "error", err)
		return []string{}
	}
	if len(data) == 0 {
		return []string{}
	}

	var raw []string
	if err := json.Unmarshal(data, &raw); err != nil {
		se := scouterrors.New(scouterrors.ErrCodeFileCorrupt, "discarding malformed history", err)
		s.logger.Debug(se.Message, scouterrors.LogAttrs(se)...)
		return []string{}
	}

	s.entries = normalize(raw)
	return clone(s.entries)
}

// Record moves query to the front of the list and persists it.
// Blank queries are ignored.
func (s *Store) Record(query string) []string {
	q := strings.TrimSpace(query)

	s.mu.Lock()
	defer s.mu.Unlock()

	if q == "" {
		return clone(s.entries)
	}

	next := make([]string, 0, MaxEntries)
	next = append(next, q)
	for _, e := range s.entries {
		if e != q && len(next) < MaxEntries {
			next = append(next, e)
		}
	}
	s.entries = next

	s.persist()
	return clone(s.entries)
}

// Clear empties the list and removes the persisted copy.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	if err := s.storage.Remove(); err != nil {
		s.warnWrite("failed to clear persisted history", err)
	}
}

// Entries returns a copy of the list, most recent first.
func (s *Store) Entries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return clone(s.entries)
}

// persist must be called with s.mu held.
func (s *Store) persist() {
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Warn("failed to encode history", "error", err)
		return
	}
	if err := s.storage.Save(data); err != nil {
		s.warnWrite("failed to persist history", err)
	}
}

func (s *Store) warnWrite(msg string, err error) {
	se := scouterrors.New(scouterrors.ErrCodeHistoryWrite, msg, err)
	s.logger.Warn(se.Message, scouterrors.LogAttrs(se)...)
}

// normalize trims entries and drops blanks, duplicates and overflow.
func normalize(in []string) []string {
	out := make([]string, 0, MaxEntries)
	seen := make(map[string]struct{}, len(in))
	for _, e := range in {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
		if len(out) == MaxEntries {
			break
		}
	}
	return out
}

func clone(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
