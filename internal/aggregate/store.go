package aggregate

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/tinytelemetry/errscan/internal/model"
)

var (
	// ErrSealed is returned by Update once the store has been sealed.
	ErrSealed = errors.New("aggregate: store is sealed")

	// ErrHourOutOfRange is returned for an hour outside 0-23.
	ErrHourOutOfRange = errors.New("aggregate: hour out of range")
)

// Store maps exception identifiers to their running statistics. It is
// safe for any number of concurrent writers. A record's total and hour
// bucket are applied under one lock, so Total always equals the sum of
// the hour buckets.
type Store struct {
	mu     sync.Mutex
	stats  map[string]*model.ExceptionStat
	sealed bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{stats: make(map[string]*model.ExceptionStat)}
}

// Update counts one occurrence of name at the given hour of day.
func (s *Store) Update(name string, hour int) error {
	if hour < 0 || hour >= model.HoursPerDay {
		return fmt.Errorf("%w: %d", ErrHourOutOfRange, hour)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sealed {
		return ErrSealed
	}
	stat, ok := s.stats[name]
	if !ok {
		stat = &model.ExceptionStat{}
		s.stats[name] = stat
	}
	stat.Total++
	stat.PerHour[hour]++
	return nil
}

// Seal freezes the store. Later updates are rejected with ErrSealed.
// Sealing twice is a no-op.
func (s *Store) Seal() {
	s.mu.Lock()
	s.sealed = true
	s.mu.Unlock()
}

// Sealed reports whether Seal has been called.
func (s *Store) Sealed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sealed
}

// Len returns the number of distinct exception identifiers.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stats)
}

// Snapshot copies the statistics out, sorted by exception identifier.
func (s *Store) Snapshot() []model.Entry {
	s.mu.Lock()
	entries := make([]model.Entry, 0, len(s.stats))
	for name, stat := range s.stats {
		entries = append(entries, model.Entry{Name: name, Stat: *stat})
	}
	s.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name < entries[j].Name
	})
	return entries
}
