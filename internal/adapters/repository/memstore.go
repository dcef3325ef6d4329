package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/pkg/metrics"
)

// MemStore is an in-memory Store. Each pipeline run builds a fresh ranked
// slice and swaps it in under the write lock, so readers never see a
// half-updated leaderboard.
type MemStore struct {
	mu      sync.RWMutex
	entries []Entry
	byID    map[string]int // profile ID -> index into entries
}

// NewMemStore creates an empty store.
func NewMemStore() *MemStore {
	return &MemStore{byID: map[string]int{}}
}

// ReplaceAll swaps in a new leaderboard.
func (s *MemStore) ReplaceAll(ctx context.Context, profiles []model.ScoredProfile) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	entries := make([]Entry, len(profiles))
	byID := make(map[string]int, len(profiles))
	for i, p := range profiles {
		entries[i] = Entry{Rank: i + 1, Profile: p}
		byID[p.Profile.ID] = i
	}

	s.mu.Lock()
	s.entries = entries
	s.byID = byID
	s.mu.Unlock()

	metrics.UpdateProfilesTotal(len(entries))
	return nil
}

// TopN returns the first n entries.
func (s *MemStore) TopN(ctx context.Context, n int) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.entries) {
		n = len(s.entries)
	}
	out := make([]Entry, n)
	copy(out, s.entries[:n])
	return out, nil
}

// Get returns the entry for a profile ID.
func (s *MemStore) Get(ctx context.Context, id string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return s.entries[i], nil
}

// ByCountry returns entries for a country in rank order.
func (s *MemStore) ByCountry(ctx context.Context, country string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Entry
	for _, e := range s.entries {
		if e.Profile.Profile.Country == country {
			out = append(out, e)
		}
	}
	return out, nil
}

// Countries returns the distinct countries sorted, plus how many profiles
// carry none.
func (s *MemStore) Countries(ctx context.Context) ([]string, int) {
	if err := ctx.Err(); err != nil {
		return nil, 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := map[string]struct{}{}
	unknown := 0
	for _, e := range s.entries {
		c := e.Profile.Profile.Country
		if c == "" {
			unknown++
			continue
		}
		seen[c] = struct{}{}
	}

	countries := make([]string, 0, len(seen))
	for c := range seen {
		countries = append(countries, c)
	}
	sort.Strings(countries)
	return countries, unknown
}

// Count returns the number of profiles tracked.
func (s *MemStore) Count(ctx context.Context) int {
	if err := ctx.Err(); err != nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
