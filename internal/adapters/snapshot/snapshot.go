// Package snapshot persists daily rating snapshots and the first-seen
// ledger under a single directory.
//
// Snapshots feed the momentum calculation: today's z-scores are compared
// against the most recent earlier snapshot. The ledger records when each
// platform handle was first observed, backing the fresh-talent bonus for
// sources that do not expose account age.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/talentradar/talentradar/internal/domain/model"
)

const (
	snapshotSuffix  = ".snapshot.json"
	firstSeenFile   = "first_seen.json"
	firstSeenLayout = time.RFC3339
)

// Store reads and writes snapshots in a directory, one file per day.
type Store struct {
	dir string

	mu        sync.Mutex
	firstSeen map[string]string // record key -> RFC3339 timestamp
}

// NewStore opens a snapshot directory, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("%w: empty directory", ErrBadDir)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadDir, err)
	}

	s := &Store{dir: dir, firstSeen: map[string]string{}}
	if err := s.loadFirstSeen(); err != nil {
		return nil, err
	}
	return s, nil
}

// SaveDay writes the snapshot for its date, replacing any existing file.
func (s *Store) SaveDay(snap *model.Snapshot) error {
	if snap == nil || snap.Date == "" {
		return fmt.Errorf("%w: snapshot without date", ErrBadSnapshot)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	return atomicWrite(filepath.Join(s.dir, snap.Date+snapshotSuffix), data)
}

// LoadDay reads the snapshot for a date, returning ErrNoSnapshot when the
// day has none.
func (s *Store) LoadDay(date string) (*model.Snapshot, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, date+snapshotSuffix))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNoSnapshot, date)
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var snap model.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	return &snap, nil
}

// LatestBefore returns the most recent snapshot dated strictly before the
// given date, or ErrNoSnapshot when none exists.
func (s *Store) LatestBefore(date string) (*model.Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	var dates []string
	for _, e := range entries {
		name := e.Name()
		if !strings.HasSuffix(name, snapshotSuffix) {
			continue
		}
		d := strings.TrimSuffix(name, snapshotSuffix)
		if d < date {
			dates = append(dates, d)
		}
	}
	if len(dates) == 0 {
		return nil, fmt.Errorf("%w: before %s", ErrNoSnapshot, date)
	}

	sort.Strings(dates)
	return s.LoadDay(dates[len(dates)-1])
}

// FirstSeen returns when the handle was first observed, or the zero time.
func (s *Store) FirstSeen(platform model.Platform, handle string) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, ok := s.firstSeen[key(platform, handle)]
	if !ok {
		return time.Time{}
	}
	ts, err := time.Parse(firstSeenLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return ts
}

// ObserveHandles records now as the first-seen time for any handle not yet
// in the ledger, then persists the ledger.
func (s *Store) ObserveHandles(records []model.RawRecord, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	stamp := now.UTC().Format(firstSeenLayout)
	for _, rec := range records {
		if rec.Handle == "" {
			continue
		}
		k := key(rec.Platform, rec.Handle)
		if _, ok := s.firstSeen[k]; ok {
			continue
		}
		s.firstSeen[k] = stamp
		changed = true
	}
	if !changed {
		return nil
	}

	data, err := json.MarshalIndent(s.firstSeen, "", "  ")
	if err != nil {
		return fmt.Errorf("encode first-seen ledger: %w", err)
	}
	return atomicWrite(filepath.Join(s.dir, firstSeenFile), data)
}

func (s *Store) loadFirstSeen() error {
	data, err := os.ReadFile(filepath.Join(s.dir, firstSeenFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read first-seen ledger: %w", err)
	}
	if err := json.Unmarshal(data, &s.firstSeen); err != nil {
		// A corrupt ledger resets rather than wedging every run.
		s.firstSeen = map[string]string{}
	}
	return nil
}

func key(platform model.Platform, handle string) string {
	return string(platform) + ":" + handle
}

func atomicWrite(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", filepath.Base(path), err)
	}
	return nil
}
