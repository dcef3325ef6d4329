package model

import "time"

// PlatformStats holds the rating distribution of one platform within one
// day's batch. StdDev is the population standard deviation.
type PlatformStats struct {
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"stddev"`
	Count  int     `json:"count"`
}

// SnapshotEntry records one handle's rating and z-score for a day, the
// minimum needed to compute day-over-day momentum.
type SnapshotEntry struct {
	Platform Platform `json:"platform"`
	Handle   string   `json:"handle"`
	Rating   float64  `json:"rating"`
	Z        float64  `json:"z"`
}

// Snapshot is one day's scoring state: the per-platform statistics and the
// per-handle z-scores computed against them. Yesterday's snapshot is the
// optional momentum input for today's run.
type Snapshot struct {
	Date    string                     `json:"date"` // ISO date, e.g. "2026-08-30"
	Stats   map[Platform]PlatformStats `json:"stats"`
	Entries []SnapshotEntry            `json:"entries"`
}

// SnapshotDate formats a time as the snapshot's date key.
func SnapshotDate(t time.Time) string {
	return t.Format("2006-01-02")
}

// PriorZ returns the z-score recorded for the handle on the platform, if
// the snapshot has one.
func (s *Snapshot) PriorZ(platform Platform, handle string) (float64, bool) {
	if s == nil {
		return 0, false
	}
	for _, e := range s.Entries {
		if e.Platform == platform && e.Handle == handle {
			return e.Z, true
		}
	}
	return 0, false
}
