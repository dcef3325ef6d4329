// Package model contains domain models passed between layers.
package model

import (
	"math"
	"time"
)

// Platform identifies the leaderboard a raw record came from.
type Platform string

// Known platforms. Ingest adapters register records under exactly one of
// these; the scoring engine treats the set as open (an unknown platform
// still gets its own statistics bucket).
const (
	PlatformCodeforces Platform = "codeforces"
	PlatformAtCoder    Platform = "atcoder"
	PlatformLeetCode   Platform = "leetcode"
	PlatformKaggle     Platform = "kaggle"
)

// RawRecord is one platform's single-day observation of one person.
// Produced by ingest adapters and immutable afterwards.
type RawRecord struct {
	Name      string    `json:"name"`                 // display name, may be empty
	Handle    string    `json:"handle"`               // platform identifier, unique within Platform
	Country   string    `json:"country,omitempty"`    // free text, may be empty
	Rating    float64   `json:"rating"`               // platform-specific scale
	Rank      int       `json:"rank"`                 // position on the platform leaderboard, >= 1
	Platform  Platform  `json:"platform"`             // origin leaderboard
	FirstSeen time.Time `json:"first_seen,omitempty"` // date this handle was first observed by this system
}

// HasRating reports whether the record carries a usable rating. Records
// failing this check are excluded from platform statistics and from the
// base score contribution, never treated as fatal.
func (r RawRecord) HasRating() bool {
	return !math.IsNaN(r.Rating) && !math.IsInf(r.Rating, 0)
}

// Key returns the platform-qualified handle, the identity of a record
// within a single day's batch.
func (r RawRecord) Key() string {
	return string(r.Platform) + ":" + r.Handle
}
