package model

import "time"

// ReasonKind discriminates the structured audit entries attached to a
// score breakdown.
type ReasonKind string

// Reason kinds, in the order the scoring engine evaluates factors.
const (
	ReasonBase          ReasonKind = "base"
	ReasonMomentum      ReasonKind = "momentum"
	ReasonGeo           ReasonKind = "geo"
	ReasonRising        ReasonKind = "rising"
	ReasonMultiPlatform ReasonKind = "multi_platform"
	ReasonRankBonus     ReasonKind = "rank_bonus"
	ReasonFresh         ReasonKind = "fresh"
)

// Reason is one structured audit entry: the kind plus the literal values
// needed to recompute the contribution. Formatting to human-readable text
// happens at the reporting boundary, not here.
type Reason struct {
	Kind     ReasonKind `json:"kind"`
	Platform Platform   `json:"platform,omitempty"`
	Country  string     `json:"country,omitempty"`
	Rating   float64    `json:"rating,omitempty"`
	Z        float64    `json:"z,omitempty"`
	DeltaZ   float64    `json:"delta_z,omitempty"`
	Rank     int        `json:"rank,omitempty"`
	Percent  float64    `json:"percent,omitempty"` // geo: top-percent within country
	Count    int        `json:"count,omitempty"`   // multi_platform: platform count
	Points   float64    `json:"points"`            // the contribution in score units
	Date     time.Time  `json:"date,omitempty"`    // fresh: earliest first-seen
}

// ScoreBreakdown is the scoring engine output for one profile: the total
// plus per-component contributions and the ordered audit trail.
type ScoreBreakdown struct {
	Total              float64  `json:"total"`
	Base               float64  `json:"base"`
	Momentum           float64  `json:"momentum"`
	Geo                float64  `json:"geo"`
	Rising             float64  `json:"rising"`
	VersatilityFactor  float64  `json:"versatility_factor"`
	MultiPlatformBonus float64  `json:"multi_platform_bonus"`
	RankBonus          float64  `json:"rank_bonus"`
	FreshBonus         float64  `json:"fresh_bonus"`
	Reasons            []Reason `json:"reasons"`
}

// ScoredProfile pairs a canonical profile with its breakdown. Output
// sequences are ordered by total desc, primary name asc.
type ScoredProfile struct {
	Profile   CanonicalProfile `json:"profile"`
	Breakdown ScoreBreakdown   `json:"breakdown"`
}
