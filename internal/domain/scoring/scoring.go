// Package scoring computes explainable composite scores for canonical
// profiles from batch-wide platform statistics.
package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/talentradar/talentradar/internal/domain/model"
)

// Scoring formula constants. The formula is a documented heuristic, not a
// validated statistical model.
const (
	baseScale          = 1000 // sigmoid(z) maps to (0, 1000)
	momentumScale      = 50   // points per day-over-day sigma
	risingThreshold    = 75   // momentum units; +rising when exceeded
	risingBonus        = 50
	geoScale           = 100 // top of a country bucket earns 100
	versatilityStep    = 0.10
	versatilityCap     = 0.25
	multiPlatformBonus = 50
	freshBonus         = 25
	freshWindowDays    = 365
)

// podiumBonus rewards platform-specific podium ranks only.
var podiumBonus = map[int]float64{1: 300, 2: 200, 3: 100}

// Prior supplies yesterday's z-score for a handle, computed against
// yesterday's own platform statistics. A nil Prior means no momentum.
type Prior interface {
	PriorZ(platform model.Platform, handle string) (float64, bool)
}

// Engine scores whole batches. The per-platform statistics pre-pass always
// completes before any profile is scored.
type Engine struct {
	now func() time.Time
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithNow fixes the reference clock for the fresh-entrant window. Used in
// tests and replayed runs.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// New creates an Engine with default configuration.
func New(opts ...Option) *Engine {
	e := &Engine{now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ScoreBatch scores every profile against the batch's raw records and the
// optional prior-day state, returning profiles ordered by total descending
// with ties broken by primary name ascending (then profile ID, for full
// determinism). Reasons are appended in evaluation order for every
// non-zero contributing factor.
func (e *Engine) ScoreBatch(profiles []model.CanonicalProfile, records []model.RawRecord, prior Prior) []model.ScoredProfile {
	stats := ComputeStats(records)
	geo := computeGeo(profiles)

	scored := make([]model.ScoredProfile, 0, len(profiles))
	for i, p := range profiles {
		scored = append(scored, model.ScoredProfile{
			Profile:   p,
			Breakdown: e.score(p, stats, prior, geo[i]),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Breakdown.Total != b.Breakdown.Total {
			return a.Breakdown.Total > b.Breakdown.Total
		}
		if a.Profile.PrimaryName != b.Profile.PrimaryName {
			return a.Profile.PrimaryName < b.Profile.PrimaryName
		}
		return a.Profile.ID < b.Profile.ID
	})
	return scored
}

// geoResult is one platform's within-country standing for a profile.
type geoResult struct {
	points  float64
	percent float64 // top-percent position, 0 for the country leader
}

// score computes one profile's breakdown. One contribution set per
// platform the profile appears on; multiple platforms are summed, never
// averaged.
func (e *Engine) score(p model.CanonicalProfile, stats map[model.Platform]model.PlatformStats, prior Prior, geo map[model.Platform]geoResult) model.ScoreBreakdown {
	var bd model.ScoreBreakdown
	bd.VersatilityFactor = 1

	for _, r := range p.Records {
		if !r.HasRating() {
			continue // excluded from statistics and from base; never fatal
		}
		z := ZScore(r.Rating, stats[r.Platform])

		base := sigmoid(z) * baseScale
		bd.Base += base
		bd.Reasons = append(bd.Reasons, model.Reason{
			Kind: model.ReasonBase, Platform: r.Platform, Rating: r.Rating, Z: z, Points: base,
		})

		var momentum float64
		if prior != nil {
			if priorZ, ok := prior.PriorZ(r.Platform, r.Handle); ok {
				momentum = (z - priorZ) * momentumScale
			}
		}
		if momentum != 0 {
			bd.Momentum += momentum
			bd.Reasons = append(bd.Reasons, model.Reason{
				Kind: model.ReasonMomentum, Platform: r.Platform, DeltaZ: momentum / momentumScale, Points: momentum,
			})
		}

		if g, ok := geo[r.Platform]; ok && g.points != 0 {
			bd.Geo += g.points
			bd.Reasons = append(bd.Reasons, model.Reason{
				Kind: model.ReasonGeo, Platform: r.Platform, Country: p.Country, Percent: g.percent, Points: g.points,
			})
		}

		if momentum > risingThreshold {
			bd.Rising += risingBonus
			bd.Reasons = append(bd.Reasons, model.Reason{
				Kind: model.ReasonRising, Platform: r.Platform, DeltaZ: momentum / momentumScale, Points: risingBonus,
			})
		}
	}

	factorSum := bd.Base + bd.Momentum + bd.Geo + bd.Rising

	n := p.PlatformCount()
	if n > 1 {
		extra := versatilityStep * float64(n-1)
		if extra > versatilityCap {
			extra = versatilityCap
		}
		bd.VersatilityFactor = 1 + extra

		bd.MultiPlatformBonus = multiPlatformBonus
		bd.Reasons = append(bd.Reasons, model.Reason{
			Kind: model.ReasonMultiPlatform, Count: n, Points: multiPlatformBonus,
		})
	}

	for _, r := range p.Records {
		if bonus, ok := podiumBonus[r.Rank]; ok {
			bd.RankBonus += bonus
			bd.Reasons = append(bd.Reasons, model.Reason{
				Kind: model.ReasonRankBonus, Platform: r.Platform, Rank: r.Rank, Points: bonus,
			})
		}
	}

	if first, platform, ok := earliestFirstSeen(p.Records); ok {
		if e.now().Sub(first) < freshWindowDays*24*time.Hour {
			bd.FreshBonus = freshBonus
			bd.Reasons = append(bd.Reasons, model.Reason{
				Kind: model.ReasonFresh, Platform: platform, Date: first, Points: freshBonus,
			})
		}
	}

	bd.Total = factorSum*bd.VersatilityFactor + bd.MultiPlatformBonus + bd.RankBonus + bd.FreshBonus
	return bd
}

// computeGeo ranks profiles against peers sharing their country, per
// platform, by that platform's rating descending. A lone member is its
// country's top 100%. Profiles with an unknown country contribute no geo
// factor. Rating ties order deterministically by handle.
func computeGeo(profiles []model.CanonicalProfile) []map[model.Platform]geoResult {
	type member struct {
		profile int
		rating  float64
		handle  string
	}
	buckets := make(map[model.Platform]map[string][]member)

	for i, p := range profiles {
		if p.Country == "" {
			continue
		}
		for _, r := range p.Records {
			if !r.HasRating() {
				continue
			}
			if buckets[r.Platform] == nil {
				buckets[r.Platform] = make(map[string][]member)
			}
			buckets[r.Platform][p.Country] = append(buckets[r.Platform][p.Country], member{
				profile: i, rating: r.Rating, handle: r.Handle,
			})
		}
	}

	out := make([]map[model.Platform]geoResult, len(profiles))
	for i := range out {
		out[i] = make(map[model.Platform]geoResult)
	}
	for platform, countries := range buckets {
		for _, members := range countries {
			sort.Slice(members, func(i, j int) bool {
				if members[i].rating != members[j].rating {
					return members[i].rating > members[j].rating
				}
				return members[i].handle < members[j].handle
			})
			denom := float64(len(members) - 1)
			if denom < 1 {
				denom = 1
			}
			for pos, m := range members {
				percentile := float64(pos) / denom
				points := geoScale * (1 - percentile)
				out[m.profile][platform] = geoResult{points: points, percent: percentile * 100}
			}
		}
	}
	return out
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

func earliestFirstSeen(records []model.RawRecord) (time.Time, model.Platform, bool) {
	var best time.Time
	var platform model.Platform
	for _, r := range records {
		if r.FirstSeen.IsZero() {
			continue
		}
		if best.IsZero() || r.FirstSeen.Before(best) {
			best = r.FirstSeen
			platform = r.Platform
		}
	}
	return best, platform, !best.IsZero()
}
