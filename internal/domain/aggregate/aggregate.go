// Package aggregate merges identity clusters into canonical profiles.
package aggregate

import (
	"fmt"
	"sort"

	"github.com/talentradar/talentradar/internal/domain/model"
)

// Aggregator builds one canonical profile per cluster. All conflict
// resolution is by fixed attribute-based rules, never by traversal order,
// so the same cluster produces the same profile regardless of how its
// records were ordered.
type Aggregator struct{}

// New creates an Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Aggregate merges one cluster of raw records into a canonical profile.
// Rules:
//   - handles: one per platform; same-platform duplicates keep the record
//     with the higher rating (tie: lower rank, then smaller handle), and
//     the drop is recorded as a note rather than lost silently
//   - primary name: longest non-empty name (tie: lexicographically smaller)
//   - country: majority among non-empty values (tie: lexicographically
//     smaller); unknown when every record is blank
//
// The cluster must be non-empty; a profile always owns at least one record.
func (a *Aggregator) Aggregate(cluster []model.RawRecord) model.CanonicalProfile {
	byPlatform := make(map[model.Platform]model.RawRecord, len(cluster))
	var notes []string
	for _, r := range cluster {
		current, ok := byPlatform[r.Platform]
		if !ok {
			byPlatform[r.Platform] = r
			continue
		}
		kept, dropped := pickSamePlatform(current, r)
		byPlatform[r.Platform] = kept
		notes = append(notes, fmt.Sprintf(
			"dropped same-platform duplicate %s:%s (rating %.0f) in favor of %s (rating %.0f)",
			dropped.Platform, dropped.Handle, dropped.Rating, kept.Handle, kept.Rating,
		))
	}

	handles := make(map[model.Platform]string, len(byPlatform))
	records := make([]model.RawRecord, 0, len(byPlatform))
	for platform, r := range byPlatform {
		handles[platform] = r.Handle
		records = append(records, r)
	}
	// Canonical record order: platform name ascending.
	sort.Slice(records, func(i, j int) bool {
		return records[i].Platform < records[j].Platform
	})
	sort.Strings(notes)

	return model.CanonicalProfile{
		ID:          model.NewProfileID(handles),
		PrimaryName: primaryName(cluster),
		Country:     majorityCountry(cluster),
		Handles:     handles,
		Records:     records,
		Notes:       notes,
	}
}

// AggregateAll maps clusters of indices over the batch.
func (a *Aggregator) AggregateAll(records []model.RawRecord, clusters [][]int) []model.CanonicalProfile {
	profiles := make([]model.CanonicalProfile, 0, len(clusters))
	for _, cluster := range clusters {
		members := make([]model.RawRecord, 0, len(cluster))
		for _, i := range cluster {
			members = append(members, records[i])
		}
		profiles = append(profiles, a.Aggregate(members))
	}
	return profiles
}

// pickSamePlatform chooses which of two same-platform records survives:
// higher rating, then lower rank number, then smaller handle.
func pickSamePlatform(a, b model.RawRecord) (kept, dropped model.RawRecord) {
	switch {
	case a.Rating != b.Rating:
		if a.Rating > b.Rating {
			return a, b
		}
	case a.Rank != b.Rank:
		if a.Rank < b.Rank {
			return a, b
		}
	default:
		if a.Handle <= b.Handle {
			return a, b
		}
	}
	return b, a
}

func primaryName(cluster []model.RawRecord) string {
	best := ""
	for _, r := range cluster {
		if r.Name == "" {
			continue
		}
		if len(r.Name) > len(best) || (len(r.Name) == len(best) && r.Name < best) {
			best = r.Name
		}
	}
	return best
}

func majorityCountry(cluster []model.RawRecord) string {
	votes := make(map[string]int)
	for _, r := range cluster {
		if r.Country != "" {
			votes[r.Country]++
		}
	}
	winner := ""
	for country, n := range votes {
		if winner == "" || n > votes[winner] || (n == votes[winner] && country < winner) {
			winner = country
		}
	}
	return winner
}
