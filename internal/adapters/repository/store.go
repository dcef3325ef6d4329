// Package repository defines the ranked profile store interface and errors.
package repository

import (
	"context"

	"github.com/talentradar/talentradar/internal/domain/model"
)

// Entry represents a leaderboard row.
type Entry struct {
	Rank    int                 `json:"rank"`
	Profile model.ScoredProfile `json:"profile"`
}

// Store provides read access to the latest pipeline results. Runs replace
// the whole leaderboard at once; there are no per-profile writes.
type Store interface {
	// ReplaceAll swaps in a new ranked leaderboard. Profiles must already
	// be sorted; ranks are assigned from position.
	ReplaceAll(ctx context.Context, profiles []model.ScoredProfile) error

	// TopN returns the top-N entries ordered by score desc.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Get returns the entry for a profile ID.
	// Returns ErrNotFound when the profile is unknown.
	Get(ctx context.Context, id string) (Entry, error)

	// ByCountry returns all entries for a country in rank order.
	ByCountry(ctx context.Context, country string) ([]Entry, error)

	// Countries returns the distinct countries present, sorted, with the
	// share of profiles that carry no country at all.
	Countries(ctx context.Context) ([]string, int)

	// Count returns the number of profiles tracked.
	Count(ctx context.Context) int
}
