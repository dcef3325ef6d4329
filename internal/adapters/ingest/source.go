// Package ingest defines the contract for leaderboard record sources.
//
// Each platform adapter lives in its own subpackage and implements Source.
// Adapters normalise whatever the upstream returns into model.RawRecord and
// swallow per-row junk rather than failing the whole fetch.
package ingest

import (
	"context"

	"github.com/talentradar/talentradar/internal/domain/model"
)

// Source fetches raw leaderboard records from one platform.
type Source interface {
	// Name identifies the platform the source feeds.
	Name() model.Platform

	// Fetch returns up to limit records. Implementations return an error
	// only for total failures; malformed rows are skipped.
	Fetch(ctx context.Context, limit int) ([]model.RawRecord, error)
}
