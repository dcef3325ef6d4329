// Package service runs the talent pipeline: fetch records from every
// source, resolve identities, score profiles, and publish the results to
// the store, the snapshot directory, and the markdown report.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/adapters/report"
	"github.com/talentradar/talentradar/internal/adapters/repository"
	"github.com/talentradar/talentradar/internal/adapters/snapshot"
	"github.com/talentradar/talentradar/internal/domain/aggregate"
	"github.com/talentradar/talentradar/internal/domain/match"
	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/internal/domain/scoring"
	"github.com/talentradar/talentradar/pkg/logger"
	"github.com/talentradar/talentradar/pkg/metrics"
)

const defaultSourceLimit = 1000

// Service owns one pipeline configuration and its run state.
type Service struct {
	sources     []ingest.Source
	matcher     *match.Matcher
	aggregator  *aggregate.Aggregator
	engine      *scoring.Engine
	snapshots   *snapshot.Store
	store       repository.Store
	reporter    *report.Writer
	reportPath  string
	sourceLimit int
	now         func() time.Time
	logger      logger.Logger

	mu           sync.RWMutex
	runs         int
	lastRun      time.Time
	lastRecords  int
	lastProfiles int
	lastClusters int
	sourceCounts map[string]int
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithSources sets the ingest sources.
func WithSources(sources ...ingest.Source) Option {
	return func(s *Service) {
		s.sources = sources
	}
}

// WithMatcher sets the identity matcher.
func WithMatcher(m *match.Matcher) Option {
	return func(s *Service) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithEngine sets the scoring engine.
func WithEngine(e *scoring.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithSnapshotStore sets the snapshot store. Without one the pipeline runs
// with no momentum history and no first-seen ledger.
func WithSnapshotStore(store *snapshot.Store) Option {
	return func(s *Service) {
		s.snapshots = store
	}
}

// WithStore sets the leaderboard store.
func WithStore(store repository.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithReport sets the report writer and output path. An empty path
// disables the report.
func WithReport(w *report.Writer, path string) Option {
	return func(s *Service) {
		s.reporter = w
		s.reportPath = path
	}
}

// WithSourceLimit caps how many records each source may return.
func WithSourceLimit(limit int) Option {
	return func(s *Service) {
		if limit > 0 {
			s.sourceLimit = limit
		}
	}
}

// WithNow overrides the clock.
func WithNow(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(log logger.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.logger = log
		}
	}
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		matcher:      match.New(),
		aggregator:   aggregate.New(),
		engine:       scoring.New(),
		store:        repository.NewMemStore(),
		reporter:     report.NewWriter(),
		sourceLimit:  defaultSourceLimit,
		now:          time.Now,
		sourceCounts: map[string]int{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store exposes the leaderboard store backing this service.
func (s *Service) Store() repository.Store {
	return s.store
}

// Run executes one full pipeline pass. A source that fails is logged and
// skipped; the run fails only when every source fails or a downstream
// stage does.
func (s *Service) Run(ctx context.Context) error {
	start := s.now()

	records, fetched, failed := s.fetchAll(ctx)
	if failed > 0 && fetched == 0 {
		metrics.RecordPipelineFailure()
		return fmt.Errorf("%w: all %d sources failed", ErrRunFailed, failed)
	}

	records = s.fillFirstSeen(ctx, records, start)

	clusters := s.matcher.Cluster(records)
	n := len(records)
	metrics.RecordPairComparisons(n * (n - 1) / 2)
	metrics.RecordMatches(n - len(clusters))
	metrics.UpdateClustersFormed(len(clusters))

	profiles := s.aggregator.AggregateAll(records, clusters)
	dropped := 0
	for _, p := range profiles {
		dropped += len(p.Notes)
	}
	metrics.RecordDuplicateHandles(dropped)

	scoringStart := s.now()
	scored := s.engine.ScoreBatch(profiles, records, s.prior(ctx, start))
	metrics.RecordScoringDuration(s.now().Sub(scoringStart).Seconds())
	metrics.RecordProfilesScored(len(scored))

	if err := s.store.ReplaceAll(ctx, scored); err != nil {
		metrics.RecordPipelineFailure()
		return fmt.Errorf("%w: publish leaderboard: %w", ErrRunFailed, err)
	}

	if err := s.saveSnapshot(records, start); err != nil {
		metrics.RecordPipelineFailure()
		return fmt.Errorf("%w: %w", ErrRunFailed, err)
	}

	if s.reportPath != "" && s.reporter != nil {
		if err := s.reporter.Write(ctx, s.reportPath, scored); err != nil {
			metrics.RecordPipelineFailure()
			return fmt.Errorf("%w: %w", ErrRunFailed, err)
		}
	}

	end := s.now()
	metrics.RecordPipelineRun()
	metrics.RecordPipelineDuration(end.Sub(start).Seconds())
	metrics.UpdateLastRunUnix(float64(end.Unix()))

	s.mu.Lock()
	s.runs++
	s.lastRun = end
	s.lastRecords = len(records)
	s.lastProfiles = len(scored)
	s.lastClusters = len(clusters)
	s.mu.Unlock()

	if s.logger != nil {
		s.logger.Info(ctx, "pipeline run complete",
			logger.Int("records", len(records)),
			logger.Int("clusters", len(clusters)),
			logger.Int("profiles", len(scored)),
			logger.Duration("elapsed", end.Sub(start)))
	}
	return nil
}

// RunEvery runs the pipeline on a fixed interval until ctx is cancelled.
// The first run happens immediately.
func (s *Service) RunEvery(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return s.Run(ctx)
	}

	if err := s.Run(ctx); err != nil && s.logger != nil {
		s.logger.Error(ctx, "pipeline run failed", logger.Error(err))
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.Run(ctx); err != nil && s.logger != nil {
				s.logger.Error(ctx, "pipeline run failed", logger.Error(err))
			}
		}
	}
}

// GetStats implements the API stats provider.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lastRun := ""
	if !s.lastRun.IsZero() {
		lastRun = s.lastRun.UTC().Format(time.RFC3339)
	}
	counts := make(map[string]int, len(s.sourceCounts))
	for k, v := range s.sourceCounts {
		counts[k] = v
	}
	return map[string]interface{}{
		"runs":           s.runs,
		"last_run":       lastRun,
		"last_records":   s.lastRecords,
		"last_clusters":  s.lastClusters,
		"last_profiles":  s.lastProfiles,
		"records_by_src": counts,
	}
}

// fetchAll pulls every source concurrently and merges the results in
// source order so runs are deterministic regardless of completion order.
func (s *Service) fetchAll(ctx context.Context) (records []model.RawRecord, fetched, failed int) {
	results := make([][]model.RawRecord, len(s.sources))
	errs := make([]error, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			recs, err := src.Fetch(gctx, s.sourceLimit)
			if err != nil {
				errs[i] = err
				return nil //nolint:nilerr // a bad source must not cancel the others
			}
			results[i] = recs
			return nil
		})
	}
	_ = g.Wait()

	counts := map[string]int{}
	for i, src := range s.sources {
		name := string(src.Name())
		if errs[i] != nil {
			failed++
			metrics.RecordFetchError(name)
			if s.logger != nil {
				s.logger.Warn(ctx, "source fetch failed",
					logger.String("source", name), logger.Error(errs[i]))
			}
			continue
		}
		fetched++
		counts[name] = len(results[i])
		metrics.RecordFetched(name, len(results[i]))
		records = append(records, results[i]...)
	}

	s.mu.Lock()
	s.sourceCounts = counts
	s.mu.Unlock()
	return records, fetched, failed
}

// fillFirstSeen registers new handles in the ledger and backfills records
// whose source did not report an account age.
func (s *Service) fillFirstSeen(ctx context.Context, records []model.RawRecord, now time.Time) []model.RawRecord {
	if s.snapshots == nil {
		return records
	}

	if err := s.snapshots.ObserveHandles(records, now); err != nil && s.logger != nil {
		s.logger.Warn(ctx, "first-seen ledger update failed", logger.Error(err))
	}
	for i := range records {
		if !records[i].FirstSeen.IsZero() {
			continue
		}
		records[i].FirstSeen = s.snapshots.FirstSeen(records[i].Platform, records[i].Handle)
	}
	return records
}

func (s *Service) prior(ctx context.Context, now time.Time) scoring.Prior {
	if s.snapshots == nil {
		return nil
	}
	snap, err := s.snapshots.LatestBefore(model.SnapshotDate(now))
	if err != nil {
		if s.logger != nil {
			s.logger.Debug(ctx, "no prior snapshot", logger.Error(err))
		}
		return nil
	}
	return snap
}

func (s *Service) saveSnapshot(records []model.RawRecord, now time.Time) error {
	if s.snapshots == nil {
		return nil
	}

	stats := scoring.ComputeStats(records)
	snap := &model.Snapshot{
		Date:  model.SnapshotDate(now),
		Stats: stats,
	}
	for _, rec := range records {
		if !rec.HasRating() {
			continue
		}
		snap.Entries = append(snap.Entries, model.SnapshotEntry{
			Platform: rec.Platform,
			Handle:   rec.Handle,
			Rating:   rec.Rating,
			Z:        scoring.ZScore(rec.Rating, stats[rec.Platform]),
		})
	}
	return s.snapshots.SaveDay(snap)
}
