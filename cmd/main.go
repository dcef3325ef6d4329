package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/talentradar/talentradar/internal/adapters/http/api"
	"github.com/talentradar/talentradar/internal/adapters/http/swagger"
	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/adapters/ingest/atcoder"
	"github.com/talentradar/talentradar/internal/adapters/ingest/codeforces"
	"github.com/talentradar/talentradar/internal/adapters/ingest/file"
	"github.com/talentradar/talentradar/internal/adapters/ingest/kaggle"
	"github.com/talentradar/talentradar/internal/adapters/ingest/leetcode"
	"github.com/talentradar/talentradar/internal/adapters/report"
	"github.com/talentradar/talentradar/internal/adapters/snapshot"
	service "github.com/talentradar/talentradar/internal/app"
	"github.com/talentradar/talentradar/internal/config"
	"github.com/talentradar/talentradar/internal/domain/match"
	"github.com/talentradar/talentradar/pkg/httpfetch"
	"github.com/talentradar/talentradar/pkg/logger"

	"github.com/joho/godotenv"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Local overrides for credentials such as LEETCODE_SESSION.
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(cfg, log)
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		os.Exit(1)
	}

	// One-shot mode: run the pipeline once and exit.
	if cfg.Interval == 0 {
		if err := svc.Run(ctx); err != nil {
			log.Error(ctx, "pipeline run failed", logger.Error(err))
			os.Exit(1)
		}
		return
	}

	// Daemon mode: refresh on a fixed interval and serve the API.
	go svc.RunEvery(ctx, cfg.Interval)

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	apiServer := api.NewServer(svc.Store(), svc, cfg.MaxLeaderboardLimit)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// buildService wires the configured sources, stores and pipeline together.
func buildService(cfg *config.Config, log logger.Logger) (*service.Service, error) {
	var cache httpfetch.Cacher
	if cfg.CacheTTL > 0 {
		var err error
		if cfg.CacheDir != "" {
			cache, err = httpfetch.NewWithPath(cfg.CacheTTL, cfg.CacheDir)
		} else {
			cache, err = httpfetch.New(cfg.CacheTTL)
		}
		if err != nil {
			return nil, fmt.Errorf("create fetch cache: %w", err)
		}
	}

	sources, err := buildSources(cfg, cache, log)
	if err != nil {
		return nil, err
	}

	snapshots, err := snapshot.NewStore(cfg.SnapshotDir)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}

	svc := service.New(
		service.WithSources(sources...),
		service.WithMatcher(match.New(match.WithThreshold(cfg.MatchThreshold))),
		service.WithSnapshotStore(snapshots),
		service.WithReport(report.NewWriter(report.WithLogger(log)), cfg.ReportPath),
		service.WithSourceLimit(cfg.SourceLimit),
		service.WithLogger(log),
	)
	return svc, nil
}

// buildSources instantiates one ingest client per configured source name.
func buildSources(cfg *config.Config, cache httpfetch.Cacher, log logger.Logger) ([]ingest.Source, error) {
	sources := make([]ingest.Source, 0, len(cfg.Sources))
	for _, name := range cfg.Sources {
		switch name {
		case "codeforces":
			sources = append(sources, codeforces.New(
				codeforces.WithCache(cache),
				codeforces.WithLogger(log),
			))
		case "atcoder":
			sources = append(sources, atcoder.New(
				atcoder.WithCache(cache),
				atcoder.WithLogger(log),
			))
		case "leetcode":
			sources = append(sources, leetcode.New(
				leetcode.WithContest(cfg.LeetCodeContest),
				leetcode.WithCache(cache),
				leetcode.WithLogger(log),
			))
		case "kaggle":
			sources = append(sources, kaggle.New(
				kaggle.WithPath(cfg.KaggleUsersCSV),
				kaggle.WithLogger(log),
			))
		case "file":
			sources = append(sources, file.New(
				file.WithPath(cfg.RecordsFile),
				file.WithLogger(log),
			))
		default:
			return nil, fmt.Errorf("%w: %q", ingest.ErrUnknownSource, name)
		}
	}
	return sources, nil
}
