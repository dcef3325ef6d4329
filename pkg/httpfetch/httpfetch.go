// Package httpfetch provides cached, retried HTTP fetching for the
// leaderboard ingest sources.
package httpfetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/codeGROOVE-dev/sfcache"
	localfs "github.com/codeGROOVE-dev/sfcache/pkg/persist/localfs"

	"github.com/talentradar/talentradar/pkg/logger"
	"github.com/talentradar/talentradar/pkg/metrics"
)

// UserAgent is sent on every outbound request.
const UserAgent = "talentradar/1.0 (+https://github.com/talentradar/talentradar)"

// Cacher allows external cache implementations for sharing across sources.
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// Cache wraps sfcache for HTTP response caching with disk persistence.
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// New creates a Cache persisted under the user cache directory.
func New(ttl time.Duration) (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return NewWithPath(ttl, filepath.Join(cacheDir, "talentradar"))
}

// NewWithPath creates a Cache with disk persistence at the specified path.
func NewWithPath(ttl time.Duration, cachePath string) (*Cache, error) {
	if err := os.MkdirAll(cachePath, 0o750); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("talentradar", cachePath)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}

	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// TTL returns the default TTL for cache entries.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// URLToKey converts a URL to a cache key using SHA256.
func URLToKey(rawURL string) string {
	hash := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(hash[:])
}

// HTTPError represents a non-200 HTTP response.
type HTTPError struct {
	URL        string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d fetching %s", e.StatusCode, e.URL)
}

// Fetch fetches a URL with caching and thundering herd prevention.
// A nil cache means every call goes to the network.
func Fetch(ctx context.Context, cache Cacher, client *http.Client, req *http.Request, log logger.Logger) ([]byte, error) {
	if cache == nil {
		metrics.RecordCacheMiss()
		return doFetch(ctx, client, req, log)
	}

	var wasFetched bool
	data, err := cache.GetSet(ctx, URLToKey(req.URL.String()), func(ctx context.Context) ([]byte, error) {
		wasFetched = true
		metrics.RecordCacheMiss()
		if log != nil {
			log.Debug(ctx, "cache miss", logger.String("url", req.URL.String()))
		}
		return doFetch(ctx, client, req, log)
	}, cache.TTL())

	if !wasFetched {
		metrics.RecordCacheHit()
		if log != nil {
			log.Debug(ctx, "cache hit", logger.String("url", req.URL.String()))
		}
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func doFetch(ctx context.Context, client *http.Client, req *http.Request, log logger.Logger) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return retry.DoWithData(
		func() ([]byte, error) {
			globalRateLimiter.wait(ctx, req.URL.String(), log)

			resp, err := client.Do(req.WithContext(ctx))
			if err != nil {
				return nil, err
			}
			defer resp.Body.Close() //nolint:errcheck // intentional

			if resp.StatusCode != http.StatusOK {
				return nil, &HTTPError{StatusCode: resp.StatusCode, URL: req.URL.String()}
			}

			return io.ReadAll(resp.Body)
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxJitter(250*time.Millisecond),
		retry.RetryIf(isRetryableError),
		retry.OnRetry(func(n uint, err error) {
			if log != nil {
				log.Debug(ctx, "retrying HTTP request",
					logger.Int("attempt", int(n+1)),
					logger.String("url", req.URL.String()),
					logger.Error(err))
			}
		}),
	)
}

// isRetryableError returns true for transient errors worth another attempt.
func isRetryableError(err error) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}
	return true
}

// Rate limiting keeps the fetchers polite toward upstream leaderboards.
var globalRateLimiter = &domainRateLimiter{minDelay: 500 * time.Millisecond} //nolint:gochecknoglobals // shared limiter across sources

type domainRateLimiter struct {
	lastRequest sync.Map
	mu          sync.Map
	minDelay    time.Duration
}

func (r *domainRateLimiter) wait(ctx context.Context, rawURL string, log logger.Logger) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return
	}
	domain := u.Host

	muI, _ := r.mu.LoadOrStore(domain, &sync.Mutex{})
	mu, ok := muI.(*sync.Mutex)
	if !ok {
		return
	}

	mu.Lock()
	defer mu.Unlock()

	if lastI, ok := r.lastRequest.Load(domain); ok {
		if last, ok := lastI.(time.Time); ok {
			if elapsed := time.Since(last); elapsed < r.minDelay {
				waitTime := r.minDelay - elapsed
				if log != nil {
					log.Debug(ctx, "rate limit pause",
						logger.String("domain", domain),
						logger.Duration("wait", waitTime))
				}
				timer := time.NewTimer(waitTime)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
		}
	}

	r.lastRequest.Store(domain, time.Now())
}

// NewRequest builds a GET request with the standard headers applied.
func NewRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json,text/html;q=0.9,*/*;q=0.8")
	return req, nil
}
