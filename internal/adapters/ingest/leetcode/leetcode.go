// Package leetcode ingests LeetCode contest rankings.
//
// The ranking endpoint is undocumented and wants a logged-in session for
// some contests. Callers may supply the LEETCODE_SESSION cookie value; a
// 403 without it degrades to an empty result so the pipeline still runs.
package leetcode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/pkg/httpfetch"
	"github.com/talentradar/talentradar/pkg/logger"
)

const (
	defaultBaseURL = "https://leetcode.com"
	ranksPerPage   = 25

	// SessionEnv names the env var holding the LEETCODE_SESSION cookie.
	SessionEnv = "LEETCODE_SESSION"
)

// Client fetches contest rankings.
type Client struct {
	baseURL    string
	contest    string
	session    string
	httpClient *http.Client
	cache      httpfetch.Cacher
	log        logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the site base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
	}
}

// WithContest selects the contest slug, e.g. "weekly-contest-400".
func WithContest(slug string) Option {
	return func(c *Client) {
		if slug != "" {
			c.contest = slug
		}
	}
}

// WithSession sets the session cookie value.
func WithSession(session string) Option {
	return func(c *Client) {
		c.session = session
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache enables HTTP response caching.
func WithCache(cache httpfetch.Cacher) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a LeetCode client. The session cookie defaults to the
// LEETCODE_SESSION env var.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		session:    os.Getenv(SessionEnv),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the platform.
func (*Client) Name() model.Platform {
	return model.PlatformLeetCode
}

type rankingPage struct {
	UserNum   int           `json:"user_num"`
	TotalRank []rankingUser `json:"total_rank"`
}

type rankingUser struct {
	Username    string  `json:"username"`
	CountryCode string  `json:"country_code"`
	Rating      float64 `json:"rating"`
	Score       float64 `json:"score"`
	Rank        int     `json:"rank"`
}

// Fetch pages through the contest ranking until limit records are collected.
// A 403 on the first page degrades to an empty result.
func (c *Client) Fetch(ctx context.Context, limit int) ([]model.RawRecord, error) {
	if c.contest == "" {
		return nil, fmt.Errorf("%w: no contest configured", ingest.ErrFetchFailed)
	}

	var records []model.RawRecord
	page := 1
	for {
		users, total, err := c.fetchPage(ctx, page)
		if err != nil {
			var httpErr *httpfetch.HTTPError
			if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusForbidden {
				if c.log != nil {
					c.log.Warn(ctx, "leetcode ranking requires a session cookie, skipping",
						logger.String("contest", c.contest))
				}
				return nil, nil
			}
			if page > 1 {
				break
			}
			return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
		}
		if len(users) == 0 {
			break
		}

		for _, u := range users {
			if u.Username == "" {
				continue
			}
			rating := u.Rating
			if rating == 0 {
				rating = u.Score
			}
			records = append(records, model.RawRecord{
				Name:     u.Username,
				Handle:   u.Username,
				Country:  u.CountryCode,
				Rating:   rating,
				Rank:     u.Rank,
				Platform: model.PlatformLeetCode,
			})
		}

		if limit > 0 && len(records) >= limit {
			records = records[:limit]
			break
		}
		if page*ranksPerPage >= total {
			break
		}
		page++
	}

	// Pages can arrive with internal reordering after upstream hiccups.
	sort.SliceStable(records, func(i, j int) bool { return records[i].Rank < records[j].Rank })

	if c.log != nil {
		c.log.Info(ctx, "fetched leetcode users",
			logger.String("contest", c.contest), logger.Int("count", len(records)))
	}
	return records, nil
}

func (c *Client) fetchPage(ctx context.Context, page int) ([]rankingUser, int, error) {
	url := fmt.Sprintf("%s/contest/api/ranking/%s/?pagination=%d&region=global", c.baseURL, c.contest, page)

	req, err := httpfetch.NewRequest(ctx, url)
	if err != nil {
		return nil, 0, err
	}
	if c.session != "" {
		req.AddCookie(&http.Cookie{Name: "LEETCODE_SESSION", Value: c.session})
	}

	body, err := httpfetch.Fetch(ctx, c.cache, c.httpClient, req, c.log)
	if err != nil {
		return nil, 0, err
	}

	var payload rankingPage
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ingest.ErrBadPayload, err)
	}
	return payload.TotalRank, payload.UserNum, nil
}
