// Package codeforces ingests the Codeforces rated user list.
package codeforces

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/pkg/httpfetch"
	"github.com/talentradar/talentradar/pkg/logger"
)

const defaultBaseURL = "https://codeforces.com/api"

// Client fetches rated users via the public Codeforces API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      httpfetch.Cacher
	log        logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimSuffix(u, "/")
		}
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

// New creates a Codeforces client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the platform.
func (*Client) Name() model.Platform {
	return model.PlatformCodeforces
}

type ratedListResponse struct {
	Status  string      `json:"status"`
	Comment string      `json:"comment"`
	Result  []ratedUser `json:"result"`
}

type ratedUser struct {
	Handle                  string  `json:"handle"`
	FirstName               string  `json:"firstName"`
	LastName                string  `json:"lastName"`
	Country                 string  `json:"country"`
	Rating                  float64 `json:"rating"`
	RegistrationTimeSeconds int64   `json:"registrationTimeSeconds"`
}

// Fetch returns up to limit users from user.ratedList, highest rated first.
func (c *Client) Fetch(ctx context.Context, limit int) ([]model.RawRecord, error) {
	url := c.baseURL + "/user.ratedList?activeOnly=true&includeRetired=false"

	req, err := httpfetch.NewRequest(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
	}

	body, err := httpfetch.Fetch(ctx, c.cache, c.httpClient, req, c.log)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
	}

	var payload ratedListResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrBadPayload, err)
	}
	if payload.Status != "OK" {
		return nil, fmt.Errorf("%w: api status %q (%s)", ingest.ErrBadPayload, payload.Status, payload.Comment)
	}

	users := payload.Result
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}

	records := make([]model.RawRecord, 0, len(users))
	for i, u := range users {
		if u.Handle == "" {
			continue
		}
		name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
		if name == "" {
			name = u.Handle
		}
		var firstSeen time.Time
		if u.RegistrationTimeSeconds > 0 {
			firstSeen = time.Unix(u.RegistrationTimeSeconds, 0).UTC()
		}
		records = append(records, model.RawRecord{
			Name:      name,
			Handle:    u.Handle,
			Country:   u.Country,
			Rating:    u.Rating,
			Rank:      i + 1,
			Platform:  model.PlatformCodeforces,
			FirstSeen: firstSeen,
		})
	}

	if c.log != nil {
		c.log.Info(ctx, "fetched codeforces users", logger.Int("count", len(records)))
	}
	return records, nil
}
