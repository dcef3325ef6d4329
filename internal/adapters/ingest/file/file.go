// Package file ingests records from a local JSON fixture, the counterpart
// of the seed-records generator. Useful for demos and offline runs.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/pkg/logger"
)

// Client reads raw records from a JSON array on disk.
type Client struct {
	path     string
	platform model.Platform
	log      logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithPath sets the JSON file path.
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// WithPlatform forces every loaded record onto one platform. Records keep
// their own platform when unset.
func WithPlatform(p model.Platform) Option {
	return func(c *Client) {
		c.platform = p
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a file-backed source.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the platform. Mixed-platform fixtures report the platform
// of the file source itself as "file".
func (c *Client) Name() model.Platform {
	if c.platform != "" {
		return c.platform
	}
	return model.Platform("file")
}

// Fetch loads up to limit records from the fixture.
func (c *Client) Fetch(ctx context.Context, limit int) ([]model.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
	}
	if c.path == "" {
		return nil, fmt.Errorf("%w: no records file configured", ingest.ErrFetchFailed)
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
	}

	var records []model.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrBadPayload, err)
	}

	kept := records[:0]
	for _, rec := range records {
		if rec.Handle == "" && rec.Name == "" {
			continue
		}
		if c.platform != "" {
			rec.Platform = c.platform
		}
		if rec.Platform == "" {
			continue
		}
		kept = append(kept, rec)
		if limit > 0 && len(kept) >= limit {
			break
		}
	}

	if c.log != nil {
		c.log.Info(ctx, "loaded records file",
			logger.String("path", c.path), logger.Int("count", len(kept)))
	}
	return kept, nil
}
