// Package kaggle ingests a local export of the Kaggle Meta Users dataset.
//
// Kaggle has no public ranking API, so the source reads a Users.csv export
// joined with achievement points. Columns are matched by header name, so
// partial exports still load.
package kaggle

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/pkg/logger"
)

// registerDateLayout matches the Meta Kaggle date format, e.g. "07/15/2019".
const registerDateLayout = "01/02/2006"

// Client reads ranked users from a CSV file.
type Client struct {
	path string
	log  logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithPath sets the CSV file path.
func WithPath(path string) Option {
	return func(c *Client) {
		c.path = path
	}
}

// WithLogger sets the logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Client) {
		c.log = log
	}
}

// New creates a Kaggle CSV client.
func New(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the platform.
func (*Client) Name() model.Platform {
	return model.PlatformKaggle
}

// Fetch reads up to limit users from the CSV. Rows missing a username are
// skipped, as are rows whose numeric columns fail to parse.
func (c *Client) Fetch(ctx context.Context, limit int) ([]model.RawRecord, error) {
	if c.path == "" {
		return nil, fmt.Errorf("%w: no csv path configured", ingest.ErrFetchFailed)
	}

	f, err := os.Open(c.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %w", ingest.ErrBadPayload, err)
	}
	cols := columnIndex(header)
	if _, ok := cols["username"]; !ok {
		return nil, fmt.Errorf("%w: missing UserName column", ingest.ErrBadPayload)
	}

	var records []model.RawRecord
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
		}
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Ragged or quoted-badly rows are junk, not fatal.
			continue
		}

		handle := field(row, cols, "username")
		if handle == "" {
			continue
		}
		name := field(row, cols, "displayname")
		if name == "" {
			name = handle
		}

		rating, _ := strconv.ParseFloat(field(row, cols, "points"), 64)
		rank, _ := strconv.Atoi(field(row, cols, "currentranking"))
		if rank == 0 {
			rank, _ = strconv.Atoi(field(row, cols, "ranking"))
		}

		var firstSeen time.Time
		if reg := field(row, cols, "registerdate"); reg != "" {
			if ts, err := time.Parse(registerDateLayout, reg); err == nil {
				firstSeen = ts.UTC()
			}
		}

		records = append(records, model.RawRecord{
			Name:      name,
			Handle:    handle,
			Country:   field(row, cols, "country"),
			Rating:    rating,
			Rank:      rank,
			Platform:  model.PlatformKaggle,
			FirstSeen: firstSeen,
		})
		if limit > 0 && len(records) >= limit {
			break
		}
	}

	if c.log != nil {
		c.log.Info(ctx, "loaded kaggle users",
			logger.String("path", c.path), logger.Int("count", len(records)))
	}
	return records, nil
}

func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return cols
}

func field(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
