// Package atcoder ingests the AtCoder algorithm ranking by scraping the
// public ranking pages. AtCoder has no ranking API.
package atcoder

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/talentradar/talentradar/internal/adapters/ingest"
	"github.com/talentradar/talentradar/internal/domain/model"
	"github.com/talentradar/talentradar/pkg/httpfetch"
	"github.com/talentradar/talentradar/pkg/logger"
)

const (
	defaultBaseURL = "https://atcoder.jp"
	rowsPerPage    = 100
	maxPages       = 20
)

var rankPattern = regexp.MustCompile(`\d+`)

// Client scrapes the AtCoder ranking table.
type Client struct {
	baseURL    string
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

// New creates an AtCoder client.
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
	return model.PlatformAtCoder
}

// Fetch scrapes ranking pages until limit records are collected or a page
// comes back empty.
func (c *Client) Fetch(ctx context.Context, limit int) ([]model.RawRecord, error) {
	var records []model.RawRecord
	pages := maxPages
	if limit > 0 {
		needed := (limit + rowsPerPage - 1) / rowsPerPage
		if needed < pages {
			pages = needed
		}
	}

	for page := 1; page <= pages; page++ {
		url := fmt.Sprintf("%s/ranking/all?lang=en&contest_type=algo&page=%d", c.baseURL, page)

		req, err := httpfetch.NewRequest(ctx, url)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
		}

		body, err := httpfetch.Fetch(ctx, c.cache, c.httpClient, req, c.log)
		if err != nil {
			if page > 1 {
				// Keep what we have rather than dropping all pages.
				if c.log != nil {
					c.log.Warn(ctx, "atcoder page fetch failed",
						logger.Int("page", page), logger.Error(err))
				}
				break
			}
			return nil, fmt.Errorf("%w: %w", ingest.ErrFetchFailed, err)
		}

		rows, err := parseRankingPage(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ingest.ErrBadPayload, err)
		}
		if len(rows) == 0 {
			break
		}

		records = append(records, rows...)
		if limit > 0 && len(records) >= limit {
			records = records[:limit]
			break
		}
	}

	if c.log != nil {
		c.log.Info(ctx, "fetched atcoder users", logger.Int("count", len(records)))
	}
	return records, nil
}

// parseRankingPage extracts ranking rows from the HTML table. Rows that do
// not carry a rank, a username link, and a rating cell are skipped.
func parseRankingPage(body []byte) ([]model.RawRecord, error) {
	doc, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse ranking html: %w", err)
	}

	table := findTable(doc)
	if table == nil {
		return nil, nil
	}

	var records []model.RawRecord
	for _, row := range tableRows(table) {
		cols := rowCells(row)
		if len(cols) < 4 {
			continue
		}

		rankMatch := rankPattern.FindString(textContent(cols[0]))
		if rankMatch == "" {
			continue
		}
		rank, err := strconv.Atoi(rankMatch)
		if err != nil {
			continue
		}

		handle := strings.TrimSpace(textContent(firstLink(cols[1])))
		if handle == "" {
			continue
		}

		rating, err := strconv.ParseFloat(strings.TrimSpace(textContent(cols[3])), 64)
		if err != nil {
			rating = 0
		}

		records = append(records, model.RawRecord{
			// The ranking page shows no display name, only the handle.
			Name:     handle,
			Handle:   handle,
			Rating:   rating,
			Rank:     rank,
			Platform: model.PlatformAtCoder,
		})
	}
	return records, nil
}

func findTable(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "table" && hasClass(n, "table") {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findTable(c); found != nil {
			return found
		}
	}
	return nil
}

func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(n *html.Node, inBody bool)
	walk = func(n *html.Node, inBody bool) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch {
			case c.Type == html.ElementNode && c.Data == "tbody":
				walk(c, true)
			case c.Type == html.ElementNode && c.Data == "tr" && inBody:
				rows = append(rows, c)
			default:
				walk(c, inBody)
			}
		}
	}
	walk(table, false)
	return rows
}

func rowCells(row *html.Node) []*html.Node {
	var cells []*html.Node
	for c := row.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "td" {
			cells = append(cells, c)
		}
	}
	return cells
}

func firstLink(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	if n.Type == html.ElementNode && n.Data == "a" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := firstLink(c); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	if n == nil {
		return ""
	}
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

func hasClass(n *html.Node, class string) bool {
	for _, attr := range n.Attr {
		if attr.Key != "class" {
			continue
		}
		for _, c := range strings.Fields(attr.Val) {
			if c == class {
				return true
			}
		}
	}
	return false
}
