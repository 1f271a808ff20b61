package mouseflow

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sanspareilsmyn/mfreport/internal/config"
	"github.com/sanspareilsmyn/mfreport/internal/recording"
)

const defaultTimeout = 60 * time.Second

// Client talks to the Mouseflow recordings endpoint with HTTP basic auth.
// It is safe for concurrent use.
type Client struct {
	baseURL  string
	user     string
	key      string
	pageSize int
	http     *http.Client
	logger   *zap.Logger
}

type Option func(*Client)

// WithBaseURL overrides the region-derived API origin.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(base, "/")
	}
}

// WithHTTPClient replaces the default *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient validates the region and builds a client for it.
func NewClient(api config.APIConfig, fetch config.FetchConfig, logger *zap.Logger, opts ...Option) (*Client, error) {
	base, err := BaseURL(api.Region)
	if err != nil {
		return nil, err
	}
	timeout := fetch.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		baseURL:  base,
		user:     api.User,
		key:      api.Key,
		pageSize: fetch.PageSize,
		http:     &http.Client{Timeout: timeout},
		logger:   logger.Named("mouseflow"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL is the API origin requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Count returns the number of recordings of websiteID in [from, to].
func (c *Client) Count(ctx context.Context, websiteID string, from, to time.Time) (int, error) {
	body, err := c.get(ctx, CountURL(c.baseURL, websiteID, from, to))
	if err != nil {
		return 0, err
	}
	page, err := recording.ParsePage(body)
	if err != nil {
		return 0, err
	}
	c.logger.Debug("Found recordings", zap.String("website_id", websiteID), zap.Int("count", page.Count))
	return page.Count, nil
}

// PageURLs lists the page requests covering count recordings.
func (c *Client) PageURLs(websiteID string, from, to time.Time, count int) []string {
	urls := PageURLs(c.baseURL, websiteID, from, to, count, c.pageSize)
	c.logger.Debug("Generated page urls",
		zap.String("website_id", websiteID),
		zap.Int("urls", len(urls)),
		zap.Int("count", count),
	)
	return urls
}

// FetchPage GETs one page URL and returns its recordings. Records that do not
// decode cleanly are still returned so the report can count them as malformed.
func (c *Client) FetchPage(ctx context.Context, url string) ([]recording.Recording, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	page, err := recording.ParsePage(body)
	if err != nil {
		return nil, err
	}

	bad := 0
	for _, rec := range page.Recordings {
		if rec.Err() != nil || len(rec.Mistyped()) > 0 {
			bad++
		}
	}
	if bad > 0 {
		c.logger.Warn("Page contains malformed recordings",
			zap.String("url", url),
			zap.Int("malformed", bad),
			zap.Int("recordings", len(page.Recordings)),
		)
	}
	return page.Recordings, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.SetBasicAuth(c.user, c.key)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Request", zap.String("url", url))
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if err := checkStatus(url, resp.StatusCode); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadingResponse, err)
	}
	c.logger.Debug("Response", zap.String("url", url), zap.Int("status", resp.StatusCode), zap.Int("bytes", len(body)))
	return body, nil
}
