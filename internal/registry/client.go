// Package registry talks to an Open VSX compatible extension registry.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/xid"
	"go.uber.org/zap"

	"vsxbrowse/internal/domain"
	"vsxbrowse/internal/paging"
)

const searchPath = "/api/-/search"

// maxBody bounds how much of a response we are willing to decode
const maxBody = 8 << 20

// Client is a paging.SearchProvider over the registry's search endpoint
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds each search request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for the registry at baseURL
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse registry url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("registry url %q: unsupported scheme", baseURL)
	}

	c := &Client{
		base:   u,
		http:   http.DefaultClient,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("registry")
	return c, nil
}

// SearchURL builds the search request URL for a filter
func (c *Client) SearchURL(filter paging.Filter) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + searchPath

	q := url.Values{}
	if filter.Query != "" {
		q.Set("query", filter.Query)
	}
	if filter.Category != "" {
		q.Set("category", filter.Category)
	}
	q.Set("offset", strconv.Itoa(filter.Offset))
	if filter.Size > 0 {
		q.Set("size", strconv.Itoa(filter.Size))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Search fetches one page of extensions
func (c *Client) Search(ctx context.Context, filter paging.Filter) (paging.Page[domain.Extension], error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	target := c.SearchURL(filter)
	reqID := xid.New().String()
	logger := c.logger.With(zap.String("request_id", reqID))
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return paging.Page[domain.Extension]{}, &TransportError{Op: "GET", URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", reqID)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			err = ctx.Err()
		}
		logger.Debug("search request failed", zap.String("url", target), zap.Error(err))
		return paging.Page[domain.Extension]{}, &TransportError{Op: "GET", URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return paging.Page[domain.Extension]{}, &TransportError{Op: "read", URL: target, Err: err}
	}

	var result searchResponse
	decodeErr := json.Unmarshal(body, &result)

	// an error body wins over the status code
	if decodeErr == nil && result.Error != "" {
		logger.Info("registry returned error", zap.String("url", target), zap.Int("status", resp.StatusCode), zap.String("error", result.Error))
		return paging.Page[domain.Extension]{}, &ErrorResult{Message: result.Error, StatusCode: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return paging.Page[domain.Extension]{}, &TransportError{Op: "GET", URL: target, StatusCode: resp.StatusCode}
	}
	if decodeErr != nil {
		return paging.Page[domain.Extension]{}, &TransportError{Op: "decode", URL: target, Err: decodeErr}
	}

	logger.Debug("search completed",
		zap.String("url", target),
		zap.Int("received", len(result.Extensions)),
		zap.Int("total", result.TotalSize),
		zap.Duration("elapsed", time.Since(start)),
	)

	return paging.Page[domain.Extension]{
		Items:     result.Extensions,
		TotalSize: result.TotalSize,
	}, nil
}
