package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/rickdex/internal/domain"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "rickdex"

	// DefaultBaseURL is the public Rick and Morty API
	DefaultBaseURL = "https://rickandmortyapi.com/api"
)

// Client fetches characters, episodes and images from the Rick and Morty API.
// It performs exactly one round trip per call and never retries.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			// Copy so a caller-supplied client is never mutated
			hc := *c.httpClient
			hc.Timeout = d
			c.httpClient = &hc
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// NewClient creates a new API client rooted at baseURL
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: defaultUserAgent,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FirstPageURL returns the well-known first page of the character listing
func (c *Client) FirstPageURL() string {
	return c.baseURL + "/character"
}

// FetchPage fetches the listing page at cursor
func (c *Client) FetchPage(ctx context.Context, cursor string) (domain.Page, error) {
	body, err := c.doRequest(ctx, cursor)
	if err != nil {
		return domain.Page{}, err
	}

	var resp CharactersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Page{}, fmt.Errorf("%w: %v", domain.ErrDecoding, err)
	}

	page, err := MapPage(resp)
	if err != nil {
		return domain.Page{}, err
	}

	c.logger.Debug("fetched page", "cursor", cursor, "count", len(page.Characters), "next", page.Next)
	return page, nil
}

// FetchEpisode fetches the detail of a single episode
func (c *Client) FetchEpisode(ctx context.Context, episodeURL string) (domain.Episode, error) {
	body, err := c.doRequest(ctx, episodeURL)
	if err != nil {
		return domain.Episode{}, err
	}

	var resp EpisodeDTO
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.Episode{}, fmt.Errorf("%w: %v", domain.ErrDecoding, err)
	}

	return MapEpisode(resp)
}

// FetchImage downloads raw image bytes
func (c *Client) FetchImage(ctx context.Context, imageURL string) ([]byte, error) {
	return c.doRequest(ctx, imageURL)
}

// doRequest performs a single GET and returns the non-empty body
func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	reqURL, err := parseURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	c.logger.Debug("api request", "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		c.logger.Error("api request failed", "error", err, "url", reqURL)
		return nil, fmt.Errorf("%w: %v", domain.ErrNoData, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", domain.ErrNoData, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("api request error", "status", resp.StatusCode, "url", reqURL, "body", string(body))
		return nil, fmt.Errorf("%w: unexpected status code %d", domain.ErrNoData, resp.StatusCode)
	}

	if len(body) == 0 {
		return nil, fmt.Errorf("%w: empty body from %s", domain.ErrNoData, reqURL)
	}

	return body, nil
}

// parseURL accepts only absolute http(s) URLs
func parseURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: empty", domain.ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http url", domain.ErrInvalidURL, rawURL)
	}
	return u.String(), nil
}
