package googlebooks

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"bookscape/internal/logging"
	"bookscape/internal/metrics"
)

const (
	// MaxPageSize is the largest maxResults the volumes endpoint accepts.
	MaxPageSize = 40

	DefaultBaseURL   = "https://www.googleapis.com/books/v1/volumes"
	DefaultPageDelay = time.Second
)

type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	userAgent  string
	pageDelay  time.Duration
}

type Option func(*Client)

func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithPageDelay sets the fixed pause between page requests. Zero disables it.
func WithPageDelay(d time.Duration) Option {
	return func(c *Client) { c.pageDelay = d }
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		apiKey:    apiKey,
		baseURL:   DefaultBaseURL,
		userAgent: "bookscape/1.0",
		pageDelay: DefaultPageDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pause blocks for the page delay once a page has been received and another
// one is still needed. It returns early only when ctx is done.
func (c *Client) pause(ctx context.Context) error {
	if c.pageDelay <= 0 {
		return nil
	}
	t := time.NewTimer(c.pageDelay)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// APIError is a non-200 answer from the volumes endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status code: %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status code: %d: %s", e.StatusCode, e.Message)
}

// Search pages through the volumes endpoint until maxResults volumes are
// collected, the service runs out of results, or a request fails. A failure
// is logged and whatever was collected before it is returned.
func (c *Client) Search(ctx context.Context, query string, maxResults int) []Volume {
	volumes := []Volume{}
	if maxResults <= 0 {
		return volumes
	}

	startIndex := 0
	for len(volumes) < maxResults {
		batch := min(MaxPageSize, maxResults-len(volumes))

		page, err := c.fetchPage(ctx, query, startIndex, batch)
		if err != nil {
			metrics.SearchPagesTotal.WithLabelValues("error").Inc()
			logging.Ctx(ctx).Warn().Err(err).
				Str("query", query).
				Int("start_index", startIndex).
				Int("collected", len(volumes)).
				Msg("search request failed, returning partial results")
			break
		}
		if len(page.Items) == 0 {
			metrics.SearchPagesTotal.WithLabelValues("empty").Inc()
			break
		}

		metrics.SearchPagesTotal.WithLabelValues("ok").Inc()
		metrics.SearchItemsTotal.Add(float64(len(page.Items)))
		volumes = append(volumes, page.Items...)
		startIndex += len(page.Items)

		if len(volumes) < maxResults {
			if err := c.pause(ctx); err != nil {
				logging.Ctx(ctx).Warn().Err(err).
					Str("query", query).
					Int("collected", len(volumes)).
					Msg("search interrupted between pages, returning partial results")
				break
			}
		}
	}

	if len(volumes) > maxResults {
		volumes = volumes[:maxResults]
	}
	return volumes
}

func (c *Client) fetchPage(ctx context.Context, query string, startIndex, batch int) (*VolumesResponse, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("maxResults", strconv.Itoa(batch))
	params.Set("startIndex", strconv.Itoa(startIndex))
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeAPIError(resp)
	}

	var res VolumesResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("decode volumes page: %w", err)
	}
	return &res, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return apiErr
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil {
		apiErr.Message = envelope.Error.Message
	}
	return apiErr
}
