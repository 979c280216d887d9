// Package client calls the dashboard API routes.
//
// FetchActivity and FetchStats reuse a response for up to Revalidate after it
// was fetched. The NoCache variants always go to the server and are what the
// polling dashboard uses.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"gitactivity/internal/models"
)

const (
	activityPath = "/api/git-activity"
	statsPath    = "/api/git-activity/stats"

	DefaultRevalidate = 15 * time.Second
	defaultTimeout    = 10 * time.Second
)

// StatusError is returned when a route answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Failed to fetch %s", e.Op)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	revalidate time.Duration
	now        func() time.Time

	mu    sync.Mutex
	cache map[string]cachedResponse
}

type cachedResponse struct {
	value     interface{}
	fetchedAt time.Time
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		revalidate: DefaultRevalidate,
		now:        time.Now,
		cache:      make(map[string]cachedResponse),
	}
}

func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

func (c *Client) FetchActivity(ctx context.Context) (*models.ActivityResponse, error) {
	if v, ok := c.cached(activityPath); ok {
		return v.(*models.ActivityResponse), nil
	}
	resp, err := c.FetchActivityNoCache(ctx)
	if err != nil {
		return nil, err
	}
	c.store(activityPath, resp)
	return resp, nil
}

func (c *Client) FetchStats(ctx context.Context) (*models.StatsResponse, error) {
	if v, ok := c.cached(statsPath); ok {
		return v.(*models.StatsResponse), nil
	}
	resp, err := c.FetchStatsNoCache(ctx)
	if err != nil {
		return nil, err
	}
	c.store(statsPath, resp)
	return resp, nil
}

func (c *Client) FetchActivityNoCache(ctx context.Context) (*models.ActivityResponse, error) {
	var resp models.ActivityResponse
	if err := c.getJSON(ctx, activityPath, "git activity", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) FetchStatsNoCache(ctx context.Context) (*models.StatsResponse, error) {
	var resp models.StatsResponse
	if err := c.getJSON(ctx, statsPath, "git statistics", &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) getJSON(ctx context.Context, path, op string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", op, err)
	}
	return nil
}

func (c *Client) cached(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[key]
	if !ok || c.now().Sub(entry.fetchedAt) >= c.revalidate {
		return nil, false
	}
	return entry.value, true
}

func (c *Client) store(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cachedResponse{value: value, fetchedAt: c.now()}
}
