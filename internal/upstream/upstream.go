// Package upstream talks to the webhook-capture service that records
// repository events.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"gitactivity/internal/logger"
	"gitactivity/internal/models"
)

const updatesPath = "/api/updates"

var (
	ErrUnavailable      = errors.New("upstream unavailable")
	ErrMalformedPayload = errors.New("malformed upstream payload")
)

// Source fetches the raw activity list.
type Source interface {
	FetchUpdates(ctx context.Context) ([]models.RawActivityRecord, error)
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchUpdates issues an uncached GET for the full activity list. An empty
// base URL yields a request error, reported as ErrUnavailable.
func (c *Client) FetchUpdates(ctx context.Context) ([]models.RawActivityRecord, error) {
	url := c.baseURL + updatesPath
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Cache-Control", "no-store")
	req.Header.Set("Accept", "application/json")

	logger.Debugf("upstream: GET %s", url)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: failed to fetch data. Status: %d", ErrUnavailable, resp.StatusCode)
	}

	var items []*models.RawActivityRecord
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if items == nil {
		return nil, fmt.Errorf("%w: body is not a list", ErrMalformedPayload)
	}

	records := make([]models.RawActivityRecord, len(items))
	for i, item := range items {
		if item == nil {
			return nil, fmt.Errorf("%w: record %d is null", ErrMalformedPayload, i)
		}
		records[i] = *item
	}

	logger.Debugf("upstream: received %d records", len(records))
	return records, nil
}
