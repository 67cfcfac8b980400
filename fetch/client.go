// ABOUTME: HTTP record fetcher for the CRM backend
// ABOUTME: Normalizes response envelopes, retries transient failures, and writes through the cache
package fetch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"

	"github.com/adrata/pipenav/cache"
	"github.com/adrata/pipenav/models"
)

const (
	// Timeout bounds every fetch so a Fetching state always resolves.
	Timeout = 10 * time.Second

	// maxRetries is the bounded retry count for transient failures; the
	// debounce window acts as natural backoff between attempts.
	maxRetries = 2

	retryDelay = 500 * time.Millisecond
)

// Client fetches single records and bounded collections from the backend,
// populating the layered cache on success.
type Client struct {
	baseURL   string
	workspace string
	sessionID string
	http      *http.Client
	cache     *cache.LayeredCache
	group     *coalescer
}

// NewClient builds a fetcher for the given backend. token may be empty for
// unauthenticated (demo) backends; sessionID is sent on every request so the
// backend can correlate a client session's calls.
func NewClient(baseURL, workspace, token, sessionID string, lc *cache.LayeredCache) *Client {
	hc := &http.Client{Timeout: Timeout}
	if token != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		hc = oauth2.NewClient(context.Background(), src)
		hc.Timeout = Timeout
	}
	return &Client{
		baseURL:   baseURL,
		workspace: workspace,
		sessionID: sessionID,
		http:      hc,
		cache:     lc,
		group:     newCoalescer(DebounceWindow),
	}
}

// recordEnvelope is the backend's success envelope for single records. Some
// endpoints return the bare object instead; normalization handles both.
type recordEnvelope struct {
	Success bool           `json:"success"`
	Data    map[string]any `json:"data"`
}

type collectionEnvelope struct {
	Success bool             `json:"success"`
	Data    []map[string]any `json:"data"`
	Total   int              `json:"total"`
}

// FetchRecord retrieves one record by (section, id). Requests for the same
// pair inside the debounce window are coalesced into one network call.
func (c *Client) FetchRecord(ctx context.Context, section models.Section, id string) (models.Record, error) {
	if _, err := models.ParseSection(string(section)); err != nil {
		return models.Record{}, err
	}
	if IsExternalID(id) {
		return models.Record{}, fmt.Errorf("%w: %s", ErrExternalID, id)
	}

	key := string(section) + "/" + id
	return c.group.do(key, func() (models.Record, error) {
		rec, err := c.fetchWithRetry(ctx, section, id)
		if err != nil {
			return models.Record{}, err
		}
		if c.cache != nil {
			c.cache.Store(section, rec.ID, rec, c.cache.LatestVersion(section, rec.ID))
		}
		return rec, nil
	})
}

// Forget clears the debounce window for (section, id) so a forced refresh
// refetches immediately instead of reusing a just-completed result.
func (c *Client) Forget(section models.Section, id string) {
	c.group.forget(string(section) + "/" + id)
}

func (c *Client) fetchWithRetry(ctx context.Context, section models.Section, id string) (models.Record, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("fetch: retrying %s/%s (attempt %d)", section, id, attempt+1)
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return models.Record{}, &TransientError{Err: ctx.Err()}
			}
		}

		rec, err := c.fetchOnce(ctx, section, id)
		if err == nil {
			return rec, nil
		}

		var transient *TransientError
		if !errors.As(err, &transient) {
			return models.Record{}, err
		}
		lastErr = err
	}
	return models.Record{}, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, section models.Section, id string) (models.Record, error) {
	url := fmt.Sprintf("%s/api/v1/%s/%s/records/%s", c.baseURL, c.workspace, section, id)

	body, status, err := c.get(ctx, url)
	if err != nil {
		return models.Record{}, &TransientError{Err: err}
	}

	switch {
	case status == http.StatusNotFound:
		return models.Record{}, fmt.Errorf("%w: %s/%s", ErrNotFound, section, id)
	case status < 200 || status > 299:
		return models.Record{}, &TransientError{Status: status, Body: string(body)}
	}

	return normalizeRecord(body, id)
}

// FetchCollection retrieves a bounded page of a section's records plus the
// backend's total count, and installs the collection snapshot.
func (c *Client) FetchCollection(ctx context.Context, section models.Section, limit int) ([]models.Record, int, error) {
	if _, err := models.ParseSection(string(section)); err != nil {
		return nil, 0, err
	}
	if limit <= 0 {
		limit = 100
	}

	url := fmt.Sprintf("%s/api/v1/%s/%s/records?limit=%d", c.baseURL, c.workspace, section, limit)
	body, status, err := c.get(ctx, url)
	if err != nil {
		return nil, 0, &TransientError{Err: err}
	}
	if status < 200 || status > 299 {
		return nil, 0, &TransientError{Status: status, Body: string(body)}
	}

	var env collectionEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, 0, &TransientError{Err: fmt.Errorf("failed to decode collection: %w", err)}
	}

	records := make([]models.Record, 0, len(env.Data))
	for _, fields := range env.Data {
		records = append(records, recordFromFields(fields, ""))
	}

	total := env.Total
	if total < len(records) {
		total = len(records)
	}
	if c.cache != nil {
		c.cache.SetCollection(section, records, total)
	}
	return records, total, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	if c.sessionID != "" {
		req.Header.Set("X-Client-Session", c.sessionID)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// normalizeRecord accepts both the `{success, data}` envelope and a bare
// record object.
func normalizeRecord(body []byte, requestedID string) (models.Record, error) {
	var env recordEnvelope
	if err := json.Unmarshal(body, &env); err == nil && env.Data != nil {
		return recordFromFields(env.Data, requestedID), nil
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return models.Record{}, &TransientError{Err: fmt.Errorf("failed to decode record: %w", err)}
	}
	return recordFromFields(fields, requestedID), nil
}

func recordFromFields(fields map[string]any, requestedID string) models.Record {
	id := requestedID
	if v, ok := fields["id"].(string); ok && models.ValidID(v) {
		id = v
	}
	return models.NewRecord(id, fields)
}
