// Package ridb implements a rate-limited, retrying client for the
// recreation.gov RIDB API.
package ridb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/opencampsites/ridb-collector/internal/metrics"
)

const (
	// DefaultBaseURL is the production RIDB endpoint.
	DefaultBaseURL = "https://ridb.recreation.gov/api/v1"

	defaultTimeout       = 30 * time.Second
	defaultMaxRetries    = 3
	defaultRateLimitWait = 5 * time.Second

	maxErrorBodyBytes = 512
)

// Limiter paces outbound requests. A single shared instance must be used for
// all callers against the same source API.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Config controls Client behavior.
type Config struct {
	BaseURL       string
	APIKey        string
	Timeout       time.Duration
	MaxRetries    int
	RateLimitWait time.Duration
}

// Client issues RIDB requests through a shared rate limiter with retry,
// timeout, and status-specific handling.
type Client struct {
	http    *http.Client
	limiter Limiter
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Client. The limiter is required; see Limiter.
func New(cfg Config, limiter Limiter, logger *zap.Logger) (*Client, error) {
	if limiter == nil {
		return nil, fmt.Errorf("rate limiter is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ridb api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RateLimitWait <= 0 {
		cfg.RateLimitWait = defaultRateLimitWait
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		http:    &http.Client{},
		limiter: limiter,
		cfg:     cfg,
		logger:  logger,
	}, nil
}

// errRateLimited marks a 429 response; it never consumes a retry slot.
var errRateLimited = errors.New("rate limited")

// get fetches one envelope from the API. 404 responses return an empty
// envelope rather than an error: the source uses 404 to mean "no such
// sub-resource", which is a normal outcome for e.g. a campsite with no media.
func (c *Client) get(ctx context.Context, resource, path string, query url.Values) (Envelope, error) {
	endpoint := c.cfg.BaseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var lastErr error
	attempt := 1
	for attempt <= c.cfg.MaxRetries {
		if err := c.limiter.Wait(ctx); err != nil {
			return Envelope{}, err
		}

		env, wait, err := c.attempt(ctx, resource, endpoint)
		if err == nil {
			return env, nil
		}
		if errors.Is(err, errRateLimited) {
			metrics.ObserveRetry("rate_limited")
			c.logger.Warn("ridb rate limited",
				zap.String("resource", resource),
				zap.Duration("wait", wait),
			)
			if sleepErr := sleepContext(ctx, wait); sleepErr != nil {
				return Envelope{}, sleepErr
			}
			continue
		}

		lastErr = err
		if attempt >= c.cfg.MaxRetries {
			break
		}
		backoff := time.Duration(1<<(attempt-1)) * time.Second
		metrics.ObserveRetry("backoff")
		c.logger.Warn("ridb request failed, retrying",
			zap.String("resource", resource),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err),
		)
		if sleepErr := sleepContext(ctx, backoff); sleepErr != nil {
			return Envelope{}, sleepErr
		}
		attempt++
	}
	return Envelope{}, fmt.Errorf("ridb get %s after %d attempts: %w", path, c.cfg.MaxRetries, lastErr)
}

// attempt performs a single request. The second return value is the wait the
// source asked for when the error is errRateLimited.
func (c *Client) attempt(ctx context.Context, resource, endpoint string) (Envelope, time.Duration, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Envelope{}, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveRequest(resource, "network_error", time.Since(start))
		return Envelope{}, 0, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // read side only

	metrics.ObserveRequest(resource, strconv.Itoa(resp.StatusCode), time.Since(start))

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Envelope{}, 0, nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return Envelope{}, c.retryAfter(resp), errRateLimited
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return Envelope{}, 0, fmt.Errorf("ridb api error (%d): %s", resp.StatusCode, string(body))
	}

	var env Envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return Envelope{}, 0, fmt.Errorf("decode envelope: %w", err)
	}
	return env, 0, nil
}

func (c *Client) retryAfter(resp *http.Response) time.Duration {
	if v := resp.Header.Get("Retry-After"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return c.cfg.RateLimitWait
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("retry wait: %w", ctx.Err())
	case <-timer.C:
		return nil
	}
}

func pageQuery(limit, offset int) url.Values {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	return q
}

func decodeList[T any](env Envelope) ([]T, error) {
	if len(env.RecData) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(env.RecData, &items); err != nil {
		return nil, fmt.Errorf("decode RECDATA: %w", err)
	}
	return items, nil
}

func decodeOne[T any](env Envelope) (*T, error) {
	items, err := decodeList[T](env)
	if err != nil {
		// Detail endpoints return a bare object rather than an array.
		var item T
		if objErr := json.Unmarshal(env.RecData, &item); objErr == nil {
			return &item, nil
		}
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// Facilities lists one page of facilities and reports the source's total count.
func (c *Client) Facilities(ctx context.Context, limit, offset int) ([]Facility, int, error) {
	env, err := c.get(ctx, "facilities", "/facilities", pageQuery(limit, offset))
	if err != nil {
		return nil, 0, err
	}
	items, err := decodeList[Facility](env)
	if err != nil {
		return nil, 0, err
	}
	return items, env.Metadata.Results.TotalCount, nil
}

// Facility fetches the full detail record for one facility, or nil when the
// source has no such facility.
func (c *Client) Facility(ctx context.Context, id string) (*Facility, error) {
	env, err := c.get(ctx, "facility", "/facilities/"+url.PathEscape(id), url.Values{"full": {"true"}})
	if err != nil {
		return nil, err
	}
	return decodeOne[Facility](env)
}

// FacilityCampsites lists one page of campsites under a facility.
func (c *Client) FacilityCampsites(ctx context.Context, facilityID string, limit, offset int) ([]Campsite, int, error) {
	path := "/facilities/" + url.PathEscape(facilityID) + "/campsites"
	env, err := c.get(ctx, "campsites", path, pageQuery(limit, offset))
	if err != nil {
		return nil, 0, err
	}
	items, err := decodeList[Campsite](env)
	if err != nil {
		return nil, 0, err
	}
	return items, env.Metadata.Results.TotalCount, nil
}

// CampsiteAttributes fetches the secondary attributes of a campsite.
func (c *Client) CampsiteAttributes(ctx context.Context, campsiteID string) ([]Attribute, error) {
	path := "/campsites/" + url.PathEscape(campsiteID) + "/attributes"
	env, err := c.get(ctx, "campsite_attributes", path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Attribute](env)
}

// CampsiteMedia fetches the media records of a campsite.
func (c *Client) CampsiteMedia(ctx context.Context, campsiteID string) ([]Media, error) {
	path := "/campsites/" + url.PathEscape(campsiteID) + "/media"
	env, err := c.get(ctx, "campsite_media", path, nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Media](env)
}

// RecArea fetches a recreation area detail record, or nil when absent.
func (c *Client) RecArea(ctx context.Context, id string) (*RecArea, error) {
	env, err := c.get(ctx, "recarea", "/recareas/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[RecArea](env)
}

// Organization fetches an organization detail record, or nil when absent.
func (c *Client) Organization(ctx context.Context, id string) (*Organization, error) {
	env, err := c.get(ctx, "organization", "/organizations/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[Organization](env)
}
