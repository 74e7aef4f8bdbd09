// Package client is the Go SDK for the MarketScope-Intelligence HTTP API.
//
// The SDK carries its own request and response types so that callers do not
// depend on the server's internal packages.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

const Version = "0.1.0"

const apiPrefix = "/api/v1"

// Logger receives the SDK's diagnostic output.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...interface{}) {}
func (noopLogger) Infof(string, ...interface{})  {}
func (noopLogger) Errorf(string, ...interface{}) {}

// Client talks to one MarketScope API server.  Safe for concurrent use.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	userAgent    string
	headers      http.Header
	logger       Logger
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	requestID    func() string

	markets        *MarketsClient
	marketsOnce    sync.Once
	reports        *ReportsClient
	reportsOnce    sync.Once
	businesses     *BusinessesClient
	businessesOnce sync.Once
}

// APIError is a non-2xx response decoded from the server's error envelope.
type APIError struct {
	StatusCode int    `json:"status_code"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Detail     string `json:"detail,omitempty"`
	RequestID  string `json:"request_id"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return fmt.Sprintf("marketscope: %s (HTTP %d): %s [request_id=%s]", e.Code, e.StatusCode, msg, e.RequestID)
}

func (e *APIError) IsNotFound() bool { return e.StatusCode == http.StatusNotFound }

func (e *APIError) IsRateLimited() bool { return e.StatusCode == http.StatusTooManyRequests }

func (e *APIError) IsServerError() bool { return e.StatusCode >= 500 && e.StatusCode < 600 }

// NewClient returns a client for the server at baseURL, e.g.
// "http://localhost:8080".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New(errors.ErrCodeValidation, "base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid base URL").WithDetail(baseURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.New(errors.ErrCodeValidation, "base URL scheme must be http or https").WithDetail(baseURL)
	}

	c := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 60 * time.Second},
		userAgent:    "marketscope-go-sdk/" + Version,
		headers:      make(http.Header),
		logger:       noopLogger{},
		retryMax:     3,
		retryWaitMin: 500 * time.Millisecond,
		retryWaitMax: 5 * time.Second,
		requestID:    func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Markets returns the analysis sub-client.
func (c *Client) Markets() *MarketsClient {
	c.marketsOnce.Do(func() { c.markets = &MarketsClient{client: c} })
	return c.markets
}

// Reports returns the stored-report sub-client.
func (c *Client) Reports() *ReportsClient {
	c.reportsOnce.Do(func() { c.reports = &ReportsClient{client: c} })
	return c.reports
}

// Businesses returns the business-search sub-client.
func (c *Client) Businesses() *BusinessesClient {
	c.businessesOnce.Do(func() { c.businesses = &BusinessesClient{client: c} })
	return c.businesses
}

// ─────────────────────────────────────────────────────────────────────────────
// Transport
// ─────────────────────────────────────────────────────────────────────────────

// do sends one logical request.  Transport errors and 5xx responses are
// retried only for GET; a 429 is retried for every method since the server
// rejected it before doing any work.  Every attempt carries the same request
// id.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, result interface{}) error {
	fullURL := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal request body")
		}
	}

	requestID := c.requestID()
	idempotent := method == http.MethodGet

	var lastErr error
	for attempt := 0; attempt <= c.retryMax; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			if rl, ok := lastErr.(*rateLimited); ok {
				wait = rl.wait
				lastErr = rl.err
			}
			c.logger.Debugf("retry %d of %s %s after %v", attempt, method, path, wait)
			if err := sleep(ctx, wait); err != nil {
				return err
			}
		}

		var reader io.Reader
		if payload != nil {
			reader = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeBadRequest, "failed to create request")
		}
		for k, vs := range c.headers {
			for _, v := range vs {
				req.Header.Add(k, v)
			}
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-ID", requestID)

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Errorf("%s %s failed: %v", method, path, err)
			lastErr = errors.Wrap(err, errors.ErrCodeExternalService, "request failed")
			if idempotent {
				continue
			}
			return lastErr
		}
		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to read response body")
		}
		c.logger.Debugf("%s %s %d (%v)", method, path, resp.StatusCode, time.Since(start))

		if resp.StatusCode < 400 {
			if result != nil && len(respBody) > 0 {
				if err := json.Unmarshal(respBody, result); err != nil {
					return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode response")
				}
			}
			return nil
		}

		apiErr := decodeAPIError(resp, respBody, requestID)
		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			lastErr = &rateLimited{err: apiErr, wait: retryAfter(resp, c.retryWaitMin)}
		case apiErr.IsServerError() && idempotent:
			lastErr = apiErr
		default:
			return apiErr
		}
	}
	if rl, ok := lastErr.(*rateLimited); ok {
		return rl.err
	}
	return lastErr
}

type rateLimited struct {
	err  *APIError
	wait time.Duration
}

func (r *rateLimited) Error() string { return r.err.Error() }

func decodeAPIError(resp *http.Response, body []byte, requestID string) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode, RequestID: requestID}
	if id := resp.Header.Get("X-Request-ID"); id != "" {
		apiErr.RequestID = id
	}
	if len(body) == 0 {
		apiErr.Message = http.StatusText(resp.StatusCode)
		return apiErr
	}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Code == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	apiErr.StatusCode = resp.StatusCode
	return apiErr
}

func retryAfter(resp *http.Response, fallback time.Duration) time.Duration {
	if s, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && s >= 0 {
		return time.Duration(s) * time.Second
	}
	return fallback
}

// backoff doubles from retryWaitMin up to retryWaitMax and adds up to 25%
// jitter.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.retryWaitMax
	if attempt <= 32 {
		if exp := c.retryWaitMin << uint(attempt-1); exp > 0 && exp < d {
			d = exp
		}
	}
	if quarter := int64(d / 4); quarter > 0 {
		d += time.Duration(rand.Int63n(quarter))
	}
	return d
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, query, nil, result)
}

func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, nil, body, result)
}

//Personal.AI order the ending
