// Package opensearch indexes scored businesses so they can be searched
// across reports.
package opensearch

import (
	"context"
	"crypto/tls"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/opensearch-project/opensearch-go/v3"
	"github.com/opensearch-project/opensearch-go/v3/opensearchapi"

	"github.com/turtacn/MarketScope-Intelligence/internal/config"
	"github.com/turtacn/MarketScope-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MarketScope-Intelligence/pkg/errors"
)

var (
	ErrInvalidConfig    = errors.New(errors.ErrCodeValidation, "opensearch addresses required")
	ErrConnectionFailed = errors.New(errors.ErrCodeSearchIndex, "opensearch connection failed")
)

// Client wraps the typed API client and tracks the last ping result.
type Client struct {
	api     *opensearchapi.Client
	config  config.OpenSearchConfig
	logger  logging.Logger
	healthy atomic.Bool
}

// NewClient builds a client and pings the cluster.
func NewClient(ctx context.Context, cfg config.OpenSearchConfig, log logging.Logger) (*Client, error) {
	c, err := newClient(cfg, log)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		return nil, ErrConnectionFailed.WithCause(err)
	}
	c.logger.Info("opensearch client connected", logging.Strings("addresses", cfg.Addresses))
	return c, nil
}

func newClient(cfg config.OpenSearchConfig, log logging.Logger) (*Client, error) {
	if len(cfg.Addresses) == 0 {
		return nil, ErrInvalidConfig
	}
	if log == nil {
		log = logging.NewNopLogger()
	}

	transport := &http.Transport{MaxIdleConnsPerHost: 10}
	if cfg.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for dev clusters
	}

	api, err := opensearchapi.NewClient(opensearchapi.Config{
		Client: opensearch.Config{
			Addresses:     cfg.Addresses,
			Username:      cfg.User,
			Password:      cfg.Password,
			Transport:     transport,
			MaxRetries:    3,
			RetryOnStatus: []int{502, 503, 504, 429},
			RetryBackoff:  func(attempt int) time.Duration { return time.Duration(attempt) * 100 * time.Millisecond },
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSearchIndex, "failed to create opensearch client")
	}
	return &Client{api: api, config: cfg, logger: log.Named("opensearch")}, nil
}

// Ping checks the cluster and records the result for IsHealthy.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.api.Ping(ctx, &opensearchapi.PingReq{})
	if err != nil {
		c.healthy.Store(false)
		c.logger.Warn("opensearch ping failed", logging.Err(err))
		return errors.Wrap(err, errors.ErrCodeSearchIndex, "opensearch ping failed")
	}
	defer resp.Body.Close()
	if resp.IsError() {
		c.healthy.Store(false)
		return errors.Newf(errors.ErrCodeSearchIndex, "opensearch ping returned %d", resp.StatusCode)
	}
	c.healthy.Store(true)
	return nil
}

// IsHealthy returns the result of the last Ping.
func (c *Client) IsHealthy() bool {
	return c.healthy.Load()
}

// Close is a no-op kept for symmetry with the other adapters.
func (c *Client) Close() error {
	return nil
}

//Personal.AI order the ending
