// Package replay implements the HTTP client for the external replay
// source. It fetches batches of recently completed matches, newest-first,
// and maps them into domain records for the ingestion pipeline.
package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/duelhub/duel-rating-hub/internal/domain/game"
	"github.com/duelhub/duel-rating-hub/pkg/circuitbreaker"
	"github.com/duelhub/duel-rating-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the replay source client.
type ClientConfig struct {
	// BaseURL is the replay API base URL.
	BaseURL string

	// APIKey is sent as a bearer token when non-empty.
	APIKey string

	// BatchSize is the number of replays requested per fetch.
	BatchSize int

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RetryConfig for transient fetch failures.
	RetryConfig retry.Config

	// BreakerConfig protects a failing upstream from repeated hammering.
	BreakerConfig circuitbreaker.Config

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL string) ClientConfig {
	return ClientConfig{
		BaseURL:       baseURL,
		BatchSize:     127,
		Timeout:       30 * time.Second,
		RetryConfig:   retry.DefaultConfig(),
		BreakerConfig: circuitbreaker.DefaultConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client fetches replay batches from the source API.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	breaker    *circuitbreaker.Breaker
	logger     *slog.Logger
}

// NewClient creates a replay source client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BatchSize <= 0 {
		config.BatchSize = 127
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		breaker:    circuitbreaker.New(config.BreakerConfig),
		logger:     config.Logger,
	}
}

// FetchBatch returns one batch of raw match records, newest-first as
// delivered by the source. Malformed records are logged and skipped so a
// single bad row cannot starve ingestion.
func (c *Client) FetchBatch(ctx context.Context) ([]game.Raw, error) {
	var batch BatchDTO

	err := retry.Do(ctx, c.config.RetryConfig, func(ctx context.Context) error {
		return c.breaker.Do(func() error {
			return c.fetch(ctx, &batch)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("replay: fetch batch: %w", err)
	}

	raws := make([]game.Raw, 0, len(batch.Replays))
	for _, dto := range batch.Replays {
		raw, err := dto.ToRaw()
		if err != nil {
			c.logger.Warn("skipping malformed replay", "error", err)
			continue
		}
		raws = append(raws, raw)
	}

	return raws, nil
}

func (c *Client) fetch(ctx context.Context, out *BatchDTO) error {
	url := fmt.Sprintf("%s/api/replays?count=%d", c.config.BaseURL, c.config.BatchSize)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return retry.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("replay source returned %d", resp.StatusCode)
	default:
		return retry.Permanent(fmt.Errorf("replay source returned %d: %s", resp.StatusCode, body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return retry.Permanent(fmt.Errorf("decode batch: %w", err))
	}
	return nil
}
