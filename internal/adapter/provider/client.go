// Package provider implements the outbound HTTP client for SMM provider
// APIs. Providers expose a single form-encoded endpoint dispatching on the
// "action" field, and most of them sit behind bot-challenge frontends that
// reject non-browser clients.
package provider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smm-admin-gateway/config"

	"github.com/rs/zerolog"
)

// maxResponseBytes caps the upstream body read. Provider service lists run
// to a few hundred KB; anything beyond this is a misbehaving upstream.
const maxResponseBytes = 10 << 20

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client implements ports.ProviderClient.
type Client struct {
	httpClient HTTPClient
	userAgent  string
	timeout    time.Duration
	log        zerolog.Logger
}

// NewClient creates a provider API client.
func NewClient(cfg config.ProviderConfig, log zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		log:        log,
	}
}

// NewClientWithHTTP creates a client with a custom HTTP client (tests).
func NewClientWithHTTP(httpClient HTTPClient, cfg config.ProviderConfig, log zerolog.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		userAgent:  cfg.UserAgent,
		timeout:    cfg.Timeout,
		log:        log,
	}
}

// Do performs a single form-encoded POST against the provider endpoint.
// There are no retries: callers surface the failure to the operator, who
// decides whether to retry. The raw body is returned for both 2xx and
// non-2xx responses so the caller controls what leaks to clients.
func (c *Client) Do(ctx context.Context, apiURL, apiKey, action string, params map[string]string) ([]byte, error) {
	form := url.Values{}
	form.Set("key", apiKey)
	form.Set("action", action)
	for k, v := range params {
		if k == "key" || k == "action" {
			continue
		}
		form.Set(k, v)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building provider request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("action", action).Msg("provider request failed")
		return nil, fmt.Errorf("provider request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading provider response: %w", err)
	}

	c.log.Debug().
		Str("action", action).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("provider request completed")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Body kept out of the error string: challenge pages must not
		// propagate to API clients.
		c.log.Warn().
			Str("action", action).
			Int("status", resp.StatusCode).
			Int("body_bytes", len(body)).
			Msg("provider returned non-2xx status")
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	return body, nil
}
