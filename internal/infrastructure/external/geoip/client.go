// Package geoip resolves IP addresses to location labels via the free
// ip-api.com JSON endpoint. The service allows ~45 requests per minute
// without a key, so the client carries its own rate limiter and a circuit
// breaker; a blocked or failed lookup is reported as an error and the
// audit layer degrades the location to "Unknown".
package geoip

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
	"github.com/resulthub/academic-results-hub/pkg/circuitbreaker"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the geolocation client.
type ClientConfig struct {
	// BaseURL is the geolocation API base URL.
	BaseURL string

	// Timeout is the HTTP request timeout. Kept short: a mutation is
	// waiting on this lookup.
	Timeout time.Duration

	// RequestsPerMinute caps outgoing lookups (ip-api.com free tier: 45).
	RequestsPerMinute int

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults for ip-api.com.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:           "http://ip-api.com",
		Timeout:           2 * time.Second,
		RequestsPerMinute: 45,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the ip-api.com geolocation client. It implements the
// auditctx.GeoLocator interface.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
	breaker    *circuitbreaker.CircuitBreaker

	// sliding one-minute request window
	mu     sync.Mutex
	window []time.Time
}

// NewClient creates a new geolocation client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.RequestsPerMinute <= 0 {
		config.RequestsPerMinute = 45
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: config.Logger.With("client", "geoip"),
		breaker: circuitbreaker.New("geoip",
			circuitbreaker.WithFailureThreshold(5),
			circuitbreaker.WithTimeout(time.Minute),
		),
	}
}

// lookupResponse is the ip-api.com JSON payload.
type lookupResponse struct {
	Status     string  `json:"status"`
	Message    string  `json:"message"`
	City       string  `json:"city"`
	RegionName string  `json:"regionName"`
	Country    string  `json:"country"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
}

// Locate resolves an IP address to a "City, Region, Country" label.
func (c *Client) Locate(ctx context.Context, ipAddress string) (string, error) {
	if ipAddress == "" {
		return "", shared.ErrGeoLookupUnavailable
	}

	if !c.allow() {
		return "", shared.NewDomainError("geoip", "Locate", shared.ErrRateLimited,
			"lookup rate limit reached")
	}

	var label string
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		label, err = c.lookup(ctx, ipAddress)
		return err
	})
	if err != nil {
		c.logger.Warn("geolocation lookup failed",
			"ip", ipAddress,
			"error", err,
		)
		return "", err
	}

	return label, nil
}

func (c *Client) lookup(ctx context.Context, ipAddress string) (string, error) {
	fullURL := c.config.BaseURL + "/json/" + url.PathEscape(ipAddress)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", shared.WrapError("geoip", "Locate", shared.ErrTimeout, "geolocation request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", shared.NewDomainError("geoip", "Locate", shared.ErrExternalLookup,
			fmt.Sprintf("lookup returned status %d", resp.StatusCode))
	}

	var payload lookupResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if payload.Status != "success" {
		return "", shared.NewDomainError("geoip", "Locate", shared.ErrExternalLookup,
			fmt.Sprintf("lookup failed: %s", payload.Message))
	}

	parts := make([]string, 0, 3)
	for _, p := range []string{payload.City, payload.RegionName, payload.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "", shared.NewDomainError("geoip", "Locate", shared.ErrExternalLookup,
			"lookup returned no location fields")
	}

	return strings.Join(parts, ", "), nil
}

// allow records a request against the sliding one-minute window and
// reports whether it fits under the per-minute cap.
func (c *Client) allow() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-time.Minute)

	kept := c.window[:0]
	for _, t := range c.window {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	c.window = kept

	if len(c.window) >= c.config.RequestsPerMinute {
		return false
	}

	c.window = append(c.window, now)
	return true
}
