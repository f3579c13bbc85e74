// Package auditctx builds the request context attached to audit records:
// who edited a result, from which device, browser, and location. Capture
// never fails the owning mutation; anything it cannot determine degrades
// to the "Unknown" sentinel.
package auditctx

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
)

// UserAgentInfo is the parsed device triple for an audit record.
type UserAgentInfo struct {
	DeviceType string
	Browser    string
	OS         string
}

// UserAgentParser extracts device information from a raw User-Agent header.
// Implementations must not fail: unparseable input yields Unknown fields.
type UserAgentParser interface {
	Parse(rawUserAgent string) UserAgentInfo
}

// GeoLocator resolves an IP address to a human-readable location label
// ("City, Region, Country"). Implementations own their transport concerns
// (timeouts, rate limits, circuit breaking).
type GeoLocator interface {
	Locate(ctx context.Context, ipAddress string) (string, error)
}

// RawRequest is the caller-supplied request metadata, as read off the wire
// by the HTTP layer.
type RawRequest struct {
	IPAddress  string
	UserAgent  string
	DeviceName string // from the X-Device-Name header when present
}

// CaptureConfig tunes the capture pipeline.
type CaptureConfig struct {
	// LookupTimeout bounds the geolocation lookup. The mutation that owns
	// this capture must not wait longer than this on an external service.
	LookupTimeout time.Duration

	// CampusLocation is recorded for loopback and private addresses, where
	// a public geolocation lookup is meaningless.
	CampusLocation string
}

// DefaultCaptureConfig returns the default capture configuration.
func DefaultCaptureConfig() CaptureConfig {
	return CaptureConfig{
		LookupTimeout:  2 * time.Second,
		CampusLocation: "Local Machine (Campus Network)",
	}
}

// Capturer assembles audit.RequestContext values from raw request metadata.
type Capturer struct {
	uaParser UserAgentParser
	geo      GeoLocator
	logger   *slog.Logger
	config   CaptureConfig
}

// NewCapturer creates a capturer. Both dependencies are optional: a nil
// parser or locator simply leaves the corresponding fields Unknown.
func NewCapturer(uaParser UserAgentParser, geo GeoLocator, logger *slog.Logger, config CaptureConfig) *Capturer {
	if logger == nil {
		logger = slog.Default()
	}
	if config.LookupTimeout <= 0 {
		config.LookupTimeout = 2 * time.Second
	}
	return &Capturer{
		uaParser: uaParser,
		geo:      geo,
		logger:   logger.With("component", "auditctx"),
		config:   config,
	}
}

// Capture builds the request context for an audit record. It never returns
// an error: parse and lookup failures degrade field by field to Unknown.
func (c *Capturer) Capture(ctx context.Context, req RawRequest) audit.RequestContext {
	rc := audit.RequestContext{
		IPAddress:  req.IPAddress,
		DeviceName: req.DeviceName,
		Location:   c.locate(ctx, req.IPAddress),
	}

	if c.uaParser != nil && req.UserAgent != "" {
		info := c.uaParser.Parse(req.UserAgent)
		rc.Device = info.DeviceType
		rc.Browser = info.Browser
		rc.OS = info.OS
	}

	return rc.Normalize()
}

// locate resolves the location label for an IP, applying the campus
// default for local addresses and Unknown on any lookup failure.
func (c *Capturer) locate(ctx context.Context, ipAddress string) string {
	if isLocalAddress(ipAddress) {
		return c.config.CampusLocation
	}
	if c.geo == nil {
		return audit.Unknown
	}

	lookupCtx, cancel := context.WithTimeout(ctx, c.config.LookupTimeout)
	defer cancel()

	label, err := c.geo.Locate(lookupCtx, ipAddress)
	if err != nil {
		c.logger.Warn("geolocation lookup failed",
			"ip", ipAddress,
			"error", err,
		)
		return audit.Unknown
	}
	if label == "" {
		return audit.Unknown
	}
	return label
}

// isLocalAddress reports whether the IP is loopback, private, or otherwise
// not publicly routable.
func isLocalAddress(ipAddress string) bool {
	if ipAddress == "" || ipAddress == "localhost" {
		return true
	}
	ip := net.ParseIP(ipAddress)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsLinkLocalUnicast() || ip.IsUnspecified()
}
