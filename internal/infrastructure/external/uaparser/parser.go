// Package uaparser turns raw User-Agent headers into the device triple
// recorded on alteration audit entries.
package uaparser

import (
	"strings"

	"github.com/mssola/useragent"

	"github.com/resulthub/academic-results-hub/internal/application/auditctx"
	"github.com/resulthub/academic-results-hub/internal/domain/audit"
)

// Parser implements auditctx.UserAgentParser on top of mssola/useragent.
// Parsing never fails: anything unrecognisable comes back as Unknown.
type Parser struct{}

// NewParser creates a new user agent parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse extracts the device type, browser and operating system from a raw
// User-Agent header.
func (p *Parser) Parse(rawUserAgent string) auditctx.UserAgentInfo {
	info := auditctx.UserAgentInfo{
		DeviceType: audit.Unknown,
		Browser:    audit.Unknown,
		OS:         audit.Unknown,
	}
	if strings.TrimSpace(rawUserAgent) == "" {
		return info
	}

	ua := useragent.New(rawUserAgent)

	info.DeviceType = deviceType(ua, rawUserAgent)

	if name, version := ua.Browser(); name != "" {
		info.Browser = name
		if version != "" {
			info.Browser = name + " " + version
		}
	}

	if os := ua.OSInfo(); os.FullName != "" {
		info.OS = os.FullName
	} else if os := ua.OS(); os != "" {
		info.OS = os
	}

	return info
}

func deviceType(ua *useragent.UserAgent, raw string) string {
	switch {
	case ua.Bot():
		return "Bot"
	case isTablet(ua, raw):
		if model := ua.Model(); model != "" {
			return "Tablet (" + model + ")"
		}
		return "Tablet"
	case ua.Mobile():
		if model := ua.Model(); model != "" {
			return "Mobile (" + model + ")"
		}
		return "Mobile"
	case ua.Platform() != "" || ua.OS() != "":
		return "Desktop"
	default:
		return audit.Unknown
	}
}

// isTablet applies the usual heuristics: iPads identify via platform,
// Android tablets omit the "Mobile" token.
func isTablet(ua *useragent.UserAgent, raw string) bool {
	platform := ua.Platform()
	if strings.Contains(platform, "iPad") {
		return true
	}
	lower := strings.ToLower(raw)
	if strings.Contains(lower, "tablet") {
		return true
	}
	if strings.Contains(lower, "android") && !strings.Contains(lower, "mobile") {
		return true
	}
	return false
}
