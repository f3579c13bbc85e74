package uaparser

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
)

func TestParse_Desktop(t *testing.T) {
	parser := NewParser()

	info := parser.Parse("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	assert.Equal(t, "Desktop", info.DeviceType)
	assert.Contains(t, info.Browser, "Chrome")
	assert.Contains(t, info.OS, "Windows")
}

func TestParse_AndroidPhone(t *testing.T) {
	parser := NewParser()

	info := parser.Parse("Mozilla/5.0 (Linux; Android 13; Pixel 7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Mobile Safari/537.36")

	assert.Contains(t, info.DeviceType, "Mobile")
	assert.Contains(t, info.Browser, "Chrome")
}

func TestParse_IPad(t *testing.T) {
	parser := NewParser()

	info := parser.Parse("Mozilla/5.0 (iPad; CPU OS 16_6 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/16.6 Mobile/15E148 Safari/604.1")

	assert.Contains(t, info.DeviceType, "Tablet")
}

func TestParse_Bot(t *testing.T) {
	parser := NewParser()

	info := parser.Parse("Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")

	assert.Equal(t, "Bot", info.DeviceType)
}

func TestParse_Empty(t *testing.T) {
	parser := NewParser()

	info := parser.Parse("")

	assert.Equal(t, audit.Unknown, info.DeviceType)
	assert.Equal(t, audit.Unknown, info.Browser)
	assert.Equal(t, audit.Unknown, info.OS)
}
