package auditctx

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
)

type stubParser struct {
	info UserAgentInfo
}

func (s stubParser) Parse(string) UserAgentInfo { return s.info }

type stubLocator struct {
	label string
	err   error
	calls int
}

func (s *stubLocator) Locate(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.label, s.err
}

func TestCapture_FullContext(t *testing.T) {
	parser := stubParser{info: UserAgentInfo{DeviceType: "Desktop", Browser: "Firefox 128.0", OS: "Windows 10"}}
	locator := &stubLocator{label: "Lagos, Lagos State, Nigeria"}

	c := NewCapturer(parser, locator, nil, DefaultCaptureConfig())
	rc := c.Capture(context.Background(), RawRequest{
		IPAddress:  "102.89.23.14",
		UserAgent:  "Mozilla/5.0 ...",
		DeviceName: "LAB-PC-07",
	})

	assert.Equal(t, "102.89.23.14", rc.IPAddress)
	assert.Equal(t, "Desktop", rc.Device)
	assert.Equal(t, "Firefox 128.0", rc.Browser)
	assert.Equal(t, "Windows 10", rc.OS)
	assert.Equal(t, "Lagos, Lagos State, Nigeria", rc.Location)
	assert.Equal(t, "LAB-PC-07", rc.DeviceName)
}

func TestCapture_LoopbackUsesCampusLocation(t *testing.T) {
	locator := &stubLocator{label: "should not be called"}
	c := NewCapturer(nil, locator, nil, DefaultCaptureConfig())

	for _, ip := range []string{"127.0.0.1", "::1", "localhost", "192.168.1.50", ""} {
		rc := c.Capture(context.Background(), RawRequest{IPAddress: ip})
		assert.Equal(t, "Local Machine (Campus Network)", rc.Location, "ip %q", ip)
	}
	assert.Zero(t, locator.calls)
}

func TestCapture_DegradesToUnknown(t *testing.T) {
	locator := &stubLocator{err: errors.New("connection refused")}
	c := NewCapturer(nil, locator, nil, DefaultCaptureConfig())

	rc := c.Capture(context.Background(), RawRequest{IPAddress: "102.89.23.14"})

	assert.Equal(t, audit.Unknown, rc.Location)
	assert.Equal(t, audit.Unknown, rc.Device)
	assert.Equal(t, audit.Unknown, rc.Browser)
	assert.Equal(t, audit.Unknown, rc.OS)
	assert.Equal(t, audit.Unknown, rc.DeviceName)
}
