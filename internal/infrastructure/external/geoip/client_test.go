package geoip

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

func newTestClient(baseURL string) *Client {
	config := DefaultClientConfig()
	config.BaseURL = baseURL
	return NewClient(config)
}

func TestLocate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/102.89.33.14", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","city":"Lagos","regionName":"Lagos","country":"Nigeria","lat":6.45,"lon":3.39}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	label, err := client.Locate(context.Background(), "102.89.33.14")
	require.NoError(t, err)
	assert.Equal(t, "Lagos, Lagos, Nigeria", label)
}

func TestLocate_SkipsEmptyFields(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","city":"","regionName":"FCT","country":"Nigeria"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	label, err := client.Locate(context.Background(), "102.89.33.14")
	require.NoError(t, err)
	assert.Equal(t, "FCT, Nigeria", label)
}

func TestLocate_FailedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"fail","message":"reserved range"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	_, err := client.Locate(context.Background(), "10.0.0.1")
	assert.ErrorIs(t, err, shared.ErrExternalLookup)
}

func TestLocate_EmptyIP(t *testing.T) {
	client := newTestClient("http://ip-api.com")

	_, err := client.Locate(context.Background(), "")
	assert.Error(t, err)
}

func TestLocate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"status":"success","city":"Lagos"}`))
	}))
	defer server.Close()

	config := DefaultClientConfig()
	config.BaseURL = server.URL
	config.Timeout = 50 * time.Millisecond
	client := NewClient(config)

	_, err := client.Locate(context.Background(), "102.89.33.14")
	assert.ErrorIs(t, err, shared.ErrTimeout)
}

func TestLocate_RateLimitWindow(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"success","city":"Lagos","country":"Nigeria"}`))
	}))
	defer server.Close()

	config := DefaultClientConfig()
	config.BaseURL = server.URL
	config.RequestsPerMinute = 2
	client := NewClient(config)

	_, err := client.Locate(context.Background(), "102.89.33.14")
	require.NoError(t, err)
	_, err = client.Locate(context.Background(), "102.89.33.14")
	require.NoError(t, err)

	_, err = client.Locate(context.Background(), "102.89.33.14")
	assert.ErrorIs(t, err, shared.ErrRateLimited)
}
