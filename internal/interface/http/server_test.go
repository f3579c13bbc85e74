package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resulthub/academic-results-hub/internal/application/query"
	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
	"github.com/resulthub/academic-results-hub/internal/interface/http/handlers"
)

// ─────────────────────────────────────────────────────────────────────────
// Stubs
// ─────────────────────────────────────────────────────────────────────────

type stubCarryoverRepo struct {
	carryover.Repository
	outstanding []*carryover.Carryover
}

func (s *stubCarryoverRepo) ListOutstanding(ctx context.Context, matric shared.Matric) ([]*carryover.Carryover, error) {
	return s.outstanding, nil
}

type stubAuditRepo struct {
	audit.Repository
}

func (s *stubAuditRepo) ListByResult(ctx context.Context, resultID string) ([]*audit.AlterationRecord, error) {
	return nil, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	co := carryover.Open("CSC/2020/041", "MTH201", "2022/2023", 200)

	config := DefaultConfig()
	config.RateLimitPerMinute = 0 // not under test

	return NewServer(config, Dependencies{
		OutstandingCarryoversHandler: query.NewGetOutstandingCarryoversHandler(&stubCarryoverRepo{
			outstanding: []*carryover.Carryover{co},
		}),
		AlterationHistoryHandler: query.NewGetAlterationHistoryHandler(&stubAuditRepo{}),
		HealthChecker:            handlers.NewNoopHealthChecker(),
	})
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

// ─────────────────────────────────────────────────────────────────────────
// Tests
// ─────────────────────────────────────────────────────────────────────────

func TestServer_Health(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestServer_GetOutstandingCarryovers(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/carryovers?matric=CSC/2020/041", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data query.GetOutstandingCarryoversResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "CSC/2020/041", body.Data.Matric)
	assert.Equal(t, 1, body.Data.OpenCount)
	require.Len(t, body.Data.Carryovers, 1)
	assert.Equal(t, "MTH201", body.Data.Carryovers[0].CourseCode)
}

func TestServer_GetOutstandingCarryovers_BadMatric(t *testing.T) {
	s := newTestServer(t)

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/carryovers?matric=not+a+matric", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "validation_error")
}

func TestServer_AlterationHistory_SelectorRequired(t *testing.T) {
	s := newTestServer(t)

	// no selector at all
	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/alterations", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// two selectors
	rec = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/alterations?result_id=r1&actor_id=a1", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_MutationRequiresActorIdentity(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/results",
		strings.NewReader(`{"matric":"CSC/2020/041","course_code":"CSC301","session":"2023/2024","ca_score":20,"exam_score":50}`))
	req.Header.Set("Content-Type", "application/json")
	// no X-Actor-* headers

	rec := doRequest(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_UnknownActorRoleRejected(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/results",
		strings.NewReader(`{"matric":"CSC/2020/041","course_code":"CSC301","session":"2023/2024"}`))
	req.Header.Set("X-Actor-ID", "staff-1")
	req.Header.Set("X-Actor-Role", "registrar")

	rec := doRequest(s, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_APIKeyGate(t *testing.T) {
	config := DefaultConfig()
	config.RateLimitPerMinute = 0
	config.APIKeys = []string{"sekret"}

	s := NewServer(config, Dependencies{
		HealthChecker: handlers.NewNoopHealthChecker(),
	})

	rec := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-API-Key", "sekret")
	rec = doRequest(s, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
