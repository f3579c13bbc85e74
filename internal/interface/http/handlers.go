// Package http implements the REST API for the Academic Results Hub.
package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/resulthub/academic-results-hub/internal/application/auditctx"
	"github.com/resulthub/academic-results-hub/internal/application/command"
	"github.com/resulthub/academic-results-hub/internal/application/query"
	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot serves the root endpoint with basic API information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	info := map[string]interface{}{
		"name":        "Academic Results Hub API",
		"version":     "v1",
		"description": "Results management core: score entry, approval workflow, carryovers, transcripts, audit trail",
		"endpoints": map[string]string{
			"health":      "/health",
			"results":     "/api/v1/results",
			"carryovers":  "/api/v1/carryovers",
			"transcripts": "/api/v1/transcripts",
			"alterations": "/api/v1/alterations",
		},
	}

	writeJSON(w, http.StatusOK, info)
}

// handleHealth handles the health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Healthy {
			writeJSON(w, http.StatusServiceUnavailable, status)
			return
		}
		writeJSON(w, http.StatusOK, status)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady handles the readiness probe.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthChecker != nil {
		status := s.deps.HealthChecker.Check(r.Context())
		if !status.Ready {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"ready":   false,
				"message": status.Message,
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]bool{"ready": true})
}

// handleLive handles the liveness probe.
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alive":  true,
		"uptime": s.Uptime().Round(1e9).String(),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACTOR & AUDIT CONTEXT EXTRACTION
// ══════════════════════════════════════════════════════════════════════════════

// actorFromRequest builds the acting staff member from gateway headers.
// The portal gateway authenticates staff and forwards their identity.
func actorFromRequest(r *http.Request) (shared.Actor, error) {
	actor, err := shared.NewActor(
		r.Header.Get("X-Actor-ID"),
		r.Header.Get("X-Actor-Name"),
		shared.Role(strings.ToLower(r.Header.Get("X-Actor-Role"))),
		r.Header.Get("X-Actor-Department"),
	)
	if err != nil {
		return shared.Actor{}, err
	}
	if raw := r.Header.Get("X-Actor-Level"); raw != "" {
		if level, err := strconv.Atoi(raw); err == nil {
			actor.Level = shared.Level(level)
		}
	}
	return actor, nil
}

// requestContext assembles the best-effort audit metadata for a mutation.
func (s *Server) requestContext(r *http.Request) audit.RequestContext {
	if s.deps.Capturer == nil {
		return audit.UnknownContext()
	}
	return s.deps.Capturer.Capture(r.Context(), auditctx.RawRequest{
		IPAddress:  getClientIP(r),
		UserAgent:  r.UserAgent(),
		DeviceName: r.Header.Get("X-Device-Name"),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// SCORE ENTRY HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type upsertResultRequest struct {
	Matric       string  `json:"matric"`
	CourseCode   string  `json:"course_code"`
	Session      string  `json:"session"`
	CAScore      float64 `json:"ca_score"`
	ExamScore    float64 `json:"exam_score"`
	StudentLevel int     `json:"student_level"`
}

type resultDTO struct {
	ID          string  `json:"id"`
	Matric      string  `json:"matric"`
	CourseCode  string  `json:"course_code"`
	Session     string  `json:"session"`
	Semester    int     `json:"semester"`
	CAScore     float64 `json:"ca_score"`
	ExamScore   float64 `json:"exam_score"`
	TotalScore  float64 `json:"total_score"`
	Grade       string  `json:"grade"`
	GradePoint  float64 `json:"grade_point"`
	IsCarryover bool    `json:"is_carryover"`
	IsLocked    bool    `json:"is_locked"`
}

func toResultDTO(res *result.Result) resultDTO {
	return resultDTO{
		ID:          res.ID,
		Matric:      res.Matric.String(),
		CourseCode:  res.CourseCode.String(),
		Session:     res.Session.String(),
		Semester:    res.Semester.Int(),
		CAScore:     res.CAScore,
		ExamScore:   res.ExamScore,
		TotalScore:  res.TotalScore,
		Grade:       res.Grade.String(),
		GradePoint:  res.GradePoint.Float64(),
		IsCarryover: res.IsCarryover,
		IsLocked:    res.IsLocked,
	}
}

// handleUpsertResult handles POST /api/v1/results.
func (s *Server) handleUpsertResult(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req upsertResultRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	out, err := s.deps.UpsertResultHandler.Handle(r.Context(), command.UpsertResultCommand{
		Matric:        req.Matric,
		CourseCode:    req.CourseCode,
		Session:       req.Session,
		CAScore:       req.CAScore,
		ExamScore:     req.ExamScore,
		StudentLevel:  req.StudentLevel,
		Actor:         actor,
		Context:       s.requestContext(r),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusOK
	if out.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]interface{}{
		"result":  toResultDTO(out.Result),
		"created": out.Created,
	})
}

type submitBatchRequest struct {
	CourseCode string `json:"course_code"`
	Session    string `json:"session"`
	Rows       []struct {
		Matric       string  `json:"matric"`
		CAScore      float64 `json:"ca_score"`
		ExamScore    float64 `json:"exam_score"`
		StudentLevel int     `json:"student_level"`
	} `json:"rows"`
}

// handleSubmitResultBatch handles POST /api/v1/results/batch.
func (s *Server) handleSubmitResultBatch(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req submitBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	rows := make([]command.ResultRow, 0, len(req.Rows))
	for _, row := range req.Rows {
		rows = append(rows, command.ResultRow{
			Matric:       row.Matric,
			CAScore:      row.CAScore,
			ExamScore:    row.ExamScore,
			StudentLevel: row.StudentLevel,
		})
	}

	out, err := s.deps.SubmitResultBatchHandler.Handle(r.Context(), command.SubmitResultBatchCommand{
		CourseCode:    req.CourseCode,
		Session:       req.Session,
		Rows:          rows,
		Actor:         actor,
		Context:       s.requestContext(r),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	rowErrors := make([]map[string]interface{}, 0, len(out.RowErrors))
	for _, re := range out.RowErrors {
		rowErrors = append(rowErrors, map[string]interface{}{
			"index":  re.Index,
			"matric": re.Matric,
			"error":  re.Err.Error(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"total_rows": out.TotalRows,
		"created":    out.CreatedCount,
		"updated":    out.UpdatedCount,
		"row_errors": rowErrors,
	})
}

// handleDeleteResult handles DELETE /api/v1/results/{id}.
func (s *Server) handleDeleteResult(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	_, err = s.deps.DeleteResultHandler.Handle(r.Context(), command.DeleteResultCommand{
		ResultID:      r.PathValue("id"),
		Actor:         actor,
		Context:       s.requestContext(r),
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// ══════════════════════════════════════════════════════════════════════════════
// APPROVAL WORKFLOW HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type approvalRequest struct {
	Session string `json:"session"`
}

// handleLockCourseResults handles POST /api/v1/courses/{code}/lock.
func (s *Server) handleLockCourseResults(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	out, err := s.deps.LockCourseResultsHandler.Handle(r.Context(), command.LockCourseResultsCommand{
		CourseCode:    r.PathValue("code"),
		Session:       req.Session,
		Actor:         actor,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"locked": out.Locked,
		"total":  out.Total,
	})
}

// handleUnlockCourseResults handles POST /api/v1/courses/{code}/unlock.
func (s *Server) handleUnlockCourseResults(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	out, err := s.deps.UnlockCourseResultsHandler.Handle(r.Context(), command.UnlockCourseResultsCommand{
		CourseCode:    r.PathValue("code"),
		Session:       req.Session,
		Actor:         actor,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"unlocked": out.Unlocked,
		"total":    out.Total,
	})
}

// handleFinalApproveCourse handles POST /api/v1/courses/{code}/final-approval.
func (s *Server) handleFinalApproveCourse(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	out, err := s.deps.FinalApproveCourseHandler.Handle(r.Context(), command.FinalApproveCourseCommand{
		CourseCode:    r.PathValue("code"),
		Session:       req.Session,
		Actor:         actor,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"approved": true,
		"locked":   out.Locked,
		"total":    out.Total,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// CARRYOVER HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetOutstandingCarryovers handles GET /api/v1/carryovers?matric=...
func (s *Server) handleGetOutstandingCarryovers(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.OutstandingCarryoversHandler.Handle(r.Context(), query.GetOutstandingCarryoversQuery{
		Matric:         getQueryParam(r, "matric", ""),
		IncludeCleared: getQueryParamBool(r, "include_cleared"),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// handleCheckCarryoverCoverage handles GET /api/v1/carryovers/coverage.
// Registered courses come as a comma-separated "courses" parameter.
func (s *Server) handleCheckCarryoverCoverage(w http.ResponseWriter, r *http.Request) {
	var registered []string
	if raw := getQueryParam(r, "courses", ""); raw != "" {
		for _, code := range strings.Split(raw, ",") {
			if code = strings.TrimSpace(code); code != "" {
				registered = append(registered, code)
			}
		}
	}

	out, err := s.deps.CarryoverCoverageHandler.Handle(r.Context(), query.CheckCarryoverCoverageQuery{
		Matric:            getQueryParam(r, "matric", ""),
		Session:           getQueryParam(r, "session", ""),
		RegisteredCourses: registered,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

type scanSessionRequest struct {
	Session string `json:"session"`
}

// handleScanSession handles POST /api/v1/carryovers/scan.
func (s *Server) handleScanSession(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	var req scanSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON")
		return
	}

	out, err := s.deps.ScanSessionHandler.Handle(r.Context(), command.ScanSessionCommand{
		Session:       req.Session,
		Actor:         actor,
		CorrelationID: getRequestID(r.Context()),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"results_scanned":   out.ResultsScanned,
		"carryovers_opened": out.CarryoversOpened,
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSCRIPT & AUDIT TRAIL HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleGetTranscriptSummary handles GET /api/v1/transcripts?matric=...
func (s *Server) handleGetTranscriptSummary(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.TranscriptSummaryHandler.Handle(r.Context(), query.GetTranscriptSummaryQuery{
		Matric:  getQueryParam(r, "matric", ""),
		Session: getQueryParam(r, "session", ""),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// handleGetAlterationHistory handles GET /api/v1/alterations with exactly
// one of result_id, matric, or actor_id.
func (s *Server) handleGetAlterationHistory(w http.ResponseWriter, r *http.Request) {
	out, err := s.deps.AlterationHistoryHandler.Handle(r.Context(), query.GetAlterationHistoryQuery{
		ResultID: getQueryParam(r, "result_id", ""),
		Matric:   getQueryParam(r, "matric", ""),
		ActorID:  getQueryParam(r, "actor_id", ""),
		Page:     getQueryParamInt(r, "page", 1),
		PageSize: getQueryParamInt(r, "page_size", 0),
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"alterations": out,
		"count":       len(out),
	})
}
