package query

import (
	"context"
	"time"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET ALTERATION HISTORY QUERY
// Read side of the audit log: who changed which result, when, from
// where. The log itself is append-only; this is the only way out.
// ══════════════════════════════════════════════════════════════════════════════

// GetAlterationHistoryQuery contains the query parameters. Exactly one
// of ResultID, Matric, or ActorID selects the scope.
type GetAlterationHistoryQuery struct {
	ResultID string
	Matric   string
	ActorID  string

	Page     int
	PageSize int
}

// Validate validates the query.
func (q *GetAlterationHistoryQuery) Validate() error {
	selectors := 0
	if q.ResultID != "" {
		selectors++
	}
	if q.Matric != "" {
		selectors++
	}
	if q.ActorID != "" {
		selectors++
	}
	if selectors != 1 {
		return shared.NewDomainError("query", "GetAlterationHistory", shared.ErrInvalidInput, "exactly one of result_id, matric, or actor_id is required")
	}
	if q.Matric != "" {
		if _, err := shared.NewMatric(q.Matric); err != nil {
			return err
		}
	}
	return nil
}

// SnapshotDTO is one side of a before/after pair.
type SnapshotDTO struct {
	CAScore    float64 `json:"ca_score"`
	ExamScore  float64 `json:"exam_score"`
	TotalScore float64 `json:"total_score"`
	Grade      string  `json:"grade"`
}

// AlterationDTO is one audit entry for the presentation layer.
type AlterationDTO struct {
	ID         string      `json:"id"`
	ResultID   string      `json:"result_id"`
	Matric     string      `json:"matric"`
	CourseCode string      `json:"course_code"`
	Session    string      `json:"session"`
	Type       string      `json:"type"`
	Before     SnapshotDTO `json:"before"`
	After      SnapshotDTO `json:"after"`
	ActorName  string      `json:"actor_name"`
	ActorRole  string      `json:"actor_role"`
	IPAddress  string      `json:"ip_address"`
	Device     string      `json:"device"`
	Browser    string      `json:"browser"`
	OS         string      `json:"os"`
	Location   string      `json:"location"`
	DeviceName string      `json:"device_name"`
	CreatedAt  time.Time   `json:"created_at"`
}

// GetAlterationHistoryHandler handles the query.
type GetAlterationHistoryHandler struct {
	auditRepo audit.Repository
}

// NewGetAlterationHistoryHandler creates a new handler.
func NewGetAlterationHistoryHandler(auditRepo audit.Repository) *GetAlterationHistoryHandler {
	return &GetAlterationHistoryHandler{auditRepo: auditRepo}
}

// Handle executes the query.
func (h *GetAlterationHistoryHandler) Handle(ctx context.Context, q GetAlterationHistoryQuery) ([]AlterationDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	p := shared.NewPagination(q.Page, q.PageSize)

	var (
		records []*audit.AlterationRecord
		err     error
	)
	switch {
	case q.ResultID != "":
		records, err = h.auditRepo.ListByResult(ctx, q.ResultID)
	case q.Matric != "":
		records, err = h.auditRepo.ListByMatric(ctx, shared.Matric(q.Matric), p)
	default:
		records, err = h.auditRepo.ListByActor(ctx, q.ActorID, p)
	}
	if err != nil {
		return nil, err
	}

	out := make([]AlterationDTO, 0, len(records))
	for _, r := range records {
		out = append(out, AlterationDTO{
			ID:         r.ID,
			ResultID:   r.ResultID,
			Matric:     r.Matric.String(),
			CourseCode: r.CourseCode.String(),
			Session:    r.Session.String(),
			Type:       string(r.Type),
			Before: SnapshotDTO{
				CAScore:    r.Before.CAScore,
				ExamScore:  r.Before.ExamScore,
				TotalScore: r.Before.TotalScore,
				Grade:      r.Before.Grade,
			},
			After: SnapshotDTO{
				CAScore:    r.After.CAScore,
				ExamScore:  r.After.ExamScore,
				TotalScore: r.After.TotalScore,
				Grade:      r.After.Grade,
			},
			ActorName:  r.ActorName,
			ActorRole:  r.ActorRole.String(),
			IPAddress:  r.Context.IPAddress,
			Device:     r.Context.Device,
			Browser:    r.Context.Browser,
			OS:         r.Context.OS,
			Location:   r.Context.Location,
			DeviceName: r.Context.DeviceName,
			CreatedAt:  r.CreatedAt,
		})
	}
	return out, nil
}
