// Package audit records every alteration of a result as an immutable,
// append-only log entry with before/after snapshots and request context.
package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// AlterationType classifies what happened to the result.
type AlterationType string

const (
	AlterationCreate AlterationType = "CREATE"
	AlterationUpdate AlterationType = "UPDATE"
	AlterationDelete AlterationType = "DELETE"
)

// IsValid checks if the alteration type is known.
func (a AlterationType) IsValid() bool {
	switch a {
	case AlterationCreate, AlterationUpdate, AlterationDelete:
		return true
	}
	return false
}

// Unknown is the sentinel for any request-context field that could not
// be captured. Lookup failures degrade to this value instead of failing
// the result mutation they are attached to.
const Unknown = "Unknown"

// RequestContext is the best-effort metadata about where an alteration
// came from. Every field may legitimately hold the Unknown sentinel.
type RequestContext struct {
	IPAddress  string
	Device     string
	Browser    string
	OS         string
	Location   string
	DeviceName string
}

// UnknownContext returns a context with every field set to the sentinel.
func UnknownContext() RequestContext {
	return RequestContext{
		IPAddress:  Unknown,
		Device:     Unknown,
		Browser:    Unknown,
		OS:         Unknown,
		Location:   Unknown,
		DeviceName: Unknown,
	}
}

// Normalize fills any empty field with the Unknown sentinel so records
// never store blanks.
func (rc RequestContext) Normalize() RequestContext {
	fill := func(s string) string {
		if s == "" {
			return Unknown
		}
		return s
	}
	return RequestContext{
		IPAddress:  fill(rc.IPAddress),
		Device:     fill(rc.Device),
		Browser:    fill(rc.Browser),
		OS:         fill(rc.OS),
		Location:   fill(rc.Location),
		DeviceName: fill(rc.DeviceName),
	}
}

// AlterationRecord is one immutable audit log entry. Once written it is
// never edited or removed.
type AlterationRecord struct {
	ID         string
	ResultID   string
	Matric     shared.Matric
	CourseCode shared.CourseCode
	Session    shared.Session

	Type   AlterationType
	Before result.Snapshot // zero value for CREATE
	After  result.Snapshot // zero value for DELETE

	ActorID   string
	ActorName string
	ActorRole shared.Role

	Context RequestContext

	CreatedAt time.Time
}

// NewRecord builds an alteration record from snapshots taken around the
// mutation. The request context is normalized so no field is left blank.
func NewRecord(alterationType AlterationType, res *result.Result, before, after result.Snapshot, actor shared.Actor, rc RequestContext) *AlterationRecord {
	return &AlterationRecord{
		ID:         uuid.New().String(),
		ResultID:   res.ID,
		Matric:     res.Matric,
		CourseCode: res.CourseCode,
		Session:    res.Session,
		Type:       alterationType,
		Before:     before,
		After:      after,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		ActorRole:  actor.Role,
		Context:    rc.Normalize(),
		CreatedAt:  time.Now(),
	}
}

// Changed reports whether the before and after snapshots differ. A
// CREATE or DELETE always counts as a change.
func (r *AlterationRecord) Changed() bool {
	if r.Type != AlterationUpdate {
		return true
	}
	return r.Before != r.After
}
