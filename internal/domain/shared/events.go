// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Result events
	EventResultCreated EventType = "result.created"
	EventResultUpdated EventType = "result.updated"
	EventResultDeleted EventType = "result.deleted"

	// Approval events
	EventCourseLocked        EventType = "course.locked"
	EventCourseUnlocked      EventType = "course.unlocked"
	EventCourseFinalApproved EventType = "course.final_approved"

	// Carryover events
	EventCarryoverOpened   EventType = "carryover.opened"
	EventCarryoverCleared  EventType = "carryover.cleared"
	EventCarryoverReopened EventType = "carryover.reopened"

	// System events
	EventSessionScanCompleted EventType = "system.session_scan_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Result Events
// ═══════════════════════════════════════════════════════════════════════════

// ResultChangedEvent is emitted when a result is created or updated.
type ResultChangedEvent struct {
	BaseEvent
	ResultID   string  `json:"result_id"`
	Matric     string  `json:"matric"`
	CourseCode string  `json:"course_code"`
	Session    string  `json:"session"`
	Total      float64 `json:"total"`
	Grade      string  `json:"grade"`
	Point      float64 `json:"point"`
	Created    bool    `json:"created"`
	ActorID    string  `json:"actor_id"`
}

// Payload implements Event interface.
func (e ResultChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"result_id":   e.ResultID,
		"matric":      e.Matric,
		"course_code": e.CourseCode,
		"session":     e.Session,
		"total":       e.Total,
		"grade":       e.Grade,
		"point":       e.Point,
		"created":     e.Created,
		"actor_id":    e.ActorID,
	}
}

// NewResultChangedEvent creates a new ResultChangedEvent. The created flag
// distinguishes a first entry from an edit of an existing score.
func NewResultChangedEvent(resultID, matric, courseCode, session string, total, point float64, grade string, created bool, actorID string) ResultChangedEvent {
	eventType := EventResultUpdated
	if created {
		eventType = EventResultCreated
	}
	return ResultChangedEvent{
		BaseEvent:  NewBaseEvent(eventType, resultID),
		ResultID:   resultID,
		Matric:     matric,
		CourseCode: courseCode,
		Session:    session,
		Total:      total,
		Grade:      grade,
		Point:      point,
		Created:    created,
		ActorID:    actorID,
	}
}

// ResultDeletedEvent is emitted when an unlocked result is removed.
type ResultDeletedEvent struct {
	BaseEvent
	ResultID   string `json:"result_id"`
	Matric     string `json:"matric"`
	CourseCode string `json:"course_code"`
	Session    string `json:"session"`
	ActorID    string `json:"actor_id"`
}

// Payload implements Event interface.
func (e ResultDeletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"result_id":   e.ResultID,
		"matric":      e.Matric,
		"course_code": e.CourseCode,
		"session":     e.Session,
		"actor_id":    e.ActorID,
	}
}

// NewResultDeletedEvent creates a new ResultDeletedEvent.
func NewResultDeletedEvent(resultID, matric, courseCode, session, actorID string) ResultDeletedEvent {
	return ResultDeletedEvent{
		BaseEvent:  NewBaseEvent(EventResultDeleted, resultID),
		ResultID:   resultID,
		Matric:     matric,
		CourseCode: courseCode,
		Session:    session,
		ActorID:    actorID,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Approval Events
// ═══════════════════════════════════════════════════════════════════════════

// CourseLockStateEvent is emitted when a course's results are locked,
// unlocked, or final-approved. The aggregate ID is the course code.
type CourseLockStateEvent struct {
	BaseEvent
	CourseCode   string `json:"course_code"`
	Session      string `json:"session"`
	ResultsMoved int    `json:"results_moved"` // results whose lock state changed
	TotalResults int    `json:"total_results"`
	ActorID      string `json:"actor_id"`
	ActorRole    string `json:"actor_role"`
}

// Payload implements Event interface.
func (e CourseLockStateEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"course_code":   e.CourseCode,
		"session":       e.Session,
		"results_moved": e.ResultsMoved,
		"total_results": e.TotalResults,
		"actor_id":      e.ActorID,
		"actor_role":    e.ActorRole,
	}
}

// NewCourseLockStateEvent creates a new CourseLockStateEvent.
func NewCourseLockStateEvent(eventType EventType, courseCode, session string, moved, total int, actorID, actorRole string) CourseLockStateEvent {
	return CourseLockStateEvent{
		BaseEvent:    NewBaseEvent(eventType, courseCode),
		CourseCode:   courseCode,
		Session:      session,
		ResultsMoved: moved,
		TotalResults: total,
		ActorID:      actorID,
		ActorRole:    actorRole,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Carryover Events
// ═══════════════════════════════════════════════════════════════════════════

// CarryoverTransitionEvent is emitted when a carryover opens, clears, or
// reopens. The aggregate ID is the carryover record ID.
type CarryoverTransitionEvent struct {
	BaseEvent
	CarryoverID        string `json:"carryover_id"`
	Matric             string `json:"matric"`
	CourseCode         string `json:"course_code"`
	OriginatingSession string `json:"originating_session"`
	ClearedSession     string `json:"cleared_session,omitempty"`
}

// Payload implements Event interface.
func (e CarryoverTransitionEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"carryover_id":        e.CarryoverID,
		"matric":              e.Matric,
		"course_code":         e.CourseCode,
		"originating_session": e.OriginatingSession,
		"cleared_session":     e.ClearedSession,
	}
}

// NewCarryoverTransitionEvent creates a new CarryoverTransitionEvent.
func NewCarryoverTransitionEvent(eventType EventType, carryoverID, matric, courseCode, originatingSession, clearedSession string) CarryoverTransitionEvent {
	return CarryoverTransitionEvent{
		BaseEvent:          NewBaseEvent(eventType, carryoverID),
		CarryoverID:        carryoverID,
		Matric:             matric,
		CourseCode:         courseCode,
		OriginatingSession: originatingSession,
		ClearedSession:     clearedSession,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// System Events
// ═══════════════════════════════════════════════════════════════════════════

// SessionScanCompletedEvent is emitted after a session sweep that opens
// carryovers for every failed result found in the session.
type SessionScanCompletedEvent struct {
	BaseEvent
	Session          string `json:"session"`
	ResultsScanned   int    `json:"results_scanned"`
	CarryoversOpened int    `json:"carryovers_opened"`
}

// Payload implements Event interface.
func (e SessionScanCompletedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"session":           e.Session,
		"results_scanned":   e.ResultsScanned,
		"carryovers_opened": e.CarryoversOpened,
	}
}

// NewSessionScanCompletedEvent creates a new SessionScanCompletedEvent.
func NewSessionScanCompletedEvent(session string, scanned, opened int) SessionScanCompletedEvent {
	return SessionScanCompletedEvent{
		BaseEvent:        NewBaseEvent(EventSessionScanCompleted, session),
		Session:          session,
		ResultsScanned:   scanned,
		CarryoversOpened: opened,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
