// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Matric represents a student's matriculation number, the stable public
// identifier a student carries throughout their programme.
type Matric string

// Matric format: faculty/department/year/serial, e.g. "SCI/CSC/19/1234",
// or a plain alphanumeric code for older cohorts.
var matricRegex = regexp.MustCompile(`^[A-Z0-9]+(/[A-Z0-9]+)*$`)

// IsValid checks if the matric number format is valid.
func (m Matric) IsValid() bool {
	s := string(m)
	return len(s) >= 3 && len(s) <= 30 && matricRegex.MatchString(s)
}

// String returns the string representation.
func (m Matric) String() string {
	return string(m)
}

// IsEmpty checks if the matric number is empty.
func (m Matric) IsEmpty() bool {
	return m == ""
}

// NewMatric creates a new Matric with validation.
func NewMatric(value string) (Matric, error) {
	m := Matric(strings.ToUpper(strings.TrimSpace(value)))
	if !m.IsValid() {
		return "", NewDomainError("shared", "NewMatric", ErrInvalidID, "invalid matric number format")
	}
	return m, nil
}

// CourseCode represents a course identifier, e.g. "CSC301".
type CourseCode string

var courseCodeRegex = regexp.MustCompile(`^[A-Z]{2,4}[0-9]{3}[A-Z]?$`)

// IsValid checks if the course code format is valid.
func (c CourseCode) IsValid() bool {
	return courseCodeRegex.MatchString(string(c))
}

// String returns the string representation.
func (c CourseCode) String() string {
	return string(c)
}

// NewCourseCode creates a new CourseCode with validation.
func NewCourseCode(value string) (CourseCode, error) {
	c := CourseCode(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(value), " ", "")))
	if !c.IsValid() {
		return "", NewDomainError("shared", "NewCourseCode", ErrInvalidID, "invalid course code format")
	}
	return c, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Session Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Session represents an academic session, e.g. "2023/2024".
type Session string

var sessionRegex = regexp.MustCompile(`^(\d{4})/(\d{4})$`)

// IsValid checks that the session is two consecutive years.
func (s Session) IsValid() bool {
	m := sessionRegex.FindStringSubmatch(string(s))
	if m == nil {
		return false
	}
	var start, end int
	fmt.Sscanf(m[1], "%d", &start)
	fmt.Sscanf(m[2], "%d", &end)
	return end == start+1
}

// String returns the string representation.
func (s Session) String() string {
	return string(s)
}

// StartYear returns the first year of the session.
func (s Session) StartYear() int {
	m := sessionRegex.FindStringSubmatch(string(s))
	if m == nil {
		return 0
	}
	year := 0
	fmt.Sscanf(m[1], "%d", &year)
	return year
}

// Next returns the session that follows this one.
func (s Session) Next() Session {
	start := s.StartYear()
	if start == 0 {
		return ""
	}
	return Session(fmt.Sprintf("%d/%d", start+1, start+2))
}

// Before reports whether this session starts earlier than other.
func (s Session) Before(other Session) bool {
	return s.StartYear() < other.StartYear()
}

// NewSession creates a new Session with validation.
func NewSession(value string) (Session, error) {
	s := Session(strings.TrimSpace(value))
	if !s.IsValid() {
		return "", NewDomainError("shared", "NewSession", ErrInvalidFormat, "invalid session format, expected YYYY/YYYY")
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Semester Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Semester represents one half of an academic session.
type Semester int

const (
	FirstSemester  Semester = 1
	SecondSemester Semester = 2
)

// IsValid checks if the semester is first or second.
func (s Semester) IsValid() bool {
	return s == FirstSemester || s == SecondSemester
}

// Int returns the underlying int value.
func (s Semester) Int() int {
	return int(s)
}

// String returns a human-readable name.
func (s Semester) String() string {
	switch s {
	case FirstSemester:
		return "First Semester"
	case SecondSemester:
		return "Second Semester"
	default:
		return fmt.Sprintf("Semester(%d)", int(s))
	}
}

// NewSemester creates a new Semester with validation.
func NewSemester(value int) (Semester, error) {
	s := Semester(value)
	if !s.IsValid() {
		return 0, NewDomainError("shared", "NewSemester", ErrValueOutOfRange, "semester must be 1 or 2")
	}
	return s, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Level Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Level represents a programme level (100, 200, ... 700).
type Level int

const (
	MinLevel Level = 100
	MaxLevel Level = 700
)

// IsValid checks that the level is a multiple of 100 within range.
func (l Level) IsValid() bool {
	return l >= MinLevel && l <= MaxLevel && l%100 == 0
}

// Int returns the underlying int value.
func (l Level) Int() int {
	return int(l)
}

// String returns the string representation, e.g. "300".
func (l Level) String() string {
	return fmt.Sprintf("%d", int(l))
}

// NewLevel creates a new Level with validation.
func NewLevel(value int) (Level, error) {
	l := Level(value)
	if !l.IsValid() {
		return 0, NewDomainError("shared", "NewLevel", ErrValueOutOfRange, "level must be a multiple of 100 between 100 and 700")
	}
	return l, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// DegreeType Value Object
// ═══════════════════════════════════════════════════════════════════════════

// DegreeType describes the programme a student is enrolled in. Grading bands
// can be configured per degree type.
type DegreeType string

const (
	DegreeBSc     DegreeType = "BSC"
	DegreeMSc     DegreeType = "MSC"
	DegreePGD     DegreeType = "PGD"
	DegreePhD     DegreeType = "PHD"
	DegreeDiploma DegreeType = "DIPLOMA"
)

// IsValid checks if the degree type is known.
func (d DegreeType) IsValid() bool {
	switch d {
	case DegreeBSc, DegreeMSc, DegreePGD, DegreePhD, DegreeDiploma:
		return true
	}
	return false
}

// String returns the string representation.
func (d DegreeType) String() string {
	return string(d)
}

// NewDegreeType creates a new DegreeType with validation.
func NewDegreeType(value string) (DegreeType, error) {
	d := DegreeType(strings.ToUpper(strings.TrimSpace(value)))
	if !d.IsValid() {
		return "", NewDomainError("shared", "NewDegreeType", ErrInvalidInput, "unknown degree type")
	}
	return d, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Role and Actor Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Role represents a staff role in the results workflow.
type Role string

const (
	RoleLecturer     Role = "lecturer"
	RoleLevelAdviser Role = "level_adviser"
	RoleHOD          Role = "hod"
	RoleAdmin        Role = "admin"
)

// IsValid checks if the role is known.
func (r Role) IsValid() bool {
	switch r {
	case RoleLecturer, RoleLevelAdviser, RoleHOD, RoleAdmin:
		return true
	}
	return false
}

// String returns the string representation.
func (r Role) String() string {
	return string(r)
}

// Actor identifies the staff member performing an operation, together with
// the scope their role grants them.
type Actor struct {
	ID         string
	Name       string
	Role       Role
	Department string
	Level      Level // for level advisers: the level they oversee
}

// IsValid checks that the actor carries an identity and a known role.
func (a Actor) IsValid() bool {
	return a.ID != "" && a.Role.IsValid()
}

// IsLecturer reports whether the actor holds the lecturer role.
func (a Actor) IsLecturer() bool {
	return a.Role == RoleLecturer
}

// IsHOD reports whether the actor heads a department.
func (a Actor) IsHOD() bool {
	return a.Role == RoleHOD
}

// IsAdmin reports whether the actor is a system administrator.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// CanEnterScores reports whether the role may create or edit results at all.
// Per-course assignment is checked separately against the course roster.
func (a Actor) CanEnterScores() bool {
	switch a.Role {
	case RoleLecturer, RoleLevelAdviser, RoleHOD, RoleAdmin:
		return true
	}
	return false
}

// CanUnlockResults reports whether the actor may lift an approval lock.
// Only the head of department and administrators may unlock.
func (a Actor) CanUnlockResults() bool {
	return a.Role == RoleHOD || a.Role == RoleAdmin
}

// CanFinalApprove reports whether the actor may grant final approval.
func (a Actor) CanFinalApprove() bool {
	return a.Role == RoleHOD || a.Role == RoleAdmin
}

// OversightScope reports whether the actor's role grants department-wide
// oversight rather than per-course assignment.
func (a Actor) OversightScope() bool {
	return a.Role == RoleHOD || a.Role == RoleLevelAdviser || a.Role == RoleAdmin
}

// NewActor creates a new Actor with validation.
func NewActor(id, name string, role Role, department string) (Actor, error) {
	a := Actor{
		ID:         strings.TrimSpace(id),
		Name:       strings.TrimSpace(name),
		Role:       role,
		Department: strings.TrimSpace(department),
	}
	if a.ID == "" {
		return Actor{}, NewDomainError("shared", "NewActor", ErrEmptyValue, "actor ID cannot be empty")
	}
	if !a.Role.IsValid() {
		return Actor{}, NewDomainError("shared", "NewActor", ErrInvalidInput, "unknown actor role")
	}
	return a, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Pagination Value Object
// ═══════════════════════════════════════════════════════════════════════════

// Pagination represents pagination parameters.
type Pagination struct {
	Page     int
	PageSize int
}

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

// Offset returns the offset for database queries.
func (p Pagination) Offset() int {
	if p.Page <= 0 {
		return 0
	}
	return (p.Page - 1) * p.Limit()
}

// Limit returns the limit for database queries.
func (p Pagination) Limit() int {
	if p.PageSize <= 0 {
		return DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		return MaxPageSize
	}
	return p.PageSize
}

// NewPagination creates a new Pagination with defaults.
func NewPagination(page, pageSize int) Pagination {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Pagination{Page: page, PageSize: pageSize}
}

// DefaultPagination returns default pagination.
func DefaultPagination() Pagination {
	return NewPagination(1, DefaultPageSize)
}
