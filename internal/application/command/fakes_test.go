package command

import (
	"context"
	"sync"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/course"
	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// memResultRepo is an in-memory result.Repository.
type memResultRepo struct {
	results map[string]*result.Result
}

func newMemResultRepo() *memResultRepo {
	return &memResultRepo{results: make(map[string]*result.Result)}
}

func (m *memResultRepo) Create(_ context.Context, res *result.Result) error {
	for _, existing := range m.results {
		if existing.Matric == res.Matric && existing.CourseCode == res.CourseCode && existing.Session == res.Session {
			return shared.ErrAlreadyExists
		}
	}
	m.results[res.ID] = res
	return nil
}

func (m *memResultRepo) Update(_ context.Context, res *result.Result) error {
	if _, ok := m.results[res.ID]; !ok {
		return shared.ErrResultNotFound
	}
	m.results[res.ID] = res
	return nil
}

func (m *memResultRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.results[id]; !ok {
		return shared.ErrResultNotFound
	}
	delete(m.results, id)
	return nil
}

func (m *memResultRepo) GetByID(_ context.Context, id string) (*result.Result, error) {
	res, ok := m.results[id]
	if !ok {
		return nil, shared.ErrResultNotFound
	}
	return res, nil
}

func (m *memResultRepo) GetByKey(_ context.Context, matric shared.Matric, courseCode shared.CourseCode, session shared.Session) (*result.Result, error) {
	for _, res := range m.results {
		if res.Matric == matric && res.CourseCode == courseCode && res.Session == session {
			return res, nil
		}
	}
	return nil, shared.ErrResultNotFound
}

func (m *memResultRepo) ListByCourseSession(_ context.Context, courseCode shared.CourseCode, session shared.Session) ([]*result.Result, error) {
	var out []*result.Result
	for _, res := range m.results {
		if res.CourseCode == courseCode && res.Session == session {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *memResultRepo) ListByMatric(_ context.Context, matric shared.Matric, session shared.Session) ([]*result.Result, error) {
	var out []*result.Result
	for _, res := range m.results {
		if res.Matric == matric && (session == "" || res.Session == session) {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *memResultRepo) ListFailingBySession(_ context.Context, session shared.Session) ([]*result.Result, error) {
	var out []*result.Result
	for _, res := range m.results {
		if res.Session == session && res.IsFailing() {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *memResultRepo) CountLockState(_ context.Context, courseCode shared.CourseCode, session shared.Session) (int, int, error) {
	var total, locked int
	for _, res := range m.results {
		if res.CourseCode == courseCode && res.Session == session {
			total++
			if res.IsLocked {
				locked++
			}
		}
	}
	return total, locked, nil
}

func (m *memResultRepo) LockAll(_ context.Context, courseCode shared.CourseCode, session shared.Session, actorID string) (result.LockCounts, error) {
	var counts result.LockCounts
	for _, res := range m.results {
		if res.CourseCode != courseCode || res.Session != session {
			continue
		}
		counts.Total++
		if res.Lock(actorID) {
			counts.Changed++
		}
		if res.IsLocked {
			counts.Locked++
		}
	}
	return counts, nil
}

func (m *memResultRepo) UnlockAll(_ context.Context, courseCode shared.CourseCode, session shared.Session, actorID string) (result.LockCounts, error) {
	var counts result.LockCounts
	for _, res := range m.results {
		if res.CourseCode != courseCode || res.Session != session {
			continue
		}
		counts.Total++
		if res.Unlock(actorID) {
			counts.Changed++
		}
		if res.IsLocked {
			counts.Locked++
		}
	}
	return counts, nil
}

// memCarryoverRepo is an in-memory carryover.Repository enforcing the
// (matric, course, originating session) uniqueness contract.
type memCarryoverRepo struct {
	records []*carryover.Carryover
}

func (m *memCarryoverRepo) Create(_ context.Context, c *carryover.Carryover) error {
	for _, existing := range m.records {
		if existing.Matric == c.Matric && existing.CourseCode == c.CourseCode && existing.OriginatingSession == c.OriginatingSession {
			return shared.ErrCarryoverDuplicate
		}
	}
	m.records = append(m.records, c)
	return nil
}

func (m *memCarryoverRepo) Update(_ context.Context, c *carryover.Carryover) error {
	for i, existing := range m.records {
		if existing.ID == c.ID {
			m.records[i] = c
			return nil
		}
	}
	return shared.ErrCarryoverNotFound
}

func (m *memCarryoverRepo) GetOpen(_ context.Context, matric shared.Matric, courseCode shared.CourseCode) (*carryover.Carryover, error) {
	for _, c := range m.records {
		if c.Matric == matric && c.CourseCode == courseCode && c.IsOpen() {
			return c, nil
		}
	}
	return nil, shared.ErrCarryoverNotFound
}

func (m *memCarryoverRepo) GetLatest(_ context.Context, matric shared.Matric, courseCode shared.CourseCode) (*carryover.Carryover, error) {
	var latest *carryover.Carryover
	for _, c := range m.records {
		if c.Matric == matric && c.CourseCode == courseCode {
			latest = c
		}
	}
	if latest == nil {
		return nil, shared.ErrCarryoverNotFound
	}
	return latest, nil
}

func (m *memCarryoverRepo) GetClearedByResult(_ context.Context, resultID string) (*carryover.Carryover, error) {
	for _, c := range m.records {
		if c.ClearedBy(resultID) {
			return c, nil
		}
	}
	return nil, shared.ErrCarryoverNotFound
}

func (m *memCarryoverRepo) ListOutstanding(_ context.Context, matric shared.Matric) ([]*carryover.Carryover, error) {
	var out []*carryover.Carryover
	for _, c := range m.records {
		if c.Matric == matric && c.IsOpen() {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCarryoverRepo) ListByMatric(_ context.Context, matric shared.Matric) ([]*carryover.Carryover, error) {
	var out []*carryover.Carryover
	for _, c := range m.records {
		if c.Matric == matric {
			out = append(out, c)
		}
	}
	return out, nil
}

// memAuditRepo is an in-memory append-only audit.Repository.
type memAuditRepo struct {
	records []*audit.AlterationRecord
}

func (m *memAuditRepo) Append(_ context.Context, record *audit.AlterationRecord) error {
	m.records = append(m.records, record)
	return nil
}

func (m *memAuditRepo) ListByResult(_ context.Context, resultID string) ([]*audit.AlterationRecord, error) {
	var out []*audit.AlterationRecord
	for _, r := range m.records {
		if r.ResultID == resultID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAuditRepo) ListByMatric(_ context.Context, matric shared.Matric, _ shared.Pagination) ([]*audit.AlterationRecord, error) {
	var out []*audit.AlterationRecord
	for _, r := range m.records {
		if r.Matric == matric {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memAuditRepo) ListByActor(_ context.Context, actorID string, _ shared.Pagination) ([]*audit.AlterationRecord, error) {
	var out []*audit.AlterationRecord
	for _, r := range m.records {
		if r.ActorID == actorID {
			out = append(out, r)
		}
	}
	return out, nil
}

// memCourseRepo is an in-memory course.Repository.
type memCourseRepo struct {
	courses     map[shared.CourseCode]*course.Course
	assignments []course.Assignment
}

func newMemCourseRepo() *memCourseRepo {
	return &memCourseRepo{courses: make(map[shared.CourseCode]*course.Course)}
}

func (m *memCourseRepo) GetByCode(_ context.Context, code shared.CourseCode) (*course.Course, error) {
	c, ok := m.courses[code]
	if !ok {
		return nil, shared.ErrCourseNotFound
	}
	return c, nil
}

func (m *memCourseRepo) Update(_ context.Context, c *course.Course) error {
	if _, ok := m.courses[c.Code]; !ok {
		return shared.ErrCourseNotFound
	}
	m.courses[c.Code] = c
	return nil
}

func (m *memCourseRepo) ListByDepartment(_ context.Context, department string) ([]*course.Course, error) {
	var out []*course.Course
	for _, c := range m.courses {
		if c.Department == department {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memCourseRepo) IsAssigned(_ context.Context, code shared.CourseCode, session shared.Session, lecturerID string) (bool, error) {
	for _, a := range m.assignments {
		if a.CourseCode == code && a.Session == session && a.LecturerID == lecturerID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memCourseRepo) Assign(_ context.Context, a course.Assignment) error {
	m.assignments = append(m.assignments, a)
	return nil
}

// memUnitOfWork runs the function against fixed in-memory repositories;
// there is no rollback, tests assert on what was written.
type memUnitOfWork struct {
	repos Repos
}

func (u *memUnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	return fn(ctx, u.repos)
}

// staticTables returns a fixed table per degree type.
type staticTables struct {
	tables map[shared.DegreeType]grading.Table
}

func (s *staticTables) TableFor(_ context.Context, degreeType shared.DegreeType) (grading.Table, error) {
	if s.tables == nil {
		return grading.Table{}, nil
	}
	return s.tables[degreeType], nil
}

// capturePublisher collects published events.
type capturePublisher struct {
	mu     sync.Mutex
	events []shared.Event
}

func (p *capturePublisher) Publish(event shared.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) byType(eventType shared.EventType) []shared.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []shared.Event
	for _, e := range p.events {
		if e.EventType() == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires all fakes together for one test.
type testEnv struct {
	results    *memResultRepo
	carryovers *memCarryoverRepo
	audits     *memAuditRepo
	courses    *memCourseRepo
	uow        *memUnitOfWork
	publisher  *capturePublisher
}

func newTestEnv() *testEnv {
	env := &testEnv{
		results:    newMemResultRepo(),
		carryovers: &memCarryoverRepo{},
		audits:     &memAuditRepo{},
		courses:    newMemCourseRepo(),
		publisher:  &capturePublisher{},
	}
	env.uow = &memUnitOfWork{repos: Repos{
		Results:     env.results,
		Carryovers:  env.carryovers,
		Alterations: env.audits,
		Courses:     env.courses,
	}}
	env.courses.courses["CSC301"] = &course.Course{
		Code:       "CSC301",
		Title:      "Operating Systems",
		CreditUnit: 3,
		DegreeType: shared.DegreeBSc,
		Level:      300,
		Semester:   shared.FirstSemester,
		Department: "Computer Science",
	}
	env.courses.assignments = append(env.courses.assignments, course.Assignment{
		CourseCode: "CSC301",
		Session:    "2023/2024",
		LecturerID: "lect-1",
	})
	return env
}

func (e *testEnv) upsertHandler() *UpsertResultHandler {
	return NewUpsertResultHandler(e.uow, &staticTables{}, e.publisher)
}

var (
	lecturerActor = shared.Actor{ID: "lect-1", Name: "A. Bello", Role: shared.RoleLecturer}
	strangerActor = shared.Actor{ID: "lect-2", Name: "B. Musa", Role: shared.RoleLecturer}
	hodActor      = shared.Actor{ID: "hod-1", Name: "C. Okafor", Role: shared.RoleHOD, Department: "Computer Science"}
)
