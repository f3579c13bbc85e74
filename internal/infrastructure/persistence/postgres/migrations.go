// Package postgres - embedded schema migrations for the results hub.
package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE COURSES
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create course catalogue and lecturer assignments
-- Version: 001
-- Courses are mastered by an external student-records system; this copy is
-- the slice the results hub needs: credit units, degree type, approval state.

CREATE TABLE IF NOT EXISTS courses (
    code VARCHAR(8) PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    credit_unit INTEGER NOT NULL DEFAULT 0,
    degree_type VARCHAR(10) NOT NULL DEFAULT 'BSC',
    level INTEGER NOT NULL,
    semester INTEGER NOT NULL,
    department VARCHAR(100) NOT NULL DEFAULT '',
    is_approved BOOLEAN NOT NULL DEFAULT FALSE,
    approved_by VARCHAR(64) NOT NULL DEFAULT '',
    approved_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_credit_unit CHECK (credit_unit >= 0),
    CONSTRAINT valid_semester CHECK (semester IN (1, 2)),
    CONSTRAINT valid_level CHECK (level >= 100 AND level <= 700 AND level % 100 = 0)
);

CREATE INDEX IF NOT EXISTS idx_courses_department ON courses(department);
CREATE INDEX IF NOT EXISTS idx_courses_level ON courses(level);

-- Lecturer assignments: who may enter scores for which course in which session
CREATE TABLE IF NOT EXISTS course_assignments (
    id SERIAL PRIMARY KEY,
    course_code VARCHAR(8) NOT NULL REFERENCES courses(code) ON DELETE CASCADE,
    session VARCHAR(9) NOT NULL,
    lecturer_id VARCHAR(64) NOT NULL,
    assigned_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(course_code, session, lecturer_id)
);

CREATE INDEX IF NOT EXISTS idx_course_assignments_lecturer ON course_assignments(lecturer_id);
CREATE INDEX IF NOT EXISTS idx_course_assignments_course_session ON course_assignments(course_code, session);

-- Updated_at trigger function for automatic timestamp updates
CREATE OR REPLACE FUNCTION update_updated_at_column()
RETURNS TRIGGER AS $$
BEGIN
    NEW.updated_at = NOW();
    RETURN NEW;
END;
$$ language 'plpgsql';

DROP TRIGGER IF EXISTS update_courses_updated_at ON courses;
CREATE TRIGGER update_courses_updated_at
    BEFORE UPDATE ON courses
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration001Down = `
DROP TRIGGER IF EXISTS update_courses_updated_at ON courses;
DROP FUNCTION IF EXISTS update_updated_at_column();
DROP TABLE IF EXISTS course_assignments;
DROP TABLE IF EXISTS courses;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE RESULTS
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create results table
-- Version: 002
-- One row per (matric, course, session). Re-submission updates in place;
-- the alteration log (migration 004) keeps the history.

CREATE TABLE IF NOT EXISTS results (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    matric VARCHAR(30) NOT NULL,
    course_code VARCHAR(8) NOT NULL REFERENCES courses(code),
    session VARCHAR(9) NOT NULL,
    semester INTEGER NOT NULL,
    level INTEGER NOT NULL,
    ca_score DECIMAL(5,2) NOT NULL,
    exam_score DECIMAL(5,2) NOT NULL,
    total_score DECIMAL(5,2) NOT NULL,
    grade VARCHAR(2) NOT NULL,
    grade_point DECIMAL(3,1) NOT NULL,
    is_carryover BOOLEAN NOT NULL DEFAULT FALSE,
    is_locked BOOLEAN NOT NULL DEFAULT FALSE,
    locked_by VARCHAR(64) NOT NULL DEFAULT '',
    locked_at TIMESTAMP WITH TIME ZONE,
    unlocked_by VARCHAR(64) NOT NULL DEFAULT '',
    unlocked_at TIMESTAMP WITH TIME ZONE,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(matric, course_code, session),
    CONSTRAINT valid_ca_score CHECK (ca_score >= 0 AND ca_score <= 30),
    CONSTRAINT valid_exam_score CHECK (exam_score >= 0 AND exam_score <= 70),
    CONSTRAINT valid_semester CHECK (semester IN (1, 2))
);

CREATE INDEX IF NOT EXISTS idx_results_matric ON results(matric);
CREATE INDEX IF NOT EXISTS idx_results_course_session ON results(course_code, session);
CREATE INDEX IF NOT EXISTS idx_results_session_failing ON results(session) WHERE grade_point = 0;
CREATE INDEX IF NOT EXISTS idx_results_locked ON results(course_code, session, is_locked);

DROP TRIGGER IF EXISTS update_results_updated_at ON results;
CREATE TRIGGER update_results_updated_at
    BEFORE UPDATE ON results
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration002Down = `
DROP TRIGGER IF EXISTS update_results_updated_at ON results;
DROP TABLE IF EXISTS results;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 003: CREATE CARRYOVERS
// ══════════════════════════════════════════════════════════════════════════════

const migration003Up = `
-- Migration: Create carryovers table
-- Version: 003
-- The partial unique index is the ledger's backstop: at most one OPEN
-- carryover per (matric, course), regardless of how it was opened.

CREATE TABLE IF NOT EXISTS carryovers (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    matric VARCHAR(30) NOT NULL,
    course_code VARCHAR(8) NOT NULL REFERENCES courses(code),
    originating_session VARCHAR(9) NOT NULL,
    original_level INTEGER NOT NULL,
    is_cleared BOOLEAN NOT NULL DEFAULT FALSE,
    cleared_session VARCHAR(9) NOT NULL DEFAULT '',
    cleared_result_id UUID,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(matric, course_code, originating_session)
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_carryovers_one_open
    ON carryovers(matric, course_code) WHERE NOT is_cleared;
CREATE INDEX IF NOT EXISTS idx_carryovers_matric ON carryovers(matric);
CREATE INDEX IF NOT EXISTS idx_carryovers_cleared_result ON carryovers(cleared_result_id) WHERE cleared_result_id IS NOT NULL;

DROP TRIGGER IF EXISTS update_carryovers_updated_at ON carryovers;
CREATE TRIGGER update_carryovers_updated_at
    BEFORE UPDATE ON carryovers
    FOR EACH ROW
    EXECUTE FUNCTION update_updated_at_column();
`

const migration003Down = `
DROP TRIGGER IF EXISTS update_carryovers_updated_at ON carryovers;
DROP TABLE IF EXISTS carryovers;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 004: CREATE ALTERATIONS
// ══════════════════════════════════════════════════════════════════════════════

const migration004Up = `
-- Migration: Create alteration audit log
-- Version: 004
-- Append-only. No updated_at, no trigger, and the application layer never
-- issues UPDATE or DELETE against this table. Student/course labels are
-- denormalized so records survive deletion of the result they describe.

CREATE TABLE IF NOT EXISTS result_alterations (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    result_id UUID NOT NULL,
    matric VARCHAR(30) NOT NULL,
    course_code VARCHAR(8) NOT NULL,
    session VARCHAR(9) NOT NULL,
    alteration_type VARCHAR(10) NOT NULL,
    before_ca DECIMAL(5,2) NOT NULL DEFAULT 0,
    before_exam DECIMAL(5,2) NOT NULL DEFAULT 0,
    before_total DECIMAL(5,2) NOT NULL DEFAULT 0,
    before_grade VARCHAR(2) NOT NULL DEFAULT '',
    after_ca DECIMAL(5,2) NOT NULL DEFAULT 0,
    after_exam DECIMAL(5,2) NOT NULL DEFAULT 0,
    after_total DECIMAL(5,2) NOT NULL DEFAULT 0,
    after_grade VARCHAR(2) NOT NULL DEFAULT '',
    actor_id VARCHAR(64) NOT NULL,
    actor_name VARCHAR(128) NOT NULL DEFAULT 'Unknown',
    actor_role VARCHAR(20) NOT NULL,
    ip_address VARCHAR(45) NOT NULL DEFAULT 'Unknown',
    device VARCHAR(64) NOT NULL DEFAULT 'Unknown',
    browser VARCHAR(64) NOT NULL DEFAULT 'Unknown',
    os VARCHAR(64) NOT NULL DEFAULT 'Unknown',
    location VARCHAR(128) NOT NULL DEFAULT 'Unknown',
    device_name VARCHAR(128) NOT NULL DEFAULT 'Unknown',
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_alteration_type CHECK (alteration_type IN ('CREATE', 'UPDATE', 'DELETE'))
);

CREATE INDEX IF NOT EXISTS idx_alterations_result ON result_alterations(result_id, created_at);
CREATE INDEX IF NOT EXISTS idx_alterations_matric ON result_alterations(matric, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_alterations_actor ON result_alterations(actor_id, created_at DESC);
`

const migration004Down = `
DROP TABLE IF EXISTS result_alterations;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 005: CREATE GRADING BANDS
// ══════════════════════════════════════════════════════════════════════════════

const migration005Up = `
-- Migration: Create grading bands
-- Version: 005
-- Per degree-type grade tables. An empty table for a degree type means
-- the resolver falls back to the built-in default bands.

CREATE TABLE IF NOT EXISTS grading_bands (
    id SERIAL PRIMARY KEY,
    degree_type VARCHAR(10) NOT NULL,
    min_score DECIMAL(5,2) NOT NULL,
    max_score DECIMAL(5,2) NOT NULL,
    grade VARCHAR(2) NOT NULL,
    grade_point DECIMAL(3,1) NOT NULL,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    UNIQUE(degree_type, grade),
    CONSTRAINT valid_band CHECK (min_score <= max_score)
);

CREATE INDEX IF NOT EXISTS idx_grading_bands_degree ON grading_bands(degree_type);

-- Seed the default bands for the standard undergraduate table
INSERT INTO grading_bands (degree_type, min_score, max_score, grade, grade_point) VALUES
    ('BSC', 70, 100, 'A', 5.0),
    ('BSC', 60, 69.99, 'B', 4.0),
    ('BSC', 50, 59.99, 'C', 3.0),
    ('BSC', 45, 49.99, 'D', 2.0),
    ('BSC', 40, 44.99, 'E', 1.0),
    ('BSC', 0, 39.99, 'F', 0.0)
ON CONFLICT (degree_type, grade) DO NOTHING;
`

const migration005Down = `
DROP TABLE IF EXISTS grading_bands;
`
