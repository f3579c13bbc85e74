package postgres

import (
	"context"
	"fmt"

	"github.com/resulthub/academic-results-hub/internal/domain/grading"
	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GRADING REPOSITORY IMPLEMENTATION
// ══════════════════════════════════════════════════════════════════════════════

// GradingRepository loads per-degree-type grading band tables. It
// implements grading.TableProvider; a degree type with no stored bands
// yields an empty table and the resolver falls back to the defaults.
type GradingRepository struct {
	q Querier
}

// NewGradingRepository creates a new GradingRepository over the pool.
func NewGradingRepository(conn *Connection) *GradingRepository {
	return &GradingRepository{q: conn}
}

// TableFor returns the stored grading table for a degree type.
func (r *GradingRepository) TableFor(ctx context.Context, degreeType shared.DegreeType) (grading.Table, error) {
	query := `
		SELECT min_score, max_score, grade, grade_point
		FROM grading_bands
		WHERE degree_type = $1
		ORDER BY min_score DESC
	`

	rows, err := r.q.Query(ctx, query, degreeType.String())
	if err != nil {
		return grading.Table{}, fmt.Errorf("failed to load grading bands: %w", err)
	}
	defer rows.Close()

	table := grading.Table{DegreeType: degreeType}
	for rows.Next() {
		var (
			band  grading.Band
			grade string
			point float64
		)
		if err := rows.Scan(&band.MinScore, &band.MaxScore, &grade, &point); err != nil {
			return grading.Table{}, fmt.Errorf("failed to scan grading band: %w", err)
		}
		band.Grade = grading.Grade(grade)
		band.Point = grading.Point(point)
		table.Bands = append(table.Bands, band)
	}
	if err := rows.Err(); err != nil {
		return grading.Table{}, fmt.Errorf("failed to read grading bands: %w", err)
	}

	return table, nil
}

// ReplaceTable swaps the stored bands for a degree type in one
// transaction-friendly statement pair. Used by administrative tooling.
func (r *GradingRepository) ReplaceTable(ctx context.Context, table grading.Table) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM grading_bands WHERE degree_type = $1`, table.DegreeType.String()); err != nil {
		return fmt.Errorf("failed to clear grading bands: %w", err)
	}

	for _, band := range table.Bands {
		_, err := r.q.Exec(ctx, `
			INSERT INTO grading_bands (degree_type, min_score, max_score, grade, grade_point)
			VALUES ($1, $2, $3, $4, $5)
		`, table.DegreeType.String(), band.MinScore, band.MaxScore, band.Grade.String(), band.Point.Float64())
		if err != nil {
			return fmt.Errorf("failed to insert grading band: %w", err)
		}
	}

	return nil
}
