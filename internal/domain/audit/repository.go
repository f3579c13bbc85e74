package audit

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/shared"
)

// Repository is the append-only sink for alteration records. There is
// deliberately no update or delete operation.
type Repository interface {
	// Append persists a new alteration record.
	Append(ctx context.Context, record *AlterationRecord) error

	// ListByResult returns the alteration history of one result, oldest
	// first.
	ListByResult(ctx context.Context, resultID string) ([]*AlterationRecord, error)

	// ListByMatric returns all alterations affecting a student's results,
	// newest first, paginated.
	ListByMatric(ctx context.Context, matric shared.Matric, p shared.Pagination) ([]*AlterationRecord, error)

	// ListByActor returns all alterations performed by an actor, newest
	// first, paginated.
	ListByActor(ctx context.Context, actorID string, p shared.Pagination) ([]*AlterationRecord, error)
}
