// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"

	"github.com/resulthub/academic-results-hub/internal/domain/audit"
	"github.com/resulthub/academic-results-hub/internal/domain/carryover"
	"github.com/resulthub/academic-results-hub/internal/domain/course"
	"github.com/resulthub/academic-results-hub/internal/domain/result"
)

// Repos bundles repositories bound to one transaction. Handlers receive
// it inside UnitOfWork.Do so that a result upsert, its carryover
// transition, and its audit record commit together or not at all.
type Repos struct {
	Results     result.Repository
	Carryovers  carryover.Repository
	Alterations audit.Repository
	Courses     course.Repository
}

// UnitOfWork runs a function inside one storage transaction. If fn
// returns an error the transaction rolls back and the error is returned
// unchanged.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error
}
