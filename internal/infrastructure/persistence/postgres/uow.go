package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/resulthub/academic-results-hub/internal/application/command"
)

// ══════════════════════════════════════════════════════════════════════════════
// UNIT OF WORK
// ══════════════════════════════════════════════════════════════════════════════

// UnitOfWork implements command.UnitOfWork over a pgx transaction. Every
// repository handed to the callback is bound to the same transaction, so
// a result write, its audit record, and its carryover transition commit
// or roll back as one unit.
type UnitOfWork struct {
	conn *Connection
}

// NewUnitOfWork creates a new UnitOfWork.
func NewUnitOfWork(conn *Connection) *UnitOfWork {
	return &UnitOfWork{conn: conn}
}

// Do runs fn inside a transaction with tx-bound repositories.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, repos command.Repos) error) error {
	return u.conn.WithTx(ctx, DefaultTxOptions(), func(tx pgx.Tx) error {
		repos := command.Repos{
			Results:     NewResultRepositoryWithQuerier(tx),
			Carryovers:  NewCarryoverRepositoryWithQuerier(tx),
			Alterations: NewAlterationRepositoryWithQuerier(tx),
			Courses:     NewCourseRepositoryWithQuerier(tx),
		}
		return fn(ctx, repos)
	})
}
