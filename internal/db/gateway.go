package db

import (
	"context"
	"errors"
	"fmt"

	"task_manager/internal/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the statement surface a repository needs. pgx.Tx, pgx.Conn and
// pgxpool.Pool all satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is satisfied by *pgxpool.Pool and pgxmock pools.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}

// Gateway hands out request-scoped sessions on top of a connection pool.
type Gateway struct {
	pool Pool
}

func NewGateway(pool Pool) *Gateway {
	return &Gateway{pool: pool}
}

// WithSession runs fn inside a transaction bound to one pooled connection.
// The transaction commits when fn returns nil and rolls back otherwise,
// including when fn panics. The connection goes back to the pool either way.
func (g *Gateway) WithSession(ctx context.Context, fn func(q Querier) error) error {
	tx, err := g.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin session: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(ctx, tx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		rollback(ctx, tx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

func (g *Gateway) Ping(ctx context.Context) error {
	return g.pool.Ping(ctx)
}

func rollback(ctx context.Context, tx pgx.Tx) {
	// the request context may already be canceled
	if err := tx.Rollback(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		logger.FromContext(ctx).Warn("session rollback failed", "error", err)
	}
}
