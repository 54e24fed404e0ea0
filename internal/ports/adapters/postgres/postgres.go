// Package postgres implements the repository contracts on pgx. Rows are
// mapped by hand; there is no ORM layer. Saves are upserts so replace
// semantics (e.g. re-transcription) need no separate update paths.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool and waits for the database to come up, retrying a
// bounded number of times so container start order does not matter.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	var pool *pgxpool.Pool
	var err error
	for i := 0; i < 10; i++ {
		pool, err = pgxpool.New(ctx, connString)
		if err == nil {
			if err = pool.Ping(ctx); err == nil {
				return pool, nil
			}
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(3 * time.Second):
		}
	}
	return nil, fmt.Errorf("database not reachable: %w", err)
}
