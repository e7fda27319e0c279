package pgx

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lborres/careerguide/core"
)

const DefaultTable = "kv_store"

// Adapter stores keys in a Postgres table. Useful when several devices of
// one user share state through a server-side store.
type Adapter struct {
	pool  *pgxpool.Pool
	table string
}

var _ core.KVStore = (*Adapter)(nil)

func New(pool *pgxpool.Pool) *Adapter {
	return &Adapter{pool: pool, table: DefaultTable}
}

// Connect opens a pool for dsn and applies the schema.
func Connect(ctx context.Context, dsn string) (*Adapter, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}

	a := New(pool)
	if err := a.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return a, nil
}

func (a *Adapter) Migrate(ctx context.Context) error {
	q := `CREATE TABLE IF NOT EXISTS public.` + a.table + ` (
		key        TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := a.pool.Exec(ctx, q); err != nil {
		return fmt.Errorf("create %s: %w", a.table, err)
	}
	return nil
}

func (a *Adapter) Close() {
	a.pool.Close()
}
