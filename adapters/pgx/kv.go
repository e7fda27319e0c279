package pgx

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/careerguide/core"
)

func (a *Adapter) SetItem(ctx context.Context, key string, value []byte) error {
	q := `INSERT INTO public.` + a.table + ` (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`
	_, err := a.pool.Exec(ctx, q, key, value)
	return err
}

func (a *Adapter) GetItem(ctx context.Context, key string) ([]byte, error) {
	q := `SELECT value FROM public.` + a.table + ` WHERE key = $1`

	var value []byte
	err := a.pool.QueryRow(ctx, q, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.ErrKeyNotFound
		}
		return nil, err
	}
	return value, nil
}

func (a *Adapter) RemoveItem(ctx context.Context, key string) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM public.`+a.table+` WHERE key = $1`, key)
	return err
}

func (a *Adapter) MultiRemove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	_, err := a.pool.Exec(ctx, `DELETE FROM public.`+a.table+` WHERE key = ANY($1)`, keys)
	return err
}

func (a *Adapter) Clear(ctx context.Context) error {
	_, err := a.pool.Exec(ctx, `DELETE FROM public.`+a.table)
	return err
}

func (a *Adapter) Keys(ctx context.Context) ([]string, error) {
	rows, err := a.pool.Query(ctx, `SELECT key FROM public.`+a.table+` ORDER BY key`)
	if err != nil {
		return nil, err
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, err
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}
