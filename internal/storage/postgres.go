package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool the Postgres store uses.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const (
	loadSQL = `SELECT value, version FROM kv_store WHERE key = $1`
	saveSQL = `INSERT INTO kv_store (key, value, version, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, version = kv_store.version + 1, updated_at = now()`
	insertSQL = `INSERT INTO kv_store (key, value, version, updated_at)
		VALUES ($1, $2, 1, now())
		ON CONFLICT (key) DO NOTHING
		RETURNING version`
	updateSQL = `UPDATE kv_store
		SET value = $3, version = version + 1, updated_at = now()
		WHERE key = $1 AND version = $2
		RETURNING version`
)

// Postgres stores values in the kv_store table.
type Postgres struct {
	db DBTX
}

// NewPostgres wraps a pool (or transaction).
func NewPostgres(db DBTX) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Load(ctx context.Context, key string) ([]byte, error) {
	v, _, err := p.LoadVersion(ctx, key)
	return v, err
}

func (p *Postgres) LoadVersion(ctx context.Context, key string) ([]byte, int64, error) {
	var (
		value   []byte
		version int64
	)
	if err := p.db.QueryRow(ctx, loadSQL, key).Scan(&value, &version); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, 0, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, 0, fmt.Errorf("load %s: %w", key, err)
	}
	return value, version, nil
}

func (p *Postgres) Save(ctx context.Context, key string, value []byte) error {
	if _, err := p.db.Exec(ctx, saveSQL, key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) SaveIfVersion(ctx context.Context, key string, version int64, value []byte) (int64, error) {
	var row pgx.Row
	if version == 0 {
		row = p.db.QueryRow(ctx, insertSQL, key, value)
	} else {
		row = p.db.QueryRow(ctx, updateSQL, key, version, value)
	}

	var next int64
	if err := row.Scan(&next); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s moved past %d", ErrConflict, key, version)
		}
		return 0, fmt.Errorf("save %s: %w", key, err)
	}
	return next, nil
}
