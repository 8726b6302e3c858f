// Package postgres persists the print spool in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joeydtaylor/steeze-print/pkg/spool"
)

const schema = `
CREATE TABLE IF NOT EXISTS print_spool (
    id          UUID PRIMARY KEY,
    destination TEXT        NOT NULL,
    format      TEXT        NOT NULL,
    args        JSONB       NOT NULL DEFAULT '[]',
    created_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS print_spool_destination_created
    ON print_spool (destination, created_at DESC);
`

type store struct {
	db *pgxpool.Pool
}

// New connects to dsn and ensures the spool table exists.
func New(ctx context.Context, dsn string) (spool.Store, error) {
	db, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("spool/postgres: connect: %w", err)
	}
	s := &store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *store) Migrate(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("spool/postgres: migrate: %w", err)
	}
	return nil
}

func (s *store) Enqueue(ctx context.Context, j spool.Job) error {
	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	args, err := json.Marshal(j.Args)
	if err != nil {
		return fmt.Errorf("spool/postgres: encode args: %w", err)
	}
	_, err = s.db.Exec(ctx, `
        INSERT INTO print_spool (id, destination, format, args, created_at)
        VALUES ($1, $2, $3, $4::jsonb, $5)
    `, j.ID, j.Destination, j.Format, string(args), j.CreatedAt)
	if err != nil {
		return fmt.Errorf("spool/postgres: enqueue: %w", err)
	}
	return nil
}

func (s *store) List(ctx context.Context, destination string, limit int) ([]spool.Job, error) {
	if limit <= 0 {
		limit = 100
	}
	ctx, cancel := context.WithTimeout(ctx, 4*time.Second)
	defer cancel()

	rows, err := s.db.Query(ctx, `
        SELECT id, destination, format, args, created_at
        FROM print_spool
        WHERE destination = $1
        ORDER BY created_at DESC
        LIMIT $2
    `, destination, limit)
	if err != nil {
		return nil, fmt.Errorf("spool/postgres: list: %w", err)
	}
	return pgx.CollectRows(rows, scanJob)
}

func scanJob(row pgx.CollectableRow) (spool.Job, error) {
	var (
		j   spool.Job
		raw []byte
	)
	if err := row.Scan(&j.ID, &j.Destination, &j.Format, &raw, &j.CreatedAt); err != nil {
		return spool.Job{}, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &j.Args); err != nil {
			return spool.Job{}, fmt.Errorf("spool/postgres: decode args: %w", err)
		}
	}
	return j, nil
}

func (s *store) Close() { s.db.Close() }
