package repo

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/google/uuid"

	"imgbind/internal/fp"
)

// PostgresRepo implements FetchRepo backed by PostgreSQL. It expects (and
// creates) a table `fetches` indexed by fingerprint.
type PostgresRepo struct {
	db *sql.DB
}

// NewPostgresRepo constructs a repository using the provided DSN.
func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	r := &PostgresRepo{db: db}
	if err := r.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return r, nil
}

var _ FetchRepo = (*PostgresRepo)(nil)

func (r *PostgresRepo) Close() error { return r.db.Close() }

func (r *PostgresRepo) ensureSchema(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS fetches (
    id UUID PRIMARY KEY,
    url TEXT NOT NULL,
    fingerprint TEXT NOT NULL,
    status TEXT NOT NULL,
    error_code INT,
    error TEXT NOT NULL DEFAULT '',
    status_code INT,
    width INT NOT NULL DEFAULT 0,
    height INT NOT NULL DEFAULT 0,
    duration_ms BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS fetches_fingerprint_idx ON fetches (fingerprint);
`)
	return err
}

const selectCols = `id,url,fingerprint,status,error_code,error,status_code,width,height,duration_ms,created_at`

func (r *PostgresRepo) List(ctx context.Context) (Records, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectCols+` FROM fetches ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out Records
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id string) (*Record, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectCols+` FROM fetches WHERE id=$1`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (r *PostgresRepo) Add(ctx context.Context, rec *Record) (*Record, error) {
	id := uuid.NewString()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO fetches (id,url,fingerprint,status,error_code,error,status_code,width,height,duration_ms,created_at) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`,
		id, rec.URL, fp.Fingerprint(rec.URL), string(rec.Status), rec.ErrorCode, rec.Error, rec.StatusCode, rec.Width, rec.Height, rec.DurationMS, rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Update fetches, mutates, and writes back under a row lock so concurrent
// outcome reports for the same record serialize.
func (r *PostgresRepo) Update(ctx context.Context, id string, mutate func(*Record) error) (*Record, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		// Safe rollback when not committed.
		_ = tx.Rollback()
	}()

	row := tx.QueryRowContext(ctx, `SELECT `+selectCols+` FROM fetches WHERE id=$1 FOR UPDATE`, id)
	cur, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	next := cur.Clone()
	if mutate != nil {
		if err := mutate(next); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `UPDATE fetches SET status=$1, error_code=$2, error=$3, status_code=$4, width=$5, height=$6, duration_ms=$7 WHERE id=$8`,
		string(next.Status), next.ErrorCode, next.Error, next.StatusCode, next.Width, next.Height, next.DurationMS, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return next, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanRecord(rs rowScanner) (*Record, error) {
	var (
		rec        Record
		status     string
		errorCode  sql.NullInt64
		statusCode sql.NullInt64
	)
	if err := rs.Scan(&rec.ID, &rec.URL, &rec.Fingerprint, &status, &errorCode, &rec.Error, &statusCode, &rec.Width, &rec.Height, &rec.DurationMS, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Status = Status(status)
	if errorCode.Valid {
		v := int(errorCode.Int64)
		rec.ErrorCode = &v
	}
	if statusCode.Valid {
		v := int(statusCode.Int64)
		rec.StatusCode = &v
	}
	return &rec, nil
}
