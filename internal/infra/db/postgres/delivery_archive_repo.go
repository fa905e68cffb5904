package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/repository"
)

var _ repository.DeliveryArchive = (*deliveryArchiveRepo)(nil)

type deliveryArchiveRepo struct {
	pool *pgxpool.Pool
}

func NewDeliveryArchiveRepo(pool *pgxpool.Pool) *deliveryArchiveRepo {
	return &deliveryArchiveRepo{pool: pool}
}

// EnsureSchema creates the archive table. Safe to call on every start.
func (r *deliveryArchiveRepo) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS deliveries (
  job_id       text PRIMARY KEY,
  title        text NOT NULL,
  kind         text NOT NULL,
  status       text NOT NULL,
  last_error   text NOT NULL DEFAULT '',
  submitter_id bigint NOT NULL,
  enqueued_at  timestamptz NOT NULL,
  finished_at  timestamptz NOT NULL
);`
	_, err := r.pool.Exec(ctx, q)
	return err
}

const uniqueViolation = "23505"

func (r *deliveryArchiveRepo) Record(ctx context.Context, d *model.Delivery) error {
	if d.FinishedAt.IsZero() {
		d.FinishedAt = time.Now()
	}

	const ins = `
INSERT INTO deliveries (job_id, title, kind, status, last_error, submitter_id, enqueued_at, finished_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);`

	_, err := r.pool.Exec(ctx, ins,
		d.JobID, d.Title, d.Kind, d.Status, d.LastError, d.SubmitterID, d.EnqueuedAt, d.FinishedAt)
	if err == nil {
		return nil
	}

	// A retried job already has a row; overwrite it with the final outcome.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		const upd = `
UPDATE deliveries SET status = $2, last_error = $3, finished_at = $4 WHERE job_id = $1;`
		_, err = r.pool.Exec(ctx, upd, d.JobID, d.Status, d.LastError, d.FinishedAt)
		return err
	}
	return fmt.Errorf("record delivery: %w", err)
}

func (r *deliveryArchiveRepo) Recent(ctx context.Context, limit int) ([]*model.Delivery, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = `
SELECT job_id, title, kind, status, last_error, submitter_id, enqueued_at, finished_at
FROM deliveries
ORDER BY finished_at DESC
LIMIT $1;`

	rows, err := r.pool.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("query deliveries: %w", err)
	}
	defer rows.Close()

	var out []*model.Delivery
	for rows.Next() {
		var d model.Delivery
		var kind, status string
		if err := rows.Scan(&d.JobID, &d.Title, &kind, &status, &d.LastError,
			&d.SubmitterID, &d.EnqueuedAt, &d.FinishedAt); err != nil {
			return nil, err
		}
		d.Kind = model.MediaKind(kind)
		d.Status = model.DeliveryStatus(status)
		out = append(out, &d)
	}
	return out, rows.Err()
}
