// File: internal/domain/ports/repository/queue.go
package repository

import (
	"context"

	"telegram-media-publisher/internal/domain/model"
)

// Lease is a time-bounded exclusive claim on a popped job. The job stays
// invisible while the lease is live; Complete removes it permanently and
// an expired lease makes the job visible again at the head of the queue.
type Lease struct {
	Token string
}

// JobQueue is the durable FIFO hand-off between the intake process and the
// worker process. Pop never blocks: it returns domain.ErrQueueEmpty when
// there is nothing pending.
type JobQueue interface {
	Push(ctx context.Context, job *model.MediaJob) error
	Pop(ctx context.Context) (*model.MediaJob, Lease, error)
	Complete(ctx context.Context, lease Lease) error
	// ReapExpired re-queues jobs whose lease expired (worker crash or hang)
	// and returns how many were recovered.
	ReapExpired(ctx context.Context) (int, error)
	Size(ctx context.Context) (int64, error)
	Clear(ctx context.Context) error
}
