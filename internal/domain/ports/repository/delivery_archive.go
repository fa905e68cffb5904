package repository

import (
	"context"

	"telegram-media-publisher/internal/domain/model"
)

// DeliveryArchive keeps the per-job outcome log. Jobs are destructively
// removed from the queue, so this is the only durable trace of what
// happened to a submission.
type DeliveryArchive interface {
	Record(ctx context.Context, d *model.Delivery) error
	Recent(ctx context.Context, limit int) ([]*model.Delivery, error)
}
