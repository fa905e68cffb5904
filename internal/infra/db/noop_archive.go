// Package db holds database-backed repositories plus their no-op stand-ins.
package db

import (
	"context"

	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/repository"
)

var _ repository.DeliveryArchive = (*NoopArchive)(nil)

// NoopArchive satisfies DeliveryArchive when no database is configured;
// the pipeline then runs with Redis alone and outcomes live only in logs.
type NoopArchive struct{}

func (NoopArchive) Record(ctx context.Context, d *model.Delivery) error { return nil }

func (NoopArchive) Recent(ctx context.Context, limit int) ([]*model.Delivery, error) {
	return nil, nil
}
