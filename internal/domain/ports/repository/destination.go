package repository

import (
	"context"

	"telegram-media-publisher/internal/domain/model"
)

// DestinationRepository stores the current delivery target so /settarget
// survives restarts and crosses the bot/worker process boundary.
type DestinationRepository interface {
	Set(ctx context.Context, dest model.Destination) error
	// Get returns domain.ErrNoDestination when no target was ever set.
	Get(ctx context.Context) (model.Destination, error)
}
