package redis

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/go-redis/redis/v8"

	"telegram-media-publisher/internal/domain"
	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/repository"
)

var _ repository.DestinationRepository = (*DestinationRepo)(nil)

// DestinationRepo persists the delivery target set by /settarget. Stored
// in Redis (no TTL) so it survives restarts and is visible to both the
// intake and the worker process.
type DestinationRepo struct {
	client *Client
	key    string
}

func NewDestinationRepo(client *Client, key string) *DestinationRepo {
	if key == "" {
		key = "media:destination"
	}
	return &DestinationRepo{client: client, key: key}
}

func (r *DestinationRepo) Set(ctx context.Context, dest model.Destination) error {
	if dest.IsZero() {
		return domain.ErrInvalidArgument
	}
	data, err := json.Marshal(dest)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, 0)
}

func (r *DestinationRepo) Get(ctx context.Context) (model.Destination, error) {
	data, err := r.client.Get(ctx, r.key)
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Destination{}, domain.ErrNoDestination
		}
		return model.Destination{}, err
	}
	var dest model.Destination
	if err := json.Unmarshal([]byte(data), &dest); err != nil {
		return model.Destination{}, err
	}
	return dest, nil
}
