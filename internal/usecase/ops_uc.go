package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-media-publisher/internal/domain"
	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/repository"
	"telegram-media-publisher/internal/infra/logging"
)

// Compile-time check
var _ OpsUseCase = (*opsUC)(nil)

// OpsUseCase backs the operator commands and the ops HTTP API.
type OpsUseCase interface {
	Status(ctx context.Context) (int64, model.Destination, error)
	SetDestination(ctx context.Context, chatID, topicID int64) error
	ClearQueue(ctx context.Context) error
	RecentDeliveries(ctx context.Context, limit int) ([]*model.Delivery, error)
}

type opsUC struct {
	queue   repository.JobQueue
	dests   repository.DestinationRepository
	archive repository.DeliveryArchive
	log     *zerolog.Logger
}

func NewOpsUseCase(queue repository.JobQueue, dests repository.DestinationRepository, archive repository.DeliveryArchive, logger *zerolog.Logger) *opsUC {
	return &opsUC{queue: queue, dests: dests, archive: archive, log: logger}
}

// Status reports the queue depth and the current destination. A missing
// destination is not an error here: the zero value signals "unset".
func (u *opsUC) Status(ctx context.Context) (int64, model.Destination, error) {
	depth, err := u.queue.Size(ctx)
	if err != nil {
		return 0, model.Destination{}, err
	}
	dest, err := u.dests.Get(ctx)
	if err != nil && err != domain.ErrNoDestination {
		return depth, model.Destination{}, err
	}
	return depth, dest, nil
}

func (u *opsUC) SetDestination(ctx context.Context, chatID, topicID int64) error {
	defer logging.TraceDuration(u.log, "OpsUC.SetDestination")()
	if chatID == 0 {
		return domain.ErrInvalidArgument
	}
	if err := u.dests.Set(ctx, model.Destination{ChatID: chatID, TopicID: topicID}); err != nil {
		return err
	}
	u.log.Info().Int64("chat_id", chatID).Int64("topic_id", topicID).Msg("destination updated")
	return nil
}

func (u *opsUC) ClearQueue(ctx context.Context) error {
	if err := u.queue.Clear(ctx); err != nil {
		return err
	}
	u.log.Warn().Msg("queue cleared by operator")
	return nil
}

func (u *opsUC) RecentDeliveries(ctx context.Context, limit int) ([]*model.Delivery, error) {
	return u.archive.Recent(ctx, limit)
}
