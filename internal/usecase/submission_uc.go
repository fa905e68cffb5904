package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"telegram-media-publisher/internal/caption"
	"telegram-media-publisher/internal/domain"
	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/repository"
	"telegram-media-publisher/internal/infra/logging"
)

// Compile-time check
var _ SubmissionUseCase = (*submissionUC)(nil)

// SubmissionUseCase turns an operator submission into a queued job.
type SubmissionUseCase interface {
	Submit(ctx context.Context, sourceRef string, kind model.MediaKind, rawCaption string, submitterID int64) (*model.MediaJob, int64, error)
}

type submissionUC struct {
	queue repository.JobQueue
	proc  *caption.Processor
	log   *zerolog.Logger
	dev   bool
}

func NewSubmissionUseCase(queue repository.JobQueue, proc *caption.Processor, logger *zerolog.Logger, dev bool) *submissionUC {
	if proc == nil {
		proc = caption.NewProcessor()
	}
	return &submissionUC{queue: queue, proc: proc, log: logger, dev: dev}
}

// Submit derives title metadata from the caption, enqueues the job and
// returns it together with the queue depth after the push.
func (u *submissionUC) Submit(ctx context.Context, sourceRef string, kind model.MediaKind, rawCaption string, submitterID int64) (*model.MediaJob, int64, error) {
	defer logging.TraceDuration(u.log, "SubmissionUC.Submit")()

	if sourceRef == "" {
		return nil, 0, domain.ErrInvalidArgument
	}
	if kind != model.MediaKindVideo && kind != model.MediaKindDocument {
		return nil, 0, domain.ErrUnsupportedKind
	}

	ext := "mp4"
	if kind == model.MediaKindDocument {
		ext = "pdf"
	}
	derived := u.proc.Derive(rawCaption, "", ext)

	job := &model.MediaJob{
		ID:           ulid.Make().String(),
		SourceRef:    sourceRef,
		Kind:         kind,
		RawCaption:   rawCaption,
		Title:        derived.Title,
		ShortTitle:   derived.ShortTitle,
		SafeFilename: derived.SafeFilename,
		SubmitterID:  submitterID,
		EnqueuedAt:   time.Now(),
	}

	if err := u.queue.Push(ctx, job); err != nil {
		return nil, 0, fmt.Errorf("enqueue job: %w", err)
	}

	depth, err := u.queue.Size(ctx)
	if err != nil {
		// The push succeeded; depth is informational only.
		u.log.Warn().Err(err).Msg("queue size after push")
		depth = -1
	}

	u.log.Info().
		Str("job_id", job.ID).
		Str("kind", string(job.Kind)).
		Str("title", job.Title).
		Bool("fallback_title", derived.Fallback).
		Str("caption", logging.Redact(rawCaption, u.dev)).
		Int64("queue_depth", depth).
		Msg("job enqueued")

	return job, depth, nil
}
