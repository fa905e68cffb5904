package worker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"telegram-media-publisher/internal/config"
	"telegram-media-publisher/internal/domain"
	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/adapter"
	"telegram-media-publisher/internal/domain/ports/repository"
	"telegram-media-publisher/internal/infra/metrics"
)

// captionMarker decorates every delivered caption.
const captionMarker = "🎬 "

// MediaJobProcessor drains the queue one job at a time:
// fetch → download → render → merge → deliver → cleanup. Failures are
// contained per job; only context cancellation stops the loop.
type MediaJobProcessor struct {
	queue    repository.JobQueue
	dests    repository.DestinationRepository
	archive  repository.DeliveryArchive
	bot      adapter.MediaBotAdapter
	renderer adapter.ThumbnailRenderer
	remuxer  adapter.Remuxer
	cfg      config.WorkerConfig
	log      *zerolog.Logger
}

func NewMediaJobProcessor(
	queue repository.JobQueue,
	dests repository.DestinationRepository,
	archive repository.DeliveryArchive,
	bot adapter.MediaBotAdapter,
	renderer adapter.ThumbnailRenderer,
	remuxer adapter.Remuxer,
	cfg config.WorkerConfig,
	logger *zerolog.Logger,
) *MediaJobProcessor {
	return &MediaJobProcessor{
		queue:    queue,
		dests:    dests,
		archive:  archive,
		bot:      bot,
		renderer: renderer,
		remuxer:  remuxer,
		cfg:      cfg,
		log:      logger,
	}
}

// Run polls the queue until ctx is canceled. Jobs are processed strictly
// one at a time, in queue order.
func (p *MediaJobProcessor) Run(ctx context.Context) error {
	p.log.Info().Dur("poll_interval", p.cfg.PollInterval).Msg("media job processor started")

	for {
		if err := ctx.Err(); err != nil {
			p.log.Info().Msg("media job processor stopping")
			return nil
		}

		if n, err := p.queue.ReapExpired(ctx); err != nil {
			p.log.Error().Err(err).Msg("reap expired leases")
		} else if n > 0 {
			metrics.AddLeasesReaped(n)
			p.log.Warn().Int("count", n).Msg("requeued jobs with expired leases")
		}

		if depth, err := p.queue.Size(ctx); err == nil {
			metrics.SetQueueDepth(depth)
		}

		job, lease, err := p.queue.Pop(ctx)
		if err != nil {
			if !errors.Is(err, domain.ErrQueueEmpty) {
				p.log.Error().Err(err).Msg("pop job")
			}
			p.idle(ctx)
			continue
		}

		p.processOne(ctx, job, lease)
	}
}

func (p *MediaJobProcessor) idle(ctx context.Context) {
	t := time.NewTimer(p.cfg.PollInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func (p *MediaJobProcessor) processOne(ctx context.Context, job *model.MediaJob, lease repository.Lease) {
	log := p.log.With().Str("job_id", job.ID).Str("title", job.Title).Logger()
	log.Info().Str("kind", string(job.Kind)).Int("attempts", job.Attempts).Msg("processing job")
	start := time.Now()

	status, err := p.handleJob(ctx, job, &log)
	if err == nil {
		p.finish(ctx, job, lease, status, "", &log, start)
		return
	}

	log.Error().Err(err).Msg("job failed")

	// Controlled retry: push a fresh copy and release this lease. The
	// lease-expiry path only covers crashes.
	job.Attempts++
	if job.Attempts < p.cfg.MaxAttempts {
		if pushErr := p.queue.Push(ctx, job); pushErr != nil {
			log.Error().Err(pushErr).Msg("requeue for retry failed, dropping job")
			p.finish(ctx, job, lease, model.DeliveryStatusFailed, err.Error(), &log, start)
			return
		}
		if cErr := p.queue.Complete(ctx, lease); cErr != nil {
			log.Error().Err(cErr).Msg("complete lease after requeue")
		}
		log.Warn().Int("attempts", job.Attempts).Msg("job requeued for retry")
		return
	}

	p.finish(ctx, job, lease, model.DeliveryStatusFailed, err.Error(), &log, start)
}

// finish archives the outcome and removes the job permanently.
func (p *MediaJobProcessor) finish(ctx context.Context, job *model.MediaJob, lease repository.Lease,
	status model.DeliveryStatus, lastErr string, log *zerolog.Logger, start time.Time) {

	if err := p.archive.Record(ctx, &model.Delivery{
		JobID:       job.ID,
		Title:       job.Title,
		Kind:        job.Kind,
		Status:      status,
		LastError:   lastErr,
		SubmitterID: job.SubmitterID,
		EnqueuedAt:  job.EnqueuedAt,
		FinishedAt:  time.Now(),
	}); err != nil {
		log.Error().Err(err).Msg("archive delivery")
	}

	if err := p.queue.Complete(ctx, lease); err != nil {
		log.Error().Err(err).Msg("complete lease")
	}

	metrics.IncJob(string(status))
	log.Info().Str("status", string(status)).Dur("duration", time.Since(start)).Msg("job finished")
}

// handleJob runs the per-job pipeline and reports whether delivery was
// full or degraded. Any returned error means nothing was delivered.
func (p *MediaJobProcessor) handleJob(ctx context.Context, job *model.MediaJob, log *zerolog.Logger) (model.DeliveryStatus, error) {
	dest, err := p.dests.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("destination: %w", err)
	}

	inputPath := filepath.Join(p.cfg.DownloadDir, job.SafeFilename)
	thumbPath := filepath.Join(p.cfg.ThumbDir, stripExt(job.SafeFilename)+".png")
	outputPath := inputPath

	// Scratch files are owned by this job alone; removal failures are
	// cosmetic and swallowed.
	defer func() {
		for _, path := range []string{inputPath, thumbPath, outputPath} {
			_ = os.Remove(path)
		}
	}()

	stage := time.Now()
	if err := p.bot.Download(ctx, job.SourceRef, inputPath); err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	metrics.ObserveStage("download", time.Since(stage))

	stage = time.Now()
	if err := p.renderer.Render(ctx, adapter.RenderSpec{Text: job.ShortTitle}, thumbPath); err != nil {
		return "", fmt.Errorf("render thumbnail: %w", err)
	}
	metrics.ObserveStage("render", time.Since(stage))

	status := model.DeliveryStatusDelivered
	if job.Kind == model.MediaKindVideo {
		stage = time.Now()
		outputPath = filepath.Join(p.cfg.OutputDir, job.SafeFilename)
		if err := p.remuxer.AttachThumbnail(ctx, inputPath, thumbPath, outputPath); err != nil {
			// Deliver the original file rather than dropping the job.
			log.Warn().Err(err).Msg("remux failed, delivering original file")
			outputPath = inputPath
			status = model.DeliveryStatusDegraded
		}
		metrics.ObserveStage("merge", time.Since(stage))
	}

	stage = time.Now()
	caption := captionMarker + job.Title
	switch job.Kind {
	case model.MediaKindVideo:
		err = p.bot.SendVideo(ctx, dest, outputPath, caption)
	case model.MediaKindDocument:
		err = p.bot.SendDocument(ctx, dest, outputPath, caption)
	default:
		return "", domain.ErrUnsupportedKind
	}
	if err != nil {
		return "", fmt.Errorf("deliver: %w", err)
	}
	metrics.ObserveStage("deliver", time.Since(stage))

	return status, nil
}

func stripExt(name string) string {
	return strings.TrimSuffix(name, filepath.Ext(name))
}
