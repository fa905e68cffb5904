package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"telegram-media-publisher/internal/domain"
	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/usecase"
)

// BotFacade composes usecases into high-level bot commands.
// Methods return strings so the Telegram adapter just forwards them to the chat.
type BotFacade struct {
	SubmitUC usecase.SubmissionUseCase
	OpsUC    usecase.OpsUseCase
}

func NewBotFacade(submitUC usecase.SubmissionUseCase, opsUC usecase.OpsUseCase) *BotFacade {
	return &BotFacade{SubmitUC: submitUC, OpsUC: opsUC}
}

func (b *BotFacade) HandleStart(ctx context.Context) string {
	return "✅ Bot is active.\n\nSend me videos or PDFs and I will process them automatically.\n" +
		"Commands: /settarget <group_id> <topic_id>, /status, /clearqueue"
}

// HandleSetTarget parses "/settarget <group_id> <topic_id>" arguments.
func (b *BotFacade) HandleSetTarget(ctx context.Context, args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "Usage:\n/settarget <group_id> <topic_id>", nil
	}
	chatID, err1 := strconv.ParseInt(fields[0], 10, 64)
	topicID, err2 := strconv.ParseInt(fields[1], 10, 64)
	if err1 != nil || err2 != nil {
		return "Usage:\n/settarget <group_id> <topic_id>", nil
	}

	if err := b.OpsUC.SetDestination(ctx, chatID, topicID); err != nil {
		if err == domain.ErrInvalidArgument {
			return "Group id must not be zero.", nil
		}
		return "", fmt.Errorf("set destination: %w", err)
	}
	return fmt.Sprintf("🔗 Target updated:\nGroup: %d\nTopic: %d", chatID, topicID), nil
}

func (b *BotFacade) HandleClearQueue(ctx context.Context) (string, error) {
	if err := b.OpsUC.ClearQueue(ctx); err != nil {
		return "", fmt.Errorf("clear queue: %w", err)
	}
	return "🗑 Queue cleared!", nil
}

func (b *BotFacade) HandleStatus(ctx context.Context) (string, error) {
	depth, dest, err := b.OpsUC.Status(ctx)
	if err != nil {
		return "", fmt.Errorf("status: %w", err)
	}
	sb := strings.Builder{}
	fmt.Fprintf(&sb, "Queue size: %d\n", depth)
	if dest.IsZero() {
		sb.WriteString("Target: not set (use /settarget)")
	} else {
		fmt.Fprintf(&sb, "Target: group %d, topic %d", dest.ChatID, dest.TopicID)
	}
	return sb.String(), nil
}

// HandleSubmission enqueues an incoming video or PDF and returns the
// confirmation shown to the operator.
func (b *BotFacade) HandleSubmission(ctx context.Context, sourceRef string, kind model.MediaKind, rawCaption string, submitterID int64) (string, error) {
	job, depth, err := b.SubmitUC.Submit(ctx, sourceRef, kind, rawCaption, submitterID)
	if err != nil {
		if err == domain.ErrUnsupportedKind {
			return "❌ Send only video or PDF.", nil
		}
		return "", fmt.Errorf("submit: %w", err)
	}
	return fmt.Sprintf("📥 Added to queue\n\nTitle: %s\nShort: %s\nFilename: %s\nQueue size: %d",
		job.Title, job.ShortTitle, job.SafeFilename, depth), nil
}
