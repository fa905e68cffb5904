package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-media-publisher/internal/application"
	"telegram-media-publisher/internal/config"
	"telegram-media-publisher/internal/domain/model"
	"telegram-media-publisher/internal/domain/ports/adapter"
)

const pdfMimeType = "application/pdf"

var _ adapter.MediaBotAdapter = (*RealBotAdapter)(nil)

// RealBotAdapter implements both sides of the Telegram integration: the
// intake polling loop used by cmd/bot, and the download/delivery methods
// used by cmd/worker. Both processes construct it from the same config;
// the worker simply never calls StartPolling.
type RealBotAdapter struct {
	bot    *tgbotapi.BotAPI
	cfg    *config.BotConfig
	facade *application.BotFacade
	log    *zerolog.Logger
	httpc  *http.Client

	cancelPolling context.CancelFunc
}

// NewRealBotAdapter creates the adapter. facade may be nil for worker-side
// instances that only download and deliver.
func NewRealBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	return &RealBotAdapter{
		bot:    bot,
		cfg:    cfg,
		facade: facade,
		log:    logger,
		httpc:  &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

// StartPolling begins polling Telegram for updates concurrently.
// It runs until ctx is canceled.
func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	if r.facade == nil {
		return errors.New("bot facade is nil")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	workers := r.cfg.Workers
	if workers <= 0 {
		workers = 4
	}

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				select {
				case update, ok := <-updateChan:
					if !ok {
						return
					}
					if err := r.handleUpdate(ctx, update); err != nil {
						r.log.Error().Err(err).Int("worker", workerID).Msg("handle update")
					}
				case <-ctx.Done():
					return
				}
			}
		}(i + 1)
	}

	go func() {
		defer close(updateChan)
		for {
			select {
			case update := <-updates:
				select {
				case updateChan <- update:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	<-ctx.Done()
	r.bot.StopReceivingUpdates()
	wg.Wait()
	return nil
}

// StopPolling stops the polling loop gracefully.
func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

func (r *RealBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return nil
	}

	// Single authorized operator; everyone else gets a flat refusal.
	if msg.From.ID != r.cfg.OwnerID {
		return r.reply(msg.Chat.ID, "❌ You are not authorized.")
	}

	if msg.IsCommand() {
		return r.handleCommand(ctx, msg)
	}

	switch {
	case msg.Video != nil:
		return r.handleSubmission(ctx, msg, msg.Video.FileID, model.MediaKindVideo)
	case msg.Document != nil && msg.Document.MimeType == pdfMimeType:
		return r.handleSubmission(ctx, msg, msg.Document.FileID, model.MediaKindDocument)
	case msg.Document != nil:
		return r.reply(msg.Chat.ID, "❌ Send only video or PDF.")
	}
	return nil
}

func (r *RealBotAdapter) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	var (
		text string
		err  error
	)
	switch msg.Command() {
	case "start":
		text = r.facade.HandleStart(ctx)
	case "settarget":
		text, err = r.facade.HandleSetTarget(ctx, msg.CommandArguments())
	case "clearqueue":
		text, err = r.facade.HandleClearQueue(ctx)
	case "status":
		text, err = r.facade.HandleStatus(ctx)
	default:
		text = "Unknown command. Available: /start /settarget /status /clearqueue"
	}
	if err != nil {
		r.log.Error().Err(err).Str("command", msg.Command()).Msg("command failed")
		return r.reply(msg.Chat.ID, "Something went wrong, check the logs.")
	}
	return r.reply(msg.Chat.ID, text)
}

func (r *RealBotAdapter) handleSubmission(ctx context.Context, msg *tgbotapi.Message, fileID string, kind model.MediaKind) error {
	text, err := r.facade.HandleSubmission(ctx, fileID, kind, msg.Caption, msg.From.ID)
	if err != nil {
		r.log.Error().Err(err).Str("kind", string(kind)).Msg("submission failed")
		return r.reply(msg.Chat.ID, "Failed to enqueue, check the logs.")
	}
	return r.reply(msg.Chat.ID, text)
}

func (r *RealBotAdapter) reply(chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Download resolves a file_id via getFile and streams the content to destPath.
func (r *RealBotAdapter) Download(ctx context.Context, sourceRef, destPath string) error {
	file, err := r.bot.GetFile(tgbotapi.FileConfig{FileID: sourceRef})
	if err != nil {
		return fmt.Errorf("resolve file %s: %w", sourceRef, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.Link(r.bot.Token), nil)
	if err != nil {
		return err
	}
	resp, err := r.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download file: unexpected status %s", resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}
	return out.Close()
}

func (r *RealBotAdapter) SendVideo(ctx context.Context, dest model.Destination, path, caption string) error {
	v := tgbotapi.NewVideo(dest.ChatID, tgbotapi.FilePath(path))
	v.Caption = caption
	v.SupportsStreaming = true
	applyTopic(&v.BaseChat, dest)
	_, err := r.bot.Send(v)
	return err
}

func (r *RealBotAdapter) SendDocument(ctx context.Context, dest model.Destination, path, caption string) error {
	d := tgbotapi.NewDocument(dest.ChatID, tgbotapi.FilePath(path))
	d.Caption = caption
	applyTopic(&d.BaseChat, dest)
	_, err := r.bot.Send(d)
	return err
}

// applyTopic routes a send into a forum topic. This library version has no
// message_thread_id field; replying to the topic's root service message
// (whose id equals the thread id) lands the message in the topic.
func applyTopic(base *tgbotapi.BaseChat, dest model.Destination) {
	if dest.TopicID == 0 {
		return
	}
	base.ReplyToMessageID = int(dest.TopicID)
	base.AllowSendingWithoutReply = true
}
