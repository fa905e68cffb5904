// File: internal/domain/ports/adapter/telegram.go
package adapter

import (
	"context"

	"telegram-media-publisher/internal/domain/model"
)

// MediaBotAdapter is the worker-side contract toward the chat platform:
// resolve a source reference into a local file, and deliver finished
// artifacts to the configured destination.
type MediaBotAdapter interface {
	Download(ctx context.Context, sourceRef, destPath string) error
	SendVideo(ctx context.Context, dest model.Destination, path, caption string) error
	SendDocument(ctx context.Context, dest model.Destination, path, caption string) error
}
