package adapter

import "context"

// RenderSpec describes one thumbnail render. Ephemeral, never persisted.
type RenderSpec struct {
	Text     string
	Width    int
	Height   int
	FontSize float64
}

type ThumbnailRenderer interface {
	// Render writes a PNG to outPath. A write failure is fatal to the
	// current job only.
	Render(ctx context.Context, spec RenderSpec, outPath string) error
}
