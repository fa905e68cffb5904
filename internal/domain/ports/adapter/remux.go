package adapter

import "context"

// Remuxer attaches a thumbnail to a media container without re-encoding
// the audio/video streams.
type Remuxer interface {
	AttachThumbnail(ctx context.Context, videoPath, thumbPath, outPath string) error
}
