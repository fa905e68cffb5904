// Package remux shells out to ffmpeg to attach a thumbnail to a video
// container with stream copy (no re-encode).
package remux

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/rs/zerolog"

	"telegram-media-publisher/internal/domain/ports/adapter"
)

var _ adapter.Remuxer = (*FFmpeg)(nil)

type FFmpeg struct {
	bin string
	log *zerolog.Logger
}

func NewFFmpeg(bin string, logger *zerolog.Logger) *FFmpeg {
	if bin == "" {
		bin = "ffmpeg"
	}
	return &FFmpeg{bin: bin, log: logger}
}

// buildArgs maps both inputs into one container: streams copied verbatim,
// the image marked as attached_pic so players treat it as cover art.
func buildArgs(videoPath, thumbPath, outPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", thumbPath,
		"-map", "0",
		"-map", "1",
		"-c", "copy",
		"-disposition:v:1", "attached_pic",
		outPath,
	}
}

// AttachThumbnail runs the remux. The error carries the tail of stderr; the
// worker treats any failure as degraded, never fatal to the process.
func (f *FFmpeg) AttachThumbnail(ctx context.Context, videoPath, thumbPath, outPath string) error {
	cmd := exec.CommandContext(ctx, f.bin, buildArgs(videoPath, thumbPath, outPath)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		tail := stderr.String()
		if len(tail) > 512 {
			tail = tail[len(tail)-512:]
		}
		if f.log != nil {
			f.log.Error().Err(err).Str("stderr", tail).Msg("ffmpeg remux failed")
		}
		return fmt.Errorf("ffmpeg remux: %w: %s", err, tail)
	}
	return nil
}
