// Package thumbnail renders 1280x720 cover images: a random two-color
// vertical gradient with the short title centered on top, word-wrapped
// against real font metrics.
package thumbnail

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/fogleman/gg"
	"github.com/rs/zerolog"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"telegram-media-publisher/internal/domain/ports/adapter"
)

const (
	DefaultWidth    = 1280
	DefaultHeight   = 720
	defaultFontSize = 72

	// horizontalMargin is the total left+right text budget taken off the
	// canvas width before wrapping.
	horizontalMargin = 200
	lineHeight       = 85.0
	shadowOffset     = 4.0
)

var _ adapter.ThumbnailRenderer = (*Compositor)(nil)

type Compositor struct {
	fnt      *opentype.Font
	face     font.Face
	fontSize float64
	rnd      *rand.Rand
	log      *zerolog.Logger
}

type Option func(*Compositor)

// WithRand fixes the gradient color source, used by tests for
// deterministic output.
func WithRand(r *rand.Rand) Option {
	return func(c *Compositor) { c.rnd = r }
}

func WithFontSize(size float64) Option {
	return func(c *Compositor) {
		if size > 0 {
			c.fontSize = size
		}
	}
}

// NewCompositor builds a compositor around the embedded Go Bold face, so
// rendering never depends on fonts installed on the host.
func NewCompositor(logger *zerolog.Logger, opts ...Option) (*Compositor, error) {
	fnt, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("parse embedded font: %w", err)
	}
	c := &Compositor{
		fnt:      fnt,
		fontSize: defaultFontSize,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		log:      logger,
	}
	for _, o := range opts {
		o(c)
	}
	c.face, err = newFace(fnt, c.fontSize)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func newFace(fnt *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(fnt, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("build font face: %w", err)
	}
	return face, nil
}

// Render draws the gradient background and the centered, wrapped text,
// then writes a PNG to outPath.
func (c *Compositor) Render(ctx context.Context, spec adapter.RenderSpec, outPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	width, height := spec.Width, spec.Height
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}

	face := c.face
	if spec.FontSize > 0 && spec.FontSize != c.fontSize {
		f, err := newFace(c.fnt, spec.FontSize)
		if err != nil {
			return err
		}
		defer f.Close()
		face = f
	}

	dc := gg.NewContext(width, height)
	c.paintGradient(dc, width, height)

	dc.SetFontFace(face)
	maxLineWidth := float64(width - horizontalMargin)
	lines := wrapGreedy(dc, spec.Text, maxLineWidth)

	ascent := float64(face.Metrics().Ascent) / 64
	totalTextHeight := float64(len(lines)) * lineHeight
	startY := (float64(height) - totalTextHeight) / 2

	for i, line := range lines {
		lineWidth, _ := dc.MeasureString(line)
		x := (float64(width) - lineWidth) / 2
		y := startY + float64(i)*lineHeight + ascent

		// Shadow first, so the white copy stays readable on any gradient.
		dc.SetRGB(0, 0, 0)
		dc.DrawString(line, x+shadowOffset, y+shadowOffset)
		dc.SetRGB(1, 1, 1)
		dc.DrawString(line, x, y)
	}

	if err := dc.SavePNG(outPath); err != nil {
		return fmt.Errorf("write thumbnail %s: %w", outPath, err)
	}
	if c.log != nil {
		c.log.Debug().Str("path", outPath).Int("lines", len(lines)).Msg("thumbnail rendered")
	}
	return nil
}

// paintGradient blends two random colors top to bottom, one scanline at a
// time. The first color is sampled channel-wise from [80,160], the second
// from [160,240], so every render gets a distinct but muted background.
func (c *Compositor) paintGradient(dc *gg.Context, width, height int) {
	var c1, c2 [3]int
	for i := 0; i < 3; i++ {
		c1[i] = 80 + c.rnd.Intn(81)
		c2[i] = 160 + c.rnd.Intn(81)
	}

	dc.SetLineWidth(1)
	for y := 0; y < height; y++ {
		ratio := float64(y) / float64(height)
		r := int(float64(c1[0])*(1-ratio) + float64(c2[0])*ratio)
		g := int(float64(c1[1])*(1-ratio) + float64(c2[1])*ratio)
		b := int(float64(c1[2])*(1-ratio) + float64(c2[2])*ratio)
		dc.SetRGB255(r, g, b)
		dc.DrawLine(0, float64(y), float64(width), float64(y))
		dc.Stroke()
	}
}

// wrapGreedy packs words onto lines while the measured line width fits,
// breaking on overflow. No hyphenation, no justification; a single word
// wider than the budget gets its own overflowing line.
func wrapGreedy(dc *gg.Context, text string, maxWidth float64) []string {
	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if w, _ := dc.MeasureString(candidate); w <= maxWidth {
			current = candidate
			continue
		}
		if current != "" {
			lines = append(lines, current)
		}
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
