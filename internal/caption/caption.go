// Package caption turns free-text media captions into a display title, a
// thumbnail-sized short title and a filesystem-safe filename. Everything
// here is deterministic (the clock is injectable) and never fails: any
// input that cleans down to nothing degrades to the "Untitled" fallback.
package caption

import (
	"regexp"
	"strings"
	"time"
)

const (
	// FallbackTitle is returned when a caption is empty or cleans to nothing.
	FallbackTitle    = "Untitled"
	fallbackFilename = "untitled"

	maxTitleChars    = 60
	maxFilenameChars = 80

	// DefaultShortTitleMax keeps thumbnail text to at most two wrapped lines.
	DefaultShortTitleMax = 45

	ellipsis = "..."

	// timestampLayout is second-resolution and lexically sortable, which
	// also makes filenames unique across submissions more than 1s apart.
	timestampLayout = "20060102_150405"
)

var (
	urlRe     = regexp.MustCompile(`https?://\S+`)
	hashtagRe = regexp.MustCompile(`#\w+`)

	// Bounded set of emoji blocks, kept identical to what the rest of the
	// pipeline has always produced. Code points outside these blocks pass
	// through (and are then dropped by the non-word sweep below if they
	// are not plain ASCII).
	emojiRe = regexp.MustCompile(`[\x{1F600}-\x{1F64F}` + // emoticons
		`\x{1F300}-\x{1F5FF}` + // symbols & pictographs
		`\x{1F680}-\x{1F6FF}` + // transport & map symbols
		`\x{1F1E0}-\x{1F1FF}` + // flags
		`\x{2700}-\x{27BF}` + // dingbats
		`\x{1F900}-\x{1F9FF}` + // supplemental symbols
		`\x{2600}-\x{26FF}]+`) // misc symbols

	parenRe   = regexp.MustCompile(`\(.*?\)`)
	bracketRe = regexp.MustCompile(`\[.*?\]`)
	braceRe   = regexp.MustCompile(`\{.*?\}`)

	nonWordRe    = regexp.MustCompile(`[^a-zA-Z0-9\s\-]`)
	spacesRe     = regexp.MustCompile(`\s+`)
	unsafeFileRe = regexp.MustCompile(`[^A-Za-z0-9_\-]`)
)

// Derived bundles the three strings the pipeline derives from one caption.
// Fallback reports whether the title came from the placeholder path, so
// callers (and tests) can tell a real title from a degraded one.
type Derived struct {
	Title        string
	ShortTitle   string
	SafeFilename string
	Fallback     bool
}

// Processor derives job metadata from raw captions.
type Processor struct {
	shortMax int
	now      func() time.Time
}

type Option func(*Processor)

// WithClock overrides the wall clock used for filename timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Processor) { p.now = now }
}

// WithShortTitleMax overrides the short-title character budget.
func WithShortTitleMax(n int) Option {
	return func(p *Processor) {
		if n > 0 {
			p.shortMax = n
		}
	}
}

func NewProcessor(opts ...Option) *Processor {
	p := &Processor{shortMax: DefaultShortTitleMax, now: time.Now}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Derive runs the full pipeline for one submission.
func (p *Processor) Derive(rawCaption, prefix, ext string) Derived {
	title := ExtractTitle(rawCaption)
	return Derived{
		Title:        title,
		ShortTitle:   ShortTitle(title, p.shortMax),
		SafeFilename: p.SafeFilename(title, ext, prefix),
		Fallback:     title == FallbackTitle,
	}
}

// ExtractTitle cleans a raw caption into a display title. The stages run
// in a fixed order; each one assumes the previous stage's output:
// URLs, emoji blocks, hashtags, bracketed spans, non-word characters,
// then whitespace collapse and the 60-char cap.
func ExtractTitle(caption string) string {
	if strings.TrimSpace(caption) == "" {
		return FallbackTitle
	}

	text := caption
	text = urlRe.ReplaceAllString(text, "")
	text = emojiRe.ReplaceAllString(text, "")
	text = hashtagRe.ReplaceAllString(text, "")
	text = parenRe.ReplaceAllString(text, "")
	text = bracketRe.ReplaceAllString(text, "")
	text = braceRe.ReplaceAllString(text, "")
	text = nonWordRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(spacesRe.ReplaceAllString(text, " "))

	if text == "" {
		return FallbackTitle
	}

	if r := []rune(text); len(r) > maxTitleChars {
		text = string(r[:maxTitleChars-len(ellipsis)]) + ellipsis
	}
	return text
}

// ShortTitle bounds a title for thumbnail rendering. If a cut is needed it
// prefers the last word boundary, but only when that keeps at least 60% of
// the budget; otherwise the hard cut stands.
func ShortTitle(title string, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultShortTitleMax
	}
	t := strings.TrimSpace(title)
	if t == "" {
		return FallbackTitle
	}
	r := []rune(t)
	if len(r) <= maxChars {
		return t
	}
	cut := r[:maxChars]
	if i := lastSpace(cut); i > int(float64(maxChars)*0.6) {
		cut = cut[:i]
	}
	return strings.TrimRight(string(cut), " ") + ellipsis
}

func lastSpace(r []rune) int {
	for i := len(r) - 1; i >= 0; i-- {
		if r[i] == ' ' {
			return i
		}
	}
	return -1
}

// SafeFilename composes [prefix_]title_timestamp.ext from a title, with
// both prefix and title reduced to [A-Za-z0-9_-].
func (p *Processor) SafeFilename(title, ext, prefix string) string {
	safe := sanitizeFilename(title)
	if safe == "" {
		safe = fallbackFilename
	}

	parts := make([]string, 0, 3)
	if pre := unsafeFileRe.ReplaceAllString(prefix, ""); pre != "" {
		parts = append(parts, pre)
	}
	parts = append(parts, safe, p.now().Format(timestampLayout))
	return strings.Join(parts, "_") + "." + ext
}

func sanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, " ", "_")
	name = unsafeFileRe.ReplaceAllString(name, "")
	if r := []rune(name); len(r) > maxFilenameChars {
		name = string(r[:maxFilenameChars])
	}
	return name
}
