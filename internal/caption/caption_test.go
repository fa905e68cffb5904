package caption

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2025, 11, 15, 12, 34, 56, 0, time.UTC)
}

func TestExtractTitle(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", "Untitled"},
		{"blank", "   ", "Untitled"},
		{"plain", "My Trip Vlog", "My Trip Vlog"},
		{"kitchen sink", "Cool Clip (2024) #fun https://x.co/y \U0001F600", "Cool Clip"},
		{"brackets", "My Trip Vlog (Part 1) #travel", "My Trip Vlog"},
		{"square and curly", "Talk [draft] {v2} notes", "Talk notes"},
		{"url only", "https://example.com/watch?v=1", "Untitled"},
		{"emoji only", "\U0001F680\U0001F680", "Untitled"},
		{"punctuation stripped", "Hello, World!", "Hello World"},
		{"hyphen kept", "Pre-release build", "Pre-release build"},
		{"whitespace collapsed", "a   b\t\tc", "a b c"},
		// Emoji outside the documented blocks survive the emoji stage but
		// are swept by the non-word stage.
		{"new emoji swept", "Fresh \U0001FAE0 drop", "Fresh drop"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, ExtractTitle(tc.in))
		})
	}
}

func TestExtractTitleLengthBound(t *testing.T) {
	long := strings.Repeat("word ", 40)
	got := ExtractTitle(long)
	require.LessOrEqual(t, len([]rune(got)), 60)
	require.True(t, strings.HasSuffix(got, "..."))
	require.Equal(t, 60, len([]rune(got)))

	for _, s := range []string{"", "short", long, "#tag https://x.co \U0001F600", strings.Repeat("x", 500)} {
		require.LessOrEqual(t, len([]rune(ExtractTitle(s))), 60)
	}
}

func TestShortTitle(t *testing.T) {
	t.Run("identity under limit", func(t *testing.T) {
		require.Equal(t, "My Trip Vlog", ShortTitle("My Trip Vlog", 45))
	})

	t.Run("word boundary cut", func(t *testing.T) {
		in := "A very long descriptive title that exceeds the limit for sure"
		got := ShortTitle(in, 45)
		require.True(t, strings.HasSuffix(got, "..."))
		require.LessOrEqual(t, len([]rune(got)), 48)
		// No torn word before the ellipsis.
		trimmed := strings.TrimSuffix(got, "...")
		require.True(t, strings.HasSuffix(in[:len(trimmed)+1], trimmed+" "))
	})

	t.Run("hard cut when boundary too early", func(t *testing.T) {
		in := "Short " + strings.Repeat("x", 60)
		got := ShortTitle(in, 45)
		// Last space sits at index 5, well under 0.6*45, so the hard cut stands.
		require.Equal(t, 45+3, len([]rune(got)))
	})

	t.Run("empty falls back", func(t *testing.T) {
		require.Equal(t, "Untitled", ShortTitle("  ", 45))
	})
}

func TestSafeFilename(t *testing.T) {
	p := NewProcessor(WithClock(fixedClock))

	got := p.SafeFilename("Clean Title!!", "mp4", "")
	require.Equal(t, "Clean_Title_20251115_123456.mp4", got)
	require.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9_\-.]+$`), got)
	require.Regexp(t, regexp.MustCompile(`\d{8}_\d{6}\.mp4$`), got)

	t.Run("prefix sanitized", func(t *testing.T) {
		got := p.SafeFilename("Talk", "pdf", "ops team!")
		require.Equal(t, "opsteam_Talk_20251115_123456.pdf", got)
	})

	t.Run("empty title substitutes untitled", func(t *testing.T) {
		got := p.SafeFilename("!!!", "mp4", "")
		require.Equal(t, "untitled_20251115_123456.mp4", got)
	})

	t.Run("caps long titles", func(t *testing.T) {
		got := p.SafeFilename(strings.Repeat("a", 200), "mp4", "")
		require.LessOrEqual(t, len(got), 80+1+len("20251115_123456")+len(".mp4"))
	})
}

func TestDerive(t *testing.T) {
	p := NewProcessor(WithClock(fixedClock))

	d := p.Derive("My Trip Vlog (Part 1) #travel", "", "mp4")
	require.Equal(t, "My Trip Vlog", d.Title)
	require.Equal(t, "My Trip Vlog", d.ShortTitle)
	require.Equal(t, "My_Trip_Vlog_20251115_123456.mp4", d.SafeFilename)
	require.False(t, d.Fallback)

	d = p.Derive("", "", "mp4")
	require.Equal(t, "Untitled", d.Title)
	require.Equal(t, "Untitled", d.ShortTitle)
	require.Equal(t, "Untitled_20251115_123456.mp4", d.SafeFilename)
	require.True(t, d.Fallback)

	// Derived strings are never empty, whatever the caption.
	for _, raw := range []string{"", "   ", "\U0001F600", "###", "(only brackets)"} {
		d := p.Derive(raw, "", "mp4")
		require.NotEmpty(t, d.Title)
		require.NotEmpty(t, d.ShortTitle)
		require.NotEmpty(t, d.SafeFilename)
	}
}
