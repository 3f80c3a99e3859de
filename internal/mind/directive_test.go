package mind

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess(t *testing.T) {
	p := NewPostProcessor()

	tests := []struct {
		name     string
		raw      string
		segments []string
		media    string
	}{
		{"inline tag", "hey [MEDIA: cat] bye", []string{"hey bye"}, "cat"},
		{"trailing tag", "sup [MEDIA: dog]", []string{"sup"}, "dog"},
		{"case insensitive", "lol [media:Skibidi Toilet ]", []string{"lol"}, "Skibidi Toilet"},
		{"only first honored", "a [MEDIA: one]\nb [MEDIA: two]", []string{"a", "b"}, "one"},
		{"tag only", "[MEDIA: cat]", nil, "cat"},
		{"empty term is left as text", "ok [MEDIA: ] fine", []string{"ok [MEDIA: ] fine"}, ""},
		{"missing colon is left as text", "ok [MEDIA cat]", []string{"ok [MEDIA cat]"}, ""},
		{"unterminated is left as text", "ok [MEDIA: cat", []string{"ok [MEDIA: cat"}, ""},
		{"bursts", "first\r\n\n  second  \n\nthird", []string{"first", "second", "third"}, ""},
		{"blank", "  \n \n", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := p.Process(tt.raw)
			assert.Equal(t, tt.segments, r.Segments)
			assert.Equal(t, tt.media, r.MediaTerm)
		})
	}
}

func TestReplyEmpty(t *testing.T) {
	assert.True(t, Reply{}.Empty())
	assert.False(t, Reply{MediaTerm: "cat"}.Empty())
	assert.False(t, Reply{Segments: []string{"x"}}.Empty())
}

func TestSegmentSplitsLongLines(t *testing.T) {
	word := strings.Repeat("a", 9) + " "
	long := strings.Repeat(word, 450) // 4500 runes
	segs := splitSegments(long)

	assert.Len(t, segs, 3)
	total := 0
	for _, s := range segs {
		n := utf8.RuneCountInString(s)
		assert.LessOrEqual(t, n, MaxSegmentRunes)
		assert.NotEmpty(t, s)
		total += len(strings.Fields(s))
	}
	assert.Equal(t, 450, total, "no words lost")
}

func TestSegmentSplitsWithoutSpaces(t *testing.T) {
	segs := splitSegments(strings.Repeat("ж", 4001))
	assert.Len(t, segs, 3)
	assert.Equal(t, MaxSegmentRunes, utf8.RuneCountInString(segs[0]))
	assert.Equal(t, 1, utf8.RuneCountInString(segs[2]))
}

func TestProcessInvalidUTF8(t *testing.T) {
	p := NewPostProcessor()

	for name, raw := range map[string]string{
		"all invalid":        strings.Repeat("\xff", 2001),
		"mixed with a space": strings.Repeat("\xffa", 1500) + " tail",
		"multibyte and junk": strings.Repeat("ж\xfe", 1200),
	} {
		t.Run(name, func(t *testing.T) {
			var r Reply
			require.NotPanics(t, func() { r = p.Process(raw) })
			require.NotEmpty(t, r.Segments)
			for _, seg := range r.Segments {
				assert.LessOrEqual(t, utf8.RuneCountInString(seg), MaxSegmentRunes)
			}
			assert.Equal(t, strings.ReplaceAll(raw, " ", ""), strings.ReplaceAll(strings.Join(r.Segments, ""), " ", ""), "no bytes lost")
		})
	}
}
