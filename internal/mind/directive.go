package mind

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxSegmentRunes is Discord's message length limit.
const MaxSegmentRunes = 2000

// DirectiveKind identifies an instruction embedded in generated text.
type DirectiveKind int

const (
	DirectiveMedia DirectiveKind = iota + 1
)

// Directive is one extracted instruction.
type Directive struct {
	Kind DirectiveKind
	Arg  string
}

// DirectiveParser pulls its tags out of text and returns what is left.
// Malformed tags must be left in place.
type DirectiveParser interface {
	Extract(text string) (rest string, found []Directive)
}

// mediaTag matches [MEDIA: term] with any horizontal whitespace hugging it.
var mediaTag = regexp.MustCompile(`(?i)[ \t]*\[media:[ \t]*([^\[\]\n]*[^\[\]\n \t])[ \t]*\][ \t]*`)

// MediaTagParser handles [MEDIA: <term>]. Only the first tag is honored; every well-formed tag is stripped.
type MediaTagParser struct{}

// Extract implements DirectiveParser.
func (MediaTagParser) Extract(text string) (string, []Directive) {
	var found []Directive
	rest := mediaTag.ReplaceAllStringFunc(text, func(tag string) string {
		if len(found) == 0 {
			if m := mediaTag.FindStringSubmatch(tag); len(m) == 2 {
				found = append(found, Directive{Kind: DirectiveMedia, Arg: strings.TrimSpace(m[1])})
			}
		}
		return " "
	})
	return rest, found
}

// Reply is the post-processed generation result.
type Reply struct {
	Segments  []string
	MediaTerm string // empty when no media directive was honored
}

// HasMedia reports whether a media directive survived parsing.
func (r Reply) HasMedia() bool { return r.MediaTerm != "" }

// Empty reports whether there is nothing to deliver.
func (r Reply) Empty() bool { return len(r.Segments) == 0 && !r.HasMedia() }

// PostProcessor extracts directives and splits the rest into burst segments.
type PostProcessor struct {
	parsers []DirectiveParser
}

// NewPostProcessor creates a processor; with no parsers it uses MediaTagParser.
func NewPostProcessor(parsers ...DirectiveParser) *PostProcessor {
	if len(parsers) == 0 {
		parsers = []DirectiveParser{MediaTagParser{}}
	}
	return &PostProcessor{parsers: parsers}
}

// Process turns raw generated text into ordered segments plus an optional media term.
func (p *PostProcessor) Process(raw string) Reply {
	var r Reply
	text := raw
	for _, parser := range p.parsers {
		var found []Directive
		text, found = parser.Extract(text)
		for _, d := range found {
			if d.Kind == DirectiveMedia && r.MediaTerm == "" {
				r.MediaTerm = d.Arg
			}
		}
	}
	r.Segments = splitSegments(text)
	return r
}

// splitSegments splits text on line breaks into trimmed, non-empty pieces no longer than MaxSegmentRunes.
func splitSegments(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, splitRunes(line, MaxSegmentRunes)...)
	}
	return out
}

// splitRunes cuts s into chunks of at most limit runes, preferring the last space.
// Invalid bytes count as one rune each.
func splitRunes(s string, limit int) []string {
	var result []string
	for utf8.RuneCountInString(s) > limit {
		end := runeOffset(s, limit)
		cut := strings.LastIndex(s[:end], " ")
		if cut <= 0 {
			cut = end
		}
		result = append(result, strings.TrimSpace(s[:cut]))
		s = strings.TrimSpace(s[cut:])
	}
	if s != "" {
		result = append(result, s)
	}
	return result
}

// runeOffset returns the byte offset of the n-th rune of s, or len(s).
func runeOffset(s string, n int) int {
	count := 0
	for i := range s {
		if count == n {
			return i
		}
		count++
	}
	return len(s)
}
