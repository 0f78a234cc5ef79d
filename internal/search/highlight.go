package search

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/hydrahub/hydra-server/internal/domain"
)

// Highlight markers inserted around matched spans. The stored text is
// never mutated; stripping the markers reproduces it exactly.
const (
	markOpen  = "<mark>"
	markClose = "</mark>"
)

// Highlights carries annotated copies of a title's display fields.
type Highlights struct {
	Name             string `json:"name"`
	ShortDescription string `json:"short_description,omitempty"`
	Description      string `json:"description,omitempty"`
}

// HighlightTitle produces annotated copies of a title's display fields
// for a query. Fields without a match come back unchanged.
func HighlightTitle(t *domain.Title, query string) *Highlights {
	return &Highlights{
		Name:             Highlight(t.Name, query),
		ShortDescription: Highlight(t.ShortDescription, query),
		Description:      Highlight(t.Description, query),
	}
}

// Highlight returns text with every case-insensitive occurrence of the
// query wrapped in markers. When the whole query does not occur, each
// query token is highlighted instead. Overlapping spans are merged before
// insertion, so markers never nest.
func Highlight(text, query string) string {
	query = strings.TrimSpace(query)
	if text == "" || query == "" {
		return text
	}

	lower, orig := foldCase(text)
	spans := findSpans(lower, strings.ToLower(query))
	if spans == nil {
		for _, tok := range strings.Fields(strings.ToLower(query)) {
			spans = append(spans, findSpans(lower, tok)...)
		}
	}
	if len(spans) == 0 {
		return text
	}

	// Translate span offsets from the folded string back to the
	// original before merging; case mapping can change rune width.
	for i := range spans {
		spans[i].start = orig[spans[i].start]
		spans[i].end = orig[spans[i].end]
	}
	spans = mergeSpans(spans)

	var b strings.Builder
	b.Grow(len(text) + len(spans)*(len(markOpen)+len(markClose)))
	prev := 0
	for _, sp := range spans {
		b.WriteString(text[prev:sp.start])
		b.WriteString(markOpen)
		b.WriteString(text[sp.start:sp.end])
		b.WriteString(markClose)
		prev = sp.end
	}
	b.WriteString(text[prev:])
	return b.String()
}

type span struct{ start, end int }

// foldCase lowercases s rune by rune and returns, alongside the folded
// string, a table mapping every byte offset of the folded string (plus
// one past the end) to the offset of the originating rune in s. Matches
// found in the folded string stay byte-accurate against s even when a
// rune changes width under ToLower, such as U+212A shrinking to "k".
func foldCase(s string) (string, []int) {
	var b strings.Builder
	b.Grow(len(s))
	orig := make([]int, 0, len(s)+1)
	for i, r := range s {
		lo := unicode.ToLower(r)
		for n := utf8.RuneLen(lo); n > 0; n-- {
			orig = append(orig, i)
		}
		b.WriteRune(lo)
	}
	orig = append(orig, len(s))
	return b.String(), orig
}

// findSpans returns every occurrence of needle in haystack. Both must
// already be lowercased.
func findSpans(haystack, needle string) []span {
	if needle == "" {
		return nil
	}
	var spans []span
	for from := 0; ; {
		i := strings.Index(haystack[from:], needle)
		if i < 0 {
			break
		}
		start := from + i
		spans = append(spans, span{start: start, end: start + len(needle)})
		from = start + len(needle)
	}
	return spans
}

// mergeSpans sorts spans and coalesces any that touch or overlap.
func mergeSpans(spans []span) []span {
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	merged := spans[:1]
	for _, sp := range spans[1:] {
		last := &merged[len(merged)-1]
		if sp.start <= last.end {
			if sp.end > last.end {
				last.end = sp.end
			}
			continue
		}
		merged = append(merged, sp)
	}
	return merged
}
