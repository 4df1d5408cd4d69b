package chunker

import "unicode"

// Span is a token's byte offset range within the source text. End is
// exclusive. Keeping offsets instead of token strings makes decoding a
// window an exact slice of the original text, so chunking is lossless and
// byte-deterministic.
type Span struct {
	Start int
	End   int
}

// Tokenize splits text into whitespace-delimited token spans. A token is a
// maximal run of non-space runes. Empty text yields no spans.
func Tokenize(text string) []Span {
	var spans []Span
	start := -1

	for i, r := range text {
		if unicode.IsSpace(r) {
			if start >= 0 {
				spans = append(spans, Span{Start: start, End: i})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		spans = append(spans, Span{Start: start, End: len(text)})
	}

	return spans
}

// Decode returns the original text covered by spans[start:end]. The slice
// runs from the first token's start to the last token's end, preserving the
// interior whitespace exactly as written.
func Decode(text string, spans []Span, start, end int) string {
	if start >= end {
		return ""
	}
	return text[spans[start].Start:spans[end-1].End]
}
