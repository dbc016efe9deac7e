// Package splitter divides oversized chunks into smaller chunks bounded by
// a token budget, preferring paragraph boundaries, then sentence
// boundaries, then raw character windows.
package splitter

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docsearch-mcp/internal/core/domain"
	"github.com/custodia-labs/docsearch-mcp/internal/tokens"
)

// windowScale shrinks character windows below the exact budget so the
// estimate of a hard-sliced piece always stays within it.
const windowScale = 0.9

var sentenceEnd = regexp.MustCompile(`[.!?](?:\s+|$)`)

// Split returns chunk unchanged when it fits within maxTokens, otherwise
// an ordered sequence of children. Children share the parent's PageName
// and Href, carry IDs of the form "<parentID>_part_<n>" with one zero-based
// counter per parent, and together reproduce the parent's content up to
// whitespace normalisation at the boundaries.
func Split(chunk domain.Chunk, maxTokens int) []domain.Chunk {
	if maxTokens <= 0 || tokens.Estimate(chunk.FullContent) <= maxTokens {
		return []domain.Chunk{chunk}
	}

	e := &emitter{parent: chunk, budget: maxTokens}

	for _, para := range strings.Split(chunk.FullContent, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if tokens.Estimate(para) > maxTokens {
			e.flush()
			e.splitParagraph(para)
			continue
		}
		e.pack(para, "\n\n")
	}
	e.flush()

	return e.children
}

// emitter packs text fragments greedily and assigns child IDs in emission
// order. Paragraph flushes, sentence flushes, and character slices share
// one counter so IDs stay unique and ordered.
type emitter struct {
	parent   domain.Chunk
	budget   int
	children []domain.Chunk

	buf strings.Builder
	n   int
}

// pack appends fragment to the pending buffer, flushing first when the
// joined result would exceed the budget.
func (e *emitter) pack(fragment, sep string) {
	if e.buf.Len() > 0 {
		joined := e.buf.Len() + len(sep) + len(fragment)
		if (joined+tokens.CharsPerToken-1)/tokens.CharsPerToken > e.budget {
			e.flush()
		} else {
			e.buf.WriteString(sep)
			e.buf.WriteString(fragment)
			return
		}
	}
	e.buf.WriteString(fragment)
}

// splitParagraph handles a single paragraph that exceeds the budget on its
// own, packing sentences and hard-slicing any sentence that is still too
// large.
func (e *emitter) splitParagraph(para string) {
	for _, sentence := range splitSentences(para) {
		if tokens.Estimate(sentence) > e.budget {
			e.flush()
			e.slice(sentence)
			continue
		}
		e.pack(sentence, " ")
	}
	e.flush()
}

// slice emits fixed-size, non-overlapping character windows of an
// irreducible sentence. Window boundaries retreat to the nearest rune
// start so no child ever carries a torn multi-byte rune.
func (e *emitter) slice(sentence string) {
	window := int(windowScale * float64(e.budget) * tokens.CharsPerToken)
	if window < 1 {
		window = 1
	}
	for start := 0; start < len(sentence); {
		end := start + window
		if end >= len(sentence) {
			end = len(sentence)
		} else {
			for end > start && !utf8.RuneStart(sentence[end]) {
				end--
			}
			if end == start {
				// A single rune wider than the window: keep it whole.
				_, size := utf8.DecodeRuneInString(sentence[start:])
				end = start + size
			}
		}
		e.emit(sentence[start:end])
		start = end
	}
}

func (e *emitter) flush() {
	if e.buf.Len() == 0 {
		return
	}
	text := e.buf.String()
	e.buf.Reset()
	e.emit(text)
}

func (e *emitter) emit(text string) {
	text = domain.NormaliseContent(text)
	if text == "" {
		return
	}
	e.children = append(e.children, domain.Chunk{
		ID:          fmt.Sprintf("%s_part_%d", e.parent.ID, e.n),
		PageName:    e.parent.PageName,
		Href:        e.parent.Href,
		FullContent: text,
	})
	e.n++
}

// splitSentences divides a paragraph at sentence-ending punctuation
// followed by whitespace or end of string. Text without terminal
// punctuation forms a final trailing sentence.
func splitSentences(para string) []string {
	var out []string
	start := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(para, -1) {
		s := strings.TrimSpace(para[start:loc[1]])
		if s != "" {
			out = append(out, s)
		}
		start = loc[1]
	}
	if start < len(para) {
		if s := strings.TrimSpace(para[start:]); s != "" {
			out = append(out, s)
		}
	}
	return out
}
