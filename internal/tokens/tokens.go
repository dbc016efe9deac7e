// Package tokens approximates token counts from character length.
//
// The estimate is a fixed heuristic, not a real tokenizer: every budget
// comparison in the splitter and batcher uses the same estimate, so
// batching behaviour is deterministic and reproducible without the actual
// model tokenizer.
package tokens

// CharsPerToken is the assumed average number of characters per token.
const CharsPerToken = 4

// Estimate returns the approximate token count of text: ceil(len/4).
func Estimate(text string) int {
	return (len(text) + CharsPerToken - 1) / CharsPerToken
}
