package metadata

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"

	"github.com/iPoetDev/browsechat-sub001/internal/types"
)

// TokenCounter reports LLM token counts for segment text. It is a separate
// concern from Extract: metadata stays a pure record, token totals are
// computed on demand for stats reporting.
type TokenCounter struct {
	tokenizer *tiktoken.Tiktoken
}

// NewTokenCounter creates a counter using the encoding for the given model.
// Unknown models fall back to cl100k_base.
func NewTokenCounter(model string) (*TokenCounter, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &TokenCounter{tokenizer: enc}, nil
}

// Count returns the token count for a string.
func (c *TokenCounter) Count(text string) int {
	return len(c.tokenizer.Encode(text, nil, nil))
}

// CountSegments returns the total token count across the given segments.
func (c *TokenCounter) CountSegments(segments []types.Segment) int {
	var total int
	for _, seg := range segments {
		total += c.Count(seg.Content)
	}
	return total
}
