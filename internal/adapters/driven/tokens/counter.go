// Package tokens provides TokenCounter implementations for embedding batch budgets.
package tokens

import (
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/zenji/internal/core/ports/driven"
	"github.com/custodia-labs/zenji/internal/logger"
)

// Ensure counters implement the interface.
var (
	_ driven.TokenCounter = (*Tiktoken)(nil)
	_ driven.TokenCounter = Approximate{}
)

// charsPerToken is the approximation used when no tokenizer is available.
const charsPerToken = 4

// Approximate estimates one token per four characters, rounding up.
type Approximate struct{}

// Count returns the estimated token count.
func (Approximate) Count(text string) int {
	n := utf8.RuneCountInString(text)
	return (n + charsPerToken - 1) / charsPerToken
}

// Tiktoken counts tokens with the BPE encoding of an OpenAI model.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// Count returns the exact token count.
func (t *Tiktoken) Count(text string) int {
	return len(t.enc.Encode(text, nil, nil))
}

// ForModel returns an exact counter when the model has a known encoding and
// the encoding can be loaded, and the approximation otherwise.
func ForModel(model string) driven.TokenCounter {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		logger.Debug("No tokenizer for %s, approximating: %v", model, err)
		return Approximate{}
	}
	return &Tiktoken{enc: enc}
}
