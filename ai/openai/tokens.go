package openai

import (
	"log/slog"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken does not know, such as
// locally served open models.
const fallbackEncoding = "cl100k_base"

// tokenBudget lazily loads the tokenizer for a model and trims text to a
// token limit. Loading may fetch the BPE ranks over the network; see the
// package doc. When no tokenizer can be loaded, text passes through untouched.
type tokenBudget struct {
	model string

	once    sync.Once
	encoder *tiktoken.Tiktoken
}

func newTokenBudget(model string) *tokenBudget {
	return &tokenBudget{model: model}
}

func (b *tokenBudget) load() *tiktoken.Tiktoken {
	b.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(b.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding(fallbackEncoding)
		}
		if err != nil {
			slog.Default().With("component", "openai-completer").
				Warn("tokenizer unavailable, prompts will not be truncated", "model", b.model, "err", err)
			return
		}
		b.encoder = enc
	})
	return b.encoder
}

// Truncate returns text cut to at most limit tokens and whether anything was cut.
func (b *tokenBudget) Truncate(text string, limit int) (string, bool) {
	if limit <= 0 || text == "" {
		return text, false
	}
	enc := b.load()
	if enc == nil {
		return text, false
	}
	tokens := enc.Encode(text, nil, nil)
	kept, cut := limitTokens(tokens, limit)
	if !cut {
		return text, false
	}
	return enc.Decode(kept), true
}

func limitTokens(tokens []int, limit int) ([]int, bool) {
	if len(tokens) <= limit {
		return tokens, false
	}
	return tokens[:limit], true
}
