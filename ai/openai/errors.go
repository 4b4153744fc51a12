package openai

import "errors"

var (
	// ErrEmptyEmbedding is returned when the service answers without vectors.
	ErrEmptyEmbedding = errors.New("embedding service returned no vectors")

	// ErrNoChoices is returned when the model answers without a choice.
	ErrNoChoices = errors.New("completion service returned no choices")
)
