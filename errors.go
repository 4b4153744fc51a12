package advisor

import "errors"

var (
	// ErrEmptyMessage is returned when a chat message has no text
	ErrEmptyMessage = errors.New("message cannot be empty")
)
