package server

import "errors"

// ErrInvalidOrigin is returned by CheckOrigins for an origin without a scheme.
var ErrInvalidOrigin = errors.New("invalid CORS origin")

// Client facing error messages.
const (
	msgInvalidRequest   = "invalid request"
	msgNoMessage        = "No message provided"
	msgNoFilePart       = "No file part"
	msgNoSelectedFile   = "No selected file"
	msgInvalidFileType  = "Invalid file type"
	msgFileTooLarge     = "File too large"
	msgNoCoursesFound   = "No CSE courses found in the transcript"
	msgChatFailed       = "failed to generate response"
	msgTranscriptFailed = "failed to process transcript"
)
