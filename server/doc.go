// Package server exposes the advisor over HTTP.
//
// Routes:
//
//	POST /chat               {"message", "session_id"} -> {"response"}
//	POST /upload-transcript  multipart "file" (PDF) + "session_id" -> {"response", "courses"}
//	GET  /health             {"status": "ok"}
//
// Errors are reported as {"error": "..."} with a 400 status for bad input
// and unreadable transcripts, and 500 for everything else.
package server
