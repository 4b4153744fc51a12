package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/advisor"
	"github.com/poiesic/advisor/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAdvisor struct {
	reply     string
	chatErr   error
	upload    *advisor.TranscriptResponse
	uploadErr error

	message   string
	sessionID string
	document  []byte
	deadline  bool
}

func (s *stubAdvisor) HandleChat(ctx context.Context, message, sessionID string) (string, error) {
	s.message = message
	s.sessionID = sessionID
	_, s.deadline = ctx.Deadline()
	return s.reply, s.chatErr
}

func (s *stubAdvisor) HandleTranscriptUpload(ctx context.Context, document []byte, sessionID string) (*advisor.TranscriptResponse, error) {
	s.document = document
	s.sessionID = sessionID
	return s.upload, s.uploadErr
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func postJSON(handler http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

// multipartRequest builds an upload. A nil content omits the file part.
func multipartRequest(t *testing.T, filename string, content []byte, sessionID string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if content != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
		h.Set("Content-Type", "application/pdf")
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.WriteField("session_id", sessionID))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload-transcript", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	srv := New(&stubAdvisor{})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestChat(t *testing.T) {
	stub := &stubAdvisor{reply: "CSE 2231 requires CSE 2221."}
	srv := New(stub)

	rec := postJSON(srv.Handler(), "/chat", `{"message": "What are the prerequisites for CSE 2231?", "session_id": "abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CSE 2231 requires CSE 2221.", decode(t, rec)["response"])
	assert.Equal(t, "What are the prerequisites for CSE 2231?", stub.message)
	assert.Equal(t, "abc", stub.sessionID)
	assert.True(t, stub.deadline, "requests carry a deadline")
}

func TestChat_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"message":`, msgInvalidRequest},
		{"missing message", `{"session_id": "abc"}`, msgNoMessage},
		{"blank message", `{"message": "  "}`, msgNoMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAdvisor{}
			rec := postJSON(New(stub).Handler(), "/chat", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["error"])
			assert.Empty(t, stub.message, "advisor not called")
		})
	}
}

func TestChat_AdvisorError(t *testing.T) {
	stub := &stubAdvisor{chatErr: errors.New("store closed")}
	rec := postJSON(New(stub).Handler(), "/chat", `{"message": "hi"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, msgChatFailed, decode(t, rec)["error"])
}

func TestChat_NoTimeout(t *testing.T) {
	stub := &stubAdvisor{reply: "ok"}
	rec := postJSON(New(stub, WithRequestTimeout(0)).Handler(), "/chat", `{"message": "hi"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, stub.deadline)
}

func TestUploadTranscript(t *testing.T) {
	stub := &stubAdvisor{upload: &advisor.TranscriptResponse{
		Response: "Based on your transcript...",
		Courses:  []string{"Course Number: CSE2221 CSE2221 CSE2221"},
	}}
	srv := New(stub)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, multipartRequest(t, "transcript.PDF", []byte("%PDF-1.4"), "abc"))

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "Based on your transcript...", body["response"])
	assert.Equal(t, []any{"Course Number: CSE2221 CSE2221 CSE2221"}, body["courses"])
	assert.Equal(t, []byte("%PDF-1.4"), stub.document)
	assert.Equal(t, "abc", stub.sessionID)
}

func TestUploadTranscript_EmptyCourses(t *testing.T) {
	stub := &stubAdvisor{upload: &advisor.TranscriptResponse{Response: "summary"}}
	rec := httptest.NewRecorder()
	New(stub).Handler().ServeHTTP(rec, multipartRequest(t, "t.pdf", []byte("x"), ""))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, decode(t, rec)["courses"])
}

func TestUploadTranscript_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		request func(t *testing.T) *http.Request
		message string
	}{
		{
			name: "no file part",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", nil, "abc")
			},
			message: msgNoFilePart,
		},
		{
			name: "not multipart",
			request: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/upload-transcript", strings.NewReader("x"))
			},
			message: msgNoFilePart,
		},
		{
			name: "no selected file",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "", []byte{}, "abc")
			},
			message: msgNoSelectedFile,
		},
		{
			name: "wrong extension",
			request: func(t *testing.T) *http.Request {
				return multipartRequest(t, "transcript.docx", []byte("x"), "abc")
			},
			message: msgInvalidFileType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAdvisor{}
			rec := httptest.NewRecorder()
			New(stub).Handler().ServeHTTP(rec, tt.request(t))

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.message, decode(t, rec)["error"])
			assert.Nil(t, stub.document)
		})
	}
}

func TestUploadTranscript_TooLarge(t *testing.T) {
	stub := &stubAdvisor{}
	rec := httptest.NewRecorder()
	New(stub, WithMaxUploadSize(64)).Handler().ServeHTTP(rec,
		multipartRequest(t, "t.pdf", bytes.Repeat([]byte("x"), 1024), "abc"))

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, msgFileTooLarge, decode(t, rec)["error"])
}

func TestUploadTranscript_AdvisorErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		check  func(t *testing.T, message string)
	}{
		{
			name:   "no courses",
			err:    transcript.ErrNoCoursesFound,
			status: http.StatusBadRequest,
			check: func(t *testing.T, message string) {
				assert.Equal(t, msgNoCoursesFound, message)
			},
		},
		{
			name:   "unreadable pdf",
			err:    fmt.Errorf("%w: document is encrypted", transcript.ErrExtraction),
			status: http.StatusBadRequest,
			check: func(t *testing.T, message string) {
				assert.Contains(t, message, "encrypted")
			},
		},
		{
			name:   "model failure",
			err:    fmt.Errorf("%w: timeout", transcript.ErrCompletion),
			status: http.StatusInternalServerError,
			check: func(t *testing.T, message string) {
				assert.Equal(t, msgTranscriptFailed, message)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAdvisor{uploadErr: tt.err}
			rec := httptest.NewRecorder()
			New(stub).Handler().ServeHTTP(rec, multipartRequest(t, "t.pdf", []byte("x"), "abc"))

			assert.Equal(t, tt.status, rec.Code)
			message, _ := decode(t, rec)["error"].(string)
			tt.check(t, message)
		})
	}
}

func preflight(origin string) *http.Request {
	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	req.Header.Set("Origin", origin)
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	return req
}

func TestPreflight(t *testing.T) {
	t.Run("any origin by default", func(t *testing.T) {
		rec := httptest.NewRecorder()
		New(&stubAdvisor{}).Handler().ServeHTTP(rec, preflight("http://localhost:3000"))

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
		assert.Contains(t, strings.ToLower(rec.Header().Get("Access-Control-Allow-Headers")), "content-type")
	})

	t.Run("simple request carries the header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		req.Header.Set("Origin", "http://localhost:3000")
		rec := httptest.NewRecorder()
		New(&stubAdvisor{}).Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("restricted origins", func(t *testing.T) {
		handler := New(&stubAdvisor{}, WithAllowedOrigins("https://advisor.example.edu")).Handler()

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, preflight("https://advisor.example.edu"))
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "https://advisor.example.edu", rec.Header().Get("Access-Control-Allow-Origin"))

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, preflight("https://elsewhere.example.com"))
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestCheckOrigins(t *testing.T) {
	assert.NoError(t, CheckOrigins(nil))
	assert.NoError(t, CheckOrigins([]string{"*", "http://localhost:3000", "https://advisor.example.edu"}))
	assert.ErrorIs(t, CheckOrigins([]string{"advisor.example.edu"}), ErrInvalidOrigin)
}

func TestRun_Shutdown(t *testing.T) {
	srv := New(&stubAdvisor{}, WithShutdownTimeout(time.Second))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
