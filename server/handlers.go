package server

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/advisor"
	"github.com/poiesic/advisor/transcript"
)

type chatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

type chatResponse struct {
	Response string `json:"response"`
}

type transcriptResponse struct {
	Response string   `json:"response"`
	Courses  []string `json:"courses"`
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidRequest})
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoMessage})
		return
	}

	reply, err := s.advisor.HandleChat(c.Request.Context(), req.Message, req.SessionID)
	if err != nil {
		c.Error(err)
		if errors.Is(err, advisor.ErrEmptyMessage) {
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgChatFailed})
		return
	}

	c.JSON(http.StatusOK, chatResponse{Response: reply})
}

func (s *Server) uploadTranscript(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadSize)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": msgFileTooLarge})
		case selectedNoFile(c):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoSelectedFile})
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoFilePart})
		}
		return
	}
	if header.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgNoSelectedFile})
		return
	}
	if !allowedFile(header.Filename) {
		c.JSON(http.StatusBadRequest, gin.H{"error": msgInvalidFileType})
		return
	}

	file, err := header.Open()
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgTranscriptFailed})
		return
	}
	defer file.Close()

	document, err := io.ReadAll(file)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgTranscriptFailed})
		return
	}

	resp, err := s.advisor.HandleTranscriptUpload(c.Request.Context(), document, c.PostForm("session_id"))
	if err != nil {
		c.Error(err)
		switch {
		case errors.Is(err, transcript.ErrNoCoursesFound):
			c.JSON(http.StatusBadRequest, gin.H{"error": msgNoCoursesFound})
		case errors.Is(err, transcript.ErrExtraction):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": msgTranscriptFailed})
		}
		return
	}

	courses := resp.Courses
	if courses == nil {
		courses = []string{}
	}
	c.JSON(http.StatusOK, transcriptResponse{Response: resp.Response, Courses: courses})
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// selectedNoFile reports whether the form carried a "file" field without a
// filename. Multipart parsing files such parts under Value, not File.
func selectedNoFile(c *gin.Context) bool {
	form := c.Request.MultipartForm
	if form == nil {
		return false
	}
	_, ok := form.Value["file"]
	return ok
}

func allowedFile(filename string) bool {
	return strings.EqualFold(filepath.Ext(filename), ".pdf")
}
