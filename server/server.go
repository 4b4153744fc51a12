package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/poiesic/advisor"
)

const (
	// DefaultRequestTimeout bounds each request's calls to the model and store.
	DefaultRequestTimeout = 60 * time.Second
	// DefaultMaxUploadSize caps transcript uploads.
	DefaultMaxUploadSize = 16 << 20
	// DefaultShutdownTimeout is how long Run waits for in-flight requests.
	DefaultShutdownTimeout = 10 * time.Second
)

// Advisor is the part of advisor.Advisor the HTTP layer calls.
type Advisor interface {
	HandleChat(ctx context.Context, message, sessionID string) (string, error)
	HandleTranscriptUpload(ctx context.Context, document []byte, sessionID string) (*advisor.TranscriptResponse, error)
}

// Server routes HTTP requests to an Advisor.
type Server struct {
	advisor         Advisor
	router          *gin.Engine
	requestTimeout  time.Duration
	maxUploadSize   int64
	shutdownTimeout time.Duration
	allowedOrigins  []string
	logger          *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithRequestTimeout sets the per-request deadline. Zero disables it.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = timeout
	}
}

// WithMaxUploadSize sets the largest accepted transcript in bytes.
func WithMaxUploadSize(size int64) Option {
	return func(s *Server) {
		if size > 0 {
			s.maxUploadSize = size
		}
	}
}

// WithShutdownTimeout sets how long Run waits for in-flight requests.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		s.shutdownTimeout = timeout
	}
}

// WithAllowedOrigins restricts cross-origin browser access. Origins must
// carry an http or https scheme; see CheckOrigins. Default allows any origin.
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds the router for adv.
func New(adv Advisor, opts ...Option) *Server {
	s := &Server{
		advisor:         adv,
		requestTimeout:  DefaultRequestTimeout,
		maxUploadSize:   DefaultMaxUploadSize,
		shutdownTimeout: DefaultShutdownTimeout,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "http")

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(s.logger))
	router.Use(allowBrowsers(s.allowedOrigins))
	router.Use(requestTimeout(s.requestTimeout))

	router.GET("/health", s.health)
	router.POST("/chat", s.chat)
	router.POST("/upload-transcript", s.uploadTranscript)

	s.router = router
	return s
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", "timeout", s.shutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
