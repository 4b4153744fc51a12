// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/advisor/ai"
	"github.com/poiesic/advisor/ai/openai"
	"github.com/poiesic/advisor/catalog"
	"github.com/poiesic/advisor/prompt"
	"github.com/poiesic/advisor/resolve"
	"github.com/poiesic/advisor/retrieval"
	"github.com/poiesic/advisor/session"
	"github.com/poiesic/advisor/storage"
	"github.com/poiesic/advisor/storage/badger"
	"github.com/poiesic/advisor/transcript"
)

// Advisor answers student questions about the course catalog and keeps a
// short conversational memory per session.
type Advisor struct {
	backend    *badger.Backend
	repository storage.CourseRepository
	provider   ai.AIProvider
	sessions   *session.Store
	engine     *retrieval.Engine
	assembler  *prompt.Assembler
	ingestor   *transcript.Ingestor
	nResults   int
	logger     *slog.Logger
}

// TranscriptResponse is the reply to a transcript upload.
type TranscriptResponse struct {
	// Response summarizes the completed courses for the student.
	Response string
	// Courses holds the catalog document of every completed course found.
	Courses []string
}

// Option configures an Advisor.
type Option func(*advisorOptions)

type advisorOptions struct {
	aiConfig    *ai.Config
	provider    ai.AIProvider
	extractor   transcript.TextExtractor
	inMemory    bool
	sessionOpts []session.Option
	nResults    int
	logger      *slog.Logger
}

// WithAIConfig sets the configuration of the OpenAI compatible provider.
func WithAIConfig(config *ai.Config) Option {
	return func(o *advisorOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The Advisor closes it on Close.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *advisorOptions) {
		o.provider = provider
	}
}

// WithExtractor sets how text is pulled out of uploaded transcripts.
// Default is transcript.PDFExtractor.
func WithExtractor(extractor transcript.TextExtractor) Option {
	return func(o *advisorOptions) {
		o.extractor = extractor
	}
}

// WithInMemory keeps the course collections in memory. The path is ignored.
func WithInMemory() Option {
	return func(o *advisorOptions) {
		o.inMemory = true
	}
}

// WithSessionExpiry sets how long an idle session is kept.
func WithSessionExpiry(expiry time.Duration) Option {
	return func(o *advisorOptions) {
		o.sessionOpts = append(o.sessionOpts, session.WithExpiry(expiry))
	}
}

// WithHistoryLimit sets how many turns each session remembers.
func WithHistoryLimit(limit int) Option {
	return func(o *advisorOptions) {
		o.sessionOpts = append(o.sessionOpts, session.WithHistoryLimit(limit))
	}
}

// WithResultCount sets how many catalog documents each chat turn retrieves.
func WithResultCount(n int) Option {
	return func(o *advisorOptions) {
		o.nResults = n
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *advisorOptions) {
		o.logger = logger
	}
}

// NewAdvisor opens the course store at filePath and wires the advising pipeline.
func NewAdvisor(filePath string, opts ...Option) (*Advisor, error) {
	options := &advisorOptions{
		aiConfig: ai.DefaultConfig(),
		nResults: retrieval.DefaultResultCount,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.nResults <= 0 {
		return nil, retrieval.ErrInvalidResultCount
	}
	if options.extractor == nil {
		options.extractor = transcript.PDFExtractor{}
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	repository, err := badger.NewCourseRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			repository.Close()
			backend.Close()
			return nil, err
		}
	}

	sessions := session.NewStore(append([]session.Option{session.WithLogger(options.logger)}, options.sessionOpts...)...)

	a := &Advisor{
		backend:    backend,
		repository: repository,
		provider:   provider,
		sessions:   sessions,
		assembler:  prompt.NewAssembler(),
		nResults:   options.nResults,
		logger:     options.logger.With("component", "advisor"),
	}

	a.engine, err = retrieval.NewEngine(repository, provider.Embedder(),
		retrieval.WithSessions(sessions),
		retrieval.WithLogger(options.logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.ingestor, err = transcript.NewIngestor(options.extractor, provider.Completer(), a.engine,
		transcript.WithSessions(sessions),
		transcript.WithLogger(options.logger),
	)
	if err != nil {
		a.Close()
		return nil, err
	}

	return a, nil
}

// HandleChat answers one chat message. Messages from the same session are
// handled one at a time. An empty sessionID answers without remembering
// anything. A failed completion is answered with an apology, not an error.
func (a *Advisor) HandleChat(ctx context.Context, message, sessionID string) (string, error) {
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}

	stateful := sessionID != ""
	if stateful {
		unlock := a.sessions.Lock(sessionID)
		defer unlock()
	}

	if level, ok := resolve.DetectLevel(message); ok {
		reply := prompt.LevelAcknowledgement(level)
		if stateful {
			a.sessions.SetStudentLevel(sessionID, level)
			a.sessions.Update(sessionID, message, reply, nil)
		}
		a.logger.Info("student level set", "session", sessionID, "level", level)
		return reply, nil
	}

	var sess *session.Session
	if stateful {
		sess = a.sessions.GetOrCreate(sessionID)
	}

	result, err := a.engine.Retrieve(ctx, message, sessionID, a.nResults)
	if err != nil {
		a.logger.Error("retrieval failed", "session", sessionID, "operation", "chat", "err", err)
		return "", err
	}

	userPrompt, mentioned := a.assembler.Assemble(message, result.Documents, sess)

	reply := prompt.ApologyResponse
	completion, err := a.provider.Completer().Complete(ctx, prompt.SystemPrompt, userPrompt)
	if err != nil {
		a.logger.Error("completion failed", "session", sessionID, "operation", "chat", "err", err)
	} else {
		reply = completion.Text
	}

	if stateful {
		a.sessions.Update(sessionID, message, reply, mentioned)
	}

	a.logger.Debug("chat answered", "session", sessionID,
		"documents", len(result.Documents), "exactMatch", result.ExactMatch, "mentioned", mentioned)
	return reply, nil
}

// HandleTranscriptUpload reads the completed courses out of an uploaded
// transcript, remembers them for the session and returns their catalog entries.
func (a *Advisor) HandleTranscriptUpload(ctx context.Context, document []byte, sessionID string) (*TranscriptResponse, error) {
	if len(document) == 0 {
		return nil, fmt.Errorf("%w: empty upload", transcript.ErrExtraction)
	}

	if sessionID != "" {
		unlock := a.sessions.Lock(sessionID)
		defer unlock()
	}

	result, err := a.ingestor.Ingest(ctx, document, sessionID)
	if err != nil {
		return nil, err
	}

	return &TranscriptResponse{
		Response: result.Summary,
		Courses:  result.Documents,
	}, nil
}

// Repository returns the course document store.
func (a *Advisor) Repository() storage.CourseRepository {
	return a.repository
}

// Engine returns the retrieval engine used for chat turns.
func (a *Advisor) Engine() *retrieval.Engine {
	return a.engine
}

// Sessions returns the session store.
func (a *Advisor) Sessions() *session.Store {
	return a.sessions
}

// NewLoader creates a catalog loader writing into this advisor's store.
// The caller releases it.
func (a *Advisor) NewLoader(opts ...catalog.Option) (*catalog.Loader, error) {
	return catalog.NewLoader(a.repository, a.provider.Embedder(), opts...)
}

// Close releases the AI provider, the sessions and the store.
func (a *Advisor) Close() error {
	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}

	if err := a.sessions.Close(); err != nil {
		a.logger.Error("error closing session store", "err", err)
	}

	if err := a.repository.Close(); err != nil {
		a.logger.Error("error closing course repository", "err", err)
		return err
	}

	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
