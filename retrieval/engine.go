package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/advisor/ai"
	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/resolve"
	"github.com/poiesic/advisor/session"
	"github.com/poiesic/advisor/storage"
)

// DefaultResultCount is the number of documents retrieved per chat turn.
const DefaultResultCount = 3

// Result is the ordered outcome of one retrieval.
type Result struct {
	// Documents are full course documents, each at most once.
	Documents []string

	// Resolution holds the courses the query was resolved to.
	Resolution resolve.Resolution

	// ExactMatch is set when Documents came from the exact-match tier.
	ExactMatch bool

	Level core.Level
}

// Engine provides tiered exact and semantic retrieval over the course catalog.
type Engine struct {
	repository storage.CourseRepository
	embedder   ai.Embedder
	sessions   *session.Store
	resolver   *resolve.Resolver
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithSessions lets the engine read the student level and conversation
// of the session named in Retrieve. Without it every query is treated as
// an undergraduate query with no history.
func WithSessions(sessions *session.Store) Option {
	return func(e *Engine) error {
		e.sessions = sessions
		return nil
	}
}

// WithResolver replaces the default course resolver.
func WithResolver(resolver *resolve.Resolver) Option {
	return func(e *Engine) error {
		if resolver != nil {
			e.resolver = resolver
		}
		return nil
	}
}

// NewEngine creates a new retrieval engine.
func NewEngine(repository storage.CourseRepository, embedder ai.Embedder, opts ...Option) (*Engine, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	e := &Engine{
		repository: repository,
		embedder:   embedder,
		resolver:   resolve.NewResolver(),
		logger:     slog.Default().With("component", "retrieval"),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Retrieve returns up to nResults documents relevant to query for the
// student of sessionID. An empty sessionID retrieves undergraduate courses
// with no conversational context.
func (e *Engine) Retrieve(ctx context.Context, query, sessionID string, nResults int) (*Result, error) {
	return e.RetrieveWithMonitor(ctx, query, sessionID, nResults, nil)
}

// RetrieveWithMonitor is Retrieve with callbacks at each tier.
func (e *Engine) RetrieveWithMonitor(ctx context.Context, query, sessionID string, nResults int, monitor Monitor) (*Result, error) {
	if nResults <= 0 {
		return nil, ErrInvalidResultCount
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	var sess *session.Session
	if sessionID != "" && e.sessions != nil {
		sess = e.sessions.GetOrCreate(sessionID)
	}
	level := sess.Level()
	titles, full := core.CollectionsFor(level)

	monitor.Start(query, level)

	resolution := e.resolver.Resolve(query, sess)
	monitor.AfterResolve(resolution)

	result := &Result{Resolution: resolution, Level: level}
	found := newCollector(nResults)

	// 1. Exact metadata match
	if !resolution.IsEmpty() {
		if err := e.exactMatches(ctx, full, resolution.Courses, found, monitor); err != nil {
			return nil, err
		}
		if len(found.docs) > 0 {
			result.Documents = found.documents()
			result.ExactMatch = true
			e.logger.Debug("exact match", "session", sessionID, "courses", resolution.Courses, "documents", len(result.Documents))
			monitor.Finish(result)
			return result, nil
		}
	}

	// 2. Weighted semantic search over titles
	weighted := weightedQuery(query, resolution)
	vector, err := e.embedder.EmbedText(ctx, weighted)
	if err != nil {
		e.logger.Error("error generating embedding for query", "session", sessionID, "err", err)
		return nil, fmt.Errorf("%w: embedding query: %w", ErrRetrieval, err)
	}

	titleMatches, err := e.repository.FindSimilar(ctx, titles, vector, nResults)
	if err != nil {
		e.logger.Error("error searching titles", "collection", titles.Name(), "err", err)
		return nil, fmt.Errorf("%w: searching %s: %w", ErrRetrieval, titles.Name(), err)
	}
	monitor.AfterTitleSearch(weighted, titleMatches)

	for _, match := range titleMatches {
		if found.full() {
			break
		}
		docs, err := e.repository.GetDocuments(ctx, full, match.Document.Id)
		if err != nil {
			e.logger.Error("error fetching full document", "course", match.Document.Number, "err", err)
			return nil, fmt.Errorf("%w: fetching %s: %w", ErrRetrieval, match.Document.Number, err)
		}
		if len(docs) == 0 {
			e.logger.Warn("title without full document", "course", match.Document.Number, "collection", full.Name())
			continue
		}
		found.add(docs[0].Text)
	}

	// 3. Full-collection fallback
	if !found.full() {
		fullMatches, err := e.repository.FindSimilar(ctx, full, vector, nResults)
		if err != nil {
			e.logger.Error("error searching full documents", "collection", full.Name(), "err", err)
			return nil, fmt.Errorf("%w: searching %s: %w", ErrRetrieval, full.Name(), err)
		}
		monitor.AfterFullSearch(fullMatches)

		for _, match := range fullMatches {
			found.add(match.Document.Text)
		}
	}

	result.Documents = found.documents()
	monitor.Finish(result)
	return result, nil
}

// LookupExact runs only the exact-match tier for one course in the
// collections of level.
func (e *Engine) LookupExact(ctx context.Context, course core.CourseID, level core.Level, nResults int) ([]string, error) {
	if nResults <= 0 {
		return nil, ErrInvalidResultCount
	}
	_, full := core.CollectionsFor(level)
	found := newCollector(nResults)
	if err := e.exactMatches(ctx, full, []core.CourseID{course}, found, &noopMonitor{}); err != nil {
		return nil, err
	}
	return found.documents(), nil
}

// exactMatches filters the full collection by each course number, falling
// back to the raw digits. The limit is applied by the caller so every
// course gets its lookup.
func (e *Engine) exactMatches(ctx context.Context, full core.Collection, courses []core.CourseID, found *collector, monitor Monitor) error {
	for _, course := range courses {
		docs, err := e.repository.FindByFilter(ctx, full, storage.Filter{Number: course})
		if err != nil {
			e.logger.Error("error filtering by number", "course", course, "err", err)
			return fmt.Errorf("%w: filtering %s: %w", ErrRetrieval, course, err)
		}

		byRaw := false
		if len(docs) == 0 {
			byRaw = true
			docs, err = e.repository.FindByFilter(ctx, full, storage.Filter{NumberRaw: course.Digits()})
			if err != nil {
				e.logger.Error("error filtering by raw number", "course", course, "err", err)
				return fmt.Errorf("%w: filtering %s: %w", ErrRetrieval, course.Digits(), err)
			}
		}
		monitor.AfterExactMatch(course, docs, byRaw)

		for _, doc := range docs {
			found.addUnbounded(doc.Text)
		}
	}
	return nil
}
