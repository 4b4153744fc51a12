package transcript

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/advisor/ai"
	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/prompt"
	"github.com/poiesic/advisor/session"
)

// CourseLookup finds catalog documents by exact course number.
type CourseLookup interface {
	LookupExact(ctx context.Context, course core.CourseID, level core.Level, nResults int) ([]string, error)
}

// Result is the outcome of reading one transcript.
type Result struct {
	// Summary is the reply shown to the student.
	Summary string

	// Courses in order of appearance in the model's answer.
	Courses []core.CourseID

	// Documents holds the catalog document of each course that has one.
	Documents []string
}

// Ingestor reads uploaded transcripts into session state.
type Ingestor struct {
	extractor TextExtractor
	completer ai.Completer
	lookup    CourseLookup
	sessions  *session.Store
	logger    *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithSessions makes Ingest record transcript courses in the named session.
func WithSessions(sessions *session.Store) Option {
	return func(i *Ingestor) {
		i.sessions = sessions
	}
}

// NewIngestor creates an Ingestor.
func NewIngestor(extractor TextExtractor, completer ai.Completer, lookup CourseLookup, opts ...Option) (*Ingestor, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	if completer == nil {
		return nil, ErrCompleterRequired
	}
	if lookup == nil {
		return nil, ErrLookupRequired
	}

	i := &Ingestor{
		extractor: extractor,
		completer: completer,
		lookup:    lookup,
		logger:    slog.Default().With("component", "transcript"),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

// Ingest extracts the CSE courses from document, records them as completed
// in the session and looks each one up in the catalog. With an empty
// sessionID nothing is remembered.
func (i *Ingestor) Ingest(ctx context.Context, document []byte, sessionID string) (*Result, error) {
	text, err := i.extractor.Extract(ctx, document)
	if err != nil {
		i.logger.Warn("transcript extraction failed", "session", sessionID, "err", err)
		return nil, wrapExtraction(err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text could be extracted", ErrExtraction)
	}

	completion, err := i.completer.Complete(ctx, prompt.TranscriptSystemPrompt, prompt.TranscriptPrompt(text),
		ai.WithCallTemperature(0),
		ai.WithTruncation(),
	)
	if err != nil {
		i.logger.Error("transcript completion failed", "session", sessionID, "operation", "transcript", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrCompletion, err)
	}

	courses := core.ExtractCourseIDs(completion.Text)
	if len(courses) == 0 {
		i.logger.Info("no courses in transcript", "session", sessionID)
		return nil, ErrNoCoursesFound
	}

	level := core.LevelUndergraduate
	remember := sessionID != "" && i.sessions != nil
	if remember {
		level = i.sessions.MergeTranscriptCourses(sessionID, courses).Level()
	}

	result := &Result{
		Summary: prompt.TranscriptSummary(courses),
		Courses: courses,
	}

	for _, course := range courses {
		doc, err := i.lookupCourse(ctx, course, level)
		if err != nil {
			i.logger.Error("transcript course lookup failed", "session", sessionID, "course", course, "err", err)
			return nil, err
		}
		if doc == "" {
			i.logger.Debug("transcript course not in catalog", "course", course, "level", level)
			continue
		}
		result.Documents = append(result.Documents, doc)
	}

	if remember {
		i.sessions.Update(sessionID, prompt.TranscriptTurn, result.Summary, courses)
	}

	i.logger.Info("transcript ingested", "session", sessionID, "courses", len(courses), "documents", len(result.Documents))
	return result, nil
}

// lookupCourse searches the catalog of the given level first and then the
// other level, since a transcript lists courses of both.
func (i *Ingestor) lookupCourse(ctx context.Context, course core.CourseID, level core.Level) (string, error) {
	for _, l := range []core.Level{level, otherLevel(level)} {
		docs, err := i.lookup.LookupExact(ctx, course, l, 1)
		if err != nil {
			return "", err
		}
		if len(docs) > 0 {
			return docs[0], nil
		}
	}
	return "", nil
}

func otherLevel(level core.Level) core.Level {
	if level == core.LevelGraduate {
		return core.LevelUndergraduate
	}
	return core.LevelGraduate
}

func wrapExtraction(err error) error {
	if errors.Is(err, ErrExtraction) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrExtraction, err)
}
