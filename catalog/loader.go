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

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/advisor/ai"
	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/storage"
)

const (
	// DefaultBatchSize is the number of documents embedded per request.
	DefaultBatchSize = 100
	// DefaultMaxRetries is the number of attempts per embedding batch.
	DefaultMaxRetries = 3
	// DefaultRetryDelay is the delay before the first retry of a batch.
	DefaultRetryDelay = time.Second
)

// Loader rebuilds the course collections from catalog entries.
type Loader struct {
	repository storage.CourseRepository
	embedder   ai.Embedder
	pool       *ants.Pool
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	progress   io.Writer
	logger     *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader) error

// WithPoolSize sets the number of embedding batches processed concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if l.pool != nil {
			l.pool.Release()
		}
		l.pool = pool
		return nil
	}
}

// WithBatchSize sets how many documents go into one embedding request.
func WithBatchSize(size int) Option {
	return func(l *Loader) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		l.batchSize = size
		return nil
	}
}

// WithRetry sets the attempts per batch and the initial backoff delay.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(l *Loader) error {
		if maxAttempts <= 0 {
			return ErrInvalidMaxAttempts
		}
		l.maxRetries = maxAttempts
		l.retryDelay = baseDelay
		return nil
	}
}

// WithProgress writes progress lines to w while loading.
func WithProgress(w io.Writer) Option {
	return func(l *Loader) error {
		l.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) error {
		if logger == nil {
			logger = slog.Default()
		}
		l.logger = logger
		return nil
	}
}

// NewLoader creates a loader that stores documents in repository using
// embeddings from embedder. Call Release when done.
func NewLoader(repository storage.CourseRepository, embedder ai.Embedder, opts ...Option) (*Loader, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	l := &Loader{
		repository: repository,
		embedder:   embedder,
		batchSize:  DefaultBatchSize,
		maxRetries: DefaultMaxRetries,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(l); err != nil {
			l.Release()
			return nil, err
		}
	}

	if l.pool == nil {
		pool, err := ants.NewPool(max(runtime.NumCPU()/2, 1))
		if err != nil {
			return nil, err
		}
		l.pool = pool
	}
	l.logger = l.logger.With("component", "catalog-loader")

	return l, nil
}

// Release stops the worker pool.
func (l *Loader) Release() {
	if l.pool != nil {
		l.pool.Release()
	}
}

// Load replaces the contents of all four collections with documents built
// from courses. It returns the number of documents stored per collection.
// Duplicate course numbers keep the first entry.
func (l *Loader) Load(ctx context.Context, courses []core.Course) (map[core.Collection]int, error) {
	grouped := make(map[core.Collection][]*core.CourseDocument)
	seen := make(map[core.CourseID]bool, len(courses))
	total := 0
	for i := range courses {
		course := courses[i]
		if err := core.ValidateCourse(&course); err != nil {
			return nil, fmt.Errorf("course %d: %w", i, err)
		}
		if seen[course.Number] {
			l.logger.Warn("skipping duplicate course", "course", course.Number)
			continue
		}
		seen[course.Number] = true

		title, full := BuildDocuments(course)
		titleCollection, fullCollection := core.CollectionsFor(course.Level)
		grouped[titleCollection] = append(grouped[titleCollection], title)
		grouped[fullCollection] = append(grouped[fullCollection], full)
		total += 2
	}

	for _, collection := range core.AllCollections() {
		if err := l.repository.DropCollection(ctx, collection); err != nil {
			return nil, fmt.Errorf("failed to drop collection %s: %w", collection.Name(), err)
		}
	}

	l.logger.Info("loading catalog", "courses", len(seen), "documents", total)

	tracker := NewProgressTracker(l.progress, total, l.batchSize)
	tracker.Start()
	defer tracker.Finish()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		errs   []error
		counts = make(map[core.Collection]int, 4)
	)
	fail := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
		cancel()
	}

submit:
	for _, collection := range core.AllCollections() {
		for batch := range slices.Chunk(grouped[collection], l.batchSize) {
			wg.Add(1)
			err := l.pool.Submit(func() {
				defer wg.Done()
				if err := l.storeBatch(ctx, collection, batch); err != nil {
					fail(err)
					return
				}
				mu.Lock()
				counts[collection] += len(batch)
				mu.Unlock()
				tracker.Increment(len(batch))
			})
			if err != nil {
				wg.Done()
				fail(err)
				break submit
			}
		}
	}
	wg.Wait()

	if len(errs) > 0 {
		return counts, errors.Join(errs...)
	}

	for _, collection := range core.AllCollections() {
		l.logger.Info("collection loaded", "collection", collection.Name(), "documents", counts[collection])
	}
	return counts, nil
}

// storeBatch embeds one batch, normalizes the vectors and stores the documents.
func (l *Loader) storeBatch(ctx context.Context, collection core.Collection, docs []*core.CourseDocument) error {
	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = l.embedder.EmbedTexts(ctx, texts)
		return err
	}, l.maxRetries, l.retryDelay)
	if err != nil {
		return fmt.Errorf("failed to embed %s batch after %d attempts: %w", collection.Name(), l.maxRetries, err)
	}

	if len(embeddings) != len(docs) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(docs), len(embeddings))
	}

	for i, doc := range docs {
		doc.Vector = NormalizeVector(embeddings[i])
	}

	if _, err := l.repository.AddDocuments(ctx, collection, docs...); err != nil {
		return fmt.Errorf("failed to store %s batch: %w", collection.Name(), err)
	}
	return nil
}

// Verification is the outcome of checking one course number after a load.
type Verification struct {
	Number  core.CourseID
	Found   bool
	Level   core.Level
	Heading string // first line of the full document
}

// Verify looks up each course number by exact match in the full collections.
func (l *Loader) Verify(ctx context.Context, numbers ...core.CourseID) ([]Verification, error) {
	results := make([]Verification, 0, len(numbers))
	for _, number := range numbers {
		result := Verification{Number: number}
		for _, level := range []core.Level{core.LevelUndergraduate, core.LevelGraduate} {
			_, full := core.CollectionsFor(level)
			docs, err := l.repository.FindByFilter(ctx, full, storage.Filter{Number: number})
			if err != nil {
				return nil, fmt.Errorf("failed to verify %s: %w", number, err)
			}
			if len(docs) > 0 {
				result.Found = true
				result.Level = level
				result.Heading, _, _ = strings.Cut(docs[0].Text, "\n")
				break
			}
		}
		if !result.Found {
			l.logger.Warn("course not found after load", "course", number)
		}
		results = append(results, result)
	}
	return results, nil
}
