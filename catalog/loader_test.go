package catalog

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/advisor/ai/mock"
	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/storage"
	"github.com/poiesic/advisor/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRepository(t *testing.T) storage.CourseRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func setupLoader(t *testing.T, repo storage.CourseRepository, embedder *mock.MockEmbedder, opts ...Option) *Loader {
	t.Helper()
	opts = append([]Option{WithPoolSize(2), WithRetry(2, time.Millisecond)}, opts...)
	loader, err := NewLoader(repo, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(loader.Release)
	return loader
}

func sampleCourses() []core.Course {
	return []core.Course{
		{Number: "CSE2221", Title: "Software I", Description: "Components.", Units: "4", Level: core.LevelUndergraduate},
		{Number: "CSE2231", Title: "Software II", Description: "Implementations.", Units: "4", Level: core.LevelUndergraduate},
		{Number: "CSE3901", Title: "Web Applications", Description: "Web apps.", Units: "4", Level: core.LevelUndergraduate},
		{Number: "CSE5911", Title: "Capstone", Description: "Team project.", Units: "4", Level: core.LevelGraduate},
	}
}

func TestNewLoader_Validation(t *testing.T) {
	repo := setupRepository(t)

	_, err := NewLoader(nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewLoader(repo, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewLoader(repo, mock.NewMockEmbedder(), WithBatchSize(0))
	assert.Error(t, err)

	_, err = NewLoader(repo, mock.NewMockEmbedder(), WithRetry(0, time.Millisecond))
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	embedder := mock.NewMockEmbedder()
	var progress bytes.Buffer
	loader := setupLoader(t, repo, embedder, WithBatchSize(2), WithProgress(&progress))

	counts, err := loader.Load(ctx, sampleCourses())
	require.NoError(t, err)

	ugTitle, ugFull := core.CollectionsFor(core.LevelUndergraduate)
	gTitle, gFull := core.CollectionsFor(core.LevelGraduate)
	assert.Equal(t, 3, counts[ugTitle])
	assert.Equal(t, 3, counts[ugFull])
	assert.Equal(t, 1, counts[gTitle])
	assert.Equal(t, 1, counts[gFull])

	for collection, expected := range counts {
		stored, err := repo.CountDocuments(ctx, collection)
		require.NoError(t, err)
		assert.Equal(t, expected, stored, collection.Name())
	}

	docs, err := repo.FindByFilter(ctx, ugFull, storage.Filter{Number: "CSE3901"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.InDelta(t, 1.0, magnitude(docs[0].Vector), 1e-5, "stored vectors are unit length")
	assert.Contains(t, docs[0].Text, "Description: Web apps.")

	assert.Contains(t, progress.String(), "8/8")
	assert.Len(t, embedder.Texts(), 8)
}

func TestLoad_ReplacesPreviousContents(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	loader := setupLoader(t, repo, mock.NewMockEmbedder())

	_, err := loader.Load(ctx, sampleCourses())
	require.NoError(t, err)

	counts, err := loader.Load(ctx, sampleCourses()[:1])
	require.NoError(t, err)

	_, ugFull := core.CollectionsFor(core.LevelUndergraduate)
	_, gFull := core.CollectionsFor(core.LevelGraduate)
	assert.Equal(t, 1, counts[ugFull])

	stored, err := repo.CountDocuments(ctx, ugFull)
	require.NoError(t, err)
	assert.Equal(t, 1, stored)

	stored, err = repo.CountDocuments(ctx, gFull)
	require.NoError(t, err)
	assert.Zero(t, stored)
}

func TestLoad_SkipsDuplicates(t *testing.T) {
	repo := setupRepository(t)
	loader := setupLoader(t, repo, mock.NewMockEmbedder())

	courses := append(sampleCourses(), core.Course{Number: "CSE2221", Title: "Again", Level: core.LevelUndergraduate})
	counts, err := loader.Load(context.Background(), courses)
	require.NoError(t, err)

	_, ugFull := core.CollectionsFor(core.LevelUndergraduate)
	assert.Equal(t, 3, counts[ugFull])

	docs, err := repo.FindByFilter(context.Background(), ugFull, storage.Filter{Number: "CSE2221"})
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Software I", docs[0].Title)
}

func TestLoad_InvalidCourse(t *testing.T) {
	repo := setupRepository(t)
	loader := setupLoader(t, repo, mock.NewMockEmbedder())

	_, err := loader.Load(context.Background(), []core.Course{{Number: "CSE12", Title: "Bad", Level: core.LevelUndergraduate}})
	assert.ErrorIs(t, err, core.ErrInvalidCourse)
}

func TestLoad_RetriesEmbedding(t *testing.T) {
	repo := setupRepository(t)
	embedder := mock.NewMockEmbedder()
	var calls atomic.Int32
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("rate limited")
		}
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.GenerateVector(text)
		}
		return vectors, nil
	}
	loader := setupLoader(t, repo, embedder, WithPoolSize(1), WithBatchSize(100))

	_, err := loader.Load(context.Background(), sampleCourses()[:1])
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "one retry for the first batch, one call for the second")
}

func TestLoad_EmbeddingFailure(t *testing.T) {
	repo := setupRepository(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("service down")
	}
	loader := setupLoader(t, repo, embedder)

	_, err := loader.Load(context.Background(), sampleCourses())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "service down")
}

func TestLoad_EmbeddingMismatch(t *testing.T) {
	repo := setupRepository(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}
	loader := setupLoader(t, repo, embedder, WithBatchSize(2))

	_, err := loader.Load(context.Background(), sampleCourses()[:2])
	assert.ErrorIs(t, err, ErrEmbeddingMismatch)
}

func TestVerify(t *testing.T) {
	ctx := context.Background()
	repo := setupRepository(t)
	loader := setupLoader(t, repo, mock.NewMockEmbedder())

	_, err := loader.Load(ctx, sampleCourses())
	require.NoError(t, err)

	results, err := loader.Verify(ctx, "CSE3901", "CSE5911", "CSE3902")
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.True(t, results[0].Found)
	assert.Equal(t, core.LevelUndergraduate, results[0].Level)
	assert.Equal(t, "Course Number: CSE3901 CSE3901 CSE3901", results[0].Heading)

	assert.True(t, results[1].Found)
	assert.Equal(t, core.LevelGraduate, results[1].Level)

	assert.False(t, results[2].Found)
}
