package badger

import (
	"context"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDocument(number core.CourseID, kind core.DocumentKind, level core.Level, text string, vector []float32) *core.CourseDocument {
	return &core.CourseDocument{
		Id:        core.IDFromContent(string(number)),
		Number:    number,
		NumberRaw: number.Digits(),
		Title:     "Title of " + string(number),
		Level:     level,
		Kind:      kind,
		Text:      text,
		Vector:    vector,
	}
}

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := t.TempDir()
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())

	err = backend.WithTx(func(_ *badger.Txn) error { return nil }, false)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestFindSimilar_NoDocuments(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	_, full := core.CollectionsFor(core.LevelUndergraduate)
	results, err := backend.FindSimilar(context.Background(), full, []float32{0.1, 0.2, 0.3}, 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFindSimilar_InvalidLimit(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	defer backend.Close()

	_, full := core.CollectionsFor(core.LevelUndergraduate)
	_, err = backend.FindSimilar(context.Background(), full, []float32{1}, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestFindSimilar_RanksWithinCollection(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	ctx := context.Background()
	_, ugFull := core.CollectionsFor(core.LevelUndergraduate)
	_, gFull := core.CollectionsFor(core.LevelGraduate)

	_, err = repo.AddDocuments(ctx, ugFull,
		testDocument("CSE2221", core.KindFull, core.LevelUndergraduate, "software one", []float32{1.0, 0.0, 0.0}),
		testDocument("CSE2231", core.KindFull, core.LevelUndergraduate, "software two", []float32{0.9, 0.1, 0.0}),
		testDocument("CSE2321", core.KindFull, core.LevelUndergraduate, "foundations", []float32{0.0, 0.0, 1.0}),
		testDocument("CSE2421", core.KindFull, core.LevelUndergraduate, "systems", nil),
	)
	require.NoError(t, err)

	// Same vector in another collection must not leak into results
	_, err = repo.AddDocuments(ctx, gFull,
		testDocument("CSE5911", core.KindFull, core.LevelGraduate, "capstone", []float32{1.0, 0.0, 0.0}),
	)
	require.NoError(t, err)

	results, err := backend.FindSimilar(ctx, ugFull, []float32{1.0, 0.0, 0.0}, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)

	for i := 0; i < len(results)-1; i++ {
		assert.GreaterOrEqual(t, results[i].Score, results[i+1].Score)
	}
	assert.Equal(t, "software one", results[0].Document.Text)
	assert.Equal(t, "software two", results[1].Document.Text)

	t.Run("limit", func(t *testing.T) {
		results, err := backend.FindSimilar(ctx, ugFull, []float32{1.0, 0.0, 0.0}, 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := backend.FindSimilar(cancelled, ugFull, []float32{1.0, 0.0, 0.0}, 2)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestDotProduct(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float32
	}{
		{
			name:     "identical vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{1.0, 0.0, 0.0},
			expected: 1.0,
		},
		{
			name:     "orthogonal vectors",
			a:        []float32{1.0, 0.0, 0.0},
			b:        []float32{0.0, 1.0, 0.0},
			expected: 0.0,
		},
		{
			name:     "general case",
			a:        []float32{0.6, 0.8},
			b:        []float32{0.8, 0.6},
			expected: 0.96,
		},
		{
			name:     "different lengths - use min",
			a:        []float32{1.0, 2.0, 3.0},
			b:        []float32{1.0, 2.0},
			expected: 5.0,
		},
		{
			name:     "empty vectors",
			a:        []float32{},
			b:        []float32{},
			expected: 0.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := dotProduct(tt.a, tt.b)
			assert.InDelta(t, tt.expected, result, 0.0001)
		})
	}
}
