package advisor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/poiesic/advisor/ai/mock"
	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/prompt"
	"github.com/poiesic/advisor/transcript"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	advisor   *Advisor
	embedder  *mock.MockEmbedder
	completer *mock.MockCompleter
}

func setup(t *testing.T) *fixture {
	t.Helper()
	embedder := mock.NewMockEmbedder()
	completer := mock.NewMockCompleter()

	adv, err := NewAdvisor("",
		WithInMemory(),
		WithProvider(mock.NewMockProviderWithServices(embedder, completer)),
		WithExtractor(transcript.PlainTextExtractor{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { adv.Close() })

	loader, err := adv.NewLoader()
	require.NoError(t, err)
	defer loader.Release()

	_, err = loader.Load(context.Background(), []core.Course{
		{Number: "CSE2221", Title: "Software I", Description: "Software components.", Prerequisites: "Prereq: 1223", Units: "4", Level: core.LevelUndergraduate},
		{Number: "CSE2231", Title: "Software II", Description: "Component implementations.", Prerequisites: "Prereq: 2221", Units: "4", Level: core.LevelUndergraduate},
		{Number: "CSE3901", Title: "Web Applications", Description: "Web apps.", Prerequisites: "Prereq: 2231", Units: "4", Level: core.LevelUndergraduate},
		{Number: "CSE5911", Title: "Capstone", Description: "Team project.", Prerequisites: "Prereq: 3901", Units: "4", Level: core.LevelGraduate},
	})
	require.NoError(t, err)
	embedder.Reset()

	return &fixture{advisor: adv, embedder: embedder, completer: completer}
}

func TestNewAdvisor(t *testing.T) {
	t.Run("on disk", func(t *testing.T) {
		adv, err := NewAdvisor(filepath.Join(t.TempDir(), "courses"), WithProvider(mock.NewMockProvider()))
		require.NoError(t, err)
		defer adv.Close()

		assert.NotNil(t, adv.Repository())
		assert.NotNil(t, adv.Engine())
		assert.NotNil(t, adv.Sessions())
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		adv, err := NewAdvisor(file, WithProvider(mock.NewMockProvider()))
		assert.Error(t, err)
		assert.Nil(t, adv)
	})

	t.Run("invalid result count", func(t *testing.T) {
		_, err := NewAdvisor("", WithInMemory(), WithProvider(mock.NewMockProvider()), WithResultCount(0))
		assert.Error(t, err)
	})
}

func TestHandleChat_ExactMatch(t *testing.T) {
	f := setup(t)

	reply, err := f.advisor.HandleChat(context.Background(), "What are the prerequisites for CSE 2231?", "s1")
	require.NoError(t, err)
	assert.Equal(t, mock.DefaultAnswer, reply)

	require.Equal(t, 1, f.completer.CallCount())
	call := f.completer.LastCall()
	assert.Equal(t, prompt.SystemPrompt, call.SystemPrompt)
	assert.Contains(t, call.UserPrompt, "[EXACT MATCH]\nCourse Number: CSE2231")
	assert.NotContains(t, call.UserPrompt, "CSE3901")
	assert.Zero(t, f.embedder.CallCount(), "exact matches skip the embedder")

	sess := f.advisor.Sessions().GetOrCreate("s1")
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, "What are the prerequisites for CSE 2231?", sess.Messages[0].User)
	assert.Equal(t, []core.CourseID{"CSE2231"}, sess.MentionedCourses)
}

func TestHandleChat_FollowUp(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.advisor.HandleChat(ctx, "Tell me about CSE 3901", "s1")
	require.NoError(t, err)

	_, err = f.advisor.HandleChat(ctx, "what are the prerequisites for this course?", "s1")
	require.NoError(t, err)

	call := f.completer.LastCall()
	assert.Contains(t, call.UserPrompt, "Course Title: CSE3901 - Web Applications")
	assert.Contains(t, call.UserPrompt, "User: Tell me about CSE 3901")
	assert.Contains(t, call.UserPrompt, "Assistant: "+mock.DefaultAnswer)
}

func TestHandleChat_SemanticSearch(t *testing.T) {
	f := setup(t)

	_, err := f.advisor.HandleChat(context.Background(), "which course teaches web apps?", "s1")
	require.NoError(t, err)

	assert.Positive(t, f.embedder.CallCount())
	assert.Contains(t, f.completer.LastCall().UserPrompt, "[RELATED COURSE]")
}

func TestHandleChat_LevelDeclaration(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	reply, err := f.advisor.HandleChat(ctx, "I'm a graduate student", "s1")
	require.NoError(t, err)
	assert.Equal(t, prompt.LevelAcknowledgement(core.LevelGraduate), reply)
	assert.Zero(t, f.completer.CallCount())

	sess := f.advisor.Sessions().GetOrCreate("s1")
	assert.Equal(t, core.LevelGraduate, sess.Level())
	require.Len(t, sess.Messages, 1)
	assert.Empty(t, sess.MentionedCourses)

	// Later lookups use the graduate collections
	_, err = f.advisor.HandleChat(ctx, "Tell me about CSE 5911", "s1")
	require.NoError(t, err)
	assert.Contains(t, f.completer.LastCall().UserPrompt, "Course Title: CSE5911 - Capstone")
}

func TestHandleChat_CompletionFailure(t *testing.T) {
	f := setup(t)
	f.completer.WithError(errors.New("model unavailable"))

	reply, err := f.advisor.HandleChat(context.Background(), "Tell me about CSE 2221", "s1")
	require.NoError(t, err)
	assert.Equal(t, prompt.ApologyResponse, reply)

	sess := f.advisor.Sessions().GetOrCreate("s1")
	require.Len(t, sess.Messages, 1)
	assert.Equal(t, prompt.ApologyResponse, sess.Messages[0].Assistant)
}

func TestHandleChat_EmptyMessage(t *testing.T) {
	f := setup(t)

	_, err := f.advisor.HandleChat(context.Background(), "   ", "s1")
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestHandleChat_Stateless(t *testing.T) {
	f := setup(t)

	reply, err := f.advisor.HandleChat(context.Background(), "Tell me about CSE 2221", "")
	require.NoError(t, err)
	assert.Equal(t, mock.DefaultAnswer, reply)
	assert.Zero(t, f.advisor.Sessions().Len())
}

func TestHandleChat_ConcurrentSessions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := "a"
			if i%2 == 1 {
				id = "b"
			}
			_, err := f.advisor.HandleChat(ctx, "Tell me about CSE 2221", id)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 2, f.advisor.Sessions().Len())
	assert.Len(t, f.advisor.Sessions().GetOrCreate("a").Messages, 5)
	assert.Equal(t, 10, f.completer.CallCount())
}

func TestHandleTranscriptUpload(t *testing.T) {
	f := setup(t)
	f.completer.WithResponse("CSE 2221, CSE 3901, CSE 9999")

	resp, err := f.advisor.HandleTranscriptUpload(context.Background(),
		[]byte("Autumn 2023\nCSE 2221 Software I A\nCSE 3901 Web Applications B+"), "s1")
	require.NoError(t, err)

	assert.Equal(t, prompt.TranscriptSummary([]core.CourseID{"CSE2221", "CSE3901", "CSE9999"}), resp.Response)
	require.Len(t, resp.Courses, 2, "courses missing from the catalog are left out")
	assert.Contains(t, resp.Courses[0], "Course Title: CSE2221")
	assert.Contains(t, resp.Courses[1], "Course Title: CSE3901")

	sess := f.advisor.Sessions().GetOrCreate("s1")
	assert.Equal(t, []core.CourseID{"CSE2221", "CSE3901", "CSE9999"}, sess.TranscriptCourses)
	assert.Equal(t, sess.TranscriptCourses, sess.CompletedCourses)

	// The transcript is part of the next chat prompt
	f.completer.WithResponse("ok")
	_, err = f.advisor.HandleChat(context.Background(), "What should I take next?", "s1")
	require.NoError(t, err)
	assert.Contains(t, f.completer.LastCall().UserPrompt, "CSE2221, CSE3901, CSE9999")
}

func TestHandleTranscriptUpload_GraduateSession(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.advisor.HandleChat(ctx, "I am a graduate student", "g")
	require.NoError(t, err)

	f.completer.WithResponse("CSE 2221, CSE 5911")
	resp, err := f.advisor.HandleTranscriptUpload(ctx, []byte("CSE 2221 A\nCSE 5911 B"), "g")
	require.NoError(t, err)

	require.Len(t, resp.Courses, 2, "undergraduate courses resolve for a graduate student")
	assert.Contains(t, resp.Courses[0], "Course Title: CSE2221")
	assert.Contains(t, resp.Courses[1], "Course Title: CSE5911")
	assert.Equal(t, core.LevelGraduate, f.advisor.Sessions().GetOrCreate("g").StudentLevel)
}

func TestHandleTranscriptUpload_Errors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.advisor.HandleTranscriptUpload(ctx, nil, "s1")
	assert.ErrorIs(t, err, transcript.ErrExtraction)

	f.completer.WithResponse("No CSE courses found.")
	_, err = f.advisor.HandleTranscriptUpload(ctx, []byte("MATH 1151 Calculus"), "s1")
	assert.ErrorIs(t, err, transcript.ErrNoCoursesFound)

	f.completer.WithError(errors.New("model unavailable"))
	_, err = f.advisor.HandleTranscriptUpload(ctx, []byte("CSE 2221"), "s1")
	assert.ErrorIs(t, err, transcript.ErrCompletion)
}
