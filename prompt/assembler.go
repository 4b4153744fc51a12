package prompt

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/session"
)

const userPromptTemplate = `You are an AI academic advisor at Ohio State University's Computer Science department.
A student has asked: "%s"

%s
%s

Please provide a clear, concise response that, using the provided information, directly addresses only the student's query.
If discussing prerequisites, check if the student has completed the required courses based on their transcript.
If recommending courses, consider the courses they've already taken.
If this is a follow-up question, maintain consistency with previous responses.

Response:`

const (
	exactMatchLabel    = "[EXACT MATCH]"
	relatedCourseLabel = "[RELATED COURSE]"
)

// Assembler builds the user prompt for an advising completion.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates an Assembler.
func NewAssembler() *Assembler {
	return &Assembler{
		logger: slog.Default().With("component", "prompt"),
	}
}

// Assemble combines query, retrieved documents and the session's transcript
// and history into one prompt. It also returns the courses named on the
// first line of each document, which the caller records as mentioned.
// sess may be nil.
func (a *Assembler) Assemble(query string, documents []string, sess *session.Session) (string, []core.CourseID) {
	queried := core.ExtractCourseIDs(query)

	var exact, related []string
	var mentioned []core.CourseID
	seen := make(map[core.CourseID]bool)

	for _, doc := range documents {
		header := firstLine(doc)
		for _, c := range core.ExtractCourseIDs(header) {
			if !seen[c] {
				seen[c] = true
				mentioned = append(mentioned, c)
			}
		}
		if namesAny(header, queried) {
			exact = append(exact, doc)
		} else {
			related = append(related, doc)
		}
	}

	var context strings.Builder
	context.WriteString(transcriptBlock(sess))
	context.WriteString("\nRelevant courses:\n")
	for _, doc := range exact {
		fmt.Fprintf(&context, "\n%s\n%s\n", exactMatchLabel, doc)
	}
	for _, doc := range related {
		fmt.Fprintf(&context, "\n%s\n%s\n", relatedCourseLabel, doc)
	}

	prompt := fmt.Sprintf(userPromptTemplate, query, historyBlock(sess), context.String())
	a.logger.Debug("assembled prompt",
		"exact", len(exact),
		"related", len(related),
		"length", len(prompt))

	return prompt, mentioned
}

func transcriptBlock(sess *session.Session) string {
	if sess == nil || len(sess.TranscriptCourses) == 0 {
		return ""
	}
	names := make([]string, len(sess.TranscriptCourses))
	for i, c := range sess.TranscriptCourses {
		names[i] = string(c)
	}
	return "\nStudent's completed courses from transcript:\n" + strings.Join(names, ", ") + "\n"
}

func historyBlock(sess *session.Session) string {
	if sess == nil || len(sess.Messages) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nRecent conversation history:\n")
	for _, turn := range sess.Messages {
		fmt.Fprintf(&b, "User: %s\n", turn.User)
		fmt.Fprintf(&b, "Assistant: %s\n", turn.Assistant)
	}
	return b.String()
}

func firstLine(doc string) string {
	if i := strings.IndexByte(doc, '\n'); i >= 0 {
		return doc[:i]
	}
	return doc
}

func namesAny(header string, courses []core.CourseID) bool {
	for _, c := range courses {
		if strings.Contains(header, string(c)) {
			return true
		}
	}
	return false
}
