package resolve

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/poiesic/advisor/core"
	"github.com/poiesic/advisor/session"
)

var (
	digitRunPattern = regexp.MustCompile(`\d+`)

	referencePatterns = []*regexp.Regexp{
		regexp.MustCompile(`\b(this|that|the|current|same) course\b`),
		regexp.MustCompile(`\bit\b`),
		regexp.MustCompile(`\bthis one\b`),
	}

	graduatePattern      = regexp.MustCompile(`\b(grad|graduate|master|masters|phd|doctoral)\b`)
	undergraduatePattern = regexp.MustCompile(`\b(undergrad|undergraduate)\b`)
)

// Resolution is the outcome of resolving a query.
type Resolution struct {
	// Courses in order of first appearance.
	Courses []core.CourseID

	// Variations are the search phrases built for Courses, four per course.
	Variations []string

	// FromContext is set when Courses came from the conversation rather
	// than the query text.
	FromContext bool
}

// IsEmpty reports whether no course was resolved.
func (r Resolution) IsEmpty() bool {
	return len(r.Courses) == 0
}

// Resolver finds the courses a query is about.
type Resolver struct {
	logger *slog.Logger
}

// NewResolver creates a Resolver.
func NewResolver() *Resolver {
	return &Resolver{
		logger: slog.Default().With("component", "resolver"),
	}
}

// Resolve extracts course identifiers from query. When the query names none
// but refers back to "this course" or "it", the most recently mentioned
// course of sess is used. sess may be nil.
func (r *Resolver) Resolve(query string, sess *session.Session) Resolution {
	var res Resolution

	courses := explicitCourses(query)
	if len(courses) == 0 && sess != nil && refersBack(query) {
		if last, ok := sess.LastMentioned(); ok {
			courses = []core.CourseID{last}
			res.FromContext = true
			r.logger.Debug("resolved course from conversation", "session", sess.ID, "course", last)
		}
	}

	res.Courses = courses
	for _, c := range courses {
		res.Variations = append(res.Variations, Variations(c)...)
	}
	return res
}

// Variations returns the search phrases used to find course in the title collection.
func Variations(course core.CourseID) []string {
	return []string{
		"Course Number: " + string(course),
		"Course: " + string(course),
		string(course),
		course.Digits(),
	}
}

// explicitCourses collects prefixed identifiers, then bare four-digit numbers
// with no adjacent digits, without duplicates.
func explicitCourses(query string) []core.CourseID {
	courses := core.ExtractCourseIDs(query)

	seen := make(map[core.CourseID]bool, len(courses))
	for _, c := range courses {
		seen[c] = true
	}

	for _, run := range digitRunPattern.FindAllString(query, -1) {
		if len(run) != 4 {
			continue
		}
		c := core.NewCourseID(run)
		if seen[c] {
			continue
		}
		seen[c] = true
		courses = append(courses, c)
	}
	return courses
}

func refersBack(query string) bool {
	lower := strings.ToLower(query)
	for _, p := range referencePatterns {
		if p.MatchString(lower) {
			return true
		}
	}
	return false
}

// DetectLevel reports whether message declares the student's level.
// Graduate wording wins when both appear.
func DetectLevel(message string) (core.Level, bool) {
	lower := strings.ToLower(message)
	if graduatePattern.MatchString(lower) {
		return core.LevelGraduate, true
	}
	if undergraduatePattern.MatchString(lower) {
		return core.LevelUndergraduate, true
	}
	return 0, false
}
