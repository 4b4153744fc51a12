package core

import (
	"regexp"
	"strings"
)

// CourseID is a canonical course identifier such as "CSE2221".
type CourseID string

const coursePrefix = "CSE"

// courseIDPattern is the single extraction pattern used for chat queries,
// documents and transcripts. The space between prefix and digits is optional.
var courseIDPattern = regexp.MustCompile(`(?i)CSE\s*(\d{4})`)

var exactCourseIDPattern = regexp.MustCompile(`(?i)^(?:CSE\s*)?(\d{4})$`)

// NewCourseID builds the canonical identifier from four digits.
func NewCourseID(digits string) CourseID {
	return CourseID(coursePrefix + digits)
}

// Digits returns the trailing four digits of the identifier.
func (c CourseID) Digits() string {
	s := string(c)
	if len(s) < 4 {
		return s
	}
	return s[len(s)-4:]
}

func (c CourseID) String() string {
	return string(c)
}

// NormalizeCourseID parses a single identifier in any accepted spelling
// ("CSE 2221", "cse2221", "2221").
func NormalizeCourseID(s string) (CourseID, bool) {
	m := exactCourseIDPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", false
	}
	return NewCourseID(m[1]), true
}

// ExtractCourseIDs returns every prefixed identifier in text, in order of
// first appearance and without duplicates.
func ExtractCourseIDs(text string) []CourseID {
	matches := courseIDPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[CourseID]bool, len(matches))
	ids := make([]CourseID, 0, len(matches))
	for _, m := range matches {
		id := NewCourseID(m[1])
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
