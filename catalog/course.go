package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/poiesic/advisor/core"
)

var graduateKeywords = []string{"graduate", "masters", "ph.d", "doctoral"}

// catalogEntry is one course as scraped from the catalog.
type catalogEntry struct {
	Number        string     `json:"number"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Prerequisites string     `json:"prerequisites"`
	Units         unitsValue `json:"units"`
	Level         string     `json:"level,omitempty"`
}

// unitsValue accepts units written either as a string ("3") or a number (3).
type unitsValue string

func (u *unitsValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*u = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*u = unitsValue(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*u = unitsValue(n.String())
	return nil
}

// ReadCourses decodes a catalog JSON array. Course numbers are normalized
// ("CSE 2221" becomes "CSE2221") and a missing level is derived with
// DetermineLevel.
func ReadCourses(r io.Reader) ([]core.Course, error) {
	var entries []catalogEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	courses := make([]core.Course, 0, len(entries))
	for i, entry := range entries {
		number, ok := core.NormalizeCourseID(strings.ReplaceAll(entry.Number, " ", ""))
		if !ok {
			return nil, fmt.Errorf("%w: entry %d: %w: %q", ErrInvalidCatalog, i, core.ErrInvalidCourseID, entry.Number)
		}

		course := core.Course{
			Number:        number,
			Title:         strings.TrimSpace(entry.Title),
			Description:   strings.TrimSpace(entry.Description),
			Prerequisites: strings.TrimSpace(entry.Prerequisites),
			Units:         strings.TrimSpace(string(entry.Units)),
		}

		if entry.Level != "" {
			level, err := core.ParseLevel(strings.ToLower(entry.Level))
			if err != nil {
				return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidCatalog, i, err)
			}
			course.Level = level
		} else {
			course.Level = DetermineLevel(course)
		}

		if err := core.ValidateCourse(&course); err != nil {
			return nil, fmt.Errorf("%w: entry %d: %w", ErrInvalidCatalog, i, err)
		}
		courses = append(courses, course)
	}
	return courses, nil
}

// DetermineLevel classifies a course as graduate when its number is 5000 or
// above, or when its description mentions a graduate keyword. The keyword
// check is a substring match, so "undergraduate" also counts.
func DetermineLevel(course core.Course) core.Level {
	if number, err := strconv.Atoi(course.Number.Digits()); err == nil && number >= 5000 {
		return core.LevelGraduate
	}

	description := strings.ToLower(course.Description)
	for _, keyword := range graduateKeywords {
		if strings.Contains(description, keyword) {
			return core.LevelGraduate
		}
	}
	return core.LevelUndergraduate
}

// BuildDocuments renders the title and full documents of a course. Both share
// an ID derived from the course number, so a title hit leads to the full
// document. Vectors are left empty for the loader to fill.
func BuildDocuments(course core.Course) (title, full *core.CourseDocument) {
	level := course.Level
	if level == 0 {
		level = DetermineLevel(course)
	}

	number := string(course.Number)
	raw := course.Number.Digits()
	header := fmt.Sprintf("Course Number: %s %s %s", number, number, number)
	searchTerms := fmt.Sprintf("Search Terms: %s CSE %s %s", number, raw, course.Title)

	titleText := strings.Join([]string{
		header,
		fmt.Sprintf("Course: %s - %s", number, course.Title),
		"Level: " + level.String(),
		searchTerms,
	}, "\n")

	fullText := strings.Join([]string{
		header,
		fmt.Sprintf("Course Title: %s - %s", number, course.Title),
		"Level: " + level.String(),
		"Description: " + course.Description,
		"Prerequisites: " + course.Prerequisites,
		"Units: " + course.Units,
		searchTerms,
	}, "\n")

	id := core.IDFromContent(number)
	newDocument := func(kind core.DocumentKind, text string) *core.CourseDocument {
		return &core.CourseDocument{
			Id:            id,
			Number:        course.Number,
			NumberRaw:     raw,
			Title:         course.Title,
			Prerequisites: course.Prerequisites,
			Units:         course.Units,
			Level:         level,
			Kind:          kind,
			Text:          text,
		}
	}

	return newDocument(core.KindTitle, titleText), newDocument(core.KindFull, fullText)
}
