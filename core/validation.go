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

package core

import "fmt"

// ValidateCourse checks that a catalog entry can be turned into documents.
func ValidateCourse(course *Course) error {
	if course == nil {
		return fmt.Errorf("%w: course is nil", ErrInvalidCourse)
	}

	if err := ValidateCourseID(course.Number); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, err)
	}

	if course.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, ErrEmptyTitle)
	}

	if err := ValidateLevel(course.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCourse, err)
	}

	return nil
}

// ValidateCourseDocument checks a document before it is stored.
func ValidateCourseDocument(doc *CourseDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidCourseDocument)
	}

	if err := ValidateCourseID(doc.Number); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCourseDocument, err)
	}

	if doc.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCourseDocument, ErrEmptyText)
	}

	if err := ValidateLevel(doc.Level); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCourseDocument, err)
	}

	if doc.Kind != KindTitle && doc.Kind != KindFull {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidCourseDocument, ErrInvalidDocumentKind, doc.Kind)
	}

	return nil
}

// ValidateCourseID checks that id is "CSE" followed by exactly four digits.
func ValidateCourseID(id CourseID) error {
	s := string(id)
	if len(s) != len(coursePrefix)+4 || s[:len(coursePrefix)] != coursePrefix || !isDigits(s[len(coursePrefix):]) {
		return fmt.Errorf("%w: %q", ErrInvalidCourseID, s)
	}
	return nil
}

// ValidateLevel checks that level is one of the known levels.
func ValidateLevel(level Level) error {
	if level != LevelUndergraduate && level != LevelGraduate {
		return fmt.Errorf("%w: value %d", ErrInvalidLevel, level)
	}
	return nil
}
