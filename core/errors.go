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

import "errors"

var (
	// ErrInvalidCourse indicates a Course failed validation.
	ErrInvalidCourse = errors.New("invalid course")

	// ErrInvalidCourseDocument indicates a CourseDocument failed validation.
	ErrInvalidCourseDocument = errors.New("invalid course document")

	// ErrInvalidCourseID indicates a course number is not in canonical form.
	ErrInvalidCourseID = errors.New("invalid course identifier")

	// ErrInvalidLevel indicates an unknown academic level.
	ErrInvalidLevel = errors.New("invalid level")

	// ErrInvalidDocumentKind indicates an unknown document kind.
	ErrInvalidDocumentKind = errors.New("invalid document kind")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyText indicates the document Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")
)
