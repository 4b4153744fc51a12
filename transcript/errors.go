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

package transcript

import "errors"

var (
	// ErrExtraction is returned when no text can be read from the document.
	ErrExtraction = errors.New("could not extract text from transcript")

	// ErrNoCoursesFound is returned when the transcript names no CSE course.
	ErrNoCoursesFound = errors.New("no CSE courses found in the transcript")

	// ErrCompletion is returned when the completion service fails to read the transcript.
	ErrCompletion = errors.New("transcript analysis failed")

	// ErrExtractorRequired is returned when a text extractor is not provided.
	ErrExtractorRequired = errors.New("text extractor required")

	// ErrCompleterRequired is returned when a completer is not provided.
	ErrCompleterRequired = errors.New("completer required")

	// ErrLookupRequired is returned when a course lookup is not provided.
	ErrLookupRequired = errors.New("course lookup required")
)
