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

package prompt

import (
	"fmt"
	"strings"

	"github.com/poiesic/advisor/core"
)

// SystemPrompt frames every advising completion.
const SystemPrompt = `You are an AI academic advisor for Ohio State University's Computer Science and Engineering department.
You have expertise in the CSE curriculum and degree requirements for the BS CSE program.

Key degree requirements (BS CSE, Individualized Specialization):
- Total credit hours required: 126 minimum
- Major Core (42-45 credits):
  * Software sequence: CSE 2221, 2231 (8 credits)
  * Foundations sequence: CSE 2321, 2331 (6 credits)
  * Systems sequence: CSE 2421, 2431 (7 credits)
  * Required courses: CSE 3341, CSE 2501/PHILOS 2338, CSE 3901 or CSE 3902 or CSE 3903
  * Core electives: CSE 3231 or CSE 3241, CSE 3421 or CSE 3461, CSE 3521 or 3541
  * Capstone: CSE 5911-5916 (4 credits)

- Required Non-Major Courses:
  * Math: MATH 1151, 1172, 2568, 3345
  * Statistics: STAT 3470
  * Physics: PHYSICS 1250
  * Engineering: ECE 2020, 2060, ENGR 1181, 1182, 1100
  * Science/Math electives (8 credits)

- Technical Electives (17 credits):
  * CSE 3000+ level courses (≥9 credits)
  * Approved non-CSE 2000+ level courses (≤8 credits)
  * Restrictions on CSE 4251-4256 (max 2 hours)
  * Restrictions on CSE 4193, 4998, 4999 (max 6 hours combined)

When advising students:
1. Ensure prerequisites are met before recommending courses
2. Consider course sequencing and typical semester offerings
3. Help maintain steady progress toward degree completion
4. Consider both required courses and technical electives
5. Ensure recommendations align with degree requirements
6. Help with course planning and scheduling decisions`

// ApologyResponse replaces the answer when the completion service fails.
const ApologyResponse = "I apologize, but I'm having trouble generating a response right now. Please try again later."

// TranscriptSystemPrompt restricts transcript completions to extraction.
const TranscriptSystemPrompt = "You are a transcript analysis assistant. Extract only CSE course numbers from the transcript."

const transcriptPromptTemplate = `Please analyze this transcript text and extract all CSE (Computer Science) courses.
Format the response as a list of course numbers only (e.g., CSE 1223, CSE 2221, etc.).
Transcript text: %s`

// TranscriptPrompt asks the model to list the CSE courses in text.
func TranscriptPrompt(text string) string {
	return fmt.Sprintf(transcriptPromptTemplate, text)
}

// TranscriptTurn is the user side of the turn recorded for an upload.
const TranscriptTurn = "Uploaded transcript"

const transcriptSummaryTemplate = `Based on your transcript, I can see you've taken the following courses:

%s

I'll remember these courses for our conversation. Would you like specific information about any of these courses
or recommendations for future courses based on your academic history?`

// TranscriptSummary tells the student which courses were read from their transcript.
func TranscriptSummary(courses []core.CourseID) string {
	names := make([]string, len(courses))
	for i, c := range courses {
		names[i] = string(c)
	}
	return fmt.Sprintf(transcriptSummaryTemplate, strings.Join(names, ", "))
}

// LevelAcknowledgement confirms a student's level declaration.
func LevelAcknowledgement(level core.Level) string {
	return fmt.Sprintf("I'll focus on %s level courses for you. How can I help?", level)
}
