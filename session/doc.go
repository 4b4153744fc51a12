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

// Package session keeps per-session conversational state in process memory.
//
// A Store maps opaque session IDs to the last few exchanges, the courses the
// conversation has touched, the student's level and any courses read from an
// uploaded transcript. Sessions idle longer than the configured expiry are
// removed lazily: every Store operation sweeps expired sessions first, and no
// background goroutine runs.
//
// Callers receive Session snapshots. Mutations go through the Store so that
// sweep, create and mutate happen under one lock. Store.Lock serializes whole
// turns for a single session while other sessions proceed.
package session
