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

// Package retrieval finds the catalog documents that answer a student's query.
//
// Retrieval runs in three tiers over the collection pair that matches the
// session's student level:
//
//  1. Exact match: every course the query names (or refers back to) is looked
//     up by number, falling back to its raw digits. Any hit ends retrieval.
//  2. Title search: a weighted query is embedded and matched against the
//     title collection; each hit is swapped for its full document.
//  3. Full search: if results are still short, the same vector is matched
//     against the full collection.
//
// Documents are deduplicated by text across tiers and results never exceed
// the requested count. A Monitor can observe each tier.
package retrieval
