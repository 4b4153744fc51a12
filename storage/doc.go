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

// Package storage provides the storage abstraction layer for the course catalog.
//
// This package defines the CourseRepository interface that decouples the
// retrieval engine and the catalog loader from the backend that holds course
// documents. A repository behaves like a small vector store: documents live in
// named collections, can be fetched by ID or by exact metadata filter, and can
// be ranked against a query vector.
//
// # Collections
//
// The catalog is partitioned into four collections, one per level and
// document kind (see core.Collection):
//
//   - undergrad_titles, undergrad_courses
//   - grad_titles, grad_courses
//
// The title and full document of a course share the same core.ID so a hit
// in a title collection can be resolved to the full text.
//
// # Usage
//
//	repo, err := badger.NewCourseRepository(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.NewMemoryRepository()
//
// # Thread Safety
//
// All repository implementations must be thread-safe and support
// concurrent access from multiple goroutines.
package storage
